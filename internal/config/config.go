// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, rate limiting, encryption key material, and the transactional
// email provider settings. Key material is carried as opaque strings and is
// never logged anywhere in the application.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/eqos-digital/contact-backend/internal/sysutil"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-header settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// RateLimitConfig bounds submissions per client within a sliding window.
type RateLimitConfig struct {
	Window      time.Duration // RATE_LIMIT_WINDOW_MS
	MaxRequests int           // RATE_LIMIT_MAX_REQUESTS
}

// CryptoConfig carries the symmetric key material for the audit payload.
// Both values are process-wide, immutable, and must never be logged.
type CryptoConfig struct {
	AESKey     string // CONTACT_FORM_SECRET
	HMACSecret string // HMAC_SECRET, falls back to CONTACT_FORM_SECRET
}

// MailConfig configures the transactional-email provider.
type MailConfig struct {
	APIKey    string        // RESEND_API_KEY (required)
	FromEmail string        // RESEND_FROM_EMAIL
	ToEmail   string        // CONTACT_EMAIL (operator inbox)
	Timeout   time.Duration // MAIL_TIMEOUT, server-side dispatch bound
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Environment / logging / docs
	Env            string // development|production (APP_ENV)
	LogLevel       string
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string // base path for API routes, default "/api"

	// Contact pipeline
	RateLimit   RateLimitConfig
	Crypto      CryptoConfig
	Mail        MailConfig
	AuditDBPath string // CONTACT_AUDIT_DB; empty disables the audit store

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// IsDevelopment reports whether the process runs in a development
// configuration. Error responses only carry details/stack context here.
func (c Config) IsDevelopment() bool { return c.Env == "development" }

// MustLoad loads the configuration and panics if validation fails.
// The missing-email-API-key case is deliberately a startup failure, not a
// request-time one.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults,
// normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		Env:            strings.ToLower(getenv("APP_ENV", "production")),
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		RateLimit: RateLimitConfig{
			Window:      time.Duration(getint("RATE_LIMIT_WINDOW_MS", 900000)) * time.Millisecond,
			MaxRequests: getint("RATE_LIMIT_MAX_REQUESTS", 3),
		},
		Crypto: CryptoConfig{
			AESKey: getenv("CONTACT_FORM_SECRET", "default-secret"),
			HMACSecret: sysutil.FirstNonEmpty(
				os.Getenv("HMAC_SECRET"),
				os.Getenv("CONTACT_FORM_SECRET"),
				"default-secret",
			),
		},
		Mail: MailConfig{
			APIKey:    getenv("RESEND_API_KEY", ""),
			FromEmail: getenv("RESEND_FROM_EMAIL", "onboarding@resend.dev"),
			ToEmail:   getenv("CONTACT_EMAIL", "contact.eqos@gmail.com"),
			Timeout:   getdur("MAIL_TIMEOUT", 15*time.Second),
		},
		AuditDBPath: getenv("CONTACT_AUDIT_DB", ""),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "contact-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	switch cfg.Env {
	case "development", "production":
	default:
		cfg.Env = "production"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if cfg.RateLimit.Window <= 0 {
		return cfg, errors.New("RATE_LIMIT_WINDOW_MS must be > 0")
	}
	if cfg.RateLimit.MaxRequests < 1 {
		return cfg, errors.New("RATE_LIMIT_MAX_REQUESTS must be >= 1")
	}
	if strings.TrimSpace(cfg.Mail.APIKey) == "" {
		return cfg, errors.New("RESEND_API_KEY is required")
	}
	if cfg.Mail.Timeout <= 0 {
		return cfg, errors.New("MAIL_TIMEOUT must be > 0")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures a leading '/' and strips any trailing '/'
// (except for the bare root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
