// Command server runs the E-QOS contact API.
//
// Startup order: environment (.env is optional), configuration with
// fail-fast validation, logging, tracing, the optional audit store, and
// finally the HTTP server with graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	_ "github.com/eqos-digital/contact-backend/docs"
	"github.com/eqos-digital/contact-backend/internal/config"
	httpapi "github.com/eqos-digital/contact-backend/internal/http"
	"github.com/eqos-digital/contact-backend/internal/mail"
	"github.com/eqos-digital/contact-backend/internal/observability"
	"github.com/eqos-digital/contact-backend/internal/repo"
	"github.com/eqos-digital/contact-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// @title        E-QOS Contact API
// @version      1.0
// @description  Secure contact-form submission API for the E-QOS marketing site.
// @BasePath     /api
func main() {
	// Optional .env for local development; real deployments use the process env.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	var db *gorm.DB
	if cfg.AuditDBPath != "" {
		db, err = repo.OpenSQLite(cfg.AuditDBPath)
		if err != nil {
			log.Fatal().Err(err).Msg("audit store open failed")
		}
		if err := repo.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("audit store migration failed")
		}
		log.Info().Str("path", cfg.AuditDBPath).Msg("audit store enabled")
	}

	dispatcher := mail.NewResendDispatcher(
		cfg.Mail.APIKey,
		cfg.Mail.FromEmail,
		cfg.Mail.ToEmail,
		cfg.Mail.Timeout,
	)

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, dispatcher, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("version", version).
			Msg("contact api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
	log.Info().Msg("bye")
}
