package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eqos-digital/contact-backend/internal/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.POST("/send", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func doPost(t *testing.T, r *gin.Engine, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	req.RemoteAddr = "192.0.2.1:51234"
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_GeneratedAndPropagated(t *testing.T) {
	r := newEngine(RequestID())

	w := doPost(t, r, nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a generated X-Request-ID")
	}

	w = doPost(t, r, func(req *http.Request) {
		req.Header.Set("X-Request-ID", "incoming-id")
	})
	if got := w.Header().Get("X-Request-ID"); got != "incoming-id" {
		t.Fatalf("X-Request-ID = %q, want incoming-id", got)
	}
}

func TestRecovery_Returns500JSON(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery())
	r.GET("/boom", func(*gin.Context) { panic("kaput") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Internal server error") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestClientID_Resolution(t *testing.T) {
	cases := []struct {
		name   string
		xff    string
		remote string
		want   string
	}{
		{"forwarded single", "203.0.113.7", "10.0.0.1:1234", "203.0.113.7"},
		{"forwarded chain takes first", "203.0.113.7, 10.0.0.2", "10.0.0.1:1234", "203.0.113.7"},
		{"forwarded padded", "  203.0.113.7 , 10.0.0.2", "10.0.0.1:1234", "203.0.113.7"},
		{"socket fallback", "", "192.0.2.9:40000", "192.0.2.9"},
		{"socket without port", "", "192.0.2.9", "192.0.2.9"},
		{"nothing", "", "", "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/send", nil)
			c.Request.RemoteAddr = tc.remote
			if tc.xff != "" {
				c.Request.Header.Set("X-Forwarded-For", tc.xff)
			}
			if got := ClientID(c); got != tc.want {
				t.Fatalf("ClientID = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRateLimit_HeadersOnAllowedResponses(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), time.Minute, 3)
	r := newEngine(RateLimit(limiter))

	w := doPost(t, r, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "3" {
		t.Fatalf("X-RateLimit-Limit = %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "2" {
		t.Fatalf("X-RateLimit-Remaining = %q", got)
	}
	if _, err := time.Parse(time.RFC3339, w.Header().Get("X-RateLimit-Reset")); err != nil {
		t.Fatalf("X-RateLimit-Reset not RFC3339: %v", err)
	}
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), time.Minute, 2)
	r := newEngine(RateLimit(limiter))

	for i := 0; i < 2; i++ {
		if w := doPost(t, r, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}

	w := doPost(t, r, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	retry := w.Header().Get("Retry-After")
	if sec, err := strconv.Atoi(retry); err != nil || sec < 1 {
		t.Fatalf("Retry-After = %q, want positive integer seconds", retry)
	}
	body := w.Body.String()
	for _, field := range []string{`"error"`, `"message"`, `"retryAfter"`, `"resetTime"`} {
		if !strings.Contains(body, field) {
			t.Fatalf("429 body missing %s: %s", field, body)
		}
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("X-RateLimit-Remaining = %q, want 0", got)
	}
}

func TestRateLimit_IsolatesClients(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), time.Minute, 1)
	r := newEngine(RateLimit(limiter))

	if w := doPost(t, r, nil); w.Code != http.StatusOK {
		t.Fatalf("first client first request = %d", w.Code)
	}
	if w := doPost(t, r, nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first client second request = %d, want 429", w.Code)
	}
	w := doPost(t, r, func(req *http.Request) {
		req.Header.Set("X-Forwarded-For", "203.0.113.50")
	})
	if w.Code != http.StatusOK {
		t.Fatalf("second client = %d, want 200", w.Code)
	}
}

// panicStore forces every limiter check to fail so the fail-open path runs.
type panicStore struct{}

func (panicStore) Get(string) []int64  { panic("store down") }
func (panicStore) Put(string, []int64) {}
func (panicStore) Prune(int64)         {}
func (panicStore) Delete(string)       {}

func TestRateLimit_FailsOpenOnLimiterPanic(t *testing.T) {
	limiter := ratelimit.NewLimiter(panicStore{}, time.Minute, 1)
	r := newEngine(RateLimit(limiter))

	for i := 0; i < 5; i++ {
		if w := doPost(t, r, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200 (fail open)", i+1, w.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := newEngine(SecurityHeaders(SecurityOptions{
		EnableHSTS:   true,
		NoStore:      true,
		EnablePolicy: true,
	}))

	w := doPost(t, r, nil)
	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
		"Cache-Control":          "no-store",
	}
	for k, v := range want {
		if got := w.Header().Get(k); got != v {
			t.Fatalf("%s = %q, want %q", k, got, v)
		}
	}
	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("HSTS emitted on plain HTTP: %q", got)
	}

	w = doPost(t, r, func(req *http.Request) {
		req.Header.Set("X-Forwarded-Proto", "https")
	})
	if got := w.Header().Get("Strict-Transport-Security"); !strings.HasPrefix(got, "max-age=") {
		t.Fatalf("Strict-Transport-Security = %q", got)
	}
}
