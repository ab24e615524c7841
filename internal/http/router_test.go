package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eqos-digital/contact-backend/internal/config"
	"github.com/eqos-digital/contact-backend/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingDispatcher struct {
	err   error
	calls int
}

func (d *recordingDispatcher) Dispatch(context.Context, domain.SanitizedContact, string, string) error {
	d.calls++
	return d.err
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath: "/api",
		RateLimit: config.RateLimitConfig{
			Window:      time.Minute,
			MaxRequests: 3,
		},
		Crypto: config.CryptoConfig{
			AESKey:     "router-test-key",
			HMACSecret: "router-test-hmac",
		},
		Security: config.SecurityConfig{},
	}
}

func newTestRouter(t *testing.T, d *recordingDispatcher) *gin.Engine {
	t.Helper()
	r := gin.New()
	RegisterRoutes(r, nil, d, testConfig())
	return r
}

func submit(t *testing.T, r *gin.Engine, clientID string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{
		"name": "Alice Example",
		"email": "alice@example.com",
		"subject": "Partnership inquiry",
		"message": "We would like to discuss a potential collaboration."
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact/send", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", clientID)
	req.RemoteAddr = "10.0.0.1:40000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_SubmitEndToEnd(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestRouter(t, d)

	w := submit(t, r, "203.0.113.1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if d.calls != 1 {
		t.Fatalf("dispatcher calls = %d, want 1", d.calls)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID header")
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "3" {
		t.Fatalf("X-RateLimit-Limit = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("ACAO = %q, want *", got)
	}
}

func TestRouter_RateLimitsSubmissionRoute(t *testing.T) {
	d := &recordingDispatcher{}
	r := newTestRouter(t, d)

	for i := 0; i < 3; i++ {
		if w := submit(t, r, "203.0.113.2"); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}
	w := submit(t, r, "203.0.113.2")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
	if d.calls != 3 {
		t.Fatalf("dispatcher calls = %d, want 3 (blocked request must not dispatch)", d.calls)
	}

	// Health endpoints never consume the budget.
	req := httptest.NewRequest(http.MethodGet, "/api/contact/health", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.2")
	hw := httptest.NewRecorder()
	r.ServeHTTP(hw, req)
	if hw.Code != http.StatusOK {
		t.Fatalf("contact health status = %d, want 200", hw.Code)
	}
}

func TestRouter_HealthEndpoints(t *testing.T) {
	r := newTestRouter(t, &recordingDispatcher{})

	for _, path := range []string{"/health", "/api/contact/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Accept-Encoding", "identity")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", path, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/contact/health", nil)
	req.Header.Set("Accept-Encoding", "identity")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "contact-api-ok" {
		t.Fatalf("status = %q", resp.Status)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := newTestRouter(t, &recordingDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestRouter_SecurityHeadersPresent(t *testing.T) {
	r := newTestRouter(t, &recordingDispatcher{})

	w := submit(t, r, "203.0.113.3")
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q", got)
	}
}
