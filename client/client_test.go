package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eqos-digital/contact-backend/internal/domain"
)

func validSubmission() domain.ContactSubmission {
	return domain.ContactSubmission{
		Name:    "Alice Example",
		Email:   "alice@example.com",
		Subject: "Partnership inquiry",
		Message: "We would like to discuss a potential collaboration.",
	}
}

func TestSubmit_Success(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/api/contact/send" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"Message sent successfully","timestamp":"2026-08-28T10:15:04Z"}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/api", WithCooldown(0))
	res, err := c.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Message != "Message sent successfully" {
		t.Fatalf("message = %q", res.Message)
	}
	if hits != 1 {
		t.Fatalf("server hits = %d", hits)
	}
}

func TestSubmit_LocalValidationBlocksNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("server must not be reached for invalid input")
	}))
	defer srv.Close()

	sub := validSubmission()
	sub.Email = "not-an-email"
	sub.Message = "short"

	_, err := New(srv.URL+"/api", WithCooldown(0)).Submit(context.Background(), sub)
	se, ok := err.(*SubmitError)
	if !ok || se.Kind != FailureInvalidInput {
		t.Fatalf("err = %v, want invalid-input SubmitError", err)
	}
	if len(se.Details) != 2 {
		t.Fatalf("details = %v, want two violations", se.Details)
	}
	if se.UserMessage() == "" {
		t.Fatal("expected a user message")
	}
}

func TestSubmit_Cooldown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"ok","timestamp":"2026-08-28T10:15:04Z"}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/api") // default 3s cooldown
	if _, err := c.Submit(context.Background(), validSubmission()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := c.Submit(context.Background(), validSubmission())
	se, ok := err.(*SubmitError)
	if !ok || se.Kind != FailureCooldown {
		t.Fatalf("err = %v, want cooldown SubmitError", err)
	}
}

func TestSubmit_ServerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"Too many requests","message":"Rate limit exceeded. Please try again later.","retryAfter":60,"resetTime":"2026-08-28T10:20:00Z"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL+"/api", WithCooldown(0)).Submit(context.Background(), validSubmission())
	se, ok := err.(*SubmitError)
	if !ok || se.Kind != FailureRejected {
		t.Fatalf("err = %v, want rejected SubmitError", err)
	}
	if se.Status != http.StatusTooManyRequests {
		t.Fatalf("status = %d", se.Status)
	}
	if se.UserMessage() != "You have sent several messages recently. Please try again later." {
		t.Fatalf("user message = %q", se.UserMessage())
	}
}

func TestSubmit_ServerValidationDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Validation failed","details":["suspicious content detected"]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL+"/api", WithCooldown(0)).Submit(context.Background(), validSubmission())
	se, ok := err.(*SubmitError)
	if !ok || se.Kind != FailureRejected {
		t.Fatalf("err = %v, want rejected SubmitError", err)
	}
	if len(se.Details) != 1 || se.Details[0] != "suspicious content detected" {
		t.Fatalf("details = %v", se.Details)
	}
}

func TestSubmit_NonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream error</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL+"/api", WithCooldown(0)).Submit(context.Background(), validSubmission())
	se, ok := err.(*SubmitError)
	if !ok || se.Kind != FailureBadResponse {
		t.Fatalf("err = %v, want bad-response SubmitError", err)
	}
}

func TestSubmit_NetworkFailure(t *testing.T) {
	// Reserve a port, then close the listener so connections are refused.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url+"/api", WithCooldown(0)).Submit(context.Background(), validSubmission())
	se, ok := err.(*SubmitError)
	if !ok || se.Kind != FailureNetwork {
		t.Fatalf("err = %v, want network SubmitError", err)
	}
}

func TestSubmit_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL+"/api", WithCooldown(0))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Submit(ctx, validSubmission())
	se, ok := err.(*SubmitError)
	if !ok || se.Kind != FailureTimeout {
		t.Fatalf("err = %v, want timeout SubmitError", err)
	}
}
