// Package client provides a Go consumer for the contact API, mirroring the
// behavior of the website's contact form: input is validated locally before
// any network traffic, rapid resubmission is throttled by a short cooldown,
// and every failure is classified into a category with a message suitable
// for showing to an end user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/eqos-digital/contact-backend/internal/contact"
	"github.com/eqos-digital/contact-backend/internal/domain"
)

const (
	// defaultTimeout bounds one submission attempt end to end. Deliberately
	// longer than the server's dispatch bound so server-side timeouts surface
	// as classified responses rather than client aborts.
	defaultTimeout = 30 * time.Second

	// cooldownInterval is the minimum spacing between submissions from one
	// client instance. A burst of accidental double-clicks resolves locally
	// instead of consuming the server-side rate budget.
	cooldownInterval = 3 * time.Second
)

// FailureKind categorizes why a submission did not succeed.
type FailureKind int

const (
	// FailureInvalidInput: local validation rejected the form.
	FailureInvalidInput FailureKind = iota
	// FailureCooldown: submitted again too quickly after the previous attempt.
	FailureCooldown
	// FailureTimeout: the attempt exceeded the client deadline.
	FailureTimeout
	// FailureNetwork: the server could not be reached.
	FailureNetwork
	// FailureBadResponse: the server answered with something other than the
	// expected JSON contract.
	FailureBadResponse
	// FailureRejected: the server processed the request and rejected it
	// (validation, rate limit, or dispatch failure).
	FailureRejected
)

// SubmitError is the classified failure returned by Submit. Err carries the
// underlying cause for logs; UserMessage() is safe to display.
type SubmitError struct {
	Kind    FailureKind
	Details []string // populated for FailureInvalidInput and server validation rejections
	Status  int      // HTTP status for FailureRejected, zero otherwise
	Err     error
}

// Error implements the error interface.
func (e *SubmitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("contact submit: %v", e.Err)
	}
	return "contact submit failed"
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *SubmitError) Unwrap() error { return e.Err }

// UserMessage returns a non-technical message for the given failure.
func (e *SubmitError) UserMessage() string {
	switch e.Kind {
	case FailureInvalidInput:
		return "Please review the highlighted fields and try again."
	case FailureCooldown:
		return "Please wait a moment before sending another message."
	case FailureTimeout:
		return "Sending took too long. Please check your connection and try again."
	case FailureNetwork:
		return "We could not reach the server. Please try again in a moment."
	case FailureBadResponse:
		return "Something unexpected happened. Please try again later."
	default:
		if e.Status == http.StatusTooManyRequests {
			return "You have sent several messages recently. Please try again later."
		}
		return "Your message could not be sent right now. Please try again later."
	}
}

// Result is the acknowledgement for an accepted submission.
type Result struct {
	Message   string
	Timestamp string
}

// FormClient submits contact forms to the API. Safe for concurrent use; the
// cooldown applies across all goroutines sharing the instance.
type FormClient struct {
	baseURL string
	http    *http.Client
	cool    *rate.Limiter
}

// Option customizes a FormClient.
type Option func(*FormClient)

// WithHTTPClient replaces the underlying HTTP client. The client's Timeout
// is left untouched; Submit applies its own deadline via context.
func WithHTTPClient(h *http.Client) Option {
	return func(c *FormClient) { c.http = h }
}

// WithCooldown overrides the resubmission cooldown. Non-positive disables it.
func WithCooldown(d time.Duration) Option {
	return func(c *FormClient) {
		if d <= 0 {
			c.cool = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.cool = rate.NewLimiter(rate.Every(d), 1)
	}
}

// New builds a FormClient for the API at baseURL (e.g. "https://example.com/api").
func New(baseURL string, opts ...Option) *FormClient {
	c := &FormClient{
		baseURL: baseURL,
		http:    &http.Client{},
		cool:    rate.NewLimiter(rate.Every(cooldownInterval), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Submit validates sub locally, then posts it to the contact endpoint.
//
// Every return is a terminal state: either a Result acknowledging the
// submission or a *SubmitError classifying the failure. Local validation and
// the cooldown are checked before any network traffic.
func (c *FormClient) Submit(ctx context.Context, sub domain.ContactSubmission) (*Result, error) {
	if details := contact.Validate(sub); len(details) > 0 {
		return nil, &SubmitError{Kind: FailureInvalidInput, Details: details}
	}
	if !c.cool.Allow() {
		return nil, &SubmitError{Kind: FailureCooldown}
	}

	body, err := json.Marshal(sub)
	if err != nil {
		return nil, &SubmitError{Kind: FailureInvalidInput, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/contact/send", bytes.NewReader(body))
	if err != nil {
		return nil, &SubmitError{Kind: FailureBadResponse, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &SubmitError{Kind: FailureTimeout, Err: err}
		}
		return nil, &SubmitError{Kind: FailureNetwork, Err: err}
	}
	defer resp.Body.Close()

	return c.decode(resp)
}

// decode translates the server response into a Result or classified error.
func (c *FormClient) decode(resp *http.Response) (*Result, error) {
	if resp.StatusCode == http.StatusOK {
		var ack struct {
			Success   bool   `json:"success"`
			Message   string `json:"message"`
			Timestamp string `json:"timestamp"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil || !ack.Success {
			return nil, &SubmitError{Kind: FailureBadResponse, Err: err}
		}
		return &Result{Message: ack.Message, Timestamp: ack.Timestamp}, nil
	}

	var failure struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&failure); err != nil || failure.Error == "" {
		return nil, &SubmitError{
			Kind:   FailureBadResponse,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected response: status %d", resp.StatusCode),
		}
	}
	return nil, &SubmitError{
		Kind:    FailureRejected,
		Details: failure.Details,
		Status:  resp.StatusCode,
		Err:     errors.New(failure.Error),
	}
}
