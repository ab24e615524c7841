// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response envelopes and the central error responder.
// Pipeline errors carry a classification kind; respondError maps each kind to
// a status code and a generic, non-leaking body. Validation failures are the
// only errors whose details reach the client.
//
// Example failure response:
//
//	HTTP/1.1 500 Internal Server Error
//	{
//	  "error": "Failed to send message",
//	  "timestamp": "2026-08-28T10:15:04Z",
//	  "statusCode": 500
//	}
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eqos-digital/contact-backend/internal/apperr"
	"github.com/eqos-digital/contact-backend/internal/http/middleware"
)

// SuccessResponse acknowledges an accepted submission.
type SuccessResponse struct {
	Success   bool   `json:"success" example:"true"`
	Message   string `json:"message" example:"Message sent successfully"`
	Timestamp string `json:"timestamp" example:"2026-08-28T10:15:04Z"`
}

// ValidationErrorResponse reports rejected input with the full list of
// violations, so a client can surface every problem at once.
type ValidationErrorResponse struct {
	Error   string   `json:"error" example:"Validation failed"`
	Details []string `json:"details" example:"name is required"`
}

// ErrorResponse is the generic failure envelope. The error text never
// exposes pipeline internals; Detail carries the underlying cause in
// development environments only.
type ErrorResponse struct {
	Error      string `json:"error" example:"Failed to send message"`
	Timestamp  string `json:"timestamp" example:"2026-08-28T10:15:04Z"`
	StatusCode int    `json:"statusCode" example:"500"`
	Detail     string `json:"detail,omitempty"`
}

// HealthResponse is the liveness envelope for the contact API.
type HealthResponse struct {
	Status    string `json:"status" example:"contact-api-ok"`
	Timestamp string `json:"timestamp" example:"2026-08-28T10:15:04Z"`
}

// nowRFC3339 formats the current UTC time the way every envelope carries it.
func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// fail writes the generic error envelope and stops further processing.
// cause is only disclosed in development configurations.
func (h *Handlers) fail(c *gin.Context, status int, msg string, cause error) {
	resp := ErrorResponse{
		Error:      msg,
		Timestamp:  nowRFC3339(),
		StatusCode: status,
	}
	if h.dev && cause != nil {
		resp.Detail = cause.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}

// respondError translates a pipeline error into the wire contract and records
// the outcome metric. Unknown errors are treated as internal.
func (h *Handlers) respondError(c *gin.Context, err error) {
	lg := middleware.LoggerFrom(c)

	switch kind := apperr.KindOf(err); kind {
	case apperr.KindValidation:
		details := apperr.DetailsOf(err)
		lg.Warn().Strs("violations", details).Msg("submission rejected")
		middleware.ObserveSubmission("validation_failed")
		c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:   "Validation failed",
			Details: details,
		})
	case apperr.KindCrypto, apperr.KindIntegrity:
		lg.Error().Err(err).Str("kind", kind.String()).Msg("payload protection failed")
		middleware.ObserveSubmission("crypto_failed")
		h.fail(c, http.StatusBadRequest, "Invalid request", err)
	case apperr.KindTimeout:
		lg.Error().Err(err).Msg("dispatch timed out")
		middleware.ObserveSubmission("dispatch_timeout")
		h.fail(c, http.StatusRequestTimeout, "Request timeout", err)
	case apperr.KindMailDispatch:
		lg.Error().Err(err).Msg("dispatch failed")
		middleware.ObserveSubmission("dispatch_failed")
		h.fail(c, http.StatusInternalServerError, "Failed to send message", err)
	default:
		lg.Error().Err(err).Msg("submission failed")
		middleware.ObserveSubmission("internal_error")
		h.fail(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
