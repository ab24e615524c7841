// Contact HTTP handlers.
//
// This file exposes the public contact endpoints:
//   - POST /contact/send    (submit a contact form)
//   - GET  /contact/health  (liveness probe for the contact API)
//
// Handlers are transport-thin: they bind input, call the submission service,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eqos-digital/contact-backend/internal/domain"
	"github.com/eqos-digital/contact-backend/internal/http/middleware"
)

// ContactService defines the submission pipeline consumed by HTTP handlers.
//
// Implementations must be safe for concurrent use and honor the provided
// context for cancellation and timeouts.
type ContactService interface {
	// Submit validates, sanitizes, encrypts, and dispatches one submission
	// on behalf of clientID.
	Submit(ctx context.Context, lg *zerolog.Logger, clientID string, sub domain.ContactSubmission) (domain.SanitizedContact, error)
}

// Handlers groups the contact HTTP endpoints. dev widens error responses
// with an underlying-cause detail; never enable it in production.
type Handlers struct {
	svc ContactService
	dev bool
}

// New constructs a Handlers instance bound to the given service.
func New(svc ContactService, dev bool) *Handlers {
	return &Handlers{svc: svc, dev: dev}
}

// SendContact godoc
// @ID          sendContact
// @Summary     Submit the contact form
// @Description Validates and sanitizes the submission, encrypts the audit payload, and dispatches a notification email. Rate limited per client.
// @Tags        Contact
// @Accept      json
// @Produce     json
//
// @Param       body  body  domain.ContactSubmission  true  "Contact form payload"
//
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     400  {object}  handlers.ValidationErrorResponse  "Validation failed"
// @Failure     408  {object}  handlers.ErrorResponse            "Dispatch timeout"
// @Failure     429  {object}  handlers.ErrorResponse            "Rate limit exceeded"
// @Failure     500  {object}  handlers.ErrorResponse            "Dispatch failure"
// @Router      /contact/send [post]
func (h *Handlers) SendContact(c *gin.Context) {
	var sub domain.ContactSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		middleware.ObserveSubmission("validation_failed")
		c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	lg := middleware.LoggerFrom(c)
	clientID := middleware.ClientID(c)

	clean, err := h.svc.Submit(c.Request.Context(), lg, clientID, sub)
	if err != nil {
		h.respondError(c, err)
		return
	}

	middleware.ObserveSubmission("accepted")
	lg.Info().
		Str("client_id", clientID).
		Str("email", clean.Email).
		Msg("contact submission dispatched")

	ok(c, http.StatusOK, SuccessResponse{
		Success:   true,
		Message:   "Message sent successfully",
		Timestamp: nowRFC3339(),
	})
}

// ContactHealth godoc
// @ID          contactHealth
// @Summary     Contact API liveness
// @Description Reports that the contact API is reachable.
// @Tags        Contact
// @Produce     json
//
// @Success     200  {object}  handlers.HealthResponse
// @Router      /contact/health [get]
func (h *Handlers) ContactHealth(c *gin.Context) {
	ok(c, http.StatusOK, HealthResponse{
		Status:    "contact-api-ok",
		Timestamp: nowRFC3339(),
	})
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
