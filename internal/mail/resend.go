// Package mail is the external collaborator boundary for email dispatch.
// It renders the operator notification and sends it through the Resend
// transactional-email API. A dispatch is a single attempt bounded by a
// context deadline; this package never retries, and provider error text
// never propagates beyond the returned kind-tagged error's wrapped cause.
package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/eqos-digital/contact-backend/internal/apperr"
	"github.com/eqos-digital/contact-backend/internal/domain"
)

// Dispatcher sends the operator notification for one sanitized submission.
// Implementations must be safe for concurrent use.
type Dispatcher interface {
	Dispatch(ctx context.Context, contact domain.SanitizedContact, encryptedPayload, clientID string) error
}

// sender is the slice of the Resend SDK the dispatcher needs. The client's
// Emails service satisfies it; tests substitute a fake.
type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendDispatcher sends notifications through the Resend API.
type ResendDispatcher struct {
	emails  sender
	from    string
	to      string
	timeout time.Duration
}

// NewResendDispatcher builds a dispatcher for the given API key. from is
// the verified sender address, to the operator inbox, and timeout the
// per-dispatch bound (exceeding it classifies as a timeout failure).
func NewResendDispatcher(apiKey, from, to string, timeout time.Duration) *ResendDispatcher {
	client := resend.NewClient(apiKey)
	return &ResendDispatcher{
		emails:  client.Emails,
		from:    from,
		to:      to,
		timeout: timeout,
	}
}

// Dispatch renders and sends the notification email. The submitter's
// address becomes the reply-to so the operator can answer directly.
func (d *ResendDispatcher) Dispatch(ctx context.Context, contact domain.SanitizedContact, encryptedPayload, clientID string) error {
	n := notification{
		Contact:  contact,
		ClientID: clientID,
		Payload:  encryptedPayload,
		Preview:  previewOf(encryptedPayload),
	}

	html, err := renderHTML(n)
	if err != nil {
		return apperr.Wrap(apperr.KindMailDispatch, "notification rendering failed", err)
	}
	text, err := renderText(n)
	if err != nil {
		return apperr.Wrap(apperr.KindMailDispatch, "notification rendering failed", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	_, err = d.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    fmt.Sprintf("E-QOS Contact <%s>", d.from),
		To:      []string{d.to},
		ReplyTo: contact.Email,
		Subject: fmt.Sprintf("[SECURE] E-QOS: %s", contact.Subject),
		Html:    html,
		Text:    text,
	})
	return classify(err)
}

// classify maps a provider/transport failure to its error kind at the point
// of failure. Deadline overruns become timeouts; everything else is a
// generic dispatch failure whose provider text stays wrapped, never shown
// to the submitter.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.KindTimeout, "email dispatch timed out", err)
	}
	return apperr.Wrap(apperr.KindMailDispatch, "email dispatch failed", err)
}
