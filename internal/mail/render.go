// Notification rendering for the operator email. Templates receive already
// sanitized fields; html/template escapes them again on output, so even a
// sanitizer regression cannot inject markup into the notification.
package mail

import (
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/eqos-digital/contact-backend/internal/domain"
)

// payloadPreviewLen caps how much of the encrypted payload appears in the
// HTML body. The full payload is always present in the plain-text part.
const payloadPreviewLen = 100

// notification is the data handed to both templates.
type notification struct {
	Contact  domain.SanitizedContact
	ClientID string
	Payload  string
	Preview  string
}

var htmlTmpl = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto;">
    <div style="background: #1e464a; color: #fff; padding: 24px; border-radius: 8px 8px 0 0;">
      <h1 style="font-size: 20px; margin: 0;">New Secure Contact Message</h1>
      <p style="margin: 6px 0 0;">E-QOS | African Digital Platform</p>
    </div>
    <div style="background: #fff; padding: 24px; border: 1px solid #e2e8f0; border-top: 0;">
      <p><strong>Name:</strong> {{.Contact.Name}}</p>
      <p><strong>Email:</strong> {{.Contact.Email}}</p>
      <p><strong>Subject:</strong> {{.Contact.Subject}}</p>
      <p><strong>Date:</strong> {{.Contact.Timestamp}}</p>
      <p><strong>Source IP:</strong> {{.ClientID}}</p>
      <h3 style="color: #1e464a;">Message</h3>
      <div style="background: #f8f9fa; padding: 16px; border-radius: 6px; white-space: pre-wrap;">{{.Contact.Message}}</div>
      <div style="background: #ecfdf5; padding: 12px; border-left: 4px solid #10b981; font-size: 12px; margin-top: 16px;">
        <strong>Secured message</strong> — encrypted with AES-256-GCM and protected by HMAC-SHA256.
      </div>
      <div style="background: #fff7ed; padding: 12px; border-left: 4px solid #f59e0b; font-size: 11px; margin-top: 12px;">
        <strong>Encrypted payload (preview)</strong>
        <p style="word-break: break-all; font-family: 'Courier New', monospace;">{{.Preview}}…</p>
        <p>Verify payload integrity (HMAC-SHA256) before acting on it.</p>
      </div>
      <p style="color: #666; font-size: 12px; border-top: 1px solid #e2e8f0; padding-top: 12px; margin-top: 16px;">
        Generated automatically by the E-QOS secure contact form. Reply directly to the contact, not to this address.
      </p>
    </div>
  </div>
</body>
</html>
`))

var textTmpl = texttemplate.Must(texttemplate.New("notification").Parse(`New E-QOS contact message (secured)

From: {{.Contact.Name}} <{{.Contact.Email}}>
Subject: {{.Contact.Subject}}
Date: {{.Contact.Timestamp}}
IP: {{.ClientID}}

Message:
{{.Contact.Message}}

---
Encrypted payload (AES-256-GCM + HMAC-SHA256):
{{.Payload}}

---
Generated automatically by the E-QOS secure contact form.
`))

// renderHTML renders the HTML notification body.
func renderHTML(n notification) (string, error) {
	var b strings.Builder
	if err := htmlTmpl.Execute(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

// renderText renders the plain-text notification body.
func renderText(n notification) (string, error) {
	var b strings.Builder
	if err := textTmpl.Execute(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

// previewOf truncates the encrypted payload for the HTML body.
func previewOf(payload string) string {
	if len(payload) <= payloadPreviewLen {
		return payload
	}
	return payload[:payloadPreviewLen]
}
