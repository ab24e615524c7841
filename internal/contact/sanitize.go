package contact

import (
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"

	"github.com/eqos-digital/contact-backend/internal/domain"
)

// sanitizer strips every HTML element and attribute; only text survives.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize converts a validated submission into a SanitizedContact: each
// field is NFC-normalized, stripped of markup and scripts, and trimmed;
// the email is lower-cased; Timestamp is stamped server-side in UTC.
//
// Sanitize must only be called after Validate returned no errors.
func Sanitize(sub domain.ContactSubmission) domain.SanitizedContact {
	return domain.SanitizedContact{
		Name:      cleanField(sub.Name),
		Email:     strings.ToLower(cleanField(sub.Email)),
		Subject:   cleanField(sub.Subject),
		Message:   cleanField(sub.Message),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// cleanField normalizes to NFC, removes markup, and trims surrounding
// whitespace. bluemonday entity-escapes stray angle brackets; undo that so
// a plain "<" in free text survives as written.
func cleanField(s string) string {
	clean := sanitizer.Sanitize(norm.NFC.String(s))
	clean = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&#34;", `"`,
		"&#39;", "'",
	).Replace(clean)
	return strings.TrimSpace(clean)
}
