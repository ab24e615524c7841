// Package contact implements structural validation, spam detection, and
// sanitization for contact-form submissions. Validation accumulates every
// violated rule so callers can display all problems at once; sanitization
// must only run on input that already validated.
package contact

import (
	"regexp"
	"strings"

	"github.com/eqos-digital/contact-backend/internal/domain"
)

// Field bounds, measured on the trimmed value.
const (
	NameMinLen    = 2
	NameMaxLen    = 100
	SubjectMinLen = 3
	SubjectMaxLen = 200
	MessageMinLen = 10
	MessageMaxLen = 5000
)

// emailRe matches a standard local@domain.tld address.
var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// spamPatterns are the content signatures scanned against subject+message.
// A single match anywhere adds one generic error and stops further spam
// checks; the submitter is never told which signature fired.
var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)http[s]?://`),
	regexp.MustCompile(`(?i)www\.`),
	regexp.MustCompile(`(?i)\[url\]`),
	regexp.MustCompile(`(?i)<a href`),
	regexp.MustCompile(`(?i)buy now`),
	regexp.MustCompile(`(?i)cheap`),
	regexp.MustCompile(`(?i)viagra`),
	regexp.MustCompile(`(?i)casino`),
	regexp.MustCompile(`(?i)click here`),
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)onclick`),
}

// Validation error strings. Stable, user-displayable, one per violated rule.
const (
	errNameRequired    = "name is required"
	errNameLength      = "name must be between 2 and 100 characters"
	errEmailInvalid    = "a valid email address is required"
	errSubjectRequired = "subject is required"
	errSubjectLength   = "subject must be between 3 and 200 characters"
	errMessageRequired = "message is required"
	errMessageLength   = "message must be between 10 and 5000 characters"
	errSuspicious      = "suspicious content detected"
)

// Validate checks sub against the field rules and the spam heuristic and
// returns the accumulated list of violations. An empty slice means valid.
// Validate is pure: calling it twice on the same input yields identical
// results.
func Validate(sub domain.ContactSubmission) []string {
	var errs []string

	switch n := len([]rune(strings.TrimSpace(sub.Name))); {
	case n == 0:
		errs = append(errs, errNameRequired)
	case n < NameMinLen || n > NameMaxLen:
		errs = append(errs, errNameLength)
	}

	if !emailRe.MatchString(sub.Email) {
		errs = append(errs, errEmailInvalid)
	}

	switch n := len([]rune(strings.TrimSpace(sub.Subject))); {
	case n == 0:
		errs = append(errs, errSubjectRequired)
	case n < SubjectMinLen || n > SubjectMaxLen:
		errs = append(errs, errSubjectLength)
	}

	switch n := len([]rune(strings.TrimSpace(sub.Message))); {
	case n == 0:
		errs = append(errs, errMessageRequired)
	case n < MessageMinLen || n > MessageMaxLen:
		errs = append(errs, errMessageLength)
	}

	fullText := strings.ToLower(sub.Subject + " " + sub.Message)
	for _, p := range spamPatterns {
		if p.MatchString(fullText) {
			errs = append(errs, errSuspicious)
			break
		}
	}

	return errs
}
