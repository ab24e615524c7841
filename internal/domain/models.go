// Package domain defines the wire and persistence types of the contact
// pipeline. ContactSubmission and SanitizedContact are request-scoped and
// never written to disk; AuditRecord is the optional ciphertext-only audit
// trail row mapped with GORM.
package domain

import "time"

// ContactSubmission is the raw contact-form payload as received on the wire.
// It exists only for the duration of one request and must not be persisted
// or logged field-by-field before validation and sanitization.
type ContactSubmission struct {
	Name    string `json:"name" example:"Jean Dupont"`
	Email   string `json:"email" example:"jean.dupont@email.com"`
	Subject string `json:"subject" example:"Partnership proposal"`
	Message string `json:"message" example:"I would like to discuss a partnership."`
}

// SanitizedContact is a ContactSubmission after structural validation,
// HTML sanitization, trimming and email lower-casing. Timestamp is assigned
// server-side at sanitization time (RFC 3339, UTC).
//
// Invariant: every field already passed validation before this record is
// constructed; constructing one from unvalidated input is a bug.
type SanitizedContact struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// AuditRecord is one tamper-evident audit row per accepted submission.
// Payload holds the encrypted-and-signed form of the sanitized record
// ("iv:tag:cipher||hmac"); no plaintext submission data is ever stored.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - ClientID: rate-limit identity of the submitter (usually an IP).
//   - Payload: the encrypted audit payload, opaque once written.
//   - CreatedAt: insert time, managed by GORM.
type AuditRecord struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	ClientID  string    `json:"client_id" gorm:"type:varchar(64);not null;index"`
	Payload   string    `json:"payload"   gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for AuditRecord.
func (AuditRecord) TableName() string { return "audit_records" }
