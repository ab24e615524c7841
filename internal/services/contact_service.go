// Package services implements the contact-submission orchestration: the
// sequence validation → sanitization → encrypt-and-sign → audit record →
// email dispatch. The service is request-scoped and stateless; rate
// limiting runs upstream as route middleware, and the HTTP layer translates
// the kind-tagged errors returned here into wire responses.
package services

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/eqos-digital/contact-backend/internal/apperr"
	"github.com/eqos-digital/contact-backend/internal/contact"
	"github.com/eqos-digital/contact-backend/internal/crypto"
	"github.com/eqos-digital/contact-backend/internal/domain"
	"github.com/eqos-digital/contact-backend/internal/mail"
	"github.com/eqos-digital/contact-backend/internal/repo"
)

// ContactService sequences one contact submission end to end.
//
// AuditDB is optional: when nil, no audit rows are written. Audit inserts
// are best effort; a failed insert is logged and never fails the
// submission. AESKey and HMACSecret are the process-wide key material and
// must never be logged.
type ContactService struct {
	Dispatcher mail.Dispatcher
	AuditDB    *gorm.DB
	AESKey     string
	HMACSecret string
}

// Submit runs the pipeline for one raw submission on behalf of clientID.
//
// Returns the sanitized record on success. Failure cases:
//   - validation (including spam detection): KindValidation with the full
//     list of violations; spam is not distinguishable from other violations
//     in the returned details.
//   - encryption: KindCrypto.
//   - dispatch: KindMailDispatch or KindTimeout as classified by the adapter.
//
// Once dispatch has begun the submission runs to completion; server-side
// cancellation does not interrupt it mid-send.
func (s *ContactService) Submit(ctx context.Context, lg *zerolog.Logger, clientID string, sub domain.ContactSubmission) (domain.SanitizedContact, error) {
	if errs := contact.Validate(sub); len(errs) > 0 {
		return domain.SanitizedContact{}, apperr.Validation(errs)
	}

	clean := contact.Sanitize(sub)

	payload, err := json.Marshal(clean)
	if err != nil {
		return domain.SanitizedContact{}, apperr.Wrap(apperr.KindCrypto, "payload serialization failed", err)
	}

	encrypted, err := crypto.EncryptAndSign(string(payload), s.AESKey, s.HMACSecret)
	if err != nil {
		return domain.SanitizedContact{}, err
	}

	// Tamper-evident audit trail: emitted to logs, optionally persisted,
	// and attached to the outbound email. Never shown to the submitter.
	lg.Info().
		Str("client_id", clientID).
		Str("audit_payload", encrypted).
		Msg("submission encrypted")

	if s.AuditDB != nil {
		if _, err := repo.CreateAuditRecord(ctx, s.AuditDB, clientID, encrypted); err != nil {
			lg.Error().Err(err).Str("client_id", clientID).Msg("audit record insert failed")
		}
	}

	if err := s.Dispatcher.Dispatch(ctx, clean, encrypted, clientID); err != nil {
		return domain.SanitizedContact{}, err
	}

	return clean, nil
}
