// Audit-record repository functions. Thin by design: persistence only,
// no business rules. Inserts are issued by the orchestrator on a
// best-effort basis; callers decide whether a failure matters.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eqos-digital/contact-backend/internal/domain"
)

// CreateAuditRecord inserts one ciphertext audit row for an accepted
// submission and returns the stored record.
func CreateAuditRecord(ctx context.Context, db *gorm.DB, clientID, payload string) (*domain.AuditRecord, error) {
	rec := &domain.AuditRecord{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// ListAuditRecords returns up to limit audit rows for clientID, newest
// first. Used by operator tooling, not by the request path.
func ListAuditRecords(ctx context.Context, db *gorm.DB, clientID string, limit int) ([]domain.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var recs []domain.AuditRecord
	err := db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// CountAuditRecords reports the total number of audit rows.
func CountAuditRecords(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.AuditRecord{}).Count(&n).Error
	return n, err
}
