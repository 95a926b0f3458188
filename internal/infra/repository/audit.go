package repository

import (
	"context"
	"fmt"

	"github.com/zeebo/xxh3"
	"gorm.io/gorm"

	"github.com/newscraft/capi-ingest/internal/domain"
	"github.com/newscraft/capi-ingest/internal/infra/database/models"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	row := newAuditRow(entry)
	return r.db.WithContext(ctx).Create(&row).Error
}

// newAuditRow carries the pipeline's own timestamp into c_date so the row
// records when the notification was processed, not when it was inserted. A
// zero CreatedAt falls back to the column default.
func newAuditRow(entry domain.AuditEntry) models.AuditEntry {
	return models.AuditEntry{
		EventID:       entry.EventID,
		CollectionID:  entry.CollectionID,
		Message:       entry.Message,
		Payload:       entry.Payload,
		PayloadDigest: fmt.Sprintf("%016x", xxh3.HashString(entry.Payload)),
		Stage:         entry.Stage,
		CDate:         entry.CreatedAt,
	}
}
