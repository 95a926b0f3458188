package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/newscraft/capi-ingest/internal/domain"
	"github.com/newscraft/capi-ingest/internal/infra/database/models"
)

type CollectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func (r *CollectionRepository) Get(ctx context.Context, collectionID string) (*domain.CollectionRecord, error) {
	var row models.Collection
	err := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Take(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.NotFoundError{Resource: "collection"}
	}
	if err != nil {
		return nil, err
	}

	record := toDomain(row)
	return &record, nil
}

// Upsert refreshes the record in one statement. Concurrent notifications for
// the same collection id serialize on the primary key instead of racing a
// lookup-then-insert.
func (r *CollectionRepository) Upsert(ctx context.Context, record *domain.CollectionRecord) error {
	now := time.Now()
	row := models.Collection{
		CollectionID:   record.CollectionID,
		RawJSON:        record.RawJSON,
		Source:         record.Source,
		EventID:        record.EventID,
		SimplifiedJSON: record.SimplifiedJSON,
		Headline:       record.Headline,
		ArticleCount:   record.ArticleCount,
		MDate:          now,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "collection_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"raw_json":        row.RawJSON,
			"source":          row.Source,
			"event_id":        row.EventID,
			"simplified_json": row.SimplifiedJSON,
			"headline":        row.Headline,
			"article_count":   row.ArticleCount,
			"m_date":          now,
		}),
	}).Create(&row).Error
}

// WritePlaceholder overwrites only the simplified payload, article count,
// event id and modified timestamp of an existing row. Raw document and
// headline stay as they were; a missing row is a no-op.
func (r *CollectionRepository) WritePlaceholder(ctx context.Context, collectionID, eventID, placeholderJSON string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Collection{}).
		Where("collection_id = ?", collectionID).
		Updates(map[string]any{
			"simplified_json": placeholderJSON,
			"article_count":   0,
			"event_id":        eventID,
			"m_date":          time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func toDomain(row models.Collection) domain.CollectionRecord {
	return domain.CollectionRecord{
		CollectionID:   row.CollectionID,
		RawJSON:        row.RawJSON,
		Source:         row.Source,
		EventID:        row.EventID,
		SimplifiedJSON: row.SimplifiedJSON,
		Headline:       row.Headline,
		ArticleCount:   row.ArticleCount,
		CreatedAt:      row.CDate,
		UpdatedAt:      row.MDate,
	}
}
