package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/newscraft/capi-ingest/internal/domain"
	"github.com/newscraft/capi-ingest/internal/infra/database/models"
)

type AuthKeyRepository struct {
	db *gorm.DB
}

func NewAuthKeyRepository(db *gorm.DB) *AuthKeyRepository {
	return &AuthKeyRepository{db: db}
}

// SecretByName returns the secret for an active key. Inactive and unknown
// names are indistinguishable to callers.
func (r *AuthKeyRepository) SecretByName(ctx context.Context, keyName string) (string, error) {
	var row models.APIKey
	err := r.db.WithContext(ctx).
		Where("name = ? AND active = ?", keyName, true).
		Take(&row).Error
	if err == gorm.ErrRecordNotFound {
		return "", domain.NotFoundError{Resource: "auth key"}
	}
	if err != nil {
		return "", err
	}
	return row.Secret, nil
}
