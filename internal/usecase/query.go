package usecase

import (
	"context"

	"github.com/newscraft/capi-ingest/internal/domain"
)

// QueryUsecase serves persisted collection records to downstream consumers.
type QueryUsecase struct {
	collections CollectionReader
}

func NewQueryUsecase(collections CollectionReader) *QueryUsecase {
	return &QueryUsecase{collections: collections}
}

func (uc *QueryUsecase) Get(ctx context.Context, collectionID string) (*domain.CollectionRecord, error) {
	return uc.collections.Get(ctx, collectionID)
}
