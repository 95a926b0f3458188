package usecase

import (
	"context"

	"github.com/newscraft/capi-ingest/internal/domain"
)

// CollectionReader looks up persisted collection records.
type CollectionReader interface {
	Get(ctx context.Context, collectionID string) (*domain.CollectionRecord, error)
}

// CollectionRepository defines storage operations for collection records.
type CollectionRepository interface {
	CollectionReader
	// Upsert atomically inserts or refreshes the record keyed by collection id.
	Upsert(ctx context.Context, record *domain.CollectionRecord) error
	// WritePlaceholder overwrites the simplified payload, article count, event
	// id and updated timestamp of an existing record. It reports whether a row
	// was updated; a missing row is not an error.
	WritePlaceholder(ctx context.Context, collectionID, eventID, placeholderJSON string) (bool, error)
}

// AuditRepository appends audit rows. One row per request, always.
type AuditRepository interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
}

// KeyVerifier checks an inbound webhook key against the configured secret.
type KeyVerifier interface {
	Verify(ctx context.Context, keyName, presented string) (bool, error)
}

// ContentGateway fetches full collection documents from the content API. The
// raw body is returned alongside the decoded document so it can be persisted
// verbatim.
type ContentGateway interface {
	FetchCollection(ctx context.Context, collectionID string) (*domain.CollectionDocument, []byte, error)
}

// EventPublisher announces processed notifications to downstream listeners.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.IngestEvent) error
}
