package repository

import (
	"context"
	"encoding/json"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/newscraft/capi-ingest/internal/domain"
	"github.com/newscraft/capi-ingest/internal/usecase"
)

// CachedCollections is a memcached read-through wrapper over a collection
// reader. Only the query surface uses it; the ingest pipeline reads and writes
// the database directly so it always observes fresh state. A collection
// tombstoned after a cache fill stays visible to readers until its entry
// expires.
type CachedCollections struct {
	inner usecase.CollectionReader
	mc    *memcache.Client
	ttl   int32
}

func NewCachedCollections(inner usecase.CollectionReader, mc *memcache.Client, ttlSeconds int32) *CachedCollections {
	return &CachedCollections{
		inner: inner,
		mc:    mc,
		ttl:   ttlSeconds,
	}
}

func (c *CachedCollections) Get(ctx context.Context, collectionID string) (*domain.CollectionRecord, error) {
	key := "collection:" + collectionID

	if item, err := c.mc.Get(key); err == nil {
		var record domain.CollectionRecord
		if err := json.Unmarshal(item.Value, &record); err == nil {
			return &record, nil
		}
		// Corrupt cache entries fall through to the database.
	}

	record, err := c.inner.Get(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(record); err == nil {
		// Best effort; a cache write failure never fails the read.
		_ = c.mc.Set(&memcache.Item{Key: key, Value: encoded, Expiration: c.ttl})
	}

	return record, nil
}
