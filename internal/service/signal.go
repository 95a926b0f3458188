package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/newscraft/capi-ingest/internal/domain"
)

// EventChannel is the redis pub/sub channel carrying ingest events.
const EventChannel = "capi:ingest:events"

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event domain.IngestEvent) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, EventChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime fans ingest events out to one websocket client. The input channel
// replaces the set of collection ids the client listens to; an empty set means
// everything. Returns when ctx is cancelled.
func (s *SignalService) Realtime(ctx context.Context, input <-chan []string, output chan<- domain.IngestEvent) {

	pubsub := s.rdb.Subscribe(ctx, EventChannel)
	defer pubsub.Close()

	listened := map[string]struct{}{}

	for {
		select {
		case <-ctx.Done():
			return
		case ids, ok := <-input:
			if !ok {
				return
			}
			listened = map[string]struct{}{}
			for _, id := range ids {
				listened[id] = struct{}{}
			}
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var event domain.IngestEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(ctx, "malformed ingest event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			if len(listened) > 0 {
				if _, ok := listened[event.CollectionID]; !ok {
					continue
				}
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
