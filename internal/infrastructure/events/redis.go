package events

import (
	"context"
	"encoding/json"

	domain "loan-ledger-backend/internal/domain/loan"

	"github.com/redis/go-redis/v9"
)

const DefaultStream = "loan:events"

// StreamPublisher appends domain events to a Redis stream for external
// indexers. Entries carry the event name and a JSON payload; consumers
// use consumer groups and their own offsets, nothing is read back here.
type StreamPublisher struct {
	rdb    *redis.Client
	stream string
}

func NewStreamPublisher(rdb *redis.Client, stream string) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPublisher{rdb: rdb, stream: stream}
}

func (p *StreamPublisher) Publish(ctx context.Context, ev domain.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event":   ev.Name(),
			"payload": payload,
		},
	}).Err()
}
