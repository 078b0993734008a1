package eventsink

import (
	"context"
	"sync"

	domain "loan-ledger-backend/internal/domain/loan"
)

// Recorder collects published domain events so tests can assert on them.
type Recorder struct {
	PublishFn func(ctx context.Context, ev domain.Event) error

	mu     sync.Mutex
	events []domain.Event
}

func (r *Recorder) Publish(ctx context.Context, ev domain.Event) error {
	if r.PublishFn != nil {
		return r.PublishFn(ctx, ev)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Event(nil), r.events...)
}

func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Name())
	}
	return out
}
