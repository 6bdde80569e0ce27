// Package events publishes booking lifecycle events to the message broker.
package events

import (
	"context"
	"sync"
	"time"
)

const (
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
)

type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id"`
	UserID      string    `json:"user_id"`
	TestCode    string    `json:"test_code"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Noop struct{}

func (Noop) PublishJSON(ctx context.Context, key string, v any) error {
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Published
}

type Published struct {
	Key     string
	Payload any
}

func (r *Recorder) PublishJSON(ctx context.Context, key string, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{Key: key, Payload: v})
	return nil
}

func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Published, len(r.events))
	copy(out, r.events)
	return out
}
