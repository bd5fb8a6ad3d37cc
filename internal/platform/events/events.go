// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package events carries catalog domain events to interested listeners.

Emission is fire-and-forget: a [Sink] never returns an error to the action that
produced the event, and no delivery or ordering guarantee is made. The
production sink publishes JSON documents on a Redis Pub/Sub channel.
*/
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type names a domain event.
type Type string

const (
	MangaCreated Type = "manga.created"
	MangaUpdated Type = "manga.updated"
	MangaDeleted Type = "manga.deleted"

	ChapterCreated Type = "chapter.created"
	ChapterUpdated Type = "chapter.updated"
	ChapterDeleted Type = "chapter.deleted"

	UserCreated Type = "user.created"
	UserUpdated Type = "user.updated"
	UserDeleted Type = "user.deleted"

	RatingChanged Type = "rating.changed"
)

// Event is the envelope published for every domain change.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	EntityID   int64     `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// New stamps an event with a time-ordered id and the current time.
func New(eventType Type, entityID int64, payload any) Event {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return Event{
		ID:         id.String(),
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Sink receives domain events. Implementations must not block the caller on
// slow consumers and must swallow their own failures.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// # In-Process Sinks

// Discard is a [Sink] that drops every event.
type Discard struct{}

// Emit implements [Sink].
func (Discard) Emit(context.Context, Event) {}

// Recorder is a [Sink] that keeps events in memory, in emission order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements [Sink].
func (recorder *Recorder) Emit(_ context.Context, event Event) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.events = append(recorder.events, event)
}

// Events returns a copy of everything recorded so far.
func (recorder *Recorder) Events() []Event {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return append([]Event(nil), recorder.events...)
}

// Types returns the recorded event types, in order.
func (recorder *Recorder) Types() []Type {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()

	types := make([]Type, 0, len(recorder.events))
	for _, event := range recorder.events {
		types = append(types, event.Type)
	}
	return types
}
