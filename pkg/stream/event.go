// Package stream provides the client-side transport for a trip's live event
// feed. It consumes the server's SSE endpoint, transparently falls back to
// polling after repeated stream failures, and fans decoded events out to
// subscribers by object kind.
//
// The package is self-contained: it speaks the wire protocol only, so
// programs outside this repository can import it without pulling in the
// server's internal packages.
package stream

import "time"

// Event is the wire shape of one feed event, identical in both SSE frames
// and poll responses.
type Event struct {
	ID         int64          `json:"id"`
	TripID     int64          `json:"trip_id"`
	EventType  string         `json:"event_type"`
	ObjectType string         `json:"object_type"`
	ObjectID   int64          `json:"object_id"`
	UserID     int64          `json:"user_id"`
	Payload    map[string]any `json:"payload"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Kind is the routing key for subscriptions: one of the tracked object kinds
// or KindAny. Using a closed set instead of raw strings keeps subscriber
// wiring typo-proof.
type Kind string

const (
	KindTrip         Kind = "trip"
	KindStop         Kind = "stop"
	KindEntry        Kind = "entry"
	KindExpense      Kind = "expense"
	KindSong         Kind = "song"
	KindMedia        Kind = "media"
	KindCollaborator Kind = "collaborator"

	// KindAny subscribes to every event regardless of object kind.
	KindAny Kind = "*"
)
