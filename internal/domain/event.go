package domain

import "time"

// ObjectType identifies the kind of domain object an event refers to.
// The set is closed: clients route incoming events by this value, so adding
// a kind here means adding it to the stream package's Kind union as well.
type ObjectType string

const (
	ObjectTrip         ObjectType = "trip"
	ObjectStop         ObjectType = "stop"
	ObjectEntry        ObjectType = "entry"
	ObjectExpense      ObjectType = "expense"
	ObjectSong         ObjectType = "song"
	ObjectMedia        ObjectType = "media"
	ObjectCollaborator ObjectType = "collaborator"
)

// Valid reports whether o is one of the tracked object kinds.
func (o ObjectType) Valid() bool {
	switch o {
	case ObjectTrip, ObjectStop, ObjectEntry, ObjectExpense, ObjectSong,
		ObjectMedia, ObjectCollaborator:
		return true
	}
	return false
}

// Event verbs. Event types on the wire are "<object>.<verb>",
// e.g. "stop.created" or "collaborator.removed".
const (
	VerbCreated = "created"
	VerbUpdated = "updated"
	VerbDeleted = "deleted"
	VerbAdded   = "added"   // collaborator only
	VerbRemoved = "removed" // collaborator only
)

// EventTypeFor builds the "<object>.<verb>" discriminator used as the SSE
// frame name and stored in the event row.
func EventTypeFor(object ObjectType, verb string) string {
	return string(object) + "." + verb
}

// Event is one row of a trip's append-only activity feed.
// Events are immutable once written: they are never updated or reordered,
// only deleted wholesale by the retention sweeper.
//
// Payload is a small denormalized snapshot (title, filename) so clients can
// render a notification without a refetch. It is a hint, not a source of
// truth — consumers re-fetch the authoritative object when they need it.
type Event struct {
	ID         int64          `json:"id"`
	TripID     int64          `json:"trip_id"`
	EventType  string         `json:"event_type"`
	ObjectType ObjectType     `json:"object_type"`
	ObjectID   int64          `json:"object_id"`
	UserID     int64          `json:"user_id"` // 0 when system-triggered
	Payload    map[string]any `json:"payload"`
	CreatedAt  time.Time      `json:"created_at"`
}
