package domain

import "time"

// ItemKind distinguishes the three journal item kinds that share one table.
// Each kind maps 1:1 to an event ObjectType.
type ItemKind string

const (
	ItemEntry   ItemKind = "entry"
	ItemExpense ItemKind = "expense"
	ItemSong    ItemKind = "song"
)

// Valid reports whether k is a known journal item kind.
func (k ItemKind) Valid() bool {
	return k == ItemEntry || k == ItemExpense || k == ItemSong
}

// ObjectType returns the event routing kind for this item kind.
func (k ItemKind) ObjectType() ObjectType {
	return ObjectType(k)
}

// Item is a journal entry, expense record, or song attached to a trip.
// The three kinds share a shape: a title plus free-form body text.
type Item struct {
	ID        int64     `json:"id"`
	TripID    int64     `json:"trip_id"`
	Kind      ItemKind  `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Media is an uploaded attachment record. It may be attached to a trip
// directly, to another tracked object (ParentKind/ParentID), or carry its
// own TripID back-reference. Trip resolution walks those in order.
type Media struct {
	ID         int64       `json:"id"`
	TripID     *int64      `json:"trip_id,omitempty"`
	ParentKind *ObjectType `json:"parent_kind,omitempty"`
	ParentID   *int64      `json:"parent_id,omitempty"`
	Filename   string      `json:"filename"`
	MimeType   string      `json:"mime_type,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}
