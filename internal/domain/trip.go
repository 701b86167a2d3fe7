// Package domain contains the core data types for the travel journal API.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, handler).
package domain

import "time"

// Trip is the top-level aggregate. Every other tracked object (stops,
// journal items, media) carries a back-reference to its owning trip, and the
// event feed is partitioned by trip.
type Trip struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stop represents a single location visited during a trip.
// DepartedAt is nil when the traveller is still at this stop.
type Stop struct {
	ID         int64      `json:"id"`
	TripID     int64      `json:"trip_id"`
	Name       string     `json:"name"`
	Location   string     `json:"location,omitempty"`
	ArrivedAt  time.Time  `json:"arrived_at"`
	DepartedAt *time.Time `json:"departed_at,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
