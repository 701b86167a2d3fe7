package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/collegeman/travel-journal/internal/domain"
)

// TripRefRepo resolves the owning trip of a tracked object by reading its
// trip_id back-reference. The event producer uses it when a mutation has no
// trip id in hand (deletions, media attachments).
type TripRefRepo interface {
	// TripIDForObject returns the trip owning the given object.
	// A trip resolves to its own id. Returns domain.ErrNotFound when the
	// object does not exist or carries no trip reference — callers treat
	// that as a normal skip, not an error condition.
	TripIDForObject(ctx context.Context, kind domain.ObjectType, objectID int64) (int64, error)
}

// pgTripRefRepo is the Postgres implementation of TripRefRepo.
type pgTripRefRepo struct {
	db db
}

// NewTripRefRepo constructs a TripRefRepo backed by the provided db connection.
func NewTripRefRepo(db db) TripRefRepo {
	return &pgTripRefRepo{db: db}
}

// TripIDForObject looks up the object's trip back-reference in the table for
// its kind.
func (r *pgTripRefRepo) TripIDForObject(ctx context.Context, kind domain.ObjectType, objectID int64) (int64, error) {
	var q string
	switch kind {
	case domain.ObjectTrip:
		q = `SELECT id FROM trips WHERE id = @id`
	case domain.ObjectStop:
		q = `SELECT trip_id FROM stops WHERE id = @id`
	case domain.ObjectEntry, domain.ObjectExpense, domain.ObjectSong:
		q = `SELECT trip_id FROM trip_items WHERE id = @id AND kind = @kind`
	case domain.ObjectMedia:
		q = `SELECT trip_id FROM media WHERE id = @id AND trip_id IS NOT NULL`
	default:
		return 0, fmt.Errorf("repo.TripRefRepo.TripIDForObject: kind %q: %w", kind, domain.ErrNotFound)
	}

	args := pgx.NamedArgs{"id": objectID, "kind": string(kind)}
	var tripID int64
	if err := r.db.QueryRow(ctx, q, args).Scan(&tripID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("repo.TripRefRepo.TripIDForObject: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("repo.TripRefRepo.TripIDForObject: %w", err)
	}

	return tripID, nil
}
