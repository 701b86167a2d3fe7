package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/collegeman/travel-journal/internal/domain"
)

// StopRepo defines the persistence operations for Stops.
// All reads and deletes are scoped to a trip so one trip's stops can never be
// addressed through another trip's URL space.
type StopRepo interface {
	// Create inserts a new stop and returns the persisted record.
	Create(ctx context.Context, stop domain.Stop) (domain.Stop, error)

	// GetByID retrieves a single stop by id, scoped to tripID.
	// Returns domain.ErrNotFound if no such stop exists under that trip.
	GetByID(ctx context.Context, tripID, stopID int64) (domain.Stop, error)

	// ListByTripID returns all stops for a trip ordered by arrived_at ascending.
	ListByTripID(ctx context.Context, tripID int64) ([]domain.Stop, error)

	// Update overwrites the mutable fields of an existing stop and returns
	// the updated record. Returns domain.ErrNotFound if it does not exist.
	Update(ctx context.Context, stop domain.Stop) (domain.Stop, error)

	// Delete removes a stop by id, scoped to tripID.
	// Returns domain.ErrNotFound if it does not exist under that trip.
	Delete(ctx context.Context, tripID, stopID int64) error
}

// pgStopRepo is the Postgres implementation of StopRepo.
type pgStopRepo struct {
	db db
}

// NewStopRepo constructs a StopRepo backed by the provided db connection.
func NewStopRepo(db db) StopRepo {
	return &pgStopRepo{db: db}
}

const stopColumns = `id, trip_id, name, location, arrived_at, departed_at, notes, created_at, updated_at`

// Create inserts a new stop row and returns the full persisted record.
func (r *pgStopRepo) Create(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	const q = `
		INSERT INTO stops (trip_id, name, location, arrived_at, departed_at, notes)
		VALUES (@trip_id, @name, @location, @arrived_at, @departed_at, @notes)
		RETURNING ` + stopColumns

	args := pgx.NamedArgs{
		"trip_id":     stop.TripID,
		"name":        stop.Name,
		"location":    stop.Location,
		"arrived_at":  stop.ArrivedAt,
		"departed_at": stop.DepartedAt, // nil becomes NULL
		"notes":       stop.Notes,
	}

	result, err := scanStop(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a stop by primary key, scoped to its trip.
func (r *pgStopRepo) GetByID(ctx context.Context, tripID, stopID int64) (domain.Stop, error) {
	const q = `
		SELECT ` + stopColumns + `
		FROM stops
		WHERE id = @id AND trip_id = @trip_id`

	result, err := scanStop(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": stopID, "trip_id": tripID}))
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByTripID returns all stops for a trip in visit order.
func (r *pgStopRepo) ListByTripID(ctx context.Context, tripID int64) ([]domain.Stop, error) {
	const q = `
		SELECT ` + stopColumns + `
		FROM stops
		WHERE trip_id = @trip_id
		ORDER BY arrived_at ASC, id ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	var stops []domain.Stop
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StopRepo.ListByTripID: scan: %w", err)
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByTripID: rows: %w", err)
	}

	return stops, nil
}

// Update overwrites the mutable fields of a stop and returns the updated record.
func (r *pgStopRepo) Update(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	const q = `
		UPDATE stops
		SET name        = @name,
		    location    = @location,
		    arrived_at  = @arrived_at,
		    departed_at = @departed_at,
		    notes       = @notes,
		    updated_at  = now()
		WHERE id = @id AND trip_id = @trip_id
		RETURNING ` + stopColumns

	args := pgx.NamedArgs{
		"id":          stop.ID,
		"trip_id":     stop.TripID,
		"name":        stop.Name,
		"location":    stop.Location,
		"arrived_at":  stop.ArrivedAt,
		"departed_at": stop.DepartedAt,
		"notes":       stop.Notes,
	}

	result, err := scanStop(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a stop by primary key, scoped to its trip.
func (r *pgStopRepo) Delete(ctx context.Context, tripID, stopID int64) error {
	const q = `DELETE FROM stops WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": stopID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.StopRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.StopRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanStop maps a single database row into a domain.Stop.
// It handles the nullable departed_at conversion.
func scanStop(s scanner) (domain.Stop, error) {
	var (
		st       domain.Stop
		departed pgtype.Timestamptz
	)

	err := s.Scan(&st.ID, &st.TripID, &st.Name, &st.Location, &st.ArrivedAt,
		&departed, &st.Notes, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Stop{}, domain.ErrNotFound
		}
		return domain.Stop{}, err
	}

	if departed.Valid {
		d := departed.Time
		st.DepartedAt = &d
	}

	return st, nil
}
