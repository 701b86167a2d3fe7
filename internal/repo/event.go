// Package repo contains all database access logic for the travel journal API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/collegeman/travel-journal/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AppendEvent carries the caller-supplied fields of a new event row.
// The id and created_at are generated server-side on insert.
type AppendEvent struct {
	TripID     int64
	EventType  string
	ObjectType domain.ObjectType
	ObjectID   int64
	UserID     int64
	Payload    map[string]any
}

// EventRepo defines the persistence operations for the append-only event log.
// Rows are never updated; the only delete path is Cleanup.
type EventRepo interface {
	// Append inserts one event row with a database-generated timestamp and
	// returns its id. Concurrent appends for unrelated trips never serialize
	// against each other.
	Append(ctx context.Context, e AppendEvent) (int64, error)

	// QuerySince returns the trip's events with created_at strictly greater
	// than since, ordered by (created_at, id) ascending, capped at limit.
	// A truncated batch is not an error — callers re-query with the last
	// returned timestamp as the new cursor.
	QuerySince(ctx context.Context, tripID int64, since time.Time, limit int) ([]domain.Event, error)

	// Cleanup deletes all events older than the retention horizon, across all
	// trips, and returns the number of rows removed. It is idempotent and safe
	// to run concurrently with appends and queries.
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}

// pgEventRepo is the Postgres implementation of EventRepo.
type pgEventRepo struct {
	db db
}

// NewEventRepo constructs an EventRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewEventRepo(db db) EventRepo {
	return &pgEventRepo{db: db}
}

// Append inserts one event row and returns its database-generated id.
func (r *pgEventRepo) Append(ctx context.Context, e AppendEvent) (int64, error) {
	const q = `
		INSERT INTO events (trip_id, event_type, object_type, object_id, user_id, payload)
		VALUES (@trip_id, @event_type, @object_type, @object_id, @user_id, @payload)
		RETURNING id`

	payload, err := json.Marshal(orEmpty(e.Payload))
	if err != nil {
		return 0, fmt.Errorf("repo.EventRepo.Append: marshal payload: %w", err)
	}

	args := pgx.NamedArgs{
		"trip_id":     e.TripID,
		"event_type":  e.EventType,
		"object_type": string(e.ObjectType),
		"object_id":   e.ObjectID,
		"user_id":     e.UserID,
		"payload":     payload,
	}

	var id int64
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		return 0, fmt.Errorf("repo.EventRepo.Append: %w", err)
	}
	return id, nil
}

// QuerySince returns events newer than since for one trip, oldest first.
func (r *pgEventRepo) QuerySince(ctx context.Context, tripID int64, since time.Time, limit int) ([]domain.Event, error) {
	const q = `
		SELECT id, trip_id, event_type, object_type, object_id, user_id, payload, created_at
		FROM events
		WHERE trip_id = @trip_id AND created_at > @since
		ORDER BY created_at ASC, id ASC
		LIMIT @limit`

	args := pgx.NamedArgs{
		"trip_id": tripID,
		"since":   since,
		"limit":   limit,
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.QuerySince: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.EventRepo.QuerySince: scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.EventRepo.QuerySince: rows: %w", err)
	}

	return events, nil
}

// Cleanup removes all events past the retention horizon and returns the count.
func (r *pgEventRepo) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	const q = `DELETE FROM events WHERE created_at < @cutoff`

	cutoff := time.Now().UTC().Add(-retention)
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"cutoff": cutoff})
	if err != nil {
		return 0, fmt.Errorf("repo.EventRepo.Cleanup: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scan helpers to
// be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanEvent maps a single database row into a domain.Event, decoding the
// JSONB payload column.
func scanEvent(s scanner) (domain.Event, error) {
	var (
		e       domain.Event
		objType string
		payload []byte
	)

	err := s.Scan(&e.ID, &e.TripID, &e.EventType, &objType, &e.ObjectID, &e.UserID, &payload, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrNotFound
		}
		return domain.Event{}, err
	}

	e.ObjectType = domain.ObjectType(objType)
	e.Payload = map[string]any{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &e.Payload); err != nil {
			return domain.Event{}, fmt.Errorf("decode payload: %w", err)
		}
	}
	e.CreatedAt = e.CreatedAt.UTC()

	return e, nil
}

// orEmpty substitutes an empty map for a nil payload so the column is always
// a JSON object, never SQL NULL.
func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
