package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/collegeman/travel-journal/internal/domain"
)

// ItemRepo defines the persistence operations for journal items
// (entries, expenses, songs). The three kinds share one table, distinguished
// by the kind column.
type ItemRepo interface {
	// Create inserts a new item and returns the persisted record.
	Create(ctx context.Context, item domain.Item) (domain.Item, error)

	// GetByID retrieves a single item by id, scoped to tripID.
	// Returns domain.ErrNotFound if no such item exists under that trip.
	GetByID(ctx context.Context, tripID, itemID int64) (domain.Item, error)

	// ListByTripID returns a trip's items of one kind, oldest first.
	ListByTripID(ctx context.Context, tripID int64, kind domain.ItemKind) ([]domain.Item, error)

	// Update overwrites the mutable fields of an existing item and returns
	// the updated record. The kind column is immutable.
	Update(ctx context.Context, item domain.Item) (domain.Item, error)

	// Delete removes an item by id, scoped to tripID.
	Delete(ctx context.Context, tripID, itemID int64) error
}

// pgItemRepo is the Postgres implementation of ItemRepo.
type pgItemRepo struct {
	db db
}

// NewItemRepo constructs an ItemRepo backed by the provided db connection.
func NewItemRepo(db db) ItemRepo {
	return &pgItemRepo{db: db}
}

const itemColumns = `id, trip_id, kind, title, body, created_at, updated_at`

// Create inserts a new item row and returns the full persisted record.
func (r *pgItemRepo) Create(ctx context.Context, item domain.Item) (domain.Item, error) {
	const q = `
		INSERT INTO trip_items (trip_id, kind, title, body)
		VALUES (@trip_id, @kind, @title, @body)
		RETURNING ` + itemColumns

	args := pgx.NamedArgs{
		"trip_id": item.TripID,
		"kind":    string(item.Kind),
		"title":   item.Title,
		"body":    item.Body,
	}

	result, err := scanItem(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Item{}, fmt.Errorf("repo.ItemRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves an item by primary key, scoped to its trip.
func (r *pgItemRepo) GetByID(ctx context.Context, tripID, itemID int64) (domain.Item, error) {
	const q = `
		SELECT ` + itemColumns + `
		FROM trip_items
		WHERE id = @id AND trip_id = @trip_id`

	result, err := scanItem(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": itemID, "trip_id": tripID}))
	if err != nil {
		return domain.Item{}, fmt.Errorf("repo.ItemRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByTripID returns a trip's items of one kind, oldest first.
func (r *pgItemRepo) ListByTripID(ctx context.Context, tripID int64, kind domain.ItemKind) ([]domain.Item, error) {
	const q = `
		SELECT ` + itemColumns + `
		FROM trip_items
		WHERE trip_id = @trip_id AND kind = @kind
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID, "kind": string(kind)})
	if err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ItemRepo.ListByTripID: scan: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.ListByTripID: rows: %w", err)
	}

	return items, nil
}

// Update overwrites the mutable fields of an item and returns the updated record.
func (r *pgItemRepo) Update(ctx context.Context, item domain.Item) (domain.Item, error) {
	const q = `
		UPDATE trip_items
		SET title      = @title,
		    body       = @body,
		    updated_at = now()
		WHERE id = @id AND trip_id = @trip_id
		RETURNING ` + itemColumns

	args := pgx.NamedArgs{
		"id":      item.ID,
		"trip_id": item.TripID,
		"title":   item.Title,
		"body":    item.Body,
	}

	result, err := scanItem(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Item{}, fmt.Errorf("repo.ItemRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes an item by primary key, scoped to its trip.
func (r *pgItemRepo) Delete(ctx context.Context, tripID, itemID int64) error {
	const q = `DELETE FROM trip_items WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": itemID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.ItemRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ItemRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanItem maps a single database row into a domain.Item.
func scanItem(s scanner) (domain.Item, error) {
	var (
		it   domain.Item
		kind string
	)

	err := s.Scan(&it.ID, &it.TripID, &kind, &it.Title, &it.Body, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Item{}, domain.ErrNotFound
		}
		return domain.Item{}, err
	}

	it.Kind = domain.ItemKind(kind)
	return it, nil
}
