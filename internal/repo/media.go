package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/collegeman/travel-journal/internal/domain"
)

// MediaRepo defines the persistence operations for media attachment records.
// Media rows are loosely anchored: a row may point at a trip directly, at a
// parent object, or at nothing resolvable at all (an orphan, which simply
// produces no events).
type MediaRepo interface {
	// Create inserts a new media record and returns the persisted row.
	Create(ctx context.Context, m domain.Media) (domain.Media, error)

	// GetByID retrieves a media record by id.
	// Returns domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (domain.Media, error)

	// ListByTripID returns a trip's media records, oldest first.
	ListByTripID(ctx context.Context, tripID int64) ([]domain.Media, error)

	// Delete removes a media record by id.
	Delete(ctx context.Context, id int64) error
}

// pgMediaRepo is the Postgres implementation of MediaRepo.
type pgMediaRepo struct {
	db db
}

// NewMediaRepo constructs a MediaRepo backed by the provided db connection.
func NewMediaRepo(db db) MediaRepo {
	return &pgMediaRepo{db: db}
}

const mediaColumns = `id, trip_id, parent_kind, parent_id, filename, mime_type, created_at`

// Create inserts a new media row and returns the full persisted record.
func (r *pgMediaRepo) Create(ctx context.Context, m domain.Media) (domain.Media, error) {
	const q = `
		INSERT INTO media (trip_id, parent_kind, parent_id, filename, mime_type)
		VALUES (@trip_id, @parent_kind, @parent_id, @filename, @mime_type)
		RETURNING ` + mediaColumns

	var parentKind *string
	if m.ParentKind != nil {
		k := string(*m.ParentKind)
		parentKind = &k
	}

	args := pgx.NamedArgs{
		"trip_id":     m.TripID,
		"parent_kind": parentKind,
		"parent_id":   m.ParentID,
		"filename":    m.Filename,
		"mime_type":   m.MimeType,
	}

	result, err := scanMedia(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Media{}, fmt.Errorf("repo.MediaRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a media record by primary key.
func (r *pgMediaRepo) GetByID(ctx context.Context, id int64) (domain.Media, error) {
	const q = `
		SELECT ` + mediaColumns + `
		FROM media
		WHERE id = @id`

	result, err := scanMedia(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Media{}, fmt.Errorf("repo.MediaRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByTripID returns media records anchored to a trip, oldest first.
// Only rows with a direct trip_id back-reference are returned; rows anchored
// through a parent object are listed under that parent instead.
func (r *pgMediaRepo) ListByTripID(ctx context.Context, tripID int64) ([]domain.Media, error) {
	const q = `
		SELECT ` + mediaColumns + `
		FROM media
		WHERE trip_id = @trip_id
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.MediaRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	var media []domain.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.MediaRepo.ListByTripID: scan: %w", err)
		}
		media = append(media, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.MediaRepo.ListByTripID: rows: %w", err)
	}

	return media, nil
}

// Delete removes a media record by primary key.
func (r *pgMediaRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM media WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.MediaRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.MediaRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanMedia maps a single database row into a domain.Media, converting the
// three nullable anchor columns.
func scanMedia(s scanner) (domain.Media, error) {
	var (
		m          domain.Media
		tripID     pgtype.Int8
		parentKind pgtype.Text
		parentID   pgtype.Int8
	)

	err := s.Scan(&m.ID, &tripID, &parentKind, &parentID, &m.Filename, &m.MimeType, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Media{}, domain.ErrNotFound
		}
		return domain.Media{}, err
	}

	if tripID.Valid {
		v := tripID.Int64
		m.TripID = &v
	}
	if parentKind.Valid {
		k := domain.ObjectType(parentKind.String)
		m.ParentKind = &k
	}
	if parentID.Valid {
		v := parentID.Int64
		m.ParentID = &v
	}

	return m, nil
}
