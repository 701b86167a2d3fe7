package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/collegeman/travel-journal/internal/domain"
)

// CollaboratorRepo defines the persistence operations for trip collaborators.
type CollaboratorRepo interface {
	// ListByTrip returns all collaborators of a trip (owner excluded — the
	// owner is implicit on the trip row), joined with their user profile.
	ListByTrip(ctx context.Context, tripID int64) ([]domain.Collaborator, error)

	// Add links a user to a trip with the given role. Adding a user who is
	// already a collaborator updates their role.
	Add(ctx context.Context, tripID, userID int64, role domain.Role) (domain.Collaborator, error)

	// Remove unlinks a user from a trip.
	// Returns domain.ErrNotFound if the user is not a collaborator.
	Remove(ctx context.Context, tripID, userID int64) error

	// RoleFor returns the user's effective role on the trip: RoleOwner for
	// the trip owner, the stored role for a collaborator, or
	// domain.ErrNotFound when the user has no access at all.
	RoleFor(ctx context.Context, tripID, userID int64) (domain.Role, error)
}

// pgCollaboratorRepo is the Postgres implementation of CollaboratorRepo.
type pgCollaboratorRepo struct {
	db db
}

// NewCollaboratorRepo constructs a CollaboratorRepo backed by the provided db.
func NewCollaboratorRepo(db db) CollaboratorRepo {
	return &pgCollaboratorRepo{db: db}
}

// ListByTrip returns the trip's collaborators with user details, oldest first.
func (r *pgCollaboratorRepo) ListByTrip(ctx context.Context, tripID int64) ([]domain.Collaborator, error) {
	const q = `
		SELECT c.trip_id, c.user_id, u.email, u.display_name, c.role, c.created_at
		FROM trip_collaborators c
		JOIN users u ON u.id = c.user_id
		WHERE c.trip_id = @trip_id
		ORDER BY c.created_at ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.CollaboratorRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var collabs []domain.Collaborator
	for rows.Next() {
		c, err := scanCollaborator(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CollaboratorRepo.ListByTrip: scan: %w", err)
		}
		collabs = append(collabs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CollaboratorRepo.ListByTrip: rows: %w", err)
	}

	return collabs, nil
}

// Add upserts the collaborator link and returns the joined record.
func (r *pgCollaboratorRepo) Add(ctx context.Context, tripID, userID int64, role domain.Role) (domain.Collaborator, error) {
	const q = `
		INSERT INTO trip_collaborators (trip_id, user_id, role)
		VALUES (@trip_id, @user_id, @role)
		ON CONFLICT (trip_id, user_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING trip_id, user_id,
			(SELECT email FROM users WHERE id = @user_id),
			(SELECT display_name FROM users WHERE id = @user_id),
			role, created_at`

	args := pgx.NamedArgs{
		"trip_id": tripID,
		"user_id": userID,
		"role":    string(role),
	}

	c, err := scanCollaborator(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Collaborator{}, fmt.Errorf("repo.CollaboratorRepo.Add: %w", err)
	}
	return c, nil
}

// Remove unlinks a user from a trip.
func (r *pgCollaboratorRepo) Remove(ctx context.Context, tripID, userID int64) error {
	const q = `DELETE FROM trip_collaborators WHERE trip_id = @trip_id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.CollaboratorRepo.Remove: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CollaboratorRepo.Remove: %w", domain.ErrNotFound)
	}
	return nil
}

// RoleFor resolves the user's effective role on a trip in one round trip.
func (r *pgCollaboratorRepo) RoleFor(ctx context.Context, tripID, userID int64) (domain.Role, error) {
	const q = `
		SELECT CASE
			WHEN t.owner_id = @user_id THEN 'owner'
			ELSE c.role
		END
		FROM trips t
		LEFT JOIN trip_collaborators c ON c.trip_id = t.id AND c.user_id = @user_id
		WHERE t.id = @trip_id`

	var role *string
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "user_id": userID}).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Trip does not exist.
			return "", fmt.Errorf("repo.CollaboratorRepo.RoleFor: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("repo.CollaboratorRepo.RoleFor: %w", err)
	}
	if role == nil {
		// Trip exists but the user is neither owner nor collaborator.
		return "", fmt.Errorf("repo.CollaboratorRepo.RoleFor: %w", domain.ErrNotFound)
	}

	return domain.Role(*role), nil
}

// scanCollaborator maps a single database row into a domain.Collaborator.
func scanCollaborator(s scanner) (domain.Collaborator, error) {
	var (
		c    domain.Collaborator
		role string
	)

	err := s.Scan(&c.TripID, &c.UserID, &c.Email, &c.DisplayName, &role, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Collaborator{}, domain.ErrNotFound
		}
		return domain.Collaborator{}, err
	}

	c.Role = domain.Role(role)
	return c, nil
}
