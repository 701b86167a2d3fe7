package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/collegeman/travel-journal/internal/domain"
)

// UserRepo defines the persistence operations for user accounts.
// Account creation and profile management live in a separate system; the API
// only needs lookups for authentication and collaborator invitations, plus a
// create used by tests and seed tooling.
type UserRepo interface {
	// GetByToken retrieves the user holding the given API token.
	// Returns domain.ErrNotFound if no user holds it.
	GetByToken(ctx context.Context, token uuid.UUID) (domain.User, error)

	// GetByEmail retrieves a user by email address.
	// Returns domain.ErrNotFound if no account exists for that address.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// Create inserts a new user with a freshly generated API token.
	Create(ctx context.Context, email, displayName string) (domain.User, error)
}

// pgUserRepo is the Postgres implementation of UserRepo.
type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

const userColumns = `id, email, display_name, api_token, created_at`

// GetByToken retrieves the user holding the given API token.
func (r *pgUserRepo) GetByToken(ctx context.Context, token uuid.UUID) (domain.User, error) {
	const q = `
		SELECT ` + userColumns + `
		FROM users
		WHERE api_token = @token`

	u, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"token": token}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByToken: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email address.
func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const q = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = @email`

	u, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": email}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", err)
	}
	return u, nil
}

// Create inserts a new user, generating the API token client-side so the
// caller can hand it to the new account holder exactly once.
func (r *pgUserRepo) Create(ctx context.Context, email, displayName string) (domain.User, error) {
	const q = `
		INSERT INTO users (email, display_name, api_token)
		VALUES (@email, @display_name, @api_token)
		RETURNING ` + userColumns

	args := pgx.NamedArgs{
		"email":        email,
		"display_name": displayName,
		"api_token":    uuid.New(),
	}

	u, err := scanUser(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", err)
	}
	return u, nil
}

// scanUser maps a single database row into a domain.User.
// It handles the UUID token conversion.
func scanUser(s scanner) (domain.User, error) {
	var (
		u     domain.User
		token pgtype.UUID
	)

	err := s.Scan(&u.ID, &u.Email, &u.DisplayName, &token, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}

	u.APIToken = uuid.UUID(token.Bytes)
	return u, nil
}
