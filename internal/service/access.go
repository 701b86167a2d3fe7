package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/repo"
)

// requireViewer returns nil when the user may view the trip (owner or any
// collaborator). A trip the user cannot see and a trip that does not exist
// both map to domain.ErrForbidden so that probing cannot distinguish them.
func requireViewer(ctx context.Context, roles repo.CollaboratorRepo, tripID, userID int64) error {
	_, err := roles.RoleFor(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrForbidden
		}
		return fmt.Errorf("check trip access: %w", err)
	}
	return nil
}

// requireEditor returns nil when the user may mutate trip content
// (owner or contributor). Viewers and strangers get domain.ErrForbidden.
func requireEditor(ctx context.Context, roles repo.CollaboratorRepo, tripID, userID int64) error {
	role, err := roles.RoleFor(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrForbidden
		}
		return fmt.Errorf("check trip access: %w", err)
	}
	if !role.CanEdit() {
		return domain.ErrForbidden
	}
	return nil
}

// requireOwner returns nil only for the trip owner.
func requireOwner(ctx context.Context, roles repo.CollaboratorRepo, tripID, userID int64) error {
	role, err := roles.RoleFor(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrForbidden
		}
		return fmt.Errorf("check trip access: %w", err)
	}
	if role != domain.RoleOwner {
		return domain.ErrForbidden
	}
	return nil
}
