package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/repo"
)

// CollaboratorService implements business logic for trip collaborator
// management. Invitations are by email and require an existing account.
// Both add and remove append their collaborator events inline.
type CollaboratorService struct {
	collabs repo.CollaboratorRepo
	users   repo.UserRepo
	events  repo.EventRepo
}

// NewCollaboratorService constructs a CollaboratorService backed by the
// provided repos.
func NewCollaboratorService(collabs repo.CollaboratorRepo, users repo.UserRepo, events repo.EventRepo) *CollaboratorService {
	return &CollaboratorService{collabs: collabs, users: users, events: events}
}

// ListByTrip returns the trip's collaborators, gated on view access.
// Always returns a non-nil slice so callers can safely range over it.
func (s *CollaboratorService) ListByTrip(ctx context.Context, userID, tripID int64) ([]domain.Collaborator, error) {
	if err := requireViewer(ctx, s.collabs, tripID, userID); err != nil {
		return nil, fmt.Errorf("service.CollaboratorService.ListByTrip: %w", err)
	}
	collabs, err := s.collabs.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.CollaboratorService.ListByTrip: %w", err)
	}
	if collabs == nil {
		return []domain.Collaborator{}, nil
	}
	return collabs, nil
}

// Invite adds the user holding the given email address as a collaborator and
// appends a collaborator.added event. The invited address must belong to an
// existing account.
func (s *CollaboratorService) Invite(ctx context.Context, actorID, tripID int64, email string, role domain.Role) (domain.Collaborator, error) {
	if err := requireEditor(ctx, s.collabs, tripID, actorID); err != nil {
		return domain.Collaborator{}, fmt.Errorf("service.CollaboratorService.Invite: %w", err)
	}
	if !role.Valid() {
		return domain.Collaborator{}, fmt.Errorf("%w: role must be contributor or viewer", domain.ErrValidation)
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.Collaborator{}, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Collaborator{}, fmt.Errorf("%w: no account for %s", domain.ErrValidation, email)
		}
		return domain.Collaborator{}, fmt.Errorf("service.CollaboratorService.Invite: %w", err)
	}

	collab, err := s.collabs.Add(ctx, tripID, user.ID, role)
	if err != nil {
		return domain.Collaborator{}, fmt.Errorf("service.CollaboratorService.Invite: %w", err)
	}

	_, err = s.events.Append(ctx, repo.AppendEvent{
		TripID:     tripID,
		EventType:  domain.EventTypeFor(domain.ObjectCollaborator, domain.VerbAdded),
		ObjectType: domain.ObjectCollaborator,
		ObjectID:   user.ID,
		UserID:     actorID,
		Payload:    map[string]any{"email": user.Email, "role": string(role)},
	})
	if err != nil {
		return domain.Collaborator{}, fmt.Errorf("service.CollaboratorService.Invite: append event: %w", err)
	}

	return collab, nil
}

// Remove unlinks a collaborator and appends a collaborator.removed event.
func (s *CollaboratorService) Remove(ctx context.Context, actorID, tripID, userID int64) error {
	if err := requireEditor(ctx, s.collabs, tripID, actorID); err != nil {
		return fmt.Errorf("service.CollaboratorService.Remove: %w", err)
	}

	if err := s.collabs.Remove(ctx, tripID, userID); err != nil {
		return fmt.Errorf("service.CollaboratorService.Remove: %w", err)
	}

	_, err := s.events.Append(ctx, repo.AppendEvent{
		TripID:     tripID,
		EventType:  domain.EventTypeFor(domain.ObjectCollaborator, domain.VerbRemoved),
		ObjectType: domain.ObjectCollaborator,
		ObjectID:   userID,
		UserID:     actorID,
		Payload:    map[string]any{},
	})
	if err != nil {
		return fmt.Errorf("service.CollaboratorService.Remove: append event: %w", err)
	}

	return nil
}
