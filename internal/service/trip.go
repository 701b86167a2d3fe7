package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/repo"
)

// TripService implements business logic for Trip operations.
// Trip updates append a trip.updated event inline; trip create and delete are
// not evented because the feed is scoped to the trip itself — there is nobody
// subscribed before a trip exists or after it is gone.
type TripService struct {
	trips  repo.TripRepo
	roles  repo.CollaboratorRepo
	events repo.EventRepo
}

// NewTripService constructs a TripService backed by the provided repos.
func NewTripService(trips repo.TripRepo, roles repo.CollaboratorRepo, events repo.EventRepo) *TripService {
	return &TripService{trips: trips, roles: roles, events: events}
}

// Create validates and persists a new trip owned by the acting user.
func (s *TripService) Create(ctx context.Context, userID int64, trip domain.Trip) (domain.Trip, error) {
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	trip.OwnerID = userID

	result, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single trip, enforcing viewer access.
func (s *TripService) GetByID(ctx context.Context, userID, tripID int64) (domain.Trip, error) {
	if err := requireViewer(ctx, s.roles, tripID, userID); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	result, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// ListForUser returns the trips the user owns or collaborates on.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) ListForUser(ctx context.Context, userID int64) ([]domain.Trip, error) {
	trips, err := s.trips.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListForUser: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// Update validates and persists changes to a trip, then appends a
// trip.updated event so other viewers refresh.
func (s *TripService) Update(ctx context.Context, userID int64, trip domain.Trip) (domain.Trip, error) {
	if err := requireEditor(ctx, s.roles, trip.ID, userID); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}

	result, err := s.trips.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	_, err = s.events.Append(ctx, repo.AppendEvent{
		TripID:     result.ID,
		EventType:  domain.EventTypeFor(domain.ObjectTrip, domain.VerbUpdated),
		ObjectType: domain.ObjectTrip,
		ObjectID:   result.ID,
		UserID:     userID,
		Payload:    map[string]any{"title": result.Name},
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: append event: %w", err)
	}

	return result, nil
}

// Delete removes a trip. Only the owner may delete it.
func (s *TripService) Delete(ctx context.Context, userID, tripID int64) error {
	if err := requireOwner(ctx, s.roles, tripID, userID); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if err := s.trips.Delete(ctx, tripID); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// validateTrip enforces business rules common to Create and Update.
func validateTrip(trip domain.Trip) error {
	if strings.TrimSpace(trip.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return nil
}
