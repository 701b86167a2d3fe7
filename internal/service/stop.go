package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/repo"
)

// StopService implements business logic for Stop operations.
// Create and update append their events inline; deletion routes through the
// EventProducer so trip resolution and skip rules live in one place.
type StopService struct {
	stops    repo.StopRepo
	roles    repo.CollaboratorRepo
	events   repo.EventRepo
	producer *EventProducer
}

// NewStopService constructs a StopService backed by the provided repos.
func NewStopService(stops repo.StopRepo, roles repo.CollaboratorRepo, events repo.EventRepo, producer *EventProducer) *StopService {
	return &StopService{stops: stops, roles: roles, events: events, producer: producer}
}

// Create validates the stop, enforces edit access on the parent trip, then
// persists and appends a stop.created event.
func (s *StopService) Create(ctx context.Context, userID int64, stop domain.Stop) (domain.Stop, error) {
	if err := requireEditor(ctx, s.roles, stop.TripID, userID); err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Create: %w", err)
	}
	if err := validateStop(stop); err != nil {
		return domain.Stop{}, err
	}

	result, err := s.stops.Create(ctx, stop)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Create: %w", err)
	}

	if err := s.appendStopEvent(ctx, result, userID, domain.VerbCreated); err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single stop, scoped to the trip and gated on view access.
func (s *StopService) GetByID(ctx context.Context, userID, tripID, stopID int64) (domain.Stop, error) {
	if err := requireViewer(ctx, s.roles, tripID, userID); err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.GetByID: %w", err)
	}
	result, err := s.stops.GetByID(ctx, tripID, stopID)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.GetByID: %w", err)
	}
	return result, nil
}

// ListByTripID returns all stops for a trip ordered by arrived_at ascending.
// Always returns a non-nil slice so callers can safely range over it.
func (s *StopService) ListByTripID(ctx context.Context, userID, tripID int64) ([]domain.Stop, error) {
	if err := requireViewer(ctx, s.roles, tripID, userID); err != nil {
		return nil, fmt.Errorf("service.StopService.ListByTripID: %w", err)
	}
	stops, err := s.stops.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.StopService.ListByTripID: %w", err)
	}
	if stops == nil {
		return []domain.Stop{}, nil
	}
	return stops, nil
}

// Update validates and persists changes to a stop, then appends stop.updated.
func (s *StopService) Update(ctx context.Context, userID int64, stop domain.Stop) (domain.Stop, error) {
	if err := requireEditor(ctx, s.roles, stop.TripID, userID); err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Update: %w", err)
	}
	if err := validateStop(stop); err != nil {
		return domain.Stop{}, err
	}

	result, err := s.stops.Update(ctx, stop)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Update: %w", err)
	}

	if err := s.appendStopEvent(ctx, result, userID, domain.VerbUpdated); err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a stop. The delete event is produced before the row goes
// away so the producer can still resolve the trip back-reference.
func (s *StopService) Delete(ctx context.Context, userID, tripID, stopID int64) error {
	if err := requireEditor(ctx, s.roles, tripID, userID); err != nil {
		return fmt.Errorf("service.StopService.Delete: %w", err)
	}

	stop, err := s.stops.GetByID(ctx, tripID, stopID)
	if err != nil {
		return fmt.Errorf("service.StopService.Delete: %w", err)
	}

	err = s.producer.ObjectDeleted(ctx, domain.ObjectStop, stop.ID, userID,
		map[string]any{"title": stop.Name})
	if err != nil {
		return fmt.Errorf("service.StopService.Delete: %w", err)
	}

	if err := s.stops.Delete(ctx, tripID, stopID); err != nil {
		return fmt.Errorf("service.StopService.Delete: %w", err)
	}
	return nil
}

func (s *StopService) appendStopEvent(ctx context.Context, stop domain.Stop, userID int64, verb string) error {
	_, err := s.events.Append(ctx, repo.AppendEvent{
		TripID:     stop.TripID,
		EventType:  domain.EventTypeFor(domain.ObjectStop, verb),
		ObjectType: domain.ObjectStop,
		ObjectID:   stop.ID,
		UserID:     userID,
		Payload:    map[string]any{"title": stop.Name},
	})
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// validateStop enforces business rules common to both Create and Update.
//   - Name must be non-empty (whitespace-only names are rejected).
//   - DepartedAt, if set, must not be before ArrivedAt.
func validateStop(stop domain.Stop) error {
	if strings.TrimSpace(stop.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if stop.DepartedAt != nil && stop.DepartedAt.Before(stop.ArrivedAt) {
		return fmt.Errorf("%w: departed_at must not be before arrived_at", domain.ErrValidation)
	}
	return nil
}
