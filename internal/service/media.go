package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/repo"
)

// MediaService implements business logic for media attachment records.
// Both creation and deletion route through the EventProducer, which owns the
// attachment trip-resolution chain. A record that resolves to no trip is
// still stored — it just never produces events.
type MediaService struct {
	media    repo.MediaRepo
	roles    repo.CollaboratorRepo
	producer *EventProducer
}

// NewMediaService constructs a MediaService backed by the provided repos.
func NewMediaService(media repo.MediaRepo, roles repo.CollaboratorRepo, producer *EventProducer) *MediaService {
	return &MediaService{media: media, roles: roles, producer: producer}
}

// Create validates and persists a new attachment record, then produces its
// media.created event. When the attachment resolves to a trip, the acting
// user must have edit access on it.
func (s *MediaService) Create(ctx context.Context, userID int64, m domain.Media) (domain.Media, error) {
	if strings.TrimSpace(m.Filename) == "" {
		return domain.Media{}, fmt.Errorf("%w: filename is required", domain.ErrValidation)
	}
	if m.ParentKind != nil && !m.ParentKind.Valid() {
		return domain.Media{}, fmt.Errorf("%w: unknown parent kind %q", domain.ErrValidation, *m.ParentKind)
	}

	tripID, ok, err := s.producer.ResolveMediaTrip(ctx, m)
	if err != nil {
		return domain.Media{}, fmt.Errorf("service.MediaService.Create: %w", err)
	}
	if ok {
		if err := requireEditor(ctx, s.roles, tripID, userID); err != nil {
			return domain.Media{}, fmt.Errorf("service.MediaService.Create: %w", err)
		}
	}

	result, err := s.media.Create(ctx, m)
	if err != nil {
		return domain.Media{}, fmt.Errorf("service.MediaService.Create: %w", err)
	}

	if err := s.producer.MediaCreated(ctx, result, userID); err != nil {
		return domain.Media{}, fmt.Errorf("service.MediaService.Create: %w", err)
	}
	return result, nil
}

// ListByTripID returns a trip's directly anchored media records.
func (s *MediaService) ListByTripID(ctx context.Context, userID, tripID int64) ([]domain.Media, error) {
	if err := requireViewer(ctx, s.roles, tripID, userID); err != nil {
		return nil, fmt.Errorf("service.MediaService.ListByTripID: %w", err)
	}
	media, err := s.media.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.MediaService.ListByTripID: %w", err)
	}
	if media == nil {
		return []domain.Media{}, nil
	}
	return media, nil
}

// Delete removes an attachment record, producing its media.deleted event
// first so the resolution chain can still walk the parent reference.
func (s *MediaService) Delete(ctx context.Context, userID, mediaID int64) error {
	m, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		return fmt.Errorf("service.MediaService.Delete: %w", err)
	}

	tripID, ok, err := s.producer.ResolveMediaTrip(ctx, m)
	if err != nil {
		return fmt.Errorf("service.MediaService.Delete: %w", err)
	}
	if ok {
		if err := requireEditor(ctx, s.roles, tripID, userID); err != nil {
			return fmt.Errorf("service.MediaService.Delete: %w", err)
		}
	}

	if err := s.producer.MediaDeleted(ctx, m, userID); err != nil {
		return fmt.Errorf("service.MediaService.Delete: %w", err)
	}

	if err := s.media.Delete(ctx, mediaID); err != nil {
		return fmt.Errorf("service.MediaService.Delete: %w", err)
	}
	return nil
}
