package service

import (
	"context"
	"fmt"
	"time"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/repo"
)

// FeedService mediates read access to a trip's event feed. The delivery loop
// authorizes once at handshake time and then queries the log on every tick,
// so authorization and querying are separate operations here.
type FeedService struct {
	events repo.EventRepo
	roles  repo.CollaboratorRepo
}

// NewFeedService constructs a FeedService backed by the provided repos.
func NewFeedService(events repo.EventRepo, roles repo.CollaboratorRepo) *FeedService {
	return &FeedService{events: events, roles: roles}
}

// Authorize returns nil when the user may read the trip's feed (owner or any
// collaborator), domain.ErrForbidden otherwise. Called before any log access
// so an unauthorized request can never leak partial data.
func (s *FeedService) Authorize(ctx context.Context, userID, tripID int64) error {
	if err := requireViewer(ctx, s.roles, tripID, userID); err != nil {
		return fmt.Errorf("service.FeedService.Authorize: %w", err)
	}
	return nil
}

// QuerySince returns the trip's events strictly newer than since, oldest
// first, capped at limit. Callers must be authorized beforehand.
func (s *FeedService) QuerySince(ctx context.Context, tripID int64, since time.Time, limit int) ([]domain.Event, error) {
	events, err := s.events.QuerySince(ctx, tripID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("service.FeedService.QuerySince: %w", err)
	}
	if events == nil {
		return []domain.Event{}, nil
	}
	return events, nil
}
