package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/repo"
)

// ItemService implements business logic for journal items (entries, expenses,
// songs). Events are typed by the item's kind, e.g. an expense update appends
// expense.updated.
type ItemService struct {
	items    repo.ItemRepo
	roles    repo.CollaboratorRepo
	events   repo.EventRepo
	producer *EventProducer
}

// NewItemService constructs an ItemService backed by the provided repos.
func NewItemService(items repo.ItemRepo, roles repo.CollaboratorRepo, events repo.EventRepo, producer *EventProducer) *ItemService {
	return &ItemService{items: items, roles: roles, events: events, producer: producer}
}

// Create validates the item, enforces edit access, persists, and appends a
// "<kind>.created" event.
func (s *ItemService) Create(ctx context.Context, userID int64, item domain.Item) (domain.Item, error) {
	if err := requireEditor(ctx, s.roles, item.TripID, userID); err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.Create: %w", err)
	}
	if err := validateItem(item); err != nil {
		return domain.Item{}, err
	}

	result, err := s.items.Create(ctx, item)
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.Create: %w", err)
	}

	if err := s.appendItemEvent(ctx, result, userID, domain.VerbCreated); err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single item, scoped to the trip and gated on view access.
func (s *ItemService) GetByID(ctx context.Context, userID, tripID, itemID int64) (domain.Item, error) {
	if err := requireViewer(ctx, s.roles, tripID, userID); err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.GetByID: %w", err)
	}
	result, err := s.items.GetByID(ctx, tripID, itemID)
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.GetByID: %w", err)
	}
	return result, nil
}

// ListByTripID returns a trip's items of one kind, oldest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ItemService) ListByTripID(ctx context.Context, userID, tripID int64, kind domain.ItemKind) ([]domain.Item, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown item kind %q", domain.ErrValidation, kind)
	}
	if err := requireViewer(ctx, s.roles, tripID, userID); err != nil {
		return nil, fmt.Errorf("service.ItemService.ListByTripID: %w", err)
	}
	items, err := s.items.ListByTripID(ctx, tripID, kind)
	if err != nil {
		return nil, fmt.Errorf("service.ItemService.ListByTripID: %w", err)
	}
	if items == nil {
		return []domain.Item{}, nil
	}
	return items, nil
}

// Update validates and persists changes, then appends "<kind>.updated".
// The item's kind is immutable; the stored kind wins.
func (s *ItemService) Update(ctx context.Context, userID int64, item domain.Item) (domain.Item, error) {
	if err := requireEditor(ctx, s.roles, item.TripID, userID); err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.Update: %w", err)
	}
	if strings.TrimSpace(item.Title) == "" {
		return domain.Item{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	result, err := s.items.Update(ctx, item)
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.Update: %w", err)
	}

	if err := s.appendItemEvent(ctx, result, userID, domain.VerbUpdated); err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.Update: %w", err)
	}
	return result, nil
}

// Delete removes an item, producing its delete event before the row goes away.
func (s *ItemService) Delete(ctx context.Context, userID, tripID, itemID int64) error {
	if err := requireEditor(ctx, s.roles, tripID, userID); err != nil {
		return fmt.Errorf("service.ItemService.Delete: %w", err)
	}

	item, err := s.items.GetByID(ctx, tripID, itemID)
	if err != nil {
		return fmt.Errorf("service.ItemService.Delete: %w", err)
	}

	err = s.producer.ObjectDeleted(ctx, item.Kind.ObjectType(), item.ID, userID,
		map[string]any{"title": item.Title})
	if err != nil {
		return fmt.Errorf("service.ItemService.Delete: %w", err)
	}

	if err := s.items.Delete(ctx, tripID, itemID); err != nil {
		return fmt.Errorf("service.ItemService.Delete: %w", err)
	}
	return nil
}

func (s *ItemService) appendItemEvent(ctx context.Context, item domain.Item, userID int64, verb string) error {
	_, err := s.events.Append(ctx, repo.AppendEvent{
		TripID:     item.TripID,
		EventType:  domain.EventTypeFor(item.Kind.ObjectType(), verb),
		ObjectType: item.Kind.ObjectType(),
		ObjectID:   item.ID,
		UserID:     userID,
		Payload:    map[string]any{"title": item.Title},
	})
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// validateItem enforces business rules for item creation.
func validateItem(item domain.Item) error {
	if !item.Kind.Valid() {
		return fmt.Errorf("%w: unknown item kind %q", domain.ErrValidation, item.Kind)
	}
	if strings.TrimSpace(item.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	return nil
}
