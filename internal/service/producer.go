// Package service contains the business logic for the travel journal API.
// Services validate inputs, enforce trip access rules, and orchestrate repo
// calls. No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/repo"
)

// EventProducer turns domain-object lifecycle transitions into event log
// appends. Create and update events have a single natural call site — the
// owning service appends them inline — but deletions and media attachment
// create/delete are funneled through here because trip resolution for them
// is non-trivial.
//
// An object whose trip cannot be resolved produces no event. That is a
// normal outcome for stray or orphaned objects, logged at debug level only.
type EventProducer struct {
	events repo.EventRepo
	refs   repo.TripRefRepo
	log    *slog.Logger
}

// NewEventProducer constructs an EventProducer.
// The logger may be nil, in which case slog.Default() is used.
func NewEventProducer(events repo.EventRepo, refs repo.TripRefRepo, log *slog.Logger) *EventProducer {
	if log == nil {
		log = slog.Default()
	}
	return &EventProducer{events: events, refs: refs, log: log}
}

// ObjectDeleted records a "<kind>.deleted" event for a tracked object.
// Call it while the object row still exists — resolution reads the trip_id
// back-reference from the database (a trip resolves to its own id).
func (p *EventProducer) ObjectDeleted(ctx context.Context, kind domain.ObjectType, objectID, userID int64, payload map[string]any) error {
	tripID, err := p.refs.TripIDForObject(ctx, kind, objectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			p.log.DebugContext(ctx, "skipping delete event, no trip resolved",
				"object_type", string(kind), "object_id", objectID)
			return nil
		}
		return fmt.Errorf("service.EventProducer.ObjectDeleted: %w", err)
	}

	_, err = p.events.Append(ctx, repo.AppendEvent{
		TripID:     tripID,
		EventType:  domain.EventTypeFor(kind, domain.VerbDeleted),
		ObjectType: kind,
		ObjectID:   objectID,
		UserID:     userID,
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("service.EventProducer.ObjectDeleted: %w", err)
	}
	return nil
}

// MediaCreated records a media.created event for a new attachment record.
// Unresolvable attachments are silently skipped.
func (p *EventProducer) MediaCreated(ctx context.Context, m domain.Media, userID int64) error {
	return p.mediaEvent(ctx, m, userID, domain.VerbCreated, map[string]any{
		"filename":  m.Filename,
		"mime_type": m.MimeType,
	})
}

// MediaDeleted records a media.deleted event for an attachment record.
// Call it before the row is removed so the resolution chain can still walk
// the parent reference.
func (p *EventProducer) MediaDeleted(ctx context.Context, m domain.Media, userID int64) error {
	return p.mediaEvent(ctx, m, userID, domain.VerbDeleted, map[string]any{
		"filename": m.Filename,
	})
}

func (p *EventProducer) mediaEvent(ctx context.Context, m domain.Media, userID int64, verb string, payload map[string]any) error {
	tripID, ok, err := p.ResolveMediaTrip(ctx, m)
	if err != nil {
		return fmt.Errorf("service.EventProducer.mediaEvent: %w", err)
	}
	if !ok {
		p.log.DebugContext(ctx, "skipping media event, no trip resolved", "media_id", m.ID)
		return nil
	}

	_, err = p.events.Append(ctx, repo.AppendEvent{
		TripID:     tripID,
		EventType:  domain.EventTypeFor(domain.ObjectMedia, verb),
		ObjectType: domain.ObjectMedia,
		ObjectID:   m.ID,
		UserID:     userID,
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("service.EventProducer.mediaEvent: %w", err)
	}
	return nil
}

// ResolveMediaTrip walks the attachment's anchor chain to find its trip:
// a parent that is a trip is used directly; a parent of another tracked kind
// contributes its own trip_id back-reference; failing both, the media row's
// own trip_id field is the fallback. Returns ok=false when nothing resolves.
func (p *EventProducer) ResolveMediaTrip(ctx context.Context, m domain.Media) (int64, bool, error) {
	if m.ParentKind != nil && m.ParentID != nil {
		if *m.ParentKind == domain.ObjectTrip {
			// Verify the trip exists rather than trusting the reference.
			tripID, err := p.refs.TripIDForObject(ctx, domain.ObjectTrip, *m.ParentID)
			if err == nil {
				return tripID, true, nil
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return 0, false, err
			}
		} else {
			tripID, err := p.refs.TripIDForObject(ctx, *m.ParentKind, *m.ParentID)
			if err == nil {
				return tripID, true, nil
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return 0, false, err
			}
		}
	}

	if m.TripID != nil {
		return *m.TripID, true, nil
	}
	return 0, false, nil
}
