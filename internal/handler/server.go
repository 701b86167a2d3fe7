// Package handler implements the HTTP handlers for the travel journal API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (events.go, trip.go, etc.) but all share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/collegeman/travel-journal/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, userID int64, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, userID, tripID int64) (domain.Trip, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.Trip, error)
	Update(ctx context.Context, userID int64, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, userID, tripID int64) error
}

// StopServicer defines the business operations the stop handlers depend on.
type StopServicer interface {
	Create(ctx context.Context, userID int64, stop domain.Stop) (domain.Stop, error)
	GetByID(ctx context.Context, userID, tripID, stopID int64) (domain.Stop, error)
	ListByTripID(ctx context.Context, userID, tripID int64) ([]domain.Stop, error)
	Update(ctx context.Context, userID int64, stop domain.Stop) (domain.Stop, error)
	Delete(ctx context.Context, userID, tripID, stopID int64) error
}

// ItemServicer defines the business operations the journal item handlers
// depend on.
type ItemServicer interface {
	Create(ctx context.Context, userID int64, item domain.Item) (domain.Item, error)
	GetByID(ctx context.Context, userID, tripID, itemID int64) (domain.Item, error)
	ListByTripID(ctx context.Context, userID, tripID int64, kind domain.ItemKind) ([]domain.Item, error)
	Update(ctx context.Context, userID int64, item domain.Item) (domain.Item, error)
	Delete(ctx context.Context, userID, tripID, itemID int64) error
}

// CollaboratorServicer defines the business operations the collaborator
// handlers depend on.
type CollaboratorServicer interface {
	ListByTrip(ctx context.Context, userID, tripID int64) ([]domain.Collaborator, error)
	Invite(ctx context.Context, actorID, tripID int64, email string, role domain.Role) (domain.Collaborator, error)
	Remove(ctx context.Context, actorID, tripID, userID int64) error
}

// MediaServicer defines the business operations the media handlers depend on.
type MediaServicer interface {
	Create(ctx context.Context, userID int64, m domain.Media) (domain.Media, error)
	ListByTripID(ctx context.Context, userID, tripID int64) ([]domain.Media, error)
	Delete(ctx context.Context, userID, mediaID int64) error
}

// FeedServicer defines the event feed operations the delivery loop depends
// on. Authorization is a separate call because an SSE connection authorizes
// once at handshake time and then queries the log on every tick.
type FeedServicer interface {
	Authorize(ctx context.Context, userID, tripID int64) error
	QuerySince(ctx context.Context, tripID int64, since time.Time, limit int) ([]domain.Event, error)
}

// StreamConfig carries the delivery loop's tuning knobs from main.
type StreamConfig struct {
	// Budget bounds how long one SSE connection stays open before it
	// self-terminates; keep it under intermediary idle timeouts.
	Budget time.Duration
	// Tick is the pause between log queries inside an open connection.
	Tick time.Duration
	// QueryLimit caps the batch size of a single feed query.
	QueryLimit int
	// Lookback is how far back an absent or unparseable since cursor reaches.
	Lookback time.Duration
}

// DefaultStreamConfig matches the documented protocol defaults: a 25 second
// budget under common 30 second proxy timeouts, 2 second ticks, batches of
// 100, and a 30 second lookback for fresh connections.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Budget:     25 * time.Second,
		Tick:       2 * time.Second,
		QueryLimit: 100,
		Lookback:   30 * time.Second,
	}
}

// Server implements the HTTP handlers for all API endpoints.
// Methods are in domain-specific files but all operate on this struct.
//
// now and sleep exist so tests can drive the SSE loop without wall-clock
// delays; NewServer installs real-time defaults.
type Server struct {
	trips   TripServicer
	stops   StopServicer
	items   ItemServicer
	collabs CollaboratorServicer
	media   MediaServicer
	feed    FeedServicer
	stream  StreamConfig

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, stops StopServicer, items ItemServicer,
	collabs CollaboratorServicer, media MediaServicer, feed FeedServicer,
	stream StreamConfig) *Server {
	return &Server{
		trips:   trips,
		stops:   stops,
		items:   items,
		collabs: collabs,
		media:   media,
		feed:    feed,
		stream:  stream,
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// Routes returns the router for all authenticated API endpoints.
// Mount it behind the auth middleware; every handler assumes
// middleware.UserFrom succeeds.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Put("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)

			r.Get("/events", s.TripEvents)

			r.Route("/stops", func(r chi.Router) {
				r.Get("/", s.ListStops)
				r.Post("/", s.CreateStop)
				r.Get("/{stopID}", s.GetStop)
				r.Put("/{stopID}", s.UpdateStop)
				r.Delete("/{stopID}", s.DeleteStop)
			})

			r.Route("/items", func(r chi.Router) {
				r.Get("/", s.ListItems)
				r.Post("/", s.CreateItem)
				r.Get("/{itemID}", s.GetItem)
				r.Put("/{itemID}", s.UpdateItem)
				r.Delete("/{itemID}", s.DeleteItem)
			})

			r.Route("/collaborators", func(r chi.Router) {
				r.Get("/", s.ListCollaborators)
				r.Post("/", s.InviteCollaborator)
				r.Delete("/{userID}", s.RemoveCollaborator)
			})

			r.Route("/media", func(r chi.Router) {
				r.Get("/", s.ListMedia)
				r.Post("/", s.CreateMedia)
			})
		})
	})

	r.Delete("/media/{mediaID}", s.DeleteMedia)

	return r
}

// sleepContext pauses for d or until ctx is done, returning ctx.Err() in the
// latter case. The SSE loop uses the error to detect client disconnects
// between ticks.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
