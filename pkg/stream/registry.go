package stream

import (
	"context"
	"sync"
)

// Handler receives one decoded feed event. Handlers must be idempotent:
// delivery is at-least-once, and a duplicate or stale event must be a no-op
// or a harmless overwrite.
type Handler func(Event)

// Registry fans incoming events out to subscribers by object kind.
// Dispatch is synchronous and in-order per event; no ordering is guaranteed
// between independent subscribers.
type Registry struct {
	mu     sync.Mutex
	subs   map[Kind]map[int64]Handler
	nextID int64
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[Kind]map[int64]Handler)}
}

// Subscription is a handle to one registered handler.
// Close it to stop receiving events; Close is idempotent.
type Subscription struct {
	registry *Registry
	kind     Kind
	id       int64
	once     sync.Once
}

// Close removes the subscription from its registry.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.registry.mu.Lock()
		defer s.registry.mu.Unlock()
		if m := s.registry.subs[s.kind]; m != nil {
			delete(m, s.id)
			if len(m) == 0 {
				delete(s.registry.subs, s.kind)
			}
		}
	})
}

// Subscribe registers fn for events whose object type matches kind.
// Use KindAny to receive every event.
func (r *Registry) Subscribe(kind Kind, fn Handler) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	if r.subs[kind] == nil {
		r.subs[kind] = make(map[int64]Handler)
	}
	r.subs[kind][id] = fn

	return &Subscription{registry: r, kind: kind, id: id}
}

// SubscribeContext registers fn like Subscribe and additionally closes the
// subscription when ctx is done, tying the handler's lifetime to its owner
// so view transitions cannot leak handlers.
func (r *Registry) SubscribeContext(ctx context.Context, kind Kind, fn Handler) *Subscription {
	sub := r.Subscribe(kind, fn)
	go func() {
		<-ctx.Done()
		sub.Close()
	}()
	return sub
}

// Dispatch delivers e to every subscriber of its object kind, then to every
// wildcard subscriber. Handlers run synchronously on the caller's goroutine.
func (r *Registry) Dispatch(e Event) {
	for _, fn := range r.snapshot(Kind(e.ObjectType)) {
		fn(e)
	}
	for _, fn := range r.snapshot(KindAny) {
		fn(e)
	}
}

// snapshot copies a kind's handlers under the lock so handlers can subscribe
// or unsubscribe from within a callback without deadlocking.
func (r *Registry) snapshot(kind Kind) []Handler {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.subs[kind]
	if len(m) == 0 {
		return nil
	}
	out := make([]Handler, 0, len(m))
	for _, fn := range m {
		out = append(out, fn)
	}
	return out
}
