package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/middleware"
)

// mysqlDatetime is accepted as a since cursor alongside RFC 3339 for
// compatibility with clients that echo back a bare datetime.
const mysqlDatetime = "2006-01-02 15:04:05"

// TripEvents handles GET /trips/{tripID}/events?since=&mode=sse|poll.
//
// Poll mode is a one-shot query returning {events, serverTime}. SSE mode
// holds the connection open, repeatedly querying the log since the cursor
// and pushing frames, and self-terminates within the stream budget so
// intermediaries never kill the connection first — clients treat that close
// as normal and reconnect with the last created_at they observed.
//
// Authorization runs before any log access; a caller who cannot view the
// trip gets 403 and no data.
func (s *Server) TripEvents(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respondServiceError(w, domain.ErrUnauthorized, "")
		return
	}

	tripID, err := pathID(r, "tripID")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "sse"
	}
	if mode != "sse" && mode != "poll" {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", "mode must be sse or poll")
		return
	}

	if err := s.feed.Authorize(r.Context(), user.ID, tripID); err != nil {
		respondServiceError(w, err, "trip not found")
		return
	}

	since := s.parseSince(r.URL.Query().Get("since"))

	if mode == "poll" {
		s.servePoll(w, r, tripID, since)
		return
	}
	s.serveSSE(w, r, tripID, since)
}

// parseSince interprets the since query parameter. A missing or unparseable
// value silently falls back to the configured lookback — never an error, so
// a client with a corrupt cursor recovers instead of getting stuck.
func (s *Server) parseSince(raw string) time.Time {
	if raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
		if t, err := time.ParseInLocation(mysqlDatetime, raw, time.UTC); err == nil {
			return t
		}
	}
	return s.now().Add(-s.stream.Lookback)
}

// servePoll executes the one-shot poll protocol: a single bounded query plus
// the current server time, so the client can re-anchor its cursor even when
// the batch is empty.
func (s *Server) servePoll(w http.ResponseWriter, r *http.Request, tripID int64, since time.Time) {
	events, err := s.feed.QuerySince(r.Context(), tripID, since, s.stream.QueryLimit)
	if err != nil {
		respondServiceError(w, err, "trip not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"events":     events,
		"serverTime": s.now().UTC().Format(time.RFC3339Nano),
	})
}

// serveSSE runs the push delivery loop over one long-lived connection.
//
// The loop is bounded by a wall-clock budget checked against the injected
// clock, and every pause goes through the injected sleep, so tests can run
// the whole 25-second protocol in microseconds. Both exit paths are normal
// and frequent: budget exhaustion (client reconnects with its cursor) or
// client disconnect (request context canceled).
func (s *Server) serveSSE(w http.ResponseWriter, r *http.Request, tripID int64, since time.Time) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal_error", "streaming unsupported")
		return
	}

	// Lift any server-level write deadline: the connection legitimately
	// outlives a typical request.
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // disable nginx buffering
	w.WriteHeader(http.StatusOK)

	// Confirm liveness before the first real event.
	fmt.Fprintf(w, "event: connected\ndata: {\"time\":%q}\n\n", s.now().UTC().Format(time.RFC3339Nano))
	flusher.Flush()

	ctx := r.Context()
	cursor := since
	deadline := s.now().Add(s.stream.Budget)

	for s.now().Before(deadline) {
		events, err := s.feed.QuerySince(ctx, tripID, cursor, s.stream.QueryLimit)
		if err != nil {
			if ctx.Err() != nil {
				return // client went away mid-query
			}
			// Transient query failure: keep the connection, try next tick.
			slog.WarnContext(ctx, "feed query failed", "trip_id", tripID, "error", err)
		}

		if len(events) > 0 {
			for _, e := range events {
				writeEventFrame(w, e)
				cursor = e.CreatedAt
			}
			flusher.Flush()
		} else {
			// Comment frame keeps intermediaries from closing an idle stream.
			fmt.Fprintf(w, ": heartbeat %d\n\n", s.now().Unix())
			flusher.Flush()
		}

		if err := s.sleep(ctx, s.stream.Tick); err != nil {
			return // client disconnected between ticks
		}
	}
}

// writeEventFrame emits one SSE frame: the log id, the event type as the
// frame name, and the full event JSON as data.
func writeEventFrame(w http.ResponseWriter, e domain.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("marshal event", "event_id", e.ID, "error", err)
		return
	}
	fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", e.ID, e.EventType, data)
}
