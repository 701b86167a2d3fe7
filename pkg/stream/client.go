package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// State is the client transport's connection mode.
type State int

const (
	// StateIdle means no trip is selected and no connection is active.
	StateIdle State = iota
	// StateStreaming means a long-lived SSE connection is the active transport.
	StateStreaming
	// StatePolling means the transport has permanently downgraded to
	// interval polling for this trip session.
	StatePolling
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateStreaming:
		return "streaming"
	case StatePolling:
		return "polling"
	default:
		return "idle"
	}
}

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. "https://journal.example.com/api".
	BaseURL string

	// Token is the API bearer token. It is also passed as a query parameter
	// on SSE requests, mirroring EventSource clients that cannot set headers.
	Token string

	// HTTPClient defaults to http.DefaultClient. Do not set a client-level
	// timeout shorter than the server's stream budget.
	HTTPClient *http.Client

	// PollInterval is the pause between poll requests after fallback.
	// Defaults to 3s.
	PollInterval time.Duration

	// MaxStreamFailures is how many consecutive stream failures trigger the
	// permanent poll fallback. Defaults to 3.
	MaxStreamFailures int

	// BatchLimit mirrors the server's query limit. A poll response this
	// large is assumed truncated and is followed by an immediate re-poll.
	// Defaults to 100.
	BatchLimit int

	// ReconnectDelay is the pause before re-opening a stream after a
	// failure. Normal budget-exhaustion closes reconnect immediately.
	// Defaults to 1s.
	ReconnectDelay time.Duration

	// OnConnectionChange, if set, is invoked whenever reported connectivity
	// flips. It may be called from the transport goroutine.
	OnConnectionChange func(connected bool)

	// Logger may be nil, in which case slog.Default() is used.
	Logger *slog.Logger
}

// Client owns the live feed connection for one selected trip at a time.
// Exactly one transport (stream or poll loop) is active per client; starting
// a new trip stops the previous transport first. All methods are safe for
// concurrent use.
type Client struct {
	opts     Options
	registry *Registry

	mu        sync.Mutex
	state     State
	tripID    int64
	cursor    time.Time
	failures  int
	connected bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// New constructs a Client. The registry it returns events through is
// available via Registry() for subscriber wiring.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("stream: BaseURL is required")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("stream: invalid BaseURL: %w", err)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 3 * time.Second
	}
	if opts.MaxStreamFailures <= 0 {
		opts.MaxStreamFailures = 3
	}
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = 100
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{opts: opts, registry: NewRegistry()}, nil
}

// Registry returns the subscriber registry events are dispatched through.
func (c *Client) Registry() *Registry { return c.registry }

// State returns the current transport state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connected reports the last observed connectivity.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Start selects a trip and begins streaming its feed. Any transport for a
// previously selected trip is stopped first, its failure counter discarded,
// and the cursor reinitialized to now — cursors are never reused across
// trips. Each trip session starts in streaming mode; a poll downgrade lasts
// only for that session.
func (c *Client) Start(tripID int64) {
	c.Stop()

	c.mu.Lock()
	ctx, cancel := context.WithCancel(context.Background())
	c.state = StateStreaming
	c.tripID = tripID
	c.cursor = time.Now().UTC()
	c.failures = 0
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.run(ctx, tripID)
	}()
}

// Stop tears down the active transport synchronously: when it returns, no
// further events will be dispatched and no timer will fire.
func (c *Client) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.state = StateIdle
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	c.setConnected(false)
}

// run is the per-session transport loop: stream until the failure threshold
// is crossed, then poll until the session ends.
func (c *Client) run(ctx context.Context, tripID int64) {
	backoff := retry.NewConstant(c.opts.ReconnectDelay)

	for ctx.Err() == nil {
		err := c.streamOnce(ctx, tripID)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			// Budget-exhaustion close: expected and frequent. Reconnect
			// immediately with the cursor we advanced to.
			continue
		}

		c.opts.Logger.Debug("stream attempt failed", "trip_id", tripID, "error", err)
		c.setConnected(false)

		c.mu.Lock()
		c.failures++
		fallback := c.failures >= c.opts.MaxStreamFailures
		if fallback {
			c.state = StatePolling
		}
		c.mu.Unlock()

		if fallback {
			c.opts.Logger.Warn("stream failed repeatedly, falling back to polling",
				"trip_id", tripID, "failures", c.opts.MaxStreamFailures)
			c.pollLoop(ctx, tripID)
			return
		}

		if d, stop := backoff.Next(); !stop {
			select {
			case <-ctx.Done():
				return
			case <-time.After(d):
			}
		}
	}
}

// streamOnce opens one SSE connection and consumes it until it closes.
// A nil return means the server ended the stream normally (budget reached);
// any error counts as one stream failure.
func (c *Client) streamOnce(ctx context.Context, tripID int64) error {
	req, err := c.newRequest(ctx, tripID, "sse")
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream: unexpected status %d", resp.StatusCode)
	}

	dec := newSSEDecoder(resp.Body)
	for {
		f, err := dec.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil // normal self-termination
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		if f.name == "connected" {
			// Liveness confirmed: the failure counter starts over.
			c.mu.Lock()
			c.failures = 0
			c.mu.Unlock()
			c.setConnected(true)
			continue
		}

		var e Event
		if err := json.Unmarshal(f.data, &e); err != nil {
			c.opts.Logger.Warn("dropping undecodable frame", "event", f.name, "error", err)
			continue
		}
		c.advance(e)
	}
}

// pollLoop is the fallback transport: one-shot poll requests on a fixed
// interval until the session ends. There is no path back to streaming.
func (c *Client) pollLoop(ctx context.Context, tripID int64) {
	t := time.NewTicker(c.opts.PollInterval)
	defer t.Stop()

	c.pollOnce(ctx, tripID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.pollOnce(ctx, tripID)
		}
	}
}

// pollOnce issues poll requests until the delta is shorter than the batch
// limit, so a long backlog drains without waiting a full interval per batch.
func (c *Client) pollOnce(ctx context.Context, tripID int64) {
	for {
		n, err := c.pollRequest(ctx, tripID)
		if err != nil {
			if ctx.Err() == nil {
				c.opts.Logger.Debug("poll failed", "trip_id", tripID, "error", err)
				c.setConnected(false)
			}
			return
		}
		c.setConnected(true)
		if n < c.opts.BatchLimit {
			return
		}
	}
}

func (c *Client) pollRequest(ctx context.Context, tripID int64) (int, error) {
	req, err := c.newRequest(ctx, tripID, "poll")
	if err != nil {
		return 0, err
	}

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("stream: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Events     []Event `json:"events"`
		ServerTime string  `json:"serverTime"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}

	for _, e := range body.Events {
		c.advance(e)
	}
	return len(body.Events), nil
}

// advance moves the cursor to the event's timestamp and dispatches it.
// The cursor only moves forward so a racing stale batch cannot rewind it.
func (c *Client) advance(e Event) {
	c.mu.Lock()
	if e.CreatedAt.After(c.cursor) {
		c.cursor = e.CreatedAt
	}
	c.mu.Unlock()

	c.registry.Dispatch(e)
}

// newRequest builds a feed request with the current cursor.
func (c *Client) newRequest(ctx context.Context, tripID int64, mode string) (*http.Request, error) {
	c.mu.Lock()
	since := c.cursor
	c.mu.Unlock()

	u, err := url.Parse(c.opts.BaseURL + "/trips/" + strconv.FormatInt(tripID, 10) + "/events")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("mode", mode)
	q.Set("since", since.Format(time.RFC3339Nano))
	if c.opts.Token != "" {
		q.Set("token", c.opts.Token)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}
	return req, nil
}

// setConnected updates the connectivity flag and fires the callback on change.
func (c *Client) setConnected(connected bool) {
	c.mu.Lock()
	changed := c.connected != connected
	c.connected = connected
	cb := c.opts.OnConnectionChange
	c.mu.Unlock()

	if changed && cb != nil {
		cb(connected)
	}
}
