package syncclient

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"work-tracker.com/work-tracker/internal/worktime"
)

const (
	DefaultDebounce  = 300 * time.Millisecond
	DefaultHeartbeat = 2 * time.Second
)

type Options struct {
	// Debounce collapses bursts of Schedule calls into one push.
	Debounce time.Duration
	// Heartbeat resends the latest snapshot while an activity is open.
	Heartbeat time.Duration
	// Timeout bounds each background push.
	Timeout time.Duration
	Logger  *logrus.Logger
}

// Client pushes full snapshots to the sync server on a best-effort basis.
// Failed pushes are dropped; the next mutation or heartbeat resends the
// whole current state.
type Client struct {
	transport Transport
	username  string
	debounce  time.Duration
	heartbeat time.Duration
	timeout   time.Duration
	logger    *logrus.Logger

	mu      sync.Mutex
	latest  []byte
	active  bool
	pending *time.Timer
	closed  bool

	// sendMu orders pushes so a stale snapshot never lands after a newer one.
	sendMu sync.Mutex

	stop chan struct{}
	wg   sync.WaitGroup
}

func New(transport Transport, username string, opts Options) *Client {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = DefaultHeartbeat
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	c := &Client{
		transport: transport,
		username:  username,
		debounce:  opts.Debounce,
		heartbeat: opts.Heartbeat,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
		stop:      make(chan struct{}),
	}

	c.wg.Add(1)
	go c.heartbeatLoop()

	return c
}

// Schedule records state as the snapshot to send and arms the debounce
// timer if it is not already running. It never blocks on the network.
func (c *Client) Schedule(state *worktime.WorkState) {
	raw, err := worktime.Encode(state)
	if err != nil {
		c.logger.WithError(err).Warn("sync: failed to encode snapshot")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.latest = raw
	c.active = state.HasOpenActivity()
	if c.pending == nil {
		c.pending = time.AfterFunc(c.debounce, c.fire)
	}
}

func (c *Client) fire() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	_ = c.send(ctx)
}

func (c *Client) heartbeatLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			due := c.active && c.latest != nil && c.pending == nil
			c.mu.Unlock()
			if !due {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
			_ = c.send(ctx)
			cancel()
		case <-c.stop:
			return
		}
	}
}

// Flush cancels any pending debounce and pushes the latest snapshot now.
// It is meant for teardown, where waiting out the debounce would lose it.
func (c *Client) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.mu.Unlock()

	return c.send(ctx)
}

// Close stops the heartbeat and flushes. Schedule calls after Close are
// ignored.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	c.wg.Wait()

	return c.Flush(ctx)
}

// Fetch loads the user's stored snapshot. An unreadable snapshot decodes to
// a fresh default state.
func (c *Client) Fetch(ctx context.Context) (*worktime.WorkState, error) {
	raw, err := c.transport.Fetch(ctx, c.username)
	if err != nil {
		return nil, err
	}
	return worktime.Decode(raw, c.username), nil
}

func (c *Client) send(ctx context.Context) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.mu.Lock()
	raw := c.latest
	c.mu.Unlock()
	if raw == nil {
		return nil
	}

	if err := c.transport.Push(ctx, c.username, raw); err != nil {
		c.logger.WithError(err).WithField("username", c.username).Debug("sync: push dropped")
		return err
	}
	return nil
}
