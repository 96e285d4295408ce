package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"coda-dashboard/internal/bus"
	"coda-dashboard/internal/events"
	"coda-dashboard/internal/logging"
)

// ErrNotConnected is returned by Send while the link is down.
var ErrNotConnected = errors.New("backend not connected")

// State describes the link to the Coda backend.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Config controls the backend link.
type Config struct {
	URL              string
	AuthToken        string
	HandshakeTimeout time.Duration
	ReconnectInitial time.Duration
	ReconnectMax     time.Duration
	ReconnectFactor  float64
	DedupWindow      time.Duration
	DedupMaxEntries  int
}

func DefaultConfig() Config {
	return Config{
		URL:              "ws://localhost:8765",
		HandshakeTimeout: 10 * time.Second,
		ReconnectInitial: time.Second,
		ReconnectMax:     30 * time.Second,
		ReconnectFactor:  1.5,
		DedupWindow:      5 * time.Second,
		DedupMaxEntries:  1000,
	}
}

// Client maintains the WebSocket link to the Coda backend: it reads the
// event stream, expands replay buffers, detects sequence gaps, suppresses
// duplicates and publishes everything onto the bus.
type Client struct {
	cfg      Config
	logger   *logging.Logger
	eventBus *bus.Bus
	clientID string
	dedup    *deduplicator

	mu      sync.Mutex
	conn    *websocket.Conn
	state   State
	lastSeq int64
	onState func(State)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewClient(cfg Config, logger *logging.Logger, eventBus *bus.Bus) *Client {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{
		cfg:      cfg,
		logger:   logger,
		eventBus: eventBus,
		clientID: uuid.NewString(),
		dedup:    newDeduplicator(cfg.DedupWindow, cfg.DedupMaxEntries),
		state:    StateDisconnected,
	}
}

// SetStateHandler registers a callback invoked on every link state change.
// Must be called before Start.
func (c *Client) SetStateHandler(handler func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onState = handler
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start runs the connect/read/reconnect loop until the context is
// cancelled or Stop is called.
func (c *Client) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(runCtx)
}

// Stop tears the link down and waits for the loop to exit.
func (c *Client) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	conn := c.conn
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
	c.wg.Wait()
}

// Shutdown satisfies the shutdown manager's component interface.
func (c *Client) Shutdown() {
	c.Stop()
}

// Send writes a client message to the backend.
func (c *Client) Send(messageType string, data map[string]interface{}) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	msg := map[string]interface{}{
		"type": messageType,
		"data": data,
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send %s: %w", messageType, err)
	}
	return nil
}

func (c *Client) run(ctx context.Context) {
	defer c.wg.Done()

	delay := c.cfg.ReconnectInitial
	for {
		if ctx.Err() != nil {
			c.setState(StateDisconnected)
			return
		}

		c.setState(StateConnecting)
		conn, err := c.connect(ctx)
		if err != nil {
			c.setState(StateDisconnected)
			c.logger.Warning("Backend", "connect failed", map[string]interface{}{
				"url":      c.cfg.URL,
				"error":    err.Error(),
				"retry_in": delay.String(),
			})

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = nextDelay(delay, c.cfg.ReconnectFactor, c.cfg.ReconnectMax)
			continue
		}

		delay = c.cfg.ReconnectInitial
		c.setConn(conn)
		c.setState(StateConnected)
		c.logger.Info("Backend", "connected", map[string]interface{}{
			"url":       c.cfg.URL,
			"client_id": c.clientID,
		})

		err = c.readLoop(ctx, conn)
		c.setConn(nil)
		conn.Close()
		c.setState(StateDisconnected)

		if ctx.Err() != nil {
			return
		}
		c.logger.Warning("Backend", "connection lost", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (c *Client) connect(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}

	if c.cfg.AuthToken != "" {
		auth := map[string]interface{}{
			"type": "auth",
			"data": map[string]interface{}{
				"token":     c.cfg.AuthToken,
				"client_id": c.clientID,
			},
		}
		if err := conn.WriteJSON(auth); err != nil {
			conn.Close()
			return nil, fmt.Errorf("send auth: %w", err)
		}
	}
	return conn, nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		env, err := events.Decode(raw)
		if err != nil {
			c.logger.Warning("Backend", "dropping malformed event", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		c.handleEvent(env)
	}
}

func (c *Client) handleEvent(env events.Envelope) {
	// Replay envelopes deliver the server's buffered history before live
	// events; expand them in order.
	if env.Type == events.Replay {
		c.logger.Debug("Backend", "replay buffer received", map[string]interface{}{
			"events": len(env.Events),
		})
		for _, buffered := range env.Events {
			c.handleEvent(buffered)
		}
		return
	}

	c.checkSequence(env)

	if dup, count := c.dedup.isDuplicate(env); dup {
		c.logger.Debug("Backend", "duplicate event suppressed", map[string]interface{}{
			"type":  string(env.Type),
			"count": count,
		})
		return
	}

	c.eventBus.Publish(env)
}

func (c *Client) checkSequence(env events.Envelope) {
	if env.Seq == 0 {
		return
	}

	c.mu.Lock()
	last := c.lastSeq
	if env.Seq > c.lastSeq {
		c.lastSeq = env.Seq
	}
	c.mu.Unlock()

	if last != 0 && env.Seq > last+1 {
		c.logger.Warning("Backend", "sequence gap detected", map[string]interface{}{
			"expected": last + 1,
			"got":      env.Seq,
			"missed":   env.Seq - last - 1,
		})
	}
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) setState(state State) {
	c.mu.Lock()
	changed := c.state != state
	c.state = state
	handler := c.onState
	c.mu.Unlock()

	if changed && handler != nil {
		handler(state)
	}
}

func nextDelay(current time.Duration, factor float64, max time.Duration) time.Duration {
	if factor <= 1 {
		factor = 1.5
	}
	next := time.Duration(float64(current) * factor)
	if max > 0 && next > max {
		next = max
	}
	return next
}
