package signaling

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/screenbeam/screenbeam/internal/dns"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Compile-time interface check.
var _ Channel = (*Client)(nil)

// Client manages the WebSocket connection to the signaling server and
// implements Channel on top of it.
type Client struct {
	serverURL string
	log       *slog.Logger

	mu            sync.Mutex
	conn          *websocket.Conn
	handlers      map[string][]Handler
	connectFns    []func()
	disconnectFns []func()
	connected     bool
	closed        bool

	outgoing chan Envelope
	done     chan struct{}
}

// NewClient creates a new signaling client
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		log:       slog.Default(),
		handlers:  make(map[string][]Handler),
		outgoing:  make(chan Envelope, 16),
		done:      make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection to the server and fires the
// connect callbacks. Calling Connect on an already-connected client is a no-op.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return net.ErrClosed
	}
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	// Create a custom dialer that uses our robust DNS lookup. Copy the
	// default dialer so the package-level one is never mutated.
	dialer := *websocket.DefaultDialer
	dialer.NetDial = func(network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		resolvedIP, err := dns.Lookup(host)
		if err != nil {
			return nil, fmt.Errorf("dns lookup failed: %w", err)
		}

		return net.Dial(network, net.JoinHostPort(resolvedIP, port))
	}

	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	connectFns := append([]func(){}, c.connectFns...)
	c.mu.Unlock()

	go c.readPump(conn)
	go c.writePump(conn)

	for _, fn := range connectFns {
		fn()
	}

	return nil
}

// Emit sends a named event to the server. Without a live connection the event
// is refused immediately rather than parked in the outgoing buffer, so a
// caller emitting from behind a lock can never wedge on a dead transport.
func (c *Client) Emit(event string, payload any) error {
	c.mu.Lock()
	closed, connected := c.closed, c.connected
	c.mu.Unlock()
	if closed {
		return net.ErrClosed
	}
	if !connected {
		return fmt.Errorf("emit %q: %w", event, ErrNotConnected)
	}

	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %q payload: %w", event, err)
		}
		data = b
	}

	select {
	case c.outgoing <- Envelope{Event: event, Data: data}:
		return nil
	case <-c.done:
		return net.ErrClosed
	}
}

// On registers a handler for an inbound event.
func (c *Client) On(event string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

// OnConnect registers a callback fired after every successful Connect.
func (c *Client) OnConnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectFns = append(c.connectFns, fn)
}

// OnDisconnect registers a callback fired when the transport drops.
func (c *Client) OnDisconnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnectFns = append(c.disconnectFns, fn)
}

// readPump reads envelopes from the WebSocket connection and dispatches them.
func (c *Client) readPump(conn *websocket.Conn) {
	defer func() {
		conn.Close()
		c.transportDropped()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		c.dispatch(env)
	}
}

// dispatch runs the handlers for one inbound event. Handlers run sequentially
// on the read goroutine; the session core serializes behind its own lock.
func (c *Client) dispatch(env Envelope) {
	c.mu.Lock()
	handlers := append([]Handler{}, c.handlers[env.Event]...)
	c.mu.Unlock()

	if len(handlers) == 0 {
		c.log.Debug("unhandled signaling event", "event", env.Event)
		return
	}
	for _, h := range handlers {
		h(env.Data)
	}
}

// transportDropped marks the client disconnected and notifies upward. It does
// not tear anything down: the caller may Connect again.
func (c *Client) transportDropped() {
	c.mu.Lock()
	wasConnected := c.connected
	c.connected = false
	c.conn = nil
	disconnectFns := append([]func(){}, c.disconnectFns...)
	c.mu.Unlock()

	if !wasConnected {
		return
	}
	for _, fn := range disconnectFns {
		fn()
	}
}

// writePump writes envelopes to the WebSocket connection and sends periodic pings.
func (c *Client) writePump(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case env := <-c.outgoing:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Disconnect closes the WebSocket connection and cleans up resources.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	close(c.done)
	return nil
}
