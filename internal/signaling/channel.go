package signaling

import (
	"encoding/json"
	"errors"
)

// ErrNotConnected is returned by Emit when the transport is not established.
// Callers treat it as a degraded signaling failure, not a fatal one.
var ErrNotConnected = errors.New("signaling: not connected")

// Handler receives the raw JSON payload of one inbound event.
type Handler func(payload json.RawMessage)

// Channel is the bidirectional, named-event transport the session core runs
// on. Implementations deliver events for the whole connection; room scoping is
// the server's concern. Handlers should be registered before Connect.
type Channel interface {
	// Connect establishes the transport. Safe to call when already connected.
	Connect() error

	// Emit sends a named event with a JSON-marshalable payload.
	Emit(event string, payload any) error

	// On registers a handler for an inbound event. Multiple handlers per
	// event are invoked in registration order.
	On(event string, h Handler)

	// OnConnect registers a callback fired after every successful Connect.
	OnConnect(fn func())

	// OnDisconnect registers a callback fired when the transport drops. The
	// transport may reconnect; session state must not be torn down here.
	OnDisconnect(fn func())

	// Disconnect closes the transport. Idempotent.
	Disconnect() error
}
