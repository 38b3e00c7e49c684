package signaling

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Compile-time interface check.
var _ Channel = (*MemoryChannel)(nil)

// MemoryChannel is an in-process Channel whose emits are delivered directly to
// a linked peer channel. It stands in for the websocket transport in tests:
// two MemoryChannels form a room of two with the relay server elided.
type MemoryChannel struct {
	mu            sync.Mutex
	peer          *MemoryChannel
	handlers      map[string][]Handler
	connectFns    []func()
	disconnectFns []func()
	connected     bool
}

// NewMemoryPair returns two linked channels. Events emitted on one are
// delivered synchronously to the other's handlers once both are connected.
func NewMemoryPair() (*MemoryChannel, *MemoryChannel) {
	a := &MemoryChannel{handlers: make(map[string][]Handler)}
	b := &MemoryChannel{handlers: make(map[string][]Handler)}
	a.peer = b
	b.peer = a
	return a, b
}

func (m *MemoryChannel) Connect() error {
	m.mu.Lock()
	if m.connected {
		m.mu.Unlock()
		return nil
	}
	m.connected = true
	connectFns := append([]func(){}, m.connectFns...)
	m.mu.Unlock()

	for _, fn := range connectFns {
		fn()
	}
	return nil
}

func (m *MemoryChannel) Emit(event string, payload any) error {
	m.mu.Lock()
	connected := m.connected
	m.mu.Unlock()
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

	m.peer.deliver(event, data)
	return nil
}

func (m *MemoryChannel) deliver(event string, data json.RawMessage) {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return
	}
	handlers := append([]Handler{}, m.handlers[event]...)
	m.mu.Unlock()

	for _, h := range handlers {
		h(data)
	}
}

func (m *MemoryChannel) On(event string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], h)
}

func (m *MemoryChannel) OnConnect(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectFns = append(m.connectFns, fn)
}

func (m *MemoryChannel) OnDisconnect(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnectFns = append(m.disconnectFns, fn)
}

func (m *MemoryChannel) Disconnect() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.connected = false
	disconnectFns := append([]func(){}, m.disconnectFns...)
	m.mu.Unlock()

	for _, fn := range disconnectFns {
		fn()
	}
	return nil
}
