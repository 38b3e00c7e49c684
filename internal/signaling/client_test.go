package signaling

import (
	"errors"
	"net"
	"testing"

	"github.com/gorilla/websocket"
)

func TestEmitBeforeConnectFailsFast(t *testing.T) {
	c := NewClient("ws://127.0.0.1:9/ws")

	// Well past the outgoing buffer size; every emit must return, not park.
	for i := 0; i < 40; i++ {
		err := c.Emit(EventJoinRoom, JoinRoomPayload{RoomID: "r"})
		if !errors.Is(err, ErrNotConnected) {
			t.Fatalf("emit %d = %v, want ErrNotConnected", i, err)
		}
	}
}

func TestEmitAfterDisconnectFailsFast(t *testing.T) {
	c := NewClient("ws://127.0.0.1:9/ws")
	if err := c.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if err := c.Emit(EventJoinRoom, nil); !errors.Is(err, net.ErrClosed) {
		t.Fatalf("emit after disconnect = %v, want net.ErrClosed", err)
	}
}

func TestConnectLeavesDefaultDialerUntouched(t *testing.T) {
	c := NewClient("ws://127.0.0.1:9/ws")

	// Loopback port 9 refuses immediately; the dial failure is expected.
	if err := c.Connect(); err == nil {
		t.Fatal("expected connect to fail")
	}
	if websocket.DefaultDialer.NetDial != nil {
		t.Error("package-level default dialer was mutated")
	}
}
