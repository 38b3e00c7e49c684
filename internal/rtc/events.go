package rtc

import "github.com/screenbeam/screenbeam/internal/media"

// Session status values reported through Events.Status.
const (
	StatusConnecting   = "CONNECTING"
	StatusConnected    = "CONNECTED"
	StatusDisconnected = "DISCONNECTED"
)

// Capture status values reported through Events.CaptureStatus.
const (
	CaptureStarted = "CAPTURE_STARTED"
	CaptureStopped = "CAPTURE_STOPPED"
	CaptureFailed  = "CAPTURE_FAILED"
)

// Events is the listener surface of the controller. Every field is optional.
// Callbacks may be invoked while the controller holds its internal lock, so
// handlers must not call back into the Controller synchronously.
type Events struct {
	// Status reports session lifecycle transitions.
	Status func(status string)

	// Connection reports media transport connectivity.
	Connection func(connected bool)

	// PeerJoined fires when the remote peer enters the room.
	PeerJoined func()

	// RemoteTrack fires when a track arrives from the remote peer.
	RemoteTrack func(kind media.TrackKind, id string)

	// ChatMessage fires for chat received over the data channel, whether it
	// arrived as a text frame or a binary chat frame.
	ChatMessage func(text string)

	// DataChannelState reports data channel lifecycle transitions.
	DataChannelState func(state media.DataChannelState)

	// CaptureStatus reports capture pipeline transitions.
	CaptureStatus func(status string)

	// Error reports non-fatal failures the controller absorbed.
	Error func(err error)
}

func (e *Events) status(status string) {
	if e != nil && e.Status != nil {
		e.Status(status)
	}
}

func (e *Events) connection(connected bool) {
	if e != nil && e.Connection != nil {
		e.Connection(connected)
	}
}

func (e *Events) peerJoined() {
	if e != nil && e.PeerJoined != nil {
		e.PeerJoined()
	}
}

func (e *Events) remoteTrack(kind media.TrackKind, id string) {
	if e != nil && e.RemoteTrack != nil {
		e.RemoteTrack(kind, id)
	}
}

func (e *Events) chatMessage(text string) {
	if e != nil && e.ChatMessage != nil {
		e.ChatMessage(text)
	}
}

func (e *Events) dataChannelState(state media.DataChannelState) {
	if e != nil && e.DataChannelState != nil {
		e.DataChannelState(state)
	}
}

func (e *Events) captureStatus(status string) {
	if e != nil && e.CaptureStatus != nil {
		e.CaptureStatus(status)
	}
}

func (e *Events) failure(err error) {
	if e != nil && e.Error != nil {
		e.Error(err)
	}
}
