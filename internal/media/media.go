// Package media defines the opaque handles the session core uses to drive an
// external media engine: connections, tracks, capture pipelines and data
// channels. The pionengine subpackage provides the production implementation.
package media

// TrackKind distinguishes audio from video tracks.
type TrackKind string

const (
	TrackKindAudio TrackKind = "audio"
	TrackKindVideo TrackKind = "video"
)

// SessionDescription is one half of the SDP exchange, engine-agnostic.
type SessionDescription struct {
	Type string // "offer" or "answer"
	SDP  string
}

// ICECandidate is a discovered network path for the media transport.
type ICECandidate struct {
	SDPMid        string
	SDPMLineIndex uint16
	Candidate     string
}

// ConnectionState mirrors the ICE connection states the core reacts to.
type ConnectionState int

const (
	ConnectionStateNew ConnectionState = iota
	ConnectionStateChecking
	ConnectionStateConnected
	ConnectionStateCompleted
	ConnectionStateDisconnected
	ConnectionStateFailed
	ConnectionStateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionStateNew:
		return "new"
	case ConnectionStateChecking:
		return "checking"
	case ConnectionStateConnected:
		return "connected"
	case ConnectionStateCompleted:
		return "completed"
	case ConnectionStateDisconnected:
		return "disconnected"
	case ConnectionStateFailed:
		return "failed"
	case ConnectionStateClosed:
		return "closed"
	}
	return "unknown"
}

// DataChannelState is the observable lifecycle of a data channel.
type DataChannelState int

const (
	DataChannelConnecting DataChannelState = iota
	DataChannelOpen
	DataChannelClosed
)

func (s DataChannelState) String() string {
	switch s {
	case DataChannelConnecting:
		return "connecting"
	case DataChannelOpen:
		return "open"
	case DataChannelClosed:
		return "closed"
	}
	return "unknown"
}

// CapturePermit is the opaque credential required to start screen capture.
// The session core never inspects it; it is handed through to the engine's
// capturer and retained across capture restarts within a session.
type CapturePermit any
