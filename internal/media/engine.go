package media

// Engine is the connection factory plus capture-source constructors of the
// external media engine. The engine owns codec and transport details; the
// session core only sees opaque handles. Close disposes the factory and must
// be the last disposal in a teardown.
type Engine interface {
	NewConnection() (Connection, error)

	// NewScreenCapturer creates a capturer for the display identified by the
	// permit. A nil permit is an error: capture cannot start without the
	// platform grant.
	NewScreenCapturer(permit CapturePermit) (Capturer, error)
	NewVideoSource(screencast bool) (VideoSource, error)
	NewAudioSource() (AudioSource, error)
	NewCaptureHelper() (Helper, error)

	NewVideoTrack(id string, src VideoSource) (Track, error)
	NewAudioTrack(id string, src AudioSource) (Track, error)
	NewLocalStream(id string) *LocalStream

	Close() error
}

// Connection is one peer connection's SDP/ICE/track surface. Callbacks are
// invoked from engine goroutines; registering a callback replaces any
// previous one.
type Connection interface {
	CreateOffer() (SessionDescription, error)
	CreateAnswer() (SessionDescription, error)
	SetLocalDescription(desc SessionDescription) error
	SetRemoteDescription(desc SessionDescription) error
	AddICECandidate(c ICECandidate) error

	AddTrack(t Track) (Sender, error)
	RemoveTrack(s Sender) error

	OnICECandidate(fn func(ICECandidate))
	OnConnectionStateChange(fn func(ConnectionState))
	OnRemoteTrack(fn func(RemoteTrack))
	OnDataChannel(fn func(DataChannel))
	OnNegotiationNeeded(fn func())

	Close() error
}

// Track is a local media track that can be attached to a connection.
// Disabling a track mutes it without changing the negotiated SDP.
type Track interface {
	ID() string
	Kind() TrackKind
	SetEnabled(enabled bool)
	Enabled() bool
	Close() error
}

// Sender is the handle returned when a track is attached to a connection. It
// is required to detach that exact track later.
type Sender interface {
	Track() Track
}

// RemoteTrack is a track received from the remote peer. Disabling it stops
// consumption of the decoded media.
type RemoteTrack interface {
	ID() string
	Kind() TrackKind
	SetEnabled(enabled bool)
	Enabled() bool
}

// DataChannel is a channel created by the remote peer. Text messages are
// relayed verbatim; binary messages carry msgpack control frames.
type DataChannel interface {
	Label() string
	OnMessage(fn func(data []byte, isText bool))
	OnStateChange(fn func(DataChannelState))
	SendText(text string) error
	Send(data []byte) error
	Close() error
}

// Capturer produces frames from a screen or camera. The disposal order is a
// hard invariant of the engine: Stop, then Close, and only then may the
// sources and helper it feeds be closed.
type Capturer interface {
	Initialize(h Helper, src VideoSource) error
	Start(width, height, fps int) error
	Stop() error
	Close() error
}

// VideoSource accepts frames from a capturer and feeds bound video tracks.
type VideoSource interface {
	Close() error
}

// AudioSource feeds bound audio tracks from the microphone.
type AudioSource interface {
	Close() error
}

// Helper owns the capture worker the capturer runs on.
type Helper interface {
	Close() error
}
