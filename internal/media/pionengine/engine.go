// Package pionengine implements the media engine on top of pion/webrtc. It
// owns codec configuration and the capture pipeline; the session core drives
// it through the media package's handles.
package pionengine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/screenbeam/screenbeam/internal/media"
)

// Config carries ICE server configuration and the frame source for the engine.
type Config struct {
	STUNServers  []string
	TURNServers  []string
	TURNUsername string
	TURNPassword string

	// ForceRelay restricts ICE to relayed candidates.
	ForceRelay bool

	// FrameProvider supplies encoded video frames to screen capturers. When
	// nil the engine falls back to a synthetic provider.
	FrameProvider FrameProvider

	Logger *slog.Logger
}

// Engine is the pion-backed media.Engine.
type Engine struct {
	api *webrtc.API
	cfg Config
	log *slog.Logger

	mu     sync.Mutex
	closed bool
}

var _ media.Engine = (*Engine)(nil)

// New builds the engine's API once; all connections share it.
func New(cfg Config) (*Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.FrameProvider == nil {
		cfg.FrameProvider = newSyntheticProvider()
	}

	se := webrtc.SettingEngine{}
	se.SetIncludeLoopbackCandidate(true)

	return &Engine{
		api: webrtc.NewAPI(webrtc.WithSettingEngine(se)),
		cfg: cfg,
		log: cfg.Logger,
	}, nil
}

func (e *Engine) iceServers() []webrtc.ICEServer {
	var servers []webrtc.ICEServer
	if len(e.cfg.STUNServers) > 0 {
		servers = append(servers, webrtc.ICEServer{URLs: e.cfg.STUNServers})
	}
	if len(e.cfg.TURNServers) > 0 {
		servers = append(servers, webrtc.ICEServer{
			URLs:       e.cfg.TURNServers,
			Username:   e.cfg.TURNUsername,
			Credential: e.cfg.TURNPassword,
		})
	}
	return servers
}

// NewConnection creates a peer connection with recvonly audio and video
// transceivers so offers always carry both media sections, even before any
// local track is attached.
func (e *Engine) NewConnection() (media.Connection, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("engine is closed")
	}

	rtcCfg := webrtc.Configuration{ICEServers: e.iceServers()}
	if e.cfg.ForceRelay {
		rtcCfg.ICETransportPolicy = webrtc.ICETransportPolicyRelay
	}

	pc, err := e.api.NewPeerConnection(rtcCfg)
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	for _, kind := range []webrtc.RTPCodecType{webrtc.RTPCodecTypeAudio, webrtc.RTPCodecTypeVideo} {
		if _, err := pc.AddTransceiverFromKind(kind, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionRecvonly,
		}); err != nil {
			pc.Close()
			return nil, fmt.Errorf("add %s transceiver: %w", kind, err)
		}
	}

	return newConnection(pc, e.log), nil
}

// NewScreenCapturer rejects a nil permit: capture needs the platform grant.
func (e *Engine) NewScreenCapturer(permit media.CapturePermit) (media.Capturer, error) {
	if permit == nil {
		return nil, fmt.Errorf("screen capture requires a capture permit")
	}
	return newCapturer(e.cfg.FrameProvider, e.log), nil
}

func (e *Engine) NewVideoSource(screencast bool) (media.VideoSource, error) {
	return newVideoSource(screencast), nil
}

func (e *Engine) NewAudioSource() (media.AudioSource, error) {
	return newAudioSource(), nil
}

func (e *Engine) NewCaptureHelper() (media.Helper, error) {
	return &captureHelper{}, nil
}

func (e *Engine) NewVideoTrack(id string, src media.VideoSource) (media.Track, error) {
	vs, ok := src.(*videoSource)
	if !ok {
		return nil, fmt.Errorf("video source is not from this engine")
	}
	t, err := newLocalTrack(id, media.TrackKindVideo)
	if err != nil {
		return nil, err
	}
	vs.bind(t)
	return t, nil
}

func (e *Engine) NewAudioTrack(id string, src media.AudioSource) (media.Track, error) {
	as, ok := src.(*audioSource)
	if !ok {
		return nil, fmt.Errorf("audio source is not from this engine")
	}
	t, err := newLocalTrack(id, media.TrackKindAudio)
	if err != nil {
		return nil, err
	}
	as.bind(t)
	return t, nil
}

func (e *Engine) NewLocalStream(id string) *media.LocalStream {
	return media.NewLocalStream(id)
}

// Close marks the factory disposed. Existing connections are unaffected; the
// session core closes those before it closes the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
