package pionengine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	pionmedia "github.com/pion/webrtc/v4/pkg/media"

	"github.com/screenbeam/screenbeam/internal/media"
)

const (
	audioFrameInterval = 20 * time.Millisecond
	streamLabel        = "screenbeam"
)

// localTrack wraps a sample track with an enabled gate. A disabled track
// swallows samples instead of writing them, which mutes it without touching
// the negotiated SDP.
type localTrack struct {
	sample *webrtc.TrackLocalStaticSample
	kind   media.TrackKind

	mu      sync.Mutex
	enabled bool
	closed  bool
}

var _ media.Track = (*localTrack)(nil)

func newLocalTrack(id string, kind media.TrackKind) (*localTrack, error) {
	var capability webrtc.RTPCodecCapability
	switch kind {
	case media.TrackKindVideo:
		capability = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}
	case media.TrackKindAudio:
		capability = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}
	default:
		return nil, fmt.Errorf("unknown track kind %q", kind)
	}

	sample, err := webrtc.NewTrackLocalStaticSample(capability, id, streamLabel)
	if err != nil {
		return nil, fmt.Errorf("create %s track: %w", kind, err)
	}
	return &localTrack{sample: sample, kind: kind, enabled: true}, nil
}

func (t *localTrack) ID() string            { return t.sample.ID() }
func (t *localTrack) Kind() media.TrackKind { return t.kind }

func (t *localTrack) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

func (t *localTrack) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *localTrack) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// writeSample forwards the sample unless the track is muted or closed.
func (t *localTrack) writeSample(s pionmedia.Sample) {
	t.mu.Lock()
	ok := t.enabled && !t.closed
	t.mu.Unlock()
	if !ok {
		return
	}
	t.sample.WriteSample(s)
}

// videoSource fans capturer frames out to its bound tracks.
type videoSource struct {
	screencast bool

	mu     sync.Mutex
	tracks []*localTrack
	closed bool
}

var _ media.VideoSource = (*videoSource)(nil)

func newVideoSource(screencast bool) *videoSource {
	return &videoSource{screencast: screencast}
}

func (v *videoSource) bind(t *localTrack) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tracks = append(v.tracks, t)
}

func (v *videoSource) deliver(s pionmedia.Sample) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	tracks := append([]*localTrack{}, v.tracks...)
	v.mu.Unlock()

	for _, t := range tracks {
		t.writeSample(s)
	}
}

func (v *videoSource) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.tracks = nil
	return nil
}

// audioSource pumps silence frames to its bound tracks. The pump starts with
// the first bind and stops on Close; muting happens per track.
type audioSource struct {
	mu     sync.Mutex
	tracks []*localTrack
	done   chan struct{}
	closed bool
}

var _ media.AudioSource = (*audioSource)(nil)

func newAudioSource() *audioSource {
	return &audioSource{done: make(chan struct{})}
}

func (a *audioSource) bind(t *localTrack) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	start := len(a.tracks) == 0
	a.tracks = append(a.tracks, t)
	if start {
		go a.pump()
	}
}

func (a *audioSource) pump() {
	ticker := time.NewTicker(audioFrameInterval)
	defer ticker.Stop()

	// Minimal opus frame encoding silence.
	silence := []byte{0xf8, 0xff, 0xfe}

	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			a.mu.Lock()
			tracks := append([]*localTrack{}, a.tracks...)
			a.mu.Unlock()
			for _, t := range tracks {
				t.writeSample(pionmedia.Sample{Data: silence, Duration: audioFrameInterval})
			}
		}
	}
}

func (a *audioSource) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	a.tracks = nil
	close(a.done)
	return nil
}

// remoteTrack wraps an inbound pion track. Enabling it starts a drain
// goroutine that consumes RTP; disabling stops consumption.
type remoteTrack struct {
	tr  *webrtc.TrackRemote
	log *slog.Logger

	mu      sync.Mutex
	enabled bool
	stop    chan struct{}
}

var _ media.RemoteTrack = (*remoteTrack)(nil)

func newRemoteTrack(tr *webrtc.TrackRemote, log *slog.Logger) *remoteTrack {
	return &remoteTrack{tr: tr, log: log}
}

func (r *remoteTrack) ID() string { return r.tr.ID() }

func (r *remoteTrack) Kind() media.TrackKind {
	if r.tr.Kind() == webrtc.RTPCodecTypeAudio {
		return media.TrackKindAudio
	}
	return media.TrackKindVideo
}

func (r *remoteTrack) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if enabled == r.enabled {
		return
	}
	r.enabled = enabled
	if enabled {
		r.stop = make(chan struct{})
		go r.drain(r.stop)
	} else if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
}

func (r *remoteTrack) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

func (r *remoteTrack) drain(stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		if _, _, err := r.tr.ReadRTP(); err != nil {
			r.log.Debug("remote track read ended", "track", r.tr.ID(), "error", err)
			return
		}
	}
}
