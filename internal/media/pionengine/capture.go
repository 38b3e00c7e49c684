package pionengine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	pionmedia "github.com/pion/webrtc/v4/pkg/media"

	"github.com/screenbeam/screenbeam/internal/media"
)

// FrameProvider supplies encoded VP8 frames to a running capturer. NextFrame
// is called once per frame interval with the negotiated capture size.
type FrameProvider interface {
	NextFrame(width, height int) ([]byte, error)
}

// syntheticProvider emits a fixed placeholder payload. It keeps the pipeline
// exercisable on hosts without a real encoder attached.
type syntheticProvider struct {
	frame []byte
}

func newSyntheticProvider() *syntheticProvider {
	return &syntheticProvider{frame: make([]byte, 64)}
}

func (p *syntheticProvider) NextFrame(width, height int) ([]byte, error) {
	return p.frame, nil
}

// capturer pulls frames from the provider on a ticker and delivers them to
// the video source it was initialized with. Stop must precede Close, and the
// source and helper outlive the capturer.
type capturer struct {
	provider FrameProvider
	log      *slog.Logger

	mu      sync.Mutex
	helper  media.Helper
	source  *videoSource
	stop    chan struct{}
	running bool
	closed  bool
}

var _ media.Capturer = (*capturer)(nil)

func newCapturer(provider FrameProvider, log *slog.Logger) *capturer {
	return &capturer{provider: provider, log: log}
}

func (c *capturer) Initialize(h media.Helper, src media.VideoSource) error {
	vs, ok := src.(*videoSource)
	if !ok {
		return fmt.Errorf("video source is not from this engine")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("capturer is closed")
	}
	c.helper = h
	c.source = vs
	return nil
}

func (c *capturer) Start(width, height, fps int) error {
	if fps <= 0 {
		return fmt.Errorf("invalid capture fps %d", fps)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("capturer is closed")
	}
	if c.source == nil {
		return fmt.Errorf("capturer not initialized")
	}
	if c.running {
		return fmt.Errorf("capture already running")
	}

	c.running = true
	c.stop = make(chan struct{})
	go c.loop(c.stop, c.source, width, height, fps)

	c.log.Debug("capture started", "width", width, "height", height, "fps", fps)
	return nil
}

func (c *capturer) loop(stop chan struct{}, src *videoSource, width, height, fps int) {
	interval := time.Second / time.Duration(fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			frame, err := c.provider.NextFrame(width, height)
			if err != nil {
				c.log.Warn("frame provider failed", "error", err)
				continue
			}
			src.deliver(pionmedia.Sample{Data: frame, Duration: interval})
		}
	}
}

func (c *capturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return nil
	}
	c.running = false
	close(c.stop)
	c.stop = nil
	return nil
}

func (c *capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return fmt.Errorf("capturer closed while running")
	}
	c.closed = true
	c.helper = nil
	c.source = nil
	return nil
}

// captureHelper is a placeholder for the engine's capture worker handle.
type captureHelper struct {
	mu     sync.Mutex
	closed bool
}

var _ media.Helper = (*captureHelper)(nil)

func (h *captureHelper) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}
