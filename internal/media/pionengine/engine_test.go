package pionengine

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/screenbeam/screenbeam/internal/media"
)

func TestOfferCarriesBothMediaSections(t *testing.T) {
	e, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	conn, err := e.NewConnection()
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	defer conn.Close()

	offer, err := conn.CreateOffer()
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	if offer.Type != "offer" {
		t.Errorf("offer type = %q, want offer", offer.Type)
	}
	if !strings.Contains(offer.SDP, "m=audio") {
		t.Error("offer SDP missing audio section")
	}
	if !strings.Contains(offer.SDP, "m=video") {
		t.Error("offer SDP missing video section")
	}
}

func TestScreenCapturerRequiresPermit(t *testing.T) {
	e, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	if _, err := e.NewScreenCapturer(nil); err == nil {
		t.Fatal("expected error for nil capture permit")
	}
	if _, err := e.NewScreenCapturer("display-0"); err != nil {
		t.Fatalf("NewScreenCapturer with permit: %v", err)
	}
}

func TestClosedEngineRefusesConnections(t *testing.T) {
	e, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Close()

	if _, err := e.NewConnection(); err == nil {
		t.Fatal("expected error from NewConnection after Close")
	}
}

type countingProvider struct {
	mu    sync.Mutex
	calls int
}

func (p *countingProvider) NextFrame(width, height int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return []byte{0}, nil
}

func (p *countingProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestCapturePipelinePullsFrames(t *testing.T) {
	provider := &countingProvider{}
	e, err := New(Config{FrameProvider: provider})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	capt, err := e.NewScreenCapturer("display-0")
	if err != nil {
		t.Fatalf("NewScreenCapturer: %v", err)
	}
	src, err := e.NewVideoSource(true)
	if err != nil {
		t.Fatalf("NewVideoSource: %v", err)
	}
	helper, err := e.NewCaptureHelper()
	if err != nil {
		t.Fatalf("NewCaptureHelper: %v", err)
	}

	if err := capt.Initialize(helper, src); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := capt.Start(640, 480, 100); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for provider.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no frames pulled from provider")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := capt.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := capt.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("source Close: %v", err)
	}
	if err := helper.Close(); err != nil {
		t.Fatalf("helper Close: %v", err)
	}
}

func TestCapturerCloseWhileRunningFails(t *testing.T) {
	e, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	capt, _ := e.NewScreenCapturer("display-0")
	src, _ := e.NewVideoSource(true)
	helper, _ := e.NewCaptureHelper()

	if err := capt.Initialize(helper, src); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := capt.Start(640, 480, 30); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := capt.Close(); err == nil {
		t.Fatal("expected Close to fail while running")
	}
	if err := capt.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := capt.Close(); err != nil {
		t.Fatalf("Close after Stop: %v", err)
	}
}

func TestStreamHoldsOneTrackPerKind(t *testing.T) {
	e, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	src, _ := e.NewVideoSource(true)
	v1, err := e.NewVideoTrack("video-1", src)
	if err != nil {
		t.Fatalf("NewVideoTrack: %v", err)
	}
	v2, err := e.NewVideoTrack("video-2", src)
	if err != nil {
		t.Fatalf("NewVideoTrack: %v", err)
	}

	stream := e.NewLocalStream("stream-1")
	if err := stream.AddTrack(v1); err != nil {
		t.Fatalf("AddTrack: %v", err)
	}
	if err := stream.AddTrack(v2); err == nil {
		t.Fatal("expected second video track to be rejected")
	}
	if stream.VideoTrack() != media.Track(v1) {
		t.Error("stream video track mismatch")
	}
}
