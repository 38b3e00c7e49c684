package rtc

import (
	"log/slog"

	"github.com/screenbeam/screenbeam/internal/media"
)

const (
	localStreamID = "screenbeam-stream"
	videoTrackID  = "screenbeam-video"
	audioTrackID  = "screenbeam-audio"
)

// TrackManager owns the capture pipeline and the local stream. All methods
// run with the controller's lock held.
type TrackManager struct {
	engine media.Engine
	events *Events
	log    *slog.Logger

	stream      *media.LocalStream
	capturer    media.Capturer
	videoSource media.VideoSource
	audioSource media.AudioSource
	helper      media.Helper

	// permit is retained so capture can restart within the session without a
	// fresh platform grant.
	permit media.CapturePermit
}

func newTrackManager(engine media.Engine, events *Events, log *slog.Logger) *TrackManager {
	return &TrackManager{engine: engine, events: events, log: log}
}

// tracks returns the local tracks to attach, video first. Empty when capture
// is not running.
func (m *TrackManager) tracks() []media.Track {
	if m.stream == nil {
		return nil
	}
	return m.stream.Tracks()
}

// startCapture builds the capture pipeline and local stream. A running
// pipeline is torn down first; a nil permit falls back to the retained one.
func (m *TrackManager) startCapture(permit media.CapturePermit, screencast bool, width, height, fps int) error {
	if permit == nil {
		permit = m.permit
	}
	if permit == nil {
		m.events.captureStatus(CaptureFailed)
		return opErr("start capture", ErrPermissionMissing)
	}

	m.disposePipeline()
	m.disposeStream()

	if err := m.buildPipeline(permit, screencast, width, height, fps); err != nil {
		m.disposePipeline()
		m.disposeStream()
		m.events.captureStatus(CaptureFailed)
		return err
	}

	m.permit = permit
	m.events.captureStatus(CaptureStarted)
	return nil
}

func (m *TrackManager) buildPipeline(permit media.CapturePermit, screencast bool, width, height, fps int) error {
	capturer, err := m.engine.NewScreenCapturer(permit)
	if err != nil {
		return opErr("create capturer", err)
	}
	m.capturer = capturer

	helper, err := m.engine.NewCaptureHelper()
	if err != nil {
		return opErr("create capture helper", err)
	}
	m.helper = helper

	videoSource, err := m.engine.NewVideoSource(screencast)
	if err != nil {
		return opErr("create video source", err)
	}
	m.videoSource = videoSource

	if err := capturer.Initialize(helper, videoSource); err != nil {
		return opErr("initialize capturer", err)
	}

	audioSource, err := m.engine.NewAudioSource()
	if err != nil {
		return opErr("create audio source", err)
	}
	m.audioSource = audioSource

	videoTrack, err := m.engine.NewVideoTrack(videoTrackID, videoSource)
	if err != nil {
		return opErr("create video track", err)
	}
	audioTrack, err := m.engine.NewAudioTrack(audioTrackID, audioSource)
	if err != nil {
		return opErr("create audio track", err)
	}

	stream := m.engine.NewLocalStream(localStreamID)
	if err := stream.AddTrack(videoTrack); err != nil {
		return opErr("add video track", err)
	}
	if err := stream.AddTrack(audioTrack); err != nil {
		return opErr("add audio track", err)
	}
	m.stream = stream

	if err := capturer.Start(width, height, fps); err != nil {
		return opErr("start capturer", err)
	}
	return nil
}

// stopCapture tears the pipeline down and disposes the stream.
func (m *TrackManager) stopCapture() {
	if m.stream == nil && m.capturer == nil {
		return
	}
	m.disposePipeline()
	m.disposeStream()
	m.events.captureStatus(CaptureStopped)
}

// toggleAudio sets the audio track's enabled flag. Mute only, no
// renegotiation.
func (m *TrackManager) toggleAudio(enable bool) error {
	if m.stream == nil || m.stream.AudioTrack() == nil {
		return ErrNoStream
	}
	m.stream.AudioTrack().SetEnabled(enable)
	return nil
}

// toggleVideo sets the video track's enabled flag.
func (m *TrackManager) toggleVideo(enable bool) error {
	if m.stream == nil || m.stream.VideoTrack() == nil {
		return ErrNoStream
	}
	m.stream.VideoTrack().SetEnabled(enable)
	return nil
}

// disposePipeline releases the capture pipeline in the engine's required
// order. Idempotent.
func (m *TrackManager) disposePipeline() {
	if m.capturer != nil {
		if err := m.capturer.Stop(); err != nil {
			m.log.Warn("stop capturer failed", "error", err)
		}
		if err := m.capturer.Close(); err != nil {
			m.log.Warn("close capturer failed", "error", err)
		}
		m.capturer = nil
	}
	if m.videoSource != nil {
		if err := m.videoSource.Close(); err != nil {
			m.log.Warn("close video source failed", "error", err)
		}
		m.videoSource = nil
	}
	if m.audioSource != nil {
		if err := m.audioSource.Close(); err != nil {
			m.log.Warn("close audio source failed", "error", err)
		}
		m.audioSource = nil
	}
	if m.helper != nil {
		if err := m.helper.Close(); err != nil {
			m.log.Warn("close capture helper failed", "error", err)
		}
		m.helper = nil
	}
}

func (m *TrackManager) disposeStream() {
	if m.stream == nil {
		return
	}
	if err := m.stream.Close(); err != nil {
		m.log.Warn("close stream failed", "error", err)
	}
	m.stream = nil
}

// close releases everything including the retained permit. The stream goes
// before the pipeline, so no track outlives its source.
func (m *TrackManager) close() {
	m.disposeStream()
	m.disposePipeline()
	m.permit = nil
}
