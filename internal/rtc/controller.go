// Package rtc is the session core: it drives SDP negotiation, ICE relay and
// track lifecycle for a two-party room over a signaling channel and a media
// engine. A single Controller serializes all state behind one lock.
package rtc

import (
	"log/slog"
	"sync"

	"github.com/screenbeam/screenbeam/internal/media"
	"github.com/screenbeam/screenbeam/internal/signaling"
	"github.com/screenbeam/screenbeam/internal/wire"
)

// Controller owns at most one Session and one capture pipeline at a time.
type Controller struct {
	mu     sync.Mutex
	ch     signaling.Channel
	engine media.Engine
	events *Events
	log    *slog.Logger

	roomID  string
	session *Session
	tracks  *TrackManager
	started bool
	torn    bool
}

var _ Actions = (*Controller)(nil)

// NewController wires the engine and channel together. Events may be nil.
func NewController(engine media.Engine, ch signaling.Channel, events *Events) *Controller {
	log := slog.Default()
	return &Controller{
		ch:     ch,
		engine: engine,
		events: events,
		log:    log,
		tracks: newTrackManager(engine, events, log),
	}
}

// Start records the room and reports the connecting status. Idempotent.
func (c *Controller) Start(roomID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.torn {
		return ErrSessionClosed
	}
	if c.started {
		return nil
	}
	c.started = true
	c.roomID = roomID
	c.events.status(StatusConnecting)
	return nil
}

// HandlePeerJoined creates a fresh session for the joined peer, attaches any
// live local tracks and sends a single offer. A stale session is replaced.
func (c *Controller) HandlePeerJoined() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.torn || !c.started {
		return
	}

	if c.session != nil {
		c.log.Info("replacing existing session for new peer")
		c.session.dispose()
		c.session = nil
	}

	s, err := newSession(c)
	if err != nil {
		c.events.failure(err)
		return
	}
	c.session = s
	c.events.peerJoined()

	// With no tracks yet the offer still goes out, carrying the recvonly
	// media sections, so the data channel and ICE can establish.
	s.negotiationPending = true
	if err := s.attachAndNegotiate(c.tracks.tracks()); err != nil {
		c.events.failure(err)
	}
}

// HandleOffer answers the remote offer, reusing the live session when one
// exists. Local tracks are attached before the answer so they ride in it
// without a counter-offer.
func (c *Controller) HandleOffer(desc media.SessionDescription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.torn || !c.started {
		return
	}

	if c.session == nil {
		s, err := newSession(c)
		if err != nil {
			c.events.failure(err)
			return
		}
		c.session = s

		for _, t := range c.tracks.tracks() {
			if err := s.attach(t); err != nil {
				c.events.failure(err)
			}
		}
	}

	c.session.acceptOffer(desc)
}

// HandleAnswer applies the remote answer. Without a session it is dropped.
func (c *Controller) HandleAnswer(desc media.SessionDescription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		c.log.Warn("answer received with no session, dropping")
		return
	}
	c.session.acceptAnswer(desc)
}

// HandleCandidate routes a remote candidate to the session. Without a session
// it is dropped; the session buffers candidates that arrive before the remote
// description.
func (c *Controller) HandleCandidate(cand media.ICECandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		c.log.Debug("candidate received with no session, dropping")
		return
	}
	c.session.addCandidate(cand)
}

// StartCapture builds the capture pipeline and, with a live session,
// renegotiates so the new tracks reach the peer. screencast selects screen
// capture over camera capture.
func (c *Controller) StartCapture(permit media.CapturePermit, screencast bool, width, height, fps int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.torn {
		return ErrSessionClosed
	}

	// Detach the previous pipeline's tracks before rebuilding it.
	if c.session != nil {
		c.session.detachAll()
	}

	if err := c.tracks.startCapture(permit, screencast, width, height, fps); err != nil {
		c.events.failure(err)
		return err
	}

	if c.session != nil {
		if err := c.session.attachAndNegotiate(c.tracks.tracks()); err != nil {
			c.events.failure(err)
			return err
		}
	}
	return nil
}

// StopCapture tears the pipeline down and renegotiates the tracks away.
func (c *Controller) StopCapture() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.detachAll()
	}
	c.tracks.stopCapture()
	if c.session != nil {
		c.session.negotiate()
	}
}

// ToggleAudio mutes or unmutes the local audio track.
func (c *Controller) ToggleAudio(enable bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracks.toggleAudio(enable)
}

// ToggleVideo pauses or resumes the local video track.
func (c *Controller) ToggleVideo(enable bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracks.toggleVideo(enable)
}

// SendChat sends a chat line as a text frame over the data channel.
func (c *Controller) SendChat(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ErrNoSession
	}
	return c.session.sendText(text)
}

// SendPayload sends a typed binary frame over the data channel.
func (c *Controller) SendPayload(msgType string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ErrNoSession
	}
	msg, err := wire.New(msgType, payload)
	if err != nil {
		return err
	}
	data, err := wire.Encode(msg)
	if err != nil {
		return err
	}
	return c.session.sendBinary(data)
}

// sessionLost disposes a dead session so a later peer-joined can build a new
// one. Called with the lock held, from the state change callback.
func (c *Controller) sessionLost(s *Session) {
	if c.session != s {
		return
	}
	s.dispose()
	c.session = nil
	c.events.status(StatusDisconnected)
	c.events.connection(false)
}

// Teardown releases everything in strict order: signaling first, then the
// session, the capture pipeline, and the engine last. Idempotent.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.torn {
		return
	}
	c.torn = true

	if err := c.ch.Disconnect(); err != nil {
		c.log.Warn("disconnect signaling failed", "error", err)
	}

	if c.session != nil {
		c.session.detachAll()
		c.session.dispose()
		c.session = nil
	}

	c.tracks.close()

	if err := c.engine.Close(); err != nil {
		c.log.Warn("close engine failed", "error", err)
	}

	c.events.status(StatusDisconnected)
}
