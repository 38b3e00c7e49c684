package rtc

import (
	"log/slog"

	"github.com/screenbeam/screenbeam/internal/media"
	"github.com/screenbeam/screenbeam/internal/signaling"
	"github.com/screenbeam/screenbeam/internal/wire"
)

// Session is the negotiation state for one peer connection. Every method is
// called with the controller's lock held; engine callbacks reacquire it
// before touching session state.
type Session struct {
	c    *Controller
	conn media.Connection
	log  *slog.Logger

	senders     []media.Sender
	dataChannel media.DataChannel
	dcOpen      bool

	// Candidates received before the remote description is applied are held
	// here and flushed once it lands.
	pending       []media.ICECandidate
	remoteDescSet bool

	// negotiationPending marks that tracks changed since the last offer. An
	// offer created while one is already in flight is deferred until the
	// answer arrives, so each track change yields at most one offer.
	negotiationPending bool
	offerInFlight      bool
	offerQueued        bool

	disposed bool
}

func newSession(c *Controller) (*Session, error) {
	conn, err := c.engine.NewConnection()
	if err != nil {
		return nil, opErr("create connection", err)
	}

	s := &Session{c: c, conn: conn, log: c.log}

	conn.OnICECandidate(s.onICECandidate)
	conn.OnConnectionStateChange(s.onConnectionStateChange)
	conn.OnRemoteTrack(s.onRemoteTrack)
	conn.OnDataChannel(s.onDataChannel)
	conn.OnNegotiationNeeded(s.onNegotiationNeeded)

	// Every session enters negotiating, including ones rebuilt after a
	// disconnect, so the listener sees the transition each time.
	c.events.status(StatusConnecting)

	return s, nil
}

// attach adds a track without scheduling an offer. The answerer path uses it
// so that tracks land in the answer instead of a counter-offer.
func (s *Session) attach(t media.Track) error {
	if s.disposed {
		return ErrSessionClosed
	}
	sender, err := s.conn.AddTrack(t)
	if err != nil {
		return opErr("attach track", err)
	}
	s.senders = append(s.senders, sender)
	return nil
}

// attachAndNegotiate adds tracks and schedules a single offer covering all
// of them.
func (s *Session) attachAndNegotiate(tracks []media.Track) error {
	for _, t := range tracks {
		if err := s.attach(t); err != nil {
			return err
		}
		s.negotiationPending = true
	}
	s.negotiate()
	return nil
}

// detachAll removes every attached track and marks renegotiation pending.
func (s *Session) detachAll() {
	for _, sender := range s.senders {
		if err := s.conn.RemoveTrack(sender); err != nil {
			s.log.Warn("detach track failed", "error", err)
		}
		s.negotiationPending = true
	}
	s.senders = nil
}

// negotiate creates and emits an offer if tracks changed since the last one.
// With an offer already in flight, the follow-up is queued and fired when the
// answer arrives.
func (s *Session) negotiate() {
	if s.disposed || !s.negotiationPending {
		return
	}
	if s.offerInFlight {
		s.offerQueued = true
		return
	}
	s.negotiationPending = false
	s.offerInFlight = true

	offer, err := s.conn.CreateOffer()
	if err != nil {
		s.offerInFlight = false
		s.fail("create offer", err)
		return
	}
	s.applyAndEmit(offer, signaling.EventOffer)
}

// acceptOffer applies the remote offer and emits the answer.
func (s *Session) acceptOffer(desc media.SessionDescription) {
	if s.disposed {
		return
	}
	if err := s.conn.SetRemoteDescription(desc); err != nil {
		s.fail("set remote offer", err)
		return
	}
	s.remoteDescSet = true
	s.flushCandidates()

	answer, err := s.conn.CreateAnswer()
	if err != nil {
		s.fail("create answer", err)
		return
	}
	s.applyAndEmit(answer, signaling.EventAnswer)
}

// acceptAnswer applies the remote answer and fires any queued offer.
func (s *Session) acceptAnswer(desc media.SessionDescription) {
	if s.disposed {
		return
	}
	if err := s.conn.SetRemoteDescription(desc); err != nil {
		s.offerInFlight = false
		s.fail("set remote answer", err)
		return
	}
	s.remoteDescSet = true
	s.offerInFlight = false
	s.flushCandidates()

	if s.offerQueued {
		s.offerQueued = false
		s.negotiationPending = true
		s.negotiate()
	}
}

// applyAndEmit emits the local description immediately and applies it to the
// connection concurrently, so signaling is never blocked behind the engine.
func (s *Session) applyAndEmit(desc media.SessionDescription, event string) {
	conn := s.conn
	go func() {
		if err := conn.SetLocalDescription(desc); err != nil {
			s.c.mu.Lock()
			s.fail("set local description", err)
			s.c.mu.Unlock()
		}
	}()

	wireDesc := signaling.Description{Type: desc.Type, SDP: desc.SDP}
	var payload any
	switch event {
	case signaling.EventOffer:
		payload = signaling.OfferPayload{Offer: wireDesc, RoomID: s.c.roomID}
	case signaling.EventAnswer:
		payload = signaling.AnswerPayload{Answer: wireDesc, RoomID: s.c.roomID}
	}
	if err := s.c.ch.Emit(event, payload); err != nil {
		s.fail("emit "+event, err)
	}
}

// addCandidate applies the candidate, or buffers it until the remote
// description lands.
func (s *Session) addCandidate(cand media.ICECandidate) {
	if s.disposed {
		return
	}
	if !s.remoteDescSet {
		s.pending = append(s.pending, cand)
		return
	}
	if err := s.conn.AddICECandidate(cand); err != nil {
		s.log.Warn("add ice candidate failed", "error", err)
	}
}

func (s *Session) flushCandidates() {
	for _, cand := range s.pending {
		if err := s.conn.AddICECandidate(cand); err != nil {
			s.log.Warn("flush ice candidate failed", "error", err)
		}
	}
	s.pending = nil
}

func (s *Session) onICECandidate(cand media.ICECandidate) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.disposed {
		return
	}
	payload := signaling.CandidatePayload{
		Candidate: signaling.Candidate{
			SDPMid:        cand.SDPMid,
			SDPMLineIndex: cand.SDPMLineIndex,
			Candidate:     cand.Candidate,
		},
		RoomID: s.c.roomID,
	}
	if err := s.c.ch.Emit(signaling.EventICECandidate, payload); err != nil {
		s.fail("emit candidate", err)
	}
}

func (s *Session) onConnectionStateChange(state media.ConnectionState) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.disposed {
		return
	}
	s.log.Debug("connection state", "state", state)

	switch state {
	case media.ConnectionStateConnected:
		s.c.events.status(StatusConnected)
		s.c.events.connection(true)
	case media.ConnectionStateDisconnected, media.ConnectionStateFailed:
		s.c.sessionLost(s)
	}
}

// onRemoteTrack applies the send-only policy: remote audio plays, remote
// video is refused.
func (s *Session) onRemoteTrack(t media.RemoteTrack) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.disposed {
		return
	}
	t.SetEnabled(t.Kind() == media.TrackKindAudio)
	s.c.events.remoteTrack(t.Kind(), t.ID())
}

func (s *Session) onDataChannel(dc media.DataChannel) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.disposed {
		dc.Close()
		return
	}
	s.dataChannel = dc

	dc.OnStateChange(func(state media.DataChannelState) {
		s.c.mu.Lock()
		s.dcOpen = state == media.DataChannelOpen
		s.c.mu.Unlock()
		s.c.events.dataChannelState(state)
	})

	dc.OnMessage(func(data []byte, isText bool) {
		if isText {
			s.c.events.chatMessage(string(data))
			return
		}
		s.handleBinaryFrame(data)
	})
}

func (s *Session) handleBinaryFrame(data []byte) {
	msg, err := wire.Decode(data)
	if err != nil {
		s.log.Warn("malformed data channel frame", "error", err)
		return
	}
	switch msg.Type {
	case wire.TypeChat:
		var chat wire.ChatPayload
		if err := wire.DecodePayload(msg, &chat); err != nil {
			s.log.Warn("malformed chat payload", "error", err)
			return
		}
		s.c.events.chatMessage(chat.Text)
	case wire.TypeDeviceInfo:
		var info wire.DeviceInfo
		if err := wire.DecodePayload(msg, &info); err != nil {
			s.log.Warn("malformed device info payload", "error", err)
			return
		}
		s.log.Info("peer device", "name", info.DeviceName, "version", info.DeviceVersion)
	default:
		s.log.Debug("unknown data channel frame", "type", msg.Type)
	}
}

func (s *Session) onNegotiationNeeded() {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	s.negotiate()
}

func (s *Session) sendText(text string) error {
	if s.dataChannel == nil || !s.dcOpen {
		return ErrChannelNotOpen
	}
	return s.dataChannel.SendText(text)
}

func (s *Session) sendBinary(data []byte) error {
	if s.dataChannel == nil || !s.dcOpen {
		return ErrChannelNotOpen
	}
	return s.dataChannel.Send(data)
}

func (s *Session) fail(op string, err error) {
	serr := opErr(op, err)
	s.log.Error("session failure", "op", op, "error", err)
	s.c.events.failure(serr)
}

// dispose closes the data channel before the connection. Idempotent.
func (s *Session) dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	if s.dataChannel != nil {
		s.dataChannel.Close()
		s.dataChannel = nil
		s.dcOpen = false
	}
	if err := s.conn.Close(); err != nil {
		s.log.Warn("close connection failed", "error", err)
	}
	s.senders = nil
	s.pending = nil
}
