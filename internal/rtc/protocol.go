package rtc

import (
	"encoding/json"
	"log/slog"

	"github.com/screenbeam/screenbeam/internal/media"
	"github.com/screenbeam/screenbeam/internal/signaling"
)

// Actions is the inbound surface the protocol drives. Controller implements
// it; tests substitute recorders.
type Actions interface {
	Start(roomID string) error
	HandlePeerJoined()
	HandleOffer(desc media.SessionDescription)
	HandleAnswer(desc media.SessionDescription)
	HandleCandidate(cand media.ICECandidate)
}

// Protocol binds the signaling channel's events to Actions. Malformed
// payloads are logged and dropped; they never reach the session core.
type Protocol struct {
	ch      signaling.Channel
	actions Actions
	roomID  string
	log     *slog.Logger
}

func NewProtocol(ch signaling.Channel, actions Actions, roomID string) *Protocol {
	return &Protocol{ch: ch, actions: actions, roomID: roomID, log: slog.Default()}
}

// Bind registers the event handlers. The room is joined on every connect, so
// a reconnect re-enters the room automatically.
func (p *Protocol) Bind() {
	p.ch.OnConnect(func() {
		if err := p.actions.Start(p.roomID); err != nil {
			p.log.Error("start session", "error", err)
			return
		}
		if err := p.ch.Emit(signaling.EventJoinRoom, signaling.JoinRoomPayload{RoomID: p.roomID}); err != nil {
			p.log.Error("join room", "error", err)
		}
	})

	p.ch.On(signaling.EventPeerJoined, func(json.RawMessage) {
		p.actions.HandlePeerJoined()
	})

	p.ch.On(signaling.EventOffer, func(data json.RawMessage) {
		var payload signaling.OfferPayload
		if err := json.Unmarshal(data, &payload); err != nil || payload.Offer.SDP == "" {
			p.log.Warn("malformed offer payload, dropping", "error", err)
			return
		}
		p.actions.HandleOffer(media.SessionDescription{
			Type: payload.Offer.Type,
			SDP:  payload.Offer.SDP,
		})
	})

	p.ch.On(signaling.EventAnswer, func(data json.RawMessage) {
		var payload signaling.AnswerPayload
		if err := json.Unmarshal(data, &payload); err != nil || payload.Answer.SDP == "" {
			p.log.Warn("malformed answer payload, dropping", "error", err)
			return
		}
		p.actions.HandleAnswer(media.SessionDescription{
			Type: payload.Answer.Type,
			SDP:  payload.Answer.SDP,
		})
	})

	p.ch.On(signaling.EventICECandidate, func(data json.RawMessage) {
		var payload signaling.CandidatePayload
		if err := json.Unmarshal(data, &payload); err != nil || payload.Candidate.Candidate == "" {
			p.log.Warn("malformed candidate payload, dropping", "error", err)
			return
		}
		p.actions.HandleCandidate(media.ICECandidate{
			SDPMid:        payload.Candidate.SDPMid,
			SDPMLineIndex: payload.Candidate.SDPMLineIndex,
			Candidate:     payload.Candidate.Candidate,
		})
	})

	p.ch.On(signaling.EventError, func(data json.RawMessage) {
		var payload signaling.ErrorPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return
		}
		p.log.Error("signaling server error", "error", payload.Error)
	})
}
