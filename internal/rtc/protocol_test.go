package rtc

import (
	"errors"
	"sync"
	"testing"

	"github.com/screenbeam/screenbeam/internal/media"
	"github.com/screenbeam/screenbeam/internal/signaling"
)

type recordedActions struct {
	mu         sync.Mutex
	started    []string
	joins      int
	offers     []media.SessionDescription
	answers    []media.SessionDescription
	candidates []media.ICECandidate
}

var _ Actions = (*recordedActions)(nil)

func (a *recordedActions) Start(roomID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.started = append(a.started, roomID)
	return nil
}

func (a *recordedActions) HandlePeerJoined() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.joins++
}

func (a *recordedActions) HandleOffer(desc media.SessionDescription) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.offers = append(a.offers, desc)
}

func (a *recordedActions) HandleAnswer(desc media.SessionDescription) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.answers = append(a.answers, desc)
}

func (a *recordedActions) HandleCandidate(cand media.ICECandidate) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.candidates = append(a.candidates, cand)
}

func TestProtocolJoinsRoomOnConnect(t *testing.T) {
	ch := newFakeChannel()
	actions := &recordedActions{}
	NewProtocol(ch, actions, "room-42").Bind()

	if err := ch.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	joins := ch.sent(signaling.EventJoinRoom)
	if len(joins) != 1 {
		t.Fatalf("join emits = %d, want 1", len(joins))
	}
	if string(joins[0].Data) != `{"roomId":"room-42"}` {
		t.Errorf("join payload = %s", joins[0].Data)
	}
	if len(actions.started) != 1 || actions.started[0] != "room-42" {
		t.Errorf("started = %v, want [room-42]", actions.started)
	}

	// Reconnect re-enters the room.
	if err := ch.Connect(); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if got := len(ch.sent(signaling.EventJoinRoom)); got != 2 {
		t.Errorf("join emits after reconnect = %d, want 2", got)
	}
}

func TestProtocolRoutesEvents(t *testing.T) {
	ch := newFakeChannel()
	actions := &recordedActions{}
	NewProtocol(ch, actions, "room-42").Bind()

	ch.deliver(signaling.EventPeerJoined, nil)
	ch.deliver(signaling.EventOffer, signaling.OfferPayload{
		Offer:  signaling.Description{Type: "offer", SDP: "o-sdp"},
		RoomID: "room-42",
	})
	ch.deliver(signaling.EventAnswer, signaling.AnswerPayload{
		Answer: signaling.Description{Type: "answer", SDP: "a-sdp"},
		RoomID: "room-42",
	})
	ch.deliver(signaling.EventICECandidate, signaling.CandidatePayload{
		Candidate: signaling.Candidate{SDPMid: "0", SDPMLineIndex: 0, Candidate: "candidate:1"},
		RoomID:    "room-42",
	})

	if actions.joins != 1 {
		t.Errorf("joins = %d, want 1", actions.joins)
	}
	if len(actions.offers) != 1 || actions.offers[0].SDP != "o-sdp" {
		t.Errorf("offers = %v", actions.offers)
	}
	if len(actions.answers) != 1 || actions.answers[0].SDP != "a-sdp" {
		t.Errorf("answers = %v", actions.answers)
	}
	if len(actions.candidates) != 1 || actions.candidates[0].Candidate != "candidate:1" {
		t.Errorf("candidates = %v", actions.candidates)
	}
}

func TestProtocolDropsMalformedPayloads(t *testing.T) {
	ch := newFakeChannel()
	actions := &recordedActions{}
	NewProtocol(ch, actions, "room-42").Bind()

	for _, h := range ch.handlers[signaling.EventOffer] {
		h([]byte(`{"offer":`))
		h([]byte(`{"offer":{"type":"offer","sdp":""}}`))
	}
	for _, h := range ch.handlers[signaling.EventAnswer] {
		h([]byte(`not json`))
	}
	for _, h := range ch.handlers[signaling.EventICECandidate] {
		h([]byte(`{"iceCandidate":{}}`))
	}

	if len(actions.offers) != 0 {
		t.Errorf("offers = %v, want none", actions.offers)
	}
	if len(actions.answers) != 0 {
		t.Errorf("answers = %v, want none", actions.answers)
	}
	if len(actions.candidates) != 0 {
		t.Errorf("candidates = %v, want none", actions.candidates)
	}
}

func TestPeerJoinedEngineFailureReported(t *testing.T) {
	engine := newFakeEngine()
	engine.connErr = errors.New("no codecs")
	ch := newFakeChannel()
	log := &eventLog{}
	c := NewController(engine, ch, log.events())
	c.Start("room-1")

	c.HandlePeerJoined()

	log.mu.Lock()
	errCount := len(log.errors)
	log.mu.Unlock()
	if errCount != 1 {
		t.Fatalf("error events = %d, want 1", errCount)
	}
	if got := len(ch.sent(signaling.EventOffer)); got != 0 {
		t.Errorf("offers emitted = %d, want 0", got)
	}
}
