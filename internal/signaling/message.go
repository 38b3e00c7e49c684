package signaling

import "encoding/json"

// Envelope frames every message exchanged with the signaling server: a named
// event plus its JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event name constants.
const (
	EventJoinRoom     = "join room"
	EventPeerJoined   = "new user joined"
	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "new ice candidate"
	EventError        = "error"
)

// JoinRoomPayload is emitted by a client to enter a room.
type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

// Description carries one half of the SDP exchange.
type Description struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// OfferPayload carries an SDP offer.
type OfferPayload struct {
	Offer  Description `json:"offer"`
	RoomID string      `json:"roomId"`
}

// AnswerPayload carries an SDP answer.
type AnswerPayload struct {
	Answer Description `json:"answer"`
	RoomID string      `json:"roomId"`
}

// Candidate is a discovered ICE network path.
type Candidate struct {
	SDPMid        string `json:"sdpMid"`
	SDPMLineIndex uint16 `json:"sdpMLineIndex"`
	Candidate     string `json:"candidate"`
}

// CandidatePayload relays one ICE candidate.
type CandidatePayload struct {
	Candidate Candidate `json:"iceCandidate"`
	RoomID    string    `json:"roomId"`
}

// ErrorPayload represents error messages from the server.
type ErrorPayload struct {
	Error string `json:"error"`
}
