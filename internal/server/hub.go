// Package server is the signaling relay: a WebSocket hub that pairs two
// peers per room and forwards negotiation envelopes between them verbatim.
package server

import (
	"encoding/json"
	"log/slog"

	"github.com/screenbeam/screenbeam/internal/signaling"
)

// roomCapacity bounds a room to one sharing pair.
const roomCapacity = 2

type inbound struct {
	client *Client
	env    signaling.Envelope
}

// Hub routes envelopes between the two members of each room. All state is
// owned by the Run goroutine; clients talk to it over channels.
type Hub struct {
	rooms map[string][]*Client
	log   *slog.Logger

	register   chan *Client
	unregister chan *Client
	messages   chan inbound
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string][]*Client),
		log:        slog.Default(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		messages:   make(chan inbound),
		done:       make(chan struct{}),
	}
}

// Run owns the hub state until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.log.Debug("client connected", "client", client.Label)

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.messages:
			h.route(msg)

		case <-h.done:
			return
		}
	}
}

// Stop terminates the Run loop.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) route(msg inbound) {
	switch msg.env.Event {
	case signaling.EventJoinRoom:
		h.joinRoom(msg)
	case signaling.EventOffer, signaling.EventAnswer, signaling.EventICECandidate:
		h.relay(msg)
	default:
		h.log.Debug("unknown event", "event", msg.env.Event, "client", msg.client.Label)
	}
}

func (h *Hub) joinRoom(msg inbound) {
	var payload signaling.JoinRoomPayload
	if err := json.Unmarshal(msg.env.Data, &payload); err != nil || payload.RoomID == "" {
		h.sendError(msg.client, "invalid join payload")
		return
	}

	members := h.rooms[payload.RoomID]
	if len(members) >= roomCapacity {
		h.log.Warn("room full", "room", payload.RoomID, "client", msg.client.Label)
		h.sendError(msg.client, "room is full")
		return
	}

	msg.client.room = payload.RoomID
	h.rooms[payload.RoomID] = append(members, msg.client)
	h.log.Info("client joined room", "room", payload.RoomID, "client", msg.client.Label, "members", len(members)+1)

	// Existing members learn about the newcomer and initiate the offer.
	for _, other := range members {
		h.send(other, signaling.Envelope{Event: signaling.EventPeerJoined})
	}
}

// relay forwards the envelope untouched to the other room members.
func (h *Hub) relay(msg inbound) {
	if msg.client.room == "" {
		h.sendError(msg.client, "not in a room")
		return
	}
	for _, other := range h.rooms[msg.client.room] {
		if other != msg.client {
			h.send(other, msg.env)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	if client.room != "" {
		members := h.rooms[client.room]
		for i, member := range members {
			if member == client {
				h.rooms[client.room] = append(members[:i], members[i+1:]...)
				break
			}
		}
		if len(h.rooms[client.room]) == 0 {
			delete(h.rooms, client.room)
		}
		h.log.Info("client left room", "room", client.room, "client", client.Label)
	}
	close(client.send)
}

func (h *Hub) send(client *Client, env signaling.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.log.Error("marshal envelope", "error", err)
		return
	}
	select {
	case client.send <- data:
	default:
		h.log.Warn("client send buffer full, dropping", "client", client.Label)
	}
}

func (h *Hub) sendError(client *Client, reason string) {
	data, _ := json.Marshal(signaling.ErrorPayload{Error: reason})
	h.send(client, signaling.Envelope{Event: signaling.EventError, Data: data})
}
