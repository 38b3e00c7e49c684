package pionengine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/screenbeam/screenbeam/internal/media"
)

// connection adapts *webrtc.PeerConnection to media.Connection.
type connection struct {
	pc  *webrtc.PeerConnection
	log *slog.Logger

	mu     sync.Mutex
	closed bool
}

var _ media.Connection = (*connection)(nil)

func newConnection(pc *webrtc.PeerConnection, log *slog.Logger) *connection {
	return &connection{pc: pc, log: log}
}

func (c *connection) CreateOffer() (media.SessionDescription, error) {
	desc, err := c.pc.CreateOffer(nil)
	if err != nil {
		return media.SessionDescription{}, fmt.Errorf("create offer: %w", err)
	}
	return media.SessionDescription{Type: desc.Type.String(), SDP: desc.SDP}, nil
}

func (c *connection) CreateAnswer() (media.SessionDescription, error) {
	desc, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return media.SessionDescription{}, fmt.Errorf("create answer: %w", err)
	}
	return media.SessionDescription{Type: desc.Type.String(), SDP: desc.SDP}, nil
}

func (c *connection) SetLocalDescription(desc media.SessionDescription) error {
	sd := webrtc.SessionDescription{Type: webrtc.NewSDPType(desc.Type), SDP: desc.SDP}
	if err := c.pc.SetLocalDescription(sd); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}
	return nil
}

func (c *connection) SetRemoteDescription(desc media.SessionDescription) error {
	sd := webrtc.SessionDescription{Type: webrtc.NewSDPType(desc.Type), SDP: desc.SDP}
	if err := c.pc.SetRemoteDescription(sd); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	return nil
}

func (c *connection) AddICECandidate(cand media.ICECandidate) error {
	mid := cand.SDPMid
	idx := cand.SDPMLineIndex
	init := webrtc.ICECandidateInit{
		Candidate:     cand.Candidate,
		SDPMid:        &mid,
		SDPMLineIndex: &idx,
	}
	if err := c.pc.AddICECandidate(init); err != nil {
		return fmt.Errorf("add ice candidate: %w", err)
	}
	return nil
}

func (c *connection) AddTrack(t media.Track) (media.Sender, error) {
	lt, ok := t.(*localTrack)
	if !ok {
		return nil, fmt.Errorf("track is not from this engine")
	}
	rtpSender, err := c.pc.AddTrack(lt.sample)
	if err != nil {
		return nil, fmt.Errorf("add track %s: %w", t.ID(), err)
	}

	// Drain RTCP so interceptors keep running.
	go func() {
		buf := make([]byte, 1500)
		for {
			if _, _, err := rtpSender.Read(buf); err != nil {
				return
			}
		}
	}()

	return &sender{rtp: rtpSender, track: lt}, nil
}

func (c *connection) RemoveTrack(s media.Sender) error {
	snd, ok := s.(*sender)
	if !ok {
		return fmt.Errorf("sender is not from this engine")
	}
	if err := c.pc.RemoveTrack(snd.rtp); err != nil {
		return fmt.Errorf("remove track: %w", err)
	}
	return nil
}

func (c *connection) OnICECandidate(fn func(media.ICECandidate)) {
	c.pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand == nil {
			return
		}
		j := cand.ToJSON()
		out := media.ICECandidate{Candidate: j.Candidate}
		if j.SDPMid != nil {
			out.SDPMid = *j.SDPMid
		}
		if j.SDPMLineIndex != nil {
			out.SDPMLineIndex = *j.SDPMLineIndex
		}
		fn(out)
	})
}

func (c *connection) OnConnectionStateChange(fn func(media.ConnectionState)) {
	c.pc.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		fn(mapICEState(state))
	})
}

func (c *connection) OnRemoteTrack(fn func(media.RemoteTrack)) {
	c.pc.OnTrack(func(tr *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		fn(newRemoteTrack(tr, c.log))
	})
}

func (c *connection) OnDataChannel(fn func(media.DataChannel)) {
	c.pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		fn(newDataChannel(dc))
	})
}

func (c *connection) OnNegotiationNeeded(fn func()) {
	c.pc.OnNegotiationNeeded(fn)
}

func (c *connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.pc.Close()
}

func mapICEState(state webrtc.ICEConnectionState) media.ConnectionState {
	switch state {
	case webrtc.ICEConnectionStateNew:
		return media.ConnectionStateNew
	case webrtc.ICEConnectionStateChecking:
		return media.ConnectionStateChecking
	case webrtc.ICEConnectionStateConnected:
		return media.ConnectionStateConnected
	case webrtc.ICEConnectionStateCompleted:
		return media.ConnectionStateCompleted
	case webrtc.ICEConnectionStateDisconnected:
		return media.ConnectionStateDisconnected
	case webrtc.ICEConnectionStateFailed:
		return media.ConnectionStateFailed
	case webrtc.ICEConnectionStateClosed:
		return media.ConnectionStateClosed
	}
	return media.ConnectionStateNew
}

// sender pairs the pion RTP sender with the local track it carries.
type sender struct {
	rtp   *webrtc.RTPSender
	track *localTrack
}

var _ media.Sender = (*sender)(nil)

func (s *sender) Track() media.Track { return s.track }
