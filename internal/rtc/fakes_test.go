package rtc

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/screenbeam/screenbeam/internal/media"
	"github.com/screenbeam/screenbeam/internal/signaling"
)

// recorder collects ordered disposal and lifecycle entries across fakes.
type recorder struct {
	mu      sync.Mutex
	entries []string
}

func (r *recorder) add(entry string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.entries...)
}

// fakeChannel records emitted envelopes and lets tests inject events.
type fakeChannel struct {
	mu           sync.Mutex
	emitted      []signaling.Envelope
	handlers     map[string][]signaling.Handler
	connectFns   []func()
	disconnected bool
}

var _ signaling.Channel = (*fakeChannel)(nil)

func newFakeChannel() *fakeChannel {
	return &fakeChannel{handlers: make(map[string][]signaling.Handler)}
}

func (f *fakeChannel) Connect() error {
	f.mu.Lock()
	fns := append([]func(){}, f.connectFns...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return nil
}

func (f *fakeChannel) Emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitted = append(f.emitted, signaling.Envelope{Event: event, Data: data})
	return nil
}

func (f *fakeChannel) On(event string, h signaling.Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[event] = append(f.handlers[event], h)
}

func (f *fakeChannel) OnConnect(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectFns = append(f.connectFns, fn)
}

func (f *fakeChannel) OnDisconnect(fn func()) {}

func (f *fakeChannel) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected = true
	return nil
}

func (f *fakeChannel) deliver(event string, payload any) {
	data, _ := json.Marshal(payload)
	f.mu.Lock()
	handlers := append([]signaling.Handler{}, f.handlers[event]...)
	f.mu.Unlock()
	for _, h := range handlers {
		h(data)
	}
}

func (f *fakeChannel) sent(event string) []signaling.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []signaling.Envelope
	for _, env := range f.emitted {
		if env.Event == event {
			out = append(out, env)
		}
	}
	return out
}

// fakeEngine builds fake connections and capture pieces, recording disposals.
type fakeEngine struct {
	rec *recorder

	mu          sync.Mutex
	connections []*fakeConnection
	closed      bool
	connErr     error
}

var _ media.Engine = (*fakeEngine)(nil)

func newFakeEngine() *fakeEngine {
	return &fakeEngine{rec: &recorder{}}
}

func (e *fakeEngine) NewConnection() (media.Connection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.connErr != nil {
		return nil, e.connErr
	}
	c := &fakeConnection{rec: e.rec}
	e.connections = append(e.connections, c)
	return c, nil
}

func (e *fakeEngine) conn(i int) *fakeConnection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connections[i]
}

func (e *fakeEngine) connCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.connections)
}

func (e *fakeEngine) NewScreenCapturer(permit media.CapturePermit) (media.Capturer, error) {
	if permit == nil {
		return nil, fmt.Errorf("capture permit required")
	}
	return &fakeCapturer{rec: e.rec}, nil
}

func (e *fakeEngine) NewVideoSource(screencast bool) (media.VideoSource, error) {
	return &fakePiece{rec: e.rec, name: "video-source"}, nil
}

func (e *fakeEngine) NewAudioSource() (media.AudioSource, error) {
	return &fakePiece{rec: e.rec, name: "audio-source"}, nil
}

func (e *fakeEngine) NewCaptureHelper() (media.Helper, error) {
	return &fakePiece{rec: e.rec, name: "helper"}, nil
}

func (e *fakeEngine) NewVideoTrack(id string, src media.VideoSource) (media.Track, error) {
	return &fakeTrack{rec: e.rec, id: id, kind: media.TrackKindVideo, enabled: true}, nil
}

func (e *fakeEngine) NewAudioTrack(id string, src media.AudioSource) (media.Track, error) {
	return &fakeTrack{rec: e.rec, id: id, kind: media.TrackKindAudio, enabled: true}, nil
}

func (e *fakeEngine) NewLocalStream(id string) *media.LocalStream {
	return media.NewLocalStream(id)
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.rec.add("engine.close")
	return nil
}

// fakeConnection captures callbacks so tests can fire engine events, and
// records every mutation.
type fakeConnection struct {
	rec *recorder

	mu            sync.Mutex
	offers        int
	answers       int
	localDescs    []media.SessionDescription
	remoteDescs   []media.SessionDescription
	candidates    []media.ICECandidate
	senders       []*fakeSender
	removed       []*fakeSender
	closed        bool
	remoteDescErr error

	onICECandidate  func(media.ICECandidate)
	onStateChange   func(media.ConnectionState)
	onRemoteTrack   func(media.RemoteTrack)
	onDataChannel   func(media.DataChannel)
	onNegotiationFn func()
}

var _ media.Connection = (*fakeConnection)(nil)

func (c *fakeConnection) CreateOffer() (media.SessionDescription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offers++
	return media.SessionDescription{Type: "offer", SDP: fmt.Sprintf("offer-sdp-%d", c.offers)}, nil
}

func (c *fakeConnection) CreateAnswer() (media.SessionDescription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers++
	return media.SessionDescription{Type: "answer", SDP: fmt.Sprintf("answer-sdp-%d", c.answers)}, nil
}

func (c *fakeConnection) SetLocalDescription(desc media.SessionDescription) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.localDescs = append(c.localDescs, desc)
	return nil
}

func (c *fakeConnection) SetRemoteDescription(desc media.SessionDescription) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remoteDescErr != nil {
		return c.remoteDescErr
	}
	c.remoteDescs = append(c.remoteDescs, desc)
	return nil
}

func (c *fakeConnection) AddICECandidate(cand media.ICECandidate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.candidates = append(c.candidates, cand)
	return nil
}

func (c *fakeConnection) AddTrack(t media.Track) (media.Sender, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := &fakeSender{track: t}
	c.senders = append(c.senders, s)
	return s, nil
}

func (c *fakeConnection) RemoveTrack(s media.Sender) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removed = append(c.removed, s.(*fakeSender))
	return nil
}

func (c *fakeConnection) OnICECandidate(fn func(media.ICECandidate)) { c.onICECandidate = fn }
func (c *fakeConnection) OnConnectionStateChange(fn func(media.ConnectionState)) {
	c.onStateChange = fn
}
func (c *fakeConnection) OnRemoteTrack(fn func(media.RemoteTrack)) { c.onRemoteTrack = fn }
func (c *fakeConnection) OnDataChannel(fn func(media.DataChannel)) { c.onDataChannel = fn }
func (c *fakeConnection) OnNegotiationNeeded(fn func())            { c.onNegotiationFn = fn }

func (c *fakeConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.rec.add("connection.close")
	return nil
}

func (c *fakeConnection) offerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offers
}

func (c *fakeConnection) candidateCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.candidates)
}

func (c *fakeConnection) senderCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.senders) - len(c.removed)
}

type fakeSender struct {
	track media.Track
}

func (s *fakeSender) Track() media.Track { return s.track }

type fakeTrack struct {
	rec  *recorder
	id   string
	kind media.TrackKind

	mu      sync.Mutex
	enabled bool
}

var _ media.Track = (*fakeTrack)(nil)

func (t *fakeTrack) ID() string            { return t.id }
func (t *fakeTrack) Kind() media.TrackKind { return t.kind }
func (t *fakeTrack) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}
func (t *fakeTrack) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}
func (t *fakeTrack) Close() error {
	if t.rec != nil {
		t.rec.add(string(t.kind) + "-track.close")
	}
	return nil
}

type fakeRemoteTrack struct {
	id   string
	kind media.TrackKind

	mu      sync.Mutex
	enabled bool
}

var _ media.RemoteTrack = (*fakeRemoteTrack)(nil)

func (t *fakeRemoteTrack) ID() string            { return t.id }
func (t *fakeRemoteTrack) Kind() media.TrackKind { return t.kind }
func (t *fakeRemoteTrack) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}
func (t *fakeRemoteTrack) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

type fakeDataChannel struct {
	mu        sync.Mutex
	texts     []string
	binaries  [][]byte
	closed    bool
	onMessage func(data []byte, isText bool)
	onState   func(media.DataChannelState)
}

var _ media.DataChannel = (*fakeDataChannel)(nil)

func (d *fakeDataChannel) Label() string { return "messages" }
func (d *fakeDataChannel) OnMessage(fn func(data []byte, isText bool)) {
	d.onMessage = fn
}
func (d *fakeDataChannel) OnStateChange(fn func(media.DataChannelState)) {
	d.onState = fn
}
func (d *fakeDataChannel) SendText(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.texts = append(d.texts, text)
	return nil
}
func (d *fakeDataChannel) Send(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.binaries = append(d.binaries, data)
	return nil
}
func (d *fakeDataChannel) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

type fakeCapturer struct {
	rec *recorder

	mu      sync.Mutex
	running bool
}

var _ media.Capturer = (*fakeCapturer)(nil)

func (c *fakeCapturer) Initialize(h media.Helper, src media.VideoSource) error { return nil }

func (c *fakeCapturer) Start(width, height, fps int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	return nil
}

func (c *fakeCapturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.rec.add("capturer.stop")
	return nil
}

func (c *fakeCapturer) Close() error {
	c.rec.add("capturer.close")
	return nil
}

type fakePiece struct {
	rec  *recorder
	name string
}

func (p *fakePiece) Close() error {
	p.rec.add(p.name + ".close")
	return nil
}

// eventLog records controller events for assertions.
type eventLog struct {
	mu       sync.Mutex
	statuses []string
	captures []string
	conns    []bool
	chats    []string
	errors   []error
}

func (l *eventLog) events() *Events {
	return &Events{
		Status: func(s string) {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.statuses = append(l.statuses, s)
		},
		CaptureStatus: func(s string) {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.captures = append(l.captures, s)
		},
		Connection: func(c bool) {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.conns = append(l.conns, c)
		},
		ChatMessage: func(t string) {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.chats = append(l.chats, t)
		},
		Error: func(err error) {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.errors = append(l.errors, err)
		},
	}
}

func (l *eventLog) lastStatus() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.statuses) == 0 {
		return ""
	}
	return l.statuses[len(l.statuses)-1]
}

func (l *eventLog) allStatuses() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.statuses...)
}

func (l *eventLog) allCaptures() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.captures...)
}

func (l *eventLog) allChats() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.chats...)
}
