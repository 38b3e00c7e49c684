package pionengine

import (
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/screenbeam/screenbeam/internal/media"
)

// dataChannel adapts *webrtc.DataChannel to media.DataChannel.
type dataChannel struct {
	dc *webrtc.DataChannel
}

var _ media.DataChannel = (*dataChannel)(nil)

func newDataChannel(dc *webrtc.DataChannel) *dataChannel {
	return &dataChannel{dc: dc}
}

func (d *dataChannel) Label() string { return d.dc.Label() }

func (d *dataChannel) OnMessage(fn func(data []byte, isText bool)) {
	d.dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		fn(msg.Data, msg.IsString)
	})
}

func (d *dataChannel) OnStateChange(fn func(media.DataChannelState)) {
	d.dc.OnOpen(func() { fn(media.DataChannelOpen) })
	d.dc.OnClose(func() { fn(media.DataChannelClosed) })
}

func (d *dataChannel) SendText(text string) error {
	if err := d.dc.SendText(text); err != nil {
		return fmt.Errorf("send text: %w", err)
	}
	return nil
}

func (d *dataChannel) Send(data []byte) error {
	if err := d.dc.Send(data); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

func (d *dataChannel) Close() error {
	return d.dc.Close()
}
