// Package wire defines the msgpack frames carried over the peer data channel.
// Text frames are free-form chat and bypass this codec; binary frames are
// typed control messages.
package wire

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Message types carried in binary data channel frames.
const (
	TypeChat       = "chat"
	TypeDeviceInfo = "device-info"
)

// Message is the envelope for binary data channel frames.
type Message struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// ChatPayload carries a chat line sent as a binary frame.
type ChatPayload struct {
	Text string `msgpack:"text"`
}

// DeviceInfo identifies the sending peer's device.
type DeviceInfo struct {
	DeviceName    string `msgpack:"deviceName"`
	DeviceVersion string `msgpack:"deviceVersion"`
}

// New builds a Message with an encoded payload.
func New(msgType string, payload any) (Message, error) {
	raw, err := msgpack.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	return Message{Type: msgType, Payload: raw}, nil
}

// Encode serializes a Message for the data channel.
func Encode(m Message) ([]byte, error) {
	b, err := msgpack.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	return b, nil
}

// Decode parses a binary data channel frame.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("unmarshal message: %w", err)
	}
	return m, nil
}

// DecodePayload parses a Message payload into out.
func DecodePayload(m Message, out any) error {
	if err := msgpack.Unmarshal(m.Payload, out); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", m.Type, err)
	}
	return nil
}
