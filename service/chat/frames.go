package chat

import (
	"encoding/json"
	"fmt"

	chatmodel "PChat/module/chat/model"
)

// Wire events. The client sends {"event":"message","data":{username,text}};
// the server emits "message" per persisted message and a single "messages"
// history event right after the connection is accepted.
const (
	EventMessage  = "message"
	EventMessages = "messages"
)

type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// InboundMessage is the client payload of a "message" frame.
type InboundMessage struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

func ParseFrameJSON(raw []byte) (*Frame, error) {
	frame := &Frame{}
	if err := json.Unmarshal(raw, frame); err != nil {
		return nil, fmt.Errorf("unmarshal frame failed: %w", err)
	}
	return frame, nil
}

// ExtractInboundMessage decodes the payload of a client "message" frame.
func ExtractInboundMessage(f *Frame) (*InboundMessage, error) {
	if f == nil || len(f.Data) == 0 {
		return nil, fmt.Errorf("empty message payload")
	}
	in := &InboundMessage{}
	if err := json.Unmarshal(f.Data, in); err != nil {
		return nil, fmt.Errorf("unmarshal message payload failed: %w", err)
	}
	return in, nil
}

// EncodeMessageEvent builds the broadcast frame for one persisted message.
func EncodeMessageEvent(msg chatmodel.Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: EventMessage, Data: data})
}

// EncodeHistoryEvent builds the one-shot backfill frame, most-recent-first.
// A nil history encodes as an empty array, not null.
func EncodeHistoryEvent(history []chatmodel.Message) ([]byte, error) {
	if history == nil {
		history = []chatmodel.Message{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: EventMessages, Data: data})
}
