// Package protocol defines the events exchanged between the chat client and the
// assistant over the bidirectional channel. Frames are JSON envelopes carrying
// an event name and its payload.
package protocol

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/cureverse/cureverse/internal/model/chat"
)

// Client -> server events.
const (
	EventSendMessage  = "send_message"
	EventSendFeedback = "send_feedback"
)

// Server -> client events.
const (
	EventReceiveMessage = "receive_message"
)

// EventConnectError is raised locally by channel adapters when the transport
// drops. It never crosses the wire.
const EventConnectError = "connect_error"

// Feedback values accepted by send_feedback.
const (
	FeedbackHelpful    = "Helpful"
	FeedbackNotHelpful = "Not Helpful"
)

var (
	// ErrInvalidReply is returned when a receive_message payload is neither a
	// string nor a payload object.
	ErrInvalidReply = errors.New("protocol: invalid reply payload")
	// ErrInvalidEnvelope is returned for frames without an event name.
	ErrInvalidEnvelope = errors.New("protocol: invalid envelope")
)

// Envelope is one frame on the wire.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode builds a frame for event with payload marshalled as data.
func Encode(event string, payload any) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "protocol: encode %s payload", event)
		}
		data = raw
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Decode parses a frame.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, errors.Wrap(err, "protocol: decode envelope")
	}
	if strings.TrimSpace(env.Event) == "" {
		return Envelope{}, ErrInvalidEnvelope
	}
	return env, nil
}

// SendMessage is the send_message payload.
type SendMessage struct {
	Message string `json:"message"`
}

// Feedback is the send_feedback payload.
type Feedback struct {
	Feedback string `json:"feedback"`
	Message  string `json:"message"`
}

// ConnectError is the connect_error payload.
type ConnectError struct {
	Message string `json:"message"`
}

// ValidFeedback reports whether v is an accepted feedback value.
func ValidFeedback(v string) bool {
	return v == FeedbackHelpful || v == FeedbackNotHelpful
}

// DecodeReply normalizes a receive_message payload into a single canonical
// assistant payload. A bare string becomes a payload with empty optional
// fields. Objects lacking "message" fall back to the legacy "reply" field.
func DecodeReply(raw json.RawMessage) (chat.AssistantPayload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return chat.AssistantPayload{}, ErrInvalidReply
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return chat.AssistantPayload{}, errors.Wrap(ErrInvalidReply, err.Error())
		}
		return chat.PlainPayload(text), nil
	case '{':
		var obj struct {
			chat.AssistantPayload
			Message *string `json:"message"`
			Reply   *string `json:"reply"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return chat.AssistantPayload{}, errors.Wrap(ErrInvalidReply, err.Error())
		}
		p := obj.AssistantPayload
		switch {
		case obj.Message != nil:
			p.Message = *obj.Message
		case obj.Reply != nil:
			p.Message = *obj.Reply
		default:
			return chat.AssistantPayload{}, errors.Wrap(ErrInvalidReply, "missing message")
		}
		return p.Normalize(), nil
	default:
		return chat.AssistantPayload{}, ErrInvalidReply
	}
}
