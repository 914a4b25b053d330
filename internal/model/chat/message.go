package chat

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidMessage is returned when a message violates the role/body pairing
// or cannot be decoded from its persisted form.
var ErrInvalidMessage = errors.New("invalid message")

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// Persisted record type names. The assistant is stored as "bot".
const (
	recordUser  = "user"
	recordBot   = "bot"
	recordError = "error"
)

// TimestampLayout is the ISO-8601 layout used in persisted records.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// AssistantPayload is the structured content of an assistant reply.
type AssistantPayload struct {
	Message            string   `json:"message"`
	Causes             []string `json:"causes"`
	ConsultationAdvice string   `json:"consultationAdvice"`
	AyurvedicRemedies  []string `json:"ayurvedicRemedies"`
	DietPlan           []string `json:"dietPlan"`
}

// PlainPayload wraps bare assistant text into a payload with every optional
// field empty.
func PlainPayload(text string) AssistantPayload {
	return AssistantPayload{Message: text}.Normalize()
}

// Normalize replaces nil lists with empty ones so the payload always encodes
// with arrays.
func (p AssistantPayload) Normalize() AssistantPayload {
	if p.Causes == nil {
		p.Causes = []string{}
	}
	if p.AyurvedicRemedies == nil {
		p.AyurvedicRemedies = []string{}
	}
	if p.DietPlan == nil {
		p.DietPlan = []string{}
	}
	return p
}

// HasInfoCard reports whether the payload triggers an info card.
func (p AssistantPayload) HasInfoCard() bool {
	return len(p.Causes) > 0
}

// Body is either plain text or a structured assistant payload.
type Body struct {
	Text       string
	Structured *AssistantPayload
}

// TextBody returns a plain-text body.
func TextBody(text string) Body {
	return Body{Text: text}
}

// StructuredBody returns a body carrying a normalized assistant payload.
func StructuredBody(p AssistantPayload) Body {
	n := p.Normalize()
	return Body{Structured: &n}
}

// IsStructured reports whether the body carries an assistant payload.
func (b Body) IsStructured() bool {
	return b.Structured != nil
}

// String returns the display text of the body.
func (b Body) String() string {
	if b.Structured != nil {
		return b.Structured.Message
	}
	return b.Text
}

// MarshalJSON encodes the body as a JSON string or object.
func (b Body) MarshalJSON() ([]byte, error) {
	if b.Structured != nil {
		return json.Marshal(b.Structured.Normalize())
	}
	return json.Marshal(b.Text)
}

// UnmarshalJSON accepts either a JSON string or a payload object.
func (b *Body) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.Wrap(ErrInvalidMessage, "empty content")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return errors.Wrap(err, "decode text content")
		}
		*b = TextBody(s)
		return nil
	case '{':
		var p AssistantPayload
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return errors.Wrap(err, "decode structured content")
		}
		*b = StructuredBody(p)
		return nil
	default:
		return errors.Wrapf(ErrInvalidMessage, "unsupported content %q", string(trimmed[:1]))
	}
}

// Message is one exchanged unit. It is immutable once created.
type Message struct {
	Role      Role
	Body      Body
	Timestamp time.Time
}

// NewUserMessage builds a user message stamped at ts.
func NewUserMessage(text string, ts time.Time) Message {
	return Message{Role: RoleUser, Body: TextBody(text), Timestamp: ts}
}

// NewAssistantMessage builds an assistant message stamped at ts.
func NewAssistantMessage(p AssistantPayload, ts time.Time) Message {
	return Message{Role: RoleAssistant, Body: StructuredBody(p), Timestamp: ts}
}

// NewErrorMessage builds an inline error message stamped at ts.
func NewErrorMessage(text string, ts time.Time) Message {
	return Message{Role: RoleError, Body: TextBody(text), Timestamp: ts}
}

// Validate enforces the role/body pairing.
func (m Message) Validate() error {
	switch m.Role {
	case RoleUser, RoleError:
		if m.Body.IsStructured() {
			return errors.Wrapf(ErrInvalidMessage, "%s message carries structured content", m.Role)
		}
	case RoleAssistant:
		if !m.Body.IsStructured() {
			return errors.Wrap(ErrInvalidMessage, "assistant message without payload")
		}
	default:
		return errors.Wrapf(ErrInvalidMessage, "unknown role %q", m.Role)
	}
	if m.Timestamp.IsZero() {
		return errors.Wrap(ErrInvalidMessage, "missing timestamp")
	}
	return nil
}

// Payload returns the assistant payload, or a plain payload for text bodies.
func (m Message) Payload() AssistantPayload {
	if m.Body.Structured != nil {
		return *m.Body.Structured
	}
	return PlainPayload(m.Body.Text)
}

// record is the persisted layout: {type, content, timestamp}.
type record struct {
	Type      string          `json:"type"`
	Content   json.RawMessage `json:"content"`
	Timestamp string          `json:"timestamp"`
}

// MarshalJSON encodes the message in its persisted layout.
func (m Message) MarshalJSON() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	content, err := m.Body.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var typ string
	switch m.Role {
	case RoleUser:
		typ = recordUser
	case RoleAssistant:
		typ = recordBot
	case RoleError:
		typ = recordError
	}
	return json.Marshal(record{
		Type:      typ,
		Content:   content,
		Timestamp: m.Timestamp.UTC().Format(TimestampLayout),
	})
}

// UnmarshalJSON decodes a persisted record. A "bot" record holding bare text
// is normalized into a structured payload.
func (m *Message) UnmarshalJSON(data []byte) error {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return errors.Wrap(err, "decode message record")
	}
	if len(rec.Content) == 0 {
		return errors.Wrap(ErrInvalidMessage, "missing content")
	}

	var body Body
	if err := body.UnmarshalJSON(rec.Content); err != nil {
		return err
	}

	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(rec.Timestamp))
	if err != nil {
		return errors.Wrapf(ErrInvalidMessage, "timestamp %q", rec.Timestamp)
	}

	out := Message{Body: body, Timestamp: ts}
	switch rec.Type {
	case recordUser:
		out.Role = RoleUser
	case recordBot:
		out.Role = RoleAssistant
		if !body.IsStructured() {
			out.Body = StructuredBody(PlainPayload(body.Text))
		}
	case recordError:
		out.Role = RoleError
	default:
		return errors.Wrapf(ErrInvalidMessage, "unknown record type %q", rec.Type)
	}
	if err := out.Validate(); err != nil {
		return err
	}

	*m = out
	return nil
}
