// Package channel serves the assistant side of the chat channel over
// WebSocket, NATS and in-process pipes.
package channel

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cureverse/cureverse/internal/metrics"
	"github.com/cureverse/cureverse/internal/protocol"
	"github.com/cureverse/cureverse/internal/service/assistant"
	adapter "github.com/cureverse/cureverse/internal/service/channel"
)

// Replier answers a user message for a session.
type Replier interface {
	Reply(ctx context.Context, sessionID, text string) (assistant.Reply, error)
}

// Responder turns inbound client events into receive_message payloads. It is
// shared by every transport.
type Responder struct {
	replier Replier
	metrics *metrics.Metrics
}

// NewResponder returns a Responder. m may be nil.
func NewResponder(replier Replier, m *metrics.Metrics) *Responder {
	return &Responder{replier: replier, metrics: m}
}

// Handle processes one inbound event. ok is false when the event warrants no
// receive_message.
func (r *Responder) Handle(ctx context.Context, session, event string, data json.RawMessage) (reply any, ok bool) {
	r.metrics.Received()

	switch event {
	case protocol.EventSendMessage:
		return r.handleSendMessage(ctx, session, data)
	case protocol.EventSendFeedback:
		r.handleFeedback(session, data)
		return nil, false
	default:
		log.Warn().Str("session", session).Str("event", event).Msg("channel: unsupported event")
		r.metrics.Rejected()
		return nil, false
	}
}

func (r *Responder) handleSendMessage(ctx context.Context, session string, data json.RawMessage) (any, bool) {
	var msg protocol.SendMessage
	if err := json.Unmarshal(data, &msg); err != nil || strings.TrimSpace(msg.Message) == "" {
		log.Warn().Err(err).Str("session", session).Msg("channel: invalid send_message payload")
		r.metrics.Rejected()
		return nil, false
	}

	start := time.Now()
	reply, err := r.replier.Reply(ctx, session, msg.Message)
	if err != nil {
		log.Error().Err(err).Str("session", session).Msg("channel: reply failed")
		r.metrics.ObserveReply("text", time.Since(start))
		return assistant.UnavailableReply, true
	}

	kind := "text"
	if reply.Structured != nil {
		kind = "structured"
	}
	r.metrics.ObserveReply(kind, time.Since(start))
	log.Info().Str("session", session).Str("kind", kind).Dur("took", time.Since(start)).Msg("channel: replied")
	return reply.Wire(), true
}

func (r *Responder) handleFeedback(session string, data json.RawMessage) {
	var fb protocol.Feedback
	if err := json.Unmarshal(data, &fb); err != nil || !protocol.ValidFeedback(fb.Feedback) {
		log.Warn().Err(err).Str("session", session).Msg("channel: invalid send_feedback payload")
		r.metrics.Rejected()
		return
	}
	r.metrics.Vote(fb.Feedback)
	log.Info().Str("session", session).Str("feedback", fb.Feedback).Int("length", len(fb.Message)).Msg("channel: feedback received")
}

// Bind serves session on the assistant end of an adapter, typically one end
// of an in-process pipe. Replies are sent back on the same adapter.
func (r *Responder) Bind(ctx context.Context, a adapter.Adapter, session string) {
	for _, event := range []string{protocol.EventSendMessage, protocol.EventSendFeedback} {
		event := event
		a.On(event, func(data json.RawMessage) {
			reply, ok := r.Handle(ctx, session, event, data)
			if !ok {
				return
			}
			if err := a.Send(ctx, protocol.EventReceiveMessage, reply); err != nil {
				log.Warn().Err(err).Str("session", session).Msg("channel: pipe send failed")
			}
		})
	}
}
