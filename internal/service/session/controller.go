// Package session implements the chat session controller: it accepts user
// input, drives the send/receive lifecycle over a channel, keeps the typing
// indicator up for a minimum dwell time, persists the transcript and replays
// it on start.
//
// Every event is handled under one lock, so handlers never interleave. Timer
// callbacks post TimerExpired back through the same path.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cureverse/cureverse/internal/model/chat"
	"github.com/cureverse/cureverse/internal/protocol"
	"github.com/cureverse/cureverse/internal/render"
	"github.com/cureverse/cureverse/internal/service/channel"
	"github.com/cureverse/cureverse/internal/service/presence"
	"github.com/cureverse/cureverse/internal/service/transcript"
	"github.com/cureverse/cureverse/internal/view"
	"github.com/cureverse/cureverse/pkg/clock"
)

// DefaultReplayLimit bounds how many persisted messages are redrawn on start.
const DefaultReplayLimit = 20

// WelcomeMarkdown is the onboarding message shown on a fresh session.
const WelcomeMarkdown = "# Welcome to CureVerse Ayurvedic Assistant\n\n" +
	"I'm your AI-powered Ayurvedic health guide. I can help you with:\n\n" +
	"* **Natural remedies** for common health concerns\n" +
	"* **Ayurvedic approaches** to wellness and balance\n" +
	"* **Dosha-specific advice** for your unique constitution\n" +
	"* **Seasonal health tips** based on Ayurvedic principles\n\n" +
	"How can I assist you with your health journey today?"

// Suggestions are canned prompts offered next to the input.
var Suggestions = []string{
	"I have a fever",
	"Remedies for a cold",
	"How can I relieve a headache?",
	"I can't sleep at night",
	"Natural ways to manage anxiety",
	"I have a skin rash",
}

var (
	ErrInvalidFeedback = errors.New("session: invalid feedback")
	ErrNoReply         = errors.New("session: no assistant message to rate")
	ErrMissingDeps     = errors.New("session: missing dependency")
)

// Store is the durable transcript backing.
type Store interface {
	Append(ctx context.Context, msg chat.Message) error
	LoadAll(ctx context.Context) ([]chat.Message, error)
	Clear(ctx context.Context) error
}

var _ Store = (*transcript.Store)(nil)

// Deps are the collaborators of a Controller. Channel, Store and View are
// required.
type Deps struct {
	Channel  channel.Adapter
	Store    Store
	Renderer *render.Renderer
	View     view.View
	Timer    *presence.Timer
	Clock    clock.Clock
}

// Option configures a Controller.
type Option func(*Controller)

// WithMinDwell sets the typing indicator floor.
func WithMinDwell(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.minDwell = d
		}
	}
}

// WithReplayLimit sets how many messages LoadAndReplay draws.
func WithReplayLimit(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.replayLimit = n
		}
	}
}

// WithWelcome replaces the onboarding markdown.
func WithWelcome(markdown string) Option {
	return func(c *Controller) {
		if strings.TrimSpace(markdown) != "" {
			c.welcome = markdown
		}
	}
}

// Controller owns one chat session.
type Controller struct {
	channel  channel.Adapter
	store    Store
	renderer *render.Renderer
	view     view.View
	timer    *presence.Timer
	clock    clock.Clock
	logger   zerolog.Logger

	minDwell    time.Duration
	replayLimit int
	welcome     string

	mu         sync.Mutex
	state      State
	transcript []chat.Message
	token      presence.Token
	queued     []chat.AssistantPayload
	dwell      clock.Timer
	gen        uint64
}

// New wires a Controller and registers its channel handlers.
func New(deps Deps, opts ...Option) (*Controller, error) {
	if deps.Channel == nil || deps.Store == nil || deps.View == nil {
		return nil, ErrMissingDeps
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Timer == nil {
		deps.Timer = presence.New(deps.Clock)
	}
	if deps.Renderer == nil {
		deps.Renderer = render.New()
	}

	c := &Controller{
		channel:     deps.Channel,
		store:       deps.Store,
		renderer:    deps.Renderer,
		view:        deps.View,
		timer:       deps.Timer,
		clock:       deps.Clock,
		logger:      log.With().Str("component", "session").Logger(),
		minDwell:    presence.DefaultMinDwell,
		replayLimit: DefaultReplayLimit,
		welcome:     WelcomeMarkdown,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.channel.On(protocol.EventReceiveMessage, c.OnAssistantReply)
	c.channel.On(protocol.EventConnectError, c.onConnectError)
	return c, nil
}

// Init replays the persisted transcript, or seeds the welcome message when
// there is nothing to replay.
func (c *Controller) Init(ctx context.Context) {
	if c.LoadAndReplay(ctx) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.transcript) == 0 {
		c.welcomeLocked(ctx)
	}
}

// Submit sends text as a user message. Blank input is ignored and reported
// as false.
func (c *Controller) Submit(ctx context.Context, text string) bool {
	return c.Handle(ctx, SubmitRequested{Text: text})
}

// SendSuggestion submits a canned prompt as if typed.
func (c *Controller) SendSuggestion(ctx context.Context, suggestion string) bool {
	return c.Submit(ctx, suggestion)
}

// Reset clears the transcript and reseeds the welcome message.
func (c *Controller) Reset(ctx context.Context) {
	c.Handle(ctx, ResetRequested{})
}

// OnAssistantReply is the receive_message handler. The payload is normalised
// here and only the canonical form travels further.
func (c *Controller) OnAssistantReply(raw json.RawMessage) {
	payload, err := protocol.DecodeReply(raw)
	if err != nil {
		c.logger.Warn().Err(err).Msg("unreadable assistant reply")
		c.Handle(context.Background(), TransportFailed{Err: err})
		return
	}
	c.Handle(context.Background(), ReplyReceived{Payload: payload})
}

func (c *Controller) onConnectError(raw json.RawMessage) {
	var ce protocol.ConnectError
	if err := json.Unmarshal(raw, &ce); err != nil || ce.Message == "" {
		ce.Message = "connection lost"
	}
	c.Handle(context.Background(), TransportFailed{Err: errors.New(ce.Message)})
}

// Handle applies one event. It reports whether the event was accepted; only
// blank submissions are rejected.
func (c *Controller) Handle(ctx context.Context, ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e := ev.(type) {
	case SubmitRequested:
		return c.submitLocked(ctx, e.Text)
	case ReplyReceived:
		c.replyLocked(ctx, e.Payload)
	case TimerExpired:
		if e.Gen != c.gen {
			return true
		}
		c.dwell = nil
		c.gen++
		c.flushLocked(ctx)
	case ResetRequested:
		c.resetLocked(ctx)
	case TransportFailed:
		c.failLocked(ctx, e.Err)
	default:
		c.logger.Warn().Str("event", fmt.Sprintf("%T", ev)).Msg("unknown event")
		return false
	}
	return true
}

func (c *Controller) submitLocked(ctx context.Context, raw string) bool {
	text := strings.TrimSpace(raw)
	if text == "" {
		return false
	}

	c.appendLocked(ctx, chat.NewUserMessage(text, c.clock.Now()))

	c.token = c.timer.Start()
	c.state = AwaitingReply
	c.view.SetIndicator(true)

	if err := c.channel.Send(ctx, protocol.EventSendMessage, protocol.SendMessage{Message: text}); err != nil {
		c.failLocked(ctx, err)
	}
	c.view.ClearInput()
	return true
}

// Replies arriving inside the dwell floor are queued and drawn together when
// it elapses, in arrival order. A reply with no outstanding cycle is drawn at
// once.
func (c *Controller) replyLocked(ctx context.Context, payload chat.AssistantPayload) {
	c.queued = append(c.queued, payload)

	remaining := c.timer.RemainingDwell(c.token, c.minDwell)
	if remaining <= 0 {
		c.stopDwellLocked()
		c.flushLocked(ctx)
		return
	}
	if c.dwell != nil {
		return
	}

	gen := c.gen
	c.dwell = c.clock.AfterFunc(remaining, func() {
		c.Handle(context.Background(), TimerExpired{Gen: gen})
	})
}

func (c *Controller) flushLocked(ctx context.Context) {
	if len(c.queued) == 0 {
		return
	}
	c.view.SetIndicator(false)
	c.token = presence.Token{}
	c.state = Idle

	queued := c.queued
	c.queued = nil
	for _, p := range queued {
		c.appendLocked(ctx, chat.NewAssistantMessage(p, c.clock.Now()))
	}
}

func (c *Controller) failLocked(ctx context.Context, err error) {
	c.logger.Warn().Err(err).Msg("transport failure")

	// Replies already received keep their place ahead of the error.
	c.stopDwellLocked()
	c.flushLocked(ctx)

	c.view.SetIndicator(false)
	c.token = presence.Token{}
	c.state = Idle
	c.appendLocked(ctx, chat.NewErrorMessage(errorText(err), c.clock.Now()))
}

func (c *Controller) resetLocked(ctx context.Context) {
	c.stopDwellLocked()
	c.queued = nil
	c.token = presence.Token{}
	c.state = Idle

	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error().Err(err).Msg("clear transcript")
	}
	c.transcript = nil
	c.view.Clear()
	c.view.SetIndicator(false)
	c.welcomeLocked(ctx)
}

func (c *Controller) welcomeLocked(ctx context.Context) {
	c.appendLocked(ctx, chat.NewAssistantMessage(chat.PlainPayload(c.welcome), c.clock.Now()))
}

// appendLocked persists msg, then records and draws it. A persistence failure
// is logged and does not stop the message from being shown.
func (c *Controller) appendLocked(ctx context.Context, msg chat.Message) {
	if err := c.store.Append(ctx, msg); err != nil {
		c.logger.Error().Err(err).Str("role", string(msg.Role)).Msg("persist message")
	}
	c.transcript = append(c.transcript, msg)
	c.view.Append(c.renderer.Render(msg))
	c.view.ScrollToBottom()
}

// stopDwellLocked cancels the pending flush. The generation moves on even when
// Stop reports the callback already fired, so a late TimerExpired is dropped.
func (c *Controller) stopDwellLocked() {
	c.gen++
	if c.dwell != nil {
		c.dwell.Stop()
		c.dwell = nil
	}
}

// LoadAndReplay draws the most recent persisted messages without appending
// them again. It returns false when nothing was replayed; a corrupt
// transcript is discarded with a full reset.
func (c *Controller) LoadAndReplay(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs, err := c.store.LoadAll(ctx)
	if errors.Is(err, transcript.ErrCorrupt) {
		c.logger.Warn().Err(err).Msg("discarding corrupt transcript")
		c.resetLocked(ctx)
		return false
	}
	if err != nil {
		c.logger.Error().Err(err).Msg("load transcript")
		return false
	}
	if len(msgs) == 0 {
		return false
	}

	c.transcript = msgs
	start := 0
	if len(msgs) > c.replayLimit {
		start = len(msgs) - c.replayLimit
	}
	for _, msg := range msgs[start:] {
		c.view.Append(c.renderer.Render(msg))
	}
	c.view.ScrollToBottom()
	return true
}

// SendFeedback rates the most recent assistant message. It is fire-and-forget
// and leaves the transcript untouched.
func (c *Controller) SendFeedback(ctx context.Context, feedback string) error {
	if !protocol.ValidFeedback(feedback) {
		return errors.Wrapf(ErrInvalidFeedback, "%q", feedback)
	}

	c.mu.Lock()
	var target string
	found := false
	for i := len(c.transcript) - 1; i >= 0; i-- {
		if c.transcript[i].Role == chat.RoleAssistant {
			target = c.transcript[i].Body.String()
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return ErrNoReply
	}

	if err := c.channel.Send(ctx, protocol.EventSendFeedback, protocol.Feedback{Feedback: feedback, Message: target}); err != nil {
		return errors.Wrap(err, "session: send feedback")
	}
	return nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transcript returns a copy of the in-memory transcript.
func (c *Controller) Transcript() []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chat.Message(nil), c.transcript...)
}

func errorText(err error) string {
	switch {
	case errors.Is(err, channel.ErrNotConnected), errors.Is(err, channel.ErrClosed):
		return "Unable to reach the assistant. Please check your connection and try again."
	case errors.Is(err, protocol.ErrInvalidReply):
		return "The assistant sent a reply that could not be read."
	default:
		return "Connection error: " + err.Error()
	}
}
