// Package assistant is the reference assistant behind the chat channel. It
// answers symptom questions from the curated table with structured replies and
// everything else through an LLM as bare text.
package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/cureverse/cureverse/internal/config"
	"github.com/cureverse/cureverse/internal/model/chat"
	"github.com/cureverse/cureverse/internal/model/symptom"
	chatservice "github.com/cureverse/cureverse/internal/service/chat"
)

// Fixed reply texts.
const (
	ResultsMessage   = "Here are the results:"
	NoMatchMessage   = "Sorry, I couldn't find information for that symptom."
	NoMatchAdvice    = "Consult a doctor if symptoms persist."
	UnavailableReply = "Sorry, I couldn't retrieve a response from the AI."
)

var timeNow = func() time.Time { return time.Now().UTC() }

// Generator produces free-form answers.
type Generator interface {
	Generate(ctx context.Context, system string, history []*schema.Message, query string) (string, error)
}

// Reply is either a structured payload or bare text, matching the two shapes
// of receive_message.
type Reply struct {
	Structured *chat.AssistantPayload
	Text       string
}

// Wire returns the value to send as receive_message data.
func (r Reply) Wire() any {
	if r.Structured != nil {
		return r.Structured
	}
	return r.Text
}

// Message returns the reply as a transcript message.
func (r Reply) Message() chat.Message {
	if r.Structured != nil {
		return chat.Message{Role: chat.RoleAssistant, Body: chat.StructuredBody(*r.Structured)}
	}
	return chat.Message{Role: chat.RoleAssistant, Body: chat.StructuredBody(chat.PlainPayload(r.Text))}
}

// Service answers user messages.
type Service struct {
	symptoms     symptom.Store
	history      *chatservice.Service
	generator    Generator
	system       string
	historyLimit int
}

// Option configures a Service.
type Option func(*Service)

// WithGenerator sets the free-form answer generator.
func WithGenerator(g Generator) Option {
	return func(s *Service) { s.generator = g }
}

// WithHistoryLimit bounds how many earlier messages reach the generator.
func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// New returns a Service. Without a generator, non-symptom questions get an
// apology.
func New(symptoms symptom.Store, history *chatservice.Service, opts ...Option) *Service {
	s := &Service{
		symptoms:     symptoms,
		history:      history,
		system:       BuildSystemPrompt(symptoms.List()),
		historyLimit: 10,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reply answers text for the session and records both sides of the exchange.
func (s *Service) Reply(ctx context.Context, sessionID, text string) (Reply, error) {
	if _, err := s.history.EnsureSession(ctx, sessionID); err != nil {
		return Reply{}, err
	}
	earlier, err := s.history.LoadTranscript(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}
	if err := s.history.SaveMessage(ctx, sessionID, chat.NewUserMessage(text, timeNow())); err != nil {
		return Reply{}, errors.Wrap(err, "assistant: save user message")
	}

	reply := s.answer(ctx, sessionID, text, earlier)

	msg := reply.Message()
	msg.Timestamp = timeNow()
	if err := s.history.SaveMessage(ctx, sessionID, msg); err != nil {
		return Reply{}, errors.Wrap(err, "assistant: save reply")
	}
	return reply, nil
}

func (s *Service) answer(ctx context.Context, sessionID, text string, earlier []chat.Message) Reply {
	if item, ok := s.symptoms.Match(text); ok {
		p := chat.AssistantPayload{
			Message:            ResultsMessage,
			Causes:             item.Conditions,
			ConsultationAdvice: item.SeekDoctor,
			AyurvedicRemedies:  item.Remedies,
			DietPlan:           item.DietTips,
		}.Normalize()
		log.Debug().Str("session", sessionID).Str("symptom", item.ID).Msg("assistant: symptom match")
		return Reply{Structured: &p}
	}

	if strings.Contains(strings.ToLower(text), "symptom") {
		p := chat.AssistantPayload{Message: NoMatchMessage, ConsultationAdvice: NoMatchAdvice}.Normalize()
		return Reply{Structured: &p}
	}

	if s.generator == nil {
		return Reply{Text: UnavailableReply}
	}

	out, err := s.generator.Generate(ctx, s.system, s.historyMessages(earlier), text)
	if err != nil || strings.TrimSpace(out) == "" {
		log.Warn().Err(err).Str("session", sessionID).Msg("assistant: generation failed")
		return Reply{Text: UnavailableReply}
	}
	log.Info().Str("session", sessionID).Int("length", len(out)).Msg("assistant: generated response")
	return Reply{Text: out}
}

func (s *Service) historyMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > s.historyLimit {
		startIdx = len(messages) - s.historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Body.String()))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Body.String(), nil))
		}
	}
	return history
}

// ChainGenerator runs a prompt template and chat model chain.
type ChainGenerator struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewChainGenerator builds the chain on the Ark model described by cfg.
func NewChainGenerator(ctx context.Context, cfg config.AIConfig) (*ChainGenerator, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chat model")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile chat chain")
	}
	return &ChainGenerator{chain: runnable}, nil
}

func (g *ChainGenerator) Generate(ctx context.Context, system string, history []*schema.Message, query string) (string, error) {
	resp, err := g.chain.Invoke(ctx, map[string]any{
		"system":  system,
		"history": history,
		"query":   query,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to run AI chain")
	}
	return resp.Content, nil
}
