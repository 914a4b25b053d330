package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cureverse/cureverse/internal/model/chat"
	"github.com/cureverse/cureverse/internal/model/symptom"
	chatservice "github.com/cureverse/cureverse/internal/service/chat"
)

type fakeGenerator struct {
	out     string
	err     error
	calls   int
	system  string
	history []*schema.Message
	query   string
}

func (g *fakeGenerator) Generate(_ context.Context, system string, history []*schema.Message, query string) (string, error) {
	g.calls++
	g.system = system
	g.history = history
	g.query = query
	return g.out, g.err
}

func newTestService(opts ...Option) (*Service, *chatservice.Service) {
	history := chatservice.NewService()
	return New(symptom.NewMemoryStore(symptom.Seed()), history, opts...), history
}

func TestReplySymptomMatchIsStructured(t *testing.T) {
	gen := &fakeGenerator{out: "unused"}
	svc, history := newTestService(WithGenerator(gen))
	ctx := context.Background()

	reply, err := svc.Reply(ctx, "s1", "I have a FEVER since yesterday")
	require.NoError(t, err)
	require.NotNil(t, reply.Structured)

	assert.Equal(t, ResultsMessage, reply.Structured.Message)
	assert.Contains(t, reply.Structured.Causes, "Jwara (Ayurvedic fever)")
	assert.NotEmpty(t, reply.Structured.ConsultationAdvice)
	assert.NotEmpty(t, reply.Structured.AyurvedicRemedies)
	assert.NotEmpty(t, reply.Structured.DietPlan)
	assert.Zero(t, gen.calls)

	msgs, err := history.LoadTranscript(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.RoleUser, msgs[0].Role)
	assert.Equal(t, chat.RoleAssistant, msgs[1].Role)
	assert.True(t, msgs[1].Payload().HasInfoCard())
}

func TestReplyUnknownSymptom(t *testing.T) {
	gen := &fakeGenerator{out: "unused"}
	svc, _ := newTestService(WithGenerator(gen))

	reply, err := svc.Reply(context.Background(), "s1", "what does this symptom mean")
	require.NoError(t, err)
	require.NotNil(t, reply.Structured)
	assert.Equal(t, NoMatchMessage, reply.Structured.Message)
	assert.Equal(t, NoMatchAdvice, reply.Structured.ConsultationAdvice)
	assert.Empty(t, reply.Structured.Causes)
	assert.Zero(t, gen.calls)
}

func TestReplyGeneratedText(t *testing.T) {
	gen := &fakeGenerator{out: "**Triphala** is a blend of three fruits."}
	svc, _ := newTestService(WithGenerator(gen))

	reply, err := svc.Reply(context.Background(), "s1", "what is triphala")
	require.NoError(t, err)
	assert.Nil(t, reply.Structured)
	assert.Equal(t, gen.out, reply.Text)
	assert.Equal(t, gen.out, reply.Wire())
	assert.Equal(t, "what is triphala", gen.query)
	assert.True(t, strings.HasPrefix(gen.system, "You are CureVerse"))
	assert.Contains(t, gen.system, "skin rash")
}

func TestReplyFallsBackWhenGenerationFails(t *testing.T) {
	cases := map[string]Option{
		"error":        WithGenerator(&fakeGenerator{err: errors.New("boom")}),
		"empty":        WithGenerator(&fakeGenerator{out: "  "}),
		"no generator": WithHistoryLimit(3),
	}
	for name, opt := range cases {
		t.Run(name, func(t *testing.T) {
			svc, history := newTestService(opt)
			ctx := context.Background()

			reply, err := svc.Reply(ctx, "s1", "what is triphala")
			require.NoError(t, err)
			assert.Equal(t, UnavailableReply, reply.Wire())

			msgs, err := history.LoadTranscript(ctx, "s1")
			require.NoError(t, err)
			require.Len(t, msgs, 2)
			assert.Equal(t, UnavailableReply, msgs[1].Body.String())
		})
	}
}

func TestReplyHistoryIsLimited(t *testing.T) {
	gen := &fakeGenerator{out: "ok"}
	svc, _ := newTestService(WithGenerator(gen), WithHistoryLimit(2))
	ctx := context.Background()

	for _, q := range []string{"first question", "second question", "third question"} {
		_, err := svc.Reply(ctx, "s1", q)
		require.NoError(t, err)
	}

	require.Len(t, gen.history, 2)
	assert.Equal(t, schema.User, gen.history[0].Role)
	assert.Equal(t, "second question", gen.history[0].Content)
	assert.Equal(t, schema.Assistant, gen.history[1].Role)
	assert.Equal(t, "ok", gen.history[1].Content)
}

func TestReplyRequiresSession(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Reply(context.Background(), " ", "hello")
	assert.ErrorIs(t, err, chatservice.ErrSessionRequired)
}

func TestReplyMessage(t *testing.T) {
	structured := chat.PlainPayload("hi")
	assert.True(t, Reply{Structured: &structured}.Message().Body.IsStructured())

	msg := Reply{Text: "plain"}.Message()
	assert.Equal(t, chat.RoleAssistant, msg.Role)
	assert.Equal(t, "plain", msg.Body.String())
}

func TestBuildSystemPrompt(t *testing.T) {
	assert.Equal(t, basePrompt, BuildSystemPrompt(nil))
	assert.Contains(t, BuildSystemPrompt(symptom.Seed()), "fever, cold, stomach pain")
}
