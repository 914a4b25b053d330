package render

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cureverse/cureverse/internal/model/chat"
)

var ts = time.Date(2024, 5, 1, 14, 7, 0, 0, time.UTC)

func TestRenderUserEscapes(t *testing.T) {
	r := New(WithLocation(time.UTC))
	node := r.Render(chat.NewUserMessage("<b>hi</b> **there**", ts))

	assert.Equal(t, KindPlain, node.Kind)
	assert.Equal(t, "chat-message message-user", node.Class)
	assert.Equal(t, "&lt;b&gt;hi&lt;/b&gt; **there**", node.Content)
	assert.Equal(t, "02:07 PM", node.TimeLabel)
	assert.Nil(t, node.Card)
}

func TestRenderErrorMessage(t *testing.T) {
	r := New(WithLocation(time.UTC))
	node := r.Render(chat.NewErrorMessage("Connection lost", ts))
	assert.Equal(t, "chat-message message-error", node.Class)
	assert.Equal(t, KindPlain, node.Kind)
	assert.Equal(t, "Connection lost", node.Content)
}

func TestRenderAssistantWithoutCauses(t *testing.T) {
	r := New()
	node := r.Render(chat.NewAssistantMessage(chat.AssistantPayload{
		Message:           "ok",
		AyurvedicRemedies: []string{"ginger"},
	}, ts))

	assert.Equal(t, KindRich, node.Kind)
	assert.Equal(t, "chat-message message-bot", node.Class)
	assert.Equal(t, "ok", node.Content)
	assert.Nil(t, node.Card, "no causes means no card")
}

func TestRenderAssistantCard(t *testing.T) {
	r := New()
	node := r.Render(chat.NewAssistantMessage(chat.AssistantPayload{
		Message:            "ok",
		Causes:             []string{"x"},
		ConsultationAdvice: "See a doctor",
		DietPlan:           []string{"<soup>"},
	}, ts))

	require.NotNil(t, node.Card)
	assert.Equal(t, CardTitle, node.Card.Title)
	require.Len(t, node.Card.Sections, 3)
	assert.Equal(t, SectionCauses, node.Card.Sections[0].Title)
	assert.Equal(t, []string{"x"}, node.Card.Sections[0].Items)
	assert.Equal(t, SectionAdvice, node.Card.Sections[1].Title)
	assert.Equal(t, []string{"See a doctor"}, node.Card.Sections[1].Items)
	assert.Equal(t, SectionDiet, node.Card.Sections[2].Title)
	assert.Equal(t, []string{"&lt;soup&gt;"}, node.Card.Sections[2].Items)
}

func TestRenderSectionOrder(t *testing.T) {
	r := New()
	node := r.Render(chat.NewAssistantMessage(chat.AssistantPayload{
		Message:            "ok",
		Causes:             []string{"a"},
		ConsultationAdvice: "b",
		AyurvedicRemedies:  []string{"c"},
		DietPlan:           []string{"d"},
	}, ts))

	var titles []string
	for _, s := range node.Card.Sections {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{SectionCauses, SectionAdvice, SectionRemedy, SectionDiet}, titles)
}

func TestRenderTransformFallback(t *testing.T) {
	failing := TransformFunc(func(string) (string, error) { return "", errors.New("boom") })
	r := New(WithTransform(failing))
	node := r.Render(chat.NewAssistantMessage(chat.PlainPayload("**raw**"), ts))
	assert.Equal(t, "**raw**", node.Content)
}

func TestRenderTimeLabelDeterministic(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	r := New(WithLocation(loc), WithTimeFormat("15:04"))
	msg := chat.NewUserMessage("hi", ts)
	assert.Equal(t, "19:37", r.Render(msg).TimeLabel)
	assert.Equal(t, r.Render(msg).TimeLabel, r.Render(msg).TimeLabel)
}

func TestHTMLTransform(t *testing.T) {
	tr := NewHTMLTransform()

	out, err := tr.Transform("# Title\n\n**bold**\nnext line\n\n* one\n* two")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>bold</strong><br")
	assert.Contains(t, out, "<li>one</li>")

	out, err = tr.Transform("hi <script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}

func TestTerminalTransform(t *testing.T) {
	tr := NewTerminalTransform("notty", 60)
	out, err := tr.Transform("**bold** text")
	require.NoError(t, err)
	assert.Contains(t, out, "bold")
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestTerminalEscape(t *testing.T) {
	assert.Equal(t, "red\ttext\n", TerminalEscape("\x1bred\ttext\n"))
	assert.Equal(t, "[31mred", TerminalEscape("\x1b[31mred"))
}
