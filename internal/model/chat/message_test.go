package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stamp = time.Date(2024, 3, 9, 14, 5, 7, 123_000_000, time.UTC)

func TestUserMessagePersistedLayout(t *testing.T) {
	data, err := json.Marshal(NewUserMessage("hello", stamp))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"user","content":"hello","timestamp":"2024-03-09T14:05:07.123Z"}`, string(data))
}

func TestAssistantMessagePersistedLayout(t *testing.T) {
	msg := NewAssistantMessage(AssistantPayload{Message: "ok", Causes: []string{"x"}}, stamp)
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"type":"bot",
		"content":{"message":"ok","causes":["x"],"consultationAdvice":"","ayurvedicRemedies":[],"dietPlan":[]},
		"timestamp":"2024-03-09T14:05:07.123Z"
	}`, string(data))
}

func TestDecodeBotRecordWithBareText(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"type":"bot","content":"Hi there","timestamp":"2024-03-09T14:05:07Z"}`), &msg)
	require.NoError(t, err)

	assert.Equal(t, RoleAssistant, msg.Role)
	require.True(t, msg.Body.IsStructured())
	assert.Equal(t, "Hi there", msg.Payload().Message)
	assert.Empty(t, msg.Payload().Causes)
	assert.NotNil(t, msg.Payload().DietPlan)
	assert.False(t, msg.Payload().HasInfoCard())
}

func TestDecodeRejectsUserWithStructuredContent(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"type":"user","content":{"message":"x"},"timestamp":"2024-03-09T14:05:07Z"}`), &msg)
	require.ErrorIs(t, err, ErrInvalidMessage)
}

func TestDecodeRejectsUnknownTypeAndBadTimestamp(t *testing.T) {
	cases := map[string]string{
		"unknown type":    `{"type":"system","content":"x","timestamp":"2024-03-09T14:05:07Z"}`,
		"bad timestamp":   `{"type":"user","content":"x","timestamp":"yesterday"}`,
		"missing content": `{"type":"user","timestamp":"2024-03-09T14:05:07Z"}`,
		"numeric content": `{"type":"user","content":42,"timestamp":"2024-03-09T14:05:07Z"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var msg Message
			require.Error(t, json.Unmarshal([]byte(raw), &msg))
		})
	}
}

func TestTranscriptRoundTripPreservesOrder(t *testing.T) {
	in := []Message{
		NewUserMessage("hello", stamp),
		NewAssistantMessage(PlainPayload("Hi there"), stamp.Add(time.Second)),
		NewErrorMessage("offline", stamp.Add(2*time.Second)),
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out []Message
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 3)
	for i := range in {
		assert.Equal(t, in[i].Role, out[i].Role)
		assert.Equal(t, in[i].Body.String(), out[i].Body.String())
		assert.True(t, in[i].Timestamp.Equal(out[i].Timestamp))
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, NewUserMessage("a", stamp).Validate())
	require.Error(t, Message{Role: RoleUser, Body: StructuredBody(PlainPayload("a")), Timestamp: stamp}.Validate())
	require.Error(t, Message{Role: RoleAssistant, Body: TextBody("a"), Timestamp: stamp}.Validate())
	require.Error(t, Message{Role: RoleUser, Body: TextBody("a")}.Validate())
}
