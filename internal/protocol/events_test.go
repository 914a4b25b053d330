package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeReplyBareString(t *testing.T) {
	p, err := DecodeReply(json.RawMessage(`"Hi there"`))
	require.NoError(t, err)
	assert.Equal(t, "Hi there", p.Message)
	assert.Equal(t, []string{}, p.Causes)
	assert.Equal(t, "", p.ConsultationAdvice)
	assert.Equal(t, []string{}, p.AyurvedicRemedies)
	assert.Equal(t, []string{}, p.DietPlan)
}

func TestDecodeReplyStructured(t *testing.T) {
	raw := `{"message":"ok","causes":["x"],"consultationAdvice":"see a doctor","dietPlan":["water"]}`
	p, err := DecodeReply(json.RawMessage(raw))
	require.NoError(t, err)
	assert.Equal(t, "ok", p.Message)
	assert.Equal(t, []string{"x"}, p.Causes)
	assert.Equal(t, "see a doctor", p.ConsultationAdvice)
	assert.Equal(t, []string{}, p.AyurvedicRemedies)
	assert.Equal(t, []string{"water"}, p.DietPlan)
	assert.True(t, p.HasInfoCard())
}

func TestDecodeReplyLegacyReplyField(t *testing.T) {
	p, err := DecodeReply(json.RawMessage(`{"reply":"legacy"}`))
	require.NoError(t, err)
	assert.Equal(t, "legacy", p.Message)
}

func TestDecodeReplyRejectsOtherShapes(t *testing.T) {
	for _, raw := range []string{``, `42`, `[1,2]`, `{"causes":["x"]}`, `{"message":`} {
		_, err := DecodeReply(json.RawMessage(raw))
		require.ErrorIs(t, err, ErrInvalidReply, raw)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	frame, err := Encode(EventSendMessage, SendMessage{Message: "hello"})
	require.NoError(t, err)
	require.JSONEq(t, `{"event":"send_message","data":{"message":"hello"}}`, string(frame))

	env, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, EventSendMessage, env.Event)

	var payload SendMessage
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "hello", payload.Message)
}

func TestDecodeRejectsMissingEvent(t *testing.T) {
	_, err := Decode([]byte(`{"data":"x"}`))
	require.ErrorIs(t, err, ErrInvalidEnvelope)
	_, err = Decode([]byte(`not json`))
	require.Error(t, err)
}

func TestSubjects(t *testing.T) {
	s := Subject("", "abc", ToServer, EventSendMessage)
	assert.Equal(t, "cureverse.abc.to_server.send_message", s)
	assert.Equal(t, "cureverse.abc.to_client.*", ClientInbox("", "abc"))
	assert.Equal(t, "app.*.to_server.*", ServerInbox("app"))

	session, dir, event, err := ParseSubject("", s)
	require.NoError(t, err)
	assert.Equal(t, "abc", session)
	assert.Equal(t, ToServer, dir)
	assert.Equal(t, EventSendMessage, event)

	_, _, _, err = ParseSubject("other", s)
	require.Error(t, err)
}

func TestValidFeedback(t *testing.T) {
	assert.True(t, ValidFeedback("Helpful"))
	assert.True(t, ValidFeedback("Not Helpful"))
	assert.False(t, ValidFeedback("meh"))
}
