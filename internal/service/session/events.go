package session

import "github.com/cureverse/cureverse/internal/model/chat"

// State is the controller's position in the exchange lifecycle.
type State int

const (
	Idle State = iota
	AwaitingReply
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingReply:
		return "awaiting_reply"
	default:
		return "unknown"
	}
}

// Event drives a transition. All events go through Controller.Handle.
type Event interface {
	event()
}

// SubmitRequested carries raw user input.
type SubmitRequested struct {
	Text string
}

// ReplyReceived carries an assistant reply already normalised at the channel
// boundary.
type ReplyReceived struct {
	Payload chat.AssistantPayload
}

// TimerExpired fires when the dwell floor of a deferred reply has elapsed.
// Gen ties it to the cycle that scheduled it.
type TimerExpired struct {
	Gen uint64
}

// ResetRequested wipes the transcript and reseeds the welcome message.
type ResetRequested struct{}

// TransportFailed reports that the channel could not carry a message.
type TransportFailed struct {
	Err error
}

func (SubmitRequested) event() {}
func (ReplyReceived) event()   {}
func (TimerExpired) event()    {}
func (ResetRequested) event()  {}
func (TransportFailed) event() {}
