// Package channel wraps the bidirectional event connection between the chat
// client and the assistant. Adapters deliver inbound events to at most one
// registered handler per event, serially and in arrival order, from a single
// delivery goroutine. Send never calls a handler synchronously.
package channel

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/cureverse/cureverse/internal/protocol"
)

var (
	// ErrNotConnected is returned by Send while the transport is down.
	ErrNotConnected = errors.New("channel: not connected")
	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("channel: closed")
)

// Handler receives the raw JSON data of one inbound event.
type Handler func(data json.RawMessage)

// Adapter is a named-event bidirectional channel.
type Adapter interface {
	// Send transmits payload under event. It does not wait for a reply.
	Send(ctx context.Context, event string, payload any) error
	// On registers h for event, replacing any previous handler.
	On(event string, h Handler)
	// Close stops delivery. It must not be called from a Handler.
	Close() error
}

// Dispatcher routes inbound events to registered handlers. Dispatch calls
// never overlap.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler

	deliver sync.Mutex
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

// On registers h for event. A nil handler removes the registration.
func (d *Dispatcher) On(event string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if h == nil {
		delete(d.handlers, event)
		return
	}
	d.handlers[event] = h
}

// Dispatch invokes the handler for event, if any, and reports whether one ran.
func (d *Dispatcher) Dispatch(event string, data json.RawMessage) bool {
	d.mu.RLock()
	h, ok := d.handlers[event]
	d.mu.RUnlock()
	if !ok {
		log.Debug().Str("event", event).Msg("channel: no handler registered, dropping event")
		return false
	}

	d.deliver.Lock()
	defer d.deliver.Unlock()
	h(data)
	return true
}

// DispatchEnvelope dispatches a decoded frame.
func (d *Dispatcher) DispatchEnvelope(env protocol.Envelope) bool {
	return d.Dispatch(env.Event, env.Data)
}

func (d *Dispatcher) connectError(err error) {
	data, _ := json.Marshal(protocol.ConnectError{Message: err.Error()})
	d.Dispatch(protocol.EventConnectError, data)
}
