package channel

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/cureverse/cureverse/internal/protocol"
)

// NATSOptions configures a NATS adapter.
type NATSOptions struct {
	URL     string
	Prefix  string
	Session string
	Name    string
}

// NATS is an Adapter over NATS subjects. Reconnection is handled by the
// nats.go client; drops surface as connect_error events.
type NATS struct {
	*Dispatcher

	nc      *nats.Conn
	owned   bool
	prefix  string
	session string
	sub     *nats.Subscription

	mu     sync.Mutex
	closed bool
}

var _ Adapter = (*NATS)(nil)

// ConnectNATS dials opts.URL and subscribes to the session's client inbox.
func ConnectNATS(opts NATSOptions) (*NATS, error) {
	if opts.Session == "" {
		return nil, errors.New("channel: nats session is required")
	}
	if opts.Name == "" {
		opts.Name = "cureverse-client"
	}

	a := &NATS{Dispatcher: NewDispatcher(), owned: true, prefix: opts.Prefix, session: opts.Session}
	nc, err := nats.Connect(opts.URL,
		nats.Name(opts.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err == nil {
				return
			}
			log.Warn().Err(err).Msg("channel: nats disconnected")
			a.connectError(err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("channel: nats reconnected")
		}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "channel: connect nats %s", opts.URL)
	}
	a.nc = nc
	if err := a.subscribe(); err != nil {
		nc.Close()
		return nil, err
	}
	return a, nil
}

// NewNATS builds an adapter over an existing connection. The connection is
// not closed by Close.
func NewNATS(nc *nats.Conn, prefix, session string) (*NATS, error) {
	if session == "" {
		return nil, errors.New("channel: nats session is required")
	}
	a := &NATS{Dispatcher: NewDispatcher(), nc: nc, prefix: prefix, session: session}
	if err := a.subscribe(); err != nil {
		return nil, err
	}
	return a, nil
}

// nats.go invokes a subscription's callbacks one at a time, in order.
func (a *NATS) subscribe() error {
	inbox := protocol.ClientInbox(a.prefix, a.session)
	sub, err := a.nc.Subscribe(inbox, func(msg *nats.Msg) {
		_, _, event, err := protocol.ParseSubject(a.prefix, msg.Subject)
		if err != nil {
			log.Warn().Err(err).Msg("channel: dropping nats message")
			return
		}
		a.Dispatch(event, json.RawMessage(msg.Data))
	})
	if err != nil {
		return errors.Wrapf(err, "channel: subscribe %s", inbox)
	}
	a.sub = sub
	return a.nc.Flush()
}

// Send publishes payload on the session's to_server subject for event.
func (a *NATS) Send(ctx context.Context, event string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if !a.nc.IsConnected() {
		return ErrNotConnected
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "channel: encode %s", event)
	}
	subject := protocol.Subject(a.prefix, a.session, protocol.ToServer, event)
	if err := a.nc.Publish(subject, data); err != nil {
		return errors.Wrapf(ErrNotConnected, "publish %s: %v", subject, err)
	}
	return nil
}

// Close unsubscribes and, when the adapter dialled the connection, closes it.
func (a *NATS) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	var err error
	if a.sub != nil {
		err = a.sub.Unsubscribe()
	}
	if a.owned {
		a.nc.Close()
	}
	return err
}
