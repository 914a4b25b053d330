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

// QueueGroup lets several servers share the client subjects.
const QueueGroup = "cureverse-assistant"

// DrainWait bounds how long Close waits for the connection to finish draining.
const DrainWait = 10 * time.Second

// Bridge serves every session published under prefix on a NATS connection.
type Bridge struct {
	nc        *nats.Conn
	prefix    string
	responder *Responder
	sub       *nats.Subscription
	closed    chan struct{}
}

// NewBridge subscribes to the server inbox for prefix.
func NewBridge(ctx context.Context, nc *nats.Conn, prefix string, responder *Responder) (*Bridge, error) {
	b := &Bridge{nc: nc, prefix: prefix, responder: responder, closed: make(chan struct{})}
	var once sync.Once
	nc.SetClosedHandler(func(*nats.Conn) {
		once.Do(func() { close(b.closed) })
	})
	inbox := protocol.ServerInbox(prefix)
	sub, err := nc.QueueSubscribe(inbox, QueueGroup, func(msg *nats.Msg) {
		b.handle(ctx, msg)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "channel: subscribe %s", inbox)
	}
	if err := nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, errors.Wrap(err, "channel: flush nats subscription")
	}
	b.sub = sub
	b.responder.metrics.Connected("nats", 1)
	log.Info().Str("subject", inbox).Msg("[nats] bridge subscribed")
	return b, nil
}

func (b *Bridge) handle(ctx context.Context, msg *nats.Msg) {
	session, _, event, err := protocol.ParseSubject(b.prefix, msg.Subject)
	if err != nil {
		log.Warn().Err(err).Msg("[nats] dropping message")
		return
	}

	reply, ok := b.responder.Handle(ctx, session, event, json.RawMessage(msg.Data))
	if !ok {
		return
	}

	data, err := json.Marshal(reply)
	if err != nil {
		log.Error().Err(err).Str("session", session).Msg("[nats] encode reply failed")
		return
	}
	subject := protocol.Subject(b.prefix, session, protocol.ToClient, protocol.EventReceiveMessage)
	if err := b.nc.Publish(subject, data); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("[nats] publish failed")
	}
}

// Close drains the whole connection so replies still being computed are
// published and flushed, then waits for it to close.
func (b *Bridge) Close() error {
	if b.sub == nil || b.nc.IsClosed() {
		return nil
	}
	b.responder.metrics.Connected("nats", -1)
	if err := b.nc.Drain(); err != nil {
		return errors.Wrap(err, "channel: drain nats")
	}
	select {
	case <-b.closed:
		return nil
	case <-time.After(DrainWait):
		return errors.New("channel: nats drain timed out")
	}
}
