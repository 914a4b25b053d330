package channel

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/cureverse/cureverse/internal/protocol"
)

// Pipe is one end of an in-process channel. Events sent on one end are
// delivered to the handlers of the other end.
type Pipe struct {
	*Dispatcher

	peer  *Pipe
	inbox *queue
	done  chan struct{}

	closeOnce sync.Once
}

var _ Adapter = (*Pipe)(nil)

// NewPipe returns two connected ends.
func NewPipe() (*Pipe, *Pipe) {
	a := newPipeEnd()
	b := newPipeEnd()
	a.peer, b.peer = b, a
	go a.run()
	go b.run()
	return a, b
}

func newPipeEnd() *Pipe {
	return &Pipe{
		Dispatcher: NewDispatcher(),
		inbox:      newQueue(),
		done:       make(chan struct{}),
	}
}

// Send queues the event for the peer's delivery goroutine.
func (p *Pipe) Send(ctx context.Context, event string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.inbox.isClosed() {
		return ErrClosed
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "channel: encode %s", event)
	}
	if !p.peer.inbox.push(protocol.Envelope{Event: event, Data: data}) {
		return ErrNotConnected
	}
	return nil
}

// Close stops delivery on this end. The peer's sends fail afterwards.
func (p *Pipe) Close() error {
	p.closeOnce.Do(func() {
		p.inbox.close()
		<-p.done
	})
	return nil
}

func (p *Pipe) run() {
	defer close(p.done)
	for {
		env, ok := p.inbox.pop()
		if !ok {
			return
		}
		p.DispatchEnvelope(env)
	}
}

// queue is an unbounded FIFO of envelopes.
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []protocol.Envelope
	closed bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue) push(env protocol.Envelope) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, env)
	q.cond.Signal()
	return true
}

func (q *queue) pop() (protocol.Envelope, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return protocol.Envelope{}, false
	}
	env := q.items[0]
	q.items[0] = protocol.Envelope{}
	q.items = q.items[1:]
	return env, true
}

func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.items = nil
	q.cond.Broadcast()
	q.mu.Unlock()
}

func (q *queue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
