package channel

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/cureverse/cureverse/internal/protocol"
)

const writeTimeout = 10 * time.Second

// WebSocketOptions configures a WebSocket adapter.
type WebSocketOptions struct {
	URL string
	// Session is sent as the "session" query parameter when set.
	Session string
	Header  http.Header
	Dialer  *websocket.Dialer
	// NewBackOff builds the reconnect policy. Defaults to exponential backoff
	// without an elapsed-time limit.
	NewBackOff func() backoff.BackOff
}

// WebSocket is an Adapter over a gorilla/websocket connection that redials
// with backoff when the connection drops.
type WebSocket struct {
	*Dispatcher

	opts   WebSocketOptions
	target string

	ctx    context.Context
	cancel context.CancelFunc

	writeMu sync.Mutex
	mu      sync.Mutex
	conn    *websocket.Conn
	closed  bool

	done chan struct{}
}

var _ Adapter = (*WebSocket)(nil)

// DialWebSocket connects to opts.URL and starts the read loop. The first dial
// is not retried.
func DialWebSocket(ctx context.Context, opts WebSocketOptions) (*WebSocket, error) {
	target, err := websocketURL(opts.URL, opts.Session)
	if err != nil {
		return nil, err
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.NewBackOff == nil {
		opts.NewBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			b.MaxInterval = 10 * time.Second
			b.MaxElapsedTime = 0
			return b
		}
	}

	conn, err := dial(ctx, opts.Dialer, target, opts.Header)
	if err != nil {
		return nil, err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	ws := &WebSocket{
		Dispatcher: NewDispatcher(),
		opts:       opts,
		target:     target,
		ctx:        loopCtx,
		cancel:     cancel,
		conn:       conn,
		done:       make(chan struct{}),
	}
	go ws.run()
	return ws, nil
}

func websocketURL(raw, session string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrapf(err, "channel: parse url %q", raw)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", errors.Errorf("channel: unsupported scheme %q", u.Scheme)
	}
	if session != "" {
		q := u.Query()
		q.Set("session", session)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func dial(ctx context.Context, d *websocket.Dialer, target string, header http.Header) (*websocket.Conn, error) {
	conn, resp, err := d.DialContext(ctx, target, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, errors.Wrapf(err, "channel: dial %s", target)
	}
	return conn, nil
}

// Send writes one frame. It fails with ErrNotConnected while reconnecting.
func (ws *WebSocket) Send(ctx context.Context, event string, payload any) error {
	frame, err := protocol.Encode(event, payload)
	if err != nil {
		return err
	}

	ws.mu.Lock()
	conn, closed := ws.conn, ws.closed
	ws.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if conn == nil {
		return ErrNotConnected
	}

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	ws.writeMu.Lock()
	defer ws.writeMu.Unlock()
	_ = conn.SetWriteDeadline(deadline)
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return errors.Wrapf(ErrNotConnected, "write %s: %v", event, err)
	}
	return nil
}

// Close shuts the connection and stops reconnecting.
func (ws *WebSocket) Close() error {
	ws.mu.Lock()
	if ws.closed {
		ws.mu.Unlock()
		return nil
	}
	ws.closed = true
	conn := ws.conn
	ws.mu.Unlock()

	ws.cancel()
	if conn != nil {
		ws.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		ws.writeMu.Unlock()
		_ = conn.Close()
	}
	<-ws.done
	return nil
}

func (ws *WebSocket) run() {
	defer close(ws.done)
	for {
		ws.mu.Lock()
		conn := ws.conn
		ws.mu.Unlock()

		err := ws.readLoop(conn)
		if ws.ctx.Err() != nil {
			return
		}

		log.Warn().Err(err).Str("url", ws.target).Msg("channel: connection lost")
		ws.mu.Lock()
		ws.conn = nil
		ws.mu.Unlock()
		_ = conn.Close()
		ws.connectError(err)

		if !ws.reconnect() {
			return
		}
	}
}

func (ws *WebSocket) readLoop(conn *websocket.Conn) error {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		env, err := protocol.Decode(frame)
		if err != nil {
			log.Warn().Err(err).Msg("channel: dropping malformed frame")
			continue
		}
		ws.DispatchEnvelope(env)
	}
}

func (ws *WebSocket) reconnect() bool {
	b := backoff.WithContext(ws.opts.NewBackOff(), ws.ctx)
	var conn *websocket.Conn
	err := backoff.RetryNotify(func() error {
		c, err := dial(ws.ctx, ws.opts.Dialer, ws.target, ws.opts.Header)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, b, func(err error, next time.Duration) {
		log.Debug().Err(err).Dur("retry_in", next).Msg("channel: reconnect failed")
	})
	if err != nil {
		return false
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.closed {
		_ = conn.Close()
		return false
	}
	ws.conn = conn
	log.Info().Str("url", ws.target).Msg("channel: reconnected")
	return true
}
