package channel

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/cureverse/cureverse/internal/metrics"
	"github.com/cureverse/cureverse/internal/protocol"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
)

// WebSocketHandler serves chat sessions over WebSocket.
type WebSocketHandler struct {
	responder *Responder
	metrics   *metrics.Metrics
	upgrader  websocket.Upgrader
}

// NewWebSocketHandler returns a handler answering through responder.
func NewWebSocketHandler(responder *Responder, m *metrics.Metrics) *WebSocketHandler {
	return &WebSocketHandler{
		responder: responder,
		metrics:   m,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the handler at /ws.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.ServeHTTP)
}

// ServeHTTP upgrades the request and serves the session named by the
// "session" query parameter. Without one, a fresh session id is used.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("[websocket] upgrade failed")
		return
	}
	defer conn.Close()

	h.metrics.Connected("websocket", 1)
	defer h.metrics.Connected("websocket", -1)

	log.Info().Str("session", sessionID).Msg("[websocket] new connection")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go pingLoop(ctx, conn)

	c := &wsConn{conn: conn}
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session", sessionID).Msg("[websocket] read error")
			}
			log.Info().Str("session", sessionID).Msg("[websocket] connection closed")
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		env, err := protocol.Decode(frame)
		if err != nil {
			log.Warn().Err(err).Str("session", sessionID).Msg("[websocket] dropping frame")
			h.metrics.Rejected()
			continue
		}

		reply, ok := h.responder.Handle(ctx, sessionID, env.Event, env.Data)
		if !ok {
			continue
		}
		if err := c.send(protocol.EventReceiveMessage, reply); err != nil {
			log.Warn().Err(err).Str("session", sessionID).Msg("[websocket] write failed")
			return
		}
	}
}

type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(event string, payload any) error {
	frame, err := protocol.Encode(event, payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

// pingLoop keeps the connection alive until ctx is done.
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
