package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/cureverse/cureverse/internal/protocol"
)

func TestDispatcherReplacesHandler(t *testing.T) {
	d := NewDispatcher()
	var got []string
	d.On("ev", func(json.RawMessage) { got = append(got, "first") })
	d.On("ev", func(json.RawMessage) { got = append(got, "second") })

	require.True(t, d.Dispatch("ev", nil))
	require.False(t, d.Dispatch("other", nil))
	require.Equal(t, []string{"second"}, got)

	d.On("ev", nil)
	require.False(t, d.Dispatch("ev", nil))
}

func TestPipeDeliversInOrder(t *testing.T) {
	client, server := NewPipe()
	defer client.Close()
	defer server.Close()

	received := make(chan string, 10)
	server.On(protocol.EventSendMessage, func(data json.RawMessage) {
		var msg protocol.SendMessage
		_ = json.Unmarshal(data, &msg)
		received <- msg.Message
	})

	ctx := context.Background()
	for _, text := range []string{"a", "b", "c"} {
		require.NoError(t, client.Send(ctx, protocol.EventSendMessage, protocol.SendMessage{Message: text}))
	}

	for _, want := range []string{"a", "b", "c"} {
		select {
		case got := <-received:
			require.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestPipeSendDoesNotDispatchSynchronously(t *testing.T) {
	client, server := NewPipe()
	defer client.Close()
	defer server.Close()

	var mu sync.Mutex
	mu.Lock()
	done := make(chan struct{})
	server.On("ping", func(json.RawMessage) {
		mu.Lock()
		mu.Unlock()
		close(done)
	})

	// The handler blocks on mu; Send must still return.
	require.NoError(t, client.Send(context.Background(), "ping", nil))
	mu.Unlock()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}
}

func TestPipeClosed(t *testing.T) {
	client, server := NewPipe()
	require.NoError(t, server.Close())
	require.ErrorIs(t, client.Send(context.Background(), "x", nil), ErrNotConnected)

	require.NoError(t, client.Close())
	require.ErrorIs(t, client.Send(context.Background(), "x", nil), ErrClosed)
}

func TestWebSocketURL(t *testing.T) {
	got, err := websocketURL("http://localhost:8080/ws", "abc")
	require.NoError(t, err)
	require.Equal(t, "ws://localhost:8080/ws?session=abc", got)

	_, err = websocketURL("ftp://x", "")
	require.Error(t, err)
}

// echoServer answers every send_message with a receive_message carrying the
// same text, and closes the first connection after the first reply when
// dropFirst is set.
func echoServer(t *testing.T, dropFirst bool) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	var mu sync.Mutex
	var conns int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		mu.Lock()
		conns++
		n := conns
		mu.Unlock()

		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				return
			}
			env, err := protocol.Decode(frame)
			if err != nil {
				continue
			}
			var msg protocol.SendMessage
			_ = json.Unmarshal(env.Data, &msg)
			reply, _ := protocol.Encode(protocol.EventReceiveMessage, "echo: "+msg.Message)
			if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
				return
			}
			if dropFirst && n == 1 {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketRoundTrip(t *testing.T) {
	srv := echoServer(t, false)

	ws, err := DialWebSocket(context.Background(), WebSocketOptions{URL: wsURL(srv), Session: "s1"})
	require.NoError(t, err)
	defer ws.Close()

	replies := make(chan string, 1)
	ws.On(protocol.EventReceiveMessage, func(data json.RawMessage) {
		p, _ := protocol.DecodeReply(data)
		replies <- p.Message
	})

	require.NoError(t, ws.Send(context.Background(), protocol.EventSendMessage, protocol.SendMessage{Message: "hello"}))
	select {
	case got := <-replies:
		require.Equal(t, "echo: hello", got)
	case <-time.After(2 * time.Second):
		t.Fatal("no reply")
	}

	require.NoError(t, ws.Close())
	require.ErrorIs(t, ws.Send(context.Background(), protocol.EventSendMessage, nil), ErrClosed)
}

func TestWebSocketReconnectsAfterDrop(t *testing.T) {
	srv := echoServer(t, true)

	ws, err := DialWebSocket(context.Background(), WebSocketOptions{
		URL: wsURL(srv),
		NewBackOff: func() backoff.BackOff {
			return backoff.NewConstantBackOff(10 * time.Millisecond)
		},
	})
	require.NoError(t, err)
	defer ws.Close()

	replies := make(chan string, 4)
	drops := make(chan string, 4)
	ws.On(protocol.EventReceiveMessage, func(data json.RawMessage) {
		p, _ := protocol.DecodeReply(data)
		replies <- p.Message
	})
	ws.On(protocol.EventConnectError, func(data json.RawMessage) {
		var ce protocol.ConnectError
		_ = json.Unmarshal(data, &ce)
		drops <- ce.Message
	})

	ctx := context.Background()
	require.NoError(t, ws.Send(ctx, protocol.EventSendMessage, protocol.SendMessage{Message: "one"}))
	require.Equal(t, "echo: one", waitFor(t, replies))
	require.NotEmpty(t, waitFor(t, drops))

	require.Eventually(t, func() bool {
		return ws.Send(ctx, protocol.EventSendMessage, protocol.SendMessage{Message: "two"}) == nil
	}, 3*time.Second, 20*time.Millisecond)
	require.Equal(t, "echo: two", waitFor(t, replies))
}

func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(3 * time.Second):
		t.Fatal("timed out")
		return ""
	}
}
