package transport

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWebSocketTransport_ConnectSendAndDisconnectLifecycle(t *testing.T) {
	connected := make(chan struct{}, 1)
	disconnected := make(chan struct{}, 1)
	received := make(chan []byte, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tr := NewWebSocketTransport(discardLogger())
		tr.OnClientConnected(func() { connected <- struct{}{} })
		tr.OnClientDisconnected(func() { disconnected <- struct{}{} })

		if err := tr.Upgrade(w, r); err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}

		go func() {
			for msg := range tr.Inbound() {
				received <- msg
			}
		}()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-connected:
	case <-time.After(time.Second):
		t.Fatal("expected connected callback")
	}

	select {
	case msg := <-received:
		if string(msg) != "hello" {
			t.Errorf("expected hello, got %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("expected inbound message")
	}

	conn.Close()

	select {
	case <-disconnected:
	case <-time.After(time.Second):
		t.Fatal("expected disconnected callback after client closes")
	}
}
