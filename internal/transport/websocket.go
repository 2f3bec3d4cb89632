package transport

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsMaxPayloadBytes = 1 << 20
	wsPongWait        = 45 * time.Second
	wsPingInterval    = 30 * time.Second
	wsWriteWait       = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  8192,
	WriteBufferSize: 8192,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// WebSocketTransport grounds Transport for local/dev use: it upgrades a
// single HTTP request to a websocket and relays inbound text frames on
// Inbound() while satisfying the connected/disconnected/closed lifecycle.
type WebSocketTransport struct {
	conn   *websocket.Conn
	logger *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	send    chan []byte
	inbound chan []byte
	closed  chan struct{}

	mu             sync.Mutex
	onConnected    func()
	onDisconnected func()
	closeOnce      sync.Once
}

// NewWebSocketTransport builds a transport with no connection yet. Callers
// register OnClientConnected/OnClientDisconnected before calling Upgrade so
// both fire reliably.
func NewWebSocketTransport(logger *slog.Logger) *WebSocketTransport {
	ctx, cancel := context.WithCancel(context.Background())
	return &WebSocketTransport{
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		send:    make(chan []byte, 64),
		inbound: make(chan []byte, 64),
		closed:  make(chan struct{}),
	}
}

// Upgrade upgrades r to a websocket connection and starts its read/write
// pumps, then fires the connected callback if one is registered.
func (t *WebSocketTransport) Upgrade(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	t.conn = conn

	go t.writeLoop()
	go t.readLoop()

	t.mu.Lock()
	connected := t.onConnected
	t.mu.Unlock()
	if connected != nil {
		connected()
	}
	return nil
}

// Inbound returns a channel of raw inbound text frame payloads. Closed when
// the connection closes.
func (t *WebSocketTransport) Inbound() <-chan []byte {
	return t.inbound
}

func (t *WebSocketTransport) OnClientConnected(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onConnected = fn
}

func (t *WebSocketTransport) OnClientDisconnected(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDisconnected = fn
}

func (t *WebSocketTransport) Closed() <-chan struct{} {
	return t.closed
}

func (t *WebSocketTransport) SendText(data []byte) error {
	select {
	case t.send <- data:
		return nil
	case <-t.ctx.Done():
		return t.ctx.Err()
	}
}

func (t *WebSocketTransport) Close() error {
	t.cancel()
	return t.conn.Close()
}

func (t *WebSocketTransport) readLoop() {
	defer t.teardown()

	t.conn.SetReadLimit(wsMaxPayloadBytes)
	_ = t.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	t.conn.SetPongHandler(func(string) error {
		return t.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		messageType, data, err := t.conn.ReadMessage()
		if err != nil {
			if t.logger != nil {
				t.logger.Debug("websocket transport read loop ended", "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		select {
		case t.inbound <- data:
		case <-t.ctx.Done():
			return
		}
	}
}

func (t *WebSocketTransport) writeLoop() {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case msg, ok := <-t.send:
			if !ok {
				return
			}
			_ = t.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := t.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = t.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (t *WebSocketTransport) teardown() {
	t.closeOnce.Do(func() {
		t.cancel()
		close(t.closed)
		close(t.inbound)
		t.mu.Lock()
		disconnected := t.onDisconnected
		t.mu.Unlock()
		if disconnected != nil {
			disconnected()
		}
	})
}
