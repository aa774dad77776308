package socket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	gamelink "github.com/cory-johannsen/gamelink"
	"github.com/cory-johannsen/gamelink/config"
)

// WebSocketAdapter is the production Adapter over a gorilla/websocket
// connection. A reader goroutine feeds inbound frames into a bounded queue;
// Poll drains the queue without blocking.
type WebSocketAdapter struct {
	cfg    config.SocketConfig
	logger *zap.Logger

	events chan Event

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  bool
}

// NewWebSocketAdapter builds an adapter. One adapter handles one connection
// at a time; after a disconnect it may be reused for a new Connect.
func NewWebSocketAdapter(cfg config.SocketConfig, logger *zap.Logger) *WebSocketAdapter {
	return &WebSocketAdapter{
		cfg:    cfg,
		logger: logger.Named("ws"),
		events: make(chan Event, cfg.InboundQueueSize),
	}
}

// Connect dials the URL in the background. The outcome arrives as an
// EventConnected or EventDisconnected through Poll.
func (a *WebSocketAdapter) Connect(ctx context.Context, url string) error {
	a.mu.Lock()
	if a.conn != nil {
		a.mu.Unlock()
		return gamelink.NewError(gamelink.KindInternal, "adapter already connected", nil)
	}
	a.closed = false
	a.mu.Unlock()

	go a.dial(ctx, url)
	return nil
}

func (a *WebSocketAdapter) dial(ctx context.Context, url string) {
	dialCtx := ctx
	if a.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, a.cfg.ConnectTimeout)
		defer cancel()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, url, nil)
	if err != nil {
		a.logger.Warn("dial failed", zap.Error(err))
		a.push(Event{Kind: EventDisconnected, Err: gamelink.NewError(gamelink.KindTransport, "dial failed", err)})
		return
	}

	a.mu.Lock()
	if a.closed {
		// Close raced the dial.
		a.mu.Unlock()
		_ = conn.Close()
		a.push(Event{Kind: EventDisconnected})
		return
	}
	a.conn = conn
	a.mu.Unlock()

	a.push(Event{Kind: EventConnected})
	go a.readLoop(conn)
}

func (a *WebSocketAdapter) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			a.mu.Lock()
			deliberate := a.closed
			a.conn = nil
			a.mu.Unlock()
			if deliberate {
				a.push(Event{Kind: EventDisconnected})
			} else {
				a.push(Event{Kind: EventDisconnected, Err: gamelink.NewError(gamelink.KindTransport, "read failed", err)})
			}
			return
		}
		a.push(Event{Kind: EventMessage, Data: data})
	}
}

// push enqueues an event, dropping the oldest frame when the queue is full.
// Lifecycle events are never dropped.
func (a *WebSocketAdapter) push(ev Event) {
	for {
		select {
		case a.events <- ev:
			return
		default:
		}
		select {
		case dropped := <-a.events:
			if dropped.Kind != EventMessage {
				// Never discard lifecycle events; requeue and retry.
				a.events <- dropped
			} else {
				a.logger.Warn("inbound queue full, dropping frame", zap.Int("bytes", len(dropped.Data)))
			}
		default:
		}
	}
}

// Send writes one text frame under the configured write deadline.
func (a *WebSocketAdapter) Send(ctx context.Context, data []byte) error {
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()
	if conn == nil {
		return gamelink.NewError(gamelink.KindNotConnected, "no connection", nil)
	}

	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	deadline := time.Now().Add(a.cfg.WriteTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetWriteDeadline(deadline)
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return gamelink.NewError(gamelink.KindTransport, "write failed", err)
	}
	return nil
}

// Close tears the connection down. The reader goroutine notices and emits
// the EventDisconnected.
func (a *WebSocketAdapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	conn := a.conn
	a.mu.Unlock()

	if conn == nil {
		// Close before the dial finished; dial cleans up.
		return nil
	}

	a.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	a.writeMu.Unlock()

	return conn.Close()
}

// Poll returns the next queued event without blocking.
func (a *WebSocketAdapter) Poll() (Event, bool) {
	select {
	case ev := <-a.events:
		return ev, true
	default:
		return Event{}, false
	}
}
