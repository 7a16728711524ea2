package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/goccy/go-json"
)

// SocketChannel is a Channel over a WebSocket connection.
type SocketChannel struct {
	url      string
	dialOpts *websocket.DialOptions
	logger   *slog.Logger
	handlers handlerSet

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// SocketOption configures a SocketChannel.
type SocketOption func(*SocketChannel)

// WithHTTPClient dials through hc.
func WithHTTPClient(hc *http.Client) SocketOption {
	return func(c *SocketChannel) { c.dialOpts.HTTPClient = hc }
}

// WithSocketLogger sets the channel logger.
func WithSocketLogger(l *slog.Logger) SocketOption {
	return func(c *SocketChannel) { c.logger = l }
}

// NewSocketChannel returns an unconnected channel for url (ws://, wss://,
// http:// or https://).
func NewSocketChannel(url string, opts ...SocketOption) *SocketChannel {
	c := &SocketChannel{
		url:      url,
		dialOpts: &websocket.DialOptions{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials the server and starts the read loop. The read loop outlives
// ctx; it stops on Close or when the server goes away.
func (c *SocketChannel) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrChannelClosed
	}
	if c.conn != nil {
		return nil
	}

	conn, _, err := websocket.Dial(ctx, c.url, c.dialOpts)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}

	readCtx, cancel := context.WithCancel(context.Background())
	c.conn = conn
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.readLoop(readCtx, conn, c.done)
	c.logger.Debug("Chat channel connected", "url", c.url)
	return nil
}

func (c *SocketChannel) readLoop(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, frame, err := conn.Read(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
			case websocket.CloseStatus(err) != -1:
				c.logger.Debug("Chat channel closed by server", "status", websocket.CloseStatus(err))
			default:
				c.logger.Warn("Chat channel read error", "error", err)
			}
			return
		}

		env, err := DecodeEvent(frame)
		if err != nil {
			c.logger.Debug("Dropping malformed chat frame", "error", err)
			continue
		}
		if env.Event != EventGetMessage {
			continue
		}

		var in Incoming
		if err := json.Unmarshal(env.Data, &in); err != nil || in.SenderID == "" {
			c.logger.Debug("Dropping malformed chat message", "error", err)
			continue
		}
		c.handlers.dispatch(in)
	}
}

// AddUser announces presence.
func (c *SocketChannel) AddUser(ctx context.Context, userID string) error {
	return c.emit(ctx, EventAddUser, userID)
}

// Send pushes a transient message.
func (c *SocketChannel) Send(ctx context.Context, msg Outgoing) error {
	return c.emit(ctx, EventSendMessage, msg)
}

func (c *SocketChannel) emit(ctx context.Context, event string, data any) error {
	c.mu.Lock()
	conn, closed := c.conn, c.closed
	c.mu.Unlock()

	if closed {
		return ErrChannelClosed
	}
	if conn == nil {
		return errors.New("chat channel not connected")
	}

	frame, err := EncodeEvent(event, data)
	if err != nil {
		return err
	}
	if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	return nil
}

// OnMessage registers an inbound handler.
func (c *SocketChannel) OnMessage(h func(Incoming)) *Subscription {
	return c.handlers.add(h)
}

// Close closes the connection and waits for the read loop to exit.
func (c *SocketChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn, cancel, done := c.conn, c.cancel, c.done
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	err := conn.Close(websocket.StatusNormalClosure, "conversation closed")
	cancel()
	<-done
	if err != nil {
		// The peer may already be gone; the connection is released either way.
		c.logger.Debug("Chat channel close handshake incomplete", "error", err)
	}
	return nil
}
