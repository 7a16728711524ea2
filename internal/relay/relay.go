package relay

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/goccy/go-json"

	"github.com/ashureev/castline/internal/chat"
	"github.com/ashureev/castline/internal/identity"
)

const writeTimeout = 5 * time.Second

// Handler upgrades /socket connections and relays chat events.
type Handler struct {
	reg            *Registry
	originPatterns []string
	logger         *slog.Logger
}

// NewHandler creates a relay handler. originPatterns are passed to the
// websocket handshake; nil or "*" accepts any origin.
func NewHandler(reg *Registry, originPatterns []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if len(originPatterns) == 0 {
		originPatterns = []string{"*"}
	}
	return &Handler{reg: reg, originPatterns: originPatterns, logger: logger}
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Warn("Failed to accept chat socket", "error", err, "ip", identity.IPFromRequest(r))
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "socket ended"); closeErr != nil {
			h.logger.Debug("Failed to close chat socket", "error", closeErr)
		}
	}()

	var userID string
	defer func() {
		if userID != "" {
			h.reg.Unregister(userID, ws)
		}
	}()

	ctx := r.Context()
	for {
		_, frame, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				h.logger.Debug("Chat socket closed by client", "user_id", userID)
			} else if ctx.Err() == nil {
				h.logger.Debug("Chat socket read error", "error", err, "user_id", userID)
			}
			return
		}

		env, err := chat.DecodeEvent(frame)
		if err != nil {
			h.logger.Debug("Dropping malformed frame", "error", err)
			continue
		}

		switch env.Event {
		case chat.EventAddUser:
			var id string
			if err := json.Unmarshal(env.Data, &id); err != nil || id == "" {
				continue
			}
			if userID != "" && userID != id {
				h.reg.Unregister(userID, ws)
			}
			userID = id
			h.reg.Register(userID, ws)
		case chat.EventSendMessage:
			var msg chat.Outgoing
			if err := json.Unmarshal(env.Data, &msg); err != nil || msg.ReceiverID == "" {
				continue
			}
			h.forward(ctx, msg)
		}
	}
}

// forward delivers msg to every socket of the receiver. An offline receiver
// drops the message.
func (h *Handler) forward(ctx context.Context, msg chat.Outgoing) {
	conns := h.reg.Connections(msg.ReceiverID)
	if len(conns) == 0 {
		h.logger.Debug("Receiver offline, message dropped", "receiver_id", msg.ReceiverID)
		return
	}
	frame, err := chat.EncodeEvent(chat.EventGetMessage, chat.Incoming{SenderID: msg.SenderID, Text: msg.Text})
	if err != nil {
		h.logger.Warn("Failed to encode relayed message", "error", err)
		return
	}
	for _, c := range conns {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		if err := c.Write(wctx, websocket.MessageText, frame); err != nil {
			h.logger.Debug("Relay write failed", "receiver_id", msg.ReceiverID, "error", err)
		}
		cancel()
	}
}
