package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/onyxandcode/onyx-site/pkg/logging"
	"golang.org/x/net/websocket"
)

// Transports reported to the Recorder.
const (
	TransportHTTP      = "http"
	TransportWebSocket = "websocket"
)

// maxMessageBytes bounds one inbound chat message.
const maxMessageBytes = 4 << 10

// Recorder counts answered chat messages.
type Recorder interface {
	ObserveChatMessage(transport string)
}

// InboundMessage is what the widget sends over the socket.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what the widget receives.
type OutboundMessage struct {
	Type      string `json:"type"` // "message", "typing", "pong", "error"
	Role      string `json:"role,omitempty"`
	Text      string `json:"text,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// MessageResponse is the HTTP reply. TypingMS tells the widget how long to
// show the typing indicator before revealing Reply.
type MessageResponse struct {
	Reply    string `json:"reply"`
	TypingMS int64  `json:"typing_ms"`
}

// HandlerConfig wires optional collaborators.
type HandlerConfig struct {
	TypingDelay time.Duration
	Recorder    Recorder
	Logger      *logging.Logger
}

// Handler serves the chat widget over HTTP and WebSocket.
type Handler struct {
	responder   *Responder
	typingDelay time.Duration
	recorder    Recorder
	logger      *logging.Logger
	now         func() time.Time
}

// NewHandler creates a chat handler. A negative delay disables typing pauses.
func NewHandler(responder *Responder, cfg HandlerConfig) *Handler {
	if responder == nil {
		responder = NewResponder(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	delay := cfg.TypingDelay
	switch {
	case delay == 0:
		delay = DefaultTypingDelay
	case delay < 0:
		delay = 0
	}
	return &Handler{
		responder:   responder,
		typingDelay: delay,
		recorder:    cfg.Recorder,
		logger:      cfg.Logger,
		now:         time.Now,
	}
}

// HandleMessage handles POST /api/chat/message. The reply is returned at once;
// the widget plays the typing delay itself.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	reply := h.responder.Reply(req.Text)
	h.observe(TransportHTTP)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(MessageResponse{
		Reply:    reply,
		TypingMS: h.typingDelay.Milliseconds(),
	})
}

// HandleWebSocket handles GET /api/chat/ws.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(r.Context(), conn)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(ctx context.Context, conn *websocket.Conn) {
	conn.MaxPayloadBytes = maxMessageBytes
	if err := h.send(conn, OutboundMessage{Type: "message", Role: "agent", Text: Greeting}); err != nil {
		return
	}
	h.logger.Debug("chat: connection opened", "remote", conn.Request().RemoteAddr)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("chat: connection closed", "error", err)
			return
		}

		switch {
		case msg.Type == "ping":
			_ = h.send(conn, OutboundMessage{Type: "pong"})
			continue
		case msg.Type != "message" || strings.TrimSpace(msg.Text) == "":
			continue
		}

		if err := h.send(conn, OutboundMessage{Type: "typing", Role: "agent"}); err != nil {
			return
		}
		if h.typingDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(h.typingDelay):
			}
		}
		if err := h.send(conn, OutboundMessage{Type: "message", Role: "agent", Text: h.responder.Reply(msg.Text)}); err != nil {
			return
		}
		h.observe(TransportWebSocket)
	}
}

func (h *Handler) send(conn *websocket.Conn, msg OutboundMessage) error {
	msg.Timestamp = h.now().UTC().Format(time.RFC3339)
	return websocket.JSON.Send(conn, msg)
}

func (h *Handler) observe(transport string) {
	if h.recorder != nil {
		h.recorder.ObserveChatMessage(transport)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
