package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/common"
	"github.com/ternarybob/docchat/internal/interfaces"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// Frame types sent on /ws/chat
const (
	FrameFragment = "fragment"
	FrameDone     = "done"
	FrameError    = "error"
)

// ChatFrame is one server message on the chat socket
type ChatFrame struct {
	Type     string   `json:"type"`
	Text     string   `json:"text,omitempty"`
	Error    string   `json:"error,omitempty"`
	Grounded bool     `json:"grounded,omitempty"`
	Sources  []string `json:"sources,omitempty"`
}

// ChatWebSocketHandler answers conversations over a websocket. Each client
// message is a ChatRequest; the reply is a run of fragment frames closed by
// a done frame, or a single error frame.
type ChatWebSocketHandler struct {
	chatService interfaces.ChatService
	validate    *validator.Validate
	logger      arbor.ILogger
}

// NewChatWebSocketHandler creates a websocket chat handler
func NewChatWebSocketHandler(chatService interfaces.ChatService, logger arbor.ILogger) *ChatWebSocketHandler {
	return &ChatWebSocketHandler{
		chatService: chatService,
		validate:    validator.New(),
		logger:      logger,
	}
}

// HandleWebSocket handles GET /ws/chat
func (h *ChatWebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade chat websocket")
		return
	}
	defer conn.Close()

	sessionID := common.NewRequestID()
	h.logger.Debug().Str("session", sessionID).Msg("Chat websocket connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn().Err(err).Str("session", sessionID).Msg("Chat websocket closed unexpectedly")
			}
			return
		}

		if err := h.answer(r.Context(), conn, data); err != nil {
			h.logger.Debug().Err(err).Str("session", sessionID).Msg("Chat websocket write failed")
			return
		}
	}
}

// answer handles one request message; only write failures are returned
func (h *ChatWebSocketHandler) answer(parent context.Context, conn *websocket.Conn, data []byte) error {
	var req ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return h.send(conn, ChatFrame{Type: FrameError, Error: "Invalid request body: " + err.Error()})
	}
	if err := h.validate.Struct(req); err != nil {
		return h.send(conn, ChatFrame{Type: FrameError, Error: "Invalid conversation: " + err.Error()})
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	stream, err := h.chatService.Answer(ctx, req.Messages)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to start answer stream")
		return h.send(conn, ChatFrame{Type: FrameError, Error: err.Error()})
	}

	for fragment := range stream.Fragments {
		if err := h.send(conn, ChatFrame{Type: FrameFragment, Text: fragment}); err != nil {
			return err
		}
	}

	return h.send(conn, ChatFrame{Type: FrameDone, Grounded: stream.Grounded, Sources: stream.Sources})
}

func (h *ChatWebSocketHandler) send(conn *websocket.Conn, frame ChatFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
