package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/interfaces"
	"github.com/ternarybob/docchat/internal/models"
)

// ChatRequest is the body of POST /api/chat and of each /ws/chat message
type ChatRequest struct {
	Messages []models.ConversationMessage `json:"messages" validate:"required,min=1,dive"`
}

// ChatHandler streams answers as plain text
type ChatHandler struct {
	chatService interfaces.ChatService
	validate    *validator.Validate
	logger      arbor.ILogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService interfaces.ChatService, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		validate:    validator.New(),
		logger:      logger,
	}
}

// ChatHandler handles POST /api/chat. The answer is written fragment by
// fragment with a flush after each; errors before the first fragment are JSON.
func (h *ChatHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorDetails(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		WriteErrorDetails(w, http.StatusBadRequest, "Invalid conversation", err.Error())
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.logger.Info().
		Int("messages", len(req.Messages)).
		Int("query_length", len(req.Messages[len(req.Messages)-1].Content)).
		Msg("Processing chat request")

	stream, err := h.chatService.Answer(ctx, req.Messages)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to start answer stream")
		WriteErrorDetails(w, statusForChatError(err), "An error occurred", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Answer-Grounded", strconv.FormatBool(stream.Grounded))
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	for fragment := range stream.Fragments {
		if _, err := w.Write([]byte(fragment)); err != nil {
			h.logger.Debug().Err(err).Msg("Client went away during answer stream")
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func statusForChatError(err error) int {
	if errors.Is(err, models.ErrEmptyInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
