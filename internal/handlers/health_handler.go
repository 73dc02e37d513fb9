package handlers

import (
	"context"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/common"
)

// VectorCounter reports the number of vectors in the index
type VectorCounter interface {
	Count(ctx context.Context) (int, error)
}

// HealthHandler reports liveness and index size
type HealthHandler struct {
	index        VectorCounter
	chatProvider string
	logger       arbor.ILogger
}

// NewHealthHandler creates a health handler
func NewHealthHandler(index VectorCounter, chatProvider string, logger arbor.ILogger) *HealthHandler {
	return &HealthHandler{
		index:        index,
		chatProvider: chatProvider,
		logger:       logger,
	}
}

// HealthHandler handles GET /api/health
func (h *HealthHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	count, err := h.index.Count(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Health check could not count vectors")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":        "degraded",
			"version":       common.GetVersion(),
			"chat_provider": h.chatProvider,
			"error":         err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"version":       common.GetVersion(),
		"vectors":       count,
		"chat_provider": h.chatProvider,
	})
}

// VersionHandler handles GET /api/version
func (h *HealthHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.Version,
		"build":      common.Build,
		"git_commit": common.GitCommit,
	})
}
