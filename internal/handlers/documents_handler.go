package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/interfaces"
	"github.com/ternarybob/docchat/internal/models"
)

// DocumentsHandler lists the ingest registry
type DocumentsHandler struct {
	documents interfaces.DocumentService
	logger    arbor.ILogger
}

// NewDocumentsHandler creates a documents handler
func NewDocumentsHandler(documents interfaces.DocumentService, logger arbor.ILogger) *DocumentsHandler {
	return &DocumentsHandler{
		documents: documents,
		logger:    logger,
	}
}

// ListHandler handles GET /api/documents
func (h *DocumentsHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	records, err := h.documents.ListDocuments(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list documents")
		WriteErrorDetails(w, http.StatusInternalServerError, "Failed to list documents", err.Error())
		return
	}
	if records == nil {
		records = []*models.IngestRecord{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": records,
		"count":     len(records),
	})
}
