package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docchat/internal/interfaces"
	"github.com/ternarybob/docchat/internal/models"
)

// UploadResponse is the body of a successful upload
type UploadResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Details *models.IngestResult `json:"details"`
}

// UploadHandler accepts a multipart file and ingests it
type UploadHandler struct {
	documents interfaces.DocumentService
	maxBytes  int64
	logger    arbor.ILogger
}

// NewUploadHandler creates an upload handler bounded at maxBytes per request body
func NewUploadHandler(documents interfaces.DocumentService, maxBytes int64, logger arbor.ILogger) *UploadHandler {
	return &UploadHandler{
		documents: documents,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// UploadHandler handles POST /api/upload with the document in form field "file"
func (h *UploadHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteErrorDetails(w, http.StatusRequestEntityTooLarge, "File too large", fmt.Sprintf("uploads are limited to %d bytes", h.maxBytes))
			return
		}
		WriteError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read uploaded file")
		WriteErrorDetails(w, http.StatusInternalServerError, "Error processing document", err.Error())
		return
	}

	filename := filepath.Base(header.Filename)
	h.logger.Info().
		Str("file", filename).
		Int("bytes", len(data)).
		Msg("Processing upload")

	result, err := h.documents.IngestFile(r.Context(), filename, data)
	if err != nil {
		h.logger.Error().Err(err).Str("file", filename).Msg("Failed to ingest upload")
		WriteErrorDetails(w, statusForIngestError(err), "Error processing document", err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Message: fmt.Sprintf("Processed %d chunks from %s", result.ChunkCount, result.Source),
		Details: result,
	})
}

func statusForIngestError(err error) int {
	switch {
	case errors.Is(err, models.ErrEmptyInput), errors.Is(err, models.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
