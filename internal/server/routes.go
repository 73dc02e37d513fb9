package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Ingestion and answering
	mux.HandleFunc("/api/upload", s.app.UploadHandler.UploadHandler) // POST multipart "file"
	mux.HandleFunc("/api/chat", s.app.ChatHandler.ChatHandler)       // POST {messages}, streamed text

	// WebSocket chat
	mux.HandleFunc("/ws/chat", s.app.ChatWSHandler.HandleWebSocket)

	// Registry
	mux.HandleFunc("/api/documents", s.app.DocumentsHandler.ListHandler)

	// System
	mux.HandleFunc("/api/health", s.app.HealthHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.HealthHandler.VersionHandler)

	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Not found", http.StatusNotFound)
}
