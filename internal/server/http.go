package server

import (
	"encoding/json"
	"io"
	"net/http"
)

// actorHeader carries the editor name on write requests. Empty is allowed;
// anonymous edits simply do not appear on the editor roster.
const actorHeader = "X-Cardwall-Actor"

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *CardwallServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/boards", s.handleCreateBoard)
	mux.HandleFunc("GET /v1/boards", s.handleListBoards)
	mux.HandleFunc("GET /v1/boards/{id}", s.handleGetBoard)
	mux.HandleFunc("PATCH /v1/boards/{id}", s.handleUpdateBoard)
	mux.HandleFunc("DELETE /v1/boards/{id}", s.handleDeleteBoard)
	mux.HandleFunc("GET /v1/boards/{id}/evaluate", s.handleEvaluateBoard)
	mux.HandleFunc("GET /v1/boards/{id}/elements", s.handleListElements)
	mux.HandleFunc("POST /v1/boards/{id}/elements", s.handleCreateElement)
	mux.HandleFunc("GET /v1/elements/{id}", s.handleGetElement)
	mux.HandleFunc("PATCH /v1/elements/{id}", s.handleUpdateElement)
	mux.HandleFunc("DELETE /v1/elements/{id}", s.handleDeleteElement)
	mux.HandleFunc("GET /v1/boards/{id}/columns", s.handleListColumns)
	mux.HandleFunc("POST /v1/boards/{id}/columns", s.handleCreateColumn)
	mux.HandleFunc("GET /v1/columns/{id}", s.handleGetColumn)
	mux.HandleFunc("PATCH /v1/columns/{id}", s.handleUpdateColumn)
	mux.HandleFunc("DELETE /v1/columns/{id}", s.handleDeleteColumn)
	mux.HandleFunc("POST /v1/boards/{id}/cards", s.handleCreateCard)
	mux.HandleFunc("GET /v1/cards", s.handleListCards)
	mux.HandleFunc("GET /v1/cards/{id}", s.handleGetCard)
	mux.HandleFunc("PATCH /v1/cards/{id}/fields", s.handlePatchCardFields)
	mux.HandleFunc("POST /v1/cards/{id}/buttons/{element_id}", s.handlePressButton)
	mux.HandleFunc("DELETE /v1/cards/{id}", s.handleDeleteCard)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/editors/roster", s.handleEditorRoster)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *CardwallServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readBody reads the full request body so it can be decoded more than once.
func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
