package web

// handlers.go: health, session lifecycle, and assistant endpoints.

import (
	"encoding/json"
	"net/http"

	"github.com/datanova/workbench/internal/core"
)

// sessionResponse is the GET /api/session body.
type sessionResponse struct {
	Active     bool                  `json:"active"`
	Artifact   *core.DatasetArtifact `json:"artifact,omitempty"`
	LastParams *core.SummaryParams   `json:"lastParams,omitempty"`
	Chart      *core.ChartSession    `json:"chart,omitempty"`
}

// handleHealth reports liveness and upload gate occupancy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"uploads": s.service.UploadStatus(),
	})
}

// handleGetSession returns the session's current artifact and chart state.
// A session without an artifact is a normal response, not an error.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r.Context())

	artifact, ok := s.service.Artifact(r.Context(), sid)
	if !ok {
		writeJSON(w, r, http.StatusOK, sessionResponse{Active: false})
		return
	}

	resp := sessionResponse{Active: true, Artifact: artifact}
	if params, ok := s.service.LastParams(r.Context(), sid); ok {
		resp.LastParams = &params
	}
	chart := s.service.ChartState(r.Context(), sid)
	resp.Chart = &chart

	writeJSON(w, r, http.StatusOK, resp)
}

// handleClearSession destroys the session's artifact and chart state.
func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	s.service.ClearSession(r.Context(), sessionID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

type assistantRequest struct {
	Message string `json:"message"`
}

type assistantResponse struct {
	Reply string `json:"reply"`
}

// handleAssistant answers a free-form question about the product or the
// session's dataset.
func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeJSON(w, r, http.StatusOK, assistantResponse{Reply: core.AssistantGreeting})
		return
	}

	reply := s.service.Ask(r.Context(), sessionID(r.Context()), req.Message)
	writeJSON(w, r, http.StatusOK, assistantResponse{Reply: reply})
}
