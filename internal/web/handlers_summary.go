package web

// handlers_summary.go: summary regeneration endpoint.

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/datanova/workbench/internal/core"
)

// regenerateRequest selects the summary style. Fields omitted by the client
// fall back to the defaults, matching the upload form behavior.
type regenerateRequest struct {
	Length   string `json:"length"`
	Tone     string `json:"tone"`
	Audience string `json:"audience"`
}

// handleRegenerate re-requests the summary for the current artifact under
// new parameters and returns the merged artifact.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("%w: undecodable request body", core.ErrInvalidSummaryParams))
		return
	}

	params := core.DefaultSummaryParams()
	if req.Length != "" {
		params.Length = core.SummaryLength(req.Length)
	}
	if req.Tone != "" {
		params.Tone = core.SummaryTone(req.Tone)
	}
	if req.Audience != "" {
		params.Audience = core.SummaryAudience(req.Audience)
	}

	artifact, err := s.service.Regenerate(r.Context(), sessionID(r.Context()), params)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, artifact)
}
