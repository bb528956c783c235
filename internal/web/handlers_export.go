package web

// handlers_export.go: artifact and chart download endpoints.

import (
	"fmt"
	"net/http"

	"github.com/datanova/workbench/internal/core"
	"github.com/go-chi/chi/v5"
)

// handleExport serializes the current artifact in the requested format and
// serves it as a download. Supported formats: txt, json, md.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := core.ExportFormat(chi.URLParam(r, "format"))

	data, contentType, fileName, err := s.service.ExportArtifact(r.Context(), sessionID(r.Context()), format)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// chartExportResponse points the browser at the rendered image. The image
// itself lives at the engine-hosted URL or inline in the data URI; the
// gateway never re-derives it.
type chartExportResponse struct {
	ImageRef string `json:"imageRef"`
	FileName string `json:"fileName"`
}

// handleExportChart returns the rendered chart's image reference and its
// deterministic download name.
func (s *Server) handleExportChart(w http.ResponseWriter, r *http.Request) {
	imageRef, fileName, err := s.service.ExportChart(r.Context(), sessionID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, chartExportResponse{
		ImageRef: imageRef,
		FileName: fileName,
	})
}
