package web

// handlers_upload.go: dataset upload endpoint.

import (
	"errors"
	"net/http"

	"github.com/datanova/workbench/internal/core"
)

// multipartOverhead is slack on top of the file size limit for the other
// form parts and boundaries.
const multipartOverhead = 64 << 10

// handleUpload accepts a multipart form with a "file" part and optional
// length/tone/audience text parts, analyzes the file, and returns the new
// artifact.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.Upload.MaxFileSize + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(s.cfg.Upload.MaxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, core.ErrFileTooLarge)
			return
		}
		respondError(w, r, core.ErrNoFileProvided)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, core.ErrNoFileProvided)
		return
	}
	defer file.Close()

	params := summaryParamsFromForm(r)

	artifact, err := s.service.Upload(r.Context(), sessionID(r.Context()),
		header.Filename, header.Size, file, params)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, artifact)
}

// summaryParamsFromForm reads optional summary parameters from the upload
// form. Returns nil when no parameter was supplied, letting the workflow
// apply its defaults.
func summaryParamsFromForm(r *http.Request) *core.SummaryParams {
	length := r.FormValue("length")
	tone := r.FormValue("tone")
	audience := r.FormValue("audience")
	if length == "" && tone == "" && audience == "" {
		return nil
	}

	params := core.DefaultSummaryParams()
	if length != "" {
		params.Length = core.SummaryLength(length)
	}
	if tone != "" {
		params.Tone = core.SummaryTone(tone)
	}
	if audience != "" {
		params.Audience = core.SummaryAudience(audience)
	}
	return &params
}
