package web

// errors.go converts workflow errors into the JSON error envelope. The
// technical error is logged server-side; the client gets the mapped
// user message, suggested action, and support code.

import (
	"errors"
	"net/http"

	"github.com/datanova/workbench/internal/core"
	"github.com/datanova/workbench/internal/logging"
)

// errorEnvelope is the JSON error body for every API failure.
type errorEnvelope struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code,omitempty"`
}

// respondError logs err and writes the mapped user message with an
// appropriate status code.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	if status >= 500 {
		logger.Error("request failed", "error", err, "code", msg.Code, "status", status)
	} else {
		logger.Info("request rejected", "error", err, "code", msg.Code, "status", status)
	}

	writeJSON(w, r, status, errorEnvelope{
		Error:  msg.Message,
		Action: msg.Action,
		Code:   msg.Code,
	})
}

// statusForError maps workflow errors onto HTTP status codes.
func statusForError(err error) int {
	var ve *core.ValidationError

	switch {
	case errors.Is(err, core.ErrNoActiveSession),
		errors.Is(err, core.ErrNoRenderedChart):
		return http.StatusNotFound

	case errors.Is(err, core.ErrUploadInProgress):
		return http.StatusConflict

	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusTooManyRequests

	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, core.ErrInvalidFileType),
		errors.Is(err, core.ErrNoFileProvided),
		errors.Is(err, core.ErrUnknownFormat),
		errors.Is(err, core.ErrInvalidSummaryParams),
		errors.As(err, &ve):
		return http.StatusBadRequest

	case errors.Is(err, core.ErrEngineUnavailable),
		errors.Is(err, core.ErrEngineStatus),
		errors.Is(err, core.ErrMalformedResponse):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
