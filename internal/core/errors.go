package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the workflow taxonomy. Every one of these is
// recoverable: the worst outcome is "operation did not complete, prior
// state preserved".
var (
	// ErrInvalidFileType is returned before any engine call when the file
	// name does not carry the accepted extension.
	ErrInvalidFileType = errors.New("invalid file type: only .csv files are accepted")

	// ErrNoFileProvided is returned when the upload carries no file.
	ErrNoFileProvided = errors.New("no file provided")

	// ErrFileTooLarge is returned when the declared file size exceeds the
	// configured limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUploadInProgress is returned when a session already has an upload
	// in flight. Uploads are never queued or parallelized per session.
	ErrUploadInProgress = errors.New("upload already in progress")

	// ErrTooManyUploads is returned when the global upload ceiling is
	// reached and no slot frees up within the wait window.
	ErrTooManyUploads = errors.New("too many concurrent uploads, please try again later")

	// ErrInvalidSummaryParams is returned when a summary length, tone, or
	// audience value is outside its closed enum.
	ErrInvalidSummaryParams = errors.New("invalid summary parameters")

	// ErrNoActiveSession is returned when an operation requires a current
	// artifact and the session has none.
	ErrNoActiveSession = errors.New("no active dataset session")

	// ErrEngineUnavailable wraps transport-level failures reaching the
	// analysis engine. The session store is never touched on this path.
	ErrEngineUnavailable = errors.New("analysis engine unavailable")

	// ErrEngineStatus wraps non-2xx engine responses. The status code and a
	// body snippet ride along in the wrapping error.
	ErrEngineStatus = errors.New("engine returned status")

	// ErrMalformedResponse is returned when an engine response body cannot
	// be decoded at all. Absent fields within a decodable body are
	// defaulted, not errored.
	ErrMalformedResponse = errors.New("malformed engine response")

	// ErrNoRenderedChart is returned when a chart export is requested
	// before any chart has been rendered for the session.
	ErrNoRenderedChart = errors.New("no rendered chart to export")

	// ErrStaleToken signals that an engine response arrived after its
	// request token was superseded. Callers discard the response silently.
	ErrStaleToken = errors.New("stale request token")
)

// ValidationReason classifies a chart configuration failure.
type ValidationReason string

const (
	// MissingAxis: a required axis was not supplied.
	MissingAxis ValidationReason = "missing_axis"
	// UnknownColumn: an axis references a column absent from the dataset.
	UnknownColumn ValidationReason = "unknown_column"
	// TypeMismatch: a numeric-required axis is bound to a non-numeric column.
	TypeMismatch ValidationReason = "type_mismatch"
	// UnsupportedChart: the chart type is not one of the known renderings.
	UnsupportedChart ValidationReason = "unsupported_chart"
)

// ValidationError describes why a chart configuration was rejected before
// any engine call.
type ValidationError struct {
	Reason ValidationReason
	Axis   string // "x" or "y"
	Column string // offending column reference, when applicable
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case MissingAxis:
		return fmt.Sprintf("missing axis: %s axis is required for this chart type", e.Axis)
	case UnknownColumn:
		return fmt.Sprintf("unknown column %q bound to %s axis", e.Column, e.Axis)
	case TypeMismatch:
		return fmt.Sprintf("type mismatch: column %q bound to %s axis is not numeric", e.Column, e.Axis)
	case UnsupportedChart:
		return fmt.Sprintf("unsupported chart type %q", e.Column)
	default:
		return "chart validation failed"
	}
}

// IsValidation reports whether err is a chart validation error and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
