package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error", nil, ""},
		{"invalid file type", ErrInvalidFileType, "UPL001"},
		{"upload in progress", ErrUploadInProgress, "UPL002"},
		{"too many uploads", ErrTooManyUploads, "UPL003"},
		{"file too large", ErrFileTooLarge, "UPL004"},
		{"request body too large", errors.New("http: request body too large"), "UPL004"},
		{"no file provided", ErrNoFileProvided, "UPL005"},
		{"missing axis", &ValidationError{Reason: MissingAxis, Axis: "y"}, "VIS001"},
		{"unknown column", &ValidationError{Reason: UnknownColumn, Axis: "x", Column: "Nope"}, "VIS002"},
		{"type mismatch", &ValidationError{Reason: TypeMismatch, Axis: "y", Column: "Region"}, "VIS003"},
		{"unsupported chart", &ValidationError{Reason: UnsupportedChart, Column: "donut"}, "VIS004"},
		{"no rendered chart", ErrNoRenderedChart, "VIS005"},
		{"invalid summary params", ErrInvalidSummaryParams, "SUM001"},
		{"regeneration failed", fmt.Errorf("regeneration failed: %w", ErrEngineUnavailable), "SUM002"},
		{"no active session", ErrNoActiveSession, "SES001"},
		{"engine unavailable", ErrEngineUnavailable, "ENG001"},
		{"connection refused", errors.New(`dial tcp 127.0.0.1:8000: connect: connection refused`), "ENG001"},
		{"engine status", fmt.Errorf("%w 503: overloaded", ErrEngineStatus), "ENG002"},
		{"malformed response", ErrMalformedResponse, "ENG003"},
		{"context canceled", context.Canceled, "ENG004"},
		{"deadline exceeded", context.DeadlineExceeded, "ENG005"},
		{"rate limited", errors.New("rate limit exceeded"), "RATE001"},
		{"wrapped sentinel", fmt.Errorf("upload: %w", ErrInvalidFileType), "UPL001"},
		{"unknown error", errors.New("something exploded"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" && tt.wantCode != "" {
				t.Error("mapped message should not be empty")
			}
		})
	}
}

func TestMapError_CaseInsensitive(t *testing.T) {
	got := MapError(errors.New("INVALID FILE TYPE: .pdf"))
	if got.Code != "UPL001" {
		t.Errorf("Code = %q, want UPL001", got.Code)
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrInvalidFileType)
	if !strings.Contains(got, "(Code: UPL001)") {
		t.Errorf("FormatUserError() = %q, want the code embedded", got)
	}
	if !strings.Contains(got, "Only CSV files can be analyzed") {
		t.Errorf("FormatUserError() = %q, want the user message", got)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	if !IsUserFacing(ErrFileTooLarge) {
		t.Error("known pattern should be user facing")
	}
	if IsUserFacing(errors.New("nil pointer dereference")) {
		t.Error("unknown error should not be user facing")
	}
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
}

func TestNewUserError(t *testing.T) {
	technical := fmt.Errorf("read payload: %w", ErrMalformedResponse)
	ue := NewUserError(technical)

	if ue.User.Code != "ENG003" {
		t.Errorf("Code = %q, want ENG003", ue.User.Code)
	}
	if ue.Error() != ue.User.Message {
		t.Errorf("Error() = %q, want the user message", ue.Error())
	}
	if !errors.Is(ue, ErrMalformedResponse) {
		t.Error("Unwrap() should expose the technical error")
	}

	if NewUserError(nil) != nil {
		t.Error("NewUserError(nil) should be nil")
	}
}
