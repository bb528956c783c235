// Package core provides the business logic for the dataset workflow.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. When users encounter errors, they can quote the error code to
// support staff for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Invalid file type: Only .csv files can be analyzed
//	         Action: Save your data as a CSV file and try again
//	         Patterns: "invalid file type"
//
//	UPL002 - Upload in progress: This session already has an upload running
//	         Action: Wait for the current upload to finish
//	         Patterns: "upload already in progress"
//
//	UPL003 - System busy: Too many uploads in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many concurrent uploads"
//
//	UPL004 - File too large: File exceeds the maximum size limit
//	         Action: Reduce the file size or split it into smaller files
//	         Patterns: "file too large", "request body too large"
//
//	UPL005 - No file: No file was selected
//	         Action: Please select a CSV file to upload
//	         Patterns: "no file provided"
//
// # Chart Validation Errors (VIS001-VIS099)
//
//	VIS001 - Missing axis: A required axis was not selected
//	         Action: Select a column for each required axis
//	         Patterns: "missing axis"
//
//	VIS002 - Unknown column: The selected column is not in this dataset
//	         Action: Pick a column from the current dataset
//	         Patterns: "unknown column"
//
//	VIS003 - Type mismatch: The Y axis needs a numeric column
//	         Action: Pick a numeric column for the Y axis
//	         Patterns: "type mismatch"
//
//	VIS004 - Unsupported chart: The chart type is not recognized
//	         Action: Choose bar, line, pie, or scatter
//	         Patterns: "unsupported chart type"
//
//	VIS005 - No rendered chart: Chart download requested before generation
//	         Action: Generate a chart before downloading it
//	         Patterns: "no rendered chart"
//
// # Summary Errors (SUM001-SUM099)
//
//	SUM001 - Invalid parameters: Summary options are not recognized
//	         Action: Choose from the offered length, tone, and audience values
//	         Patterns: "invalid summary"
//
//	SUM002 - Regeneration failed: The summary could not be regenerated
//	         Action: Your previous summary is unchanged. Please try again
//	         Patterns: "regeneration failed"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - No dataset: No dataset is loaded in this session
//	         Action: Upload a CSV file first
//	         Patterns: "no active dataset session"
//
// # Engine Errors (ENG001-ENG099)
//
//	ENG001 - Engine unreachable: The analysis service could not be reached
//	         Action: Please try again in a few moments
//	         Patterns: "engine unavailable", "connection refused"
//
//	ENG002 - Engine error: The analysis service returned an error
//	         Action: Please try again
//	         Patterns: "engine returned status"
//
//	ENG003 - Malformed response: The analysis service response could not be read
//	         Action: Please try again
//	         Patterns: "malformed engine response"
//
//	ENG004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	ENG005 - Request timeout: Request timed out
//	         Action: Try a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. Patterns are matched using strings.Contains, so partial matches
// work. The first matching pattern wins, so order matters:
//   - More specific patterns should come before general ones
//   - Multiple patterns can map to the same error code
var errorPatterns = []errorPattern{
	// =========================================================================
	// Upload Errors (UPL001-UPL005)
	// These errors occur before or during file upload.
	// =========================================================================
	{
		pattern: "invalid file type",
		msg: UserMessage{
			Message: "Only CSV files can be analyzed",
			Action:  "Save your data as a .csv file and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "upload already in progress",
		msg: UserMessage{
			Message: "An upload is already running for this session",
			Action:  "Wait for the current upload to finish",
			Code:    "UPL002",
		},
	},
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL003",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Reduce the file size or split it into smaller files",
			Code:    "UPL004",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Reduce the file size or split it into smaller files",
			Code:    "UPL004",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "UPL005",
		},
	},

	// =========================================================================
	// Chart Validation Errors (VIS001-VIS004)
	// These errors reject a chart configuration before any engine call.
	// =========================================================================
	{
		pattern: "missing axis",
		msg: UserMessage{
			Message: "A required axis was not selected",
			Action:  "Select a column for each required axis",
			Code:    "VIS001",
		},
	},
	{
		pattern: "unknown column",
		msg: UserMessage{
			Message: "The selected column is not in this dataset",
			Action:  "Pick a column from the current dataset",
			Code:    "VIS002",
		},
	},
	{
		pattern: "type mismatch",
		msg: UserMessage{
			Message: "The Y axis needs a numeric column",
			Action:  "Pick a numeric column for the Y axis",
			Code:    "VIS003",
		},
	},
	{
		pattern: "unsupported chart type",
		msg: UserMessage{
			Message: "The chart type is not recognized",
			Action:  "Choose bar, line, pie, or scatter",
			Code:    "VIS004",
		},
	},
	{
		pattern: "no rendered chart",
		msg: UserMessage{
			Message: "No chart has been generated yet",
			Action:  "Generate a chart before downloading it",
			Code:    "VIS005",
		},
	},

	// =========================================================================
	// Summary Errors (SUM001-SUM002)
	// =========================================================================
	{
		pattern: "invalid summary",
		msg: UserMessage{
			Message: "Summary options are not recognized",
			Action:  "Choose from the offered length, tone, and audience values",
			Code:    "SUM001",
		},
	},
	{
		pattern: "regeneration failed",
		msg: UserMessage{
			Message: "The summary could not be regenerated",
			Action:  "Your previous summary is unchanged. Please try again",
			Code:    "SUM002",
		},
	},

	// =========================================================================
	// Session Errors (SES001)
	// =========================================================================
	{
		pattern: "no active dataset session",
		msg: UserMessage{
			Message: "No dataset is loaded in this session",
			Action:  "Upload a CSV file first",
			Code:    "SES001",
		},
	},

	// =========================================================================
	// Engine Errors (ENG001-ENG005)
	// These errors occur when talking to the analysis engine.
	// =========================================================================
	{
		pattern: "engine unavailable",
		msg: UserMessage{
			Message: "The analysis service could not be reached",
			Action:  "Please try again in a few moments",
			Code:    "ENG001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "The analysis service could not be reached",
			Action:  "Please try again in a few moments",
			Code:    "ENG001",
		},
	},
	{
		pattern: "engine returned status",
		msg: UserMessage{
			Message: "The analysis service returned an error",
			Action:  "Please try again",
			Code:    "ENG002",
		},
	},
	{
		pattern: "malformed engine response",
		msg: UserMessage{
			Message: "The analysis service response could not be read",
			Action:  "Please try again",
			Code:    "ENG003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "ENG004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "ENG005",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be
// shown to users. Returns true if the error matches a specific pattern
// (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean
// message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a
// user-friendly message. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
