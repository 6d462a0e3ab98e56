package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// UnknownPattern indicates the requested pattern is not registered
	UnknownPattern ErrorCode = "UNKNOWN_PATTERN"
	// DuplicatePattern indicates a pattern name was registered twice
	DuplicatePattern ErrorCode = "DUPLICATE_PATTERN"
	// MalformedFactSet indicates extractor output violated structural assumptions
	MalformedFactSet ErrorCode = "MALFORMED_FACT_SET"
	// CandidateExplosion indicates a role matched more types than the enumeration cap
	CandidateExplosion ErrorCode = "CANDIDATE_EXPLOSION"
	// ExtractionFailed indicates the fact extractor could not process a snippet
	ExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	// ConfigInvalid indicates bad configuration or template definitions
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditTemplate suggests editing a template definition
	EditTemplate FixActionType = "edit-template"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Description string        `json:"description,omitempty"`
}

// PatError represents a patcheck error with code, message, and suggestions
type PatError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new PatError
func New(code ErrorCode, message string, cause error) *PatError {
	return &PatError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes(code),
	}
}

// Newf creates a new PatError with a formatted message and no cause
func Newf(code ErrorCode, format string, args ...interface{}) *PatError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *PatError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *PatError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *PatError) WithDetails(details interface{}) *PatError {
	e.Details = details
	return e
}

// CodeOf returns the error code carried by err, or InternalError when err
// is not a PatError.
func CodeOf(err error) ErrorCode {
	var pe *PatError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return InternalError
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// errorActions maps error codes to suggested fix actions
var errorActions = map[ErrorCode][]FixAction{
	UnknownPattern: {
		{
			Type:        RunCommand,
			Command:     "patcheck list-patterns",
			Description: "Show registered pattern names",
		},
	},
	MalformedFactSet: {
		{
			Type:        RunCommand,
			Command:     "patcheck extract ${snippet}",
			Description: "Inspect the extracted facts for the snippet",
		},
	},
	CandidateExplosion: {
		{
			Type:        EditTemplate,
			Description: "Tighten the role's capability predicate or raise the candidate cap",
		},
	},
}

func suggestedFixes(code ErrorCode) []FixAction {
	return errorActions[code]
}
