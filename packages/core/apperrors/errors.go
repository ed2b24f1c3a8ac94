// Package apperrors provides coded domain errors for the scoring engine.
package apperrors

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Scoring configuration
	CodeConfigNotFound      Code = "CONFIG_NOT_FOUND"
	CodeInvalidScoringRules Code = "INVALID_SCORING_RULES"

	// Result validation
	CodeInvalidWinner Code = "INVALID_WINNER"
	CodeMissingWinner Code = "MISSING_WINNER"
	CodeInvalidScores Code = "INVALID_SCORES"
	CodeInvalidPairs  Code = "INVALID_PAIRS"

	// Repair
	CodeInvalidFixType Code = "INVALID_FIX_TYPE"

	// Storage
	CodeNotFound           Code = "NOT_FOUND"
	CodePersistenceFailure Code = "PERSISTENCE_FAILURE"
	CodeAggregationFailed  Code = "AGGREGATION_FAILED"
)

// HTTPStatus maps a code to the status returned by the HTTP layer.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidWinner, CodeMissingWinner, CodeInvalidScores, CodeInvalidPairs, CodeInvalidFixType:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConfigNotFound, CodeInvalidScoringRules:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates a domain error carrying identifiers of the entity involved.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first domain error in err's chain.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	return errors.Is(err, &Error{Code: code})
}
