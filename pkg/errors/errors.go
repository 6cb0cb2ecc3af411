// Package errors holds the sentinel errors shared by the agents and thin
// wrappers over the standard errors package, so callers import one package.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternal       = errors.New("internal error")
	ErrTimeout        = errors.New("operation timeout")
	ErrUnavailable    = errors.New("service unavailable")
	ErrNotImplemented = errors.New("not implemented")
)

// Envelope transport
var (
	// ErrMalformedEnvelope is a push body that does not decode as an envelope
	ErrMalformedEnvelope = errors.New("malformed envelope")
	// ErrInvalidPayloadJSON is envelope data that is not base64 wrapped JSON
	ErrInvalidPayloadJSON = errors.New("invalid payload json")
	ErrPublishFailure     = errors.New("publish failure")
)

// Agent workflows
var (
	// ErrUnknownReportType means no prompt template matches the requested report
	ErrUnknownReportType = errors.New("unknown report type")
	// ErrGenerationFailure means the model call failed or returned no text
	ErrGenerationFailure = errors.New("generation failure")
	// ErrNotReady marks a dependency that failed to start; health checks report it
	ErrNotReady = errors.New("not ready")
	ErrNoData   = errors.New("no data")
)

// Market data providers
var (
	ErrProviderFailure   = errors.New("market data provider failure")
	ErrInvalidSymbol     = errors.New("invalid symbol")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// ValidationError names the message field that failed validation.
// It matches ErrInvalidInput under Is.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("validation error: field '%s': %s", e.Field, e.Message)
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// MultiError collects independent failures, e.g. closing several stores
type MultiError struct {
	Errors []error
}

// Add records err; nil is ignored
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// ToError returns nil when nothing was recorded
func (m *MultiError) ToError() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

func (m *MultiError) Error() string {
	switch len(m.Errors) {
	case 0:
		return "no errors"
	case 1:
		return m.Errors[0].Error()
	}

	parts := make([]string, len(m.Errors))
	for i, err := range m.Errors {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("multiple errors (%d): %s", len(m.Errors), strings.Join(parts, "; "))
}

func (m *MultiError) Unwrap() []error {
	return m.Errors
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap prefixes err with message. Returns nil for a nil err.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted prefix
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

func New(message string) error {
	return errors.New(message)
}

// Newf is fmt.Errorf; %w is honored
func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
