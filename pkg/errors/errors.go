package errors

import (
	"errors"
	"fmt"
)

// Error codes
const (
	CodeRateLimited     = "RATE_LIMITED"
	CodeDataUnavailable = "DATA_UNAVAILABLE"
	CodeConfiguration   = "CONFIGURATION_ERROR"
	CodeAccessBlocked   = "ACCESS_BLOCKED"
	CodeRender          = "RENDER_ERROR"
	CodeAPIError        = "API_ERROR"
)

type TrackerError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *TrackerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TrackerError) Unwrap() error {
	return e.Cause
}

func (e *TrackerError) WithCause(cause error) *TrackerError {
	e.Cause = cause
	return e
}

// RateLimitError signals a "too many requests" response from the upstream
// API. It is the only error class the retry helper will back off and retry.
type RateLimitError struct {
	*TrackerError
}

func NewRateLimitError(message string, statusCode int, context map[string]any) *RateLimitError {
	return &RateLimitError{
		TrackerError: &TrackerError{
			Message:    message,
			Code:       CodeRateLimited,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

// DataUnavailableError marks a single metric fetch or alignment failure.
// Callers record the value as missing and keep going; it never aborts a
// surrounding batch or artist.
type DataUnavailableError struct {
	*TrackerError
}

func NewDataUnavailableError(message string, cause error) *DataUnavailableError {
	return &DataUnavailableError{
		TrackerError: &TrackerError{
			Message: message,
			Code:    CodeDataUnavailable,
			Cause:   cause,
		},
	}
}

// ConfigurationError covers a subject that cannot be worked on at all, such
// as a name with no resolvable Chartmetric ID. Fatal for the subject it
// concerns, non-fatal for a surrounding batch.
type ConfigurationError struct {
	*TrackerError
}

func NewConfigurationError(message string, context map[string]any) *ConfigurationError {
	return &ConfigurationError{
		TrackerError: &TrackerError{
			Message: message,
			Code:    CodeConfiguration,
			Context: context,
		},
	}
}

// AccessError is the process-wide flavor of ConfigurationError: the offline
// guard or a failed credential exchange. No subject in the run can succeed,
// so a batch aborts instead of skipping. It unwraps to ConfigurationError, so
// IsConfiguration still matches it.
type AccessError struct {
	*ConfigurationError
}

func NewAccessError(message string, context map[string]any) *AccessError {
	return &AccessError{
		ConfigurationError: &ConfigurationError{
			TrackerError: &TrackerError{
				Message: message,
				Code:    CodeAccessBlocked,
				Context: context,
			},
		},
	}
}

func (e *AccessError) Unwrap() error {
	return e.ConfigurationError
}

// RenderError indicates a malformed report structure reaching the renderer.
// It points at an upstream assembly bug and must fail loudly.
type RenderError struct {
	*TrackerError
}

func NewRenderError(message string, context map[string]any) *RenderError {
	return &RenderError{
		TrackerError: &TrackerError{
			Message: message,
			Code:    CodeRender,
			Context: context,
		},
	}
}

type APIError struct {
	*TrackerError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		TrackerError: &TrackerError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

func (e *ConfigurationError) WithCause(cause error) *ConfigurationError {
	e.Cause = cause
	return e
}

func (e *AccessError) WithCause(cause error) *AccessError {
	e.Cause = cause
	return e
}

func (e *APIError) WithCause(cause error) *APIError {
	e.Cause = cause
	return e
}

func (e *RenderError) WithCause(cause error) *RenderError {
	e.Cause = cause
	return e
}

// Is and As re-export the stdlib helpers so callers only import one errors
// package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

func IsDataUnavailable(err error) bool {
	var du *DataUnavailableError
	return errors.As(err, &du)
}

func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

func IsAccessBlocked(err error) bool {
	var ae *AccessError
	return errors.As(err, &ae)
}
