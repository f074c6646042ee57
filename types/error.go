package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

// Generation error codes
const (
	ErrGenerationTransport ErrorCode = "GENERATION_TRANSPORT"
	ErrStageFailed         ErrorCode = "STAGE_FAILED"
	ErrConfiguration       ErrorCode = "CONFIGURATION"
)

// Validation error codes
const (
	ErrValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrValidationExhausted  ErrorCode = "VALIDATION_EXHAUSTED"
	ErrValidatorUnavailable ErrorCode = "VALIDATOR_UNAVAILABLE"
)

// Detail keys attached to errors for diagnostics.
const (
	DetailStage         = "stage"
	DetailLastPrompt    = "last_prompt"
	DetailLastResponse  = "last_response"
	DetailArtifact      = "artifact"
	DetailAttempts      = "attempts"
	DetailFailedAttempt = "failed_attempt"
	DetailProcess       = "thought_process"
)

// Error represents a structured error with code, message, and diagnostics.
type Error struct {
	Code      ErrorCode         `json:"code"`
	Message   string            `json:"message"`
	Retryable bool              `json:"retryable"`
	Details   map[string]string `json:"details,omitempty"`
	Cause     error             `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewConfigurationError is a shorthand for a CONFIGURATION error.
func NewConfigurationError(format string, args ...any) *Error {
	return NewError(ErrConfiguration, fmt.Sprintf(format, args...))
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithDetail attaches a diagnostic key/value. Empty values are skipped.
func (e *Error) WithDetail(key, value string) *Error {
	if value == "" {
		return e
	}
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Detail returns a diagnostic value by key.
func (e *Error) Detail(key string) string {
	if e.Details == nil {
		return ""
	}
	return e.Details[key]
}

// DetailKeys returns the sorted detail keys, mostly for log output.
func (e *Error) DetailKeys() []string {
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AsError finds the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsErrorCode reports whether err's chain carries the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// Truncate shortens long diagnostic strings so they stay readable in logs.
// 截断点回退到 rune 边界，不会产生非法 UTF-8。
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	var b strings.Builder
	b.WriteString(s[:cut])
	fmt.Fprintf(&b, "...(%d more bytes)", len(s)-cut)
	return b.String()
}
