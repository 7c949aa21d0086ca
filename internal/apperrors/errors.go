// Package apperrors defines the error taxonomy shared by the intake pipeline,
// the résumé generator and the HTTP layer.
package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput indicates a bad file type, size, page count or missing field.
type ErrInvalidInput struct {
	Message string
}

func (e *ErrInvalidInput) Error() string {
	return e.Message
}

// InvalidInput builds an ErrInvalidInput from a format string.
func InvalidInput(format string, args ...any) error {
	return &ErrInvalidInput{Message: fmt.Sprintf(format, args...)}
}

// ErrAuthFailure indicates bad credentials or an invalid bearer token.
type ErrAuthFailure struct {
	Message string
}

func (e *ErrAuthFailure) Error() string {
	if e.Message == "" {
		return "Could not validate credentials"
	}
	return e.Message
}

// ErrRateLimitExceeded indicates the caller exhausted its request window.
type ErrRateLimitExceeded struct {
	RetryAfter time.Duration
}

func (e *ErrRateLimitExceeded) Error() string {
	return "Too many requests. Please try again later."
}

// ErrExtractionFailed indicates no text could be recovered from a document.
type ErrExtractionFailed struct{}

func (e *ErrExtractionFailed) Error() string {
	return "Could not extract text from PDF"
}

// ErrProcessing wraps an unexpected internal failure.
type ErrProcessing struct {
	Op    string
	Cause error
}

func (e *ErrProcessing) Error() string {
	if e.Cause == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *ErrProcessing) Unwrap() error {
	return e.Cause
}

// ErrUpstreamTimeout indicates an external call exceeded its time bound.
type ErrUpstreamTimeout struct {
	Upstream string
	After    time.Duration
}

func (e *ErrUpstreamTimeout) Error() string {
	return "Request timed out"
}

// ErrEmailAlreadyRegistered indicates a registration for an existing email.
type ErrEmailAlreadyRegistered struct {
	Email string
}

func (e *ErrEmailAlreadyRegistered) Error() string {
	return "Email already registered"
}

// IsInvalidInput reports whether err carries an ErrInvalidInput.
func IsInvalidInput(err error) bool {
	var target *ErrInvalidInput
	return errors.As(err, &target)
}

// IsRateLimited reports whether err carries an ErrRateLimitExceeded.
func IsRateLimited(err error) bool {
	var target *ErrRateLimitExceeded
	return errors.As(err, &target)
}

// IsExtractionFailed reports whether err carries an ErrExtractionFailed.
func IsExtractionFailed(err error) bool {
	var target *ErrExtractionFailed
	return errors.As(err, &target)
}

// IsUpstreamTimeout reports whether err carries an ErrUpstreamTimeout.
func IsUpstreamTimeout(err error) bool {
	var target *ErrUpstreamTimeout
	return errors.As(err, &target)
}
