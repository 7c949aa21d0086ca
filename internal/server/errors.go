package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/job-assistant/internal/apperrors"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		invalid    *apperrors.ErrInvalidInput
		auth       *apperrors.ErrAuthFailure
		limited    *apperrors.ErrRateLimitExceeded
		extraction *apperrors.ErrExtractionFailed
		processing *apperrors.ErrProcessing
		timeout    *apperrors.ErrUpstreamTimeout
		taken      *apperrors.ErrEmailAlreadyRegistered
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &taken):
		return http.StatusBadRequest
	case errors.As(err, &auth):
		return http.StatusUnauthorized
	case errors.As(err, &limited):
		return http.StatusTooManyRequests
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &extraction), errors.As(err, &processing):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorDetail returns the message shown to clients. Errors outside the
// taxonomy are not echoed.
func errorDetail(err error) string {
	if HTTPStatus(err) != http.StatusInternalServerError {
		return err.Error()
	}
	var (
		extraction *apperrors.ErrExtractionFailed
		processing *apperrors.ErrProcessing
	)
	if errors.As(err, &extraction) || errors.As(err, &processing) {
		return err.Error()
	}
	return "Internal server error"
}
