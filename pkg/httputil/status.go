package httputil

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/matzehuels/teamtree/pkg/errors"
)

// HeaderRequestID carries the per-request correlation ID.
const HeaderRequestID = "X-Request-ID"

// CheckStatus converts a non-2xx status code into a structured error.
func CheckStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return errors.New(errors.ErrCodeUnauthorized, "backend refused credentials (status %d)", code)
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "endpoint not found (status %d)", code)
	case code == http.StatusTooManyRequests, code >= 500:
		return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "backend unavailable (status %d)", code)}
	default:
		return errors.New(errors.ErrCodeNetwork, "unexpected status %d", code)
	}
}

// NewRequestID returns a fresh request ID.
func NewRequestID() string {
	return uuid.NewString()
}

// StatusFor maps a structured error onto the HTTP status a server should
// answer with. Errors without a code are internal.
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidStyle,
		errors.ErrCodeInvalidKind, errors.ErrCodeInvalidDepth, errors.ErrCodeInvalidGeometry,
		errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNotLoggedIn, errors.ErrCodeUnauthorized, errors.ErrCodeSessionExpired:
		return http.StatusUnauthorized
	case errors.ErrCodeBackendRejected, errors.ErrCodeNetwork, errors.ErrCodeMalformed:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
