package dto

import (
	"net/http"
	"strings"
)

// Error codes raised by the HTTP layer itself. Domain errors keep their own
// codes (NOT_FOUND, STATE_IN_USE, ...) and are mapped with GetHTTPStatus.
const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	ErrCodeServiceUnhealthy = "SERVICE_UNHEALTHY"
)

// ErrorCodeHTTPStatus maps exact error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeValidation:       http.StatusUnprocessableEntity,
	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeForbidden:        http.StatusForbidden,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeConflict:         http.StatusConflict,
	ErrCodeRateLimited:      http.StatusTooManyRequests,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeServiceUnhealthy: http.StatusServiceUnavailable,

	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"LOCKED":               http.StatusConflict,
	"IN_USE":               http.StatusConflict,
	"USERNAME_EXISTS":      http.StatusConflict,
	"EMAIL_EXISTS":         http.StatusConflict,
	"MARGIN_OVERLAP":       http.StatusUnprocessableEntity,
	"NOT_EDITABLE":         http.StatusUnprocessableEntity,
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"INVALID_INPUT":        http.StatusUnprocessableEntity,
	"CANNOT_DELETE_SELF":   http.StatusUnprocessableEntity,
	"NO_STATE":             http.StatusUnprocessableEntity,
	"NO_RECIPIENT":         http.StatusServiceUnavailable,
	"FORMAT_UNAVAILABLE":   http.StatusServiceUnavailable,
	"ARCHIVE_UNAVAILABLE":  http.StatusServiceUnavailable,

	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"INVALID_CAPTCHA":     http.StatusUnauthorized,
	"CAPTCHA_REQUIRED":    http.StatusUnauthorized,
	"CAPTCHA_EXPIRED":     http.StatusUnauthorized,
	"ACCOUNT_LOCKED":      http.StatusForbidden,
	"ACCOUNT_DISABLED":    http.StatusForbidden,
	"INVALID_RESET_TOKEN": http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code. Codes that are
// not listed are resolved by their suffix or prefix, then default to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_IN_USE"), strings.HasSuffix(code, "_EXISTS"), strings.HasPrefix(code, "DUPLICATE_"):
		return http.StatusConflict
	case strings.HasPrefix(code, "TOKEN_"):
		return http.StatusUnauthorized
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
