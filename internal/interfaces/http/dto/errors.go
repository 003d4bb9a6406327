package dto

import (
	"net/http"
	"strings"
)

// Error codes used by the HTTP layer. Domain error codes pass through
// unchanged; these cover failures that originate in the transport itself.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "TOKEN_INVALID"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes. The billing
// provider being down is a gateway failure, not a client mistake, hence 502.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	"ALREADY_EXISTS":      http.StatusConflict,
	"ALREADY_LINKED":      http.StatusConflict,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"REMOTE_UNAVAILABLE":  http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status for an error code. Validation-style
// domain codes (INVALID_*) map to 400; anything unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
