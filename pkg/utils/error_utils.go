package utils

import (
	"net/http"
	"strings"

	"kitchen_control/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Standardized APIError response
type APIError struct {
	StatusCode int    `json:"-"`              // HTTP status code, not part of the body
	Code       string `json:"code,omitempty"` // Application-specific error code
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	Details    string `json:"details,omitempty"`
}

// NewAPIError creates a new APIError instance
func NewAPIError(statusCode int, code string, message string, details string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Details:    details,
	}
}

// RespondWithError sends a standardized JSON error response
func RespondWithError(c *gin.Context, err *APIError) {
	c.JSON(err.StatusCode, gin.H{"error": err})
	c.Abort()
}

// Common Error Constants
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeNotImplemented      = "NOT_IMPLEMENTED"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeBusinessRule        = "BUSINESS_RULE_VIOLATION"
	ErrCodeRequestInFlight     = "REQUEST_IN_FLIGHT"
)

// APIErrorFromApp converts a classified application error into the response envelope.
// The message is always the user-facing one; raw upstream bodies never reach the client.
func APIErrorFromApp(err error) *APIError {
	msg := apperr.MessageOf(err)
	var out *APIError
	switch apperr.KindOf(err) {
	case apperr.KindAuthentication:
		out = NewAPIError(http.StatusUnauthorized, ErrCodeUnauthorized, msg, "")
	case apperr.KindAuthorization:
		out = NewAPIError(http.StatusForbidden, ErrCodeForbidden, msg, "")
	case apperr.KindNetwork:
		out = NewAPIError(http.StatusServiceUnavailable, ErrCodeUpstreamUnavailable, msg, "")
	case apperr.KindValidation:
		out = NewAPIError(http.StatusBadRequest, ErrCodeValidationFailed, msg, "")
		out.Field = apperr.FieldOf(err)
	case apperr.KindBusinessRule:
		out = NewAPIError(http.StatusUnprocessableEntity, ErrCodeBusinessRule, msg, "")
	case apperr.KindNotImplemented:
		out = NewAPIError(http.StatusNotImplemented, ErrCodeNotImplemented, msg, "")
	case apperr.KindNotFound:
		out = NewAPIError(http.StatusNotFound, ErrCodeNotFound, msg, "")
	case apperr.KindConflict:
		out = NewAPIError(http.StatusConflict, ErrCodeConflict, msg, "")
	default:
		out = NewAPIError(http.StatusInternalServerError, ErrCodeInternalServerError, msg, "")
	}
	return out
}

// RespondWithAppError logs err and sends its envelope.
func RespondWithAppError(c *gin.Context, err error, logMessage string) {
	apiErr := APIErrorFromApp(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		LogError(err, logMessage)
	} else {
		LogDebug(logMessage, map[string]interface{}{"error": err.Error(), "kind": apperr.KindOf(err).String()})
	}
	RespondWithError(c, apiErr)
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// RespondValidationFailed is the shortcut for malformed request bodies.
func RespondValidationFailed(c *gin.Context, details string) {
	RespondWithError(c, NewAPIError(http.StatusBadRequest, ErrCodeValidationFailed, "Input validation failed", details))
}
