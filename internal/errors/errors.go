package errors

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamhub-dev/teamhub/internal/models"
	"github.com/teamhub-dev/teamhub/internal/repository"
	"gorm.io/gorm"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeInvalidIdentifier = "INVALID_IDENTIFIER"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Domain-rule errors
	ErrCodeInvalidAssignee  = "INVALID_ASSIGNEE"
	ErrCodeInvalidOperation = "INVALID_OPERATION"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// ErrorResponse is the uniform error envelope returned by every endpoint.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error:   err.Message,
		Code:    err.Code,
		Details: err.Details,
	})
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthenticated, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, code, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(code, message))
}

// ValidationFailed sends a 422 response with optional field-level details
func ValidationFailed(c *gin.Context, message string, details interface{}) {
	if message == "" {
		message = "Validation failed"
	}
	RespondWithError(c, http.StatusUnprocessableEntity, &APIError{
		Code:    ErrCodeValidationFailed,
		Message: message,
		Details: details,
	})
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeConflict, message))
}

// InternalError sends a 500 response. Internal details never reach the body.
func InternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, "Internal server error"))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, message))
}

// FromPersistence is the single translator from storage-layer faults to the
// API taxonomy, so handlers and services never branch on driver errors.
func FromPersistence(err error) *APIError {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewAPIError(ErrCodeNotFound, "Resource not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return NewAPIError(ErrCodeConflict, "Resource already exists")
	case errors.Is(err, repository.ErrInvalidIdentifier):
		return NewAPIError(ErrCodeInvalidIdentifier, "Invalid identifier")
	case errors.Is(err, repository.ErrUnknownSortField):
		return NewAPIError(ErrCodeValidationFailed, err.Error())
	case errors.Is(err, models.ErrValidation):
		return NewAPIError(ErrCodeValidationFailed, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return NewAPIError(ErrCodeServiceUnavailable, "Service temporarily unavailable")
	default:
		return NewAPIError(ErrCodeInternalError, "Internal server error")
	}
}

// Respond maps a translated APIError to its HTTP status and writes it.
func Respond(c *gin.Context, apiErr *APIError) {
	RespondWithError(c, StatusFor(apiErr.Code), apiErr)
}

// StatusFor returns the HTTP status for an error code in the taxonomy.
func StatusFor(code string) int {
	switch code {
	case ErrCodeUnauthenticated, ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeInvalidAssignee, ErrCodeInvalidOperation, ErrCodeInvalidIdentifier:
		return http.StatusBadRequest
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
