package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// APIError is the structured error carried from services to the HTTP
// boundary. Internal is the original error, kept for logs only.
type APIError struct {
	Status   int    `json:"-"`
	Message  string `json:"error"`
	Internal error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the original error
func (e *APIError) Unwrap() error {
	return e.Internal
}

// WithMessage returns a copy of the APIError with a custom message
func (e *APIError) WithMessage(msg string) *APIError {
	return &APIError{
		Status:   e.Status,
		Message:  msg,
		Internal: e.Internal,
	}
}

func newAPIError(status int, message string, err error) *APIError {
	return &APIError{Status: status, Message: message, Internal: err}
}

func BadRequest(message string, err error) *APIError {
	return newAPIError(http.StatusBadRequest, message, err)
}

func Unauthorized(message string, err error) *APIError {
	return newAPIError(http.StatusUnauthorized, message, err)
}

func Forbidden(message string, err error) *APIError {
	return newAPIError(http.StatusForbidden, message, err)
}

func NotFound(message string, err error) *APIError {
	return newAPIError(http.StatusNotFound, message, err)
}

func Conflict(message string, err error) *APIError {
	return newAPIError(http.StatusConflict, message, err)
}

func UnprocessableEntity(message string, err error) *APIError {
	return newAPIError(http.StatusUnprocessableEntity, message, err)
}

func Internal(err error) *APIError {
	return newAPIError(http.StatusInternalServerError, "Internal server error", err)
}

// NewValidationError wraps gin binding failures. Field-level validator
// errors become a readable message instead of the raw struct dump.
func NewValidationError(err error) *APIError {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return UnprocessableEntity("Validation failed on field '"+verrs[0].Field()+"' ("+verrs[0].Tag()+")", err)
	}
	return UnprocessableEntity("Validation failed", err)
}

// HandleError responds with the appropriate status code and message.
// Kept for handlers that abort outside the ErrorHandler middleware.
func HandleError(c *gin.Context, err error) {
	if apiErr, ok := err.(*APIError); ok {
		c.AbortWithStatusJSON(apiErr.Status, apiErr)
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
