package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap copies a sentinel with the underlying cause attached.
func (e *Error) Wrap(err error) *Error {
	return New(e.Code, e.Message, err)
}

// WithMessage copies a sentinel with a different user-facing message.
func (e *Error) WithMessage(message string) *Error {
	return New(e.Code, message, e.Err)
}

var (
	ErrBadRequest         = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized       = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrNotFound           = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer     = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrBadGateway         = New(http.StatusBadGateway, "Storefront unreachable", nil)
	ErrGatewayTimeout     = New(http.StatusGatewayTimeout, "Storefront timed out", nil)
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "Service unavailable", nil)
)

var (
	ErrValidation       = New(http.StatusBadRequest, "Validation error", nil)
	ErrInvalidInput     = New(http.StatusBadRequest, "Invalid input", nil)
	ErrQuantityExceeded = New(http.StatusUnprocessableEntity, "Quantity exceeds the cart limit", nil)
)

// ErrorMiddleware renders the last error attached with c.Error as the
// bridge envelope.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *Error
		if !errors.As(err, &appErr) {
			appErr = ErrInternalServer.Wrap(err)
		}

		c.AbortWithStatusJSON(appErr.Code, gin.H{
			"success": false,
			"message": appErr.Message,
		})
	}
}
