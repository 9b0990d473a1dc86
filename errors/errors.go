package errors

import (
	"net/http"
	"strings"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
)

// Error carries an HTTP status alongside the message so handlers can
// respond without re-mapping error kinds.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	return e.Message
}

func New(message string, status int) *Error {
	return &Error{
		Message: message,
		Status:  status,
	}
}

var (
	ErrNotFound            = New("not found", http.StatusNotFound)
	ErrBadRequest          = New("bad request", http.StatusBadRequest)
	ErrUnauthorized        = New("unauthorized", http.StatusUnauthorized)
	ErrForbidden           = New("forbidden", http.StatusForbidden)
	ErrInternalServerError = New("internal server error", http.StatusInternalServerError)
	InActiveUserError      = New("user is inactive", http.StatusUnauthorized)

	// Chat message validation failures, reported to the sender and never persisted.
	ErrEmptyMessage   = New("message cannot be empty", http.StatusBadRequest)
	ErrMessageTooLong = New("message is too long (maximum 1000 characters)", http.StatusBadRequest)
)

// GetUniqueContraintError translates a unique-constraint violation from the
// database into a client-facing conflict error.
func GetUniqueContraintError(err error) *Error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return New("user with this email already exists", http.StatusConflict)
	case strings.Contains(msg, "username"):
		return New("user with this username already exists", http.StatusConflict)
	default:
		return New(msg, http.StatusConflict)
	}
}

// ErrorHandler is the handler passed to gin-rate-limit for throttled requests.
func ErrorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"errors": "too many requests, try again later",
		"status": http.StatusTooManyRequests,
	})
	c.Abort()
}
