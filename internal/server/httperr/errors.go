// Package httperr maps domain errors onto HTTP responses for gin handlers.
package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bistro-boss/backend/internal/logger"
	"bistro-boss/backend/internal/platform/rbac"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrUnavailable    = errors.New("service unavailable")
	ErrPaymentFailed  = errors.New("payment not authorized")
	ErrBadGateway     = errors.New("upstream gateway error")
)

// Response is the error body. It matches what existing clients parse: {"error": true, "message": "..."}.
type Response struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// Abort records err on the context and stops the handler chain. Middleware writes the response.
func Abort(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// Middleware writes the error recorded by Abort when no response has been written yet.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		if last == nil {
			return
		}
		status, msg := Map(last.Err)
		if status >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).Error("request_failed",
				zap.String("route", c.FullPath()),
				zap.Int("status", status),
				zap.Error(last.Err),
			)
		}
		c.AbortWithStatusJSON(status, Response{Error: true, Message: msg})
	}
}

// Map returns the status code and client-safe message for err. Unknown errors become 500 with a generic message.
func Map(err error) (int, string) {
	var coded *Coded
	switch {
	case errors.As(err, &coded):
		return coded.Status, coded.Message
	case errors.Is(err, rbac.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized access"
	case errors.Is(err, rbac.ErrForbidden):
		return http.StatusForbidden, "forbidden access"
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ErrPaymentFailed):
		return http.StatusPaymentRequired, "payment not authorized"
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "service unavailable"
	case errors.Is(err, ErrBadGateway):
		return http.StatusBadGateway, "payment gateway error"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// Coded is an error with an explicit status and client message. Handlers build it with Wrap to translate
// a domain sentinel without this package importing the domain.
type Coded struct {
	Status  int
	Message string
	Err     error
}

func (e *Coded) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Coded) Unwrap() error { return e.Err }

// Wrap attaches a status and message to err.
func Wrap(status int, message string, err error) error {
	return &Coded{Status: status, Message: message, Err: err}
}
