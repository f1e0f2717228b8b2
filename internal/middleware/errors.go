package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OperationalError pairs the message a client may see with the underlying
// cause, which is only logged.
type OperationalError struct {
	Message string
	Err     error
}

func (e *OperationalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *OperationalError) Unwrap() error { return e.Err }

// AbortWithOperationalError forwards err to ErrorHandler and stops the chain.
func AbortWithOperationalError(c *gin.Context, message string, err error) {
	_ = c.Error(&OperationalError{Message: message, Err: err})
	c.Abort()
}

// ErrorHandler renders errors attached with AbortWithOperationalError as
// 500 {"message": ...}. Other attached errors get a fixed message.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		last := c.Errors.Last()

		message := "Internal server error"
		var opErr *OperationalError
		if errors.As(last.Err, &opErr) {
			message = opErr.Message
		}
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(last.Err),
		)

		if c.Writer.Written() {
			return
		}
		RespondWithError(c, http.StatusInternalServerError, message)
	}
}
