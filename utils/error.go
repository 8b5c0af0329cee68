package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextLoggerKey is where the request logger lives on the gin context.
const ContextLoggerKey = "logger"

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// RequestLogger returns the request-scoped logger, or the global one.
func RequestLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(ContextLoggerKey); ok {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return GetLogger()
}

var internalError = ErrorResponse{
	Message: "Internal Server Error",
	Details: "An unexpected error occurred. Please try again later.",
}

// ErrorHandler turns panics and errors attached with c.Error into a generic
// 500. Error text never reaches the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				RequestLogger(c).Error("Unhandled panic",
					zap.Any("error", err), zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, internalError)
			}
		}()
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		RequestLogger(c).Error("Request failed",
			zap.String("path", c.Request.URL.Path), zap.Strings("errors", c.Errors.Errors()))
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, internalError)
		}
	}
}

// JSONError writes an ErrorResponse and logs it at a level matching status.
func JSONError(c *gin.Context, status int, message string, details string) {
	logger := RequestLogger(c)
	if status >= http.StatusInternalServerError {
		logger.Error(message, zap.Int("status", status), zap.String("details", details))
	} else {
		logger.Warn(message, zap.Int("status", status), zap.String("details", details))
	}
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}
