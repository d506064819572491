package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestTracingMiddleware tags every request with an id and echoes it in
// the X-Request-ID response header. An id supplied by the caller is kept, so
// traces line up across a proxy.
func RequestTracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// RequestID returns the id assigned by RequestTracingMiddleware, empty when
// the middleware is not installed.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
