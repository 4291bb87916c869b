package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"inreader-backend/internal/shared/telemetry"
)

const (
	requestIDKey    = "requestId"
	requestIDHeader = "X-Request-Id"
	maxRequestIDLen = 128
)

// RequestID propagates the caller's X-Request-Id, or a fresh UUID when it is
// missing or malformed, into the gin context, the request context (so
// detached pipeline runs keep it in their logs) and the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Request = c.Request.WithContext(telemetry.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// RequestIDFromContext fetches the request ID stored by RequestID.
func RequestIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(requestIDKey)
}

// printable ASCII only; the id ends up in log lines and response headers
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
