package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"inreader-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log.
const (
	DocumentIDKey       = "documentId"
	StatusTransitionKey = "statusTransition"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if documentID := c.GetString(DocumentIDKey); documentID != "" {
			fields["document_id"] = documentID
		}
		if transition := c.GetString(StatusTransitionKey); transition != "" {
			fields["status_transition"] = transition
		}
		telemetry.Info("request.complete", fields)
	}
}
