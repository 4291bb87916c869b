package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"inreader-backend/internal/shared/server/respond"
	"inreader-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into the generic critical error. When the
// handler already started writing, the connection is only logged.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"user_id":    UserIDFromContext(c),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"route":      c.FullPath(),
				"method":     c.Request.Method,
			}
			if documentID := c.GetString(DocumentIDKey); documentID != "" {
				fields["document_id"] = documentID
			}
			telemetry.Error("http.panic", fields)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Critical(c)
		}()
		c.Next()
	}
}
