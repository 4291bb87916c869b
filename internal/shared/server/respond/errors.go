package respond

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"inreader-backend/internal/shared/apperr"
	"inreader-backend/internal/shared/telemetry"
)

const (
	criticalErrorType    = "InternalServerError"
	criticalErrorMessage = "Critical internal server error occurred!"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	StatusCode int       `json:"statusCode"`
	Error      string    `json:"error"`
	Message    any       `json:"message"`
	Path       string    `json:"path"`
	Method     string    `json:"method"`
	Timestamp  time.Time `json:"timestamp"`
}

// Error sends a standardized error response. message may be a string or []string.
func Error(c *gin.Context, status int, message any) {
	errorType := http.StatusText(status)
	if status == http.StatusInternalServerError {
		errorType = criticalErrorType
	}
	write(c, status, errorType, message)
}

// Fail maps err onto the envelope. Errors without a kind are reported as a
// generic critical error.
func Fail(c *gin.Context, err error) {
	typed, ok := apperr.As(err)
	if !ok || typed.Kind == apperr.KindInternal {
		logCause(c, err)
		write(c, http.StatusInternalServerError, criticalErrorType, criticalErrorMessage)
		return
	}
	status := typed.Status()
	if typed.Kind == apperr.KindStorage {
		logCause(c, err)
		write(c, status, http.StatusText(status), "Internal server error")
		return
	}
	var message any = typed.Message
	if len(typed.Messages) > 1 {
		message = typed.Messages
	}
	write(c, status, http.StatusText(status), message)
}

// Critical answers with the generic internal error envelope.
func Critical(c *gin.Context) {
	write(c, http.StatusInternalServerError, criticalErrorType, criticalErrorMessage)
}

func write(c *gin.Context, status int, errorType string, message any) {
	fields := map[string]any{
		"status":     status,
		"error":      errorType,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		StatusCode: status,
		Error:      errorType,
		Message:    message,
		Path:       c.Request.URL.Path,
		Method:     c.Request.Method,
		Timestamp:  time.Now().UTC(),
	})
}

func logCause(c *gin.Context, err error) {
	if err == nil {
		return
	}
	telemetry.Error("http.internal_error", map[string]any{
		"request_id": c.GetString("requestId"),
		"path":       c.Request.URL.Path,
		"error":      err,
	})
}
