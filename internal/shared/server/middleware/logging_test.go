package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inreader-backend/internal/shared/auth"
	"inreader-backend/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	t.Cleanup(func() { telemetry.Setup("info", "json") })

	issuer, err := auth.NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	token, err := issuer.Sign("user-1", "")
	require.NoError(t, err)

	router := gin.New()
	router.Use(RequestID(), Auth(issuer), Logging())
	router.GET("/documents/:id", func(c *gin.Context) {
		c.Set(DocumentIDKey, "doc-1")
		c.Set(StatusTransitionKey, "PENDING->DONE")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/documents/doc-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-Id", "req-42")
	router.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &payload))

	assert.Equal(t, "request.complete", payload["msg"])
	assert.Equal(t, "req-42", payload["request_id"])
	assert.Equal(t, "user-1", payload["user_id"])
	assert.Equal(t, "doc-1", payload["document_id"])
	assert.Equal(t, "PENDING->DONE", payload["status_transition"])
	assert.Equal(t, "/documents/:id", payload["route"])
	assert.Contains(t, payload, "duration_ms")
	assert.EqualValues(t, http.StatusOK, payload["status"])
}
