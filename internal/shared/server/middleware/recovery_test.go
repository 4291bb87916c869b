package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inreader-backend/internal/shared/telemetry"
)

func TestRecoveryReturnsCriticalEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	telemetry.SetOutput(io.Discard)
	t.Cleanup(func() { telemetry.Setup("info", "json") })

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "InternalServerError", body["error"])
	assert.Equal(t, "Critical internal server error occurred!", body["message"])
	assert.Equal(t, "/boom", body["path"])
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))
}
