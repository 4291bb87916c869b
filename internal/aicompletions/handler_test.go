package aicompletions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trID = "6f1c1c8e-2f4b-4d4b-9a53-7a1f2c3d4e5f"

func newHandlerRouter(t *testing.T, callerID string) *gin.Engine {
	t.Helper()
	f := newFixture(t)
	// route ids must be UUIDs
	tr, err := f.svc.Transcriptions.Repo.GetByID(t.Context(), "tr-a")
	require.NoError(t, err)
	require.NoError(t, f.svc.Transcriptions.Repo.DeleteByDocument(t.Context(), tr.DocumentID))
	tr.ID = trID
	require.NoError(t, f.svc.Transcriptions.Repo.Create(t.Context(), tr))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userId", callerID) })
	NewHandler(f.svc).RegisterRoutes(r.Group(""))
	return r
}

func TestHandlerCreateAndList(t *testing.T) {
	r := newHandlerRouter(t, "user-a")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/ai-completions/transcription/"+trID,
		strings.NewReader(`{"prompt":"Resuma"}`)))
	require.Equal(t, http.StatusCreated, resp.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, trID, created["transcriptionId"])
	assert.Equal(t, "resposta", created["response"])
	assert.EqualValues(t, 17, created["tokensUsed"])

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ai-completions/transcription/"+trID, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestHandlerRejectsEmptyPrompt(t *testing.T) {
	r := newHandlerRouter(t, "user-a")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/ai-completions/transcription/"+trID,
		strings.NewReader(`{"prompt":""}`)))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "O prompt não pode ser vazio", body["message"])
}

func TestHandlerForbiddenForOtherUser(t *testing.T) {
	r := newHandlerRouter(t, "user-b")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ai-completions/transcription/"+trID, nil))
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestHandlerRejectsMalformedID(t *testing.T) {
	r := newHandlerRouter(t, "user-a")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ai-completions/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
