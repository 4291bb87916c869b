package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedauth "inreader-backend/internal/shared/auth"
	"inreader-backend/internal/shared/server/middleware"
	"inreader-backend/internal/users"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *sharedauth.Issuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	issuer, err := sharedauth.NewIssuer("auth-secret", time.Hour)
	require.NoError(t, err)
	h := NewHandler(&Service{Users: users.NewService(users.NewMemoryRepo()), Tokens: issuer})

	r := gin.New()
	h.RegisterPublicRoutes(r.Group(""))
	protected := r.Group("")
	protected.Use(middleware.Auth(issuer))
	h.RegisterRoutes(protected)
	return r, issuer
}

func do(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRegisterLoginProfile(t *testing.T) {
	r, issuer := newAuthRouter(t)

	resp := do(r, http.MethodPost, "/auth/register", `{"email":"ana@example.com","password":"secret1","name":"Ana"}`, "")
	require.Equal(t, http.StatusCreated, resp.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, "ana@example.com", created["email"])
	assert.NotContains(t, created, "password")
	assert.NotContains(t, created, "passwordHash")

	resp = do(r, http.MethodPost, "/auth/register", `{"email":"ana@example.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = do(r, http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, resp.Code)
	var login LoginResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &login))
	assert.Equal(t, "Ana", login.Username)
	claims, err := issuer.Verify(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created["id"], claims.Subject)

	resp = do(r, http.MethodGet, "/auth/profile", "", login.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code)
	var profile Profile
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &profile))
	assert.Equal(t, claims.Subject, profile.Sub)
	assert.Equal(t, "ana@example.com", profile.Email)
	assert.Greater(t, profile.Exp, profile.Iat)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, _ := newAuthRouter(t)

	resp := do(r, http.MethodPost, "/auth/login", `{"email":"nobody@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Invalid credentials", body["message"])

	resp = do(r, http.MethodPost, "/auth/login", `{"email":"not-an-email","password":"1"}`, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestProfileRequiresToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	resp := do(r, http.MethodGet, "/auth/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
