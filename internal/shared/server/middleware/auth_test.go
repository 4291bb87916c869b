package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inreader-backend/internal/shared/auth"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.Issuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	router := gin.New()
	router.Use(Auth(issuer, "/auth/login", "/public/"))
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c), "email": UserEmailFromContext(c)})
	}
	router.GET("/documents", handler)
	router.POST("/auth/login", handler)
	router.GET("/public/ping", handler)
	router.OPTIONS("/documents", handler)
	return router, issuer
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	router, _ := newAuthRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodOptions, "/documents", nil))

	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestAuthRejectsMissingOrBadToken(t *testing.T) {
	router, _ := newAuthRouter(t)

	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, "header %q", header)
	}
}

func TestAuthStoresIdentity(t *testing.T) {
	router, issuer := newAuthRouter(t)
	token, err := issuer.Sign("user-1", "ana@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"userId":"user-1","email":"ana@example.com"}`, resp.Body.String())
}

func TestAuthSkipsPublicPaths(t *testing.T) {
	router, _ := newAuthRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/auth/login"},
		{http.MethodGet, "/public/ping"},
	} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusOK, resp.Code, tc.path)
	}
}
