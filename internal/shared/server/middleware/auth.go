package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inreader-backend/internal/shared/auth"
	"inreader-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	claimsKey    = "authClaims"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Auth validates bearer JWTs and stores identity in context. Requests whose
// path matches one of publicPaths (exact, or prefix when ending in "/") pass
// through unauthenticated.
func Auth(verifier TokenVerifier, publicPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		if isPublic(c.Request.URL.Path, publicPaths) {
			c.Next()
			return
		}

		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Set(userIDKey, claims.Subject)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	return token, token != ""
}

func isPublic(path string, publicPaths []string) bool {
	for _, p := range publicPaths {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userEmailKey)
}

// ClaimsFromContext returns the verified token claims, if any.
func ClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	if c == nil {
		return nil, false
	}
	val, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := val.(*auth.Claims)
	return claims, ok
}
