package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OriginPolicy decides which browser origins may call the API. The same
// policy guards plain requests and websocket upgrades.
type OriginPolicy struct {
	origins map[string]struct{}
	any     bool
}

// NewOriginPolicy builds a policy from a list of origins; "*" allows any.
// Matching ignores case and a trailing slash.
func NewOriginPolicy(allowed []string) OriginPolicy {
	p := OriginPolicy{origins: make(map[string]struct{})}
	for _, o := range allowed {
		switch o = normalizeOrigin(o); o {
		case "":
		case "*":
			p.any = true
		default:
			p.origins[o] = struct{}{}
		}
	}
	return p
}

// Allows reports whether origin may be served.
func (p OriginPolicy) Allows(origin string) bool {
	if p.any {
		return true
	}
	_, ok := p.origins[normalizeOrigin(origin)]
	return ok
}

func normalizeOrigin(o string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
}

// CORS sets CORS headers for allowed origins and answers preflights.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	policy := NewOriginPolicy(allowedOrigins)
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && policy.Allows(origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")
			// downloads need the file name on the client
			h.Set("Access-Control-Expose-Headers", "X-Request-Id, Content-Disposition, Retry-After")
			h.Set("Access-Control-Max-Age", "600")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
