package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inreader-backend/internal/services/health"
	"inreader-backend/internal/shared/config"
	"inreader-backend/internal/shared/metrics"
	"inreader-backend/internal/shared/server/middleware"
)

// Public routes that skip bearer authentication.
var publicPaths = []string{"/health", "/metrics", "/ws", "/auth/login", "/auth/register", "/users"}

// RouteRegistrar attaches a module's routes.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouteFunc adapts a plain registration function.
type RouteFunc func(rg *gin.RouterGroup)

// RegisterRoutes calls f.
func (f RouteFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

// RouterDeps carries everything the router wires.
type RouterDeps struct {
	Config   config.Config
	Verifier middleware.TokenVerifier
	Health   *health.Service
	Metrics  *metrics.Metrics
	Limiter  *middleware.RateLimiter
	Modules  []RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Verifier, publicPaths...),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    rateLimitRules,
			GroupFor: rateLimitGroup,
			Limiter:  deps.Limiter,
		}),
	)

	r.GET("/health", func(c *gin.Context) {
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	})
	r.GET("/metrics", deps.Metrics.Handler())

	root := r.Group("")
	for _, m := range deps.Modules {
		if m != nil {
			m.RegisterRoutes(root)
		}
	}
	return r
}

var rateLimitRules = map[string]middleware.RateLimitRule{
	"AUTH":    middleware.PerMinute(5),
	"UPLOAD":  middleware.PerMinute(30),
	"DEFAULT": {Rate: 20, Burst: 60},
}

func rateLimitGroup(c *gin.Context) string {
	path := c.Request.URL.Path
	switch {
	case path == "/auth/login" || path == "/auth/register":
		return "AUTH"
	case path == "/documents/upload" || strings.HasPrefix(path, "/ai-completions/transcription/") && c.Request.Method == http.MethodPost:
		return "UPLOAD"
	case path == "/health" || path == "/metrics" || path == "/ws":
		return "NONE"
	}
	return "DEFAULT"
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
