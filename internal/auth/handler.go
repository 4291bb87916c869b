package auth

import (
	"github.com/gin-gonic/gin"

	"inreader-backend/internal/shared/apperr"
	"inreader-backend/internal/shared/server/middleware"
	"inreader-backend/internal/shared/server/respond"
	"inreader-backend/internal/shared/server/validate"
	"inreader-backend/internal/users"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterPublicRoutes attaches the unauthenticated routes.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.login)
	rg.POST("/auth/register", h.register)
}

// RegisterRoutes attaches the routes that need a bearer token.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/profile", h.profile)
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := validate.BindJSON(c, &req); err != nil {
		respond.Fail(c, err)
		return
	}
	result, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) register(c *gin.Context) {
	var req users.CreateRequest
	if err := validate.BindJSON(c, &req); err != nil {
		respond.Fail(c, err)
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, users.ToResponse(u))
}

func (h *Handler) profile(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		respond.Fail(c, apperr.Unauthorized("Unauthorized"))
		return
	}
	respond.OK(c, ProfileFromClaims(claims))
}
