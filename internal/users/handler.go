package users

import (
	"github.com/gin-gonic/gin"

	"inreader-backend/internal/shared/server/middleware"
	"inreader-backend/internal/shared/server/respond"
	"inreader-backend/internal/shared/server/validate"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches user routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/users", h.create)
	rg.GET("/users/:id", h.get)
	rg.PATCH("/users/:id", h.update)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateRequest
	if err := validate.BindJSON(c, &req); err != nil {
		respond.Fail(c, err)
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, ToResponse(u))
}

func (h *Handler) get(c *gin.Context) {
	id, err := validate.UUIDParam(c, "id")
	if err != nil {
		respond.Fail(c, err)
		return
	}
	u, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, ToResponse(u))
}

func (h *Handler) update(c *gin.Context) {
	id, err := validate.UUIDParam(c, "id")
	if err != nil {
		respond.Fail(c, err)
		return
	}
	var req UpdateRequest
	if err := validate.BindJSON(c, &req); err != nil {
		respond.Fail(c, err)
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), id, req)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, ToResponse(u))
}
