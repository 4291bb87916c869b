package aicompletions

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

// RegisterRoutes attaches completion routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai-completions/transcription/:transcriptionId", h.create)
	rg.GET("/ai-completions/transcription/:transcriptionId", h.listByTranscription)
	rg.GET("/ai-completions/:id", h.get)
}

func (h *Handler) create(c *gin.Context) {
	transcriptionID, err := validate.UUIDParam(c, "transcriptionId")
	if err != nil {
		respond.Fail(c, err)
		return
	}
	var req CreateRequest
	if err := validate.BindJSON(c, &req); err != nil {
		respond.Fail(c, err)
		return
	}

	created, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), transcriptionID, req.Prompt)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, ToResponse(created))
}

func (h *Handler) listByTranscription(c *gin.Context) {
	transcriptionID, err := validate.UUIDParam(c, "transcriptionId")
	if err != nil {
		respond.Fail(c, err)
		return
	}
	items, err := h.Svc.ListByTranscription(c.Request.Context(), middleware.UserIDFromContext(c), transcriptionID)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, toResponses(items))
}

func (h *Handler) get(c *gin.Context) {
	id, err := validate.UUIDParam(c, "id")
	if err != nil {
		respond.Fail(c, err)
		return
	}
	item, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, ToResponse(item))
}
