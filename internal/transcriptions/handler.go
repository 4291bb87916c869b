package transcriptions

import (
	"github.com/gin-gonic/gin"

	"inreader-backend/internal/shared/server/middleware"
	"inreader-backend/internal/shared/server/respond"
	"inreader-backend/internal/shared/server/validate"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc         *Service
	Transcriber Transcriber
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, transcriber Transcriber) *Handler {
	return &Handler{Svc: svc, Transcriber: transcriber}
}

// RegisterRoutes attaches transcription routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/transcriptions/document/:documentId", h.transcribe)
	rg.GET("/transcriptions/document/:documentId", h.getByDocument)
}

func (h *Handler) transcribe(c *gin.Context) {
	documentID, err := validate.UUIDParam(c, "documentId")
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.Set(middleware.DocumentIDKey, documentID)

	t, err := h.Transcriber.ReTranscribe(c.Request.Context(), middleware.UserIDFromContext(c), documentID)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Created(c, ToResponse(t))
}

func (h *Handler) getByDocument(c *gin.Context) {
	documentID, err := validate.UUIDParam(c, "documentId")
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.Set(middleware.DocumentIDKey, documentID)

	t, err := h.Svc.GetByDocument(c.Request.Context(), middleware.UserIDFromContext(c), documentID)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	if t == nil {
		respond.OK(c, nil)
		return
	}
	respond.OK(c, ToResponse(*t))
}
