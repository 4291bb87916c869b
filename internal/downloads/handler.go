package downloads

import (
	"github.com/gin-gonic/gin"

	"inreader-backend/internal/report"
	"inreader-backend/internal/shared/server/middleware"
	"inreader-backend/internal/shared/server/respond"
	"inreader-backend/internal/shared/server/validate"
	"inreader-backend/internal/shared/util"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches download routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/:id/download", h.serve(report.Options{Original: true}))
	rg.GET("/documents/:id/download/full", h.serve(report.Options{}))
}

func (h *Handler) serve(opts report.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validate.UUIDParam(c, "id")
		if err != nil {
			respond.Fail(c, err)
			return
		}
		c.Set(middleware.DocumentIDKey, id)

		out, err := h.Svc.Download(c.Request.Context(), middleware.UserIDFromContext(c), id, opts)
		if err != nil {
			respond.Fail(c, err)
			return
		}
		respond.Attachment(c, util.AttachmentName(out.FileName, "document"), out.ContentType, out.Data)
	}
}
