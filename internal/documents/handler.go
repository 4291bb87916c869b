package documents

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inreader-backend/internal/shared/apperr"
	"inreader-backend/internal/shared/server/middleware"
	"inreader-backend/internal/shared/server/respond"
	"inreader-backend/internal/shared/server/validate"
)

// DefaultMaxUploadBytes caps uploads when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// multipart envelope allowance on top of the file limit
const formOverhead = 1 << 20

var allowedMimeTypes = []string{"image/png", "image/jpeg", "image/jpg", "application/pdf"}

var errUnsupportedType = apperr.Validation(
	"Only files of type " + strings.Join(allowedMimeTypes, ", ") + " are allowed",
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	Submitter      Submitter
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, submitter Submitter, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{Svc: svc, Submitter: submitter, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/upload", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.DELETE("/documents/:id", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+formOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Fail(c, apperr.Validation("File exceeds the maximum allowed size"))
			return
		}
		respond.Fail(c, apperr.Validation("file is required"))
		return
	}
	if fileHeader.Size > h.MaxUploadBytes {
		respond.Fail(c, apperr.Validation("File exceeds the maximum allowed size"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Fail(c, apperr.Validation("unable to read file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.MaxUploadBytes+1))
	if err != nil {
		respond.Fail(c, apperr.Validation("unable to read file"))
		return
	}

	mimeType := detectMimeType(fileHeader.Header.Get("Content-Type"), data)
	if !allowedMimeType(mimeType) {
		respond.Fail(c, errUnsupportedType)
		return
	}

	doc, err := h.Submitter.Submit(c.Request.Context(), userID, fileHeader.Filename, mimeType, data)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.Set(middleware.DocumentIDKey, doc.ID)
	respond.Created(c, ToResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, toResponses(docs))
}

func (h *Handler) get(c *gin.Context) {
	id, err := validate.UUIDParam(c, "id")
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.Set(middleware.DocumentIDKey, id)
	doc, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, ToResponse(doc))
}

func (h *Handler) remove(c *gin.Context) {
	id, err := validate.UUIDParam(c, "id")
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.Set(middleware.DocumentIDKey, id)
	doc, err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.OK(c, ToResponse(doc))
}

// detectMimeType prefers the declared part type and falls back to sniffing.
func detectMimeType(declared string, data []byte) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != "application/octet-stream" {
		return strings.ToLower(mediaType)
	}
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return sniffed
}

func allowedMimeType(mimeType string) bool {
	for _, allowed := range allowedMimeTypes {
		if mimeType == allowed {
			return true
		}
	}
	return false
}
