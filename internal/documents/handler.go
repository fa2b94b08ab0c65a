package documents

import (
	"errors"
	"mime"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"docchooser/internal/shared/server/middleware"
	"docchooser/internal/shared/server/respond"
	"docchooser/internal/shared/storage/object"
)

// Handler serves stored document bytes.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the serve route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/:filename", h.serve)
}

func (h *Handler) serve(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.DocumentIDKey, id)

	doc, body, err := h.Svc.Open(c.Request.Context(), id, c.Param("filename"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, os.ErrNotExist), errors.Is(err, object.ErrInvalidKey):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open document", nil)
		}
		return
	}
	defer body.Close()

	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	headers := map[string]string{
		"Content-Disposition":    mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}),
		"X-Content-Type-Options": "nosniff",
	}
	if doc.FileHash != "" {
		headers["ETag"] = strconv.Quote(doc.FileHash)
	}
	c.DataFromReader(http.StatusOK, doc.FileSize, contentType, body, headers)
}
