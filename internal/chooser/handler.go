// Package chooser serves the document chooser modal used by the rich-text editor.
package chooser

import (
	"embed"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docchooser/internal/documents"
	"docchooser/internal/modal"
	"docchooser/internal/permissions"
	"docchooser/internal/shared/metrics"
	"docchooser/internal/shared/server/middleware"
	"docchooser/internal/shared/server/respond"
	"docchooser/internal/shared/telemetry"
)

//go:embed templates/*.html
var templateFiles embed.FS

// NewRenderer parses the chooser templates.
func NewRenderer() (*modal.Renderer, error) {
	return modal.NewRenderer(templateFiles, map[string]any{"join": strings.Join}, "templates/*.html")
}

// Handler wires the chooser endpoints.
type Handler struct {
	Docs     *documents.Service
	Perms    permissions.Checker
	Renderer *modal.Renderer
	Links    documents.Links
	Rules    UploadRules
	Metrics  *metrics.Metrics
	// UploadGuard runs before POST uploads only, e.g. a rate limiter.
	UploadGuard gin.HandlerFunc
}

// RegisterRoutes mounts the chooser under rg, typically the admin group.
// Permission gates run ahead of UploadGuard so denied callers never spend rate tokens.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/documents/chooser")
	canChoose := h.require(permissions.ActionChoose)
	canAdd := h.require(permissions.ActionAdd)

	g.GET("/", canChoose, h.chooser)
	g.GET("/search/", canChoose, h.search)
	g.GET("/upload/", canAdd, h.upload)
	if h.UploadGuard != nil {
		g.POST("/upload/", canAdd, h.UploadGuard, h.upload)
	} else {
		g.POST("/upload/", canAdd, h.upload)
	}
	g.GET("/:id/", canChoose, h.chosen)
}

// require aborts with 403 unless the caller holds action.
func (h *Handler) require(action permissions.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.Perms.UserHasPermission(identity(c), action) {
			c.Next()
			return
		}
		if action == permissions.ActionAdd {
			h.Metrics.ObserveUpload("permission_denied", 0)
		}
		respond.Error(c, http.StatusForbidden, "permission_denied",
			fmt.Sprintf("you do not have permission to %s documents", action), nil)
	}
}

type row struct {
	ID        string
	Title     string
	FileName  string
	Tags      []string
	CreatedAt time.Time
	ChosenURL string
}

type view struct {
	UploadForm  *FormView
	Documents   []row
	ShowListing bool
	IsSearching bool
	Query       string
	SearchURL   string
	UploadURL   string
}

func identity(c *gin.Context) permissions.Identity {
	return permissions.Identity{
		UserID: middleware.UserIDFromContext(c),
		Groups: middleware.GroupsFromContext(c),
	}
}

func (h *Handler) rows(docs []documents.Document) []row {
	out := make([]row, 0, len(docs))
	for _, d := range docs {
		out = append(out, row{
			ID:        d.ID,
			Title:     d.Title,
			FileName:  d.FileName,
			Tags:      d.Tags,
			CreatedAt: d.CreatedAt,
			ChosenURL: h.Links.ChooserURL(url.PathEscape(d.ID) + "/"),
		})
	}
	return out
}

func (h *Handler) newView() view {
	return view{
		SearchURL: h.Links.ChooserURL("search/"),
		UploadURL: h.Links.ChooserURL("upload/"),
	}
}

// chooser opens the modal. The upload form is only offered to callers who may add documents.
func (h *Handler) chooser(c *gin.Context) {
	v := h.newView()
	if h.Perms.UserHasPermission(identity(c), permissions.ActionAdd) {
		v.UploadForm = emptyForm()
	}
	h.renderChooser(c, v)
}

func (h *Handler) chosen(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.DocumentIDKey, id)

	doc, err := h.Docs.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load document", nil)
		return
	}
	h.writeChosen(c, doc)
}

func (h *Handler) upload(c *gin.Context) {
	who := identity(c)

	form := emptyForm()
	if c.Request.Method == http.MethodPost {
		bound, fv, ok := bindUpload(c, h.Rules)
		form = fv
		if ok {
			doc, err := h.save(c, who, bound)
			switch {
			case err == nil:
				h.Metrics.ObserveUpload("created", doc.FileSize)
				telemetry.Info("chooser.upload.created", map[string]any{
					"document_id": doc.ID,
					"user_id":     who.UserID,
					"file_size":   doc.FileSize,
				})
				h.writeChosen(c, doc)
				return
			case errors.Is(err, documents.ErrInvalidInput):
				form.NonFieldErrors = append(form.NonFieldErrors, "The uploaded file name is not valid.")
			default:
				h.Metrics.ObserveUpload("error", 0)
				telemetry.Error("chooser.upload.failed", map[string]any{
					"user_id": who.UserID,
					"error":   err.Error(),
				})
				respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save document", nil)
				return
			}
		}
		h.Metrics.ObserveUpload("invalid", 0)
	}

	docs, err := h.Docs.ListOrderedByTitle(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}
	v := h.newView()
	v.UploadForm = form
	v.Documents = h.rows(docs)
	v.ShowListing = true
	h.renderChooser(c, v)
}

func (h *Handler) save(c *gin.Context, who permissions.Identity, form UploadForm) (documents.Document, error) {
	file, err := form.File.Open()
	if err != nil {
		return documents.Document{}, err
	}
	defer file.Close()

	return h.Docs.Upload(c.Request.Context(), documents.UploadInput{
		Title:    form.Title,
		Tags:     documents.NormalizeTags(form.Tags),
		FileName: form.File.Filename,
		Size:     form.File.Size,
		File:     file,
		OwnerID:  who.UserID,
	})
}

// search renders only the results fragment, for the modal's live search box.
func (h *Handler) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	docs, err := h.Docs.Search(c.Request.Context(), query)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "search failed", nil)
		return
	}

	v := h.newView()
	v.Documents = h.rows(docs)
	v.IsSearching = query != ""
	v.ShowListing = true
	v.Query = query

	html, err := h.Renderer.Render("results", v)
	if err != nil {
		telemetry.Error("chooser.render_failed", map[string]any{"template": "results", "error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render results", nil)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *Handler) renderChooser(c *gin.Context, v view) {
	html, err := h.Renderer.Render("chooser", v)
	if err != nil {
		telemetry.Error("chooser.render_failed", map[string]any{"template": "chooser", "error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render chooser", nil)
		return
	}
	c.Set(middleware.ChooserStepKey, StepChooser)
	h.Metrics.ObserveChooserStep(StepChooser)
	modal.Write(c, StepChooser, html, Context())
}

func (h *Handler) writeChosen(c *gin.Context, doc documents.Document) {
	c.Set(middleware.DocumentIDKey, doc.ID)
	c.Set(middleware.ChooserStepKey, StepDocumentChosen)
	h.Metrics.ObserveChooserStep(StepDocumentChosen)
	modal.Write(c, StepDocumentChosen, "", chosenPayload(doc, h.Links))
}
