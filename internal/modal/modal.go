// Package modal builds responses for the editor's modal workflow: a named
// step, an optional HTML fragment and step-specific JSON fields.
package modal

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the JSON body sent to the modal.
type Response map[string]any

// Build merges payload with the step and, when non-empty, the HTML fragment.
// step and html always win over payload keys of the same name.
func Build(step, html string, payload map[string]any) Response {
	resp := make(Response, len(payload)+2)
	for k, v := range payload {
		resp[k] = v
	}
	delete(resp, "html")
	if html != "" {
		resp["html"] = html
	}
	resp["step"] = step
	return resp
}

// Write sends a 200 modal response.
func Write(c *gin.Context, step, html string, payload map[string]any) {
	c.JSON(http.StatusOK, Build(step, html, payload))
}

// Renderer renders named html/template fragments to strings so they can be
// embedded in a JSON response.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses every file in fsys matching patterns.
func NewRenderer(fsys fs.FS, funcs template.FuncMap, patterns ...string) (*Renderer, error) {
	tmpl, err := template.New("modal").Funcs(funcs).ParseFS(fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("parse modal templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the named template.
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
