package modal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
)

func TestBuildOmitsEmptyHTML(t *testing.T) {
	resp := Build("document_chosen", "", map[string]any{
		"result": map[string]any{"id": "1"},
		"html":   "<p>ignored</p>",
		"step":   "bogus",
	})
	if _, ok := resp["html"]; ok {
		t.Fatalf("expected no html key, got %v", resp["html"])
	}
	if resp["step"] != "document_chosen" {
		t.Fatalf("step must not be overridden by payload, got %v", resp["step"])
	}
	if _, ok := resp["result"]; !ok {
		t.Fatalf("expected payload merged")
	}
}

func TestWriteSendsJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		Write(c, "chooser", "<div>hi</div>", map[string]any{"error_label": "Server Error"})
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["step"] != "chooser" || body["html"] != "<div>hi</div>" || body["error_label"] != "Server Error" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestRendererEscapesAndReportsMissingTemplate(t *testing.T) {
	fsys := fstest.MapFS{
		"t/hello.html": {Data: []byte(`{{define "hello"}}<p>{{shout .}}</p>{{end}}`)},
	}
	r, err := NewRenderer(fsys, map[string]any{"shout": strings.ToUpper}, "t/*.html")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	got, err := r.Render("hello", "<b>x</b>")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "<p>&lt;B&gt;X&lt;/B&gt;</p>" {
		t.Fatalf("unexpected output %q", got)
	}
	if _, err := r.Render("missing", nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
}
