package chooser

import "docchooser/internal/documents"

// Workflow steps understood by the editor widget.
const (
	StepChooser        = "chooser"
	StepDocumentChosen = "document_chosen"
)

// Context returns the JSON fields that accompany every chooser fragment.
func Context() map[string]any {
	return map[string]any{
		"step":          StepChooser,
		"error_label":   "Server Error",
		"error_message": "Report this error to your webmaster with the following information:",
	}
}

// Result is the projection of a document handed back to the editor.
type Result struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	EditLink string `json:"edit_link"`
}

// ResultFor shapes doc for the document_chosen step.
func ResultFor(doc documents.Document, links documents.Links) Result {
	return Result{
		ID:       doc.ID,
		Title:    doc.Title,
		URL:      links.URL(doc),
		Filename: doc.FileName,
		EditLink: links.EditLink(doc),
	}
}

func chosenPayload(doc documents.Document, links documents.Links) map[string]any {
	return map[string]any{"result": ResultFor(doc, links)}
}
