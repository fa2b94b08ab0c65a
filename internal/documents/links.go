package documents

import (
	"net/url"
	"strings"
)

// Links derives the public URLs of a document.
type Links struct {
	ServePrefix string // e.g. /documents
	AdminPrefix string // e.g. /admin
}

// URL is where the document bytes are served.
func (l Links) URL(doc Document) string {
	return joinPrefix(l.ServePrefix, "/documents") + "/" + url.PathEscape(doc.ID) + "/" + url.PathEscape(doc.FileName)
}

// EditLink is the admin edit page for the document.
func (l Links) EditLink(doc Document) string {
	return joinPrefix(l.AdminPrefix, "/admin") + "/documents/edit/" + url.PathEscape(doc.ID) + "/"
}

// ChooserURL is an admin chooser endpoint; suffix is appended verbatim.
func (l Links) ChooserURL(suffix string) string {
	return joinPrefix(l.AdminPrefix, "/admin") + "/documents/chooser/" + suffix
}

func joinPrefix(prefix, fallback string) string {
	p := strings.TrimRight(strings.TrimSpace(prefix), "/")
	if p == "" {
		return fallback
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
