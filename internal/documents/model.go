package documents

import (
	"sort"
	"strings"
	"time"
)

// Document is an uploaded file together with its admin metadata.
type Document struct {
	ID               string
	Title            string
	FileName         string
	MimeType         string
	StorageKey       string
	FileSize         int64
	FileHash         string
	Tags             []string
	UploadedByUserID string
	CreatedAt        time.Time
}

// NormalizeTags trims, lowercases and deduplicates a comma separated tag list.
func NormalizeTags(raw string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.Join(strings.Fields(part), " "))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// SortByTitle orders docs by title, case-insensitively, then by id.
func SortByTitle(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := strings.ToLower(docs[i].Title), strings.ToLower(docs[j].Title)
		if a != b {
			return a < b
		}
		return docs[i].ID < docs[j].ID
	})
}
