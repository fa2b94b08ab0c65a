// Package search keeps a term index over documents so the chooser can find
// them by title, filename, tags and extracted text.
package search

import (
	"context"
	"errors"
	"strings"
	"unicode"
)

// ErrEmptyQuery is returned when a query has no searchable terms.
var ErrEmptyQuery = errors.New("empty search query")

const (
	maxTermLength  = 64
	maxTermsPerDoc = 5000
)

// Record is the indexed projection of a document.
type Record struct {
	ID       string
	Title    string
	FileName string
	Tags     []string
	Body     string
}

// Indexer is notified after every document write and answers term queries.
type Indexer interface {
	// InsertOrUpdate replaces any previous entry for rec.ID.
	InsertOrUpdate(ctx context.Context, rec Record) error
	// Search returns the IDs of records matching every term of query.
	Search(ctx context.Context, query string) ([]string, error)
}

// Terms returns the deduplicated terms for a record.
func Terms(rec Record) []string {
	parts := []string{rec.Title, rec.FileName, rec.Body}
	parts = append(parts, rec.Tags...)
	terms := Tokenize(strings.Join(parts, " "))
	if len(terms) > maxTermsPerDoc {
		terms = terms[:maxTermsPerDoc]
	}
	return terms
}

// Tokenize lowercases s, splits it on anything that is not a letter or digit
// and drops duplicates while keeping first-seen order.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if r := []rune(f); len(r) > maxTermLength {
			f = string(r[:maxTermLength])
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
