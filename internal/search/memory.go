package search

import (
	"context"
	"sort"
	"sync"
)

// MemoryIndex is an in-process inverted index.
type MemoryIndex struct {
	mu       sync.RWMutex
	postings map[string]map[string]struct{} // term -> ids
	docTerms map[string][]string            // id -> terms
}

// NewMemoryIndex constructs an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		postings: make(map[string]map[string]struct{}),
		docTerms: make(map[string][]string),
	}
}

// InsertOrUpdate replaces the terms stored for rec.ID.
func (m *MemoryIndex) InsertOrUpdate(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	terms := Terms(rec)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, term := range m.docTerms[rec.ID] {
		ids := m.postings[term]
		delete(ids, rec.ID)
		if len(ids) == 0 {
			delete(m.postings, term)
		}
	}
	for _, term := range terms {
		ids, ok := m.postings[term]
		if !ok {
			ids = make(map[string]struct{})
			m.postings[term] = ids
		}
		ids[rec.ID] = struct{}{}
	}
	m.docTerms[rec.ID] = terms
	return nil
}

// Search returns ids matching all query terms, sorted for stable output.
func (m *MemoryIndex) Search(ctx context.Context, query string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil, ErrEmptyQuery
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for id := range m.postings[terms[0]] {
		matched := true
		for _, term := range terms[1:] {
			if _, ok := m.postings[term][id]; !ok {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

var _ Indexer = (*MemoryIndex)(nil)
