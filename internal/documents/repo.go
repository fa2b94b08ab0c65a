package documents

import "context"

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	// ListOrderedByTitle returns every document, title ascending.
	ListOrderedByTitle(ctx context.Context) ([]Document, error)
	// GetMany returns the documents that exist among ids, in no particular order.
	GetMany(ctx context.Context, ids []string) ([]Document, error)
}
