package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"docchooser/internal/extract"
	"docchooser/internal/search"
	"docchooser/internal/shared/metrics"
	"docchooser/internal/shared/storage/object"
	"docchooser/internal/shared/telemetry"
	"docchooser/internal/shared/util"
)

// UploadInput carries a validated upload.
type UploadInput struct {
	Title    string
	Tags     []string
	FileName string
	// Size is the byte length reported for the uploaded blob.
	Size    int64
	File    io.ReadSeeker
	OwnerID string
}

// Service contains business logic for documents.
type Service struct {
	Store   object.Store
	Repo    Repo
	Index   search.Indexer
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Upload hashes, stores and records the file, then refreshes its search entry.
// A failed index update is logged and does not fail the upload.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Document, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.File == nil {
		return Document{}, ErrInvalidInput
	}
	fileName, err := util.SanitizeFileName(in.FileName)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash, err := util.FileHash(in.File)
	if err != nil {
		return Document{}, fmt.Errorf("hash upload: %w", err)
	}

	obj, err := s.Store.Save(ctx, fileName, in.File)
	if err != nil {
		return Document{}, fmt.Errorf("store upload: %w", err)
	}

	size := in.Size
	if size <= 0 {
		size = obj.Size
	}
	doc := Document{
		ID:               uuid.NewString(),
		Title:            title,
		FileName:         fileName,
		MimeType:         obj.MimeType,
		StorageKey:       obj.Key,
		FileSize:         size,
		FileHash:         hash,
		Tags:             in.Tags,
		UploadedByUserID: in.OwnerID,
		CreatedAt:        s.now(),
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		if delErr := s.Store.Delete(ctx, obj.Key); delErr != nil {
			telemetry.Warn("documents.orphan_object", map[string]any{
				"storage_key": obj.Key,
				"error":       delErr.Error(),
			})
		}
		return Document{}, fmt.Errorf("create document: %w", err)
	}

	s.index(ctx, doc)
	return doc, nil
}

// Get returns a document by id.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Document{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// ListOrderedByTitle returns all documents, title ascending.
func (s *Service) ListOrderedByTitle(ctx context.Context) ([]Document, error) {
	return s.Repo.ListOrderedByTitle(ctx)
}

// Search returns documents matching every term of query, title ascending.
// A query without terms returns the full listing.
func (s *Service) Search(ctx context.Context, query string) ([]Document, error) {
	if strings.TrimSpace(query) == "" {
		return s.ListOrderedByTitle(ctx)
	}
	ids, err := s.Index.Search(ctx, query)
	if errors.Is(err, search.ErrEmptyQuery) {
		return s.ListOrderedByTitle(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	docs, err := s.Repo.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	SortByTitle(docs)
	return docs, nil
}

// Open returns the document and a reader over its bytes. fileName must match
// the stored file name.
func (s *Service) Open(ctx context.Context, id, fileName string) (Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return Document{}, nil, err
	}
	if doc.FileName != fileName {
		return Document{}, nil, ErrNotFound
	}
	rc, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return Document{}, nil, fmt.Errorf("open document id=%s: %w", doc.ID, err)
	}
	return doc, rc, nil
}

// Reindex pushes every stored document into the search index.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	docs, err := s.Repo.ListOrderedByTitle(ctx)
	if err != nil {
		return 0, err
	}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		s.index(ctx, doc)
	}
	return len(docs), nil
}

func (s *Service) index(ctx context.Context, doc Document) {
	rec := search.Record{
		ID:       doc.ID,
		Title:    doc.Title,
		FileName: doc.FileName,
		Tags:     doc.Tags,
	}

	text, err := extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
	switch {
	case err == nil:
		rec.Body = text
	case errors.Is(err, extract.ErrUnsupported):
	default:
		telemetry.Warn("documents.extract_failed", map[string]any{
			"document_id": doc.ID,
			"mime_type":   doc.MimeType,
			"error":       err.Error(),
		})
	}

	if err := s.Index.InsertOrUpdate(ctx, rec); err != nil {
		s.Metrics.IncIndexFailure()
		telemetry.Error("search.index.failed", map[string]any{
			"document_id": doc.ID,
			"error":       err.Error(),
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
