package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, title, file_key, file_name, mime_type, file_size, file_hash, tags, uploaded_by, created_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    title,
    file_key,
    file_name,
    mime_type,
    file_size,
    file_hash,
    tags,
    uploaded_by,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.Title,
		doc.StorageKey,
		doc.FileName,
		doc.MimeType,
		doc.FileSize,
		doc.FileHash,
		joinTags(doc.Tags),
		doc.UploadedByUserID,
		doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document id=%s: %w", doc.ID, err)
	}
	return nil
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListOrderedByTitle lists every document, title ascending.
func (r *PGRepo) ListOrderedByTitle(ctx context.Context) ([]Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
ORDER BY lower(title) ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// GetMany fetches the documents among ids.
func (r *PGRepo) GetMany(ctx context.Context, ids []string) ([]Document, error) {
	if len(ids) == 0 {
		return []Document{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE id IN (` + strings.Join(placeholders, ", ") + `)`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Ping checks database connectivity.
func (r *PGRepo) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var mimeType sql.NullString
	var fileHash sql.NullString
	var tags sql.NullString
	var uploadedBy sql.NullString
	if err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.StorageKey,
		&doc.FileName,
		&mimeType,
		&doc.FileSize,
		&fileHash,
		&tags,
		&uploadedBy,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	if mimeType.Valid {
		doc.MimeType = mimeType.String
	}
	if fileHash.Valid {
		doc.FileHash = fileHash.String
	}
	doc.Tags = splitTags(tags.String)
	if uploadedBy.Valid {
		doc.UploadedByUserID = uploadedBy.String
	}
	return doc, nil
}

func collect(rows *sql.Rows) ([]Document, error) {
	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	return NormalizeTags(raw)
}

var _ Repo = (*PGRepo)(nil)
