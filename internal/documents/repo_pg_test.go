package documents

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var pgColumns = []string{"id", "title", "file_key", "file_name", "mime_type", "file_size", "file_hash", "tags", "uploaded_by", "created_at"}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateJoinsTags(t *testing.T) {
	repo, mock := newMockRepo(t)
	doc := Document{
		ID:               "doc-1",
		Title:            "Annual report",
		FileName:         "report.pdf",
		MimeType:         "application/pdf",
		StorageKey:       "documents/2026/01/x_report.pdf",
		FileSize:         2048,
		FileHash:         "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed",
		Tags:             []string{"finance", "2024"},
		UploadedByUserID: "user-1",
		CreatedAt:        time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(
			doc.ID,
			doc.Title,
			doc.StorageKey,
			doc.FileName,
			doc.MimeType,
			doc.FileSize,
			doc.FileHash,
			"finance,2024",
			doc.UploadedByUserID,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDScansRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, time.February, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(pgColumns).
		AddRow("doc-1", "Annual report", "documents/k", "report.pdf", "application/pdf", int64(2048), "abc", "finance,2024", "user-1", created)
	mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = \\$1").
		WithArgs("doc-1").
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.Title != "Annual report" || doc.FileSize != 2048 || doc.UploadedByUserID != "user-1" {
		t.Fatalf("unexpected doc %+v", doc)
	}
	if !reflect.DeepEqual(doc.Tags, []string{"finance", "2024"}) {
		t.Fatalf("unexpected tags %v", doc.Tags)
	}
	if !doc.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at %v", doc.CreatedAt)
	}
}

func TestPGRepoListOrderedByTitle(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(pgColumns).
		AddRow("b", "Alpha", "k1", "a.pdf", "application/pdf", int64(1), "", "", "", now).
		AddRow("a", "Beta", "k2", "b.pdf", "application/pdf", int64(2), "", "", "", now)
	mock.ExpectQuery("ORDER BY lower\\(title\\) ASC").WillReturnRows(rows)

	docs, err := repo.ListOrderedByTitle(context.Background())
	if err != nil {
		t.Fatalf("ListOrderedByTitle: %v", err)
	}
	if len(docs) != 2 || docs[0].Title != "Alpha" || docs[1].Title != "Beta" {
		t.Fatalf("unexpected docs %+v", docs)
	}
	if len(docs[0].Tags) != 0 {
		t.Fatalf("expected no tags, got %v", docs[0].Tags)
	}
}

func TestPGRepoGetManyBuildsPlaceholders(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery("WHERE id IN \\(\\$1, \\$2\\)").
		WithArgs("x", "y").
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow("x", "X", "k", "x.txt", "text/plain", int64(1), "", "", "", now))

	docs, err := repo.GetMany(context.Background(), []string{"x", "y"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "x" {
		t.Fatalf("unexpected docs %+v", docs)
	}

	empty, err := repo.GetMany(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty result without query, got %v %v", empty, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
