package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"docvault/internal/apperr"
	"docvault/internal/model"
	"docvault/internal/repository"
)

var documentTestColumns = []string{
	"id", "title", "content", "storage_path", "file_name", "file_size",
	"document_type_id", "metadata", "created_at", "updated_at",
}

func documentRow(id, title string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(documentTestColumns).
		AddRow(id, title, "", "documents/x.pdf", "x.pdf", int64(100), nil, []byte(`{}`), now, now)
}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	doc := &model.Document{
		ID:          "doc-1",
		Title:       "Report",
		StoragePath: "documents/x.pdf",
		FileName:    "x.pdf",
		FileSize:    100,
		Metadata:    map[string]any{},
	}

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(doc.ID, doc.Title, "", sqlmock.AnyArg(), doc.FileName, doc.FileSize, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(documentRow("doc-1", "Report"))

	result, err := repo.Create(ctx, doc)

	assert.NoError(t, err)
	assert.Equal(t, "doc-1", result.ID)
	assert.Equal(t, "Report", result.Title)
	assert.NotNil(t, result.Metadata)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("doc-1").
			WillReturnRows(documentRow("doc-1", "Report"))

		doc, err := repo.FindByID(ctx, "doc-1")

		assert.NoError(t, err)
		assert.Equal(t, "doc-1", doc.ID)
		assert.Equal(t, "documents/x.pdf", doc.StoragePath)
	})

	t.Run("not found maps to the sentinel", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM documents ORDER BY created_at ASC, id ASC").
		WithArgs(10, 0).
		WillReturnRows(documentRow("doc-1", "First").AddRow(
			"doc-2", "Second", "", nil, "", int64(0), nil, []byte(`{}`),
			time.Now().UTC(), time.Now().UTC(),
		))

	res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

	assert.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, "First", res.Items[0].Title)
	assert.False(t, res.Items[1].HasFile())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("filename filter", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents WHERE file_name ILIKE`).
			WithArgs("report").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE file_name ILIKE").
			WithArgs("report", 10, 0).
			WillReturnRows(documentRow("doc-1", "Report"))

		res, err := repo.Search(ctx, repository.SearchQuery{Filename: "report", Limit: 10})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})

	t.Run("metadata filter uses typed equality", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents WHERE metadata ->`).
			WithArgs("department", `"finance"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE metadata ->").
			WithArgs("department", `"finance"`, 10, 0).
			WillReturnRows(sqlmock.NewRows(documentTestColumns))

		res, err := repo.Search(ctx, repository.SearchQuery{
			Metadata: map[string]any{"department": "finance"},
			Limit:    10,
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.Empty(t, res.Items)
	})
}

func TestDocumentPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("title change snapshots the prior state", func(t *testing.T) {
		title := "New Title"

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = (.+) FOR UPDATE").
			WithArgs("doc-1").
			WillReturnRows(documentRow("doc-1", "Old Title"))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM document_versions`).
			WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectExec("INSERT INTO document_versions").
			WithArgs("doc-1", 3, "Old Title", "", sqlmock.AnyArg(), "x.pdf", int64(100)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("UPDATE documents").
			WithArgs("doc-1", title, "", sqlmock.AnyArg(), "x.pdf", int64(100), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(documentRow("doc-1", title))
		mock.ExpectCommit()

		updated, err := repo.Update(ctx, "doc-1", repository.DocumentChanges{Title: &title})

		assert.NoError(t, err)
		assert.Equal(t, "New Title", updated.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("metadata-only change writes no snapshot", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = (.+) FOR UPDATE").
			WithArgs("doc-1").
			WillReturnRows(documentRow("doc-1", "Report"))
		mock.ExpectQuery("UPDATE documents").
			WithArgs("doc-1", "Report", "", sqlmock.AnyArg(), "x.pdf", int64(100), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(documentRow("doc-1", "Report"))
		mock.ExpectCommit()

		_, err := repo.Update(ctx, "doc-1", repository.DocumentChanges{
			Metadata: map[string]any{"department": "finance"},
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing document", func(t *testing.T) {
		title := "x"
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = (.+) FOR UPDATE").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.Update(ctx, "missing", repository.DocumentChanges{Title: &title})

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM documents WHERE id = ?").
			WithArgs("doc-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "doc-1"))
	})

	t.Run("no rows affected maps to not found", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, "missing"), apperr.ErrNotFound)
	})
}

func TestDocumentPostgres_Versions(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	versionCols := []string{
		"document_id", "version_number", "title", "content",
		"storage_path", "file_name", "file_size", "created_at",
	}

	t.Run("list ascending", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM document_versions WHERE document_id = (.+) ORDER BY version_number ASC").
			WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows(versionCols).
				AddRow("doc-1", 1, "v1", "", nil, "a.pdf", int64(10), time.Now()).
				AddRow("doc-1", 2, "v2", "", "documents/b.pdf", "b.pdf", int64(20), time.Now()))

		versions, err := repo.ListVersions(ctx, "doc-1")

		assert.NoError(t, err)
		assert.Len(t, versions, 2)
		assert.Equal(t, 1, versions[0].VersionNumber)
		assert.Equal(t, "documents/b.pdf", versions[1].StoragePath)
	})

	t.Run("latest", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM document_versions WHERE document_id = (.+) ORDER BY version_number DESC").
			WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows(versionCols).
				AddRow("doc-1", 2, "v2", "", nil, "b.pdf", int64(20), time.Now()))

		v, err := repo.LatestVersion(ctx, "doc-1")

		assert.NoError(t, err)
		assert.Equal(t, 2, v.VersionNumber)
	})

	t.Run("latest of unversioned document", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM document_versions WHERE document_id = (.+) ORDER BY version_number DESC").
			WithArgs("doc-2").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.LatestVersion(ctx, "doc-2")

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}
