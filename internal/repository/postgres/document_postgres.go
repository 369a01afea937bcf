package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of
// repository.DocumentRepository. The metadata value map lives in a JSONB
// column; version snapshots live in document_versions keyed by
// (document_id, version_number).
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, title, content, storage_path, file_name, file_size, document_type_id, metadata, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var (
		d           model.Document
		storagePath sql.NullString
		typeID      sql.NullString
		metadata    []byte
	)
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Content,
		&storagePath,
		&d.FileName,
		&d.FileSize,
		&typeID,
		&metadata,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.StoragePath = storagePath.String
	d.DocumentTypeID = typeID.String
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &d.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata column: %w", err)
		}
	}
	if d.Metadata == nil {
		d.Metadata = map[string]any{}
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	const q = `
		INSERT INTO documents (id, title, content, storage_path, file_name, file_size, document_type_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.Content,
		nullString(doc.StoragePath),
		doc.FileName,
		doc.FileSize,
		nullString(doc.DocumentTypeID),
		metadata,
	)
	out, err := scanDocument(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return doc, nil
}

// List returns documents in creation order using LIMIT/OFFSET pagination and
// a total count.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + documentColumns + `
		FROM documents
		ORDER BY created_at ASC, id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectDocuments(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// Search filters on filename/title substrings (case-insensitive) and exact
// metadata values, in creation order. Both the count and page queries share
// the same WHERE clause.
func (r *DocumentPostgres) Search(ctx context.Context, q repository.SearchQuery) (*repository.PageResult[model.Document], error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Filename != "" {
		where = append(where, fmt.Sprintf("file_name ILIKE '%%' || %s || '%%'", arg(q.Filename)))
	}
	if q.Title != "" {
		where = append(where, fmt.Sprintf("title ILIKE '%%' || %s || '%%'", arg(q.Title)))
	}
	for key, value := range q.Metadata {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode metadata filter %q: %w", key, err)
		}
		// Exact, typed-as-stored equality on the JSON value.
		where = append(where, fmt.Sprintf("metadata -> %s = %s::jsonb", arg(key), arg(string(encoded))))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents"+clause, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := "SELECT " + documentColumns + " FROM documents" + clause +
		fmt.Sprintf(" ORDER BY created_at ASC, id ASC LIMIT %s OFFSET %s", arg(q.Limit), arg(q.Offset))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectDocuments(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

func collectDocuments(rows *sql.Rows) ([]model.Document, error) {
	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update applies the change set inside one transaction. The document row is
// locked first; when the change set requires a snapshot the pre-update state
// is appended to document_versions with version_number = existing count + 1
// before the row is mutated. Concurrent updates to the same document
// serialize on the row lock, which keeps version numbers gap-free.
func (r *DocumentPostgres) Update(ctx context.Context, id string, ch repository.DocumentChanges) (*model.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const qLock = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 FOR UPDATE`
	current, err := scanDocument(tx.QueryRowContext(ctx, qLock, id))
	if err != nil {
		return nil, mapErr(err)
	}

	if ch.RequiresSnapshot() {
		var count int
		const qCount = `SELECT COUNT(*) FROM document_versions WHERE document_id = $1`
		if err := tx.QueryRowContext(ctx, qCount, id).Scan(&count); err != nil {
			return nil, fmt.Errorf("count versions: %w", err)
		}
		const qSnapshot = `
			INSERT INTO document_versions (document_id, version_number, title, content, storage_path, file_name, file_size)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := tx.ExecContext(ctx, qSnapshot,
			id,
			count+1,
			current.Title,
			current.Content,
			nullString(current.StoragePath),
			current.FileName,
			current.FileSize,
		); err != nil {
			return nil, fmt.Errorf("insert version snapshot: %w", err)
		}
	}

	next := *current
	if ch.Title != nil {
		next.Title = *ch.Title
	}
	if ch.Content != nil {
		next.Content = *ch.Content
	}
	if ch.StoragePath != nil {
		next.StoragePath = *ch.StoragePath
	}
	if ch.FileName != nil {
		next.FileName = *ch.FileName
	}
	if ch.FileSize != nil {
		next.FileSize = *ch.FileSize
	}
	if ch.DocumentTypeID != nil {
		next.DocumentTypeID = *ch.DocumentTypeID
	}
	if ch.Metadata != nil {
		next.Metadata = ch.Metadata
	}
	metadata, err := json.Marshal(next.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	const qUpdate = `
		UPDATE documents
		SET title = $2, content = $3, storage_path = $4, file_name = $5, file_size = $6, document_type_id = $7, metadata = $8, updated_at = now()
		WHERE id = $1
		RETURNING ` + documentColumns
	updated, err := scanDocument(tx.QueryRowContext(ctx, qUpdate,
		id,
		next.Title,
		next.Content,
		nullString(next.StoragePath),
		next.FileName,
		next.FileSize,
		nullString(next.DocumentTypeID),
		metadata,
	))
	if err != nil {
		return nil, mapErr(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

// Delete removes a document by ID. document_versions rows cascade via the
// foreign key.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapErr(sql.ErrNoRows)
	}
	return nil
}

const versionColumns = `document_id, version_number, title, content, storage_path, file_name, file_size, created_at`

func scanVersion(row interface{ Scan(...any) error }) (*model.DocumentVersion, error) {
	var (
		v           model.DocumentVersion
		storagePath sql.NullString
	)
	if err := row.Scan(
		&v.DocumentID,
		&v.VersionNumber,
		&v.Title,
		&v.Content,
		&storagePath,
		&v.FileName,
		&v.FileSize,
		&v.CreatedAt,
	); err != nil {
		return nil, err
	}
	v.StoragePath = storagePath.String
	return &v, nil
}

// ListVersions returns the snapshots of a document in ascending version order.
func (r *DocumentPostgres) ListVersions(ctx context.Context, documentID string) ([]model.DocumentVersion, error) {
	const q = `
		SELECT ` + versionColumns + `
		FROM document_versions
		WHERE document_id = $1
		ORDER BY version_number ASC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions := make([]model.DocumentVersion, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return versions, nil
}

// LatestVersion returns the highest-numbered snapshot of a document.
func (r *DocumentPostgres) LatestVersion(ctx context.Context, documentID string) (*model.DocumentVersion, error) {
	const q = `
		SELECT ` + versionColumns + `
		FROM document_versions
		WHERE document_id = $1
		ORDER BY version_number DESC
		LIMIT 1
	`
	v, err := scanVersion(r.db.QueryRowContext(ctx, q, documentID))
	if err != nil {
		return nil, mapErr(err)
	}
	return v, nil
}
