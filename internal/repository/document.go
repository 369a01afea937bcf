package repository

import (
	"context"

	"docvault/internal/model"
)

// DocumentRepository defines data access for documents and their version
// ledger. Implementations hold no business logic, strictly persistence
// operations.
type DocumentRepository interface {
	// Create inserts a new document record with version count 0.
	// Returns the stored document (may include values set by the DB).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, or apperr.ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated list of documents in creation order plus the
	// total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// Search filters documents by case-insensitive filename/title substrings
	// and exact-match metadata keys, paginated in creation order.
	Search(ctx context.Context, q SearchQuery) (*PageResult[model.Document], error)

	// Update applies ch to the document in a single transaction. When ch
	// requires a snapshot, the pre-update state is first appended to the
	// version ledger with version_number = existing count + 1; either both
	// the snapshot and the mutation commit, or neither is visible.
	Update(ctx context.Context, id string, ch DocumentChanges) (*model.Document, error)

	// Delete removes a document by ID. Version rows cascade with it.
	// Returns apperr.ErrNotFound when no row was deleted.
	Delete(ctx context.Context, id string) error

	// ListVersions returns all snapshots of a document in ascending
	// version_number order.
	ListVersions(ctx context.Context, documentID string) ([]model.DocumentVersion, error)

	// LatestVersion returns the highest-numbered snapshot, or
	// apperr.ErrNotFound when the document has no versions.
	LatestVersion(ctx context.Context, documentID string) (*model.DocumentVersion, error)
}

// SearchQuery holds the document search filters. Zero-valued filters are
// ignored. Metadata entries must equal the stored value exactly, typed as
// stored.
type SearchQuery struct {
	Filename string
	Title    string
	Metadata map[string]any
	Limit    int
	Offset   int
}

// DocumentChanges enumerates exactly the mutable document fields. A nil
// pointer leaves the field untouched; identity, timestamps, and the version
// counter are never settable from outside.
type DocumentChanges struct {
	Title          *string
	Content        *string
	StoragePath    *string
	FileName       *string
	FileSize       *int64
	DocumentTypeID *string
	Metadata       map[string]any
}

// Empty reports whether the change set touches nothing.
func (c DocumentChanges) Empty() bool {
	return c.Title == nil && c.Content == nil && c.StoragePath == nil &&
		c.FileName == nil && c.FileSize == nil && c.DocumentTypeID == nil &&
		c.Metadata == nil
}

// RequiresSnapshot reports whether applying the change set must first record
// a version snapshot. Title, content, and file changes are versioned; a pure
// metadata or type change annotates current state and is not.
func (c DocumentChanges) RequiresSnapshot() bool {
	return c.Title != nil || c.Content != nil || c.StoragePath != nil ||
		c.FileName != nil || c.FileSize != nil
}
