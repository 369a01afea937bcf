package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"

	"docvault/internal/apperr"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

var (
	ErrIDRequired    = errors.New("id is required")
	ErrTitleRequired = errors.New("title is required")
	ErrReaderNil     = errors.New("reader is nil")
)

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// CreateDocumentInput carries the fields for the no-file creation path.
type CreateDocumentInput struct {
	Title          string
	Content        string
	DocumentTypeID string
	Metadata       map[string]any
}

// UploadInput carries the fields for the primary creation path with a file.
type UploadInput struct {
	Filename       string
	Size           int64
	Title          string
	Content        string
	DocumentTypeID string
	Metadata       map[string]any
}

// UpdateDocumentInput enumerates the versioned mutable fields. Nil pointers
// leave the field untouched.
type UpdateDocumentInput struct {
	Title   *string
	Content *string
}

// SearchInput mirrors repository.SearchQuery at the service boundary.
type SearchInput struct {
	Filename string
	Title    string
	Metadata map[string]any
	Limit    int
	Offset   int
}

// DocumentService defines the document use cases. It coordinates the
// metadata validator, the storage backend, and the version ledger so create,
// update, and delete behave as atomic-feeling operations.
type DocumentService interface {
	// Create makes a document without an attached file.
	Create(ctx context.Context, in CreateDocumentInput) (*model.Document, error)

	// Upload validates metadata, stores the content under a generated name,
	// and persists the document. Storage is rolled back if the record write
	// fails; a failed rollback surfaces as apperr.ErrOrphanedStorage.
	Upload(ctx context.Context, r io.Reader, in UploadInput) (*model.Document, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// List returns documents in creation order using limit/offset.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Search filters by filename/title substring and exact metadata values.
	Search(ctx context.Context, in SearchInput) (*DocumentListResult, error)

	// Update changes title/content, snapshotting the pre-update state.
	Update(ctx context.Context, id string, in UpdateDocumentInput) (*model.Document, error)

	// ReplaceFile attaches new content, snapshotting the pre-update state.
	// The previous object stays in storage because version snapshots keep
	// referencing its location.
	ReplaceFile(ctx context.Context, id string, r io.Reader, filename string, size int64) (*model.Document, error)

	// UpdateMetadata re-validates and replaces the metadata map (and
	// optionally the document type). Pure metadata changes annotate current
	// state and do not create a version snapshot.
	UpdateMetadata(ctx context.Context, id string, documentTypeID string, metadata map[string]any) (*model.Document, error)

	// Delete removes the document, its storage objects, and (by cascade) its
	// version history.
	Delete(ctx context.Context, id string) error

	// GetVersions returns the document's snapshots in ascending order.
	GetVersions(ctx context.Context, id string) ([]model.DocumentVersion, error)

	// GetLatestVersion returns the most recent snapshot.
	GetLatestVersion(ctx context.Context, id string) (*model.DocumentVersion, error)

	// Download streams the document's file content.
	Download(ctx context.Context, id string) (io.ReadCloser, *model.Document, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store    storage.Storage
	repo     repository.DocumentRepository
	metadata MetadataService
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, metadata MetadataService) DocumentService {
	return &documentService{store: store, repo: repo, metadata: metadata}
}

func (s *documentService) Create(ctx context.Context, in CreateDocumentInput) (*model.Document, error) {
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if in.DocumentTypeID != "" {
		if err := s.metadata.ValidateDocumentMetadata(ctx, in.DocumentTypeID, in.Metadata); err != nil {
			return nil, err
		}
	}
	doc := &model.Document{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Content:        in.Content,
		DocumentTypeID: in.DocumentTypeID,
		Metadata:       orEmpty(in.Metadata),
	}
	return s.repo.Create(ctx, doc)
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, in UploadInput) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	// Validate before touching storage so a schema failure never leaves an
	// object behind.
	if in.DocumentTypeID != "" {
		if err := s.metadata.ValidateDocumentMetadata(ctx, in.DocumentTypeID, in.Metadata); err != nil {
			return nil, err
		}
	}

	location, err := s.store.Save(ctx, r, generateStorageName(in.Filename), in.Size)
	if err != nil {
		return nil, fmt.Errorf("save to storage: %w", err)
	}

	doc := &model.Document{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Content:        in.Content,
		StoragePath:    location,
		FileName:       in.Filename,
		FileSize:       in.Size,
		DocumentTypeID: in.DocumentTypeID,
		Metadata:       orEmpty(in.Metadata),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage.
		if _, delErr := s.store.Delete(ctx, location); delErr != nil {
			return nil, fmt.Errorf("record save failed: %v; object %s left behind: %w", err, location, apperr.ErrOrphanedStorage)
		}
		return nil, fmt.Errorf("record save failed: %w", err)
	}
	return stored, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	return s.repo.FindByID(ctx, id)
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	limit, offset = clampPage(limit, offset)
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Search(ctx context.Context, in SearchInput) (*DocumentListResult, error) {
	limit, offset := clampPage(in.Limit, in.Offset)
	res, err := s.repo.Search(ctx, repository.SearchQuery{
		Filename: in.Filename,
		Title:    in.Title,
		Metadata: in.Metadata,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Update(ctx context.Context, id string, in UpdateDocumentInput) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	ch := repository.DocumentChanges{Title: in.Title, Content: in.Content}
	if ch.Empty() {
		return s.repo.FindByID(ctx, id)
	}
	return s.repo.Update(ctx, id, ch)
}

func (s *documentService) ReplaceFile(ctx context.Context, id string, r io.Reader, filename string, size int64) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if r == nil {
		return nil, ErrReaderNil
	}
	location, err := s.store.Save(ctx, r, generateStorageName(filename), size)
	if err != nil {
		return nil, fmt.Errorf("save to storage: %w", err)
	}
	updated, err := s.repo.Update(ctx, id, repository.DocumentChanges{
		StoragePath: &location,
		FileName:    &filename,
		FileSize:    &size,
	})
	if err != nil {
		if _, delErr := s.store.Delete(ctx, location); delErr != nil {
			return nil, fmt.Errorf("record update failed: %v; object %s left behind: %w", err, location, apperr.ErrOrphanedStorage)
		}
		return nil, err
	}
	return updated, nil
}

func (s *documentService) UpdateMetadata(ctx context.Context, id string, documentTypeID string, metadata map[string]any) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	effectiveType := doc.DocumentTypeID
	if documentTypeID != "" {
		effectiveType = documentTypeID
	}
	// Revalidate in full against the effective type; prior validation
	// results are never reused.
	if effectiveType != "" {
		if err := s.metadata.ValidateDocumentMetadata(ctx, effectiveType, metadata); err != nil {
			return nil, err
		}
	}

	ch := repository.DocumentChanges{Metadata: orEmpty(metadata)}
	if documentTypeID != "" {
		ch.DocumentTypeID = &documentTypeID
	}
	return s.repo.Update(ctx, id, ch)
}

// Delete removes the document's storage objects first, then the record. The
// version rows cascade with the record, so their referenced objects are
// deleted here while the ledger is still readable.
func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	locations := map[string]struct{}{}
	if doc.HasFile() {
		locations[doc.StoragePath] = struct{}{}
	}
	versions, err := s.repo.ListVersions(ctx, id)
	if err != nil {
		return fmt.Errorf("list versions: %w", err)
	}
	for _, v := range versions {
		if v.StoragePath != "" {
			locations[v.StoragePath] = struct{}{}
		}
	}
	for location := range locations {
		if _, err := s.store.Delete(ctx, location); err != nil {
			return fmt.Errorf("delete storage object %s: %w", location, err)
		}
	}

	return s.repo.Delete(ctx, id)
}

func (s *documentService) GetVersions(ctx context.Context, id string) ([]model.DocumentVersion, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListVersions(ctx, id)
}

func (s *documentService) GetLatestVersion(ctx context.Context, id string) (*model.DocumentVersion, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	return s.repo.LatestVersion(ctx, id)
}

func (s *documentService) Download(ctx context.Context, id string) (io.ReadCloser, *model.Document, error) {
	if id == "" {
		return nil, nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !doc.HasFile() {
		return nil, nil, apperr.NotFoundf("document %s has no file", id)
	}
	rc, err := s.store.Retrieve(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieve %s: %w", doc.StoragePath, err)
	}
	return rc, doc, nil
}

// generateStorageName builds a collision-resistant object name: a fresh UUID
// plus the original extension, under a documents/ prefix. The user-supplied
// filename never reaches storage directly.
func generateStorageName(originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	return filepath.ToSlash(filepath.Join("documents", uuid.NewString()+ext))
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
