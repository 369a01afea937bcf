package repository

import (
	"context"

	"docvault/internal/model"
)

// MetadataFieldRepository defines data access for metadata field definitions.
type MetadataFieldRepository interface {
	// Create inserts a new field definition. A duplicate name surfaces as
	// apperr.ErrConflict.
	Create(ctx context.Context, f *model.MetadataField) (*model.MetadataField, error)

	// FindByID returns a field by its ID, or apperr.ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.MetadataField, error)

	// FindByName returns a field by its unique name, or apperr.ErrNotFound.
	FindByName(ctx context.Context, name string) (*model.MetadataField, error)

	// List returns all field definitions ordered by name.
	List(ctx context.Context) ([]model.MetadataField, error)

	// Update rewrites the mutable attributes of an existing field.
	Update(ctx context.Context, f *model.MetadataField) (*model.MetadataField, error)

	// Delete removes a field definition by ID, or apperr.ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// AssociationSpec names one field association for a document type.
type AssociationSpec struct {
	FieldID    string
	IsRequired bool
}

// DocumentTypeRepository defines data access for document types and their
// field associations.
type DocumentTypeRepository interface {
	Create(ctx context.Context, t *model.DocumentType) (*model.DocumentType, error)
	FindByID(ctx context.Context, id string) (*model.DocumentType, error)
	FindByName(ctx context.Context, name string) (*model.DocumentType, error)
	List(ctx context.Context) ([]model.DocumentType, error)
	Update(ctx context.Context, t *model.DocumentType) (*model.DocumentType, error)
	Delete(ctx context.Context, id string) error

	// Associate adds a field association. Adding an existing pair is a no-op;
	// a missing field or type surfaces as apperr.ErrNotFound.
	Associate(ctx context.Context, typeID, fieldID string, isRequired bool) error

	// Dissociate removes a field association. Removing a missing pair is a
	// no-op.
	Dissociate(ctx context.Context, typeID, fieldID string) error

	// ReplaceAssociations atomically clears and re-adds the full association
	// set; no partial update is ever visible.
	ReplaceAssociations(ctx context.Context, typeID string, specs []AssociationSpec) error

	// ListAssociations returns the type's field associations in their stored
	// order, with field definitions resolved.
	ListAssociations(ctx context.Context, typeID string) ([]model.FieldAssociation, error)
}
