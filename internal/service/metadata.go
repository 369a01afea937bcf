package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"docvault/internal/apperr"
	"docvault/internal/model"
	"docvault/internal/repository"
)

// MetadataService is the schema registry: it owns metadata field definitions,
// document types, and their associations, and exposes metadata validation
// against a registered type.
type MetadataService interface {
	CreateField(ctx context.Context, f model.MetadataField) (*model.MetadataField, error)
	GetField(ctx context.Context, id string) (*model.MetadataField, error)
	ListFields(ctx context.Context) ([]model.MetadataField, error)
	UpdateField(ctx context.Context, f model.MetadataField) (*model.MetadataField, error)
	DeleteField(ctx context.Context, id string) error

	CreateDocumentType(ctx context.Context, t model.DocumentType, specs []repository.AssociationSpec) (*model.DocumentType, error)
	GetDocumentType(ctx context.Context, id string) (*model.DocumentType, error)
	ListDocumentTypes(ctx context.Context) ([]model.DocumentType, error)
	UpdateDocumentType(ctx context.Context, t model.DocumentType) (*model.DocumentType, error)
	DeleteDocumentType(ctx context.Context, id string) error

	AssociateField(ctx context.Context, typeID, fieldID string, isRequired bool) error
	DissociateField(ctx context.Context, typeID, fieldID string) error
	ReplaceFieldAssociations(ctx context.Context, typeID string, specs []repository.AssociationSpec) error

	// ValidateDocumentMetadata resolves the type's associations and runs the
	// full metadata validation against them.
	ValidateDocumentMetadata(ctx context.Context, typeID string, values map[string]any) error
}

type metadataService struct {
	fields repository.MetadataFieldRepository
	types  repository.DocumentTypeRepository
}

// NewMetadataService constructs a new MetadataService.
func NewMetadataService(fields repository.MetadataFieldRepository, types repository.DocumentTypeRepository) MetadataService {
	return &metadataService{fields: fields, types: types}
}

func (s *metadataService) CreateField(ctx context.Context, f model.MetadataField) (*model.MetadataField, error) {
	if err := checkFieldDefinition(&f); err != nil {
		return nil, err
	}
	// Name uniqueness is checked up front so the caller gets a conflict
	// naming the field rather than a bare constraint error.
	if _, err := s.fields.FindByName(ctx, f.Name); err == nil {
		return nil, apperr.Conflictf("metadata field %q", f.Name)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("lookup metadata field %q: %w", f.Name, err)
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	created, err := s.fields.Create(ctx, &f)
	if err != nil {
		return nil, fmt.Errorf("create metadata field: %w", err)
	}
	return created, nil
}

func (s *metadataService) GetField(ctx context.Context, id string) (*model.MetadataField, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	return s.fields.FindByID(ctx, id)
}

func (s *metadataService) ListFields(ctx context.Context) ([]model.MetadataField, error) {
	return s.fields.List(ctx)
}

func (s *metadataService) UpdateField(ctx context.Context, f model.MetadataField) (*model.MetadataField, error) {
	if f.ID == "" {
		return nil, ErrIDRequired
	}
	if err := checkFieldDefinition(&f); err != nil {
		return nil, err
	}
	updated, err := s.fields.Update(ctx, &f)
	if err != nil {
		return nil, fmt.Errorf("update metadata field: %w", err)
	}
	return updated, nil
}

func (s *metadataService) DeleteField(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	return s.fields.Delete(ctx, id)
}

func (s *metadataService) CreateDocumentType(ctx context.Context, t model.DocumentType, specs []repository.AssociationSpec) (*model.DocumentType, error) {
	if t.Name == "" {
		return nil, apperr.Validation("name", "is required")
	}
	if _, err := s.types.FindByName(ctx, t.Name); err == nil {
		return nil, apperr.Conflictf("document type %q", t.Name)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("lookup document type %q: %w", t.Name, err)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	created, err := s.types.Create(ctx, &t)
	if err != nil {
		return nil, fmt.Errorf("create document type: %w", err)
	}
	for _, spec := range specs {
		if err := s.types.Associate(ctx, created.ID, spec.FieldID, spec.IsRequired); err != nil {
			return nil, fmt.Errorf("associate field %s: %w", spec.FieldID, err)
		}
	}
	return s.GetDocumentType(ctx, created.ID)
}

// GetDocumentType returns the type with its field associations resolved.
func (s *metadataService) GetDocumentType(ctx context.Context, id string) (*model.DocumentType, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	t, err := s.types.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	assocs, err := s.types.ListAssociations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list associations: %w", err)
	}
	t.Fields = assocs
	return t, nil
}

func (s *metadataService) ListDocumentTypes(ctx context.Context) ([]model.DocumentType, error) {
	return s.types.List(ctx)
}

func (s *metadataService) UpdateDocumentType(ctx context.Context, t model.DocumentType) (*model.DocumentType, error) {
	if t.ID == "" {
		return nil, ErrIDRequired
	}
	if t.Name == "" {
		return nil, apperr.Validation("name", "is required")
	}
	updated, err := s.types.Update(ctx, &t)
	if err != nil {
		return nil, fmt.Errorf("update document type: %w", err)
	}
	return updated, nil
}

func (s *metadataService) DeleteDocumentType(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	return s.types.Delete(ctx, id)
}

// AssociateField adds one association after checking both sides exist, so a
// dangling field id reports NotFound instead of a bare constraint error.
func (s *metadataService) AssociateField(ctx context.Context, typeID, fieldID string, isRequired bool) error {
	if _, err := s.types.FindByID(ctx, typeID); err != nil {
		return fmt.Errorf("document type %s: %w", typeID, err)
	}
	if _, err := s.fields.FindByID(ctx, fieldID); err != nil {
		return fmt.Errorf("metadata field %s: %w", fieldID, err)
	}
	return s.types.Associate(ctx, typeID, fieldID, isRequired)
}

func (s *metadataService) DissociateField(ctx context.Context, typeID, fieldID string) error {
	if _, err := s.types.FindByID(ctx, typeID); err != nil {
		return fmt.Errorf("document type %s: %w", typeID, err)
	}
	return s.types.Dissociate(ctx, typeID, fieldID)
}

func (s *metadataService) ReplaceFieldAssociations(ctx context.Context, typeID string, specs []repository.AssociationSpec) error {
	if _, err := s.types.FindByID(ctx, typeID); err != nil {
		return fmt.Errorf("document type %s: %w", typeID, err)
	}
	return s.types.ReplaceAssociations(ctx, typeID, specs)
}

func (s *metadataService) ValidateDocumentMetadata(ctx context.Context, typeID string, values map[string]any) error {
	if _, err := s.types.FindByID(ctx, typeID); err != nil {
		return fmt.Errorf("document type %s: %w", typeID, err)
	}
	assocs, err := s.types.ListAssociations(ctx, typeID)
	if err != nil {
		return fmt.Errorf("list associations: %w", err)
	}
	return ValidateMetadata(assocs, values)
}

// checkFieldDefinition enforces the invariants of a field definition itself:
// a known type, an enum domain exactly when the type is enum, and a default
// value that passes the field's own type check.
func checkFieldDefinition(f *model.MetadataField) error {
	if f.Name == "" {
		return apperr.Validation("name", "is required")
	}
	if !f.Type.Valid() {
		return apperr.Validation(f.Name, "unknown field type %q", f.Type)
	}
	if f.Type == model.FieldTypeEnum && len(f.EnumDomain()) == 0 {
		return apperr.Validation(f.Name, "enum fields require enum values")
	}
	if f.Type != model.FieldTypeEnum && f.EnumValues != "" {
		return apperr.Validation(f.Name, "enum values are only valid for enum fields")
	}
	if f.DefaultValue != "" {
		if err := validateValue(f, coerceDefault(f)); err != nil {
			return apperr.Validation(f.Name, "default value does not match field type")
		}
	}
	return nil
}

// coerceDefault interprets the stored textual default in the field's declared
// type so it can run through the same value check as incoming metadata.
func coerceDefault(f *model.MetadataField) any {
	switch f.Type {
	case model.FieldTypeInteger:
		n, err := strconv.ParseInt(f.DefaultValue, 10, 64)
		if err != nil {
			return f.DefaultValue // fails the integer check
		}
		return n
	case model.FieldTypeBoolean:
		b, err := strconv.ParseBool(f.DefaultValue)
		if err != nil {
			return f.DefaultValue
		}
		return b
	default:
		return f.DefaultValue
	}
}
