package mocks

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockMetadataFieldRepository struct {
	mock.Mock
}

func (m *MockMetadataFieldRepository) Create(ctx context.Context, f *model.MetadataField) (*model.MetadataField, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MetadataField), args.Error(1)
}

func (m *MockMetadataFieldRepository) FindByID(ctx context.Context, id string) (*model.MetadataField, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MetadataField), args.Error(1)
}

func (m *MockMetadataFieldRepository) FindByName(ctx context.Context, name string) (*model.MetadataField, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MetadataField), args.Error(1)
}

func (m *MockMetadataFieldRepository) List(ctx context.Context) ([]model.MetadataField, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MetadataField), args.Error(1)
}

func (m *MockMetadataFieldRepository) Update(ctx context.Context, f *model.MetadataField) (*model.MetadataField, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MetadataField), args.Error(1)
}

func (m *MockMetadataFieldRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockDocumentTypeRepository struct {
	mock.Mock
}

func (m *MockDocumentTypeRepository) Create(ctx context.Context, t *model.DocumentType) (*model.DocumentType, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentType), args.Error(1)
}

func (m *MockDocumentTypeRepository) FindByID(ctx context.Context, id string) (*model.DocumentType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentType), args.Error(1)
}

func (m *MockDocumentTypeRepository) FindByName(ctx context.Context, name string) (*model.DocumentType, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentType), args.Error(1)
}

func (m *MockDocumentTypeRepository) List(ctx context.Context) ([]model.DocumentType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentType), args.Error(1)
}

func (m *MockDocumentTypeRepository) Update(ctx context.Context, t *model.DocumentType) (*model.DocumentType, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentType), args.Error(1)
}

func (m *MockDocumentTypeRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentTypeRepository) Associate(ctx context.Context, typeID, fieldID string, isRequired bool) error {
	args := m.Called(ctx, typeID, fieldID, isRequired)
	return args.Error(0)
}

func (m *MockDocumentTypeRepository) Dissociate(ctx context.Context, typeID, fieldID string) error {
	args := m.Called(ctx, typeID, fieldID)
	return args.Error(0)
}

func (m *MockDocumentTypeRepository) ReplaceAssociations(ctx context.Context, typeID string, specs []repository.AssociationSpec) error {
	args := m.Called(ctx, typeID, specs)
	return args.Error(0)
}

func (m *MockDocumentTypeRepository) ListAssociations(ctx context.Context, typeID string) ([]model.FieldAssociation, error) {
	args := m.Called(ctx, typeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FieldAssociation), args.Error(1)
}
