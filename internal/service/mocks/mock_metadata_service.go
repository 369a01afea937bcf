package mocks

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockMetadataService struct {
	mock.Mock
}

func (m *MockMetadataService) CreateField(ctx context.Context, f model.MetadataField) (*model.MetadataField, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MetadataField), args.Error(1)
}

func (m *MockMetadataService) GetField(ctx context.Context, id string) (*model.MetadataField, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MetadataField), args.Error(1)
}

func (m *MockMetadataService) ListFields(ctx context.Context) ([]model.MetadataField, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MetadataField), args.Error(1)
}

func (m *MockMetadataService) UpdateField(ctx context.Context, f model.MetadataField) (*model.MetadataField, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MetadataField), args.Error(1)
}

func (m *MockMetadataService) DeleteField(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMetadataService) CreateDocumentType(ctx context.Context, t model.DocumentType, specs []repository.AssociationSpec) (*model.DocumentType, error) {
	args := m.Called(ctx, t, specs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentType), args.Error(1)
}

func (m *MockMetadataService) GetDocumentType(ctx context.Context, id string) (*model.DocumentType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentType), args.Error(1)
}

func (m *MockMetadataService) ListDocumentTypes(ctx context.Context) ([]model.DocumentType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentType), args.Error(1)
}

func (m *MockMetadataService) UpdateDocumentType(ctx context.Context, t model.DocumentType) (*model.DocumentType, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentType), args.Error(1)
}

func (m *MockMetadataService) DeleteDocumentType(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMetadataService) AssociateField(ctx context.Context, typeID, fieldID string, isRequired bool) error {
	args := m.Called(ctx, typeID, fieldID, isRequired)
	return args.Error(0)
}

func (m *MockMetadataService) DissociateField(ctx context.Context, typeID, fieldID string) error {
	args := m.Called(ctx, typeID, fieldID)
	return args.Error(0)
}

func (m *MockMetadataService) ReplaceFieldAssociations(ctx context.Context, typeID string, specs []repository.AssociationSpec) error {
	args := m.Called(ctx, typeID, specs)
	return args.Error(0)
}

func (m *MockMetadataService) ValidateDocumentMetadata(ctx context.Context, typeID string, values map[string]any) error {
	args := m.Called(ctx, typeID, values)
	return args.Error(0)
}
