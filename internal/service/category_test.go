package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"docvault/internal/apperr"
	"docvault/internal/model"
	repoMocks "docvault/internal/repository/mocks"
)

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a category", func(t *testing.T) {
		mRepo := new(repoMocks.MockCategoryRepository)
		svc := NewCategoryService(mRepo)
		mRepo.On("FindByName", ctx, "Finance").Return(nil, apperr.ErrNotFound)
		mRepo.On("Create", ctx, mock.MatchedBy(func(c *model.Category) bool {
			return c.ID != "" && c.Name == "Finance"
		})).Return(&model.Category{ID: "c-1", Name: "Finance"}, nil)

		created, err := svc.Create(ctx, model.Category{Name: "Finance"})
		assert.NoError(t, err)
		assert.Equal(t, "c-1", created.ID)
		mRepo.AssertExpectations(t)
	})

	t.Run("duplicate name surfaces as conflict", func(t *testing.T) {
		mRepo := new(repoMocks.MockCategoryRepository)
		svc := NewCategoryService(mRepo)
		mRepo.On("FindByName", ctx, "Finance").Return(&model.Category{ID: "c-1", Name: "Finance"}, nil)

		_, err := svc.Create(ctx, model.Category{Name: "Finance"})
		assert.ErrorIs(t, err, apperr.ErrConflict)
		mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("requires a name", func(t *testing.T) {
		mRepo := new(repoMocks.MockCategoryRepository)
		svc := NewCategoryService(mRepo)

		_, err := svc.Create(ctx, model.Category{})
		assert.Error(t, err)
		mRepo.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything)
	})
}

func TestCategoryService_AddChild(t *testing.T) {
	ctx := context.Background()

	t.Run("links a child under a parent", func(t *testing.T) {
		mRepo := new(repoMocks.MockCategoryRepository)
		svc := NewCategoryService(mRepo)
		mRepo.On("FindByID", ctx, "parent").Return(&model.Category{ID: "parent"}, nil)
		mRepo.On("FindByID", ctx, "child").Return(&model.Category{ID: "child"}, nil)
		mRepo.On("IsReachable", ctx, "child", "parent").Return(false, nil)
		mRepo.On("AddEdge", ctx, "parent", "child").Return(nil)

		assert.NoError(t, svc.AddChild(ctx, "parent", "child"))
		mRepo.AssertExpectations(t)
	})

	t.Run("self link is a cycle", func(t *testing.T) {
		mRepo := new(repoMocks.MockCategoryRepository)
		svc := NewCategoryService(mRepo)

		assert.ErrorIs(t, svc.AddChild(ctx, "a", "a"), ErrCategoryCycle)
		mRepo.AssertNotCalled(t, "AddEdge", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("linking an ancestor below its descendant is a cycle", func(t *testing.T) {
		mRepo := new(repoMocks.MockCategoryRepository)
		svc := NewCategoryService(mRepo)
		mRepo.On("FindByID", ctx, "grandchild").Return(&model.Category{ID: "grandchild"}, nil)
		mRepo.On("FindByID", ctx, "root").Return(&model.Category{ID: "root"}, nil)
		mRepo.On("IsReachable", ctx, "root", "grandchild").Return(true, nil)

		assert.ErrorIs(t, svc.AddChild(ctx, "grandchild", "root"), ErrCategoryCycle)
		mRepo.AssertNotCalled(t, "AddEdge", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing parent", func(t *testing.T) {
		mRepo := new(repoMocks.MockCategoryRepository)
		svc := NewCategoryService(mRepo)
		mRepo.On("FindByID", ctx, "missing").Return(nil, apperr.ErrNotFound)

		assert.ErrorIs(t, svc.AddChild(ctx, "missing", "child"), apperr.ErrNotFound)
	})
}

func TestCategoryService_Tree(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves a nested subtree", func(t *testing.T) {
		mRepo := new(repoMocks.MockCategoryRepository)
		svc := NewCategoryService(mRepo)
		mRepo.On("FindByID", ctx, "root").Return(&model.Category{ID: "root", Name: "Root"}, nil)
		mRepo.On("ListChildren", ctx, "root").Return([]model.Category{
			{ID: "a", Name: "A"},
			{ID: "b", Name: "B"},
		}, nil)
		mRepo.On("ListChildren", ctx, "a").Return([]model.Category{
			{ID: "a1", Name: "A1"},
		}, nil)
		mRepo.On("ListChildren", ctx, "a1").Return(nil, nil)
		mRepo.On("ListChildren", ctx, "b").Return(nil, nil)

		tree, err := svc.Tree(ctx, "root")
		assert.NoError(t, err)
		assert.Equal(t, "Root", tree.Name)
		assert.Len(t, tree.Children, 2)
		assert.Equal(t, "A1", tree.Children[0].Children[0].Name)
	})

	t.Run("a stray cyclic edge does not loop traversal", func(t *testing.T) {
		mRepo := new(repoMocks.MockCategoryRepository)
		svc := NewCategoryService(mRepo)
		mRepo.On("FindByID", ctx, "root").Return(&model.Category{ID: "root", Name: "Root"}, nil)
		// root -> a -> root: the back edge must be skipped.
		mRepo.On("ListChildren", ctx, "root").Return([]model.Category{{ID: "a", Name: "A"}}, nil)
		mRepo.On("ListChildren", ctx, "a").Return([]model.Category{{ID: "root", Name: "Root"}}, nil)

		tree, err := svc.Tree(ctx, "root")
		assert.NoError(t, err)
		assert.Len(t, tree.Children, 1)
		assert.Empty(t, tree.Children[0].Children)
	})
}
