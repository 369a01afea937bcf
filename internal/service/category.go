package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"docvault/internal/apperr"
	"docvault/internal/model"
	"docvault/internal/repository"
)

// ErrCategoryCycle is returned when linking two categories would create a
// cycle in the hierarchy.
var ErrCategoryCycle = errors.New("category hierarchy cycle")

// CategoryService manages the hierarchical classification tree. Cycles are
// rejected when an edge is written; traversal still guards with a visited set
// so a pre-existing bad edge cannot loop it.
type CategoryService interface {
	Create(ctx context.Context, c model.Category) (*model.Category, error)
	Get(ctx context.Context, id string) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	Delete(ctx context.Context, id string) error

	// AddChild links child under parent, failing with ErrCategoryCycle when
	// parent is already reachable from child.
	AddChild(ctx context.Context, parentID, childID string) error

	RemoveChild(ctx context.Context, parentID, childID string) error

	// Tree resolves the subtree rooted at id.
	Tree(ctx context.Context, id string) (*model.CategoryNode, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService constructs a new CategoryService.
func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, c model.Category) (*model.Category, error) {
	if c.Name == "" {
		return nil, errors.New("category name is required")
	}
	if _, err := s.repo.FindByName(ctx, c.Name); err == nil {
		return nil, apperr.Conflictf("category %q", c.Name)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("lookup category %q: %w", c.Name, err)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return s.repo.Create(ctx, &c)
}

func (s *categoryService) Get(ctx context.Context, id string) (*model.Category, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	return s.repo.FindByID(ctx, id)
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.List(ctx)
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	return s.repo.Delete(ctx, id)
}

func (s *categoryService) AddChild(ctx context.Context, parentID, childID string) error {
	if parentID == "" || childID == "" {
		return ErrIDRequired
	}
	if parentID == childID {
		return ErrCategoryCycle
	}
	if _, err := s.repo.FindByID(ctx, parentID); err != nil {
		return fmt.Errorf("parent %s: %w", parentID, err)
	}
	if _, err := s.repo.FindByID(ctx, childID); err != nil {
		return fmt.Errorf("child %s: %w", childID, err)
	}
	// Linking is only safe when the parent is not already below the child.
	reachable, err := s.repo.IsReachable(ctx, childID, parentID)
	if err != nil {
		return fmt.Errorf("check reachability: %w", err)
	}
	if reachable {
		return ErrCategoryCycle
	}
	return s.repo.AddEdge(ctx, parentID, childID)
}

func (s *categoryService) RemoveChild(ctx context.Context, parentID, childID string) error {
	if parentID == "" || childID == "" {
		return ErrIDRequired
	}
	return s.repo.RemoveEdge(ctx, parentID, childID)
}

func (s *categoryService) Tree(ctx context.Context, id string) (*model.CategoryNode, error) {
	root, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	visited := map[string]bool{}
	return s.buildTree(ctx, *root, visited)
}

func (s *categoryService) buildTree(ctx context.Context, c model.Category, visited map[string]bool) (*model.CategoryNode, error) {
	visited[c.ID] = true
	node := &model.CategoryNode{Category: c}
	children, err := s.repo.ListChildren(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list children of %s: %w", c.ID, err)
	}
	for _, child := range children {
		if visited[child.ID] {
			continue
		}
		childNode, err := s.buildTree(ctx, child, visited)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}
