package repository

import (
	"context"

	"docvault/internal/model"
)

// CategoryRepository defines data access for the category tree. The hierarchy
// is an adjacency list; reachability questions are answered here so the
// service can reject cycles at write time.
type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) (*model.Category, error)
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	Delete(ctx context.Context, id string) error

	// AddEdge links child under parent. Adding an existing edge is a no-op.
	AddEdge(ctx context.Context, parentID, childID string) error

	// RemoveEdge unlinks child from parent. Removing a missing edge is a no-op.
	RemoveEdge(ctx context.Context, parentID, childID string) error

	// ListChildren returns the direct children of a category ordered by name.
	ListChildren(ctx context.Context, id string) ([]model.Category, error)

	// IsReachable reports whether descendant can be reached from ancestor by
	// following parent->child edges.
	IsReachable(ctx context.Context, ancestorID, descendantID string) (bool, error)
}
