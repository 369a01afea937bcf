package model

// Category is a node in the hierarchical classification tree. The hierarchy is
// stored as an adjacency list (parent id, child id); a category may have
// multiple parents but cycles are rejected at write time.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CategoryNode is a category together with its resolved children, produced by
// tree traversal.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children,omitempty"`
}
