package postgres

import (
	"context"
	"database/sql"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// CategoryPostgres is a PostgreSQL implementation of
// repository.CategoryRepository. The hierarchy is an adjacency list in
// category_hierarchy; reachability uses a recursive CTE.
type CategoryPostgres struct {
	db *sql.DB
}

// NewCategoryPostgres creates a new CategoryPostgres repository.
func NewCategoryPostgres(db *sql.DB) *CategoryPostgres {
	return &CategoryPostgres{db: db}
}

var _ repository.CategoryRepository = (*CategoryPostgres)(nil)

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new category row.
func (r *CategoryPostgres) Create(ctx context.Context, c *model.Category) (*model.Category, error) {
	const q = `
		INSERT INTO categories (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, description
	`
	out, err := scanCategory(r.db.QueryRowContext(ctx, q, c.ID, c.Name, c.Description))
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// FindByID fetches a category by its ID.
func (r *CategoryPostgres) FindByID(ctx context.Context, id string) (*model.Category, error) {
	const q = `SELECT id, name, description FROM categories WHERE id = $1`
	c, err := scanCategory(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

// FindByName fetches a category by its unique name.
func (r *CategoryPostgres) FindByName(ctx context.Context, name string) (*model.Category, error) {
	const q = `SELECT id, name, description FROM categories WHERE name = $1`
	c, err := scanCategory(r.db.QueryRowContext(ctx, q, name))
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

// List returns all categories ordered by name.
func (r *CategoryPostgres) List(ctx context.Context) ([]model.Category, error) {
	const q = `SELECT id, name, description FROM categories ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cats := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cats, nil
}

// Delete removes a category by ID. Hierarchy edges cascade.
func (r *CategoryPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM categories WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapErr(sql.ErrNoRows)
	}
	return nil
}

// AddEdge links child under parent; re-adding an existing edge is a no-op.
func (r *CategoryPostgres) AddEdge(ctx context.Context, parentID, childID string) error {
	const q = `
		INSERT INTO category_hierarchy (parent_id, child_id)
		VALUES ($1, $2)
		ON CONFLICT (parent_id, child_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, q, parentID, childID); err != nil {
		return mapErr(err)
	}
	return nil
}

// RemoveEdge unlinks child from parent; removing a missing edge is a no-op.
func (r *CategoryPostgres) RemoveEdge(ctx context.Context, parentID, childID string) error {
	const q = `DELETE FROM category_hierarchy WHERE parent_id = $1 AND child_id = $2`
	if _, err := r.db.ExecContext(ctx, q, parentID, childID); err != nil {
		return err
	}
	return nil
}

// ListChildren returns the direct children of a category ordered by name.
func (r *CategoryPostgres) ListChildren(ctx context.Context, id string) ([]model.Category, error) {
	const q = `
		SELECT c.id, c.name, c.description
		FROM category_hierarchy h
		JOIN categories c ON c.id = h.child_id
		WHERE h.parent_id = $1
		ORDER BY c.name ASC
	`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cats := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cats, nil
}

// IsReachable walks parent->child edges from ancestor and reports whether
// descendant is reachable. Used for write-time cycle prevention.
func (r *CategoryPostgres) IsReachable(ctx context.Context, ancestorID, descendantID string) (bool, error) {
	const q = `
		WITH RECURSIVE reach (id) AS (
			SELECT child_id FROM category_hierarchy WHERE parent_id = $1
			UNION
			SELECT h.child_id FROM category_hierarchy h JOIN reach r ON h.parent_id = r.id
		)
		SELECT EXISTS (SELECT 1 FROM reach WHERE id = $2)
	`
	var reachable bool
	if err := r.db.QueryRowContext(ctx, q, ancestorID, descendantID).Scan(&reachable); err != nil {
		return false, err
	}
	return reachable, nil
}
