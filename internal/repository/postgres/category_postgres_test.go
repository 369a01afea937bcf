package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"docvault/internal/apperr"
	"docvault/internal/model"
)

func TestCategoryPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCategoryPostgres(db)
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO categories").
			WithArgs("c-1", "Finance", "").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).
				AddRow("c-1", "Finance", ""))

		cat, err := repo.Create(ctx, &model.Category{ID: "c-1", Name: "Finance"})

		assert.NoError(t, err)
		assert.Equal(t, "Finance", cat.Name)
	})

	t.Run("duplicate name", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO categories").
			WithArgs("c-2", "Finance", "").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := repo.Create(ctx, &model.Category{ID: "c-2", Name: "Finance"})

		assert.ErrorIs(t, err, apperr.ErrConflict)
	})
}

func TestCategoryPostgres_FindByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCategoryPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, description FROM categories WHERE name").
			WithArgs("Finance").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).
				AddRow("c-1", "Finance", ""))

		cat, err := repo.FindByName(ctx, "Finance")

		assert.NoError(t, err)
		assert.Equal(t, "c-1", cat.ID)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, description FROM categories WHERE name").
			WithArgs("Nope").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}))

		_, err := repo.FindByName(ctx, "Nope")

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestCategoryPostgres_Edges(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCategoryPostgres(db)
	ctx := context.Background()

	t.Run("add edge", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO category_hierarchy").
			WithArgs("parent", "child").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.AddEdge(ctx, "parent", "child"))
	})

	t.Run("re-adding an edge is a no-op", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO category_hierarchy").
			WithArgs("parent", "child").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.AddEdge(ctx, "parent", "child"))
	})

	t.Run("removing a missing edge is a no-op", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM category_hierarchy").
			WithArgs("parent", "stranger").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.RemoveEdge(ctx, "parent", "stranger"))
	})
}

func TestCategoryPostgres_ListChildren(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCategoryPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM category_hierarchy h").
		WithArgs("parent").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).
			AddRow("a", "Accounting", "").
			AddRow("b", "Budget", ""))

	children, err := repo.ListChildren(ctx, "parent")

	assert.NoError(t, err)
	assert.Len(t, children, 2)
	assert.Equal(t, "Accounting", children[0].Name)
}

func TestCategoryPostgres_IsReachable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCategoryPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("WITH RECURSIVE reach").
		WithArgs("root", "grandchild").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	reachable, err := repo.IsReachable(ctx, "root", "grandchild")

	assert.NoError(t, err)
	assert.True(t, reachable)
}
