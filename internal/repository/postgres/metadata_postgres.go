package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// MetadataFieldPostgres is a PostgreSQL implementation of
// repository.MetadataFieldRepository.
type MetadataFieldPostgres struct {
	db *sql.DB
}

// NewMetadataFieldPostgres creates a new MetadataFieldPostgres repository.
func NewMetadataFieldPostgres(db *sql.DB) *MetadataFieldPostgres {
	return &MetadataFieldPostgres{db: db}
}

var _ repository.MetadataFieldRepository = (*MetadataFieldPostgres)(nil)

const fieldColumns = `id, name, description, field_type, is_multi_valued, enum_values, validation_rules, default_value`

func scanField(row interface{ Scan(...any) error }) (*model.MetadataField, error) {
	var f model.MetadataField
	if err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Description,
		&f.Type,
		&f.IsMultiValued,
		&f.EnumValues,
		&f.ValidationRules,
		&f.DefaultValue,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a new field definition. The unique index on name turns
// duplicates into apperr.ErrConflict.
func (r *MetadataFieldPostgres) Create(ctx context.Context, f *model.MetadataField) (*model.MetadataField, error) {
	const q = `
		INSERT INTO metadata_fields (id, name, description, field_type, is_multi_valued, enum_values, validation_rules, default_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + fieldColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.Name,
		f.Description,
		f.Type,
		f.IsMultiValued,
		f.EnumValues,
		f.ValidationRules,
		f.DefaultValue,
	)
	out, err := scanField(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// FindByID fetches a field definition by its ID.
func (r *MetadataFieldPostgres) FindByID(ctx context.Context, id string) (*model.MetadataField, error) {
	const q = `SELECT ` + fieldColumns + ` FROM metadata_fields WHERE id = $1`
	f, err := scanField(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return f, nil
}

// FindByName fetches a field definition by its unique name.
func (r *MetadataFieldPostgres) FindByName(ctx context.Context, name string) (*model.MetadataField, error) {
	const q = `SELECT ` + fieldColumns + ` FROM metadata_fields WHERE name = $1`
	f, err := scanField(r.db.QueryRowContext(ctx, q, name))
	if err != nil {
		return nil, mapErr(err)
	}
	return f, nil
}

// List returns all field definitions ordered by name.
func (r *MetadataFieldPostgres) List(ctx context.Context) ([]model.MetadataField, error) {
	const q = `SELECT ` + fieldColumns + ` FROM metadata_fields ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := make([]model.MetadataField, 0)
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fields, nil
}

// Update rewrites the mutable attributes of a field definition. The name is
// part of the update; renaming into an existing name is a Conflict.
func (r *MetadataFieldPostgres) Update(ctx context.Context, f *model.MetadataField) (*model.MetadataField, error) {
	const q = `
		UPDATE metadata_fields
		SET name = $2, description = $3, field_type = $4, is_multi_valued = $5, enum_values = $6, validation_rules = $7, default_value = $8
		WHERE id = $1
		RETURNING ` + fieldColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.Name,
		f.Description,
		f.Type,
		f.IsMultiValued,
		f.EnumValues,
		f.ValidationRules,
		f.DefaultValue,
	)
	out, err := scanField(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// Delete removes a field definition by ID.
func (r *MetadataFieldPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM metadata_fields WHERE id = $1`
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

// DocumentTypePostgres is a PostgreSQL implementation of
// repository.DocumentTypeRepository.
type DocumentTypePostgres struct {
	db *sql.DB
}

// NewDocumentTypePostgres creates a new DocumentTypePostgres repository.
func NewDocumentTypePostgres(db *sql.DB) *DocumentTypePostgres {
	return &DocumentTypePostgres{db: db}
}

var _ repository.DocumentTypeRepository = (*DocumentTypePostgres)(nil)

func scanType(row interface{ Scan(...any) error }) (*model.DocumentType, error) {
	var t model.DocumentType
	if err := row.Scan(&t.ID, &t.Name, &t.Description); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new document type row.
func (r *DocumentTypePostgres) Create(ctx context.Context, t *model.DocumentType) (*model.DocumentType, error) {
	const q = `
		INSERT INTO document_types (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, description
	`
	out, err := scanType(r.db.QueryRowContext(ctx, q, t.ID, t.Name, t.Description))
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// FindByID fetches a document type by its ID.
func (r *DocumentTypePostgres) FindByID(ctx context.Context, id string) (*model.DocumentType, error) {
	const q = `SELECT id, name, description FROM document_types WHERE id = $1`
	t, err := scanType(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

// FindByName fetches a document type by its unique name.
func (r *DocumentTypePostgres) FindByName(ctx context.Context, name string) (*model.DocumentType, error) {
	const q = `SELECT id, name, description FROM document_types WHERE name = $1`
	t, err := scanType(r.db.QueryRowContext(ctx, q, name))
	if err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

// List returns all document types ordered by name.
func (r *DocumentTypePostgres) List(ctx context.Context) ([]model.DocumentType, error) {
	const q = `SELECT id, name, description FROM document_types ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]model.DocumentType, 0)
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return types, nil
}

// Update rewrites name and description of a document type.
func (r *DocumentTypePostgres) Update(ctx context.Context, t *model.DocumentType) (*model.DocumentType, error) {
	const q = `
		UPDATE document_types
		SET name = $2, description = $3
		WHERE id = $1
		RETURNING id, name, description
	`
	out, err := scanType(r.db.QueryRowContext(ctx, q, t.ID, t.Name, t.Description))
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// Delete removes a document type by ID. Associations cascade.
func (r *DocumentTypePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM document_types WHERE id = $1`
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

// Associate adds a field association. ON CONFLICT DO NOTHING makes re-adding
// an existing pair a no-op; a dangling type or field id trips the foreign key
// and surfaces as apperr.ErrNotFound.
func (r *DocumentTypePostgres) Associate(ctx context.Context, typeID, fieldID string, isRequired bool) error {
	const q = `
		INSERT INTO document_type_fields (document_type_id, metadata_field_id, is_required, position)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position), 0) + 1 FROM document_type_fields WHERE document_type_id = $1))
		ON CONFLICT (document_type_id, metadata_field_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, q, typeID, fieldID, isRequired); err != nil {
		return mapErr(err)
	}
	return nil
}

// Dissociate removes a field association. Removing a missing pair is a no-op.
func (r *DocumentTypePostgres) Dissociate(ctx context.Context, typeID, fieldID string) error {
	const q = `DELETE FROM document_type_fields WHERE document_type_id = $1 AND metadata_field_id = $2`
	if _, err := r.db.ExecContext(ctx, q, typeID, fieldID); err != nil {
		return err
	}
	return nil
}

// ReplaceAssociations clears and re-adds the full association set in one
// transaction so no partial state is ever visible.
func (r *DocumentTypePostgres) ReplaceAssociations(ctx context.Context, typeID string, specs []repository.AssociationSpec) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const qClear = `DELETE FROM document_type_fields WHERE document_type_id = $1`
	if _, err := tx.ExecContext(ctx, qClear, typeID); err != nil {
		return fmt.Errorf("clear associations: %w", err)
	}

	const qAdd = `
		INSERT INTO document_type_fields (document_type_id, metadata_field_id, is_required, position)
		VALUES ($1, $2, $3, $4)
	`
	for i, spec := range specs {
		if _, err := tx.ExecContext(ctx, qAdd, typeID, spec.FieldID, spec.IsRequired, i+1); err != nil {
			return fmt.Errorf("add association: %w", mapErr(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListAssociations returns the type's associations with their field
// definitions resolved, in stored order.
func (r *DocumentTypePostgres) ListAssociations(ctx context.Context, typeID string) ([]model.FieldAssociation, error) {
	const q = `
		SELECT f.id, f.name, f.description, f.field_type, f.is_multi_valued, f.enum_values, f.validation_rules, f.default_value, a.is_required
		FROM document_type_fields a
		JOIN metadata_fields f ON f.id = a.metadata_field_id
		WHERE a.document_type_id = $1
		ORDER BY a.position ASC
	`
	rows, err := r.db.QueryContext(ctx, q, typeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assocs := make([]model.FieldAssociation, 0)
	for rows.Next() {
		var a model.FieldAssociation
		if err := rows.Scan(
			&a.Field.ID,
			&a.Field.Name,
			&a.Field.Description,
			&a.Field.Type,
			&a.Field.IsMultiValued,
			&a.Field.EnumValues,
			&a.Field.ValidationRules,
			&a.Field.DefaultValue,
			&a.IsRequired,
		); err != nil {
			return nil, err
		}
		assocs = append(assocs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assocs, nil
}
