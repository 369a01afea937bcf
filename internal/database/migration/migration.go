package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_metadata_fields",
		SQL: `CREATE TABLE IF NOT EXISTS metadata_fields (
  id               UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name             TEXT        NOT NULL UNIQUE,
  description      TEXT        NOT NULL DEFAULT '',
  field_type       TEXT        NOT NULL CHECK (field_type IN ('text', 'integer', 'date', 'enum', 'boolean')),
  is_multi_valued  BOOLEAN     NOT NULL DEFAULT FALSE,
  enum_values      TEXT        NOT NULL DEFAULT '',
  validation_rules TEXT        NOT NULL DEFAULT '',
  default_value    TEXT        NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_document_types",
		SQL: `CREATE TABLE IF NOT EXISTS document_types (
  id          UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  name        TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_document_type_fields",
		SQL: `CREATE TABLE IF NOT EXISTS document_type_fields (
  document_type_id  UUID    NOT NULL REFERENCES document_types (id) ON DELETE CASCADE,
  metadata_field_id UUID    NOT NULL REFERENCES metadata_fields (id) ON DELETE CASCADE,
  is_required       BOOLEAN NOT NULL DEFAULT FALSE,
  position          INT     NOT NULL DEFAULT 0,
  PRIMARY KEY (document_type_id, metadata_field_id)
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id               UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  title            TEXT        NOT NULL,
  content          TEXT        NOT NULL DEFAULT '',
  storage_path     TEXT        UNIQUE,
  file_name        TEXT        NOT NULL DEFAULT '',
  file_size        BIGINT      NOT NULL DEFAULT 0 CHECK (file_size >= 0),
  document_type_id UUID        REFERENCES document_types (id),
  metadata         JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_document_versions",
		SQL: `CREATE TABLE IF NOT EXISTS document_versions (
  document_id    UUID        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  version_number INT         NOT NULL CHECK (version_number >= 1),
  title          TEXT        NOT NULL,
  content        TEXT        NOT NULL DEFAULT '',
  storage_path   TEXT,
  file_name      TEXT        NOT NULL DEFAULT '',
  file_size      BIGINT      NOT NULL DEFAULT 0,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (document_id, version_number)
);`,
	},
	{
		Name: "create_table_categories",
		SQL: `CREATE TABLE IF NOT EXISTS categories (
  id          UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  name        TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_category_hierarchy",
		SQL: `CREATE TABLE IF NOT EXISTS category_hierarchy (
  parent_id UUID NOT NULL REFERENCES categories (id) ON DELETE CASCADE,
  child_id  UUID NOT NULL REFERENCES categories (id) ON DELETE CASCADE,
  PRIMARY KEY (parent_id, child_id)
);`,
	},
	{
		Name: "create_index_documents_title",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_title ON documents (lower(title));`,
	},
	{
		Name: "create_index_documents_file_name",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_file_name ON documents (lower(file_name));`,
	},
	{
		Name: "create_index_documents_metadata",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_metadata ON documents USING gin (metadata);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at);`,
	},
}

// EnsureMigrated checks if the 'documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.documents') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
