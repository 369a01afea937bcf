package model

import "time"

// Document represents a stored document together with its file pointer and
// metadata value map. This is a pure domain model with no database-specific
// dependencies or tags, usable across layers (HTTP, service, storage).
type Document struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	StoragePath    string         `json:"storage_path,omitempty"`
	FileName       string         `json:"file_name,omitempty"`
	FileSize       int64          `json:"file_size"`
	DocumentTypeID string         `json:"document_type_id,omitempty"`
	Metadata       map[string]any `json:"metadata"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// HasFile reports whether the document has an attached file. Documents created
// through the no-file path carry no storage location.
func (d *Document) HasFile() bool {
	return d.StoragePath != ""
}

// DocumentVersion is an immutable snapshot of a document's state as it was
// immediately before a mutating update. Version numbers per document form a
// gap-free increasing sequence starting at 1.
type DocumentVersion struct {
	DocumentID    string    `json:"document_id"`
	VersionNumber int       `json:"version_number"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	StoragePath   string    `json:"storage_path,omitempty"`
	FileName      string    `json:"file_name,omitempty"`
	FileSize      int64     `json:"file_size"`
	CreatedAt     time.Time `json:"created_at"`
}
