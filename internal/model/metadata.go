package model

import "strings"

// FieldType enumerates the declared types a metadata field can have.
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeInteger FieldType = "integer"
	FieldTypeDate    FieldType = "date"
	FieldTypeEnum    FieldType = "enum"
	FieldTypeBoolean FieldType = "boolean"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeInteger, FieldTypeDate, FieldTypeEnum, FieldTypeBoolean:
		return true
	}
	return false
}

// MetadataField is a named, typed attribute definition usable by one or more
// document types. EnumValues holds the comma-delimited enumeration domain and
// is only meaningful when Type is enum. ValidationRules is an optional JSON
// object of key->constraint pairs layered on top of the type check.
type MetadataField struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Type            FieldType `json:"field_type"`
	IsMultiValued   bool      `json:"is_multi_valued"`
	EnumValues      string    `json:"enum_values,omitempty"`
	ValidationRules string    `json:"validation_rules,omitempty"`
	DefaultValue    string    `json:"default_value,omitempty"`
}

// EnumDomain parses the comma-delimited enumeration domain, trimming
// whitespace around each member. It returns nil when no domain is configured.
func (f *MetadataField) EnumDomain() []string {
	if f.EnumValues == "" {
		return nil
	}
	parts := strings.Split(f.EnumValues, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// DocumentType is a named schema binding a set of metadata fields with
// required/optional flags.
type DocumentType struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Fields      []FieldAssociation `json:"fields,omitempty"`
}

// FieldAssociation binds one metadata field to a document type. A field may be
// associated with a type at most once.
type FieldAssociation struct {
	Field      MetadataField `json:"field"`
	IsRequired bool          `json:"is_required"`
}
