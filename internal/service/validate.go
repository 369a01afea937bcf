package service

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"docvault/internal/apperr"
	"docvault/internal/model"
)

// ValidateMetadata checks a proposed metadata value map against a document
// type's field associations. It is pure and side-effect-free; callers re-run
// it in full on every create and every metadata update.
//
// It enforces, in order: presence of every required field, rejection of keys
// not associated with the type, and type/domain/multiplicity conformance of
// every present value.
func ValidateMetadata(assocs []model.FieldAssociation, values map[string]any) error {
	byName := make(map[string]*model.MetadataField, len(assocs))
	for i := range assocs {
		a := &assocs[i]
		byName[a.Field.Name] = &a.Field
		if a.IsRequired {
			if _, ok := values[a.Field.Name]; !ok {
				return apperr.Validation(a.Field.Name, "required field is missing")
			}
		}
	}

	for name, value := range values {
		field, ok := byName[name]
		if !ok {
			// Fields not associated with the type are rejected even if they
			// exist in the registry.
			return apperr.Validation(name, "unknown metadata field")
		}
		if field.IsMultiValued {
			seq, ok := asSequence(value)
			if !ok {
				return apperr.Validation(name, "expects multiple values")
			}
			for _, elem := range seq {
				if err := validateValue(field, elem); err != nil {
					return err
				}
			}
			continue
		}
		if err := validateValue(field, value); err != nil {
			return err
		}
	}
	return nil
}

// validateValue checks one scalar value against the field's declared type and
// any structured validation rules. A nil value always passes; absence is
// handled by the required check.
func validateValue(field *model.MetadataField, value any) error {
	if value == nil {
		return nil
	}

	switch field.Type {
	case model.FieldTypeText:
		if _, ok := value.(string); !ok {
			return apperr.Validation(field.Name, "must be a string")
		}
	case model.FieldTypeInteger:
		if !isWholeNumber(value) {
			return apperr.Validation(field.Name, "must be an integer")
		}
	case model.FieldTypeDate:
		s, ok := value.(string)
		if !ok || !parseableDate(s) {
			return apperr.Validation(field.Name, "must be a valid ISO-8601 date string")
		}
	case model.FieldTypeEnum:
		domain := field.EnumDomain()
		if len(domain) == 0 {
			return apperr.Validation(field.Name, "misconfigured field: no enum values defined")
		}
		s, ok := value.(string)
		if !ok || !contains(domain, s) {
			return apperr.Validation(field.Name, "must be one of: %s", strings.Join(domain, ", "))
		}
	case model.FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			return apperr.Validation(field.Name, "must be a boolean")
		}
	default:
		return apperr.Validation(field.Name, "misconfigured field: unknown type %q", field.Type)
	}

	if field.ValidationRules != "" {
		if err := applyValidationRules(field, value); err != nil {
			return err
		}
	}
	return nil
}

// applyValidationRules evaluates the field's structured rule expression as
// constraints layered on top of the type check. Supported keys: "required"
// (redundant with the association flag, kept for parity), "min"/"max" for
// integers, "min_length"/"max_length" for text.
func applyValidationRules(field *model.MetadataField, value any) error {
	var rules map[string]any
	if err := json.Unmarshal([]byte(field.ValidationRules), &rules); err != nil {
		return apperr.Validation(field.Name, "misconfigured field: invalid validation rules")
	}

	if req, ok := rules["required"].(bool); ok && req && value == nil {
		return apperr.Validation(field.Name, "required field is missing")
	}
	if n, ok := numericValue(value); ok {
		if min, ok := numericRule(rules, "min"); ok && n < min {
			return apperr.Validation(field.Name, "must be >= %v", min)
		}
		if max, ok := numericRule(rules, "max"); ok && n > max {
			return apperr.Validation(field.Name, "must be <= %v", max)
		}
	}
	if s, ok := value.(string); ok {
		if min, ok := numericRule(rules, "min_length"); ok && float64(len(s)) < min {
			return apperr.Validation(field.Name, "must be at least %v characters", min)
		}
		if max, ok := numericRule(rules, "max_length"); ok && float64(len(s)) > max {
			return apperr.Validation(field.Name, "must be at most %v characters", max)
		}
	}
	return nil
}

func numericRule(rules map[string]any, key string) (float64, bool) {
	v, ok := rules[key]
	if !ok {
		return 0, false
	}
	return numericValue(v)
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// isWholeNumber accepts native integer types plus JSON numbers without a
// fractional part; JSON decoding hands integers over as float64.
func isWholeNumber(v any) bool {
	switch n := v.(type) {
	case int, int32, int64:
		return true
	case float64:
		return n == math.Trunc(n)
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return true
		}
		f, err := n.Float64()
		return err == nil && f == math.Trunc(f)
	}
	return false
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseableDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func asSequence(v any) ([]any, bool) {
	switch seq := v.(type) {
	case []any:
		return seq, true
	case []string:
		out := make([]any, len(seq))
		for i, s := range seq {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func contains(set []string, s string) bool {
	for _, member := range set {
		if member == s {
			return true
		}
	}
	return false
}
