package models

// FieldType is the expected type a field rule coerces values toward.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeFloat   FieldType = "float"
	FieldTypeBoolean FieldType = "boolean"
)

// FieldRule describes the validation contract for one field name. Fields
// with no matching rule are unvalidated by design.
type FieldRule struct {
	Required      bool      `json:"required" yaml:"required"`
	Type          FieldType `json:"type,omitempty" yaml:"type"`
	Min           *float64  `json:"min,omitempty" yaml:"min"`
	Max           *float64  `json:"max,omitempty" yaml:"max"`
	Pattern       string    `json:"pattern,omitempty" yaml:"pattern"`
	AllowedValues []string  `json:"allowed_values,omitempty" yaml:"allowed_values"`
}

// HasRange reports whether the rule declares any numeric bound.
func (r FieldRule) HasRange() bool {
	return r.Min != nil || r.Max != nil
}

// RuleSet is the full rule configuration for an analysis run: per-field
// validation rules, the identifier used for cross-source matching, and the
// alias table that maps differently named but equivalent columns onto one
// canonical field name.
type RuleSet struct {
	FieldRules      map[string]FieldRule `json:"field_rules" yaml:"field_rules"`
	IdentifierField string               `json:"identifier_field,omitempty" yaml:"identifier_field"`
	FieldAliases    map[string][]string  `json:"field_aliases,omitempty" yaml:"field_aliases"`
}

// RunOptions carries the per-run switches recognized by the pipeline.
type RunOptions struct {
	// StrictTypeCoercion fails numeric-looking strings against numeric rules
	// instead of coercing them.
	StrictTypeCoercion bool `json:"strict_type_coercion" yaml:"strict_type_coercion"`
	// CaseSensitiveIdentifiers controls identifier matching during
	// reconciliation.
	CaseSensitiveIdentifiers bool `json:"case_sensitive_identifiers" yaml:"case_sensitive_identifiers"`
}
