package models

// Severity grades how badly a violation hurts data quality.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// ViolationKind names the category of a detected data-quality problem.
type ViolationKind string

const (
	KindMissingRequired  ViolationKind = "missing_required"
	KindTypeMismatch     ViolationKind = "type_mismatch"
	KindOutOfRange       ViolationKind = "out_of_range"
	KindInvalidEnum      ViolationKind = "invalid_enum"
	KindFormatViolation  ViolationKind = "format_violation"
	KindMissingRow       ViolationKind = "missing_row"
	KindExtraRow         ViolationKind = "extra_row"
	KindValueMismatch    ViolationKind = "value_mismatch"
	KindColumnMismatch   ViolationKind = "column_mismatch"
	KindSourceUnreadable ViolationKind = "source_unreadable"
)

// Violation is one detected data-quality problem with full provenance.
// Violations are immutable once created; the run's ordered violation list is
// the primary intermediate artifact between the detection stages and the
// scorer.
type Violation struct {
	Severity           Severity      `json:"severity"`
	SourceID           string        `json:"source_id"`
	RowIndex           *int          `json:"row_index,omitempty"`
	FieldName          string        `json:"field_name,omitempty"`
	Kind               ViolationKind `json:"kind"`
	Description        string        `json:"description"`
	ObservedValue      Value         `json:"observed_value,omitempty"`
	ExpectedConstraint string        `json:"expected_constraint,omitempty"`

	// OtherSourceID and OtherValue carry the counterpart side for
	// cross-source violations (value_mismatch, missing_row, column_mismatch).
	OtherSourceID string `json:"other_source_id,omitempty"`
	OtherValue    Value  `json:"other_value,omitempty"`
}

// RowRef builds a row index pointer for record-level violations. Source- and
// schema-level violations leave RowIndex nil.
func RowRef(i int) *int {
	return &i
}
