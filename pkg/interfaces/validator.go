package interfaces

import (
	"github.com/confaudit/confaudit/pkg/models"
)

// Validator checks one record set against a rule set and reports every
// violation it finds. Implementations must be pure functions of their inputs
// and emit violations in deterministic order (row index, then field order).
type Validator interface {
	// GetName returns a human-readable name for the validator.
	GetName() string

	// Validate returns the ordered violation list for the record set.
	Validate(recordSet *models.RecordSet, rules *models.RuleSet) []models.Violation
}
