package quality

import (
	"github.com/confaudit/confaudit/pkg/models"
)

// recommendationTable maps every violation kind to its fixed remediation
// text. Deduplication happens per kind, not per violation instance.
var recommendationTable = map[models.ViolationKind]string{
	models.KindMissingRequired:  "Implement data validation at entry point",
	models.KindTypeMismatch:     "Enforce field types during data entry",
	models.KindOutOfRange:       "Add range checks before data submission",
	models.KindInvalidEnum:      "Restrict field input to the approved value list",
	models.KindFormatViolation:  "Standardize date/format conventions",
	models.KindMissingRow:       "Implement data synchronization monitoring",
	models.KindExtraRow:         "Implement data synchronization monitoring",
	models.KindValueMismatch:    "Strengthen input validation",
	models.KindColumnMismatch:   "Standardize schema across data sources",
	models.KindSourceUnreadable: "Verify source file integrity and format before analysis",
}

const defaultRecommendation = "Review data quality processes for this issue type"

// RecommendationFor returns the remediation text for a violation kind.
func RecommendationFor(kind models.ViolationKind) string {
	if text, ok := recommendationTable[kind]; ok {
		return text
	}
	return defaultRecommendation
}
