package models

import "time"

// Recommendation pairs an issue kind with the remediation text the reporter
// emits for it. One entry per distinct kind, ordered by first appearance.
type Recommendation struct {
	IssueKind ViolationKind `json:"issue_kind"`
	Text      string        `json:"recommendation"`
}

// QualityReport is the terminal, immutable output of one analysis run. It is
// constructed exactly once, after every violation for the run has been
// collected, and is a pure function of the violation list.
type QualityReport struct {
	ID               string           `json:"id"`
	GeneratedAt      time.Time        `json:"generated_at"`
	OverallScore     int              `json:"overall_score"`
	TotalIssues      int              `json:"total_issues"`
	IssuesBySeverity map[Severity]int `json:"issues_by_severity"`
	Violations       []Violation      `json:"violations"`
	Recommendations  []Recommendation `json:"recommendations"`
}

// ToMap flattens the report into plain nested maps and slices so any
// consumer (CLI printer, HTTP response, UI renderer) can render it without
// knowing this package's types.
func (r *QualityReport) ToMap() map[string]interface{} {
	severities := make(map[string]interface{}, len(r.IssuesBySeverity))
	for sev, count := range r.IssuesBySeverity {
		severities[string(sev)] = count
	}

	violations := make([]interface{}, 0, len(r.Violations))
	for _, v := range r.Violations {
		entry := map[string]interface{}{
			"severity":    string(v.Severity),
			"source_id":   v.SourceID,
			"kind":        string(v.Kind),
			"description": v.Description,
		}
		if v.RowIndex != nil {
			entry["row_index"] = *v.RowIndex
		}
		if v.FieldName != "" {
			entry["field_name"] = v.FieldName
		}
		if !v.ObservedValue.IsNull() {
			entry["observed_value"] = v.ObservedValue.Interface()
		}
		if v.ExpectedConstraint != "" {
			entry["expected_constraint"] = v.ExpectedConstraint
		}
		if v.OtherSourceID != "" {
			entry["other_source_id"] = v.OtherSourceID
		}
		if !v.OtherValue.IsNull() {
			entry["other_value"] = v.OtherValue.Interface()
		}
		violations = append(violations, entry)
	}

	recommendations := make([]interface{}, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		recommendations = append(recommendations, map[string]interface{}{
			"issue_kind":     string(rec.IssueKind),
			"recommendation": rec.Text,
		})
	}

	return map[string]interface{}{
		"id":                 r.ID,
		"generated_at":       r.GeneratedAt.Format(time.RFC3339),
		"overall_score":      r.OverallScore,
		"total_issues":       r.TotalIssues,
		"issues_by_severity": severities,
		"violations":         violations,
		"recommendations":    recommendations,
	}
}
