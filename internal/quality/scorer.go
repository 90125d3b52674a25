package quality

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/confaudit/confaudit/pkg/constants"
	"github.com/confaudit/confaudit/pkg/models"
)

// severityWeights are the points deducted from 100 per violation. The score
// depends only on the multiset of severities, never on the order violations
// were collected.
var severityWeights = map[models.Severity]int{
	models.SeverityCritical: constants.WeightCritical,
	models.SeverityHigh:     constants.WeightHigh,
	models.SeverityMedium:   constants.WeightMedium,
	models.SeverityLow:      constants.WeightLow,
}

// Scorer aggregates a run's violations into the terminal quality report.
type Scorer struct {
	logger *logrus.Logger
}

// NewScorer creates a quality scorer
func NewScorer(logger *logrus.Logger) *Scorer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scorer{logger: logger}
}

// Score builds the QualityReport for a run's full violation list. The report
// is constructed once and never mutated: score, severity tallies, and
// recommendations are all pure functions of the input.
func (s *Scorer) Score(violations []models.Violation) *models.QualityReport {
	report := &models.QualityReport{
		ID:               uuid.NewString(),
		GeneratedAt:      time.Now().UTC(),
		OverallScore:     constants.MaxQualityScore,
		TotalIssues:      len(violations),
		IssuesBySeverity: make(map[models.Severity]int),
		Violations:       append([]models.Violation(nil), violations...),
		Recommendations:  buildRecommendations(violations),
	}

	deducted := 0
	for _, v := range violations {
		report.IssuesBySeverity[v.Severity]++
		deducted += severityWeights[v.Severity]
	}

	score := constants.MaxQualityScore - deducted
	if score < 0 {
		score = 0
	}
	report.OverallScore = score

	s.logger.WithFields(logrus.Fields{
		"report_id":     report.ID,
		"overall_score": report.OverallScore,
		"total_issues":  report.TotalIssues,
	}).Info("Quality report generated")

	return report
}

// buildRecommendations emits one recommendation per distinct violation kind,
// ordered by the kind's first appearance in the violation list.
func buildRecommendations(violations []models.Violation) []models.Recommendation {
	seen := make(map[models.ViolationKind]bool)
	recommendations := make([]models.Recommendation, 0)

	for _, v := range violations {
		if seen[v.Kind] {
			continue
		}
		seen[v.Kind] = true
		recommendations = append(recommendations, models.Recommendation{
			IssueKind: v.Kind,
			Text:      RecommendationFor(v.Kind),
		})
	}

	return recommendations
}
