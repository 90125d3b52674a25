package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/confaudit/confaudit/internal/observability/metrics"
	"github.com/confaudit/confaudit/internal/quality"
	"github.com/confaudit/confaudit/internal/readers"
	"github.com/confaudit/confaudit/internal/reconcile"
	"github.com/confaudit/confaudit/internal/validation"
	"github.com/confaudit/confaudit/pkg/errors"
	"github.com/confaudit/confaudit/pkg/models"
)

// Pipeline wires the four stages together: source readers, field
// validators, the cross-source reconciler, and the scorer. Stages run
// synchronously and share no mutable state; each source is read and
// validated independently, and reconciliation starts only once every
// surviving record set is built.
type Pipeline struct {
	logger     *logrus.Logger
	readers    *readers.Factory
	engine     *validation.Engine
	reconciler *reconcile.Reconciler
	scorer     *quality.Scorer
	metrics    *metrics.PrometheusMetrics
}

// NewPipeline creates an analysis pipeline for the given run options.
// metrics may be nil for callers that do not scrape.
func NewPipeline(options *models.RunOptions, pm *metrics.PrometheusMetrics, logger *logrus.Logger) *Pipeline {
	if options == nil {
		options = &models.RunOptions{}
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Pipeline{
		logger:  logger,
		readers: readers.NewFactory(logger),
		engine: validation.NewEngine(&validation.EngineConfig{
			StrictTypeCoercion: options.StrictTypeCoercion,
		}, logger),
		reconciler: reconcile.NewReconciler(&reconcile.ReconcilerConfig{
			CaseSensitiveIdentifiers: options.CaseSensitiveIdentifiers,
		}, logger),
		scorer:  quality.NewScorer(logger),
		metrics: pm,
	}
}

// Run analyzes the named sources against the rule set and returns the
// terminal quality report.
//
// A rule configuration error aborts the run before any source is read.
// Sources that fail to parse are recorded as critical source_unreadable
// violations and excluded, so a run that starts always produces a complete
// report; there is no partial report state.
func (p *Pipeline) Run(sources []models.RawSource, rules *models.RuleSet) (*models.QualityReport, error) {
	start := time.Now()
	runID := uuid.NewString()

	if err := validation.ValidateRuleSet(rules); err != nil {
		p.recordRun("rule_config_error", start)
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"run_id":  runID,
		"sources": len(sources),
	}).Info("Starting analysis run")

	var violations []models.Violation
	var recordSets []*models.RecordSet

	for _, source := range sources {
		sets, err := p.readers.Read(source)
		if err != nil {
			if !errors.IsSourceFatal(err) {
				p.recordRun("error", start)
				return nil, err
			}
			p.logger.WithFields(logrus.Fields{
				"run_id":    runID,
				"source_id": source.SourceID,
			}).WithError(err).Warn("Source unreadable, excluded from analysis")

			violations = append(violations, sourceUnreadable(source.SourceID, err))
			p.recordSource(source.Kind, "unreadable")
			continue
		}
		recordSets = append(recordSets, sets...)
		p.recordSource(source.Kind, "ok")
	}

	for _, set := range recordSets {
		violations = append(violations, p.engine.Validate(set, rules)...)
	}

	if rules.IdentifierField != "" && len(recordSets) > 1 {
		reconciled, skipped := p.reconciler.Reconcile(recordSets, rules.IdentifierField, rules.FieldAliases)
		violations = append(violations, reconciled...)
		if len(skipped) > 0 {
			p.logger.WithFields(logrus.Fields{
				"run_id":  runID,
				"skipped": skipped,
			}).Warn("Sources excluded from reconciliation")
		}
	}

	report := p.scorer.Score(violations)

	if p.metrics != nil {
		for _, v := range violations {
			p.metrics.RecordViolation(string(v.Severity), string(v.Kind))
		}
		p.metrics.RecordScore(report.OverallScore)
	}
	p.recordRun("ok", start)

	p.logger.WithFields(logrus.Fields{
		"run_id":        runID,
		"report_id":     report.ID,
		"overall_score": report.OverallScore,
		"total_issues":  report.TotalIssues,
		"duration":      time.Since(start),
	}).Info("Analysis run completed")

	return report, nil
}

// ValidateOnly runs the reader and field-validation stages for a single
// source, without reconciliation or scoring.
func (p *Pipeline) ValidateOnly(source models.RawSource, rules *models.RuleSet) ([]models.Violation, error) {
	if err := validation.ValidateRuleSet(rules); err != nil {
		return nil, err
	}

	sets, err := p.readers.Read(source)
	if err != nil {
		return nil, err
	}

	var violations []models.Violation
	for _, set := range sets {
		violations = append(violations, p.engine.Validate(set, rules)...)
	}
	return violations, nil
}

// ReconcileOnly reads every source and runs the reconciliation stage alone.
func (p *Pipeline) ReconcileOnly(sources []models.RawSource, identifierField string, aliases map[string][]string) ([]models.Violation, error) {
	if identifierField == "" {
		return nil, errors.NewRuleConfigError(errors.CodeRuleConfigMalformed, "identifier field is required for reconciliation")
	}

	var recordSets []*models.RecordSet
	var violations []models.Violation

	for _, source := range sources {
		sets, err := p.readers.Read(source)
		if err != nil {
			if !errors.IsSourceFatal(err) {
				return nil, err
			}
			violations = append(violations, sourceUnreadable(source.SourceID, err))
			continue
		}
		recordSets = append(recordSets, sets...)
	}

	reconciled, _ := p.reconciler.Reconcile(recordSets, identifierField, aliases)
	return append(violations, reconciled...), nil
}

// sourceUnreadable is the synthetic violation recorded for sources that
// failed to parse, preserving the always-produce-a-report guarantee.
func sourceUnreadable(sourceID string, cause error) models.Violation {
	return models.Violation{
		Severity:    models.SeverityCritical,
		SourceID:    sourceID,
		Kind:        models.KindSourceUnreadable,
		Description: fmt.Sprintf("source could not be read: %v", cause),
	}
}

func (p *Pipeline) recordRun(status string, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordRun(status, time.Since(start))
	}
}

func (p *Pipeline) recordSource(kind models.SourceKind, status string) {
	if p.metrics != nil {
		p.metrics.RecordSource(string(kind), status)
	}
}
