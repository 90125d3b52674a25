package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cliconfig "github.com/confaudit/confaudit/cmd/cli/config"
	"github.com/confaudit/confaudit/internal/pipeline"
	"github.com/confaudit/confaudit/pkg/constants"
	"github.com/confaudit/confaudit/pkg/models"
)

type AnalyzeOptions struct {
	InputFiles               []string
	RulesFile                string
	IdentifierField          string
	OutputFormat             string
	OutputFile               string
	Threshold                int
	StrictTypeCoercion       bool
	CaseSensitiveIdentifiers bool
	Verbose                  bool
}

func NewAnalyzeCmd() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full quality analysis pipeline over one or more sources",
		Long: `Analyze configuration data quality: validate every source against the
field rules, reconcile overlapping sources against each other, and
produce a scored quality report with recommendations.`,
		Example: `  # Analyze a spreadsheet against a rules file
  confaudit-cli analyze --input settings.xlsx --rules rules.yaml

  # Cross-check three exports of the same configuration
  confaudit-cli analyze -i prod.csv -i staging.json -i runbook.pdf --rules rules.yaml

  # Fail the build when the score drops below 85
  confaudit-cli analyze -i config.yaml --rules rules.yaml --threshold 85 --format json -o report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose, _ = cmd.Flags().GetBool("verbose")
			applyConfigDefaults(cmd, opts)
			return runAnalyze(opts)
		},
	}

	// Add flags
	cmd.Flags().StringSliceVarP(&opts.InputFiles, "input", "i", nil, "Input files to analyze (repeatable, required)")
	cmd.Flags().StringVarP(&opts.RulesFile, "rules", "r", "", "Rules file (YAML, required)")
	cmd.Flags().StringVar(&opts.IdentifierField, "identifier", "", "Identifier field for reconciliation (overrides the rules file)")
	cmd.Flags().StringVar(&opts.OutputFormat, "format", "text", "Output format (text, json)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file (- for stdout)")
	cmd.Flags().IntVar(&opts.Threshold, "threshold", constants.DefaultScoreThreshold, "Minimum acceptable quality score (0 to 100)")
	cmd.Flags().BoolVar(&opts.StrictTypeCoercion, "strict", false, "Reject string values for numeric and boolean rules")
	cmd.Flags().BoolVar(&opts.CaseSensitiveIdentifiers, "case-sensitive-ids", false, "Match identifiers case-sensitively during reconciliation")

	cmd.MarkFlagRequired("input")

	return cmd
}

// applyConfigDefaults fills in flags the user left untouched from the
// CLI config file, when one exists.
func applyConfigDefaults(cmd *cobra.Command, opts *AnalyzeOptions) {
	cfg, err := cliconfig.LoadConfig(viper.ConfigFileUsed())
	if err != nil {
		return
	}

	if !cmd.Flags().Changed("format") && cfg.DefaultFormat != "" {
		opts.OutputFormat = cfg.DefaultFormat
	}
	if !cmd.Flags().Changed("output") && cfg.DefaultOutput != "" {
		opts.OutputFile = cfg.DefaultOutput
	}
	if !cmd.Flags().Changed("threshold") && cfg.Threshold > 0 {
		opts.Threshold = cfg.Threshold
	}
	if !cmd.Flags().Changed("rules") && cfg.DefaultRules != "" {
		opts.RulesFile = cfg.DefaultRules
	}
}

func runAnalyze(opts *AnalyzeOptions) error {
	if opts.RulesFile == "" {
		return fmt.Errorf("a rules file is required: pass --rules or set default_rules in the config file")
	}

	sources, err := loadSources(opts.InputFiles)
	if err != nil {
		return err
	}

	rules, err := loadRules(opts.RulesFile)
	if err != nil {
		return err
	}
	if opts.IdentifierField != "" {
		rules.IdentifierField = opts.IdentifierField
	}

	logger := newCLILogger(opts.Verbose)
	p := pipeline.NewPipeline(&models.RunOptions{
		StrictTypeCoercion:       opts.StrictTypeCoercion,
		CaseSensitiveIdentifiers: opts.CaseSensitiveIdentifiers,
	}, nil, logger)

	report, err := p.Run(sources, rules)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := outputReport(report, opts.OutputFormat, opts.OutputFile); err != nil {
		return fmt.Errorf("failed to output report: %w", err)
	}

	if report.OverallScore < opts.Threshold {
		return fmt.Errorf("quality score %d below threshold %d", report.OverallScore, opts.Threshold)
	}

	return nil
}

func outputReport(report *models.QualityReport, format, outputFile string) error {
	if strings.EqualFold(format, "json") {
		return writeJSONOutput(report.ToMap(), outputFile)
	}
	return writeOutput(formatReportText(report), outputFile)
}

func formatReportText(report *models.QualityReport) string {
	var b strings.Builder

	b.WriteString("Quality Report\n")
	b.WriteString("==============\n\n")
	fmt.Fprintf(&b, "Report ID: %s\n", report.ID)
	fmt.Fprintf(&b, "Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Overall Score: %d/%d\n", report.OverallScore, constants.MaxQualityScore)
	fmt.Fprintf(&b, "Total Issues: %d\n", report.TotalIssues)

	if report.TotalIssues > 0 {
		b.WriteString("\nIssues by Severity:\n")
		for _, sev := range []models.Severity{models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow} {
			if count := report.IssuesBySeverity[sev]; count > 0 {
				fmt.Fprintf(&b, "- %s: %d\n", sev, count)
			}
		}

		b.WriteString("\nViolations:\n")
		for _, v := range report.Violations {
			fmt.Fprintf(&b, "- %s\n", formatViolation(v))
		}
	}

	if len(report.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range report.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec.Text)
		}
	}

	return b.String()
}
