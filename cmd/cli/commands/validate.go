package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/confaudit/confaudit/internal/pipeline"
	"github.com/confaudit/confaudit/pkg/models"
)

type ValidateOptions struct {
	InputFile          string
	RulesFile          string
	OutputFormat       string
	OutputFile         string
	StrictTypeCoercion bool
	Verbose            bool
}

func NewValidateCmd() *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a single source against the field rules",
		Long: `Validate a single source against the field rules without
reconciliation or scoring. Useful for checking one file in isolation.`,
		Example: `  # Validate a CSV export
  confaudit-cli validate --input settings.csv --rules rules.yaml

  # Strict mode: "42" is not an integer
  confaudit-cli validate -i settings.csv -r rules.yaml --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose, _ = cmd.Flags().GetBool("verbose")
			return runValidateCmd(opts)
		},
	}

	// Add flags
	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Input file to validate (required)")
	cmd.Flags().StringVarP(&opts.RulesFile, "rules", "r", "", "Rules file (YAML, required)")
	cmd.Flags().StringVar(&opts.OutputFormat, "format", "text", "Output format (text, json)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file (- for stdout)")
	cmd.Flags().BoolVar(&opts.StrictTypeCoercion, "strict", false, "Reject string values for numeric and boolean rules")

	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("rules")

	return cmd
}

func runValidateCmd(opts *ValidateOptions) error {
	source, err := loadSource(opts.InputFile)
	if err != nil {
		return err
	}

	rules, err := loadRules(opts.RulesFile)
	if err != nil {
		return err
	}

	logger := newCLILogger(opts.Verbose)
	p := pipeline.NewPipeline(&models.RunOptions{
		StrictTypeCoercion: opts.StrictTypeCoercion,
	}, nil, logger)

	violations, err := p.ValidateOnly(source, rules)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := outputViolations(violations, source.SourceID, opts.OutputFormat, opts.OutputFile); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	if len(violations) > 0 {
		return fmt.Errorf("%d violation(s) found in %s", len(violations), source.SourceID)
	}

	return nil
}

func outputViolations(violations []models.Violation, sourceID, format, outputFile string) error {
	if strings.EqualFold(format, "json") {
		return writeJSONOutput(map[string]interface{}{
			"source_id":  sourceID,
			"violations": violations,
			"count":      len(violations),
		}, outputFile)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Validation Results for %s\n", sourceID)
	b.WriteString("========================\n\n")

	if len(violations) == 0 {
		b.WriteString("No violations found.\n")
	} else {
		fmt.Fprintf(&b, "Violations: %d\n\n", len(violations))
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s\n", formatViolation(v))
		}
	}

	return writeOutput(b.String(), outputFile)
}
