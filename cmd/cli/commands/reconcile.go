package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/confaudit/confaudit/internal/pipeline"
	"github.com/confaudit/confaudit/pkg/models"
)

type ReconcileOptions struct {
	InputFiles               []string
	RulesFile                string
	IdentifierField          string
	OutputFormat             string
	OutputFile               string
	CaseSensitiveIdentifiers bool
	Verbose                  bool
}

func NewReconcileCmd() *cobra.Command {
	opts := &ReconcileOptions{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Cross-check overlapping sources against each other",
		Long: `Reconcile two or more sources describing the same configuration:
report rows present in one source but missing from another, fields one
source carries and another does not, and values that disagree for the
same identifier.`,
		Example: `  # Compare two exports keyed by setting name
  confaudit-cli reconcile -i prod.csv -i staging.json --identifier setting_name

  # Use the identifier and aliases declared in the rules file
  confaudit-cli reconcile -i a.xlsx -i b.yaml --rules rules.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose, _ = cmd.Flags().GetBool("verbose")
			return runReconcile(opts)
		},
	}

	// Add flags
	cmd.Flags().StringSliceVarP(&opts.InputFiles, "input", "i", nil, "Input files to reconcile (at least two, required)")
	cmd.Flags().StringVarP(&opts.RulesFile, "rules", "r", "", "Rules file supplying the identifier field and aliases")
	cmd.Flags().StringVar(&opts.IdentifierField, "identifier", "", "Identifier field joining rows across sources (overrides the rules file)")
	cmd.Flags().StringVar(&opts.OutputFormat, "format", "text", "Output format (text, json)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file (- for stdout)")
	cmd.Flags().BoolVar(&opts.CaseSensitiveIdentifiers, "case-sensitive-ids", false, "Match identifiers case-sensitively")

	cmd.MarkFlagRequired("input")

	return cmd
}

func runReconcile(opts *ReconcileOptions) error {
	if len(opts.InputFiles) < 2 {
		return fmt.Errorf("reconciliation needs at least two input files")
	}

	identifierField := opts.IdentifierField
	var aliases map[string][]string

	if opts.RulesFile != "" {
		rules, err := loadRules(opts.RulesFile)
		if err != nil {
			return err
		}
		if identifierField == "" {
			identifierField = rules.IdentifierField
		}
		aliases = rules.FieldAliases
	}

	if identifierField == "" {
		return fmt.Errorf("an identifier field is required: pass --identifier or a rules file that declares one")
	}

	sources, err := loadSources(opts.InputFiles)
	if err != nil {
		return err
	}

	logger := newCLILogger(opts.Verbose)
	p := pipeline.NewPipeline(&models.RunOptions{
		CaseSensitiveIdentifiers: opts.CaseSensitiveIdentifiers,
	}, nil, logger)

	violations, err := p.ReconcileOnly(sources, identifierField, aliases)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	if err := outputReconciliation(violations, identifierField, opts.OutputFormat, opts.OutputFile); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	if len(violations) > 0 {
		return fmt.Errorf("%d discrepancies found across sources", len(violations))
	}

	return nil
}

func outputReconciliation(violations []models.Violation, identifierField, format, outputFile string) error {
	if strings.EqualFold(format, "json") {
		return writeJSONOutput(map[string]interface{}{
			"identifier_field": identifierField,
			"violations":       violations,
			"count":            len(violations),
		}, outputFile)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Reconciliation Results (identifier: %s)\n", identifierField)
	b.WriteString("=======================================\n\n")

	if len(violations) == 0 {
		b.WriteString("Sources agree: no discrepancies found.\n")
	} else {
		fmt.Fprintf(&b, "Discrepancies: %d\n\n", len(violations))
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s\n", formatViolation(v))
		}
	}

	return writeOutput(b.String(), outputFile)
}
