package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/confaudit/confaudit/internal/validation"
	"github.com/confaudit/confaudit/pkg/errors"
	"github.com/confaudit/confaudit/pkg/models"
)

// kindForExtension maps a file extension to the reader kind used to
// parse it. Unknown extensions are rejected up front rather than
// being guessed at.
var kindForExtension = map[string]models.SourceKind{
	".xlsx": models.SourceKindTabular,
	".xls":  models.SourceKindTabular,
	".csv":  models.SourceKindTabular,
	".pdf":  models.SourceKindDocument,
	".txt":  models.SourceKindDocument,
	".log":  models.SourceKindDocument,
	".json": models.SourceKindStructuredText,
	".yaml": models.SourceKindStructuredText,
	".yml":  models.SourceKindStructuredText,
}

func loadSource(path string) (models.RawSource, error) {
	ext := strings.ToLower(filepath.Ext(path))
	kind, ok := kindForExtension[ext]
	if !ok {
		return models.RawSource{}, errors.NewUnsupportedFormatError(filepath.Base(path), ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.RawSource{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return models.RawSource{
		SourceID: filepath.Base(path),
		Data:     data,
		Kind:     kind,
	}, nil
}

func loadSources(paths []string) ([]models.RawSource, error) {
	sources := make([]models.RawSource, 0, len(paths))
	for _, path := range paths {
		source, err := loadSource(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, nil
}

func loadRules(path string) (*models.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	return validation.LoadRuleSet(data)
}

func newCLILogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

func writeOutput(content string, outputFile string) error {
	if outputFile == "-" || outputFile == "" {
		fmt.Print(content)
		return nil
	}
	return os.WriteFile(outputFile, []byte(content), 0644)
}

func writeJSONOutput(v interface{}, outputFile string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return writeOutput(string(data)+"\n", outputFile)
}

func formatViolation(v models.Violation) string {
	location := v.SourceID
	if v.RowIndex != nil {
		location = fmt.Sprintf("%s row %d", v.SourceID, *v.RowIndex)
	}
	if v.FieldName != "" {
		location = fmt.Sprintf("%s field %q", location, v.FieldName)
	}
	return fmt.Sprintf("[%s] %s: %s (%s)", strings.ToUpper(string(v.Severity)), location, v.Description, v.Kind)
}
