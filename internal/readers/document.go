package readers

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"github.com/confaudit/confaudit/pkg/constants"
	"github.com/confaudit/confaudit/pkg/errors"
	"github.com/confaudit/confaudit/pkg/interfaces"
	"github.com/confaudit/confaudit/pkg/models"
)

var pdfMagic = []byte("%PDF")

// Line matchers for the best-effort error/solution extraction. The matching
// is intentionally fuzzy: a document with no matching lines yields zero
// records, which is a valid outcome, not a failure.
var (
	errorLinePattern    = regexp.MustCompile(`(?i)^\s*(?:error|err|failure|problem)\s*[:\-]\s*(.+)$`)
	solutionLinePattern = regexp.MustCompile(`(?i)^\s*(?:solution|fix|resolution|workaround)\s*[:\-]\s*(.+)$`)
)

// Extraction confidence: error lines paired with a solution score higher
// than orphaned matches.
const (
	confidencePaired   = 0.9
	confidenceUnpaired = 0.6
)

// DocumentReader extracts plain text from document sources (PDF or raw
// text) and pattern-matches error/solution line pairs into records. Each
// extracted record is tagged with its extraction method and a confidence
// value so downstream consumers can distinguish "no patterns found" from
// "extraction is unreliable for this document".
type DocumentReader struct {
	logger *logrus.Logger
}

// NewDocumentReader creates a document source reader
func NewDocumentReader(logger *logrus.Logger) interfaces.SourceReader {
	if logger == nil {
		logger = logrus.New()
	}
	return &DocumentReader{logger: logger}
}

// GetKind returns the source kind this reader handles
func (r *DocumentReader) GetKind() models.SourceKind {
	return models.SourceKindDocument
}

// Read extracts text and returns a single RecordSet of detected
// error/solution pairs. Zero records is a valid result.
func (r *DocumentReader) Read(source models.RawSource) ([]*models.RecordSet, error) {
	text, err := r.extractText(source)
	if err != nil {
		return nil, err
	}

	rs := r.extractPatterns(source.SourceID, text)

	r.logger.WithFields(logrus.Fields{
		"source_id": source.SourceID,
		"records":   rs.RowCount(),
	}).Debug("Document patterns extracted")

	return []*models.RecordSet{rs}, nil
}

func (r *DocumentReader) extractText(source models.RawSource) (string, error) {
	if !bytes.HasPrefix(source.Data, pdfMagic) {
		return string(source.Data), nil
	}

	reader, err := pdf.NewReader(bytes.NewReader(source.Data), int64(len(source.Data)))
	if err != nil {
		return "", errors.NewParseError(source.SourceID, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", errors.NewParseError(source.SourceID, err)
	}

	text, err := io.ReadAll(plain)
	if err != nil {
		return "", errors.NewParseError(source.SourceID, err)
	}

	return string(text), nil
}

// extractPatterns walks the text line by line. Each error line opens a
// record; the first solution line before the next error line completes it.
// A record-level match failure just produces no record for that line.
func (r *DocumentReader) extractPatterns(sourceID, text string) *models.RecordSet {
	rs := &models.RecordSet{
		SourceID: sourceID,
		Columns: []string{
			constants.FieldErrorText,
			constants.FieldSolutionText,
			constants.FieldLineNumber,
			constants.FieldExtractionMethod,
			constants.FieldConfidence,
		},
	}

	type pending struct {
		errorText string
		line      int
	}

	var open *pending
	flush := func(solution string) {
		if open == nil {
			return
		}
		record := models.NewRecord(sourceID, len(rs.Records))
		record.Set(constants.FieldErrorText, models.StringValue(open.errorText))
		if solution != "" {
			record.Set(constants.FieldSolutionText, models.StringValue(solution))
			record.Set(constants.FieldConfidence, models.FloatValue(confidencePaired))
		} else {
			record.Set(constants.FieldSolutionText, models.NullValue())
			record.Set(constants.FieldConfidence, models.FloatValue(confidenceUnpaired))
		}
		record.Set(constants.FieldLineNumber, models.IntegerValue(int64(open.line)))
		record.Set(constants.FieldExtractionMethod, models.StringValue(constants.DocumentExtractionMethod))
		rs.Records = append(rs.Records, record)
		open = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if m := errorLinePattern.FindStringSubmatch(line); m != nil {
			flush("")
			open = &pending{errorText: strings.TrimSpace(m[1]), line: lineNo}
			continue
		}
		if m := solutionLinePattern.FindStringSubmatch(line); m != nil && open != nil {
			flush(strings.TrimSpace(m[1]))
		}
	}
	flush("")

	// A document with no matches reports no schema.
	if len(rs.Records) == 0 {
		rs.Columns = nil
	}

	return rs
}
