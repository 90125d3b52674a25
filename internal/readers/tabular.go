package readers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/confaudit/confaudit/pkg/errors"
	"github.com/confaudit/confaudit/pkg/interfaces"
	"github.com/confaudit/confaudit/pkg/models"
)

// xlsx files are zip archives; csv is the fallback for tabular sources.
var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// TabularReader normalizes spreadsheet and CSV sources. The first row of
// each sheet provides the field names (trimmed, deduplicated by appending an
// index suffix on collision); every subsequent row becomes one record and
// empty cells map to null.
type TabularReader struct {
	logger *logrus.Logger
}

// NewTabularReader creates a tabular source reader
func NewTabularReader(logger *logrus.Logger) interfaces.SourceReader {
	if logger == nil {
		logger = logrus.New()
	}
	return &TabularReader{logger: logger}
}

// GetKind returns the source kind this reader handles
func (r *TabularReader) GetKind() models.SourceKind {
	return models.SourceKindTabular
}

// Read parses the source into one RecordSet per sheet. CSV input yields a
// single RecordSet.
func (r *TabularReader) Read(source models.RawSource) ([]*models.RecordSet, error) {
	if bytes.HasPrefix(source.Data, zipMagic) {
		return r.readWorkbook(source)
	}
	return r.readCSV(source)
}

func (r *TabularReader) readWorkbook(source models.RawSource) ([]*models.RecordSet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(source.Data))
	if err != nil {
		return nil, errors.NewParseError(source.SourceID, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	recordSets := make([]*models.RecordSet, 0, len(sheets))

	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, errors.NewParseError(source.SourceID, fmt.Errorf("sheet %q: %w", sheet, err))
		}

		// Sheet names only qualify the source ID when the workbook has more
		// than one sheet, so single-sheet files keep their caller-visible ID.
		sourceID := source.SourceID
		if len(sheets) > 1 {
			sourceID = source.SourceID + "#" + sheet
		}

		recordSets = append(recordSets, buildRecordSet(sourceID, sheet, rows))
	}

	r.logger.WithFields(logrus.Fields{
		"source_id": source.SourceID,
		"sheets":    len(recordSets),
	}).Debug("Workbook parsed")

	return recordSets, nil
}

func (r *TabularReader) readCSV(source models.RawSource) ([]*models.RecordSet, error) {
	reader := csv.NewReader(bytes.NewReader(source.Data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParseError(source.SourceID, err)
		}
		rows = append(rows, row)
	}

	return []*models.RecordSet{buildRecordSet(source.SourceID, "", rows)}, nil
}

// buildRecordSet turns header + data rows into the normalized form shared by
// both tabular formats.
func buildRecordSet(sourceID, name string, rows [][]string) *models.RecordSet {
	rs := &models.RecordSet{
		SourceID: sourceID,
		Name:     name,
	}

	if len(rows) == 0 {
		return rs
	}

	rs.Columns = dedupeHeader(rows[0])

	for i, row := range rows[1:] {
		record := models.NewRecord(sourceID, i)
		for col, field := range rs.Columns {
			if col < len(row) {
				record.Set(field, parseScalar(row[col]))
			} else {
				// Short rows read as null, matching empty-cell handling.
				record.Set(field, models.NullValue())
			}
		}
		rs.Records = append(rs.Records, record)
	}

	return rs
}

// dedupeHeader trims field names and disambiguates collisions by appending
// an index suffix to later occurrences.
func dedupeHeader(header []string) []string {
	seen := make(map[string]int, len(header))
	fields := make([]string, 0, len(header))

	for i, raw := range header {
		field := strings.TrimSpace(raw)
		if field == "" {
			field = "column_" + strconv.Itoa(i)
		}
		if count, ok := seen[field]; ok {
			seen[field] = count + 1
			field = field + "_" + strconv.Itoa(count+1)
		}
		if _, ok := seen[field]; !ok {
			seen[field] = 1
		}
		fields = append(fields, field)
	}

	return fields
}

// parseScalar infers the dynamic type of a cell. Empty cells are null;
// boolean and numeric literals keep their native type; everything else stays
// a string.
func parseScalar(cell string) models.Value {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return models.NullValue()
	}

	switch strings.ToLower(trimmed) {
	case "true":
		return models.BooleanValue(true)
	case "false":
		return models.BooleanValue(false)
	}

	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return models.IntegerValue(i)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return models.FloatValue(f)
	}

	return models.StringValue(cell)
}
