package models

// SourceKind identifies how a raw source should be parsed.
type SourceKind string

const (
	SourceKindTabular        SourceKind = "tabular"
	SourceKindDocument       SourceKind = "document"
	SourceKindStructuredText SourceKind = "structured_text"
)

// RawSource is the pipeline's input unit: opaque bytes plus the metadata the
// readers need to normalize them.
type RawSource struct {
	SourceID string     `json:"source_id"`
	Data     []byte     `json:"data"`
	Kind     SourceKind `json:"kind"`
}

// Record is one normalized row or entry from a source. Field order follows
// the source's column/row order and is preserved through Columns; Values is
// keyed by field name. Records are built once by a reader and never mutated
// downstream.
type Record struct {
	SourceID string           `json:"source_id"`
	RowIndex int              `json:"row_index"`
	Columns  []string         `json:"columns"`
	Values   map[string]Value `json:"values"`
}

// NewRecord creates an empty record for the given source position.
func NewRecord(sourceID string, rowIndex int) *Record {
	return &Record{
		SourceID: sourceID,
		RowIndex: rowIndex,
		Values:   make(map[string]Value),
	}
}

// Set appends a field, keeping insertion order. Setting an existing field
// overwrites the value without duplicating the column entry.
func (r *Record) Set(field string, value Value) {
	if _, exists := r.Values[field]; !exists {
		r.Columns = append(r.Columns, field)
	}
	r.Values[field] = value
}

// Get returns the value for a field; missing fields read as null.
func (r *Record) Get(field string) Value {
	if v, ok := r.Values[field]; ok {
		return v
	}
	return NullValue()
}

// Has reports whether the field was present in the source, regardless of
// whether its value is null.
func (r *Record) Has(field string) bool {
	_, ok := r.Values[field]
	return ok
}

// RecordSet holds every record normalized from one source, plus the sheet or
// table metadata the report surfaces for traceability.
type RecordSet struct {
	SourceID        string    `json:"source_id"`
	Name            string    `json:"name,omitempty"`
	IdentifierField string    `json:"identifier_field,omitempty"`
	Columns         []string  `json:"columns"`
	Records         []*Record `json:"records"`
}

// RowCount returns the number of normalized records.
func (rs *RecordSet) RowCount() int {
	return len(rs.Records)
}

// ColumnCount returns the number of columns declared by the source header.
func (rs *RecordSet) ColumnCount() int {
	return len(rs.Columns)
}

// HasColumn reports whether the source's schema declares the field.
func (rs *RecordSet) HasColumn(field string) bool {
	for _, c := range rs.Columns {
		if c == field {
			return true
		}
	}
	return false
}
