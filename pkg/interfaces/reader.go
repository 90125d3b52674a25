package interfaces

import (
	"github.com/confaudit/confaudit/pkg/models"
)

// SourceReader parses raw source bytes into normalized record sets. Readers
// are pure: they never write files and hold no state between calls. Tabular
// readers return one RecordSet per sheet; document readers return a single
// RecordSet of pattern-extracted entries.
type SourceReader interface {
	// GetKind returns the source kind this reader handles.
	GetKind() models.SourceKind

	// Read normalizes the source. Malformed input fails with a ParseError
	// carrying the source ID; the caller decides whether to skip the source
	// and continue.
	Read(source models.RawSource) ([]*models.RecordSet, error)
}
