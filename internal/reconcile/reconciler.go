package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/confaudit/confaudit/pkg/errors"
	"github.com/confaudit/confaudit/pkg/models"
)

// ReconcilerConfig configures cross-source reconciliation
type ReconcilerConfig struct {
	// CaseSensitiveIdentifiers controls how identifier values are matched
	// across sources.
	CaseSensitiveIdentifiers bool `json:"case_sensitive_identifiers"`
}

// Reconciler compares record sets sharing an identifier field and reports
// missing records, schema drift, and value disagreements between sources.
//
// Reconciliation across more than two sources is pairwise: every unordered
// pair is compared independently and violations are not deduplicated across
// pairs, so three sources disagreeing on one field yield three value
// mismatches. This preserves full per-pair provenance and is intentional.
type Reconciler struct {
	config *ReconcilerConfig
	logger *logrus.Logger
}

// NewReconciler creates a cross-source reconciler
func NewReconciler(config *ReconcilerConfig, logger *logrus.Logger) *Reconciler {
	if config == nil {
		config = &ReconcilerConfig{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Reconciler{config: config, logger: logger}
}

// GetName returns a human-readable name for the reconciler
func (r *Reconciler) GetName() string {
	return "Cross-Source Reconciler"
}

// sourceIndex is one source keyed by normalized identifier. The first
// occurrence of a duplicated identifier wins; later occurrences are flagged
// during indexing.
type sourceIndex struct {
	set     *models.RecordSet
	idField string
	order   []string
	byID    map[string]*models.Record
	rawID   map[string]models.Value
}

// Reconcile compares every unordered pair of sources. Sources whose schema
// lacks the identifier field (after alias resolution) are excluded from the
// comparison and returned in skipped; they still contribute their own field
// validation violations upstream.
func (r *Reconciler) Reconcile(sources []*models.RecordSet, identifierField string, aliases map[string][]string) (violations []models.Violation, skipped []string) {
	if identifierField == "" || len(sources) == 0 {
		return nil, nil
	}

	canonicalOf := buildAliasResolver(aliases)
	idCanonical := canonicalOf(identifierField)

	var indexes []*sourceIndex
	for _, set := range sources {
		index, dupViolations, err := r.indexSource(set, idCanonical, canonicalOf)
		violations = append(violations, dupViolations...)
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"source_id":  set.SourceID,
				"identifier": identifierField,
			}).Warn("Source excluded from reconciliation: identifier field missing")
			skipped = append(skipped, set.SourceID)
			continue
		}
		indexes = append(indexes, index)
	}

	for i := 0; i < len(indexes); i++ {
		for j := i + 1; j < len(indexes); j++ {
			violations = append(violations, r.comparePair(indexes[i], indexes[j], idCanonical, canonicalOf)...)
		}
	}

	r.logger.WithFields(logrus.Fields{
		"sources":    len(indexes),
		"skipped":    len(skipped),
		"violations": len(violations),
	}).Info("Reconciliation completed")

	return violations, skipped
}

// indexSource builds the identifier index for one source. Duplicate
// identifiers are a format violation on the later-occurring record, not a
// reconciliation error.
func (r *Reconciler) indexSource(set *models.RecordSet, idCanonical string, canonicalOf func(string) string) (*sourceIndex, []models.Violation, error) {
	idField := columnFor(set, idCanonical, canonicalOf)
	if idField == "" {
		return nil, nil, errors.NewReconciliationKeyError(set.SourceID, idCanonical)
	}

	index := &sourceIndex{
		set:     set,
		idField: idField,
		byID:    make(map[string]*models.Record),
		rawID:   make(map[string]models.Value),
	}

	var violations []models.Violation
	for _, record := range set.Records {
		value := record.Get(idField)
		if value.IsNull() {
			// A null identifier cannot be matched; required-field rules
			// report it separately.
			continue
		}

		key := r.normalizeID(value)
		if _, exists := index.byID[key]; exists {
			violations = append(violations, models.Violation{
				Severity:           models.SeverityMedium,
				SourceID:           set.SourceID,
				RowIndex:           models.RowRef(record.RowIndex),
				FieldName:          idField,
				Kind:               models.KindFormatViolation,
				Description:        fmt.Sprintf("duplicate identifier %q", value.String()),
				ObservedValue:      value,
				ExpectedConstraint: "unique identifier",
			})
			continue
		}

		index.byID[key] = record
		index.rawID[key] = value
		index.order = append(index.order, key)
	}

	return index, violations, nil
}

// comparePair emits, in order: rows missing from b, rows missing from a,
// schema mismatches for shared canonical fields, then value mismatches per
// shared identifier and field.
func (r *Reconciler) comparePair(a, b *sourceIndex, idCanonical string, canonicalOf func(string) string) []models.Violation {
	var violations []models.Violation

	var shared []string
	for _, key := range a.order {
		if _, ok := b.byID[key]; ok {
			shared = append(shared, key)
			continue
		}
		violations = append(violations, missingRow(b.set.SourceID, a.set.SourceID, a.rawID[key]))
	}
	for _, key := range b.order {
		if _, ok := a.byID[key]; !ok {
			violations = append(violations, missingRow(a.set.SourceID, b.set.SourceID, b.rawID[key]))
		}
	}

	if len(shared) == 0 {
		return violations
	}

	canonicals := sharedCanonicalFields(a.set, b.set, idCanonical, canonicalOf)

	// Schema drift is reported once per pair per canonical field, not per
	// matched record.
	for _, canonical := range canonicals {
		rawA := columnFor(a.set, canonical, canonicalOf)
		rawB := columnFor(b.set, canonical, canonicalOf)
		if rawA != rawB {
			violations = append(violations, models.Violation{
				Severity:  models.SeverityHigh,
				SourceID:  a.set.SourceID,
				FieldName: canonical,
				Kind:      models.KindColumnMismatch,
				Description: fmt.Sprintf("field %q named %q in %s but %q in %s",
					canonical, rawA, a.set.SourceID, rawB, b.set.SourceID),
				OtherSourceID:      b.set.SourceID,
				ExpectedConstraint: canonical,
			})
		}
	}

	for _, key := range shared {
		recA := a.byID[key]
		recB := b.byID[key]
		for _, canonical := range canonicals {
			valA := recA.Get(columnFor(a.set, canonical, canonicalOf))
			valB := recB.Get(columnFor(b.set, canonical, canonicalOf))
			if valA.IsNull() && valB.IsNull() {
				continue
			}
			if valA.Equal(valB) {
				continue
			}
			violations = append(violations, models.Violation{
				Severity:  models.SeverityMedium,
				SourceID:  a.set.SourceID,
				RowIndex:  models.RowRef(recA.RowIndex),
				FieldName: canonical,
				Kind:      models.KindValueMismatch,
				Description: fmt.Sprintf("identifier %q: field %q is %q in %s but %q in %s",
					a.rawID[key].String(), canonical, valA.String(), a.set.SourceID, valB.String(), b.set.SourceID),
				ObservedValue: valA,
				OtherSourceID: b.set.SourceID,
				OtherValue:    valB,
			})
		}
	}

	return violations
}

// missingRow reports an identifier absent from lackingSource, referencing
// the source that has the record.
func missingRow(lackingSource, presentSource string, identifier models.Value) models.Violation {
	return models.Violation{
		Severity:  models.SeverityHigh,
		SourceID:  lackingSource,
		Kind:      models.KindMissingRow,
		Description: fmt.Sprintf("record %q present in %s but missing from %s",
			identifier.String(), presentSource, lackingSource),
		ObservedValue: identifier,
		OtherSourceID: presentSource,
	}
}

func (r *Reconciler) normalizeID(value models.Value) string {
	key := value.String()
	if !r.config.CaseSensitiveIdentifiers {
		key = strings.ToLower(key)
	}
	return key
}

// buildAliasResolver maps any field name onto its canonical name. Names not
// listed in the alias table are their own canonical.
func buildAliasResolver(aliases map[string][]string) func(string) string {
	lookup := make(map[string]string)
	for canonical, names := range aliases {
		lookup[canonical] = canonical
		for _, alias := range names {
			lookup[alias] = canonical
		}
	}
	return func(name string) string {
		if canonical, ok := lookup[name]; ok {
			return canonical
		}
		return name
	}
}

// columnFor returns the first column of the source resolving to the
// canonical name, or "" when the schema lacks it.
func columnFor(set *models.RecordSet, canonical string, canonicalOf func(string) string) string {
	for _, column := range set.Columns {
		if canonicalOf(column) == canonical {
			return column
		}
	}
	return ""
}

// sharedCanonicalFields returns the sorted canonical field names present in
// both sources, excluding the identifier itself.
func sharedCanonicalFields(a, b *models.RecordSet, idCanonical string, canonicalOf func(string) string) []string {
	inA := make(map[string]bool)
	for _, column := range a.Columns {
		inA[canonicalOf(column)] = true
	}

	seen := make(map[string]bool)
	var canonicals []string
	for _, column := range b.Columns {
		canonical := canonicalOf(column)
		if canonical == idCanonical || !inA[canonical] || seen[canonical] {
			continue
		}
		seen[canonical] = true
		canonicals = append(canonicals, canonical)
	}

	sort.Strings(canonicals)
	return canonicals
}
