package readers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/confaudit/confaudit/pkg/errors"
	"github.com/confaudit/confaudit/pkg/interfaces"
	"github.com/confaudit/confaudit/pkg/models"
)

// StructuredReader normalizes structured config text (YAML or JSON; JSON is
// parsed by the YAML decoder, of which it is a subset). A top-level sequence
// of mappings yields one record per entry; a single top-level mapping yields
// one record. Decoding through yaml.Node preserves the source's key order.
type StructuredReader struct {
	logger *logrus.Logger
}

// NewStructuredReader creates a structured-text source reader
func NewStructuredReader(logger *logrus.Logger) interfaces.SourceReader {
	if logger == nil {
		logger = logrus.New()
	}
	return &StructuredReader{logger: logger}
}

// GetKind returns the source kind this reader handles
func (r *StructuredReader) GetKind() models.SourceKind {
	return models.SourceKindStructuredText
}

// Read parses the source into a single RecordSet.
func (r *StructuredReader) Read(source models.RawSource) ([]*models.RecordSet, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(source.Data, &root); err != nil {
		return nil, errors.NewParseError(source.SourceID, err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.NewParseError(source.SourceID, fmt.Errorf("empty document"))
	}

	doc := root.Content[0]
	rs := &models.RecordSet{SourceID: source.SourceID}

	switch doc.Kind {
	case yaml.SequenceNode:
		for i, item := range doc.Content {
			if item.Kind != yaml.MappingNode {
				return nil, errors.NewParseError(source.SourceID,
					fmt.Errorf("entry %d: expected mapping, got %s", i, nodeKindName(item.Kind)))
			}
			rs.Records = append(rs.Records, mappingToRecord(source.SourceID, i, item, rs))
		}
	case yaml.MappingNode:
		rs.Records = append(rs.Records, mappingToRecord(source.SourceID, 0, doc, rs))
	default:
		return nil, errors.NewParseError(source.SourceID,
			fmt.Errorf("expected mapping or sequence of mappings, got %s", nodeKindName(doc.Kind)))
	}

	r.logger.WithFields(logrus.Fields{
		"source_id": source.SourceID,
		"records":   rs.RowCount(),
	}).Debug("Structured source parsed")

	return []*models.RecordSet{rs}, nil
}

// mappingToRecord converts one mapping node into a record, registering any
// new field names on the record set in first-seen order.
func mappingToRecord(sourceID string, rowIndex int, node *yaml.Node, rs *models.RecordSet) *models.Record {
	record := models.NewRecord(sourceID, rowIndex)

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := strings.TrimSpace(node.Content[i].Value)
		record.Set(key, scalarFromNode(node.Content[i+1]))
		if !rs.HasColumn(key) {
			rs.Columns = append(rs.Columns, key)
		}
	}

	return record
}

// scalarFromNode maps a YAML scalar onto the tagged value type. Nested
// mappings and sequences are flattened to their serialized form, since the
// record model carries scalars only.
func scalarFromNode(node *yaml.Node) models.Value {
	if node.Kind != yaml.ScalarNode {
		raw, err := yaml.Marshal(node)
		if err != nil {
			return models.NullValue()
		}
		return models.StringValue(strings.TrimSpace(string(raw)))
	}

	switch node.Tag {
	case "!!null":
		return models.NullValue()
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			return models.StringValue(node.Value)
		}
		return models.BooleanValue(b)
	case "!!int":
		i, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			return models.StringValue(node.Value)
		}
		return models.IntegerValue(i)
	case "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return models.StringValue(node.Value)
		}
		return models.FloatValue(f)
	default:
		return models.StringValue(node.Value)
	}
}

func nodeKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
