package readers

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confaudit/confaudit/pkg/errors"
	"github.com/confaudit/confaudit/pkg/models"
)

func TestStructuredReadYAMLSequence(t *testing.T) {
	reader := NewStructuredReader(logrus.New())

	data := []byte(`
- name: web
  port: 8080
  enabled: true
  ratio: 0.5
  comment: null
- name: cache
  port: 6379
`)
	sets, err := reader.Read(models.RawSource{SourceID: "services.yaml", Data: data})

	require.NoError(t, err)
	require.Len(t, sets, 1)

	rs := sets[0]
	assert.Equal(t, []string{"name", "port", "enabled", "ratio", "comment"}, rs.Columns)
	require.Equal(t, 2, rs.RowCount())

	first := rs.Records[0]
	assert.Equal(t, models.StringValue("web"), first.Get("name"))
	assert.Equal(t, models.IntegerValue(8080), first.Get("port"))
	assert.Equal(t, models.BooleanValue(true), first.Get("enabled"))
	assert.Equal(t, models.FloatValue(0.5), first.Get("ratio"))
	assert.True(t, first.Get("comment").IsNull())

	second := rs.Records[1]
	assert.Equal(t, 1, second.RowIndex)
	assert.True(t, second.Get("enabled").IsNull())
}

func TestStructuredReadSingleMapping(t *testing.T) {
	reader := NewStructuredReader(logrus.New())

	data := []byte("zeta: 1\nalpha: 2\nmiddle: 3\n")
	sets, err := reader.Read(models.RawSource{SourceID: "config.yaml", Data: data})

	require.NoError(t, err)
	rs := sets[0]

	// Key order follows the source, not lexicographic order.
	assert.Equal(t, []string{"zeta", "alpha", "middle"}, rs.Columns)
	require.Equal(t, 1, rs.RowCount())
	assert.Equal(t, []string{"zeta", "alpha", "middle"}, rs.Records[0].Columns)
}

func TestStructuredReadJSON(t *testing.T) {
	reader := NewStructuredReader(logrus.New())

	data := []byte(`[{"name": "web", "timeout": 4.5, "active": false}]`)
	sets, err := reader.Read(models.RawSource{SourceID: "services.json", Data: data})

	require.NoError(t, err)
	rs := sets[0]
	require.Equal(t, 1, rs.RowCount())

	record := rs.Records[0]
	assert.Equal(t, models.StringValue("web"), record.Get("name"))
	assert.Equal(t, models.FloatValue(4.5), record.Get("timeout"))
	assert.Equal(t, models.BooleanValue(false), record.Get("active"))
}

func TestStructuredNestedValuesFlattened(t *testing.T) {
	reader := NewStructuredReader(logrus.New())

	data := []byte("name: web\nlimits:\n  cpu: 2\n  mem: 512\n")
	sets, err := reader.Read(models.RawSource{SourceID: "config.yaml", Data: data})

	require.NoError(t, err)
	record := sets[0].Records[0]
	limits := record.Get("limits")
	assert.Equal(t, models.ValueTypeString, limits.Type)
	assert.Contains(t, limits.Str, "cpu: 2")
}

func TestStructuredMalformedInput(t *testing.T) {
	reader := NewStructuredReader(logrus.New())

	_, err := reader.Read(models.RawSource{SourceID: "bad.json", Data: []byte(`{"unterminated`)})

	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeParseFailed, appErr.Code)
	assert.True(t, errors.IsSourceFatal(err))
}

func TestStructuredScalarDocumentRejected(t *testing.T) {
	reader := NewStructuredReader(logrus.New())

	_, err := reader.Read(models.RawSource{SourceID: "scalar.yaml", Data: []byte("just a string\n")})

	require.Error(t, err)
	assert.True(t, errors.IsSourceFatal(err))
}

func TestStructuredSequenceOfScalarsRejected(t *testing.T) {
	reader := NewStructuredReader(logrus.New())

	_, err := reader.Read(models.RawSource{SourceID: "list.yaml", Data: []byte("- 1\n- 2\n")})

	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, "list.yaml", appErr.SourceID)
}

func TestStructuredEmptyDocument(t *testing.T) {
	reader := NewStructuredReader(logrus.New())

	_, err := reader.Read(models.RawSource{SourceID: "empty.yaml", Data: []byte("")})
	require.Error(t, err)
}
