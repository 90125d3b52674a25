package readers

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confaudit/confaudit/pkg/errors"
	"github.com/confaudit/confaudit/pkg/models"
)

func TestFactoryCreateReader(t *testing.T) {
	factory := NewFactory(logrus.New())

	for _, kind := range []models.SourceKind{
		models.SourceKindTabular,
		models.SourceKindDocument,
		models.SourceKindStructuredText,
	} {
		reader, err := factory.CreateReader("test", kind)
		require.NoError(t, err)
		assert.Equal(t, kind, reader.GetKind())
	}
}

func TestFactoryUnsupportedKind(t *testing.T) {
	factory := NewFactory(logrus.New())

	_, err := factory.CreateReader("legacy.dbf", "dbase")

	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeUnsupportedFormat, appErr.Code)
	assert.Equal(t, "legacy.dbf", appErr.SourceID)
	assert.True(t, errors.IsSourceFatal(err))
}

func TestFactoryGetSupportedKinds(t *testing.T) {
	factory := NewFactory(logrus.New())
	assert.Len(t, factory.GetSupportedKinds(), 3)
}

func TestFactoryRegisterReaderRejectsNil(t *testing.T) {
	factory := NewFactory(logrus.New())
	assert.Error(t, factory.RegisterReader("custom", nil))
}

func TestFactoryReadDispatch(t *testing.T) {
	factory := NewFactory(logrus.New())

	sets, err := factory.Read(models.RawSource{
		SourceID: "inline.csv",
		Data:     []byte("a,b\n1,2\n"),
		Kind:     models.SourceKindTabular,
	})

	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, 1, sets[0].RowCount())
}
