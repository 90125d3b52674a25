package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEqualNumericNormalization(t *testing.T) {
	assert.True(t, IntegerValue(4).Equal(FloatValue(4.0)))
	assert.True(t, FloatValue(4.5).Equal(FloatValue(4.5)))
	assert.False(t, IntegerValue(4).Equal(FloatValue(4.5)))
	assert.False(t, IntegerValue(4).Equal(StringValue("4")))
	assert.True(t, NullValue().Equal(NullValue()))
	assert.False(t, NullValue().Equal(IntegerValue(0)))
	assert.True(t, BooleanValue(true).Equal(BooleanValue(true)))
	assert.False(t, BooleanValue(true).Equal(BooleanValue(false)))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "null", NullValue().String())
	assert.Equal(t, "hello", StringValue("hello").String())
	assert.Equal(t, "42", IntegerValue(42).String())
	assert.Equal(t, "4.5", FloatValue(4.5).String())
	assert.Equal(t, "true", BooleanValue(true).String())
}

func TestValueJSONRoundTrip(t *testing.T) {
	values := []Value{
		NullValue(),
		StringValue("web"),
		IntegerValue(8080),
		FloatValue(0.75),
		BooleanValue(false),
	}

	for _, original := range values {
		data, err := json.Marshal(original)
		require.NoError(t, err)

		var decoded Value
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, original.Equal(decoded), "value %s survived the round trip", original.String())
	}
}

func TestValueFromInterfaceIntegerPreference(t *testing.T) {
	// Whole numbers decode as integers regardless of the wire type.
	assert.Equal(t, ValueTypeInteger, ValueFromInterface(float64(4)).Type)
	assert.Equal(t, ValueTypeFloat, ValueFromInterface(4.5).Type)
	assert.Equal(t, ValueTypeInteger, ValueFromInterface(json.Number("12")).Type)
	assert.Equal(t, ValueTypeFloat, ValueFromInterface(json.Number("1.5")).Type)
	assert.Equal(t, ValueTypeNull, ValueFromInterface(nil).Type)
}

func TestRecordSetAndColumnOrder(t *testing.T) {
	record := NewRecord("a.csv", 0)
	record.Set("zeta", IntegerValue(1))
	record.Set("alpha", IntegerValue(2))
	record.Set("zeta", IntegerValue(3))

	// Overwrites keep the original column position.
	assert.Equal(t, []string{"zeta", "alpha"}, record.Columns)
	assert.Equal(t, IntegerValue(3), record.Get("zeta"))
	assert.True(t, record.Get("missing").IsNull())
	assert.True(t, record.Has("alpha"))
	assert.False(t, record.Has("missing"))
}
