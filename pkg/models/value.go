package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ValueType identifies the dynamic type carried by a Value.
type ValueType string

const (
	ValueTypeNull    ValueType = "null"
	ValueTypeString  ValueType = "string"
	ValueTypeInteger ValueType = "integer"
	ValueTypeFloat   ValueType = "float"
	ValueTypeBoolean ValueType = "boolean"
)

// Value is the tagged union used for every cell and field value that flows
// through the pipeline. Keeping the type explicit means coercion failures are
// pattern-match branches in the validators instead of runtime surprises.
type Value struct {
	Type ValueType
	Str  string
	Int  int64
	Flt  float64
	Bool bool
}

// NullValue returns the missing-value marker.
func NullValue() Value {
	return Value{Type: ValueTypeNull}
}

// StringValue wraps a string.
func StringValue(s string) Value {
	return Value{Type: ValueTypeString, Str: s}
}

// IntegerValue wraps an integer.
func IntegerValue(i int64) Value {
	return Value{Type: ValueTypeInteger, Int: i}
}

// FloatValue wraps a float.
func FloatValue(f float64) Value {
	return Value{Type: ValueTypeFloat, Flt: f}
}

// BooleanValue wraps a boolean.
func BooleanValue(b bool) Value {
	return Value{Type: ValueTypeBoolean, Bool: b}
}

// IsNull reports whether the value is the missing marker.
func (v Value) IsNull() bool {
	return v.Type == ValueTypeNull || v.Type == ""
}

// IsNumeric reports whether the value carries a native numeric type.
func (v Value) IsNumeric() bool {
	return v.Type == ValueTypeInteger || v.Type == ValueTypeFloat
}

// Float64 returns the numeric value as a float64. The second return is false
// for non-numeric values.
func (v Value) Float64() (float64, bool) {
	switch v.Type {
	case ValueTypeInteger:
		return float64(v.Int), true
	case ValueTypeFloat:
		return v.Flt, true
	default:
		return 0, false
	}
}

// Equal compares two values after normalizing numeric types, so an integer 4
// equals a float 4.0 and "4.5" parsed as a float equals 4.5000 from another
// source. Strings and booleans compare exactly.
func (v Value) Equal(other Value) bool {
	if v.IsNull() || other.IsNull() {
		return v.IsNull() && other.IsNull()
	}
	if v.IsNumeric() && other.IsNumeric() {
		a, _ := v.Float64()
		b, _ := other.Float64()
		return a == b
	}
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValueTypeString:
		return v.Str == other.Str
	case ValueTypeBoolean:
		return v.Bool == other.Bool
	default:
		return false
	}
}

// String renders the value for violation descriptions and text reports.
func (v Value) String() string {
	switch v.Type {
	case ValueTypeString:
		return v.Str
	case ValueTypeInteger:
		return strconv.FormatInt(v.Int, 10)
	case ValueTypeFloat:
		return strconv.FormatFloat(v.Flt, 'f', -1, 64)
	case ValueTypeBoolean:
		return strconv.FormatBool(v.Bool)
	default:
		return "null"
	}
}

// Interface returns the value as a plain Go scalar (or nil), the shape the
// report serialization promises to consumers.
func (v Value) Interface() interface{} {
	switch v.Type {
	case ValueTypeString:
		return v.Str
	case ValueTypeInteger:
		return v.Int
	case ValueTypeFloat:
		return v.Flt
	case ValueTypeBoolean:
		return v.Bool
	default:
		return nil
	}
}

// MarshalJSON encodes the value as the plain scalar it wraps.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a plain scalar back into a tagged value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = ValueFromInterface(raw)
	return nil
}

// ValueFromInterface converts a decoded scalar into a tagged value. Numbers
// that parse cleanly as integers stay integers.
func ValueFromInterface(raw interface{}) Value {
	switch t := raw.(type) {
	case nil:
		return NullValue()
	case string:
		return StringValue(t)
	case bool:
		return BooleanValue(t)
	case int:
		return IntegerValue(int64(t))
	case int64:
		return IntegerValue(t)
	case float64:
		if t == float64(int64(t)) {
			return IntegerValue(int64(t))
		}
		return FloatValue(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return IntegerValue(i)
		}
		if f, err := t.Float64(); err == nil {
			return FloatValue(f)
		}
		return StringValue(t.String())
	default:
		return StringValue(stringify(raw))
	}
}

func stringify(raw interface{}) string {
	b, err := json.Marshal(raw)
	if err != nil {
		return ""
	}
	return string(b)
}
