package metamodel

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind identifies the scalar carried by a Value.
type ValueKind uint8

const (
	ValueString ValueKind = iota + 1
	ValueBool
	ValueNumber
	ValueInteger
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueBool:
		return "boolean"
	case ValueNumber:
		return "number"
	case ValueInteger:
		return "integer"
	default:
		return "invalid"
	}
}

// Value is an immutable scalar used for property defaults. The zero Value is
// invalid; construct values with StringValue, BoolValue, NumberValue or
// IntegerValue.
type Value struct {
	kind ValueKind
	str  string
	b    bool
	num  float64
	i    int64
}

func StringValue(s string) Value       { return Value{kind: ValueString, str: s} }
func BoolValue(b bool) Value           { return Value{kind: ValueBool, b: b} }
func NumberValue(f float64) Value      { return Value{kind: ValueNumber, num: f} }
func IntegerValue(i int64) Value       { return Value{kind: ValueInteger, i: i} }
func (v Value) Kind() ValueKind        { return v.kind }
func (v Value) IsValid() bool          { return v.kind != 0 }
func (v Value) Equal(other Value) bool { return v == other }

// Str returns the string payload and whether the value is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == ValueString }

// Bool returns the boolean payload and whether the value is a boolean.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == ValueBool }

// Number returns the float payload and whether the value is a number.
func (v Value) Number() (float64, bool) { return v.num, v.kind == ValueNumber }

// Integer returns the integer payload and whether the value is an integer.
func (v Value) Integer() (int64, bool) { return v.i, v.kind == ValueInteger }

// Interface returns the payload as a plain Go value (string, bool, float64 or
// int64), or nil for the zero Value.
func (v Value) Interface() any {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueBool:
		return v.b
	case ValueNumber:
		return v.num
	case ValueInteger:
		return v.i
	default:
		return nil
	}
}

// Text renders the value the way a text input displays it.
func (v Value) Text() string {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueBool:
		return strconv.FormatBool(v.b)
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case ValueInteger:
		return strconv.FormatInt(v.i, 10)
	default:
		return ""
	}
}

func (v Value) String() string {
	if !v.IsValid() {
		return "<invalid>"
	}
	return fmt.Sprintf("%s(%s)", v.kind, v.Text())
}

// MarshalJSON encodes the payload as its native JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.IsValid() {
		return []byte("null"), nil
	}
	return json.Marshal(v.Interface())
}

// ValueFromJSON decodes a raw JSON scalar. Numbers become integers when
// integral is set and the literal has no fractional part.
func ValueFromJSON(raw json.RawMessage, integral bool) (Value, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Value{}, fmt.Errorf("metamodel: decode value: %w", err)
	}
	switch typed := decoded.(type) {
	case string:
		return StringValue(typed), nil
	case bool:
		return BoolValue(typed), nil
	case float64:
		if integral {
			i, err := strconv.ParseInt(string(raw), 10, 64)
			if err != nil {
				return Value{}, fmt.Errorf("metamodel: integer value %s: %w", raw, err)
			}
			return IntegerValue(i), nil
		}
		return NumberValue(typed), nil
	default:
		return Value{}, fmt.Errorf("metamodel: unsupported value %s", raw)
	}
}

// Ptr returns a pointer to a copy of v, for building optional defaults.
func Ptr(v Value) *Value { return &v }
