// Package record holds the per-document result shapes shared by the
// extraction and mapping stages, plus their on-disk JSON layout.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind tags the variant carried by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindList
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one field's value for one document: null, a string, an ordered
// list of strings, or a number. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	list []string
	i    int64
	f    float64
}

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// List returns a list value. A nil or empty slice yields an empty list, never null.
func List(items []string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// Int returns an integer value.
func Int(n int64) Value { return Value{kind: KindInt, i: n} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsString() bool { return v.kind == KindString }
func (v Value) IsList() bool   { return v.kind == KindList }

// Str returns the string payload; ok is false for non-string values.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Items returns a copy of the list payload; ok is false for non-list values.
func (v Value) Items() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	cp := make([]string, len(v.list))
	copy(cp, v.list)
	return cp, true
}

// IntValue returns the integer payload; ok is false for non-integer values.
func (v Value) IntValue() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// FloatValue returns the float payload; ok is false for non-float values.
func (v Value) FloatValue() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// Empty reports whether the value carries nothing usable: null, an empty
// string or an empty list. Used for success statistics.
func (v Value) Empty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == ""
	case KindList:
		return len(v.list) == 0
	}
	return false
}

// Equal reports deep equality. go-cmp uses it when comparing records.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	}
	return false
}

// GoString renders the value for test failure messages.
func (v Value) GoString() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return "<invalid>"
	}
	return string(b)
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return marshalNoEscape(v.str)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return marshalNoEscape(v.list)
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("record: non-finite float %v", v.f)
		}
		return []byte(strconv.FormatFloat(v.f, 'f', -1, 64)), nil
	}
	return nil, fmt.Errorf("record: unknown kind %d", v.kind)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Null()
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("record: list must contain strings: %w", err)
		}
		*v = List(items)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("record: unsupported value %s", string(data))
	}
	parsed, err := FromNumber(n)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromNumber converts a JSON number into an Int when it is integral and a
// Float otherwise.
func FromNumber(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return Null(), fmt.Errorf("record: bad number %q: %w", n.String(), err)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return Int(int64(f)), nil
	}
	return Float(f), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
