// Package example implements attribute-example matching for edge documents.
//
// A Pattern maps attribute names to typed Values. A document matches a
// pattern when every named attribute is present and deep-equal to the
// pattern value; a list of patterns matches when any one of them does.
package example

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
)

// maxExactFloat is the largest magnitude below which every integral float64
// is exact.
const maxExactFloat = 1 << 53

// ErrUnsupportedValue is returned when a Go value has no example representation.
var ErrUnsupportedValue = errors.New("unsupported example value")

// Kind discriminates the variants of Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a JSON-shaped value with an explicit kind. Numbers that are
// integers in int64 range are held exactly, so 1, int64(1) and 1.0 are the
// same Value while 9007199254740993 and 9007199254740992 differ. Other numbers
// are held as float64.
type Value struct {
	kind  Kind
	b     bool
	n     float64
	i     int64
	exact bool // i holds the number exactly
	s     string
	arr   []Value
	obj   map[string]Value
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric Value. Integral values within the exact float64
// range are stored as integers.
func Number(n float64) Value {
	if n == math.Trunc(n) && math.Abs(n) <= maxExactFloat {
		return Int(int64(n))
	}

	return Value{kind: KindNumber, n: n}
}

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindNumber, n: float64(i), i: i, exact: true} }

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Value{kind: KindNumber, n: float64(u)}
	}

	return Int(int64(u))
}

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns an array Value.
func Array(items ...Value) Value { return Value{kind: KindArray, arr: items} }

// Object returns an object Value.
func Object(fields map[string]Value) Value { return Value{kind: KindObject, obj: fields} }

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// FromAny converts a decoded JSON value or a plain Go value into a Value.
// Integer and float types of any width become numbers; json.Number is parsed.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return fromUint(uint64(t)), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return fromUint(t), nil
	case json.Number:
		return fromJSONNumber(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}

			items[i] = v
		}

		return Array(items...), nil
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}

			fields[k] = v
		}

		return Object(fields), nil
	}

	return fromReflect(reflect.ValueOf(x))
}

func fromJSONNumber(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}

	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return fromUint(u), nil
	}

	f, err := n.Float64()
	if err != nil {
		return Value{}, fmt.Errorf("%w: number %q", ErrUnsupportedValue, n.String())
	}

	return Number(f), nil
}

// fromReflect handles typed slices and maps such as []string or map[string]int.
func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := range rv.Len() {
			v, err := FromAny(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}

			items[i] = v
		}

		return Array(items...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}

		fields := make(map[string]Value, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			v, err := FromAny(iter.Value().Interface())
			if err != nil {
				return Value{}, err
			}

			fields[iter.Key().String()] = v
		}

		return Object(fields), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}

		return FromAny(rv.Elem().Interface())
	}

	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, rv.Interface())
}

// Equal reports deep equality. Values of different kinds are never equal,
// so the string "1" does not equal the number 1.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		if v.exact && o.exact {
			return v.i == o.i
		}

		return v.n == o.n
	case KindString:
		return v.s == o.s
	case KindArray:
		return slices.EqualFunc(v.arr, o.arr, Value.Equal)
	case KindObject:
		return maps.EqualFunc(v.obj, o.obj, Value.Equal)
	}

	return false
}

// Interface converts v back to the shape encoding/json decodes with
// UseNumber: integers come back as json.Number, other numbers as float64.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if v.exact {
			return json.Number(strconv.FormatInt(v.i, 10))
		}

		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}

		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, item := range v.obj {
			out[k] = item.Interface()
		}

		return out
	}

	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	raw, err := decodeJSON(data)
	if err != nil {
		return err
	}

	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}
