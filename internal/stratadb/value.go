// Package stratadb is the embedded versioned store behind the MCP adapter.
//
// It exposes the typed Value/Command/Output algebra and an SQLite-backed
// engine (Strata) that executes commands against branches, spaces, and
// versioned keys. The MCP layers above (session, convert, tools) consume
// only Execute, AccessMode, and the Branches power API.
package stratadb

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Value is the store's typed value model: a closed recursive union of
// Null, Bool, Int, Float, String, Array, and Object.
type Value interface {
	isValue()
}

// Null is the absent value.
type Null struct{}

// Bool is a boolean value.
type Bool bool

// Int is a 64-bit signed integer value.
type Int int64

// Float is a 64-bit floating point value.
type Float float64

// String is a UTF-8 string value.
type String string

// Array is an ordered sequence of values.
type Array []Value

// Object maps string keys to values. Key order is not significant.
type Object map[string]Value

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Int) isValue()    {}
func (Float) isValue()  {}
func (String) isValue() {}
func (Array) isValue()  {}
func (Object) isValue() {}

// VersionedValue pairs a value with its version and write timestamp
// (microseconds since epoch). Versions are strictly increasing per
// (branch, space, key).
type VersionedValue struct {
	Value     Value
	Version   uint64
	Timestamp uint64
}

// FromAny converts a generic decoded-JSON value (the shapes produced by
// encoding/json into any: nil, bool, float64, json.Number, string,
// []any, map[string]any) into a Value.
//
// Numbers become Int when exactly representable as int64, Float when
// representable as float64, and fail otherwise.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(x), nil
	case float64:
		if x == math.Trunc(x) && x >= math.MinInt64 && x <= math.MaxInt64 {
			// Exact int64 only when the float has no fractional part and
			// round-trips: large floats lose integer precision.
			i := int64(x)
			if float64(i) == x {
				return Int(i), nil
			}
		}
		return Float(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i), nil
		}
		if f, err := x.Float64(); err == nil {
			return Float(f), nil
		}
		return nil, fmt.Errorf("number out of range: %s", x.String())
	case int:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("number out of range: %d", x)
		}
		return Int(int64(x)), nil
	case string:
		return String(x), nil
	case []any:
		arr := make(Array, 0, len(x))
		for _, e := range x {
			ev, err := FromAny(e)
			if err != nil {
				return nil, err
			}
			arr = append(arr, ev)
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(x))
		for k, e := range x {
			ev, err := FromAny(e)
			if err != nil {
				return nil, err
			}
			obj[k] = ev
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// ToAny converts a Value back into the generic decoded-JSON model.
// The conversion is total: every Value has a JSON representation.
func ToAny(v Value) any {
	switch x := v.(type) {
	case Null:
		return nil
	case Bool:
		return bool(x)
	case Int:
		return int64(x)
	case Float:
		return float64(x)
	case String:
		return string(x)
	case Array:
		arr := make([]any, 0, len(x))
		for _, e := range x {
			arr = append(arr, ToAny(e))
		}
		return arr
	case Object:
		obj := make(map[string]any, len(x))
		for k, e := range x {
			obj[k] = ToAny(e)
		}
		return obj
	default:
		return nil
	}
}

// EncodeValue serializes a Value to canonical JSON for storage.
func EncodeValue(v Value) ([]byte, error) {
	return json.Marshal(ToAny(v))
}

// DecodeValue parses stored JSON back into a Value. Numbers are decoded
// through json.Number so stored int64s survive the round trip.
func DecodeValue(data []byte) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FromAny(raw)
}

// ValueText flattens a value into searchable text: strings and object
// keys joined in deterministic order. Used to feed the search index.
func ValueText(v Value) string {
	var parts []string
	collectText(v, &parts)
	return strings.Join(parts, " ")
}

func collectText(v Value, parts *[]string) {
	switch x := v.(type) {
	case String:
		*parts = append(*parts, string(x))
	case Array:
		for _, e := range x {
			collectText(e, parts)
		}
	case Object:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			*parts = append(*parts, k)
			collectText(x[k], parts)
		}
	}
}
