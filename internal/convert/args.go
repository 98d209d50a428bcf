package convert

import (
	"math"

	"github.com/strata-ai-labs/strata-mcp/internal/mcperr"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

// Typed argument extraction. Required helpers fail fast with a
// MissingArg naming the field; wrong-typed-but-present values fail with
// an InvalidArg naming the field and the reason.

// GetStringArg reads a required string argument.
func GetStringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", mcperr.MissingArg(name)
	}
	s, ok := v.(string)
	if !ok {
		return "", mcperr.InvalidArg(name, "expected a string")
	}
	return s, nil
}

// GetOptionalString reads an optional string argument, with a default.
func GetOptionalString(args map[string]any, name, def string) string {
	if s, ok := args[name].(string); ok {
		return s
	}
	return def
}

// GetU64Arg reads a required non-negative integer argument.
func GetU64Arg(args map[string]any, name string) (uint64, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, mcperr.MissingArg(name)
	}
	n, ok := toU64(v)
	if !ok {
		return 0, mcperr.InvalidArg(name, "expected a non-negative integer")
	}
	return n, nil
}

// GetOptionalU64 reads an optional non-negative integer argument; nil
// when absent.
func GetOptionalU64(args map[string]any, name string) (*uint64, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	n, ok := toU64(v)
	if !ok {
		return nil, mcperr.InvalidArg(name, "expected a non-negative integer")
	}
	return &n, nil
}

// GetOptionalF64 reads an optional float argument; nil when absent.
func GetOptionalF64(args map[string]any, name string) (*float64, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	f, ok := toF64(v)
	if !ok {
		return nil, mcperr.InvalidArg(name, "expected a number")
	}
	return &f, nil
}

// GetOptionalBool reads an optional boolean argument, with a default.
func GetOptionalBool(args map[string]any, name string, def bool) bool {
	if b, ok := args[name].(bool); ok {
		return b
	}
	return def
}

// GetBoolArg reads a required boolean argument.
func GetBoolArg(args map[string]any, name string) (bool, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return false, mcperr.MissingArg(name)
	}
	b, ok := v.(bool)
	if !ok {
		return false, mcperr.InvalidArg(name, "expected a boolean")
	}
	return b, nil
}

// GetValueArg reads a required argument of any JSON shape as a store
// value.
func GetValueArg(args map[string]any, name string) (stratadb.Value, error) {
	v, ok := args[name]
	if !ok {
		return nil, mcperr.MissingArg(name)
	}
	sv, err := stratadb.FromAny(v)
	if err != nil {
		return nil, mcperr.InvalidArg(name, err.Error())
	}
	return sv, nil
}

// GetVectorArg reads a required array-of-numbers argument as float32s.
func GetVectorArg(args map[string]any, name string) ([]float32, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, mcperr.MissingArg(name)
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, mcperr.InvalidArg(name, "expected array of numbers")
	}
	vec := make([]float32, 0, len(arr))
	for _, item := range arr {
		f, ok := toF64(item)
		if !ok {
			return nil, mcperr.InvalidArg(name, "expected array of numbers")
		}
		vec = append(vec, float32(f))
	}
	return vec, nil
}

// GetOptionalStringArray reads an optional array-of-strings argument.
func GetOptionalStringArray(args map[string]any, name string) ([]string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, mcperr.InvalidArg(name, "expected array of strings")
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, mcperr.InvalidArg(name, "expected array of strings")
		}
		out = append(out, s)
	}
	return out, nil
}

// GetOptionalU32Array reads an optional array of token ids.
func GetOptionalU32Array(args map[string]any, name string) ([]uint32, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, mcperr.InvalidArg(name, "expected array of integers")
	}
	out := make([]uint32, 0, len(arr))
	for _, item := range arr {
		n, ok := toU64(item)
		if !ok || n > math.MaxUint32 {
			return nil, mcperr.InvalidArg(name, "expected array of 32-bit unsigned integers")
		}
		out = append(out, uint32(n))
	}
	return out, nil
}

// GetU32ArrayArg reads a required array of token ids.
func GetU32ArrayArg(args map[string]any, name string) ([]uint32, error) {
	if _, ok := args[name]; !ok {
		return nil, mcperr.MissingArg(name)
	}
	return GetOptionalU32Array(args, name)
}

func toU64(v any) (uint64, bool) {
	f, ok := toF64(v)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxUint64 {
		return 0, false
	}
	return uint64(f), true
}

func toF64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
