package stratadb

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAny_NumbersPreferInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"whole float", float64(42), Int(42)},
		{"negative whole float", float64(-7), Int(-7)},
		{"zero", float64(0), Int(0)},
		{"fractional", float64(3.5), Float(3.5)},
		{"json number int", json.Number("9007199254740993"), Int(9007199254740993)},
		{"json number float", json.Number("2.25"), Float(2.25)},
		{"huge whole float keeps float", float64(1e300), Float(1e300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAny_NumberOutOfRange(t *testing.T) {
	// Larger than both int64 and float64 can represent.
	_, err := FromAny(json.Number("1e999"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "number out of range")

	_, err = FromAny(uint64(math.MaxUint64))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "number out of range")
}

func TestFromAny_Nested(t *testing.T) {
	got, err := FromAny(map[string]any{
		"name":  "strata",
		"tags":  []any{"db", "versioned"},
		"count": float64(3),
		"meta":  map[string]any{"active": true, "score": 0.5},
		"none":  nil,
	})
	require.NoError(t, err)

	want := Object{
		"name":  String("strata"),
		"tags":  Array{String("db"), String("versioned")},
		"count": Int(3),
		"meta":  Object{"active": Bool(true), "score": Float(0.5)},
		"none":  Null{},
	}
	assert.Equal(t, want, got)
}

func TestFromAny_NestedErrorPropagates(t *testing.T) {
	_, err := FromAny([]any{float64(1), json.Number("1e999")})
	require.Error(t, err)

	_, err = FromAny(map[string]any{"bad": json.Number("1e999")})
	require.Error(t, err)
}

func TestFromAny_UnsupportedType(t *testing.T) {
	_, err := FromAny(struct{}{})
	require.Error(t, err)
}

func TestEncodeDecodeValue_RoundTrip(t *testing.T) {
	values := []Value{
		Null{},
		Bool(true),
		Int(math.MaxInt64),
		Int(math.MinInt64),
		Float(1.5),
		String("hello é世"),
		Array{Int(1), String("two"), Array{Bool(false)}},
		Object{"k": Object{"nested": Int(-3)}},
	}
	for _, v := range values {
		data, err := EncodeValue(v)
		require.NoError(t, err)
		back, err := DecodeValue(data)
		require.NoError(t, err)
		assert.Equal(t, v, back, "round trip of %#v", v)
	}
}

func TestDecodeValue_LargeIntSurvives(t *testing.T) {
	// Beyond float64's 2^53 integer range: must come back as Int, not a
	// rounded Float.
	v, err := DecodeValue([]byte("9007199254740993"))
	require.NoError(t, err)
	assert.Equal(t, Int(9007199254740993), v)
}

func TestValueText_DeterministicKeyOrder(t *testing.T) {
	v := Object{
		"zeta":  String("last"),
		"alpha": Array{String("first"), Int(42)},
	}
	assert.Equal(t, "alpha first zeta last", ValueText(v))
}

func TestValueText_IgnoresNonText(t *testing.T) {
	assert.Equal(t, "", ValueText(Int(5)))
	assert.Equal(t, "", ValueText(Null{}))
	assert.Equal(t, "x", ValueText(Array{Int(1), String("x"), Bool(true)}))
}
