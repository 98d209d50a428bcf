package convert

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-ai-labs/strata-mcp/internal/mcperr"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

// genFractionalFloat generates floats that keep their Float identity
// through conversion; whole-valued floats normalize to Int.
func genFractionalFloat() gopter.Gen {
	return gen.Float64Range(-1e6, 1e6).SuchThat(func(f float64) bool {
		return f != math.Trunc(f)
	})
}

func genScalarValue() gopter.Gen {
	return gen.OneGenOf(
		gen.Const(stratadb.Null{}).Map(func(n stratadb.Null) stratadb.Value { return n }),
		gen.Bool().Map(func(b bool) stratadb.Value { return stratadb.Bool(b) }),
		gen.Int64().Map(func(i int64) stratadb.Value { return stratadb.Int(i) }),
		genFractionalFloat().Map(func(f float64) stratadb.Value { return stratadb.Float(f) }),
		gen.AlphaString().Map(func(s string) stratadb.Value { return stratadb.String(s) }),
	)
}

func genValue(depth int) gopter.Gen {
	if depth <= 0 {
		return genScalarValue()
	}
	return gen.OneGenOf(
		genScalarValue(),
		gen.SliceOfN(3, genValue(depth-1)).Map(func(vs []stratadb.Value) stratadb.Value {
			return stratadb.Array(vs)
		}),
		gen.MapOf(gen.Identifier(), genValue(depth-1)).Map(func(m map[string]stratadb.Value) stratadb.Value {
			return stratadb.Object(m)
		}),
	)
}

func TestValueCodec_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("values survive the JSON round trip", prop.ForAll(
		func(v stratadb.Value) bool {
			back, err := JSONToValue(ValueToJSON(v))
			return err == nil && reflect.DeepEqual(back, v)
		},
		genValue(3),
	))

	properties.Property("rendered values marshal to JSON text", prop.ForAll(
		func(v stratadb.Value) bool {
			_, err := json.Marshal(ValueToJSON(v))
			return err == nil
		},
		genValue(3),
	))

	properties.Property("whole JSON numbers become integers", prop.ForAll(
		func(i int64) bool {
			v, err := JSONToValue(float64(i))
			return err == nil && v == stratadb.Int(i)
		},
		gen.Int64Range(-(1<<52), 1<<52),
	))

	properties.Property("fractional JSON numbers stay floats", prop.ForAll(
		func(f float64) bool {
			v, err := JSONToValue(f)
			return err == nil && v == stratadb.Float(f)
		},
		genFractionalFloat(),
	))

	properties.TestingRun(t)
}

func TestJSONToValue_LargeIntegersKeepPrecision(t *testing.T) {
	// 2^53+1 is not representable as float64; json.Number keeps it exact.
	v, err := JSONToValue(json.Number("9007199254740993"))
	require.NoError(t, err)
	assert.Equal(t, stratadb.Int(9007199254740993), v)
}

func TestJSONToValue_OutOfRangeNumberFails(t *testing.T) {
	_, err := JSONToValue(json.Number("1e999"))
	require.Error(t, err)
	me := err.(*mcperr.Error)
	assert.Equal(t, mcperr.KindInvalidArg, me.Kind)
	assert.Contains(t, me.Message, "number out of range")
}

func TestJSONToValue_UnsupportedTypeFails(t *testing.T) {
	_, err := JSONToValue(make(chan int))
	require.Error(t, err)
	assert.Equal(t, mcperr.KindInvalidArg, err.(*mcperr.Error).Kind)
}

func TestVersionedToJSON_Shape(t *testing.T) {
	got := VersionedToJSON(stratadb.VersionedValue{
		Value:     stratadb.Object{"a": stratadb.Int(1)},
		Version:   3,
		Timestamp: 1700000000000000,
	})
	assert.Equal(t, map[string]any{
		"value":     map[string]any{"a": int64(1)},
		"version":   uint64(3),
		"timestamp": uint64(1700000000000000),
	}, got)
}
