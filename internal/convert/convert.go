// Package convert translates between the untyped JSON the wire carries
// and the store's typed value, command, and output algebra.
package convert

import (
	"github.com/strata-ai-labs/strata-mcp/internal/mcperr"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

// JSONToValue converts a decoded JSON value into a store value. Numbers
// that fit a 64-bit signed integer become Int, others Float; anything
// else is an invalid argument.
func JSONToValue(j any) (stratadb.Value, error) {
	v, err := stratadb.FromAny(j)
	if err != nil {
		return nil, mcperr.InvalidArg("value", err.Error())
	}
	return v, nil
}

// ValueToJSON converts a store value back into plain JSON data.
func ValueToJSON(v stratadb.Value) any {
	return stratadb.ToAny(v)
}

// VersionedToJSON renders a versioned value in its wire shape.
func VersionedToJSON(vv stratadb.VersionedValue) map[string]any {
	return map[string]any{
		"value":     ValueToJSON(vv.Value),
		"version":   vv.Version,
		"timestamp": vv.Timestamp,
	}
}
