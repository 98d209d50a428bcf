package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/mcperr"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func kvTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_kv_put",
				mcp.WithDescription("Store a value under a key. Returns { version }."),
				mcp.WithString("key", mcp.Required()),
				mcp.WithObject("value", mcp.Required(), mcp.Description("Value to store (any JSON type)")),
			),
			Handler: kvPut,
		},
		{
			Def: mcp.NewTool("strata_kv_get",
				mcp.WithDescription("Get the latest value for a key, or its value as of a past timestamp. Returns the value or null."),
				mcp.WithString("key", mcp.Required()),
				mcp.WithNumber("as_of", mcp.Description("Optional microsecond timestamp for time-travel reads")),
			),
			Handler: kvGet,
		},
		{
			Def: mcp.NewTool("strata_kv_get_versioned",
				mcp.WithDescription("Get the latest value with version metadata. Returns { value, version, timestamp } or null."),
				mcp.WithString("key", mcp.Required()),
				mcp.WithNumber("as_of"),
			),
			Handler: kvGetVersioned,
		},
		{
			Def: mcp.NewTool("strata_kv_delete",
				mcp.WithDescription("Delete a key. The deletion is versioned; history survives. Returns the number of keys deleted (0 or 1)."),
				mcp.WithString("key", mcp.Required()),
			),
			Handler: kvDelete,
		},
		{
			Def: mcp.NewTool("strata_kv_history",
				mcp.WithDescription("List every recorded version of a key, oldest first. Returns an array of { value, version, timestamp } or null for a never-written key."),
				mcp.WithString("key", mcp.Required()),
				mcp.WithNumber("as_of"),
			),
			Handler: kvHistory,
		},
		{
			Def: mcp.NewTool("strata_kv_keys",
				mcp.WithDescription("List live keys in the current space, optionally filtered by prefix."),
				mcp.WithString("prefix", mcp.Description("Optional key prefix filter")),
			),
			Handler: kvKeys,
		},
		{
			Def: mcp.NewTool("strata_kv_batch_put",
				mcp.WithDescription("Store several keys in one call. Items succeed or fail independently; returns per-item { version } or { error }."),
				mcp.WithArray("entries", mcp.Required(),
					mcp.Description("Array of { key, value } objects"),
					mcp.Items(map[string]any{"type": "object"}),
				),
			),
			Handler: kvBatchPut,
		},
	}
}

func kvPut(s *session.Session, args map[string]any) (any, error) {
	key, err := convert.GetStringArg(args, "key")
	if err != nil {
		return nil, err
	}
	value, err := convert.GetValueArg(args, "value")
	if err != nil {
		return nil, err
	}
	out, err := s.Execute(stratadb.KvPut{Branch: s.Branch(), Space: s.Space(), Key: key, Value: value})
	if err != nil {
		return nil, err
	}
	return convert.OutputToJSON(out)
}

func kvGet(s *session.Session, args map[string]any) (any, error) {
	key, err := convert.GetStringArg(args, "key")
	if err != nil {
		return nil, err
	}
	asOf, err := convert.GetOptionalU64(args, "as_of")
	if err != nil {
		return nil, err
	}
	out, err := s.Execute(stratadb.KvGet{Branch: s.Branch(), Space: s.Space(), Key: key, AsOf: asOf})
	if err != nil {
		return nil, err
	}
	return convert.OutputToJSON(out)
}

func kvGetVersioned(s *session.Session, args map[string]any) (any, error) {
	key, err := convert.GetStringArg(args, "key")
	if err != nil {
		return nil, err
	}
	asOf, err := convert.GetOptionalU64(args, "as_of")
	if err != nil {
		return nil, err
	}
	out, err := s.Execute(stratadb.KvGetVersioned{Branch: s.Branch(), Space: s.Space(), Key: key, AsOf: asOf})
	if err != nil {
		return nil, err
	}
	return convert.OutputToJSON(out)
}

func kvDelete(s *session.Session, args map[string]any) (any, error) {
	key, err := convert.GetStringArg(args, "key")
	if err != nil {
		return nil, err
	}
	out, err := s.Execute(stratadb.KvDelete{Branch: s.Branch(), Space: s.Space(), Key: key})
	if err != nil {
		return nil, err
	}
	return convert.OutputToJSON(out)
}

func kvHistory(s *session.Session, args map[string]any) (any, error) {
	key, err := convert.GetStringArg(args, "key")
	if err != nil {
		return nil, err
	}
	asOf, err := convert.GetOptionalU64(args, "as_of")
	if err != nil {
		return nil, err
	}
	out, err := s.Execute(stratadb.KvHistory{Branch: s.Branch(), Space: s.Space(), Key: key, AsOf: asOf})
	if err != nil {
		return nil, err
	}
	return convert.OutputToJSON(out)
}

func kvKeys(s *session.Session, args map[string]any) (any, error) {
	prefix := convert.GetOptionalString(args, "prefix", "")
	out, err := s.Execute(stratadb.KvKeys{Branch: s.Branch(), Space: s.Space(), Prefix: prefix})
	if err != nil {
		return nil, err
	}
	return convert.OutputToJSON(out)
}

func kvBatchPut(s *session.Session, args map[string]any) (any, error) {
	raw, ok := args["entries"]
	if !ok || raw == nil {
		return nil, mcperr.MissingArg("entries")
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, mcperr.InvalidArg("entries", "expected array of { key, value } objects")
	}

	entries := make([]stratadb.BatchEntry, 0, len(arr))
	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, mcperr.InvalidArg("entries", "expected array of { key, value } objects")
		}
		key, err := convert.GetStringArg(obj, "key")
		if err != nil {
			return nil, err
		}
		value, err := convert.GetValueArg(obj, "value")
		if err != nil {
			return nil, err
		}
		entries = append(entries, stratadb.BatchEntry{Key: key, Value: value})
	}

	out, err := s.Execute(stratadb.KvBatchPut{Branch: s.Branch(), Space: s.Space(), Entries: entries})
	if err != nil {
		return nil, err
	}
	return convert.OutputToJSON(out)
}
