package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func jsonTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_json_set",
				mcp.WithDescription("Store a JSON document, or update a nested field when 'path' targets one ('$' replaces the whole document). Returns { version }."),
				mcp.WithString("key", mcp.Required()),
				mcp.WithObject("value", mcp.Required(), mcp.Description("Value to store (any JSON type)")),
				mcp.WithString("path", mcp.Description("JSONPath, default '$'")),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				key, err := convert.GetStringArg(args, "key")
				if err != nil {
					return nil, err
				}
				value, err := convert.GetValueArg(args, "value")
				if err != nil {
					return nil, err
				}
				path := convert.GetOptionalString(args, "path", "$")
				out, err := s.Execute(stratadb.JsonSet{
					Branch: s.Branch(), Space: s.Space(), Key: key, Path: path, Value: value,
				})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_json_get",
				mcp.WithDescription("Read a document or a nested field, optionally as of a past timestamp. Returns { value, version, timestamp } or null."),
				mcp.WithString("key", mcp.Required()),
				mcp.WithString("path", mcp.Description("JSONPath, default '$'")),
				mcp.WithNumber("as_of"),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				key, err := convert.GetStringArg(args, "key")
				if err != nil {
					return nil, err
				}
				path := convert.GetOptionalString(args, "path", "$")
				asOf, err := convert.GetOptionalU64(args, "as_of")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.JsonGet{
					Branch: s.Branch(), Space: s.Space(), Key: key, Path: path, AsOf: asOf,
				})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_json_getv",
				mcp.WithDescription("List the full version history of a document, oldest first."),
				mcp.WithString("key", mcp.Required()),
				mcp.WithNumber("as_of"),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				key, err := convert.GetStringArg(args, "key")
				if err != nil {
					return nil, err
				}
				asOf, err := convert.GetOptionalU64(args, "as_of")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.JsonGetv{
					Branch: s.Branch(), Space: s.Space(), Key: key, AsOf: asOf,
				})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_json_delete",
				mcp.WithDescription("Delete a document ('$') or remove a nested field by path. Returns the number of deletions performed (0 or 1)."),
				mcp.WithString("key", mcp.Required()),
				mcp.WithString("path", mcp.Description("JSONPath, default '$'")),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				key, err := convert.GetStringArg(args, "key")
				if err != nil {
					return nil, err
				}
				path := convert.GetOptionalString(args, "path", "$")
				out, err := s.Execute(stratadb.JsonDelete{
					Branch: s.Branch(), Space: s.Space(), Key: key, Path: path,
				})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_json_list",
				mcp.WithDescription("Page through document keys with an opaque cursor. Returns { keys, cursor? }."),
				mcp.WithString("prefix", mcp.Description("Optional key prefix filter")),
				mcp.WithNumber("limit", mcp.Description("Page size, default 100")),
				mcp.WithString("cursor", mcp.Description("Continuation cursor from a previous page")),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				prefix := convert.GetOptionalString(args, "prefix", "")
				cursor := convert.GetOptionalString(args, "cursor", "")
				limit, err := convert.GetOptionalU64(args, "limit")
				if err != nil {
					return nil, err
				}
				cmd := stratadb.JsonList{Branch: s.Branch(), Space: s.Space(), Prefix: prefix, Cursor: cursor}
				if limit != nil {
					cmd.Limit = *limit
				}
				out, err := s.Execute(cmd)
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
	}
}
