package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func stateTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_state_set",
				mcp.WithDescription("Set a state cell. State cells version like KV but live in their own namespace. Returns { version }."),
				mcp.WithString("key", mcp.Required()),
				mcp.WithObject("value", mcp.Required(), mcp.Description("Value to store (any JSON type)")),
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
				out, err := s.Execute(stratadb.StateSet{Branch: s.Branch(), Space: s.Space(), Key: key, Value: value})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_state_get",
				mcp.WithDescription("Get a state cell with version metadata. Returns { value, version, timestamp } or null."),
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
				out, err := s.Execute(stratadb.StateGet{Branch: s.Branch(), Space: s.Space(), Key: key, AsOf: asOf})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_state_history",
				mcp.WithDescription("List every recorded version of a state cell, oldest first."),
				mcp.WithString("key", mcp.Required()),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				key, err := convert.GetStringArg(args, "key")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.StateHistory{Branch: s.Branch(), Space: s.Space(), Key: key})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
	}
}
