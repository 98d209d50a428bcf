package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func spaceTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_space_list",
				mcp.WithDescription("List the spaces that hold data on the current branch."),
			),
			Handler: func(s *session.Session, _ map[string]any) (any, error) {
				out, err := s.Execute(stratadb.SpaceList{Branch: s.Branch()})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_space_switch",
				mcp.WithDescription("Switch the session to another space. Spaces are free-form labels; the switch always succeeds."),
				mcp.WithString("name", mcp.Required()),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				name, err := convert.GetStringArg(args, "name")
				if err != nil {
					return nil, err
				}
				s.SwitchSpace(name)
				return map[string]any{"switched": true, "space": name}, nil
			},
		},
		{
			Def: mcp.NewTool("strata_space_clear",
				mcp.WithDescription("Delete all live keys in the current space. Deletions are versioned; history survives. Returns the number of keys cleared."),
			),
			Handler: func(s *session.Session, _ map[string]any) (any, error) {
				out, err := s.Execute(stratadb.SpaceClear{Branch: s.Branch(), Space: s.Space()})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
	}
}
