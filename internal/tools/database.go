package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func databaseTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_db_info",
				mcp.WithDescription("Get database info: version, uptime, branch count, and total key count."),
			),
			Handler: func(s *session.Session, _ map[string]any) (any, error) {
				out, err := s.Execute(stratadb.Info{})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_db_ping",
				mcp.WithDescription("Liveness check. Returns { pong: true, version }."),
			),
			Handler: func(s *session.Session, _ map[string]any) (any, error) {
				out, err := s.Execute(stratadb.Ping{})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_db_time_range",
				mcp.WithDescription("Get the oldest and latest write timestamps on the current branch."),
			),
			Handler: func(s *session.Session, _ map[string]any) (any, error) {
				out, err := s.Execute(stratadb.TimeRange{Branch: s.Branch()})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
	}
}
