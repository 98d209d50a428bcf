package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func durabilityTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_durability_counters",
				mcp.WithDescription("Get write-path durability counters for monitoring: wal_appends, sync_calls, bytes_written, and sync_nanos."),
			),
			Handler: func(s *session.Session, _ map[string]any) (any, error) {
				out, err := s.Execute(stratadb.DurabilityCounters{})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
	}
}
