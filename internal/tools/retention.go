package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func retentionTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_retention_apply",
				mcp.WithDescription("Apply the retention policy to the current branch, trimming old versions according to configured rules. Returns null on success."),
			),
			Handler: func(s *session.Session, _ map[string]any) (any, error) {
				out, err := s.Execute(stratadb.RetentionApply{Branch: s.Branch()})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
	}
}
