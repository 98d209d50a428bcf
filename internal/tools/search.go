package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func searchTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_search",
				mcp.WithDescription("Ranked full-text search across the current branch and space. Returns an array of { entity, primitive, score, rank, snippet }."),
				mcp.WithString("query", mcp.Required()),
				mcp.WithNumber("k", mcp.Description("Maximum results, default 10")),
				mcp.WithArray("primitives",
					mcp.Description("Optional primitive kind filter (kv, state, json, event)"),
					mcp.Items(map[string]any{"type": "string"}),
				),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				query, err := convert.GetStringArg(args, "query")
				if err != nil {
					return nil, err
				}
				k, err := convert.GetOptionalU64(args, "k")
				if err != nil {
					return nil, err
				}
				primitives, err := convert.GetOptionalStringArray(args, "primitives")
				if err != nil {
					return nil, err
				}
				sq := stratadb.SearchQuery{Query: query, Primitives: primitives}
				if k != nil {
					sq.K = *k
				}
				out, err := s.Execute(stratadb.Search{Branch: s.Branch(), Space: s.Space(), Query: sq})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
	}
}
