package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/mcperr"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func embedTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_embed",
				mcp.WithDescription("Embed a single text string into a dense vector. Returns a float array."),
				mcp.WithString("text", mcp.Required()),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				text, err := convert.GetStringArg(args, "text")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.Embed{Text: text})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_embed_batch",
				mcp.WithDescription("Embed multiple text strings into dense vectors. More efficient than calling strata_embed in a loop. Returns an array of float arrays."),
				mcp.WithArray("texts", mcp.Required(), mcp.Items(map[string]any{"type": "string"})),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				if _, ok := args["texts"]; !ok {
					return nil, mcperr.MissingArg("texts")
				}
				texts, err := convert.GetOptionalStringArray(args, "texts")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.EmbedBatch{Texts: texts})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_embed_status",
				mcp.WithDescription("Get the embedding pipeline status: auto_embed, batch_size, pending, totals, scheduler depth, and is_idle."),
			),
			Handler: func(s *session.Session, _ map[string]any) (any, error) {
				out, err := s.Execute(stratadb.EmbedStatus{})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
	}
}
