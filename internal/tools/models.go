package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func modelsTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_models_list",
				mcp.WithDescription("List all models in the registry with name, task, architecture, default_quant, embedding_dim, is_local, and size_bytes."),
			),
			Handler: func(s *session.Session, _ map[string]any) (any, error) {
				out, err := s.Execute(stratadb.ModelsList{})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_models_pull",
				mcp.WithDescription("Download a model by name from the registry. Returns the model name and local file path."),
				mcp.WithString("name", mcp.Required()),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				name, err := convert.GetStringArg(args, "name")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.ModelsPull{ModelName: name})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_models_local",
				mcp.WithDescription("List models present on disk. Same format as strata_models_list."),
			),
			Handler: func(s *session.Session, _ map[string]any) (any, error) {
				out, err := s.Execute(stratadb.ModelsLocal{})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
	}
}
