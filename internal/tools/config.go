package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func configTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_configure_get",
				mcp.WithDescription("Read the store's runtime configuration: durability mode, auto-embed flag, and generation endpoint."),
			),
			Handler: func(s *session.Session, _ map[string]any) (any, error) {
				out, err := s.Execute(stratadb.ConfigGet{})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_configure_durability",
				mcp.WithDescription("Select the durability mode: 'full' syncs on every write, 'relaxed' trades durability for throughput."),
				mcp.WithString("mode", mcp.Required(), mcp.Enum("full", "relaxed")),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				mode, err := convert.GetStringArg(args, "mode")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.ConfigSetDurability{Mode: mode})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_configure_auto_embed",
				mcp.WithDescription("Toggle automatic embedding of written text for semantic search."),
				mcp.WithBoolean("enabled", mcp.Required()),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				enabled, err := convert.GetBoolArg(args, "enabled")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.ConfigSetAutoEmbed{Enabled: enabled})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_configure_model",
				mcp.WithDescription("Point text generation at an OpenAI-compatible endpoint."),
				mcp.WithString("endpoint", mcp.Required(), mcp.Description("Base URL of the endpoint")),
				mcp.WithString("model", mcp.Description("Default model name")),
				mcp.WithString("api_key", mcp.Description("Bearer token sent with requests")),
				mcp.WithNumber("timeout_ms", mcp.Description("Request timeout in milliseconds")),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				endpoint, err := convert.GetStringArg(args, "endpoint")
				if err != nil {
					return nil, err
				}
				model := convert.GetOptionalString(args, "model", "")
				apiKey := convert.GetOptionalString(args, "api_key", "")
				timeout, err := convert.GetOptionalU64(args, "timeout_ms")
				if err != nil {
					return nil, err
				}
				cmd := stratadb.ConfigSetModel{Endpoint: endpoint, Model: model, APIKey: apiKey}
				if timeout != nil {
					cmd.TimeoutMs = *timeout
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
