package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func eventTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_event_append",
				mcp.WithDescription("Append an immutable event under a type tag. Events can never be overwritten or deleted. Returns { version } carrying the per-type sequence number."),
				mcp.WithString("event", mcp.Required(), mcp.Description("Event type tag")),
				mcp.WithObject("data", mcp.Required(), mcp.Description("Event payload (any JSON type)")),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				event, err := convert.GetStringArg(args, "event")
				if err != nil {
					return nil, err
				}
				data, err := convert.GetValueArg(args, "data")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.EventAppend{
					Branch: s.Branch(), Space: s.Space(), EventType: event, Payload: data,
				})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_event_list",
				mcp.WithDescription("List events oldest first, optionally filtered by type tag. Returns an array of { value, version, timestamp }."),
				mcp.WithString("event", mcp.Description("Optional event type filter")),
				mcp.WithNumber("limit", mcp.Description("Maximum events to return")),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				event := convert.GetOptionalString(args, "event", "")
				limit, err := convert.GetOptionalU64(args, "limit")
				if err != nil {
					return nil, err
				}
				cmd := stratadb.EventList{Branch: s.Branch(), Space: s.Space(), EventType: event}
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
