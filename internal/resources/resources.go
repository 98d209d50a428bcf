// Package resources implements MCP resource handlers for the store.
//
// Resources provide read-only data that the host can consume for
// context. They use URI-based addressing (strata://...) following MCP
// conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

// Handler manages strata resource endpoints.
type Handler struct {
	sess *session.Session
}

// NewHandler creates a resource Handler bound to the server session.
func NewHandler(sess *session.Session) *Handler {
	return &Handler{sess: sess}
}

// StatusResource returns the MCP resource definition for store status.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		"strata://status",
		"Strata Store Status",
		mcp.WithResourceDescription("Current branch, space, transaction state, and store statistics"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStatus returns the session context and store info as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := h.sess.Execute(stratadb.Info{})
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	info, err := convert.OutputToJSON(out)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	status := map[string]any{
		"branch":         h.sess.Branch(),
		"space":          h.sess.Space(),
		"in_transaction": h.sess.InTransaction(),
		"read_only":      h.sess.IsReadOnly(),
		"store":          info,
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
