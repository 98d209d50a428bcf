// Package tools is the tool catalogue and dispatcher: each tool pairs an
// MCP definition with a handler that extracts arguments, builds one
// store command, executes it through the session, and shapes the result.
package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/mcperr"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
)

// Handler executes one tool call against a session and returns the JSON
// result body.
type Handler func(s *session.Session, args map[string]any) (any, error)

// Tool pairs a definition with its handler.
type Tool struct {
	Def     mcp.Tool
	Handler Handler
}

// Registry is the tool catalogue for one server mode. Capability tags
// are recorded once at registration, so dispatch is a pure map lookup
// with no name scanning.
type Registry struct {
	order      []string
	defs       map[string]mcp.Tool
	handlers   map[string]Handler
	capability map[string]string
}

func newRegistry() *Registry {
	return &Registry{
		defs:       map[string]mcp.Tool{},
		handlers:   map[string]Handler{},
		capability: map[string]string{},
	}
}

// NewAgent builds the curated agent registry: exactly the eight
// intent-level tools, nothing else reachable.
func NewAgent() *Registry {
	r := newRegistry()
	r.register("agent", agentTools())
	return r
}

// NewDeveloper builds the full granular registry, one module per store
// capability.
func NewDeveloper() *Registry {
	r := newRegistry()
	r.register("database", databaseTools())
	r.register("kv", kvTools())
	r.register("state", stateTools())
	r.register("event", eventTools())
	r.register("json", jsonTools())
	r.register("space", spaceTools())
	r.register("branch", branchTools())
	r.register("vector", vectorTools())
	r.register("txn", txnTools())
	r.register("search", searchTools())
	r.register("bundle", bundleTools())
	r.register("retention", retentionTools())
	r.register("config", configTools())
	r.register("embed", embedTools())
	r.register("inference", inferenceTools())
	r.register("models", modelsTools())
	r.register("durability", durabilityTools())
	return r
}

func (r *Registry) register(capability string, tools []Tool) {
	for _, t := range tools {
		name := t.Def.Name
		r.order = append(r.order, name)
		r.defs[name] = t.Def
		r.handlers[name] = t.Handler
		r.capability[name] = capability
	}
}

// Tools lists every registered tool definition in registration order.
func (r *Registry) Tools() []mcp.Tool {
	out := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// Capability reports which module owns a tool name.
func (r *Registry) Capability(name string) (string, bool) {
	c, ok := r.capability[name]
	return c, ok
}

// Dispatch resolves a tool name and runs its handler. Unknown names
// fail without touching the session.
func (r *Registry) Dispatch(s *session.Session, name string, args map[string]any) (any, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, mcperr.UnknownTool(name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return handler(s, args)
}
