// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it opens the store, builds the session
// and tool registry, and injects them into the MCP server. No business
// logic lives here — only wiring.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/strata-ai-labs/strata-mcp/internal/config"
	"github.com/strata-ai-labs/strata-mcp/internal/resources"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
	"github.com/strata-ai-labs/strata-mcp/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools and
// resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the store's database connection
// and must be called on shutdown (typically via defer). It is always
// non-nil.
func New(cfg *config.Config) (*server.MCPServer, func(), error) {
	// stdout carries the MCP transport; slog's default stderr handler
	// keeps logs out of the protocol stream.
	logger := slog.With("component", "server")

	// --- Open the store ---

	modelsDir := cfg.ModelsDir
	if modelsDir == "" {
		modelsDir = filepath.Join(filepath.Dir(cfg.DBPath), "models")
	}

	store, err := stratadb.Open(cfg.DBPath, stratadb.Options{
		ReadOnly:              cfg.ReadOnly,
		ModelsDir:             modelsDir,
		RetentionKeepVersions: cfg.RetentionKeepVersions,
	})
	if err != nil {
		return nil, noop, fmt.Errorf("opening store %s: %w", cfg.DBPath, err)
	}

	cleanup := func() {
		_ = store.Close()
	}

	// --- Build the session ---

	sess := session.New(store)
	if err := seedContext(sess, cfg); err != nil {
		cleanup()
		return nil, noop, err
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"strata-mcp",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions(cfg.Developer)),
	)

	// --- Register tools ---

	registry := tools.NewAgent()
	if cfg.Developer {
		registry = tools.NewDeveloper()
	}
	for _, def := range registry.Tools() {
		s.AddTool(def, handlerFor(registry, sess, def.Name))
	}

	// --- Register resources ---

	resourceHandler := resources.NewHandler(sess)
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)

	logger.Info("server ready",
		"db", cfg.DBPath,
		"branch", sess.Branch(),
		"space", sess.Space(),
		"read_only", cfg.ReadOnly,
		"developer", cfg.Developer,
		"tools", len(registry.Tools()),
	)
	return s, cleanup, nil
}

// seedContext applies the configured branch and space to a fresh
// session. A configured branch that doesn't exist yet is created so
// the server comes up on it instead of failing.
func seedContext(sess *session.Session, cfg *config.Config) error {
	if cfg.Branch != "" && cfg.Branch != sess.Branch() {
		if err := sess.SwitchBranch(cfg.Branch); err != nil {
			if cfg.ReadOnly {
				return fmt.Errorf("switching to branch %s: %w", cfg.Branch, err)
			}
			if _, err := sess.Execute(stratadb.BranchCreate{BranchID: cfg.Branch}); err != nil {
				return fmt.Errorf("creating branch %s: %w", cfg.Branch, err)
			}
			if err := sess.SwitchBranch(cfg.Branch); err != nil {
				return fmt.Errorf("switching to branch %s: %w", cfg.Branch, err)
			}
		}
	}
	if cfg.Space != "" {
		sess.SwitchSpace(cfg.Space)
	}
	return nil
}

// handlerFor adapts one registry entry to the mcp-go handler signature.
// Handler errors become tool-result errors (not protocol errors) so the
// client model can read and react to them.
func handlerFor(registry *tools.Registry, sess *session.Session, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := registry.Dispatch(sess, name, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// noop is a no-op cleanup function used as the default on early failure.
func noop() {}

func serverInstructions(developer bool) string {
	if developer {
		return `Strata is a versioned, branchable memory store. Developer mode exposes the
full strata_* tool surface: key-value, state, events, JSON documents,
spaces, branches, vectors, transactions, full-text search, bundles,
retention, configuration, embeddings, inference, and models.

Every write is versioned and nothing is destroyed: deletes write
tombstones and history stays queryable. Branches isolate work like git
branches; transactions group writes atomically.`
	}
	return `Strata is your persistent memory. Use strata_store to remember facts,
strata_recall to fetch them by key, strata_search to find them by
meaning, strata_log to record events, and strata_history to see how a
value changed over time. strata_branch isolates experiments, and
strata_status reports the store's health.

Everything is versioned — storing under an existing key keeps the old
value in history, and forgetting a key never destroys its past.`
}
