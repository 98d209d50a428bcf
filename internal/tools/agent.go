package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/mcperr"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

// agentTools is the curated surface for AI agents: eight intent-level
// tools that collapse the granular developer operations into a simple
// cognitive interface. All data operations go through the JSON document
// store so agents get structured access with optional path targeting.
func agentTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_store",
				mcp.WithDescription(
					"Store a JSON document by key. Use this whenever you need to persist structured data — "+
						"configuration, user profiles, conversation state, analysis results, or any data you'll "+
						"need later. The value can be any JSON type. Use the optional 'path' parameter with "+
						"JSONPath syntax (e.g. '$.settings.theme') to update a specific nested field without "+
						"overwriting the whole document — omit 'path' to store the entire value. Every write is "+
						"versioned — nothing is ever lost. Returns { key, version, stored: true }.",
				),
				mcp.WithString("key", mcp.Required(), mcp.Description("Document key")),
				mcp.WithObject("value", mcp.Required(), mcp.Description("Value to store (any JSON type)")),
				mcp.WithString("path", mcp.Description("Optional JSONPath targeting a nested field")),
			),
			Handler: agentStore,
		},
		{
			Def: mcp.NewTool("strata_recall",
				mcp.WithDescription(
					"Retrieve a document by key. Returns the stored value with version metadata, or null if "+
						"the key doesn't exist. Use 'path' with JSONPath syntax to read a specific nested field — "+
						"omit to get the entire document. Pass 'as_of' (microsecond timestamp) to read what this "+
						"key contained at any past point in time. Returns { value, version, timestamp } or null.",
				),
				mcp.WithString("key", mcp.Required(), mcp.Description("Document key")),
				mcp.WithString("path", mcp.Description("Optional JSONPath targeting a nested field")),
				mcp.WithNumber("as_of", mcp.Description("Optional microsecond timestamp for time-travel reads")),
			),
			Handler: agentRecall,
		},
		{
			Def: mcp.NewTool("strata_search",
				mcp.WithDescription(
					"Find relevant data across everything stored using natural language. Use this when you "+
						"don't know the exact key — describe what you're looking for and get ranked results. "+
						"Searches across all documents and events simultaneously using keyword matching (BM25). "+
						"Returns an array of { key, score, snippet } ranked by relevance. Use 'k' to control "+
						"how many results to return (default 10).",
				),
				mcp.WithString("query", mcp.Required(), mcp.Description("Natural-language search query")),
				mcp.WithNumber("k", mcp.Description("Maximum number of results (default 10)")),
			),
			Handler: agentSearch,
		},
		{
			Def: mcp.NewTool("strata_forget",
				mcp.WithDescription(
					"Delete a document by key. Returns { deleted: true } if the key existed, "+
						"{ deleted: false } otherwise. The deletion itself is versioned — the document's "+
						"history stays visible via strata_history, and time-travel reads via strata_recall "+
						"with 'as_of' still return the value as it existed before deletion.",
				),
				mcp.WithString("key", mcp.Required(), mcp.Description("Document key")),
			),
			Handler: agentForget,
		},
		{
			Def: mcp.NewTool("strata_log",
				mcp.WithDescription(
					"Append an immutable event to the log. Use this for recording actions, decisions, "+
						"observations, errors, or any sequential data that should never change after the fact. "+
						"Unlike strata_store, events cannot be overwritten or deleted — they form a permanent, "+
						"ordered, timestamped record grouped by event type. Returns { sequence, logged: true }.",
				),
				mcp.WithString("event", mcp.Required(), mcp.Description("Event type tag (e.g. \"user_action\", \"decision\")")),
				mcp.WithObject("data", mcp.Required(), mcp.Description("Event payload (any JSON type)")),
			),
			Handler: agentLog,
		},
		{
			Def: mcp.NewTool("strata_branch",
				mcp.WithDescription(
					"Manage branches for isolated, parallel workstreams. Branches are snapshots of all data — "+
						"like git branches but for your entire database. Use 'fork' before risky experiments, "+
						"'merge' to apply results back, or 'diff' to compare. Recommended workflow: fork → "+
						"experiment → merge if good, delete if bad. Params: 'name' for create/switch/fork/delete, "+
						"'source' for merge, 'compare' for diff.",
				),
				mcp.WithString("action", mcp.Required(),
					mcp.Description("The branch operation to perform"),
					mcp.Enum("create", "switch", "list", "fork", "merge", "diff", "delete"),
				),
				mcp.WithString("name", mcp.Description("Branch name — used by create, switch, fork, delete")),
				mcp.WithString("source", mcp.Description("Source branch to merge from — used by merge")),
				mcp.WithString("compare", mcp.Description("Branch to compare against current — used by diff")),
			),
			Handler: agentBranch,
		},
		{
			Def: mcp.NewTool("strata_history",
				mcp.WithDescription(
					"View the complete version history of a key, or discover the time range available for "+
						"time-travel. With 'key': returns every historical version with values, version numbers, "+
						"and timestamps. Without 'key': returns the oldest and latest timestamps on the current "+
						"branch, so you know the full range available for 'as_of' queries in strata_recall.",
				),
				mcp.WithString("key", mcp.Description("Document key (omit for the branch time range)")),
				mcp.WithNumber("as_of", mcp.Description("Optional microsecond timestamp upper bound")),
			),
			Handler: agentHistory,
		},
		{
			Def: mcp.NewTool("strata_status",
				mcp.WithDescription(
					"Get database status. Returns current branch name, namespace, version, branch count, key "+
						"count, uptime, and whether auto-embed is active. Use this to orient yourself — "+
						"especially at the start of a session.",
				),
			),
			Handler: agentStatus,
		},
	}
}

func agentStore(s *session.Session, args map[string]any) (any, error) {
	key, err := convert.GetStringArg(args, "key")
	if err != nil {
		return nil, err
	}
	value, err := convert.GetValueArg(args, "value")
	if err != nil {
		return nil, err
	}
	path := convert.GetOptionalString(args, "path", "$")

	out, err := s.Execute(stratadb.JsonSet{
		Branch: s.Branch(), Space: s.Space(), Key: key, Path: path, Value: value,
	})
	if err != nil {
		return nil, err
	}
	if v, ok := out.(stratadb.Version); ok {
		return map[string]any{"key": key, "version": v.Version, "stored": true}, nil
	}
	return convert.OutputToJSON(out)
}

func agentRecall(s *session.Session, args map[string]any) (any, error) {
	key, err := convert.GetStringArg(args, "key")
	if err != nil {
		return nil, err
	}
	path := convert.GetOptionalString(args, "path", "$")
	asOf, err := convert.GetOptionalU64(args, "as_of")
	if err != nil {
		return nil, err
	}

	out, err := s.Execute(stratadb.JsonGet{
		Branch: s.Branch(), Space: s.Space(), Key: key, Path: path, AsOf: asOf,
	})
	if err != nil {
		return nil, err
	}
	return convert.OutputToJSON(out)
}

func agentSearch(s *session.Session, args map[string]any) (any, error) {
	query, err := convert.GetStringArg(args, "query")
	if err != nil {
		return nil, err
	}
	k, err := convert.GetOptionalU64(args, "k")
	if err != nil {
		return nil, err
	}
	var limit uint64
	if k != nil {
		limit = *k
	}

	out, err := s.Execute(stratadb.Search{
		Branch: s.Branch(), Space: s.Space(),
		Query: stratadb.SearchQuery{Query: query, K: limit},
	})
	if err != nil {
		return nil, err
	}

	// Narrow the generic search shape to what agents act on.
	if results, ok := out.(stratadb.SearchResults); ok {
		arr := make([]any, 0, len(results.Results))
		for _, r := range results.Results {
			arr = append(arr, map[string]any{
				"key":     r.Entity,
				"score":   r.Score,
				"snippet": r.Snippet,
			})
		}
		return arr, nil
	}
	return convert.OutputToJSON(out)
}

func agentForget(s *session.Session, args map[string]any) (any, error) {
	key, err := convert.GetStringArg(args, "key")
	if err != nil {
		return nil, err
	}
	out, err := s.Execute(stratadb.JsonDelete{
		Branch: s.Branch(), Space: s.Space(), Key: key, Path: "$",
	})
	if err != nil {
		return nil, err
	}
	if n, ok := out.(stratadb.Uint); ok {
		return map[string]any{"deleted": n.Value > 0}, nil
	}
	return convert.OutputToJSON(out)
}

func agentLog(s *session.Session, args map[string]any) (any, error) {
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
	if v, ok := out.(stratadb.Version); ok {
		return map[string]any{"sequence": v.Version, "logged": true}, nil
	}
	return convert.OutputToJSON(out)
}

func agentBranch(s *session.Session, args map[string]any) (any, error) {
	action, err := convert.GetStringArg(args, "action")
	if err != nil {
		return nil, err
	}

	switch action {
	case "create":
		name := convert.GetOptionalString(args, "name", "")
		out, err := s.Execute(stratadb.BranchCreate{BranchID: name})
		if err != nil {
			return nil, err
		}
		return convert.OutputToJSON(out)

	case "switch":
		name, err := convert.GetStringArg(args, "name")
		if err != nil {
			return nil, err
		}
		if err := s.SwitchBranch(name); err != nil {
			return nil, err
		}
		return map[string]any{"switched": true, "branch": name}, nil

	case "list":
		out, err := s.Execute(stratadb.BranchList{})
		if err != nil {
			return nil, err
		}
		return convert.OutputToJSON(out)

	case "fork":
		name, err := convert.GetStringArg(args, "name")
		if err != nil {
			return nil, err
		}
		info, err := s.ForkBranch(name)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"forked":      true,
			"source":      info.Source,
			"destination": info.Destination,
			"keys_copied": info.KeysCopied,
		}, nil

	case "merge":
		source, err := convert.GetStringArg(args, "source")
		if err != nil {
			return nil, err
		}
		info, err := s.MergeBranch(source, stratadb.MergeLastWriterWins)
		if err != nil {
			return nil, err
		}
		conflicts := make([]any, 0, len(info.Conflicts))
		for _, c := range info.Conflicts {
			conflicts = append(conflicts, map[string]any{"key": c.Key, "space": c.Space})
		}
		return map[string]any{
			"merged":        true,
			"keys_applied":  info.KeysApplied,
			"spaces_merged": info.SpacesMerged,
			"conflicts":     conflicts,
		}, nil

	case "diff":
		compare, err := convert.GetStringArg(args, "compare")
		if err != nil {
			return nil, err
		}
		diff, err := s.DiffBranches(s.Branch(), compare)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"current_branch": diff.BranchA,
			"compare_branch": diff.BranchB,
			"added":          diff.Summary.TotalAdded,
			"removed":        diff.Summary.TotalRemoved,
			"modified":       diff.Summary.TotalModified,
		}, nil

	case "delete":
		name, err := convert.GetStringArg(args, "name")
		if err != nil {
			return nil, err
		}
		out, err := s.Execute(stratadb.BranchDelete{Branch: name})
		if err != nil {
			return nil, err
		}
		return convert.OutputToJSON(out)

	default:
		return nil, mcperr.InvalidArg("action",
			"unknown action '"+action+"'. Use: create, switch, list, fork, merge, diff, or delete.")
	}
}

func agentHistory(s *session.Session, args map[string]any) (any, error) {
	asOf, err := convert.GetOptionalU64(args, "as_of")
	if err != nil {
		return nil, err
	}

	if key := convert.GetOptionalString(args, "key", ""); key != "" {
		out, err := s.Execute(stratadb.JsonGetv{
			Branch: s.Branch(), Space: s.Space(), Key: key, AsOf: asOf,
		})
		if err != nil {
			return nil, err
		}
		return convert.OutputToJSON(out)
	}

	out, err := s.Execute(stratadb.TimeRange{Branch: s.Branch()})
	if err != nil {
		return nil, err
	}
	if tr, ok := out.(stratadb.TimeRangeOut); ok {
		result := map[string]any{"branch": s.Branch(), "oldest": nil, "latest": nil}
		if tr.OldestTs != nil {
			result["oldest"] = *tr.OldestTs
		}
		if tr.LatestTs != nil {
			result["latest"] = *tr.LatestTs
		}
		return result, nil
	}
	return convert.OutputToJSON(out)
}

// agentStatus merges database info with the embed pipeline status. The
// second call is best-effort: if it fails the auto_embed field is simply
// omitted rather than failing the whole status.
func agentStatus(s *session.Session, _ map[string]any) (any, error) {
	result := map[string]any{
		"branch":    s.Branch(),
		"namespace": s.Space(),
	}
	out, err := s.Execute(stratadb.Info{})
	if err != nil {
		return nil, err
	}
	if info, ok := out.(stratadb.DatabaseInfo); ok {
		result["version"] = info.Info.Version
		result["branches"] = info.Info.BranchCount
		result["keys"] = info.Info.TotalKeys
		result["uptime_secs"] = info.Info.UptimeSecs
	}

	if embedOut, err := s.Execute(stratadb.EmbedStatus{}); err == nil {
		if es, ok := embedOut.(stratadb.EmbedStatusOut); ok {
			result["auto_embed"] = es.Info.AutoEmbed
		}
	}
	return result, nil
}
