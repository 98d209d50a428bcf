package convert

import (
	"strings"

	"github.com/strata-ai-labs/strata-mcp/internal/mcperr"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

// OutputToJSON maps every store output variant to its canonical wire
// shape. The switch is meant to be exhaustive over the closed Output
// union; a variant falling through to the default arm is a missed case
// here, reported as an internal error rather than rendered as null.
func OutputToJSON(output stratadb.Output) (any, error) {
	switch o := output.(type) {
	case stratadb.Unit:
		return nil, nil
	case stratadb.Maybe:
		if o.Value == nil {
			return nil, nil
		}
		return ValueToJSON(o.Value), nil
	case stratadb.MaybeVersioned:
		if o.Value == nil {
			return nil, nil
		}
		return VersionedToJSON(*o.Value), nil
	case stratadb.MaybeVersion:
		if o.Version == nil {
			return nil, nil
		}
		return *o.Version, nil
	case stratadb.Version:
		return map[string]any{"version": o.Version}, nil
	case stratadb.BoolOut:
		return o.Value, nil
	case stratadb.Uint:
		return o.Value, nil

	case stratadb.VersionedValues:
		return versionedArray(o.Values), nil
	case stratadb.VersionHistory:
		if !o.Found {
			return nil, nil
		}
		return versionedArray(o.Values), nil
	case stratadb.Keys:
		return stringArray(o.Keys), nil

	case stratadb.JsonListResult:
		out := map[string]any{"keys": stringArray(o.Keys)}
		if o.Cursor != "" {
			out["cursor"] = o.Cursor
		}
		return out, nil

	case stratadb.VectorMatches:
		arr := make([]any, 0, len(o.Matches))
		for _, m := range o.Matches {
			arr = append(arr, map[string]any{
				"key":      m.Key,
				"score":    m.Score,
				"metadata": optionalValue(m.Metadata),
			})
		}
		return arr, nil

	case stratadb.VectorData:
		if o.Record == nil {
			return nil, nil
		}
		return map[string]any{
			"key":       o.Record.Key,
			"embedding": floatArray(o.Record.Embedding),
			"metadata":  optionalValue(o.Record.Metadata),
			"version":   o.Record.Version,
			"timestamp": o.Record.Timestamp,
		}, nil

	case stratadb.VectorCollectionList:
		arr := make([]any, 0, len(o.Collections))
		for _, c := range o.Collections {
			arr = append(arr, map[string]any{
				"name":         c.CollectionName,
				"dimension":    c.Dimension,
				"metric":       strings.ToLower(c.Metric),
				"count":        c.Count,
				"index_type":   c.IndexType,
				"memory_bytes": c.MemoryBytes,
			})
		}
		return arr, nil

	case stratadb.MaybeBranchInfo:
		if o.Info == nil {
			return nil, nil
		}
		return branchInfoJSON(*o.Info), nil
	case stratadb.BranchInfoList:
		arr := make([]any, 0, len(o.Branches))
		for _, bi := range o.Branches {
			arr = append(arr, branchInfoJSON(bi))
		}
		return arr, nil

	case stratadb.TxnInfo:
		if o.Info == nil {
			return nil, nil
		}
		return map[string]any{
			"id":         o.Info.ID,
			"status":     strings.ToLower(o.Info.Status),
			"started_at": o.Info.StartedAt,
		}, nil
	case stratadb.TxnBegun:
		return map[string]any{"status": "begun"}, nil
	case stratadb.TxnCommitted:
		return map[string]any{"status": "committed", "version": o.Version}, nil
	case stratadb.TxnAborted:
		return map[string]any{"status": "aborted"}, nil

	case stratadb.DatabaseInfo:
		return map[string]any{
			"version":      o.Info.Version,
			"uptime_secs":  o.Info.UptimeSecs,
			"branch_count": o.Info.BranchCount,
			"total_keys":   o.Info.TotalKeys,
		}, nil
	case stratadb.Pong:
		return map[string]any{"pong": true, "version": o.Version}, nil

	case stratadb.SearchResults:
		arr := make([]any, 0, len(o.Results))
		for _, r := range o.Results {
			arr = append(arr, map[string]any{
				"entity":    r.Entity,
				"primitive": r.Primitive,
				"score":     r.Score,
				"rank":      r.Rank,
				"snippet":   r.Snippet,
			})
		}
		return arr, nil

	case stratadb.SpaceListOut:
		return stringArray(o.Spaces), nil

	case stratadb.BranchExported:
		return map[string]any{
			"branch_id":   o.BranchID,
			"path":        o.Path,
			"entry_count": o.EntryCount,
			"bundle_size": o.BundleSize,
		}, nil
	case stratadb.BranchImported:
		return map[string]any{
			"branch_id":            o.BranchID,
			"transactions_applied": o.TransactionsApplied,
			"keys_written":         o.KeysWritten,
		}, nil
	case stratadb.BundleValidated:
		return map[string]any{
			"branch_id":       o.BranchID,
			"format_version":  o.FormatVersion,
			"entry_count":     o.EntryCount,
			"checksums_valid": o.ChecksumsValid,
		}, nil

	case stratadb.TimeRangeOut:
		return map[string]any{
			"oldest_ts": optionalUint(o.OldestTs),
			"latest_ts": optionalUint(o.LatestTs),
		}, nil

	case stratadb.BatchResults:
		arr := make([]any, 0, len(o.Results))
		for _, r := range o.Results {
			item := map[string]any{"version": optionalUint(r.Version)}
			if r.Err != "" {
				item["error"] = r.Err
			} else {
				item["error"] = nil
			}
			arr = append(arr, item)
		}
		return arr, nil

	case stratadb.DurabilityCountersOut:
		return map[string]any{
			"wal_appends":   o.Counters.WalAppends,
			"sync_calls":    o.Counters.SyncCalls,
			"bytes_written": o.Counters.BytesWritten,
			"sync_nanos":    o.Counters.SyncNanos,
		}, nil

	case stratadb.EmbedStatusOut:
		info := o.Info
		isIdle := info.Pending == 0 && info.SchedulerActive == 0 && info.SchedulerQueueDepth == 0
		return map[string]any{
			"auto_embed":             info.AutoEmbed,
			"batch_size":             info.BatchSize,
			"pending":                info.Pending,
			"total_queued":           info.TotalQueued,
			"total_embedded":         info.TotalEmbedded,
			"total_failed":           info.TotalFailed,
			"scheduler_queue_depth":  info.SchedulerQueueDepth,
			"scheduler_active_tasks": info.SchedulerActive,
			"is_idle":                isIdle,
		}, nil

	case stratadb.Embedding:
		return floatArray(o.Vector), nil
	case stratadb.Embeddings:
		arr := make([]any, 0, len(o.Vectors))
		for _, vec := range o.Vectors {
			arr = append(arr, floatArray(vec))
		}
		return arr, nil

	case stratadb.Generated:
		return map[string]any{
			"text":              o.Result.Text,
			"stop_reason":       o.Result.StopReason,
			"prompt_tokens":     o.Result.PromptTokens,
			"completion_tokens": o.Result.CompletionTokens,
			"model":             o.Result.Model,
		}, nil
	case stratadb.TokenIds:
		ids := make([]any, 0, len(o.IDs))
		for _, id := range o.IDs {
			ids = append(ids, id)
		}
		return map[string]any{"ids": ids, "count": o.Count, "model": o.Model}, nil
	case stratadb.Text:
		return map[string]any{"text": o.Text}, nil

	case stratadb.ModelsListOut:
		arr := make([]any, 0, len(o.Models))
		for _, m := range o.Models {
			arr = append(arr, map[string]any{
				"name":          m.ModelName,
				"task":          m.Task,
				"architecture":  m.Architecture,
				"default_quant": m.DefaultQuant,
				"embedding_dim": m.EmbeddingDim,
				"is_local":      m.IsLocal,
				"size_bytes":    m.SizeBytes,
			})
		}
		return arr, nil
	case stratadb.ModelsPulled:
		return map[string]any{"name": o.ModelName, "path": o.Path}, nil

	case stratadb.BranchForked:
		return map[string]any{
			"source":      o.Info.Source,
			"destination": o.Info.Destination,
			"keys_copied": o.Info.KeysCopied,
		}, nil
	case stratadb.BranchDiffOut:
		return map[string]any{
			"branch_a": o.Diff.BranchA,
			"branch_b": o.Diff.BranchB,
			"summary": map[string]any{
				"total_added":    o.Diff.Summary.TotalAdded,
				"total_removed":  o.Diff.Summary.TotalRemoved,
				"total_modified": o.Diff.Summary.TotalModified,
			},
		}, nil
	case stratadb.BranchMerged:
		conflicts := make([]any, 0, len(o.Info.Conflicts))
		for _, c := range o.Info.Conflicts {
			conflicts = append(conflicts, map[string]any{"key": c.Key, "space": c.Space})
		}
		return map[string]any{
			"keys_applied":  o.Info.KeysApplied,
			"spaces_merged": o.Info.SpacesMerged,
			"conflicts":     conflicts,
		}, nil

	case stratadb.ConfigOut:
		var model any
		if o.Config.Model != nil {
			model = map[string]any{
				"endpoint":   o.Config.Model.Endpoint,
				"model":      o.Config.Model.Model,
				"api_key":    o.Config.Model.APIKey,
				"timeout_ms": o.Config.Model.TimeoutMs,
			}
		}
		return map[string]any{
			"durability": o.Config.Durability,
			"auto_embed": o.Config.AutoEmbed,
			"model":      model,
		}, nil

	default:
		return nil, mcperr.Internal("no JSON mapping for output %T", output)
	}
}

func branchInfoJSON(bi stratadb.BranchInfo) map[string]any {
	var parent any
	if bi.ParentID != "" {
		parent = bi.ParentID
	}
	return map[string]any{
		"id":         bi.ID,
		"status":     strings.ToLower(string(bi.Status)),
		"created_at": bi.CreatedAt,
		"updated_at": bi.UpdatedAt,
		"parent_id":  parent,
		"version":    bi.Version,
		"timestamp":  bi.Timestamp,
	}
}

func versionedArray(values []stratadb.VersionedValue) []any {
	arr := make([]any, 0, len(values))
	for _, vv := range values {
		arr = append(arr, VersionedToJSON(vv))
	}
	return arr
}

func stringArray(ss []string) []any {
	arr := make([]any, 0, len(ss))
	for _, s := range ss {
		arr = append(arr, s)
	}
	return arr
}

func floatArray(fs []float32) []any {
	arr := make([]any, 0, len(fs))
	for _, f := range fs {
		arr = append(arr, float64(f))
	}
	return arr
}

func optionalValue(v stratadb.Value) any {
	if v == nil {
		return nil
	}
	return ValueToJSON(v)
}

func optionalUint(v *uint64) any {
	if v == nil {
		return nil
	}
	return *v
}
