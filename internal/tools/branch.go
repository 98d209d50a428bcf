package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/mcperr"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func mergeStrategy(name string) (stratadb.MergeStrategy, error) {
	switch name {
	case "", string(stratadb.MergeLastWriterWins):
		return stratadb.MergeLastWriterWins, nil
	case string(stratadb.MergeSourceWins):
		return stratadb.MergeSourceWins, nil
	default:
		return "", mcperr.InvalidArg("strategy", "use last_writer_wins or source_wins")
	}
}

func branchTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_branch_create",
				mcp.WithDescription("Create an empty branch. Omit 'name' to let the store generate one. Returns the created branch info."),
				mcp.WithString("name", mcp.Description("Branch name; generated when omitted")),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				name := convert.GetOptionalString(args, "name", "")
				out, err := s.Execute(stratadb.BranchCreate{BranchID: name})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_branch_switch",
				mcp.WithDescription("Switch the session to another branch. The branch must exist; a failed switch leaves the session context unchanged."),
				mcp.WithString("name", mcp.Required()),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				name, err := convert.GetStringArg(args, "name")
				if err != nil {
					return nil, err
				}
				if err := s.SwitchBranch(name); err != nil {
					return nil, err
				}
				return map[string]any{"switched": true, "branch": name}, nil
			},
		},
		{
			Def: mcp.NewTool("strata_branch_exists",
				mcp.WithDescription("Check whether a branch exists. Returns a boolean."),
				mcp.WithString("name", mcp.Required()),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				name, err := convert.GetStringArg(args, "name")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.BranchExists{Branch: name})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_branch_get",
				mcp.WithDescription("Get one branch's info, or null if it does not exist."),
				mcp.WithString("name", mcp.Required()),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				name, err := convert.GetStringArg(args, "name")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.BranchGet{Branch: name})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_branch_list",
				mcp.WithDescription("List branches, optionally filtered by status."),
				mcp.WithString("status", mcp.Description("Optional status filter (Active, Archived)")),
				mcp.WithNumber("limit"),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				status := convert.GetOptionalString(args, "status", "")
				limit, err := convert.GetOptionalU64(args, "limit")
				if err != nil {
					return nil, err
				}
				cmd := stratadb.BranchList{Status: status}
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
		{
			Def: mcp.NewTool("strata_branch_delete",
				mcp.WithDescription("Remove a branch and all of its data. The default branch cannot be deleted."),
				mcp.WithString("name", mcp.Required()),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				name, err := convert.GetStringArg(args, "name")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.BranchDelete{Branch: name})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_branch_fork",
				mcp.WithDescription("Fork the current branch to a new destination, copying all entries with their history. Returns { source, destination, keys_copied }."),
				mcp.WithString("name", mcp.Required(), mcp.Description("Destination branch name")),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				name, err := convert.GetStringArg(args, "name")
				if err != nil {
					return nil, err
				}
				info, err := s.ForkBranch(name)
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(stratadb.BranchForked{Info: info})
			},
		},
		{
			Def: mcp.NewTool("strata_branch_merge",
				mcp.WithDescription("Merge a source branch into the current branch. Returns { keys_applied, spaces_merged, conflicts }."),
				mcp.WithString("source", mcp.Required()),
				mcp.WithString("strategy",
					mcp.Description("Conflict resolution (default last_writer_wins)"),
					mcp.Enum("last_writer_wins", "source_wins"),
				),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				source, err := convert.GetStringArg(args, "source")
				if err != nil {
					return nil, err
				}
				strategy, err := mergeStrategy(convert.GetOptionalString(args, "strategy", ""))
				if err != nil {
					return nil, err
				}
				info, err := s.MergeBranch(source, strategy)
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(stratadb.BranchMerged{Info: info})
			},
		},
		{
			Def: mcp.NewTool("strata_branch_diff",
				mcp.WithDescription("Compare the current branch against another. Returns { branch_a, branch_b, summary }."),
				mcp.WithString("compare", mcp.Required()),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				compare, err := convert.GetStringArg(args, "compare")
				if err != nil {
					return nil, err
				}
				diff, err := s.DiffBranches(s.Branch(), compare)
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(stratadb.BranchDiffOut{Diff: diff})
			},
		},
	}
}
