package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/strata-ai-labs/strata-mcp/internal/convert"
	"github.com/strata-ai-labs/strata-mcp/internal/session"
	"github.com/strata-ai-labs/strata-mcp/internal/stratadb"
)

func bundleTools() []Tool {
	return []Tool{
		{
			Def: mcp.NewTool("strata_bundle_export",
				mcp.WithDescription("Export the current branch to a checksummed bundle file. Returns { branch_id, path, entry_count, bundle_size }."),
				mcp.WithString("path", mcp.Required(), mcp.Description("Destination file path")),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				path, err := convert.GetStringArg(args, "path")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.BundleExport{Branch: s.Branch(), Path: path})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_bundle_import",
				mcp.WithDescription("Apply a bundle file into a branch, creating the branch if needed. Returns { branch_id, transactions_applied, keys_written }."),
				mcp.WithString("path", mcp.Required(), mcp.Description("Bundle file path")),
				mcp.WithString("branch", mcp.Description("Target branch, default the current branch")),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				path, err := convert.GetStringArg(args, "path")
				if err != nil {
					return nil, err
				}
				branch := convert.GetOptionalString(args, "branch", s.Branch())
				out, err := s.Execute(stratadb.BundleImport{Branch: branch, Path: path})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
		{
			Def: mcp.NewTool("strata_bundle_validate",
				mcp.WithDescription("Verify a bundle file without applying it. Returns { branch_id, format_version, entry_count, checksums_valid }."),
				mcp.WithString("path", mcp.Required(), mcp.Description("Bundle file path")),
			),
			Handler: func(s *session.Session, args map[string]any) (any, error) {
				path, err := convert.GetStringArg(args, "path")
				if err != nil {
					return nil, err
				}
				out, err := s.Execute(stratadb.BundleValidate{Path: path})
				if err != nil {
					return nil, err
				}
				return convert.OutputToJSON(out)
			},
		},
	}
}
