// Strata: versioned memory MCP server
//
// A branchable, versioned store exposed over MCP for AI coding tools
// (Claude Code, OpenCode, Gemini CLI, Codex, Cursor, VS Code Copilot).
// Agents get a small curated tool set; --dev exposes the full
// granular strata_* surface.
//
// Usage:
//
//	strata-mcp serve           # Start MCP server (stdio transport)
//	strata-mcp serve --dev     # Full developer tool surface
//	strata-mcp update          # Update to the latest version
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/strata-ai-labs/strata-mcp/internal/config"
	strataserver "github.com/strata-ai-labs/strata-mcp/internal/server"
	"github.com/strata-ai-labs/strata-mcp/internal/updater"
)

var (
	flagConfig    string
	flagDB        string
	flagReadOnly  bool
	flagDeveloper bool
	flagBranch    string
	flagSpace     string
)

func main() {
	root := &cobra.Command{
		Use:           "strata-mcp",
		Short:         "Versioned memory MCP server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe()
		},
	}
	serveCmd.Flags().StringVar(&flagConfig, "config", "", "config file (default ~/.strata/config.toml)")
	serveCmd.Flags().StringVar(&flagDB, "db", "", "database file (default ~/.strata/strata.db)")
	serveCmd.Flags().BoolVar(&flagReadOnly, "read-only", false, "reject all write tools")
	serveCmd.Flags().BoolVar(&flagDeveloper, "dev", false, "expose the full developer tool surface")
	serveCmd.Flags().StringVar(&flagBranch, "branch", "", "initial branch (created if missing)")
	serveCmd.Flags().StringVar(&flagSpace, "space", "", "initial space")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(*cobra.Command, []string) {
			fmt.Printf("strata-mcp v%s\n", strataserver.Version)
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update to the latest release",
		RunE: func(*cobra.Command, []string) error {
			return runUpdate()
		},
	}

	root.AddCommand(serveCmd, versionCmd, updateCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers flags over the config file over the defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	if flagReadOnly {
		cfg.ReadOnly = true
	}
	if flagDeveloper {
		cfg.Developer = true
	}
	if flagBranch != "" {
		cfg.Branch = flagBranch
	}
	if flagSpace != "" {
		cfg.Space = flagSpace
	}
	return cfg, nil
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, cleanup, err := strataserver.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check — prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	return server.ServeStdio(s)
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. Best-effort — network failures
// are silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(strataserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  Update available: v%s -> v%s\n"+
				"  Run: strata-mcp update\n"+
				"  Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() error {
	fmt.Fprintln(os.Stderr, "Checking for updates...")

	result := updater.CheckVersion(strataserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "Already at the latest version (v%s)\n", result.CurrentVersion)
		return nil
	}

	fmt.Fprintf(os.Stderr, "New version available: v%s -> v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintln(os.Stderr, "Downloading...")

	if err := updater.SelfUpdate(strataserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "You can download manually from:\n  %s\n", result.ReleaseURL)
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Updated to v%s. Restart strata-mcp to use the new version.\n", result.LatestVersion)
	return nil
}
