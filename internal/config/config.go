// Package config loads server configuration from a TOML file and
// environment-friendly defaults.
//
// Configuration is layered: built-in defaults, then the config file
// (~/.strata/config.toml or --config), then command-line flags. The
// file is optional — a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds every tunable the server reads at startup.
type Config struct {
	// DBPath is the SQLite database file. Parent directories are
	// created on open.
	DBPath string `toml:"db_path"`

	// ReadOnly rejects every write tool with an access_denied error.
	ReadOnly bool `toml:"read_only"`

	// Developer exposes the full strata_* tool surface instead of the
	// curated agent set.
	Developer bool `toml:"developer"`

	// Branch and Space seed the session context.
	Branch string `toml:"branch"`
	Space  string `toml:"space"`

	// ModelsDir is where pulled model files land.
	ModelsDir string `toml:"models_dir"`

	// RetentionKeepVersions bounds per-key history when retention runs.
	// Zero keeps everything.
	RetentionKeepVersions uint64 `toml:"retention_keep_versions"`
}

// Default returns the built-in configuration. The data directory is
// ~/.strata, falling back to the current directory when the home
// directory cannot be determined.
func Default() *Config {
	dataDir := ".strata"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".strata")
	}
	return &Config{
		DBPath: filepath.Join(dataDir, "strata.db"),
		Branch: "default",
		Space:  "default",
	}
}

// DefaultPath returns the conventional config file location, or ""
// when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".strata", "config.toml")
}

// Load reads TOML configuration from path on top of the defaults.
// When path is "" the conventional location is tried; a missing file
// at either location yields the defaults without error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
