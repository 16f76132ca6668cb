// Package config loads runtime configuration for the forge CLI: the
// worker-pool bound, output subdirectory, warnings flag, test/app build
// gating, toolchain and compiler selection, and metadata-store path. Values come from
// .forge.toml, FORGE_* environment variables, and CLI flags, in
// increasing priority — the same defaults-then-unmarshal pattern the
// teacher's own config loader uses.
package config

import (
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for one forge invocation.
type Config struct {
	// Parallelism bounds the number of compile nodes the executor runs
	// concurrently.
	Parallelism int `mapstructure:"parallelism"`
	// OutSubdir is the root of every library's output tree
	// (planner.BuildParams.OutSubdir).
	OutSubdir string `mapstructure:"out_subdir"`
	// EnableWarnings threads into every library's compile rules.
	EnableWarnings bool `mapstructure:"warnings"`
	// BuildTests enables header-independence checks and test links.
	BuildTests bool `mapstructure:"build_tests"`
	// BuildApps enables app links.
	BuildApps bool `mapstructure:"build_apps"`
	// Toolchain selects which adapter the executor talks to: "gnu" or
	// "msvc".
	Toolchain string `mapstructure:"toolchain"`
	// Compiler is the executable name or path passed to the selected
	// toolchain adapter.
	Compiler string `mapstructure:"compiler"`
	// DBPath is the metadata-store database file.
	DBPath string `mapstructure:"db_path"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("parallelism", runtime.NumCPU())
	viper.SetDefault("out_subdir", "_build")
	viper.SetDefault("warnings", true)
	viper.SetDefault("build_tests", true)
	viper.SetDefault("build_apps", true)
	viper.SetDefault("toolchain", "gnu")
	viper.SetDefault("compiler", "c++")
	viper.SetDefault("db_path", ".forge.db")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	return cfg, nil
}
