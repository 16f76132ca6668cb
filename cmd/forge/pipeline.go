package main

import (
	"fmt"
	"path/filepath"

	"github.com/forgebuild/forge/internal/config"
	"github.com/forgebuild/forge/internal/library"
	"github.com/forgebuild/forge/internal/planner"
	"github.com/forgebuild/forge/internal/toolchain"
)

// discoverAndPlan loads every library under root and builds its plan
// using cfg's build parameters. Manifest-file parsing is an external
// collaborator (spec §1); no manifest file is read here, so every
// library gets a manifest synthesized from its directory name.
func discoverAndPlan(root string, cfg config.Config) ([]planner.LibraryPlan, error) {
	libs, err := library.CollectLibraries(root, nil)
	if err != nil {
		return nil, fmt.Errorf("discovering libraries under %s: %w", root, err)
	}
	if len(libs) == 0 {
		return nil, fmt.Errorf("no buildable library found under %s (expected src/ or include/)", root)
	}

	params := planner.BuildParams{
		OutSubdir:      cfg.OutSubdir,
		BuildTests:     cfg.BuildTests,
		BuildApps:      cfg.BuildApps,
		EnableWarnings: cfg.EnableWarnings,
	}

	plans := make([]planner.LibraryPlan, 0, len(libs))
	for _, lib := range libs {
		for _, warn := range lib.Warnings() {
			fmt.Printf("warning: %v\n", warn.Err())
		}
		plan, err := planner.Build(lib, params, "")
		if err != nil {
			return nil, fmt.Errorf("planning %s: %w", lib.Path(), err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// newToolchain constructs the configured toolchain adapter.
func newToolchain(cfg config.Config) (toolchain.Toolchain, error) {
	switch cfg.Toolchain {
	case "", "gnu":
		return toolchain.GNU{Compiler: cfg.Compiler}, nil
	case "msvc":
		return toolchain.MSVC{Compiler: cfg.Compiler}, nil
	default:
		return nil, fmt.Errorf("unknown toolchain %q (want gnu or msvc)", cfg.Toolchain)
	}
}

// storePath resolves the metadata-store database path relative to the
// output subdirectory unless it's already absolute.
func storePath(cfg config.Config) string {
	if filepath.IsAbs(cfg.DBPath) {
		return cfg.DBPath
	}
	return filepath.Join(cfg.OutSubdir, cfg.DBPath)
}
