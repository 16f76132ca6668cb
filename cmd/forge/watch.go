package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgebuild/forge/internal/config"
	"github.com/forgebuild/forge/internal/library"
	"github.com/forgebuild/forge/internal/store"
	"github.com/forgebuild/forge/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Build once, then rebuild on every source change",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	overrideFromFlags(cmd)

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	tc, err := newToolchain(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutSubdir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", cfg.OutSubdir, err)
	}

	ctx := context.Background()
	db, err := store.Open(ctx, storePath(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	rebuild := func() {
		plans, err := discoverAndPlan(root, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "forge watch: %v\n", err)
			return
		}
		for _, plan := range plans {
			if err := runPlain(ctx, db, tc, cfg.Parallelism, plan); err != nil {
				fmt.Fprintf(os.Stderr, "forge watch: %s: %v\n", plan.QualifiedName, err)
			}
		}
		fmt.Fprintln(os.Stderr, "forge watch: build complete, watching for changes...")
	}

	rebuild()

	libs, err := library.CollectLibraries(root, nil)
	if err != nil {
		return fmt.Errorf("discovering libraries under %s: %w", root, err)
	}
	var dirs []string
	for _, lib := range libs {
		dirs = append(dirs, lib.SrcSourceRoot(), lib.IncludeSourceRoot())
	}

	w, err := watch.New(dirs)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Stop()

	for range w.Changes {
		rebuild()
	}
	return nil
}
