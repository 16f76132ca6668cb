package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/forgebuild/forge/internal/config"
	"github.com/forgebuild/forge/internal/dashboard"
	"github.com/forgebuild/forge/internal/executor"
	"github.com/forgebuild/forge/internal/planner"
	"github.com/forgebuild/forge/internal/store"
	"github.com/forgebuild/forge/internal/toolchain"
)

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Build every library under path incrementally",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().Bool("dashboard", false, "render a live progress dashboard instead of plain log lines")
}

func runBuild(cmd *cobra.Command, args []string) error {
	overrideFromFlags(cmd)

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	plans, err := discoverAndPlan(root, cfg)
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

	useDashboard, _ := cmd.Flags().GetBool("dashboard")

	var failed int
	for _, plan := range plans {
		var runErr error
		if useDashboard {
			runErr = runWithDashboard(ctx, db, tc, cfg.Parallelism, plan)
		} else {
			runErr = runPlain(ctx, db, tc, cfg.Parallelism, plan)
		}
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "forge: %s: %v\n", plan.QualifiedName, runErr)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d libraries failed to build", failed, len(plans))
	}
	return nil
}

func runPlain(ctx context.Context, db *store.Store, tc toolchain.Toolchain, parallelism int, plan planner.LibraryPlan) error {
	exec := &executor.Executor{
		Store:       db,
		Toolchain:   tc,
		Parallelism: parallelism,
		Logger:      os.Stderr,
	}
	return exec.Run(ctx, plan)
}

// runWithDashboard runs the executor in a background goroutine while a
// bubbletea program renders its event stream, exactly like the teacher's
// dashboard being "purely a consumer of executor progress events".
func runWithDashboard(ctx context.Context, db *store.Store, tc toolchain.Toolchain, parallelism int, plan planner.LibraryPlan) error {
	events := make(chan executor.Event, 64)
	exec := &executor.Executor{
		Store:       db,
		Toolchain:   tc,
		Parallelism: parallelism,
		Logger:      io.Discard,
		OnEvent:     func(ev executor.Event) { events <- ev },
	}

	order := planNodeOrder(plan)
	model := dashboard.New(plan.QualifiedName, order, events)
	program := tea.NewProgram(model)

	var runErr error
	done := make(chan struct{})
	go func() {
		runErr = exec.Run(ctx, plan)
		close(events)
		close(done)
	}()

	if _, err := program.Run(); err != nil {
		<-done
		return err
	}
	<-done
	return runErr
}

// planNodeOrder lists every plan node ID in a stable order for the
// dashboard's fixed-row rendering.
func planNodeOrder(plan planner.LibraryPlan) []string {
	var order []string
	for _, c := range plan.LibCompileFiles {
		order = append(order, c.Output)
	}
	for _, c := range plan.HeaderIndepPlans {
		order = append(order, c.Output)
	}
	if plan.ArchivePlan != nil {
		order = append(order, plan.ArchivePlan.Output)
	}
	for _, l := range plan.LinkPlans {
		order = append(order, l.Compile.Output, l.Output)
	}
	for _, t := range plan.TemplatePlans {
		order = append(order, t.Output)
	}
	return order
}
