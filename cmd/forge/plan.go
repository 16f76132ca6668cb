package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgebuild/forge/internal/config"
	"github.com/forgebuild/forge/internal/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan [path]",
	Short: "Print the build plan for every library under path without executing it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlanCmd,
}

func runPlanCmd(cmd *cobra.Command, args []string) error {
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

	for _, plan := range plans {
		printPlan(plan)
	}
	return nil
}

func printPlan(plan planner.LibraryPlan) {
	fmt.Printf("library %s (%s)\n", plan.QualifiedName, plan.OutDir)
	for _, c := range plan.LibCompileFiles {
		fmt.Printf("  compile  %s -> %s\n", c.Source.RelPath, c.Output)
	}
	if plan.ArchivePlan != nil {
		fmt.Printf("  archive  %d objects -> %s\n", len(plan.ArchivePlan.Inputs), plan.ArchivePlan.Output)
	}
	for _, c := range plan.HeaderIndepPlans {
		fmt.Printf("  check    %s -> %s\n", c.Source.RelPath, c.Output)
	}
	for _, l := range plan.LinkPlans {
		fmt.Printf("  link     %s %s -> %s (links: %v)\n", l.Kind, l.Compile.Source.RelPath, l.Output, l.Links)
	}
	for _, t := range plan.TemplatePlans {
		fmt.Printf("  render   %s -> %s\n", t.Source.RelPath, t.Output)
	}
	if dir, ok := plan.GeneratedIncludeDir(); ok {
		fmt.Printf("  generated include dir: %s\n", dir)
	}
}
