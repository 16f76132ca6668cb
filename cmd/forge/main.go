// Command forge is the CLI front end for the build engine (SPEC_FULL.md
// §9): it discovers libraries under a package root, builds their plans,
// and executes them against a configured toolchain. Manifest parsing,
// package resolution, and toolchain detection remain external
// collaborators (spec §1) — this binary only wires the core pipeline.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
