// Package toolchain defines the external toolchain contract (spec §6):
// compile-command synthesis from rules, and the dep-mode tagged variant
// that selects which header-inclusion dialect a toolchain emits.
//
// Toolchain detection itself (locating a real compiler on the host) is
// explicitly out of scope (spec §1); this package only models the
// interface the plan executor talks to, plus adapters thin enough to
// exercise in tests without a real compiler installed.
package toolchain

import (
	"context"

	"github.com/forgebuild/forge/internal/rules"
)

// DepModeKind tags which dialect, if any, a toolchain emits.
type DepModeKind int

const (
	// DepNone means no dependency info is ever parsed; every build is
	// treated as stale.
	DepNone DepModeKind = iota
	// DepGNU means make-style output, written to a sidecar file.
	DepGNU
	// DepMSVC means prefix-line output on stdout.
	DepMSVC
)

// DepMode is the tagged variant from spec §9 ("Dependency-mode is a
// variant"): represented as a tag plus the one field MSVC mode needs,
// rather than a polymorphic class hierarchy.
type DepMode struct {
	Kind   DepModeKind
	Leader string // only meaningful when Kind == DepMSVC
}

// Command is a synthesized subprocess invocation: argv plus any extra
// environment variables the toolchain needs. Command.String must be
// deterministic and order-stable — it is the executor's cache key (spec
// §9 "command identity as cache key").
type Command struct {
	Argv []string
	Env  []string
	// DepFile is the sidecar path the GNU dialect writes dependency info
	// to, if any.
	DepFile string
}

// Result is what a toolchain invocation reports back.
type Result struct {
	// Stdout is the raw console output, before any dependency-chatter
	// stripping (the MSVC dialect mixes real diagnostics with header
	// notes on the same stream).
	Stdout string
	Stderr string
}

// Toolchain synthesizes compile commands and reports which dependency
// dialect it emits.
type Toolchain interface {
	// CompileCommand builds the argv/env for compiling src into out
	// under the given rules. The returned Command.String() must be
	// identical for identical (rules, src, out) so the staleness oracle
	// can use it as an identity key.
	CompileCommand(r rules.CompileRules, src, out string) (Command, error)
	// DepMode reports which header-inclusion dialect this toolchain
	// emits, if any.
	DepMode() DepMode
	// Run executes cmd, returning its captured output or an error
	// wrapping forgeerr.ErrToolchainFailed on non-zero exit.
	Run(ctx context.Context, cmd Command) (Result, error)
}
