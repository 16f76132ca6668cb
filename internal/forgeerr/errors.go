// Package forgeerr collects the sentinel errors shared across the build
// engine so callers can classify failures with errors.Is instead of
// string matching.
package forgeerr

import "errors"

var (
	// ErrMalformedDeps indicates the dependency-info parser could not make
	// sense of a compiler's header-inclusion report. Callers should treat
	// this as "no dependency information known" rather than abort.
	ErrMalformedDeps = errors.New("malformed dependency listing")

	// ErrToolchainFailed indicates a compile, archive, or link subprocess
	// exited non-zero or was killed by a signal.
	ErrToolchainFailed = errors.New("toolchain invocation failed")

	// ErrStore indicates the metadata store could not be opened, migrated,
	// or written to. Builds abort on this error; correctness cannot be
	// guaranteed once the store is unreliable.
	ErrStore = errors.New("metadata store error")

	// ErrInputUnreadable indicates a recorded input could not be stat'd.
	// The staleness oracle treats this identically to "input changed".
	ErrInputUnreadable = errors.New("input file unreadable")

	// ErrPlanWarning indicates a non-fatal plan-construction violation,
	// such as a non-header file sitting in a library's include/ directory.
	// The offending file is excluded; the build continues.
	ErrPlanWarning = errors.New("plan construction warning")

	// ErrNoBuildableRoot indicates a library directory has neither src/
	// nor include/, so no library can be constructed from it.
	ErrNoBuildableRoot = errors.New("library root has no src/ or include/")

	// ErrCycle is returned when a plan graph cannot be topologically
	// ordered because it contains a dependency cycle.
	ErrCycle = errors.New("plan graph contains a cycle")
)
