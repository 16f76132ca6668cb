// Package staleness implements the staleness oracle (spec §4.3): given
// the metadata store and a planned output path, it decides whether the
// artifact is fresh or stale, and if stale, which inputs changed and
// what command last produced it.
package staleness

import (
	"context"
	"os"

	"github.com/forgebuild/forge/internal/store"
)

// PriorCompilation is returned when a prior record exists for an output,
// regardless of whether anything actually changed.
type PriorCompilation struct {
	// NewerInputs lists recorded inputs whose path no longer exists, or
	// whose filesystem mtime no longer matches the recorded mtime.
	NewerInputs []string
	// PreviousCommand is the command string stored for this output.
	PreviousCommand string
}

// Stale reports whether this prior compilation is stale: any input
// changed. A fresh prior compilation (Stale() == false) still needs the
// caller to compare PreviousCommand against the intended command — the
// oracle itself doesn't know the intended command for the next build.
func (p *PriorCompilation) Stale() bool {
	return p != nil && len(p.NewerInputs) > 0
}

// Get implements the oracle (spec §4.3 steps 1-4). A nil return means no
// prior build exists for output; the caller must always recompile.
func Get(ctx context.Context, s *store.Store, output string) (*PriorCompilation, error) {
	cmd, has, err := s.CommandOf(ctx, output)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}

	inputs, has, err := s.InputsOf(ctx, output)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}

	var changed []string
	for _, in := range inputs {
		info, statErr := os.Stat(in.Path)
		if statErr != nil {
			// Missing or unreadable: treated identically to "changed"
			// (spec §7 category 4).
			changed = append(changed, in.Path)
			continue
		}
		if info.ModTime().UnixNano() != in.LastMtime.UnixNano() {
			changed = append(changed, in.Path)
		}
	}

	return &PriorCompilation{
		NewerInputs:     changed,
		PreviousCommand: cmd,
	}, nil
}

// ShouldRecompile implements the executor's recompile decision (spec
// §4.3): recompile if there is no prior compilation, if the intended
// command differs from the stored one, or if any input changed.
func ShouldRecompile(prior *PriorCompilation, intendedCommand string) bool {
	if prior == nil {
		return true
	}
	if prior.PreviousCommand != intendedCommand {
		return true
	}
	return prior.Stale()
}
