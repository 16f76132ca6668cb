// Package rules holds the compile_rules value type (spec §3): the set of
// include directories, library uses, and compile flags that get
// specialized per file group (library-private, public-header check,
// test) while building a plan.
package rules

// CompileRules is a value type cloned and specialized per file group.
// The zero value is a usable empty rule set.
type CompileRules struct {
	includeDirs []string
	seenDirs    map[string]bool
	uses        []string
	seenUses    map[string]bool
	warnings    bool
	syntaxOnly  bool
}

// New returns an empty CompileRules.
func New() CompileRules {
	return CompileRules{
		seenDirs: map[string]bool{},
		seenUses: map[string]bool{},
	}
}

// Clone returns an independent copy; mutating the copy never affects the
// original, matching the C++ source's explicit .clone() calls at every
// specialization point (spec §4.5 steps 6 and 11).
func (r CompileRules) Clone() CompileRules {
	out := New()
	for _, d := range r.includeDirs {
		out.AddIncludeDir(d)
	}
	for _, u := range r.uses {
		out.AddUse(u)
	}
	out.warnings = r.warnings
	out.syntaxOnly = r.syntaxOnly
	return out
}

// AddIncludeDir appends dir to the ordered include-directory list,
// de-duplicating by exact string match so that repeated specialization
// doesn't grow the search path unboundedly.
func (r *CompileRules) AddIncludeDir(dir string) {
	if r.seenDirs == nil {
		r.seenDirs = map[string]bool{}
	}
	if r.seenDirs[dir] {
		return
	}
	r.seenDirs[dir] = true
	r.includeDirs = append(r.includeDirs, dir)
}

// IncludeDirs returns the ordered, deduplicated include search path.
func (r CompileRules) IncludeDirs() []string {
	return append([]string(nil), r.includeDirs...)
}

// AddUse appends name to the set of library usages, de-duplicated by
// first occurrence so ordering stays deterministic for command-string
// identity (spec §9 "command identity as cache key").
func (r *CompileRules) AddUse(name string) {
	if r.seenUses == nil {
		r.seenUses = map[string]bool{}
	}
	if r.seenUses[name] {
		return
	}
	r.seenUses[name] = true
	r.uses = append(r.uses, name)
}

// Uses returns the ordered, deduplicated set of library usages.
func (r CompileRules) Uses() []string {
	return append([]string(nil), r.uses...)
}

// SetWarnings sets whether the compiler should be invoked with extra
// warning flags enabled.
func (r *CompileRules) SetWarnings(v bool) { r.warnings = v }

// Warnings reports whether warnings are enabled.
func (r CompileRules) Warnings() bool { return r.warnings }

// SetSyntaxOnly marks these rules as producing a syntax-only compile: the
// toolchain should parse and type-check the source but emit only a
// sentinel, never an object file (spec GLOSSARY "syntax-only compile").
func (r *CompileRules) SetSyntaxOnly(v bool) { r.syntaxOnly = v }

// SyntaxOnly reports whether this is a syntax-only compile.
func (r CompileRules) SyntaxOnly() bool { return r.syntaxOnly }
