// Package planner turns a classified library.Root into a library_plan: a
// pure value describing every compile, archive, link, and template-render
// node the build needs, with no I/O beyond what classification already
// performed. Grounded on original_source/src/dds/build/plan/library.cpp.
package planner

import (
	"github.com/forgebuild/forge/internal/classify"
	"github.com/forgebuild/forge/internal/rules"
)

// CompileFilePlan is one source-to-object (or source-to-sentinel, for a
// syntax-only header-independence check) compile node.
type CompileFilePlan struct {
	// Source is the file being compiled.
	Source classify.File
	// Rules is the effective compile_rules for this one file.
	Rules rules.CompileRules
	// Output is the output path: an object file under <out_dir>/obj, or a
	// sentinel under <out_dir>/timestamps for a syntax-only compile. It is
	// absolute only when out_subdir is.
	Output string
}

// CreateArchivePlan bundles every lib_sources compile into a static
// archive. Present iff the library has at least one compiled source in
// src/ (spec invariant).
type CreateArchivePlan struct {
	// Output is the path to the archive file, <out_dir>/<qualified name>.a.
	Output string
	// Inputs are the compile nodes whose objects make up this archive.
	Inputs []CompileFilePlan
}

// LinkExecutablePlan links one app_sources or test_sources entry into its
// own standalone executable.
type LinkExecutablePlan struct {
	// Kind is classify.App or classify.Test.
	Kind classify.Kind
	// Compile is this executable's own translation unit.
	Compile CompileFilePlan
	// Links is the deduplicated set of library names to link against,
	// manifest uses+links for an app, or uses+links+test_uses for a test.
	Links []string
	// Output is the path to the linked executable under <out_dir>.
	Output string
	// Stem is the executable's base name, the source filename with its
	// two trailing extensions stripped (e.g. "foo.test.cpp" -> "foo").
	Stem string
}

// RenderTemplatePlan renders one header_template source into a concrete
// header under the codegen tree.
type RenderTemplatePlan struct {
	// Source is the template file.
	Source classify.File
	// Output is the path to the rendered header, under the relative
	// codegen tree __dds/gen/<out_dir>.
	Output string
}

// LibraryPlan is the complete, pure plan for one library.
type LibraryPlan struct {
	// QualifiedName names this library's archive file, disambiguating it
	// from same-named libraries in other packages (GLOSSARY "qualified
	// name"). Object file paths do not use it.
	QualifiedName string
	// OutDir is this library's own output subtree, out_subdir joined with
	// its path namespace.
	OutDir string

	LibCompileFiles  []CompileFilePlan
	ArchivePlan      *CreateArchivePlan
	HeaderIndepPlans []CompileFilePlan
	LinkPlans        []LinkExecutablePlan
	TemplatePlans    []RenderTemplatePlan

	generatedIncludeDir string
	hasGeneratedInclude bool
}

// GeneratedIncludeDir returns the codegen include directory dependents
// should add to their own compile rules, if this library renders any
// header templates. Mirrors std::optional<fs::path>
// library_plan::generated_include_dir() in original_source.
func (p LibraryPlan) GeneratedIncludeDir() (string, bool) {
	return p.generatedIncludeDir, p.hasGeneratedInclude
}
