package planner

import (
	"path/filepath"
	"strings"

	"github.com/forgebuild/forge/internal/classify"
	"github.com/forgebuild/forge/internal/library"
	"github.com/forgebuild/forge/internal/rules"
)

// BuildParams configures one library's plan (spec §4.5's
// library_build_params).
type BuildParams struct {
	// OutSubdir is the root of every library's output tree, joined with
	// the library's path namespace to form its own out_dir.
	OutSubdir string
	// BuildTests enables header-independence checks and test links.
	BuildTests bool
	// BuildApps enables app links.
	BuildApps bool
	// EnableWarnings is threaded into every compile_rules this library
	// produces.
	EnableWarnings bool
	// TestUses are extra library usages visible only to test sources.
	TestUses []string
}

// Build constructs the complete, pure plan for one library. qualName
// overrides the manifest's own name for disambiguating output paths
// across packages (GLOSSARY "qualified name"); pass "" to use the
// manifest name unmodified.
func Build(lib library.Root, params BuildParams, qualName string) (LibraryPlan, error) {
	if qualName == "" {
		qualName = lib.Manifest().Name
	}

	// Step 1.
	outDir := filepath.Join(params.OutSubdir, lib.PathNamespace())

	// Step 2.
	var libSources, appSources, testSources, templateSources, headerSources, publicHeaderSources []classify.File
	for _, f := range lib.AllSources() {
		switch {
		case f.Kind == classify.HeaderTemplate && isUnderRole(f, "src"):
			templateSources = append(templateSources, f)
		case f.Kind == classify.Header && isUnderRole(f, "include"):
			publicHeaderSources = append(publicHeaderSources, f)
		case f.Kind == classify.Header && isUnderRole(f, "src"):
			headerSources = append(headerSources, f)
		case f.Kind == classify.Source:
			libSources = append(libSources, f)
		case f.Kind == classify.App:
			appSources = append(appSources, f)
		case f.Kind == classify.Test:
			testSources = append(testSources, f)
		}
	}

	// Step 3.
	if !params.BuildTests {
		headerSources = nil
		publicHeaderSources = nil
	}

	// Step 4.
	base := rules.New()
	lib.AppendPublicCompileRules(&base)
	base.SetWarnings(params.EnableWarnings)
	for _, u := range lib.Manifest().Uses {
		base.AddUse(u)
	}

	plan := LibraryPlan{QualifiedName: qualName, OutDir: outDir}

	// Step 5.
	if len(templateSources) > 0 {
		genDir := filepath.Join("__dds", "gen", outDir)
		base.AddIncludeDir(genDir)
		plan.generatedIncludeDir = genDir
		plan.hasGeneratedInclude = true
	}

	// Step 6.
	publicHeaderRules := base.Clone()
	publicHeaderRules.SetSyntaxOnly(true)
	srcHeaderRules := publicHeaderRules.Clone()
	lib.AppendPrivateCompileRules(&srcHeaderRules)
	lib.AppendPrivateCompileRules(&base)

	// Step 7.
	for _, f := range libSources {
		plan.LibCompileFiles = append(plan.LibCompileFiles, CompileFilePlan{
			Source: f,
			Rules:  base,
			Output: filepath.Join(outDir, "obj", roleRelative(f)+".o"),
		})
	}

	// Step 8.
	for _, f := range headerSources {
		plan.HeaderIndepPlans = append(plan.HeaderIndepPlans, CompileFilePlan{
			Source: f,
			Rules:  srcHeaderRules,
			Output: filepath.Join(outDir, "timestamps", roleRelative(f)+".stamp"),
		})
	}
	for _, f := range publicHeaderSources {
		plan.HeaderIndepPlans = append(plan.HeaderIndepPlans, CompileFilePlan{
			Source: f,
			Rules:  publicHeaderRules,
			Output: filepath.Join(outDir, "timestamps", roleRelative(f)+".stamp"),
		})
	}

	// Step 9.
	if len(plan.LibCompileFiles) > 0 {
		plan.ArchivePlan = &CreateArchivePlan{
			Output: filepath.Join(outDir, qualName+".a"),
			Inputs: plan.LibCompileFiles,
		}
	}

	// Step 10.
	linkSet := dedup(append(append([]string(nil), lib.Manifest().Uses...), lib.Manifest().Links...))

	// Step 11.
	testRules := base.Clone()
	for _, u := range params.TestUses {
		testRules.AddUse(u)
	}
	testLinks := dedup(append(append([]string(nil), linkSet...), params.TestUses...))

	// Step 12.
	if params.BuildApps {
		for _, f := range appSources {
			plan.LinkPlans = append(plan.LinkPlans, buildLinkPlan(f, classify.App, base, linkSet, outDir, ""))
		}
	}
	if params.BuildTests {
		for _, f := range testSources {
			plan.LinkPlans = append(plan.LinkPlans, buildLinkPlan(f, classify.Test, testRules, testLinks, outDir, "test"))
		}
	}

	// Step 13.
	for _, f := range templateSources {
		rendered := renderedTemplateName(roleRelative(f))
		plan.TemplatePlans = append(plan.TemplatePlans, RenderTemplatePlan{
			Source: f,
			Output: filepath.Join("__dds", "gen", outDir, rendered),
		})
	}

	return plan, nil
}

func buildLinkPlan(f classify.File, kind classify.Kind, effectiveRules rules.CompileRules, links []string, outDir, subSubdir string) LinkExecutablePlan {
	rel := roleRelative(f)
	sourceDir := filepath.Dir(rel)

	execSubdir := outDir
	if subSubdir != "" {
		execSubdir = filepath.Join(execSubdir, subSubdir)
	}
	if sourceDir != "." {
		execSubdir = filepath.Join(execSubdir, sourceDir)
	}

	stem := f.Stem()
	return LinkExecutablePlan{
		Kind:  kind,
		Links: links,
		Compile: CompileFilePlan{
			Source: f,
			Rules:  effectiveRules,
			Output: filepath.Join(outDir, "obj", rel+".o"),
		},
		Output: filepath.Join(execSubdir, stem),
		Stem:   stem,
	}
}

// isUnderRole reports whether f's library-relative path sits under the
// given role directory ("src" or "include").
func isUnderRole(f classify.File, role string) bool {
	return strings.HasPrefix(f.RelPath, role+"/")
}

// roleRelative strips the leading "src/" or "include/" role component
// from a file's library-relative path, leaving the path within the role
// tree (e.g. "src/widget.cpp" -> "widget.cpp").
func roleRelative(f classify.File) string {
	if rest, ok := strings.CutPrefix(f.RelPath, "src/"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(f.RelPath, "include/"); ok {
		return rest
	}
	return f.RelPath
}

// renderedTemplateName strips the ".in" role marker from a header
// template's name, e.g. "widget.in.hpp" -> "widget.hpp".
func renderedTemplateName(relPath string) string {
	ext := filepath.Ext(relPath)
	stem := strings.TrimSuffix(relPath, ext)
	if stripped, ok := strings.CutSuffix(stem, ".in"); ok {
		stem = stripped
	}
	return stem + ext
}

// dedup returns items with duplicates removed, keeping the first
// occurrence, matching the manifest use/link ordering rule (spec §4.5
// step 10).
func dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
