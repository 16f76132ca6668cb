package rules

import "testing"

func TestAddIncludeDir_Deduplicates(t *testing.T) {
	r := New()
	r.AddIncludeDir("a")
	r.AddIncludeDir("b")
	r.AddIncludeDir("a")

	got := r.IncludeDirs()
	want := []string{"a", "b"}
	if len(got) != len(want) {
		t.Fatalf("IncludeDirs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IncludeDirs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAddUse_Deduplicates(t *testing.T) {
	r := New()
	r.AddUse("alpha")
	r.AddUse("beta")
	r.AddUse("alpha")

	got := r.Uses()
	if len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Fatalf("Uses = %v, want [alpha beta]", got)
	}
}

func TestClone_IsIndependent(t *testing.T) {
	orig := New()
	orig.AddIncludeDir("a")
	orig.AddUse("alpha")
	orig.SetWarnings(true)
	orig.SetSyntaxOnly(true)

	clone := orig.Clone()
	clone.AddIncludeDir("b")
	clone.AddUse("beta")
	clone.SetWarnings(false)

	if len(orig.IncludeDirs()) != 1 || len(orig.Uses()) != 1 {
		t.Fatalf("mutating clone affected original: %+v", orig)
	}
	if !orig.Warnings() {
		t.Error("original Warnings flipped by clone mutation")
	}
	if len(clone.IncludeDirs()) != 2 || len(clone.Uses()) != 2 {
		t.Fatalf("clone missing its own additions: %+v", clone)
	}
	if clone.Warnings() {
		t.Error("clone Warnings should be false after SetWarnings(false)")
	}
	if !clone.SyntaxOnly() {
		t.Error("clone should inherit SyntaxOnly from original at clone time")
	}
}

func TestZeroValue_IsUsable(t *testing.T) {
	var r CompileRules
	r.AddIncludeDir("a")
	if len(r.IncludeDirs()) != 1 {
		t.Fatalf("zero value AddIncludeDir failed: %+v", r.IncludeDirs())
	}
}
