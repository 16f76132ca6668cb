package depsinfo

import (
	"testing"
)

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Critical(msg string) { l.messages = append(l.messages, msg) }

func TestParseMake_LineContinuation(t *testing.T) {
	blob := "foo.o: a.h \\\n  b.h\n"
	got := ParseMake(blob, nil)

	if got.Output != "foo.o" {
		t.Errorf("Output = %q, want %q", got.Output, "foo.o")
	}
	want := []string{"a.h", "b.h"}
	if len(got.Inputs) != len(want) {
		t.Fatalf("Inputs = %v, want %v", got.Inputs, want)
	}
	for i := range want {
		if got.Inputs[i] != want[i] {
			t.Errorf("Inputs[%d] = %q, want %q", i, got.Inputs[i], want[i])
		}
	}
}

func TestParseMake_MissingColonIsEmptyAndLogged(t *testing.T) {
	log := &recordingLogger{}
	got := ParseMake("foo.o a.h b.h", log)

	if got.Output != "" || len(got.Inputs) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
	if len(log.messages) != 1 {
		t.Fatalf("expected one critical log message, got %d", len(log.messages))
	}
}

func TestParseMake_EmptyTokenStream(t *testing.T) {
	log := &recordingLogger{}
	got := ParseMake("   ", log)
	if got.Output != "" || len(got.Inputs) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
	if len(log.messages) != 1 {
		t.Fatalf("expected one critical log message, got %d", len(log.messages))
	}
}

func TestParseMake_SplitsCollapsedFormNotOriginal(t *testing.T) {
	// A quote that only forms a valid token once "\<newline>" has been
	// collapsed to a space demonstrates the parser operates on the
	// collapsed string, per spec's Open Questions resolution.
	blob := "foo.o: \"a b\\\n.h\" c.h\n"
	got := ParseMake(blob, nil)
	if got.Output != "foo.o" {
		t.Fatalf("Output = %q, want foo.o", got.Output)
	}
	// The continuation collapses to a literal space, so the quoted token
	// keeps that space rather than joining "b" and ".h" directly.
	if len(got.Inputs) != 2 || got.Inputs[0] != "a b .h" || got.Inputs[1] != "c.h" {
		t.Fatalf("Inputs = %v, want [\"a b .h\" \"c.h\"]", got.Inputs)
	}
}

func TestParseMake_RoundTrip(t *testing.T) {
	blob := "o.o: a.h b.h"
	got := ParseMake(blob, nil)
	if got.Output != "o.o" || len(got.Inputs) != 2 || got.Inputs[0] != "a.h" || got.Inputs[1] != "b.h" {
		t.Fatalf("round-trip failed: %+v", got)
	}
}

func TestParseMSVC_PrefixLinesBecomeInputsOthersPreserved(t *testing.T) {
	output := "Note: including file: C:\\x\\y.h\nhello\nNote: including file:  C:\\x\\z.h\nworld\n"
	res := ParseMSVC(output, "Note: including file:")

	if res.CleanedOutput != "hello\nworld" {
		t.Errorf("CleanedOutput = %q, want %q", res.CleanedOutput, "hello\nworld")
	}
	if len(res.Deps.Inputs) != 2 {
		t.Fatalf("Inputs = %v, want 2 entries", res.Deps.Inputs)
	}
}

func TestParseMSVC_RoundTripOrderPreserved(t *testing.T) {
	output := "diag one\nNote: lead: /a/b.h\ndiag two\nNote: lead: /a/c.h\ndiag three\n"
	res := ParseMSVC(output, "Note: lead:")

	wantClean := "diag one\ndiag two\ndiag three"
	if res.CleanedOutput != wantClean {
		t.Errorf("CleanedOutput = %q, want %q", res.CleanedOutput, wantClean)
	}
}

func TestParseMSVC_NoLeaderMatches(t *testing.T) {
	output := "just some output\nwith no dependency lines\n"
	res := ParseMSVC(output, "Note: including file:")
	if len(res.Deps.Inputs) != 0 {
		t.Errorf("expected no inputs, got %v", res.Deps.Inputs)
	}
	if res.CleanedOutput != "just some output\nwith no dependency lines" {
		t.Errorf("CleanedOutput mangled: %q", res.CleanedOutput)
	}
}
