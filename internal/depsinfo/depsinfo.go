// Package depsinfo implements the dependency-info parser (spec §4.1): it
// normalizes a compiler's header-inclusion report, emitted in one of two
// dialects, into a file_deps_info value the metadata store can persist.
package depsinfo

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
)

// FileDepsInfo is the unit persisted to the metadata store: the output
// path a compile produced, the ordered list of input paths the
// toolchain reported consuming, and the command string used to identify
// this invocation.
type FileDepsInfo struct {
	Output  string
	Inputs  []string
	Command string
}

// Logger receives diagnostics the parser emits for malformed input. It
// mirrors the teacher's io.Writer-based logging seam rather than
// introducing a logging library the corpus doesn't use for this concern.
type Logger interface {
	Critical(msg string)
}

// NopLogger discards every message.
type NopLogger struct{}

// Critical implements Logger.
func (NopLogger) Critical(string) {}

// ParseMake parses the make-style dialect (spec §4.1): a single text
// blob of the form "<output>: <input1> <input2> …" with "\<newline>"
// line-continuation sequences.
//
// Per the spec's Open Questions, the shell-tokenization step operates on
// the backslash-newline-collapsed string, not the original — the
// original tool's behavior of splitting the uncollapsed string is
// recorded there as a bug; this implementation takes the corrected
// reading.
func ParseMake(blob string, log Logger) FileDepsInfo {
	if log == nil {
		log = NopLogger{}
	}

	collapsed := strings.ReplaceAll(blob, "\\\n", " ")

	tokens, err := shlex.Split(collapsed)
	if err != nil || len(tokens) == 0 {
		log.Critical("invalid deps listing: shell split was empty or malformed")
		return FileDepsInfo{}
	}

	head := tokens[0]
	if !strings.HasSuffix(head, ":") {
		log.Critical("invalid deps listing: leader item is not colon-terminated")
		return FileDepsInfo{}
	}

	return FileDepsInfo{
		Output: strings.TrimSuffix(head, ":"),
		Inputs: append([]string(nil), tokens[1:]...),
	}
}

// MSVCResult is the output of the prefix-line dialect parser: the
// dependency info plus the compiler's console output with dependency
// chatter stripped out.
type MSVCResult struct {
	Deps          FileDepsInfo
	CleanedOutput string
}

// ParseMSVC parses the prefix-line dialect (spec §4.1): the stdout of a
// compiler that prints one line per included header, each prefixed by
// leader. Lines not matching leader are preserved verbatim, in order, in
// CleanedOutput.
func ParseMSVC(output, leader string) MSVCResult {
	// A trailing newline produces no trailing line of its own — mirrors
	// how compilers terminate every line, including the last, with "\n".
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")

	var cleaned strings.Builder
	var inputs []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, leader) {
			cleaned.WriteString(line)
			cleaned.WriteByte('\n')
			continue
		}
		remaining := strings.TrimSpace(trimmed[len(leader):])
		inputs = append(inputs, weaklyCanonicalize(remaining))
	}

	out := cleaned.String()
	out = strings.TrimSuffix(out, "\n")

	return MSVCResult{
		Deps:          FileDepsInfo{Inputs: inputs},
		CleanedOutput: out,
	}
}

// weaklyCanonicalize resolves ".." and symlinks when path exists on
// disk, preserving the lexical form otherwise (spec §9 "weakly-canonical
// paths"): it must degrade gracefully when rebuilding on a different
// machine from stored metadata, where a recorded path may no longer
// exist.
func weaklyCanonicalize(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		// Path doesn't exist (or isn't reachable): fall back to a purely
		// lexical Clean, never touching the filesystem again.
		return filepath.Clean(path)
	}
	return resolved
}

// ReadAllString is a small convenience used by callers that have an
// io.Reader (e.g. a sidecar .d file) rather than an in-memory string.
func ReadAllString(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
