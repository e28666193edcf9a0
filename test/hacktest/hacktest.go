// Package hacktest implements utilities for testing hackro on the corpus of Hack files defined under test/testdata.
package hacktest

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

const modulePath = "github.com/marcuscaisey/hackro"

var (
	update = flag.Bool("update", false, "updates the expected output of each test")

	// SyntaxErrorComment marks a file which has syntax errors that stop it being checked.
	SyntaxErrorComment = "// syntaxerror"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

// Updating reports whether the -update flag was passed to the test binary.
func Updating() bool {
	return *update
}

// Option can be passed to [Run] to configure its behaviour.
type Option func(*config)

// WithSkipSyntaxErrors configures whether files beginning with a `// syntaxerror` comment will be skipped.
func WithSkipSyntaxErrors(enabled bool) Option {
	return func(c *config) {
		c.skipSyntaxErrors = enabled
	}
}

// Runner defines how a test will be run or updated.
type Runner interface {
	// Test runs the test. It's passed the .hack file being tested and is responsible for failing the passed in
	// [*testing.T] if there are any errors.
	Test(t *testing.T, path string)
	// Update updates the expected output of the test. It's passed the .hack file being updated and is responsible for
	// failing the passed in [*testing.T] if there are any errors.
	Update(t *testing.T, path string)
}

// Run runs or updates a test for each .hack file under test/testdata. The provided runner defines how each test is
// run or updated.
// By default, [Runner.Test] is called in a subtest for each file. If the -update flag is passed to the test binary,
// then [Runner.Update] is called instead.
// All subtests are run in parallel.
func Run(t *testing.T, runner Runner, opts ...Option) {
	cfg := &config{
		skipSyntaxErrors: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	rootDir := mustGoModuleRoot(t)
	run(t, runner, filepath.Join(rootDir, "test", "testdata"), cfg)
}

type config struct {
	skipSyntaxErrors bool
}

func run(t *testing.T, runner Runner, dir string, cfg *config) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		t.Fatal(err)
	}

	for _, path := range matches {
		testName := snakeToPascalCase(filepath.Base(path))
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}

		if info.IsDir() {
			t.Run(testName, func(t *testing.T) {
				t.Parallel()
				run(t, runner, path, cfg)
			})
			continue
		}
		if filepath.Ext(path) != ".hack" {
			continue
		}

		if cfg.skipSyntaxErrors {
			contents, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if bytes.HasPrefix(contents, []byte(SyntaxErrorComment)) {
				continue
			}
		}

		t.Run(strings.TrimSuffix(testName, ".hack"), func(t *testing.T) {
			t.Parallel()
			if *update {
				runner.Update(t, path)
			} else {
				runner.Test(t, path)
			}
		})
	}
}

func snakeToPascalCase(s string) string {
	var b strings.Builder
	for part := range strings.SplitSeq(s, "_") {
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}
	return b.String()
}

// ComputeDiff returns a human-readable report of the differences between a wanted and got value.
func ComputeDiff(want, got any) string {
	diff := cmp.Diff(want, got, cmp.Transformer("BytesToString", func(b []byte) string {
		return string(b)
	}))
	return fmt.Sprintf("%s\n%s\n%s", green("want -"), red("got +"), colouriseDiff(diff))
}

// ComputeTextDiff returns a human-readable report of the differences between a wanted and got string.
// If there are no differences, an empty string is returned.
// The output of this function is more readable than [ComputeDiff] for string inputs.
func ComputeTextDiff(want, got string) string {
	edits := myers.ComputeEdits(span.URIFromPath("want"), want, got)
	diff := fmt.Sprint(gotextdiff.ToUnified("want", "got", want, edits))
	return colouriseDiff(diff)
}

func colouriseDiff(diff string) string {
	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "-") {
			lines[i] = green(line)
		} else if strings.HasPrefix(line, "+") {
			lines[i] = red(line)
		}
	}
	return strings.Join(lines, "\n")
}

// MustBuildBinary builds a Go binary defined in the hackro Go module and returns the path to it. name should be a
// directory in the root of the module. A binary of the same name is output to the build directory.
func MustBuildBinary(t *testing.T, name string) string {
	t.Helper()

	rootDir := mustGoModuleRoot(t)
	buildDir := filepath.Join(rootDir, "build")
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		t.Fatalf("building %s: %s", name, err)
	}

	binPath := filepath.Join(buildDir, name)
	cmd := exec.Command("go", "build", "-o", binPath, modulePath+"/"+name)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("building %s: %s: %v\nOutput:\n%s\n", name, cmd.String(), err, string(output))
	}

	return binPath
}

func mustGoModuleRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("determining go module root: %s", err)
	}

	for d := wd; d != "/"; d = filepath.Dir(d) {
		gomodPath := filepath.Join(d, "go.mod")
		if info, err := os.Stat(gomodPath); err == nil && !info.IsDir() {
			return d
		}
	}

	t.Fatal("determining go module root: no parent directory containing go.mod found")
	return ""
}

// ParseComments returns the first submatch of each match of commentPattern in fileContents. A submatch of <empty> is
// returned as an empty line.
func ParseComments(fileContents []byte, commentPattern *regexp.Regexp) [][]byte {
	var lines [][]byte
	for _, match := range commentPattern.FindAllSubmatch(fileContents, -1) {
		line := match[1]
		if bytes.Equal(match[1], []byte("<empty>")) {
			line = []byte{}
		}
		lines = append(lines, line)
	}
	return lines
}

// MustUpdateComments replaces the first submatch of each match of commentPattern in fileContents with the
// corresponding line and returns the result.
func MustUpdateComments(t *testing.T, filePath string, fileContents []byte, commentPattern *regexp.Regexp, lines [][]byte) []byte {
	matches := commentPattern.FindAllSubmatchIndex(fileContents, -1)
	if len(lines) != len(matches) {
		t.Fatalf(`%d "%s" %s found in %s but %d %s output, these should be equal`,
			len(matches), commentPattern, pluralise("comment", len(matches)), filePath, len(lines), pluralise("line", len(lines)))
	}
	if len(lines) == 0 {
		return fileContents
	}

	var b bytes.Buffer
	lastEnd := 0
	for i, match := range matches {
		start, end := match[2], match[3]
		b.Write(fileContents[lastEnd:start])
		if len(lines[i]) == 0 {
			b.WriteString("<empty>")
		} else {
			b.Write(lines[i])
		}
		lastEnd = end
	}
	b.Write(fileContents[lastEnd:])

	return b.Bytes()
}

func pluralise(s string, n int) string {
	if n == 1 {
		return s
	}
	return s + "s"
}
