// Entry point for the hackro readonly checker.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"golang.org/x/term"

	"github.com/marcuscaisey/hackro/hack/ast"
	"github.com/marcuscaisey/hackro/hack/diag"
	"github.com/marcuscaisey/hackro/hack/format"
	"github.com/marcuscaisey/hackro/hack/parser"
	"github.com/marcuscaisey/hackro/hack/readonly"
)

var (
	fix       = flag.Bool("fix", false, "Print the program with readonly values made explicit to stdout")
	write     = flag.Bool("w", false, "Write the program with readonly values made explicit to (source) file")
	printAST  = flag.Bool("ast", false, "Print the AST of the checked program")
	printJSON = flag.Bool("json", false, "Print diagnostics to stdout as JSON, one per line")
	printDiff = flag.Bool("diff", false, "Print a diff of the changes made to make readonly values explicit")
	jobs      = flag.Int("j", runtime.NumCPU(), "Number of declarations to check concurrently")
	verbose   = flag.Bool("v", false, "Log debug output to stderr")
	repl      = flag.Bool("repl", false, "Start an interactive session which checks each entered line")
)

// errReported is returned when the program has syntax errors or readonly violations which have already been reported.
var errReported = errors.New("errors reported")

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: hackro [flags] [path]\n")
	fmt.Fprintf(flag.CommandLine.Output(), "\n")
	fmt.Fprintf(flag.CommandLine.Output(), "If no path is provided, the file is read from stdin.\n")
	fmt.Fprintf(flag.CommandLine.Output(), "\n")
	fmt.Fprintf(flag.CommandLine.Output(), "Options:\n")
	flag.PrintDefaults()
}

func exitWithUsageErr(msg string) {
	fmt.Fprintf(flag.CommandLine.Output(), "error: %s\n\n", msg)
	flag.Usage()
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	color.NoColor = !term.IsTerminal(int(os.Stderr.Fd()))

	if len(flag.Args()) > 1 {
		exitWithUsageErr("at most one path can be provided")
	}
	path := flag.Arg(0)

	stdoutModes := 0
	for _, enabled := range []bool{*fix, *printAST, *printJSON, *printDiff} {
		if enabled {
			stdoutModes++
		}
	}
	if stdoutModes > 1 {
		exitWithUsageErr("at most one of -fix, -ast, -json and -diff can be provided")
	}
	if path == "" && *write {
		exitWithUsageErr("cannot use -w with standard input")
	}
	if *repl && (path != "" || *write || stdoutModes > 0) {
		exitWithUsageErr("-repl cannot be used with a path or any other output flags")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	opts := []readonly.Option{readonly.WithConcurrency(*jobs), readonly.WithLogger(logger)}

	var err error
	if *repl {
		err = runREPL(opts)
	} else {
		err = run(path, opts)
	}
	if errors.Is(err, errReported) {
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, opts []readonly.Option) error {
	var reader io.Reader = os.Stdin
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	program, err := parser.Parse(reader, path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return errReported
	}
	slog.Debug("parsed program", "path", path, "statements", len(program.Stmts))

	var original *ast.Program
	if *printDiff {
		original = ast.Clone(program)
	}

	diags := readonly.Check(program, opts...)
	slog.Debug("checked program", "path", path, "diagnostics", len(diags))

	switch {
	case *fix:
		fmt.Print(format.Node(program))
	case *printAST:
		ast.Print(program)
	case *printDiff:
		fmt.Print(computeDiff(path, format.Node(original), format.Node(program)))
	case *printJSON:
		if err := writeJSON(os.Stdout, diags); err != nil {
			return err
		}
	}
	if *write {
		if err := os.WriteFile(path, []byte(format.Node(program)), 0644); err != nil {
			return fmt.Errorf("writing checked program to file: %w", err)
		}
	}

	if len(diags) > 0 {
		if !*printJSON {
			fmt.Fprintln(os.Stderr, diags)
		}
		return errReported
	}
	return nil
}

func computeDiff(path, before, after string) string {
	if path == "" {
		path = "<stdin>"
	}
	edits := myers.ComputeEdits(span.URIFromPath(path), before, after)
	return fmt.Sprint(gotextdiff.ToUnified(path, path, before, edits))
}

type jsonDiagnostic struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Kind    string `json:"kind"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w io.Writer, diags diag.Diagnostics) error {
	enc := json.NewEncoder(w)
	for _, d := range diags {
		err := enc.Encode(jsonDiagnostic{
			Start:   d.Start.Offset,
			End:     d.End.Offset,
			Line:    d.Start.Line,
			Column:  d.Start.Column + 1,
			Kind:    d.Kind.String(),
			Reason:  d.Reason,
			Message: d.Message(),
		})
		if err != nil {
			return fmt.Errorf("writing diagnostics as JSON: %w", err)
		}
	}
	return nil
}

func runREPL(opts []readonly.Option) error {
	cfg := &readline.Config{
		Prompt: ">>> ",
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		cfg.HistoryFile = filepath.Join(homeDir, ".hackro_history")
	} else {
		fmt.Fprintf(os.Stderr, "Can't get current user's home directory (%s). Command history will not be saved.\n", err)
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return fmt.Errorf("running hackro REPL: %s", err)
	}
	defer rl.Close()

	fmt.Fprintln(os.Stderr, "Enter Hack statements or declarations to check them.")

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				break
			}
			panic(fmt.Sprintf("unexpected error from readline: %s", err))
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		checkSnippet(line, opts)
	}

	return nil
}

// checkSnippet checks a snippet entered into the REPL and prints it with readonly values made explicit.
func checkSnippet(src string, opts []readonly.Option) {
	program, err := parser.Parse(strings.NewReader(src), "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if diags := readonly.Check(program, opts...); len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diags)
	}
	fmt.Print(format.Node(program))
}
