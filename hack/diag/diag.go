// Package diag defines the types which describe problems found in Hack source code: syntax errors reported by the
// parser and the diagnostics reported by the readonly checker.
package diag

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/marcuscaisey/hackro/hack/token"
)

// Error describes a syntax error. It can describe any error which can be attributed to a range of characters in the
// source code.
type Error struct {
	Msg   string
	Start token.Position
	End   token.Position
}

// NewError creates a [*Error] with the given range.
// The error message is constructed from the given format string and arguments, as in [fmt.Sprintf].
func NewError(rang token.Range, format string, args ...any) *Error {
	return &Error{
		Msg:   fmt.Sprintf(format, args...),
		Start: rang.Start(),
		End:   rang.End(),
	}
}

// Error formats the error by displaying the error message and highlighting the range of characters in the source code
// that the error applies to.
//
// For example:
//
//	test.hack:2:8: error: unterminated string literal
//	  echo "bar;
//	       ~~~~~
func (e *Error) Error() string {
	return highlight(e.Start, e.End, e.Msg)
}

// Errors is a list of [*Error]s.
type Errors []*Error

// Addf adds a [*Error] to the list of errors.
// The parameters are the same as for [NewError].
func (e *Errors) Addf(rang token.Range, format string, args ...any) {
	*e = append(*e, NewError(rang, format, args...))
}

// Sort sorts the errors by their start position.
func (e Errors) Sort() {
	slices.SortStableFunc(e, func(e1, e2 *Error) int {
		return e1.Start.Compare(e2.Start)
	})
}

// Error formats the errors by concatenating their messages after sorting them by their start position.
func (e Errors) Error() string {
	if len(e) == 0 {
		panic("Error called on empty error list")
	}
	e.Sort()
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Err returns the error list unchanged if its non-empty, otherwise nil.
// This should be used to return an [Errors] from a function as an [error] so that it becomes an untyped nil if there
// are no errors.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var (
	bold  = color.New(color.Bold)
	red   = color.New(color.FgRed)
	faint = color.New(color.Faint)
)

// highlight formats msg as an error at start, followed by the source lines between start and end with the range
// underlined.
func highlight(start, end token.Position, msg string) string {
	var b strings.Builder
	buildString := func() string {
		return strings.TrimSuffix(b.String(), "\n")
	}

	if start.IsValid() && start.File.Name != "" {
		bold.Fprint(&b, start.File.Name, ":")
	}
	bold.Fprint(&b, start.String(), ": ", red.Sprint("error: "), msg, "\n")
	if !start.IsValid() {
		return buildString()
	}

	lines := make([]string, end.Line-start.Line+1)
	for i := start.Line; i <= end.Line; i++ {
		line := start.File.Line(i)
		if !utf8.Valid(line) {
			// Without valid UTF-8 we can't work out display widths so only the message is shown.
			return buildString()
		}
		lines[i-start.Line] = string(line)
	}

	printLine := func(line string) {
		faint.Fprint(&b, line)
		b.WriteString("\n")
	}
	printLineHighlight := func(line string, from, to int) {
		leadingWhitespace := strings.Repeat(" ", runewidth.StringWidth(line[:from]))
		tildes := strings.Repeat("~", runewidth.StringWidth(line[from:to]))
		fmt.Fprint(&b, leadingWhitespace, red.Sprint(tildes), "\n")
	}

	printLine(lines[0])
	if start == end {
		return buildString()
	}

	if len(lines) == 1 {
		printLineHighlight(lines[0], start.Column, end.Column)
	} else {
		printLineHighlight(lines[0], start.Column, len(lines[0]))
		for _, line := range lines[1 : len(lines)-1] {
			printLine(line)
			printLineHighlight(line, 0, len(line))
		}
		if lastLine := lines[len(lines)-1]; len(lastLine) > 0 && end.Column > 0 {
			printLine(lastLine)
			printLineHighlight(lastLine, 0, end.Column)
		}
	}

	return buildString()
}
