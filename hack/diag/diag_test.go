package diag_test

import (
	"testing"

	"github.com/fatih/color"

	"github.com/marcuscaisey/hackro/hack/diag"
	"github.com/marcuscaisey/hackro/hack/token"
)

func tokenAt(file *token.File, start, end int) token.Token {
	return token.Token{
		StartPos: file.Position(start),
		EndPos:   file.Position(end),
		Lexeme:   string(file.Contents[start:end]),
	}
}

func TestErrorHighlightsRange(t *testing.T) {
	color.NoColor = true
	tests := []struct {
		name       string
		src        string
		start, end int
		want       string
	}{
		{
			name:  "single line",
			src:   "<?hh\necho \"bar;\n",
			start: 10,
			end:   15,
			want:  "test.hack:2:6: error: unterminated string literal\necho \"bar;\n     ~~~~~",
		},
		{
			name:  "multiple lines",
			src:   "<?hh\nf($a,\n  $b);\n",
			start: 7,
			end:   15,
			want:  "test.hack:2:3: error: unterminated string literal\nf($a,\n  ~~~\n  $b);\n~~~~",
		},
		{
			name:  "wide characters",
			src:   "$a = '世界",
			start: 5,
			end:   12,
			want:  "test.hack:1:6: error: unterminated string literal\n$a = '世界\n     ~~~~~",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			file := token.NewFile("test.hack", []byte(test.src))
			err := diag.NewError(tokenAt(file, test.start, test.end), "unterminated %s literal", "string")
			if got := err.Error(); got != test.want {
				t.Errorf("Error() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestDiagnosticMessage(t *testing.T) {
	tests := []struct {
		kind   diag.Kind
		reason string
		want   string
	}{
		{
			kind: diag.AssignmentToReadonly,
			want: "This expression is readonly, its members cannot be modified",
		},
		{
			kind: diag.AssignReadonlyToMutableCollection,
			want: "This expression is readonly, but the collection it is being stored in is mutable",
		},
		{
			kind: diag.InvalidReadonly,
			want: "This expression is readonly, but a mutable value was expected.",
		},
		{
			kind:   diag.InvalidReadonly,
			reason: "Because reasons.",
			want:   "This expression is readonly, but a mutable value was expected. Because reasons.",
		},
	}
	for _, test := range tests {
		t.Run(test.kind.String(), func(t *testing.T) {
			d := &diag.Diagnostic{Kind: test.kind, Reason: test.reason}
			if got := d.Message(); got != test.want {
				t.Errorf("Message() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestDiagnosticsAreSortedByStart(t *testing.T) {
	color.NoColor = true
	file := token.NewFile("test.hack", []byte("$a->b = 1;\n$c->d = 2;\n"))
	var diags diag.Diagnostics
	diags.Add(tokenAt(file, 11, 20), diag.AssignmentToReadonly, "")
	diags.Add(tokenAt(file, 0, 9), diag.AssignmentToReadonly, "")

	want := "test.hack:1:1: error: This expression is readonly, its members cannot be modified\n" +
		"$a->b = 1;\n" +
		"~~~~~~~~~\n" +
		"test.hack:2:1: error: This expression is readonly, its members cannot be modified\n" +
		"$c->d = 2;\n" +
		"~~~~~~~~~"
	if got := diags.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErr(t *testing.T) {
	var diags diag.Diagnostics
	if err := diags.Err(); err != nil {
		t.Errorf("Diagnostics.Err() = %v, want nil", err)
	}
	var errs diag.Errors
	if err := errs.Err(); err != nil {
		t.Errorf("Errors.Err() = %v, want nil", err)
	}
}

func TestKindString(t *testing.T) {
	if got, want := diag.AssignReadonlyToMutableCollection.String(), "assign_readonly_to_mutable_collection"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
