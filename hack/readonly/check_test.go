package readonly_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/marcuscaisey/hackro/hack/ast"
	"github.com/marcuscaisey/hackro/hack/diag"
	"github.com/marcuscaisey/hackro/hack/format"
	"github.com/marcuscaisey/hackro/hack/parser"
	"github.com/marcuscaisey/hackro/hack/readonly"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, err := parser.Parse(strings.NewReader(src), "test.hack")
	if err != nil {
		t.Fatalf("parsing source: %s", err)
	}
	return program
}

// diagnostic is a [*diag.Diagnostic] with its position replaced by the source text that it covers.
type diagnostic struct {
	Kind diag.Kind
	Text string
}

func summarise(diags diag.Diagnostics) []diagnostic {
	var summary []diagnostic
	for _, d := range diags {
		summary = append(summary, diagnostic{Kind: d.Kind, Text: spanText(d)})
	}
	return summary
}

func spanText(d *diag.Diagnostic) string {
	return string(d.Start.File.Contents[d.Start.Offset:d.End.Offset])
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []diagnostic
	}{
		{
			name: "readonly returned from function without readonly return",
			src:  `function f(): mixed { return readonly new Foo(); }`,
			want: []diagnostic{
				{Kind: diag.InvalidReadonly, Text: "readonly new Foo()"},
			},
		},
		{
			name: "readonly returned from function with readonly return",
			src:  `function f(): readonly Foo { return readonly new Foo(); }`,
		},
		{
			name: "property of readonly parameter assigned",
			src:  `function f(readonly Foo $x): void { $x->y = 1; }`,
			want: []diagnostic{
				{Kind: diag.AssignmentToReadonly, Text: "$x->y = 1"},
			},
		},
		{
			name: "property of mutable parameter assigned",
			src:  `function f(Foo $x): void { $x->y = 1; }`,
		},
		{
			name: "readonly survives branch which does not rebind it",
			src:  `$a = readonly new Foo(); if ($cond) { $b = 1; } else { } $a->y = 1;`,
			want: []diagnostic{
				{Kind: diag.AssignmentToReadonly, Text: "$a->y = 1"},
			},
		},
		{
			name: "readonly from either branch wins",
			src:  `$a = new Foo(); if ($cond) { $a = readonly new Foo(); } $a->y = 1;`,
			want: []diagnostic{
				{Kind: diag.AssignmentToReadonly, Text: "$a->y = 1"},
			},
		},
		{
			name: "bindings in an if condition are discarded",
			src:  `function f(readonly Foo $x): void { $a = new Foo(); if ($a = $x) {} $a->y = 1; }`,
		},
		{
			name: "bindings in an if condition are not seen by the branches",
			src:  `function f(readonly Foo $x): void { if ($a = $x) { $a->y = 1; } else { $a->y = 2; } }`,
		},
		{
			name: "readonly stored in omitted list slot",
			src:  `function f(Foo $c): void { list($a, , $b) = readonly $c; }`,
			want: []diagnostic{
				{Kind: diag.AssignReadonlyToMutableCollection, Text: "readonly $c"},
			},
		},
		{
			name: "readonly stored in placeholder list slot",
			src:  `function f(Foo $c): void { list($a, $_) = readonly $c; }`,
			want: []diagnostic{
				{Kind: diag.AssignReadonlyToMutableCollection, Text: "readonly $c"},
			},
		},
		{
			name: "readonly assigned to placeholder",
			src:  `function f(Foo $c): void { $_ = readonly $c; }`,
			want: []diagnostic{
				{Kind: diag.AssignReadonlyToMutableCollection, Text: "readonly $c"},
			},
		},
		{
			name: "mutable assigned to placeholder",
			src:  `function f(Foo $c): void { $_ = $c; }`,
		},
		{
			name: "rebinding to mutable clears readonly",
			src:  `$a = readonly new Foo(); $a = new Foo(); $a->y = 1;`,
		},
		{
			name: "list destructuring of readonly binds every target readonly",
			src:  `list($a, $b) = readonly $c; $a->y = 1; $b->y = 2;`,
			want: []diagnostic{
				{Kind: diag.AssignmentToReadonly, Text: "$a->y = 1"},
				{Kind: diag.AssignmentToReadonly, Text: "$b->y = 2"},
			},
		},
		{
			name: "readonly argument is not a violation",
			src:  `function f(readonly Foo $x): void { g($x); }`,
		},
		{
			name: "readonly stored in mutable local collection",
			src:  `function f(readonly Foo $x): void { $v = vec[]; $v[] = $x; }`,
			want: []diagnostic{
				{Kind: diag.AssignReadonlyToMutableCollection, Text: "$x"},
			},
		},
		{
			name: "property of readonly this assigned",
			src:  `class C { public readonly function m(): void { $this->x = 1; } }`,
			want: []diagnostic{
				{Kind: diag.AssignmentToReadonly, Text: "$this->x = 1"},
			},
		},
		{
			name: "property of mutable this assigned",
			src:  `class C { public function m(): void { $this->x = 1; } }`,
		},
		{
			name: "violations in every declaration are reported in source order",
			src: `function f(readonly Foo $x): void { $x->a = 1; }
function g(readonly Foo $x): Foo { return $x; }
class C { public function m(readonly Foo $x): void { $x->b = 2; } }
$y = readonly new Foo();
$y->c = 3;`,
			want: []diagnostic{
				{Kind: diag.AssignmentToReadonly, Text: "$x->a = 1"},
				{Kind: diag.InvalidReadonly, Text: "$x"},
				{Kind: diag.AssignmentToReadonly, Text: "$x->b = 2"},
				{Kind: diag.AssignmentToReadonly, Text: "$y->c = 3"},
			},
		},
		{
			name: "violations do not stop checking",
			src:  `function f(readonly Foo $x): void { $x->a = 1; $x->b = 2; }`,
			want: []diagnostic{
				{Kind: diag.AssignmentToReadonly, Text: "$x->a = 1"},
				{Kind: diag.AssignmentToReadonly, Text: "$x->b = 2"},
			},
		},
		{
			name: "lambda body does not see readonly locals of enclosing function",
			src:  `function f(readonly Foo $x): void { $g = () ==> { $x->y = 1; }; $x->y = 2; }`,
			want: []diagnostic{
				{Kind: diag.AssignmentToReadonly, Text: "$x->y = 2"},
			},
		},
		{
			name: "lambda parameters seed its context",
			src:  `$g = (readonly Foo $p) ==> { $p->y = 1; };`,
			want: []diagnostic{
				{Kind: diag.AssignmentToReadonly, Text: "$p->y = 1"},
			},
		},
		{
			name: "expression bodied lambda returns its body",
			src:  `$g = (readonly Foo $p) ==> $p;`,
			want: []diagnostic{
				{Kind: diag.InvalidReadonly, Text: "$p"},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			program := mustParse(t, test.src)
			got := summarise(readonly.Check(program))
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Check() diagnostics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckReturnReason(t *testing.T) {
	program := mustParse(t, `function f(): mixed { return readonly new Foo(); }`)
	diags := readonly.Check(program)
	if len(diags) != 1 {
		t.Fatalf("Check() returned %d diagnostics, want 1", len(diags))
	}
	want := "This expression is readonly, but a mutable value was expected. " +
		"this function does not return readonly. Please mark it to return readonly if needed."
	if got := diags[0].Message(); got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
}

func TestCheckWrapsReadonlyArguments(t *testing.T) {
	program := mustParse(t, `function f(readonly Foo $x, Foo $y): void { g($x, $y); }`)

	diags := readonly.Check(program)

	if len(diags) != 0 {
		t.Errorf("Check() returned diagnostics:\n%s", diags)
	}
	call, ok := ast.Find(program, func(*ast.CallExpr) bool { return true })
	if !ok {
		t.Fatal("no call expression found in checked program")
	}
	wrapped, ok := call.Args[0].(*ast.ReadonlyExpr)
	if !ok {
		t.Fatalf("first argument is %T, want *ast.ReadonlyExpr", call.Args[0])
	}
	if v, ok := wrapped.Expr.(*ast.VarExpr); !ok || v.Name.Lexeme != "$x" {
		t.Errorf("wrapped argument is %s, want $x", ast.Sprint(wrapped.Expr))
	}
	if _, ok := call.Args[1].(*ast.VarExpr); !ok {
		t.Errorf("second argument is %T, want it to be left unwrapped", call.Args[1])
	}
}

func TestCheckIsIdempotent(t *testing.T) {
	src := `class C {
    public function m(readonly Foo $ro, Foo $mut): void {
        $mut->prop = $ro;
        $ro->prop = 1;
        $local = vec[];
        $local[] = $ro;
        g($ro, readonly $mut);
    }
}`
	program := mustParse(t, src)

	firstDiags := summarise(readonly.Check(program))
	firstOutput := format.Node(program)
	secondDiags := summarise(readonly.Check(program))
	secondOutput := format.Node(program)

	if diff := cmp.Diff(firstDiags, secondDiags); diff != "" {
		t.Errorf("diagnostics of second Check() differ (-first +second):\n%s", diff)
	}
	if firstOutput != secondOutput {
		t.Errorf("second Check() rewrote the program again:\n%s", computeTextDiff(firstOutput, secondOutput))
	}
	if strings.Contains(secondOutput, "readonly readonly") {
		t.Errorf("readonly expression wrapped twice:\n%s", secondOutput)
	}
}

func TestCheckConcurrentlyMatchesSequential(t *testing.T) {
	var b strings.Builder
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		b.WriteString("function " + name + "(readonly Foo $x, Foo $y): Foo {\n")
		b.WriteString("    $y->p = $x;\n")
		b.WriteString("    $x->p = $y;\n")
		b.WriteString("    h($x);\n")
		b.WriteString("    return $x;\n")
		b.WriteString("}\n")
		b.WriteString("class C" + name + " {\n")
		b.WriteString("    public readonly function m(): void { $this->p = 1; }\n")
		b.WriteString("    public function n(): void { $this->p = 1; }\n")
		b.WriteString("}\n")
	}
	b.WriteString("$z = readonly new Foo();\n")
	b.WriteString("$z->p = 1;\n")
	src := b.String()

	sequential := mustParse(t, src)
	wantDiags := summarise(readonly.Check(sequential))
	wantOutput := format.Node(sequential)

	concurrent := mustParse(t, src)
	gotDiags := summarise(readonly.Check(concurrent, readonly.WithConcurrency(8)))
	gotOutput := format.Node(concurrent)

	if len(wantDiags) != 31 {
		t.Errorf("sequential Check() returned %d diagnostics, want 31", len(wantDiags))
	}
	if diff := cmp.Diff(wantDiags, gotDiags); diff != "" {
		t.Errorf("concurrent diagnostics differ from sequential (-sequential +concurrent):\n%s", diff)
	}
	if wantOutput != gotOutput {
		t.Errorf("concurrent output differs from sequential:\n%s", computeTextDiff(wantOutput, gotOutput))
	}
}

func TestWithConcurrencyBelowOne(t *testing.T) {
	program := mustParse(t, `function f(readonly Foo $x): void { $x->y = 1; }`)
	got := summarise(readonly.Check(program, readonly.WithConcurrency(0)))
	want := []diagnostic{{Kind: diag.AssignmentToReadonly, Text: "$x->y = 1"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Check() diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckFunction(t *testing.T) {
	program := mustParse(t, `function f(readonly Foo $x): void { $x->y = 1; return $x; }`)
	decl, ok := program.Stmts[0].(*ast.FunDecl)
	if !ok {
		t.Fatalf("first statement is %T, want *ast.FunDecl", program.Stmts[0])
	}

	got := summarise(readonly.CheckFunction(decl.Function))

	want := []diagnostic{
		{Kind: diag.AssignmentToReadonly, Text: "$x->y = 1"},
		{Kind: diag.InvalidReadonly, Text: "$x"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CheckFunction() diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	program := mustParse(t, `function f(readonly Foo $x): void { $x->y = 1; }`)

	readonly.Check(program, readonly.WithLogger(logger))

	logs := buf.String()
	for _, want := range []string{
		`msg="checking declaration" decl=f`,
		`msg="found violation" decl=f kind=assignment_to_readonly`,
	} {
		if !strings.Contains(logs, want) {
			t.Errorf("logs do not contain %q:\n%s", want, logs)
		}
	}
}
