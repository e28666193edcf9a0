package parser_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"github.com/marcuscaisey/hackro/hack/ast"
	"github.com/marcuscaisey/hackro/hack/diag"
	"github.com/marcuscaisey/hackro/hack/format"
	"github.com/marcuscaisey/hackro/hack/parser"
	"github.com/marcuscaisey/hackro/hack/token"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, err := parser.Parse(strings.NewReader(src), "test.hack")
	if err != nil {
		t.Fatalf("parsing source: %s", err)
	}
	return program
}

func mustExprStmt(t *testing.T, program *ast.Program, i int) ast.Expr {
	t.Helper()
	stmt, ok := program.Stmts[i].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("statement %d is %T, want *ast.ExprStmt", i, program.Stmts[i])
	}
	return stmt.Expr
}

func TestParseReadonlyMarkers(t *testing.T) {
	program := mustParse(t, `<?hh
function f(readonly Foo $ro, Foo $mut): readonly Foo {}
class C {
    public readonly function m(): void {}
    public function n(): Foo {}
}`)

	fun, ok := program.Stmts[0].(*ast.FunDecl)
	if !ok {
		t.Fatalf("first statement is %T, want *ast.FunDecl", program.Stmts[0])
	}
	if !fun.Function.ReturnsReadonly() {
		t.Error("f.ReturnsReadonly() = false, want true")
	}
	if got := []bool{fun.Function.Params[0].IsReadonly(), fun.Function.Params[1].IsReadonly()}; !cmp.Equal(got, []bool{true, false}) {
		t.Errorf("IsReadonly() of f's params = %v, want [true false]", got)
	}

	class, ok := program.Stmts[1].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("second statement is %T, want *ast.ClassDecl", program.Stmts[1])
	}
	methods := class.Methods()
	if len(methods) != 2 {
		t.Fatalf("C has %d methods, want 2", len(methods))
	}
	if !methods[0].Function.HasReadonlyThis() {
		t.Error("m.HasReadonlyThis() = false, want true")
	}
	if methods[1].Function.HasReadonlyThis() || methods[1].Function.ReturnsReadonly() {
		t.Error("n is marked readonly, want it unmarked")
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		src       string
		wantLeft  string
		wantOp    token.Type
		wantRight string
	}{
		{src: "$a + $b * $c;", wantLeft: "$a", wantOp: token.Plus, wantRight: "$b * $c"},
		{src: "$a * $b + $c;", wantLeft: "$a * $b", wantOp: token.Plus, wantRight: "$c"},
		{src: "$a || $b && $c;", wantLeft: "$a", wantOp: token.BarBar, wantRight: "$b && $c"},
		{src: "$a ?? $b ?? $c;", wantLeft: "$a", wantOp: token.QuestionQuestion, wantRight: "$b ?? $c"},
		{src: "$a . $b . $c;", wantLeft: "$a . $b", wantOp: token.Dot, wantRight: "$c"},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			expr := mustExprStmt(t, mustParse(t, test.src), 0)
			binary, ok := expr.(*ast.BinaryExpr)
			if !ok {
				t.Fatalf("expression is %T, want *ast.BinaryExpr", expr)
			}
			if got := format.Node(binary.Left); got != test.wantLeft {
				t.Errorf("left operand = %q, want %q", got, test.wantLeft)
			}
			if binary.Op.Type != test.wantOp {
				t.Errorf("operator = %s, want %s", binary.Op.Type, test.wantOp)
			}
			if got := format.Node(binary.Right); got != test.wantRight {
				t.Errorf("right operand = %q, want %q", got, test.wantRight)
			}
		})
	}
}

func TestParseAssignmentIsRightAssociative(t *testing.T) {
	expr := mustExprStmt(t, mustParse(t, "$a = $b = readonly $c;"), 0)
	outer, ok := expr.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expression is %T, want *ast.AssignExpr", expr)
	}
	inner, ok := outer.Right.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("right hand side is %T, want *ast.AssignExpr", outer.Right)
	}
	if _, ok := inner.Right.(*ast.ReadonlyExpr); !ok {
		t.Errorf("innermost right hand side is %T, want *ast.ReadonlyExpr", inner.Right)
	}
}

func TestParseLambdas(t *testing.T) {
	program := mustParse(t, `$f = $x ==> $x;
$g = (readonly Foo $x): readonly Foo ==> { return $x; };`)

	exprBodied, ok := mustExprStmt(t, program, 0).(*ast.AssignExpr).Right.(*ast.LambdaExpr)
	if !ok {
		t.Fatal("first right hand side is not a *ast.LambdaExpr")
	}
	if exprBodied.Expr == nil || exprBodied.Function.Body != nil {
		t.Errorf("$x ==> $x has Expr %v and Body %v, want an Expr and no Body", exprBodied.Expr, exprBodied.Function.Body)
	}
	if len(exprBodied.Function.Params) != 1 || exprBodied.Function.Params[0].Name.Lexeme != "$x" {
		t.Errorf("$x ==> $x does not have the single parameter $x")
	}

	blockBodied, ok := mustExprStmt(t, program, 1).(*ast.AssignExpr).Right.(*ast.LambdaExpr)
	if !ok {
		t.Fatal("second right hand side is not a *ast.LambdaExpr")
	}
	if blockBodied.Function.Body == nil || blockBodied.Expr != nil {
		t.Error("block bodied lambda has no Body")
	}
	if !blockBodied.Function.ReturnsReadonly() || !blockBodied.Function.Params[0].IsReadonly() {
		t.Error("block bodied lambda lost its readonly markers")
	}
}

func TestParseForeach(t *testing.T) {
	tests := []struct {
		src            string
		wantCollection string
		wantKey        string
		wantValue      string
	}{
		{src: "foreach ($xs as $v) {}", wantCollection: "$xs", wantValue: "$v"},
		{src: "foreach ($xs as $k => $v) {}", wantCollection: "$xs", wantKey: "$k", wantValue: "$v"},
		{src: "foreach ($o->xs as list($a, $b)) {}", wantCollection: "$o->xs", wantValue: "list($a, $b)"},
		{src: "foreach (($xs as Traversable<Foo>) as $v) {}", wantCollection: "($xs as Traversable<Foo>)", wantValue: "$v"},
		{src: "foreach (f($x as Foo) as $v) {}", wantCollection: "f($x as Foo)", wantValue: "$v"},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			program := mustParse(t, test.src)
			stmt, ok := program.Stmts[0].(*ast.ForeachStmt)
			if !ok {
				t.Fatalf("statement is %T, want *ast.ForeachStmt", program.Stmts[0])
			}
			if got := format.Node(stmt.Collection); got != test.wantCollection {
				t.Errorf("collection = %q, want %q", got, test.wantCollection)
			}
			gotKey := ""
			if stmt.Key != nil {
				gotKey = format.Node(stmt.Key)
			}
			if gotKey != test.wantKey {
				t.Errorf("key = %q, want %q", gotKey, test.wantKey)
			}
			if got := format.Node(stmt.Value); got != test.wantValue {
				t.Errorf("value = %q, want %q", got, test.wantValue)
			}
		})
	}
}

func TestParseAsOutsideForeach(t *testing.T) {
	expr := mustExprStmt(t, mustParse(t, "$a = $b as Foo;"), 0)
	assign, ok := expr.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expression is %T, want *ast.AssignExpr", expr)
	}
	if _, ok := assign.Right.(*ast.AsExpr); !ok {
		t.Errorf("right hand side is %T, want *ast.AsExpr", assign.Right)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		wantErrors []string
		wantStmts  []string
	}{
		{
			name:       "missing expression",
			src:        "$a = ;\n$b = 1;",
			wantErrors: []string{"1:6: expected expression"},
			wantStmts:  []string{"*ast.IllegalStmt", "*ast.ExprStmt"},
		},
		{
			name:       "missing class name",
			src:        "function f() {}\nclass {}\n$c = 1;",
			wantErrors: []string{"2:7: expected class name"},
			wantStmts:  []string{"*ast.FunDecl", "*ast.IllegalStmt", "*ast.Block", "*ast.ExprStmt"},
		},
		{
			name:       "errors in separate statements are all reported",
			src:        "$a = ;\n$b = ;",
			wantErrors: []string{"1:6: expected expression", "2:6: expected expression"},
			wantStmts:  []string{"*ast.IllegalStmt", "*ast.IllegalStmt"},
		},
		{
			name:       "only the first error at a position is reported",
			src:        `$a = "abc`,
			wantErrors: []string{"1:6: unterminated string literal"},
			wantStmts:  []string{"*ast.IllegalStmt"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			program, err := parser.Parse(strings.NewReader(test.src), "test.hack")

			var errs diag.Errors
			if !errors.As(err, &errs) {
				t.Fatalf("Parse() returned error %v, want diag.Errors", err)
			}
			var gotErrors []string
			for _, e := range errs {
				gotErrors = append(gotErrors, e.Start.String()+": "+e.Msg)
			}
			if diff := cmp.Diff(test.wantErrors, gotErrors); diff != "" {
				t.Errorf("errors mismatch (-want +got):\n%s", diff)
			}

			var gotStmts []string
			for _, stmt := range program.Stmts {
				gotStmts = append(gotStmts, fmt.Sprintf("%T", stmt))
			}
			if diff := cmp.Diff(test.wantStmts, gotStmts); diff != "" {
				t.Errorf("statements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	color.NoColor = true
	_, err := parser.Parse(strings.NewReader("$a = ;\n"), "test.hack")
	if err == nil {
		t.Fatal("Parse() returned no error")
	}
	want := "test.hack:1:6: error: expected expression\n$a = ;\n     ~"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
