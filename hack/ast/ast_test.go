package ast_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/marcuscaisey/hackro/hack/ast"
	"github.com/marcuscaisey/hackro/hack/format"
	"github.com/marcuscaisey/hackro/hack/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, err := parser.Parse(strings.NewReader(src), "test.hack")
	if err != nil {
		t.Fatalf("parsing source: %s", err)
	}
	return program
}

func variables(root ast.Node, descend func(ast.Node) bool) []string {
	var names []string
	ast.Walk(root, func(n ast.Node) bool {
		if v, ok := n.(*ast.VarExpr); ok {
			names = append(names, v.Name.Lexeme)
		}
		return descend(n)
	})
	return names
}

func TestWalk(t *testing.T) {
	program := mustParse(t, `$a = f($b, $c->d[$e]);
function g(Foo $p = $q): void { $r = () ==> $s; }`)

	got := variables(program, func(ast.Node) bool { return true })

	want := []string{"$a", "$b", "$c", "$e", "$q", "$r", "$s"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("variables visited mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkSkipsChildrenWhenFuncReturnsFalse(t *testing.T) {
	program := mustParse(t, `$a = f($b, $c);
$d = () ==> $e;`)

	got := variables(program, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.CallExpr, *ast.LambdaExpr:
			return false
		default:
			return true
		}
	})

	want := []string{"$a", "$d"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("variables visited mismatch (-want +got):\n%s", diff)
	}
}

func TestFind(t *testing.T) {
	program := mustParse(t, `$a->b = 1;
$c->d = readonly $e;
$f->g = readonly $h;`)

	got, ok := ast.Find(program, func(*ast.ReadonlyExpr) bool { return true })
	if !ok {
		t.Fatal("Find() found no *ast.ReadonlyExpr")
	}
	if name := got.Expr.(*ast.VarExpr).Name.Lexeme; name != "$e" {
		t.Errorf("Find() found readonly %s, want readonly $e", name)
	}

	if _, ok := ast.Find(program, func(*ast.LambdaExpr) bool { return true }); ok {
		t.Error("Find() found a *ast.LambdaExpr in a program without one")
	}
}

func TestClone(t *testing.T) {
	src := `<?hh

function f(readonly Foo $x, Foo $y): void {
    $y->z = $x;
    g(vec[$x]);
}
`
	program := mustParse(t, src)

	clone := ast.Clone(program)
	assign, ok := ast.Find(clone, func(*ast.AssignExpr) bool { return true })
	if !ok {
		t.Fatal("no assignment found in clone")
	}
	assign.Right = &ast.ReadonlyExpr{Expr: assign.Right}

	if got := format.Node(program); got != src {
		t.Errorf("modifying the clone modified the original:\n%s", got)
	}
	if got, want := format.Node(clone), strings.Replace(src, "= $x", "= readonly $x", 1); got != want {
		t.Errorf("clone formatted incorrectly:\n%s", got)
	}
	if clone.File != program.File {
		t.Error("clone does not share the original's file")
	}
	if clone.Stmts[0] == program.Stmts[0] {
		t.Error("clone shares statements with the original")
	}
}

func TestCloneNil(t *testing.T) {
	var expr *ast.VarExpr
	if got := ast.Clone(expr); got != nil {
		t.Errorf("Clone(nil) = %v, want nil", got)
	}
}

func TestSprint(t *testing.T) {
	program := mustParse(t, `$a = readonly $b;`)

	got := ast.Sprint(program.Stmts[0].(*ast.ExprStmt).Expr)

	want := `(AssignExpr
  (Left $a)
  (Op =)
  (Right (ReadonlyExpr $b)))`
	if got != want {
		t.Errorf("Sprint() = %q, want %q", got, want)
	}
}

func TestSprintInsertedReadonly(t *testing.T) {
	program := mustParse(t, `$a = $b;`)
	assign := program.Stmts[0].(*ast.ExprStmt).Expr.(*ast.AssignExpr)
	assign.Right = &ast.ReadonlyExpr{Expr: assign.Right}

	got := ast.Sprint(assign)

	want := `(AssignExpr
  (Left $a)
  (Op =)
  (Right (ReadonlyExpr inserted $b)))`
	if got != want {
		t.Errorf("Sprint() = %q, want %q", got, want)
	}
}

func TestSprintListTarget(t *testing.T) {
	program := mustParse(t, `list($a, , $_) = $$;`)

	got := ast.Sprint(program.Stmts[0].(*ast.ExprStmt).Expr)

	want := `(AssignExpr
  (Left (ListExpr
    $a
    (OmittedExpr)
    $_))
  (Op =)
  (Right $$))`
	if got != want {
		t.Errorf("Sprint() = %q, want %q", got, want)
	}
}
