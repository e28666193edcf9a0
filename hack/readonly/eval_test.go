package readonly_test

import (
	"testing"

	"github.com/marcuscaisey/hackro/hack/ast"
	"github.com/marcuscaisey/hackro/hack/readonly"
	"github.com/marcuscaisey/hackro/hack/token"
)

func variable(name string) *ast.VarExpr {
	return &ast.VarExpr{Name: token.Token{Type: token.Variable, Lexeme: name}}
}

func literal(lexeme string) *ast.LiteralExpr {
	return &ast.LiteralExpr{Value: token.Token{Type: token.Int, Lexeme: lexeme}}
}

func TestEval(t *testing.T) {
	ctx := readonly.NewContext(readonly.Mutable, readonly.Readonly)
	ctx.Bind("$ro", readonly.Readonly)
	ctx.Bind("$mut", readonly.Mutable)

	tests := []struct {
		name string
		expr ast.Expr
		want readonly.Qualifier
	}{
		{
			name: "unbound variable",
			expr: variable("$unbound"),
			want: readonly.Mutable,
		},
		{
			name: "readonly variable",
			expr: variable("$ro"),
			want: readonly.Readonly,
		},
		{
			name: "this variable takes the context's this qualifier",
			expr: variable("$this"),
			want: readonly.Readonly,
		},
		{
			name: "this expression takes the context's this qualifier",
			expr: &ast.ThisExpr{},
			want: readonly.Readonly,
		},
		{
			name: "explicit readonly",
			expr: &ast.ReadonlyExpr{Expr: variable("$mut")},
			want: readonly.Readonly,
		},
		{
			name: "property of readonly object",
			expr: &ast.ObjGetExpr{Object: variable("$ro"), Member: &ast.IdentExpr{}},
			want: readonly.Readonly,
		},
		{
			name: "readonly property of mutable object",
			expr: &ast.ObjGetExpr{Object: variable("$mut"), Member: variable("$ro")},
			want: readonly.Mutable,
		},
		{
			name: "element of readonly array",
			expr: &ast.ArrayGetExpr{Array: variable("$ro"), Index: literal("0")},
			want: readonly.Readonly,
		},
		{
			name: "readonly index of mutable array",
			expr: &ast.ArrayGetExpr{Array: variable("$mut"), Index: variable("$ro")},
			want: readonly.Mutable,
		},
		{
			name: "awaited readonly",
			expr: &ast.AwaitExpr{Expr: variable("$ro")},
			want: readonly.Readonly,
		},
		{
			name: "readonly as type",
			expr: &ast.AsExpr{Expr: variable("$ro"), Type: &ast.TypeHint{Text: "Foo"}},
			want: readonly.Readonly,
		},
		{
			name: "readonly is type",
			expr: &ast.IsExpr{Expr: variable("$ro"), Type: &ast.TypeHint{Text: "Foo"}},
			want: readonly.Mutable,
		},
		{
			name: "grouped readonly",
			expr: &ast.GroupExpr{Expr: variable("$ro")},
			want: readonly.Readonly,
		},
		{
			name: "inout readonly",
			expr: &ast.CallconvExpr{Expr: variable("$ro")},
			want: readonly.Readonly,
		},
		{
			name: "vec with a readonly element",
			expr: &ast.ValCollectionExpr{Elems: []ast.Expr{variable("$mut"), variable("$ro")}},
			want: readonly.Readonly,
		},
		{
			name: "vec with only mutable elements",
			expr: &ast.ValCollectionExpr{Elems: []ast.Expr{variable("$mut"), literal("1")}},
			want: readonly.Mutable,
		},
		{
			name: "empty vec",
			expr: &ast.ValCollectionExpr{},
			want: readonly.Mutable,
		},
		{
			name: "dict with a readonly value",
			expr: &ast.KeyValCollectionExpr{Fields: []*ast.Field{{Key: literal("1"), Value: variable("$ro")}}},
			want: readonly.Readonly,
		},
		{
			name: "dict with a readonly key",
			expr: &ast.KeyValCollectionExpr{Fields: []*ast.Field{{Key: variable("$ro"), Value: variable("$mut")}}},
			want: readonly.Mutable,
		},
		{
			name: "shape with a readonly value",
			expr: &ast.ShapeExpr{Fields: []*ast.Field{{Key: literal("'a'"), Value: variable("$ro")}}},
			want: readonly.Readonly,
		},
		{
			name: "darray with a readonly value",
			expr: &ast.DarrayExpr{Fields: []*ast.Field{{Key: literal("0"), Value: variable("$ro")}}},
			want: readonly.Readonly,
		},
		{
			name: "varray with a readonly element",
			expr: &ast.VarrayExpr{Elems: []ast.Expr{variable("$ro")}},
			want: readonly.Readonly,
		},
		{
			name: "tuple with a readonly element",
			expr: &ast.TupleExpr{Elems: []ast.Expr{literal("1"), variable("$ro")}},
			want: readonly.Readonly,
		},
		{
			name: "collection with a readonly value",
			expr: &ast.CollectionExpr{Fields: []*ast.Field{{Value: variable("$ro")}}},
			want: readonly.Readonly,
		},
		{
			name: "pair with a readonly second element",
			expr: &ast.PairExpr{First: variable("$mut"), Second: variable("$ro")},
			want: readonly.Readonly,
		},
		{
			name: "list is always mutable",
			expr: &ast.ListExpr{Elems: []ast.Expr{variable("$ro")}},
			want: readonly.Mutable,
		},
		{
			name: "ternary with a readonly branch",
			expr: &ast.TernaryExpr{Condition: variable("$mut"), Then: variable("$ro"), Else: variable("$mut")},
			want: readonly.Readonly,
		},
		{
			name: "ternary with mutable branches",
			expr: &ast.TernaryExpr{Condition: variable("$ro"), Then: variable("$mut"), Else: literal("1")},
			want: readonly.Mutable,
		},
		{
			name: "short ternary only looks at the else branch",
			expr: &ast.TernaryExpr{Condition: variable("$ro"), Else: variable("$mut")},
			want: readonly.Mutable,
		},
		{
			name: "call with readonly argument",
			expr: &ast.CallExpr{Callee: &ast.IdentExpr{}, Args: []ast.Expr{variable("$ro")}},
			want: readonly.Mutable,
		},
		{
			name: "method call on readonly object",
			expr: &ast.CallExpr{Callee: &ast.ObjGetExpr{Object: variable("$ro"), Member: &ast.IdentExpr{}}},
			want: readonly.Mutable,
		},
		{
			name: "static property",
			expr: &ast.ClassGetExpr{Class: &ast.IdentExpr{}},
			want: readonly.Mutable,
		},
		{
			name: "new object",
			expr: &ast.NewExpr{Class: &ast.IdentExpr{}, Args: []ast.Expr{variable("$ro")}},
			want: readonly.Mutable,
		},
		{
			name: "clone of readonly",
			expr: &ast.CloneExpr{Expr: variable("$ro")},
			want: readonly.Mutable,
		},
		{
			name: "cast of readonly",
			expr: &ast.CastExpr{Expr: variable("$ro")},
			want: readonly.Mutable,
		},
		{
			name: "binary operator on readonly",
			expr: &ast.BinaryExpr{Left: variable("$ro"), Right: variable("$ro")},
			want: readonly.Mutable,
		},
		{
			name: "lambda",
			expr: &ast.LambdaExpr{Function: &ast.Function{}, Expr: variable("$ro")},
			want: readonly.Mutable,
		},
		{
			name: "pipe from readonly",
			expr: &ast.PipeExpr{Left: variable("$ro"), Right: &ast.DollarDollarExpr{}},
			want: readonly.Mutable,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := readonly.Eval(ctx, test.expr)
			if got != test.want {
				t.Errorf("Eval(%s) = %s, want %s", ast.Sprint(test.expr), got, test.want)
			}
		})
	}
}

func TestEvalDoesNotModifyContext(t *testing.T) {
	ctx := readonly.NewContext(readonly.Mutable, readonly.Mutable)
	readonly.Eval(ctx, &ast.AssignExpr{
		Left:  variable("$x"),
		Op:    token.Token{Type: token.Equal, Lexeme: "="},
		Right: &ast.ReadonlyExpr{Expr: variable("$y")},
	})
	if len(ctx.Env) != 0 {
		t.Errorf("Eval bound %v, want no bindings", ctx.Env)
	}
}

func TestQualifierJoin(t *testing.T) {
	tests := []struct {
		left, right readonly.Qualifier
		want        readonly.Qualifier
	}{
		{readonly.Mutable, readonly.Mutable, readonly.Mutable},
		{readonly.Mutable, readonly.Readonly, readonly.Readonly},
		{readonly.Readonly, readonly.Mutable, readonly.Readonly},
		{readonly.Readonly, readonly.Readonly, readonly.Readonly},
	}
	for _, test := range tests {
		if got := test.left.Join(test.right); got != test.want {
			t.Errorf("%s.Join(%s) = %s, want %s", test.left, test.right, got, test.want)
		}
	}
}
