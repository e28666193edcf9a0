package readonly

import (
	"fmt"

	"github.com/marcuscaisey/hackro/hack/ast"
)

// Eval returns the qualifier of expr in ctx. It doesn't modify expr or ctx.
func Eval(ctx *Context, expr ast.Expr) Qualifier {
	switch expr := expr.(type) {
	case nil:
		return Mutable
	case *ast.ReadonlyExpr:
		return Readonly
	case *ast.VarExpr:
		if expr.IsThis() {
			return ctx.This
		}
		return ctx.Lookup(expr.Name.Lexeme)
	case *ast.ThisExpr:
		return ctx.This

	// Accessing into a value or passing it through keeps its qualifier.
	case *ast.ObjGetExpr:
		return Eval(ctx, expr.Object)
	case *ast.ArrayGetExpr:
		return Eval(ctx, expr.Array)
	case *ast.CallconvExpr:
		return Eval(ctx, expr.Expr)
	case *ast.AsExpr:
		return Eval(ctx, expr.Expr)
	case *ast.HoleExpr:
		return Eval(ctx, expr.Expr)
	case *ast.AwaitExpr:
		return Eval(ctx, expr.Expr)
	case *ast.GroupExpr:
		return Eval(ctx, expr.Expr)

	// A literal collection is readonly if any of its values are.
	case *ast.DarrayExpr:
		return evalFields(ctx, expr.Fields)
	case *ast.VarrayExpr:
		return evalExprs(ctx, expr.Elems)
	case *ast.ShapeExpr:
		return evalFields(ctx, expr.Fields)
	case *ast.ValCollectionExpr:
		return evalExprs(ctx, expr.Elems)
	case *ast.KeyValCollectionExpr:
		return evalFields(ctx, expr.Fields)
	case *ast.CollectionExpr:
		return evalFields(ctx, expr.Fields)
	case *ast.RecordExpr:
		return evalFields(ctx, expr.Fields)
	case *ast.TupleExpr:
		return evalExprs(ctx, expr.Elems)
	case *ast.PairExpr:
		return Eval(ctx, expr.First).Join(Eval(ctx, expr.Second))

	case *ast.TernaryExpr:
		if expr.Then == nil {
			return Eval(ctx, expr.Else)
		}
		return Eval(ctx, expr.Then).Join(Eval(ctx, expr.Else))

	// Calls and static accesses are mutable unless explicitly wrapped in readonly.
	case *ast.CallExpr, *ast.ClassGetExpr, *ast.ClassConstExpr:
		return Mutable
	// Operators and casts produce primitives.
	case *ast.UnaryExpr, *ast.BinaryExpr, *ast.AssignExpr, *ast.CastExpr, *ast.IsExpr:
		return Mutable
	case *ast.ListExpr, *ast.XmlExpr, *ast.FunExpr, *ast.LambdaExpr, *ast.NewExpr, *ast.CloneExpr:
		return Mutable
	case *ast.LiteralExpr, *ast.InterpolatedStringExpr, *ast.PrefixedStringExpr, *ast.OmittedExpr, *ast.IdentExpr:
		return Mutable
	case *ast.FunctionPointerExpr, *ast.FunIdExpr, *ast.MethodIdExpr, *ast.SmethodIdExpr, *ast.MethodCallerExpr:
		return Mutable
	// TODO: track the qualifier of the left hand side of a pipe so that $$ can take it.
	case *ast.PipeExpr, *ast.DollarDollarExpr:
		return Mutable
	case *ast.YieldExpr, *ast.ExpressionTreeExpr, *ast.ETSpliceExpr, *ast.EnumClassLabelExpr, *ast.ImportExpr,
		*ast.PlaceholderExpr:
		return Mutable
	default:
		panic(fmt.Sprintf("unexpected ast.Expr: %T", expr))
	}
}

func evalExprs(ctx *Context, exprs []ast.Expr) Qualifier {
	for _, expr := range exprs {
		if Eval(ctx, expr) == Readonly {
			return Readonly
		}
	}
	return Mutable
}

func evalFields(ctx *Context, fields []*ast.Field) Qualifier {
	for _, field := range fields {
		if Eval(ctx, field.Value) == Readonly {
			return Readonly
		}
	}
	return Mutable
}
