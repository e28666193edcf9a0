package readonly

import (
	"github.com/marcuscaisey/hackro/hack/ast"
	"github.com/marcuscaisey/hackro/hack/diag"
	"github.com/marcuscaisey/hackro/hack/token"
)

// checkAssignment checks an assignment with the plain = operator and returns its right hand side, wrapped in readonly
// if the readonly-ness of the value being stored has to be made explicit. Assigning to a local variable rebinds it to
// the qualifier of the right hand side.
func (c *checker) checkAssignment(assign *ast.AssignExpr) ast.Expr {
	return c.checkTarget(assign, assign.Left, assign.Right)
}

// checkTarget checks the assignment of rhs to target. pos is reported for writes through a readonly object.
func (c *checker) checkTarget(pos token.Range, target ast.Expr, rhs ast.Expr) ast.Expr {
	switch target := target.(type) {
	case *ast.VarExpr:
		c.ctx().Bind(target.Name.Lexeme, Eval(c.ctx(), rhs))
		return rhs
	case *ast.ListExpr:
		for _, elem := range target.Elems {
			rhs = c.checkTarget(elem, elem, rhs)
		}
		return rhs
	default:
		return c.checkNonlocal(pos, target, rhs)
	}
}

// checkNonlocal checks the assignment of rhs to a target which isn't a local variable, such as $x->prop[0].
func (c *checker) checkNonlocal(pos token.Range, target ast.Expr, rhs ast.Expr) ast.Expr {
	ctx := c.ctx()
	switch target := target.(type) {
	case *ast.ObjGetExpr:
		if Eval(ctx, target.Object) == Readonly {
			c.report(pos, diag.AssignmentToReadonly, "")
			return rhs
		}
		if Eval(ctx, rhs) == Readonly {
			return explicitReadonly(rhs)
		}
		return rhs
	case *ast.ArrayGetExpr:
		return c.checkNonlocal(pos, target.Array, rhs)
	default:
		switch targetQual, rhsQual := Eval(ctx, target), Eval(ctx, rhs); {
		case targetQual == Mutable && rhsQual == Readonly:
			c.report(rhs, diag.AssignReadonlyToMutableCollection, "")
		case targetQual == Readonly && rhsQual == Readonly:
			return explicitReadonly(rhs)
		}
		return rhs
	}
}

// explicitReadonly returns expr wrapped in an [*ast.ReadonlyExpr], or expr itself if it's already one.
func explicitReadonly(expr ast.Expr) ast.Expr {
	if _, ok := expr.(*ast.ReadonlyExpr); ok {
		return expr
	}
	return &ast.ReadonlyExpr{Expr: expr}
}
