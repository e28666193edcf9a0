package readonly

import (
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/marcuscaisey/hackro/hack/ast"
	"github.com/marcuscaisey/hackro/hack/diag"
	"github.com/marcuscaisey/hackro/hack/stack"
	"github.com/marcuscaisey/hackro/hack/token"
)

const returnReason = "this function does not return readonly. Please mark it to return readonly if needed."

// Check checks program for violations of the readonly rules and returns them sorted by position. Readonly values
// which flow into call arguments or the right hand side of accepted assignments are wrapped in [*ast.ReadonlyExpr]s in
// place.
//
// Top-level function and method declarations are checked independently of each other, concurrently if
// [WithConcurrency] allows it. The remaining top-level statements are checked in order in a context where the return
// value and $this are mutable.
func Check(program *ast.Program, opts ...Option) diag.Diagnostics {
	cfg := newConfig(opts)

	top := newChecker(cfg.logger)
	top.ctxs.Push(NewContext(Mutable, Mutable))
	var decls []declaration
	for _, stmt := range program.Stmts {
		switch stmt := stmt.(type) {
		case *ast.FunDecl:
			decls = append(decls, declaration{name: stmt.Name.Lexeme, fn: stmt.Function})
		case *ast.ClassDecl:
			for _, method := range stmt.Methods() {
				name := fmt.Sprintf("%s::%s", stmt.Name.Lexeme, method.Name.Lexeme)
				decls = append(decls, declaration{name: name, fn: method.Function})
			}
		default:
			top.checkStmt(stmt)
		}
	}

	results := make([]diag.Diagnostics, len(decls))
	var g errgroup.Group
	g.SetLimit(cfg.concurrency)
	for i, decl := range decls {
		g.Go(func() error {
			c := newChecker(cfg.logger.With("decl", decl.name))
			c.logger.Debug("checking declaration", "start", decl.fn.Start().String())
			c.checkFunction(decl.fn)
			results[i] = c.diags
			return nil
		})
	}
	g.Wait()

	diags := top.diags
	for _, result := range results {
		diags = append(diags, result...)
	}
	diags.Sort()
	return diags
}

// CheckFunction checks a single function in a fresh context seeded from its declaration and returns the violations
// found sorted by position.
func CheckFunction(fn *ast.Function, opts ...Option) diag.Diagnostics {
	cfg := newConfig(opts)
	c := newChecker(cfg.logger)
	c.checkFunction(fn)
	c.diags.Sort()
	return c.diags
}

type declaration struct {
	name string
	fn   *ast.Function
}

type checker struct {
	ctxs   stack.Stack[*Context]
	diags  diag.Diagnostics
	logger *slog.Logger
}

func newChecker(logger *slog.Logger) *checker {
	return &checker{logger: logger}
}

// ctx returns the context of the innermost function being checked.
func (c *checker) ctx() *Context {
	return c.ctxs.Peek()
}

func (c *checker) report(rang token.Range, kind diag.Kind, reason string) {
	c.logger.Debug("found violation", "kind", kind.String(), "start", rang.Start().String())
	c.diags.Add(rang, kind, reason)
}

// checkFunction checks fn in a new context. Functions don't see the locals of the function which encloses them.
func (c *checker) checkFunction(fn *ast.Function) {
	c.ctxs.Push(newFunctionContext(fn))
	defer c.ctxs.Pop()
	c.checkFunctionBody(fn)
}

func (c *checker) checkFunctionBody(fn *ast.Function) {
	for _, param := range fn.Params {
		param.Default = c.checkExpr(param.Default)
	}
	if fn.Body != nil {
		c.checkStmt(fn.Body)
	}
}

func (c *checker) checkStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		c.checkStmt(stmt)
	}
}

func (c *checker) checkStmt(stmt ast.Stmt) {
	switch stmt := stmt.(type) {
	case *ast.FunDecl:
		c.checkFunction(stmt.Function)
	case *ast.ClassDecl:
		c.checkStmts(stmt.Body)
	case *ast.MethodDecl:
		c.checkFunction(stmt.Function)
	case *ast.PropertyDecl, *ast.ConstDecl:
	case *ast.ExprStmt:
		stmt.Expr = c.checkExpr(stmt.Expr)
	case *ast.EchoStmt:
		c.checkExprs(stmt.Exprs)
	case *ast.Block:
		c.checkStmts(stmt.Stmts)
	case *ast.IfStmt:
		c.checkIfStmt(stmt)
	case *ast.WhileStmt:
		stmt.Condition = c.checkExpr(stmt.Condition)
		c.checkStmt(stmt.Body)
	case *ast.DoStmt:
		c.checkStmt(stmt.Body)
		stmt.Condition = c.checkExpr(stmt.Condition)
	case *ast.ForStmt:
		c.checkExprs(stmt.Initialise)
		c.checkExprs(stmt.Condition)
		c.checkExprs(stmt.Update)
		c.checkStmt(stmt.Body)
	case *ast.ForeachStmt:
		stmt.Collection = c.checkExpr(stmt.Collection)
		stmt.Key = c.checkExpr(stmt.Key)
		stmt.Value = c.checkExpr(stmt.Value)
		c.checkStmt(stmt.Body)
	case *ast.TryStmt:
		c.checkTryStmt(stmt)
	case *ast.SwitchStmt:
		c.checkSwitchStmt(stmt)
	case *ast.ReturnStmt:
		if stmt.Value != nil {
			stmt.Value = c.checkReturn(stmt.Value)
		}
	case *ast.ThrowStmt:
		stmt.Value = c.checkExpr(stmt.Value)
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.EmptyStmt, *ast.IllegalStmt:
	default:
		panic(fmt.Sprintf("unexpected ast.Stmt: %T", stmt))
	}
}

// checkBranch checks stmts starting from a copy of env and returns the environment at the end of them.
func (c *checker) checkBranch(env Env, stmts ...ast.Stmt) Env {
	ctx := c.ctx()
	ctx.Env = env.Clone()
	c.checkStmts(stmts)
	return ctx.Env
}

// checkIfStmt checks an if statement. Both branches start from the environment before the condition, so bindings made
// in the condition are discarded.
func (c *checker) checkIfStmt(stmt *ast.IfStmt) {
	before := c.ctx().Env.Clone()
	stmt.Condition = c.checkExpr(stmt.Condition)
	thenEnv := c.checkBranch(before, stmt.Then)
	var elseEnv Env
	if stmt.Else != nil {
		elseEnv = c.checkBranch(before, stmt.Else)
	} else {
		elseEnv = c.checkBranch(before)
	}
	c.ctx().Env = Merge(thenEnv, elseEnv)
}

// checkTryStmt checks a try statement. Each catch clause starts from the environment before the try body since it
// could have thrown at any point. The finally block starts from the merge of the try body and the catch clauses.
func (c *checker) checkTryStmt(stmt *ast.TryStmt) {
	ctx := c.ctx()
	before := ctx.Env.Clone()
	c.checkStmt(stmt.Body)
	result := ctx.Env
	for _, catch := range stmt.Catches {
		result = Merge(result, c.checkBranch(before, catch.Body))
	}
	ctx.Env = result
	if stmt.Finally != nil {
		c.checkStmt(stmt.Finally)
	}
}

// checkSwitchStmt checks a switch statement. Each case starts from the environment after the subject and the result
// is the merge of every case with that environment, which covers no case matching.
func (c *checker) checkSwitchStmt(stmt *ast.SwitchStmt) {
	stmt.Subject = c.checkExpr(stmt.Subject)
	ctx := c.ctx()
	before := ctx.Env
	result := before.Clone()
	for _, clause := range stmt.Cases {
		ctx.Env = before.Clone()
		clause.Value = c.checkExpr(clause.Value)
		result = Merge(result, c.checkBranch(before, clause.Body...))
	}
	ctx.Env = result
}

// checkReturn checks a returned value and returns its replacement.
func (c *checker) checkReturn(value ast.Expr) ast.Expr {
	ctx := c.ctx()
	if Eval(ctx, value) == Readonly && ctx.Return == Mutable {
		c.report(value, diag.InvalidReadonly, returnReason)
	}
	return c.checkExpr(value)
}

func (c *checker) checkExprs(exprs []ast.Expr) {
	for i, expr := range exprs {
		exprs[i] = c.checkExpr(expr)
	}
}

func (c *checker) checkFields(fields []*ast.Field) {
	for _, field := range fields {
		field.Key = c.checkExpr(field.Key)
		field.Value = c.checkExpr(field.Value)
	}
}

// checkExpr checks expr and its subexpressions and returns the expression which should replace it. The replacement is
// only ever different from expr when a readonly value has been wrapped in an [*ast.ReadonlyExpr].
func (c *checker) checkExpr(expr ast.Expr) ast.Expr {
	switch expr := expr.(type) {
	case nil:
		return nil

	case *ast.AssignExpr:
		if expr.IsPlain() {
			expr.Right = c.checkAssignment(expr)
		}
		expr.Left = c.checkExpr(expr.Left)
		expr.Right = c.checkExpr(expr.Right)

	case *ast.CallExpr:
		for i, arg := range expr.Args {
			if Eval(c.ctx(), arg) == Readonly {
				expr.Args[i] = explicitReadonly(arg)
			}
		}
		expr.Callee = c.checkExpr(expr.Callee)
		c.checkExprs(expr.Args)
		expr.Unpack = c.checkExpr(expr.Unpack)

	case *ast.FunExpr:
		c.checkFunction(expr.Function)
	case *ast.LambdaExpr:
		c.ctxs.Push(newFunctionContext(expr.Function))
		c.checkFunctionBody(expr.Function)
		if expr.Expr != nil {
			expr.Expr = c.checkReturn(expr.Expr)
		}
		c.ctxs.Pop()

	case *ast.ReadonlyExpr:
		expr.Expr = c.checkExpr(expr.Expr)
	case *ast.ObjGetExpr:
		expr.Object = c.checkExpr(expr.Object)
		expr.Member = c.checkExpr(expr.Member)
	case *ast.ArrayGetExpr:
		expr.Array = c.checkExpr(expr.Array)
		expr.Index = c.checkExpr(expr.Index)
	case *ast.CallconvExpr:
		expr.Expr = c.checkExpr(expr.Expr)
	case *ast.AsExpr:
		expr.Expr = c.checkExpr(expr.Expr)
	case *ast.IsExpr:
		expr.Expr = c.checkExpr(expr.Expr)
	case *ast.HoleExpr:
		expr.Expr = c.checkExpr(expr.Expr)
	case *ast.AwaitExpr:
		expr.Expr = c.checkExpr(expr.Expr)
	case *ast.GroupExpr:
		expr.Expr = c.checkExpr(expr.Expr)
	case *ast.CastExpr:
		expr.Expr = c.checkExpr(expr.Expr)
	case *ast.CloneExpr:
		expr.Expr = c.checkExpr(expr.Expr)
	case *ast.ETSpliceExpr:
		expr.Expr = c.checkExpr(expr.Expr)
	case *ast.ImportExpr:
		expr.Expr = c.checkExpr(expr.Expr)
	case *ast.UnaryExpr:
		expr.Expr = c.checkExpr(expr.Expr)
	case *ast.FunctionPointerExpr:
		expr.Target = c.checkExpr(expr.Target)
	case *ast.FunIdExpr:
		expr.Name = c.checkExpr(expr.Name)

	case *ast.DarrayExpr:
		c.checkFields(expr.Fields)
	case *ast.ShapeExpr:
		c.checkFields(expr.Fields)
	case *ast.KeyValCollectionExpr:
		c.checkFields(expr.Fields)
	case *ast.CollectionExpr:
		c.checkFields(expr.Fields)
	case *ast.RecordExpr:
		c.checkFields(expr.Fields)
	case *ast.VarrayExpr:
		c.checkExprs(expr.Elems)
	case *ast.ValCollectionExpr:
		c.checkExprs(expr.Elems)
	case *ast.TupleExpr:
		c.checkExprs(expr.Elems)
	case *ast.ListExpr:
		c.checkExprs(expr.Elems)
	case *ast.InterpolatedStringExpr:
		c.checkExprs(expr.Parts)
	case *ast.XmlExpr:
		c.checkExprs(expr.Children)

	case *ast.TernaryExpr:
		expr.Condition = c.checkExpr(expr.Condition)
		expr.Then = c.checkExpr(expr.Then)
		expr.Else = c.checkExpr(expr.Else)
	case *ast.PairExpr:
		expr.First = c.checkExpr(expr.First)
		expr.Second = c.checkExpr(expr.Second)
	case *ast.BinaryExpr:
		expr.Left = c.checkExpr(expr.Left)
		expr.Right = c.checkExpr(expr.Right)
	case *ast.PipeExpr:
		expr.Left = c.checkExpr(expr.Left)
		expr.Right = c.checkExpr(expr.Right)
	case *ast.NewExpr:
		expr.Class = c.checkExpr(expr.Class)
		c.checkExprs(expr.Args)
	case *ast.MethodIdExpr:
		expr.Object = c.checkExpr(expr.Object)
		expr.Method = c.checkExpr(expr.Method)
	case *ast.SmethodIdExpr:
		expr.Class = c.checkExpr(expr.Class)
		expr.Method = c.checkExpr(expr.Method)
	case *ast.MethodCallerExpr:
		expr.Class = c.checkExpr(expr.Class)
		expr.Method = c.checkExpr(expr.Method)
	case *ast.YieldExpr:
		expr.Key = c.checkExpr(expr.Key)
		expr.Value = c.checkExpr(expr.Value)
	case *ast.ExpressionTreeExpr:
		expr.Body = c.checkExpr(expr.Body)
	case *ast.ClassGetExpr:
		expr.Class = c.checkExpr(expr.Class)
	case *ast.ClassConstExpr:
		expr.Class = c.checkExpr(expr.Class)

	case *ast.VarExpr, *ast.ThisExpr, *ast.LiteralExpr, *ast.PrefixedStringExpr, *ast.OmittedExpr, *ast.IdentExpr,
		*ast.DollarDollarExpr, *ast.EnumClassLabelExpr, *ast.PlaceholderExpr:
	default:
		panic(fmt.Sprintf("unexpected ast.Expr: %T", expr))
	}
	return expr
}
