// Package ast defines the types which are used to represent the abstract syntax tree of Hack programs.
package ast

import (
	"github.com/marcuscaisey/hackro/hack/token"
)

// Node is the interface which all AST nodes implement.
//
//gosumtype:decl Node
type Node interface {
	token.Range
	isNode()
}

type node struct{}

func (node) isNode() {}

// Program is the root node of the AST.
type Program struct {
	File  *token.File
	Stmts []Stmt `print:"unnamed"`
	node
}

func (p *Program) Start() token.Position {
	if len(p.Stmts) == 0 {
		return token.Position{File: p.File, Line: 1}
	}
	return p.Stmts[0].Start()
}

func (p *Program) End() token.Position {
	if len(p.Stmts) == 0 {
		return token.Position{File: p.File, Line: 1}
	}
	return p.Stmts[len(p.Stmts)-1].End()
}

// Stmt is the interface which all statement nodes implement.
//
//gosumtype:decl Stmt
type Stmt interface {
	Node
	isStmt()
}

type stmt struct {
	node
}

func (stmt) isStmt() {}

// TypeHint is a type annotation, such as ?vec<int>. Types are not interpreted, only kept for printing.
type TypeHint struct {
	StartPos token.Position
	EndPos   token.Position
	Text     string
	node
}

func (t *TypeHint) Start() token.Position { return t.StartPos }
func (t *TypeHint) End() token.Position   { return t.EndPos }

// Function is a function's signature and body. It's shared by function declarations, method declarations and
// anonymous functions.
type Function struct {
	LeftParen      token.Token
	Params         []*ParamDecl `print:"named"`
	RightParen     token.Token
	ReadonlyThis   token.Token `print:"named"` // readonly keyword before function, zero if absent
	ReadonlyReturn token.Token `print:"named"` // readonly keyword before the return type, zero if absent
	ReturnType     *TypeHint   `print:"named"`
	Body           *Block      `print:"named"` // nil for abstract methods and expression-bodied lambdas
	node
}

func (f *Function) Start() token.Position {
	if !f.LeftParen.IsZero() {
		return f.LeftParen.StartPos
	}
	return f.Params[0].Start()
}

func (f *Function) End() token.Position {
	switch {
	case f.Body != nil:
		return f.Body.End()
	case f.ReturnType != nil:
		return f.ReturnType.End()
	case !f.RightParen.IsZero():
		return f.RightParen.EndPos
	default:
		return f.Params[len(f.Params)-1].End()
	}
}

// ReturnsReadonly reports whether the function is declared to return a readonly value.
func (f *Function) ReturnsReadonly() bool {
	return !f.ReadonlyReturn.IsZero()
}

// HasReadonlyThis reports whether $this is readonly inside the function.
func (f *Function) HasReadonlyThis() bool {
	return !f.ReadonlyThis.IsZero()
}

// ParamDecl is a parameter declaration, such as readonly Foo $x = null.
type ParamDecl struct {
	Inout    token.Token `print:"named"`
	Readonly token.Token `print:"named"`
	Type     *TypeHint   `print:"named"`
	Variadic token.Token
	Name     token.Token `print:"named"`
	Default  Expr        `print:"named"`
	node
}

func (p *ParamDecl) Start() token.Position {
	for _, tok := range []token.Token{p.Inout, p.Readonly} {
		if !tok.IsZero() {
			return tok.StartPos
		}
	}
	if p.Type != nil {
		return p.Type.Start()
	}
	if !p.Variadic.IsZero() {
		return p.Variadic.StartPos
	}
	return p.Name.StartPos
}

func (p *ParamDecl) End() token.Position {
	if p.Default != nil {
		return p.Default.End()
	}
	return p.Name.EndPos
}

// IsReadonly reports whether the parameter is declared readonly.
func (p *ParamDecl) IsReadonly() bool {
	return !p.Readonly.IsZero()
}

// FunDecl is a function declaration, such as
//
//	function add(int $x, int $y): int {
//	  return $x + $y;
//	}
type FunDecl struct {
	Async    token.Token
	Fun      token.Token
	Name     token.Token `print:"named"`
	Function *Function   `print:"named"`
	stmt
}

func (d *FunDecl) Start() token.Position {
	if !d.Async.IsZero() {
		return d.Async.StartPos
	}
	return d.Fun.StartPos
}
func (d *FunDecl) End() token.Position { return d.Function.End() }

// ClassDecl is a class, interface or trait declaration, such as
//
//	class Foo extends Bar {
//	  public function baz(): void {}
//	}
type ClassDecl struct {
	Modifiers  []token.Token
	Keyword    token.Token
	Name       token.Token `print:"named"`
	Extends    []*TypeHint `print:"named"`
	Implements []*TypeHint `print:"named"`
	Body       []Stmt      `print:"named"`
	RightBrace token.Token
	stmt
}

func (c *ClassDecl) Start() token.Position {
	if len(c.Modifiers) > 0 {
		return c.Modifiers[0].StartPos
	}
	return c.Keyword.StartPos
}
func (c *ClassDecl) End() token.Position { return c.RightBrace.EndPos }

// Methods returns the methods of the class.
func (c *ClassDecl) Methods() []*MethodDecl {
	methods := make([]*MethodDecl, 0, len(c.Body))
	for _, stmt := range c.Body {
		if method, ok := stmt.(*MethodDecl); ok {
			methods = append(methods, method)
		}
	}
	return methods
}

// MethodDecl is a method declaration, such as
//
//	public readonly function bar(): int {
//	  return $this->x;
//	}
type MethodDecl struct {
	Modifiers []token.Token `print:"named"`
	Fun       token.Token
	Name      token.Token `print:"named"`
	Function  *Function   `print:"named"`
	Semicolon token.Token // only for methods without a body
	stmt
}

func (m *MethodDecl) Start() token.Position {
	if len(m.Modifiers) > 0 {
		return m.Modifiers[0].StartPos
	}
	if m.Function.HasReadonlyThis() {
		return m.Function.ReadonlyThis.StartPos
	}
	return m.Fun.StartPos
}

func (m *MethodDecl) End() token.Position {
	if !m.Semicolon.IsZero() {
		return m.Semicolon.EndPos
	}
	return m.Function.End()
}

// HasModifier reports whether the declaration has a modifier of the target type.
func (m *MethodDecl) HasModifier(target token.Type) bool {
	for _, modifier := range m.Modifiers {
		if modifier.Type == target {
			return true
		}
	}
	return false
}

// PropertyDecl is a property declaration, such as public int $x = 1;
type PropertyDecl struct {
	Modifiers   []token.Token
	Type        *TypeHint   `print:"named"`
	Name        token.Token `print:"named"`
	Initialiser Expr        `print:"named"`
	Semicolon   token.Token
	stmt
}

func (p *PropertyDecl) Start() token.Position {
	if len(p.Modifiers) > 0 {
		return p.Modifiers[0].StartPos
	}
	if p.Type != nil {
		return p.Type.Start()
	}
	return p.Name.StartPos
}
func (p *PropertyDecl) End() token.Position { return p.Semicolon.EndPos }

// ConstDecl is a constant declaration, such as const int X = 1;
type ConstDecl struct {
	Modifiers []token.Token
	Const     token.Token
	Type      *TypeHint   `print:"named"`
	Name      token.Token `print:"named"`
	Value     Expr        `print:"named"`
	Semicolon token.Token
	stmt
}

func (c *ConstDecl) Start() token.Position {
	if len(c.Modifiers) > 0 {
		return c.Modifiers[0].StartPos
	}
	return c.Const.StartPos
}
func (c *ConstDecl) End() token.Position { return c.Semicolon.EndPos }

// ExprStmt is an expression statement, such as a function call.
type ExprStmt struct {
	Expr      Expr `print:"unnamed"`
	Semicolon token.Token
	stmt
}

func (s *ExprStmt) Start() token.Position { return s.Expr.Start() }
func (s *ExprStmt) End() token.Position   { return s.Semicolon.EndPos }

// EchoStmt is an echo statement, such as echo $a, "\n";
type EchoStmt struct {
	Echo      token.Token
	Exprs     []Expr `print:"unnamed"`
	Semicolon token.Token
	stmt
}

func (e *EchoStmt) Start() token.Position { return e.Echo.StartPos }
func (e *EchoStmt) End() token.Position   { return e.Semicolon.EndPos }

// Block is a block statement, such as
//
//	{
//	  $a = 123;
//	  $b = 456;
//	}
type Block struct {
	LeftBrace  token.Token
	Stmts      []Stmt `print:"unnamed"`
	RightBrace token.Token
	stmt
}

func (b *Block) Start() token.Position { return b.LeftBrace.StartPos }
func (b *Block) End() token.Position   { return b.RightBrace.EndPos }

// IfStmt is an if statement, such as
//
//	if ($a === 123) {
//	  echo "abc";
//	} elseif ($a === 456) {
//	  echo "def";
//	} else {
//	  echo "ghi";
//	}
//
// An elseif clause is represented as an IfStmt in the Else field whose If token is an elseif keyword.
type IfStmt struct {
	If        token.Token
	Condition Expr `print:"named"`
	Then      Stmt `print:"named"`
	Else      Stmt `print:"named"`
	stmt
}

func (i *IfStmt) Start() token.Position { return i.If.StartPos }
func (i *IfStmt) End() token.Position {
	if i.Else != nil {
		return i.Else.End()
	}
	return i.Then.End()
}

// WhileStmt is a while statement, such as
//
//	while ($a < 10) {
//	  $a++;
//	}
type WhileStmt struct {
	While     token.Token
	Condition Expr `print:"named"`
	Body      Stmt `print:"named"`
	stmt
}

func (w *WhileStmt) Start() token.Position { return w.While.StartPos }
func (w *WhileStmt) End() token.Position   { return w.Body.End() }

// DoStmt is a do-while statement, such as
//
//	do {
//	  $a++;
//	} while ($a < 10);
type DoStmt struct {
	Do        token.Token
	Body      Stmt `print:"named"`
	Condition Expr `print:"named"`
	Semicolon token.Token
	stmt
}

func (d *DoStmt) Start() token.Position { return d.Do.StartPos }
func (d *DoStmt) End() token.Position   { return d.Semicolon.EndPos }

// ForStmt is a for statement, such as
//
//	for ($i = 0; $i < 10; $i++) {
//	  echo $i;
//	}
type ForStmt struct {
	For        token.Token
	Initialise []Expr `print:"named"`
	Condition  []Expr `print:"named"`
	Update     []Expr `print:"named"`
	Body       Stmt   `print:"named"`
	stmt
}

func (f *ForStmt) Start() token.Position { return f.For.StartPos }
func (f *ForStmt) End() token.Position   { return f.Body.End() }

// ForeachStmt is a foreach statement, such as
//
//	foreach ($xs as $k => $v) {
//	  echo $v;
//	}
type ForeachStmt struct {
	Foreach    token.Token
	Collection Expr `print:"named"`
	Key        Expr `print:"named"`
	Value      Expr `print:"named"`
	Body       Stmt `print:"named"`
	stmt
}

func (f *ForeachStmt) Start() token.Position { return f.Foreach.StartPos }
func (f *ForeachStmt) End() token.Position   { return f.Body.End() }

// TryStmt is a try statement, such as
//
//	try {
//	  foo();
//	} catch (Exception $e) {
//	  bar();
//	} finally {
//	  baz();
//	}
type TryStmt struct {
	Try     token.Token
	Body    *Block         `print:"named"`
	Catches []*CatchClause `print:"named"`
	Finally *Block         `print:"named"`
	stmt
}

func (t *TryStmt) Start() token.Position { return t.Try.StartPos }
func (t *TryStmt) End() token.Position {
	if t.Finally != nil {
		return t.Finally.End()
	}
	if len(t.Catches) > 0 {
		return t.Catches[len(t.Catches)-1].End()
	}
	return t.Body.End()
}

// CatchClause is a single catch clause of a try statement.
type CatchClause struct {
	Catch token.Token
	Type  *TypeHint   `print:"named"`
	Var   token.Token `print:"named"`
	Body  *Block      `print:"named"`
	node
}

func (c *CatchClause) Start() token.Position { return c.Catch.StartPos }
func (c *CatchClause) End() token.Position   { return c.Body.End() }

// SwitchStmt is a switch statement, such as
//
//	switch ($a) {
//	  case 1:
//	    echo "one";
//	    break;
//	  default:
//	    echo "other";
//	}
type SwitchStmt struct {
	Switch     token.Token
	Subject    Expr          `print:"named"`
	Cases      []*CaseClause `print:"named"`
	RightBrace token.Token
	stmt
}

func (s *SwitchStmt) Start() token.Position { return s.Switch.StartPos }
func (s *SwitchStmt) End() token.Position   { return s.RightBrace.EndPos }

// CaseClause is a case or default clause of a switch statement. Value is nil for a default clause.
type CaseClause struct {
	Case  token.Token
	Value Expr `print:"named"`
	Colon token.Token
	Body  []Stmt `print:"named"`
	node
}

func (c *CaseClause) Start() token.Position { return c.Case.StartPos }
func (c *CaseClause) End() token.Position {
	if len(c.Body) > 0 {
		return c.Body[len(c.Body)-1].End()
	}
	return c.Colon.EndPos
}

// IsDefault reports whether the clause is a default clause.
func (c *CaseClause) IsDefault() bool {
	return c.Value == nil
}

// BreakStmt is a break statement.
type BreakStmt struct {
	Break     token.Token
	Semicolon token.Token
	stmt
}

func (b *BreakStmt) Start() token.Position { return b.Break.StartPos }
func (b *BreakStmt) End() token.Position   { return b.Semicolon.EndPos }

// ContinueStmt is a continue statement.
type ContinueStmt struct {
	Continue  token.Token
	Semicolon token.Token
	stmt
}

func (c *ContinueStmt) Start() token.Position { return c.Continue.StartPos }
func (c *ContinueStmt) End() token.Position   { return c.Semicolon.EndPos }

// ReturnStmt is a return statement.
type ReturnStmt struct {
	Return    token.Token
	Value     Expr `print:"unnamed"`
	Semicolon token.Token
	stmt
}

func (r *ReturnStmt) Start() token.Position { return r.Return.StartPos }
func (r *ReturnStmt) End() token.Position   { return r.Semicolon.EndPos }

// ThrowStmt is a throw statement.
type ThrowStmt struct {
	Throw     token.Token
	Value     Expr `print:"unnamed"`
	Semicolon token.Token
	stmt
}

func (t *ThrowStmt) Start() token.Position { return t.Throw.StartPos }
func (t *ThrowStmt) End() token.Position   { return t.Semicolon.EndPos }

// EmptyStmt is a lone semicolon.
type EmptyStmt struct {
	Semicolon token.Token
	stmt
}

func (e *EmptyStmt) Start() token.Position { return e.Semicolon.StartPos }
func (e *EmptyStmt) End() token.Position   { return e.Semicolon.EndPos }

// IllegalStmt is an illegal statement, used as a placeholder when parsing fails.
type IllegalStmt struct {
	From, To token.Token
	stmt
}

func (i *IllegalStmt) Start() token.Position { return i.From.StartPos }
func (i *IllegalStmt) End() token.Position   { return i.To.EndPos }
