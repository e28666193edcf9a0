package ast

import (
	"github.com/marcuscaisey/hackro/hack/token"
)

// Expr is the interface which all expression nodes implement.
//
//gosumtype:decl Expr
type Expr interface {
	Node
	isExpr()
}

type expr struct {
	node
}

func (expr) isExpr() {}

// Field is a key-value pair or a lone value inside a collection literal, such as 'a' => $b. Key is nil for a value
// without a key.
type Field struct {
	Key   Expr `print:"named"`
	Value Expr `print:"named"`
	node
}

func (f *Field) Start() token.Position {
	if f.Key != nil {
		return f.Key.Start()
	}
	return f.Value.Start()
}
func (f *Field) End() token.Position { return f.Value.End() }

// ReadonlyExpr marks an expression as a readonly reference, such as readonly $x->foo. The checker also inserts
// ReadonlyExprs without a Readonly token to make inferred readonly-ness explicit.
type ReadonlyExpr struct {
	Readonly token.Token
	Expr     Expr `print:"unnamed"`
	expr
}

func (r *ReadonlyExpr) Start() token.Position {
	if r.Readonly.IsZero() {
		return r.Expr.Start()
	}
	return r.Readonly.StartPos
}
func (r *ReadonlyExpr) End() token.Position { return r.Expr.End() }

// VarExpr is a local variable, such as $x or $this.
type VarExpr struct {
	Name token.Token
	expr
}

func (v *VarExpr) Start() token.Position { return v.Name.StartPos }
func (v *VarExpr) End() token.Position   { return v.Name.EndPos }

// IsThis reports whether the variable is $this.
func (v *VarExpr) IsThis() bool {
	return v.Name.Lexeme == token.IdentThis
}

// ThisExpr is a reference to the current instance which has already been resolved as such.
// The parser produces a VarExpr for $this.
type ThisExpr struct {
	This token.Token
	expr
}

func (t *ThisExpr) Start() token.Position { return t.This.StartPos }
func (t *ThisExpr) End() token.Position   { return t.This.EndPos }

// ObjGetExpr is a property access, such as $x->y or $x?->y. Member is an IdentExpr for a named property.
type ObjGetExpr struct {
	Object Expr        `print:"named"`
	Arrow  token.Token `print:"named"`
	Member Expr        `print:"named"`
	expr
}

func (o *ObjGetExpr) Start() token.Position { return o.Object.Start() }
func (o *ObjGetExpr) End() token.Position   { return o.Member.End() }

// ArrayGetExpr is an array element access, such as $x[0] or $x[]. Index is nil for an append.
type ArrayGetExpr struct {
	Array      Expr `print:"named"`
	Index      Expr `print:"named"`
	RightBrack token.Token
	expr
}

func (a *ArrayGetExpr) Start() token.Position { return a.Array.Start() }
func (a *ArrayGetExpr) End() token.Position   { return a.RightBrack.EndPos }

// CallconvExpr is an argument passed with a calling convention, such as inout $x.
type CallconvExpr struct {
	Inout token.Token
	Expr  Expr `print:"unnamed"`
	expr
}

func (c *CallconvExpr) Start() token.Position { return c.Inout.StartPos }
func (c *CallconvExpr) End() token.Position   { return c.Expr.End() }

// AsExpr is a type assertion, such as $x as Foo or $x ?as Foo.
type AsExpr struct {
	Expr     Expr `print:"named"`
	Nullable bool `print:"named"`
	As       token.Token
	Type     *TypeHint `print:"named"`
	expr
}

func (a *AsExpr) Start() token.Position { return a.Expr.Start() }
func (a *AsExpr) End() token.Position   { return a.Type.End() }

// IsExpr is a type test, such as $x is Foo.
type IsExpr struct {
	Expr Expr `print:"named"`
	Is   token.Token
	Type *TypeHint `print:"named"`
	expr
}

func (i *IsExpr) Start() token.Position { return i.Expr.Start() }
func (i *IsExpr) End() token.Position   { return i.Type.End() }

// HoleExpr is a typed hole around an expression, inserted by tools which know the expression's type.
type HoleExpr struct {
	Expr Expr `print:"unnamed"`
	expr
}

func (h *HoleExpr) Start() token.Position { return h.Expr.Start() }
func (h *HoleExpr) End() token.Position   { return h.Expr.End() }

// AwaitExpr is an await expression, such as await $f.
type AwaitExpr struct {
	Await token.Token
	Expr  Expr `print:"unnamed"`
	expr
}

func (a *AwaitExpr) Start() token.Position { return a.Await.StartPos }
func (a *AwaitExpr) End() token.Position   { return a.Expr.End() }

// GroupExpr is a parenthesised expression, such as ($a + $b).
type GroupExpr struct {
	LeftParen  token.Token
	Expr       Expr `print:"unnamed"`
	RightParen token.Token
	expr
}

func (g *GroupExpr) Start() token.Position { return g.LeftParen.StartPos }
func (g *GroupExpr) End() token.Position   { return g.RightParen.EndPos }

// DarrayExpr is a darray literal, such as darray['a' => 1].
type DarrayExpr struct {
	Darray     token.Token
	Fields     []*Field `print:"unnamed"`
	RightBrack token.Token
	expr
}

func (d *DarrayExpr) Start() token.Position { return d.Darray.StartPos }
func (d *DarrayExpr) End() token.Position   { return d.RightBrack.EndPos }

// VarrayExpr is a varray literal, such as varray[1, 2].
type VarrayExpr struct {
	Varray     token.Token
	Elems      []Expr `print:"unnamed"`
	RightBrack token.Token
	expr
}

func (v *VarrayExpr) Start() token.Position { return v.Varray.StartPos }
func (v *VarrayExpr) End() token.Position   { return v.RightBrack.EndPos }

// ShapeExpr is a shape literal, such as shape('a' => 1).
type ShapeExpr struct {
	Shape      token.Token
	Fields     []*Field `print:"unnamed"`
	RightParen token.Token
	expr
}

func (s *ShapeExpr) Start() token.Position { return s.Shape.StartPos }
func (s *ShapeExpr) End() token.Position   { return s.RightParen.EndPos }

// ValCollectionExpr is a collection of values, such as vec[1, 2], keyset['a'] or Vector {1, 2}.
type ValCollectionExpr struct {
	Kind  token.Token `print:"named"`
	Elems []Expr      `print:"named"`
	Close token.Token
	expr
}

func (v *ValCollectionExpr) Start() token.Position { return v.Kind.StartPos }
func (v *ValCollectionExpr) End() token.Position   { return v.Close.EndPos }

// KeyValCollectionExpr is a collection of key-value pairs, such as dict['a' => 1] or Map {'a' => 1}.
type KeyValCollectionExpr struct {
	Kind   token.Token `print:"named"`
	Fields []*Field    `print:"named"`
	Close  token.Token
	expr
}

func (k *KeyValCollectionExpr) Start() token.Position { return k.Kind.StartPos }
func (k *KeyValCollectionExpr) End() token.Position   { return k.Close.EndPos }

// CollectionExpr is a collection literal of a class which isn't a known collection, such as Foo {1, 'a' => 2}.
type CollectionExpr struct {
	Name       token.Token `print:"named"`
	Fields     []*Field    `print:"named"`
	RightBrace token.Token
	expr
}

func (c *CollectionExpr) Start() token.Position { return c.Name.StartPos }
func (c *CollectionExpr) End() token.Position   { return c.RightBrace.EndPos }

// RecordExpr is a record literal, such as Foo['a' => 1].
type RecordExpr struct {
	Name       token.Token `print:"named"`
	Fields     []*Field    `print:"named"`
	RightBrack token.Token
	expr
}

func (r *RecordExpr) Start() token.Position { return r.Name.StartPos }
func (r *RecordExpr) End() token.Position   { return r.RightBrack.EndPos }

// TupleExpr is a tuple literal, such as tuple(1, 'a').
type TupleExpr struct {
	Tuple      token.Token
	Elems      []Expr `print:"unnamed"`
	RightParen token.Token
	expr
}

func (t *TupleExpr) Start() token.Position { return t.Tuple.StartPos }
func (t *TupleExpr) End() token.Position   { return t.RightParen.EndPos }

// ListExpr is a destructuring assignment target, such as list($a, , $b).
type ListExpr struct {
	List       token.Token
	Elems      []Expr `print:"unnamed"`
	RightParen token.Token
	expr
}

func (l *ListExpr) Start() token.Position { return l.List.StartPos }
func (l *ListExpr) End() token.Position   { return l.RightParen.EndPos }

// TernaryExpr is a conditional expression, such as $a ? $b : $c. Then is nil for the $a ?: $c shorthand.
type TernaryExpr struct {
	Condition Expr `print:"named"`
	Then      Expr `print:"named"`
	Else      Expr `print:"named"`
	expr
}

func (t *TernaryExpr) Start() token.Position { return t.Condition.Start() }
func (t *TernaryExpr) End() token.Position   { return t.Else.End() }

// PairExpr is a pair literal, such as Pair {1, 'a'}.
type PairExpr struct {
	Pair       token.Token
	First      Expr `print:"named"`
	Second     Expr `print:"named"`
	RightBrace token.Token
	expr
}

func (p *PairExpr) Start() token.Position { return p.Pair.StartPos }
func (p *PairExpr) End() token.Position   { return p.RightBrace.EndPos }

// LiteralExpr is a primitive literal, such as 123, 1.5, 'abc', true or null.
type LiteralExpr struct {
	Value token.Token
	expr
}

func (l *LiteralExpr) Start() token.Position { return l.Value.StartPos }
func (l *LiteralExpr) End() token.Position   { return l.Value.EndPos }

// InterpolatedStringExpr is a double quoted string containing variables, such as "hello $name". Parts holds the
// interpolated variables.
type InterpolatedStringExpr struct {
	Value token.Token `print:"named"`
	Parts []Expr      `print:"named"`
	expr
}

func (i *InterpolatedStringExpr) Start() token.Position { return i.Value.StartPos }
func (i *InterpolatedStringExpr) End() token.Position   { return i.Value.EndPos }

// PrefixedStringExpr is a string with a prefix, such as re"[a-z]+".
type PrefixedStringExpr struct {
	Value token.Token
	expr
}

func (p *PrefixedStringExpr) Start() token.Position { return p.Value.StartPos }
func (p *PrefixedStringExpr) End() token.Position   { return p.Value.EndPos }

// OmittedExpr is a skipped slot in a list() target, such as the second element of list($a, , $b).
type OmittedExpr struct {
	Pos token.Position
	expr
}

func (o *OmittedExpr) Start() token.Position { return o.Pos }
func (o *OmittedExpr) End() token.Position   { return o.Pos }

// IdentExpr is a bare name, such as a constant FOO, a function name foo or a class name Foo.
type IdentExpr struct {
	Name token.Token
	expr
}

func (i *IdentExpr) Start() token.Position { return i.Name.StartPos }
func (i *IdentExpr) End() token.Position   { return i.Name.EndPos }

// FunExpr is an anonymous function, such as function($x) use($y) { return $x + $y; }.
type FunExpr struct {
	Async    token.Token
	Fun      token.Token
	Function *Function     `print:"named"`
	Use      []token.Token `print:"named"`
	expr
}

func (f *FunExpr) Start() token.Position {
	if !f.Async.IsZero() {
		return f.Async.StartPos
	}
	return f.Fun.StartPos
}
func (f *FunExpr) End() token.Position { return f.Function.End() }

// LambdaExpr is a lambda, such as ($x) ==> $x + 1 or $x ==> { return $x; }. Exactly one of Function.Body and Expr
// is set.
type LambdaExpr struct {
	Async    token.Token
	Function *Function `print:"named"`
	Arrow    token.Token
	Expr     Expr `print:"named"`
	expr
}

func (l *LambdaExpr) Start() token.Position {
	if !l.Async.IsZero() {
		return l.Async.StartPos
	}
	return l.Function.Start()
}

func (l *LambdaExpr) End() token.Position {
	if l.Expr != nil {
		return l.Expr.End()
	}
	return l.Function.End()
}

// XmlExpr is an XHP literal, such as <p>{$x}</p>.
type XmlExpr struct {
	StartPos token.Position
	EndPos   token.Position
	Name     string `print:"named"`
	Children []Expr `print:"named"`
	expr
}

func (x *XmlExpr) Start() token.Position { return x.StartPos }
func (x *XmlExpr) End() token.Position   { return x.EndPos }

// CastExpr is a primitive cast, such as (int)$x.
type CastExpr struct {
	LeftParen  token.Token
	Type       token.Token `print:"named"`
	RightParen token.Token
	Expr       Expr `print:"named"`
	expr
}

func (c *CastExpr) Start() token.Position { return c.LeftParen.StartPos }
func (c *CastExpr) End() token.Position   { return c.Expr.End() }

// NewExpr is an object instantiation, such as new Foo(1).
type NewExpr struct {
	New        token.Token
	Class      Expr   `print:"named"`
	Args       []Expr `print:"named"`
	RightParen token.Token
	expr
}

func (n *NewExpr) Start() token.Position { return n.New.StartPos }
func (n *NewExpr) End() token.Position   { return n.RightParen.EndPos }

// UnaryExpr is a unary operator expression, such as !$a or $a++.
type UnaryExpr struct {
	Op      token.Token `print:"named"`
	Expr    Expr        `print:"named"`
	Postfix bool
	expr
}

func (u *UnaryExpr) Start() token.Position {
	if u.Postfix {
		return u.Expr.Start()
	}
	return u.Op.StartPos
}

func (u *UnaryExpr) End() token.Position {
	if u.Postfix {
		return u.Op.EndPos
	}
	return u.Expr.End()
}

// BinaryExpr is a binary operator expression, such as $a + $b.
type BinaryExpr struct {
	Left  Expr        `print:"named"`
	Op    token.Token `print:"named"`
	Right Expr        `print:"named"`
	expr
}

func (b *BinaryExpr) Start() token.Position { return b.Left.Start() }
func (b *BinaryExpr) End() token.Position   { return b.Right.End() }

// AssignExpr is an assignment, such as $a = 1, $a->b = 2 or $a += 3.
type AssignExpr struct {
	Left  Expr        `print:"named"`
	Op    token.Token `print:"named"`
	Right Expr        `print:"named"`
	expr
}

func (a *AssignExpr) Start() token.Position { return a.Left.Start() }
func (a *AssignExpr) End() token.Position   { return a.Right.End() }

// IsPlain reports whether the assignment uses = rather than a compound operator such as +=.
func (a *AssignExpr) IsPlain() bool {
	return a.Op.Type == token.Equal
}

// CloneExpr is a clone expression, such as clone $x.
type CloneExpr struct {
	Clone token.Token
	Expr  Expr `print:"unnamed"`
	expr
}

func (c *CloneExpr) Start() token.Position { return c.Clone.StartPos }
func (c *CloneExpr) End() token.Position   { return c.Expr.End() }

// FunctionPointerExpr is a function or static method pointer, such as foo<> or Foo::bar<>.
type FunctionPointerExpr struct {
	Target  Expr `print:"unnamed"`
	Greater token.Token
	expr
}

func (f *FunctionPointerExpr) Start() token.Position { return f.Target.Start() }
func (f *FunctionPointerExpr) End() token.Position   { return f.Greater.EndPos }

// FunIdExpr is a function reference, such as fun('foo').
type FunIdExpr struct {
	Fun        token.Token
	Name       Expr `print:"unnamed"`
	RightParen token.Token
	expr
}

func (f *FunIdExpr) Start() token.Position { return f.Fun.StartPos }
func (f *FunIdExpr) End() token.Position   { return f.RightParen.EndPos }

// MethodIdExpr is an instance method reference, such as inst_meth($x, 'foo').
type MethodIdExpr struct {
	InstMeth   token.Token
	Object     Expr `print:"named"`
	Method     Expr `print:"named"`
	RightParen token.Token
	expr
}

func (m *MethodIdExpr) Start() token.Position { return m.InstMeth.StartPos }
func (m *MethodIdExpr) End() token.Position   { return m.RightParen.EndPos }

// SmethodIdExpr is a static method reference, such as class_meth(Foo::class, 'bar').
type SmethodIdExpr struct {
	ClassMeth  token.Token
	Class      Expr `print:"named"`
	Method     Expr `print:"named"`
	RightParen token.Token
	expr
}

func (s *SmethodIdExpr) Start() token.Position { return s.ClassMeth.StartPos }
func (s *SmethodIdExpr) End() token.Position   { return s.RightParen.EndPos }

// MethodCallerExpr is a method caller, such as meth_caller(Foo::class, 'bar').
type MethodCallerExpr struct {
	MethCaller token.Token
	Class      Expr `print:"named"`
	Method     Expr `print:"named"`
	RightParen token.Token
	expr
}

func (m *MethodCallerExpr) Start() token.Position { return m.MethCaller.StartPos }
func (m *MethodCallerExpr) End() token.Position   { return m.RightParen.EndPos }

// YieldExpr is a yield expression, such as yield $v or yield $k => $v.
type YieldExpr struct {
	Yield token.Token
	Key   Expr `print:"named"`
	Value Expr `print:"named"`
	expr
}

func (y *YieldExpr) Start() token.Position { return y.Yield.StartPos }
func (y *YieldExpr) End() token.Position {
	if y.Value == nil {
		return y.Yield.EndPos
	}
	return y.Value.End()
}

// PipeExpr is a pipe expression, such as $x |> foo($$).
type PipeExpr struct {
	Left  Expr `print:"named"`
	Pipe  token.Token
	Right Expr `print:"named"`
	expr
}

func (p *PipeExpr) Start() token.Position { return p.Left.Start() }
func (p *PipeExpr) End() token.Position   { return p.Right.End() }

// DollarDollarExpr is the $$ variable on the right hand side of a pipe expression.
type DollarDollarExpr struct {
	DollarDollar token.Token
	expr
}

func (d *DollarDollarExpr) Start() token.Position { return d.DollarDollar.StartPos }
func (d *DollarDollarExpr) End() token.Position   { return d.DollarDollar.EndPos }

// ExpressionTreeExpr is an expression tree literal, such as Foo`1 + 2`.
type ExpressionTreeExpr struct {
	Visitor  token.Token `print:"named"`
	Body     Expr        `print:"named"`
	Backtick token.Token
	expr
}

func (e *ExpressionTreeExpr) Start() token.Position { return e.Visitor.StartPos }
func (e *ExpressionTreeExpr) End() token.Position   { return e.Backtick.EndPos }

// ETSpliceExpr is a splice inside an expression tree, such as ${$x}.
type ETSpliceExpr struct {
	Dollar     token.Token
	Expr       Expr `print:"unnamed"`
	RightBrace token.Token
	expr
}

func (e *ETSpliceExpr) Start() token.Position { return e.Dollar.StartPos }
func (e *ETSpliceExpr) End() token.Position   { return e.RightBrace.EndPos }

// EnumClassLabelExpr is an enum class label, such as E#A or #A. Class is zero for the short form.
type EnumClassLabelExpr struct {
	Class token.Token `print:"named"`
	Hash  token.Token
	Label token.Token `print:"named"`
	expr
}

func (e *EnumClassLabelExpr) Start() token.Position {
	if e.Class.IsZero() {
		return e.Hash.StartPos
	}
	return e.Class.StartPos
}
func (e *EnumClassLabelExpr) End() token.Position { return e.Label.EndPos }

// ImportExpr is a require or include expression, such as require_once 'foo.php'.
type ImportExpr struct {
	Kind token.Token `print:"named"`
	Expr Expr        `print:"named"`
	expr
}

func (i *ImportExpr) Start() token.Position { return i.Kind.StartPos }
func (i *ImportExpr) End() token.Position   { return i.Expr.End() }

// PlaceholderExpr is the $_ placeholder variable.
type PlaceholderExpr struct {
	Placeholder token.Token
	expr
}

func (p *PlaceholderExpr) Start() token.Position { return p.Placeholder.StartPos }
func (p *PlaceholderExpr) End() token.Position   { return p.Placeholder.EndPos }

// CallExpr is a call expression, such as foo($x, 1), $x->foo() or Foo::bar(...$args).
type CallExpr struct {
	Callee     Expr   `print:"named"`
	Args       []Expr `print:"named"`
	Unpack     Expr   `print:"named"`
	RightParen token.Token
	expr
}

func (c *CallExpr) Start() token.Position { return c.Callee.Start() }
func (c *CallExpr) End() token.Position   { return c.RightParen.EndPos }

// ClassGetExpr is a static property access, such as Foo::$bar.
type ClassGetExpr struct {
	Class      Expr `print:"named"`
	ColonColon token.Token
	Prop       token.Token `print:"named"`
	expr
}

func (c *ClassGetExpr) Start() token.Position { return c.Class.Start() }
func (c *ClassGetExpr) End() token.Position   { return c.Prop.EndPos }

// ClassConstExpr is a class constant access, such as Foo::BAR or Foo::class. It's also the callee of a static method
// call.
type ClassConstExpr struct {
	Class      Expr `print:"named"`
	ColonColon token.Token
	Name       token.Token `print:"named"`
	expr
}

func (c *ClassConstExpr) Start() token.Position { return c.Class.Start() }
func (c *ClassConstExpr) End() token.Position   { return c.Name.EndPos }
