package readonly

import (
	"maps"

	"github.com/marcuscaisey/hackro/hack/ast"
)

// Env maps the names of local variables to their qualifiers. A name which isn't bound is Mutable.
type Env map[string]Qualifier

// Clone returns a copy of e which can be modified independently.
func (e Env) Clone() Env {
	clone := make(Env, len(e))
	maps.Copy(clone, e)
	return clone
}

// Merge joins the environments at the end of two branches of control flow. A name is Readonly in the result if it's
// Readonly in either environment. Otherwise, it takes its qualifier from whichever environment binds it. Names bound in
// neither are unbound in the result.
func Merge(a, b Env) Env {
	merged := a.Clone()
	for name, q := range b {
		if merged[name] == Readonly {
			continue
		}
		merged[name] = q
	}
	return merged
}

// Context is the state of the checker inside a single function: the qualifiers of its locals and the fixed qualifiers
// of its return value and $this.
type Context struct {
	Env    Env
	Return Qualifier
	This   Qualifier
}

// NewContext returns a Context with an empty environment.
func NewContext(ret, this Qualifier) *Context {
	return &Context{
		Env:    Env{},
		Return: ret,
		This:   this,
	}
}

// newFunctionContext returns the Context at the start of fn's body with its parameters bound.
func newFunctionContext(fn *ast.Function) *Context {
	ctx := NewContext(qualifierOf(fn.ReturnsReadonly()), qualifierOf(fn.HasReadonlyThis()))
	for _, param := range fn.Params {
		ctx.Bind(param.Name.Lexeme, qualifierOf(param.IsReadonly()))
	}
	return ctx
}

// Bind sets the qualifier of the local variable name.
func (c *Context) Bind(name string, q Qualifier) {
	c.Env[name] = q
}

// Lookup returns the qualifier of the local variable name, or Mutable if it's not bound.
func (c *Context) Lookup(name string) Qualifier {
	return c.Env[name]
}
