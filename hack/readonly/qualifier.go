// Package readonly implements a flow-sensitive checker of the readonly qualifier on Hack programs.
//
// Every expression is either readonly or mutable. The checker walks each function and method body, tracking the
// qualifier of each local variable, and reports where a readonly value is mutated, stored into a mutable collection or
// returned from a function which isn't declared to return readonly. Where a readonly value crosses into a call argument
// or the right hand side of an accepted assignment, the checker wraps it in an [*ast.ReadonlyExpr] so that the
// readonly-ness is explicit in the tree.
package readonly

//go:generate go tool stringer -type Qualifier -linecomment

// Qualifier is the readonly qualifier of a value.
type Qualifier int

const (
	Mutable  Qualifier = iota // mutable
	Readonly                  // readonly
)

// Join returns Readonly if either q or other is Readonly and Mutable otherwise.
func (q Qualifier) Join(other Qualifier) Qualifier {
	if q == Readonly || other == Readonly {
		return Readonly
	}
	return Mutable
}

func qualifierOf(readonly bool) Qualifier {
	if readonly {
		return Readonly
	}
	return Mutable
}
