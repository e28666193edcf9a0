package diag

import (
	"fmt"
	"slices"
	"strings"

	"github.com/marcuscaisey/hackro/hack/token"
)

//go:generate go tool stringer -type Kind -linecomment

// Kind identifies the rule which a [Diagnostic] reports a violation of.
type Kind int

const (
	// AssignmentToReadonly is a write to a member of a readonly value.
	AssignmentToReadonly Kind = iota // assignment_to_readonly
	// AssignReadonlyToMutableCollection is a readonly value stored into a mutable collection.
	AssignReadonlyToMutableCollection // assign_readonly_to_mutable_collection
	// InvalidReadonly is a readonly value used where a mutable one is expected.
	InvalidReadonly // invalid_readonly
)

// Diagnostic is a violation of the readonly rules found in a program.
type Diagnostic struct {
	Start  token.Position
	End    token.Position
	Kind   Kind
	Reason string // Extra explanation, only set for InvalidReadonly
}

// Message returns the human readable message for the diagnostic.
func (d *Diagnostic) Message() string {
	switch d.Kind {
	case AssignmentToReadonly:
		return "This expression is readonly, its members cannot be modified"
	case AssignReadonlyToMutableCollection:
		return "This expression is readonly, but the collection it is being stored in is mutable"
	case InvalidReadonly:
		msg := "This expression is readonly, but a mutable value was expected."
		if d.Reason != "" {
			msg += " " + d.Reason
		}
		return msg
	default:
		panic(fmt.Sprintf("unexpected diag.Kind: %d", d.Kind))
	}
}

// Error formats the diagnostic in the same way as [*Error].
func (d *Diagnostic) Error() string {
	return highlight(d.Start, d.End, d.Message())
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s-%s: %s", d.Start, d.End, d.Kind)
}

// Diagnostics is a list of [*Diagnostic]s.
type Diagnostics []*Diagnostic

// Add adds a [*Diagnostic] of the given kind to the list which covers rang.
func (d *Diagnostics) Add(rang token.Range, kind Kind, reason string) {
	*d = append(*d, &Diagnostic{
		Start:  rang.Start(),
		End:    rang.End(),
		Kind:   kind,
		Reason: reason,
	})
}

// Sort sorts the diagnostics by their start position. Diagnostics which start at the same position keep their
// relative order.
func (d Diagnostics) Sort() {
	slices.SortStableFunc(d, func(d1, d2 *Diagnostic) int {
		return d1.Start.Compare(d2.Start)
	})
}

// Error formats the diagnostics by concatenating their messages after sorting them by their start position.
func (d Diagnostics) Error() string {
	if len(d) == 0 {
		panic("Error called on empty diagnostic list")
	}
	d.Sort()
	msgs := make([]string, len(d))
	for i, diagnostic := range d {
		msgs[i] = diagnostic.Error()
	}
	return strings.Join(msgs, "\n")
}

// Err returns the list unchanged if its non-empty, otherwise nil.
func (d Diagnostics) Err() error {
	if len(d) == 0 {
		return nil
	}
	return d
}
