package term

import (
	"strconv"
	"strings"
)

// Term is a recursive Prolog value: an Anonymous wildcard, a Variable, or
// a Structure. It carries no other variants — this system has no numbers
// or strings as first-class terms, only atoms-as-nullary-structures,
// variables, and compounds.
type Term interface {
	isTerm()
	String() string
}

// Functor is the (name, arity) identity of a structure.
type Functor struct {
	Name  Atom
	Arity int
}

// String returns the functor in "name/arity" form.
func (f Functor) String() string {
	return f.Name.String() + "/" + strconv.Itoa(f.Arity)
}

// Structure is a functor applied to zero or more argument terms. A
// zero-arity Structure is a Prolog constant.
type Structure struct {
	Functor Atom
	Args    []Term
}

// NewStructure builds a Structure, the empty-args case being how a bare
// atom like "foo" and an explicit "foo()" both end up represented.
func NewStructure(functor Atom, args ...Term) Structure {
	return Structure{Functor: functor, Args: args}
}

func (Structure) isTerm() {}

// Indicator returns this structure's Functor/Arity pair.
func (s Structure) Indicator() Functor {
	return Functor{Name: s.Functor, Arity: len(s.Args)}
}

// String returns the Prolog source representation of s.
func (s Structure) String() string {
	if len(s.Args) == 0 {
		return s.Functor.String()
	}
	var sb strings.Builder
	sb.WriteString(s.Functor.String())
	sb.WriteByte('(')
	for i, arg := range s.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
