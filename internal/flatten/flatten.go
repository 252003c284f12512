// Package flatten rewrites a Structure as a register-indexed DAG with
// sharing for repeated variables, the representation both compilers
// (query and program) walk to emit instructions.
package flatten

import "github.com/remexre/wam-tutorial-reconstruction/internal/term"

// Kind distinguishes the two FlatValue variants.
type Kind int

const (
	// KindStruct is a structure applied to child slots, referenced by index.
	KindStruct Kind = iota
	// KindVar is a variable occurrence (possibly anonymous).
	KindVar
)

// Value is one entry of a flattened register table.
type Value struct {
	Kind Kind

	// KindStruct fields.
	Functor term.Atom
	Args    []int

	// KindVar fields. Named is false for the anonymous wildcard, which is
	// never shared even when repeated.
	Var   term.Variable
	Named bool
}

// Table is the flattener's output: an ordered register file. Entries
// 0..ArgCount-1 are the top-level structure's arguments (the argument
// registers); the rest are temporaries introduced by the arguments of
// nested structures. A repeated named variable reuses the index of its
// earlier entry instead of adding one.
type Table struct {
	Values   []Value
	ArgCount int
}

// Flatten performs the breadth-first flattening of §4.1: traversal order
// assigns indices so the compiler can emit argument registers 0..arity-1
// for the top level's immediate subterms. A depth-first walk would instead
// hand the outer argument register to an inner subterm, which is why BFS
// is load-bearing here, not incidental.
func Flatten(top term.Structure) Table {
	t := Table{ArgCount: len(top.Args)}
	env := make(map[term.Variable]int)

	// Pre-populate one placeholder per top-level argument.
	t.Values = make([]Value, len(top.Args))

	type pending struct {
		index int
		s     term.Structure
	}
	var queue []pending

	assign := func(idx int, arg term.Term) {
		switch a := arg.(type) {
		case term.Anonymous:
			t.Values[idx] = Value{Kind: KindVar, Named: false}
		case term.Variable:
			env[a] = idx
			t.Values[idx] = Value{Kind: KindVar, Var: a, Named: true}
		case term.Structure:
			t.Values[idx] = Value{} // placeholder, filled in once visited
			queue = append(queue, pending{index: idx, s: a})
		}
	}

	for i, arg := range top.Args {
		assign(i, arg)
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		childIdxs := make([]int, len(p.s.Args))
		for i, child := range p.s.Args {
			if v, ok := child.(term.Variable); ok {
				if existing, ok := env[v]; ok {
					childIdxs[i] = existing
					continue
				}
			}
			idx := len(t.Values)
			t.Values = append(t.Values, Value{})
			childIdxs[i] = idx
			assign(idx, child)
		}

		t.Values[p.index] = Value{Kind: KindStruct, Functor: p.s.Functor, Args: childIdxs}
	}

	return t
}

// FlattenTerm flattens a bare Term, the convenience form the contract
// allows for inputs that are not already a top-level Structure. A lone
// variable (or the wildcard) flattens to a single-entry table holding one
// FlatVar.
func FlattenTerm(t term.Term) Table {
	if s, ok := t.(term.Structure); ok {
		return Flatten(s)
	}
	table := Table{ArgCount: 1, Values: make([]Value, 1)}
	switch v := t.(type) {
	case term.Variable:
		table.Values[0] = Value{Kind: KindVar, Var: v, Named: true}
	case term.Anonymous:
		table.Values[0] = Value{Kind: KindVar, Named: false}
	}
	return table
}
