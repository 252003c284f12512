package machine

import (
	"fmt"

	"github.com/remexre/wam-tutorial-reconstruction/internal/compile"
	"github.com/remexre/wam-tutorial-reconstruction/internal/heap"
	"github.com/remexre/wam-tutorial-reconstruction/internal/term"
)

// Binding is one named variable's reconstructed value, as produced by
// the answer extractor (§4.7).
type Binding struct {
	Name  string
	Value term.Term
}

// RootVar names a query variable and the Location its value lives at
// once the query's instructions have run.
type RootVar struct {
	Name string
	Loc  compile.Location
}

// Extract reads each root's Location, deref's it, and reconstructs a
// Term tree, in the order roots were given. Two roots that deref to the
// same still-unbound address are recognized as the same variable and
// given the same display name — the first one named, by position in
// roots, wins; an unbound address with no root naming it renders as
// "_N" where N is its heap address, per §4.7.
func (m *Machine) Extract(roots []RootVar) []Binding {
	addrs := make([]heap.Address, len(roots))
	names := make(map[heap.Address]string, len(roots))
	for i, r := range roots {
		a := m.Heap.Deref(m.readLoc(r.Loc))
		addrs[i] = a
		if m.Heap.IsUnbound(a) {
			if _, already := names[a]; !already {
				names[a] = r.Name
			}
		}
	}

	out := make([]Binding, len(roots))
	for i, r := range roots {
		out[i] = Binding{Name: r.Name, Value: m.extractTerm(addrs[i], names)}
	}
	return out
}

// extractTerm is the recursive tree-builder underneath Extract. Deref
// itself always terminates (§4.5), but this recursion follows Str
// arguments and does not detect cycles: a variable bound into a
// structure that contains it (possible because Heap.Unify does no
// occurs check) makes it recurse without end. Callers must never invoke
// extraction against a heap holding such a cycle.
func (m *Machine) extractTerm(addr heap.Address, names map[heap.Address]string) term.Term {
	a := m.Heap.Deref(addr)
	if m.Heap.IsStr(a) {
		functorAddr := m.Heap.StrTarget(a)
		f := m.Heap.GetFunctor(functorAddr)
		args := make([]term.Term, f.Arity)
		for i := 0; i < f.Arity; i++ {
			args[i] = m.extractTerm(functorAddr+1+heap.Address(i), names)
		}
		return term.NewStructure(f.Name, args...)
	}
	if name, ok := names[a]; ok {
		return term.NewVariable(name)
	}
	return term.NewVariable(fmt.Sprintf("_%d", int(a)))
}
