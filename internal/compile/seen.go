package compile

import (
	"github.com/remexre/wam-tutorial-reconstruction/internal/flatten"
	"github.com/remexre/wam-tutorial-reconstruction/internal/term"
)

// PermanenceOf resolves a named variable to its permanent slot number, if
// it has one. M0/M1 compilation always uses a resolver that returns
// (0, false) for everything, since neither variant has a local stack;
// the rule body compiler (§4.4) supplies a real one.
type PermanenceOf func(term.Variable) (slot int, ok bool)

// NoPermanents is the resolver for M0/M1: every variable lives in a
// register.
func NoPermanents(term.Variable) (int, bool) { return 0, false }

// locationOf resolves a flatten table index to the Location its value
// should be read from or written to: a permanent slot for a permanent
// variable, a register otherwise. Structure cells and anonymous/temporary
// variables always live in registers scoped to the index itself.
func locationOf(table flatten.Table, idx int, perm PermanenceOf) Location {
	v := table.Values[idx]
	if v.Kind == flatten.KindVar && v.Named {
		if slot, ok := perm(v.Var); ok {
			return Local(slot)
		}
	}
	return Register(idx)
}

// seenSet tracks which flatten-table slots have already had a cell built
// (query side) or matched (program side), keyed by variable identity for
// named variables so that two distinct indices naming the same variable
// (e.g. two separate top-level argument positions) are recognized as the
// same occurrence chain, and by index for everything else. For named
// variables it also remembers the index first marked, so a caller can
// tell a genuine repeat occurrence (a different index, same variable)
// from the trivial case of revisiting the one index that variable has
// always lived at.
type seenSet struct {
	vars     map[term.Variable]bool
	firstIdx map[term.Variable]int
	idxs     map[int]bool
}

func newSeenSet() *seenSet {
	return &seenSet{
		vars:     make(map[term.Variable]bool),
		firstIdx: make(map[term.Variable]int),
		idxs:     make(map[int]bool),
	}
}

func (s *seenSet) has(table flatten.Table, idx int) bool {
	v := table.Values[idx]
	if v.Kind == flatten.KindVar && v.Named {
		return s.vars[v.Var]
	}
	return s.idxs[idx]
}

func (s *seenSet) mark(table flatten.Table, idx int) {
	v := table.Values[idx]
	if v.Kind == flatten.KindVar && v.Named {
		if !s.vars[v.Var] {
			s.firstIdx[v.Var] = idx
		}
		s.vars[v.Var] = true
		return
	}
	s.idxs[idx] = true
}

// canonicalIndex returns the index a named variable was first marked at,
// if any.
func (s *seenSet) canonicalIndex(v term.Variable) (int, bool) {
	idx, ok := s.firstIdx[v]
	return idx, ok
}
