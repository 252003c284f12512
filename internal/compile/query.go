package compile

import (
	"github.com/remexre/wam-tutorial-reconstruction/internal/flatten"
	"github.com/remexre/wam-tutorial-reconstruction/internal/term"
)

// BuildQuery compiles the bottom-up "build" instruction sequence for a
// structure (§4.2): constructing it on the heap so that, once run,
// registers 0..arity-1 hold the addresses of its top-level arguments.
// The returned map associates each named variable in s with the
// Location its value resides at once the instructions have run — the
// "variable_map" of the §4.2 contract, and what answer extraction reads
// from for M0/M1 queries.
//
// perm resolves named variables to permanent slots; pass NoPermanents for
// M0/M1, where nothing is permanent.
//
// Processing walks the flatten table from the highest index to the
// lowest. Because a child's index is always greater than its parent's
// (BFS only ever appends), this order guarantees every substructure is
// fully built on the heap before anything copies it as an argument of an
// enclosing structure — the post-order the algorithm calls for.
func BuildQuery(s term.Structure, perm PermanenceOf) ([]Instruction, map[term.Variable]Location) {
	table := flatten.Flatten(s)
	instrs := buildFromTable(table, perm)

	varMap := make(map[term.Variable]Location)
	for idx, v := range table.Values {
		if v.Kind == flatten.KindVar && v.Named {
			varMap[v.Var] = locationOf(table, idx, perm)
		}
	}
	return instrs, varMap
}

func buildFromTable(table flatten.Table, perm PermanenceOf) []Instruction {
	seen := newSeenSet()
	var instrs []Instruction

	for idx := len(table.Values) - 1; idx >= 0; idx-- {
		v := table.Values[idx]
		switch v.Kind {
		case flatten.KindStruct:
			instrs = append(instrs, PutStructure(term.Functor{Name: v.Functor, Arity: len(v.Args)}, locationOf(table, idx, perm)))
			for _, childIdx := range v.Args {
				loc := locationOf(table, childIdx, perm)
				if seen.has(table, childIdx) {
					instrs = append(instrs, SetValue(loc))
				} else {
					instrs = append(instrs, SetVariable(loc))
					seen.mark(table, childIdx)
				}
			}
			seen.mark(table, idx)
		case flatten.KindVar:
			// Top-level argument slots are argument registers and must
			// each end up holding a value; occurrences nested inside a
			// structure are otherwise handled above as that structure's
			// children.
			if idx >= table.ArgCount {
				continue
			}
			if v.Named {
				if canonical, ok := seen.canonicalIndex(v.Var); ok {
					// Already built, possibly at this very index (a
					// nested occurrence reused it, the common case) or
					// at a different one (two top-level positions
					// repeating the same variable, e.g. q(Z, Z)). The
					// latter needs an explicit copy: this index is its
					// own argument register and must not be left
					// unwritten.
					if canonical != idx {
						instrs = append(instrs, PutValue(locationOf(table, canonical, perm), idx))
					}
					continue
				}
			} else if seen.has(table, idx) {
				continue
			}
			instrs = append(instrs, SetVariable(locationOf(table, idx, perm)))
			seen.mark(table, idx)
		}
	}

	return instrs
}
