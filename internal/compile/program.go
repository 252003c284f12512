package compile

import (
	"github.com/remexre/wam-tutorial-reconstruction/internal/flatten"
	"github.com/remexre/wam-tutorial-reconstruction/internal/term"
)

// MatchHead compiles the top-down "match" instruction sequence for a
// clause head (§4.3): checking an already-built term against whatever a
// caller left in registers 0..arity-1.
//
// perm resolves named variables to permanent slots; pass NoPermanents
// for M0/M1.
//
// Unlike BuildQuery, this walks the flatten table from lowest index to
// highest: a parent's index is always lower than any of its children's,
// so ascending order visits a structure before the arguments it governs,
// which is the order GetStructure's read/write mode switch requires.
//
// The returned map associates each named variable in s with the
// Location holding its value once the sequence has run, mirroring
// BuildQuery's variable_map. CompileClause discards it; MatchTerm
// returns the same map for M0's direct term-to-term unification, where
// there is no Call to hide a clause's free variables behind.
func MatchHead(s term.Structure, perm PermanenceOf) ([]Instruction, map[term.Variable]Location) {
	table := flatten.Flatten(s)
	instrs := append(matchFromTable(table, perm), Proceed())

	varMap := make(map[term.Variable]Location)
	for idx, v := range table.Values {
		if v.Kind == flatten.KindVar && v.Named {
			varMap[v.Var] = locationOf(table, idx, perm)
		}
	}
	return instrs, varMap
}

// MatchTerm compiles the same match sequence as MatchHead but without
// the trailing Proceed, for M0's direct unification of two terms: there
// is no Call that set CP, so nothing should ever read it back.
func MatchTerm(s term.Structure, perm PermanenceOf) ([]Instruction, map[term.Variable]Location) {
	table := flatten.Flatten(s)
	instrs := matchFromTable(table, perm)

	varMap := make(map[term.Variable]Location)
	for idx, v := range table.Values {
		if v.Kind == flatten.KindVar && v.Named {
			varMap[v.Var] = locationOf(table, idx, perm)
		}
	}
	return instrs, varMap
}

func matchFromTable(table flatten.Table, perm PermanenceOf) []Instruction {
	seen := newSeenSet()

	// A top-level argument slot that is itself a bare variable (not a
	// structure) is already bound by the caller before this code runs:
	// its register holds the real incoming value, so a later occurrence
	// of that same variable is a check (UnifyValue), never a capture.
	for idx := 0; idx < table.ArgCount; idx++ {
		if table.Values[idx].Kind == flatten.KindVar {
			seen.mark(table, idx)
		}
	}

	var instrs []Instruction
	for idx := 0; idx < len(table.Values); idx++ {
		v := table.Values[idx]
		if v.Kind != flatten.KindStruct {
			continue
		}
		instrs = append(instrs, GetStructure(term.Functor{Name: v.Functor, Arity: len(v.Args)}, locationOf(table, idx, perm)))
		for _, childIdx := range v.Args {
			loc := locationOf(table, childIdx, perm)
			if seen.has(table, childIdx) {
				instrs = append(instrs, UnifyValue(loc))
			} else {
				instrs = append(instrs, UnifyVariable(loc))
				seen.mark(table, childIdx)
			}
		}
	}

	return instrs
}
