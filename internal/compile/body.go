package compile

import (
	"github.com/remexre/wam-tutorial-reconstruction/internal/flatten"
	"github.com/remexre/wam-tutorial-reconstruction/internal/term"
)

// Permanence maps a clause's permanent variables to their local-stack
// slot numbers (§4.4): a named variable is permanent iff it occurs in
// more than one of the clause's goals, where the head counts as a goal
// in its own right when deciding what it shares with the body. The
// anonymous wildcard is never permanent: distinct occurrences never
// compare equal, so there is nothing to preserve across a call.
type Permanence struct {
	slots map[term.Variable]int
	count int
}

// Resolver adapts a Permanence into the PermanenceOf signature the
// query and program/head compilers expect.
func (p Permanence) Resolver() PermanenceOf {
	return func(v term.Variable) (int, bool) {
		slot, ok := p.slots[v]
		return slot, ok
	}
}

// Count is the number of permanent variables, Allocate's operand.
func (p Permanence) Count() int { return p.count }

func computePermanence(c term.Clause) Permanence {
	goals := make([]term.Structure, 0, len(c.Body)+1)
	goals = append(goals, c.Head)
	goals = append(goals, c.Body...)

	occursIn := make(map[term.Variable]map[int]bool)
	for i, g := range goals {
		for _, v := range varsOf(g) {
			if occursIn[v] == nil {
				occursIn[v] = make(map[int]bool)
			}
			occursIn[v][i] = true
		}
	}

	p := Permanence{slots: make(map[term.Variable]int)}
	for _, g := range goals {
		for _, v := range varsOf(g) {
			if _, already := p.slots[v]; already {
				continue
			}
			if len(occursIn[v]) > 1 {
				p.slots[v] = p.count
				p.count++
			}
		}
	}
	return p
}

// varsOf returns every named-variable occurrence in s, left-to-right
// pre-order, duplicates included.
func varsOf(s term.Structure) []term.Variable {
	var out []term.Variable
	var walk func(term.Term)
	walk = func(t term.Term) {
		switch v := t.(type) {
		case term.Variable:
			out = append(out, v)
		case term.Structure:
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	walk(s)
	return out
}

// clauseSeen tracks, across an entire clause's compilation, which named
// variables have already been initialized. It is shared by the head and
// every body goal, since that is exactly the question permanence exists
// to answer: has this variable's value already been produced somewhere
// earlier in the clause. Structure and anonymous-variable bookkeeping is
// NOT part of this: those only ever matter within the one flatten table
// that produced them, since each goal is flattened independently and its
// indices are meaningless outside that table.
type clauseSeen struct {
	vars map[term.Variable]bool
}

func newClauseSeen() *clauseSeen {
	return &clauseSeen{vars: make(map[term.Variable]bool)}
}

func (cs *clauseSeen) has(table flatten.Table, idx int, idxSeen map[int]bool) bool {
	v := table.Values[idx]
	if v.Kind == flatten.KindVar && v.Named {
		return cs.vars[v.Var]
	}
	return idxSeen[idx]
}

func (cs *clauseSeen) mark(table flatten.Table, idx int, idxSeen map[int]bool) {
	v := table.Values[idx]
	if v.Kind == flatten.KindVar && v.Named {
		cs.vars[v.Var] = true
		return
	}
	idxSeen[idx] = true
}

// CompileClause compiles a whole clause: a fact compiles to a plain head
// match (§4.3, no local stack), a rule compiles via Allocate, a mirrored
// head match that captures permanent variables into their slots, a
// put-and-call sequence per body goal, and a final Deallocate (§4.4).
func CompileClause(c term.Clause) []Instruction {
	if c.IsFact() {
		instrs, _ := MatchHead(c.Head, NoPermanents)
		return instrs
	}
	return CompileRule(c)
}

// computeQueryPermanence assigns every named variable occurring anywhere
// in a query's goals a permanent slot, unconditionally. This differs
// from a rule body's permanence test (occurrence in more than one goal)
// because a rule body's internal variables are only ever consulted by
// the clause itself, while a query's variables are exactly what answer
// extraction reads once every one of its goals has returned — so all of
// them must survive that long, not just the ones a goal shares with
// another.
func computeQueryPermanence(q term.Query) Permanence {
	p := Permanence{slots: make(map[term.Variable]int)}
	for _, g := range q.Goals {
		for _, v := range varsOf(g) {
			if _, already := p.slots[v]; already {
				continue
			}
			p.slots[v] = p.count
			p.count++
		}
	}
	return p
}

// CompileQuery compiles a (possibly multi-goal) M2 query: Allocate a
// frame sized for every named variable, then put-and-call each goal in
// turn. Per §9's resolved open question, no Deallocate is emitted for
// this frame — the top-level driver reads its slots for answer
// extraction and discards it only afterward, once every goal has
// returned.
func CompileQuery(q term.Query) ([]Instruction, Permanence) {
	perm := computeQueryPermanence(q)
	resolver := perm.Resolver()
	seen := newClauseSeen()

	instrs := []Instruction{Allocate(perm.Count())}
	for _, goal := range q.Goals {
		instrs = append(instrs, goalPutInstrs(goal, resolver, seen)...)
		instrs = append(instrs, Call(goal.Indicator()))
	}
	return instrs, perm
}

// CompileRule compiles a clause with a non-empty body.
func CompileRule(c term.Clause) []Instruction {
	perm := computePermanence(c)
	resolver := perm.Resolver()
	seen := newClauseSeen()

	instrs := []Instruction{Allocate(perm.Count())}
	instrs = append(instrs, headGetInstrs(c.Head, resolver, seen)...)
	for _, goal := range c.Body {
		instrs = append(instrs, goalPutInstrs(goal, resolver, seen)...)
		instrs = append(instrs, Call(goal.Indicator()))
	}
	instrs = append(instrs, Deallocate())
	return instrs
}

// headGetInstrs compiles a rule's head: structurally identical to a
// fact's match (GetStructure/UnifyVariable/UnifyValue for nested
// subterms) except that a bare top-level argument that is a variable
// gets an explicit GetVariable (first occurrence in the clause) or
// GetValue (repeat occurrence) against its argument register, since
// that variable's true home may be a permanent slot that must survive
// past this call's return.
func headGetInstrs(head term.Structure, perm PermanenceOf, seen *clauseSeen) []Instruction {
	table := flatten.Flatten(head)
	idxSeen := make(map[int]bool)
	var instrs []Instruction

	for idx := 0; idx < len(table.Values); idx++ {
		v := table.Values[idx]
		switch v.Kind {
		case flatten.KindStruct:
			instrs = append(instrs, GetStructure(term.Functor{Name: v.Functor, Arity: len(v.Args)}, locationOf(table, idx, perm)))
			for _, childIdx := range v.Args {
				loc := locationOf(table, childIdx, perm)
				if seen.has(table, childIdx, idxSeen) {
					instrs = append(instrs, UnifyValue(loc))
				} else {
					instrs = append(instrs, UnifyVariable(loc))
					seen.mark(table, childIdx, idxSeen)
				}
			}
		case flatten.KindVar:
			if idx >= table.ArgCount {
				continue
			}
			loc := locationOf(table, idx, perm)
			if seen.has(table, idx, idxSeen) {
				instrs = append(instrs, GetValue(loc, idx))
			} else {
				instrs = append(instrs, GetVariable(loc, idx))
				seen.mark(table, idx, idxSeen)
			}
		}
	}
	return instrs
}

// goalPutInstrs compiles one body goal: structurally identical to a
// query's build (PutStructure/SetVariable/SetValue for nested subterms,
// walked high-to-low so children are built before the parent copies
// them) except that a bare top-level argument gets PutVariable (first
// occurrence anywhere in the clause) or PutValue (repeat occurrence)
// against its argument register, mirroring headGetInstrs.
func goalPutInstrs(goal term.Structure, perm PermanenceOf, seen *clauseSeen) []Instruction {
	table := flatten.Flatten(goal)
	idxSeen := make(map[int]bool)
	var instrs []Instruction

	for idx := len(table.Values) - 1; idx >= 0; idx-- {
		v := table.Values[idx]
		switch v.Kind {
		case flatten.KindStruct:
			instrs = append(instrs, PutStructure(term.Functor{Name: v.Functor, Arity: len(v.Args)}, locationOf(table, idx, perm)))
			for _, childIdx := range v.Args {
				loc := locationOf(table, childIdx, perm)
				if seen.has(table, childIdx, idxSeen) {
					instrs = append(instrs, SetValue(loc))
				} else {
					instrs = append(instrs, SetVariable(loc))
					seen.mark(table, childIdx, idxSeen)
				}
			}
			seen.mark(table, idx, idxSeen)
		case flatten.KindVar:
			if idx >= table.ArgCount {
				continue
			}
			loc := locationOf(table, idx, perm)
			if seen.has(table, idx, idxSeen) {
				instrs = append(instrs, PutValue(loc, idx))
			} else {
				instrs = append(instrs, PutVariable(loc, idx))
				seen.mark(table, idx, idxSeen)
			}
		}
	}
	return instrs
}
