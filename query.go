package wam

import (
	"context"
	"sort"
	"strings"

	"github.com/remexre/wam-tutorial-reconstruction/internal/compile"
	"github.com/remexre/wam-tutorial-reconstruction/internal/machine"
	"github.com/remexre/wam-tutorial-reconstruction/internal/term"
	"github.com/remexre/wam-tutorial-reconstruction/internal/wamerr"
)

// Answer is one solution's variable bindings, sorted by variable name.
type Answer struct {
	bindings []machine.Binding
}

// Vars reports the bound variables of an answer, sorted by name.
func (a Answer) Vars() []machine.Binding { return a.bindings }

// String renders an answer the way the REPL prints one: "Var = Value"
// pairs separated by ",\n", or "true" when the query named no variables.
func (a Answer) String() string {
	if len(a.bindings) == 0 {
		return "true"
	}
	parts := make([]string, len(a.bindings))
	for i, b := range a.bindings {
		parts[i] = b.Name + " = " + b.Value.String()
	}
	return strings.Join(parts, ",\n")
}

// Query runs q against mac and iterates its answers. None of the three
// machine variants here can produce more than one answer — there is no
// choice point to resume into — but the shape mirrors a backtracking
// engine's query/answer protocol so a future variant with real
// backtracking can be dropped in without changing callers.
type Query struct {
	mac *Machine
	q   term.Query

	cur  Answer
	done bool
	err  error
}

// NewQuery builds an iterator over q's solutions against mac. Next must
// be called before Current is valid.
func (mac *Machine) NewQuery(q term.Query) *Query {
	return &Query{mac: mac, q: q}
}

// Next runs the query to its (at most one) answer and reports whether
// one was produced. Calling Next again after it has returned true
// reports false: there is nothing left to resume. ctx is accepted for
// symmetry with a future backtracking engine and is not currently
// consulted mid-step, since a single run through straight-line bytecode
// never blocks.
func (q *Query) Next(ctx context.Context) bool {
	if q.done {
		return false
	}
	q.done = true

	select {
	case <-ctx.Done():
		q.err = ctx.Err()
		return false
	default:
	}

	answer, err := q.mac.runOnce(q.q)
	if err != nil {
		if err != wamerr.ErrNoAnswers {
			q.err = err
		}
		return false
	}
	q.cur = answer
	return true
}

// Current returns the answer produced by the most recent successful
// Next call.
func (q *Query) Current() Answer { return q.cur }

// Close releases q. The machine holds no per-query resources beyond its
// scratch interpreter state, which is local to runOnce, so Close is a
// no-op kept for interface parity.
func (q *Query) Close() error { return nil }

// Err reports the first non-failure error Next encountered, if any.
// An ordinary query failure (no unifying answer) is not an error; Err
// returns nil in that case, with Next simply having returned false.
func (q *Query) Err() error { return q.err }

// QueryOnce runs q against mac and returns its single answer, or
// wamerr.ErrNoAnswers if it has none.
func (mac *Machine) QueryOnce(ctx context.Context, q term.Query) (Answer, error) {
	query := mac.NewQuery(q)
	if query.Next(ctx) {
		return query.Current(), nil
	}
	if err := query.Err(); err != nil {
		return Answer{}, err
	}
	return Answer{}, wamerr.ErrNoAnswers
}

// runOnce compiles q against mac's variant and runs it to completion.
func (mac *Machine) runOnce(q term.Query) (Answer, error) {
	switch mac.variant {
	case VariantUnification:
		return mac.runUnification(q)
	case VariantFacts:
		return mac.runFacts(q)
	default:
		return mac.runFlat(q)
	}
}

// runUnification implements M0: a query is exactly one goal, unified
// directly against mac's single stored fact with no Call at all. Since
// there is no label table to check a functor/arity match for the caller,
// this has to be done explicitly up front (§9).
func (mac *Machine) runUnification(q term.Query) (Answer, error) {
	if len(q.Goals) != 1 {
		return Answer{}, &wamerr.ShapeError{Variant: "unification", Message: "expects exactly one goal"}
	}
	goal := q.Goals[0]
	if goal.Indicator() != mac.fact.Indicator() {
		return Answer{}, wamerr.ErrNoAnswers
	}

	buildInstrs, buildVars := compile.BuildQuery(goal, compile.NoPermanents)
	matchInstrs, matchVars := compile.MatchTerm(mac.fact, compile.NoPermanents)

	code := append(append([]compile.Instruction{}, buildInstrs...), matchInstrs...)
	mac2 := machine.New(code, nil)
	if err := mac2.Run(0); err != nil {
		return Answer{}, err
	}
	mac.recordRun(mac2)

	return extractAnswer(mac2, mergeVarMaps(buildVars, matchVars))
}

// runFacts implements M1: a query is exactly one goal, reached through
// Call against the compiled fact table. There is no local stack, so a
// query spanning more than one goal has nothing to hold a first goal's
// bindings across a second Call, so such a query is rejected with a
// ShapeError rather than worked around.
func (mac *Machine) runFacts(q term.Query) (Answer, error) {
	if len(q.Goals) != 1 {
		return Answer{}, &wamerr.ShapeError{Variant: "facts", Message: "facts mode accepts only a single goal per query"}
	}
	goal := q.Goals[0]

	queryInstrs, queryVars := compile.BuildQuery(goal, compile.NoPermanents)
	instrs := append(append([]compile.Instruction{}, queryInstrs...), compile.Call(goal.Indicator()))

	code := append(append([]compile.Instruction{}, mac.baseCode...), instrs...)
	startPC := len(mac.baseCode)

	mac2 := machine.New(code, mac.baseLabels)
	if err := mac2.Run(startPC); err != nil {
		return Answer{}, err
	}
	mac.recordRun(mac2)

	return extractAnswer(mac2, queryVars)
}

// runFlat implements M2: the query compiles through CompileQuery, giving
// every named variable a permanent slot so it survives however many
// nested Calls its goals make before the query's own frame is read back.
func (mac *Machine) runFlat(q term.Query) (Answer, error) {
	queryInstrs, perm := compile.CompileQuery(q)

	code := append(append([]compile.Instruction{}, mac.baseCode...), queryInstrs...)
	startPC := len(mac.baseCode)

	mac2 := machine.New(code, mac.baseLabels)
	if err := mac2.Run(startPC); err != nil {
		return Answer{}, err
	}
	mac.recordRun(mac2)

	varMap := make(map[term.Variable]compile.Location)
	for _, g := range q.Goals {
		for _, v := range queryVarsOf(g) {
			if slot, ok := perm.Resolver()(v); ok {
				varMap[v] = compile.Local(slot)
			}
		}
	}

	return extractAnswer(mac2, varMap)
}

// queryVarsOf returns every named-variable occurrence in s, left to
// right, duplicates included — the same walk the rule-body compiler
// uses internally, needed again here since compile.Permanence keeps its
// slot map private.
func queryVarsOf(s term.Structure) []term.Variable {
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

func mergeVarMaps(maps ...map[term.Variable]compile.Location) map[term.Variable]compile.Location {
	out := make(map[term.Variable]compile.Location)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// extractAnswer turns a variable map into sorted RootVars (so the
// printed order of an answer's bindings is deterministic across runs,
// since Go's map iteration order is not) and reads them off mac's heap.
func extractAnswer(mac *machine.Machine, varMap map[term.Variable]compile.Location) (Answer, error) {
	names := make([]string, 0, len(varMap))
	for v := range varMap {
		names = append(names, v.Name())
	}
	sort.Strings(names)

	roots := make([]machine.RootVar, 0, len(varMap))
	for _, name := range names {
		for v, loc := range varMap {
			if v.Name() == name {
				roots = append(roots, machine.RootVar{Name: name, Loc: loc})
				break
			}
		}
	}

	return Answer{bindings: mac.Extract(roots)}, nil
}
