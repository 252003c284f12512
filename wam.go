// Package wam implements a Warren Abstract Machine that executes
// Prolog-like logic programs: it flattens and compiles clauses and
// queries into register-machine bytecode, then runs that bytecode
// against a tagged-cell heap to decide unification and, for rules,
// conjunctive-body resolution. Three variants are supported, matching
// the spec's progression: pure term unification with no predicates,
// a flat fact table reached via Call, and rules with bodies backed by
// a local stack. Backtracking, choice points, arithmetic, and full ISO
// Prolog syntax are out of scope — see SPEC_FULL.md.
package wam

import (
	"sort"
	"sync"

	"golang.org/x/exp/maps"

	"github.com/remexre/wam-tutorial-reconstruction/internal/compile"
	"github.com/remexre/wam-tutorial-reconstruction/internal/machine"
	"github.com/remexre/wam-tutorial-reconstruction/internal/term"
	"github.com/remexre/wam-tutorial-reconstruction/internal/wamerr"
)

// Variant identifies which of the three closed machine subsets a
// Machine was built for (§9: a closed-set tagged enum, not open
// plugin-style polymorphism — there are exactly three and always will
// be, by design).
type Variant int

const (
	// VariantUnification is M0: a single stored fact unified directly
	// against a single query term, no predicates, no Call.
	VariantUnification Variant = iota
	// VariantFacts is M1: a flat table of facts reached via Call, no
	// rule bodies, no local stack.
	VariantFacts
	// VariantFlat is M2: facts and rules with conjunctive bodies,
	// backed by the local stack.
	VariantFlat
)

func (v Variant) String() string {
	switch v {
	case VariantUnification:
		return "unification"
	case VariantFacts:
		return "facts"
	case VariantFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// Machine is a compiled, runnable instance of one of the three machine
// variants. It is safe to run many queries against; each Query call
// builds its own interpreter state so queries never interfere with one
// another.
type Machine struct {
	variant Variant

	// M0 only.
	fact term.Structure

	// M1/M2 only.
	baseCode   []compile.Instruction
	baseLabels map[term.Functor]int

	// mu guards lastHeapLen/lastRegs, the Stats() snapshot left by
	// the most recent successful query run on this Machine (§9
	// supplemented feature). Guarded the way trealla/prolog.go guards
	// its own mutable interpreter fields.
	mu          sync.Mutex
	lastHeapLen int
	lastRegs    int
	hasRun      bool
}

// recordRun snapshots mac2's final heap length and register high-water
// mark for the next Stats() call. Called once per query that succeeds;
// a query that fails or errors leaves the previous snapshot in place.
func (mac *Machine) recordRun(mac2 *machine.Machine) {
	mac.mu.Lock()
	defer mac.mu.Unlock()
	mac.lastHeapLen = int(mac2.Heap.Len())
	mac.lastRegs = mac2.RegisterCount()
	mac.hasRun = true
}

// NewUnification builds an M0 machine around a single fact: the
// "unification FILE" CLI mode, which accepts exactly one clause with no
// body (§6).
func NewUnification(program []term.Clause) (*Machine, error) {
	if len(program) != 1 {
		return nil, &wamerr.ShapeError{Variant: "unification", Message: "expects exactly one clause"}
	}
	c := program[0]
	if !c.IsFact() {
		return nil, &wamerr.ShapeError{Variant: "unification", Message: "expects a fact, not a rule"}
	}
	return &Machine{variant: VariantUnification, fact: c.Head}, nil
}

// NewFacts builds an M1 machine: the "facts FILE" CLI mode, a table of
// zero or more facts with no rule bodies (§6).
func NewFacts(clauses []term.Clause) (*Machine, error) {
	for _, c := range clauses {
		if !c.IsFact() {
			return nil, &wamerr.ShapeError{Variant: "facts", Message: "facts mode does not accept rule bodies: " + c.Head.Indicator().String()}
		}
	}
	code, labels := assemble(clauses)
	return &Machine{variant: VariantFacts, baseCode: code, baseLabels: labels}, nil
}

// NewFlat builds an M2 machine: the "flat FILE" CLI mode, facts and
// rules with conjunctive bodies (§6).
func NewFlat(clauses []term.Clause) (*Machine, error) {
	code, labels := assemble(clauses)
	return &Machine{variant: VariantFlat, baseCode: code, baseLabels: labels}, nil
}

// assemble compiles clauses into one combined code array and a label
// table, in source order. A functor/arity repeated by a later clause is
// not an error here the way term.NewProgram treats it: the first
// definition's label wins and the repeat's instructions are never
// emitted, matching a flat label table that is only ever set once per
// key and never re-validated (§8 scenario 6: two color/1 facts resolve
// to the first one, with no backtracking to try the second).
func assemble(clauses []term.Clause) ([]compile.Instruction, map[term.Functor]int) {
	var code []compile.Instruction
	labels := make(map[term.Functor]int, len(clauses))
	for _, c := range clauses {
		fn := c.Head.Indicator()
		if _, dup := labels[fn]; dup {
			continue
		}
		labels[fn] = len(code)
		code = append(code, compile.CompileClause(c)...)
	}
	return code, labels
}

// Variant reports which machine subset mac runs.
func (mac *Machine) Variant() Variant { return mac.variant }

// Stats reports introspection data mirroring trealla.Prolog.Stats():
// the defined predicates (sorted, empty for M0, which has no label
// table at all), and the heap length and register high-water mark left
// by the most recent successful query — zero for both until a query
// has succeeded.
type Stats struct {
	Variant       Variant
	Predicates    []string
	LastHeapLen   int
	LastRegisters int
}

func (mac *Machine) Stats() Stats {
	var names []string
	if mac.baseLabels != nil {
		names = make([]string, 0, len(mac.baseLabels))
		for _, f := range maps.Keys(mac.baseLabels) {
			names = append(names, f.String())
		}
		sort.Strings(names)
	}

	mac.mu.Lock()
	defer mac.mu.Unlock()
	return Stats{
		Variant:       mac.variant,
		Predicates:    names,
		LastHeapLen:   mac.lastHeapLen,
		LastRegisters: mac.lastRegs,
	}
}

// Reset clears the Stats() snapshot left by prior queries. It has no
// effect on future query results: every query already runs against its
// own freshly constructed heap and register file (§3's "heap cells live
// for one query" lifecycle is enforced by never reusing one across
// queries, not by explicit truncation of a shared instance), so Reset
// exists for API parity with trealla.Prolog.Clone's "get back to a known
// fresh state" contract rather than to change execution.
func (mac *Machine) Reset() {
	mac.mu.Lock()
	defer mac.mu.Unlock()
	mac.lastHeapLen = 0
	mac.lastRegs = 0
	mac.hasRun = false
}
