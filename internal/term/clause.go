package term

import (
	"fmt"
	"strings"
)

// Clause is a fact (empty Body) or a rule (head implied by the conjunction
// of Body goals).
type Clause struct {
	Head Structure
	Body []Structure
}

// IsFact reports whether c has an empty body.
func (c Clause) IsFact() bool {
	return len(c.Body) == 0
}

// String returns the Prolog source representation of c.
func (c Clause) String() string {
	if c.IsFact() {
		return c.Head.String() + "."
	}
	goals := make([]string, len(c.Body))
	for i, g := range c.Body {
		goals[i] = g.String()
	}
	return c.Head.String() + " :- " + strings.Join(goals, ", ") + "."
}

// Program is an ordered sequence of clauses, at most one per
// functor/arity: no disjunction, no clause indexing.
type Program struct {
	Clauses []Clause
	byFunc  map[Functor]int
}

// NewProgram builds a Program from clauses, enforcing the at-most-one-
// clause-per-functor/arity invariant.
func NewProgram(clauses []Clause) (Program, error) {
	p := Program{
		Clauses: clauses,
		byFunc:  make(map[Functor]int, len(clauses)),
	}
	for i, c := range clauses {
		fn := c.Head.Indicator()
		if prev, ok := p.byFunc[fn]; ok {
			return Program{}, fmt.Errorf("duplicate clause for %s (first defined at clause %d, again at clause %d)", fn, prev, i)
		}
		p.byFunc[fn] = i
	}
	return p, nil
}

// Lookup returns the clause defining fn, if any.
func (p Program) Lookup(fn Functor) (Clause, bool) {
	i, ok := p.byFunc[fn]
	if !ok {
		return Clause{}, false
	}
	return p.Clauses[i], true
}

// Query is an ordered sequence of goals interpreted as a conjunction.
type Query struct {
	Goals []Structure
}

// String returns the Prolog source representation of q.
func (q Query) String() string {
	goals := make([]string, len(q.Goals))
	for i, g := range q.Goals {
		goals[i] = g.String()
	}
	return strings.Join(goals, ", ") + "."
}
