package term_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/remexre/wam-tutorial-reconstruction/internal/term"
)

func fact(name string) term.Clause {
	return term.Clause{Head: term.NewStructure(term.NewAtom(name))}
}

func TestNewProgramRejectsDuplicateFunctorArity(t *testing.T) {
	clauses := []term.Clause{fact("color"), fact("size"), fact("color")}
	_, err := term.NewProgram(clauses)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate clause")
}

func TestNewProgramAcceptsDistinctFunctorArity(t *testing.T) {
	clauses := []term.Clause{fact("red"), fact("green"), fact("blue")}
	p, err := term.NewProgram(clauses)
	require.NoError(t, err)
	require.Len(t, p.Clauses, 3)

	c, ok := p.Lookup(term.Functor{Name: term.NewAtom("green"), Arity: 0})
	require.True(t, ok)
	require.True(t, c.IsFact())
}

func TestProgramLookupMissingFunctor(t *testing.T) {
	p, err := term.NewProgram([]term.Clause{fact("red")})
	require.NoError(t, err)
	_, ok := p.Lookup(term.Functor{Name: term.NewAtom("blue"), Arity: 0})
	require.False(t, ok)
}

func TestClauseIsFactAndString(t *testing.T) {
	c := fact("red")
	require.True(t, c.IsFact())
	require.Equal(t, "red.", c.String())

	rule := term.Clause{
		Head: term.NewStructure(term.NewAtom("p"), term.NewVariable("X")),
		Body: []term.Structure{term.NewStructure(term.NewAtom("q"), term.NewVariable("X"))},
	}
	require.False(t, rule.IsFact())
	require.Equal(t, "p(X) :- q(X).", rule.String())
}
