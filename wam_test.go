package wam_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	wam "github.com/remexre/wam-tutorial-reconstruction"
	"github.com/remexre/wam-tutorial-reconstruction/internal/parser"
	"github.com/remexre/wam-tutorial-reconstruction/internal/wamerr"
)

func bindingValue(t *testing.T, ans wam.Answer, name string) string {
	t.Helper()
	for _, b := range ans.Vars() {
		if b.Name == name {
			return b.Value.String()
		}
	}
	t.Fatalf("answer has no binding named %q: %s", name, ans.String())
	return ""
}

// TestAnchorScenarioOne is spec scenario 1, the anchor unification test:
// p(f(X), h(Y, f(a)), Y). unified with p(Z, h(Z, W), f(W)). must resolve
// W = f(a) and Z = f(f(a)).
func TestAnchorScenarioOne(t *testing.T) {
	clauses, err := parser.ParseProgram(`p(f(X), h(Y, f(a)), Y).`)
	require.NoError(t, err)
	mac, err := wam.NewUnification(clauses)
	require.NoError(t, err)

	q, err := parser.ParseQuery(`p(Z, h(Z, W), f(W)).`)
	require.NoError(t, err)

	ans, err := mac.QueryOnce(context.Background(), q)
	require.NoError(t, err)

	require.Equal(t, "f(a)", bindingValue(t, ans, "W"))
	require.Equal(t, "f(f(a))", bindingValue(t, ans, "Z"))
}

// TestScenarioTwoSwappedVariant is scenario 2: scenario one with the
// stored term and the query swapped, which must produce the equivalent
// answer.
func TestScenarioTwoSwappedVariant(t *testing.T) {
	clauses, err := parser.ParseProgram(`p(Z, h(Z, W), f(W)).`)
	require.NoError(t, err)
	mac, err := wam.NewUnification(clauses)
	require.NoError(t, err)

	q, err := parser.ParseQuery(`p(f(X), h(Y, f(a)), Y).`)
	require.NoError(t, err)

	ans, err := mac.QueryOnce(context.Background(), q)
	require.NoError(t, err)

	require.Equal(t, "f(a)", bindingValue(t, ans, "X"))
	require.Equal(t, "f(f(a))", bindingValue(t, ans, "Y"))
	require.Equal(t, "f(f(a))", bindingValue(t, ans, "Z"))
	require.Equal(t, "f(a)", bindingValue(t, ans, "W"))
}

// TestAnchorScenarioThreeAppend is spec scenario 3, the anchor M2 test:
// append/3 defined by a base fact and a recursive rule. The grammar here
// has no numeric literals (§9: atoms, variables, and compounds only), so
// the list elements are atoms "a"/"b" standing in for the spec's 1/2.
func TestAnchorScenarioThreeAppend(t *testing.T) {
	clauses, err := parser.ParseProgram(`
		append(nil, L, L).
		append(cons(H, T), L2, cons(H, L3)) :- append(T, L2, L3).
	`)
	require.NoError(t, err)
	mac, err := wam.NewFlat(clauses)
	require.NoError(t, err)

	q, err := parser.ParseQuery(`append(cons(a, nil), cons(b, nil), X).`)
	require.NoError(t, err)

	ans, err := mac.QueryOnce(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, "cons(a, cons(b, nil))", bindingValue(t, ans, "X"))
}

// TestScenarioFourSingleStoredTerm is scenario 4: the unification
// machine's stored fact need not be a predicate at all, just a term.
func TestScenarioFourSingleStoredTerm(t *testing.T) {
	clauses, err := parser.ParseProgram(`f(X, g(Y)).`)
	require.NoError(t, err)
	mac, err := wam.NewUnification(clauses)
	require.NoError(t, err)

	q, err := parser.ParseQuery(`f(a, g(b)).`)
	require.NoError(t, err)

	ans, err := mac.QueryOnce(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, "a", bindingValue(t, ans, "X"))
	require.Equal(t, "b", bindingValue(t, ans, "Y"))
}

// TestScenarioFiveFactMismatchFails is scenario 5: an M1 fact table that
// simply does not unify with the query goal reports no answer, not an
// error.
func TestScenarioFiveFactMismatchFails(t *testing.T) {
	clauses, err := parser.ParseProgram(`p(a).`)
	require.NoError(t, err)
	mac, err := wam.NewFacts(clauses)
	require.NoError(t, err)

	q, err := parser.ParseQuery(`p(b).`)
	require.NoError(t, err)

	_, err = mac.QueryOnce(context.Background(), q)
	require.ErrorIs(t, err, wamerr.ErrNoAnswers)
}

// TestScenarioSixDuplicateFactFirstWins is scenario 6: two facts sharing
// a functor/arity both load successfully (no duplicate-clause rejection
// in facts/flat mode, unlike term.NewProgram's strict invariant), and
// since there is no backtracking, the query resolves to the first one
// only.
func TestScenarioSixDuplicateFactFirstWins(t *testing.T) {
	clauses, err := parser.ParseProgram(`
		color(red).
		color(green).
	`)
	require.NoError(t, err)
	mac, err := wam.NewFacts(clauses)
	require.NoError(t, err)

	q, err := parser.ParseQuery(`color(X).`)
	require.NoError(t, err)

	ans, err := mac.QueryOnce(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, "red", bindingValue(t, ans, "X"))
}
