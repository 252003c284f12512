package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/remexre/wam-tutorial-reconstruction/internal/parser"
	"github.com/remexre/wam-tutorial-reconstruction/internal/term"
)

func TestParseProgramFactsAndRule(t *testing.T) {
	clauses, err := parser.ParseProgram(`
		append(nil, L, L).
		append(cons(H, T), L2, cons(H, L3)) :- append(T, L2, L3).
	`)
	require.NoError(t, err)
	require.Len(t, clauses, 2)
	require.True(t, clauses[0].IsFact())
	require.False(t, clauses[1].IsFact())
	require.Equal(t, "append/3", clauses[0].Head.Indicator().String())
	require.Len(t, clauses[1].Body, 1)
}

func TestParseBareAtomAndEmptyArgListAreEquivalent(t *testing.T) {
	a, err := parser.ParseProgram(`foo.`)
	require.NoError(t, err)
	b, err := parser.ParseProgram(`foo().`)
	require.NoError(t, err)
	require.Equal(t, a[0].Head, b[0].Head)
}

func TestParseQuerySharesBodyVariableAcrossGoals(t *testing.T) {
	q, err := parser.ParseQuery(`p(X), q(X).`)
	require.NoError(t, err)
	require.Len(t, q.Goals, 2)

	xInP, ok := q.Goals[0].Args[0].(term.Variable)
	require.True(t, ok)
	xInQ, ok := q.Goals[1].Args[0].(term.Variable)
	require.True(t, ok)
	require.True(t, xInP.Equal(xInQ))
}

func TestParseQueryAnonymousOccurrencesAreDistinct(t *testing.T) {
	q, err := parser.ParseQuery(`p(_, _).`)
	require.NoError(t, err)
	_, ok0 := q.Goals[0].Args[0].(term.Anonymous)
	_, ok1 := q.Goals[0].Args[1].(term.Anonymous)
	require.True(t, ok0)
	require.True(t, ok1)
}

func TestParseAnchorScenarioOne(t *testing.T) {
	clauses, err := parser.ParseProgram(`p(f(X), h(Y, f(a)), Y).`)
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	require.True(t, clauses[0].IsFact())

	q, err := parser.ParseQuery(`p(Z, h(Z, W), f(W)).`)
	require.NoError(t, err)
	require.Len(t, q.Goals, 1)
	require.Equal(t, "p/3", q.Goals[0].Indicator().String())
}

func TestParseQueryMissingPeriodIsIncomplete(t *testing.T) {
	_, err := parser.ParseQuery(`p(X)`)
	require.Error(t, err)
	require.True(t, parser.IsIncomplete(err))
}

func TestParseQueryTrailingGarbageIsSyntaxError(t *testing.T) {
	_, err := parser.ParseQuery(`p(X). garbage`)
	require.Error(t, err)
	require.False(t, parser.IsIncomplete(err))
}

func TestParseQueryUnclosedParenIsIncomplete(t *testing.T) {
	_, err := parser.ParseQuery(`p(X`)
	require.Error(t, err)
	require.True(t, parser.IsIncomplete(err))
}

func TestParseQueryEmptyInputIsIncomplete(t *testing.T) {
	_, err := parser.ParseQuery(``)
	require.Error(t, err)
	require.True(t, parser.IsIncomplete(err))
}

func TestParseProgramRejectsBareVariableAsClauseHead(t *testing.T) {
	_, err := parser.ParseProgram(`X.`)
	require.Error(t, err)
}

func TestParseQuotedAtomWithEscapes(t *testing.T) {
	q, err := parser.ParseQuery(`'hello\nworld'.`)
	require.NoError(t, err)
	require.Equal(t, "hello\nworld", q.Goals[0].Functor.Text())
}

func TestParseQuotedAtomContinuationEscapeDropsWhitespace(t *testing.T) {
	q, err := parser.ParseQuery("'hello\\c   \tworld'.")
	require.NoError(t, err)
	require.Equal(t, "helloworld", q.Goals[0].Functor.Text())
}

// TestParseProgramRoundTrip is the universal-law property test for the
// parser: printing a parsed clause and re-parsing the result must yield
// an equal clause, so String() and ParseProgram agree on syntax.
func TestParseProgramRoundTrip(t *testing.T) {
	clauses, err := parser.ParseProgram(`
		append(nil, L, L).
		append(cons(H, T), L2, cons(H, L3)) :- append(T, L2, L3).
	`)
	require.NoError(t, err)

	var src strings.Builder
	for _, c := range clauses {
		src.WriteString(c.String())
		src.WriteString("\n")
	}

	reparsed, err := parser.ParseProgram(src.String())
	require.NoError(t, err)
	require.Len(t, reparsed, len(clauses))
	for i := range clauses {
		require.Equal(t, clauses[i].String(), reparsed[i].String())
	}
}

// TestParseQueryRoundTrip is the query-side half of the same law: a
// query's printed form must re-parse to a query with an identical
// printed form.
func TestParseQueryRoundTrip(t *testing.T) {
	q, err := parser.ParseQuery(`p(Z, h(Z, W), f(W)).`)
	require.NoError(t, err)

	reparsed, err := parser.ParseQuery(q.String() + "\n")
	require.NoError(t, err)
	require.Equal(t, q.String(), reparsed.String())
}

func TestParseQuotedAtomUnterminatedIsIncomplete(t *testing.T) {
	_, err := parser.ParseQuery(`'hello`)
	require.Error(t, err)
	require.True(t, parser.IsIncomplete(err))
}
