// Package parser turns the source-file grammar (quoted/unquoted atoms,
// variables, structures, facts, rules, conjunctive queries) into the
// term package's data model. It is the "external collaborator" the
// specification treats as a thin shell: no operators, no arithmetic.
package parser

import (
	"fmt"

	"github.com/remexre/wam-tutorial-reconstruction/internal/term"
)

type parser struct {
	tokens []token
	pos    int
	vars   map[string]term.Variable
}

// ParseProgram parses zero or more clauses (facts and/or rules),
// terminated by EOF.
func ParseProgram(src string) ([]term.Clause, error) {
	toks, err := newLexer(src).tokenize()
	if err != nil {
		return nil, asParseError(err)
	}
	p := &parser{tokens: toks}
	var clauses []term.Clause
	for !p.atEOF() {
		p.vars = make(map[string]term.Variable)
		c, err := p.parseClause()
		if err != nil {
			return nil, asParseError(err)
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

// ParseQuery parses a single query: a comma-separated conjunction of
// goals terminated by a period.
func ParseQuery(src string) (term.Query, error) {
	toks, err := newLexer(src).tokenize()
	if err != nil {
		return term.Query{}, asParseError(err)
	}
	p := &parser{tokens: toks, vars: make(map[string]term.Variable)}
	if p.atEOF() {
		return term.Query{}, asParseError(&incompleteError{offset: 0, msg: "empty query"})
	}
	goals, err := p.parseGoalList()
	if err != nil {
		return term.Query{}, asParseError(err)
	}
	if err := p.expect(tokPeriod); err != nil {
		return term.Query{}, asParseError(err)
	}
	if !p.atEOF() {
		return term.Query{}, asParseError(&syntaxError{offset: p.peek().offset, msg: "unexpected input after query"})
	}
	return term.Query{Goals: goals}, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) atEOF() bool {
	return p.peek().kind == tokEOF
}

func (p *parser) advance() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) error {
	t := p.peek()
	if t.kind != kind {
		return p.unexpected(t, kind)
	}
	p.advance()
	return nil
}

func (p *parser) unexpected(got token, want tokenKind) error {
	if got.kind == tokEOF {
		return &incompleteError{offset: got.offset, msg: fmt.Sprintf("unexpected end of input, expected %s", kindName(want))}
	}
	return &syntaxError{offset: got.offset, msg: fmt.Sprintf("unexpected %q, expected %s", got.text, kindName(want))}
}

func kindName(k tokenKind) string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokAtom:
		return "atom"
	case tokVariable:
		return "variable"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokPeriod:
		return "'.'"
	case tokRuleArrow:
		return "':-'"
	default:
		return "token"
	}
}

// parseClause parses "head." or "head :- goal, goal, ...."
func (p *parser) parseClause() (term.Clause, error) {
	head, err := p.parseStructure()
	if err != nil {
		return term.Clause{}, err
	}
	if p.peek().kind == tokRuleArrow {
		p.advance()
		goals, err := p.parseGoalList()
		if err != nil {
			return term.Clause{}, err
		}
		if err := p.expect(tokPeriod); err != nil {
			return term.Clause{}, err
		}
		return term.Clause{Head: head, Body: goals}, nil
	}
	if err := p.expect(tokPeriod); err != nil {
		return term.Clause{}, err
	}
	return term.Clause{Head: head}, nil
}

// parseGoalList parses a comma-separated list of structures.
func (p *parser) parseGoalList() ([]term.Structure, error) {
	var goals []term.Structure
	for {
		g, err := p.parseStructure()
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
		if p.peek().kind != tokComma {
			return goals, nil
		}
		p.advance()
	}
}

// parseStructure parses an atom optionally followed by a parenthesized,
// comma-separated argument list. An empty argument list ("foo()") and a
// bare atom ("foo") both produce the same zero-arity Structure.
func (p *parser) parseStructure() (term.Structure, error) {
	t := p.peek()
	if t.kind != tokAtom {
		return term.Structure{}, p.unexpected(t, tokAtom)
	}
	p.advance()
	functor := term.NewAtom(t.text)

	if p.peek().kind != tokLParen {
		return term.NewStructure(functor), nil
	}
	p.advance()

	if p.peek().kind == tokRParen {
		p.advance()
		return term.NewStructure(functor), nil
	}

	var args []term.Term
	for {
		arg, err := p.parseTerm()
		if err != nil {
			return term.Structure{}, err
		}
		args = append(args, arg)
		if p.peek().kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(tokRParen); err != nil {
		return term.Structure{}, err
	}
	return term.NewStructure(functor, args...), nil
}

// parseTerm parses a single argument term: a variable, the anonymous
// wildcard, or a nested structure.
func (p *parser) parseTerm() (term.Term, error) {
	t := p.peek()
	switch t.kind {
	case tokVariable:
		p.advance()
		if t.text == "_" {
			return term.Anonymous{}, nil
		}
		if v, ok := p.vars[t.text]; ok {
			return v, nil
		}
		v := term.NewVariable(t.text)
		p.vars[t.text] = v
		return v, nil
	case tokAtom:
		return p.parseStructure()
	default:
		return nil, p.unexpected(t, tokAtom)
	}
}
