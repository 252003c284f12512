// Package repl implements the §6 interactive driver: the "?- " / "   "
// prompt protocol, answer printing, and the read-eval-print loop shared
// by all three CLI subcommands. It is a thin shell around
// github.com/chzyer/readline and a wam.Machine — all parsing and
// execution logic lives in internal/parser and the wam package proper.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/hashicorp/go-hclog"

	wam "github.com/remexre/wam-tutorial-reconstruction"
	"github.com/remexre/wam-tutorial-reconstruction/internal/parser"
	"github.com/remexre/wam-tutorial-reconstruction/internal/term"
)

// Prompt is the REPL's "new query" prompt; Continuation is printed
// instead once a parse has started but not yet finished, per §6.
const (
	Prompt       = "?- "
	Continuation = "   "
)

// REPL drives one interactive session against a single Machine.
type REPL struct {
	Machine *wam.Machine
	Log     hclog.Logger
	Out     io.Writer

	rl *readline.Instance
}

// New builds a REPL reading from an interactive terminal (history and
// line editing via readline) and writing answers to out.
func New(mac *wam.Machine, log hclog.Logger, out io.Writer) (*REPL, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      Prompt,
		Stdout:      out,
		HistoryFile: "",
	})
	if err != nil {
		return nil, fmt.Errorf("wam: opening readline: %w", err)
	}
	return &REPL{Machine: mac, Log: log, Out: out, rl: rl}, nil
}

// Close releases the underlying line editor.
func (r *REPL) Close() error { return r.rl.Close() }

// Run loops reading queries until EOF, printing each answer set per §6,
// and returns nil on a clean EOF exit. An interrupt discards the
// partially typed query and keeps the loop going. ctx governs
// each individual query's execution, not the loop itself.
func (r *REPL) Run(ctx context.Context) error {
	var buf strings.Builder
	for {
		prompt := Prompt
		if buf.Len() > 0 {
			prompt = Continuation
		}
		r.rl.SetPrompt(prompt)

		line, err := r.rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			buf.Reset()
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		buf.WriteString(line)
		buf.WriteByte('\n')

		q, perr := parser.ParseQuery(buf.String())
		if perr != nil {
			if parser.IsIncomplete(perr) {
				continue
			}
			fmt.Fprintln(r.Out, perr.Error())
			buf.Reset()
			continue
		}
		buf.Reset()

		r.Log.Debug("running query", "query", q.String())
		if err := PrintAnswers(ctx, r.Out, r.Machine, q); err != nil {
			// A typed error value (undefined predicate, shape mismatch) must
			// reach the user even under -q, which only silences the
			// diagnostic logger below, not query-failure reporting.
			fmt.Fprintln(os.Stderr, err.Error())
		}
	}
}

// PrintAnswers runs q against mac and renders its answer set per §6: an
// answer's own bindings joined by ",\n" (or "true" for a variable-free
// success), successive answers separated by ";\n", a trailing "." once
// the set is exhausted, or "false." if the set was empty. Every WAM
// variant here produces at most one answer, but the loop is written
// against the general Query/Answer iterator so a future backtracking
// variant needs no change here.
func PrintAnswers(ctx context.Context, w io.Writer, mac *wam.Machine, q term.Query) error {
	query := mac.NewQuery(q)
	defer query.Close()

	n := 0
	for query.Next(ctx) {
		if n > 0 {
			fmt.Fprint(w, ";\n")
		}
		fmt.Fprint(w, query.Current().String())
		n++
	}

	if err := query.Err(); err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(w, "false.")
		return nil
	}
	fmt.Fprintln(w, ".")
	return nil
}

// RunEval parses and runs a single -e/--eval expression and prints its
// answer set. A query with no solutions prints "false." and returns a
// nil error: per §6's exit-code table, that is a normal outcome, not a
// fatal one.
func RunEval(ctx context.Context, w io.Writer, mac *wam.Machine, expr string) error {
	q, err := parser.ParseQuery(expr)
	if err != nil {
		return err
	}
	return PrintAnswers(ctx, w, mac, q)
}
