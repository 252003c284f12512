package repl

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	wam "github.com/remexre/wam-tutorial-reconstruction"
)

// Command is the flag.FlagSet-backed skeleton shared by the
// unification/facts/flat subcommands: each only supplies its own
// Machine constructor and command name. It implements cli.Command
// (Help/Run/Synopsis) without importing the cli package directly, so
// package repl stays usable outside a CLI context too.
type Command struct {
	Name  string
	Build func(program string) (*wam.Machine, error)
}

// Run is the cli.Command.Run implementation: parse flags, load FILE,
// build the Machine, then either run a single -e query or start a REPL.
func (c *Command) Run(args []string) int {
	fs := flag.NewFlagSet(c.Name, flag.ContinueOnError)
	var eval string
	var quiet bool
	var verbosity int
	fs.StringVar(&eval, "e", "", "run EXPR as a single query and exit")
	fs.StringVar(&eval, "eval", "", "run EXPR as a single query and exit")
	fs.BoolVar(&quiet, "q", false, "suppress diagnostic log")
	fs.BoolVar(&quiet, "quiet", false, "suppress diagnostic log")
	fs.BoolFunc("v", "increase log verbosity by one level (repeatable)", func(string) error {
		verbosity++
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return 1
	}
	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintf(os.Stderr, "wam %s: expected exactly one FILE argument\n", c.Name)
		return 1
	}

	log := newLogger(c.Name, quiet, verbosity)

	src, err := os.ReadFile(rest[0])
	if err != nil {
		fatalf(c.Name, "reading program file: %v", err)
		return 1
	}

	mac, err := c.Build(string(src))
	if err != nil {
		fatalf(c.Name, "loading program: %v", err)
		return 1
	}

	ctx := context.Background()
	if eval != "" {
		if err := RunEval(ctx, os.Stdout, mac, eval); err != nil {
			fatalf(c.Name, "query failed: %v", err)
			return 1
		}
		return 0
	}

	r, err := New(mac, log, os.Stdout)
	if err != nil {
		fatalf(c.Name, "starting REPL: %v", err)
		return 1
	}
	defer r.Close()
	if err := r.Run(ctx); err != nil {
		fatalf(c.Name, "REPL exited: %v", err)
		return 1
	}
	return 0
}

// fatalf prints an unconditional error to stderr. -q only silences the
// diagnostic/trace logger (newLogger); it must never be the sole channel
// a fatal error is reported through, or "-q" would mean "-q and also
// swallow exit-code-1 failures silently."
func fatalf(name, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "wam %s: "+format+"\n", append([]interface{}{name}, args...)...)
}

func (c *Command) Synopsis() string {
	return fmt.Sprintf("run the %s machine against a program file", c.Name)
}

func (c *Command) Help() string {
	return strings.TrimSpace(fmt.Sprintf(`
Usage: wam %s [options] FILE

  %s

Options:
  -e, --eval EXPR   run EXPR as a single query and exit
  -q, --quiet       suppress diagnostic log
  -v                increase log verbosity by one level (repeatable)
`, c.Name, c.Synopsis()))
}

// newLogger builds the named sub-logger for a subcommand, stepping
// hclog's level down from Error toward Trace with each -v, matching the
// §6 verbosity table. -q silences logging entirely regardless of -v.
func newLogger(name string, quiet bool, verbosity int) hclog.Logger {
	level := hclog.Error
	switch {
	case quiet:
		level = hclog.Off
	case verbosity >= 4:
		level = hclog.Trace
	case verbosity == 3:
		level = hclog.Debug
	case verbosity == 2:
		level = hclog.Info
	case verbosity == 1:
		level = hclog.Warn
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  "wam",
		Level: level,
	}).Named(name)
}
