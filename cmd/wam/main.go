// Command wam is the CLI driver for the three machine variants: each of
// "unification", "facts", and "flat" is a subcommand registered in a
// cli.CommandFactory map, mirroring Nomad's command/commands.go table.
package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/cli"

	wam "github.com/remexre/wam-tutorial-reconstruction"
	"github.com/remexre/wam-tutorial-reconstruction/internal/parser"
	"github.com/remexre/wam-tutorial-reconstruction/internal/repl"
)

const version = "0.1.0"

func main() {
	os.Exit(realMain())
}

func realMain() int {
	c := cli.NewCLI("wam", version)
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"unification": func() (cli.Command, error) {
			return &repl.Command{Name: "unification", Build: buildUnification}, nil
		},
		"facts": func() (cli.Command, error) {
			return &repl.Command{Name: "facts", Build: buildFacts}, nil
		},
		"flat": func() (cli.Command, error) {
			return &repl.Command{Name: "flat", Build: buildFlat}, nil
		},
	}

	status, err := c.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return status
}

func buildUnification(src string) (*wam.Machine, error) {
	clauses, err := parser.ParseProgram(src)
	if err != nil {
		return nil, err
	}
	return wam.NewUnification(clauses)
}

func buildFacts(src string) (*wam.Machine, error) {
	clauses, err := parser.ParseProgram(src)
	if err != nil {
		return nil, err
	}
	return wam.NewFacts(clauses)
}

func buildFlat(src string) (*wam.Machine, error) {
	clauses, err := parser.ParseProgram(src)
	if err != nil {
		return nil, err
	}
	return wam.NewFlat(clauses)
}
