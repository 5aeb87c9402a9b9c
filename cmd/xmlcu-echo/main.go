// Command xmlcu-echo parses xml-echo's bracketed-string notation and
// emits the XML document it describes, per spec.md §4.15 ("echo is the
// inverse of unecho").
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/version"
	"github.com/standardbeagle/xmlcu/internal/xmlecho"
)

const progname = "xmlcu-echo"

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "emit the XML document described by an xml-echo bracketed string",
		Version: version.Info(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "expr", Aliases: []string{"e"}, Usage: "the bracketed string to echo (read from stdin if omitted)"},
			&cli.BoolFlag{Name: "no-decl", Usage: "omit the leading <?xml ...?> declaration"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		errmsg.Report(progname, "fatal", err)
		os.Exit(errmsg.ExitCode(err))
	}
}

func run(ctx *cli.Context) error {
	input := ctx.String("expr")
	if input == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		input = string(data)
	}

	if !ctx.Bool("no-decl") {
		fmt.Println(`<?xml version="1.0"?>`)
	}

	s := xmlecho.NewScanner(input)
	var stack []string

	for {
		op, ok := s.Next()
		if !ok {
			break
		}
		switch op.Kind {
		case xmlecho.OpOpen:
			newStack := s.Stack()
			common := commonPrefixLen(stack, newStack)
			for i := len(stack) - 1; i >= common; i-- {
				fmt.Printf("</%s>", stack[i])
			}
			for i := common; i < len(newStack); i++ {
				fmt.Printf("<%s", newStack[i])
				if i == len(newStack)-1 {
					names := make([]string, 0, len(op.Attrs))
					for name := range op.Attrs {
						names = append(names, name)
					}
					sort.Strings(names)
					for _, name := range names {
						fmt.Printf(" %s=%q", name, op.Attrs[name])
					}
				}
				io.WriteString(os.Stdout, ">")
			}
			stack = newStack
		case xmlecho.OpText:
			io.WriteString(os.Stdout, op.Text)
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		fmt.Printf("</%s>", stack[i])
	}
	fmt.Println()
	return nil
}

func commonPrefixLen(a, b []string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
