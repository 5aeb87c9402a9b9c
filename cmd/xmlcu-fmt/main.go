// Command xmlcu-fmt reindents one or more XML documents, per spec.md's
// fmt tool: elements containing only text stay on one line, elements
// containing child elements break their closing tag onto its own
// indented line.
package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/filelist"
	"github.com/standardbeagle/xmlcu/internal/stdparse"
	"github.com/standardbeagle/xmlcu/internal/version"
	"github.com/standardbeagle/xmlcu/internal/xmlfmt"
)

const progname = "xmlcu-fmt"

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "reindent an XML document by nesting depth",
		Version: version.Info(),
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "indent", Aliases: []string{"i"}, Value: 2, Usage: "spaces per indent level"},
			&cli.BoolFlag{Name: "tabs", Aliases: []string{"t"}, Usage: "indent with tabs instead of spaces"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		errmsg.Report(progname, "fatal", err)
		os.Exit(errmsg.ExitCode(err))
	}
}

func run(ctx *cli.Context) error {
	parsed, err := filelist.Parse(ctx.Args().Slice())
	if err != nil {
		return err
	}
	files, closers, err := stdparse.OpenFiles(parsed.AllFiles())
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	if err != nil {
		return err
	}

	opts := xmlfmt.Options{IndentWidth: ctx.Int("indent"), UseTabs: ctx.Bool("tabs")}
	for _, f := range files {
		if err := xmlfmt.Reindent(f.Reader, os.Stdout, opts); err != nil {
			return err
		}
	}
	return nil
}
