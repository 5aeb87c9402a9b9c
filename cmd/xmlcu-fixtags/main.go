// Command xmlcu-fixtags repairs malformed XML into a well-formed
// approximation, per spec.md's fixtags tool.
package main

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/fixtags"
	"github.com/standardbeagle/xmlcu/internal/rollback"
	"github.com/standardbeagle/xmlcu/internal/version"
)

const progname = "xmlcu-fixtags"

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "repair malformed XML into a well-formed document",
		Version: version.Info(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write the repaired document to this path instead of stdout"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		errmsg.Report(progname, "fatal", err)
		os.Exit(errmsg.ExitCode(err))
	}
}

func run(ctx *cli.Context) error {
	in, err := openInput(ctx.Args().First())
	if err != nil {
		return err
	}
	defer in.Close()

	out, commit, err := openOutput(ctx.String("output"))
	if err != nil {
		return err
	}

	r := fixtags.New(in, out)
	if err := r.Run(); err != nil {
		commit(false)
		return err
	}
	return commit(true)
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

// openOutput returns a writer and a commit func: commit(true) finalizes
// the write (renaming a rollback temp into place), commit(false) aborts
// it (unlinking the temp), per spec.md §4.13. Writing to stdout has no
// rollback temp and both paths are no-ops.
func openOutput(path string) (io.Writer, func(ok bool) error, error) {
	if path == "" {
		return os.Stdout, func(bool) error { return nil }, nil
	}

	mgr := rollback.New()
	entry, err := mgr.Open(progname, path)
	if err != nil {
		return nil, nil, err
	}
	return entry.File(), func(ok bool) error {
		if ok {
			return mgr.Commit(entry)
		}
		return mgr.Abort(entry)
	}, nil
}
