// Command xmlcu-rm deletes every selected subtree from one or more XML
// files, rewriting each file in place (or streaming to stdout for "-"),
// per spec.md's rm tool and §4.12's rcm state machine under RM_OUTPUT.
package main

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/filelist"
	"github.com/standardbeagle/xmlcu/internal/pattern"
	"github.com/standardbeagle/xmlcu/internal/rcm"
	"github.com/standardbeagle/xmlcu/internal/rollback"
	"github.com/standardbeagle/xmlcu/internal/selection"
	"github.com/standardbeagle/xmlcu/internal/stdparse"
	"github.com/standardbeagle/xmlcu/internal/version"
)

const progname = "xmlcu-rm"

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "delete every selected subtree from one or more XML files",
		Version: version.Info(),
		Action:  run,
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

	mgr := rollback.New()
	stop := mgr.Watch()
	defer stop()

	for _, g := range parsed.Groups {
		for _, name := range g.Files {
			if err := rmFile(mgr, name, g.Patterns); err != nil {
				return err
			}
		}
	}
	return nil
}

// rmFile streams name through the std-parser, deleting every node the
// group's patterns select, and commits the rewrite through a rollback
// temp file ("-" streams straight to stdout with no temp).
func rmFile(mgr *rollback.Manager, name string, patterns []*pattern.CompiledPattern) error {
	in, err := openSource(name)
	if err != nil {
		return err
	}
	defer in.Close()

	out, commit, err := openDest(mgr, name)
	if err != nil {
		return err
	}

	m := rcm.New(rcm.RM_OUTPUT, rcm.REPLACE, nil, out)
	eng := selection.New(patterns)
	adapter := rcm.NewAdapter(m)

	files := []stdparse.File{{Name: name, Reader: in}}
	if err := stdparse.Run(files, eng, stdparse.ALLNODES, adapter); err != nil {
		commit(false)
		return err
	}
	return commit(true)
}

func openSource(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

func openDest(mgr *rollback.Manager, name string) (io.Writer, func(ok bool) error, error) {
	if name == "-" {
		return os.Stdout, func(bool) error { return nil }, nil
	}
	entry, err := mgr.Open(progname, name)
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
