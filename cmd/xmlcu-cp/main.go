// Command xmlcu-cp threads an insert payload into every selected
// subtree of one or more XML files, per spec.md's cp tool and §4.12's
// rcm state machine under CP_OUTPUT.
package main

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/errors"
	"github.com/standardbeagle/xmlcu/internal/filelist"
	"github.com/standardbeagle/xmlcu/internal/pattern"
	"github.com/standardbeagle/xmlcu/internal/rcm"
	"github.com/standardbeagle/xmlcu/internal/rollback"
	"github.com/standardbeagle/xmlcu/internal/selection"
	"github.com/standardbeagle/xmlcu/internal/stdparse"
	"github.com/standardbeagle/xmlcu/internal/tempcollect"
	"github.com/standardbeagle/xmlcu/internal/version"
)

const progname = "xmlcu-cp"

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "insert a payload at every selected subtree of one or more XML files",
		Version: version.Info(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "insert", Aliases: []string{"i"}, Usage: "literal text to insert"},
			&cli.StringFlag{Name: "insert-file", Usage: "read the insert payload from this file instead of --insert"},
			&cli.StringFlag{Name: "position", Aliases: []string{"p"}, Value: "prepend", Usage: "prepend, replace, or append relative to the selection"},
			&cli.BoolFlag{Name: "multi", Aliases: []string{"m"}, Usage: "insert at every selection instead of only the first"},
			&cli.BoolFlag{Name: "wfxml", Usage: "treat the insert as well-formed XML; REPLACE then drops the selected element's own tags"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		errmsg.Report(progname, "fatal", err)
		os.Exit(errmsg.ExitCode(err))
	}
}

func run(ctx *cli.Context) error {
	pos, err := parsePosition(ctx.String("position"))
	if err != nil {
		return err
	}

	payload, err := loadInsert(ctx.String("insert"), ctx.String("insert-file"))
	if err != nil {
		return err
	}

	flags := rcm.CP_OUTPUT
	if ctx.Bool("multi") {
		flags |= rcm.CP_MULTI
	}
	if ctx.Bool("wfxml") {
		if err := rcm.ParseInsertAsXML(payload); err != nil {
			return errors.NewParseError("insert", 0, 0, 0, 0, err)
		}
		flags |= rcm.CP_WFXML
	}

	parsed, err := filelist.Parse(ctx.Args().Slice())
	if err != nil {
		return err
	}

	mgr := rollback.New()
	stop := mgr.Watch()
	defer stop()

	for _, g := range parsed.Groups {
		for _, name := range g.Files {
			if err := cpFile(mgr, name, g.Patterns, flags, pos, payload); err != nil {
				return err
			}
		}
	}
	return nil
}

func parsePosition(s string) (rcm.Position, error) {
	switch s {
	case "prepend":
		return rcm.PREPEND, nil
	case "replace":
		return rcm.REPLACE, nil
	case "append":
		return rcm.APPEND, nil
	default:
		return 0, errors.NewUsageError("--position must be prepend, replace, or append, got %q", s)
	}
}

func loadInsert(literal, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return []byte(literal), nil
}

func cpFile(mgr *rollback.Manager, name string, patterns []*pattern.CompiledPattern, flags rcm.Flags, pos rcm.Position, payload []byte) error {
	in, err := openSource(name)
	if err != nil {
		return err
	}
	defer in.Close()

	out, commit, err := openDest(mgr, name)
	if err != nil {
		return err
	}

	coll := tempcollect.New(os.TempDir(), 1<<20, 1<<30)
	defer coll.Close()
	if _, err := coll.Write(payload); err != nil {
		commit(false)
		return err
	}

	m := rcm.New(flags, pos, coll, out)
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
