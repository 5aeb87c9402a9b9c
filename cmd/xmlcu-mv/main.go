// Command xmlcu-mv relocates a selected subtree from one XML file to a
// position in another: it captures the source selection's bytes,
// threads them into the destination via the same rcm machinery xmlcu-cp
// uses, then deletes the original with xmlcu-rm's RM_OUTPUT, per
// spec.md's mv tool (built from §4.12's cp/rm primitives, since the
// distilled spec names mv only as a combination of the two).
package main

import (
	"fmt"
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
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

const progname = "xmlcu-mv"

func main() {
	app := &cli.App{
		Name:      progname,
		Usage:     "move a selected subtree from one XML file to a position in another",
		Version:   version.Info(),
		ArgsUsage: "SRC :XPATH DST :XPATH...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "position", Aliases: []string{"p"}, Value: "append", Usage: "prepend, replace, or append relative to the destination selection"},
			&cli.BoolFlag{Name: "multi", Aliases: []string{"m"}, Usage: "insert at every destination selection instead of only the first"},
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

	parsed, err := filelist.Parse(ctx.Args().Slice())
	if err != nil {
		return err
	}
	if len(parsed.Groups) < 2 {
		return errors.NewUsageError("xmlcu-mv requires a source group and at least one destination group")
	}
	src := parsed.Groups[0]
	dests := parsed.Groups[1:]
	if len(src.Files) != 1 {
		return errors.NewUsageError("xmlcu-mv's source group must name exactly one file, got %d", len(src.Files))
	}

	mgr := rollback.New()
	stop := mgr.Watch()
	defer stop()

	payload, err := capture(src.Files[0], src.Patterns)
	if err != nil {
		return err
	}
	if payload.Len() == 0 {
		return errors.NewUsageError("no node in %s matched the source selection", src.Files[0])
	}
	defer payload.Close()

	flags := rcm.CP_OUTPUT | rcm.CP_WFXML
	if ctx.Bool("multi") {
		flags |= rcm.CP_MULTI
	}

	for _, g := range dests {
		for _, name := range g.Files {
			if err := insertAt(mgr, name, g.Patterns, flags, pos, payload); err != nil {
				return err
			}
		}
	}

	return deleteSelection(mgr, src.Files[0], src.Patterns)
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

// capture streams name through the std-parser, delivering only the
// nodes patterns select (no ALLNODES), and reconstructs their raw bytes
// into a spillable Collector for later reinsertion elsewhere.
func capture(name string, patterns []*pattern.CompiledPattern) (*tempcollect.Collector, error) {
	in, err := openSource(name)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	coll := tempcollect.New(os.TempDir(), 1<<20, 1<<30)
	c := &captureConsumer{coll: coll}
	eng := selection.New(patterns)
	files := []stdparse.File{{Name: name, Reader: in}}
	if err := stdparse.Run(files, eng, 0, c); err != nil {
		coll.Close()
		return nil, err
	}
	return coll, nil
}

type captureConsumer struct {
	coll     *tempcollect.Collector
	tagStack []string
}

func (c *captureConsumer) StartFile(name string) bool { return true }
func (c *captureConsumer) EndFile(name string) bool   { return true }

func (c *captureConsumer) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	name := ""
	if len(path) > 0 {
		name = path[len(path)-1]
	}
	c.tagStack = append(c.tagStack, name)

	var b []byte
	b = append(b, '<')
	b = append(b, name...)
	if attrs != nil {
		for _, a := range attrs.All() {
			b = append(b, fmt.Sprintf(" %s=%q", a.Name, a.Value)...)
		}
	}
	b = append(b, '>')
	_, _ = c.coll.Write(b)
	return xmlevent.OK
}

// EndTag's path argument is already popped to the parent's path, so the
// closing tag's own name comes off the stack pushed in StartTag.
func (c *captureConsumer) EndTag(path []string, selected bool) xmlevent.Result {
	if len(c.tagStack) == 0 {
		return xmlevent.OK
	}
	n := len(c.tagStack) - 1
	name := c.tagStack[n]
	c.tagStack = c.tagStack[:n]
	_, _ = c.coll.Write([]byte(fmt.Sprintf("</%s>", name)))
	return xmlevent.OK
}

func (c *captureConsumer) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	_, _ = c.coll.Write(text)
	return xmlevent.OK
}

func (c *captureConsumer) Comment(path []string, text []byte) xmlevent.Result {
	_, _ = c.coll.Write([]byte(fmt.Sprintf("<!--%s-->", text)))
	return xmlevent.OK
}

func (c *captureConsumer) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	_, _ = c.coll.Write([]byte(fmt.Sprintf("<?%s %s?>", target, text)))
	return xmlevent.OK
}

func (c *captureConsumer) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	return xmlevent.OK
}

func insertAt(mgr *rollback.Manager, name string, patterns []*pattern.CompiledPattern, flags rcm.Flags, pos rcm.Position, payload *tempcollect.Collector) error {
	in, err := openSource(name)
	if err != nil {
		return err
	}
	defer in.Close()

	out, commit, err := openDest(mgr, name)
	if err != nil {
		return err
	}

	m := rcm.New(flags, pos, payload, out)
	eng := selection.New(patterns)
	adapter := rcm.NewAdapter(m)

	files := []stdparse.File{{Name: name, Reader: in}}
	if err := stdparse.Run(files, eng, stdparse.ALLNODES, adapter); err != nil {
		commit(false)
		return err
	}
	return commit(true)
}

func deleteSelection(mgr *rollback.Manager, name string, patterns []*pattern.CompiledPattern) error {
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
