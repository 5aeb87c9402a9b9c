// Command xmlcu-strings prints the textual content (chardata and
// attribute values) of one or more XML documents, the XML analogue of
// strings(1)'s "find the readable text" sweep.
package main

import (
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/filelist"
	"github.com/standardbeagle/xmlcu/internal/selection"
	"github.com/standardbeagle/xmlcu/internal/stdparse"
	"github.com/standardbeagle/xmlcu/internal/version"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

const progname = "xmlcu-strings"

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "display textual strings in FILE(s)",
		Version: version.Info(),
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-squeeze", Usage: "print chardata verbatim instead of collapsing whitespace runs"},
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

	squeeze := !ctx.Bool("no-squeeze")
	for _, f := range files {
		c := &stringsConsumer{w: os.Stdout, squeeze: squeeze}
		eng := selection.New(parsed.PatternsFor(f.Name))
		if err := stdparse.Run([]stdparse.File{f}, eng, stdparse.ALLNODES, c); err != nil {
			return err
		}
	}
	return nil
}

// stringsConsumer prints each chardata/attribute run it sees, splitting
// on a trailing newline whenever a tag boundary follows text it just
// printed, so consecutive elements don't run their text together.
type stringsConsumer struct {
	w        *os.File
	squeeze  bool
	depth    int
	pending  bool // a newline is owed before the next tag boundary
}

func (c *stringsConsumer) StartFile(name string) bool { return true }
func (c *stringsConsumer) EndFile(name string) bool   { return true }

func (c *stringsConsumer) splitIfPending() {
	if c.pending {
		c.w.WriteString("\n")
		c.pending = false
	}
}

func (c *stringsConsumer) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	c.depth++
	c.splitIfPending()
	return xmlevent.OK
}

func (c *stringsConsumer) EndTag(path []string, selected bool) xmlevent.Result {
	c.depth--
	c.splitIfPending()
	return xmlevent.OK
}

func (c *stringsConsumer) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	if c.depth == 0 {
		return xmlevent.OK
	}
	s := string(text)
	if c.squeeze {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			return xmlevent.OK
		}
	}
	c.w.WriteString(s)
	c.pending = true
	return xmlevent.OK
}

func (c *stringsConsumer) Comment(path []string, text []byte) xmlevent.Result { return xmlevent.OK }
func (c *stringsConsumer) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	return xmlevent.OK
}

func (c *stringsConsumer) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	if c.depth == 0 {
		return xmlevent.OK
	}
	c.w.WriteString(value)
	c.pending = true
	return xmlevent.OK
}
