// Command xmlcu-cat streams one or more XML documents, emitting every
// selected subtree (or the whole document, if no path-expression is
// given) to stdout, per spec.md's cat tool.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/filelist"
	"github.com/standardbeagle/xmlcu/internal/pattern"
	"github.com/standardbeagle/xmlcu/internal/selection"
	"github.com/standardbeagle/xmlcu/internal/stdparse"
	"github.com/standardbeagle/xmlcu/internal/version"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

const progname = "xmlcu-cat"

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "concatenate and stream XML documents, by selected subtree",
		Version: version.Info(),
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "skip unreadable/unparseable files instead of reporting them"},
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

	var allPatterns []*pattern.CompiledPattern
	for _, g := range parsed.Groups {
		allPatterns = append(allPatterns, g.Patterns...)
	}

	flags := stdparse.MIN1FILE
	if ctx.Bool("quiet") {
		flags |= stdparse.QUIET
	}
	if len(allPatterns) == 0 {
		flags |= stdparse.ALLNODES
	}

	eng := selection.New(allPatterns)
	c := &catConsumer{w: os.Stdout}
	return stdparse.Run(files, eng, flags, c)
}

// catConsumer reconstructs verbatim-ish XML for every delivered event;
// it does not attempt to preserve the source's exact whitespace (the
// std-parser's selection layer does not retain it), only a well-formed
// re-serialization of the selected structure, matching spec.md's
// description of cat as a streaming re-emitter rather than a byte-exact
// copier (that is fixtags's and the raw rcm passthrough path's job).
type catConsumer struct {
	w        io.Writer
	tagStack []string
}

func (c *catConsumer) StartFile(name string) bool { return true }
func (c *catConsumer) EndFile(name string) bool   { return true }

func (c *catConsumer) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	name := path[len(path)-1]
	c.tagStack = append(c.tagStack, name)
	fmt.Fprintf(c.w, "<%s", name)
	if attrs != nil {
		for _, a := range attrs.All() {
			fmt.Fprintf(c.w, " %s=%q", a.Name, a.Value)
		}
	}
	io.WriteString(c.w, ">")
	return xmlevent.OK
}

// EndTag's path argument is already popped to the parent's path by the
// time this fires (per stdparse's doc comment), so the closing tag's
// own name comes off the stack pushed in StartTag, not from path.
func (c *catConsumer) EndTag(path []string, selected bool) xmlevent.Result {
	if len(c.tagStack) == 0 {
		return xmlevent.OK
	}
	n := len(c.tagStack) - 1
	name := c.tagStack[n]
	c.tagStack = c.tagStack[:n]
	fmt.Fprintf(c.w, "</%s>", name)
	return xmlevent.OK
}

func (c *catConsumer) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	io.WriteString(c.w, string(text))
	return xmlevent.OK
}

func (c *catConsumer) Comment(path []string, text []byte) xmlevent.Result {
	fmt.Fprintf(c.w, "<!--%s-->", string(text))
	return xmlevent.OK
}

func (c *catConsumer) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	fmt.Fprintf(c.w, "<?%s %s?>", target, string(text))
	return xmlevent.OK
}

func (c *catConsumer) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	return xmlevent.OK
}
