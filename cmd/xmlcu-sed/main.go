// Command xmlcu-sed applies a sed-style "s/pattern/replacement/flags"
// substitution to the character data of selected elements, reconstructing
// the rest of the document unchanged, per spec.md §8's sed scenario.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/cbuf"
	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/errors"
	"github.com/standardbeagle/xmlcu/internal/filelist"
	"github.com/standardbeagle/xmlcu/internal/leafparse"
	"github.com/standardbeagle/xmlcu/internal/sedscript"
	"github.com/standardbeagle/xmlcu/internal/selection"
	"github.com/standardbeagle/xmlcu/internal/stdparse"
	"github.com/standardbeagle/xmlcu/internal/version"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

const progname = "xmlcu-sed"

func main() {
	app := &cli.App{
		Name:      progname,
		Usage:     "substitute text within selected elements of an XML stream",
		Version:   version.Info(),
		ArgsUsage: "SCRIPT [FILE [:XPATH]...]...",
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
	args := ctx.Args().Slice()
	if len(args) == 0 {
		return errors.NewUsageError("xmlcu-sed requires a script argument")
	}
	subst, err := sedscript.Parse(args[0])
	if err != nil {
		return err
	}

	parsed, err := filelist.Parse(args[1:])
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

	flags := stdparse.ALLNODES
	if ctx.Bool("quiet") {
		flags |= stdparse.QUIET
	}

	for _, f := range files {
		patterns := parsed.PatternsFor(f.Name)
		eng := selection.New(patterns)
		// No path-expression restricts substitution to a subtree;
		// an unqualified script applies to the whole document, matching
		// plain sed's behavior rather than selection.Engine's "empty
		// pattern set selects nothing" rule (meant for ALLNODES-style
		// traversal flags, not for a tool whose whole point is editing
		// text that selection would otherwise gate).
		c := &sedConsumer{w: os.Stdout, subst: subst, scratch: cbuf.New("sed", 256, 64<<20), alwaysApply: len(patterns) == 0}
		walker := leafparse.NewWalker(leafparse.PRE_OPEN|leafparse.PRE_CLOSE, c)
		if err := stdparse.Run([]stdparse.File{f}, eng, flags, walker.AsStdparseConsumer()); err != nil {
			return err
		}
	}
	return nil
}

// sedConsumer reconstructs every tag verbatim and routes each leaf's text
// through subst whenever the innermost currently-open element is active
// in the selection, tracked via its own stack since EndTag's selected
// argument reports this tag's own verdict, read here before the pop that
// would otherwise make the parent's state indistinguishable from it.
type sedConsumer struct {
	w           io.Writer
	subst       *sedscript.Substitution
	scratch     *cbuf.Buffer
	alwaysApply bool
	tagStack    []string
	selStack    []bool
}

func (c *sedConsumer) StartFile(name string) bool { return true }
func (c *sedConsumer) EndFile(name string) bool   { return true }

func (c *sedConsumer) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	name := ""
	if len(path) > 0 {
		name = path[len(path)-1]
	}
	c.tagStack = append(c.tagStack, name)
	c.selStack = append(c.selStack, selected)

	fmt.Fprintf(c.w, "<%s", name)
	if attrs != nil {
		for _, a := range attrs.All() {
			fmt.Fprintf(c.w, " %s=%q", a.Name, a.Value)
		}
	}
	io.WriteString(c.w, ">")
	return xmlevent.OK
}

func (c *sedConsumer) EndTag(path []string, selected bool) xmlevent.Result {
	if len(c.tagStack) == 0 {
		return xmlevent.OK
	}
	n := len(c.tagStack) - 1
	name := c.tagStack[n]
	c.tagStack = c.tagStack[:n]
	c.selStack = c.selStack[:n]
	fmt.Fprintf(c.w, "</%s>", name)
	return xmlevent.OK
}

// CharData is never invoked: leafparse.Walker intercepts raw chardata
// itself and reports it through LeafNode instead. Required only to
// satisfy leafparse.LeafConsumer's embedded stdparse.Consumer.
func (c *sedConsumer) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	return xmlevent.OK
}

func (c *sedConsumer) Comment(path []string, text []byte) xmlevent.Result {
	fmt.Fprintf(c.w, "<!--%s-->", text)
	return xmlevent.OK
}

func (c *sedConsumer) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	fmt.Fprintf(c.w, "<?%s %s?>", target, text)
	return xmlevent.OK
}

func (c *sedConsumer) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	return xmlevent.OK
}

// LeafNode fires once per maximal chardata slot, with the innermost
// open element (if any) still on top of selStack, per leafparse's
// PRE_OPEN/PRE_CLOSE flush timing relative to this consumer's own
// StartTag/EndTag calls.
func (c *sedConsumer) LeafNode(path string, value string) xmlevent.Result {
	selected := c.alwaysApply
	if n := len(c.selStack); n > 0 {
		selected = selected || c.selStack[n-1]
	}
	if selected {
		value = c.subst.Apply(value)
	}

	c.scratch.Reset()
	_ = c.scratch.AppendEntityEncoded(value)
	io.WriteString(c.w, c.scratch.String())
	return xmlevent.OK
}
