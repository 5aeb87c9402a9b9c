// Command xmlcu-grep prints every selected subtree as a well-formed XML
// fragment, wrapping multiple matches in a synthetic root element, per
// spec.md's grep tool and §6's "Wrapping" rule. Exit code follows
// spec.md §6's special case: 1 on no match, 0 on at least one match.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/filelist"
	"github.com/standardbeagle/xmlcu/internal/selection"
	"github.com/standardbeagle/xmlcu/internal/stdparse"
	"github.com/standardbeagle/xmlcu/internal/version"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

const progname = "xmlcu-grep"

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "print every selected subtree as an XML fragment",
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

	flags := stdparse.Flags(0)
	if ctx.Bool("quiet") {
		flags |= stdparse.QUIET
	}

	g := &grepConsumer{}
	for _, f := range files {
		eng := selection.New(parsed.PatternsFor(f.Name))
		if err := stdparse.Run([]stdparse.File{f}, eng, flags, g); err != nil {
			return err
		}
	}

	if len(g.fragments) == 0 {
		return cli.Exit("", 1)
	}

	out := os.Stdout
	if len(g.fragments) == 1 {
		out.Write(g.fragments[0])
		return nil
	}
	fmt.Fprint(out, `<?xml version="1.0"?>`+"\n<root>")
	for _, frag := range g.fragments {
		out.Write(frag)
	}
	fmt.Fprint(out, "</root>\n")
	return nil
}

// grepConsumer receives only selected events (no ALLNODES) and
// reconstructs each matched fragment into its own buffer. Fragments stay
// in memory until every file has been scanned, since whether the run
// needs the synthetic <root> wrapper (spec.md §6) depends on the total
// match count across every file, not just the current one.
type grepConsumer struct {
	cur       bytes.Buffer
	tagStack  []string
	depth     int
	fragments [][]byte
}

func (g *grepConsumer) StartFile(name string) bool { return true }
func (g *grepConsumer) EndFile(name string) bool   { return true }

func (g *grepConsumer) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	g.depth++
	name := ""
	if len(path) > 0 {
		name = path[len(path)-1]
	}
	g.tagStack = append(g.tagStack, name)
	fmt.Fprintf(&g.cur, "<%s", name)
	if attrs != nil {
		for _, a := range attrs.All() {
			fmt.Fprintf(&g.cur, " %s=%q", a.Name, a.Value)
		}
	}
	g.cur.WriteByte('>')
	return xmlevent.OK
}

// EndTag's path argument is already popped to the parent's path by the
// time this fires, so the closing tag's own name comes off the stack
// pushed in StartTag, not from path.
func (g *grepConsumer) EndTag(path []string, selected bool) xmlevent.Result {
	if len(g.tagStack) == 0 {
		return xmlevent.OK
	}
	n := len(g.tagStack) - 1
	name := g.tagStack[n]
	g.tagStack = g.tagStack[:n]
	fmt.Fprintf(&g.cur, "</%s>", name)

	g.depth--
	if g.depth == 0 {
		frag := make([]byte, g.cur.Len())
		copy(frag, g.cur.Bytes())
		g.fragments = append(g.fragments, frag)
		g.cur.Reset()
	}
	return xmlevent.OK
}

func (g *grepConsumer) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	g.cur.Write(text)
	return xmlevent.OK
}

func (g *grepConsumer) Comment(path []string, text []byte) xmlevent.Result {
	fmt.Fprintf(&g.cur, "<!--%s-->", text)
	return xmlevent.OK
}

func (g *grepConsumer) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	fmt.Fprintf(&g.cur, "<?%s %s?>", target, text)
	return xmlevent.OK
}

func (g *grepConsumer) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	return xmlevent.OK
}
