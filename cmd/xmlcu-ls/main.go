// Command xmlcu-ls prints a depth-limited structural outline of the
// selected nodes of one or more XML documents, the XML analogue of
// ls's directory listing: one level of children is shown under each
// selected root, with deeper structure collapsed into a self-closing
// placeholder tag.
package main

import (
	"fmt"
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

const progname = "xmlcu-ls"

// depthLimit is how many levels below a selected root are still printed
// before collapsing into a self-closing placeholder; the original tool
// carried no option to change it.
const depthLimit = 1

const (
	attrTruncate = 10
	textTruncate = 50
)

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "list structural information about the FILE(s)",
		Version: version.Info(),
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "attributes", Aliases: []string{"a"}, Usage: "show attributes on each listed tag"},
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

	out := os.Stdout
	fmt.Fprint(out, `<?xml version="1.0"?>`+"\n<root>")
	c := &lsConsumer{w: out, withAttrs: ctx.Bool("attributes")}
	for _, f := range files {
		eng := selection.New(parsed.PatternsFor(f.Name))
		if err := stdparse.Run([]stdparse.File{f}, eng, 0, c); err != nil {
			return err
		}
	}
	fmt.Fprint(out, "\n</root>\n")
	return nil
}

// lsConsumer tracks depth relative to the root of the CURRENT top-level
// match (reset to 0 each time one starts), since stdparse delivers only
// selected-subtree events here, depth 0 always means "the matched
// root", matching the original's depth-minus-mindepth arithmetic.
type lsConsumer struct {
	w         *os.File
	withAttrs bool
	depth     int
	contin    bool
	stack     []string
}

func (c *lsConsumer) StartFile(name string) bool { return true }
func (c *lsConsumer) EndFile(name string) bool   { return true }

func (c *lsConsumer) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	d := c.depth
	c.depth++
	c.contin = false
	name := ""
	if len(path) > 0 {
		name = path[len(path)-1]
	}
	c.stack = append(c.stack, name)
	if d <= depthLimit {
		fmt.Fprint(c.w, "\n")
		fmt.Fprint(c.w, strings.Repeat("\t", 1+d))
		fmt.Fprintf(c.w, "<%s", name)
		if c.withAttrs && attrs != nil {
			for _, a := range attrs.All() {
				fmt.Fprintf(c.w, " %s=\"%s\"", a.Name, truncate(a.Value, attrTruncate))
			}
		}
		if d < depthLimit {
			fmt.Fprint(c.w, ">")
		} else {
			fmt.Fprint(c.w, "/>")
		}
	}
	return xmlevent.OK
}

// path is already truncated to the parent's path by the time this
// fires, so the closing tag's own name comes off the stack pushed in
// StartTag.
func (c *lsConsumer) EndTag(path []string, selected bool) xmlevent.Result {
	c.depth--
	d := c.depth
	c.contin = false
	name := ""
	if n := len(c.stack) - 1; n >= 0 {
		name = c.stack[n]
		c.stack = c.stack[:n]
	}
	if d < depthLimit {
		fmt.Fprint(c.w, "\n")
		fmt.Fprint(c.w, strings.Repeat("\t", 1+d))
		fmt.Fprintf(c.w, "</%s>", name)
	}
	return xmlevent.OK
}

func (c *lsConsumer) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	d := c.depth
	if d < depthLimit && !c.contin {
		if strings.TrimSpace(string(text)) != "" {
			fmt.Fprint(c.w, "\n")
			fmt.Fprint(c.w, strings.Repeat("\t", 1+d+1))
			fmt.Fprint(c.w, truncate(string(text), textTruncate))
			c.contin = true
		}
	}
	return xmlevent.OK
}

func (c *lsConsumer) Comment(path []string, text []byte) xmlevent.Result { return xmlevent.OK }
func (c *lsConsumer) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	return xmlevent.OK
}
func (c *lsConsumer) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	return xmlevent.OK
}

func truncate(s string, max int) string {
	squeezed := strings.Join(strings.Fields(s), " ")
	if len(squeezed) <= max {
		return squeezed
	}
	return squeezed[:max] + "..."
}
