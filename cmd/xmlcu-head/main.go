// Command xmlcu-head prints the first N selected subtrees of one or
// more XML documents, analogous to head's "first N lines" but scoped to
// whichever path-expression selects the unit of interest.
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

const progname = "xmlcu-head"

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "print the first N selected subtrees of an XML stream",
		Version: version.Info(),
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 10, Usage: "number of matches to print"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		errmsg.Report(progname, "fatal", err)
		os.Exit(errmsg.ExitCode(err))
	}
}

func run(ctx *cli.Context) error {
	n := ctx.Int("count")
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

	h := &headConsumer{limit: n}
	for _, f := range files {
		if h.full() {
			break
		}
		eng := selection.New(parsed.PatternsFor(f.Name))
		if err := stdparse.Run([]stdparse.File{f}, eng, 0, h); err != nil {
			return err
		}
	}

	out := os.Stdout
	if len(h.fragments) == 0 {
		return cli.Exit("", 1)
	}
	if len(h.fragments) == 1 {
		out.Write(h.fragments[0])
		return nil
	}
	fmt.Fprint(out, `<?xml version="1.0"?>`+"\n<root>")
	for _, frag := range h.fragments {
		out.Write(frag)
	}
	fmt.Fprint(out, "</root>\n")
	return nil
}

// headConsumer is the grep consumer shape with a count ceiling: once
// limit matches have been buffered, StartTag and EndTag answer ABORT so
// the parser stops on the current file without scanning the remainder
// of the document.
type headConsumer struct {
	limit     int
	cur       bytes.Buffer
	tagStack  []string
	depth     int
	fragments [][]byte
}

func (h *headConsumer) full() bool { return h.limit > 0 && len(h.fragments) >= h.limit }

func (h *headConsumer) StartFile(name string) bool { return !h.full() }
func (h *headConsumer) EndFile(name string) bool   { return !h.full() }

func (h *headConsumer) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	if h.full() {
		return xmlevent.ABORT
	}
	h.depth++
	name := ""
	if len(path) > 0 {
		name = path[len(path)-1]
	}
	h.tagStack = append(h.tagStack, name)
	fmt.Fprintf(&h.cur, "<%s", name)
	if attrs != nil {
		for _, a := range attrs.All() {
			fmt.Fprintf(&h.cur, " %s=%q", a.Name, a.Value)
		}
	}
	h.cur.WriteByte('>')
	return xmlevent.OK
}

// EndTag's path argument is already popped to the parent's path by the
// time this fires, so the closing tag's own name comes off the stack
// pushed in StartTag.
func (h *headConsumer) EndTag(path []string, selected bool) xmlevent.Result {
	if len(h.tagStack) == 0 {
		return xmlevent.ABORT
	}
	n := len(h.tagStack) - 1
	name := h.tagStack[n]
	h.tagStack = h.tagStack[:n]
	fmt.Fprintf(&h.cur, "</%s>", name)

	h.depth--
	if h.depth == 0 {
		frag := make([]byte, h.cur.Len())
		copy(frag, h.cur.Bytes())
		h.fragments = append(h.fragments, frag)
		h.cur.Reset()
		if h.full() {
			return xmlevent.ABORT
		}
	}
	return xmlevent.OK
}

func (h *headConsumer) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	h.cur.Write(text)
	return xmlevent.OK
}

func (h *headConsumer) Comment(path []string, text []byte) xmlevent.Result {
	fmt.Fprintf(&h.cur, "<!--%s-->", text)
	return xmlevent.OK
}

func (h *headConsumer) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	fmt.Fprintf(&h.cur, "<?%s %s?>", target, text)
	return xmlevent.OK
}

func (h *headConsumer) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	return xmlevent.OK
}
