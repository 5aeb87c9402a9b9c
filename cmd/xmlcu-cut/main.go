// Command xmlcu-cut extracts a subset of each document's character
// positions (-c), whitespace-separated fields (-f), or nesting depths
// (-t) from a single XML document, the XML analogue of cut's column
// selection. Exactly one of the three modes is required. Unlike grep
// and head, the output is always wrapped in a synthetic root element,
// since cut slices the whole document rather than picking matches.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/cbuf"
	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/errors"
	"github.com/standardbeagle/xmlcu/internal/filelist"
	"github.com/standardbeagle/xmlcu/internal/interval"
	"github.com/standardbeagle/xmlcu/internal/leafparse"
	"github.com/standardbeagle/xmlcu/internal/selection"
	"github.com/standardbeagle/xmlcu/internal/stdparse"
	"github.com/standardbeagle/xmlcu/internal/version"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

const progname = "xmlcu-cut"

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "extract character, field, or depth ranges from an XML document",
		Version: version.Info(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "chars", Aliases: []string{"c"}, Usage: "character-position interval, e.g. 1,3-5,-10,20-"},
			&cli.StringFlag{Name: "fields", Aliases: []string{"f"}, Usage: "whitespace-field interval"},
			&cli.StringFlag{Name: "tags", Aliases: []string{"t"}, Usage: "nesting-depth interval"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		errmsg.Report(progname, "fatal", err)
		os.Exit(errmsg.ExitCode(err))
	}
}

func run(ctx *cli.Context) error {
	modes := 0
	for _, name := range []string{"chars", "fields", "tags"} {
		if ctx.String(name) != "" {
			modes++
		}
	}
	if modes != 1 {
		return errors.NewUsageError("exactly one of -c, -f, or -t must be given")
	}

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

	flags := stdparse.ALLNODES | stdparse.EQ1FILE | stdparse.NOXPATHS
	eng := selection.New(nil)

	out := os.Stdout
	fmt.Fprint(out, `<?xml version="1.0"?>`+"\n<root>\n")

	switch {
	case ctx.String("tags") != "":
		im, err := interval.Parse(ctx.String("tags"))
		if err != nil {
			return err
		}
		c := &tagCutConsumer{w: out, im: im, scratch: cbuf.New("cut", 256, 64<<20)}
		if err := stdparse.Run(files, eng, flags, c); err != nil {
			return err
		}
	default:
		var mode string
		var spec string
		if ctx.String("chars") != "" {
			mode, spec = "chars", ctx.String("chars")
		} else {
			mode, spec = "fields", ctx.String("fields")
		}
		im, err := interval.Parse(spec)
		if err != nil {
			return err
		}
		c := &fieldCharCutConsumer{w: out, im: im, mode: mode, scratch: cbuf.New("cut", 256, 64<<20)}
		walker := leafparse.NewWalker(leafparse.PRE_OPEN|leafparse.PRE_CLOSE, c)
		if err := stdparse.Run(files, eng, flags, walker.AsStdparseConsumer()); err != nil {
			return err
		}
	}

	fmt.Fprint(out, "\n</root>\n")
	return nil
}

// tagCutConsumer filters whole elements by nesting depth rather than by
// content: a tag's own depth gates whether it (and its character data,
// one level deeper) is printed at all.
type tagCutConsumer struct {
	w       *os.File
	im      *interval.Set
	depth   int
	stack   []string
	scratch *cbuf.Buffer
}

func (c *tagCutConsumer) StartFile(name string) bool { return true }
func (c *tagCutConsumer) EndFile(name string) bool   { return true }

func (c *tagCutConsumer) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	c.depth++
	name := ""
	if len(path) > 0 {
		name = path[len(path)-1]
	}
	c.stack = append(c.stack, name)
	if c.im.Contains(c.depth) {
		fmt.Fprintf(c.w, "<%s", name)
		if attrs != nil {
			for _, a := range attrs.All() {
				fmt.Fprintf(c.w, " %s=%q", a.Name, a.Value)
			}
		}
		fmt.Fprint(c.w, ">")
	}
	return xmlevent.OK
}

// EndTag fires with depth still equal to the closing tag's own depth, so
// the same membership test as StartTag decides whether to print it,
// before depth is decremented for the parent. path is already truncated
// to the parent's path by this point, so the closing tag's own name
// comes off the stack pushed in StartTag.
func (c *tagCutConsumer) EndTag(path []string, selected bool) xmlevent.Result {
	name := ""
	if n := len(c.stack) - 1; n >= 0 {
		name = c.stack[n]
		c.stack = c.stack[:n]
	}
	if c.im.Contains(c.depth) {
		fmt.Fprintf(c.w, "</%s>", name)
	}
	c.depth--
	return xmlevent.OK
}

func (c *tagCutConsumer) Comment(path []string, text []byte) xmlevent.Result { return xmlevent.OK }
func (c *tagCutConsumer) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	return xmlevent.OK
}
func (c *tagCutConsumer) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	return xmlevent.OK
}

func (c *tagCutConsumer) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	if c.im.Contains(c.depth + 1) {
		c.scratch.Reset()
		_ = c.scratch.AppendEntityEncoded(string(text))
		fmt.Fprint(c.w, c.scratch.String())
	}
	return xmlevent.OK
}

// fieldCharCutConsumer writes every tag verbatim and filters only the
// accumulated text between tags, mirroring cut's column semantics:
// structure always survives, content is sliced.
type fieldCharCutConsumer struct {
	w       *os.File
	im      *interval.Set
	mode    string // "chars" or "fields"
	stack   []string
	scratch *cbuf.Buffer
}

func (c *fieldCharCutConsumer) StartFile(name string) bool { return true }
func (c *fieldCharCutConsumer) EndFile(name string) bool   { return true }

func (c *fieldCharCutConsumer) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	name := ""
	if len(path) > 0 {
		name = path[len(path)-1]
	}
	c.stack = append(c.stack, name)
	fmt.Fprintf(c.w, "<%s", name)
	if attrs != nil {
		for _, a := range attrs.All() {
			fmt.Fprintf(c.w, " %s=%q", a.Name, a.Value)
		}
	}
	fmt.Fprint(c.w, ">")
	return xmlevent.OK
}

// path is already truncated to the parent's path by the time this
// fires, so the closing tag's own name comes off the stack pushed in
// StartTag.
func (c *fieldCharCutConsumer) EndTag(path []string, selected bool) xmlevent.Result {
	name := ""
	if n := len(c.stack) - 1; n >= 0 {
		name = c.stack[n]
		c.stack = c.stack[:n]
	}
	fmt.Fprintf(c.w, "</%s>", name)
	return xmlevent.OK
}

func (c *fieldCharCutConsumer) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	return xmlevent.OK
}

func (c *fieldCharCutConsumer) Comment(path []string, text []byte) xmlevent.Result {
	return xmlevent.OK
}

func (c *fieldCharCutConsumer) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	return xmlevent.OK
}

func (c *fieldCharCutConsumer) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	return xmlevent.OK
}

func (c *fieldCharCutConsumer) LeafNode(path string, value string) xmlevent.Result {
	var filtered string
	if c.mode == "chars" {
		filtered = filterChars(value, c.im)
	} else {
		filtered = filterFields(value, c.im)
	}
	c.scratch.Reset()
	_ = c.scratch.AppendEntityEncoded(filtered)
	fmt.Fprint(c.w, c.scratch.String())
	return xmlevent.OK
}

// filterChars keeps only the bytes whose column number (1-based,
// resetting after each newline) falls inside im; newlines always pass
// through.
func filterChars(value string, im *interval.Set) string {
	var out strings.Builder
	cno := 1
	for i := 0; i < len(value); i++ {
		b := value[i]
		if b == '\n' {
			out.WriteByte(b)
			cno = 1
			continue
		}
		if im.Contains(cno) {
			out.WriteByte(b)
		}
		cno++
	}
	return out.String()
}

// filterFields keeps only the whitespace-separated tokens whose field
// number (1-based, resetting after each newline) falls inside im, while
// always preserving the whitespace runs between them verbatim.
func filterFields(value string, im *interval.Set) string {
	var out strings.Builder
	fno := 0
	locked := false
	n := len(value)
	i := 0
	for i < n {
		if isSpace(value[i]) {
			locked = false
			j := i
			for j < n && isSpace(value[j]) {
				j++
			}
			out.WriteString(value[i:j])
			if strings.IndexByte(value[i:j], '\n') >= 0 {
				fno = 0
			}
			i = j
		}
		if i < n {
			if !locked {
				fno++
				locked = true
			}
			j := i
			for j < n && !isSpace(value[j]) {
				j++
			}
			if im.Contains(fno) {
				out.WriteString(value[i:j])
			}
			i = j
		}
	}
	return out.String()
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
