// Package xmlfmt implements xmlcu-fmt's reindenting pretty-printer: it
// walks an xmlevent stream and re-emits it with each tag's depth
// reflected by a configurable indent, per spec.md's fmt tool. An element
// that contains only text (or nothing) stays on one line; an element
// that contains child elements breaks its closing tag onto its own
// indented line. Reindenting is idempotent by construction (§8's
// "xml-fmt ∘ xml-fmt = xml-fmt"): re-running the formatter over its own
// output re-derives the same depth and the same text-vs-element-child
// shape for every tag, so it reproduces the same bytes.
package xmlfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

// Options controls the reindenter.
type Options struct {
	IndentWidth int  // spaces per depth level; 0 defaults to 2
	UseTabs     bool // indent with tabs instead of spaces
}

func (o Options) unit() string {
	if o.UseTabs {
		return "\t"
	}
	n := o.IndentWidth
	if n <= 0 {
		n = 2
	}
	return strings.Repeat(" ", n)
}

// Reindent reads one XML document from r and writes a reindented copy
// to w.
func Reindent(r io.Reader, w io.Writer, opts Options) error {
	c := &reindenter{w: w, unit: opts.unit()}
	p := xmlevent.New(r)
	return p.Parse("fmt", c)
}

type frame struct {
	hasChildTag bool
}

type reindenter struct {
	w     io.Writer
	unit  string
	depth int
	stack []frame
}

func (c *reindenter) nl() { fmt.Fprintln(c.w) }

func (c *reindenter) indent() {
	for i := 0; i < c.depth; i++ {
		io.WriteString(c.w, c.unit)
	}
}

// markParentHasChildTag flags the enclosing element (if any) as having
// at least one nested child element, so its closing tag breaks onto its
// own line.
func (c *reindenter) markParentHasChildTag() {
	if len(c.stack) > 0 {
		c.stack[len(c.stack)-1].hasChildTag = true
	}
}

func (c *reindenter) StartTag(name string, attrs *xpath.AttrList) xmlevent.Result {
	c.markParentHasChildTag()
	if c.depth > 0 {
		c.nl()
		c.indent()
	}
	fmt.Fprintf(c.w, "<%s", name)
	if attrs != nil {
		for _, a := range attrs.All() {
			fmt.Fprintf(c.w, " %s=%q", a.Name, a.Value)
		}
	}
	io.WriteString(c.w, ">")
	c.stack = append(c.stack, frame{})
	c.depth++
	return xmlevent.OK
}

func (c *reindenter) EndTag(name string) xmlevent.Result {
	c.depth--
	hasChildTag := false
	if len(c.stack) > 0 {
		hasChildTag = c.stack[len(c.stack)-1].hasChildTag
		c.stack = c.stack[:len(c.stack)-1]
	}
	if hasChildTag {
		c.nl()
		c.indent()
	}
	fmt.Fprintf(c.w, "</%s>", name)
	return xmlevent.OK
}

func (c *reindenter) CharData(text []byte) xmlevent.Result {
	trimmed := strings.TrimSpace(string(text))
	if trimmed == "" {
		return xmlevent.OK
	}
	io.WriteString(c.w, trimmed)
	return xmlevent.OK
}

func (c *reindenter) Comment(text []byte) xmlevent.Result {
	c.markParentHasChildTag()
	if c.depth > 0 {
		c.nl()
		c.indent()
	}
	fmt.Fprintf(c.w, "<!--%s-->", string(text))
	return xmlevent.OK
}

func (c *reindenter) ProcInst(target string, text []byte) xmlevent.Result {
	fmt.Fprintf(c.w, "<?%s %s?>", target, string(text))
	return xmlevent.OK
}

func (c *reindenter) DoctypeStart(name, sysid, pubid string, hasInternalSubset bool) xmlevent.Result {
	return xmlevent.OK
}
func (c *reindenter) DoctypeEnd() xmlevent.Result                   { return xmlevent.OK }
func (c *reindenter) EntityDecl(name, value string) xmlevent.Result { return xmlevent.OK }
func (c *reindenter) Default(raw []byte) xmlevent.Result            { return xmlevent.OK }
