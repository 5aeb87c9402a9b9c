// Package xmlevent implements spec.md §4.1's event parser: it wraps a
// low-level non-validating XML tokenizer (encoding/xml.Decoder) and
// exposes typed callbacks to a Consumer, which answers each event with a
// bitmask of OK/STOP/ABORT/DEFAULT.
package xmlevent

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/standardbeagle/xmlcu/internal/errors"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

// Result is the consumer's response to an event, a bitmask per spec.md
// §4.1.
type Result int

const (
	// OK continues parsing normally.
	OK Result = 1 << iota
	// STOP suspends parsing after the current event; the caller must
	// invoke Parser.Restart to resume.
	STOP
	// ABORT terminates parsing immediately.
	ABORT
	// DEFAULT additionally requests the current event's source bytes be
	// delivered to Consumer.Default.
	DEFAULT
)

// Consumer receives parsed document events in strict document order.
type Consumer interface {
	StartTag(name string, attrs *xpath.AttrList) Result
	EndTag(name string) Result
	CharData(text []byte) Result
	Comment(text []byte) Result
	ProcInst(target string, text []byte) Result
	DoctypeStart(name, sysid, pubid string, hasInternalSubset bool) Result
	DoctypeEnd() Result
	EntityDecl(name, value string) Result
	Default(raw []byte) Result
}

// Parser drives one document's worth of events through a Consumer.
//
// CDATA sections are not reported as distinct cdata-start/cdata-end
// events: encoding/xml.Decoder collapses "<![CDATA[...]]>" into the same
// xml.CharData token used for ordinary text, with no marker distinguishing
// the two. A custom byte-level rescan to recover CDATA boundaries was
// judged not worth the complexity here — fixtags already owns a true
// byte-level state machine elsewhere in this module for the cases that
// need that precision. Every tool built on Parser sees CDATA content as
// plain CharData.
type Parser struct {
	dec     *xml.Decoder
	lines   *lineIndex
	depth   int
	aborted bool
	perr    error
}

// New builds a Parser reading from r.
func New(r io.Reader) *Parser {
	li := &lineIndex{}
	tee := &countingReader{src: r, lines: li}
	dec := xml.NewDecoder(tee)
	// Strict=false lets an unknown "&foo;" entity reference pass through
	// as literal source text instead of erroring, which is how spec.md
	// §4.1 wants entity references preserved for round-tripping. Known
	// entities (&amp; etc.) still decode normally.
	dec.Strict = false
	dec.AutoClose = nil
	return &Parser{dec: dec, lines: li}
}

// Depth returns the current tag nesting depth (0 at the document root,
// before any start-tag has been seen).
func (p *Parser) Depth() int { return p.depth }

// Offset returns the byte offset of the end of the most recently
// returned event.
func (p *Parser) Offset() int64 { return p.dec.InputOffset() }

// Line returns the 1-based line number of the current offset.
func (p *Parser) Line() int { return p.lines.lineAt(p.Offset()) }

// Column returns the 1-based column number of the current offset.
func (p *Parser) Column() int { return p.lines.columnAt(p.Offset()) }

// Aborted reports whether the consumer returned ABORT.
func (p *Parser) Aborted() bool { return p.aborted }

// Error returns the tokenizer failure, if parsing stopped because of one.
func (p *Parser) Error() error { return p.perr }

// Parse drives the consumer until EOF, STOP, ABORT, or a tokenizer
// error. It returns nil on STOP (call Restart to resume) and on EOF; it
// returns a *errors.ParseError on a tokenizer failure.
func (p *Parser) Parse(file string, consumer Consumer) error {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			p.perr = errors.NewParseError(file, p.Line(), p.Column(), p.Offset(), p.depth, err)
			return p.perr
		}

		res, stop, abort := p.dispatch(tok, consumer)
		if abort {
			p.aborted = true
			return nil
		}
		if stop {
			return nil
		}
		_ = res
	}
}

// Restart resumes a parse previously suspended by STOP.
func (p *Parser) Restart(file string, consumer Consumer) error {
	return p.Parse(file, consumer)
}

func (p *Parser) dispatch(tok xml.Token, consumer Consumer) (res Result, stop, abort bool) {
	switch t := tok.(type) {
	case xml.StartElement:
		p.depth++
		attrs := make([]xpath.Attr, 0, len(t.Attr))
		for _, a := range t.Attr {
			attrs = append(attrs, xpath.Attr{Name: qname(a.Name), Value: a.Value})
		}
		res = consumer.StartTag(qname(t.Name), xpath.NewAttrList(attrs...))
		p.maybeDefault(res, consumer, tok)
		return res, res&STOP != 0, res&ABORT != 0

	case xml.EndElement:
		res = consumer.EndTag(qname(t.Name))
		p.maybeDefault(res, consumer, tok)
		if p.depth > 0 {
			p.depth--
		}
		return res, res&STOP != 0, res&ABORT != 0

	case xml.CharData:
		res = consumer.CharData([]byte(t))
		p.maybeDefault(res, consumer, tok)
		return res, res&STOP != 0, res&ABORT != 0

	case xml.Comment:
		res = consumer.Comment([]byte(t))
		p.maybeDefault(res, consumer, tok)
		return res, res&STOP != 0, res&ABORT != 0

	case xml.ProcInst:
		res = consumer.ProcInst(t.Target, t.Inst)
		p.maybeDefault(res, consumer, tok)
		return res, res&STOP != 0, res&ABORT != 0

	case xml.Directive:
		return p.dispatchDirective([]byte(t), consumer)

	default:
		return OK, false, false
	}
}

func (p *Parser) dispatchDirective(raw []byte, consumer Consumer) (res Result, stop, abort bool) {
	trimmed := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(trimmed, []byte("DOCTYPE")) {
		res = consumer.Default(raw)
		return res, res&STOP != 0, res&ABORT != 0
	}

	name, sysid, pubid, hasSubset, entities := parseDoctype(trimmed)

	res = consumer.DoctypeStart(name, sysid, pubid, hasSubset)
	if res&ABORT != 0 {
		return res, false, true
	}
	if res&STOP != 0 {
		return res, true, false
	}

	for _, e := range entities {
		res = consumer.EntityDecl(e.name, e.value)
		if res&ABORT != 0 {
			return res, false, true
		}
		if res&STOP != 0 {
			return res, true, false
		}
	}

	res = consumer.DoctypeEnd()
	return res, res&STOP != 0, res&ABORT != 0
}

// maybeDefault reconstructs the event's bytes from the already-decoded
// token and delivers them to Consumer.Default when DEFAULT is requested.
// This is a best-effort serialization rather than a slice of retained
// source bytes: retaining raw source for every event would require
// buffering the whole document, defeating the bounded-memory streaming
// this parser exists for. The practical effect is that entity references
// decoded then re-escaped may differ byte-for-byte from the source even
// though they are semantically identical (e.g. a source "&#65;" becomes
// "A" through the decoder and is reported back as literal "A").
func (p *Parser) maybeDefault(res Result, consumer Consumer, tok xml.Token) {
	if res&DEFAULT == 0 {
		return
	}
	consumer.Default(reconstruct(tok))
}

func reconstruct(tok xml.Token) []byte {
	switch t := tok.(type) {
	case xml.StartElement:
		var b bytes.Buffer
		fmt.Fprintf(&b, "<%s", qname(t.Name))
		for _, a := range t.Attr {
			fmt.Fprintf(&b, " %s=%q", qname(a.Name), a.Value)
		}
		b.WriteByte('>')
		return b.Bytes()
	case xml.EndElement:
		return []byte(fmt.Sprintf("</%s>", qname(t.Name)))
	case xml.CharData:
		return []byte(t)
	case xml.Comment:
		return []byte(fmt.Sprintf("<!--%s-->", t))
	case xml.ProcInst:
		return []byte(fmt.Sprintf("<?%s %s?>", t.Target, t.Inst))
	case xml.Directive:
		return []byte(fmt.Sprintf("<!%s>", t))
	default:
		return nil
	}
}

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

type entityDecl struct{ name, value string }

var (
	doctypeSystemRe = regexp.MustCompile(`SYSTEM\s+(?:"([^"]*)"|'([^']*)')`)
	doctypePublicRe = regexp.MustCompile(`PUBLIC\s+(?:"([^"]*)"|'([^']*)')\s+(?:"([^"]*)"|'([^']*)')`)
	entityDeclRe    = regexp.MustCompile(`<!ENTITY\s+(\S+)\s+(?:"([^"]*)"|'([^']*)')\s*>`)
)

// parseDoctype extracts the fields spec.md §4.1's doctype-start event
// needs from a raw "DOCTYPE ..." directive body (the text encoding/xml
// hands back between "<!" and ">", which for DOCTYPE includes any
// internal subset verbatim). This is a best-effort scan, not a DTD
// parser: unusual or deeply nested markup declarations inside the
// internal subset are not modeled beyond ENTITY declarations.
func parseDoctype(trimmed []byte) (name, sysid, pubid string, hasSubset bool, entities []entityDecl) {
	fields := strings.Fields(string(trimmed))
	if len(fields) >= 2 {
		name = fields[1]
	}

	s := string(trimmed)
	if m := doctypePublicRe.FindStringSubmatch(s); m != nil {
		pubid = firstNonEmpty(m[1], m[2])
		sysid = firstNonEmpty(m[3], m[4])
	} else if m := doctypeSystemRe.FindStringSubmatch(s); m != nil {
		sysid = firstNonEmpty(m[1], m[2])
	}

	if idx := strings.IndexByte(s, '['); idx >= 0 {
		hasSubset = true
		for _, m := range entityDeclRe.FindAllStringSubmatch(s[idx:], -1) {
			entities = append(entities, entityDecl{name: m[1], value: firstNonEmpty(m[2], m[3])})
		}
	}
	return
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// countingReader tees bytes read from src into lines so line/column
// lookups stay accurate without retaining the bytes themselves.
type countingReader struct {
	src   io.Reader
	lines *lineIndex
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.src.Read(p)
	if n > 0 {
		c.lines.observe(p[:n])
	}
	return n, err
}

// lineIndex maps an absolute byte offset to a 1-based (line, column) by
// recording the offsets of newline bytes as they are read.
type lineIndex struct {
	total    int64
	newlines []int64
}

func (l *lineIndex) observe(p []byte) {
	for i, b := range p {
		if b == '\n' {
			l.newlines = append(l.newlines, l.total+int64(i))
		}
	}
	l.total += int64(len(p))
}

func (l *lineIndex) lineAt(offset int64) int {
	idx := sort.Search(len(l.newlines), func(i int) bool { return l.newlines[i] >= offset })
	return idx + 1
}

func (l *lineIndex) columnAt(offset int64) int {
	idx := sort.Search(len(l.newlines), func(i int) bool { return l.newlines[i] >= offset })
	if idx == 0 {
		return int(offset) + 1
	}
	return int(offset - l.newlines[idx-1])
}
