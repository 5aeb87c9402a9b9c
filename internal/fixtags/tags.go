package fixtags

import (
	"strconv"
	"strings"
)

const syntheticRoot = "doc"

// ensureRoot opens the synthetic root element the first time real
// content (a tag or non-whitespace chardata) appears before any root
// has been seen, per spec.md §4.14's "wrap orphaned content in a
// synthetic root" repair.
func (r *Repairer) ensureRoot() {
	if r.sawRoot {
		return
	}
	r.sawRoot = true
	if len(r.tagStack) == 0 {
		r.writeString("<" + syntheticRoot + ">")
		r.tagStack = append(r.tagStack, syntheticRoot)
		r.rootOpened = true
	}
}

// readStartTag consumes "<name attr=val ...>" or "<name .../>". Every byte
// that does not need repair — attribute quoting style, whitespace between
// attributes, spacing before the closing ">"/"/>"—is echoed back exactly as
// read from the raw spans readAttrs keeps; only an actual repair site
// replaces its own span:
//   - an invalid name-start byte is rewritten to '_'
//   - duplicate attribute names are suffixed _1.._99 (spec.md §4.14): the
//     first repeat gets _1, the next _2, and from the hundredth on _99
//   - an unquoted attribute value is quoted and entity-escaped, since
//     unquoted AttValue is not well-formed XML to begin with
func (r *Repairer) readStartTag() error {
	if len(r.tagStack) == 0 {
		// The first top-level start tag becomes the document's real root;
		// unlike bare chardata or an entity reference, a tag never needs
		// the synthetic-root wrap.
		r.sawRoot = true
	}
	name := r.readName()
	attrs, tail, selfClose := r.readAttrs()

	r.writeString("<" + name)
	seen := map[string]int{}
	for _, a := range attrs {
		n := a.name
		seen[a.name]++
		if c := seen[a.name]; c > 1 {
			n = dedupName(a.name, c-1)
		}
		r.writeString(a.lead + n)
		if !a.hasValue {
			continue
		}
		if a.quote == 0 {
			r.writeString("=\"" + escapeAttrValue(a.value) + "\"")
		} else {
			r.writeString(a.eq + string(a.quote) + a.value + string(a.quote))
		}
	}
	r.writeString(tail)
	if selfClose {
		r.writeString("/>")
		return nil
	}
	r.writeString(">")
	r.tagStack = append(r.tagStack, name)
	return nil
}

func dedupName(name string, count int) string {
	if count > 99 {
		count = 99
	}
	return name + "_" + strconv.Itoa(count)
}

// readEndTag consumes "</name>", repairing a mismatched closing name by
// auto-closing any intervening open tags down to the nearest matching
// ancestor, or by treating an end tag with no open ancestor at all as a
// self-closing no-op, per spec.md §4.14's end-tag-mismatch repair.
func (r *Repairer) readEndTag() error {
	r.mustReadByte() // consume '/'
	name := r.readName()
	r.skipUntil('>')

	idx := -1
	for i := len(r.tagStack) - 1; i >= 0; i-- {
		if r.tagStack[i] == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		// No matching open ancestor: drop the stray end tag.
		return nil
	}
	for len(r.tagStack)-1 > idx {
		top := r.tagStack[len(r.tagStack)-1]
		r.writeString("</" + top + ">")
		r.tagStack = r.tagStack[:len(r.tagStack)-1]
	}
	r.writeString("</" + name + ">")
	r.tagStack = r.tagStack[:idx]
	return nil
}

func (r *Repairer) closeRemainingTags() {
	for i := len(r.tagStack) - 1; i >= 0; i-- {
		r.writeString("</" + r.tagStack[i] + ">")
	}
	r.tagStack = nil
}

// rawAttr is one scanned attribute, keeping enough of the original bytes
// around (lead whitespace, the "=" token, the quote character) to echo
// them verbatim when no repair touches this attribute.
type rawAttr struct {
	lead     string // whitespace consumed before name, verbatim
	name     string
	hasValue bool
	eq       string // verbatim span between name and the value, including "="
	quote    byte   // '"', '\'', or 0 if the value was unquoted
	value    string // raw value bytes as read, unescaped
}

// readName consumes an XML name, rewriting an invalid first byte to '_'
// per spec.md §4.14's name-repair rule; it does not fully validate every
// subsequent byte against the XML NameChar productions, matching the
// original port's tag-level (not full-grammar) granularity.
func (r *Repairer) readName() string {
	var b strings.Builder
	c, err := r.peek()
	if err != nil {
		return "_"
	}
	if isNameStart(c) || c == '_' {
		b.WriteByte(c)
		r.mustReadByte()
	} else {
		b.WriteByte('_')
	}
	for {
		c, err := r.peek()
		if err != nil || isWhitespace(c) || c == '>' || c == '/' || c == '=' {
			break
		}
		b.WriteByte(c)
		r.mustReadByte()
	}
	return b.String()
}

// readAttrs scans the attribute list up to (not including) the terminating
// ">" or "/>", returning each attribute with enough of its raw span
// preserved to echo verbatim, plus tail: the whitespace, if any, sitting
// right before that terminator.
func (r *Repairer) readAttrs() (attrs []rawAttr, tail string, selfClose bool) {
	for {
		tail += r.readWhitespace()
		c, err := r.peek()
		if err != nil {
			return attrs, tail, selfClose
		}
		if c == '>' {
			r.mustReadByte()
			return attrs, tail, selfClose
		}
		if c == '/' {
			r.mustReadByte()
			selfClose = true
			continue
		}
		lead := tail
		tail = ""
		name := r.readName()
		mid := r.readWhitespace()
		c2, err := r.peek()
		if err != nil || c2 != '=' {
			attrs = append(attrs, rawAttr{lead: lead, name: name})
			continue
		}
		r.mustReadByte() // consume '='
		post := r.readWhitespace()
		quote, value := r.readQuoted()
		attrs = append(attrs, rawAttr{
			lead:     lead,
			name:     name,
			hasValue: true,
			eq:       mid + "=" + post,
			quote:    quote,
			value:    value,
		})
	}
}

// readQuoted reads an attribute value starting at the current byte,
// returning the quote character used (0 if the value was bare/unquoted)
// and the raw value bytes, unescaped, exactly as they appeared.
func (r *Repairer) readQuoted() (quote byte, value string) {
	q, err := r.peek()
	if err != nil {
		return 0, ""
	}
	if q != '"' && q != '\'' {
		// Unquoted attribute value: read until whitespace or '>'.
		var b strings.Builder
		for {
			c, err := r.peek()
			if err != nil || isWhitespace(c) || c == '>' || c == '/' {
				break
			}
			b.WriteByte(c)
			r.mustReadByte()
		}
		return 0, b.String()
	}
	r.mustReadByte() // consume opening quote
	var b strings.Builder
	for {
		c, err := r.peek()
		if err != nil || c == q {
			if err == nil {
				r.mustReadByte()
			}
			break
		}
		b.WriteByte(c)
		r.mustReadByte()
	}
	return q, b.String()
}

// readWhitespace consumes a run of whitespace bytes and returns it
// verbatim, so callers can echo it back unchanged rather than collapsing
// it to a single space.
func (r *Repairer) readWhitespace() string {
	var b strings.Builder
	for {
		c, err := r.peek()
		if err != nil || !isWhitespace(c) {
			return b.String()
		}
		b.WriteByte(c)
		r.mustReadByte()
	}
}

func escapeAttrValue(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return s
}

// readAmp consumes an entity or character reference starting at '&'
// (already consumed by the caller). A numeric reference (&#123; or
// &#xAB;) or a known predeclared entity is passed through verbatim;
// anything else is escaped to "&amp;" so the stray '&' does not break a
// downstream well-formed parser, per spec.md §4.14.
func (r *Repairer) readAmp() error {
	raw := r.readName2(';')
	name := strings.TrimSuffix(raw, ";")
	if len(name) > 0 && name[0] == '#' {
		r.writeString("&" + raw)
		return nil
	}
	if r.entities[name] {
		r.writeString("&" + raw)
		return nil
	}
	r.writeString("&amp;" + raw)
	return nil
}

// readName2 reads bytes up to and including the terminator, returning
// everything up to (but not including) it; if no terminator is found
// before a structurally significant byte, it stops early so malformed
// entity references do not swallow following markup.
func (r *Repairer) readName2(terminator byte) string {
	var b strings.Builder
	for {
		c, err := r.peek()
		if err != nil || c == '<' || isWhitespace(c) {
			break
		}
		r.mustReadByte()
		if c == terminator {
			return b.String() + string(terminator)
		}
		b.WriteByte(c)
	}
	return b.String()
}

func (r *Repairer) skipUntil(target byte) {
	for {
		c, err := r.peek()
		if err != nil {
			return
		}
		r.mustReadByte()
		if c == target {
			return
		}
	}
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isNameStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func (r *Repairer) mustReadByte() byte {
	b, err := r.src.ReadByte()
	if err != nil {
		return 0
	}
	return b
}

func (r *Repairer) writeByte(b byte) {
	r.dst.WriteByte(b)
	r.trailing = append(r.trailing, b)
	if len(r.trailing) > 8 {
		r.trailing = r.trailing[len(r.trailing)-8:]
	}
}

func (r *Repairer) writeString(s string) {
	for i := 0; i < len(s); i++ {
		r.writeByte(s[i])
	}
}
