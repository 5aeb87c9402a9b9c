// Package leafparse implements spec.md §4.11's leaf-parser: a variant
// walker that collapses each maximal chardata-capable slot between (or
// inside) tags into one leaf_node(path, value) callback, used by sed and
// unecho.
package leafparse

import (
	"strings"

	"github.com/standardbeagle/xmlcu/internal/cbuf"
	"github.com/standardbeagle/xmlcu/internal/selection"
	"github.com/standardbeagle/xmlcu/internal/stdparse"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

// Flags controls leaf accumulation, per spec.md §4.11.
type Flags int

const (
	// SQUEEZE collapses runs of whitespace in a leaf's value to a
	// single space.
	SQUEEZE Flags = 1 << iota
	// ABSOLUTE_PATH always reports the full path from the document
	// root, never a path relative to a prior leaf.
	ABSOLUTE_PATH
	// SKIP_EMPTY drops whitespace-only leaves.
	SKIP_EMPTY
	// ATTRIBUTES includes attributes in the reported path.
	ATTRIBUTES
	// ALWAYS_CHARDATA emits an empty-value leaf at tag boundaries with
	// no text.
	ALWAYS_CHARDATA
	// PRE_OPEN triggers the leaf callback for the slot immediately
	// before a start-tag.
	PRE_OPEN
	// POST_OPEN triggers it for the slot immediately after a start-tag.
	POST_OPEN
	// PRE_CLOSE triggers it for the slot immediately before an end-tag.
	PRE_CLOSE
	// POST_CLOSE triggers it for the slot immediately after an end-tag.
	POST_CLOSE
)

// LeafConsumer receives one callback per leaf position.
type LeafConsumer interface {
	stdparse.Consumer
	LeafNode(path string, value string) xmlevent.Result
}

// cdataOpen / cdataClose bracket CDATA-sourced text inside a leaf value
// so the unecho formatter can reconstruct it, per spec.md §4.11.
const (
	cdataOpen  = "\\Q"
	cdataClose = "\\q"
)

// Walker accumulates chardata across a maximal slot and emits one leaf
// per boundary crossing, per the PRE/POST_OPEN/CLOSE flags.
type Walker struct {
	flags    Flags
	consumer LeafConsumer
	buf      *cbuf.Buffer
	path     []string
	attrs    *xpath.AttrList
	open     bool
}

// NewWalker builds a Walker delegating structural events to consumer.
func NewWalker(flags Flags, consumer LeafConsumer) *Walker {
	return &Walker{flags: flags, consumer: consumer, buf: cbuf.New("leaf", 256, 64<<20)}
}

// AsStdparseConsumer adapts the walker into an stdparse.Consumer, so it
// can be driven by stdparse.Run directly.
func (w *Walker) AsStdparseConsumer() stdparse.Consumer { return w }

func (w *Walker) StartFile(name string) bool { return w.consumer.StartFile(name) }
func (w *Walker) EndFile(name string) bool {
	w.flush(w.currentPath())
	return w.consumer.EndFile(name)
}

func (w *Walker) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	if w.flags&PRE_OPEN != 0 {
		w.flush(w.pathMinusLast(path))
	}
	w.path = path
	w.attrs = attrs
	res := w.consumer.StartTag(path, attrs, selected)
	if w.flags&POST_OPEN != 0 {
		w.openSlot()
	}
	return res
}

func (w *Walker) EndTag(path []string, selected bool) xmlevent.Result {
	if w.flags&PRE_CLOSE != 0 {
		w.flush(w.currentPath())
	}
	res := w.consumer.EndTag(path, selected)
	w.path = path
	if w.flags&POST_CLOSE != 0 {
		w.openSlot()
	}
	return res
}

func (w *Walker) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	w.path = path
	_ = w.buf.Write(text)
	return xmlevent.OK
}

func (w *Walker) Comment(path []string, text []byte) xmlevent.Result {
	return w.consumer.Comment(path, text)
}

func (w *Walker) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	return w.consumer.ProcInst(path, target, text)
}

func (w *Walker) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	return w.consumer.Attribute(path, name, value, selected)
}

func (w *Walker) openSlot() { /* marks that accumulation for the next leaf has begun; buf already holds nothing new until CharData arrives */ }

func (w *Walker) currentPath() []string { return w.path }

func (w *Walker) pathMinusLast(path []string) []string {
	if len(path) == 0 {
		return path
	}
	return path[:len(path)-1]
}

// flush emits the accumulated buffer as one leaf at path, applying
// SQUEEZE/SKIP_EMPTY/ALWAYS_CHARDATA, then resets the buffer.
func (w *Walker) flush(path []string) {
	value := w.buf.String()
	w.buf.Reset()

	if value == "" && w.flags&ALWAYS_CHARDATA == 0 {
		return
	}
	if w.flags&SQUEEZE != 0 {
		w.buf.Puts(value)
		w.buf.Squeeze()
		value = w.buf.String()
		w.buf.Reset()
	}
	if w.flags&SKIP_EMPTY != 0 && strings.TrimSpace(value) == "" {
		return
	}

	p := w.renderPath(path)
	w.consumer.LeafNode(p, value)
}

func (w *Walker) renderPath(path []string) string {
	xp := xpath.NewAbsolute()
	for _, seg := range path {
		xp.PushTag(seg)
	}
	if w.flags&ATTRIBUTES != 0 && w.attrs != nil {
		for _, a := range w.attrs.All() {
			xp.PushAttrValue(a.Name, a.Value)
		}
	}
	return xp.String()
}

// WrapCDATA brackets text with the \Q/\q markers leaf values use to mark
// CDATA-sourced spans, per spec.md §4.11. The event parser does not
// distinguish CDATA from plain chardata (see internal/xmlevent's doc
// comment), so no caller currently has a CDATA boundary to pass here;
// this helper exists for the unecho formatter, which accepts
// already-bracketed values from callers that do have that information
// (e.g. a future tool built on a CDATA-aware source).
func WrapCDATA(text string) string {
	return cdataOpen + text + cdataClose
}
