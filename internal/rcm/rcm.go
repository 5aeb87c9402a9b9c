// Package rcm implements spec.md §4.12's shared rm/cp/mv state machine: a
// selection-driven mutation transducer that reads a source stream
// through the std-parser + selection engine and writes a possibly
// mutated copy, optionally threading an insert payload in at the
// selection boundary.
package rcm

import (
	"encoding/xml"
	"io"

	"github.com/standardbeagle/xmlcu/internal/tempcollect"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

// Flags controls rcm's behavior, per spec.md §4.12.
type Flags int

const (
	// RM_OUTPUT emits nothing inside a selected subtree (deletion).
	RM_OUTPUT Flags = 1 << iota
	// CP_OUTPUT emits everything, plus the insert payload at the
	// configured Position relative to the selection boundary.
	CP_OUTPUT
	// CP_MULTI inserts at every selection instead of only the first.
	CP_MULTI
	// CP_WFXML treats the insert as well-formed XML, checked by a
	// secondary parser; REPLACE then suppresses both the selected
	// element's start- and end-tag instead of only its content.
	CP_WFXML
	// WRITE_FILES routes output through a rollback temp file instead of
	// stdout.
	WRITE_FILES
)

// Position names where, relative to a selection boundary, the insert
// payload is threaded in.
type Position int

const (
	PREPEND Position = iota
	REPLACE
	APPEND
)

// state tracks rcm's per-selection bookkeeping, per spec.md §4.12:
// whether inside a selected region, whether the insert has already been
// consumed for the current selection, and nesting depth within it.
type state struct {
	inSelection  bool
	okInsert     bool
	nestingDepth int
}

// Machine drives one rm/cp/mv transduction.
type Machine struct {
	flags    Flags
	pos      Position
	insert   *tempcollect.Collector
	out      io.Writer
	st       state
	insertedAny bool
}

// New builds a Machine writing to out, inserting insert (nil for rm's
// pure-deletion case) at pos.
func New(flags Flags, pos Position, insert *tempcollect.Collector, out io.Writer) *Machine {
	return &Machine{flags: flags, pos: pos, insert: insert, out: out}
}

// OnSelectionEnter must be called when the selection engine's active
// flag transitions false->true at the current node (entering a selected
// subtree's root). It returns the bytes (if any) to write before the
// subtree's own content, honoring PREPEND/REPLACE timing and CP_MULTI.
func (m *Machine) OnSelectionEnter() []byte {
	m.st.inSelection = true
	m.st.nestingDepth = 0
	m.st.okInsert = false

	if m.flags&CP_OUTPUT == 0 || m.insert == nil {
		return nil
	}
	if m.pos != PREPEND {
		return nil
	}
	if !m.shouldInsertNow() {
		return nil
	}
	m.st.okInsert = true
	m.insertedAny = true
	return m.insertBytes()
}

// OnSelectionExit must be called when the selection engine's active flag
// transitions true->false at the current node (leaving the selected
// subtree). It returns bytes (if any) to write for an APPEND/REPLACE
// insert.
func (m *Machine) OnSelectionExit() []byte {
	m.st.inSelection = false
	if m.flags&CP_OUTPUT == 0 || m.insert == nil {
		return nil
	}
	if m.pos == PREPEND {
		return nil
	}
	if !m.shouldInsertNow() {
		return nil
	}
	m.st.okInsert = true
	m.insertedAny = true
	return m.insertBytes()
}

func (m *Machine) shouldInsertNow() bool {
	if m.flags&CP_MULTI != 0 {
		return true
	}
	return !m.insertedAny
}

func (m *Machine) insertBytes() []byte {
	var out []byte
	err := m.insert.ReadBack(func(chunk []byte) error {
		out = append(out, chunk...)
		return nil
	})
	if err != nil {
		return nil
	}
	return out
}

// PassThrough reports whether raw source bytes for the current node
// should be emitted verbatim, given the current selection/flag state.
// RM_OUTPUT suppresses everything inside a selected region; CP_WFXML's
// REPLACE additionally suppresses the selected element's own start- and
// end-tag (only its content is replaced otherwise).
func (m *Machine) PassThrough(isStartOrEndTagOfSelectedRoot bool) bool {
	if !m.st.inSelection {
		return true
	}
	if m.flags&RM_OUTPUT != 0 {
		return false
	}
	if m.flags&CP_OUTPUT != 0 && m.pos == REPLACE {
		if isStartOrEndTagOfSelectedRoot {
			return m.flags&CP_WFXML == 0
		}
		return false
	}
	return true
}

// Dispatch drives a consumer of xmlevent.Result against PassThrough for
// every raw event kind, wiring rcm into a std-parser consumer adapter.
// This is the shared shape every rm/cp/mv tool-level consumer uses; it
// is deliberately thin because the four flag combinations above already
// carry all of rcm's behavioral variance.
func (m *Machine) Dispatch(raw []byte, isStartOrEndTagOfSelectedRoot bool) {
	if m.PassThrough(isStartOrEndTagOfSelectedRoot) {
		if m.out != nil {
			_, _ = m.out.Write(raw)
		}
	}
}

// ParseInsertAsXML validates that the insert payload is well-formed XML,
// for CP_WFXML. It drains the payload through a strict encoding/xml
// Decoder (xmlevent.Parser is non-strict and closes mismatched tags
// itself) and reports the first syntax error, if any.
func ParseInsertAsXML(payload []byte) error {
	dec := xml.NewDecoder(&byteReader{b: payload})
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

type byteReader struct {
	b   []byte
	pos int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}

type noopConsumer struct{}

func (noopConsumer) StartTag(name string, attrs *xpath.AttrList) xmlevent.Result { return xmlevent.OK }
func (noopConsumer) EndTag(name string) xmlevent.Result                         { return xmlevent.OK }
func (noopConsumer) CharData(text []byte) xmlevent.Result                      { return xmlevent.OK }
func (noopConsumer) Comment(text []byte) xmlevent.Result                       { return xmlevent.OK }
func (noopConsumer) ProcInst(target string, text []byte) xmlevent.Result       { return xmlevent.OK }
func (noopConsumer) DoctypeStart(name, sysid, pubid string, hasInternalSubset bool) xmlevent.Result {
	return xmlevent.OK
}
func (noopConsumer) DoctypeEnd() xmlevent.Result                  { return xmlevent.OK }
func (noopConsumer) EntityDecl(name, value string) xmlevent.Result { return xmlevent.OK }
func (noopConsumer) Default(raw []byte) xmlevent.Result            { return xmlevent.OK }
