// Package stdparse implements spec.md §4.10's std-parser: it orchestrates
// an xmlevent.Parser and a selection.Engine across a file-list, invoking
// a Consumer's callbacks only when the ALLNODES flag is set or selection
// is active for the current node.
package stdparse

import (
	"io"
	"os"

	"github.com/standardbeagle/xmlcu/internal/errors"
	"github.com/standardbeagle/xmlcu/internal/selection"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

// Flags controls std-parser behavior, per spec.md §4.10.
type Flags int

const (
	// ALLNODES delivers every event to the consumer regardless of
	// selection state.
	ALLNODES Flags = 1 << iota
	// EQ1FILE requires exactly one file in the file-list.
	EQ1FILE
	// NOXPATHS rejects any ":xpath" arguments in the file-list.
	NOXPATHS
	// MIN1FILE requires at least one file in the file-list.
	MIN1FILE
	// ALWAYS_CHARDATA forwards zero-length chardata events to the
	// consumer instead of dropping them. It does not synthesize a
	// chardata event at a tag boundary where the document has no text.
	ALWAYS_CHARDATA
	// QUIET suppresses parse-error reporting; a failing file is simply
	// skipped rather than reported.
	QUIET
)

// File names one input source and the path (as a string) it is open
// under for diagnostics.
type File struct {
	Name   string
	Reader io.Reader
}

// Consumer receives selection-aware callbacks. Every callback receives
// the current path's tag sequence so it can report or re-derive the full
// path; selected is the selection engine's verdict for that event.
type Consumer interface {
	StartFile(name string) bool
	EndFile(name string) bool
	StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result
	EndTag(path []string, selected bool) xmlevent.Result
	CharData(path []string, text []byte, selected bool) xmlevent.Result
	Comment(path []string, text []byte) xmlevent.Result
	ProcInst(path []string, target string, text []byte) xmlevent.Result
	Attribute(path []string, name, value string, selected bool) xmlevent.Result
}

// Run walks every file in files, in order, invoking consumer callbacks
// through the selection engine. It returns a *errors.MultiError
// aggregating per-file parse failures (nil if none), honoring QUIET by
// omitting failing files from the aggregate while still skipping them.
func Run(files []File, eng *selection.Engine, flags Flags, consumer Consumer) error {
	if flags&MIN1FILE != 0 && len(files) == 0 {
		return errors.NewUsageError("at least one file is required")
	}
	if flags&EQ1FILE != 0 && len(files) != 1 {
		return errors.NewUsageError("exactly one file is required, got %d", len(files))
	}

	var failures []error
	for _, f := range files {
		if !consumer.StartFile(f.Name) {
			continue
		}
		eng.Reset()

		adapter := &selectionAdapter{
			flags:    flags,
			eng:      eng,
			consumer: consumer,
			path:     nil,
		}
		p := xmlevent.New(f.Reader)
		if err := p.Parse(f.Name, adapter); err != nil {
			if flags&QUIET == 0 {
				failures = append(failures, err)
			}
		}

		if !consumer.EndFile(f.Name) {
			break
		}
	}

	if len(failures) == 0 {
		return nil
	}
	return errors.NewMultiError(failures)
}

// OpenFiles resolves file-list names ("-" for stdin) into stdparse.File
// values with open readers. The returned closers hold every file opened
// (stdin is not among them) and callers are responsible for closing
// them, including when an error is returned.
func OpenFiles(names []string) ([]File, []io.Closer, error) {
	files := make([]File, 0, len(names))
	closers := make([]io.Closer, 0, len(names))
	for _, name := range names {
		if name == "-" {
			files = append(files, File{Name: name, Reader: os.Stdin})
			continue
		}
		f, err := os.Open(name)
		if err != nil {
			return nil, closers, errors.NewEnvironmentError("open", name, err)
		}
		files = append(files, File{Name: name, Reader: f})
		closers = append(closers, f)
	}
	return files, closers, nil
}

// selectionAdapter implements xmlevent.Consumer, wiring each raw event
// through the selection engine before forwarding to the tool-level
// Consumer, per spec.md §4.10's "dispatch every raw event through
// selection-aware adapters" rule.
type selectionAdapter struct {
	flags    Flags
	eng      *selection.Engine
	consumer Consumer
	path     []string
}

func (a *selectionAdapter) StartTag(name string, attrs *xpath.AttrList) xmlevent.Result {
	a.eng.Push()
	a.path = append(a.path, name)
	a.eng.OnStartTag(a.path, attrs)

	selected := a.eng.Tag(a.path)
	if a.flags&ALLNODES == 0 && !selected {
		return xmlevent.OK
	}

	res := a.consumer.StartTag(a.path, attrs, selected)

	for i := 0; i < attrs.Len(); i++ {
		at := attrs.At(i)
		attrSelected := a.eng.Attrib(a.path, at.Name)
		if a.flags&ALLNODES != 0 || attrSelected {
			_ = a.consumer.Attribute(a.path, at.Name, at.Value, attrSelected)
		}
	}

	return res
}

func (a *selectionAdapter) EndTag(name string) xmlevent.Result {
	selected := a.eng.Tag(a.path)
	wantDeliver := a.flags&ALLNODES != 0 || selected

	// Selection history is popped before the end-tag callback fires, so
	// the callback receives the parent's path, while selected is the
	// closing tag's own verdict, computed above before the pop.
	a.eng.Pop()
	if len(a.path) > 0 {
		a.path = a.path[:len(a.path)-1]
	}

	if !wantDeliver {
		return xmlevent.OK
	}
	return a.consumer.EndTag(a.path, selected)
}

func (a *selectionAdapter) CharData(text []byte) xmlevent.Result {
	if len(text) == 0 && a.flags&ALWAYS_CHARDATA == 0 {
		return xmlevent.OK
	}
	selected := a.eng.Stringval(a.path)
	if a.flags&ALLNODES == 0 && !selected {
		return xmlevent.OK
	}
	return a.consumer.CharData(a.path, text, selected)
}

func (a *selectionAdapter) Comment(text []byte) xmlevent.Result {
	return a.consumer.Comment(a.path, text)
}

func (a *selectionAdapter) ProcInst(target string, text []byte) xmlevent.Result {
	return a.consumer.ProcInst(a.path, target, text)
}

func (a *selectionAdapter) DoctypeStart(name, sysid, pubid string, hasInternalSubset bool) xmlevent.Result {
	return xmlevent.OK
}

func (a *selectionAdapter) DoctypeEnd() xmlevent.Result { return xmlevent.OK }

func (a *selectionAdapter) EntityDecl(name, value string) xmlevent.Result { return xmlevent.OK }

func (a *selectionAdapter) Default(raw []byte) xmlevent.Result { return xmlevent.OK }
