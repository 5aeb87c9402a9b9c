package rcm

import (
	"bytes"
	"fmt"

	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

// Adapter implements stdparse.Consumer, driving a Machine's
// OnSelectionEnter/OnSelectionExit transitions from the selection
// engine's per-node verdict and reconstructing the raw bytes Dispatch
// expects. It is the shared shape xmlcu-rm, xmlcu-cp and xmlcu-mv all
// wrap with tool-specific flag/insert setup, per spec.md §4.12's note
// that the four flag combinations already carry all of rcm's
// behavioral variance.
type frame struct {
	name     string
	selected bool
}

type Adapter struct {
	m     *Machine
	stack []frame
}

// NewAdapter wraps m for use as a stdparse.Consumer driving a single
// file's worth of selection-driven mutation.
func NewAdapter(m *Machine) *Adapter {
	return &Adapter{m: m}
}

func (a *Adapter) StartFile(name string) bool { return true }
func (a *Adapter) EndFile(name string) bool   { return true }

func (a *Adapter) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	wasSelected := false
	if n := len(a.stack); n > 0 {
		wasSelected = a.stack[n-1].selected
	}
	entering := selected && !wasSelected

	name := ""
	if len(path) > 0 {
		name = path[len(path)-1]
	}
	a.stack = append(a.stack, frame{name: name, selected: selected})

	var insertBytes []byte
	if entering {
		insertBytes = a.m.OnSelectionEnter()
	}

	a.m.Dispatch(reconstructStartTag(name, attrs), entering)

	if entering && len(insertBytes) > 0 {
		_, _ = a.m.out.Write(insertBytes)
	}
	return xmlevent.OK
}

// EndTag's path argument is already popped to the parent's path by the
// time this fires, and its selected argument reports this closing tag's
// own verdict (computed before the selection engine's history pop) —
// not the parent's. Both the tag name and the parent's selection state
// therefore come off our own stack, pushed in StartTag.
func (a *Adapter) EndTag(path []string, selected bool) xmlevent.Result {
	var closed frame
	if n := len(a.stack); n > 0 {
		closed = a.stack[n-1]
		a.stack = a.stack[:n-1]
	}
	parentSelected := false
	if n := len(a.stack); n > 0 {
		parentSelected = a.stack[n-1].selected
	}
	exiting := closed.selected && !parentSelected

	a.m.Dispatch(reconstructEndTag(closed.name), exiting)

	if exiting {
		postBytes := a.m.OnSelectionExit()
		if len(postBytes) > 0 {
			_, _ = a.m.out.Write(postBytes)
		}
	}
	return xmlevent.OK
}

func (a *Adapter) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	a.m.Dispatch(text, false)
	return xmlevent.OK
}

func (a *Adapter) Comment(path []string, text []byte) xmlevent.Result {
	a.m.Dispatch([]byte(fmt.Sprintf("<!--%s-->", text)), false)
	return xmlevent.OK
}

func (a *Adapter) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	a.m.Dispatch([]byte(fmt.Sprintf("<?%s %s?>", target, text)), false)
	return xmlevent.OK
}

func (a *Adapter) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	return xmlevent.OK
}

func reconstructStartTag(name string, attrs *xpath.AttrList) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<%s", name)
	if attrs != nil {
		for _, a := range attrs.All() {
			fmt.Fprintf(&buf, " %s=%q", a.Name, a.Value)
		}
	}
	buf.WriteByte('>')
	return buf.Bytes()
}

func reconstructEndTag(name string) []byte {
	if name == "" {
		return nil
	}
	return []byte(fmt.Sprintf("</%s>", name))
}
