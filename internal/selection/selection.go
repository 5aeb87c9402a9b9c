// Package selection implements the engine from spec.md §4.9: for each of
// {start-tag, stringval entry, arbitrary node entry, attribute entry} it
// combines the compiled patterns' tag match, predicate validity, and
// attribute filter into an "active"/"attrib" decision, memoized per depth
// via internal/history.
package selection

import (
	"github.com/standardbeagle/xmlcu/internal/history"
	"github.com/standardbeagle/xmlcu/internal/pattern"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

// Engine evaluates a fixed set of compiled patterns against the live
// parser state at each query point, memoizing per depth.
type Engine struct {
	patterns []*pattern.CompiledPattern
	hist     *history.History

	minmax history.MinMaxTracker
}

// New builds an Engine over the given compiled patterns. An empty pattern
// set means "select everything" is NOT implied; callers that want
// unconditional traversal use the std-parser's ALLNODES flag instead,
// per spec.md §4.10.
func New(patterns []*pattern.CompiledPattern) *Engine {
	return &Engine{patterns: patterns, hist: history.New()}
}

// Push enters a new depth, invalidating memoized decisions for it.
func (e *Engine) Push() { e.hist.Push() }

// Pop leaves the current depth. Per spec.md §5, selection history is
// popped at end-tag before the end-tag callback fires.
func (e *Engine) Pop() { e.hist.Pop() }

// OnStartTag must be called once per start-tag event, before any
// selection query at that depth, so predicate counters and attribute
// prechecks advance per spec.md §4.7/§4.8.
func (e *Engine) OnStartTag(tagNames []string, attrs *xpath.AttrList) {
	for _, p := range e.patterns {
		p.OnStartTag(tagNames, attrs)
	}
}

// Tag answers "is the current start-tag selected?", per spec.md §4.9's
// tag_match formula, memoized under history.KindTag.
func (e *Engine) Tag(tagNames []string) bool {
	if v, ok := e.hist.Lookup(history.KindTag); ok {
		return v
	}
	v := e.computeTagMatch(tagNames)
	e.hist.Store(history.KindTag, v)
	e.trackMinMax(v)
	return v
}

// Node answers "is an arbitrary node (not necessarily a tag) at the
// current depth selected?" Nodes other than start-tags carry no
// attribute filter relevance, so this reduces to the tag_match
// computation restricted to patterns without a trailing attribute step.
func (e *Engine) Node(tagNames []string) bool {
	if v, ok := e.hist.Lookup(history.KindNode); ok {
		return v
	}
	v := e.computeTagMatch(tagNames)
	e.hist.Store(history.KindNode, v)
	return v
}

// Stringval answers "is the character data at the current depth
// selected?", using the same tag_match formula against the path of the
// enclosing element (a leaf position carries no tag name of its own).
func (e *Engine) Stringval(tagNames []string) bool {
	if v, ok := e.hist.Lookup(history.KindStringval); ok {
		return v
	}
	v := e.computeTagMatch(tagNames)
	e.hist.Store(history.KindStringval, v)
	return v
}

// Attrib answers "is attrName, on the start-tag whose tag sequence is
// tagNames, selected?", per spec.md §4.9's attr_match formula.
func (e *Engine) Attrib(tagNames []string, attrName string) bool {
	// Attribute decisions are per-name, not per-depth, so they are
	// evaluated fresh every call rather than memoized through history:
	// history holds one slot per kind per depth, and a start-tag may
	// carry many distinctly-named attributes at that same depth.
	return e.computeAttrMatch(tagNames, attrName)
}

func (e *Engine) computeTagMatch(tagNames []string) bool {
	for _, p := range e.patterns {
		if p.Attr.HasAttr() {
			continue
		}
		m, valid := p.MatchTag(tagNames)
		if !valid {
			continue
		}
		if m == xpath.MatchExact || m == xpath.MatchPatternPrefix {
			return true
		}
	}
	return false
}

func (e *Engine) computeAttrMatch(tagNames []string, attrName string) bool {
	for _, p := range e.patterns {
		if !p.Attr.HasAttr() {
			continue
		}
		m, valid := p.MatchTag(tagNames)
		if !valid {
			continue
		}
		if p.Attr.Check(m, attrName) {
			return true
		}
	}
	return false
}

func (e *Engine) trackMinMax(active bool) {
	if active {
		e.minmax.Enter(e.hist.Depth())
		return
	}
	if e.minmax.Active() {
		e.minmax.Exit()
	}
}

// SelectedRange returns the (min, max) depth of the currently open active
// run so far, and whether one is open. The range of a run is not kept
// once it closes: with no open run it returns (0, 0, false).
func (e *Engine) SelectedRange() (min, max int, open bool) {
	open = e.minmax.Active()
	min, max = e.minmax.Exit()
	if open {
		e.minmax.Enter(min)
		e.minmax.Enter(max)
	}
	return
}

// Reset clears every compiled pattern's learned predicate/attribute state
// and the history stack, for reuse across files in a file-list.
func (e *Engine) Reset() {
	for _, p := range e.patterns {
		p.Reset()
	}
	e.hist = history.New()
}
