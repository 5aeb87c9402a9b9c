package cursor

// NodeKind identifies the event-kind bitmask the skip engine's predicate
// filters on, per spec.md §4.5.
type NodeKind int

const (
	KindStartTag NodeKind = 1 << iota
	KindEndTag
	KindCharData
	KindComment
	KindProcInst
)

// AllKinds matches every node type.
const AllKinds = KindStartTag | KindEndTag | KindCharData | KindComment | KindProcInst

// Predicate is one of the skip engine's depth/node-type tests, per
// spec.md §4.5: any, eq_depth(d), gt_depth(d), gte_depth(d), lt_depth(d),
// lte_depth(d), not_endtag, filtered by a node-type bitmask.
type Predicate struct {
	Kind  PredicateKind
	Depth int
	Types NodeKind
}

// PredicateKind selects which depth comparison (if any) a Predicate
// applies.
type PredicateKind int

const (
	PredAny PredicateKind = iota
	PredEqDepth
	PredGtDepth
	PredGteDepth
	PredLtDepth
	PredLteDepth
	PredNotEndTag
)

// Any builds a predicate matching any node of the given types.
func Any(types NodeKind) Predicate { return Predicate{Kind: PredAny, Types: types} }

// EqDepth builds a predicate matching nodes at exactly depth d.
func EqDepth(d int, types NodeKind) Predicate { return Predicate{Kind: PredEqDepth, Depth: d, Types: types} }

// GtDepth builds a predicate matching nodes deeper than d.
func GtDepth(d int, types NodeKind) Predicate { return Predicate{Kind: PredGtDepth, Depth: d, Types: types} }

// GteDepth builds a predicate matching nodes at depth d or deeper.
func GteDepth(d int, types NodeKind) Predicate { return Predicate{Kind: PredGteDepth, Depth: d, Types: types} }

// LtDepth builds a predicate matching nodes shallower than d.
func LtDepth(d int, types NodeKind) Predicate { return Predicate{Kind: PredLtDepth, Depth: d, Types: types} }

// LteDepth builds a predicate matching nodes at depth d or shallower.
func LteDepth(d int, types NodeKind) Predicate { return Predicate{Kind: PredLteDepth, Depth: d, Types: types} }

// NotEndTag builds a predicate matching any non-end-tag node.
func NotEndTag(types NodeKind) Predicate { return Predicate{Kind: PredNotEndTag, Types: types} }

// Node is one candidate event the skip engine evaluates against a
// Predicate: its kind, the depth it occurs at, and its byte offset.
type Node struct {
	Kind   NodeKind
	Depth  int
	Offset int64
}

// Match reports whether node satisfies p.
func (p Predicate) Match(n Node) bool {
	if p.Types != 0 && p.Types&n.Kind == 0 {
		return false
	}
	switch p.Kind {
	case PredAny:
		return true
	case PredEqDepth:
		return n.Depth == p.Depth
	case PredGtDepth:
		return n.Depth > p.Depth
	case PredGteDepth:
		return n.Depth >= p.Depth
	case PredLtDepth:
		return n.Depth < p.Depth
	case PredLteDepth:
		return n.Depth <= p.Depth
	case PredNotEndTag:
		return n.Kind != KindEndTag
	default:
		return false
	}
}

// Source supplies the skip engine with nodes to test, in document order,
// starting from a given byte offset. It mirrors the file-block parser
// re-entering the document at an arbitrary offset (spec.md §4.4).
type Source interface {
	// Next returns the next node at or after the skip's current
	// position, or ok=false at end of input.
	Next() (Node, bool)
}

// Forward advances from the current position, collecting matching nodes
// against pred until count have been seen, returning the last matching
// node. If the source is exhausted before count matches, ok is false.
func Forward(src Source, pred Predicate, count int) (Node, bool) {
	var last Node
	var found bool
	seen := 0
	for seen < count {
		n, ok := src.Next()
		if !ok {
			break
		}
		if pred.Match(n) {
			seen++
			last = n
			found = true
		}
	}
	return last, found && seen == count
}

// Backward implements spec.md §4.5's backward skip: it retains the
// cursor's current top offset as the stop target, asks the caller to
// restart scanning above that position (by rewinding src to the parent
// frame the caller supplies), then scans forward collecting the LAST
// matching node strictly before stopOffset.
func Backward(src Source, pred Predicate, stopOffset int64) (Node, bool) {
	var last Node
	var found bool
	for {
		n, ok := src.Next()
		if !ok || n.Offset >= stopOffset {
			break
		}
		if pred.Match(n) {
			last = n
			found = true
		}
	}
	return last, found
}
