// Package cursor implements spec.md §4.4/§4.5: a cursor is a stack of
// (offset, ordinal, node-count) frames identifying "the smallest prefix
// of the document whose remaining suffix is well-formed," plus a skip
// engine that advances or retreats it by re-parsing forward under a
// predicate on depth and node type.
package cursor

import "github.com/standardbeagle/xmlcu/internal/errors"

// Frame is one level of a Cursor: the byte offset of the enclosing
// start-tag, its ordinal among same-depth siblings, and the cumulative
// node count seen up to it.
type Frame struct {
	Offset int64
	Ordinal int64
	NodeCount int64
}

// Cursor is a stack of Frames. Byte offsets are strictly increasing
// bottom-to-top; duplicate offsets (which the event layer can produce
// for empty tags, where start and end coincide) are rejected by Push.
type Cursor struct {
	frames []Frame
}

// New returns an empty Cursor.
func New() *Cursor { return &Cursor{} }

// Push adds a new frame on top of the stack. It returns an
// *errors.InternalError if offset does not strictly increase over the
// current top, per spec.md §3's cursor invariant.
func (c *Cursor) Push(f Frame) error {
	if len(c.frames) > 0 && f.Offset <= c.frames[len(c.frames)-1].Offset {
		return errors.NewInternalError("cursor offset %d does not strictly increase over %d", f.Offset, c.frames[len(c.frames)-1].Offset)
	}
	c.frames = append(c.frames, f)
	return nil
}

// Pop removes the top frame. A no-op on an empty Cursor.
func (c *Cursor) Pop() {
	if len(c.frames) == 0 {
		return
	}
	c.frames = c.frames[:len(c.frames)-1]
}

// Parent removes the top frame and returns it, for restarting a skip
// above the current position.
func (c *Cursor) Parent() (Frame, bool) {
	if len(c.frames) == 0 {
		return Frame{}, false
	}
	top := c.frames[len(c.frames)-1]
	c.frames = c.frames[:len(c.frames)-1]
	return top, true
}

// Bump replaces the frame at depth with one reflecting entry into the
// next sibling at that depth: same depth, offset and nord supplied by
// the caller (the skip engine, typically), node count accumulated.
func (c *Cursor) Bump(depth int, offset int64, nord int64) error {
	if depth < 0 || depth >= len(c.frames) {
		return errors.NewInternalError("bump depth %d out of range [0,%d)", depth, len(c.frames))
	}
	prevCount := c.frames[depth].NodeCount
	c.frames[depth] = Frame{Offset: offset, Ordinal: nord, NodeCount: prevCount + 1}
	return nil
}

// Depth returns the number of frames.
func (c *Cursor) Depth() int { return len(c.frames) }

// Top returns the deepest frame.
func (c *Cursor) Top() (Frame, bool) {
	if len(c.frames) == 0 {
		return Frame{}, false
	}
	return c.frames[len(c.frames)-1], true
}

// At returns the frame at depth d.
func (c *Cursor) At(d int) (Frame, bool) {
	if d < 0 || d >= len(c.frames) {
		return Frame{}, false
	}
	return c.frames[d], true
}

// Copy returns an independent deep copy.
func (c *Cursor) Copy() *Cursor {
	out := make([]Frame, len(c.frames))
	copy(out, c.frames)
	return &Cursor{frames: out}
}

// Compare orders two cursors by their frame sequence: shallower-or-equal
// common prefix wins on the first differing offset; a cursor that is a
// prefix of the other sorts first. Returns -1, 0, or 1.
func (c *Cursor) Compare(other *Cursor) int {
	n := len(c.frames)
	if len(other.frames) < n {
		n = len(other.frames)
	}
	for i := 0; i < n; i++ {
		if c.frames[i].Offset < other.frames[i].Offset {
			return -1
		}
		if c.frames[i].Offset > other.frames[i].Offset {
			return 1
		}
	}
	switch {
	case len(c.frames) < len(other.frames):
		return -1
	case len(c.frames) > len(other.frames):
		return 1
	default:
		return 0
	}
}
