// Package cbuf implements the growable, bounded-capacity UTF-8 byte
// buffer described in spec.md §2 ("char-buffer / c-string"): an
// entity-aware writer used anywhere a tool accumulates a bounded string
// (an attribute value, a leaf's string-value, a cursor's path text)
// before handing it to a consumer.
package cbuf

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/standardbeagle/xmlcu/internal/errors"
)

// Buffer is a growable byte buffer capped at limit bytes. Writes past
// the cap return an *errors.OverflowError (spec.md §7) rather than
// silently truncating, so callers decide whether to warn or abort.
type Buffer struct {
	data  []byte
	limit int64
	name  string
}

// New creates a Buffer with the given capacity hint and overflow limit.
// name is used only to label OverflowError.Context.
func New(name string, hint int, limit int64) *Buffer {
	return &Buffer{
		data:  make([]byte, 0, hint),
		limit: limit,
		name:  name,
	}
}

// Len returns the current length in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Bytes returns the buffer's contents. The slice is only valid until
// the next mutating call.
func (b *Buffer) Bytes() []byte { return b.data }

// String returns the buffer's contents as a string (copies).
func (b *Buffer) String() string { return string(b.data) }

// Reset empties the buffer without releasing its backing array.
func (b *Buffer) Reset() { b.data = b.data[:0] }

// Write appends p, enforcing the configured limit.
func (b *Buffer) Write(p []byte) (int, error) {
	if int64(len(b.data)+len(p)) > b.limit {
		return 0, errors.NewOverflowError(b.name, b.limit, int64(len(b.data)+len(p)))
	}
	b.data = append(b.data, p...)
	return len(p), nil
}

// Puts appends a plain string, mirroring the source's `puts` operation.
func (b *Buffer) Puts(s string) error {
	_, err := b.Write([]byte(s))
	return err
}

// Printf appends a formatted string.
func (b *Buffer) Printf(format string, args ...any) error {
	return b.Puts(fmt.Sprintf(format, args...))
}

// AppendEntityEncoded appends s with `&`, `<`, `>`, `"` escaped as XML
// entity references, mirroring the source's entity-aware writer used
// when emitting attribute values and chardata that round-trip through
// the core.
func (b *Buffer) AppendEntityEncoded(s string) error {
	var out strings.Builder
	out.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			out.WriteString("&amp;")
		case '<':
			out.WriteString("&lt;")
		case '>':
			out.WriteString("&gt;")
		case '"':
			out.WriteString("&quot;")
		default:
			out.WriteRune(r)
		}
	}
	return b.Puts(out.String())
}

// Squeeze collapses runs of ASCII whitespace into a single space,
// in place, matching temp-collect's `squeeze` operation (spec.md §4).
func (b *Buffer) Squeeze() {
	out := b.data[:0]
	inSpace := false
	for i := 0; i < len(b.data); {
		r, size := utf8.DecodeRune(b.data[i:])
		if isSpace(r) {
			if !inSpace {
				out = append(out, ' ')
				inSpace = true
			}
		} else {
			out = append(out, b.data[i:i+size]...)
			inSpace = false
		}
		i += size
	}
	b.data = out
}

// Truncate drops the buffer back to n bytes. A no-op if n >= Len().
func (b *Buffer) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(b.data) {
		b.data = b.data[:n]
	}
}

// IsWhitespaceOnly reports whether the buffer holds only ASCII
// whitespace, used by leaf-parser's SKIP_EMPTY flag.
func (b *Buffer) IsWhitespaceOnly() bool {
	for _, c := range b.data {
		if !isSpace(rune(c)) {
			return false
		}
	}
	return true
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	default:
		return false
	}
}
