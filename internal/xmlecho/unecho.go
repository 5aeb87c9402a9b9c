// Package xmlecho implements spec.md §4.15's echo/unecho formatters:
// unecho serializes (path, value) pairs into xml-echo's bracketed
// string notation; echo is the inverse, parsing that notation back into
// a stream of tag-open/tag-close/text operations.
package xmlecho

import (
	"strings"

	"github.com/standardbeagle/xmlcu/internal/cbuf"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

// Unecho renders one (path, value) pair as a bracketed string fragment
// of the form "[/a/b@k=v]text". Path segment escaping (so a literal
// "/", "@", "=", "[", "]", or "\\" inside a tag/attribute name or value
// is not mistaken for path structure) is delegated to xpath.Path.String,
// which escapes within segments but never the structural separators
// themselves. The trailing text portion escapes the same delimiter set
// (so a literal "[" in the value cannot be mistaken for the start of
// the next bracketed fragment when echo reparses it) plus \n and \t,
// per spec.md §4.15.
func Unecho(path *xpath.Path, value string) string {
	rendered := path.String()
	bufp := cbuf.New("unecho", len(rendered)+len(value)+16, 1<<20)
	_ = bufp.Puts("[")
	_ = bufp.Puts(rendered)
	_ = bufp.Puts("]")
	_ = bufp.Puts(escapeText(value))
	return bufp.String()
}

func escapeText(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\n':
			out.WriteString(`\n`)
		case '\t':
			out.WriteString(`\t`)
		case '/', '@', '=', '[', ']', '\\':
			out.WriteByte('\\')
			out.WriteRune(r)
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}
