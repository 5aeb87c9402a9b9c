package xmlecho

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/xmlcu/internal/xpath"
)

func pathOf(tags ...string) *xpath.Path {
	p := xpath.NewAbsolute()
	for _, t := range tags {
		p.PushTag(t)
	}
	return p
}

func TestUnechoBasic(t *testing.T) {
	out := Unecho(pathOf("a", "b"), "text")
	assert.Equal(t, "[/a/b]text", out)
}

func TestUnechoEscapesSpecialChars(t *testing.T) {
	out := Unecho(pathOf("a", "b"), "has/slash")
	assert.Contains(t, out, `has\/slash`)
}

func TestUnechoWithAttrs(t *testing.T) {
	p := xpath.NewAbsolute()
	p.PushTag("a")
	p.PushAttrValue("id", "1")
	out := Unecho(p, "")
	assert.Equal(t, "[/a@id=1]", out)
}

func TestUnechoEscapesNewlineAndTab(t *testing.T) {
	out := Unecho(pathOf("a"), "line1\nline2\ttabbed")
	assert.Contains(t, out, `\n`)
	assert.Contains(t, out, `\t`)
}

func TestScannerOpensAbsolutePath(t *testing.T) {
	s := NewScanner("[/a/b]text")
	op, ok := s.Next()
	a := assert.New(t)
	a.True(ok)
	a.Equal(OpOpen, op.Kind)
	a.Equal("a/b", op.Tag)
	assert.Equal(t, []string{"a", "b"}, s.Stack())

	op2, ok2 := s.Next()
	a.True(ok2)
	a.Equal(OpText, op2.Kind)
	a.Equal("text", op2.Text)
}

func TestScannerRelativeParentNavigates(t *testing.T) {
	s := NewScanner("[/a/b]x[../c]y")
	s.Next()
	s.Next()
	op, ok := s.Next()
	assert := assert.New(t)
	assert.True(ok)
	assert.Equal(OpOpen, op.Kind)
	assert.Equal([]string{"a", "c"}, s.Stack())
}

func TestScannerParsesAttributes(t *testing.T) {
	s := NewScanner("[/a@id=5@class=x]")
	op, ok := s.Next()
	assert := assert.New(t)
	assert.True(ok)
	assert.Equal("5", op.Attrs["id"])
	assert.Equal("x", op.Attrs["class"])
}

func TestUnescapeTextBackspace(t *testing.T) {
	got := unescapeText(`ab\bc`)
	assert.Equal(t, "ac", got)
}

func TestUnescapeTextNewline(t *testing.T) {
	got := unescapeText(`a\nb`)
	assert.Equal(t, "a\nb", got)
}

func TestUnterminatedBracketTreatedAsText(t *testing.T) {
	s := NewScanner("[/a/b")
	op, ok := s.Next()
	assert := assert.New(t)
	assert.True(ok)
	assert.Equal(OpText, op.Kind)
}
