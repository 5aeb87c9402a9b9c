package xpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushPopTag(t *testing.T) {
	p := NewAbsolute()
	p.PushTag("a")
	p.PushTag("b")
	assert.Equal(t, "/a/b", p.String())
	assert.Equal(t, 2, p.TagDepth())

	p.Pop()
	assert.Equal(t, "/a", p.String())
}

func TestPushAttr(t *testing.T) {
	p := NewAbsolute()
	p.PushTag("a")
	p.PushAttrValue("k", "v")
	assert.Equal(t, "/a@k=v", p.String())
}

func TestNormalizeDots(t *testing.T) {
	p := New()
	p.PushTag("a")
	p.PushTag(".")
	p.PushTag("b")
	p.PushTag("..")
	p.PushTag("c")
	p.Normalize()
	assert.Equal(t, []string{"a", "c"}, p.TagNames())
}

func TestNormalizeParentWithNoAncestor(t *testing.T) {
	p := New()
	p.PushTag("..")
	p.Normalize()
	assert.Equal(t, []string{".."}, p.TagNames())
}

func TestEscapeUnescape(t *testing.T) {
	raw := `a/b@c`
	esc := Escape(raw)
	assert.Equal(t, `a\/b\@c`, esc)
	assert.Equal(t, raw, Unescape(esc))
}

func TestLastTag(t *testing.T) {
	p := NewAbsolute()
	p.PushTag("a")
	p.PushAttr("k")
	name, ok := p.LastTag()
	assert.True(t, ok)
	assert.Equal(t, "a", name)
}

func TestCloneIsIndependent(t *testing.T) {
	p := NewAbsolute()
	p.PushTag("a")
	c := p.Clone()
	c.PushTag("b")
	assert.Equal(t, "/a", p.String())
	assert.Equal(t, "/a/b", c.String())
}
