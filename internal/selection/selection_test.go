package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/xmlcu/internal/pattern"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

func compile(t *testing.T, raw string) *pattern.CompiledPattern {
	t.Helper()
	cp, err := pattern.Compile(raw)
	require.NoError(t, err)
	return cp
}

func TestTagMatchExactSelects(t *testing.T) {
	e := New([]*pattern.CompiledPattern{compile(t, "/a/b")})
	assert.True(t, e.Tag([]string{"a", "b"}))
}

func TestTagMatchMemoizedAtDepth(t *testing.T) {
	e := New([]*pattern.CompiledPattern{compile(t, "/a/b")})
	first := e.Tag([]string{"a", "b"})
	// Even with a tag sequence that would no longer match, the memoized
	// value for this depth is returned until Push/Pop moves the frame.
	second := e.Tag([]string{"a", "zzz"})
	assert.Equal(t, first, second)
}

func TestPushInvalidatesMemo(t *testing.T) {
	e := New([]*pattern.CompiledPattern{compile(t, "/a/b")})
	e.Tag([]string{"a", "b"})
	e.Push()
	assert.False(t, e.Tag([]string{"a", "c"}))
}

func TestPatternPrefixCountsAsActive(t *testing.T) {
	e := New([]*pattern.CompiledPattern{compile(t, "/a")})
	assert.True(t, e.Tag([]string{"a", "b"}), "a descendant of a matched pattern stays active")
}

func TestAttribMatch(t *testing.T) {
	e := New([]*pattern.CompiledPattern{compile(t, "/a@id")})
	e.OnStartTag([]string{"a"}, xpath.NewAttrList(xpath.Attr{Name: "id", Value: "1"}))
	assert.True(t, e.Attrib([]string{"a"}, "id"))
	assert.False(t, e.Attrib([]string{"a"}, "other"))
}

func TestAttribPatternDoesNotDriveTagMatch(t *testing.T) {
	e := New([]*pattern.CompiledPattern{compile(t, "/a@id")})
	e.OnStartTag([]string{"a"}, xpath.NewAttrList(xpath.Attr{Name: "id", Value: "1"}))
	assert.False(t, e.Tag([]string{"a"}), "an attribute-only pattern must not select the tag itself")
}

func TestPredicateGatesSelection(t *testing.T) {
	e := New([]*pattern.CompiledPattern{compile(t, "/a/b[2]")})
	empty := xpath.NewAttrList()

	e.OnStartTag([]string{"a", "b"}, empty)
	assert.False(t, e.Tag([]string{"a", "b"}), "predicate target not yet reached")

	e.Push()
	e.OnStartTag([]string{"a", "b"}, empty)
	assert.True(t, e.Tag([]string{"a", "b"}))
}

func TestResetClearsPredicateAndHistory(t *testing.T) {
	e := New([]*pattern.CompiledPattern{compile(t, "/a[1]")})
	e.OnStartTag([]string{"a"}, xpath.NewAttrList())
	e.Push()
	require.True(t, e.Tag([]string{"a"}))

	e.Reset()
	assert.False(t, e.Tag([]string{"a"}), "predicate must be recounted from zero after Reset")
}

func TestSelectedRangeTracksOpenRun(t *testing.T) {
	e := New([]*pattern.CompiledPattern{compile(t, "/a")})
	e.Tag([]string{"a"})
	e.Push()
	e.Tag([]string{"a", "b"})

	min, max, open := e.SelectedRange()
	assert.True(t, open)
	assert.Equal(t, 1, min)
	assert.Equal(t, 2, max)
}
