package xpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttrListGetHas(t *testing.T) {
	al := NewAttrList(Attr{Name: "b", Value: "2"}, Attr{Name: "a", Value: "1"})
	v, ok := al.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.False(t, al.Has("z"))
}

func TestAttrListSorted(t *testing.T) {
	al := NewAttrList(Attr{Name: "b", Value: "2"}, Attr{Name: "a", Value: "1"})
	sorted := al.Sorted()
	assert.Equal(t, "a", sorted[0].Name)
	assert.Equal(t, "b", sorted[1].Name)
	// original order preserved
	assert.Equal(t, "b", al.At(0).Name)
}
