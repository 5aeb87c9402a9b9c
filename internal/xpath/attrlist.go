package xpath

import "sort"

// Attr is a single (name, value) pair as reported by a start-tag event.
type Attr struct {
	Name  string
	Value string
}

// AttrList is the ordered sequence of attributes on one start-tag,
// per spec.md §3 ("Attribute list"). Source order is not semantically
// significant; Sorted returns a canonical copy for comparison.
type AttrList struct {
	attrs []Attr
}

// NewAttrList builds an AttrList from attrs in document order.
func NewAttrList(attrs ...Attr) *AttrList {
	return &AttrList{attrs: attrs}
}

// Len returns the number of attributes.
func (a *AttrList) Len() int { return len(a.attrs) }

// At returns the attribute at document-order index i.
func (a *AttrList) At(i int) Attr { return a.attrs[i] }

// All returns the attributes in document order. Callers must not
// mutate the returned slice.
func (a *AttrList) All() []Attr { return a.attrs }

// Get returns the value of the first attribute named name.
func (a *AttrList) Get(name string) (string, bool) {
	for _, at := range a.attrs {
		if at.Name == name {
			return at.Value, true
		}
	}
	return "", false
}

// Has reports whether any attribute is named name.
func (a *AttrList) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Sorted returns a copy of the attributes sorted by name, for canonical
// comparison (spec.md §3: "the list may be sorted by name for canonical
// comparison").
func (a *AttrList) Sorted() []Attr {
	out := make([]Attr, len(a.attrs))
	copy(out, a.attrs)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
