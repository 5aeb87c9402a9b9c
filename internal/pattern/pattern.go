// Package pattern compiles spec.md's ":xpath" argument strings into the
// path-matcher / predicate / attribute-filter triplet described in
// spec.md §2 and §4.6-§4.8, bundled into one CompiledPattern value per
// spec.md §9 ("Pattern/predicate/attribute triplet alignment... bundle
// them into a single compiled pattern value to make the invariant
// structural rather than clerical").
package pattern

import (
	"strconv"
	"strings"

	"github.com/standardbeagle/xmlcu/internal/errors"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

// Predicate is a single positional "[n]" test, compiled with the tag
// step index it follows. StepIndex indexes into CompiledPattern.Path:
// the predicate fires when the pattern's tag prefix Path[:StepIndex+1]
// exactly matches the live path at a start-tag event.
//
// Per spec.md §4.7 the counter is a simple per-pattern global: it does
// not scope separately per distinct ancestor instance. A pattern like
// "/a/b[2]" counts every <b> seen immediately under any <a>, not per
// <a> occurrence. This is the source's documented (if surprising)
// behavior, replicated rather than "fixed" per spec.md §9.
type Predicate struct {
	StepIndex int
	Target    int
	count     int
	valid     bool
}

// Valid reports whether this predicate's target count has been reached.
func (p *Predicate) Valid() bool { return p.valid }

// AttrFilter is the compiled trailing "@name" or "@*" selector of a
// pattern, per spec.md §4.8.
type AttrFilter struct {
	Name     string
	Wildcard bool
	has      bool
	precheck bool
}

// HasAttr reports whether this pattern names a trailing attribute step
// at all (a_i.has_attr in the selection formula of spec.md §4.9).
func (f *AttrFilter) HasAttr() bool { return f.has }

// Update precomputes precheck = "does attrs contain a matching name",
// per spec.md §4.8's per-tag precheck.
func (f *AttrFilter) Update(attrs *xpath.AttrList) {
	if !f.has {
		f.precheck = false
		return
	}
	if f.Wildcard {
		f.precheck = attrs.Len() > 0
		return
	}
	f.precheck = attrs.Has(f.Name)
}

// Check reports whether attrName is selected by this filter given the
// precomputed precheck and a tag-match code for the pattern's Path
// prefix (0 = exact).
func (f *AttrFilter) Check(tagMatch xpath.MatchCode, attrName string) bool {
	if !f.has || !f.precheck || tagMatch != xpath.MatchExact {
		return false
	}
	return f.Wildcard || f.Name == attrName
}

// CompiledPattern bundles a path-pattern's tag-segment list with its
// aligned predicate set and attribute filter — the triplet spec.md §9
// asks to be structural rather than three parallel slices.
type CompiledPattern struct {
	Raw        string
	Absolute   bool // pattern begins with "/"; mirrors xpath.Path.absolute
	Path       []xpath.PatternSeg
	Predicates []*Predicate
	Attr       AttrFilter
}

// Compile parses one ":xpath" argument (without the leading ":") into
// a CompiledPattern. It recognizes the subset of spec.md §6: absolute
// and relative tag steps, "*" wildcard, "//" descendant-or-self,
// "[n]" positional predicates, and a trailing "@name"/"@*" step.
func Compile(raw string) (*CompiledPattern, error) {
	cp := &CompiledPattern{Raw: raw, Absolute: len(raw) > 0 && raw[0] == '/'}

	i := 0
	descendant := false
	for i < len(raw) {
		switch raw[i] {
		case '/':
			if i+1 < len(raw) && raw[i+1] == '/' {
				descendant = true
				i += 2
				continue
			}
			i++
			continue
		case '[':
			end := strings.IndexByte(raw[i:], ']')
			if end < 0 {
				return nil, errors.NewUsageError("unbalanced predicate in pattern %q", raw)
			}
			numStr := raw[i+1 : i+end]
			n, err := strconv.Atoi(numStr)
			if err != nil || n < 1 {
				return nil, errors.NewUsageError("invalid predicate %q in pattern %q", numStr, raw)
			}
			if len(cp.Path) == 0 {
				return nil, errors.NewUsageError("predicate with no preceding step in pattern %q", raw)
			}
			cp.Predicates = append(cp.Predicates, &Predicate{StepIndex: len(cp.Path) - 1, Target: n})
			i += end + 1
			continue
		case '@':
			name, consumed := scanToken(raw[i+1:])
			cp.Attr.has = true
			cp.Attr.Name = xpath.Unescape(name)
			cp.Attr.Wildcard = name == "*"
			i += 1 + consumed
			continue
		default:
			name, consumed := scanToken(raw[i:])
			cp.Path = append(cp.Path, xpath.PatternSeg{
				Literal:    xpath.Unescape(name),
				Wildcard:   name == "*",
				Descendant: descendant,
			})
			descendant = false
			i += consumed
		}
	}

	return cp, nil
}

// scanToken reads one tag or attribute name from s, stopping at an
// unescaped '/', '@', or '[', honoring backslash escapes.
func scanToken(s string) (name string, consumed int) {
	i := 0
	for i < len(s) {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i += 2
				continue
			}
			i++
		case '/', '@', '[':
			return s[:i], i
		default:
			i++
		}
	}
	return s, i
}

// MatchTag evaluates the pattern against the live path, reporting the
// tag-structure match code and whether all predicates currently hold.
func (cp *CompiledPattern) MatchTag(tagNames []string) (xpath.MatchCode, bool) {
	code := xpath.MatchPath(cp.Path, cp.Absolute, tagNames)
	return code, cp.predicatesValid()
}

func (cp *CompiledPattern) predicatesValid() bool {
	for _, p := range cp.Predicates {
		if !p.valid {
			return false
		}
	}
	return true
}

// OnStartTag updates every predicate's counter/valid state and the
// attribute filter's precheck for a start-tag event at the path whose
// tag sequence (from the document root) is tagNames, per spec.md §4.7.
func (cp *CompiledPattern) OnStartTag(tagNames []string, attrs *xpath.AttrList) {
	cp.Attr.Update(attrs)

	for idx, p := range cp.Predicates {
		prefix := cp.Path[:p.StepIndex+1]
		if xpath.MatchPath(prefix, cp.Absolute, tagNames) != xpath.MatchExact {
			continue
		}
		p.count++
		if p.count == p.Target {
			p.valid = true
			for _, later := range cp.Predicates[idx+1:] {
				later.count = 0
			}
		}
	}
}

// Reset clears every predicate's learned state, for reuse across files
// in a file-list.
func (cp *CompiledPattern) Reset() {
	for _, p := range cp.Predicates {
		p.count = 0
		p.valid = false
	}
}
