package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/xmlcu/internal/xpath"
)

func TestCompileSimpleTag(t *testing.T) {
	cp, err := Compile("/a/b")
	require.NoError(t, err)
	require.Len(t, cp.Path, 2)
	assert.Equal(t, "a", cp.Path[0].Literal)
	assert.Equal(t, "b", cp.Path[1].Literal)
	assert.False(t, cp.Attr.HasAttr())
}

func TestCompileAbsolute(t *testing.T) {
	cp, err := Compile("/a/b")
	require.NoError(t, err)
	assert.True(t, cp.Absolute)

	cp, err = Compile("a/b")
	require.NoError(t, err)
	assert.False(t, cp.Absolute)
}

// TestMatchTagUnanchoredWildcardNeverExact exercises spec.md §8's
// absolute/relative asymmetry through the compiled pattern: an
// unanchored "*" never resolves to an exact match against a live
// (always absolute) path, only to a structural prefix of it.
func TestMatchTagUnanchoredWildcardNeverExact(t *testing.T) {
	cp, err := Compile("*")
	require.NoError(t, err)
	code, _ := cp.MatchTag([]string{"anytag"})
	assert.Equal(t, xpath.MatchPatternPrefix, code)
}

// TestMatchTagUnanchoredLiteralNeverMatches covers the companion case:
// an unanchored literal first step can never match at all.
func TestMatchTagUnanchoredLiteralNeverMatches(t *testing.T) {
	cp, err := Compile("a")
	require.NoError(t, err)
	code, _ := cp.MatchTag([]string{"a"})
	assert.Equal(t, xpath.MatchNone, code)
}

func TestCompileDescendant(t *testing.T) {
	cp, err := Compile("//x")
	require.NoError(t, err)
	require.Len(t, cp.Path, 1)
	assert.True(t, cp.Path[0].Descendant)
}

func TestCompileAttr(t *testing.T) {
	cp, err := Compile("/a/b@id")
	require.NoError(t, err)
	assert.True(t, cp.Attr.HasAttr())
	assert.Equal(t, "id", cp.Attr.Name)
	assert.False(t, cp.Attr.Wildcard)
}

func TestCompileAttrWildcard(t *testing.T) {
	cp, err := Compile("/a@*")
	require.NoError(t, err)
	assert.True(t, cp.Attr.Wildcard)
}

func TestCompilePredicate(t *testing.T) {
	cp, err := Compile("/a/b[2]")
	require.NoError(t, err)
	require.Len(t, cp.Predicates, 1)
	assert.Equal(t, 1, cp.Predicates[0].StepIndex)
	assert.Equal(t, 2, cp.Predicates[0].Target)
}

func TestCompileUnbalancedPredicate(t *testing.T) {
	_, err := Compile("/a[2")
	require.Error(t, err)
}

func TestPredicateBecomesValidAtTarget(t *testing.T) {
	cp, err := Compile("/a/b[2]")
	require.NoError(t, err)

	empty := xpath.NewAttrList()
	assert.False(t, cp.predicatesValid())

	cp.OnStartTag([]string{"a", "b"}, empty)
	assert.False(t, cp.Predicates[0].Valid(), "first b has not reached target yet")

	cp.OnStartTag([]string{"a", "b"}, empty)
	assert.True(t, cp.Predicates[0].Valid(), "second b reaches target 2")
}

func TestPredicateResetsSubsequentCounts(t *testing.T) {
	cp, err := Compile("/a[1]/b[1]")
	require.NoError(t, err)
	empty := xpath.NewAttrList()

	// b's predicate counts whenever its own prefix [a,b] matches, whether
	// or not a[1] is satisfied yet; a's prefix [a] does not match [a,b].
	cp.OnStartTag([]string{"a", "b"}, empty)
	assert.False(t, cp.Predicates[0].Valid())
	assert.True(t, cp.Predicates[1].Valid())

	cp.OnStartTag([]string{"a"}, empty)
	assert.True(t, cp.Predicates[0].Valid())

	cp.OnStartTag([]string{"a", "b"}, empty)
	assert.True(t, cp.Predicates[1].Valid())
}

func TestMatchTagUsesAllPredicates(t *testing.T) {
	cp, err := Compile("/a/b[1]")
	require.NoError(t, err)
	empty := xpath.NewAttrList()

	code, valid := cp.MatchTag([]string{"a", "b"})
	assert.Equal(t, xpath.MatchExact, code)
	assert.False(t, valid)

	cp.OnStartTag([]string{"a", "b"}, empty)
	_, valid = cp.MatchTag([]string{"a", "b"})
	assert.True(t, valid)
}

func TestReset(t *testing.T) {
	cp, err := Compile("/a[1]")
	require.NoError(t, err)
	cp.OnStartTag([]string{"a"}, xpath.NewAttrList())
	require.True(t, cp.Predicates[0].Valid())
	cp.Reset()
	assert.False(t, cp.Predicates[0].Valid())
}

func TestAttrFilterPrecheck(t *testing.T) {
	cp, err := Compile("/a@id")
	require.NoError(t, err)

	withID := xpath.NewAttrList(xpath.Attr{Name: "id", Value: "1"})
	cp.Attr.Update(withID)
	assert.True(t, cp.Attr.Check(xpath.MatchExact, "id"))
	assert.False(t, cp.Attr.Check(xpath.MatchExact, "other"))

	withoutID := xpath.NewAttrList(xpath.Attr{Name: "class", Value: "x"})
	cp.Attr.Update(withoutID)
	assert.False(t, cp.Attr.Check(xpath.MatchExact, "id"))
}
