package xpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tags(s string) []string {
	p := NewAbsolute()
	for _, seg := range splitSimple(s) {
		p.PushTag(seg)
	}
	return p.TagNames()
}

// splitSimple splits a plain "/a/b/c" path into tag names, for test setup
// only (production code builds Paths via PushTag as the parser walks).
func splitSimple(s string) []string {
	var out []string
	cur := ""
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			continue
		}
		cur += string(s[i])
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func TestMatchExactSymmetric(t *testing.T) {
	pat, abs := ParsePatternPath("/a/b/x")
	target := tags("/a/b/x")
	assert.Equal(t, MatchExact, MatchPath(pat, abs, target))

	// swapping roles: compiling the target as a pattern and matching
	// against the original pattern's tags yields exact too.
	pat2, abs2 := ParsePatternPath("/a/b/x")
	assert.Equal(t, MatchExact, MatchPath(pat2, abs2, target))
}

func TestMatchDescendant(t *testing.T) {
	pat, abs := ParsePatternPath("//x")
	assert.Equal(t, MatchExact, MatchPath(pat, abs, tags("/a/b/x")))
}

func TestMatchTargetPrefix(t *testing.T) {
	pat, abs := ParsePatternPath("/a/b")
	assert.Equal(t, MatchTargetPrefix, MatchPath(pat, abs, tags("/a")))
}

func TestMatchPatternPrefix(t *testing.T) {
	pat, abs := ParsePatternPath("/a")
	assert.Equal(t, MatchPatternPrefix, MatchPath(pat, abs, tags("/a/b")))
}

func TestMatchNone(t *testing.T) {
	pat, abs := ParsePatternPath("/a/b")
	assert.Equal(t, MatchNone, MatchPath(pat, abs, tags("/a/c")))
}

// TestMatchWildcardSingleSegment exercises spec.md §8's literal testable
// property: an unanchored "*" never truly consumes a live path's leading
// "/", so it ranks as a structural prefix of any absolute target rather
// than an exact match, even though it is the only pattern segment there
// is.
func TestMatchWildcardSingleSegment(t *testing.T) {
	pat, abs := ParsePatternPath("*")
	assert.False(t, abs)
	assert.Equal(t, MatchPatternPrefix, MatchPath(pat, abs, tags("/anytag")))
}

// TestMatchWildcardSingleSegmentAnchored is the anchored counterpart:
// prefixing the same pattern with "/" lets it consume the target's
// leading delimiter for real, so it resolves to a true exact match.
func TestMatchWildcardSingleSegmentAnchored(t *testing.T) {
	pat, abs := ParsePatternPath("/*")
	assert.True(t, abs)
	assert.Equal(t, MatchExact, MatchPath(pat, abs, tags("/anytag")))
}

// TestMatchUnanchoredLiteralNeverMatches covers the companion case: an
// unanchored pattern whose first step is a literal tag name (not a
// wildcard) can never match anything, since that step is compared
// against the target's leading "/" rather than a tag name at all.
func TestMatchUnanchoredLiteralNeverMatches(t *testing.T) {
	pat, abs := ParsePatternPath("a")
	assert.False(t, abs)
	assert.Equal(t, MatchNone, MatchPath(pat, abs, tags("/a")))
}

func TestMatchPatternPrefixImpliesStructuralPrefix(t *testing.T) {
	pat, abs := ParsePatternPath("/a/b")
	target := tags("/a/b/c/d")
	code := MatchPath(pat, abs, target)
	assert.Contains(t, []MatchCode{MatchExact, MatchPatternPrefix}, code)
}
