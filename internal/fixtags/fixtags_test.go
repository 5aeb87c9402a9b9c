package fixtags

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repair(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	r := New(bytes.NewBufferString(input), &out)
	require.NoError(t, r.Run())
	return out.String()
}

func TestWellFormedInputPassesThrough(t *testing.T) {
	assert.Equal(t, "<a><b>x</b></a>", repair(t, "<a><b>x</b></a>"))
}

func TestWrapsOrphanedContentInSyntheticRoot(t *testing.T) {
	assert.Equal(t, "<doc>hello</doc>", repair(t, "hello"))
}

func TestFirstTagBecomesRealRootWithoutWrapping(t *testing.T) {
	assert.Equal(t, `<?xml version="1.0"?><a/>`, repair(t, `<?xml version="1.0"?><a/>`))
}

func TestMismatchedEndTagAutoCloses(t *testing.T) {
	assert.Equal(t, "<a><b>x</b></a>", repair(t, "<a><b>x</a>"))
}

func TestStrayEndTagDropped(t *testing.T) {
	assert.Equal(t, "<a>x</a>", repair(t, "<a>x</b></a>"))
}

func TestUnterminatedTagsCloseAtEOF(t *testing.T) {
	assert.Equal(t, "<a><b>x</b></a>", repair(t, "<a><b>x"))
}

func TestUnknownEntityEscaped(t *testing.T) {
	assert.Equal(t, "<a>A &amp;foo; B</a>", repair(t, "<a>A &foo; B</a>"))
}

func TestKnownEntityPassesThrough(t *testing.T) {
	assert.Equal(t, "<a>&amp;</a>", repair(t, "<a>&amp;</a>"))
}

func TestNumericEntityPassesThrough(t *testing.T) {
	assert.Equal(t, "<a>&#65;</a>", repair(t, "<a>&#65;</a>"))
}

// TestWellFormedAttributeQuotingPassesThroughVerbatim exercises spec.md
// §8's "already well-formed input is echoed byte-equivalent" invariant:
// single-quoted attribute values, extra inter-attribute whitespace, and a
// spaced self-close are all valid XML and must not be re-quoted,
// re-spaced, or otherwise canonicalized.
func TestWellFormedAttributeQuotingPassesThroughVerbatim(t *testing.T) {
	assert.Equal(t, `<a attr='v'/>`, repair(t, `<a attr='v'/>`))
	assert.Equal(t, `<a attr="v" />`, repair(t, `<a attr="v" />`))
	assert.Equal(t, `<a   x='1'  y="2"   />`, repair(t, `<a   x='1'  y="2"   />`))
}

// TestUnquotedAttributeValueGetsQuoted covers the companion repair case:
// an unquoted AttValue is never well-formed XML to begin with, so it is
// not protected by the byte-equivalence invariant and is quoted/escaped.
func TestUnquotedAttributeValueGetsQuoted(t *testing.T) {
	assert.Equal(t, `<a attr="v"/>`, repair(t, `<a attr=v/>`))
}

func TestDuplicateAttributesSuffixed(t *testing.T) {
	got := repair(t, `<a id="1" id="2" id="3"/>`)
	assert.Equal(t, `<a id="1" id_1="2" id_2="3"/>`, got)
}

func TestMalformedLessThanEscaped(t *testing.T) {
	assert.Equal(t, "<a>1 &lt; 2</a>", repair(t, "<a>1 < 2</a>"))
}

func TestInvalidNameStartRewritten(t *testing.T) {
	got := repair(t, "<9tag>x</9tag>")
	assert.Equal(t, "<_9tag>x</_9tag>", got)
}

func TestXMLDeclMidDocumentRewritten(t *testing.T) {
	got := repair(t, "<a><?xml foo?></a>")
	assert.Contains(t, got, "<?xm_ foo?>")
}

func TestUnknownBangWrappedAsComment(t *testing.T) {
	got := repair(t, "<a><!weird></a>")
	assert.Contains(t, got, "<!-- weird -->")
}

func TestCommentPassesThrough(t *testing.T) {
	assert.Equal(t, "<a><!-- note --></a>", repair(t, "<a><!-- note --></a>"))
}

func TestCDATAPassesThrough(t *testing.T) {
	assert.Equal(t, "<a><![CDATA[<raw>]]></a>", repair(t, "<a><![CDATA[<raw>]]></a>"))
}
