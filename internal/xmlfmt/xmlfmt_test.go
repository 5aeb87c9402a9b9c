package xmlfmt

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"
)

func reindentString(t *testing.T, in string) string {
	t.Helper()
	var out strings.Builder
	require.NoError(t, Reindent(strings.NewReader(in), &out, Options{IndentWidth: 2}))
	return out.String()
}

// TestReindentIsIdempotent checks spec.md §8's "xml-fmt ∘ xml-fmt = xml-fmt":
// running the reindenter over its own output must reproduce it exactly.
// go-difflib renders a readable unified diff on failure instead of a
// raw string-inequality message.
func TestReindentIsIdempotent(t *testing.T) {
	input := `<a><b>x</b><c><d/></c></a>`
	once := reindentString(t, input)
	twice := reindentString(t, once)

	if once != twice {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(once),
			B:        difflib.SplitLines(twice),
			FromFile: "fmt-once",
			ToFile:   "fmt-twice",
			Context:  2,
		})
		t.Fatalf("reindent is not idempotent:\n%s", diff)
	}
}

func TestReindentAddsIndentPerDepth(t *testing.T) {
	got := reindentString(t, `<a><b>x</b></a>`)
	require.Contains(t, got, "<a>")
	require.Contains(t, got, "  <b>x</b>")
}
