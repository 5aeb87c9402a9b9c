package filelist

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNoArgsDefaultsToStdin(t *testing.T) {
	p, err := Parse(nil)
	require.NoError(t, err)
	assert.True(t, p.UsedStdin)
	assert.Equal(t, []string{"-"}, p.AllFiles())
}

func TestParseLeadingPathExpressionPrependsStdin(t *testing.T) {
	p, err := Parse([]string{":/a/b"})
	require.NoError(t, err)
	assert.True(t, p.UsedStdin)
	require.Len(t, p.Groups, 1)
	assert.Equal(t, []string{"-"}, p.Groups[0].Files)
	assert.Len(t, p.Groups[0].Patterns, 1)
}

func TestParseMultipleFilesShareTrailingPatterns(t *testing.T) {
	p, err := Parse([]string{"a.xml", "b.xml", ":/x"})
	require.NoError(t, err)
	require.Len(t, p.Groups, 1)
	assert.Equal(t, []string{"a.xml", "b.xml"}, p.Groups[0].Files)
	assert.Len(t, p.Groups[0].Patterns, 1)
}

func TestParseSeparateGroupsPerPatternRun(t *testing.T) {
	p, err := Parse([]string{"a.xml", ":/x", "b.xml", ":/y", ":/z"})
	require.NoError(t, err)
	require.Len(t, p.Groups, 2)
	assert.Equal(t, []string{"a.xml"}, p.Groups[0].Files)
	assert.Equal(t, []string{"b.xml"}, p.Groups[1].Files)
	assert.Len(t, p.Groups[1].Patterns, 2)
}

func TestParseFilesWithNoPatterns(t *testing.T) {
	p, err := Parse([]string{"a.xml", "b.xml"})
	require.NoError(t, err)
	require.Len(t, p.Groups, 1)
	assert.Equal(t, []string{"a.xml", "b.xml"}, p.Groups[0].Files)
	assert.Empty(t, p.Groups[0].Patterns)
}

func TestPatternsForAggregatesAcrossGroups(t *testing.T) {
	p, err := Parse([]string{"a.xml", ":/x", "a.xml", ":/y"})
	require.NoError(t, err)
	pats := p.PatternsFor("a.xml")
	assert.Len(t, pats, 2)
}

func TestComputeArgcLeadingPathExpression(t *testing.T) {
	assert.Equal(t, 2, ComputeArgc([]string{":/a"}))
	assert.Equal(t, 1, ComputeArgc(nil))
	assert.Equal(t, 2, ComputeArgc([]string{"a.xml", ":/x"}))
}

func TestParseInvalidPatternErrors(t *testing.T) {
	_, err := Parse([]string{"a.xml", ":/a[bad"})
	require.Error(t, err)
}

func TestParseExpandsGlobFilenames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.xml"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.xml"), nil, 0o644))

	p, err := Parse([]string{filepath.Join(dir, "*.xml")})
	require.NoError(t, err)
	got := p.AllFiles()
	sort.Strings(got)
	assert.Equal(t, []string{filepath.Join(dir, "one.xml"), filepath.Join(dir, "two.xml")}, got)
}

func TestParseGlobWithNoMatchesKeptLiteral(t *testing.T) {
	p, err := Parse([]string{"nonexistent-*.xml"})
	require.NoError(t, err)
	assert.Equal(t, []string{"nonexistent-*.xml"}, p.AllFiles())
}
