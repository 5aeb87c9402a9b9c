package rollback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitRenamesTempIntoPlace(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.xml")

	m := New()
	e, err := m.Open("xmlcu-cat", target)
	require.NoError(t, err)

	_, err = e.File().WriteString("<a/>")
	require.NoError(t, err)

	require.NoError(t, m.Commit(e))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "<a/>", string(data))

	_, err = os.Stat(e.TempPath())
	assert.True(t, os.IsNotExist(err))
}

func TestAbortUnlinksTemp(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.xml")

	m := New()
	e, err := m.Open("xmlcu-cat", target)
	require.NoError(t, err)
	tempPath := e.TempPath()

	require.NoError(t, m.Abort(e))

	_, err = os.Stat(tempPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err), "abort must never create the target file")
}

func TestCleanupOnSignalUnlinksOutstandingEntries(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.xml")

	m := New()
	e, err := m.Open("xmlcu-cat", target)
	require.NoError(t, err)
	tempPath := e.TempPath()

	m.CleanupOnSignal()

	_, err = os.Stat(tempPath)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanupOnSignalSkipsCommittedEntries(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.xml")

	m := New()
	e, err := m.Open("xmlcu-cat", target)
	require.NoError(t, err)
	require.NoError(t, m.Commit(e))

	m.CleanupOnSignal()

	_, err = os.Stat(target)
	assert.NoError(t, err, "a committed entry's renamed file must survive cleanup")
}

func TestQuitStartsFalse(t *testing.T) {
	m := New()
	assert.False(t, m.Quit())
}
