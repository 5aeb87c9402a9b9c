package cbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndOverflow(t *testing.T) {
	b := New("test", 4, 8)
	require.NoError(t, b.Puts("1234"))
	require.NoError(t, b.Puts("5678"))
	_, err := b.Write([]byte("9"))
	require.Error(t, err)
	assert.Equal(t, "12345678", b.String())
}

func TestAppendEntityEncoded(t *testing.T) {
	b := New("test", 0, 1024)
	require.NoError(t, b.AppendEntityEncoded(`<a & "b">`))
	assert.Equal(t, `&lt;a &amp; &quot;b&quot;&gt;`, b.String())
}

func TestSqueeze(t *testing.T) {
	b := New("test", 0, 1024)
	require.NoError(t, b.Puts("a   b\t\tc\n\nd"))
	b.Squeeze()
	assert.Equal(t, "a b c d", b.String())
}

func TestIsWhitespaceOnly(t *testing.T) {
	b := New("test", 0, 1024)
	require.NoError(t, b.Puts("  \t\n "))
	assert.True(t, b.IsWhitespaceOnly())
	require.NoError(t, b.Puts("x"))
	assert.False(t, b.IsWhitespaceOnly())
}

func TestTruncate(t *testing.T) {
	b := New("test", 0, 1024)
	require.NoError(t, b.Puts("hello world"))
	b.Truncate(5)
	assert.Equal(t, "hello", b.String())
	b.Truncate(100)
	assert.Equal(t, "hello", b.String(), "truncate past length is a no-op")
}

func TestReset(t *testing.T) {
	b := New("test", 0, 1024)
	require.NoError(t, b.Puts("hello"))
	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, "", b.String())
}
