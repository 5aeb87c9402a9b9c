package blockcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndFind(t *testing.T) {
	c := New(4096, 2)
	b, err := c.CreateBlock(5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), b.ID)
	assert.Len(t, b.Data, 4096)

	found, ok := c.Find(5)
	require.True(t, ok)
	assert.Same(t, b, found)
}

func TestFindMiss(t *testing.T) {
	c := New(4096, 2)
	_, ok := c.Find(99)
	assert.False(t, ok)
}

func TestEvictsLeastTouched(t *testing.T) {
	c := New(64, 2)
	b1, err := c.CreateBlock(1)
	require.NoError(t, err)
	_, err = c.CreateBlock(2)
	require.NoError(t, err)

	// Touch block 1 so block 2 becomes least-touched.
	c.Find(1)
	_, err = c.CreateBlock(3)
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Find(2)
	assert.False(t, ok, "block 2 should have been evicted as least-touched")
	_, ok = c.Find(1)
	assert.True(t, ok)
	_ = b1
}

func TestBlockZeroNeverEvicted(t *testing.T) {
	c := New(64, 2)
	_, err := c.CreateBlock(0)
	require.NoError(t, err)
	_, err = c.CreateBlock(1)
	require.NoError(t, err)

	_, err = c.CreateBlock(2)
	require.NoError(t, err)

	_, ok := c.Find(0)
	assert.True(t, ok, "block 0 is cold-reserved and must never be evicted")
}

func TestDuplicateInsertErrors(t *testing.T) {
	c := New(4096, 2)
	_, err := c.CreateBlock(1)
	require.NoError(t, err)
	_, err = c.CreateBlock(1)
	assert.Error(t, err)
}
