package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultBlockSize, cfg.BlockCache.BlockSize)
	assert.Equal(t, DefaultMaxBlocks, cfg.BlockCache.MaxBlocks)
	assert.Equal(t, int64(DefaultMaxStringSize), cfg.MaxStringSize())
}

func TestLoadNoFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultBlockSize, cfg.BlockCache.BlockSize)
}

func TestLoadProjectOverridesGlobal(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	require.NoError(t, os.WriteFile(filepath.Join(homeDir, ".xmlcurc.toml"),
		[]byte("[block_cache]\nblock_size = 1024\nmax_blocks = 16\n"), 0o644))

	projDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projDir, ".xmlcurc.toml"),
		[]byte("[block_cache]\nmax_blocks = 64\n"), 0o644))

	cfg, err := Load(projDir)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.BlockCache.BlockSize, "global value survives when project doesn't override it")
	assert.Equal(t, 64, cfg.BlockCache.MaxBlocks, "project value wins")
}

func TestTempDirResolution(t *testing.T) {
	cfg := Default()
	t.Setenv("TMPDIR", "/var/xmlcu-tmp")
	assert.Equal(t, "/var/xmlcu-tmp", cfg.TempDir())

	cfg.TempFile.Dir = "/explicit"
	assert.Equal(t, "/explicit", cfg.TempDir())
}
