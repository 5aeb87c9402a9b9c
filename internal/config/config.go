// Package config loads the ambient defaults shared by every xmlcu-*
// tool: block size, cache capacity, spill thresholds and TMPDIR
// resolution. It follows the teacher's layered-load convention: a
// global `~/.xmlcurc.toml`, then a project-local `.xmlcurc.toml`,
// merged with the project file taking precedence, and finally CLI
// flag overrides applied by the caller on top of the returned struct.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Defaults drawn from spec.md: MAXSTRINGSIZE = 64 MiB (§7), blocksize
// defaults to the filesystem block size but a TOML override is honored
// (§4.2), maxblocks bounds the block cache (§3).
const (
	DefaultMaxStringSize = 64 << 20
	DefaultBlockSize     = 4096
	DefaultMaxBlocks     = 256
	DefaultAlarmSeconds  = 1
)

// Config is the merged configuration consumed by the core packages and
// by cmd/xmlcu-* flag handlers.
type Config struct {
	BlockCache BlockCache `toml:"block_cache"`
	TempFile   TempFile   `toml:"temp_file"`
	Parser     Parser     `toml:"parser"`
}

// BlockCache mirrors spec.md §4.2's block manager knobs.
type BlockCache struct {
	BlockSize int `toml:"block_size"`
	MaxBlocks int `toml:"max_blocks"`
}

// TempFile controls temp-collect spill and rollback temp naming, per
// spec.md §6.
type TempFile struct {
	Dir          string `toml:"dir"` // empty = resolve via TMPDIR/TMP/os.TempDir()
	SpillBytes   int64  `toml:"spill_bytes"`
	MaxStringMiB int64  `toml:"max_string_mib"`
}

// Parser controls std-parser flags that make sense as persistent
// defaults (spec.md §4.10).
type Parser struct {
	Quiet          bool `toml:"quiet"`
	AlwaysChardata bool `toml:"always_chardata"`
}

// Default returns the built-in configuration used when no rc file is
// present, equivalent to the teacher's zero-config fallback in Load.
func Default() *Config {
	return &Config{
		BlockCache: BlockCache{
			BlockSize: DefaultBlockSize,
			MaxBlocks: DefaultMaxBlocks,
		},
		TempFile: TempFile{
			SpillBytes:   1 << 20,
			MaxStringMiB: DefaultMaxStringSize >> 20,
		},
		Parser: Parser{
			Quiet:          false,
			AlwaysChardata: false,
		},
	}
}

// Load resolves the global rc file, then a project-local rc file
// relative to dir, merging project-over-global exactly like the
// teacher's LoadWithRoot: project values win field-by-field, and a
// missing file at either layer is not an error.
func Load(dir string) (*Config, error) {
	cfg := Default()

	home, err := os.UserHomeDir()
	if err == nil {
		if err := mergeFile(cfg, filepath.Join(home, ".xmlcurc.toml")); err != nil {
			return nil, err
		}
	}

	searchDir := dir
	if searchDir == "" {
		searchDir = "."
	}
	if err := mergeFile(cfg, filepath.Join(searchDir, ".xmlcurc.toml")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeFile decodes path, if present, on top of cfg. A zero-valued
// field in the file leaves cfg's existing value untouched: the int/int64
// fields (BlockSize, MaxBlocks, SpillBytes, MaxStringMiB) and the Dir
// string overwrite only when non-zero/non-empty, and the booleans are
// OR-merged, so a file can turn a flag on but never back off.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var overlay Config
	if err := toml.Unmarshal(data, &overlay); err != nil {
		return err
	}

	if overlay.BlockCache.BlockSize != 0 {
		cfg.BlockCache.BlockSize = overlay.BlockCache.BlockSize
	}
	if overlay.BlockCache.MaxBlocks != 0 {
		cfg.BlockCache.MaxBlocks = overlay.BlockCache.MaxBlocks
	}
	if overlay.TempFile.Dir != "" {
		cfg.TempFile.Dir = overlay.TempFile.Dir
	}
	if overlay.TempFile.SpillBytes != 0 {
		cfg.TempFile.SpillBytes = overlay.TempFile.SpillBytes
	}
	if overlay.TempFile.MaxStringMiB != 0 {
		cfg.TempFile.MaxStringMiB = overlay.TempFile.MaxStringMiB
	}
	cfg.Parser.Quiet = cfg.Parser.Quiet || overlay.Parser.Quiet
	cfg.Parser.AlwaysChardata = cfg.Parser.AlwaysChardata || overlay.Parser.AlwaysChardata

	return nil
}

// TempDir resolves TMPDIR, then TMP, then os.TempDir(), per spec.md §6,
// unless the config explicitly names a directory.
func (c *Config) TempDir() string {
	if c.TempFile.Dir != "" {
		return c.TempFile.Dir
	}
	if v := os.Getenv("TMPDIR"); v != "" {
		return v
	}
	if v := os.Getenv("TMP"); v != "" {
		return v
	}
	return os.TempDir()
}

// MaxStringSize returns the configured MAXSTRINGSIZE in bytes.
func (c *Config) MaxStringSize() int64 {
	if c.TempFile.MaxStringMiB <= 0 {
		return DefaultMaxStringSize
	}
	return c.TempFile.MaxStringMiB << 20
}
