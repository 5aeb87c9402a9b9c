// Package tempcollect implements the unbounded byte stream of spec.md
// §2 ("temp-collect"): memory-resident until a configurable threshold,
// then it spills to a private, FD_CLOEXEC, unlinked-on-close temp file.
// It backs the rcm insert payload (cp/mv), where a single insert can
// legitimately exceed the char-buffer's bounded capacity.
package tempcollect

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/standardbeagle/xmlcu/internal/cbuf"
	"github.com/standardbeagle/xmlcu/internal/errors"
)

// DefaultSpillThreshold is the point at which a Collector switches from
// an in-memory buffer to a spill file (spec.md §3: "growable byte
// buffer up to 64 MiB... above threshold, subsequent writes append to
// a private file-descriptor-only temp file").
const DefaultSpillThreshold = 1 << 20 // 1 MiB; MaxStringSize in config bounds the total.

// Collector is an append-only byte sink that spills to disk once it
// exceeds its threshold. It is not safe for concurrent use; each tool
// invocation owns its own Collector instances.
type Collector struct {
	mem       []byte
	spillFile *os.File
	spillW    *bufio.Writer
	tmpDir    string
	threshold int64
	maxSize   int64
	total     int64
	spilled   bool
}

// New creates a Collector that spills into tmpDir once it passes
// threshold bytes, refusing writes beyond maxSize (spec.md's
// MAXSTRINGSIZE).
func New(tmpDir string, threshold, maxSize int64) *Collector {
	if threshold <= 0 {
		threshold = DefaultSpillThreshold
	}
	return &Collector{
		tmpDir:    tmpDir,
		threshold: threshold,
		maxSize:   maxSize,
	}
}

// Len returns the total number of bytes written so far.
func (c *Collector) Len() int64 { return c.total }

// Write appends p, spilling to a temp file if the threshold is crossed.
func (c *Collector) Write(p []byte) (int, error) {
	if c.maxSize > 0 && c.total+int64(len(p)) > c.maxSize {
		return 0, errors.NewOverflowError("tempcollect", c.maxSize, c.total+int64(len(p)))
	}

	if !c.spilled && c.total+int64(len(p)) > c.threshold {
		if err := c.spill(); err != nil {
			return 0, err
		}
	}

	if c.spilled {
		n, err := c.spillW.Write(p)
		c.total += int64(n)
		return n, err
	}

	c.mem = append(c.mem, p...)
	c.total += int64(len(p))
	return len(p), nil
}

// Puts appends a string.
func (c *Collector) Puts(s string) error {
	_, err := c.Write([]byte(s))
	return err
}

// Printf appends a formatted string.
func (c *Collector) Printf(format string, args ...any) error {
	return c.Puts(sprintf(format, args...))
}

// AppendEntityEncoded appends s with XML special characters escaped.
func (c *Collector) AppendEntityEncoded(s string) error {
	tmp := cbuf.New("tempcollect-entity", len(s), int64(len(s))*6+16)
	if err := tmp.AppendEntityEncoded(s); err != nil {
		return err
	}
	return c.Puts(tmp.String())
}

// spill flushes the in-memory buffer to a new private temp file and
// switches subsequent writes to it. The file is unlinked immediately
// after creation on platforms that support it (Unix), so that the
// backing storage is reclaimed automatically when the fd closes,
// mirroring the source's "private to the creating process" guarantee.
func (c *Collector) spill() error {
	f, err := os.CreateTemp(c.tmpDir, "xmlcu-collect-*")
	if err != nil {
		return errors.NewEnvironmentError("mkstemp", c.tmpDir, err)
	}
	unlinkAfterOpen(f)

	if len(c.mem) > 0 {
		if _, err := f.Write(c.mem); err != nil {
			f.Close()
			return errors.NewEnvironmentError("write", f.Name(), err)
		}
	}

	c.spillFile = f
	c.spillW = bufio.NewWriter(f)
	c.spilled = true
	c.mem = nil
	return nil
}

// PeekMemory returns the in-memory prefix of the stream. It is only
// complete (equal to the whole stream) if Spilled() is false.
func (c *Collector) PeekMemory() []byte {
	return c.mem
}

// Spilled reports whether the collector has moved to a temp file.
func (c *Collector) Spilled() bool { return c.spilled }

// ReadBack streams the whole collected content to fn in order,
// reading memory first and then, if spilled, the temp file, matching
// spec.md's "streaming readback via adapter callback".
func (c *Collector) ReadBack(fn func([]byte) error) error {
	if !c.spilled {
		if len(c.mem) == 0 {
			return nil
		}
		return fn(c.mem)
	}

	if c.spillW != nil {
		if err := c.spillW.Flush(); err != nil {
			return errors.NewEnvironmentError("flush", c.spillFile.Name(), err)
		}
	}
	if _, err := c.spillFile.Seek(0, io.SeekStart); err != nil {
		return errors.NewEnvironmentError("seek", c.spillFile.Name(), err)
	}

	buf := make([]byte, 64*1024)
	r := bufio.NewReader(c.spillFile)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if cbErr := fn(buf[:n]); cbErr != nil {
				return cbErr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.NewEnvironmentError("read", c.spillFile.Name(), err)
		}
	}
	return nil
}

// Close releases the spill file, if any. Safe to call on an
// unspilled Collector.
func (c *Collector) Close() error {
	if c.spillFile == nil {
		return nil
	}
	return c.spillFile.Close()
}

func sprintf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
