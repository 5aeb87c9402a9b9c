// Package rollback implements spec.md §5's repairable write pipeline:
// every target file is written to a sibling temp file that is renamed
// into place on commit or unlinked on abort, and a process-wide signal
// handler drains the registry of any entry still outstanding when the
// process is killed. It follows the teacher's cmd/lci main.go signal
// wiring (signal.Notify onto a channel, select against the work in
// progress) generalized from "shut down the MCP server" to "unlink
// abandoned temp files and stop the current tool's main loop".
package rollback

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// Entry is a (path, temp file, committed) triple, per spec.md §4.13.
type Entry struct {
	path      string
	temp      *os.File
	committed bool
}

// TempPath returns the sibling temp file's path.
func (e *Entry) TempPath() string { return e.temp.Name() }

// File returns the open *os.File for the caller to write into.
func (e *Entry) File() *os.File { return e.temp }

// Manager is the process-wide registry described in spec.md §4.13 and
// §5: Open creates entries, Commit/Abort resolve them, and a signal
// handler started by Watch drains any entry still open when the
// process receives SIGHUP/SIGINT/SIGQUIT/SIGTERM.
//
// busy gates registry mutation the same way the source's sig-atomic
// busy flag does: Open/Commit/Abort set it for the duration of a
// registry mutation, and the signal handler skips cleanup entirely if
// it observes busy set, since the slice may be mid-append. This trades
// a (rare, bounded) missed cleanup on signal for never touching a
// half-mutated slice from two goroutines at once.
type Manager struct {
	mu      sync.Mutex
	entries []*Entry
	busy    atomic.Bool
	quit    atomic.Bool
}

// New returns an empty registry.
func New() *Manager {
	return &Manager{}
}

// Quit reports whether a shutdown signal has been observed; spec.md
// §5's CMD_QUIT bit. Tool main loops sample this between events.
func (m *Manager) Quit() bool { return m.quit.Load() }

// Open creates a sibling temp file "path.<progname>.XXXXXX" for path,
// per spec.md §4.13, and registers it.
func (m *Manager) Open(progname, path string) (*Entry, error) {
	if m.busy.Load() {
		return nil, fmt.Errorf("rollback: registry busy")
	}
	m.busy.Store(true)
	defer m.busy.Store(false)

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	f, err := os.CreateTemp(dir, base+"."+progname+".*")
	if err != nil {
		return nil, err
	}
	e := &Entry{path: path, temp: f}

	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()

	return e, nil
}

// Commit marks e for rename-on-close and performs the rename now,
// matching the source's commit(fd) + close(fd) pair collapsed into one
// call since this port has no separate deferred-close phase.
func (m *Manager) Commit(e *Entry) error {
	if m.busy.Load() {
		return fmt.Errorf("rollback: registry busy")
	}
	m.busy.Store(true)
	defer m.busy.Store(false)

	e.committed = true
	if err := e.temp.Close(); err != nil {
		return err
	}
	if err := os.Rename(e.temp.Name(), e.path); err != nil {
		return err
	}
	m.remove(e)
	return nil
}

// Abort unlinks e's temp file without touching path.
func (m *Manager) Abort(e *Entry) error {
	if m.busy.Load() {
		return fmt.Errorf("rollback: registry busy")
	}
	m.busy.Store(true)
	defer m.busy.Store(false)

	e.temp.Close()
	err := os.Remove(e.temp.Name())
	m.remove(e)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (m *Manager) remove(target *Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e == target {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return
		}
	}
}

// CleanupOnSignal unlinks every outstanding (uncommitted) temp file.
// It is safe to call directly from a signal handler goroutine: it
// checks busy first and does nothing if a registry mutation is in
// flight, matching spec.md §5's "cleanup is skipped because the data
// structure may be mid-modification" rule. The caller (Watch, or an
// atexit-equivalent deferred call on normal exit) decides when to
// invoke it.
func (m *Manager) CleanupOnSignal() {
	if m.busy.Load() {
		return
	}
	m.mu.Lock()
	pending := make([]*Entry, len(m.entries))
	copy(pending, m.entries)
	m.mu.Unlock()

	for _, e := range pending {
		if e.committed {
			continue
		}
		e.temp.Close()
		os.Remove(e.temp.Name())
	}
}

// AtExit runs CleanupOnSignal unconditionally; call it deferred from
// main on normal exit, mirroring the source's atexit handler.
func (m *Manager) AtExit() {
	m.busy.Store(false)
	m.CleanupOnSignal()
}
