//go:build unix

package tempcollect

import "os"

// unlinkAfterOpen removes the directory entry for f immediately after
// creation. On Unix the open file descriptor keeps the data alive
// until Close, so the temp file never needs an atexit-style cleanup
// pass — it is already gone from the filesystem namespace.
func unlinkAfterOpen(f *os.File) {
	os.Remove(f.Name())
}
