//go:build !unix

package tempcollect

import "os"

// unlinkAfterOpen is a no-op on platforms without Unix unlink-while-open
// semantics; callers must rely on Close to let the OS reclaim the file.
func unlinkAfterOpen(f *os.File) {}
