// Package errmsg formats and reports tool-level failures the way
// spec.md §7 specifies: "<progname>: <label>: <message>" to stderr.
// Like the teacher, this never reaches for a structured-logging
// library; a failure is either returned up the call stack as a typed
// error (internal/errors) or reported here and the process exits.
package errmsg

import (
	"fmt"
	"os"

	"github.com/standardbeagle/xmlcu/internal/errors"
)

// Report prints "<progname>: <label>: <err>" to stderr.
func Report(progname, label string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %s: %s\n", progname, label, err)
}

// Fatal reports err and exits 1, the FATAL label's behavior from
// spec.md §7's error table.
func Fatal(progname, label string, err error) {
	Report(progname, label, err)
	os.Exit(1)
}

// ExitCode maps an error's Kind to the process exit code every
// xmlcu-* binary's main() returns, per spec.md §7: usage errors exit 2,
// environment/parse/overflow/internal errors exit 1, a nil error exits 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	type kinder interface{ Kind() errors.Kind }
	if k, ok := err.(kinder); ok && k.Kind() == errors.KindUsage {
		return 2
	}
	return 1
}
