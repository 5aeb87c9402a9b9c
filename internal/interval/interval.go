// Package interval parses the comma-separated range specifications
// xmlcu-cut's -c/-f/-t options accept ("1", "1-10", "-10", "1-", ...),
// grounded on xml-cut's intervalmgr: a flat list of inclusive (a, b)
// pairs tested by linear scan.
package interval

import (
	"strconv"
	"strings"

	"github.com/standardbeagle/xmlcu/internal/errors"
)

// defaultUpper mirrors the original's unbounded-range ceiling.
const defaultUpper = 65535

// Set is a parsed, comma-separated list of inclusive ranges.
type Set struct {
	ranges [][2]int
}

// Parse compiles spec into a Set. Each comma-separated token is either
// a single 1-based number ("3"), a bounded range ("1-10"), or a
// half-open range ("-10" meaning 1-10, "10-" meaning 10-65535).
func Parse(spec string) (*Set, error) {
	s := &Set{}
	for _, tok := range strings.Split(spec, ",") {
		a, b, err := parseToken(tok)
		if err != nil {
			return nil, err
		}
		s.ranges = append(s.ranges, [2]int{a, b})
	}
	return s, nil
}

func parseToken(tok string) (int, int, error) {
	dash := strings.IndexByte(tok, '-')
	if dash < 0 {
		n, err := numeric(tok)
		if err != nil {
			return 0, 0, err
		}
		return n, n, nil
	}

	left, right := tok[:dash], tok[dash+1:]
	a, b := 1, defaultUpper
	if left != "" {
		n, err := numeric(left)
		if err != nil {
			return 0, 0, err
		}
		a = n
	}
	if right != "" {
		n, err := numeric(right)
		if err != nil {
			return 0, 0, err
		}
		b = n
	}
	return a, b, nil
}

func numeric(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.NewUsageError("bad range %q: try 1, 1-10, -10, 1-, etc.", s)
	}
	return n, nil
}

// Contains reports whether n (1-based) falls in any parsed range.
func (s *Set) Contains(n int) bool {
	for _, r := range s.ranges {
		if n >= r[0] && n <= r[1] {
			return true
		}
	}
	return false
}
