// Package sedscript parses and applies the substitution scripts
// xmlcu-sed accepts, per spec.md §8's "s/foo/bar/g" scenario. It mirrors
// the shape of a single sed "s" command: a delimiter-bounded pattern and
// replacement, plus a trailing flag letter set.
package sedscript

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/xmlcu/internal/errors"
)

// Substitution is a compiled "s<delim>pattern<delim>replacement<delim>flags"
// script.
type Substitution struct {
	pattern     *regexp.Regexp
	replacement string
	global      bool
}

// Parse compiles script. Only the "s" command is recognized; the
// character immediately following "s" is the delimiter, matching sed's
// own convention of letting the caller pick one (commonly "/", but any
// byte works so patterns containing "/" don't need escaping).
func Parse(script string) (*Substitution, error) {
	if len(script) < 2 || script[0] != 's' {
		return nil, errors.NewUsageError("sed script must start with 's<delim>pattern<delim>replacement<delim>[flags]', got %q", script)
	}
	delim := script[1]
	fields, err := splitFields(script[2:], delim)
	if err != nil {
		return nil, err
	}
	if len(fields) != 3 {
		return nil, errors.NewUsageError("sed script %q must have exactly pattern, replacement, and flags separated by %q", script, string(delim))
	}

	pat, err := regexp.Compile(fields[0])
	if err != nil {
		return nil, errors.NewUsageError("sed pattern %q does not compile: %s", fields[0], err)
	}

	return &Substitution{
		pattern:     pat,
		replacement: translateReplacement(fields[1], delim),
		global:      strings.Contains(fields[2], "g"),
	}, nil
}

// splitFields splits s on unescaped delim bytes, honoring "\<delim>" as
// a literal delimiter rather than a field boundary.
func splitFields(s string, delim byte) ([]string, error) {
	var fields []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && s[i+1] == delim {
			cur.WriteByte(delim)
			i++
			continue
		}
		if c == delim {
			fields = append(fields, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	fields = append(fields, cur.String())
	if len(fields) < 3 {
		return nil, errors.NewUsageError("sed script is missing a trailing %q before the flags", string(delim))
	}
	return fields, nil
}

// translateReplacement rewrites sed-style "\1".."\9" backreferences into
// Go's "${1}".."${9}" expansion syntax and escapes literal "$" so
// regexp.Expand doesn't mistake it for one, and unescapes "\<delim>".
func translateReplacement(repl string, delim byte) string {
	var out strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		switch {
		case c == '$':
			out.WriteString("$$")
		case c == '\\' && i+1 < len(repl) && repl[i+1] >= '0' && repl[i+1] <= '9':
			out.WriteString("${")
			out.WriteByte(repl[i+1])
			out.WriteByte('}')
			i++
		case c == '\\' && i+1 < len(repl) && repl[i+1] == delim:
			out.WriteByte(delim)
			i++
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

// Apply runs the substitution against value: every match if global,
// otherwise only the first.
func (s *Substitution) Apply(value string) string {
	if s.global {
		return s.pattern.ReplaceAllString(value, s.replacement)
	}
	loc := s.pattern.FindStringSubmatchIndex(value)
	if loc == nil {
		return value
	}
	var out []byte
	out = append(out, value[:loc[0]]...)
	out = s.pattern.ExpandString(out, s.replacement, value, loc)
	out = append(out, value[loc[1]:]...)
	return string(out)
}
