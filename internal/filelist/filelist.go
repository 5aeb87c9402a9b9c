// Package filelist parses the command-line convention shared by every
// tool, per spec.md §6:
//
//	<tool> [OPTION]... [FILE [:XPATH]...]... [FILE [:XPATH]...]...
//
// Filenames and path-expressions interleave; a token beginning with ":"
// attaches to all immediately preceding filenames, back to the previous
// path-expression or the start of the list.
package filelist

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/xmlcu/internal/pattern"
)

// Group binds one or more file names to the compiled patterns that apply
// to all of them.
type Group struct {
	Files    []string
	Patterns []*pattern.CompiledPattern
}

// Parsed is the result of parsing argv's trailing file/path-expression
// arguments.
type Parsed struct {
	Groups []Group
	// UsedStdin is true when no filename was present and a synthetic
	// "stdin" file was prepended, or a leading path-expression forced one.
	UsedStdin bool
}

// Parse splits args (the FILE/:XPATH tail of argv, after option parsing)
// into Groups. Absent any filenames, a synthetic "stdin" ("-") file is
// used for the whole argument list; if the list begins with a
// path-expression, "-" is prepended ahead of it, per spec.md §6.
func Parse(args []string) (*Parsed, error) {
	if len(args) == 0 {
		return &Parsed{Groups: []Group{{Files: []string{"-"}}}, UsedStdin: true}, nil
	}

	working := args
	usedStdin := false
	if strings.HasPrefix(working[0], ":") {
		working = append([]string{"-"}, working...)
		usedStdin = true
	}

	var groups []Group
	var pendingFiles []string
	var pendingPatterns []*pattern.CompiledPattern

	flush := func() {
		if len(pendingFiles) == 0 {
			return
		}
		groups = append(groups, Group{Files: pendingFiles, Patterns: pendingPatterns})
		pendingFiles = nil
		pendingPatterns = nil
	}

	for _, tok := range working {
		if strings.HasPrefix(tok, ":") {
			cp, err := pattern.Compile(tok[1:])
			if err != nil {
				return nil, err
			}
			pendingPatterns = append(pendingPatterns, cp)
			continue
		}
		// A bare filename after patterns have already attached to the
		// current run starts a new group; a filename with no patterns
		// yet just extends the current run of plain filenames.
		if len(pendingPatterns) > 0 {
			flush()
		}
		pendingFiles = append(pendingFiles, expandGlob(tok)...)
	}
	flush()

	if len(groups) == 0 {
		groups = []Group{{Files: []string{"-"}}}
		usedStdin = true
	}

	return &Parsed{Groups: groups, UsedStdin: usedStdin}, nil
}

// expandGlob is a superset the original C tool never had: a file
// argument containing a doublestar glob meta-character ("*", "?", "[")
// is expanded against the filesystem before being bound to the
// preceding/following pattern group. A plain filename (including the
// "-" stdin marker, which contains no meta-characters) passes through
// untouched. A pattern that matches nothing is kept as a literal
// filename, so a later "file not found" error still names exactly what
// the caller typed instead of silently vanishing.
func expandGlob(tok string) []string {
	if !strings.ContainsAny(tok, "*?[") {
		return []string{tok}
	}
	matches, err := doublestar.FilepathGlob(tok)
	if err != nil || len(matches) == 0 {
		return []string{tok}
	}
	return matches
}

// AllFiles returns every file name across all groups, in order.
func (p *Parsed) AllFiles() []string {
	var out []string
	for _, g := range p.Groups {
		out = append(out, g.Files...)
	}
	return out
}

// PatternsFor returns the patterns bound to name, aggregated across every
// group that mentions it (a file named twice in the argument list
// collects every group's patterns).
func (p *Parsed) PatternsFor(name string) []*pattern.CompiledPattern {
	var out []*pattern.CompiledPattern
	for _, g := range p.Groups {
		for _, f := range g.Files {
			if f == name {
				out = append(out, g.Patterns...)
			}
		}
	}
	return out
}

// ComputeArgc mirrors the source's "compute_argc" helper: the count of
// argv tokens that belong to the file-list proper, which for a
// leading-path-expression invocation is one MORE than len(args) because
// of the synthetic stdin prepended ahead of it. Tools that report
// "processed N arguments" diagnostics reproduce this off-by-one-looking
// but intentional count rather than "fixing" it, per spec.md §4/§9: the
// synthetic file is a real list entry, and consumers that count argv
// positions to correlate diagnostics need the same count the parser
// used internally.
func ComputeArgc(args []string) int {
	if len(args) > 0 && strings.HasPrefix(args[0], ":") {
		return len(args) + 1
	}
	if len(args) == 0 {
		return 1
	}
	return len(args)
}
