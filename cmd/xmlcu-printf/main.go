// Command xmlcu-printf prints a FORMAT string with embedded conversions
// substituted by the text value of the given FILE/:XPATH pairs, the XML
// analogue of printf(1). Each conversion in FORMAT is bound, in order
// and cycling if there are more pairs than conversions, to one pair's
// matched text (or attribute value, for a trailing @name step); the
// whole format string is reprinted once per full cycle through its
// conversions.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/errors"
	"github.com/standardbeagle/xmlcu/internal/filelist"
	"github.com/standardbeagle/xmlcu/internal/pattern"
	"github.com/standardbeagle/xmlcu/internal/selection"
	"github.com/standardbeagle/xmlcu/internal/stdparse"
	"github.com/standardbeagle/xmlcu/internal/version"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

const progname = "xmlcu-printf"

func main() {
	app := &cli.App{
		Name:      progname,
		Usage:     "print FORMAT with XPATH values substituted",
		ArgsUsage: "FORMAT [FILE [:XPATH]...]...",
		Version:   version.Info(),
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		errmsg.Report(progname, "fatal", err)
		os.Exit(errmsg.ExitCode(err))
	}
}

func run(ctx *cli.Context) error {
	args := ctx.Args().Slice()
	if len(args) == 0 {
		return errors.NewUsageError("xmlcu-printf requires a FORMAT argument")
	}
	spec := parseFormat(args[0])

	parsed, err := filelist.Parse(args[1:])
	if err != nil {
		return err
	}
	files, closers, err := stdparse.OpenFiles(parsed.AllFiles())
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	if err != nil {
		return err
	}
	byName := make(map[string]stdparse.File, len(files))
	for _, f := range files {
		byName[f.Name] = f
	}

	var values []string
	for _, g := range parsed.Groups {
		for _, name := range g.Files {
			f, ok := byName[name]
			if !ok {
				continue
			}
			for _, pat := range g.Patterns {
				v, err := collectValue(f, pat)
				if err != nil {
					return err
				}
				values = append(values, v)
			}
		}
	}

	spec.Write(os.Stdout, values)
	return nil
}

// collectValue runs a single (file, pattern) pair to completion and
// joins every top-level match's text (or, for a trailing @name/@*
// pattern, its attribute value) with a newline between disjoint matches.
func collectValue(f stdparse.File, pat *pattern.CompiledPattern) (string, error) {
	eng := selection.New([]*pattern.CompiledPattern{pat})
	c := &collectConsumer{isAttr: pat.Attr.HasAttr(), attrName: pat.Attr.Name, wildcard: pat.Attr.Wildcard}
	if err := stdparse.Run([]stdparse.File{f}, eng, 0, c); err != nil {
		return "", err
	}
	return strings.Join(c.values, "\n"), nil
}

type collectConsumer struct {
	isAttr   bool
	attrName string
	wildcard bool
	depth    int
	cur      strings.Builder
	values   []string
}

func (c *collectConsumer) StartFile(name string) bool { return true }
func (c *collectConsumer) EndFile(name string) bool   { return true }

func (c *collectConsumer) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	c.depth++
	return xmlevent.OK
}

func (c *collectConsumer) EndTag(path []string, selected bool) xmlevent.Result {
	c.depth--
	if c.depth == 0 {
		c.values = append(c.values, c.cur.String())
		c.cur.Reset()
	}
	return xmlevent.OK
}

func (c *collectConsumer) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	if c.isAttr {
		return xmlevent.OK
	}
	squeezed := strings.Join(strings.Fields(string(text)), " ")
	if squeezed == "" {
		return xmlevent.OK
	}
	if c.cur.Len() > 0 {
		c.cur.WriteByte(' ')
	}
	c.cur.WriteString(squeezed)
	return xmlevent.OK
}

func (c *collectConsumer) Comment(path []string, text []byte) xmlevent.Result { return xmlevent.OK }
func (c *collectConsumer) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	return xmlevent.OK
}

func (c *collectConsumer) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	if !c.isAttr || (!c.wildcard && name != c.attrName) {
		return xmlevent.OK
	}
	if c.cur.Len() > 0 {
		c.cur.WriteByte(' ')
	}
	c.cur.WriteString(value)
	return xmlevent.OK
}

// conversion is one "%..." placeholder in FORMAT: lit is the literal
// text immediately before it, verb is the trailing conversion
// character (one of sdfgu), and raw is the full printf-style fragment
// ("%5.2f") used to format the substituted value.
type conversion struct {
	lit  string
	verb byte
	raw  string
}

// formatSpec is FORMAT split around its conversions, ready to be
// replayed once per full cycle through them.
type formatSpec struct {
	convs []conversion
	tail  string
}

func parseFormat(format string) *formatSpec {
	spec := &formatSpec{}
	var lit strings.Builder
	i := 0
	for i < len(format) {
		if format[i] == '\\' && i+1 < len(format) {
			lit.WriteByte(unescape(format[i+1]))
			i += 2
			continue
		}
		if format[i] != '%' {
			lit.WriteByte(format[i])
			i++
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			lit.WriteByte('%')
			i += 2
			continue
		}
		j := i + 1
		for j < len(format) && strings.IndexByte("sdfgu", format[j]) < 0 {
			j++
		}
		if j >= len(format) {
			lit.WriteByte(format[i])
			i++
			continue
		}
		spec.convs = append(spec.convs, conversion{lit: lit.String(), verb: format[j], raw: format[i : j+1]})
		lit.Reset()
		i = j + 1
	}
	spec.tail = lit.String()
	return spec
}

func unescape(b byte) byte {
	switch b {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return b
	}
}

// Write replays the format once per full cycle through its conversions,
// consuming one value per conversion per cycle, until every value has
// been used (or immediately, once, if FORMAT has no conversions at all).
func (s *formatSpec) Write(w *os.File, values []string) {
	if len(s.convs) == 0 {
		fmt.Fprint(w, s.tail)
		return
	}
	i := 0
	for {
		for _, c := range s.convs {
			fmt.Fprint(w, c.lit)
			if i < len(values) {
				fmt.Fprint(w, formatValue(c, values[i]))
				i++
			}
		}
		fmt.Fprint(w, s.tail)
		if i >= len(values) {
			break
		}
	}
}

func formatValue(c conversion, value string) string {
	switch c.verb {
	case 's':
		return fmt.Sprintf(c.raw, value)
	case 'd':
		n, _ := strconv.Atoi(strings.TrimSpace(value))
		return fmt.Sprintf(c.raw, n)
	case 'u':
		n, _ := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		return fmt.Sprintf(c.raw[:len(c.raw)-1]+"d", n)
	case 'f', 'g':
		g, _ := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return fmt.Sprintf(c.raw, g)
	default:
		return value
	}
}
