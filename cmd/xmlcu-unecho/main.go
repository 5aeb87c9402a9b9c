// Command xmlcu-unecho walks an XML document's leaves and prints each
// (path, value) pair in xml-echo's bracketed-string notation, per
// spec.md §4.15.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/filelist"
	"github.com/standardbeagle/xmlcu/internal/leafparse"
	"github.com/standardbeagle/xmlcu/internal/selection"
	"github.com/standardbeagle/xmlcu/internal/stdparse"
	"github.com/standardbeagle/xmlcu/internal/version"
	"github.com/standardbeagle/xmlcu/internal/xmlecho"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

const progname = "xmlcu-unecho"

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "print each leaf (path, value) pair as an xml-echo bracketed string",
		Version: version.Info(),
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "attributes", Aliases: []string{"a"}, Usage: "include attributes in each reported path"},
			&cli.BoolFlag{Name: "squeeze", Aliases: []string{"s"}, Usage: "collapse whitespace runs in leaf values"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		errmsg.Report(progname, "fatal", err)
		os.Exit(errmsg.ExitCode(err))
	}
}

func run(ctx *cli.Context) error {
	parsed, err := filelist.Parse(ctx.Args().Slice())
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

	flags := leafparse.SKIP_EMPTY | leafparse.PRE_CLOSE
	if ctx.Bool("squeeze") {
		flags |= leafparse.SQUEEZE
	}
	if ctx.Bool("attributes") {
		flags |= leafparse.ATTRIBUTES
	}

	u := &unechoConsumer{includeAttrs: ctx.Bool("attributes")}
	walker := leafparse.NewWalker(flags, u)

	eng := selection.New(nil)
	return stdparse.Run(files, eng, stdparse.ALLNODES, walker.AsStdparseConsumer())
}

// unechoConsumer implements leafparse.LeafConsumer, tracking the most
// recent tag path/attrs itself (from the structural callbacks every
// LeafConsumer already receives) so LeafNode can build the *xpath.Path
// xmlecho.Unecho needs, rather than re-parsing the already-rendered
// string path leafparse hands back.
type unechoConsumer struct {
	path         []string
	attrs        *xpath.AttrList
	includeAttrs bool
}

func (u *unechoConsumer) StartFile(name string) bool { return true }
func (u *unechoConsumer) EndFile(name string) bool   { return true }

func (u *unechoConsumer) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	u.path = path
	u.attrs = attrs
	return xmlevent.OK
}

func (u *unechoConsumer) EndTag(path []string, selected bool) xmlevent.Result {
	u.path = path
	return xmlevent.OK
}

func (u *unechoConsumer) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	return xmlevent.OK
}

func (u *unechoConsumer) Comment(path []string, text []byte) xmlevent.Result { return xmlevent.OK }

func (u *unechoConsumer) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	return xmlevent.OK
}

func (u *unechoConsumer) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	return xmlevent.OK
}

func (u *unechoConsumer) LeafNode(path string, value string) xmlevent.Result {
	p := xpath.NewAbsolute()
	for _, seg := range u.path {
		p.PushTag(seg)
	}
	if u.includeAttrs && u.attrs != nil {
		for _, a := range u.attrs.All() {
			p.PushAttrValue(a.Name, a.Value)
		}
	}
	fmt.Println(xmlecho.Unecho(p, value))
	return xmlevent.OK
}
