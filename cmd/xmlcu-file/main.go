// Command xmlcu-file identifies the document type of one or more XML
// files from their DOCTYPE declaration and root element name, the XML
// analogue of file(1)'s magic-number sniffing.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/errors"
	"github.com/standardbeagle/xmlcu/internal/version"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

const progname = "xmlcu-file"

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "determine the type of FILE(s)",
		Version: version.Info(),
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "show-everything", Usage: "print every recognized feature, not just the identification"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		errmsg.Report(progname, "fatal", err)
		os.Exit(errmsg.ExitCode(err))
	}
}

// magicRule matches one recognized document shape, tried top to bottom;
// the first match wins.
type magicRule struct {
	field string // "doctype" or "tag"
	value string
	ident string
}

var magic = []magicRule{
	{"doctype", "html", "HTML text document"},
	{"tag", "html", "HTML text fragment"},
	{"tag", "rdf:RDF", "RDF text fragment"},
	{"tag", "rss", "RSS 2.0 text document"},
	{"doctype", "svg", "SVG text document"},
	{"tag", "svg", "SVG text fragment"},
	{"tag", "math", "MathML text fragment"},
	{"tag", "mrow", "MathML text fragment"},
}

func identify(doctype, tag string) string {
	for _, m := range magic {
		var have string
		switch m.field {
		case "doctype":
			have = doctype
		case "tag":
			have = tag
		}
		if have != "" && strings.EqualFold(have, m.value) {
			return m.ident
		}
	}
	return "XML text"
}

func run(ctx *cli.Context) error {
	names := ctx.Args().Slice()
	if len(names) == 0 {
		return errors.NewUsageError("xmlcu-file requires at least one FILE argument")
	}

	llf := 0
	for _, n := range names {
		if len(n) > llf {
			llf = len(n)
		}
	}

	show := ctx.Bool("show-everything")
	for _, name := range names {
		f, err := os.Open(name)
		if err != nil {
			fmt.Printf("%s:%s%s\n", name, strings.Repeat(" ", llf+1-len(name)), "unrecognized data")
			continue
		}
		feats := &fileConsumer{}
		p := xmlevent.New(f)
		parseErr := p.Parse(name, feats)
		f.Close()

		var id string
		if parseErr != nil && !feats.sawTag {
			id = "unrecognized data"
		} else {
			id = identify(feats.doctype, feats.tag)
		}

		if show {
			fmt.Printf("[file] %s [doctype] %s [sysid] %s [pubid] %s [tag] %s\n",
				name, feats.doctype, feats.sysid, feats.pubid, feats.tag)
		}
		fmt.Printf("%s:%s%s\n", name, strings.Repeat(" ", llf+1-len(name)), id)
	}
	return nil
}

// fileConsumer is an xmlevent.Consumer (not stdparse.Consumer) since it
// needs the DOCTYPE declaration, which stdparse's Consumer interface
// doesn't expose.
type fileConsumer struct {
	doctype, sysid, pubid, tag string
	sawTag                     bool
}

func (c *fileConsumer) DoctypeStart(name, sysid, pubid string, hasInternalSubset bool) xmlevent.Result {
	c.doctype, c.sysid, c.pubid = name, sysid, pubid
	return xmlevent.OK
}
func (c *fileConsumer) DoctypeEnd() xmlevent.Result { return xmlevent.OK }

// StartTag aborts immediately: file only needs the root element's name.
func (c *fileConsumer) StartTag(name string, attrs *xpath.AttrList) xmlevent.Result {
	c.tag = name
	c.sawTag = true
	return xmlevent.ABORT
}
func (c *fileConsumer) EndTag(name string) xmlevent.Result           { return xmlevent.OK }
func (c *fileConsumer) CharData(text []byte) xmlevent.Result         { return xmlevent.OK }
func (c *fileConsumer) Comment(text []byte) xmlevent.Result          { return xmlevent.OK }
func (c *fileConsumer) ProcInst(target string, text []byte) xmlevent.Result {
	return xmlevent.OK
}
func (c *fileConsumer) EntityDecl(name, value string) xmlevent.Result { return xmlevent.OK }
func (c *fileConsumer) Default(raw []byte) xmlevent.Result            { return xmlevent.OK }
