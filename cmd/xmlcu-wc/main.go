// Command xmlcu-wc counts elements, attributes, words, and characters
// in one or more XML documents, the XML analogue of wc's line/word/byte
// counts.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/filelist"
	"github.com/standardbeagle/xmlcu/internal/selection"
	"github.com/standardbeagle/xmlcu/internal/stdparse"
	"github.com/standardbeagle/xmlcu/internal/version"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

const progname = "xmlcu-wc"

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "count elements, attributes, words, and characters in an XML stream",
		Version: version.Info(),
		Action:  run,
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

	var total counts
	multi := len(files) > 1
	for _, f := range files {
		c := &wcConsumer{}
		eng := selection.New(parsed.PatternsFor(f.Name))
		if err := stdparse.Run([]stdparse.File{f}, eng, stdparse.ALLNODES, c); err != nil {
			return err
		}
		c.totals.print(f.Name)
		total.add(c.totals)
	}
	if multi {
		total.print("total")
	}
	return nil
}

type counts struct {
	elements   int
	attributes int
	words      int
	chars      int
}

func (c *counts) add(o counts) {
	c.elements += o.elements
	c.attributes += o.attributes
	c.words += o.words
	c.chars += o.chars
}

func (c counts) print(label string) {
	fmt.Printf("%8d %8d %8d %8d %s\n", c.elements, c.attributes, c.words, c.chars, label)
}

type wcConsumer struct {
	totals counts
}

func (c *wcConsumer) StartFile(name string) bool { return true }
func (c *wcConsumer) EndFile(name string) bool   { return true }

func (c *wcConsumer) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	c.totals.elements++
	if attrs != nil {
		c.totals.attributes += len(attrs.All())
	}
	return xmlevent.OK
}

func (c *wcConsumer) EndTag(path []string, selected bool) xmlevent.Result {
	return xmlevent.OK
}

func (c *wcConsumer) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	c.totals.chars += len(text)
	c.totals.words += len(strings.Fields(string(text)))
	return xmlevent.OK
}

func (c *wcConsumer) Comment(path []string, text []byte) xmlevent.Result {
	return xmlevent.OK
}

func (c *wcConsumer) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	return xmlevent.OK
}

func (c *wcConsumer) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	return xmlevent.OK
}
