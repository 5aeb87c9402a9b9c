// Command xmlcu-find walks one or more XML files and prints the path
// of every node a selection matches, optionally forking a helper
// program per match with -exec, per spec.md's find tool and §5's note
// that "xml-find -exec forks and execvps helper programs during tree
// traversal."
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/filelist"
	"github.com/standardbeagle/xmlcu/internal/rcm"
	"github.com/standardbeagle/xmlcu/internal/selection"
	"github.com/standardbeagle/xmlcu/internal/stdparse"
	"github.com/standardbeagle/xmlcu/internal/version"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

const progname = "xmlcu-find"

func main() {
	app := &cli.App{
		Name:    progname,
		Usage:   "print the path of every node a selection matches",
		Version: version.Info(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "exec", Usage: "run this command for each match, substituting {} with its path"},
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

	var matches []string
	for _, f := range files {
		patterns := parsed.PatternsFor(f.Name)
		eng := selection.New(patterns)
		fc := &findConsumer{}
		if err := stdparse.Run([]stdparse.File{f}, eng, 0, fc); err != nil {
			return err
		}
		matches = append(matches, fc.matches...)
	}

	for _, m := range matches {
		fmt.Println(m)
	}

	execTemplate := ctx.String("exec")
	if execTemplate == "" || len(matches) == 0 {
		if len(matches) == 0 {
			return cli.Exit("", 1)
		}
		return nil
	}

	jobs := make([]rcm.Job, 0, len(matches))
	for _, m := range matches {
		m := m
		jobs = append(jobs, rcm.Job{
			Name: m,
			Run: func(ctx context.Context) error {
				args := strings.ReplaceAll(execTemplate, "{}", m)
				cmd := exec.CommandContext(ctx, "sh", "-c", args)
				cmd.Stdout = os.Stdout
				cmd.Stderr = os.Stderr
				return cmd.Run()
			},
		})
	}
	results := rcm.RunBatch(context.Background(), jobs)
	for _, r := range results {
		if r.Err != nil {
			errmsg.Report(progname, r.Name, r.Err)
		}
	}
	return nil
}

// findConsumer records the path of every node that transitions from
// unselected to selected, the root of each match rather than every
// descendant the selection engine also marks active.
type findConsumer struct {
	path    []string
	stack   []bool
	matches []string
}

func (c *findConsumer) StartFile(name string) bool { return true }
func (c *findConsumer) EndFile(name string) bool   { return true }

func (c *findConsumer) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	wasSelected := false
	if n := len(c.stack); n > 0 {
		wasSelected = c.stack[n-1]
	}
	if selected && !wasSelected {
		c.matches = append(c.matches, "/"+strings.Join(path, "/"))
	}
	c.stack = append(c.stack, selected)
	return xmlevent.OK
}

func (c *findConsumer) EndTag(path []string, selected bool) xmlevent.Result {
	if n := len(c.stack); n > 0 {
		c.stack = c.stack[:n-1]
	}
	return xmlevent.OK
}

func (c *findConsumer) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	return xmlevent.OK
}

func (c *findConsumer) Comment(path []string, text []byte) xmlevent.Result { return xmlevent.OK }

func (c *findConsumer) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	return xmlevent.OK
}

func (c *findConsumer) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	return xmlevent.OK
}
