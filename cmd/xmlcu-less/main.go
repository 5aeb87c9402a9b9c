// Command xmlcu-less is an interactive navigator over one XML document,
// the XML analogue of less(1): it walks a stack of selected-node
// positions (internal/cursor) backed by a block-cached view of the
// document bytes (internal/blockcache), rather than loading the whole
// file or re-rendering it on every move.
//
// Terminal rendering (curses-style screen layout, colour schemes, word
// wrap) is not attempted here; commands print one line describing the
// node the cursor lands on. The navigation core — block manager, cursor
// stack, skip engine — is the part of the original tool this port keeps.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xmlcu/internal/blockcache"
	"github.com/standardbeagle/xmlcu/internal/cursor"
	"github.com/standardbeagle/xmlcu/internal/errmsg"
	"github.com/standardbeagle/xmlcu/internal/version"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

const progname = "xmlcu-less"

const (
	blockSize = 4096
	maxBlocks = 64
)

func main() {
	app := &cli.App{
		Name:      progname,
		Usage:     "interactively navigate the XML document in FILE",
		ArgsUsage: "[FILE]",
		Version:   version.Info(),
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		errmsg.Report(progname, "fatal", err)
		os.Exit(errmsg.ExitCode(err))
	}
}

func run(ctx *cli.Context) error {
	name := ctx.Args().First()

	f, done, err := openBacking(name)
	if err != nil {
		return err
	}
	defer f.Close()

	idx, perr := buildIndex(f, done)
	if perr != nil {
		return perr
	}
	if len(idx) == 0 {
		fmt.Fprintln(os.Stdout, "(empty document)")
		return nil
	}

	v := newViewer(f, idx)
	v.render()
	v.loop(os.Stdin, os.Stdout)
	return nil
}

// openBacking returns the file xmlcu-less navigates. A real FILE is
// opened directly; stdin (or no argument) is spooled into a private
// temp file by a background goroutine, mirroring the original's
// fork-a-copier-process design without the separate OS process: the
// copier runs as a goroutine, and a closed done channel stands in for
// the original's SIGALRM-driven "more data is available" signal.
func openBacking(name string) (*os.File, <-chan struct{}, error) {
	if name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, nil, err
		}
		done := make(chan struct{})
		close(done)
		return f, done, nil
	}

	tmp, err := os.CreateTemp("", "xmlcu-less-*.xml")
	if err != nil {
		return nil, nil, err
	}
	os.Remove(tmp.Name()) // unlinked; the open fd keeps the data alive

	done := make(chan struct{})
	go func() {
		defer close(done)
		io.Copy(tmp, os.Stdin)
	}()
	return tmp, done, nil
}

// growingReader re-reads a file being concurrently appended to by the
// stdin spooler, waking on either an fsnotify write event or a 1-second
// ticker (the goroutine equivalent of the original's periodic SIGALRM),
// and treats the spooler's completion (done closed) as the point past
// which a short read really does mean EOF.
type growingReader struct {
	f       *os.File
	done    <-chan struct{}
	watcher *fsnotify.Watcher
	ticker  *time.Ticker
}

func newGrowingReader(f *os.File, done <-chan struct{}) (*growingReader, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(f.Name()); err != nil {
		w.Close()
		return nil, err
	}
	return &growingReader{f: f, done: done, watcher: w, ticker: time.NewTicker(time.Second)}, nil
}

func (g *growingReader) Close() {
	g.watcher.Close()
	g.ticker.Stop()
}

func (g *growingReader) Read(p []byte) (int, error) {
	for {
		n, err := g.f.Read(p)
		if n > 0 {
			return n, nil
		}
		if err != nil && err != io.EOF {
			return n, err
		}
		select {
		case <-g.done:
			n, err = g.f.Read(p)
			if n > 0 {
				return n, nil
			}
			return 0, io.EOF
		case <-g.watcher.Events:
		case <-g.watcher.Errors:
		case <-g.ticker.C:
		}
	}
}

// docNode is one indexed event: enough to drive cursor/skip navigation
// (kind, depth, offset) plus a short label for rendering.
type docNode struct {
	Kind   cursor.NodeKind
	Depth  int
	Offset int64
	Name   string
}

func buildIndex(f *os.File, done <-chan struct{}) ([]docNode, error) {
	var r io.Reader = f
	select {
	case <-done:
		// producer already finished (the common FILE case): read directly.
	default:
		gr, err := newGrowingReader(f, done)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		r = gr
	}

	p := xmlevent.New(bufio.NewReaderSize(r, blockSize))
	ix := &indexer{p: p}
	if err := p.Parse(f.Name(), ix); err != nil {
		return nil, err
	}
	return ix.nodes, nil
}

type indexer struct {
	p     *xmlevent.Parser
	depth int
	nodes []docNode
}

func (ix *indexer) StartTag(name string, attrs *xpath.AttrList) xmlevent.Result {
	ix.nodes = append(ix.nodes, docNode{Kind: cursor.KindStartTag, Depth: ix.depth, Offset: ix.p.Offset(), Name: name})
	ix.depth++
	return xmlevent.OK
}

func (ix *indexer) EndTag(name string) xmlevent.Result {
	if ix.depth > 0 {
		ix.depth--
	}
	ix.nodes = append(ix.nodes, docNode{Kind: cursor.KindEndTag, Depth: ix.depth, Offset: ix.p.Offset(), Name: name})
	return xmlevent.OK
}

func (ix *indexer) CharData(text []byte) xmlevent.Result {
	if strings.TrimSpace(string(text)) != "" {
		ix.nodes = append(ix.nodes, docNode{Kind: cursor.KindCharData, Depth: ix.depth, Offset: ix.p.Offset()})
	}
	return xmlevent.OK
}

func (ix *indexer) Comment(text []byte) xmlevent.Result {
	ix.nodes = append(ix.nodes, docNode{Kind: cursor.KindComment, Depth: ix.depth, Offset: ix.p.Offset()})
	return xmlevent.OK
}

func (ix *indexer) ProcInst(target string, text []byte) xmlevent.Result {
	ix.nodes = append(ix.nodes, docNode{Kind: cursor.KindProcInst, Depth: ix.depth, Offset: ix.p.Offset(), Name: target})
	return xmlevent.OK
}

func (ix *indexer) DoctypeStart(name, sysid, pubid string, hasInternalSubset bool) xmlevent.Result {
	return xmlevent.OK
}
func (ix *indexer) DoctypeEnd() xmlevent.Result                    { return xmlevent.OK }
func (ix *indexer) EntityDecl(name, value string) xmlevent.Result  { return xmlevent.OK }
func (ix *indexer) Default(raw []byte) xmlevent.Result             { return xmlevent.OK }

// blockReader serves arbitrary byte ranges of the backing file through
// blockcache.Cache, so repeatedly redrawing nearby nodes hits cached
// blocks instead of re-reading the file, per spec.md §4.2.
type blockReader struct {
	f     *os.File
	cache *blockcache.Cache
}

func newBlockReader(f *os.File) *blockReader {
	return &blockReader{f: f, cache: blockcache.New(blockSize, maxBlocks)}
}

func (r *blockReader) ReadAt(off int64, n int) []byte {
	out := make([]byte, 0, n)
	for len(out) < n {
		blockID := off / blockSize
		within := off % blockSize

		b, ok := r.cache.Find(blockID)
		if !ok {
			nb, err := r.cache.CreateBlock(blockID)
			if err != nil {
				break
			}
			buf := r.cache.BufferOf(nb)
			if _, err := r.f.ReadAt(buf, blockID*blockSize); err != nil && err != io.EOF {
				break
			}
			b = nb
		}
		buf := r.cache.BufferOf(b)
		avail := int64(len(buf)) - within
		if avail <= 0 {
			break
		}
		want := int64(n - len(out))
		if want > avail {
			want = avail
		}
		out = append(out, buf[within:within+want]...)
		off += want
	}
	return out
}

// viewer holds the navigation state: idx is the flat event index, pos
// the current index into it, and cur the nested stack of enclosing
// start-tag frames that the position descends through.
type viewer struct {
	idx    []docNode
	pos    int
	cur    *cursor.Cursor
	blocks *blockReader
	attrs  bool
}

func newViewer(f *os.File, idx []docNode) *viewer {
	v := &viewer{idx: idx, cur: cursor.New(), blocks: newBlockReader(f)}
	v.cur.Push(cursor.Frame{Offset: idx[0].Offset})
	return v
}

func toNode(n docNode) cursor.Node { return cursor.Node{Kind: n.Kind, Depth: n.Depth, Offset: n.Offset} }

type indexSource struct {
	idx []docNode
	pos int
}

func (s *indexSource) Next() (cursor.Node, bool) {
	if s.pos >= len(s.idx) {
		return cursor.Node{}, false
	}
	n := toNode(s.idx[s.pos])
	s.pos++
	return n, true
}

func (v *viewer) forward(count int) bool {
	if v.pos+1 >= len(v.idx) {
		return false
	}
	depth := v.idx[v.pos].Depth
	src := &indexSource{idx: v.idx, pos: v.pos + 1}
	_, ok := cursor.Forward(src, cursor.EqDepth(depth, cursor.KindStartTag), count)
	if !ok {
		return false
	}
	v.pos = src.pos - 1
	v.cur.Bump(v.cur.Depth()-1, v.idx[v.pos].Offset, int64(v.pos))
	return true
}

func (v *viewer) backward(count int) bool {
	depth := v.idx[v.pos].Depth
	stop := v.idx[v.pos].Offset
	src := &indexSource{idx: v.idx, pos: 0}
	var last int = -1
	for i := 0; i < count; i++ {
		n, ok := cursor.Backward(src, cursor.EqDepth(depth, cursor.KindStartTag), stop)
		if !ok {
			break
		}
		for j, nd := range v.idx {
			if nd.Offset == n.Offset && nd.Kind == n.Kind {
				last = j
				break
			}
		}
		if last < 0 {
			break
		}
		stop = v.idx[last].Offset
	}
	if last < 0 {
		return false
	}
	v.pos = last
	v.cur.Bump(v.cur.Depth()-1, v.idx[v.pos].Offset, int64(v.pos))
	return true
}

func (v *viewer) descend() bool {
	i := v.pos + 1
	if i < len(v.idx) && v.idx[i].Kind == cursor.KindStartTag && v.idx[i].Depth == v.idx[v.pos].Depth+1 {
		v.pos = i
		v.cur.Push(cursor.Frame{Offset: v.idx[i].Offset})
		return true
	}
	return false
}

func (v *viewer) ascend() bool {
	depth := v.idx[v.pos].Depth
	for i := v.pos - 1; i >= 0; i-- {
		if v.idx[i].Kind == cursor.KindStartTag && v.idx[i].Depth == depth-1 {
			v.pos = i
			v.cur.Parent()
			return true
		}
	}
	return false
}

func (v *viewer) home() {
	for v.cur.Depth() > 1 {
		v.cur.Parent()
	}
	for i, n := range v.idx {
		if n.Kind == cursor.KindStartTag && n.Depth == 0 {
			v.pos = i
			break
		}
	}
}

func (v *viewer) end() {
	for i := len(v.idx) - 1; i >= 0; i-- {
		if v.idx[i].Kind == cursor.KindStartTag {
			v.pos = i
			return
		}
	}
}

func (v *viewer) render() {
	n := v.idx[v.pos]
	preview := strings.TrimSpace(string(v.blocks.ReadAt(n.Offset, 64)))
	preview = strings.Join(strings.Fields(preview), " ")
	if len(preview) > 48 {
		preview = preview[:48] + "..."
	}
	kind := kindLabel(n.Kind)
	fmt.Fprintf(os.Stdout, "[depth %d] %s %-12s %s\n", n.Depth, kind, n.Name, preview)
}

func kindLabel(k cursor.NodeKind) string {
	switch k {
	case cursor.KindStartTag:
		return "<tag>"
	case cursor.KindEndTag:
		return "</tag>"
	case cursor.KindCharData:
		return "text"
	case cursor.KindComment:
		return "<!---->"
	case cursor.KindProcInst:
		return "<?pi?>"
	default:
		return "?"
	}
}

const helpText = `n  next sibling        p  previous sibling
i  descend (indent)    o  ascend (outdent)
f  forward 10          b  backward 10
g  home                G  end
a  toggle attribute display (unused by this renderer)
q  quit`

func (v *viewer) loop(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch cmd {
		case "q", "":
			if cmd == "q" {
				return
			}
		case "n":
			v.forward(1)
		case "f":
			v.forward(10)
		case "p":
			v.backward(1)
		case "b":
			v.backward(10)
		case "i":
			v.descend()
		case "o":
			v.ascend()
		case "g":
			v.home()
		case "G":
			v.end()
		case "a":
			v.attrs = !v.attrs
		case "?", "h":
			fmt.Fprintln(out, helpText)
			continue
		default:
			continue
		}
		v.render()
	}
}
