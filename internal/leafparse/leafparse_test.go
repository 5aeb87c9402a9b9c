package leafparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/xmlcu/internal/pattern"
	"github.com/standardbeagle/xmlcu/internal/selection"
	"github.com/standardbeagle/xmlcu/internal/stdparse"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

type capturingConsumer struct {
	leaves []leaf
}

type leaf struct {
	path  string
	value string
}

func (c *capturingConsumer) StartFile(name string) bool { return true }
func (c *capturingConsumer) EndFile(name string) bool    { return true }
func (c *capturingConsumer) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	return xmlevent.OK
}
func (c *capturingConsumer) EndTag(path []string, selected bool) xmlevent.Result { return xmlevent.OK }
func (c *capturingConsumer) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	return xmlevent.OK
}
func (c *capturingConsumer) Comment(path []string, text []byte) xmlevent.Result { return xmlevent.OK }
func (c *capturingConsumer) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	return xmlevent.OK
}
func (c *capturingConsumer) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	return xmlevent.OK
}
func (c *capturingConsumer) LeafNode(path, value string) xmlevent.Result {
	c.leaves = append(c.leaves, leaf{path: path, value: value})
	return xmlevent.OK
}

func runDoc(t *testing.T, doc string, flags Flags) *capturingConsumer {
	t.Helper()
	cc := &capturingConsumer{}
	w := NewWalker(flags, cc)
	eng := selection.New([]*pattern.CompiledPattern{})
	err := stdparse.Run([]stdparse.File{{Name: "d.xml", Reader: strings.NewReader(doc)}}, eng, stdparse.ALLNODES, w.AsStdparseConsumer())
	require.NoError(t, err)
	return cc
}

func TestLeafEmittedOnPreClose(t *testing.T) {
	cc := runDoc(t, `<root>hello</root>`, PRE_CLOSE)
	require.Len(t, cc.leaves, 1)
	assert.Equal(t, "hello", cc.leaves[0].value)
}

func TestSqueezeCollapsesWhitespace(t *testing.T) {
	cc := runDoc(t, "<root>a   b\n\tc</root>", PRE_CLOSE|SQUEEZE)
	require.Len(t, cc.leaves, 1)
	assert.Equal(t, "a b c", cc.leaves[0].value)
}

func TestSkipEmptyDropsWhitespaceOnly(t *testing.T) {
	cc := runDoc(t, "<root>   </root>", PRE_CLOSE|SKIP_EMPTY)
	assert.Len(t, cc.leaves, 0)
}

func TestAlwaysChardataEmitsEmptyLeaf(t *testing.T) {
	cc := runDoc(t, "<root><a/></root>", PRE_CLOSE|ALWAYS_CHARDATA)
	found := false
	for _, l := range cc.leaves {
		if l.value == "" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestWrapCDATAMarkers(t *testing.T) {
	assert.Equal(t, "\\Qtext\\q", WrapCDATA("text"))
}
