package stdparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/xmlcu/internal/pattern"
	"github.com/standardbeagle/xmlcu/internal/selection"
	"github.com/standardbeagle/xmlcu/internal/xmlevent"
	"github.com/standardbeagle/xmlcu/internal/xpath"
)

type recordingConsumer struct {
	starts  []string
	selects map[string]bool
	ended   []string
}

func (c *recordingConsumer) StartFile(name string) bool { return true }
func (c *recordingConsumer) EndFile(name string) bool   { return true }
func (c *recordingConsumer) StartTag(path []string, attrs *xpath.AttrList, selected bool) xmlevent.Result {
	key := strings.Join(path, "/")
	c.starts = append(c.starts, key)
	if c.selects == nil {
		c.selects = map[string]bool{}
	}
	c.selects[key] = selected
	return xmlevent.OK
}
func (c *recordingConsumer) EndTag(path []string, selected bool) xmlevent.Result {
	c.ended = append(c.ended, strings.Join(path, "/"))
	return xmlevent.OK
}
func (c *recordingConsumer) CharData(path []string, text []byte, selected bool) xmlevent.Result {
	return xmlevent.OK
}
func (c *recordingConsumer) Comment(path []string, text []byte) xmlevent.Result { return xmlevent.OK }
func (c *recordingConsumer) ProcInst(path []string, target string, text []byte) xmlevent.Result {
	return xmlevent.OK
}
func (c *recordingConsumer) Attribute(path []string, name, value string, selected bool) xmlevent.Result {
	return xmlevent.OK
}

func engineFor(t *testing.T, raw string) *selection.Engine {
	t.Helper()
	cp, err := pattern.Compile(raw)
	require.NoError(t, err)
	return selection.New([]*pattern.CompiledPattern{cp})
}

func TestOnlySelectedTagsDelivered(t *testing.T) {
	doc := `<root><a><b/></a><c/></root>`
	eng := engineFor(t, "/root/a")
	consumer := &recordingConsumer{}

	err := Run([]File{{Name: "d.xml", Reader: strings.NewReader(doc)}}, eng, 0, consumer)
	require.NoError(t, err)

	assert.Contains(t, consumer.starts, "root/a")
	assert.Contains(t, consumer.starts, "root/a/b")
	assert.NotContains(t, consumer.starts, "root/c")
}

func TestAllNodesDeliversEverything(t *testing.T) {
	doc := `<root><a/><c/></root>`
	eng := engineFor(t, "/nonexistent")
	consumer := &recordingConsumer{}

	err := Run([]File{{Name: "d.xml", Reader: strings.NewReader(doc)}}, eng, ALLNODES, consumer)
	require.NoError(t, err)

	assert.Contains(t, consumer.starts, "root")
	assert.Contains(t, consumer.starts, "root/a")
	assert.Contains(t, consumer.starts, "root/c")
}

func TestEq1FileRejectsMultiple(t *testing.T) {
	eng := engineFor(t, "/root")
	consumer := &recordingConsumer{}
	files := []File{
		{Name: "a.xml", Reader: strings.NewReader("<root/>")},
		{Name: "b.xml", Reader: strings.NewReader("<root/>")},
	}
	err := Run(files, eng, EQ1FILE, consumer)
	require.Error(t, err)
}

func TestMin1FileRejectsEmpty(t *testing.T) {
	eng := engineFor(t, "/root")
	consumer := &recordingConsumer{}
	err := Run(nil, eng, MIN1FILE, consumer)
	require.Error(t, err)
}

func TestEndTagSeesParentPath(t *testing.T) {
	doc := `<root><a/></root>`
	eng := engineFor(t, "/root")
	consumer := &recordingConsumer{}
	err := Run([]File{{Name: "d.xml", Reader: strings.NewReader(doc)}}, eng, ALLNODES, consumer)
	require.NoError(t, err)
	assert.Contains(t, consumer.ended, "root")
}

func TestEngineResetBetweenFiles(t *testing.T) {
	eng := engineFor(t, "/root[1]")
	consumer := &recordingConsumer{}
	files := []File{
		{Name: "a.xml", Reader: strings.NewReader("<root/>")},
		{Name: "b.xml", Reader: strings.NewReader("<root/>")},
	}
	err := Run(files, eng, ALLNODES, consumer)
	require.NoError(t, err)
	// Both files' <root> must be independently selectable: if the
	// predicate counter carried over, only the first file's root would
	// satisfy [1].
	assert.True(t, consumer.selects["root"])
}
