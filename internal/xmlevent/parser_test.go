package xmlevent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/xmlcu/internal/xpath"
)

type recording struct {
	events []string
	stopAt int
	abortAt int
}

func (r *recording) result() Result {
	if len(r.events) == r.stopAt && r.stopAt > 0 {
		return OK | STOP
	}
	if len(r.events) == r.abortAt && r.abortAt > 0 {
		return OK | ABORT
	}
	return OK
}

func (r *recording) StartTag(name string, attrs *xpath.AttrList) Result {
	r.events = append(r.events, "start:"+name)
	return r.result()
}
func (r *recording) EndTag(name string) Result {
	r.events = append(r.events, "end:"+name)
	return r.result()
}
func (r *recording) CharData(text []byte) Result {
	r.events = append(r.events, "text:"+string(text))
	return r.result()
}
func (r *recording) Comment(text []byte) Result {
	r.events = append(r.events, "comment:"+string(text))
	return r.result()
}
func (r *recording) ProcInst(target string, text []byte) Result {
	r.events = append(r.events, "pi:"+target)
	return r.result()
}
func (r *recording) DoctypeStart(name, sysid, pubid string, hasInternalSubset bool) Result {
	r.events = append(r.events, "doctype-start:"+name)
	return r.result()
}
func (r *recording) DoctypeEnd() Result {
	r.events = append(r.events, "doctype-end")
	return r.result()
}
func (r *recording) EntityDecl(name, value string) Result {
	r.events = append(r.events, "entity:"+name+"="+value)
	return r.result()
}
func (r *recording) Default(raw []byte) Result {
	r.events = append(r.events, "default:"+string(raw))
	return OK
}

func TestBasicDocumentSequence(t *testing.T) {
	doc := `<root a="1"><child>text</child></root>`
	p := New(strings.NewReader(doc))
	rec := &recording{}
	err := p.Parse("doc.xml", rec)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"start:root",
		"start:child",
		"text:text",
		"end:child",
		"end:root",
	}, rec.events)
}

func TestAttributesCaptured(t *testing.T) {
	doc := `<root a="1" b="2"/>`
	p := New(strings.NewReader(doc))

	var captured *xpath.AttrList
	consumer := &captureConsumer{onStart: func(name string, attrs *xpath.AttrList) {
		captured = attrs
	}}
	err := p.Parse("doc.xml", consumer)
	require.NoError(t, err)
	require.NotNil(t, captured)
	v, ok := captured.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestStopSuspendsAndRestartResumes(t *testing.T) {
	doc := `<root><a/><b/></root>`
	p := New(strings.NewReader(doc))
	rec := &recording{stopAt: 2}
	err := p.Parse("doc.xml", rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"start:root", "start:a"}, rec.events)

	rec.stopAt = 0
	err = p.Restart("doc.xml", rec)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"start:root", "start:a", "end:a", "start:b", "end:b", "end:root",
	}, rec.events)
}

func TestAbortStopsImmediately(t *testing.T) {
	doc := `<root><a/><b/></root>`
	p := New(strings.NewReader(doc))
	rec := &recording{abortAt: 2}
	err := p.Parse("doc.xml", rec)
	require.NoError(t, err)
	assert.True(t, p.Aborted())
	assert.Equal(t, []string{"start:root", "start:a"}, rec.events)
}

func TestUnknownEntityPassesThrough(t *testing.T) {
	doc := `<root>&undeclared;</root>`
	p := New(strings.NewReader(doc))
	rec := &recording{}
	err := p.Parse("doc.xml", rec)
	require.NoError(t, err)
	assert.Contains(t, rec.events, "text:&undeclared;")
}

func TestDoctypeWithEntity(t *testing.T) {
	doc := `<!DOCTYPE root [<!ENTITY foo "bar">]><root/>`
	p := New(strings.NewReader(doc))
	rec := &recording{}
	err := p.Parse("doc.xml", rec)
	require.NoError(t, err)
	assert.Contains(t, rec.events, "doctype-start:root")
	assert.Contains(t, rec.events, "entity:foo=bar")
	assert.Contains(t, rec.events, "doctype-end")
}

func TestLineAndColumnTracking(t *testing.T) {
	doc := "<root>\n<child/>\n</root>"
	p := New(strings.NewReader(doc))
	rec := &recording{}
	err := p.Parse("doc.xml", rec)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.Line(), 1)
}

type captureConsumer struct {
	onStart func(name string, attrs *xpath.AttrList)
}

func (c *captureConsumer) StartTag(name string, attrs *xpath.AttrList) Result {
	if c.onStart != nil {
		c.onStart(name, attrs)
	}
	return OK
}
func (c *captureConsumer) EndTag(name string) Result                   { return OK }
func (c *captureConsumer) CharData(text []byte) Result                 { return OK }
func (c *captureConsumer) Comment(text []byte) Result                  { return OK }
func (c *captureConsumer) ProcInst(target string, text []byte) Result  { return OK }
func (c *captureConsumer) DoctypeStart(name, sysid, pubid string, hasInternalSubset bool) Result {
	return OK
}
func (c *captureConsumer) DoctypeEnd() Result                  { return OK }
func (c *captureConsumer) EntityDecl(name, value string) Result { return OK }
func (c *captureConsumer) Default(raw []byte) Result            { return OK }
