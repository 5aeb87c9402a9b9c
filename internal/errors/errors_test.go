package errors

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	underlying := stderrors.New("unbalanced tag")
	err := NewParseError("doc.xml", 10, 5, 128, 3, underlying)

	assert.Equal(t, KindParse, err.Kind())
	require.ErrorIs(t, err, underlying)
	assert.Equal(t, `doc.xml:10:5: byte 128, depth 3: unbalanced tag`, err.Error())
}

func TestEnvironmentError(t *testing.T) {
	underlying := stderrors.New("permission denied")
	err := NewEnvironmentError("open", "/tmp/doc.xml", underlying)

	assert.Equal(t, KindEnvironment, err.Kind())
	require.ErrorIs(t, err, underlying)
	assert.Equal(t, "open /tmp/doc.xml: permission denied", err.Error())

	noPath := NewEnvironmentError("fork", "", underlying)
	assert.Equal(t, "fork: permission denied", noPath.Error())
}

func TestUsageError(t *testing.T) {
	err := NewUsageError("missing file before %q", ":/a/b")
	assert.Equal(t, KindUsage, err.Kind())
	assert.Equal(t, `missing file before ":/a/b"`, err.Error())
}

func TestOverflowError(t *testing.T) {
	err := NewOverflowError("char-buffer", 64<<20, 70<<20)
	assert.Equal(t, KindOverflow, err.Kind())
	assert.Contains(t, err.Error(), "char-buffer")
}

func TestInternalError(t *testing.T) {
	err := NewInternalError("cursor stack underflow at depth %d", -1)
	assert.Equal(t, KindInternal, err.Kind())
	assert.Equal(t, "internal: cursor stack underflow at depth -1", err.Error())
}

func TestClassifiedInterface(t *testing.T) {
	var errs []Classified = []Classified{
		NewParseError("f", 1, 1, 0, 0, stderrors.New("x")),
		NewEnvironmentError("open", "f", stderrors.New("x")),
		NewUsageError("x"),
		NewOverflowError("x", 1, 2),
		NewInternalError("x"),
	}
	kinds := map[Kind]bool{}
	for _, e := range errs {
		kinds[e.Kind()] = true
	}
	assert.Len(t, kinds, 5)
}

func TestMultiError(t *testing.T) {
	err1 := stderrors.New("error 1")
	err2 := stderrors.New("error 2")
	err3 := stderrors.New("error 3")

	multiErr := NewMultiError([]error{err1, err2, err3})
	require.Len(t, multiErr.Errors, 3)
	assert.Equal(t, "3 errors: [error 1 error 2 error 3]", multiErr.Error())

	singleErr := NewMultiError([]error{err1})
	assert.Equal(t, "error 1", singleErr.Error())

	emptyErr := NewMultiError(nil)
	assert.Equal(t, "no errors", emptyErr.Error())

	nilFiltered := NewMultiError([]error{err1, nil, err2, nil})
	assert.Len(t, nilFiltered.Errors, 2)

	assert.Len(t, multiErr.Unwrap(), 3)
}

func TestParseErrorTimestamp(t *testing.T) {
	err := NewParseError("f", 1, 1, 0, 0, stderrors.New("x"))
	require.False(t, err.Timestamp.IsZero())
	assert.WithinDuration(t, time.Now(), err.Timestamp, time.Second)
}
