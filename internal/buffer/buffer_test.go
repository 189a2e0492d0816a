package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/ked-editor/ked/internal/buffer"
)

type fakeSyntax struct {
	calls [][3]int
}

func (f *fakeSyntax) OnEdit(firstLine, delLines, insLines int) {
	f.calls = append(f.calls, [3]int{firstLine, delLines, insLines})
}

func TestNewIsEmptyAndUnmodified(t *testing.T) {
	b := New()
	assert.False(t, b.Modified())
	assert.Equal(t, 1, b.LineCount())
	assert.Equal(t, "", string(b.Bytes()))
}

func TestInsertMarksDirtyAndNotifiesSyntax(t *testing.T) {
	b := New()
	fs := &fakeSyntax{}
	b.SetSyntaxCache(fs)

	it := b.Blocks.Iter()
	b.InsertBytes(it, []byte("one\ntwo\n"))

	assert.True(t, b.Modified())
	assert.Equal(t, 2, b.LineCount())
	require.Len(t, fs.calls, 1)
	assert.Equal(t, [3]int{0, 0, 2}, fs.calls[0])

	min, max, ok := b.DirtyLines()
	require.True(t, ok)
	assert.Equal(t, 0, min)
	assert.Equal(t, 2, max)
}

func TestMarkSavedClearsModified(t *testing.T) {
	b := New()
	b.InsertBytes(b.Blocks.Iter(), []byte("x"))
	require.True(t, b.Modified())
	b.MarkSaved()
	assert.False(t, b.Modified())
}

func TestCursorSavedPerView(t *testing.T) {
	b := New()
	b.SaveCursor(1, 5)
	b.SaveCursor(2, 9)
	assert.Equal(t, 5, b.RestoreCursor(1))
	assert.Equal(t, 9, b.RestoreCursor(2))
	assert.Equal(t, 0, b.RestoreCursor(3))
}

func TestMarkLinesChangedUnion(t *testing.T) {
	b := New()
	b.MarkLinesChanged(3, 5)
	b.MarkLinesChanged(1, 2)
	min, max, ok := b.DirtyLines()
	require.True(t, ok)
	assert.Equal(t, 1, min)
	assert.Equal(t, 5, max)

	b.ClearDirty()
	_, _, ok = b.DirtyLines()
	assert.False(t, ok)
}
