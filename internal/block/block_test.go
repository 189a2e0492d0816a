package block_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/ked-editor/ked/internal/block"
)

func TestEmptyListInvariant(t *testing.T) {
	l := NewList()
	assert.True(t, l.Empty())
	assert.Equal(t, "", string(l.Bytes()))
}

func TestNewListFromBytesRoundTrip(t *testing.T) {
	data := []byte("one\ntwo\nthree\n")
	l := NewListFromBytes(data)
	assert.Equal(t, data, l.Bytes())
}

func TestUnterminatedFinalLine(t *testing.T) {
	data := []byte("one\ntwo")
	l := NewListFromBytes(data)
	assert.Equal(t, data, l.Bytes())

	it := l.Iter()
	n, it := it.NextLine()
	assert.Equal(t, 4, n) // "one\n"
	n, _ = it.NextLine()
	assert.Equal(t, 0, n, "unterminated final line is not a whole next line")
}

func TestGotoOffsetConsistency(t *testing.T) {
	l := NewListFromBytes([]byte("hello\nworld\nfoo bar baz\n"))
	for off := 0; off <= len(l.Bytes()); off++ {
		it := l.Iter().GotoOffset(off)
		assert.Equal(t, off, it.GetOffset(), "GotoOffset(%d) should round-trip through GetOffset", off)
	}
}

func TestGotoLine(t *testing.T) {
	l := NewListFromBytes([]byte("a\nbb\nccc\n"))
	it := l.Iter().GotoLine(1)
	assert.Equal(t, 1, it.LineNumber())
	assert.Equal(t, 2, it.GetOffset())

	it2 := l.Iter().GotoLine(2)
	assert.Equal(t, 2, it2.LineNumber())
	assert.Equal(t, 5, it2.GetOffset())
}

func TestNextPrevCharSymmetry(t *testing.T) {
	l := NewListFromBytes([]byte("héllo w中rld\n"))
	data := l.Bytes()
	it := l.Iter()
	for !it.Eof() {
		cp, n, next := it.Next()
		require.NotZero(t, n)
		back, m, prev := next.Prev()
		assert.Equal(t, n, m, "step size symmetry at offset %d", it.GetOffset())
		assert.Equal(t, cp, back, "codepoint symmetry at offset %d", it.GetOffset())
		assert.Equal(t, it.GetOffset(), prev.GetOffset())
		it = next
	}
	assert.Equal(t, len(data), it.GetOffset())
}

func TestSpliceInsertMiddle(t *testing.T) {
	l := NewListFromBytes([]byte("hello\nworld\n"))
	it := l.Iter().GotoOffset(5)
	removed, firstLine, delLines, insLines, after := l.Splice(it, 0, []byte(" there"))
	assert.Empty(t, removed)
	assert.Equal(t, 0, firstLine)
	assert.Equal(t, 0, delLines)
	assert.Equal(t, 0, insLines)
	assert.Equal(t, "hello there\nworld\n", string(l.Bytes()))
	assert.Equal(t, 11, after.GetOffset())
}

func TestSpliceDeleteAcrossLines(t *testing.T) {
	l := NewListFromBytes([]byte("one\ntwo\nthree\n"))
	it := l.Iter().GotoOffset(1) // just after 'o'
	removed, firstLine, delLines, insLines, after := l.Splice(it, 7, nil) // "ne\ntwo\n"
	assert.Equal(t, "ne\ntwo\n", string(removed))
	assert.Equal(t, 0, firstLine)
	assert.Equal(t, 2, delLines)
	assert.Equal(t, 0, insLines)
	assert.Equal(t, "othree\n", string(l.Bytes()))
	assert.Equal(t, 1, after.GetOffset())
}

func TestSpliceDeleteEverything(t *testing.T) {
	l := NewListFromBytes([]byte("abc\n"))
	it := l.Iter()
	_, _, _, _, after := l.Splice(it, 4, nil)
	assert.True(t, l.Empty())
	assert.Equal(t, 0, after.GetOffset())
}

func TestSpliceLargeInsertSplitsBlocks(t *testing.T) {
	l := NewList()
	var big []byte
	for i := 0; i < 2000; i++ {
		big = append(big, []byte("the quick brown fox jumps over the lazy dog\n")...)
	}
	_, _, _, _, after := l.Splice(l.Iter(), 0, big)
	assert.Equal(t, big, l.Bytes())
	assert.Equal(t, len(big), after.GetOffset())
}

func TestEatLineAndBolEol(t *testing.T) {
	l := NewListFromBytes([]byte("abc\ndef\n"))
	it := l.Iter()
	n, it := it.EatLine()
	assert.Equal(t, 4, n)
	assert.True(t, it.IsBol())

	mid := it.SkipBytes(2)
	bn, bolIt := mid.Bol()
	assert.Equal(t, 2, bn)
	assert.Equal(t, 4, bolIt.GetOffset())

	en, eolIt := mid.Eol()
	assert.Equal(t, 1, en)
	assert.True(t, eolIt.IsEol())
}
