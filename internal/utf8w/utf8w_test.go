package utf8w_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/ked-editor/ked/internal/utf8w"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	for _, r := range []rune{'a', '0', 0x7F, 0xE9, 0x4E2D, 0x1F600} {
		var buf []byte
		buf = EncodeRune(buf, r)
		cp, n := DecodeRune(buf)
		require.False(t, cp.Invalid(), "round trip of %q should decode cleanly", r)
		assert.Equal(t, r, rune(cp))
		assert.Equal(t, len(buf), n)
	}
}

func TestDecodeInvalidByte(t *testing.T) {
	cp, n := DecodeRune([]byte{0xFF, 'a'})
	assert.True(t, cp.Invalid())
	assert.Equal(t, byte(0xFF), cp.Byte())
	assert.Equal(t, 1, n)
}

func TestDecodeTruncatedSequence(t *testing.T) {
	full := EncodeRune(nil, 0x4E2D)
	cp, n := DecodeRune(full[:1])
	assert.True(t, cp.Invalid())
	assert.Equal(t, 1, n)
}

func TestNextPrevColumnSymmetry(t *testing.T) {
	// "e" + combining acute accent U+0301, forming one display column.
	var buf []byte
	buf = EncodeRune(buf, 'e')
	buf = EncodeRune(buf, 0x0301)
	buf = append(buf, "!"...)

	c := NextColumn(buf)
	assert.Equal(t, CodePoint('e'), c.Base)
	require.Len(t, c.Marks, 1)
	assert.Equal(t, CodePoint(0x0301), c.Marks[0])

	p := PrevColumn(buf[:c.Bytes])
	assert.Equal(t, c.Base, p.Base)
	assert.Equal(t, c.Bytes, p.Bytes)
}

func TestWidthCases(t *testing.T) {
	assert.Equal(t, 1, Width(CodePoint('a'), 0, 8))
	assert.Equal(t, 2, Width(CodePoint(0x01), 0, 8)) // control -> caret notation
	assert.Equal(t, 4, Width(CodePoint(-0xFF), 0, 8))
	assert.Equal(t, 8, Width(CodePoint('\t'), 0, 8))
	assert.Equal(t, 4, Width(CodePoint('\t'), 4, 8))
	assert.Equal(t, 2, Width(CodePoint(0x4E2D), 0, 8)) // CJK, double width
	assert.Equal(t, 0, Width(CodePoint(0x0301), 0, 8)) // combining mark
}

func TestIsZeroWidth(t *testing.T) {
	assert.True(t, IsZeroWidth(0x0301))
	assert.True(t, IsZeroWidth(0xFEFF))
	assert.False(t, IsZeroWidth('a'))
}
