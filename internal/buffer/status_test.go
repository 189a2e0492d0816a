package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ked-editor/ked/internal/buffer"
)

func TestFormatStatusBasic(t *testing.T) {
	b := buffer.NewFromBytes([]byte("hello\nworld\n"))
	b.DisplayFilename = "hello.txt"

	info := buffer.StatusInfo{
		Line: 1, TotalLines: 2,
		ColChar: 1, ColDisplay: 1,
		ViewportTop: 0, ViewportHeight: 40,
	}
	got := b.FormatStatus("%f%s%m %y/%Y col %x", info)
	assert.Equal(t, "hello.txt 1/2 col 1", got)
}

func TestFormatStatusModifiedAndReadOnly(t *testing.T) {
	b := buffer.NewFromBytes([]byte("x"))
	b.ReadOnly = true
	it := b.Blocks.Iter()
	b.InsertBytes(it, []byte("y"))

	info := buffer.StatusInfo{Line: 1, TotalLines: 1, ViewportHeight: 10}
	got := b.FormatStatus("%f%s%m%s%r", info)
	assert.Contains(t, got, "*")
	assert.Contains(t, got, "RO")
}

func TestFormatStatusNoFilenameUsesPlaceholder(t *testing.T) {
	b := buffer.New()
	got := b.FormatStatus("%f", buffer.StatusInfo{})
	assert.Equal(t, "[No Name]", got)
}

func TestFormatStatusColumnMismatchShowsBoth(t *testing.T) {
	b := buffer.New()
	info := buffer.StatusInfo{ColChar: 3, ColDisplay: 9}
	got := b.FormatStatus("%X", info)
	assert.Equal(t, "3-9", got)
}

func TestFormatStatusScrollPositions(t *testing.T) {
	b := buffer.New()

	all := b.FormatStatus("%p", buffer.StatusInfo{TotalLines: 5, ViewportHeight: 40, ViewportTop: 0})
	assert.Equal(t, "All", all)

	top := b.FormatStatus("%p", buffer.StatusInfo{TotalLines: 100, ViewportHeight: 10, ViewportTop: 0})
	assert.Equal(t, "Top", top)

	bot := b.FormatStatus("%p", buffer.StatusInfo{TotalLines: 100, ViewportHeight: 10, ViewportTop: 91})
	assert.Equal(t, "Bot", bot)

	mid := b.FormatStatus("%p", buffer.StatusInfo{TotalLines: 100, ViewportHeight: 10, ViewportTop: 45})
	assert.Equal(t, "49%", mid)
}

func TestFormatStatusLiteralPercent(t *testing.T) {
	b := buffer.New()
	got := b.FormatStatus("100%%", buffer.StatusInfo{})
	assert.Equal(t, "100%", got)
}

func TestFormatStatusCursorRune(t *testing.T) {
	b := buffer.New()
	got := b.FormatStatus("%u", buffer.StatusInfo{CursorRune: 'A', HasCursorRune: true})
	assert.Equal(t, "U+0041", got)

	none := b.FormatStatus("%u", buffer.StatusInfo{})
	assert.Equal(t, "", none)
}
