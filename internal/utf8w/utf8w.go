// Package utf8w decodes UTF-8 byte streams into code points and assigns
// each a display column width, the primitive that cursor motion, selection,
// and rendering are expressed in terms of.
package utf8w

import (
	"unicode"

	"github.com/mattn/go-runewidth"
)

// CodePoint is a Unicode scalar value. A negative value represents an
// invalid leading byte, negated: CodePoint(-b) for raw byte b.
type CodePoint rune

// Invalid reports whether cp represents a decode failure.
func (cp CodePoint) Invalid() bool { return cp < 0 }

// Byte returns the raw byte an invalid CodePoint was derived from.
// Panics if cp is not Invalid.
func (cp CodePoint) Byte() byte {
	if !cp.Invalid() {
		panic("utf8w: Byte called on a valid CodePoint")
	}
	return byte(-cp)
}

// seqLen maps a leading byte to the number of bytes its UTF-8 sequence
// should occupy, or 0 for a byte that can never lead a sequence (a stray
// continuation byte or one of the bytes UTF-8 never uses).
var seqLen = func() (tbl [256]byte) {
	for b := 0; b < 0x80; b++ {
		tbl[b] = 1
	}
	for b := 0xC2; b <= 0xDF; b++ {
		tbl[b] = 2
	}
	for b := 0xE0; b <= 0xEF; b++ {
		tbl[b] = 3
	}
	for b := 0xF0; b <= 0xF4; b++ {
		tbl[b] = 4
	}
	return tbl
}()

func isCont(b byte) bool { return b&0xC0 == 0x80 }

// DecodeRune decodes one UTF-8 scalar from the front of p.
// On success it returns the scalar and its exact byte length (1..4).
// On a decode failure it returns the negated first byte and a length of 1,
// so callers always advance by the returned size.
func DecodeRune(p []byte) (cp CodePoint, size int) {
	if len(p) == 0 {
		return 0, 0
	}
	b0 := p[0]
	n := int(seqLen[b0])
	if n == 0 {
		return CodePoint(-int(b0)), 1
	}
	if n == 1 {
		return CodePoint(b0), 1
	}
	if len(p) < n {
		return CodePoint(-int(b0)), 1
	}
	var r rune
	switch n {
	case 2:
		r = rune(b0 & 0x1F)
	case 3:
		r = rune(b0 & 0x0F)
	case 4:
		r = rune(b0 & 0x07)
	}
	for i := 1; i < n; i++ {
		c := p[i]
		if !isCont(c) {
			return CodePoint(-int(b0)), 1
		}
		r = r<<6 | rune(c&0x3F)
	}
	if !validRange(r, n) {
		return CodePoint(-int(b0)), 1
	}
	return CodePoint(r), n
}

func validRange(r rune, n int) bool {
	switch n {
	case 2:
		return r >= 0x80
	case 3:
		return r >= 0x800 && !(r >= 0xD800 && r <= 0xDFFF)
	case 4:
		return r >= 0x10000 && r <= 0x10FFFF
	}
	return false
}

// DecodeLastRune decodes one UTF-8 scalar ending at the end of p (i.e. it
// scans backward to find the start of the final sequence), returning the
// same (scalar, size) shape as DecodeRune for use by backward iteration.
func DecodeLastRune(p []byte) (cp CodePoint, size int) {
	if len(p) == 0 {
		return 0, 0
	}
	// Walk back over continuation bytes, at most 3 of them.
	i := len(p) - 1
	for k := 0; k < 3 && i > 0 && isCont(p[i]); k++ {
		i--
	}
	cp, size = DecodeRune(p[i:])
	if size != len(p)-i {
		// The lead byte we found doesn't actually own all the trailing
		// continuation bytes (corrupt sequence); treat the very last byte
		// as a lone invalid byte instead.
		b := p[len(p)-1]
		return CodePoint(-int(b)), 1
	}
	return cp, size
}

// EncodeRune appends the UTF-8 encoding of r to dst, returning the extended
// slice. Invalid or out of range scalars are encoded as U+FFFD.
func EncodeRune(dst []byte, r rune) []byte {
	switch {
	case r < 0 || r > unicode.MaxRune || (r >= 0xD800 && r <= 0xDFFF):
		r = unicode.ReplacementChar
	}
	switch {
	case r < 0x80:
		return append(dst, byte(r))
	case r < 0x800:
		return append(dst, byte(0xC0|r>>6), byte(0x80|r&0x3F))
	case r < 0x10000:
		return append(dst, byte(0xE0|r>>12), byte(0x80|(r>>6)&0x3F), byte(0x80|r&0x3F))
	default:
		return append(dst, byte(0xF0|r>>18), byte(0x80|(r>>12)&0x3F), byte(0x80|(r>>6)&0x3F), byte(0x80|r&0x3F))
	}
}

// IsZeroWidth reports whether r is a combining mark or other scalar that
// occupies no display column of its own, and so should be collected onto
// the preceding base codepoint by NextColumn.
func IsZeroWidth(r rune) bool {
	if r == 0 {
		return false
	}
	if unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Me, r) {
		return true
	}
	return isDefaultIgnorable(r)
}

// defaultIgnorableRanges is a small hand-maintained table of Unicode
// "Default_Ignorable_Code_Point" ranges. The unicode package exposes no
// such table (it is not one of the stdlib's compiled properties), so this
// one sliver is filled in by hand rather than reached for a dependency
// whose only purpose would be four range checks.
var defaultIgnorableRanges = [][2]rune{
	{0x200B, 0x200F}, // zero width space..right-to-left mark
	{0x202A, 0x202E}, // directional formatting
	{0x2060, 0x2064}, // word joiner..invisible plus
	{0xFEFF, 0xFEFF}, // BOM / zero width no-break space
	{0xFFF9, 0xFFFB}, // interlinear annotation controls
}

func isDefaultIgnorable(r rune) bool {
	for _, rg := range defaultIgnorableRanges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

// Width returns the display column width of a single code point, given the
// column it would start at (only relevant for '\t'). Invalid bytes and
// unprintable/control/surrogate scalars get fixed widths per the editor's
// rendering convention (caret notation for control bytes, "<xx>" for
// invalid bytes and unprintables).
func Width(cp CodePoint, col, tabWidth int) int {
	if cp.Invalid() {
		return 4
	}
	r := rune(cp)
	switch {
	case r == '\t':
		if tabWidth <= 0 {
			return 1
		}
		return tabWidth - col%tabWidth
	case r < 0x20 || r == 0x7F:
		return 2 // caret notation, e.g. ^X
	case r >= 0x80 && r < 0xA0:
		return 4 // C1 control
	case r >= 0xD800 && r <= 0xDFFF:
		return 4 // lone surrogate
	case IsZeroWidth(r):
		return 0
	case !unicode.IsPrint(r) && !unicode.IsSpace(r):
		return 4
	}
	if w := runewidth.RuneWidth(r); w == 2 {
		return 2
	}
	return 1
}

// Column is one base code point plus any zero-width marks collected after
// it: the unit cursor motion steps over.
type Column struct {
	Base  CodePoint
	Marks []CodePoint
	Bytes int // total bytes consumed by Base plus all Marks
}

// Width returns the display width of the whole column (the base's width;
// the collected marks contribute zero by construction).
func (c Column) Width(col, tabWidth int) int {
	return Width(c.Base, col, tabWidth)
}

// NextColumn decodes one display column from the front of p: a base
// code point, plus any immediately following zero-width marks.
func NextColumn(p []byte) (c Column) {
	cp, n := DecodeRune(p)
	c.Base = cp
	c.Bytes = n
	if cp.Invalid() {
		return c
	}
	for {
		next := p[c.Bytes:]
		mcp, msz := DecodeRune(next)
		if mcp.Invalid() || msz == 0 || !IsZeroWidth(rune(mcp)) {
			break
		}
		c.Marks = append(c.Marks, mcp)
		c.Bytes += msz
	}
	return c
}

// PrevColumn decodes one display column ending at the end of p, the mirror
// of NextColumn for backward iteration: it walks back over trailing
// zero-width marks to find the owning base code point.
func PrevColumn(p []byte) (c Column) {
	end := len(p)
	var marks []CodePoint
	for end > 0 {
		cp, sz := DecodeLastRune(p[:end])
		if sz == 0 {
			break
		}
		if cp.Invalid() || !IsZeroWidth(rune(cp)) {
			c.Base = cp
			c.Bytes = sz
			for i := len(marks) - 1; i >= 0; i-- {
				c.Bytes += encodedLen(marks[i])
			}
			c.Marks = marks
			return c
		}
		marks = append(marks, cp)
		end -= sz
	}
	return Column{}
}

func encodedLen(cp CodePoint) int {
	if cp.Invalid() {
		return 1
	}
	r := rune(cp)
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}
