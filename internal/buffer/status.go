package buffer

import (
	"fmt"
	"strings"
)

// StatusInfo carries the rendering-side facts FormatStatus needs but that
// Buffer itself doesn't own (cursor position, viewport, the codepoint
// under the cursor): a View or its renderer fills this in each redraw.
// Buffer deliberately does not import internal/view to supply these
// directly, since view already imports buffer.
type StatusInfo struct {
	Line, TotalLines       int // 1-based current line, total line count
	ColChar, ColDisplay    int // 1-based char column and display column
	ViewportTop            int // 0-based first visible line
	ViewportHeight         int
	CursorRune             rune
	HasCursorRune          bool
	MiscStatus             string // e.g. "RECORDING", set by a caller that knows about macros
}

// FormatStatus expands tmpl, a small printf-like template, against b and
// info. Recognized verbs: %f filename, %m modified marker, %r read-only
// marker, %y current line, %Y total lines, %x display column, %X char
// column (with -display suffix when it differs from the char column),
// %p scroll position (Top/Bot/All/NN%%), %E encoding, %M misc status,
// %n newline style, %t filetype, %u codepoint under the cursor, %%
// literal percent, %s start a new separator group (a single space is
// inserted between non-empty groups, not before every verb).
func (b *Buffer) FormatStatus(tmpl string, info StatusInfo) string {
	var out strings.Builder
	separator := false

	addSep := func() {
		if separator && out.Len() > 0 {
			out.WriteByte(' ')
		}
		separator = false
	}
	addStr := func(s string) {
		if s == "" {
			return
		}
		addSep()
		out.WriteString(s)
	}

	runes := []rune(tmpl)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if ch != '%' || i+1 >= len(runes) {
			addSep()
			out.WriteRune(ch)
			continue
		}
		i++
		switch runes[i] {
		case 'f':
			name := b.DisplayFilename
			if name == "" {
				name = "[No Name]"
			}
			addStr(name)
		case 'm':
			if b.Modified() {
				addStr("*")
			}
		case 'r':
			if b.ReadOnly {
				addStr("RO")
			}
		case 'y':
			addStr(fmt.Sprintf("%d", info.Line))
		case 'Y':
			addStr(fmt.Sprintf("%d", info.TotalLines))
		case 'x':
			addStr(fmt.Sprintf("%d", info.ColDisplay))
		case 'X':
			s := fmt.Sprintf("%d", info.ColChar)
			if info.ColDisplay != info.ColChar {
				s += fmt.Sprintf("-%d", info.ColDisplay)
			}
			addStr(s)
		case 'p':
			addStr(scrollPosition(info))
		case 'E':
			addStr(b.Encoding)
		case 'M':
			addStr(info.MiscStatus)
		case 'n':
			if b.Options.Newline == "\r\n" {
				addStr("CRLF")
			} else {
				addStr("LF")
			}
		case 't':
			addStr(b.Options.FileType)
		case 'u':
			if info.HasCursorRune {
				addStr(fmt.Sprintf("U+%04X", info.CursorRune))
			}
		case 's':
			separator = true
		case '%':
			addSep()
			out.WriteByte('%')
		}
	}
	return out.String()
}

// scrollPosition mirrors format-status.c's add_status_pos: All/Top/Bot
// when the whole buffer (or one end of it) fits the viewport, otherwise
// a rounded percentage through the buffer.
func scrollPosition(info StatusInfo) string {
	lines, h, top := info.TotalLines, info.ViewportHeight, info.ViewportTop
	if h <= 0 {
		return ""
	}
	switch {
	case lines <= h:
		if top > 0 {
			return "Bot"
		}
		return "All"
	case top == 0:
		return "Top"
	case top+h-1 >= lines:
		return "Bot"
	default:
		d := lines - (h - 1)
		return fmt.Sprintf("%d%%", (top*100+d/2)/d)
	}
}
