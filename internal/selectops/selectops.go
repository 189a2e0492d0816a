// Package selectops implements the small editing services that sit on
// top of View/Buffer/Change rather than owning state of their own (§4.K):
// indent-aware line shifting, smart auto-indent, line joining, and the
// bookmark stack (§6.a supplement).
package selectops

import (
	"bytes"

	"github.com/ked-editor/ked/internal/block"
	"github.com/ked-editor/ked/internal/buffer"
	"github.com/ked-editor/ked/internal/view"
)

// IndentInfo summarizes a line's leading whitespace (§4.K, grounded on
// get_indent_info): Width is its display width, Level is that width
// divided into whole indent units, Bytes is how many leading bytes are
// whitespace, WSOnly means the line is blank or entirely whitespace,
// and Sane means the leading whitespace is entirely one kind (spaces or
// tabs) matching the buffer's ExpandTab setting.
type IndentInfo struct {
	Width  int
	Level  int
	Bytes  int
	WSOnly bool
	Sane   bool
}

// GetIndentInfo scans line's leading whitespace.
func GetIndentInfo(line []byte, opts buffer.Options) IndentInfo {
	info := IndentInfo{Sane: true}
	var spaces, tabs, pos int
	for pos < len(line) {
		switch line[pos] {
		case ' ':
			info.Width++
			spaces++
		case '\t':
			info.Width = nextIndentWidth(info.Width, opts.TabWidth)
			tabs++
		default:
			goto done
		}
		pos++
		if info.Width%opts.IndentWidth == 0 && info.Sane {
			if opts.ExpandTab {
				info.Sane = tabs == 0
			} else {
				info.Sane = spaces == 0
			}
		}
	}
done:
	info.Level = info.Width / opts.IndentWidth
	info.WSOnly = pos == len(line)
	info.Bytes = spaces + tabs
	return info
}

func nextIndentWidth(width, tabWidth int) int {
	return width - width%tabWidth + tabWidth
}

// MakeIndent renders width columns of leading whitespace using the
// buffer's tab/space preference.
func MakeIndent(width int, opts buffer.Options) []byte {
	if width <= 0 {
		return nil
	}
	if opts.ExpandTab {
		return bytes.Repeat([]byte{' '}, width)
	}
	tabs := width / opts.TabWidth
	spaces := width % opts.TabWidth
	out := make([]byte, 0, tabs+spaces)
	out = append(out, bytes.Repeat([]byte{'\t'}, tabs)...)
	out = append(out, bytes.Repeat([]byte{' '}, spaces)...)
	return out
}

// ShiftLines indents (count > 0) or outdents (count < 0) the nr selected
// lines (or just the cursor's line, with nr=1) by |count| indent levels,
// wrapped in one change chain, mirroring shift_lines/do_shift_lines.
func ShiftLines(v *view.View, count int) {
	buf := v.Buf
	nrLines := 1
	if v.HasSelection() {
		sel := v.InitSelection()
		v.Cursor = sel.Si
		nrLines = countSelectedLines(sel)
	}

	buf.Change.BeginChangeChain()
	it := v.Cursor.BolPos()
	for i := 0; ; i++ {
		it = shiftOneLine(buf, it, count)
		if i+1 == nrLines {
			break
		}
		_, next := it.NextLine()
		it = next
	}
	buf.Change.EndChangeChain()
	v.Cursor = it
}

func countSelectedLines(sel view.Selection) int {
	n := 1
	it := sel.Si
	for it.GetOffset() < sel.Eo {
		nb, next := it.NextLine()
		if nb == 0 || next.GetOffset() > sel.Eo {
			break
		}
		n++
		it = next
	}
	return n
}

func shiftOneLine(buf *buffer.Buffer, lineStart block.BlockIter, count int) block.BlockIter {
	lineLen, _ := lineStart.Eol()
	line := lineStart.GetBytes(lineLen)
	info := GetIndentInfo(line, buf.Options)

	switch {
	case info.WSOnly:
		if info.Bytes > 0 {
			_, after := buf.DeleteBytes(lineStart, info.Bytes)
			return after.BolPos()
		}
		return lineStart
	case count > 0:
		indent := MakeIndent(count*buf.Options.IndentWidth, buf.Options)
		if !info.Sane {
			indent = MakeIndent((info.Level+count)*buf.Options.IndentWidth, buf.Options)
			_, after := buf.ReplaceBytes(lineStart, info.Bytes, indent)
			return after.BolPos()
		}
		after := buf.InsertBytes(lineStart, indent)
		return after.BolPos()
	default:
		n := -count
		if !info.Sane {
			if info.Level > n {
				indent := MakeIndent((info.Level-n)*buf.Options.IndentWidth, buf.Options)
				_, after := buf.ReplaceBytes(lineStart, info.Bytes, indent)
				return after.BolPos()
			}
			_, after := buf.DeleteBytes(lineStart, info.Bytes)
			return after.BolPos()
		}
		if info.Level == 0 {
			return lineStart
		}
		if n > info.Level {
			n = info.Level
		}
		delBytes := n
		if buf.Options.ExpandTab {
			delBytes = n * buf.Options.IndentWidth
		}
		_, after := buf.DeleteBytes(lineStart, delBytes)
		return after.BolPos()
	}
}

// ComputeIndentForNextLine returns the leading whitespace a newly
// inserted line after prevLine should start with (§6.d): a copy of
// prevLine's own indent, increased one level when prevLine ends with an
// opening brace and decreased one level when it is only a closing
// brace, the simplified form of get_indent_for_next_line's brace rule.
func ComputeIndentForNextLine(prevLine []byte, opts buffer.Options) []byte {
	info := GetIndentInfo(prevLine, opts)
	trimmed := bytes.TrimRight(prevLine, " \t\r\n")
	width := info.Width
	switch {
	case bytes.HasSuffix(trimmed, []byte("{")):
		width = nextIndentLevel(width, opts.IndentWidth)
	case isOnlyClosingBrace(bytes.TrimLeft(trimmed, " \t")):
		width -= opts.IndentWidth
		if width < 0 {
			width = 0
		}
	}
	return MakeIndent(width, opts)
}

func nextIndentLevel(width, indentWidth int) int {
	return width - width%indentWidth + indentWidth
}

func isOnlyClosingBrace(s []byte) bool {
	return len(s) == 1 && s[0] == '}'
}

// JoinLines joins count following lines onto the cursor's line, trimming
// each continuation's leading whitespace to a single joining space (or
// no space, when the continuation is empty), all in one change chain
// (§6.f, a simplification of join_lines that drops its selection-based
// variant since count already expresses "how many lines").
func JoinLines(v *view.View, count int) {
	if count < 1 {
		count = 1
	}
	buf := v.Buf
	buf.Change.BeginChangeChain()
	for i := 0; i < count; i++ {
		if !joinOnce(buf, v) {
			break
		}
	}
	buf.Change.EndChangeChain()
}

func joinOnce(buf *buffer.Buffer, v *view.View) bool {
	eol := v.Cursor.EolPos()
	if eol.Eof() {
		return false
	}
	_, nextLine := eol.Next() // step past '\n'
	if nextLine.Eof() {
		return false
	}

	trimEnd := trimBlanksBackward(eol)
	delStart := trimEnd
	delCount := eol.GetOffset() - trimEnd.GetOffset() + 1 // trailing ws + the newline

	trimmedNext := trimBlanksForward(nextLine)
	delCount += trimmedNext.GetOffset() - nextLine.GetOffset()

	v.Cursor = delStart
	if trimmedNext.IsEol() {
		buf.DeleteBytes(delStart, delCount)
	} else {
		_, after := buf.ReplaceBytes(delStart, delCount, []byte{' '})
		v.Cursor = after
		return true
	}
	v.Cursor = delStart
	return true
}

func trimBlanksBackward(it block.BlockIter) block.BlockIter {
	for {
		cp, n, prev := it.Prev()
		if n == 0 || (cp != ' ' && cp != '\t') {
			return it
		}
		it = prev
	}
}

func trimBlanksForward(it block.BlockIter) block.BlockIter {
	for {
		cp, n := it.NextChar()
		if n == 0 || (cp != ' ' && cp != '\t') {
			return it
		}
		_, _, next := it.Next()
		it = next
	}
}

// Bookmark is a saved {filename, line, column} location (§6.a).
type Bookmark struct {
	Filename string
	Line     int // 1-based
	Column   int // 1-based, in display columns
}

// maxBookmarks matches push_file_location's 256-entry cap.
const maxBookmarks = 256

// BookmarkStack is a bounded LIFO of Bookmark entries, oldest dropped
// once the stack grows past maxBookmarks.
type BookmarkStack struct {
	marks []Bookmark
}

// NewBookmarkStack returns an empty stack.
func NewBookmarkStack() *BookmarkStack { return &BookmarkStack{} }

// Push records loc, evicting the oldest entry if the stack is full.
func (s *BookmarkStack) Push(loc Bookmark) {
	if len(s.marks) == maxBookmarks {
		s.marks = s.marks[1:]
	}
	s.marks = append(s.marks, loc)
}

// Pop removes and returns the most recently pushed bookmark.
func (s *BookmarkStack) Pop() (Bookmark, bool) {
	if len(s.marks) == 0 {
		return Bookmark{}, false
	}
	last := s.marks[len(s.marks)-1]
	s.marks = s.marks[:len(s.marks)-1]
	return last, true
}

// Len reports how many bookmarks are on the stack.
func (s *BookmarkStack) Len() int { return len(s.marks) }

// CurrentBookmark captures v's cursor position as a Bookmark for filename.
func CurrentBookmark(v *view.View, filename string) Bookmark {
	return Bookmark{
		Filename: filename,
		Line:     v.Cursor.LineNumber() + 1,
		Column:   v.Column() + 1,
	}
}

// GotoBookmark seeks v's cursor to loc's line and column within the
// current buffer. Cross-file jumps are a caller responsibility (opening
// the right buffer is outside this package's scope); this only
// repositions within whatever buffer v is already attached to.
func GotoBookmark(v *view.View, loc Bookmark) {
	it := v.Buf.Blocks.Iter().GotoLine(loc.Line - 1)
	col := loc.Column - 1
	for i := 0; i < col; i++ {
		_, next := it.NextColumn()
		if next.GetOffset() == it.GetOffset() {
			break
		}
		it = next
	}
	v.Cursor = it
}
