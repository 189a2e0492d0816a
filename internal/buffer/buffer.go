// Package buffer ties the block store and the undo tree together with
// the options, encoding, and dirty-line bookkeeping a single open file
// needs, independent of any View looking at it.
package buffer

import (
	"github.com/ked-editor/ked/internal/block"
	"github.com/ked-editor/ked/internal/change"
)

// WSError bits flag whitespace conditions the renderer should highlight.
type WSError uint8

const (
	WSErrorTrailing WSError = 1 << iota
	WSErrorSpaceIndent
	WSErrorTabIndent
	WSErrorSpaceAfterTab
	WSErrorTabAfterSpace
)

// Options holds the per-buffer editing settings a filetype config can
// override (§6, loaded by internal/cfg).
type Options struct {
	IndentWidth  int
	TabWidth     int
	ExpandTab    bool
	FileType     string
	WSError      WSError
	Newline      string // "\n" or "\r\n", the line ending used on save
	AutoIndent   bool
	DetectIndent bool
}

// DefaultOptions returns the editor's built-in option defaults.
func DefaultOptions() Options {
	return Options{
		IndentWidth: 8,
		TabWidth:    8,
		Newline:     "\n",
		AutoIndent:  true,
	}
}

// SyntaxCache is the hook a syntax highlighter registers on a Buffer so
// edits can invalidate its per-line start-state cache (§4.F.2). It is an
// interface, not a concrete dependency, so this package never imports
// internal/syntax.
type SyntaxCache interface {
	OnEdit(firstLine, delLines, insLines int)
}

// Buffer owns one file's block storage, undo history, options, and
// dirty-line tracking. It is not safe for concurrent use; all access is
// externally serialized by the caller (§5).
type Buffer struct {
	Blocks *block.List
	Change *change.Tree

	Options Options

	// Encoding is the name of the on-disk byte encoding (e.g. "UTF-8",
	// "ISO-8859-1"); internal/fileio conversions decode to and re-encode
	// from this on load/save. The buffer's own bytes are always UTF-8.
	Encoding string

	DisplayFilename string
	AbsPath         string // empty for an unsaved/scratch buffer
	ReadOnly        bool

	syntax SyntaxCache

	dirtyMin, dirtyMax int // inclusive dirty line range; dirtyMin > dirtyMax means clean

	// cursors records each View's saved cursor offset by view id, so
	// switching a View to this Buffer restores where it left off.
	cursors map[int]int
}

// New returns an empty Buffer ready for editing.
func New() *Buffer {
	b := &Buffer{
		Blocks:   block.NewList(),
		Options:  DefaultOptions(),
		Encoding: "UTF-8",
		cursors:  make(map[int]int),
	}
	b.Change = change.NewTree(b.Blocks)
	b.Change.OnEdit = b.onEdit
	b.clearDirty()
	return b
}

// NewFromBytes returns a Buffer preloaded with content, as if just read
// from disk.
func NewFromBytes(data []byte) *Buffer {
	b := &Buffer{
		Blocks:   block.NewListFromBytes(data),
		Options:  DefaultOptions(),
		Encoding: "UTF-8",
		cursors:  make(map[int]int),
	}
	b.Change = change.NewTree(b.Blocks)
	b.Change.OnEdit = b.onEdit
	b.clearDirty()
	return b
}

func (b *Buffer) clearDirty() { b.dirtyMin, b.dirtyMax = 1, 0 }

// SetSyntaxCache registers (or, passed nil, clears) the syntax
// highlighter's invalidation hook.
func (b *Buffer) SetSyntaxCache(s SyntaxCache) { b.syntax = s }

func (b *Buffer) onEdit(firstLine, delLines, insLines int) {
	b.MarkLinesChanged(firstLine, firstLine+insLines)
	if b.syntax != nil {
		b.syntax.OnEdit(firstLine, delLines, insLines)
	}
}

// MarkLinesChanged unions an inclusive 0-based line range into the dirty
// set the renderer should redraw.
func (b *Buffer) MarkLinesChanged(min, max int) {
	if min > max {
		min, max = max, min
	}
	if b.dirtyMin > b.dirtyMax {
		b.dirtyMin, b.dirtyMax = min, max
		return
	}
	if min < b.dirtyMin {
		b.dirtyMin = min
	}
	if max > b.dirtyMax {
		b.dirtyMax = max
	}
}

// DirtyLines returns the current inclusive dirty line range and whether
// there is one at all.
func (b *Buffer) DirtyLines() (min, max int, ok bool) {
	if b.dirtyMin > b.dirtyMax {
		return 0, 0, false
	}
	return b.dirtyMin, b.dirtyMax, true
}

// ClearDirty resets the dirty range after a redraw.
func (b *Buffer) ClearDirty() { b.clearDirty() }

// Modified reports whether the buffer differs from its last saved state.
func (b *Buffer) Modified() bool { return b.Change.Modified() }

// MarkSaved records the current state as saved.
func (b *Buffer) MarkSaved() { b.Change.MarkSaved() }

// InsertBytes inserts data at it and returns the position after it.
func (b *Buffer) InsertBytes(it block.BlockIter, data []byte) block.BlockIter {
	return b.Change.InsertBytes(it, data)
}

// DeleteBytes removes n bytes forward from it (Delete key semantics).
func (b *Buffer) DeleteBytes(it block.BlockIter, n int) ([]byte, block.BlockIter) {
	return b.Change.DeleteBytes(it, n)
}

// EraseBytes removes the n bytes before it (Backspace semantics).
func (b *Buffer) EraseBytes(it block.BlockIter, n int) ([]byte, block.BlockIter) {
	return b.Change.EraseBytes(it, n)
}

// ReplaceBytes deletes del bytes forward from it and inserts ins.
func (b *Buffer) ReplaceBytes(it block.BlockIter, del int, ins []byte) ([]byte, block.BlockIter) {
	return b.Change.ReplaceBytes(it, del, ins)
}

// Undo reverts the most recent change, returning the cursor offset to
// restore a View to.
func (b *Buffer) Undo() (ok bool, cursor int) { return b.Change.Undo() }

// Redo reapplies a previously undone change.
func (b *Buffer) Redo(changeID int) (ok bool, cursor int) { return b.Change.Redo(changeID) }

// SaveCursor records view id's cursor offset for later restoration by
// RestoreCursor, used when a buffer is shared by more than one View.
func (b *Buffer) SaveCursor(viewID, offset int) { b.cursors[viewID] = offset }

// RestoreCursor returns the last offset saved for view id, or 0 if none.
func (b *Buffer) RestoreCursor(viewID int) int { return b.cursors[viewID] }

// Bytes returns a copy of the full buffer content.
func (b *Buffer) Bytes() []byte { return b.Blocks.Bytes() }

// Line returns a copy of line n's bytes, including its trailing newline
// if it has one (only a final, unterminated line won't). Conditions
// that match '\n' explicitly, such as a single-line comment's closing
// transition, rely on it being present. It implements internal/syntax's
// LineSource interface so a Highlighter can pull source text
// independently of how edits reach the buffer.
func (b *Buffer) Line(n int) []byte {
	bol := b.Blocks.Iter().GotoLine(n)
	end := bol.EolPos()
	if !end.Eof() {
		_, _, end = end.Next()
	}
	return bol.GetBytes(end.GetOffset() - bol.GetOffset())
}

// LineCount returns the total number of lines (the final unterminated
// line, if any, counts as one).
func (b *Buffer) LineCount() int {
	if b.Blocks.Empty() {
		return 1
	}
	n := b.Blocks.TotalNewlines()
	if !b.Blocks.IterAtEnd().IsBol() {
		n++
	}
	return n
}
