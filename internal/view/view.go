// Package view implements the cursor, selection, and preferred-column
// state that sits on top of a buffer (§4.E): the part of editor state
// that is per-viewport rather than per-file.
package view

import (
	"github.com/ked-editor/ked/internal/block"
	"github.com/ked-editor/ked/internal/buffer"
)

// SelectionKind distinguishes no selection from a character-wise or
// line-wise one.
type SelectionKind int

const (
	SelNone SelectionKind = iota
	SelChars
	SelLines
)

// selRecalc marks selEO as "derive from the current cursor offset"
// rather than a cached far end.
const selRecalc = -1

// View is one cursor/selection/viewport onto a Buffer. Multiple Views
// may share a Buffer; each keeps its own cursor and viewport.
type View struct {
	ID  int
	Buf *buffer.Buffer

	Cursor block.BlockIter

	// SelectCursorChar, when selecting by character, includes the
	// codepoint under the cursor at the high end of the selection.
	SelectCursorChar bool

	selKind SelectionKind
	selSO   int
	selEO   int

	preferredX    int
	hasPreferredX bool

	vx, vy int // viewport origin in display columns/lines
}

// New returns a View positioned at the start of buf.
func New(id int, buf *buffer.Buffer) *View {
	return &View{
		ID:               id,
		Buf:              buf,
		Cursor:           buf.Blocks.Iter(),
		SelectCursorChar: true,
	}
}

// Attach switches the view onto a different buffer, restoring whatever
// cursor offset was last saved for this view id (or the start of the
// buffer if none was).
func (v *View) Attach(buf *buffer.Buffer) {
	if v.Buf != nil {
		v.Buf.SaveCursor(v.ID, v.Cursor.GetOffset())
	}
	v.Buf = buf
	v.Cursor = buf.Blocks.Iter().GotoOffset(buf.RestoreCursor(v.ID))
	v.ClearSelection()
	v.hasPreferredX = false
}

// Column returns the display column of the cursor on its current line.
func (v *View) Column() int {
	return columnOf(v.Cursor.BolPos(), v.Cursor, v.Buf.Options.TabWidth)
}

func columnOf(from, to block.BlockIter, tabWidth int) int {
	col := 0
	it := from
	for it.GetOffset() < to.GetOffset() {
		c, next := it.NextColumn()
		if c.Bytes == 0 {
			break
		}
		col += c.Width(col, tabWidth)
		it = next
	}
	return col
}

func (v *View) setPreferredColumn() {
	v.preferredX = v.Column()
	v.hasPreferredX = true
}

func moveToColumn(lineStart block.BlockIter, target, tabWidth int) block.BlockIter {
	it := lineStart
	col := 0
	for {
		if it.IsEol() {
			return it
		}
		c, next := it.NextColumn()
		if c.Bytes == 0 {
			return it
		}
		w := c.Width(col, tabWidth)
		if col+w > target {
			return it
		}
		col += w
		it = next
	}
}

// MoveLeft moves the cursor back one column and clears the preferred
// column (any horizontal motion does).
func (v *View) MoveLeft() {
	_, prev := v.Cursor.PrevColumn()
	v.Cursor = prev
	v.hasPreferredX = false
}

// MoveRight moves the cursor forward one column and clears the
// preferred column.
func (v *View) MoveRight() {
	_, next := v.Cursor.NextColumn()
	v.Cursor = next
	v.hasPreferredX = false
}

// MoveDown moves the cursor to the equivalent (preferred) column on the
// next line, clamped to that line's length.
func (v *View) MoveDown() {
	if !v.hasPreferredX {
		v.setPreferredColumn()
	}
	n, next := v.Cursor.NextLine()
	if n == 0 {
		return
	}
	v.Cursor = moveToColumn(next, v.preferredX, v.Buf.Options.TabWidth)
}

// MoveUp moves the cursor to the equivalent (preferred) column on the
// previous line, clamped to that line's length.
func (v *View) MoveUp() {
	if !v.hasPreferredX {
		v.setPreferredColumn()
	}
	bol := v.Cursor.BolPos()
	if bol.Bof() {
		return
	}
	_, prevBol := v.Cursor.PrevLine()
	v.Cursor = moveToColumn(prevBol, v.preferredX, v.Buf.Options.TabWidth)
}

// StartSelection begins a selection of the given kind anchored at the
// current cursor offset.
func (v *View) StartSelection(kind SelectionKind) {
	v.selKind = kind
	v.selSO = v.Cursor.GetOffset()
	v.selEO = selRecalc
}

// ClearSelection drops the current selection, if any.
func (v *View) ClearSelection() { v.selKind = SelNone }

// HasSelection reports whether a selection is active.
func (v *View) HasSelection() bool { return v.selKind != SelNone }

// FreezeSelection caches the current cursor offset as the selection's
// far end, used after a replace moves text out from under the cursor.
func (v *View) FreezeSelection() {
	if v.selKind != SelNone {
		v.selEO = v.Cursor.GetOffset()
	}
}

// Selection is the normalized, expanded form of a View's current
// selection: So <= Eo, with Si an iterator already positioned at So.
type Selection struct {
	So, Eo  int
	Si      block.BlockIter
	Swapped bool
}

// InitSelection normalizes the active selection's ordering and, for a
// line selection, expands it to whole lines.
func (v *View) InitSelection() Selection {
	so, eo := v.selSO, v.selEO
	if eo == selRecalc {
		eo = v.Cursor.GetOffset()
	}
	swapped := false
	if so > eo {
		so, eo = eo, so
		swapped = true
	}

	switch v.selKind {
	case SelLines:
		si := v.Buf.Blocks.Iter().GotoOffset(so).BolPos()
		so = si.GetOffset()
		end := v.Buf.Blocks.Iter().GotoOffset(eo).EolPos()
		if !end.Eof() {
			_, _, end = end.Next() // step past the line's '\n'
		}
		return Selection{So: so, Eo: end.GetOffset(), Si: si, Swapped: swapped}
	default:
		si := v.Buf.Blocks.Iter().GotoOffset(so)
		if v.SelectCursorChar {
			end := v.Buf.Blocks.Iter().GotoOffset(eo)
			_, n := end.NextChar()
			eo += n
		}
		return Selection{So: so, Eo: eo, Si: si, Swapped: swapped}
	}
}

// PrepareSelection moves the cursor to the low end of the selection and
// returns its byte length.
func (v *View) PrepareSelection() int {
	sel := v.InitSelection()
	v.Cursor = sel.Si
	return sel.Eo - sel.So
}
