// Package change implements the undo/redo tree that sits between the
// editor's editing commands and the block-linked buffer: every mutation
// goes through a Tree, which records enough to invert it and places it in
// a tree of Changes so that undo never discards a branch a redo might
// still want.
package change

import "github.com/ked-editor/ked/internal/block"

// MergeKind controls whether a newly opened change extends the most
// recently committed sibling instead of starting a new undo step.
type MergeKind int

const (
	MergeNone MergeKind = iota
	MergeInsert
	MergeDelete
	MergeErase
)

// edit is one primitive splice: del bytes removed (the pre-image, needed
// to undo) starting at offset, ins bytes put in their place (the
// post-image, needed to redo).
type edit struct {
	offset    int
	del       []byte
	ins       []byte
	moveAfter bool
}

func (e edit) undoTarget() int {
	if len(e.ins) > 0 {
		return e.offset
	}
	if e.moveAfter {
		return e.offset + len(e.del)
	}
	return e.offset
}

func (e edit) redoTarget() int {
	if len(e.ins) > 0 {
		return e.offset + len(e.ins)
	}
	return e.offset
}

// Change is one node in the undo tree. A leaf holds one or more edits
// merged together (consecutive character inserts, for example); a node
// produced by BeginChangeChain/EndChangeChain holds the flattened edits
// of every leaf collected during the chain, so undoing it reverts the
// whole chain in one step.
type Change struct {
	parent   *Change
	children []*Change
	active   int // index into children most recently applied; -1 if none

	merge MergeKind
	edits []edit
}

func abuts(prev, next edit, kind MergeKind) bool {
	switch kind {
	case MergeInsert:
		return prev.offset+len(prev.ins) == next.offset
	case MergeDelete:
		return prev.offset == next.offset
	case MergeErase:
		return next.offset+len(next.del) == prev.offset
	default:
		return false
	}
}

// Tree is the undo/redo engine for one Buffer's block.List.
type Tree struct {
	blocks *block.List
	root   *Change
	cur    *Change
	saved  *Change

	depth     int
	openMerge MergeKind
	open      *Change
	extending bool

	chainStart *Change

	// OnEdit, when set, is called after every applied or reverted splice
	// with the affected 0-based line range, so the syntax cache (§4.F) can
	// invalidate the lines it touched.
	OnEdit func(firstLine, delLines, insLines int)
}

// NewTree returns a Tree with an empty history rooted before any edit to
// blocks.
func NewTree(blocks *block.List) *Tree {
	root := &Change{active: -1}
	return &Tree{blocks: blocks, root: root, cur: root, saved: root}
}

// BeginChange opens a leaf. Nested Begin/End pairs (the dispatcher's
// outer begin_change(NONE) around a command that itself calls
// insert_bytes/delete_bytes) accumulate into the outermost leaf; only the
// outermost call's merge kind is considered for extending the previous
// sibling.
func (t *Tree) BeginChange(merge MergeKind) {
	t.depth++
	if t.depth > 1 {
		return
	}
	t.openMerge = merge
	t.open = nil
	t.extending = false
}

// EndChange closes the leaf opened by the matching BeginChange.
func (t *Tree) EndChange() {
	if t.depth == 0 {
		return
	}
	t.depth--
	if t.depth > 0 {
		return
	}
	c := t.open
	t.open = nil
	if c == nil {
		return
	}
	if !t.extending {
		c.parent.children = append(c.parent.children, c)
		c.parent.active = len(c.parent.children) - 1
		t.cur = c
	}
	t.extending = false
}

// BeginChangeChain marks the current position so a later EndChangeChain
// can collapse everything committed in between into one undo step.
func (t *Tree) BeginChangeChain() {
	t.chainStart = t.cur
}

// EndChangeChain collapses every leaf committed since the matching
// BeginChangeChain into a single Change, replacing that stretch of the
// tree. It assumes nothing branched off mid-chain, which holds because
// chaining only ever runs a synchronous sequence of BeginChange/EndChange
// calls with no undo/redo in between.
func (t *Tree) EndChangeChain() {
	start := t.chainStart
	t.chainStart = nil
	if start == nil || start == t.cur {
		return
	}
	var path []*Change
	for c := t.cur; c != start; c = c.parent {
		path = append(path, c)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	var edits []edit
	for _, c := range path {
		edits = append(edits, c.edits...)
	}
	chain := &Change{parent: start, edits: edits, active: -1}
	for i, c := range start.children {
		if c == path[0] {
			start.children[i] = chain
			start.active = i
			break
		}
	}
	t.cur = chain
}

func (t *Tree) recordEdit(e edit) {
	if t.open == nil {
		if t.openMerge != MergeNone && t.cur != t.root && t.cur.merge == t.openMerge &&
			len(t.cur.edits) > 0 && abuts(t.cur.edits[len(t.cur.edits)-1], e, t.openMerge) {
			t.open = t.cur
			t.extending = true
		} else {
			t.open = &Change{parent: t.cur, merge: t.openMerge, active: -1}
			t.extending = false
		}
	}
	t.open.edits = append(t.open.edits, e)
}

func (t *Tree) applySplice(it block.BlockIter, del int, ins []byte, moveAfter bool) (removed []byte, after block.BlockIter) {
	offset := it.GetOffset()
	removed, firstLine, delLines, insLines, after := t.blocks.Splice(it, del, ins)
	t.recordEdit(edit{offset: offset, del: removed, ins: append([]byte(nil), ins...), moveAfter: moveAfter})
	if t.OnEdit != nil {
		t.OnEdit(firstLine, delLines, insLines)
	}
	return removed, after
}

// InsertBytes inserts data at it, recording a mergeable MergeInsert edit.
func (t *Tree) InsertBytes(it block.BlockIter, data []byte) block.BlockIter {
	t.BeginChange(MergeInsert)
	defer t.EndChange()
	_, after := t.applySplice(it, 0, data, false)
	return after
}

// DeleteBytes removes n bytes forward from it (the Delete key), recording
// a mergeable MergeDelete edit whose undo leaves the cursor before the
// restored text.
func (t *Tree) DeleteBytes(it block.BlockIter, n int) ([]byte, block.BlockIter) {
	t.BeginChange(MergeDelete)
	defer t.EndChange()
	return t.applySplice(it, n, nil, false)
}

// EraseBytes removes the n bytes immediately before it (Backspace),
// recording a mergeable MergeErase edit whose undo leaves the cursor
// after the restored text.
func (t *Tree) EraseBytes(it block.BlockIter, n int) ([]byte, block.BlockIter) {
	start := it.BackBytes(n)
	actual := it.GetOffset() - start.GetOffset()
	t.BeginChange(MergeErase)
	defer t.EndChange()
	return t.applySplice(start, actual, nil, true)
}

// ReplaceBytes deletes del bytes forward from it and inserts ins in their
// place as one atomic, non-merging edit.
func (t *Tree) ReplaceBytes(it block.BlockIter, del int, ins []byte) ([]byte, block.BlockIter) {
	t.BeginChange(MergeNone)
	defer t.EndChange()
	return t.applySplice(it, del, ins, false)
}

// Undo reverts the active leaf and moves the active path to its parent.
// It reports false (and leaves the tree untouched) if already at the
// root. cursor is the offset to place the view's cursor at afterward.
func (t *Tree) Undo() (ok bool, cursor int) {
	if t.cur == t.root {
		return false, 0
	}
	c := t.cur
	for i := len(c.edits) - 1; i >= 0; i-- {
		e := c.edits[i]
		it := t.blocks.Iter().GotoOffset(e.offset)
		_, firstLine, delLines, insLines, _ := t.blocks.Splice(it, len(e.ins), e.del)
		if t.OnEdit != nil {
			t.OnEdit(firstLine, delLines, insLines)
		}
	}
	for i, ch := range c.parent.children {
		if ch == c {
			c.parent.active = i
			break
		}
	}
	t.cur = c.parent
	return true, c.edits[0].undoTarget()
}

// Redo reapplies a child of the active Change. changeID selects the
// child (1-based, matching the order children were created); 0 picks the
// most recently undone child. It reports false if the active Change has
// no children.
func (t *Tree) Redo(changeID int) (ok bool, cursor int) {
	if len(t.cur.children) == 0 {
		return false, 0
	}
	idx := t.cur.active
	if changeID > 0 {
		idx = changeID - 1
	}
	if idx < 0 || idx >= len(t.cur.children) {
		idx = len(t.cur.children) - 1
	}
	c := t.cur.children[idx]
	for _, e := range c.edits {
		it := t.blocks.Iter().GotoOffset(e.offset)
		_, firstLine, delLines, insLines, _ := t.blocks.Splice(it, len(e.del), e.ins)
		if t.OnEdit != nil {
			t.OnEdit(firstLine, delLines, insLines)
		}
	}
	t.cur.active = idx
	t.cur = c
	return true, c.edits[len(c.edits)-1].redoTarget()
}

// CanUndo reports whether Undo would do anything.
func (t *Tree) CanUndo() bool { return t.cur != t.root }

// CanRedo reports whether Redo would do anything.
func (t *Tree) CanRedo() bool { return len(t.cur.children) > 0 }

// Modified reports whether the active Change differs from the one
// recorded by MarkSaved.
func (t *Tree) Modified() bool { return t.cur != t.saved }

// MarkSaved records the active Change as the saved state.
func (t *Tree) MarkSaved() { t.saved = t.cur }
