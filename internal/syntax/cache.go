package syntax

// LineSource is the line-oriented view of a buffer a Highlighter reads
// from. internal/buffer.Buffer implements it.
type LineSource interface {
	Line(n int) []byte
	LineCount() int
}

// lineState is one slot in a Highlighter's start-state cache. Once an
// edit invalidates a slot, valid is cleared but state is left holding
// the old value: FillStartStates recomputes the slot but can stop as
// soon as the freshly computed state equals that old value, since every
// slot beyond it is then still correct (§4.F.2).
type lineState struct {
	state *State
	valid bool
}

// Highlighter incrementally maintains, for a Syntax and a LineSource,
// the state each line begins in, recomputing only the lines an edit
// could actually have changed the coloring of.
type Highlighter struct {
	syn    *Syntax
	src    LineSource
	starts []lineState
}

// NewHighlighter returns a Highlighter for syn over src, seeded for
// src's current content.
func NewHighlighter(syn *Syntax, src LineSource) *Highlighter {
	h := &Highlighter{syn: syn, src: src}
	h.resize(src.LineCount())
	if len(h.starts) > 0 {
		h.starts[0] = lineState{state: syn.Start(), valid: true}
	}
	return h
}

func (h *Highlighter) resize(n int) {
	if n < 1 {
		n = 1
	}
	if n <= len(h.starts) {
		h.starts = h.starts[:n]
		return
	}
	h.starts = append(h.starts, make([]lineState, n-len(h.starts))...)
}

// hlDelete removes the cache slots for the delLines lines starting
// right after firstLine.
func (h *Highlighter) hlDelete(firstLine, delLines int) {
	lo := firstLine + 1
	if lo > len(h.starts) {
		lo = len(h.starts)
	}
	hi := lo + delLines
	if hi > len(h.starts) {
		hi = len(h.starts)
	}
	if lo < hi {
		h.starts = append(h.starts[:lo], h.starts[hi:]...)
	}
}

// hlInsert makes room for insLines new (invalid, stateless) cache slots
// right after firstLine.
func (h *Highlighter) hlInsert(firstLine, insLines int) {
	if insLines <= 0 {
		return
	}
	lo := firstLine + 1
	if lo > len(h.starts) {
		lo = len(h.starts)
	}
	h.starts = append(h.starts[:lo], append(make([]lineState, insLines), h.starts[lo:]...)...)
}

// OnEdit implements buffer.SyntaxCache: firstLine is unaffected by the
// edit, so its start state stays valid; everything the edit touched or
// pushed around gets re-synced and the boundary slot right after the
// edit is invalidated (keeping its old value for FillStartStates's
// early-stop check).
func (h *Highlighter) OnEdit(firstLine, delLines, insLines int) {
	h.hlDelete(firstLine, delLines)
	h.hlInsert(firstLine, insLines)
	if b := firstLine + insLines + 1; b < len(h.starts) {
		h.starts[b].valid = false
	}
}

// FillStartStates recomputes cache slots up to and including line upTo,
// stopping early once a recomputed state matches what was cached there
// before invalidation.
func (h *Highlighter) FillStartStates(upTo int) {
	if upTo >= len(h.starts) {
		upTo = len(h.starts) - 1
	}
	for i := 1; i <= upTo; i++ {
		if h.starts[i].valid {
			continue
		}
		old := h.starts[i].state
		_, end := highlightLine(h.syn, h.starts[i-1].state, h.src.Line(i-1))
		h.starts[i] = lineState{state: end, valid: true}
		if old != nil && old == end {
			break
		}
	}
}

// HlLine returns the styled spans covering line n, computing whatever
// start states are needed to reach it.
func (h *Highlighter) HlLine(n int) []Span {
	h.FillStartStates(n)
	start := h.syn.Start()
	if n >= 0 && n < len(h.starts) {
		start = h.starts[n].state
	}
	line := h.src.Line(n)
	spans, _ := highlightLine(h.syn, start, line)
	return applyCommentWords(spans, line)
}
