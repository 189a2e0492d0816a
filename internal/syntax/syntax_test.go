package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/ked-editor/ked/internal/syntax"
)

type fakeSource struct {
	lines []string
}

func (f *fakeSource) Line(n int) []byte { return []byte(f.lines[n]) }
func (f *fakeSource) LineCount() int    { return len(f.lines) }

func TestHighlighterKeywordCommentAndDefault(t *testing.T) {
	syn := Shell()
	src := &fakeSource{lines: []string{"do echo hi # comment\n"}}
	h := NewHighlighter(syn, src)

	spans := h.HlLine(0)
	require.Len(t, spans, 3)
	assert.Equal(t, Span{Style: StyleKeyword, Len: 2}, spans[0])
	assert.Equal(t, Span{Style: StyleDefault, Len: 9}, spans[1])
	assert.Equal(t, Span{Style: StyleComment, Len: 10}, spans[2])
}

func TestHighlighterHeredocMerge(t *testing.T) {
	lib := BuiltinLibrary()
	syn := lib.Lookup("shell")
	require.NotNil(t, syn)

	src := &fakeSource{lines: []string{
		"cat <<EOF\n",
		"hello\n",
		"EOF\n",
	}}
	h := NewHighlighter(syn, src)

	bodySpans := h.HlLine(1)
	require.Len(t, bodySpans, 1)
	assert.Equal(t, StyleHeredoc, bodySpans[0].Style)
	assert.Equal(t, len(src.lines[1]), bodySpans[0].Len)

	endSpans := h.HlLine(2)
	for _, sp := range endSpans {
		assert.NotEqual(t, StyleHeredoc, sp.Style)
	}
}

func TestHighlighterInvalidationRecomputesAcrossLines(t *testing.T) {
	syn := Shell()
	src := &fakeSource{lines: []string{
		"\"abc\n",
		"def\"\n",
	}}
	h := NewHighlighter(syn, src)

	before := h.HlLine(1)
	require.NotEmpty(t, before)
	assert.Equal(t, StyleString, before[0].Style, "line 1 starts inside the string opened on line 0")

	src.lines[0] = "\"abc\"\n"
	h.OnEdit(0, 1, 1)

	after := h.HlLine(1)
	require.NotEmpty(t, after)
	assert.Equal(t, StyleDefault, after[0].Style, "line 0's string now closes before EOL, so line 1 starts fresh")
}

func TestHighlighterInvalidationWithoutLineCountChange(t *testing.T) {
	syn := Shell()
	src := &fakeSource{lines: []string{
		"\"abc\n",
		"def\n",
	}}
	h := NewHighlighter(syn, src)

	before := h.HlLine(1)
	require.NotEmpty(t, before)
	assert.Equal(t, StyleString, before[0].Style, "line 1 starts inside the string opened on line 0")

	src.lines[0] = "\"abc\"\n"
	h.OnEdit(0, 0, 0)

	after := h.HlLine(1)
	require.NotEmpty(t, after)
	assert.Equal(t, StyleDefault, after[0].Style, "closing the string on line 0 without changing its line count must still invalidate line 1's start state")
}

func TestCommentWordsRepaintNoticeInsideComments(t *testing.T) {
	syn := Shell()
	src := &fakeSource{lines: []string{"# TODO fix this\n"}}
	h := NewHighlighter(syn, src)

	spans := h.HlLine(0)
	var sawNotice bool
	for _, sp := range spans {
		if sp.Style == StyleNotice {
			sawNotice = true
			assert.Equal(t, 4, sp.Len)
		}
	}
	assert.True(t, sawNotice, "TODO inside the comment should be repainted as a notice")
}

func TestNoEatBufferKeepsBufferAcrossTransition(t *testing.T) {
	// A minimal two-state keyword classifier: "start" buffers word bytes
	// in place, then NOEAT_BUFFERs into "classify" on the first
	// non-word byte without eating it or losing the buffered word, the
	// way a lexer splits "accumulate" from "decide what it was" across
	// states rather than conditions on one state.
	classify := &State{Name: "classify"}
	start := &State{
		Name: "start",
		Conditions: []Condition{
			{Tag: CondCharBuffer, Set: NewByteRange('a', 'z'), Action: Action{Style: StyleDefault}},
		},
		Default: DefaultAction{Kind: DefNoEatBuffer, Action: Action{Style: StyleDefault, Dest: classify}},
	}
	classify.Conditions = []Condition{
		{Tag: CondBufIs, Literal: []byte("foo"), Action: Action{Style: StyleKeyword, Dest: start}},
	}
	classify.Default = DefaultAction{Kind: DefEat, Action: Action{Style: StyleDefault, Dest: start}}

	syn := NewSyntax("classifier")
	syn.AddState(start)
	syn.AddState(classify)
	syn.StartState = start.Name

	src := &fakeSource{lines: []string{"foo!"}}
	h := NewHighlighter(syn, src)

	spans := h.HlLine(0)
	require.Len(t, spans, 2, "the buffered word must survive the NOEAT_BUFFER transition so classify's BUFIS condition can still see it")
	assert.Equal(t, Span{Style: StyleKeyword, Len: 3}, spans[0])
	assert.Equal(t, Span{Style: StyleDefault, Len: 1}, spans[1])
}

func TestPlainSyntaxNeverTransitions(t *testing.T) {
	syn := Plain()
	src := &fakeSource{lines: []string{"anything at all # not a comment\n"}}
	h := NewHighlighter(syn, src)

	spans := h.HlLine(0)
	require.Len(t, spans, 1)
	assert.Equal(t, StyleDefault, spans[0].Style)
	assert.Equal(t, len(src.lines[0]), spans[0].Len)
}
