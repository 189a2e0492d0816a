package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ked-editor/ked/internal/buffer"
	"github.com/ked-editor/ked/internal/search"
	"github.com/ked-editor/ked/internal/view"
)

func newView(t *testing.T, content string) *view.View {
	t.Helper()
	buf := buffer.NewFromBytes([]byte(content))
	return view.New(1, buf)
}

func TestSearchNextForward(t *testing.T) {
	v := newView(t, "foo\nbar\nfoo baz\n")
	s := &search.State{Pattern: "foo"}

	r, err := s.Next(v, search.CaseSensitive)
	require.NoError(t, err)
	assert.True(t, r.Found)
	assert.False(t, r.Wrapped)
	assert.Equal(t, 0, v.Cursor.GetOffset())
}

func TestSearchNextSkipsCursorAndWraps(t *testing.T) {
	v := newView(t, "foo\nbar\nfoo baz\n")
	s := &search.State{Pattern: "foo"}

	_, err := s.Next(v, search.CaseSensitive)
	require.NoError(t, err)
	// cursor is now at the first "foo"; searching again should skip past
	// it to the second occurrence.
	r, err := s.Next(v, search.CaseSensitive)
	require.NoError(t, err)
	assert.True(t, r.Found)
	assert.Equal(t, 8, v.Cursor.GetOffset())

	// a third search has nowhere left forward and must wrap to the top.
	r, err = s.Next(v, search.CaseSensitive)
	require.NoError(t, err)
	assert.True(t, r.Found)
	assert.True(t, r.Wrapped)
	assert.Equal(t, 0, v.Cursor.GetOffset())
}

func TestSearchCaseInsensitiveAuto(t *testing.T) {
	v := newView(t, "Hello world\n")
	s := &search.State{Pattern: "hello"}
	r, err := s.Next(v, search.CaseAuto)
	require.NoError(t, err)
	assert.True(t, r.Found)
	assert.Equal(t, 0, v.Cursor.GetOffset())
}

func TestSearchNotFound(t *testing.T) {
	v := newView(t, "abc\n")
	s := &search.State{Pattern: "zzz"}
	_, err := s.Next(v, search.CaseSensitive)
	assert.Error(t, err)
}

func TestSearchPrev(t *testing.T) {
	v := newView(t, "foo\nbar\nfoo baz\n")
	v.Cursor = v.Buf.Blocks.IterAtEnd()
	s := &search.State{Pattern: "foo"}

	r, err := s.Prev(v, search.CaseSensitive)
	require.NoError(t, err)
	assert.True(t, r.Found)
	assert.Equal(t, 8, v.Cursor.GetOffset())
}

func TestReplaceGlobalAllOccurrences(t *testing.T) {
	v := newView(t, "foo foo foo\n")
	nr, lines, err := search.Replace(v, "foo", "bar", search.ReplaceGlobal, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, nr)
	assert.Equal(t, 1, lines)
	assert.Equal(t, "bar bar bar\n", string(v.Buf.Bytes()))
}

func TestReplaceFirstOnlyWithoutGlobal(t *testing.T) {
	v := newView(t, "foo foo foo\n")
	nr, _, err := search.Replace(v, "foo", "bar", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, nr)
	assert.Equal(t, "bar foo foo\n", string(v.Buf.Bytes()))
}

func TestReplaceBackreference(t *testing.T) {
	v := newView(t, "key=value\n")
	nr, _, err := search.Replace(v, "([a-z]+)=([a-z]+)", "\\2=\\1", search.ReplaceGlobal, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, nr)
	assert.Equal(t, "value=key\n", string(v.Buf.Bytes()))
}

func TestReplaceConfirmDecisions(t *testing.T) {
	v := newView(t, "foo foo foo\n")
	calls := 0
	confirm := func(matched string) search.ConfirmDecision {
		calls++
		switch calls {
		case 1:
			return search.ConfirmNo
		case 2:
			return search.ConfirmAll
		default:
			return search.ConfirmYes
		}
	}
	nr, _, err := search.Replace(v, "foo", "bar", search.ReplaceGlobal|search.ReplaceConfirm, confirm)
	require.NoError(t, err)
	assert.Equal(t, 2, nr)
	assert.Equal(t, "foo bar bar\n", string(v.Buf.Bytes()))
}

func TestReplaceNoMatchErrors(t *testing.T) {
	v := newView(t, "abc\n")
	_, _, err := search.Replace(v, "zzz", "x", 0, nil)
	assert.Error(t, err)
}

func TestReplaceEmptyPatternErrors(t *testing.T) {
	v := newView(t, "abc\n")
	_, _, err := search.Replace(v, "", "x", 0, nil)
	assert.Error(t, err)
}
