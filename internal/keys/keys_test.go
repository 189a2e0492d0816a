package keys_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ked-editor/ked/internal/command"
	"github.com/ked-editor/ked/internal/keys"
)

func newDispatcher(t *testing.T, ran *[]string) *command.Dispatcher {
	t.Helper()
	table := command.CommandTable{
		"save": &command.Command{
			Name: "save", MinArgs: 0, MaxArgs: 0,
			Run: func(a *command.Args) error { *ran = append(*ran, "save"); return nil },
		},
	}
	return &command.Dispatcher{
		Commands: table,
		Aliases:  map[string]string{},
		Parser:   &command.Parser{},
	}
}

func TestParseRenderRoundTrip(t *testing.T) {
	cases := []string{"a", "C-x", "M-S-left", "enter", "tab", "f5", "C-a"}
	for _, s := range cases {
		k, err := keys.ParseKey(s)
		require.NoError(t, err, s)
		rendered := keys.RenderKey(k)
		k2, err := keys.ParseKey(rendered)
		require.NoError(t, err, rendered)
		assert.Equal(t, k, k2, "round trip for %q via %q", s, rendered)
	}
}

func TestParseKeyCaret(t *testing.T) {
	k, err := keys.ParseKey("^A")
	require.NoError(t, err)
	assert.Equal(t, keys.ModCtrl|'A', k)
}

func TestParseKeyUnknown(t *testing.T) {
	_, err := keys.ParseKey("C-")
	assert.ErrorIs(t, err, keys.ErrUnknownKey)
}

func TestHandleInputLiteralInsertion(t *testing.T) {
	var ran []string
	d := newDispatcher(t, &ran)
	mode := keys.NewMode("normal", d.Commands)

	var inserted []rune
	h := &keys.Handler{
		Dispatcher: d,
		InsertRune: func(k keys.KeyCode) { inserted = append(inserted, k.Rune()) },
	}

	err := keys.HandleInput(mode, keys.KeyCode('x'), h)
	require.NoError(t, err)
	assert.Equal(t, []rune{'x'}, inserted)
}

func TestHandleInputBindingTakesPriorityOverUnbound(t *testing.T) {
	var ran []string
	d := newDispatcher(t, &ran)
	mode := keys.NewMode("normal", d.Commands)
	mode.Bind(d, keys.ModCtrl|'s', "save")

	h := &keys.Handler{Dispatcher: d}
	err := keys.HandleInput(mode, keys.ModCtrl|'s', h)
	require.NoError(t, err)
	assert.Equal(t, []string{"save"}, ran)
}

func TestHandleInputLineInputExcludesTabEnter(t *testing.T) {
	var ran []string
	d := newDispatcher(t, &ran)
	mode := keys.NewMode("command", d.Commands)
	mode.LineInput = true

	var inserted []rune
	h := &keys.Handler{
		Dispatcher:     d,
		InsertLineRune: func(k keys.KeyCode) { inserted = append(inserted, k.Rune()) },
	}

	require.NoError(t, keys.HandleInput(mode, keys.KeyCode('q'), h))
	assert.Equal(t, []rune{'q'}, inserted)

	err := keys.HandleInput(mode, keys.KeyTab, h)
	assert.ErrorIs(t, err, keys.ErrNoBinding)
}

func TestHandleInputFallthroughInheritsRecursiveFlag(t *testing.T) {
	var ran []string
	d := newDispatcher(t, &ran)

	parent := keys.NewMode("search", d.Commands)
	parent.Flags = keys.NoTextInsertionRecursive
	parent.Bind(d, keys.ModCtrl|'s', "save")

	child := keys.NewMode("search-input", d.Commands)
	child.Fallthrough = []*keys.Mode{parent}

	var inserted []rune
	h := &keys.Handler{
		Dispatcher: d,
		InsertRune: func(k keys.KeyCode) { inserted = append(inserted, k.Rune()) },
	}

	// 'x' is not bound anywhere; parent has no flags of its own, so only
	// the NoTextInsertionRecursive flag it inherits from child blocks
	// literal insertion once we fall through to parent.
	err := keys.HandleInput(child, keys.KeyCode('x'), h)
	assert.ErrorIs(t, err, keys.ErrNoBinding)
	assert.Empty(t, inserted)

	// The bound key still resolves through the fallthrough chain.
	require.NoError(t, keys.HandleInput(child, keys.ModCtrl|'s', h))
	assert.Equal(t, []string{"save"}, ran)
}

func TestHandleInputPasteMarker(t *testing.T) {
	var ran []string
	d := newDispatcher(t, &ran)
	mode := keys.NewMode("normal", d.Commands)

	var gotText string
	var gotBracketed bool
	h := &keys.Handler{
		Dispatcher: d,
		PasteText:  "pasted text",
		InsertPaste: func(text string, bracketed bool) {
			gotText, gotBracketed = text, bracketed
		},
	}
	require.NoError(t, keys.HandleInput(mode, keys.KeyPasteBracketed, h))
	assert.Equal(t, "pasted text", gotText)
	assert.True(t, gotBracketed)
}
