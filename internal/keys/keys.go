// Package keys implements key-sequence encoding (§4.I): KeyCode parsing
// and rendering, Modes holding a command set plus key bindings, and the
// recursive-fallback modal input handler that resolves a key to either a
// literal insertion or a bound command.
package keys

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ked-editor/ked/internal/command"
)

// KeyCode packs a modifier set plus either a Unicode scalar or one of the
// special key constants below into a single value, the way the original
// implementation's KeyCode typedef does.
type KeyCode uint32

// Modifier bits, set above the valid Unicode range so they never collide
// with a scalar value.
const (
	ModShift KeyCode = 1 << 29
	ModMeta  KeyCode = 1 << 30
	ModCtrl  KeyCode = 1 << 31

	modMask = ModShift | ModMeta | ModCtrl
)

// specialBase sits just above the last valid Unicode scalar (0x10FFFF),
// so every value from here up names a non-textual key rather than a
// codepoint.
const specialBase KeyCode = 0x110000

// Special, non-Unicode keys. Order matches the original's special_names
// table, kept in sync with the name list in specialNames.
const (
	KeyInsert KeyCode = specialBase + iota
	KeyDelete
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyPgDown
	KeyEnd
	KeyPgUp
	KeyHome
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyEnter
	KeyTab
	KeySpace
	// KeyPasteBracketed and KeyPasteDetected are synthetic "keys" a
	// terminal decoder (internal/termio) emits to mark the start of a
	// paste; HandleInput treats them as the "bracketed/detected paste
	// marker" §4.I.1 describes, never as a literal key a Mode can bind.
	KeyPasteBracketed
	KeyPasteDetected
)

var specialNames = [...]string{
	"insert", "delete", "up", "down", "right", "left",
	"pgdown", "end", "pgup", "home",
	"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12",
	"enter", "tab", "space",
}

// Key returns k with its modifier bits stripped.
func (k KeyCode) Key() KeyCode { return k &^ modMask }

// Mods returns just k's modifier bits.
func (k KeyCode) Mods() KeyCode { return k & modMask }

// IsRune reports whether k is an unmodified Unicode scalar: the form
// HandleInput treats as literal text rather than a candidate for a key
// binding (u_is_unicode in the original, which only ever tests a key
// with no modifier bits set).
func (k KeyCode) IsRune() bool { return k.Mods() == 0 && k < specialBase }

// Rune returns k's codepoint. Only meaningful when IsRune is true.
func (k KeyCode) Rune() rune { return rune(k) }

// ErrUnknownKey is returned by ParseKey for unrecognized key text.
var ErrUnknownKey = errors.New("unknown key")

// ParseKey parses a key description such as "C-x", "M-S-Left", "^A", or
// "enter" into a KeyCode (§4.I: "Parsing of C-/M-/S- prefixes, ^X caret
// form, and special names is textual").
func ParseKey(s string) (KeyCode, error) {
	mods, rest := parseModifiers(s)

	r, size := utf8.DecodeRuneInString(rest)
	if r != utf8.RuneError && size == len(rest) {
		if mods == ModCtrl {
			switch r {
			case 'i', 'I':
				return KeyTab, nil
			case 'm', 'M':
				return KeyEnter, nil
			}
		}
		return mods | KeyCode(r), nil
	}

	lower := strings.ToLower(rest)
	for i, name := range specialNames {
		if lower == name {
			return mods | (specialBase + KeyCode(i)), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

// parseModifiers consumes any leading "^", "C-", "M-", "S-" prefixes
// (case-insensitive, any order, "^" only valid alone) and returns the
// accumulated modifier bits plus the unconsumed remainder.
func parseModifiers(s string) (mods KeyCode, rest string) {
	for {
		switch {
		case len(s) >= 1 && s[0] == '^' && len(s) > 1:
			mods |= ModCtrl
			s = s[1:]
			return mods, s // caret form only ever prefixes a single following char
		case len(s) >= 2 && (s[0] == 'c' || s[0] == 'C') && s[1] == '-':
			mods |= ModCtrl
			s = s[2:]
		case len(s) >= 2 && (s[0] == 'm' || s[0] == 'M') && s[1] == '-':
			mods |= ModMeta
			s = s[2:]
		case len(s) >= 2 && (s[0] == 's' || s[0] == 'S') && s[1] == '-':
			mods |= ModShift
			s = s[2:]
		default:
			return mods, s
		}
	}
}

// RenderKey is the inverse of ParseKey (§8 property 8: ParseKey(RenderKey(k)) == k).
func RenderKey(k KeyCode) string {
	var b strings.Builder
	if k&ModCtrl != 0 {
		b.WriteString("C-")
	}
	if k&ModMeta != 0 {
		b.WriteString("M-")
	}
	if k&ModShift != 0 {
		b.WriteString("S-")
	}
	key := k.Key()
	switch {
	case key >= specialBase && int(key-specialBase) < len(specialNames):
		b.WriteString(specialNames[key-specialBase])
	case key < specialBase:
		b.WriteRune(rune(key))
	default:
		b.WriteString("???")
	}
	return b.String()
}

// ModeFlags mirror §4.I's Mode flags.
type ModeFlags int

const (
	NoTextInsertion ModeFlags = 1 << iota
	NoTextInsertionRecursive
)

// Binding is either a pre-parsed CachedCommand, or — when the source
// text contains ';', a '$' variable, or names an alias — the raw source
// string to be reparsed on every use (§4.I).
type Binding struct {
	Cached *command.CachedCommand
	Raw    string
}

// NewBinding attempts to cache raw against d; when it isn't cacheable
// (an alias, a variable reference, multiple statements), the Binding
// falls back to holding raw for per-use reparsing.
func NewBinding(d *command.Dispatcher, raw string) Binding {
	if cc, ok := command.NewCachedCommand(d, raw); ok {
		return Binding{Cached: cc}
	}
	return Binding{Raw: raw}
}

// Run executes the binding: the cached path skips re-resolution and
// re-parsing entirely; the raw path re-parses and re-dispatches through d
// exactly like a typed command line.
func (b Binding) Run(d *command.Dispatcher) error {
	if b.Cached != nil {
		return b.Cached.Run(d)
	}
	return d.RunCommands(b.Raw)
}

// Mode is one modal input context: a command set, its key bindings, and
// an ordered fallback chain consulted when key isn't bound here.
type Mode struct {
	Name        string
	Commands    command.Lookup
	Bindings    map[KeyCode]Binding
	Fallthrough []*Mode
	Flags       ModeFlags

	// LineInput marks a single-line text-entry mode (command line,
	// search prompt): Tab and Enter are excluded from literal insertion
	// (they drive completion/submission instead), and inserted runes go
	// through Handler.InsertLineRune rather than Handler.InsertRune.
	LineInput bool
}

// NewMode returns an empty Mode bound against cmds.
func NewMode(name string, cmds command.Lookup) *Mode {
	return &Mode{Name: name, Commands: cmds, Bindings: make(map[KeyCode]Binding)}
}

// Bind registers raw (re-parsed against d per NewBinding's rules) as
// key's command in this mode.
func (m *Mode) Bind(d *command.Dispatcher, key KeyCode, raw string) {
	if m.Bindings == nil {
		m.Bindings = make(map[KeyCode]Binding)
	}
	m.Bindings[key] = NewBinding(d, raw)
}

// Handler bundles the editor-side effects HandleInput drives: literal
// text insertion, paste framing, and the Tab/S-Tab-in-line-selection
// shortcut normal mode gives priority over plain insertion.
type Handler struct {
	Dispatcher *command.Dispatcher

	// InsertRune inserts key.Rune() into the buffer (normal mode).
	InsertRune func(key KeyCode)
	// InsertLineRune inserts key.Rune() into a command/search prompt line.
	InsertLineRune func(key KeyCode)
	// InsertPaste is called with the framed paste payload; bracketed
	// reports whether it arrived inside a CSI 200~/201~ frame.
	InsertPaste func(text string, bracketed bool)
	// PasteText supplies the payload for the next InsertPaste call;
	// termio sets this immediately before delivering a paste marker key.
	PasteText string

	// TabShiftLines handles Tab/S-Tab while a line selection is active
	// (dir is +1 for Tab, -1 for S-Tab); returning true consumes the
	// key before normal-mode insertion would otherwise claim it.
	TabShiftLines func(dir int) bool
}

// ErrNoBinding is returned by HandleInput when no mode in the fallback
// chain resolves key to anything (neither a literal insertion nor a
// bound command).
var ErrNoBinding = errors.New("no binding for key")

// HandleInput resolves key against mode, descending into its fallback
// chain as needed (§4.I.3).
func HandleInput(mode *Mode, key KeyCode, h *Handler) error {
	return handleInputRecursive(mode, key, 0, h)
}

func handleInputRecursive(mode *Mode, key KeyCode, inherited ModeFlags, h *Handler) error {
	handled, err := handleInputSingle(mode, key, inherited, h)
	if handled {
		return err
	}
	childInherited := inherited | (mode.Flags & NoTextInsertionRecursive)
	for _, fb := range mode.Fallthrough {
		if err := handleInputRecursive(fb, key, childInherited, h); !errors.Is(err, ErrNoBinding) {
			return err
		}
	}
	return ErrNoBinding
}

func handleInputSingle(mode *Mode, key KeyCode, inherited ModeFlags, h *Handler) (handled bool, err error) {
	if key == KeyPasteBracketed || key == KeyPasteDetected {
		if h.InsertPaste != nil {
			h.InsertPaste(h.PasteText, key == KeyPasteBracketed)
		}
		return true, nil
	}

	flags := mode.Flags | inherited
	canInsert := flags&(NoTextInsertion|NoTextInsertionRecursive) == 0

	if canInsert {
		if !mode.LineInput {
			if shift := key & ModShift; key&^ModShift == KeyTab && h.TabShiftLines != nil {
				dir := 1
				if shift != 0 {
					dir = -1
				}
				if h.TabShiftLines(dir) {
					return true, nil
				}
			}
			if key.IsRune() {
				if h.InsertRune != nil {
					h.InsertRune(key)
				}
				return true, nil
			}
		} else if key.IsRune() && key != KeyTab && key != KeyEnter {
			if h.InsertLineRune != nil {
				h.InsertLineRune(key)
			}
			return true, nil
		}
	}

	b, ok := mode.Bindings[key]
	if !ok {
		return false, nil
	}
	return true, b.Run(h.Dispatcher)
}
