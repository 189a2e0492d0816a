// Package termio owns the terminal: entering/restoring raw mode, toggling
// bracketed paste, and decoding the incoming byte stream into the
// KeyCode/paste events internal/keys.Handler consumes (§6 Terminal).
package termio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/ked-editor/ked/internal/keys"
)

// Term owns stdin/stdout and the raw-mode state needed to restore the
// terminal on exit, mirroring term_mode_init/term_raw/term_cooked's
// cooked/raw state pair.
type Term struct {
	in  *os.File
	out *os.File

	fd       int
	isTTY    bool
	orig     *term.State
	rawSince bool
}

// New wraps the given input/output files, normally os.Stdin/os.Stdout.
func New(in, out *os.File) *Term {
	return &Term{in: in, out: out, fd: int(in.Fd())}
}

// EnterRaw puts the terminal into raw mode (no echo, no line buffering,
// no signal generation), recording the prior state so Restore can put it
// back. A no-op, returning nil, when in isn't a terminal at all.
func (t *Term) EnterRaw() error {
	if !term.IsTerminal(t.fd) {
		return nil
	}
	orig, err := term.MakeRaw(t.fd)
	if err != nil {
		return fmt.Errorf("termio: enter raw mode: %w", err)
	}
	t.orig = orig
	t.isTTY = true
	t.rawSince = true
	return nil
}

// Restore puts the terminal back to the state it had before EnterRaw.
// Safe to call even if EnterRaw was never called or failed.
func (t *Term) Restore() error {
	if !t.rawSince || t.orig == nil {
		return nil
	}
	err := term.Restore(t.fd, t.orig)
	t.rawSince = false
	return err
}

// Size reports the terminal's current width/height in columns/rows.
func (t *Term) Size() (cols, rows int, err error) {
	return term.GetSize(t.fd)
}

const (
	enableBracketedPaste  = "\x1b[?2004h"
	disableBracketedPaste = "\x1b[?2004l"
)

// SetBracketedPaste toggles the terminal's bracketed-paste mode, wrapping
// pasted input in ESC[200~ ... ESC[201~ markers so Decoder can tell a
// paste apart from fast manual typing.
func (t *Term) SetBracketedPaste(on bool) {
	if on {
		io.WriteString(t.out, enableBracketedPaste)
	} else {
		io.WriteString(t.out, disableBracketedPaste)
	}
}

const (
	bracketedPasteStart = "\x1b[200~"
	bracketedPasteEnd   = "\x1b[201~"
)

// escTimeout bounds how long Decoder waits for an escape sequence to
// complete before treating a lone ESC byte as the Escape key, mirroring
// the Alt-sequence timeout in the corpus's own key-input loop.
const escTimeout = 50 * time.Millisecond

// escSequences maps raw terminal escape sequences to the KeyCode they
// represent, grounded on the modifier-aware CSI sequences a VT220-class
// terminal emits for arrows/function/navigation keys.
var escSequences = map[string]keys.KeyCode{
	"\x1b[A": keys.KeyUp, "\x1b[B": keys.KeyDown, "\x1b[C": keys.KeyRight, "\x1b[D": keys.KeyLeft,
	"\x1bOA": keys.KeyUp, "\x1bOB": keys.KeyDown, "\x1bOC": keys.KeyRight, "\x1bOD": keys.KeyLeft,

	"\x1b[1;2A": keys.ModShift | keys.KeyUp, "\x1b[1;2B": keys.ModShift | keys.KeyDown,
	"\x1b[1;2C": keys.ModShift | keys.KeyRight, "\x1b[1;2D": keys.ModShift | keys.KeyLeft,
	"\x1b[1;3A": keys.ModMeta | keys.KeyUp, "\x1b[1;3B": keys.ModMeta | keys.KeyDown,
	"\x1b[1;3C": keys.ModMeta | keys.KeyRight, "\x1b[1;3D": keys.ModMeta | keys.KeyLeft,
	"\x1b[1;5A": keys.ModCtrl | keys.KeyUp, "\x1b[1;5B": keys.ModCtrl | keys.KeyDown,
	"\x1b[1;5C": keys.ModCtrl | keys.KeyRight, "\x1b[1;5D": keys.ModCtrl | keys.KeyLeft,

	"\x1bOP": keys.KeyF1, "\x1bOQ": keys.KeyF2, "\x1bOR": keys.KeyF3, "\x1bOS": keys.KeyF4,
	"\x1b[15~": keys.KeyF5, "\x1b[17~": keys.KeyF6, "\x1b[18~": keys.KeyF7, "\x1b[19~": keys.KeyF8,
	"\x1b[20~": keys.KeyF9, "\x1b[21~": keys.KeyF10, "\x1b[23~": keys.KeyF11, "\x1b[24~": keys.KeyF12,

	"\x1b[H": keys.KeyHome, "\x1b[F": keys.KeyEnd,
	"\x1b[1~": keys.KeyHome, "\x1b[4~": keys.KeyEnd,
	"\x1b[2~": keys.KeyInsert, "\x1b[3~": keys.KeyDelete,
	"\x1b[5~": keys.KeyPgUp, "\x1b[6~": keys.KeyPgDown,
}

// Event is what Decoder produces for each unit of input: either a key
// press or pasted text.
type Event struct {
	Key        keys.KeyCode
	IsPaste    bool
	PasteText  string
	Bracketed  bool
}

// Decoder turns a raw terminal byte stream into Events, buffering partial
// escape sequences and bracketed-paste bodies across Read calls the way
// the corpus's own key-input byte-state-machine does. It reads from an
// *os.File, rather than a bare io.Reader, so it can set a short read
// deadline to disambiguate a lone Escape keypress from the start of a
// longer CSI/SS3 sequence without a second goroutine racing the buffer.
type Decoder struct {
	r   *os.File
	buf []byte

	esc      []byte
	inPaste  bool
	pasteBuf []byte
}

// NewDecoder wraps r (normally the Term's input file).
func NewDecoder(r *os.File) *Decoder {
	return &Decoder{r: r}
}

// Next blocks for and returns the next decoded event.
func (d *Decoder) Next() (Event, error) {
	for {
		b, err := d.readByte()
		if err != nil {
			return Event{}, err
		}

		if d.inPaste {
			d.pasteBuf = append(d.pasteBuf, b)
			if bytes.HasSuffix(d.pasteBuf, []byte(bracketedPasteEnd)) {
				text := d.pasteBuf[:len(d.pasteBuf)-len(bracketedPasteEnd)]
				d.inPaste = false
				d.pasteBuf = nil
				return Event{IsPaste: true, Bracketed: true, PasteText: string(text)}, nil
			}
			continue
		}

		if len(d.esc) > 0 || b == 0x1b {
			d.esc = append(d.esc, b)
			if ev, ok, consumed := d.tryMatchEscape(); consumed {
				if ok {
					return ev, nil
				}
				continue
			}
			if len(d.esc) == 1 {
				// Lone ESC so far; give the terminal a moment to finish
				// sending the rest of a multi-byte sequence.
				if more, ok := d.peekWithin(escTimeout); ok {
					d.esc = append(d.esc, more)
					continue
				}
				d.esc = nil
				return Event{Key: keys.KeyCode(0x1b)}, nil
			}
			// Unrecognized sequence long enough to give up on.
			if len(d.esc) > 8 {
				d.esc = nil
			}
			continue
		}

		return Event{Key: decodeByte(b)}, nil
	}
}

// tryMatchEscape checks d.esc against both the bracketed-paste start
// marker and the escSequences table. consumed is true once d.esc is
// matched (ok=true for a key; ok=false for the paste start marker, which
// switches the decoder into paste mode) or definitively not a usable
// prefix (ok=false, buffer cleared and its bytes dropped).
func (d *Decoder) tryMatchEscape() (ev Event, ok, consumed bool) {
	s := string(d.esc)
	if s == bracketedPasteStart {
		d.esc = nil
		d.inPaste = true
		return Event{}, false, true
	}
	if k, found := escSequences[s]; found {
		d.esc = nil
		return Event{Key: k}, true, true
	}
	if isEscapePrefix(s) {
		return Event{}, false, false
	}
	d.esc = nil
	return Event{}, false, true
}

func isEscapePrefix(s string) bool {
	if bytes.HasPrefix([]byte(bracketedPasteStart), []byte(s)) {
		return true
	}
	for seq := range escSequences {
		if bytes.HasPrefix([]byte(seq), []byte(s)) {
			return true
		}
	}
	return false
}

// decodeByte turns one plain (non-escape) input byte into a KeyCode,
// recognizing the C0 control range as Ctrl-modified letters the way
// key_to_ctrl's inverse does.
func decodeByte(b byte) keys.KeyCode {
	switch {
	case b == '\r' || b == '\n':
		return keys.KeyEnter
	case b == '\t':
		return keys.KeyTab
	case b == 0x7f:
		return keys.KeyDelete
	case b >= 1 && b <= 26:
		return keys.ModCtrl | keys.KeyCode('a'+b-1)
	default:
		return keys.KeyCode(b)
	}
}

func (d *Decoder) readByte() (byte, error) {
	if len(d.buf) == 0 {
		tmp := make([]byte, 256)
		n, err := d.r.Read(tmp)
		if n == 0 {
			if err == nil {
				err = io.ErrNoProgress
			}
			return 0, err
		}
		d.buf = tmp[:n]
	}
	b := d.buf[0]
	d.buf = d.buf[1:]
	return b, nil
}

// peekWithin waits up to timeout for one more byte to arrive, used only
// to disambiguate a lone ESC from the start of a longer sequence. It sets
// a read deadline on the underlying file rather than racing a goroutine
// against the shared buffer.
func (d *Decoder) peekWithin(timeout time.Duration) (byte, bool) {
	if len(d.buf) > 0 {
		b := d.buf[0]
		d.buf = d.buf[1:]
		return b, true
	}
	d.r.SetReadDeadline(time.Now().Add(timeout))
	defer d.r.SetReadDeadline(time.Time{})

	tmp := make([]byte, 256)
	n, err := d.r.Read(tmp)
	if n == 0 || err != nil {
		return 0, false
	}
	d.buf = tmp[1:n]
	return tmp[0], true
}
