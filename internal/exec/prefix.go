package exec

import (
	"bytes"
	"io"
)

// LinePrefixer inserts a fixed prefix before every line written through
// it, remembering across calls whether the next byte starts a fresh
// line so a write split mid-line doesn't get prefixed twice. It backs
// both a spawned child's captured output (so Source/Filter callers can
// tag which command a line came from) and the editor's own
// startup/shutdown log stream (§4.0.a).
type LinePrefixer struct {
	Prefix string
	To     io.Writer

	buf        bytes.Buffer
	atLineHead bool
}

// NewLinePrefixer returns a LinePrefixer writing to w with prefix
// prepended to every line.
func NewLinePrefixer(prefix string, w io.Writer) *LinePrefixer {
	return &LinePrefixer{Prefix: prefix, To: w, atLineHead: true}
}

// Write implements io.Writer, prefixing each line as it's written and
// passing everything through at once, a trailing partial line included;
// the next call continues that line without a second prefix.
func (p *LinePrefixer) Write(b []byte) (n int, err error) {
	for len(b) > 0 {
		if p.atLineHead {
			p.buf.WriteString(p.Prefix)
			p.atLineHead = false
		}
		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			p.buf.Write(b)
			n += len(b)
			break
		}
		p.buf.Write(b[:i+1])
		n += i + 1
		b = b[i+1:]
		p.atLineHead = true
	}
	if _, werr := p.buf.WriteTo(p.To); werr != nil {
		return n, werr
	}
	return n, nil
}

// Flush writes out anything left in the internal buffer as-is; after a
// successful Write nothing is left there.
func (p *LinePrefixer) Flush() error {
	_, err := p.buf.WriteTo(p.To)
	return err
}
