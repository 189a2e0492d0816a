// Package search implements incremental regex search and global/confirmed
// regex replace over a View's buffer (§4.J), using stdlib POSIX ERE
// matching (regexp.CompilePOSIX) the way spec.md assumes the editor's
// regex engine behaves.
package search

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/ked-editor/ked/internal/block"
	"github.com/ked-editor/ked/internal/buffer"
	"github.com/ked-editor/ked/internal/errbuf"
	"github.com/ked-editor/ked/internal/view"
)

// CaseSensitivity mirrors the three-way option the original's
// SearchCaseSensitivity enum gives (always/never/infer-from-pattern).
type CaseSensitivity int

const (
	CaseAuto CaseSensitivity = iota
	CaseSensitive
	CaseInsensitive
)

// ErrNoPattern is returned when Next/Prev run before any
// pattern has been set.
var ErrNoPattern = errors.New("no previous search pattern")

// State holds one search session's pattern, direction, and compiled
// regex, the way the original's SearchState bundles them so the regex
// only gets rebuilt when the pattern or case sensitivity actually changes.
type State struct {
	Pattern string
	Reverse bool

	regex     *regexp.Regexp
	compiled  string
	compiled2 CaseSensitivity
	icase     bool
}

// hasUpperASCII reports whether s contains an ASCII uppercase letter,
// the signal CaseAuto uses to decide whether a search should fold case.
func hasUpperASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// toLowerASCII lower-cases in place, leaving non-ASCII bytes untouched.
// Used instead of bytes.ToLower so case folding never changes a match's
// byte length or touches multi-byte UTF-8 sequences.
func toLowerASCII(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

func toLowerASCIIString(s string) string {
	return string(toLowerASCII([]byte(s)))
}

// ensure (re)compiles the search regex if the pattern or case sensitivity
// has changed since the last search. Go's regexp.CompilePOSIX only
// accepts strict POSIX ERE syntax, which has no `(?i)` inline flag the
// way the teacher's REG_ICASE does; case-insensitivity is instead
// implemented by lower-casing both the pattern and the line text being
// matched against, which only works correctly for ASCII patterns (an
// accepted simplification, see DESIGN.md).
func (s *State) ensure(cs CaseSensitivity) error {
	icase := cs == CaseInsensitive || (cs == CaseAuto && !hasUpperASCII(s.Pattern))
	icase = icase && isASCII(s.Pattern)
	if s.regex != nil && s.compiled == s.Pattern && s.compiled2 == cs {
		return nil
	}
	pattern := s.Pattern
	if icase {
		pattern = toLowerASCIIString(pattern)
	}
	re, err := regexp.CompilePOSIX(pattern)
	if err != nil {
		return &errbuf.RegexError{Pattern: s.Pattern, Err: err}
	}
	s.regex = re
	s.compiled = s.Pattern
	s.compiled2 = cs
	s.icase = icase
	return nil
}

func (s *State) matchLine(line []byte) []byte {
	if s.icase {
		return toLowerASCII(line)
	}
	return line
}

// lineBytes returns bol's line content up to (not including) its
// terminating newline.
func lineBytes(bol block.BlockIter) []byte {
	n, _ := bol.Eol()
	return bol.GetBytes(n)
}

// searchForward walks bi forward line by line looking for the first
// match. When skip is true, a match exactly at bi's current position is
// ignored once (search_next's "don't find what's already under the
// cursor" rule), mirroring do_search_fwd.
func searchForward(re *regexp.Regexp, matchLine func([]byte) []byte, bi block.BlockIter, skip bool) (block.BlockIter, bool) {
	for {
		if bi.Eof() {
			return bi, false
		}
		bol := bi.BolPos()
		full := lineBytes(bol)
		offset := bi.GetOffset() - bol.GetOffset()
		sub := full[offset:]
		loc := re.FindIndex(matchLine(sub))
		if loc != nil {
			so, eo := loc[0], loc[1]
			if skip && so == 0 {
				count := eo
				if count == 0 {
					count = 1
				}
				bi = bi.SkipBytes(count)
				skip = false
				continue
			}
			return bi.SkipBytes(so), true
		}
		skip = false
		n, next := bi.NextLine()
		if n == 0 {
			return bi, false
		}
		bi = next
	}
}

// lastMatchBefore returns the start offset of the rightmost match in line
// that sits before cx (or any match at all, when cx < 0).
func lastMatchBefore(re *regexp.Regexp, matchLine func([]byte) []byte, line []byte, cx int, skip bool) (int, bool) {
	matches := re.FindAllIndex(matchLine(line), -1)
	best := -1
	for _, m := range matches {
		so, eo := m[0], m[1]
		if cx >= 0 {
			if so >= cx {
				break
			}
			if skip && eo > cx {
				break
			}
		}
		best = so
		if so == eo {
			break
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// searchBackward walks bi backward line by line. cx is the byte column
// within bi's starting line before which a match must lie (-1 once the
// search has moved off the original line), mirroring do_search_bwd.
func searchBackward(re *regexp.Regexp, matchLine func([]byte) []byte, bi block.BlockIter, cx int, skip bool) (block.BlockIter, bool) {
	processCurrent := !bi.Eof()
	for {
		if processCurrent {
			bol := bi.BolPos()
			full := lineBytes(bol)
			if best, ok := lastMatchBefore(re, matchLine, full, cx, skip); ok {
				return bol.SkipBytes(best), true
			}
		}
		processCurrent = true
		cx = -1
		skip = false
		n, prev := bi.PrevLine()
		if n == 0 {
			return bi, false
		}
		bi = prev
	}
}

// Result reports whether Next/Prev found a match, and
// whether doing so required wrapping around the start or end of the
// buffer (the original's "Continuing at top/bottom" info message).
type Result struct {
	Found   bool
	Wrapped bool
}

func (s *State) doNext(v *view.View, cs CaseSensitivity, skip bool) (Result, error) {
	if s.Pattern == "" {
		return Result{}, ErrNoPattern
	}
	if err := s.ensure(cs); err != nil {
		return Result{}, err
	}

	bi := v.Cursor
	if !s.Reverse {
		if next, ok := searchForward(s.regex, s.matchLine, bi, true); ok {
			v.Cursor = next
			return Result{Found: true}, nil
		}
		if next, ok := searchForward(s.regex, s.matchLine, v.Buf.Blocks.Iter(), false); ok {
			v.Cursor = next
			return Result{Found: true, Wrapped: true}, nil
		}
		return Result{}, fmt.Errorf("pattern %q not found", s.Pattern)
	}

	cx := bi.GetOffset() - bi.BolPos().GetOffset()
	if next, ok := searchBackward(s.regex, s.matchLine, bi, cx, skip); ok {
		v.Cursor = next
		return Result{Found: true}, nil
	}
	if next, ok := searchBackward(s.regex, s.matchLine, v.Buf.Blocks.IterAtEnd(), -1, false); ok {
		v.Cursor = next
		return Result{Found: true, Wrapped: true}, nil
	}
	return Result{}, fmt.Errorf("pattern %q not found", s.Pattern)
}

// Next moves to the next match after the cursor, wrapping to the top of
// the buffer if needed.
func (s *State) Next(v *view.View, cs CaseSensitivity) (Result, error) {
	return s.doNext(v, cs, false)
}

// NextWord is like Next, but when searching backward also refuses a
// match that merely touches the word under the cursor (search -rw).
func (s *State) NextWord(v *view.View, cs CaseSensitivity) (Result, error) {
	return s.doNext(v, cs, true)
}

// Prev searches in the opposite direction from s.Reverse, leaving
// s.Reverse restored afterward.
func (s *State) Prev(v *view.View, cs CaseSensitivity) (Result, error) {
	s.Reverse = !s.Reverse
	r, err := s.doNext(v, cs, false)
	s.Reverse = !s.Reverse
	return r, err
}

// ReplaceFlags mirror the original's ReplaceFlags bitset.
type ReplaceFlags uint8

const (
	ReplaceGlobal ReplaceFlags = 1 << iota
	ReplaceIgnoreCase
	// ReplaceBasic requests basic (non-extended) POSIX regex syntax.
	// regexp.CompilePOSIX only implements ERE, so this flag is accepted
	// but has no effect; every pattern is parsed as extended syntax
	// regardless (see DESIGN.md).
	ReplaceBasic
	ReplaceConfirm
	ReplaceCancel
)

// ConfirmDecision is the user's answer to one "Replace? [Y/n/a/q]" prompt.
type ConfirmDecision int

const (
	ConfirmYes ConfirmDecision = iota
	ConfirmNo
	ConfirmAll
	ConfirmQuit
)

// ConfirmFunc is asked to confirm replacing one matched substring;
// nil disables confirmation entirely (as if ReplaceConfirm were unset).
type ConfirmFunc func(matched string) ConfirmDecision

// buildReplacement expands format's `&`/`\N` backreferences against
// match (full-match plus submatch offset pairs, absolute within line).
func buildReplacement(format string, line []byte, match []int) []byte {
	var out []byte
	for i := 0; i < len(format); {
		ch := format[i]
		i++
		var idx int
		switch {
		case ch == '\\' && i < len(format):
			c2 := format[i]
			i++
			if c2 < '1' || c2 > '9' {
				out = append(out, c2)
				continue
			}
			idx = int(c2 - '0')
		case ch == '&':
			idx = 0
		default:
			out = append(out, ch)
			continue
		}
		if 2*idx+1 < len(match) {
			so, eo := match[2*idx], match[2*idx+1]
			if so >= 0 && eo >= 0 {
				out = append(out, line[so:eo]...)
			}
		}
	}
	return out
}

// replaceOnLine processes one line's worth of text (already bounded to
// lineLen, which may be shorter than the line's full length when a
// selection ends mid-line), starting at the absolute offset base.
// It returns the number of substitutions made and the net byte-length
// change they caused.
func replaceOnLine(buf *buffer.Buffer, re *regexp.Regexp, icase bool, format string, base, lineLen int, flagsp *ReplaceFlags, confirm ConfirmFunc) (nr, delta int) {
	data := buf.Blocks.Iter().GotoOffset(base).GetBytes(lineLen)
	pos := 0
	for pos <= len(data) {
		hay := data[pos:]
		if icase {
			hay = toLowerASCII(hay)
		}
		m := re.FindSubmatchIndex(hay)
		if m == nil {
			break
		}
		abs := make([]int, len(m))
		for i, x := range m {
			if x < 0 {
				abs[i] = -1
			} else {
				abs[i] = pos + x
			}
		}
		so, eo := abs[0], abs[1]
		matchLen := eo - so

		skip := false
		if *flagsp&ReplaceConfirm != 0 && confirm != nil {
			switch confirm(string(data[so:eo])) {
			case ConfirmNo:
				skip = true
			case ConfirmAll:
				*flagsp &^= ReplaceConfirm
			case ConfirmQuit:
				*flagsp |= ReplaceCancel
				return nr, delta
			}
		}

		if skip {
			pos = eo
		} else {
			repl := buildReplacement(format, data, abs)
			buf.ReplaceBytes(buf.Blocks.Iter().GotoOffset(base+so), matchLen, repl)
			nr++
			delta += len(repl) - matchLen
			newData := make([]byte, 0, len(data)+len(repl)-matchLen)
			newData = append(newData, data[:so]...)
			newData = append(newData, repl...)
			newData = append(newData, data[eo:]...)
			data = newData
			pos = so + len(repl)
		}

		if matchLen == 0 {
			break
		}
		if *flagsp&ReplaceGlobal == 0 {
			break
		}
	}
	return nr, delta
}

// Replace runs a regex search-and-replace over v's selection, or the
// whole buffer when none is active, mirroring reg_replace. format may
// use `&` for the whole match and `\1`-`\9` for submatches.
func Replace(v *view.View, pattern, format string, flags ReplaceFlags, confirm ConfirmFunc) (nrSubstitutions, nrLines int, err error) {
	if pattern == "" {
		return 0, 0, errors.New("search pattern must contain at least 1 character")
	}

	icase := flags&ReplaceIgnoreCase != 0 && isASCII(pattern)
	compilePattern := pattern
	if icase {
		compilePattern = toLowerASCIIString(pattern)
	}
	re, err := regexp.CompilePOSIX(compilePattern)
	if err != nil {
		return 0, 0, &errbuf.RegexError{Pattern: pattern, Err: err}
	}

	buf := v.Buf
	var start, nrBytes int
	if v.HasSelection() {
		sel := v.InitSelection()
		start = sel.So
		nrBytes = sel.Eo - sel.So
		v.Cursor = sel.Si
	} else {
		start = 0
		nrBytes = buf.Blocks.IterAtEnd().GetOffset()
		v.Cursor = buf.Blocks.Iter()
	}

	buf.Change.BeginChangeChain()

	pos := start
	remaining := nrBytes
	for remaining > 0 {
		lineStart := buf.Blocks.Iter().GotoOffset(pos)
		lineLen, _ := lineStart.Eol()
		boundedLen := lineLen
		if boundedLen > remaining {
			boundedLen = remaining
		}

		nr, delta := replaceOnLine(buf, re, icase, format, pos, boundedLen, &flags, confirm)
		if nr > 0 {
			nrSubstitutions += nr
			nrLines++
		}

		if flags&ReplaceCancel != 0 || lineLen+1 >= remaining {
			break
		}
		remaining -= lineLen + 1
		pos += lineLen + 1 + delta
	}

	buf.Change.EndChangeChain()

	if nrSubstitutions == 0 && flags&ReplaceCancel == 0 {
		return 0, 0, fmt.Errorf("pattern %q not found", pattern)
	}
	return nrSubstitutions, nrLines, nil
}
