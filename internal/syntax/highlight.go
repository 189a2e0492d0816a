package syntax

// Span is a contiguous run of one Style within a highlighted line.
type Span struct {
	Style Style
	Len   int
}

func dest(d, cur *State) *State {
	if d == nil {
		return cur
	}
	return d
}

func foldByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func hasPrefixFold(b, lit []byte, icase bool) bool {
	if len(b) < len(lit) {
		return false
	}
	for i, c := range lit {
		bc := b[i]
		if icase {
			bc, c = foldByte(bc), foldByte(c)
		}
		if bc != c {
			return false
		}
	}
	return true
}

func bufEqualsFold(buf, lit []byte, icase bool) bool {
	if len(buf) != len(lit) {
		return false
	}
	return hasPrefixFold(buf, lit, icase)
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func wordAt(line []byte, pos int) []byte {
	end := pos
	for end < len(line) && isWordByte(line[end]) {
		end++
	}
	return line[pos:end]
}

// highlightLine scans one line starting in state start, returning the
// styled runs that cover it and the state the next line should start
// in. It never looks past line's end; multi-line constructs work purely
// through the state carried across lines by a Highlighter's cache.
func highlightLine(syn *Syntax, start *State, line []byte) ([]Span, *State) {
	styles := make([]Style, len(line))
	state := start
	pos := 0
	var buf []byte
	bufStart := 0

	paint := func(from, n int, style Style) {
		for i := from; i < from+n && i < len(styles); i++ {
			styles[i] = style
		}
	}
	recolor := func(n int, style Style) {
		from := pos - n
		if from < 0 {
			from = 0
		}
		paint(from, pos-from, style)
	}
	recolorBuf := func(style Style) {
		paint(bufStart, len(buf), style)
	}

	for pos < len(line) {
		st := state
		matched := false

	conditions:
		for _, c := range st.Conditions {
			switch c.Tag {
			case CondChar1:
				if line[pos] == c.Byte {
					paint(pos, 1, c.Action.Style)
					pos++
					state = dest(c.Action.Dest, st)
					matched = true
					break conditions
				}
			case CondChar:
				if c.Set[line[pos]] {
					paint(pos, 1, c.Action.Style)
					pos++
					state = dest(c.Action.Dest, st)
					matched = true
					break conditions
				}
			case CondCharBuffer:
				if c.Set[line[pos]] {
					if len(buf) == 0 {
						bufStart = pos
					}
					buf = append(buf, line[pos])
					pos++
					state = dest(c.Action.Dest, st)
					matched = true
					break conditions
				}
			case CondStr:
				if hasPrefixFold(line[pos:], c.Literal, false) {
					paint(pos, len(c.Literal), c.Action.Style)
					pos += len(c.Literal)
					state = dest(c.Action.Dest, st)
					matched = true
					break conditions
				}
			case CondStrICase:
				if hasPrefixFold(line[pos:], c.Literal, true) {
					paint(pos, len(c.Literal), c.Action.Style)
					pos += len(c.Literal)
					state = dest(c.Action.Dest, st)
					matched = true
					break conditions
				}
			case CondStr2:
				if len(c.Literal) == 2 && pos+1 < len(line) &&
					line[pos] == c.Literal[0] && line[pos+1] == c.Literal[1] {
					paint(pos, 2, c.Action.Style)
					pos += 2
					state = dest(c.Action.Dest, st)
					matched = true
					break conditions
				}
			case CondBufIs:
				if bufEqualsFold(buf, c.Literal, false) {
					recolorBuf(c.Action.Style)
					buf = nil
					state = dest(c.Action.Dest, st)
					matched = true
					break conditions
				}
			case CondBufIsICase:
				if bufEqualsFold(buf, c.Literal, true) {
					recolorBuf(c.Action.Style)
					buf = nil
					state = dest(c.Action.Dest, st)
					matched = true
					break conditions
				}
			case CondInListBuffer:
				if c.List != nil && c.List.Contains(string(buf)) {
					recolorBuf(c.Action.Style)
					buf = nil
					state = dest(c.Action.Dest, st)
					matched = true
					break conditions
				}
			case CondInList:
				w := wordAt(line, pos)
				if len(w) > 0 && c.List != nil && c.List.Contains(string(w)) {
					paint(pos, len(w), c.Action.Style)
					pos += len(w)
					state = dest(c.Action.Dest, st)
					matched = true
					break conditions
				}
			case CondRecolor:
				// Repaints and falls through to the next condition for the
				// same byte: a match here is never a transition.
				recolor(c.N, c.Action.Style)
				continue conditions
			case CondRecolorBuffer:
				recolorBuf(c.Action.Style)
				continue conditions
			case CondHeredocEnd:
				if pos == 0 && hasPrefixFold(line, c.Literal, false) {
					paint(pos, len(c.Literal), c.Action.Style)
					pos += len(c.Literal)
					state = dest(c.Action.Dest, st)
					matched = true
					break conditions
				}
			}
		}
		if matched {
			continue
		}

		// Falling through to the default action always ends whatever
		// word was being accumulated: either a BUFIS/INLIST_BUFFER
		// condition above already consumed it, or it wasn't one after
		// all and gets discarded here (DefHeredocBegin is the one
		// default that still needs it, as the heredoc delimiter).
		savedBuf := buf

		switch st.Default.Kind {
		case DefNoEat:
			buf = nil
			next := dest(st.Default.Action.Dest, st)
			if next == st {
				paint(pos, 1, st.Default.Action.Style)
				pos++
			}
			state = next
		case DefNoEatBuffer:
			// Unlike DefNoEat, this default keeps the buffered word across
			// the transition so the destination state's BUFIS/INLIST_BUFFER
			// conditions can still see it.
			next := dest(st.Default.Action.Dest, st)
			if next == st {
				paint(pos, 1, st.Default.Action.Style)
				pos++
			}
			state = next
		case DefHeredocBegin:
			buf = nil
			next := heredocState(syn, st, string(savedBuf))
			paint(pos, 1, st.Default.Action.Style)
			pos++
			state = next
		default: // DefEat
			buf = nil
			paint(pos, 1, st.Default.Action.Style)
			pos++
			state = dest(st.Default.Action.Dest, st)
		}
	}

	return collapse(styles), state
}

func collapse(styles []Style) []Span {
	var spans []Span
	for _, s := range styles {
		if s == "" {
			s = StyleDefault
		}
		if n := len(spans); n > 0 && spans[n-1].Style == s {
			spans[n-1].Len++
			continue
		}
		spans = append(spans, Span{Style: s, Len: 1})
	}
	return spans
}
