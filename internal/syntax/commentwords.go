package syntax

// noticeWords are re-styled wherever they appear as a whole word inside
// comment-styled text (§4.F.4).
var noticeWords = []string{"TODO", "FIXME", "XXX"}

// applyCommentWords runs the comment-word post-pass over spans already
// produced for line: any noticeWords found inside a "comment"-styled run
// are repainted "notice", leaving every other run untouched.
func applyCommentWords(spans []Span, line []byte) []Span {
	out := make([]Span, 0, len(spans))
	pos := 0
	for _, sp := range spans {
		if sp.Style != StyleComment {
			out = append(out, sp)
			pos += sp.Len
			continue
		}
		out = append(out, splitNotices(line[pos:pos+sp.Len])...)
		pos += sp.Len
	}
	return out
}

func splitNotices(seg []byte) []Span {
	var out []Span
	i := 0
	for i < len(seg) {
		if n := matchNoticeWord(seg[i:]); n > 0 && (i == 0 || !isWordByte(seg[i-1])) {
			appendRun(&out, StyleNotice, n)
			i += n
			continue
		}
		appendRun(&out, StyleComment, 1)
		i++
	}
	return out
}

func appendRun(out *[]Span, style Style, n int) {
	if l := len(*out); l > 0 && (*out)[l-1].Style == style {
		(*out)[l-1].Len += n
		return
	}
	*out = append(*out, Span{Style: style, Len: n})
}

func matchNoticeWord(b []byte) int {
	for _, w := range noticeWords {
		if len(b) < len(w) || string(b[:len(w)]) != w {
			continue
		}
		if len(b) == len(w) || !isWordByte(b[len(w)]) {
			return len(w)
		}
	}
	return 0
}
