package syntax

// wordChars is the charset a bareword or identifier is made of, used by
// the demo syntaxes' CHAR_BUFFER conditions.
var wordChars = NewByteRange('a', 'z')

func init() {
	for b := byte('A'); b <= 'Z'; b++ {
		wordChars[b] = true
	}
	for b := byte('0'); b <= '9'; b++ {
		wordChars[b] = true
	}
	wordChars['_'] = true
}

// Plain is the null syntax: every byte is styled "default" and nothing
// ever transitions. Buffers with no recognized filetype use it.
func Plain() *Syntax {
	s := NewSyntax("plain")
	def := &State{Name: "default", Default: DefaultAction{Kind: DefEat, Action: Action{Style: StyleDefault}}}
	s.AddState(def)
	s.StartState = def.Name
	return s
}

// shellKeywords are the bareword keywords the toy shell syntax
// recognizes, demonstrating INLIST.
var shellKeywords = NewStringList("shell-keywords", false,
	"if", "then", "else", "fi", "for", "do", "done", "case", "esac")

// Shell is a small demonstration syntax exercising line comments,
// keyword lists, double-quoted strings, and heredocs merged from the
// "heredoc-body" sub-syntax (§4.F.3). It is not a complete shell
// grammar; it exists to exercise the highlighting engine's mechanisms.
func Shell() *Syntax {
	s := NewSyntax("shell")

	def := &State{Name: "default"}
	comment := &State{
		Name: "comment",
		Conditions: []Condition{
			{Tag: CondChar1, Byte: '\n', Action: Action{Style: StyleComment, Dest: def}},
		},
		Default: DefaultAction{Kind: DefEat, Action: Action{Style: StyleComment}},
	}
	str := &State{
		Name: "string",
		Conditions: []Condition{
			{Tag: CondChar1, Byte: '"', Action: Action{Style: StyleString, Dest: def}},
			{Tag: CondStr2, Literal: []byte(`\"`), Action: Action{Style: StyleString}},
		},
		Default: DefaultAction{Kind: DefEat, Action: Action{Style: StyleString}},
	}
	heredocDelim := &State{
		Name: "heredoc-delim",
		Conditions: []Condition{
			{Tag: CondCharBuffer, Set: wordChars, Action: Action{Style: StyleDefault}},
		},
		Default: DefaultAction{
			Kind:          DefHeredocBegin,
			HeredocSyntax: "heredoc-body",
			Action:        Action{Style: StyleDefault, Dest: def},
		},
	}

	def.Conditions = []Condition{
		{Tag: CondChar1, Byte: '#', Action: Action{Style: StyleComment, Dest: comment}},
		{Tag: CondChar1, Byte: '"', Action: Action{Style: StyleString, Dest: str}},
		{Tag: CondStr2, Literal: []byte("<<"), Action: Action{Style: StyleDefault, Dest: heredocDelim}},
		// Buffer up consecutive word bytes; once one that isn't follows,
		// CHAR_BUFFER stops matching and INLIST_BUFFER gets a chance to
		// recolor the whole run as a keyword before the default action
		// discards the buffer and eats that next byte as plain text.
		{Tag: CondCharBuffer, Set: wordChars, Action: Action{Style: StyleDefault}},
		{Tag: CondInListBuffer, List: shellKeywords, Action: Action{Style: StyleKeyword}},
	}
	def.Default = DefaultAction{Kind: DefEat, Action: Action{Style: StyleDefault}}

	for _, st := range []*State{def, comment, str, heredocDelim} {
		s.AddState(st)
	}
	s.StartState = def.Name
	s.Lists[shellKeywords.Name] = shellKeywords
	return s
}

// heredocBody is the sub-syntax merged in wherever a "heredoc-delim"
// state falls through to DefHeredocBegin. Its HEREDOCEND literal is
// filled in with the opening line's delimiter at merge time.
func heredocBody() *Syntax {
	s := NewSyntax("heredoc-body")
	body := &State{Name: "body"}
	body.Conditions = []Condition{
		{Tag: CondHeredocEnd, Action: Action{Style: StyleDefault, Dest: returnToCaller}},
	}
	body.Default = DefaultAction{Kind: DefEat, Action: Action{Style: StyleHeredoc, Dest: body}}
	s.AddState(body)
	s.StartState = body.Name
	return s
}

// BuiltinLibrary returns a Library seeded with the demo syntaxes, ready
// to hand to NewHighlighter (via Shell()'s Library field).
func BuiltinLibrary() *Library {
	lib := NewLibrary()
	lib.Register(Plain())
	lib.Register(Shell())
	lib.Register(heredocBody())
	return lib
}

// Additional styles the demo syntaxes use.
const (
	StyleKeyword Style = "keyword"
	StyleString  Style = "string"
	StyleHeredoc Style = "heredoc"
)
