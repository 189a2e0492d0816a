package syntax

// returnToCaller is the sentinel Dest used inside a heredoc-body Syntax
// template (one only ever reached through DefHeredocBegin, never used as
// a buffer's own start syntax) to mean "the heredoc body ended, resume
// the state that opened it." heredocState rewrites every transition
// pointing here while it copies the template in.
var returnToCaller = &State{Name: "<heredoc-return>"}

// heredocState returns the entry state for the heredoc body opened by
// st with delimiter delim, merging in the Syntax st.Default.HeredocSyntax
// names from the owning syntax's Library (§4.F.3). The merge is a deep
// copy because HEREDOCEND's literal must be the line's actual delimiter
// and because returnToCaller must resolve to st's own continuation;
// copies are cached per (sub-syntax, delimiter) pair on the syntax so
// repeated heredocs with the same delimiter share one compiled copy.
func heredocState(syn *Syntax, st *State, delim string) *State {
	name := st.Default.HeredocSyntax
	if name == "" || syn.Library == nil {
		return st
	}
	sub := syn.Library.Lookup(name)
	if sub == nil || sub.Start() == nil {
		return st
	}
	if syn.heredocCache == nil {
		syn.heredocCache = make(map[string]*State)
	}
	key := name + "\x00" + delim
	if cached, ok := syn.heredocCache[key]; ok {
		return cached
	}

	returnTo := dest(st.Default.Action.Dest, st)

	copied := make(map[*State]*State, len(sub.States))
	var copyState func(s *State) *State
	copyState = func(s *State) *State {
		switch s {
		case nil:
			return nil
		case returnToCaller:
			return returnTo
		}
		if c, ok := copied[s]; ok {
			return c
		}
		c := &State{Name: name + ":" + s.Name}
		copied[s] = c
		c.Conditions = make([]Condition, len(s.Conditions))
		for i, cond := range s.Conditions {
			if cond.Tag == CondHeredocEnd && len(cond.Literal) == 0 {
				cond.Literal = []byte(delim)
			}
			cond.Action.Dest = copyState(cond.Action.Dest)
			c.Conditions[i] = cond
		}
		c.Default = s.Default
		c.Default.Action.Dest = copyState(s.Default.Action.Dest)
		return c
	}

	entry := copyState(sub.Start())
	syn.heredocCache[key] = entry
	return entry
}
