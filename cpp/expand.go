package cpp

import (
	"strings"
)

// Macro expansion. maybeExpand drives expansion of tokens pulled from
// the main stream; expandList handles token lists that live outside
// the stream (directive lines, macro arguments). Both bottom out in
// subst, which performs parameter substitution, stringizing and token
// pasting, then rescans the result.
//
// Recursion is broken with a stack scoped set of in-progress macro
// names. A token whose expansion was declined because its name is on
// the stack is painted NoExpand so it is never reconsidered, even
// after it is pushed back and pulled again.

// maybeExpand expands t if it names a defined macro and, for a
// function-like macro, a call follows. It reports whether expansion
// happened; when it did, the results were pushed onto the lookahead
// stack.
func (pp *Preprocessor) maybeExpand(t *Token) bool {
	if t.NoExpand {
		return false
	}
	def := pp.macros.Get(t.Id)
	if def == nil {
		return false
	}
	if pp.expanding[t.Id] {
		t.NoExpand = true
		return false
	}
	if def.Kind == ObjMacro {
		pp.pushTokens(pp.invoke(def, t, nil))
		return true
	}
	// A function-like macro name with no '(' after it is an ordinary
	// identifier.
	after := pp.peekPastNewlines()
	if after.Kind != LPAREN {
		pp.pushBack(after)
		return false
	}
	args := pp.collectArgs(def, t)
	if fn, ok := pp.onCall[t.Id]; ok {
		fn(t, args)
	}
	pp.pushTokens(pp.invoke(def, t, args))
	return true
}

// peekPastNewlines returns the next raw token, skipping newlines. A
// macro call may span lines.
func (pp *Preprocessor) peekPastNewlines() *Token {
	for {
		t := pp.nextRaw()
		if t.Kind != NEWLINE {
			return t
		}
	}
}

// collectArgs consumes the argument list of a call to def, starting
// after the name. The opening '(' has already been consumed by the
// caller's peek. Arguments are raw token lists split on top level
// commas, except that a variadic macro stops splitting once the last
// parameter is reached.
func (pp *Preprocessor) collectArgs(def *MacroDef, call *Token) [][]*Token {
	var args [][]*Token
	var cur []*Token
	depth := 1
	sawTok := false
	for {
		t := pp.nextRaw()
		switch t.Kind {
		case EOF:
			pp.ppError(ErrBadMacroArgs, call.Pos,
				"EOF while reading arguments of macro %s", call.Val)
		case NEWLINE:
			continue
		case LPAREN:
			depth++
		case RPAREN:
			depth--
			if depth == 0 {
				if sawTok || len(args) > 0 {
					args = append(args, cur)
				}
				return pp.checkArgCount(def, call, args)
			}
		case COMMA:
			if depth == 1 && !(def.IsVariadic && len(args) >= len(def.Params)-1) {
				args = append(args, cur)
				cur = nil
				sawTok = false
				continue
			}
		}
		cur = append(cur, t)
		sawTok = true
	}
}

func (pp *Preprocessor) checkArgCount(def *MacroDef, call *Token, args [][]*Token) [][]*Token {
	want := len(def.Params)
	if def.IsVariadic {
		// The variadic slot may be empty or absent entirely.
		if len(args) == want-1 {
			args = append(args, nil)
		}
		if len(args) < want {
			pp.ppError(ErrBadMacroArgs, call.Pos,
				"macro %s requires at least %d arguments, %d given",
				call.Val, want-1, len(args))
		}
		return args
	}
	// f() matches both zero parameters and one empty parameter.
	if want == 1 && len(args) == 0 {
		args = append(args, nil)
	}
	if want == 0 && len(args) == 1 && len(args[0]) == 0 {
		args = args[:0]
	}
	if len(args) != want {
		pp.ppError(ErrBadMacroArgs, call.Pos,
			"macro %s requires %d arguments, %d given",
			call.Val, want, len(args))
	}
	return args
}

// invoke substitutes a macro body for a call and fully expands the
// result, with def's name held on the expanding stack throughout.
func (pp *Preprocessor) invoke(def *MacroDef, call *Token, args [][]*Token) []*Token {
	pp.expanding[def.Name] = true
	defer delete(pp.expanding, def.Name)
	toks := pp.subst(def, call, args)
	return pp.expandList(toks)
}

// expandList runs the full expansion algorithm over a detached token
// list. Function-like macro calls whose '(' lies inside the list are
// expanded; a trailing name with no '(' is left alone.
func (pp *Preprocessor) expandList(toks []*Token) []*Token {
	var out []*Token
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if !identLike(t) || t.NoExpand {
			out = append(out, t)
			continue
		}
		def := pp.macros.Get(t.Id)
		if def == nil {
			out = append(out, t)
			continue
		}
		if pp.expanding[t.Id] {
			t.NoExpand = true
			out = append(out, t)
			continue
		}
		if def.Kind == ObjMacro {
			out = append(out, pp.invoke(def, t, nil)...)
			continue
		}
		if i+1 >= len(toks) || toks[i+1].Kind != LPAREN {
			out = append(out, t)
			continue
		}
		args, rest := pp.collectArgsFromList(def, t, toks[i+2:])
		if fn, ok := pp.onCall[t.Id]; ok {
			fn(t, args)
		}
		out = append(out, pp.invoke(def, t, args)...)
		i = len(toks) - len(rest) - 1
	}
	return out
}

// collectArgsFromList is collectArgs over a detached list; toks starts
// just after the '('. It returns the arguments and the unconsumed
// tail.
func (pp *Preprocessor) collectArgsFromList(def *MacroDef, call *Token, toks []*Token) ([][]*Token, []*Token) {
	var args [][]*Token
	var cur []*Token
	depth := 1
	sawTok := false
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.Kind {
		case LPAREN:
			depth++
		case RPAREN:
			depth--
			if depth == 0 {
				if sawTok || len(args) > 0 {
					args = append(args, cur)
				}
				return pp.checkArgCount(def, call, args), toks[i+1:]
			}
		case COMMA:
			if depth == 1 && !(def.IsVariadic && len(args) >= len(def.Params)-1) {
				args = append(args, cur)
				cur = nil
				sawTok = false
				continue
			}
		}
		cur = append(cur, t)
		sawTok = true
	}
	pp.ppError(ErrBadMacroArgs, call.Pos,
		"unterminated arguments of macro %s", call.Val)
	return nil, nil
}

// argIndex resolves a body identifier to an argument slot. Both the
// standard __VA_ARGS__ spelling and a GNU named variadic parameter
// resolve to the last slot of a variadic macro.
func (pp *Preprocessor) argIndex(def *MacroDef, id InternedStr) (int, bool) {
	if idx, ok := def.paramIndex(id); ok {
		return idx, true
	}
	if def.IsVariadic && id == pp.idVaArgs && len(def.Params) > 0 {
		return len(def.Params) - 1, true
	}
	return 0, false
}

// subst builds the replacement list for one call: parameters are
// substituted (expanded on use, except as '#' or '##' operands),
// '#' stringizes and '##' pastes. Every produced token is stamped
// with the call site position.
func (pp *Preprocessor) subst(def *MacroDef, call *Token, args [][]*Token) []*Token {
	var out []*Token
	body := def.Body
	for i := 0; i < len(body); i++ {
		t := body[i]

		// '#' param
		if t.Kind == HASH && def.Kind == FuncMacro {
			if i+1 >= len(body) {
				pp.ppError(ErrInvalidStringize, call.Pos,
					"'#' must be followed by a macro parameter")
			}
			idx, isParam := pp.argIndex(def, body[i+1].Id)
			if !identLike(body[i+1]) || !isParam {
				pp.ppError(ErrInvalidStringize, call.Pos,
					"'#' must be followed by a macro parameter")
			}
			i++
			seg := []*Token{pp.stringize(args[idx], call.Pos)}
			// The stringized token can be the left operand of '##'.
			seg, i = pp.pasteChain(def, call, args, seg, i)
			out = append(out, seg...)
			continue
		}

		// lhs ## rhs. The paste segment is built apart from out so
		// an empty operand cannot splice onto earlier body tokens.
		if def.HasPaste && i+1 < len(body) && body[i+1].Kind == HASHHASH {
			seg := pp.substOne(def, call, args, t, true)
			seg, i = pp.pasteChain(def, call, args, seg, i)
			out = append(out, seg...)
			continue
		}

		if t.Kind == HASHHASH {
			pp.ppError(ErrInvalidTokenPaste, call.Pos,
				"'##' cannot appear at the start of a macro body")
		}

		out = append(out, pp.substOne(def, call, args, t, false)...)
	}
	return out
}

// pasteChain consumes every '## rhs' pair following body[i], pasting
// each raw rhs onto the running segment. It returns the segment and
// the index of the last body token consumed.
func (pp *Preprocessor) pasteChain(def *MacroDef, call *Token, args [][]*Token, seg []*Token, i int) ([]*Token, int) {
	body := def.Body
	for i+1 < len(body) && body[i+1].Kind == HASHHASH {
		i += 2
		if i >= len(body) {
			pp.ppError(ErrInvalidTokenPaste, call.Pos,
				"'##' cannot appear at the end of a macro body")
		}
		rhs := pp.substOne(def, call, args, body[i], true)
		seg = pp.paste(seg, rhs, call.Pos)
	}
	return seg, i
}

// substOne produces the substitution of a single body token. raw
// suppresses expansion of a parameter's argument, for '##' operands.
func (pp *Preprocessor) substOne(def *MacroDef, call *Token, args [][]*Token, t *Token, raw bool) []*Token {
	if def.Kind == FuncMacro && identLike(t) {
		if idx, ok := pp.argIndex(def, t.Id); ok {
			arg := copyTokens(args[idx], call.Pos)
			if raw {
				return arg
			}
			return pp.expandList(arg)
		}
	}
	c := t.copy()
	c.Pos = call.Pos
	return []*Token{c}
}

func copyTokens(toks []*Token, pos FilePos) []*Token {
	out := make([]*Token, len(toks))
	for i, t := range toks {
		c := t.copy()
		c.Pos = pos
		out[i] = c
	}
	return out
}

// stringize produces the STRING token for a '#' operator applied to a
// raw argument. Tokens are joined with single spaces; embedded quotes
// and backslashes are escaped.
func (pp *Preprocessor) stringize(arg []*Token, pos FilePos) *Token {
	var cooked strings.Builder
	for i, t := range arg {
		if i > 0 {
			cooked.WriteByte(' ')
		}
		cooked.WriteString(t.Val)
	}
	s := cooked.String()
	var quoted strings.Builder
	quoted.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\\':
			quoted.WriteByte('\\')
		}
		quoted.WriteByte(s[i])
	}
	quoted.WriteByte('"')
	return &Token{
		Kind: STRING,
		Val:  quoted.String(),
		SVal: s,
		Pos:  pos,
	}
}

// paste joins the last token of lhs with the first token of rhs by
// relexing their concatenated spellings. Either side may be empty, in
// which case the other passes through.
func (pp *Preprocessor) paste(lhs, rhs []*Token, pos FilePos) []*Token {
	if len(rhs) == 0 {
		return lhs
	}
	if len(lhs) == 0 {
		return rhs
	}
	l := lhs[len(lhs)-1]
	r := rhs[0]
	glued := pp.relex(l.Val+r.Val, pos)
	if len(glued) == 0 {
		pp.ppError(ErrInvalidTokenPaste, pos,
			"pasting %s and %s does not form a token", l.Val, r.Val)
	}
	out := append(lhs[:len(lhs)-1], glued...)
	return append(out, rhs[1:]...)
}

// relex tokenizes a pasted spelling. The result may be more than one
// token; that is accepted the way most compilers accept it.
func (pp *Preprocessor) relex(src string, pos FilePos) []*Token {
	lx := NewLexer([]byte(src), pos.File, pp.in)
	var out []*Token
	for {
		t, err := lx.Next()
		if err != nil {
			pp.ppError(ErrInvalidTokenPaste, pos,
				"pasted text %q does not form valid tokens", src)
		}
		if t.Kind == EOF {
			return out
		}
		if t.Kind == NEWLINE {
			continue
		}
		t.Pos = pos
		out = append(out, t)
	}
}
