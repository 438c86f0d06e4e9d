package cpp

import (
	"fmt"
	"os"
	"strings"
)

// Preprocessor orchestrates a stack of input sources: one lexer per
// open file, plus pushed back token buffers holding macro expansion
// results. Next is the single pull API; the parser calls it and never
// sees directives, newlines or unexpanded macro calls.
type Preprocessor struct {
	files  *FileRegistry
	in     *StringInterner
	macros *MacroTable
	is     IncludeSearcher

	// Include stack; the active lexer is the last element.
	lexers []*Lexer
	// Pushed back lookahead; the next token to surface is the last
	// element. Macro expansion pushes its results in reverse so they
	// pop out in order.
	la []*Token

	// Stack of nested conditional states.
	conds []condState

	// Names whose expansion is in progress, to break recursive
	// macro expansion. Membership is stack scoped: added before a
	// macro's body is substituted, removed on unwind.
	expanding map[InternedStr]bool

	onDefine func(*MacroDef)
	onCall   map[InternedStr]func(call *Token, args [][]*Token)

	idVaArgs InternedStr
	idDefined InternedStr
}

// condState tracks one nesting level of #if.
// seenActive implies some branch at this level was taken; seenElse
// forbids any further #elif or second #else at this level.
type condState struct {
	active     bool
	seenActive bool
	seenElse   bool
	pos        FilePos
}

func New(is IncludeSearcher) *Preprocessor {
	in := NewStringInterner()
	pp := &Preprocessor{
		files:     NewFileRegistry(),
		in:        in,
		macros:    NewMacroTable(in),
		is:        is,
		expanding: make(map[InternedStr]bool),
		onCall:    make(map[InternedStr]func(*Token, [][]*Token)),
	}
	pp.idVaArgs = in.Intern("__VA_ARGS__")
	pp.idDefined = in.Intern("defined")
	return pp
}

func (pp *Preprocessor) Files() *FileRegistry { return pp.files }

func (pp *Preprocessor) Interner() *StringInterner { return pp.in }

func (pp *Preprocessor) Macros() *MacroTable { return pp.macros }

// OnDefine registers a callback fired whenever a #define completes.
func (pp *Preprocessor) OnDefine(fn func(*MacroDef)) {
	pp.onDefine = fn
}

// OnMacroCall registers a callback for a watched function-like macro
// name; it fires when a call to that name completes argument
// collection, with the raw (unexpanded) argument token lists.
func (pp *Preprocessor) OnMacroCall(name string, fn func(call *Token, args [][]*Token)) {
	pp.onCall[pp.in.Intern(name)] = fn
}

// Predefine installs a builtin object macro before processing starts.
// value is tokenized as source text; an empty value defines the name
// to an empty body.
func (pp *Preprocessor) Predefine(name, value string) error {
	file := pp.files.Intern("<predefined>")
	lx := NewLexer([]byte(value), file, pp.in)
	var body []*Token
	for {
		t, err := lx.Next()
		if err != nil {
			return err
		}
		if t.Kind == EOF {
			break
		}
		if t.Kind == NEWLINE {
			continue
		}
		body = append(body, t)
	}
	def := &MacroDef{
		Name:      pp.in.Intern(name),
		Kind:      ObjMacro,
		Body:      body,
		DefPos:    FilePos{File: file, Line: 1, Col: 1},
		IsBuiltin: true,
		HasPaste:  hasPaste(body),
	}
	pp.macros.Define(def)
	return nil
}

// PushFile reads path whole and makes it the active source.
func (pp *Preprocessor) PushFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	pp.PushSource(path, data)
	return nil
}

// PushSource makes an in-memory buffer the active source, registered
// under path for diagnostics.
func (pp *Preprocessor) PushSource(path string, src []byte) {
	file := pp.files.Intern(path)
	pp.lexers = append(pp.lexers, NewLexer(src, file, pp.in))
}

func (pp *Preprocessor) activeLexer() *Lexer {
	return pp.lexers[len(pp.lexers)-1]
}

func (pp *Preprocessor) ppError(code ErrCode, pos FilePos, format string, vals ...interface{}) {
	panic(ErrWithLoc(&PPError{
		Code: code,
		Msg:  fmt.Sprintf(format, vals...),
	}, pos))
}

func (pp *Preprocessor) pushBack(t *Token) {
	pp.la = append(pp.la, t)
}

// pushTokens pushes toks so they pop back out in slice order.
func (pp *Preprocessor) pushTokens(toks []*Token) {
	for i := len(toks) - 1; i >= 0; i-- {
		pp.la = append(pp.la, toks[i])
	}
}

// nextRaw produces the next token with no expansion and no directive
// handling. When the active source is exhausted it pops back to the
// includer; the outermost EOF also checks for an unterminated #if.
func (pp *Preprocessor) nextRaw() *Token {
	if n := len(pp.la); n > 0 {
		t := pp.la[n-1]
		pp.la = pp.la[:n-1]
		return t
	}
	for {
		t, err := pp.activeLexer().Next()
		if err != nil {
			panic(err.(ErrorLoc))
		}
		if t.Kind == EOF {
			if len(pp.lexers) == 1 {
				if len(pp.conds) != 0 {
					pp.ppError(ErrMissingEndif, pp.conds[len(pp.conds)-1].pos,
						"unterminated conditional directive")
				}
				return t
			}
			pp.lexers = pp.lexers[:len(pp.lexers)-1]
			continue
		}
		return t
	}
}

// emitting reports whether every level of the conditional stack is
// active. Skipping is done at the character level before tokens are
// even produced; this flag is the correctness backstop.
func (pp *Preprocessor) emitting() bool {
	for i := range pp.conds {
		if !pp.conds[i].active {
			return false
		}
	}
	return true
}

func identLike(t *Token) bool {
	return t.Kind == IDENT || (t.Kind >= AUTO && t.Kind <= EXTENSION)
}

// Next returns the next fully preprocessed token.
func (pp *Preprocessor) Next() (t *Token, err error) {
	defer func() {
		if e := recover(); e != nil {
			le, ok := e.(ErrorLoc)
			if !ok {
				panic(e)
			}
			t = &Token{Kind: ERROR, Val: le.Error(), Pos: le.Pos}
			err = le
		}
	}()
	for {
		tok := pp.nextRaw()
		switch {
		case tok.Kind == NEWLINE:
			// Newlines only matter to directive scanning.
		case tok.Kind == HASH && tok.BOL:
			pp.handleDirective(tok)
		case !pp.emitting():
			// Dropped; the branch is inactive.
		case identLike(tok):
			if !pp.maybeExpand(tok) {
				return tok, nil
			}
		default:
			return tok, nil
		}
	}
}

// readDirectiveLine collects the raw tokens up to and including the
// terminating newline (the newline itself is consumed, not returned).
func (pp *Preprocessor) readDirectiveLine() []*Token {
	var toks []*Token
	for {
		t := pp.nextRaw()
		if t.Kind == NEWLINE {
			return toks
		}
		if t.Kind == EOF {
			pp.pushBack(t)
			return toks
		}
		toks = append(toks, t)
	}
}

func (pp *Preprocessor) handleDirective(hash *Token) {
	t := pp.nextRaw()
	if t.Kind == NEWLINE {
		// A '#' on a line of its own is a null directive.
		return
	}
	if !identLike(t) {
		if !pp.emitting() {
			pp.readDirectiveLine()
			return
		}
		pp.ppError(ErrInvalidDirective, t.Pos, "invalid preprocessor directive %s", t.Val)
	}
	switch t.Val {
	case "define":
		pp.handleDefine(t.Pos)
	case "undef":
		pp.handleUndef()
	case "include":
		pp.handleInclude(t.Pos)
	case "if":
		pp.handleIf(t.Pos)
	case "ifdef":
		pp.handleIfDef(t.Pos, false)
	case "ifndef":
		pp.handleIfDef(t.Pos, true)
	case "elif":
		pp.handleElif(t.Pos)
	case "else":
		pp.handleElse(t.Pos)
	case "endif":
		pp.handleEndif(t.Pos)
	case "error":
		toks := pp.readDirectiveLine()
		pp.ppError(ErrErrorDirective, t.Pos, "#error %s", joinTokenText(toks))
	case "warning", "pragma", "line":
		// Consumed and discarded.
		pp.readDirectiveLine()
	default:
		if !pp.emitting() {
			pp.readDirectiveLine()
			return
		}
		pp.ppError(ErrInvalidDirective, t.Pos, "unknown directive #%s", t.Val)
	}
}

func joinTokenText(toks []*Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Val)
	}
	return sb.String()
}

func (pp *Preprocessor) handleUndef() {
	name := pp.nextRaw()
	if !identLike(name) {
		pp.ppError(ErrInvalidDirective, name.Pos, "#undef expects a macro name")
	}
	// Undefining a name that is not defined is tolerated, the way
	// cc(1) implementations behave.
	pp.macros.Undefine(name.Id)
	pp.readDirectiveLine()
}

func (pp *Preprocessor) handleDefine(pos FilePos) {
	name := pp.nextRaw()
	if !identLike(name) {
		pp.ppError(ErrInvalidDirective, name.Pos, "#define expects a macro name")
	}
	// The one place C syntax is whitespace sensitive: a '(' with no
	// preceding space makes this a function-like macro.
	lx := pp.activeLexer()
	lx.SetKeepSpace(true)
	t := pp.nextRaw()
	lx.SetKeepSpace(false)

	var def *MacroDef
	if t.Kind == LPAREN {
		def = pp.finishFuncLikeDefine(name)
	} else {
		if t.Kind != SPACE {
			pp.pushBack(t)
		}
		def = &MacroDef{
			Name:   name.Id,
			Kind:   ObjMacro,
			Body:   pp.readDirectiveLine(),
			DefPos: name.Pos,
		}
	}
	def.HasPaste = hasPaste(def.Body)

	prev, ok := pp.macros.Define(def)
	if !ok {
		pp.ppError(ErrMacroRedefinition, name.Pos,
			"cannot redefine builtin macro %s", name.Val)
	}
	if prev != nil && !prev.IsBuiltin && !sameDef(prev, def) {
		pp.ppError(ErrMacroRedefinition, name.Pos,
			"macro redefinition %s (previously defined at %s)", name.Val, prev.DefPos)
	}
	if pp.onDefine != nil {
		pp.onDefine(def)
	}
}

func (pp *Preprocessor) finishFuncLikeDefine(name *Token) *MacroDef {
	def := &MacroDef{
		Name:   name.Id,
		Kind:   FuncMacro,
		DefPos: name.Pos,
	}
	for {
		t := pp.nextRaw()
		if t.Kind == RPAREN {
			break
		}
		if t.Kind == ELLIPSIS {
			def.IsVariadic = true
			def.Params = append(def.Params, pp.idVaArgs)
			t = pp.nextRaw()
			if t.Kind != RPAREN {
				pp.ppError(ErrInvalidDirective, t.Pos, "expected ')' after '...'")
			}
			break
		}
		if !identLike(t) {
			pp.ppError(ErrInvalidDirective, t.Pos, "expected macro parameter, got %s", t.Val)
		}
		def.Params = append(def.Params, t.Id)
		t2 := pp.nextRaw()
		if t2.Kind == COMMA {
			continue
		}
		if t2.Kind == ELLIPSIS {
			// GNU named variadic parameter: args...
			def.IsVariadic = true
			t2 = pp.nextRaw()
			if t2.Kind != RPAREN {
				pp.ppError(ErrInvalidDirective, t2.Pos, "expected ')' after '...'")
			}
			break
		}
		if t2.Kind == RPAREN {
			break
		}
		pp.ppError(ErrInvalidDirective, t2.Pos, "expected ',' or ')' in macro parameter list")
	}
	def.Body = pp.readDirectiveLine()
	return def
}

// sameDef reports whether two definitions are token identical, which
// is the only benign form of redefinition (common in guard-heavy
// headers).
func sameDef(a, b *MacroDef) bool {
	if a.Kind != b.Kind || a.IsVariadic != b.IsVariadic || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	if len(a.Body) != len(b.Body) {
		return false
	}
	for i := range a.Body {
		if a.Body[i].Kind != b.Body[i].Kind || a.Body[i].Val != b.Body[i].Val {
			return false
		}
	}
	return true
}

func hasPaste(body []*Token) bool {
	for _, t := range body {
		if t.Kind == HASHHASH {
			return true
		}
	}
	return false
}

func (pp *Preprocessor) handleInclude(pos FilePos) {
	toks := pp.readDirectiveLine()
	// #include FOO is legal when FOO expands to a header name.
	toks = pp.expandList(toks)
	if len(toks) == 0 {
		pp.ppError(ErrInvalidDirective, pos, "#include expects a header name")
	}
	requesting := pp.files.Path(pp.activeLexer().file)
	var path string
	var quote bool
	switch toks[0].Kind {
	case STRING:
		quote = true
		path = toks[0].SVal
	case LSS:
		var sb strings.Builder
		closed := false
		for _, t := range toks[1:] {
			if t.Kind == GTR {
				closed = true
				break
			}
			sb.WriteString(t.Val)
		}
		if !closed {
			pp.ppError(ErrInvalidDirective, pos, "missing '>' in #include")
		}
		path = sb.String()
	default:
		pp.ppError(ErrInvalidDirective, toks[0].Pos, "bad #include form %s", toks[0].Val)
	}
	var resolved string
	var data []byte
	var err error
	if quote {
		resolved, data, err = pp.is.IncludeQuote(requesting, path)
	} else {
		resolved, data, err = pp.is.IncludeAngled(requesting, path)
	}
	if err != nil {
		if pe, ok := err.(*PPError); ok {
			panic(ErrWithLoc(pe, pos))
		}
		pp.ppError(ErrIncludeIO, pos, "error during include: %s", err)
	}
	pp.PushSource(resolved, data)
}

// --- conditional compilation ---

func (pp *Preprocessor) pushCond(active bool, pos FilePos) {
	pp.conds = append(pp.conds, condState{
		active:     active,
		seenActive: active,
		pos:        pos,
	})
}

func (pp *Preprocessor) topCond(pos FilePos, dir string) *condState {
	if len(pp.conds) == 0 {
		code := ErrUnmatchedEndif
		switch dir {
		case "else":
			code = ErrUnmatchedElse
		case "elif":
			code = ErrUnmatchedElif
		}
		pp.ppError(code, pos, "stray #%s", dir)
	}
	return &pp.conds[len(pp.conds)-1]
}

// evalCondition reads and evaluates the rest of a #if or #elif line.
// Macro expansion applies to everything except the operand of
// `defined`, which is folded to 0/1 first.
func (pp *Preprocessor) evalCondition(pos FilePos) bool {
	toks := pp.readDirectiveLine()
	toks = pp.foldDefined(toks)
	toks = pp.expandList(toks)
	v, err := evalIfExpr(pos, toks)
	if err != nil {
		panic(err.(ErrorLoc))
	}
	return v != 0
}

// foldDefined rewrites `defined NAME` and `defined(NAME)` into integer
// constants before the rest of the line is macro expanded.
func (pp *Preprocessor) foldDefined(toks []*Token) []*Token {
	out := make([]*Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if !identLike(t) || t.Id != pp.idDefined {
			out = append(out, t)
			continue
		}
		i++
		paren := false
		if i < len(toks) && toks[i].Kind == LPAREN {
			paren = true
			i++
		}
		if i >= len(toks) || !identLike(toks[i]) {
			pp.ppError(ErrInvalidCondExpr, t.Pos, "malformed defined check")
		}
		name := toks[i]
		if paren {
			i++
			if i >= len(toks) || toks[i].Kind != RPAREN {
				pp.ppError(ErrInvalidCondExpr, t.Pos, "malformed defined check, missing ')'")
			}
		}
		v := &Token{Kind: INT_CONSTANT, Val: "0", Pos: t.Pos}
		if pp.macros.IsDefined(name.Id) {
			v.Val = "1"
			v.IVal = 1
		}
		out = append(out, v)
	}
	return out
}

func (pp *Preprocessor) handleIf(pos FilePos) {
	if !pp.emitting() {
		// Unreachable in practice: inactive regions are skipped at
		// the character level before directives are tokenized.
		pp.readDirectiveLine()
		pp.pushCond(false, pos)
		return
	}
	active := pp.evalCondition(pos)
	pp.pushCond(active, pos)
	if !active {
		pp.skipToLiveBranch()
	}
}

func (pp *Preprocessor) handleIfDef(pos FilePos, negate bool) {
	name := pp.nextRaw()
	if !identLike(name) {
		pp.ppError(ErrInvalidDirective, name.Pos, "#ifdef expects a macro name")
	}
	pp.readDirectiveLine()
	active := pp.macros.IsDefined(name.Id)
	if negate {
		active = !active
	}
	pp.pushCond(active, pos)
	if !active {
		pp.skipToLiveBranch()
	}
}

// skipToLiveBranch is entered with the top conditional inactive and
// the cursor at the start of the line after the failed directive. It
// walks branches at this nesting level, character-wise, until one is
// taken or the #endif closes the level.
func (pp *Preprocessor) skipToLiveBranch() {
	for {
		word, pos := pp.activeLexer().skipCondBranch()
		state := &pp.conds[len(pp.conds)-1]
		switch word {
		case "endif":
			pp.readDirectiveLine()
			pp.conds = pp.conds[:len(pp.conds)-1]
			return
		case "else":
			if state.seenElse {
				pp.ppError(ErrUnmatchedElse, pos, "second #else at this level")
			}
			state.seenElse = true
			pp.readDirectiveLine()
			if !state.seenActive {
				state.active = true
				state.seenActive = true
				return
			}
		case "elif":
			if state.seenElse {
				pp.ppError(ErrUnmatchedElif, pos, "#elif after #else")
			}
			if !state.seenActive && pp.evalCondition(pos) {
				state.active = true
				state.seenActive = true
				return
			}
			if state.seenActive {
				// Condition is not evaluated once a branch was taken.
				pp.readDirectiveLine()
			}
		}
	}
}

// handleElif and handleElse are reached token-wise, which means the
// branch that just ended was active.
func (pp *Preprocessor) handleElif(pos FilePos) {
	state := pp.topCond(pos, "elif")
	if state.seenElse {
		pp.ppError(ErrUnmatchedElif, pos, "#elif after #else")
	}
	state.active = false
	pp.readDirectiveLine()
	pp.skipToLiveBranch()
}

func (pp *Preprocessor) handleElse(pos FilePos) {
	state := pp.topCond(pos, "else")
	if state.seenElse {
		pp.ppError(ErrUnmatchedElse, pos, "second #else at this level")
	}
	state.seenElse = true
	state.active = false
	pp.readDirectiveLine()
	pp.skipToLiveBranch()
}

func (pp *Preprocessor) handleEndif(pos FilePos) {
	if len(pp.conds) == 0 {
		pp.ppError(ErrUnmatchedEndif, pos, "stray #endif")
	}
	pp.conds = pp.conds[:len(pp.conds)-1]
	pp.readDirectiveLine()
}
