package cpp

import (
	"fmt"
	"strconv"
	"strings"
)

// Lexer produces one token per Next call from an in-memory byte buffer.
// The whole file is read eagerly before scanning starts; the cursor
// never seeks backwards past consumed bytes.
//
// Newlines are returned as NEWLINE tokens because the preprocessor
// needs them to terminate directives. Line and block comments are not
// tokens; they accumulate and ride on the next real token's
// LeadingComments.
type Lexer struct {
	src  []byte
	file FileID
	in   *StringInterner

	off  int
	line int
	col  int
	// At the beginning of a line, not counting whitespace.
	bol bool
	// When set, runs of inline whitespace come back as SPACE tokens.
	// Only the #define name/paren boundary needs this.
	keepSpace bool

	comments []Comment

	markLine int
	markCol  int
}

// NewLexer scans src, using fname interned into files for positions.
func NewLexer(src []byte, file FileID, in *StringInterner) *Lexer {
	return &Lexer{
		src:  src,
		file: file,
		in:   in,
		line: 1,
		col:  1,
		bol:  true,
	}
}

// SetKeepSpace toggles the spaces-as-tokens sub-mode.
func (lx *Lexer) SetKeepSpace(on bool) {
	lx.keepSpace = on
}

func (lx *Lexer) Pos() FilePos {
	return FilePos{File: lx.file, Line: lx.line, Col: lx.col}
}

func (lx *Lexer) markPos() {
	lx.markLine = lx.line
	lx.markCol = lx.col
}

func (lx *Lexer) tokPos() FilePos {
	return FilePos{File: lx.file, Line: lx.markLine, Col: lx.markCol}
}

func (lx *Lexer) err(code ErrCode, format string, vals ...interface{}) {
	e := ErrWithLoc(&LexError{Code: code, Msg: fmt.Sprintf(format, vals...)}, lx.Pos())
	panic(e)
}

// fold skips backslash-newline sequences so the rest of the lexer never
// sees a line continuation.
func (lx *Lexer) fold() {
	for lx.off+1 < len(lx.src) && lx.src[lx.off] == '\\' {
		if lx.src[lx.off+1] == '\n' {
			lx.off += 2
			lx.line++
			lx.col = 1
			continue
		}
		if lx.src[lx.off+1] == '\r' && lx.off+2 < len(lx.src) && lx.src[lx.off+2] == '\n' {
			lx.off += 3
			lx.line++
			lx.col = 1
			continue
		}
		break
	}
}

func (lx *Lexer) eof() bool {
	lx.fold()
	return lx.off >= len(lx.src)
}

func (lx *Lexer) peek() byte {
	lx.fold()
	if lx.off >= len(lx.src) {
		return 0
	}
	return lx.src[lx.off]
}

// peek2 looks one character past the current one, skipping any line
// continuation in between.
func (lx *Lexer) peek2() byte {
	lx.fold()
	j := lx.off + 1
	for j+1 < len(lx.src) && lx.src[j] == '\\' {
		if lx.src[j+1] == '\n' {
			j += 2
			continue
		}
		if lx.src[j+1] == '\r' && j+2 < len(lx.src) && lx.src[j+2] == '\n' {
			j += 3
			continue
		}
		break
	}
	if j >= len(lx.src) {
		return 0
	}
	return lx.src[j]
}

func (lx *Lexer) getc() byte {
	lx.fold()
	if lx.off >= len(lx.src) {
		return 0
	}
	c := lx.src[lx.off]
	lx.off++
	switch c {
	case '\n':
		lx.line++
		lx.col = 1
	case '\t':
		lx.col += 4
	default:
		lx.col++
	}
	return c
}

func (lx *Lexer) newTok(kind TokenKind, val string) *Token {
	t := &Token{
		Kind: kind,
		Val:  val,
		Pos:  lx.tokPos(),
		BOL:  lx.bol,
	}
	if len(lx.comments) != 0 {
		t.LeadingComments = lx.comments
		lx.comments = nil
	}
	if kind != NEWLINE && kind != SPACE {
		lx.bol = false
	}
	return t
}

// Next consumes exactly one logical token and advances the cursor.
func (lx *Lexer) Next() (t *Token, err error) {
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
		lx.markPos()
		if lx.eof() {
			return lx.newTok(EOF, ""), nil
		}
		c := lx.peek()
		switch {
		case c == '\n':
			lx.getc()
			t := lx.newTok(NEWLINE, "\n")
			lx.bol = true
			return t, nil
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			for {
				c = lx.peek()
				if c != ' ' && c != '\t' && c != '\r' && c != '\f' && c != '\v' {
					break
				}
				lx.getc()
			}
			if lx.keepSpace {
				return lx.newTok(SPACE, " "), nil
			}
		case c == '/' && lx.peek2() == '/':
			lx.readLineComment()
		case c == '/' && lx.peek2() == '*':
			lx.readBlockComment()
		case c == 'L' && (lx.peek2() == '"' || lx.peek2() == '\''):
			lx.getc()
			if lx.peek() == '"' {
				return lx.readString(true), nil
			}
			return lx.readChar(true), nil
		case isValidIdentStart(c):
			return lx.readIdentOrKeyword(), nil
		case isNumeric(c):
			return lx.readNumber(), nil
		case c == '.' && isNumeric(lx.peek2()):
			return lx.readNumber(), nil
		case c == '"':
			return lx.readString(false), nil
		case c == '\'':
			return lx.readChar(false), nil
		default:
			return lx.readPunctuator(), nil
		}
	}
}

func (lx *Lexer) readLineComment() {
	pos := lx.tokPos()
	lx.getc()
	lx.getc()
	start := lx.off
	for !lx.eof() && lx.peek() != '\n' {
		lx.getc()
	}
	lx.comments = append(lx.comments, Comment{
		Text: string(lx.src[start:lx.off]),
		Pos:  pos,
	})
}

func (lx *Lexer) readBlockComment() {
	pos := lx.tokPos()
	lx.getc()
	lx.getc()
	var sb strings.Builder
	for {
		if lx.eof() {
			lx.err(ErrUnterminatedComment, "unclosed comment")
		}
		c := lx.getc()
		if c == '*' && lx.peek() == '/' {
			lx.getc()
			break
		}
		sb.WriteByte(c)
	}
	lx.comments = append(lx.comments, Comment{
		Text:  sb.String(),
		Block: true,
		Pos:   pos,
	})
}

func (lx *Lexer) readIdentOrKeyword() *Token {
	start := lx.off
	lx.getc()
	for isValidIdentTail(lx.peek()) {
		lx.getc()
	}
	raw := lx.src[start:lx.off]
	kind, ok := keywordLUT[string(raw)]
	if !ok {
		kind = IDENT
	}
	id := lx.in.InternBytes(raw)
	t := lx.newTok(kind, lx.in.Str(id))
	t.Id = id
	return t
}

// readNumber scans the textual extent of a numeric literal and then
// types it: radix by prefix, signedness/width by suffix. A decimal
// that overflows signed 64 bit parsing is retried as unsigned, which
// mirrors C's widen-on-overflow literal typing.
func (lx *Lexer) readNumber() *Token {
	var sb strings.Builder
	isFloat := false
	isHex := false
	if lx.peek() == '0' && (lx.peek2() == 'x' || lx.peek2() == 'X') {
		isHex = true
		sb.WriteByte(lx.getc())
		sb.WriteByte(lx.getc())
	}
	for {
		c := lx.peek()
		switch {
		case isNumeric(c) || (isHex && isHexDigit(c)):
			sb.WriteByte(lx.getc())
		case c == '.':
			isFloat = true
			sb.WriteByte(lx.getc())
		case !isHex && (c == 'e' || c == 'E'):
			isFloat = true
			sb.WriteByte(lx.getc())
			if lx.peek() == '+' || lx.peek() == '-' {
				sb.WriteByte(lx.getc())
			}
		case isHex && (c == 'p' || c == 'P'):
			isFloat = true
			sb.WriteByte(lx.getc())
			if lx.peek() == '+' || lx.peek() == '-' {
				sb.WriteByte(lx.getc())
			}
		case isValidIdentTail(c):
			// Suffix letters and binary 'b' land here too.
			sb.WriteByte(lx.getc())
		default:
			return lx.typeNumber(sb.String(), isFloat)
		}
	}
}

func (lx *Lexer) typeNumber(text string, isFloat bool) *Token {
	if isFloat {
		return lx.typeFloat(text)
	}
	digits := text
	radix := 10
	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		radix = 16
		digits = text[2:]
	case strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B"):
		radix = 2
		digits = text[2:]
	case len(text) > 1 && text[0] == '0':
		radix = 8
		digits = text[1:]
	}
	unsigned := false
	nl := 0
	for len(digits) > 0 {
		switch digits[len(digits)-1] {
		case 'u', 'U':
			if unsigned {
				lx.err(ErrInvalidSuffix, "invalid integer suffix in %s", text)
			}
			unsigned = true
		case 'l', 'L':
			nl++
			if nl > 2 {
				lx.err(ErrInvalidSuffix, "invalid integer suffix in %s", text)
			}
		default:
			goto done
		}
		digits = digits[:len(digits)-1]
	}
done:
	if digits == "" {
		lx.err(ErrInvalidNumber, "invalid integer constant %s", text)
	}
	if unsigned {
		v, err := strconv.ParseUint(digits, radix, 64)
		if err != nil {
			lx.err(ErrInvalidNumber, "invalid integer constant %s", text)
		}
		t := lx.newTok(UINT_CONSTANT, text)
		t.UVal = v
		return t
	}
	v, err := strconv.ParseInt(digits, radix, 64)
	if err != nil {
		// Widen to unsigned before giving up.
		uv, uerr := strconv.ParseUint(digits, radix, 64)
		if uerr != nil {
			lx.err(ErrInvalidNumber, "invalid integer constant %s", text)
		}
		t := lx.newTok(UINT_CONSTANT, text)
		t.UVal = uv
		return t
	}
	t := lx.newTok(INT_CONSTANT, text)
	t.IVal = v
	return t
}

func (lx *Lexer) typeFloat(text string) *Token {
	digits := text
	for len(digits) > 0 {
		switch digits[len(digits)-1] {
		case 'f', 'F', 'l', 'L':
			digits = digits[:len(digits)-1]
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		lx.err(ErrInvalidNumber, "invalid floating point constant %s", text)
	}
	t := lx.newTok(FLOAT_CONSTANT, text)
	t.FVal = v
	return t
}

// readEscape decodes one backslash escape. The backslash itself has
// already been consumed.
func (lx *Lexer) readEscape() byte {
	c := lx.getc()
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '\\':
		return '\\'
	case '\'':
		return '\''
	case '"':
		return '"'
	case 'a':
		return 7
	case 'b':
		return 8
	case 'f':
		return 12
	case 'v':
		return 11
	case '?':
		return '?'
	case 'x':
		v := 0
		n := 0
		for n < 2 && isHexDigit(lx.peek()) {
			v = v*16 + hexVal(lx.getc())
			n++
		}
		if n == 0 {
			lx.err(ErrInvalidEscape, "\\x used with no following hex digits")
		}
		return byte(v)
	case '0', '1', '2', '3', '4', '5', '6', '7':
		v := int(c - '0')
		n := 1
		for n < 3 && lx.peek() >= '0' && lx.peek() <= '7' {
			v = v*8 + int(lx.getc()-'0')
			n++
		}
		return byte(v)
	default:
		lx.err(ErrInvalidEscape, "invalid escape '\\%c'", c)
	}
	panic("unreachable")
}

func (lx *Lexer) readString(wide bool) *Token {
	start := lx.off
	lx.getc() // opening quote
	var cooked strings.Builder
	for {
		if lx.eof() || lx.peek() == '\n' {
			lx.err(ErrUnterminatedString, "unterminated string literal")
		}
		c := lx.getc()
		if c == '"' {
			break
		}
		if c == '\\' {
			cooked.WriteByte(lx.readEscape())
			continue
		}
		cooked.WriteByte(c)
	}
	kind := TokenKind(STRING)
	raw := string(lx.src[start:lx.off])
	if wide {
		kind = WSTRING
		raw = "L" + raw
	}
	t := lx.newTok(kind, raw)
	t.SVal = cooked.String()
	return t
}

func (lx *Lexer) readChar(wide bool) *Token {
	start := lx.off
	lx.getc() // opening quote
	var v int64
	n := 0
	for {
		if lx.eof() || lx.peek() == '\n' {
			lx.err(ErrUnterminatedChar, "unterminated character literal")
		}
		c := lx.getc()
		if c == '\'' {
			break
		}
		if c == '\\' {
			c = lx.readEscape()
		}
		// Multi character constants fold the way gcc does.
		v = v<<8 | int64(c)
		n++
	}
	if n == 0 {
		lx.err(ErrUnterminatedChar, "empty character literal")
	}
	kind := TokenKind(CHAR_CONSTANT)
	raw := string(lx.src[start:lx.off])
	if wide {
		kind = WCHAR_CONSTANT
		raw = "L" + raw
	}
	t := lx.newTok(kind, raw)
	t.IVal = v
	return t
}

func (lx *Lexer) readPunctuator() *Token {
	c := lx.getc()
	switch c {
	case '#':
		if lx.peek() == '#' {
			lx.getc()
			return lx.newTok(HASHHASH, "##")
		}
		return lx.newTok(HASH, "#")
	case '?':
		return lx.newTok(QUESTION, "?")
	case ':':
		return lx.newTok(COLON, ":")
	case '(':
		return lx.newTok(LPAREN, "(")
	case ')':
		return lx.newTok(RPAREN, ")")
	case '{':
		return lx.newTok(LBRACE, "{")
	case '}':
		return lx.newTok(RBRACE, "}")
	case '[':
		return lx.newTok(LBRACK, "[")
	case ']':
		return lx.newTok(RBRACK, "]")
	case ',':
		return lx.newTok(COMMA, ",")
	case ';':
		return lx.newTok(SEMICOLON, ";")
	case '~':
		return lx.newTok(BNOT, "~")
	case '!':
		if lx.peek() == '=' {
			lx.getc()
			return lx.newTok(NEQ, "!=")
		}
		return lx.newTok(NOT, "!")
	case '.':
		if lx.peek() == '.' && lx.peek2() == '.' {
			lx.getc()
			lx.getc()
			return lx.newTok(ELLIPSIS, "...")
		}
		return lx.newTok(PERIOD, ".")
	case '+':
		switch lx.peek() {
		case '+':
			lx.getc()
			return lx.newTok(INC, "++")
		case '=':
			lx.getc()
			return lx.newTok(ADD_ASSIGN, "+=")
		}
		return lx.newTok(ADD, "+")
	case '-':
		switch lx.peek() {
		case '>':
			lx.getc()
			return lx.newTok(ARROW, "->")
		case '-':
			lx.getc()
			return lx.newTok(DEC, "--")
		case '=':
			lx.getc()
			return lx.newTok(SUB_ASSIGN, "-=")
		}
		return lx.newTok(SUB, "-")
	case '*':
		if lx.peek() == '=' {
			lx.getc()
			return lx.newTok(MUL_ASSIGN, "*=")
		}
		return lx.newTok(MUL, "*")
	case '/':
		if lx.peek() == '=' {
			lx.getc()
			return lx.newTok(QUO_ASSIGN, "/=")
		}
		return lx.newTok(QUO, "/")
	case '%':
		if lx.peek() == '=' {
			lx.getc()
			return lx.newTok(REM_ASSIGN, "%=")
		}
		return lx.newTok(REM, "%")
	case '^':
		if lx.peek() == '=' {
			lx.getc()
			return lx.newTok(XOR_ASSIGN, "^=")
		}
		return lx.newTok(XOR, "^")
	case '=':
		if lx.peek() == '=' {
			lx.getc()
			return lx.newTok(EQL, "==")
		}
		return lx.newTok(ASSIGN, "=")
	case '<':
		switch lx.peek() {
		case '<':
			lx.getc()
			if lx.peek() == '=' {
				lx.getc()
				return lx.newTok(SHL_ASSIGN, "<<=")
			}
			return lx.newTok(SHL, "<<")
		case '=':
			lx.getc()
			return lx.newTok(LEQ, "<=")
		}
		return lx.newTok(LSS, "<")
	case '>':
		switch lx.peek() {
		case '>':
			lx.getc()
			if lx.peek() == '=' {
				lx.getc()
				return lx.newTok(SHR_ASSIGN, ">>=")
			}
			return lx.newTok(SHR, ">>")
		case '=':
			lx.getc()
			return lx.newTok(GEQ, ">=")
		}
		return lx.newTok(GTR, ">")
	case '&':
		switch lx.peek() {
		case '&':
			lx.getc()
			return lx.newTok(LAND, "&&")
		case '=':
			lx.getc()
			return lx.newTok(AND_ASSIGN, "&=")
		}
		return lx.newTok(AND, "&")
	case '|':
		switch lx.peek() {
		case '|':
			lx.getc()
			return lx.newTok(LOR, "||")
		case '=':
			lx.getc()
			return lx.newTok(OR_ASSIGN, "|=")
		}
		return lx.newTok(OR, "|")
	default:
		lx.err(ErrInvalidChar, "invalid character code '%d'", c)
	}
	panic("unreachable")
}

func isValidIdentTail(b byte) bool {
	return isValidIdentStart(b) || isNumeric(b) || b == '$'
}

func isValidIdentStart(b byte) bool {
	return b == '_' || isAlpha(b)
}

func isAlpha(b byte) bool {
	if b >= 'a' && b <= 'z' {
		return true
	}
	if b >= 'A' && b <= 'Z' {
		return true
	}
	return false
}

func isNumeric(b byte) bool {
	if b >= '0' && b <= '9' {
		return true
	}
	return false
}

func isHexDigit(b byte) bool {
	return isNumeric(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	default:
		return int(b-'A') + 10
	}
}
