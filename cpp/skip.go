package cpp

// Character level skipping of inactive conditional branches. The
// preprocessor uses this instead of pulling tokens: a skipped branch
// only needs its #if/#else/#elif/#endif structure, so scanning raw
// bytes is both faster and immune to malformed tokens inside the dead
// branch. String and char literals and comments are still tracked so
// directive-looking text inside them is not misdetected.

// skipCondBranch advances the cursor to the next #else, #elif or
// #endif at the current nesting depth and returns the directive name
// and its position. The cursor is left just after the directive name,
// so the caller can keep tokenizing its condition or trailing newline.
// Hitting end of input raises MissingEndif.
func (lx *Lexer) skipCondBranch() (string, FilePos) {
	depth := 0
	for {
		if lx.eof() {
			lx.err(ErrMissingEndif, "unterminated conditional directive")
		}
		word, pos, ok := lx.scanDirectiveName()
		if !ok {
			lx.skipLineText()
			continue
		}
		switch word {
		case "if", "ifdef", "ifndef":
			depth++
			lx.skipLineText()
		case "endif":
			if depth == 0 {
				return word, pos
			}
			depth--
			lx.skipLineText()
		case "else", "elif":
			if depth == 0 {
				return word, pos
			}
			lx.skipLineText()
		default:
			lx.skipLineText()
		}
	}
}

// scanDirectiveName assumes the cursor is at the beginning of a line;
// it consumes leading whitespace and, when the line is a directive,
// the '#' and the directive word.
func (lx *Lexer) scanDirectiveName() (string, FilePos, bool) {
	for {
		c := lx.peek()
		if c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v' {
			lx.getc()
			continue
		}
		break
	}
	if lx.eof() || lx.peek() != '#' {
		return "", FilePos{}, false
	}
	lx.getc()
	for lx.peek() == ' ' || lx.peek() == '\t' {
		lx.getc()
	}
	pos := lx.Pos()
	start := lx.off
	for isAlpha(lx.peek()) {
		lx.getc()
	}
	return string(lx.src[start:lx.off]), pos, true
}

// skipLineText consumes the rest of the current line, honoring string
// and char literals and comments. A block comment opened on this line
// is consumed to its close even when that crosses lines, which leaves
// the cursor mid-line; the trailing remainder is consumed too.
func (lx *Lexer) skipLineText() {
	for {
		if lx.eof() {
			return
		}
		c := lx.getc()
		switch c {
		case '\n':
			return
		case '"', '\'':
			lx.skipLiteral(c)
		case '/':
			if lx.peek() == '/' {
				for !lx.eof() && lx.peek() != '\n' {
					lx.getc()
				}
			} else if lx.peek() == '*' {
				lx.getc()
				lx.skipBlockCommentText()
			}
		}
	}
}

// skipLiteral consumes a quoted literal body without decoding escapes.
// An unterminated literal in a skipped branch is tolerated; the line
// end stops it.
func (lx *Lexer) skipLiteral(quote byte) {
	for !lx.eof() && lx.peek() != '\n' {
		c := lx.getc()
		if c == '\\' && !lx.eof() {
			lx.getc()
			continue
		}
		if c == quote {
			return
		}
	}
}

func (lx *Lexer) skipBlockCommentText() {
	for {
		if lx.eof() {
			lx.err(ErrUnterminatedComment, "unclosed comment")
		}
		c := lx.getc()
		if c == '*' && lx.peek() == '/' {
			lx.getc()
			return
		}
	}
}
