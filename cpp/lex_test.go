package cpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []*Token {
	t.Helper()
	files := NewFileRegistry()
	lx := NewLexer([]byte(src), files.Intern("test.c"), NewStringInterner())
	var toks []*Token
	for {
		tok, err := lx.Next()
		require.NoError(t, err)
		if tok.Kind == EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestIntLiteralRadixes(t *testing.T) {
	cases := []struct {
		src  string
		kind TokenKind
		ival int64
		uval uint64
	}{
		{"0", INT_CONSTANT, 0, 0},
		{"42", INT_CONSTANT, 42, 0},
		{"0x1F", INT_CONSTANT, 31, 0},
		{"0X1f", INT_CONSTANT, 31, 0},
		{"0b101", INT_CONSTANT, 5, 0},
		{"0777", INT_CONSTANT, 511, 0},
		{"123u", UINT_CONSTANT, 0, 123},
		{"123U", UINT_CONSTANT, 0, 123},
		{"123ul", UINT_CONSTANT, 0, 123},
		{"123ull", UINT_CONSTANT, 0, 123},
		{"123l", INT_CONSTANT, 123, 0},
		{"123ll", INT_CONSTANT, 123, 0},
		{"0xffffffffffffffff", UINT_CONSTANT, 0, 0xffffffffffffffff},
		{"18446744073709551615", UINT_CONSTANT, 0, 18446744073709551615},
	}
	for _, tc := range cases {
		toks := lexAll(t, tc.src)
		require.Len(t, toks, 1, tc.src)
		assert.Equal(t, tc.kind, toks[0].Kind, tc.src)
		if tc.kind == INT_CONSTANT {
			assert.Equal(t, tc.ival, toks[0].IVal, tc.src)
		} else {
			assert.Equal(t, tc.uval, toks[0].UVal, tc.src)
		}
	}
}

func TestFloatLiterals(t *testing.T) {
	cases := []struct {
		src string
		val float64
	}{
		{"123.45", 123.45},
		{"1.", 1.0},
		{".5", 0.5},
		{"1e3", 1000.0},
		{"1.5e-2", 0.015},
	}
	for _, tc := range cases {
		toks := lexAll(t, tc.src)
		require.Len(t, toks, 1, tc.src)
		assert.Equal(t, TokenKind(FLOAT_CONSTANT), toks[0].Kind, tc.src)
		assert.Equal(t, tc.val, toks[0].FVal, tc.src)
	}
}

func TestBadIntSuffix(t *testing.T) {
	files := NewFileRegistry()
	lx := NewLexer([]byte("123uu"), files.Intern("test.c"), NewStringInterner())
	_, err := lx.Next()
	require.Error(t, err)
	code, ok := Code(err)
	require.True(t, ok)
	assert.Equal(t, ErrInvalidSuffix, code)
}

func TestCommentsRideOnNextToken(t *testing.T) {
	toks := lexAll(t, "// line\n42 /* block */ 100")
	require.Len(t, toks, 3)

	require.Equal(t, TokenKind(NEWLINE), toks[0].Kind)
	require.Len(t, toks[0].LeadingComments, 1)
	assert.Equal(t, " line", toks[0].LeadingComments[0].Text)
	assert.False(t, toks[0].LeadingComments[0].Block)

	assert.Equal(t, TokenKind(INT_CONSTANT), toks[1].Kind)
	assert.Equal(t, int64(42), toks[1].IVal)
	assert.Empty(t, toks[1].LeadingComments)

	assert.Equal(t, TokenKind(INT_CONSTANT), toks[2].Kind)
	assert.Equal(t, int64(100), toks[2].IVal)
	require.Len(t, toks[2].LeadingComments, 1)
	assert.Equal(t, " block ", toks[2].LeadingComments[0].Text)
	assert.True(t, toks[2].LeadingComments[0].Block)
}

func TestUnterminatedBlockComment(t *testing.T) {
	files := NewFileRegistry()
	lx := NewLexer([]byte("/* never closed"), files.Intern("test.c"), NewStringInterner())
	_, err := lx.Next()
	require.Error(t, err)
	code, ok := Code(err)
	require.True(t, ok)
	assert.Equal(t, ErrUnterminatedComment, code)
}

func TestStringAndCharLiterals(t *testing.T) {
	toks := lexAll(t, `"abc" "a\n\t" "\x41" "\101" L"wide" 'a' '\n' L'w' 'ab'`)
	require.Len(t, toks, 9)
	assert.Equal(t, TokenKind(STRING), toks[0].Kind)
	assert.Equal(t, "abc", toks[0].SVal)
	assert.Equal(t, `"abc"`, toks[0].Val)
	assert.Equal(t, "a\n\t", toks[1].SVal)
	assert.Equal(t, "A", toks[2].SVal)
	assert.Equal(t, "A", toks[3].SVal)
	assert.Equal(t, TokenKind(WSTRING), toks[4].Kind)
	assert.Equal(t, "wide", toks[4].SVal)
	assert.Equal(t, TokenKind(CHAR_CONSTANT), toks[5].Kind)
	assert.Equal(t, int64('a'), toks[5].IVal)
	assert.Equal(t, int64('\n'), toks[6].IVal)
	assert.Equal(t, TokenKind(WCHAR_CONSTANT), toks[7].Kind)
	assert.Equal(t, int64('w'), toks[7].IVal)
	// gcc folds multi char constants by shifting.
	assert.Equal(t, int64('a')<<8|int64('b'), toks[8].IVal)
}

func TestUnterminatedString(t *testing.T) {
	files := NewFileRegistry()
	lx := NewLexer([]byte("\"abc\n"), files.Intern("test.c"), NewStringInterner())
	_, err := lx.Next()
	require.Error(t, err)
	code, ok := Code(err)
	require.True(t, ok)
	assert.Equal(t, ErrUnterminatedString, code)
}

func TestLineContinuation(t *testing.T) {
	toks := lexAll(t, "ab\\\ncd")
	require.Len(t, toks, 1)
	assert.Equal(t, TokenKind(IDENT), toks[0].Kind)
	assert.Equal(t, "abcd", toks[0].Val)
}

func TestKeywordClassification(t *testing.T) {
	cases := map[string]TokenKind{
		"int":           INT,
		"typedef":       TYPEDEF,
		"__attribute__": ATTRIBUTE,
		"__inline__":    INLINE,
		"__typeof__":    TYPEOF,
		"_Bool":         BOOL,
		"asm":           ASM,
		"restrict":      RESTRICT,
		"xyzzy":         IDENT,
	}
	for src, kind := range cases {
		toks := lexAll(t, src)
		require.Len(t, toks, 1, src)
		assert.Equal(t, kind, toks[0].Kind, src)
		// Keywords keep their interned Id so macro matching can see them.
		assert.Equal(t, src, toks[0].Val, src)
	}
}

func TestPunctuators(t *testing.T) {
	toks := lexAll(t, "<<= >>= ... ## -> ++ -- << >> <= >= == != && ||")
	kinds := []TokenKind{SHL_ASSIGN, SHR_ASSIGN, ELLIPSIS, HASHHASH, ARROW,
		INC, DEC, SHL, SHR, LEQ, GEQ, EQL, NEQ, LAND, LOR}
	require.Len(t, toks, len(kinds))
	for i, k := range kinds {
		assert.Equal(t, k, toks[i].Kind)
	}
}

func TestPositionsAndBOL(t *testing.T) {
	toks := lexAll(t, "a b\n  c")
	require.Len(t, toks, 4) // a b NEWLINE c
	assert.Equal(t, 1, toks[0].Pos.Line)
	assert.Equal(t, 1, toks[0].Pos.Col)
	assert.True(t, toks[0].BOL)
	assert.Equal(t, 3, toks[1].Pos.Col)
	assert.False(t, toks[1].BOL)
	assert.Equal(t, TokenKind(NEWLINE), toks[2].Kind)
	assert.Equal(t, 2, toks[3].Pos.Line)
	assert.Equal(t, 3, toks[3].Pos.Col)
	assert.True(t, toks[3].BOL)
}

func TestIdentInterning(t *testing.T) {
	toks := lexAll(t, "dup int dup")
	require.Len(t, toks, 3)
	assert.Equal(t, TokenKind(IDENT), toks[0].Kind)
	assert.Equal(t, TokenKind(INT), toks[1].Kind)
	assert.Equal(t, "dup", toks[0].Val)
	assert.Equal(t, toks[0].Id, toks[2].Id)
	assert.NotEqual(t, toks[0].Id, toks[1].Id)
}

func TestKeepSpaceMode(t *testing.T) {
	files := NewFileRegistry()
	lx := NewLexer([]byte("a (b)"), files.Intern("test.c"), NewStringInterner())
	lx.SetKeepSpace(true)
	var kinds []TokenKind
	for {
		tok, err := lx.Next()
		require.NoError(t, err)
		if tok.Kind == EOF {
			break
		}
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []TokenKind{IDENT, SPACE, LPAREN, IDENT, RPAREN}, kinds)
}
