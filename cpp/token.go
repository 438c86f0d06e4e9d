package cpp

import (
	"fmt"
)

// The list of tokens.
const (

	// Single char tokens are themselves.
	ADD       = '+'
	SUB       = '-'
	MUL       = '*'
	QUO       = '/'
	REM       = '%'
	AND       = '&'
	OR        = '|'
	XOR       = '^'
	QUESTION  = '?'
	HASH      = '#'
	LSS       = '<'
	GTR       = '>'
	ASSIGN    = '='
	NOT       = '!'
	BNOT      = '~'
	LPAREN    = '('
	LBRACK    = '['
	LBRACE    = '{'
	COMMA     = ','
	PERIOD    = '.'
	RPAREN    = ')'
	RBRACK    = ']'
	RBRACE    = '}'
	SEMICOLON = ';'
	COLON     = ':'

	ERROR = 10000 + iota
	EOF
	// Preprocessing structure tokens. NEWLINE terminates a directive,
	// SPACE is only emitted while the lexer is in keep-space mode.
	NEWLINE
	SPACE
	HASHHASH // ##
	// Identifiers and basic type literals
	// (these tokens stand for classes of literals)
	IDENT          // main
	INT_CONSTANT   // 12345
	UINT_CONSTANT  // 12345u
	FLOAT_CONSTANT // 123.45
	CHAR_CONSTANT  // 'a'
	WCHAR_CONSTANT // L'a'
	STRING         // "abc"
	WSTRING        // L"abc"

	SHL        // <<
	SHR        // >>
	ADD_ASSIGN // +=
	SUB_ASSIGN // -=
	MUL_ASSIGN // *=
	QUO_ASSIGN // /=
	REM_ASSIGN // %=
	AND_ASSIGN // &=
	OR_ASSIGN  // |=
	XOR_ASSIGN // ^=
	SHL_ASSIGN // <<=
	SHR_ASSIGN // >>=
	LAND       // &&
	LOR        // ||
	ARROW      // ->
	INC        // ++
	DEC        // --
	EQL        // ==
	NEQ        // !=
	LEQ        // <=
	GEQ        // >=
	ELLIPSIS   // ...

	// Keywords
	AUTO
	REGISTER
	EXTERN
	STATIC
	SHORT
	BREAK
	CASE
	DO
	CONST
	CONTINUE
	DEFAULT
	ELSE
	FOR
	WHILE
	GOTO
	IF
	RETURN
	STRUCT
	UNION
	ENUM
	VOLATILE
	RESTRICT
	INLINE
	SWITCH
	TYPEDEF
	SIZEOF
	VOID
	CHAR
	INT
	FLOAT
	DOUBLE
	SIGNED
	UNSIGNED
	LONG
	BOOL
	// GNU extensions.
	ATTRIBUTE // __attribute__
	ASM       // __asm__
	TYPEOF    // typeof / __typeof__
	EXTENSION // __extension__
)

var tokenKindToStr = [...]string{
	HASH:           "#",
	HASHHASH:       "##",
	ERROR:          "error",
	EOF:            "EOF",
	NEWLINE:        "newline",
	SPACE:          "space",
	CHAR_CONSTANT:  "charconst",
	WCHAR_CONSTANT: "wcharconst",
	INT_CONSTANT:   "intconst",
	UINT_CONSTANT:  "uintconst",
	FLOAT_CONSTANT: "floatconst",
	IDENT:          "ident",
	STRING:         "string",
	WSTRING:        "wstring",
	VOID:           "void",
	INT:            "int",
	LONG:           "long",
	SIGNED:         "signed",
	UNSIGNED:       "unsigned",
	FLOAT:          "float",
	DOUBLE:         "double",
	CHAR:           "char",
	BOOL:           "_Bool",
	SHORT:          "short",
	ADD:            "'+'",
	SUB:            "'-'",
	MUL:            "'*'",
	QUO:            "'/'",
	REM:            "'%'",
	AND:            "'&'",
	OR:             "'|'",
	XOR:            "'^'",
	SHL:            "'<<'",
	SHR:            "'>>'",
	ADD_ASSIGN:     "'+='",
	SUB_ASSIGN:     "'-='",
	MUL_ASSIGN:     "'*='",
	QUO_ASSIGN:     "'/='",
	REM_ASSIGN:     "'%='",
	AND_ASSIGN:     "'&='",
	OR_ASSIGN:      "'|='",
	XOR_ASSIGN:     "'^='",
	SHL_ASSIGN:     "'<<='",
	SHR_ASSIGN:     "'>>='",
	LAND:           "'&&'",
	LOR:            "'||'",
	ARROW:          "'->'",
	INC:            "'++'",
	DEC:            "'--'",
	EQL:            "'=='",
	LSS:            "'<'",
	GTR:            "'>'",
	ASSIGN:         "'='",
	NOT:            "'!'",
	BNOT:           "'~'",
	NEQ:            "'!='",
	LEQ:            "'<='",
	GEQ:            "'>='",
	ELLIPSIS:       "'...'",
	LPAREN:         "'('",
	LBRACK:         "'['",
	LBRACE:         "'{'",
	COMMA:          "','",
	PERIOD:         "'.'",
	RPAREN:         "')'",
	RBRACK:         "']'",
	RBRACE:         "'}'",
	SEMICOLON:      "';'",
	COLON:          "':'",
	QUESTION:       "'?'",
	SIZEOF:         "sizeof",
	TYPEDEF:        "typedef",
	AUTO:           "auto",
	BREAK:          "break",
	CASE:           "case",
	CONST:          "const",
	CONTINUE:       "continue",
	DEFAULT:        "default",
	ELSE:           "else",
	FOR:            "for",
	DO:             "do",
	WHILE:          "while",
	GOTO:           "goto",
	IF:             "if",
	RETURN:         "return",
	STRUCT:         "struct",
	UNION:          "union",
	ENUM:           "enum",
	SWITCH:         "switch",
	STATIC:         "static",
	EXTERN:         "extern",
	REGISTER:       "register",
	VOLATILE:       "volatile",
	RESTRICT:       "restrict",
	INLINE:         "inline",
	ATTRIBUTE:      "__attribute__",
	ASM:            "__asm__",
	TYPEOF:         "typeof",
	EXTENSION:      "__extension__",
}

var keywordLUT = map[string]TokenKind{
	"for":           FOR,
	"while":         WHILE,
	"do":            DO,
	"if":            IF,
	"else":          ELSE,
	"goto":          GOTO,
	"break":         BREAK,
	"continue":      CONTINUE,
	"case":          CASE,
	"default":       DEFAULT,
	"switch":        SWITCH,
	"struct":        STRUCT,
	"union":         UNION,
	"enum":          ENUM,
	"signed":        SIGNED,
	"__signed__":    SIGNED,
	"unsigned":      UNSIGNED,
	"typedef":       TYPEDEF,
	"return":        RETURN,
	"void":          VOID,
	"char":          CHAR,
	"int":           INT,
	"short":         SHORT,
	"long":          LONG,
	"float":         FLOAT,
	"double":        DOUBLE,
	"_Bool":         BOOL,
	"sizeof":        SIZEOF,
	"auto":          AUTO,
	"static":        STATIC,
	"extern":        EXTERN,
	"register":      REGISTER,
	"const":         CONST,
	"__const":       CONST,
	"__const__":     CONST,
	"volatile":      VOLATILE,
	"__volatile__":  VOLATILE,
	"restrict":      RESTRICT,
	"__restrict":    RESTRICT,
	"__restrict__":  RESTRICT,
	"inline":        INLINE,
	"__inline":      INLINE,
	"__inline__":    INLINE,
	"typeof":        TYPEOF,
	"__typeof__":    TYPEOF,
	"__typeof":      TYPEOF,
	"__attribute__": ATTRIBUTE,
	"__attribute":   ATTRIBUTE,
	"__asm__":       ASM,
	"__asm":         ASM,
	"asm":           ASM,
	"__extension__": EXTENSION,
}

type TokenKind uint32

func (tk TokenKind) String() string {
	if uint32(tk) >= uint32(len(tokenKindToStr)) {
		return "Unknown"
	}
	ret := tokenKindToStr[tk]
	if ret == "" {
		return "Unknown"
	}
	return ret
}

// FileID identifies a registered source path. Ids are only meaningful
// together with the FileRegistry that produced them.
type FileID int32

// FilePos is a purely positional source location. Line and Col are 1 based.
type FilePos struct {
	File FileID
	Line int
	Col  int
}

func (pos FilePos) String() string {
	return fmt.Sprintf("file%d:%d:%d", pos.File, pos.Line, pos.Col)
}

// StringWithFiles resolves the FileID for user facing messages.
func (pos FilePos) StringWithFiles(files *FileRegistry) string {
	return fmt.Sprintf("%s:%d:%d", files.Path(pos.File), pos.Line, pos.Col)
}

// Comment is a line or block comment that preceded a token.
type Comment struct {
	Text  string // comment text without the // or /* */ markers
	Block bool
	Pos   FilePos
}

// Token represents a grouping of characters
// that provide semantic meaning in a C program.
type Token struct {
	Kind TokenKind
	// Val is the textual form of the token as it appeared in the source
	// (string and char literals keep their quotes and escapes).
	Val string
	// Id is the interned name, valid for IDENT and keyword tokens.
	Id InternedStr
	// Decoded literal values.
	IVal int64   // INT_CONSTANT, CHAR_CONSTANT, WCHAR_CONSTANT
	UVal uint64  // UINT_CONSTANT
	FVal float64 // FLOAT_CONSTANT
	SVal string  // STRING, WSTRING with escapes processed and quotes dropped
	Pos  FilePos
	// BOL is set on the first token of a line; the preprocessor uses it
	// to recognize directives.
	BOL bool
	// LeadingComments are the comments scanned since the previous token.
	LeadingComments []Comment
	// NoExpand marks an identifier that was declined for macro expansion
	// because its own expansion was in progress.
	NoExpand bool
}

func (t *Token) copy() *Token {
	ret := *t
	return &ret
}

func (t Token) String() string {
	return fmt.Sprintf("%s at %s", t.Val, t.Pos)
}
