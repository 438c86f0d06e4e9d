package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkoba/cfront/cpp"
)

func parseSrc(t *testing.T, src string) *TranslationUnit {
	t.Helper()
	pp := cpp.New(nil)
	pp.PushSource("test.c", []byte(src))
	tu, err := Parse(pp)
	require.NoError(t, err)
	return tu
}

func parseSrcErr(t *testing.T, src string) error {
	t.Helper()
	pp := cpp.New(nil)
	pp.PushSource("test.c", []byte(src))
	_, err := Parse(pp)
	require.Error(t, err)
	return err
}

// Accepted programs, parsed for success only.
var acceptCases = []string{
	"int x;",
	"int x, y, z;",
	"unsigned long long int x;",
	"static const char *p = 0;",
	"int a[10];",
	"int a[];",
	"int *a[3];",
	"int (*fp)(int, char *);",
	"int (*fp)(void);",
	"void f(int a, float b, ...);",
	"void f();",
	"int main(void) { return 0; }",
	"int main(void) { int x = 1; x += 2; return x; }",
	"struct point { int x; int y; };",
	"struct point { int x, y; } origin;",
	"struct { int anon; } s;",
	"union u { int i; float f; };",
	"struct flags { unsigned a : 1; unsigned b : 2; unsigned : 5; };",
	"enum color { RED, GREEN = 3, BLUE, };",
	"enum color c;",
	"typedef struct point Point;",
	"typedef int (*handler)(void *);",
	"int arr[2][3];",
	"void g(int n, int a[static 4], int b[const], int c[*]);",
	"int x = sizeof(int);",
	"int y = sizeof y;",
	"int z = sizeof(struct point *);",
	"void h(void) { for (int i = 0; i < 10; i++) ; }",
	"void h(void) { while (1) break; do continue; while (0); }",
	"void h(void) { switch (1) { case 1: break; default: break; } }",
	"void h(void) { goto out; out: ; }",
	"void h(void) { if (1) ; else ; }",
	"int a = {0};",
	"int b[3] = {1, 2, 3,};",
	"struct point pt = {.x = 1, .y = 2};",
	"int m[4] = {[0] = 1, [2] = 3};",
	"const volatile int cv;",
	"int *const *restrict q;",
	"__extension__ typedef unsigned long size_t_;",
	"int aligned_var __attribute__((aligned(16)));",
	"struct __attribute__((packed)) tight { char c; int i; };",
	"void f(void) __asm__(\"f_impl\");",
	"char *s = \"a\" \"b\";",
	"void h(void) { int x = ({ int t = 1; t + 1; }); }",
	"float f1 = 1.5e3;",
	"int t1 = 1 ? 2 : 3;",
	"int t2 = 1 ?: 3;",
	"typeof(1 + 1) ti;",
	"void h(int n) { int vla[n]; }",
}

func TestParseAccepts(t *testing.T) {
	for _, src := range acceptCases {
		pp := cpp.New(nil)
		pp.PushSource("test.c", []byte(src))
		_, err := Parse(pp)
		assert.NoError(t, err, src)
	}
}

var rejectCases = []string{
	";;; garbage @",
	"int",
	"int x",
	"int x = ;",
	"struct;",
	"int f(void) { return }",
	"int f(void) { if }",
	"enum { , };",
	"int a[;",
	"static extern int both;",
}

func TestParseRejects(t *testing.T) {
	for _, src := range rejectCases {
		pp := cpp.New(nil)
		pp.PushSource("test.c", []byte(src))
		_, err := Parse(pp)
		assert.Error(t, err, src)
	}
}

func TestFunctionDefinitionClassification(t *testing.T) {
	tu := parseSrc(t, "int main(void) { return 0; }")
	require.Len(t, tu.Decls, 1)
	fd, ok := tu.Decls[0].(*FuncDef)
	require.True(t, ok)
	assert.Equal(t, "main", fd.Decl.Name)
	require.Len(t, fd.Body.Stmts, 1)
	ret, ok := fd.Body.Stmts[0].(*Return)
	require.True(t, ok)
	c, ok := ret.Expr.(*Constant)
	require.True(t, ok)
	assert.Equal(t, int64(0), c.Val)
}

func TestFunctionDeclarationIsNotDefinition(t *testing.T) {
	tu := parseSrc(t, "int main(void);")
	require.Len(t, tu.Decls, 1)
	_, ok := tu.Decls[0].(*Declaration)
	assert.True(t, ok)
}

func TestTypedefRegistersName(t *testing.T) {
	tu := parseSrc(t, "typedef int INT; INT x;")
	require.Len(t, tu.Decls, 2)

	first := tu.Decls[0].(*Declaration)
	assert.Equal(t, SC_TYPEDEF, first.Specs.SClass)
	assert.Equal(t, "INT", first.Declarators[0].Decl.Name)

	second := tu.Decls[1].(*Declaration)
	tn, ok := second.Specs.Type.(*TypedefName)
	require.True(t, ok)
	assert.Equal(t, "INT", tn.Name)
	assert.Equal(t, "x", second.Declarators[0].Decl.Name)
}

func TestCastVersusParenthesizedExpression(t *testing.T) {
	// (INT)x is a cast when INT is a typedef name.
	tu := parseSrc(t, "typedef int INT; int a = (INT)0;")
	decl := tu.Decls[1].(*Declaration)
	cast, ok := decl.Declarators[0].Init.(*Cast)
	require.True(t, ok)
	tn, ok := cast.Type.Specs.Type.(*TypedefName)
	require.True(t, ok)
	assert.Equal(t, "INT", tn.Name)

	// (y)->f is a member access through a parenthesized expression.
	tu = parseSrc(t, "void g(void) { int z = (y)->f; }")
	fd := tu.Decls[0].(*FuncDef)
	inner := fd.Body.Stmts[0].(*Declaration)
	sel, ok := inner.Declarators[0].Init.(*Selector)
	require.True(t, ok)
	assert.Equal(t, cpp.TokenKind(cpp.ARROW), sel.Op)
	assert.Equal(t, "f", sel.Sel)
	id, ok := sel.Operand.(*Ident)
	require.True(t, ok)
	assert.Equal(t, "y", id.Name)
}

func TestDeclaratorDerivations(t *testing.T) {
	tu := parseSrc(t, "int *a[3];")
	decl := tu.Decls[0].(*Declaration)
	d := decl.Declarators[0].Decl
	assert.Equal(t, "a", d.Name)
	require.Len(t, d.Derivs, 2)
	arr, ok := d.Derivs[0].(*ArrayDeriv)
	require.True(t, ok)
	sz, err := Fold(arr.Size)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sz)
	_, ok = d.Derivs[1].(*PtrDeriv)
	assert.True(t, ok)

	tu = parseSrc(t, "int (*fp)(int, char *);")
	decl = tu.Decls[0].(*Declaration)
	d = decl.Declarators[0].Decl
	assert.Equal(t, "fp", d.Name)
	require.Len(t, d.Derivs, 2)
	_, ok = d.Derivs[0].(*PtrDeriv)
	assert.True(t, ok)
	f, ok := d.Derivs[1].(*FuncDeriv)
	require.True(t, ok)
	require.Len(t, f.Params, 2)
	assert.False(t, f.Variadic)
}

func TestVariadicFunctionDeclarator(t *testing.T) {
	tu := parseSrc(t, "void f(int a, ...);")
	decl := tu.Decls[0].(*Declaration)
	f := decl.Declarators[0].Decl.Derivs[0].(*FuncDeriv)
	assert.True(t, f.Variadic)
	require.Len(t, f.Params, 1)
}

func TestEnumValuesFold(t *testing.T) {
	tu := parseSrc(t, "enum color { RED, GREEN = 3, BLUE = 1 << 4 };")
	decl := tu.Decls[0].(*Declaration)
	es := decl.Specs.Type.(*EnumSpec)
	require.Len(t, es.Members, 3)
	assert.Nil(t, es.Members[0].Val)
	v, err := Fold(es.Members[1].Val)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
	v, err = Fold(es.Members[2].Val)
	require.NoError(t, err)
	assert.Equal(t, int64(16), v)
}

func TestBitfieldWidthsFold(t *testing.T) {
	tu := parseSrc(t, "struct flags { unsigned a : 1, b : 2 + 1; };")
	decl := tu.Decls[0].(*Declaration)
	ss := decl.Specs.Type.(*StructSpec)
	require.Len(t, ss.Members, 2)
	w, err := Fold(ss.Members[1].Bitfield)
	require.NoError(t, err)
	assert.Equal(t, int64(3), w)
}

func TestStringLiteralConcatenation(t *testing.T) {
	tu := parseSrc(t, `char *s = "a" "b";`)
	decl := tu.Decls[0].(*Declaration)
	s, ok := decl.Declarators[0].Init.(*StrLit)
	require.True(t, ok)
	assert.Equal(t, "ab", s.Val)
}

func TestParseEachStreams(t *testing.T) {
	pp := cpp.New(nil)
	pp.PushSource("test.c", []byte("int a; int b; int c;"))
	var names []string
	err := ParseEach(pp, func(n Node) bool {
		names = append(names, DeclName(n))
		return len(names) < 2
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestParseThroughPreprocessor(t *testing.T) {
	src := "#define TYPE int\n#define NAME(x) x##_v\nTYPE NAME(foo);\n"
	pp := cpp.New(nil)
	pp.PushSource("test.c", []byte(src))
	tu, err := Parse(pp)
	require.NoError(t, err)
	require.Len(t, tu.Decls, 1)
	assert.Equal(t, "foo_v", DeclName(tu.Decls[0]))
}

func TestTokenSliceSource(t *testing.T) {
	in := cpp.NewStringInterner()
	files := cpp.NewFileRegistry()
	lx := cpp.NewLexer([]byte("int x = 1 + 2;"), files.Intern("frag.c"), in)
	var toks []*cpp.Token
	for {
		tok, err := lx.Next()
		require.NoError(t, err)
		if tok.Kind == cpp.EOF {
			break
		}
		if tok.Kind == cpp.NEWLINE {
			continue
		}
		toks = append(toks, tok)
	}
	tu, err := Parse(NewTokenSlice(toks, in, files))
	require.NoError(t, err)
	require.Len(t, tu.Decls, 1)
	decl := tu.Decls[0].(*Declaration)
	v, ferr := Fold(decl.Declarators[0].Init)
	require.NoError(t, ferr)
	assert.Equal(t, int64(3), v)
}

func TestStopOnFirstError(t *testing.T) {
	err := parseSrcErr(t, "int f(void) { return 1 }")
	loc, ok := err.(cpp.ErrorLoc)
	require.True(t, ok)
	code, ok := cpp.Code(loc)
	require.True(t, ok)
	assert.Equal(t, cpp.ErrUnexpectedToken, code)
}

func TestUnexpectedEOF(t *testing.T) {
	err := parseSrcErr(t, "int f(void) {")
	code, ok := cpp.Code(err)
	require.True(t, ok)
	assert.Equal(t, cpp.ErrUnexpectedEOF, code)
}
