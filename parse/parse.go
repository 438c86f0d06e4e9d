package parse

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/hkoba/cfront/cpp"
)

type parser struct {
	src         TokenSource
	typedefs    *typedefSet
	curt, nextt *cpp.Token
}

type parseErrorBreakOut struct {
	err error
}

// Parse consumes src until EOF and returns the translation unit. The
// first error aborts; there is no resynchronization.
func Parse(src TokenSource) (tu *TranslationUnit, errRet error) {
	p := newParser(src)
	defer func() {
		if e := recover(); e != nil {
			peb := e.(parseErrorBreakOut) // Will re-panic if not a breakout.
			errRet = peb.err
		}
	}()
	tu = &TranslationUnit{Pos: p.curt.Pos}
	for p.curt.Kind != cpp.EOF {
		tu.Decls = append(tu.Decls, p.parseExternalDecl())
	}
	return tu, nil
}

// ParseEach streams external declarations to fn as they are parsed.
// Returning false from fn stops parsing early with no error.
func ParseEach(src TokenSource, fn func(Node) bool) (errRet error) {
	p := newParser(src)
	defer func() {
		if e := recover(); e != nil {
			peb := e.(parseErrorBreakOut)
			errRet = peb.err
		}
	}()
	for p.curt.Kind != cpp.EOF {
		if !fn(p.parseExternalDecl()) {
			return nil
		}
	}
	return nil
}

func newParser(src TokenSource) *parser {
	p := &parser{
		src:      src,
		typedefs: newTypedefSet(),
	}
	p.next()
	p.next()
	return p
}

func (p *parser) errorPos(pos cpp.FilePos, code cpp.ErrCode, m string, vals ...interface{}) {
	var err error = &cpp.ParseError{Code: code, Msg: fmt.Sprintf(m, vals...)}
	if os.Getenv("CFRONTDEBUG") == "true" {
		err = fmt.Errorf("%s\n%s", err, debug.Stack())
	}
	err = cpp.ErrWithLoc(err, pos)
	panic(parseErrorBreakOut{err})
}

func (p *parser) unexpected(what string) {
	if p.curt.Kind == cpp.EOF {
		p.errorPos(p.curt.Pos, cpp.ErrUnexpectedEOF, "unexpected end of input, expected %s", what)
	}
	p.errorPos(p.curt.Pos, cpp.ErrUnexpectedToken, "expected %s got %s", what, p.curt.Kind)
}

func (p *parser) expect(k cpp.TokenKind) {
	if p.curt.Kind != k {
		p.unexpected(k.String())
	}
	p.next()
}

func (p *parser) next() {
	p.curt = p.nextt
	t, err := p.src.Next()
	if err != nil {
		panic(parseErrorBreakOut{err})
	}
	p.nextt = t
}

// isTypeStart reports whether t can begin a type name: a type or
// qualifier keyword, struct/union/enum, typeof, or a registered
// typedef name.
func (p *parser) isTypeStart(t *cpp.Token) bool {
	switch t.Kind {
	case cpp.VOID, cpp.CHAR, cpp.SHORT, cpp.INT, cpp.LONG, cpp.FLOAT,
		cpp.DOUBLE, cpp.SIGNED, cpp.UNSIGNED, cpp.BOOL,
		cpp.STRUCT, cpp.UNION, cpp.ENUM, cpp.TYPEOF,
		cpp.CONST, cpp.VOLATILE, cpp.RESTRICT:
		return true
	case cpp.IDENT:
		return p.typedefs.contains(t.Id)
	}
	return false
}

// isDeclStart additionally admits storage classes and function
// specifiers, for statement-vs-declaration classification in blocks.
func (p *parser) isDeclStart(t *cpp.Token) bool {
	switch t.Kind {
	case cpp.AUTO, cpp.REGISTER, cpp.STATIC, cpp.EXTERN, cpp.TYPEDEF,
		cpp.INLINE, cpp.EXTENSION, cpp.ATTRIBUTE:
		return true
	}
	return p.isTypeStart(t)
}

// GNU annotation skipping
// -----------------------

// skipBalancedParens is entered on '(' and consumes through the
// matching ')'.
func (p *parser) skipBalancedParens() {
	depth := 0
	for {
		switch p.curt.Kind {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				p.next()
				return
			}
		case cpp.EOF:
			p.unexpected("')'")
		}
		p.next()
	}
}

// skipGNUAttributes discards any run of __attribute__((...)) and
// __asm__("...") annotations.
func (p *parser) skipGNUAttributes() {
	for {
		switch p.curt.Kind {
		case cpp.ATTRIBUTE:
			p.next()
			if p.curt.Kind != '(' {
				p.unexpected("'('")
			}
			p.skipBalancedParens()
		case cpp.ASM:
			p.next()
			if p.curt.Kind == cpp.VOLATILE {
				p.next()
			}
			if p.curt.Kind != '(' {
				p.unexpected("'('")
			}
			p.skipBalancedParens()
		default:
			return
		}
	}
}

// External declarations
// ---------------------

func (p *parser) parseExternalDecl() Node {
	return p.parseDeclaration(true)
}

// parseDeclaration handles both declarations and, when isGlobal,
// function definitions. A declarator immediately followed by '{' is a
// function definition.
func (p *parser) parseDeclaration(isGlobal bool) Node {
	pos := p.curt.Pos
	specs := p.parseDeclarationSpecifiers()

	// A bare "struct foo { ... };" declares only the tag.
	if p.curt.Kind == ';' {
		p.next()
		return &Declaration{Pos: pos, Specs: specs}
	}

	decl := &Declaration{Pos: pos, Specs: specs}
	firstDecl := true
	for {
		d := p.parseDeclarator(false)
		p.skipGNUAttributes()

		if firstDecl && isGlobal && p.curt.Kind == '{' {
			body := p.parseBlock()
			return &FuncDef{Pos: pos, Specs: specs, Decl: d, Body: body}
		}

		id := &InitDeclarator{Decl: d}
		if p.curt.Kind == '=' {
			p.next()
			id.Init = p.parseInitializer()
		}
		decl.Declarators = append(decl.Declarators, id)

		// Disambiguation is online: the name is a type name for the
		// rest of this very declaration's siblings onward.
		if specs.SClass == SC_TYPEDEF && d.Name != "" {
			p.typedefs.define(d.Id)
		}

		if p.curt.Kind != ',' {
			break
		}
		p.next()
		firstDecl = false
	}
	if p.curt.Kind != ';' {
		p.errorPos(p.curt.Pos, cpp.ErrBadDeclaration, "expected '=', ',' or ';' got %s", p.curt.Kind)
	}
	p.next()
	return decl
}

// Declaration specifiers
// ----------------------

func (p *parser) parseDeclarationSpecifiers() *DeclSpecs {
	specs := &DeclSpecs{Pos: p.curt.Pos, SClass: SC_NONE}
	var words []string
	sawType := false
	setSC := func(sc SClass) {
		if specs.SClass != SC_NONE {
			p.errorPos(p.curt.Pos, cpp.ErrBadDeclaration,
				"multiple storage classes (%s and %s)", specs.SClass, sc)
		}
		specs.SClass = sc
	}
loop:
	for {
		switch p.curt.Kind {
		case cpp.AUTO:
			setSC(SC_AUTO)
		case cpp.REGISTER:
			setSC(SC_REGISTER)
		case cpp.STATIC:
			setSC(SC_STATIC)
		case cpp.EXTERN:
			setSC(SC_EXTERN)
		case cpp.TYPEDEF: // A storage class grammatically, like static.
			setSC(SC_TYPEDEF)
		case cpp.CONST:
			specs.Const = true
		case cpp.VOLATILE:
			specs.Volatile = true
		case cpp.RESTRICT:
			specs.Restrict = true
		case cpp.INLINE:
			specs.Inline = true
		case cpp.EXTENSION:
			// __extension__ suppresses pedantic warnings; no effect here.
		case cpp.ATTRIBUTE, cpp.ASM:
			p.skipGNUAttributes()
			continue
		case cpp.VOID, cpp.CHAR, cpp.SHORT, cpp.INT, cpp.LONG,
			cpp.FLOAT, cpp.DOUBLE, cpp.SIGNED, cpp.UNSIGNED, cpp.BOOL:
			words = append(words, p.curt.Kind.String())
			sawType = true
		case cpp.STRUCT, cpp.UNION:
			if sawType {
				break loop
			}
			specs.Type = p.parseStructSpec()
			sawType = true
			continue
		case cpp.ENUM:
			if sawType {
				break loop
			}
			specs.Type = p.parseEnumSpec()
			sawType = true
			continue
		case cpp.TYPEOF:
			if sawType {
				break loop
			}
			specs.Type = p.parseTypeof()
			sawType = true
			continue
		case cpp.IDENT:
			// A typedef name can serve as the base type, but only one
			// type specifier is allowed: in "typedef int INT; INT x;"
			// the second INT..x must not swallow x as a type.
			if sawType || !p.typedefs.contains(p.curt.Id) {
				break loop
			}
			specs.Type = &TypedefName{Pos: p.curt.Pos, Name: p.curt.Val, Id: p.curt.Id}
			sawType = true
		default:
			break loop
		}
		p.next()
	}
	if specs.Type == nil {
		name := "int" // implicit int
		if len(words) > 0 {
			name = strings.Join(words, " ")
		}
		specs.Type = &BuiltinType{Pos: specs.Pos, Name: name}
	}
	return specs
}

func (p *parser) parseStructSpec() *StructSpec {
	spec := &StructSpec{Pos: p.curt.Pos, Union: p.curt.Kind == cpp.UNION}
	p.next()
	p.skipGNUAttributes()
	if p.curt.Kind == cpp.IDENT {
		spec.Tag = p.curt.Val
		p.next()
	}
	if p.curt.Kind != '{' {
		if spec.Tag == "" {
			p.unexpected("struct tag or '{'")
		}
		return spec
	}
	p.next()
	spec.Defined = true
	for p.curt.Kind != '}' {
		spec.Members = append(spec.Members, p.parseMemberDecls()...)
	}
	p.expect('}')
	p.skipGNUAttributes()
	return spec
}

// parseMemberDecls parses one member declaration line, which may
// declare several comma separated members sharing one specifier.
func (p *parser) parseMemberDecls() []*MemberDecl {
	pos := p.curt.Pos
	specs := p.parseDeclarationSpecifiers()
	var out []*MemberDecl
	// Anonymous struct/union member.
	if p.curt.Kind == ';' {
		p.next()
		return []*MemberDecl{{Pos: pos, Specs: specs}}
	}
	for {
		m := &MemberDecl{Pos: p.curt.Pos, Specs: specs}
		if p.curt.Kind != ':' {
			m.Decl = p.parseDeclarator(false)
			p.skipGNUAttributes()
		}
		if p.curt.Kind == ':' {
			p.next()
			m.Bitfield = p.parseConditionalExpression()
		}
		out = append(out, m)
		if p.curt.Kind != ',' {
			break
		}
		p.next()
	}
	p.expect(';')
	return out
}

func (p *parser) parseEnumSpec() *EnumSpec {
	spec := &EnumSpec{Pos: p.curt.Pos}
	p.expect(cpp.ENUM)
	p.skipGNUAttributes()
	if p.curt.Kind == cpp.IDENT {
		spec.Tag = p.curt.Val
		p.next()
	}
	if p.curt.Kind != '{' {
		if spec.Tag == "" {
			p.unexpected("enum tag or '{'")
		}
		return spec
	}
	p.next()
	spec.Defined = true
	for p.curt.Kind != '}' {
		if p.curt.Kind != cpp.IDENT {
			p.unexpected("enumerator name")
		}
		e := &Enumerator{Pos: p.curt.Pos, Name: p.curt.Val}
		p.next()
		if p.curt.Kind == '=' {
			p.next()
			e.Val = p.parseConditionalExpression()
		}
		spec.Members = append(spec.Members, e)
		if p.curt.Kind == ',' {
			p.next() // Trailing comma before '}' is allowed.
			continue
		}
		break
	}
	p.expect('}')
	p.skipGNUAttributes()
	return spec
}

func (p *parser) parseTypeof() *TypeofSpec {
	spec := &TypeofSpec{Pos: p.curt.Pos}
	p.expect(cpp.TYPEOF)
	p.expect('(')
	if p.isTypeStart(p.curt) {
		spec.Type = p.parseTypeName()
	} else {
		spec.Expr = p.parseExpression()
	}
	p.expect(')')
	return spec
}

// Declarators
// -----------

// parseDeclarator parses a (possibly abstract) declarator. When
// abstract is true the name may be absent, as in a cast's type name
// or an unnamed parameter.
func (p *parser) parseDeclarator(abstract bool) *Declarator {
	pos := p.curt.Pos
	switch p.curt.Kind {
	case '*':
		p.next()
		deriv := &PtrDeriv{}
		for {
			switch p.curt.Kind {
			case cpp.CONST:
				deriv.Const = true
			case cpp.VOLATILE:
				deriv.Volatile = true
			case cpp.RESTRICT:
				deriv.Restrict = true
			default:
				d := p.parseDeclarator(abstract)
				d.Derivs = append(d.Derivs, deriv)
				return d
			}
			p.next()
		}
	case '(':
		// '(' here is either a grouping around an inner declarator or
		// the start of a function derivation of an unnamed declarator.
		if abstract && (p.curt.Kind == '(' && (p.nextt.Kind == ')' || p.isTypeStart(p.nextt))) {
			d := &Declarator{Pos: pos}
			d.Derivs = p.parseDeclaratorTail(nil)
			return d
		}
		p.next()
		d := p.parseDeclarator(abstract)
		p.expect(')')
		d.Derivs = p.parseDeclaratorTail(d.Derivs)
		return d
	case cpp.IDENT:
		d := &Declarator{Pos: pos, Name: p.curt.Val, Id: p.curt.Id}
		p.next()
		d.Derivs = p.parseDeclaratorTail(d.Derivs)
		return d
	default:
		if abstract {
			d := &Declarator{Pos: pos}
			d.Derivs = p.parseDeclaratorTail(d.Derivs)
			return d
		}
		p.unexpected("identifier, '(' or '*'")
	}
	panic("unreachable")
}

// parseDeclaratorTail parses the array and function suffixes of a
// direct declarator.
func (p *parser) parseDeclaratorTail(derivs []TypeDeriv) []TypeDeriv {
	for {
		switch p.curt.Kind {
		case '[':
			p.next()
			a := &ArrayDeriv{}
			for {
				switch p.curt.Kind {
				case cpp.STATIC:
					a.Static = true
				case cpp.CONST:
					a.Const = true
				case cpp.VOLATILE:
					a.Volatile = true
				case cpp.RESTRICT:
					a.Restrict = true
				default:
					goto size
				}
				p.next()
			}
		size:
			if p.curt.Kind == '*' && p.nextt.Kind == ']' {
				a.Star = true
				p.next()
			} else if p.curt.Kind != ']' {
				a.Size = p.parseAssignmentExpression()
			}
			p.expect(']')
			derivs = append(derivs, a)
		case '(':
			p.next()
			derivs = append(derivs, p.parseFuncParams())
		default:
			return derivs
		}
	}
}

// parseFuncParams is entered just after the '('.
func (p *parser) parseFuncParams() *FuncDeriv {
	f := &FuncDeriv{}
	if p.curt.Kind == ')' {
		// Old style empty parameter list; says nothing about arity.
		f.KR = true
		p.next()
		return f
	}
	if p.curt.Kind == cpp.VOID && p.nextt.Kind == ')' {
		p.next()
		p.next()
		return f
	}
	for {
		if p.curt.Kind == cpp.ELLIPSIS {
			f.Variadic = true
			p.next()
			break
		}
		f.Params = append(f.Params, p.parseParameterDeclaration())
		if p.curt.Kind != ',' {
			break
		}
		p.next()
	}
	p.expect(')')
	return f
}

func (p *parser) parseParameterDeclaration() *ParamDecl {
	pd := &ParamDecl{Pos: p.curt.Pos}
	pd.Specs = p.parseDeclarationSpecifiers()
	pd.Decl = p.parseDeclarator(true)
	p.skipGNUAttributes()
	return pd
}

// parseTypeName parses specifiers plus an abstract declarator, as in
// casts and sizeof.
func (p *parser) parseTypeName() *TypeName {
	tn := &TypeName{Pos: p.curt.Pos}
	tn.Specs = p.parseDeclarationSpecifiers()
	tn.Decl = p.parseDeclarator(true)
	return tn
}

// Initializers
// ------------

func (p *parser) parseInitializer() Node {
	if p.curt.Kind != '{' {
		return p.parseAssignmentExpression()
	}
	il := &InitList{Pos: p.curt.Pos}
	p.next()
	for p.curt.Kind != '}' {
		// Designators are consumed, not recorded.
		p.skipDesignation()
		il.Items = append(il.Items, p.parseInitializer())
		if p.curt.Kind == ',' {
			p.next()
			continue
		}
		break
	}
	p.expect('}')
	return il
}

// skipDesignation consumes a designator list ( .field / [idx] ... = )
// if one is present.
func (p *parser) skipDesignation() {
	saw := false
	for {
		switch p.curt.Kind {
		case '.':
			p.next()
			p.expect(cpp.IDENT)
			saw = true
		case '[':
			p.next()
			p.parseConditionalExpression()
			p.expect(']')
			saw = true
		default:
			if saw {
				p.expect('=')
			}
			return
		}
	}
}

// Statements
// ----------

func (p *parser) parseStatement() Node {
	if p.curt.Kind == cpp.IDENT && p.nextt.Kind == ':' {
		l := &Labeled{Pos: p.curt.Pos, Label: p.curt.Val}
		p.next()
		p.next()
		l.Stmt = p.parseStatement()
		return l
	}
	pos := p.curt.Pos
	switch p.curt.Kind {
	case ';':
		p.next()
		return &ExprStmt{Pos: pos}
	case '{':
		return p.parseBlock()
	case cpp.IF:
		return p.parseIf()
	case cpp.SWITCH:
		return p.parseSwitch()
	case cpp.CASE:
		p.next()
		c := &Case{Pos: pos, Expr: p.parseConditionalExpression()}
		p.expect(':')
		c.Stmt = p.parseStatement()
		return c
	case cpp.DEFAULT:
		p.next()
		p.expect(':')
		return &Case{Pos: pos, Stmt: p.parseStatement()}
	case cpp.WHILE:
		return p.parseWhile()
	case cpp.DO:
		return p.parseDoWhile()
	case cpp.FOR:
		return p.parseFor()
	case cpp.GOTO:
		p.next()
		if p.curt.Kind != cpp.IDENT {
			p.unexpected("label")
		}
		g := &Goto{Pos: pos, Label: p.curt.Val}
		p.next()
		p.expect(';')
		return g
	case cpp.BREAK:
		p.next()
		p.expect(';')
		return &Break{Pos: pos}
	case cpp.CONTINUE:
		p.next()
		p.expect(';')
		return &Continue{Pos: pos}
	case cpp.RETURN:
		p.next()
		r := &Return{Pos: pos}
		if p.curt.Kind != ';' {
			r.Expr = p.parseExpression()
		}
		p.expect(';')
		return r
	default:
		e := &ExprStmt{Pos: pos, Expr: p.parseExpression()}
		p.expect(';')
		return e
	}
}

func (p *parser) parseIf() Node {
	pos := p.curt.Pos
	p.expect(cpp.IF)
	p.expect('(')
	n := &If{Pos: pos, Cond: p.parseExpression()}
	p.expect(')')
	n.Then = p.parseStatement()
	if p.curt.Kind == cpp.ELSE {
		p.next()
		n.Else = p.parseStatement()
	}
	return n
}

func (p *parser) parseSwitch() Node {
	pos := p.curt.Pos
	p.expect(cpp.SWITCH)
	p.expect('(')
	n := &Switch{Pos: pos, Expr: p.parseExpression()}
	p.expect(')')
	n.Body = p.parseStatement()
	return n
}

func (p *parser) parseWhile() Node {
	pos := p.curt.Pos
	p.expect(cpp.WHILE)
	p.expect('(')
	n := &While{Pos: pos, Cond: p.parseExpression()}
	p.expect(')')
	n.Body = p.parseStatement()
	return n
}

func (p *parser) parseDoWhile() Node {
	pos := p.curt.Pos
	p.expect(cpp.DO)
	n := &DoWhile{Pos: pos}
	n.Body = p.parseStatement()
	p.expect(cpp.WHILE)
	p.expect('(')
	n.Cond = p.parseExpression()
	p.expect(')')
	p.expect(';')
	return n
}

func (p *parser) parseFor() Node {
	pos := p.curt.Pos
	p.expect(cpp.FOR)
	p.expect('(')
	n := &For{Pos: pos}
	if p.isDeclStart(p.curt) {
		n.Init = p.parseDeclaration(false)
	} else {
		if p.curt.Kind != ';' {
			n.Init = p.parseExpression()
		}
		p.expect(';')
	}
	if p.curt.Kind != ';' {
		n.Cond = p.parseExpression()
	}
	p.expect(';')
	if p.curt.Kind != ')' {
		n.Step = p.parseExpression()
	}
	p.expect(')')
	n.Body = p.parseStatement()
	return n
}

func (p *parser) parseBlock() *Block {
	b := &Block{Pos: p.curt.Pos}
	p.expect('{')
	for p.curt.Kind != '}' {
		if p.curt.Kind == cpp.EOF {
			p.unexpected("'}'")
		}
		if p.isDeclStart(p.curt) {
			b.Stmts = append(b.Stmts, p.parseDeclaration(false))
		} else {
			b.Stmts = append(b.Stmts, p.parseStatement())
		}
	}
	p.expect('}')
	return b
}

// Expressions
// -----------

func isAssignmentOperator(k cpp.TokenKind) bool {
	switch k {
	case '=', cpp.ADD_ASSIGN, cpp.SUB_ASSIGN, cpp.MUL_ASSIGN, cpp.QUO_ASSIGN, cpp.REM_ASSIGN,
		cpp.AND_ASSIGN, cpp.OR_ASSIGN, cpp.XOR_ASSIGN, cpp.SHL_ASSIGN, cpp.SHR_ASSIGN:
		return true
	}
	return false
}

func (p *parser) parseExpression() Node {
	l := p.parseAssignmentExpression()
	if p.curt.Kind != ',' {
		return l
	}
	c := &Comma{Pos: l.GetPos(), Exprs: []Node{l}}
	for p.curt.Kind == ',' {
		p.next()
		c.Exprs = append(c.Exprs, p.parseAssignmentExpression())
	}
	return c
}

func (p *parser) parseAssignmentExpression() Node {
	l := p.parseConditionalExpression()
	if !isAssignmentOperator(p.curt.Kind) {
		return l
	}
	op := p.curt.Kind
	pos := p.curt.Pos
	p.next()
	return &Assign{Op: op, Pos: pos, L: l, R: p.parseAssignmentExpression()}
}

// Aka ternary operator.
func (p *parser) parseConditionalExpression() Node {
	t := p.parseLogicalOrExpression()
	if p.curt.Kind != '?' {
		return t
	}
	pos := p.curt.Pos
	p.next()
	n := &Cond{Pos: pos, Test: t}
	if p.curt.Kind != ':' {
		n.L = p.parseExpression()
	}
	p.expect(':')
	n.R = p.parseConditionalExpression()
	return n
}

func (p *parser) parseLogicalOrExpression() Node {
	l := p.parseLogicalAndExpression()
	for p.curt.Kind == cpp.LOR {
		pos := p.curt.Pos
		p.next()
		l = &Binop{Op: cpp.LOR, Pos: pos, L: l, R: p.parseLogicalAndExpression()}
	}
	return l
}

func (p *parser) parseLogicalAndExpression() Node {
	l := p.parseInclusiveOrExpression()
	for p.curt.Kind == cpp.LAND {
		pos := p.curt.Pos
		p.next()
		l = &Binop{Op: cpp.LAND, Pos: pos, L: l, R: p.parseInclusiveOrExpression()}
	}
	return l
}

func (p *parser) parseInclusiveOrExpression() Node {
	l := p.parseExclusiveOrExpression()
	for p.curt.Kind == '|' {
		pos := p.curt.Pos
		p.next()
		l = &Binop{Op: '|', Pos: pos, L: l, R: p.parseExclusiveOrExpression()}
	}
	return l
}

func (p *parser) parseExclusiveOrExpression() Node {
	l := p.parseAndExpression()
	for p.curt.Kind == '^' {
		pos := p.curt.Pos
		p.next()
		l = &Binop{Op: '^', Pos: pos, L: l, R: p.parseAndExpression()}
	}
	return l
}

func (p *parser) parseAndExpression() Node {
	l := p.parseEqualityExpression()
	for p.curt.Kind == '&' {
		pos := p.curt.Pos
		p.next()
		l = &Binop{Op: '&', Pos: pos, L: l, R: p.parseEqualityExpression()}
	}
	return l
}

func (p *parser) parseEqualityExpression() Node {
	l := p.parseRelationalExpression()
	for p.curt.Kind == cpp.EQL || p.curt.Kind == cpp.NEQ {
		op, pos := p.curt.Kind, p.curt.Pos
		p.next()
		l = &Binop{Op: op, Pos: pos, L: l, R: p.parseRelationalExpression()}
	}
	return l
}

func (p *parser) parseRelationalExpression() Node {
	l := p.parseShiftExpression()
	for p.curt.Kind == '>' || p.curt.Kind == '<' || p.curt.Kind == cpp.LEQ || p.curt.Kind == cpp.GEQ {
		op, pos := p.curt.Kind, p.curt.Pos
		p.next()
		l = &Binop{Op: op, Pos: pos, L: l, R: p.parseShiftExpression()}
	}
	return l
}

func (p *parser) parseShiftExpression() Node {
	l := p.parseAdditiveExpression()
	for p.curt.Kind == cpp.SHL || p.curt.Kind == cpp.SHR {
		op, pos := p.curt.Kind, p.curt.Pos
		p.next()
		l = &Binop{Op: op, Pos: pos, L: l, R: p.parseAdditiveExpression()}
	}
	return l
}

func (p *parser) parseAdditiveExpression() Node {
	l := p.parseMultiplicativeExpression()
	for p.curt.Kind == '+' || p.curt.Kind == '-' {
		op, pos := p.curt.Kind, p.curt.Pos
		p.next()
		l = &Binop{Op: op, Pos: pos, L: l, R: p.parseMultiplicativeExpression()}
	}
	return l
}

func (p *parser) parseMultiplicativeExpression() Node {
	l := p.parseCastExpression()
	for p.curt.Kind == '*' || p.curt.Kind == '/' || p.curt.Kind == '%' {
		op, pos := p.curt.Kind, p.curt.Pos
		p.next()
		l = &Binop{Op: op, Pos: pos, L: l, R: p.parseCastExpression()}
	}
	return l
}

// parseCastExpression is the one ambiguity point: '(' introduces a
// cast only when what follows starts a type name; otherwise the '('
// belongs to a parenthesized expression (or statement expression) and
// postfix operators must still apply to it, so control falls through
// to parseUnaryExpression which reaches parsePostfixExpression.
func (p *parser) parseCastExpression() Node {
	if p.curt.Kind == '(' && p.isTypeStart(p.nextt) {
		pos := p.curt.Pos
		p.next()
		tn := p.parseTypeName()
		p.expect(')')
		return &Cast{Pos: pos, Type: tn, Operand: p.parseCastExpression()}
	}
	return p.parseUnaryExpression()
}

func (p *parser) parseUnaryExpression() Node {
	pos := p.curt.Pos
	switch p.curt.Kind {
	case cpp.INC, cpp.DEC:
		op := p.curt.Kind
		p.next()
		return &Unop{Op: op, Pos: pos, Operand: p.parseUnaryExpression()}
	case '*', '+', '-', '!', '~', '&':
		op := p.curt.Kind
		p.next()
		return &Unop{Op: op, Pos: pos, Operand: p.parseCastExpression()}
	case cpp.SIZEOF:
		p.next()
		if p.curt.Kind == '(' && p.isTypeStart(p.nextt) {
			p.next()
			tn := p.parseTypeName()
			p.expect(')')
			return &Sizeof{Pos: pos, Type: tn}
		}
		return &Sizeof{Pos: pos, Operand: p.parseUnaryExpression()}
	case cpp.EXTENSION:
		p.next()
		return p.parseCastExpression()
	default:
		return p.parsePostfixExpression()
	}
}

func (p *parser) parsePostfixExpression() Node {
	l := p.parsePrimaryExpression()
	for {
		pos := p.curt.Pos
		switch p.curt.Kind {
		case '[':
			p.next()
			idx := p.parseExpression()
			p.expect(']')
			l = &Index{Pos: pos, Arr: l, Idx: idx}
		case '.', cpp.ARROW:
			op := p.curt.Kind
			p.next()
			if p.curt.Kind != cpp.IDENT {
				p.unexpected("member name")
			}
			l = &Selector{Op: op, Pos: pos, Operand: l, Sel: p.curt.Val}
			p.next()
		case '(':
			p.next()
			call := &Call{Pos: pos, FuncLike: l}
			for p.curt.Kind != ')' {
				call.Args = append(call.Args, p.parseAssignmentExpression())
				if p.curt.Kind != ',' {
					break
				}
				p.next()
			}
			p.expect(')')
			l = call
		case cpp.INC, cpp.DEC:
			l = &Unop{Op: p.curt.Kind, Postfix: true, Pos: pos, Operand: l}
			p.next()
		default:
			return l
		}
	}
}

func (p *parser) parsePrimaryExpression() Node {
	pos := p.curt.Pos
	switch p.curt.Kind {
	case cpp.IDENT:
		n := &Ident{Name: p.curt.Val, Id: p.curt.Id, Pos: pos}
		p.next()
		return n
	case cpp.INT_CONSTANT, cpp.CHAR_CONSTANT, cpp.WCHAR_CONSTANT:
		n := &Constant{Kind: p.curt.Kind, Val: p.curt.IVal, Pos: pos}
		p.next()
		return n
	case cpp.UINT_CONSTANT:
		n := &Constant{Kind: cpp.UINT_CONSTANT, UVal: p.curt.UVal, Pos: pos}
		p.next()
		return n
	case cpp.FLOAT_CONSTANT:
		n := &Constant{Kind: cpp.FLOAT_CONSTANT, FVal: p.curt.FVal, Pos: pos}
		p.next()
		return n
	case cpp.STRING, cpp.WSTRING:
		n := &StrLit{Pos: pos, Wide: p.curt.Kind == cpp.WSTRING}
		var sb strings.Builder
		// Adjacent string literals concatenate.
		for p.curt.Kind == cpp.STRING || p.curt.Kind == cpp.WSTRING {
			if p.curt.Kind == cpp.WSTRING {
				n.Wide = true
			}
			sb.WriteString(p.curt.SVal)
			p.next()
		}
		n.Val = sb.String()
		return n
	case '(':
		if p.nextt.Kind == '{' {
			// GNU statement expression.
			p.next()
			n := &StmtExpr{Pos: pos, Body: p.parseBlock()}
			p.expect(')')
			return n
		}
		p.next()
		n := p.parseExpression()
		p.expect(')')
		return n
	default:
		p.unexpected("expression")
	}
	panic("unreachable")
}
