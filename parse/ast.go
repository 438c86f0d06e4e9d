package parse

import "github.com/hkoba/cfront/cpp"

// Node is the interface implemented by every AST node.
type Node interface {
	GetPos() cpp.FilePos
}

// Expressions
// -----------

type Ident struct {
	Name string
	Id   cpp.InternedStr
	Pos  cpp.FilePos
}

type Constant struct {
	Kind cpp.TokenKind // INT_CONSTANT, UINT_CONSTANT, FLOAT_CONSTANT, CHAR_CONSTANT, WCHAR_CONSTANT
	Val  int64
	UVal uint64
	FVal float64
	Pos  cpp.FilePos
}

type StrLit struct {
	// Val is the processed contents; adjacent literals are
	// concatenated the way translation phase 6 does it.
	Val  string
	Wide bool
	Pos  cpp.FilePos
}

type Unop struct {
	Op      cpp.TokenKind
	Postfix bool // x++ / x-- rather than ++x / --x
	Operand Node
	Pos     cpp.FilePos
}

type Binop struct {
	Op  cpp.TokenKind
	Pos cpp.FilePos
	L   Node
	R   Node
}

type Assign struct {
	Op  cpp.TokenKind // '=' or one of the compound assignment kinds
	Pos cpp.FilePos
	L   Node
	R   Node
}

// Cond is the ternary operator. L may be nil for the GNU a ?: b form.
type Cond struct {
	Pos  cpp.FilePos
	Test Node
	L    Node
	R    Node
}

type Cast struct {
	Pos     cpp.FilePos
	Type    *TypeName
	Operand Node
}

// Sizeof covers both sizeof expr and sizeof(type); exactly one of
// Operand and Type is set.
type Sizeof struct {
	Pos     cpp.FilePos
	Operand Node
	Type    *TypeName
}

type Call struct {
	Pos      cpp.FilePos
	FuncLike Node
	Args     []Node
}

type Index struct {
	Pos cpp.FilePos
	Arr Node
	Idx Node
}

// Selector is a.b or a->b.
type Selector struct {
	Op      cpp.TokenKind // '.' or ARROW
	Pos     cpp.FilePos
	Operand Node
	Sel     string
}

type Comma struct {
	Pos   cpp.FilePos
	Exprs []Node
}

// StmtExpr is the GNU statement expression ({ ... }).
type StmtExpr struct {
	Pos  cpp.FilePos
	Body *Block
}

// InitList is a braced initializer. Items may themselves be InitLists.
type InitList struct {
	Pos   cpp.FilePos
	Items []Node
}

func (n *Ident) GetPos() cpp.FilePos    { return n.Pos }
func (n *Constant) GetPos() cpp.FilePos { return n.Pos }
func (n *StrLit) GetPos() cpp.FilePos   { return n.Pos }
func (n *Unop) GetPos() cpp.FilePos     { return n.Pos }
func (n *Binop) GetPos() cpp.FilePos    { return n.Pos }
func (n *Assign) GetPos() cpp.FilePos   { return n.Pos }
func (n *Cond) GetPos() cpp.FilePos     { return n.Pos }
func (n *Cast) GetPos() cpp.FilePos     { return n.Pos }
func (n *Sizeof) GetPos() cpp.FilePos   { return n.Pos }
func (n *Call) GetPos() cpp.FilePos     { return n.Pos }
func (n *Index) GetPos() cpp.FilePos    { return n.Pos }
func (n *Selector) GetPos() cpp.FilePos { return n.Pos }
func (n *Comma) GetPos() cpp.FilePos    { return n.Pos }
func (n *StmtExpr) GetPos() cpp.FilePos { return n.Pos }
func (n *InitList) GetPos() cpp.FilePos { return n.Pos }

// Statements
// ----------

type Block struct {
	Pos   cpp.FilePos
	Stmts []Node
}

type ExprStmt struct {
	Pos  cpp.FilePos
	Expr Node // nil for the empty statement ';'
}

type If struct {
	Pos  cpp.FilePos
	Cond Node
	Then Node
	Else Node // may be nil
}

type Switch struct {
	Pos  cpp.FilePos
	Expr Node
	Body Node
}

type Case struct {
	Pos  cpp.FilePos
	Expr Node // nil for default:
	Stmt Node
}

type While struct {
	Pos  cpp.FilePos
	Cond Node
	Body Node
}

type DoWhile struct {
	Pos  cpp.FilePos
	Body Node
	Cond Node
}

// For's Init is either an expression or a Declaration.
type For struct {
	Pos  cpp.FilePos
	Init Node
	Cond Node
	Step Node
	Body Node
}

type Return struct {
	Pos  cpp.FilePos
	Expr Node // may be nil
}

type Break struct{ Pos cpp.FilePos }

type Continue struct{ Pos cpp.FilePos }

type Goto struct {
	Pos   cpp.FilePos
	Label string
}

type Labeled struct {
	Pos   cpp.FilePos
	Label string
	Stmt  Node
}

func (n *Block) GetPos() cpp.FilePos    { return n.Pos }
func (n *ExprStmt) GetPos() cpp.FilePos { return n.Pos }
func (n *If) GetPos() cpp.FilePos       { return n.Pos }
func (n *Switch) GetPos() cpp.FilePos   { return n.Pos }
func (n *Case) GetPos() cpp.FilePos     { return n.Pos }
func (n *While) GetPos() cpp.FilePos    { return n.Pos }
func (n *DoWhile) GetPos() cpp.FilePos  { return n.Pos }
func (n *For) GetPos() cpp.FilePos      { return n.Pos }
func (n *Return) GetPos() cpp.FilePos   { return n.Pos }
func (n *Break) GetPos() cpp.FilePos    { return n.Pos }
func (n *Continue) GetPos() cpp.FilePos { return n.Pos }
func (n *Goto) GetPos() cpp.FilePos     { return n.Pos }
func (n *Labeled) GetPos() cpp.FilePos  { return n.Pos }

// Declarations
// ------------

// TranslationUnit is an ordered list of external declarations, each a
// *Declaration or a *FuncDef.
type TranslationUnit struct {
	Pos   cpp.FilePos
	Decls []Node
}

type SClass int

const (
	SC_NONE SClass = iota
	SC_AUTO
	SC_REGISTER
	SC_STATIC
	SC_EXTERN
	SC_TYPEDEF
)

func (sc SClass) String() string {
	switch sc {
	case SC_AUTO:
		return "auto"
	case SC_REGISTER:
		return "register"
	case SC_STATIC:
		return "static"
	case SC_EXTERN:
		return "extern"
	case SC_TYPEDEF:
		return "typedef"
	}
	return "none"
}

// DeclSpecs is the specifier half of a declaration: storage class,
// qualifiers and the base type, before any declarator derivations.
type DeclSpecs struct {
	Pos      cpp.FilePos
	SClass   SClass
	Const    bool
	Volatile bool
	Restrict bool
	Inline   bool
	Type     TypeSpec
}

// TypeSpec is the closed set of base type forms.
type TypeSpec interface {
	Node
	typeSpec()
}

// BuiltinType is a combination of the arithmetic type keywords
// (e.g. unsigned long long int) or void.
type BuiltinType struct {
	Pos cpp.FilePos
	// Name is the canonical spelling, keywords in source order.
	Name string
}

// StructSpec covers struct and union, with or without a tag, with or
// without a member list.
type StructSpec struct {
	Pos     cpp.FilePos
	Union   bool
	Tag     string
	Defined bool // a member list was present
	Members []*MemberDecl
}

type MemberDecl struct {
	Pos      cpp.FilePos
	Specs    *DeclSpecs
	Decl     *Declarator // nil for an anonymous member
	Bitfield Node        // width expression, or nil
}

type EnumSpec struct {
	Pos     cpp.FilePos
	Tag     string
	Defined bool
	Members []*Enumerator
}

type Enumerator struct {
	Pos  cpp.FilePos
	Name string
	Val  Node // explicit value expression, or nil
}

// TypedefName is a use of a name previously registered by a typedef
// declaration.
type TypedefName struct {
	Pos  cpp.FilePos
	Name string
	Id   cpp.InternedStr
}

// TypeofSpec is GNU typeof(expr) or typeof(type).
type TypeofSpec struct {
	Pos  cpp.FilePos
	Expr Node
	Type *TypeName
}

func (t *BuiltinType) GetPos() cpp.FilePos { return t.Pos }
func (t *StructSpec) GetPos() cpp.FilePos  { return t.Pos }
func (t *EnumSpec) GetPos() cpp.FilePos    { return t.Pos }
func (t *TypedefName) GetPos() cpp.FilePos { return t.Pos }
func (t *TypeofSpec) GetPos() cpp.FilePos  { return t.Pos }

func (t *BuiltinType) typeSpec() {}
func (t *StructSpec) typeSpec()  {}
func (t *EnumSpec) typeSpec()    {}
func (t *TypedefName) typeSpec() {}
func (t *TypeofSpec) typeSpec()  {}

// Declarator carries the declared name (empty for an abstract
// declarator) and the derivation chain, outermost first: for
// `int *a[3]`, Derivs is [Array(3), Ptr].
type Declarator struct {
	Pos    cpp.FilePos
	Name   string
	Id     cpp.InternedStr
	Derivs []TypeDeriv
}

// TypeDeriv is one step of a declarator derivation.
type TypeDeriv interface {
	typeDeriv()
}

type PtrDeriv struct {
	Const    bool
	Volatile bool
	Restrict bool
}

type ArrayDeriv struct {
	Size     Node // nil for []
	Static   bool // [static n]
	Star     bool // [*], VLA of unspecified size
	Const    bool
	Volatile bool
	Restrict bool
}

type FuncDeriv struct {
	Params   []*ParamDecl
	Variadic bool
	// KR is true for an old-style empty parameter list ().
	KR bool
}

func (*PtrDeriv) typeDeriv()   {}
func (*ArrayDeriv) typeDeriv() {}
func (*FuncDeriv) typeDeriv()  {}

type ParamDecl struct {
	Pos   cpp.FilePos
	Specs *DeclSpecs
	Decl  *Declarator // may have empty Name (abstract)
}

// TypeName is a type without a declared name: specifiers plus an
// abstract declarator. Used by casts, sizeof and typeof.
type TypeName struct {
	Pos   cpp.FilePos
	Specs *DeclSpecs
	Decl  *Declarator
}

func (n *TypeName) GetPos() cpp.FilePos { return n.Pos }

// InitDeclarator is one comma-separated declarator with its optional
// initializer.
type InitDeclarator struct {
	Decl *Declarator
	Init Node // expression or *InitList, nil if absent
}

// Declaration is a non-function-definition external or block level
// declaration.
type Declaration struct {
	Pos         cpp.FilePos
	Specs       *DeclSpecs
	Declarators []*InitDeclarator
}

// FuncDef is a function definition, classified by a declarator being
// immediately followed by '{'.
type FuncDef struct {
	Pos   cpp.FilePos
	Specs *DeclSpecs
	Decl  *Declarator
	Body  *Block
}

func (n *TranslationUnit) GetPos() cpp.FilePos { return n.Pos }
func (n *Declaration) GetPos() cpp.FilePos     { return n.Pos }
func (n *FuncDef) GetPos() cpp.FilePos         { return n.Pos }

// DeclName returns the declared name of an external declaration, or ""
// when it declares no name (e.g. a bare struct definition).
func DeclName(n Node) string {
	switch d := n.(type) {
	case *FuncDef:
		return d.Decl.Name
	case *Declaration:
		if len(d.Declarators) > 0 {
			return d.Declarators[0].Decl.Name
		}
	}
	return ""
}
