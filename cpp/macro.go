package cpp

import "strings"

// Data structures representing macros inside the preprocessor.
// This is pure storage; no expansion logic lives here.

type MacroKind int

const (
	ObjMacro MacroKind = iota
	FuncMacro
)

// MacroDef is one #define. Definitions should be treated as immutable
// once stored.
type MacroDef struct {
	Name InternedStr
	Kind MacroKind
	// Params are in declaration order; for a variadic macro the last
	// entry is the variadic parameter (either __VA_ARGS__ or a GNU
	// named parameter).
	Params     []InternedStr
	IsVariadic bool
	Body       []*Token
	DefPos     FilePos
	// IsBuiltin marks predefined macros installed before the root file.
	IsBuiltin bool
	// IsTarget marks macros the embedding tool cares about; the table
	// can iterate over just these.
	IsTarget bool
	// HasPaste is precomputed so expansion can fast-path bodies that
	// never need the paste algorithm.
	HasPaste bool
}

// paramIndex returns the 0 based position of id in the parameter list.
func (m *MacroDef) paramIndex(id InternedStr) (int, bool) {
	for i, p := range m.Params {
		if p == id {
			return i, true
		}
	}
	return 0, false
}

// MacroTable maps interned macro names to definitions. It is mutated
// only by #define and #undef.
type MacroTable struct {
	in   *StringInterner
	defs map[InternedStr]*MacroDef
}

func NewMacroTable(in *StringInterner) *MacroTable {
	return &MacroTable{
		in:   in,
		defs: make(map[InternedStr]*MacroDef),
	}
}

// Define stores def and returns the previous definition, if any.
// Redefinition diagnosis is the caller's concern, with one exception:
// a builtin whose name starts with a double underscore cannot be
// silently overwritten, only #undef removes it. The bool result is
// false when the store was refused for that reason.
func (mt *MacroTable) Define(def *MacroDef) (*MacroDef, bool) {
	prev := mt.defs[def.Name]
	if prev != nil && prev.IsBuiltin && !def.IsBuiltin &&
		strings.HasPrefix(mt.in.Str(prev.Name), "__") {
		return prev, false
	}
	mt.defs[def.Name] = def
	return prev, true
}

func (mt *MacroTable) Undefine(name InternedStr) *MacroDef {
	prev := mt.defs[name]
	delete(mt.defs, name)
	return prev
}

func (mt *MacroTable) Get(name InternedStr) *MacroDef {
	return mt.defs[name]
}

func (mt *MacroTable) IsDefined(name InternedStr) bool {
	_, ok := mt.defs[name]
	return ok
}

func (mt *MacroTable) Len() int {
	return len(mt.defs)
}

// Each calls fn for every definition.
func (mt *MacroTable) Each(fn func(*MacroDef)) {
	for _, def := range mt.defs {
		fn(def)
	}
}

// EachTarget calls fn for definitions flagged as target macros.
func (mt *MacroTable) EachTarget(fn func(*MacroDef)) {
	for _, def := range mt.defs {
		if def.IsTarget {
			fn(def)
		}
	}
}

// EachUserDefined calls fn for non-builtin definitions.
func (mt *MacroTable) EachUserDefined(fn func(*MacroDef)) {
	for _, def := range mt.defs {
		if !def.IsBuiltin {
			fn(def)
		}
	}
}
