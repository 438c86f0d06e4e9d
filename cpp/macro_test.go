package cpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacroTableDefineUndefine(t *testing.T) {
	in := NewStringInterner()
	mt := NewMacroTable(in)
	foo := in.Intern("FOO")

	prev, ok := mt.Define(&MacroDef{Name: foo, Kind: ObjMacro})
	require.True(t, ok)
	assert.Nil(t, prev)
	assert.True(t, mt.IsDefined(foo))

	prev, ok = mt.Define(&MacroDef{Name: foo, Kind: ObjMacro})
	require.True(t, ok)
	require.NotNil(t, prev)

	removed := mt.Undefine(foo)
	assert.NotNil(t, removed)
	assert.False(t, mt.IsDefined(foo))
	assert.Nil(t, mt.Undefine(foo))
}

func TestMacroTableBlocksBuiltinOverwrite(t *testing.T) {
	in := NewStringInterner()
	mt := NewMacroTable(in)
	name := in.Intern("__BUILTIN__")

	_, ok := mt.Define(&MacroDef{Name: name, Kind: ObjMacro, IsBuiltin: true})
	require.True(t, ok)

	_, ok = mt.Define(&MacroDef{Name: name, Kind: ObjMacro})
	assert.False(t, ok)
	assert.True(t, mt.Get(name).IsBuiltin)

	// Non double underscore builtins are replaceable.
	plain := in.Intern("PLAIN")
	_, ok = mt.Define(&MacroDef{Name: plain, Kind: ObjMacro, IsBuiltin: true})
	require.True(t, ok)
	_, ok = mt.Define(&MacroDef{Name: plain, Kind: ObjMacro})
	assert.True(t, ok)
}

func TestMacroTableIteration(t *testing.T) {
	in := NewStringInterner()
	mt := NewMacroTable(in)
	mt.Define(&MacroDef{Name: in.Intern("A"), Kind: ObjMacro, IsBuiltin: true})
	mt.Define(&MacroDef{Name: in.Intern("B"), Kind: ObjMacro, IsTarget: true})
	mt.Define(&MacroDef{Name: in.Intern("C"), Kind: FuncMacro})

	count := 0
	mt.Each(func(*MacroDef) { count++ })
	assert.Equal(t, 3, count)

	var targets []InternedStr
	mt.EachTarget(func(d *MacroDef) { targets = append(targets, d.Name) })
	assert.Equal(t, []InternedStr{in.Intern("B")}, targets)

	user := 0
	mt.EachUserDefined(func(*MacroDef) { user++ })
	assert.Equal(t, 2, user)
}
