package parse

import "github.com/hkoba/cfront/cpp"

// typedefSet is the parser's record of names declared by typedef. It
// only ever grows while a translation unit is parsed; C's grammar
// disambiguation is online, so names become type names the moment the
// declaration that introduces them completes.
type typedefSet struct {
	names map[cpp.InternedStr]bool
}

func newTypedefSet() *typedefSet {
	return &typedefSet{names: make(map[cpp.InternedStr]bool)}
}

func (s *typedefSet) define(id cpp.InternedStr) {
	s.names[id] = true
}

func (s *typedefSet) contains(id cpp.InternedStr) bool {
	return s.names[id]
}
