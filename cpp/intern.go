package cpp

// InternedStr is an opaque handle for an interned identifier. Comparing
// two handles from the same interner is equivalent to comparing the
// strings they stand for. Handles from different interners must never
// be mixed.
type InternedStr int32

// StringInterner deduplicates identifier storage. The canonical string
// vector only ever grows, so handles stay valid for the interner's
// whole lifetime.
type StringInterner struct {
	ids  map[string]InternedStr
	strs []string
}

func NewStringInterner() *StringInterner {
	return &StringInterner{
		ids: make(map[string]InternedStr),
	}
}

func (si *StringInterner) Intern(s string) InternedStr {
	if id, ok := si.ids[s]; ok {
		return id
	}
	id := InternedStr(len(si.strs))
	si.strs = append(si.strs, s)
	si.ids[s] = id
	return id
}

// InternBytes avoids a string allocation when b was already interned.
func (si *StringInterner) InternBytes(b []byte) InternedStr {
	if id, ok := si.ids[string(b)]; ok {
		return id
	}
	return si.Intern(string(b))
}

func (si *StringInterner) Str(id InternedStr) string {
	if int(id) < 0 || int(id) >= len(si.strs) {
		return "<bad interned str>"
	}
	return si.strs[id]
}

func (si *StringInterner) Len() int {
	return len(si.strs)
}
