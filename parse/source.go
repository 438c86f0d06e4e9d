package parse

import "github.com/hkoba/cfront/cpp"

// TokenSource is the capability the parser needs from its input. Two
// types conform: *cpp.Preprocessor, for parsing a live translation
// unit, and *TokenSlice, for re-parsing a finite already-expanded
// fragment such as a macro body.
type TokenSource interface {
	Next() (*cpp.Token, error)
	Interner() *cpp.StringInterner
	Files() *cpp.FileRegistry
}

// TokenSlice adapts a fixed token list to TokenSource. The interner
// and registry are borrowed from whoever produced the tokens; the
// slice is not modified.
type TokenSlice struct {
	toks  []*cpp.Token
	idx   int
	in    *cpp.StringInterner
	files *cpp.FileRegistry
}

func NewTokenSlice(toks []*cpp.Token, in *cpp.StringInterner, files *cpp.FileRegistry) *TokenSlice {
	return &TokenSlice{toks: toks, in: in, files: files}
}

func (ts *TokenSlice) Next() (*cpp.Token, error) {
	if ts.idx >= len(ts.toks) {
		return &cpp.Token{Kind: cpp.EOF}, nil
	}
	t := ts.toks[ts.idx]
	ts.idx++
	return t, nil
}

func (ts *TokenSlice) Interner() *cpp.StringInterner { return ts.in }

func (ts *TokenSlice) Files() *cpp.FileRegistry { return ts.files }
