// Package cfront is a C front end: a lexer, preprocessor and parser
// usable as a library. The cmd/cfront driver wraps these entry points.
package cfront

import (
	"fmt"
	"io"
	"os"

	"github.com/hkoba/cfront/cpp"
	"github.com/hkoba/cfront/parse"
)

// Predef is one predefined macro, as given by -D on a compiler
// command line. An empty Value defines the name to 1.
type Predef struct {
	Name  string
	Value string
}

// NewPreprocessor builds a preprocessor over path with the given
// include search directories and predefined macros installed.
func NewPreprocessor(path string, searchPaths []string, defines []Predef) (*cpp.Preprocessor, error) {
	pp := cpp.New(cpp.NewStandardIncludeSearcher(searchPaths...))
	for _, d := range defines {
		v := d.Value
		if v == "" {
			v = "1"
		}
		if err := pp.Predefine(d.Name, v); err != nil {
			return nil, fmt.Errorf("predefining %s: %w", d.Name, err)
		}
	}
	if err := pp.PushFile(path); err != nil {
		return nil, err
	}
	return pp, nil
}

// TokenizeFile prints the raw token stream of a single file, with no
// preprocessing.
func TokenizeFile(path string, out io.Writer) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to open source file %s for tokenizing: %w", path, err)
	}
	files := cpp.NewFileRegistry()
	lx := cpp.NewLexer(src, files.Intern(path), cpp.NewStringInterner())
	for {
		tok, err := lx.Next()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s:%s:%d:%d\n", tok.Kind, tok.Val, tok.Pos.Line, tok.Pos.Col)
		if tok.Kind == cpp.EOF {
			return nil
		}
	}
}

// PreprocessFile prints the token stream after preprocessing.
func PreprocessFile(path string, searchPaths []string, defines []Predef, out io.Writer) error {
	pp, err := NewPreprocessor(path, searchPaths, defines)
	if err != nil {
		return err
	}
	for {
		tok, err := pp.Next()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s:%s:%d:%d\n", tok.Kind, tok.Val, tok.Pos.Line, tok.Pos.Col)
		if tok.Kind == cpp.EOF {
			return nil
		}
	}
}

// ParseFile preprocesses and parses a whole translation unit. The
// preprocessor is returned alongside so callers can inspect the macro
// table, interner and file registry afterwards.
func ParseFile(path string, searchPaths []string, defines []Predef) (*parse.TranslationUnit, *cpp.Preprocessor, error) {
	pp, err := NewPreprocessor(path, searchPaths, defines)
	if err != nil {
		return nil, nil, err
	}
	tu, err := parse.Parse(pp)
	if err != nil {
		return nil, pp, err
	}
	return tu, pp, nil
}

// ParseFileEach streams external declarations to fn as they are
// parsed; fn returning false stops early.
func ParseFileEach(path string, searchPaths []string, defines []Predef, fn func(parse.Node) bool) (*cpp.Preprocessor, error) {
	pp, err := NewPreprocessor(path, searchPaths, defines)
	if err != nil {
		return nil, err
	}
	return pp, parse.ParseEach(pp, fn)
}
