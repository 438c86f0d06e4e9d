package cpp

import "fmt"

// ErrCode distinguishes the malformations this package can detect.
type ErrCode int

const (
	// Lexer errors.
	ErrInvalidChar ErrCode = iota
	ErrUnterminatedComment
	ErrUnterminatedString
	ErrUnterminatedChar
	ErrInvalidEscape
	ErrInvalidNumber
	ErrInvalidSuffix
	// Preprocessor errors.
	ErrInvalidDirective
	ErrMacroRedefinition
	ErrIncludeNotFound
	ErrIncludeIO
	ErrMissingEndif
	ErrUnmatchedEndif
	ErrUnmatchedElse
	ErrUnmatchedElif
	ErrBadMacroArgs
	ErrInvalidCondExpr
	ErrInvalidStringize
	ErrInvalidTokenPaste
	ErrErrorDirective
	// Parser errors.
	ErrUnexpectedToken
	ErrUnexpectedEOF
	ErrBadDeclaration
)

// LexError is a malformed character level input.
type LexError struct {
	Code ErrCode
	Msg  string
}

func (e *LexError) Error() string { return e.Msg }

// PPError is a malformed directive or macro use.
type PPError struct {
	Code ErrCode
	Msg  string
}

func (e *PPError) Error() string { return e.Msg }

// ParseError is a malformed declaration, statement or expression.
type ParseError struct {
	Code ErrCode
	Msg  string
}

func (e *ParseError) Error() string { return e.Msg }

// ErrorLoc is the single propagation type; every fallible operation in
// the lexer, preprocessor and parser surfaces one of these.
type ErrorLoc struct {
	Err error
	Pos FilePos
}

func ErrWithLoc(e error, pos FilePos) error {
	return ErrorLoc{
		Err: e,
		Pos: pos,
	}
}

func (e ErrorLoc) Error() string {
	return fmt.Sprintf("%s at %s", e.Err, e.Pos)
}

func (e ErrorLoc) Unwrap() error { return e.Err }

// FormatWithFiles renders the error with the FileID resolved to a path.
func (e ErrorLoc) FormatWithFiles(files *FileRegistry) string {
	return fmt.Sprintf("%s at %s", e.Err, e.Pos.StringWithFiles(files))
}

// Code extracts the ErrCode from any error produced by this package,
// unwrapping the location if present. Returns ok=false for foreign
// errors (e.g. wrapped io errors).
func Code(err error) (ErrCode, bool) {
	if le, ok := err.(ErrorLoc); ok {
		err = le.Err
	}
	switch e := err.(type) {
	case *LexError:
		return e.Code, true
	case *PPError:
		return e.Code, true
	case *ParseError:
		return e.Code, true
	}
	return 0, false
}
