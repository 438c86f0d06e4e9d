package cpp

import (
	"fmt"
	"os"
	"path/filepath"
)

// IncludeSearcher resolves #include paths to file contents. Files are
// read whole and eagerly; scanning never needs to seek backwards.
type IncludeSearcher interface {
	// IncludeQuote is invoked for #include "foo.h".
	// Returns the resolved path of the file and its contents.
	IncludeQuote(requestingFile, headerPath string) (string, []byte, error)
	// IncludeAngled is invoked for #include <foo.h>.
	IncludeAngled(requestingFile, headerPath string) (string, []byte, error)
}

// StandardIncludeSearcher resolves quote-form includes relative to the
// including file's directory first, then both forms against the search
// path list in order, first match wins.
type StandardIncludeSearcher struct {
	searchPaths []string
}

func NewStandardIncludeSearcher(searchPaths ...string) *StandardIncludeSearcher {
	return &StandardIncludeSearcher{searchPaths: searchPaths}
}

func readIfExists(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, true, nil
}

func (is *StandardIncludeSearcher) IncludeQuote(requestingFile, headerPath string) (string, []byte, error) {
	path := filepath.Join(filepath.Dir(requestingFile), headerPath)
	data, ok, err := readIfExists(path)
	if err != nil {
		return "", nil, err
	}
	if ok {
		return path, data, nil
	}
	return is.IncludeAngled(requestingFile, headerPath)
}

func (is *StandardIncludeSearcher) IncludeAngled(requestingFile, headerPath string) (string, []byte, error) {
	for _, dir := range is.searchPaths {
		path := filepath.Join(dir, headerPath)
		data, ok, err := readIfExists(path)
		if err != nil {
			return "", nil, err
		}
		if ok {
			return path, data, nil
		}
	}
	return "", nil, &PPError{Code: ErrIncludeNotFound, Msg: fmt.Sprintf("header %s not found", headerPath)}
}
