package cfront

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/hkoba/cfront/cpp"
)

// ReportError prints err to w; when the error carries a location and
// the file registry can resolve it, the offending source line is
// printed with a caret under the column.
func ReportError(w io.Writer, err error, files *cpp.FileRegistry) {
	errLoc, ok := err.(cpp.ErrorLoc)
	if !ok {
		fmt.Fprintln(w, err)
		return
	}
	if files != nil {
		fmt.Fprintln(w, errLoc.FormatWithFiles(files))
	} else {
		fmt.Fprintln(w, errLoc)
	}
	fmt.Fprintln(w, "")
	if files == nil {
		return
	}
	pos := errLoc.Pos
	f, ferr := os.Open(files.Path(pos.File))
	if ferr != nil {
		return
	}
	defer f.Close()
	b := bufio.NewReader(f)
	lineno := 1
	for {
		done := false
		line, rerr := b.ReadString('\n')
		if rerr != nil {
			done = true
		}
		if lineno == pos.Line {
			fmt.Fprintf(w, "%s", line)
			linelen := 0
			for _, v := range line {
				switch v {
				case '\t':
					linelen += 4
				case '\n':
					// nothing.
				default:
					linelen += 1
				}
			}
			for i := 0; i < linelen; i++ {
				if i+1 == pos.Col {
					fmt.Fprintf(w, "%c", '^')
				} else {
					fmt.Fprintf(w, "%c", ' ')
				}
			}
			fmt.Fprintln(w, "")
			return
		}
		lineno += 1
		if done {
			return
		}
	}
}
