package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	cfront "github.com/hkoba/cfront"
	"github.com/hkoba/cfront/parse"
)

func printVersion() {
	fmt.Println("cfront version 0.1")
}

func printUsage() {
	printVersion()
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cfront [FLAGS] FILE.c")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  CFRONTDEBUG=true enables extended error messages for debugging the front end.")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

// stringList collects a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func parseDefines(raw stringList) []cfront.Predef {
	var out []cfront.Predef
	for _, d := range raw {
		name, val, _ := strings.Cut(d, "=")
		out = append(out, cfront.Predef{Name: name, Value: val})
	}
	return out
}

func main() {
	flag.Usage = printUsage
	tokenizeOnly := flag.Bool("T", false, "Print tokens after lexing (for debugging).")
	preprocessOnly := flag.Bool("P", false, "Print tokens after preprocessing (for debugging).")
	version := flag.Bool("version", false, "Print version info and exit.")
	outputPath := flag.String("o", "-", "File to write output to, - for stdout.")
	match := flag.String("match", "", "Only report declarations whose source path matches this glob (doublestar syntax, e.g. 'include/**/*.h').")
	var includeDirs stringList
	var rawDefines stringList
	flag.Var(&includeDirs, "I", "Add a directory to the include search path (repeatable).")
	flag.Var(&rawDefines, "D", "Predefine a macro, NAME or NAME=VALUE (repeatable).")
	flag.Parse()

	if *version {
		printVersion()
		return
	}
	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Bad number of args, please specify a single source file.\n")
		os.Exit(1)
	}

	input := flag.Args()[0]
	var output io.WriteCloser
	var err error

	if *outputPath == "-" {
		output = os.Stdout
	} else {
		output, err = os.Create(*outputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open output file %s\n", err)
			os.Exit(1)
		}
		defer output.Close()
	}

	defines := parseDefines(rawDefines)
	switch {
	case *tokenizeOnly:
		if err := cfront.TokenizeFile(input, output); err != nil {
			cfront.ReportError(os.Stderr, err, nil)
			os.Exit(1)
		}
	case *preprocessOnly:
		if err := cfront.PreprocessFile(input, includeDirs, defines, output); err != nil {
			cfront.ReportError(os.Stderr, err, nil)
			os.Exit(1)
		}
	default:
		if err := runParse(input, includeDirs, defines, *match, output); err != nil {
			os.Exit(1)
		}
	}
}

func runParse(input string, searchPaths []string, defines []cfront.Predef, match string, out io.Writer) error {
	pp, err := cfront.NewPreprocessor(input, searchPaths, defines)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	walkErr := parse.ParseEach(pp, func(n parse.Node) bool {
		pos := n.GetPos()
		path := pp.Files().Path(pos.File)
		if match != "" {
			ok, merr := doublestar.Match(match, path)
			if merr != nil || !ok {
				return true
			}
		}
		fmt.Fprintf(out, "%s:%d:%d %s %s\n", path, pos.Line, pos.Col, declKind(n), parse.DeclName(n))
		return true
	})
	if walkErr != nil {
		cfront.ReportError(os.Stderr, walkErr, pp.Files())
		return walkErr
	}
	return nil
}

func declKind(n parse.Node) string {
	switch n.(type) {
	case *parse.FuncDef:
		return "funcdef"
	default:
		return "decl"
	}
}
