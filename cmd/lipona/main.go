/*
Lipona runs Lipona source from a file, from a -e expression, or interactively
from stdin.

Usage:

	lipona [flags] [FILE]

The flags are:

	-v, --version
		Give the current version of Lipona and then exit.

	-e, --eval SOURCE
		Evaluate the given source directly instead of reading a file.

	-d, --direct
		Force reading directly from stdin instead of going through GNU
		readline, even if launched in a tty.

	--dump-ast FILE
		Parse FILE, write its AST to a cache file next to it, and exit
		without running it.

Running a file for which a cache from --dump-ast exists and is not older
than the file itself skips parsing and runs the cached AST directly.

With no FILE and no -e, lipona starts an interactive shell: each complete
statement (or block, once every "open" has a matching "pini") is parsed and
run as soon as it's entered, and its result is printed.
*/
package main

import (
	"fmt"
	"os"

	"github.com/dekarrin/rosed"
	"github.com/spf13/pflag"

	"github.com/hnkNkm/Lipona"
	"github.com/hnkNkm/Lipona/internal/astcache"
	"github.com/hnkNkm/Lipona/internal/lipona/parser"
	"github.com/hnkNkm/Lipona/internal/repl"
	"github.com/hnkNkm/Lipona/internal/version"
)

const consoleOutputWidth = 80

const (
	exitSuccess = iota
	exitParseError
	exitRuntimeError
	exitInitError
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of Lipona and then exit")
	flagEval    = pflag.StringP("eval", "e", "", "Evaluate the given source directly instead of reading a file")
	flagDirect  = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of using GNU readline")
	flagDumpAST = pflag.String("dump-ast", "", "Parse FILE, cache its AST alongside it, and exit")
)

func main() {
	os.Exit(run())
}

func run() int {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return exitSuccess
	}

	if *flagDumpAST != "" {
		return dumpAST(*flagDumpAST)
	}

	if *flagEval != "" {
		return runSource(*flagEval)
	}

	args := pflag.Args()
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, wrap("Too many arguments. Do -h for help."))
		return exitInitError
	}
	if len(args) == 1 {
		return runFile(args[0])
	}

	return runInteractive()
}

func runSource(src string) int {
	prog, err := lipona.Parse(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, wrap(parseErrorText(err)))
		return exitParseError
	}
	return execProgram(prog)
}

// runFile runs the program in path, reusing a cached AST dumped by
// --dump-ast instead of re-parsing when one exists and is at least as new
// as the source file it was dumped from.
func runFile(path string) int {
	if prog, ok := loadCachedAST(path); ok {
		return execProgram(prog)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, wrap(fmt.Sprintf("cannot read %s: %s", path, err.Error())))
		return exitInitError
	}
	prog, err := lipona.Parse(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, wrap(parseErrorText(err)))
		return exitParseError
	}
	return execProgram(prog)
}

// loadCachedAST returns the AST previously dumped for path via --dump-ast,
// if the sidecar cache file exists and is not older than path itself.
func loadCachedAST(path string) (*lipona.Program, bool) {
	srcInfo, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	cachePath := path + ".astcache"
	cacheInfo, err := os.Stat(cachePath)
	if err != nil || cacheInfo.ModTime().Before(srcInfo.ModTime()) {
		return nil, false
	}
	prog, err := astcache.Load(cachePath)
	if err != nil {
		return nil, false
	}
	return prog, true
}

func execProgram(prog *lipona.Program) int {
	v, err := lipona.Run(prog)
	if err != nil {
		fmt.Fprintln(os.Stderr, wrap(err.Error()))
		return exitRuntimeError
	}
	fmt.Println(v.Display())
	return exitSuccess
}

func runInteractive() int {
	var in repl.LineReader
	var err error

	useReadline := !*flagDirect && isTerminal(os.Stdin)
	if useReadline {
		in, err = repl.NewInteractiveReader("lipona> ")
	} else {
		in = repl.NewDirectReader(os.Stdin)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, wrap(fmt.Sprintf("initializing input reader: %s", err.Error())))
		return exitInitError
	}

	shell := repl.NewShell(in, runnerFunc(func(source string) (lipona.Value, error) {
		prog, err := lipona.Parse(source)
		if err != nil {
			return lipona.Value{}, err
		}
		return lipona.Run(prog)
	}), os.Stdout)

	if err := shell.Run(); err != nil {
		fmt.Fprintln(os.Stderr, wrap(err.Error()))
		return exitRuntimeError
	}
	return exitSuccess
}

func dumpAST(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, wrap(fmt.Sprintf("cannot read %s: %s", path, err.Error())))
		return exitInitError
	}
	prog, err := lipona.Parse(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, wrap(parseErrorText(err)))
		return exitParseError
	}
	cachePath := path + ".astcache"
	if err := astcache.Save(cachePath, prog); err != nil {
		fmt.Fprintln(os.Stderr, wrap(err.Error()))
		return exitInitError
	}
	fmt.Printf("wrote %s\n", cachePath)
	return exitSuccess
}

func parseErrorText(err error) string {
	if pe, ok := err.(*parser.ParseError); ok {
		return pe.FullMessage()
	}
	return err.Error()
}

func wrap(s string) string {
	return rosed.Edit(s).Wrap(consoleOutputWidth).String()
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// runnerFunc adapts a plain function to repl.Runner.
type runnerFunc func(source string) (lipona.Value, error)

func (f runnerFunc) Run(source string) (lipona.Value, error) { return f(source) }
