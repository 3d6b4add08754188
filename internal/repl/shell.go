package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/hnkNkm/Lipona/internal/lipona/value"
)

// Runner executes a fully-buffered chunk of source and reports its result.
// It is satisfied by a thin wrapper around lipona.Run so the shell doesn't
// need to know about interpreter construction.
type Runner interface {
	Run(source string) (value.Value, error)
}

// Shell drives an interactive read-eval-print loop. Each "open" keyword
// opens a block and each "pini" closes one; input is only handed to the
// parser once every opened block has been closed, so a multi-line if/while/
// function definition can be typed across several prompts.
type Shell struct {
	reader Runner
	in     LineReader
	out    io.Writer
}

// NewShell builds a Shell that reads lines from in and executes complete
// chunks of source against runner, writing REPL-level output to out.
func NewShell(in LineReader, runner Runner, out io.Writer) *Shell {
	return &Shell{reader: runner, in: in, out: out}
}

// Run drives the loop until the input stream ends.
func (s *Shell) Run() error {
	defer s.in.Close()

	var buf strings.Builder
	depth := 0

	for {
		line, err := s.in.ReadLine()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		depth += countWord(line, "open")
		depth -= countWord(line, "pini")
		buf.WriteString(line)
		buf.WriteByte('\n')

		if depth > 0 {
			continue
		}
		if depth < 0 {
			depth = 0
		}

		chunk := strings.TrimSpace(buf.String())
		buf.Reset()
		if chunk == "" {
			continue
		}

		v, err := s.reader.Run(chunk)
		if err != nil {
			fmt.Fprintf(s.out, "%s\n", err.Error())
			continue
		}
		fmt.Fprintf(s.out, "%s\n", v.Display())
	}
}

func countWord(line, word string) int {
	count := 0
	for _, tok := range strings.Fields(line) {
		if tok == word {
			count++
		}
	}
	return count
}
