// Package repl contains the line-reading machinery for the interactive
// lipona shell: a readline-backed reader for a real terminal and a plain
// buffered reader for piped input.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// LineReader reads one line of source at a time from whatever input the
// shell was started against.
type LineReader interface {
	ReadLine() (string, error)
	Close() error
}

// directReader reads raw lines from any io.Reader, used when stdin isn't a
// terminal (piped input, redirected files).
type directReader struct {
	r *bufio.Reader
}

// NewDirectReader wraps r for line-at-a-time reading without readline's
// editing or history features.
func NewDirectReader(r io.Reader) LineReader {
	return &directReader{r: bufio.NewReader(r)}
}

func (d *directReader) ReadLine() (string, error) {
	line, err := d.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (d *directReader) Close() error { return nil }

// interactiveReader reads from a real terminal via GNU-readline-style line
// editing and history.
type interactiveReader struct {
	rl *readline.Instance
}

// NewInteractiveReader starts a readline session with the given prompt.
func NewInteractiveReader(prompt string) (LineReader, error) {
	rl, err := readline.NewEx(&readline.Config{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}
	return &interactiveReader{rl: rl}, nil
}

func (i *interactiveReader) ReadLine() (string, error) {
	return i.rl.Readline()
}

func (i *interactiveReader) Close() error { return i.rl.Close() }
