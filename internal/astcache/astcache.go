// Package astcache persists a parsed Program to disk so a CLI invocation can
// skip re-parsing a source file it has already validated. The AST is a flat
// tagged-struct tree (see internal/lipona/syntax) specifically so it can be
// handed straight to REZI's reflection-based binary encoding with no custom
// marshal code.
package astcache

import (
	"fmt"
	"os"

	"github.com/dekarrin/rezi"

	"github.com/hnkNkm/Lipona/internal/lipona/syntax"
)

// Save encodes prog and writes it to path, overwriting any existing file.
func Save(path string, prog *syntax.Program) error {
	data := rezi.EncBinary(prog)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write ast cache: %w", err)
	}
	return nil
}

// Load reads a Program previously written by Save. It returns an error if
// the file is missing, unreadable, or not a complete REZI encoding.
func Load(path string) (*syntax.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ast cache: %w", err)
	}

	prog := &syntax.Program{}
	n, err := rezi.DecBinary(data, prog)
	if err != nil {
		return nil, fmt.Errorf("decode ast cache: %w", err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("decode ast cache: consumed %d/%d bytes", n, len(data))
	}
	return prog, nil
}
