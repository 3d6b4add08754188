// Package lipona is the public entry point for parsing and running Lipona
// source: Parse turns text into a Program, Run executes one against a fresh
// interpreter.
package lipona

import (
	"github.com/hnkNkm/Lipona/internal/lipona/interp"
	"github.com/hnkNkm/Lipona/internal/lipona/parser"
	"github.com/hnkNkm/Lipona/internal/lipona/syntax"
	"github.com/hnkNkm/Lipona/internal/lipona/value"
)

// Program is a parsed, ready-to-run Lipona source unit.
type Program = syntax.Program

// Value is a Lipona runtime value.
type Value = value.Value

// RuntimeError is the error returned by Run for a failure during execution,
// distinct from the parse-time error Parse returns.
type RuntimeError = interp.RuntimeError

// Option configures the interpreter a Run call uses.
type Option = interp.Option

// WithStdout redirects the output of the toki builtin.
var WithStdout = interp.WithStdout

// WithMaxLoopIterations overrides the default while-loop iteration cap.
var WithMaxLoopIterations = interp.WithMaxLoopIterations

// WithMaxCallDepth overrides the default call-depth cap.
var WithMaxCallDepth = interp.WithMaxCallDepth

// Parse turns source text into a Program, or returns a *parser.ParseError
// describing the first problem encountered.
func Parse(text string) (*Program, error) {
	return parser.Parse(text)
}

// Run executes a previously parsed Program to completion and returns its
// result value, or a *RuntimeError describing the failure.
func Run(p *Program, opts ...Option) (Value, error) {
	ev := interp.New(opts...)
	return ev.Run(p)
}
