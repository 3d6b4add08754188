// Package interp implements the tree-walking evaluator: the environment,
// standard library registry, and the RuntimeError taxonomy.
package interp

import (
	"io"
	"os"
	"strings"

	"github.com/hnkNkm/Lipona/internal/lipona/syntax"
	"github.com/hnkNkm/Lipona/internal/lipona/value"
)

// DefaultMaxLoopIterations and DefaultMaxCallDepth are the documented
// resource caps. Server configuration may raise them but must never go
// below these values, since InfiniteLoop and StackOverflow are part of the
// language's semantics rather than a debugging knob.
const (
	DefaultMaxLoopIterations = 10_000_000
	DefaultMaxCallDepth      = 1_000

	defaultMaxLoopIterations = DefaultMaxLoopIterations
	defaultMaxCallDepth      = DefaultMaxCallDepth
)

// Option configures an Evaluator at construction time. The resource-cap
// options set the cap to exactly the given value, lower or higher than the
// default; an Evaluator built without them uses the documented defaults.
// Keeping configured caps at or above the defaults is enforced by the
// server's config validation, not here.
type Option func(*Evaluator)

// WithStdout redirects toki's output. Defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(e *Evaluator) { e.stdout = w }
}

// WithMaxLoopIterations overrides the per-while-loop iteration cap.
func WithMaxLoopIterations(n int) Option {
	return func(e *Evaluator) { e.maxLoopIterations = n }
}

// WithMaxCallDepth overrides the call-depth cap.
func WithMaxCallDepth(n int) Option {
	return func(e *Evaluator) { e.maxCallDepth = n }
}

// Evaluator walks an AST, producing a runtime Value or a typed RuntimeError.
// It is not safe for concurrent use — spec.md rules out concurrency inside a
// single program execution.
type Evaluator struct {
	env    *Environment
	stdlib map[string]builtin
	stdout io.Writer

	callDepth         int
	maxCallDepth      int
	maxLoopIterations int
}

// New returns an Evaluator with a fresh global scope and the standard
// library registered.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		env:               NewEnvironment(),
		stdlib:            newStdlib(),
		stdout:            os.Stdout,
		maxCallDepth:      defaultMaxCallDepth,
		maxLoopIterations: defaultMaxLoopIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// controlSignal reports whether statement execution hit a return.
type controlSignal int

const (
	controlNone controlSignal = iota
	controlReturn
)

// Run executes a program to completion. A top-level return ends the program
// early with that value; otherwise the result is Nil, same as a function
// that falls off the end of its body.
func (e *Evaluator) Run(p *syntax.Program) (value.Value, error) {
	signal, v, err := e.execStmts(p.Body)
	if err != nil {
		return value.Value{}, err
	}
	if signal == controlReturn {
		return v, nil
	}
	return value.NewNil(), nil
}

// execStmts runs a sequence of statements in the current scope, without
// pushing a new one. Used both for the top-level program and for a
// function's body, whose scope is set up by the call protocol itself.
func (e *Evaluator) execStmts(stmts []syntax.Stmt) (controlSignal, value.Value, error) {
	for i := range stmts {
		signal, v, err := e.execStmt(&stmts[i])
		if err != nil {
			return controlNone, value.Value{}, err
		}
		if signal == controlReturn {
			return controlReturn, v, nil
		}
	}
	return controlNone, value.Value{}, nil
}

// execBlock runs a block in a fresh child scope, popping it on every exit
// path including an error.
func (e *Evaluator) execBlock(b syntax.Block) (controlSignal, value.Value, error) {
	e.env.PushScope()
	defer e.env.PopScope()
	return e.execStmts(b)
}

func (e *Evaluator) execStmt(s *syntax.Stmt) (controlSignal, value.Value, error) {
	switch s.Kind {
	case syntax.StmtAssign:
		v, err := e.eval(&s.Value)
		if err != nil {
			return controlNone, value.Value{}, err
		}
		e.env.Set(s.Target, v)
		return controlNone, value.Value{}, nil

	case syntax.StmtIf:
		cond, err := e.eval(&s.Cond)
		if err != nil {
			return controlNone, value.Value{}, err
		}
		if cond.Truthy() {
			return e.execBlock(s.Then)
		} else if s.HasElse {
			return e.execBlock(s.Else)
		}
		return controlNone, value.Value{}, nil

	case syntax.StmtWhile:
		iterations := 0
		for {
			cond, err := e.eval(&s.Cond)
			if err != nil {
				return controlNone, value.Value{}, err
			}
			if !cond.Truthy() {
				return controlNone, value.Value{}, nil
			}
			iterations++
			if iterations > e.maxLoopIterations {
				return controlNone, value.Value{}, infiniteLoop()
			}
			signal, v, err := e.execBlock(s.Body)
			if err != nil {
				return controlNone, value.Value{}, err
			}
			if signal == controlReturn {
				return controlReturn, v, nil
			}
		}

	case syntax.StmtFuncDef:
		e.env.Define(s.Target, value.NewFunction(s.Params, s.Body))
		return controlNone, value.Value{}, nil

	case syntax.StmtReturn:
		v, err := e.eval(&s.Value)
		if err != nil {
			return controlNone, value.Value{}, err
		}
		return controlReturn, v, nil

	case syntax.StmtExpr:
		if _, err := e.eval(&s.Value); err != nil {
			return controlNone, value.Value{}, err
		}
		return controlNone, value.Value{}, nil

	default:
		panic("unreachable: unknown statement kind")
	}
}

func (e *Evaluator) eval(expr *syntax.Expr) (value.Value, error) {
	switch expr.Kind {
	case syntax.ExprNumber:
		return value.NewNumber(expr.Number), nil

	case syntax.ExprBoolLit:
		return value.Bool(expr.Bool), nil

	case syntax.ExprTemplateString:
		return e.evalTemplateString(expr)

	case syntax.ExprVar:
		v, ok := e.env.Get(expr.Name)
		if !ok {
			return value.Value{}, undefinedVariable(expr.Name)
		}
		return v, nil

	case syntax.ExprNeg:
		v, err := e.eval(expr.Operand)
		if err != nil {
			return value.Value{}, err
		}
		if v.Kind != value.Number {
			return value.Value{}, typeError("nanpa", v.TypeName())
		}
		return value.NewNumber(-v.Num), nil

	case syntax.ExprBinary:
		return e.evalBinary(expr)

	case syntax.ExprCall:
		return e.evalCall(expr.Name, expr.Args)

	default:
		panic("unreachable: unknown expression kind")
	}
}

func (e *Evaluator) evalTemplateString(expr *syntax.Expr) (value.Value, error) {
	var sb strings.Builder
	for _, part := range expr.Parts {
		if !part.IsInterp {
			sb.WriteString(part.Literal)
			continue
		}
		v, err := e.eval(part.Interp)
		if err != nil {
			return value.Value{}, err
		}
		sb.WriteString(v.Display())
	}
	return value.NewString(sb.String()), nil
}

func (e *Evaluator) evalBinary(expr *syntax.Expr) (value.Value, error) {
	left, err := e.eval(expr.Left)
	if err != nil {
		return value.Value{}, err
	}
	right, err := e.eval(expr.Right)
	if err != nil {
		return value.Value{}, err
	}

	if expr.Op == syntax.Eq {
		return value.Bool(left.Equal(right)), nil
	}

	bothNumbers := left.Kind == value.Number && right.Kind == value.Number

	switch expr.Op {
	case syntax.Add:
		if bothNumbers {
			return value.NewNumber(left.Num + right.Num), nil
		}
		if left.Kind == value.String && right.Kind == value.String {
			return value.NewString(left.Str + right.Str), nil
		}
	case syntax.Sub:
		if bothNumbers {
			return value.NewNumber(left.Num - right.Num), nil
		}
	case syntax.Mul:
		if bothNumbers {
			return value.NewNumber(left.Num * right.Num), nil
		}
	case syntax.Div:
		if bothNumbers {
			if right.Num == 0 {
				return value.Value{}, divisionByZero()
			}
			return value.NewNumber(left.Num / right.Num), nil
		}
	case syntax.Gt:
		if bothNumbers {
			return value.Bool(left.Num > right.Num), nil
		}
	case syntax.Lt:
		if bothNumbers {
			return value.Bool(left.Num < right.Num), nil
		}
	case syntax.Ge:
		if bothNumbers {
			return value.Bool(left.Num >= right.Num), nil
		}
	case syntax.Le:
		if bothNumbers {
			return value.Bool(left.Num <= right.Num), nil
		}
	}

	return value.Value{}, typeError("compatible operand types", left.TypeName()+" and "+right.TypeName())
}

func (e *Evaluator) evalCall(name string, argExprs []syntax.Expr) (value.Value, error) {
	e.callDepth++
	defer func() { e.callDepth-- }()
	if e.callDepth > e.maxCallDepth {
		return value.Value{}, stackOverflow()
	}

	if bi, ok := e.stdlib[name]; ok {
		args, err := e.evalArgs(argExprs)
		if err != nil {
			return value.Value{}, err
		}
		if len(args) < bi.minArgs || (bi.maxArgs >= 0 && len(args) > bi.maxArgs) {
			expected := bi.minArgs
			if bi.maxArgs != bi.minArgs {
				expected = bi.maxArgs
			}
			return value.Value{}, wrongArity(name, expected, len(args))
		}
		return bi.call(e, args)
	}

	fnVal, ok := e.env.Get(name)
	if !ok {
		return value.Value{}, undefinedFunction(name)
	}
	if fnVal.Kind != value.Function {
		return value.Value{}, typeError("ilo", fnVal.TypeName())
	}
	fn := fnVal.Fn

	if len(fn.Params) != len(argExprs) {
		return value.Value{}, wrongArity(name, len(fn.Params), len(argExprs))
	}

	args, err := e.evalArgs(argExprs)
	if err != nil {
		return value.Value{}, err
	}

	saved := e.env.isolateForCall()
	defer e.env.restore(saved)

	e.env.PushScope()
	for i, p := range fn.Params {
		e.env.Define(p, args[i])
	}

	signal, v, err := e.execStmts(fn.Body)
	if err != nil {
		return value.Value{}, err
	}
	if signal == controlReturn {
		return v, nil
	}
	return value.NewNil(), nil
}

func (e *Evaluator) evalArgs(argExprs []syntax.Expr) ([]value.Value, error) {
	args := make([]value.Value, len(argExprs))
	for i := range argExprs {
		v, err := e.eval(&argExprs[i])
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}
