package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnkNkm/Lipona/internal/lipona/syntax"
)

func Test_Parse_assignment(t *testing.T) {
	prog, err := Parse(`x li jo e 5`)
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)

	stmt := prog.Body[0]
	assert.Equal(t, syntax.StmtAssign, stmt.Kind)
	assert.Equal(t, "x", stmt.Target)
	assert.Equal(t, syntax.ExprNumber, stmt.Value.Kind)
	assert.Equal(t, 5.0, stmt.Value.Number)
}

func Test_Parse_ifWithElse(t *testing.T) {
	src := `
x suli 1 la open
  y li jo e 1
pini taso open
  y li jo e 2
pini
`
	prog, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)

	stmt := prog.Body[0]
	assert.Equal(t, syntax.StmtIf, stmt.Kind)
	assert.Equal(t, syntax.ExprBinary, stmt.Cond.Kind)
	assert.Equal(t, syntax.Gt, stmt.Cond.Op)
	require.Len(t, stmt.Then, 1)
	require.True(t, stmt.HasElse)
	require.Len(t, stmt.Else, 1)
}

func Test_Parse_whileLoop(t *testing.T) {
	src := `
wile i lili 10 la open
  i li jo e i + 1
pini
`
	prog, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	assert.Equal(t, syntax.StmtWhile, prog.Body[0].Kind)
}

func Test_Parse_funcDefAndCall(t *testing.T) {
	src := `
ilo wan li pali e (a, b) la open
  pana e a + b
pini
wan e (1, 2)
`
	prog, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Body, 2)

	def := prog.Body[0]
	assert.Equal(t, syntax.StmtFuncDef, def.Kind)
	assert.Equal(t, "wan", def.Target)
	assert.Equal(t, []string{"a", "b"}, def.Params)
	require.Len(t, def.Body, 1)
	assert.Equal(t, syntax.StmtReturn, def.Body[0].Kind)

	call := prog.Body[1]
	assert.Equal(t, syntax.StmtExpr, call.Kind)
	assert.Equal(t, syntax.ExprCall, call.Value.Kind)
	assert.Equal(t, "wan", call.Value.Name)
	require.Len(t, call.Value.Args, 2)
}

func Test_Parse_callWithNoArgs(t *testing.T) {
	prog, err := Parse(`nasin_sin e ()`)
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	assert.Equal(t, syntax.ExprCall, prog.Body[0].Value.Kind)
	assert.Empty(t, prog.Body[0].Value.Args)
}

func Test_Parse_precedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3)
	prog, err := Parse(`x li jo e 1 + 2 * 3`)
	require.NoError(t, err)

	expr := prog.Body[0].Value
	require.Equal(t, syntax.Add, expr.Op)
	require.Equal(t, syntax.ExprNumber, expr.Left.Kind)
	require.Equal(t, syntax.ExprBinary, expr.Right.Kind)
	assert.Equal(t, syntax.Mul, expr.Right.Op)
}

func Test_Parse_unaryNegation(t *testing.T) {
	prog, err := Parse(`x li jo e -5`)
	require.NoError(t, err)

	expr := prog.Body[0].Value
	require.Equal(t, syntax.ExprNeg, expr.Kind)
	assert.Equal(t, 5.0, expr.Operand.Number)
}

func Test_Parse_comparisonChainingIsRejected(t *testing.T) {
	_, err := Parse(`x li jo e 1 sama 2 sama 3`)
	require.Error(t, err)
}

func Test_Parse_booleanLiterals(t *testing.T) {
	prog, err := Parse(`x li jo e lon`)
	require.NoError(t, err)
	expr := prog.Body[0].Value
	assert.Equal(t, syntax.ExprBoolLit, expr.Kind)
	assert.True(t, expr.Bool)
}

func Test_Parse_templateStringInterpolation(t *testing.T) {
	prog, err := Parse(`x li jo e "hi {1 + 2}!"`)
	require.NoError(t, err)

	expr := prog.Body[0].Value
	require.Equal(t, syntax.ExprTemplateString, expr.Kind)
	require.Len(t, expr.Parts, 3)
	assert.Equal(t, "hi ", expr.Parts[0].Literal)
	require.True(t, expr.Parts[1].IsInterp)
	assert.Equal(t, syntax.Add, expr.Parts[1].Interp.Op)
	assert.Equal(t, "!", expr.Parts[2].Literal)
}

func Test_Parse_nonFiniteNumberRejected(t *testing.T) {
	// the lexer never produces "inf"/"nan" as a Number token since those
	// aren't digit sequences, but a digit sequence too long for float64
	// overflows to +Inf in strconv.ParseFloat and must be rejected.
	_, err := Parse(`x li jo e ` + strings.Repeat("9", 400))
	require.Error(t, err)
}

func Test_Parse_unexpectedTokenReportsPosition(t *testing.T) {
	_, err := Parse(`x li jo e`)
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
}
