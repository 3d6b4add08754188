package astcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnkNkm/Lipona/internal/lipona/syntax"
)

func testProgram() *syntax.Program {
	return &syntax.Program{
		Body: syntax.Block{
			{
				Kind:   syntax.StmtAssign,
				Target: "x",
				Value: syntax.Expr{
					Kind: syntax.ExprBinary,
					Left: &syntax.Expr{Kind: syntax.ExprNumber, Number: 1},
					Op:   syntax.Add,
					Right: &syntax.Expr{
						Kind: syntax.ExprBinary,
						Left: &syntax.Expr{Kind: syntax.ExprNumber, Number: 2},
						Op:   syntax.Mul,
						Right: &syntax.Expr{
							Kind: syntax.ExprCall,
							Name: "suli_sama",
							Args: []syntax.Expr{
								{Kind: syntax.ExprVar, Name: "x"},
								{Kind: syntax.ExprBoolLit, Bool: true},
							},
						},
					},
				},
			},
			{
				Kind: syntax.StmtIf,
				Cond: syntax.Expr{Kind: syntax.ExprBoolLit, Bool: true},
				Then: syntax.Block{
					{Kind: syntax.StmtReturn, Value: syntax.Expr{
						Kind: syntax.ExprTemplateString,
						Parts: []syntax.StringPart{
							{Literal: "toki "},
							{IsInterp: true, Interp: &syntax.Expr{Kind: syntax.ExprVar, Name: "x"}},
						},
					}},
				},
				HasElse: true,
				Else: syntax.Block{
					{Kind: syntax.StmtExpr, Value: syntax.Expr{Kind: syntax.ExprNeg, Operand: &syntax.Expr{Kind: syntax.ExprNumber, Number: 5}}},
				},
			},
		},
	}
}

func Test_SaveThenLoad_roundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.lipona.astcache")
	want := testProgram()

	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func Test_Load_missingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.astcache"))
	assert.Error(t, err)
}

func Test_Load_truncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.astcache")
	require.NoError(t, Save(path, testProgram()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-1], 0o644))

	_, err = Load(path)
	assert.Error(t, err)
}
