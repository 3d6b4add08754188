package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Lex_kindSequence(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []Kind
	}{
		{name: "empty", input: "", expect: []Kind{EOF}},
		{name: "number", input: "1234", expect: []Kind{Number, EOF}},
		{name: "decimal number", input: "12.5", expect: []Kind{Number, EOF}},
		{name: "identifier", input: "nasin", expect: []Kind{Ident, EOF}},
		{name: "identifier with underscore", input: "suli_sama", expect: []Kind{Ident, EOF}},
		{name: "punctuation", input: "+-*/(),", expect: []Kind{
			Plus, Minus, Star, Slash, LParen, RParen, Comma, EOF,
		}},
		{name: "assignment skeleton", input: "x li jo e 5", expect: []Kind{
			Ident, Ident, Ident, Ident, Number, EOF,
		}},
		{name: "string literal", input: `"hello"`, expect: []Kind{String, EOF}},
		{name: "string with interpolation brace kept raw", input: `"hi {name}"`, expect: []Kind{String, EOF}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := Lex(tc.input)
			require.NoError(t, err)

			kinds := make([]Kind, len(toks))
			for i, tok := range toks {
				kinds[i] = tok.Kind
			}
			assert.Equal(t, tc.expect, kinds)
		})
	}
}

func Test_Lex_stringPreservesEscapesAndBraces(t *testing.T) {
	toks, err := Lex(`"a\nb {1 + 2} c\""`)
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, `a\nb {1 + 2} c\"`, toks[0].Value)
}

func Test_Lex_unterminatedString(t *testing.T) {
	_, err := Lex(`"never closed`)
	require.Error(t, err)

	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, 1, lexErr.Line)
	assert.Equal(t, 1, lexErr.Col)
}

func Test_Lex_numberDoesNotConsumeTrailingDotWithoutDigit(t *testing.T) {
	toks, err := Lex("1.")
	require.NoError(t, err)
	require.Len(t, toks, 3) // Number("1"), unknown ".", EOF
	assert.Equal(t, Number, toks[0].Kind)
	assert.Equal(t, "1", toks[0].Value)
}

func Test_Lex_tracksLineAndColumn(t *testing.T) {
	toks, err := Lex("x li\njo e 1")
	require.NoError(t, err)

	require.True(t, len(toks) >= 5)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 1, toks[0].Col)
	// "jo" begins line 2
	joTok := toks[2]
	assert.Equal(t, "jo", joTok.Value)
	assert.Equal(t, 2, joTok.Line)
	assert.Equal(t, 1, joTok.Col)
}
