// Package parser drives the token stream produced by lex into a syntax.AST
// using hand-rolled recursive descent over an operator-precedence chain.
// Statement dispatch needs only a few tokens of lookahead, so the grammar's
// keyword vocabulary never requires true backtracking.
package parser

import (
	"fmt"
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/hnkNkm/Lipona/internal/lipona/lex"
	"github.com/hnkNkm/Lipona/internal/lipona/syntax"
)

// Parse lexes and parses src into a Program.
func Parse(src string) (*syntax.Program, error) {
	toks, err := lex.Lex(src)
	if err != nil {
		return nil, asParseError(err)
	}
	p := &parser{toks: toks}
	body, err := p.parseStmts(false)
	if err != nil {
		return nil, err
	}
	if !p.atEOF() {
		return nil, p.errorfAt(p.peek(), "unexpected %s", p.peek().Kind)
	}
	return &syntax.Program{Body: body}, nil
}

// asParseError adapts a lex.Error (only ever raised for an unterminated
// string) into the parser's own error type, so callers only ever see one
// error shape out of Parse.
func asParseError(err error) error {
	if le, ok := err.(*lex.Error); ok {
		return &ParseError{Message: le.Message, Line: le.Line, Col: le.Col, SourceLine: le.SourceLine}
	}
	return err
}

type parser struct {
	toks []lex.Token
	pos  int
}

func (p *parser) peek() lex.Token  { return p.toks[p.pos] }
func (p *parser) atEOF() bool      { return p.peek().Kind == lex.EOF }
func (p *parser) advance() lex.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errorfAt(t lex.Token, format string, args ...any) error {
	return &ParseError{
		Message:    fmt.Sprintf(format, args...),
		Line:       t.Line,
		Col:        t.Col,
		SourceLine: t.SourceLine,
	}
}

// isKeyword reports whether the current token is an identifier spelled
// exactly word — the grammar's keywords are just reserved-in-position
// words, never a distinct lexical class.
func (p *parser) isKeyword(word string) bool {
	t := p.peek()
	return t.Kind == lex.Ident && t.Value == word
}

func (p *parser) isKeywordAt(offset int, word string) bool {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return false
	}
	t := p.toks[idx]
	return t.Kind == lex.Ident && t.Value == word
}

func (p *parser) expectKeyword(word string) error {
	if !p.isKeyword(word) {
		return p.errorfAt(p.peek(), "expected %q, got %s", word, describe(p.peek()))
	}
	p.advance()
	return nil
}

func (p *parser) expectKind(k lex.Kind) (lex.Token, error) {
	if p.peek().Kind != k {
		return lex.Token{}, p.errorfAt(p.peek(), "expected %s, got %s", k, describe(p.peek()))
	}
	return p.advance(), nil
}

func describe(t lex.Token) string {
	if t.Kind == lex.Ident {
		return "identifier " + strconv.Quote(t.Value)
	}
	return t.Kind.String()
}

// parseStmts parses statements until EOF or, when untilPini is true, until
// the next token is the closing "pini" keyword (which it does not consume).
func (p *parser) parseStmts(untilPini bool) (syntax.Block, error) {
	var body syntax.Block
	for {
		if p.atEOF() {
			return body, nil
		}
		if untilPini && p.isKeyword("pini") {
			return body, nil
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
}

func (p *parser) parseStmt() (syntax.Stmt, error) {
	switch {
	case p.isKeyword("ilo"):
		return p.parseFuncDef()
	case p.isKeyword("wile"):
		return p.parseWhile()
	case p.isKeyword("pana"):
		return p.parseReturn()
	case p.isAssignLookahead():
		return p.parseAssign()
	default:
		return p.parseIfOrExprStmt()
	}
}

// isAssignLookahead recognizes the unambiguous "IDENT li jo e" prefix of an
// assignment statement without committing to a parse.
func (p *parser) isAssignLookahead() bool {
	t := p.peek()
	return t.Kind == lex.Ident &&
		p.isKeywordAt(1, "li") &&
		p.isKeywordAt(2, "jo") &&
		p.isKeywordAt(3, "e")
}

func (p *parser) parseAssign() (syntax.Stmt, error) {
	name := p.advance().Value
	if err := p.expectKeyword("li"); err != nil {
		return syntax.Stmt{}, err
	}
	if err := p.expectKeyword("jo"); err != nil {
		return syntax.Stmt{}, err
	}
	if err := p.expectKeyword("e"); err != nil {
		return syntax.Stmt{}, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return syntax.Stmt{}, err
	}
	return syntax.Stmt{Kind: syntax.StmtAssign, Target: name, Value: val}, nil
}

// parseIfOrExprStmt parses an expression; if it's immediately followed by
// "la open" it's an if-statement, otherwise it's a bare expression statement.
func (p *parser) parseIfOrExprStmt() (syntax.Stmt, error) {
	cond, err := p.parseExpr()
	if err != nil {
		return syntax.Stmt{}, err
	}
	if !p.isKeyword("la") {
		return syntax.Stmt{Kind: syntax.StmtExpr, Value: cond}, nil
	}
	p.advance() // la
	if err := p.expectKeyword("open"); err != nil {
		return syntax.Stmt{}, err
	}
	thenBlock, err := p.parseStmts(true)
	if err != nil {
		return syntax.Stmt{}, err
	}
	if err := p.expectKeyword("pini"); err != nil {
		return syntax.Stmt{}, err
	}

	stmt := syntax.Stmt{Kind: syntax.StmtIf, Cond: cond, Then: thenBlock}
	if p.isKeyword("taso") {
		p.advance()
		if err := p.expectKeyword("open"); err != nil {
			return syntax.Stmt{}, err
		}
		elseBlock, err := p.parseStmts(true)
		if err != nil {
			return syntax.Stmt{}, err
		}
		if err := p.expectKeyword("pini"); err != nil {
			return syntax.Stmt{}, err
		}
		stmt.Else = elseBlock
		stmt.HasElse = true
	}
	return stmt, nil
}

func (p *parser) parseWhile() (syntax.Stmt, error) {
	p.advance() // wile
	cond, err := p.parseExpr()
	if err != nil {
		return syntax.Stmt{}, err
	}
	if err := p.expectKeyword("la"); err != nil {
		return syntax.Stmt{}, err
	}
	if err := p.expectKeyword("open"); err != nil {
		return syntax.Stmt{}, err
	}
	body, err := p.parseStmts(true)
	if err != nil {
		return syntax.Stmt{}, err
	}
	if err := p.expectKeyword("pini"); err != nil {
		return syntax.Stmt{}, err
	}
	return syntax.Stmt{Kind: syntax.StmtWhile, Cond: cond, Body: body}, nil
}

func (p *parser) parseFuncDef() (syntax.Stmt, error) {
	p.advance() // ilo
	nameTok, err := p.expectKind(lex.Ident)
	if err != nil {
		return syntax.Stmt{}, err
	}
	if err := p.expectKeyword("li"); err != nil {
		return syntax.Stmt{}, err
	}
	if err := p.expectKeyword("pali"); err != nil {
		return syntax.Stmt{}, err
	}
	if err := p.expectKeyword("e"); err != nil {
		return syntax.Stmt{}, err
	}
	if _, err := p.expectKind(lex.LParen); err != nil {
		return syntax.Stmt{}, err
	}
	var params []string
	if p.peek().Kind != lex.RParen {
		for {
			tok, err := p.expectKind(lex.Ident)
			if err != nil {
				return syntax.Stmt{}, err
			}
			params = append(params, tok.Value)
			if p.peek().Kind != lex.Comma {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expectKind(lex.RParen); err != nil {
		return syntax.Stmt{}, err
	}
	if err := p.expectKeyword("la"); err != nil {
		return syntax.Stmt{}, err
	}
	if err := p.expectKeyword("open"); err != nil {
		return syntax.Stmt{}, err
	}
	body, err := p.parseStmts(true)
	if err != nil {
		return syntax.Stmt{}, err
	}
	if err := p.expectKeyword("pini"); err != nil {
		return syntax.Stmt{}, err
	}
	return syntax.Stmt{Kind: syntax.StmtFuncDef, Target: nameTok.Value, Params: params, Body: body}, nil
}

func (p *parser) parseReturn() (syntax.Stmt, error) {
	p.advance() // pana
	if err := p.expectKeyword("e"); err != nil {
		return syntax.Stmt{}, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return syntax.Stmt{}, err
	}
	return syntax.Stmt{Kind: syntax.StmtReturn, Value: val}, nil
}

// parseExpr enters the precedence chain at its lowest level, comparison.
func (p *parser) parseExpr() (syntax.Expr, error) {
	return p.parseComparison()
}

var compareOps = map[string]syntax.BinOp{
	"suli":      syntax.Gt,
	"lili":      syntax.Lt,
	"suli_sama": syntax.Ge,
	"lili_sama": syntax.Le,
	"sama":      syntax.Eq,
}

// parseComparison implements the grammar's strictly non-chaining comparison
// level: at most one comparison operator may appear in an expression.
func (p *parser) parseComparison() (syntax.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return syntax.Expr{}, err
	}
	t := p.peek()
	if t.Kind != lex.Ident {
		return left, nil
	}
	op, ok := compareOps[t.Value]
	if !ok {
		return left, nil
	}
	p.advance()
	right, err := p.parseAdditive()
	if err != nil {
		return syntax.Expr{}, err
	}
	expr := syntax.Expr{Kind: syntax.ExprBinary, Left: &left, Op: op, Right: &right}

	if nt := p.peek(); nt.Kind == lex.Ident {
		if _, stillCompare := compareOps[nt.Value]; stillCompare {
			return syntax.Expr{}, p.errorfAt(nt, "comparison operators do not chain")
		}
	}
	return expr, nil
}

func (p *parser) parseAdditive() (syntax.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return syntax.Expr{}, err
	}
	for {
		var op syntax.BinOp
		switch p.peek().Kind {
		case lex.Plus:
			op = syntax.Add
		case lex.Minus:
			op = syntax.Sub
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return syntax.Expr{}, err
		}
		prev := left
		left = syntax.Expr{Kind: syntax.ExprBinary, Left: &prev, Op: op, Right: &right}
	}
}

func (p *parser) parseMultiplicative() (syntax.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return syntax.Expr{}, err
	}
	for {
		var op syntax.BinOp
		switch p.peek().Kind {
		case lex.Star:
			op = syntax.Mul
		case lex.Slash:
			op = syntax.Div
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return syntax.Expr{}, err
		}
		prev := left
		left = syntax.Expr{Kind: syntax.ExprBinary, Left: &prev, Op: op, Right: &right}
	}
}

func (p *parser) parseUnary() (syntax.Expr, error) {
	if p.peek().Kind == lex.Minus {
		p.advance()
		operand, err := p.parsePrimary()
		if err != nil {
			return syntax.Expr{}, err
		}
		return syntax.Expr{Kind: syntax.ExprNeg, Operand: &operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (syntax.Expr, error) {
	t := p.peek()
	switch t.Kind {
	case lex.Number:
		p.advance()
		n, err := strconv.ParseFloat(t.Value, 64)
		if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			return syntax.Expr{}, p.errorfAt(t, "invalid numeric literal %q", t.Value)
		}
		return syntax.Expr{Kind: syntax.ExprNumber, Number: n}, nil

	case lex.String:
		p.advance()
		return p.parseTemplateString(t)

	case lex.LParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return syntax.Expr{}, err
		}
		if _, err := p.expectKind(lex.RParen); err != nil {
			return syntax.Expr{}, err
		}
		return inner, nil

	case lex.Ident:
		if r, _ := utf8.DecodeRuneInString(t.Value); r != '_' && !unicode.IsLetter(r) {
			return syntax.Expr{}, p.errorfAt(t, "unexpected character %q", t.Value)
		}
		switch t.Value {
		case "lon":
			p.advance()
			return syntax.Expr{Kind: syntax.ExprBoolLit, Bool: true}, nil
		case "ala":
			p.advance()
			return syntax.Expr{Kind: syntax.ExprBoolLit, Bool: false}, nil
		}
		if p.isKeywordAt(1, "e") && p.pos+2 < len(p.toks) && p.toks[p.pos+2].Kind == lex.LParen {
			return p.parseCall()
		}
		p.advance()
		return syntax.Expr{Kind: syntax.ExprVar, Name: t.Value}, nil

	default:
		return syntax.Expr{}, p.errorfAt(t, "unexpected %s", describe(t))
	}
}

func (p *parser) parseCall() (syntax.Expr, error) {
	name := p.advance().Value
	p.advance() // e
	if _, err := p.expectKind(lex.LParen); err != nil {
		return syntax.Expr{}, err
	}
	var args []syntax.Expr
	if p.peek().Kind != lex.RParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return syntax.Expr{}, err
			}
			args = append(args, arg)
			if p.peek().Kind != lex.Comma {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expectKind(lex.RParen); err != nil {
		return syntax.Expr{}, err
	}
	return syntax.Expr{Kind: syntax.ExprCall, Name: name, Args: args}, nil
}
