package parser

import (
	"strings"

	"github.com/hnkNkm/Lipona/internal/lipona/lex"
	"github.com/hnkNkm/Lipona/internal/lipona/syntax"
)

// parseTemplateString lowers a raw string token's inner text into literal
// fragments and interpolation expressions. The lexer preserves escapes and
// interpolation braces untouched in tok.Value; all of that processing
// happens here, one level up, where a brace span can be recursively re-lexed
// and re-parsed as a full expression.
func (p *parser) parseTemplateString(tok lex.Token) (syntax.Expr, error) {
	runes := []rune(tok.Value)
	var parts []syntax.StringPart
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, syntax.StringPart{Literal: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(runes) {
		c := runes[i]

		if c == '\\' && i+1 < len(runes) {
			switch runes[i+1] {
			case 'n':
				lit.WriteByte('\n')
			case 't':
				lit.WriteByte('\t')
			case 'r':
				lit.WriteByte('\r')
			case '\\':
				lit.WriteByte('\\')
			case '"':
				lit.WriteByte('"')
			default:
				lit.WriteRune('\\')
				lit.WriteRune(runes[i+1])
			}
			i += 2
			continue
		}

		if c == '{' {
			flush()
			depth := 1
			start := i + 1
			j := start
			for j < len(runes) && depth > 0 {
				switch runes[j] {
				case '{':
					depth++
				case '}':
					depth--
					if depth == 0 {
						goto closed
					}
				}
				j++
			}
		closed:
			if depth != 0 {
				return syntax.Expr{}, p.errorfAt(tok, "unterminated interpolation expression")
			}
			exprSrc := string(runes[start:j])
			inner, err := p.parseInterpolation(exprSrc, tok)
			if err != nil {
				return syntax.Expr{}, err
			}
			parts = append(parts, syntax.StringPart{IsInterp: true, Interp: &inner})
			i = j + 1
			continue
		}

		lit.WriteRune(c)
		i++
	}
	flush()

	return syntax.Expr{Kind: syntax.ExprTemplateString, Parts: parts}, nil
}

// parseInterpolation re-lexes and parses a {...} span as a standalone
// expression. Errors are reported against the enclosing string token's
// position, since the sub-lexer starts its own line/col count over at 1.
func (p *parser) parseInterpolation(src string, owner lex.Token) (syntax.Expr, error) {
	toks, err := lex.Lex(src)
	if err != nil {
		return syntax.Expr{}, p.errorfAt(owner, "invalid interpolation expression: %s", err.Error())
	}
	sub := &parser{toks: toks}
	expr, err := sub.parseExpr()
	if err != nil {
		return syntax.Expr{}, p.errorfAt(owner, "invalid interpolation expression: %s", err.Error())
	}
	if !sub.atEOF() {
		return syntax.Expr{}, p.errorfAt(owner, "unexpected trailing content in interpolation expression")
	}
	return expr, nil
}
