package expr

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokComma
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokIdent:
		return "identifier"
	case tokPlus:
		return `"+"`
	case tokMinus:
		return `"-"`
	case tokStar:
		return `"*"`
	case tokSlash:
		return `"/"`
	case tokLParen:
		return `"("`
	case tokRParen:
		return `")"`
	case tokComma:
		return `","`
	default:
		return "invalid token"
	}
}

// token is one lexical element of an expression. For strings, text
// holds the unquoted value.
type token struct {
	kind tokenKind
	text string
	rng  hcl.Range
}

// lex splits the expression source into tokens in one pass. Positions
// are 1-based lines and columns with byte offsets, matching hcl.Pos.
func lex(src string) ([]token, error) {
	var toks []token
	line, col := 1, 1

	pos := func(byteOffset int) hcl.Pos {
		return hcl.Pos{Line: line, Column: col, Byte: byteOffset}
	}

	i := 0
	for i < len(src) {
		start := pos(i)
		ch := src[i]

		switch {
		case ch == ' ' || ch == '\t' || ch == '\r':
			i++
			col++

		case ch == '\n':
			i++
			line++
			col = 1

		case ch >= '0' && ch <= '9':
			j := i
			for j < len(src) && src[j] >= '0' && src[j] <= '9' {
				j++
			}
			if j < len(src) && src[j] == '.' && j+1 < len(src) && src[j+1] >= '0' && src[j+1] <= '9' {
				j++
				for j < len(src) && src[j] >= '0' && src[j] <= '9' {
					j++
				}
			}
			col += j - i
			toks = append(toks, token{tokNumber, src[i:j], hcl.Range{Start: start, End: pos(j)}})
			i = j

		case ch == '"' || ch == '\'':
			quote := ch
			var sb strings.Builder
			j := i + 1
			col++
			for {
				if j >= len(src) || src[j] == '\n' {
					return nil, &ParseError{
						Detail: "unterminated string literal",
						Range:  hcl.Range{Start: start, End: pos(j)},
					}
				}
				if src[j] == quote {
					j++
					col++
					break
				}
				if src[j] == '\\' && j+1 < len(src) {
					j++
					col++
				}
				sb.WriteByte(src[j])
				j++
				col++
			}
			toks = append(toks, token{tokString, sb.String(), hcl.Range{Start: start, End: pos(j)}})
			i = j

		case isIdentStart(ch):
			j := i
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			col += j - i
			toks = append(toks, token{tokIdent, src[i:j], hcl.Range{Start: start, End: pos(j)}})
			i = j

		default:
			var kind tokenKind
			switch ch {
			case '+':
				kind = tokPlus
			case '-':
				kind = tokMinus
			case '*':
				kind = tokStar
			case '/':
				kind = tokSlash
			case '(':
				kind = tokLParen
			case ')':
				kind = tokRParen
			case ',':
				kind = tokComma
			default:
				return nil, &ParseError{
					Detail: fmt.Sprintf("unexpected character %q", string(ch)),
					Range:  hcl.Range{Start: start, End: hcl.Pos{Line: line, Column: col + 1, Byte: i + 1}},
				}
			}
			i++
			col++
			toks = append(toks, token{kind, string(ch), hcl.Range{Start: start, End: pos(i)}})
		}
	}

	toks = append(toks, token{tokEOF, "", hcl.Range{Start: pos(i), End: pos(i)}})
	return toks, nil
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
