package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// parse turns expression source into an AST in a single recursive
// descent. Operator precedence is the conventional one: `*` and `/`
// bind tighter than `+` and `-`, equal precedence associates left to
// right, and parentheses override both.
func parse(src string) (exprNode, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	root, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &ParseError{
			Detail: fmt.Sprintf("unexpected %s after expression", tok.kind),
			Range:  tok.rng,
		}
	}
	return root, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.peek()
	if tok.kind != kind {
		return token{}, &ParseError{
			Detail: fmt.Sprintf("expected %s, found %s", kind, tok.kind),
			Range:  tok.rng,
		}
	}
	return p.next(), nil
}

func (p *parser) parseAdditive() (exprNode, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokPlus && tok.kind != tokMinus {
			return left, nil
		}
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: tok.kind, opRng: tok.rng, lhs: left, rhs: right}
	}
}

func (p *parser) parseMultiplicative() (exprNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokStar && tok.kind != tokSlash {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: tok.kind, opRng: tok.rng, lhs: left, rhs: right}
	}
}

func (p *parser) parseUnary() (exprNode, error) {
	tok := p.peek()
	if tok.kind == tokMinus {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{operand: operand, rng: hcl.RangeBetween(tok.rng, operand.Range())}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (exprNode, error) {
	tok := p.peek()
	switch tok.kind {
	case tokNumber:
		p.next()
		val, err := cty.ParseNumberVal(tok.text)
		if err != nil {
			// Unreachable for lexer-produced digit runs.
			return nil, &ParseError{Detail: fmt.Sprintf("invalid number literal %q", tok.text), Range: tok.rng}
		}
		return &numberLit{val: val, rng: tok.rng}, nil

	case tokString:
		p.next()
		return &stringLit{val: tok.text, rng: tok.rng}, nil

	case tokIdent:
		p.next()
		if p.peek().kind == tokLParen {
			return p.parseCall(tok)
		}
		return &varRef{name: tok.text, rng: tok.rng}, nil

	case tokLParen:
		p.next()
		inner, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, &ParseError{
			Detail: fmt.Sprintf("expected expression, found %s", tok.kind),
			Range:  tok.rng,
		}
	}
}

// parseCall parses the argument list of `name(...)`; the name token has
// already been consumed.
func (p *parser) parseCall(name token) (exprNode, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}

	var args []exprNode
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}

	closing, err := p.expect(tokRParen)
	if err != nil {
		return nil, err
	}

	return &callExpr{
		name:    name.text,
		nameRng: name.rng,
		args:    args,
		rng:     hcl.RangeBetween(name.rng, closing.rng),
	}, nil
}
