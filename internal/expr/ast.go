package expr

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// exprNode is one node of the parsed expression tree. Every node keeps
// the source range it was parsed from so evaluation failures point at
// the right spot.
type exprNode interface {
	Range() hcl.Range
}

// numberLit is a numeric literal, already parsed into a cty.Number.
type numberLit struct {
	val cty.Value
	rng hcl.Range
}

func (n *numberLit) Range() hcl.Range { return n.rng }

// stringLit is a quoted string literal.
type stringLit struct {
	val string
	rng hcl.Range
}

func (n *stringLit) Range() hcl.Range { return n.rng }

// varRef is a bare identifier, resolved against the pass Context's
// variable namespace.
type varRef struct {
	name string
	rng  hcl.Range
}

func (n *varRef) Range() hcl.Range { return n.rng }

// callExpr is a function call `name(arg, ...)`.
type callExpr struct {
	name    string
	nameRng hcl.Range
	args    []exprNode
	rng     hcl.Range
}

func (n *callExpr) Range() hcl.Range { return n.rng }

// unaryExpr is a negation `-operand`.
type unaryExpr struct {
	operand exprNode
	rng     hcl.Range
}

func (n *unaryExpr) Range() hcl.Range { return n.rng }

// binaryExpr is an arithmetic operation between two sub-expressions.
type binaryExpr struct {
	op    tokenKind
	opRng hcl.Range
	lhs   exprNode
	rhs   exprNode
}

func (n *binaryExpr) Range() hcl.Range {
	return hcl.RangeBetween(n.lhs.Range(), n.rhs.Range())
}
