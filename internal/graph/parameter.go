package graph

import "github.com/zclconf/go-cty/cty"

// Parameter is a named, typed attribute of a node. Its effective value
// comes either from a literal or from an expression string that the
// expression engine resolves on demand.
type Parameter struct {
	// Name identifies the parameter on its node.
	Name string
	// Type is the declared value type. Evaluated results are converted
	// to this type; a failed conversion is an error, never a silent cast.
	Type cty.Type
	// Value holds the literal value. It is cty.NilVal while Expr is set.
	Value cty.Value
	// Expr holds the expression source, or "" for literal parameters.
	Expr string
}

// NewLiteral creates a literal-valued parameter.
func NewLiteral(name string, typ cty.Type, val cty.Value) *Parameter {
	return &Parameter{Name: name, Type: typ, Value: val}
}

// NewExpression creates an expression-valued parameter. The source is
// not parsed here; the evaluator parses it on every evaluation pass.
func NewExpression(name string, typ cty.Type, src string) *Parameter {
	return &Parameter{Name: name, Type: typ, Expr: src}
}

// IsExpression reports whether the parameter's value comes from an
// expression rather than a literal.
func (p *Parameter) IsExpression() bool {
	return p.Expr != ""
}
