package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// ErrDivisionByZero is wrapped inside an EvalError when a division's
// right-hand side evaluates to zero. Match with errors.Is.
var ErrDivisionByZero = errors.New("division by zero")

// ParseError reports syntactically invalid expression text, with the
// source range of the offending token.
type ParseError struct {
	Detail string
	Range  hcl.Range
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Range.Start.Line, e.Range.Start.Column, e.Detail)
}

// Diagnostics renders the error as ranged HCL diagnostics for hosts
// that present source-annotated messages.
func (e *ParseError) Diagnostics() hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Invalid expression",
		Detail:   e.Detail,
		Subject:  &e.Range,
	}}
}

// EvalError reports a runtime evaluation failure at a known source
// range, wrapping the underlying cause.
type EvalError struct {
	Range hcl.Range
	Err   error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluation failed at %d:%d: %v", e.Range.Start.Line, e.Range.Start.Column, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// RefKind says which namespace an unresolved reference failed in.
type RefKind int

const (
	RefVariable RefKind = iota
	RefPath
	RefNode
	RefParameter
)

func (k RefKind) String() string {
	switch k {
	case RefVariable:
		return "variable"
	case RefPath:
		return "path"
	case RefNode:
		return "node"
	case RefParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// UnresolvedReferenceError reports a variable, path, node, or parameter
// lookup that found nothing.
type UnresolvedReferenceError struct {
	Kind  RefKind
	Ref   string
	Range hcl.Range
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved %s reference %q", e.Kind, e.Ref)
}

// UnknownFunctionError reports a call to a function name that is not
// registered with the evaluator.
type UnknownFunctionError struct {
	Name  string
	Range hcl.Range
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("call to unknown function %q", e.Name)
}

// TypeCoercionError reports a value whose type does not match what its
// consumption site demands. Target names the parameter when the
// mismatch is against a declared parameter type.
type TypeCoercionError struct {
	Got    cty.Type
	Want   cty.Type
	Target string
	Range  hcl.Range
}

func (e *TypeCoercionError) Error() string {
	msg := fmt.Sprintf("cannot use %s value where %s is required", e.Got.FriendlyName(), e.Want.FriendlyName())
	if e.Target != "" {
		msg += " for " + e.Target
	}
	return msg
}

// ExpressionCycleError reports a parameter whose evaluation transitively
// requires itself. Chain lists the in-flight parameters in evaluation
// order, ending with the repeated one.
type ExpressionCycleError struct {
	Chain []string
}

func (e *ExpressionCycleError) Error() string {
	return "expression cycle detected: " + strings.Join(e.Chain, " -> ")
}
