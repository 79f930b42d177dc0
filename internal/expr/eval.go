package expr

import (
	"context"
	"errors"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/vk/nodegraph/internal/graph"
	"github.com/vk/nodegraph/internal/nodepath"
)

// Evaluator evaluates parameter expressions against a graph model. The
// model and the function table are injected at construction; there is
// no process-wide default instance.
type Evaluator struct {
	model *graph.Model
	funcs map[string]function.Function
}

// New creates an evaluator over the given model with the builtin
// function table installed.
func New(model *graph.Model) *Evaluator {
	return &Evaluator{model: model, funcs: builtins()}
}

// RegisterFunction adds a callable to the function namespace. The
// parser never changes: any `name(arg, ...)` call dispatches by name
// against this table. Each function carries its own fixed parameter
// spec and return-type contract. The `ch` family names are reserved
// and cannot be overridden.
func (ev *Evaluator) RegisterFunction(name string, fn function.Function) {
	ev.funcs[name] = fn
}

// Evaluate parses and evaluates one expression in the scope of the
// requesting node. A nil ectx gets a fresh, empty Context for the pass.
func (ev *Evaluator) Evaluate(ctx context.Context, src, nodeID string, ectx *Context) (cty.Value, error) {
	n, ok := ev.model.NodeByID(nodeID)
	if !ok {
		return cty.NilVal, &UnresolvedReferenceError{Kind: RefNode, Ref: nodeID}
	}
	return ev.newPass(ectx).evaluate(ctx, src, n)
}

// EvaluateParameter computes the effective value of a named parameter
// on a node: the literal for literal parameters, otherwise the result
// of evaluating its expression, converted to the parameter's declared
// type in either case.
func (ev *Evaluator) EvaluateParameter(ctx context.Context, nodeID, param string, ectx *Context) (cty.Value, error) {
	n, ok := ev.model.NodeByID(nodeID)
	if !ok {
		return cty.NilVal, &UnresolvedReferenceError{Kind: RefNode, Ref: nodeID}
	}
	return ev.newPass(ectx).parameter(ctx, n, param)
}

// pass is the state of one evaluation pass: the caller's context and
// the set of parameters currently being evaluated on the call stack,
// used to detect expression cycles.
type pass struct {
	ev       *Evaluator
	ectx     *Context
	inFlight map[string]struct{}
	chain    []string
}

func (ev *Evaluator) newPass(ectx *Context) *pass {
	if ectx == nil {
		ectx = NewContext()
	}
	return &pass{ev: ev, ectx: ectx, inFlight: make(map[string]struct{})}
}

// evaluate parses src and walks the tree in the scope of node n.
func (p *pass) evaluate(ctx context.Context, src string, n *graph.Node) (cty.Value, error) {
	root, err := parse(src)
	if err != nil {
		return cty.NilVal, err
	}
	ctxlog.FromContext(ctx).Debug("evaluating expression", "node", n.ID(), "expr", src)
	f := &frame{pass: p, node: n}
	return f.eval(ctx, root)
}

// parameter resolves a parameter's effective value, recursing into
// expression-valued parameters. The in-flight set turns re-entrancy
// into ExpressionCycleError.
func (p *pass) parameter(ctx context.Context, n *graph.Node, name string) (cty.Value, error) {
	key := n.Path().String() + "." + name

	param, ok := n.Parameter(name)
	if !ok {
		return cty.NilVal, &UnresolvedReferenceError{Kind: RefParameter, Ref: key}
	}

	if _, busy := p.inFlight[key]; busy {
		chain := append(append([]string(nil), p.chain...), key)
		return cty.NilVal, &ExpressionCycleError{Chain: chain}
	}

	if !param.IsExpression() {
		out, err := convert.Convert(param.Value, param.Type)
		if err != nil {
			return cty.NilVal, &TypeCoercionError{Got: param.Value.Type(), Want: param.Type, Target: key}
		}
		return out, nil
	}

	p.inFlight[key] = struct{}{}
	p.chain = append(p.chain, key)
	defer func() {
		delete(p.inFlight, key)
		p.chain = p.chain[:len(p.chain)-1]
	}()

	v, err := p.evaluate(ctx, param.Expr, n)
	if err != nil {
		return cty.NilVal, err
	}
	out, err := convert.Convert(v, param.Type)
	if err != nil {
		return cty.NilVal, &TypeCoercionError{Got: v.Type(), Want: param.Type, Target: key}
	}
	return out, nil
}

// frame is the scope of a single expression: the node it belongs to and
// the function table built for it. Reference functions close over the
// frame, so the table is rebuilt per frame rather than shared.
type frame struct {
	pass  *pass
	node  *graph.Node
	funcs map[string]function.Function
}

func (f *frame) eval(ctx context.Context, e exprNode) (cty.Value, error) {
	switch e := e.(type) {
	case *numberLit:
		return e.val, nil

	case *stringLit:
		return cty.StringVal(e.val), nil

	case *varRef:
		if v, ok := f.pass.ectx.Variable(e.name); ok {
			return v, nil
		}
		return cty.NilVal, &UnresolvedReferenceError{Kind: RefVariable, Ref: e.name, Range: e.rng}

	case *unaryExpr:
		v, err := f.eval(ctx, e.operand)
		if err != nil {
			return cty.NilVal, err
		}
		n, err := toNumber(v, e.operand.Range())
		if err != nil {
			return cty.NilVal, err
		}
		return n.Negate(), nil

	case *binaryExpr:
		return f.evalBinary(ctx, e)

	case *callExpr:
		return f.evalCall(ctx, e)

	default:
		// Unreachable: the parser produces no other node kinds.
		return cty.NilVal, &EvalError{Range: e.Range(), Err: errors.New("unknown expression node")}
	}
}

func (f *frame) evalBinary(ctx context.Context, e *binaryExpr) (cty.Value, error) {
	lv, err := f.eval(ctx, e.lhs)
	if err != nil {
		return cty.NilVal, err
	}
	rv, err := f.eval(ctx, e.rhs)
	if err != nil {
		return cty.NilVal, err
	}

	ln, err := toNumber(lv, e.lhs.Range())
	if err != nil {
		return cty.NilVal, err
	}
	rn, err := toNumber(rv, e.rhs.Range())
	if err != nil {
		return cty.NilVal, err
	}

	switch e.op {
	case tokPlus:
		return ln.Add(rn), nil
	case tokMinus:
		return ln.Subtract(rn), nil
	case tokStar:
		return ln.Multiply(rn), nil
	case tokSlash:
		if rn.RawEquals(cty.Zero) {
			return cty.NilVal, &EvalError{Range: e.opRng, Err: ErrDivisionByZero}
		}
		return ln.Divide(rn), nil
	default:
		// Unreachable: the parser only emits the four operators above.
		return cty.NilVal, &EvalError{Range: e.opRng, Err: errors.New("unknown operator")}
	}
}

func (f *frame) evalCall(ctx context.Context, e *callExpr) (cty.Value, error) {
	fn, ok := f.lookupFunc(ctx, e.name)
	if !ok {
		return cty.NilVal, &UnknownFunctionError{Name: e.name, Range: e.nameRng}
	}

	args := make([]cty.Value, len(e.args))
	for i, argNode := range e.args {
		v, err := f.eval(ctx, argNode)
		if err != nil {
			return cty.NilVal, err
		}
		args[i] = v
	}

	out, err := fn.Call(args)
	if err != nil {
		if isTypedEvalError(err) {
			return cty.NilVal, err
		}
		return cty.NilVal, &EvalError{Range: e.rng, Err: err}
	}
	return out, nil
}

// lookupFunc resolves a function name against the registered table plus
// the per-frame reference functions, building the merged table on first
// use.
func (f *frame) lookupFunc(ctx context.Context, name string) (function.Function, bool) {
	if f.funcs == nil {
		f.funcs = make(map[string]function.Function, len(f.pass.ev.funcs)+4)
		for n, fn := range f.pass.ev.funcs {
			f.funcs[n] = fn
		}
		for n, fn := range f.refFuncs(ctx) {
			f.funcs[n] = fn
		}
	}
	fn, ok := f.funcs[name]
	return fn, ok
}

// refFuncs builds the local-parameter reference functions for this
// frame: ch returns the target parameter's value as-is, chf/chs/chb
// additionally require a number, string, or bool.
func (f *frame) refFuncs(ctx context.Context) map[string]function.Function {
	refParam := []function.Parameter{{Name: "ref", Type: cty.String}}

	ch := function.New(&function.Spec{
		Params: refParam,
		Type: func(args []cty.Value) (cty.Type, error) {
			return cty.DynamicPseudoType, nil
		},
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return f.resolveRef(ctx, args[0].AsString())
		},
	})

	typed := func(want cty.Type) function.Function {
		return function.New(&function.Spec{
			Params: refParam,
			Type:   function.StaticReturnType(want),
			Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
				v, err := f.resolveRef(ctx, args[0].AsString())
				if err != nil {
					return cty.NilVal, err
				}
				out, convErr := convert.Convert(v, want)
				if convErr != nil {
					return cty.NilVal, &TypeCoercionError{Got: v.Type(), Want: want, Target: args[0].AsString()}
				}
				return out, nil
			},
		})
	}

	return map[string]function.Function{
		"ch":  ch,
		"chf": typed(cty.Number),
		"chs": typed(cty.String),
		"chb": typed(cty.Bool),
	}
}

// resolveRef chases a parameter reference: context cache first, then a
// live lookup against the model, caching the resolved value for the
// rest of the pass.
func (f *frame) resolveRef(ctx context.Context, ref string) (cty.Value, error) {
	nodeRef, paramName, err := nodepath.SplitParam(ref)
	if err != nil {
		return cty.NilVal, &UnresolvedReferenceError{Kind: RefPath, Ref: ref}
	}

	targetPath := f.node.Path()
	if nodeRef != "" {
		targetPath, err = nodepath.Resolve(f.node.Path(), nodeRef)
		if err != nil {
			return cty.NilVal, &UnresolvedReferenceError{Kind: RefPath, Ref: ref}
		}
	}

	key := targetPath.String() + "." + paramName
	if v, ok := f.pass.ectx.Reference(key); ok {
		ctxlog.FromContext(ctx).Debug("reference cache hit", "ref", key)
		return v, nil
	}

	target, ok := f.pass.ev.model.NodeByPath(targetPath)
	if !ok {
		return cty.NilVal, &UnresolvedReferenceError{Kind: RefNode, Ref: targetPath.String()}
	}

	v, err := f.pass.parameter(ctx, target, paramName)
	if err != nil {
		return cty.NilVal, err
	}
	f.pass.ectx.SetReference(key, v)
	return v, nil
}

// toNumber converts an operand to cty.Number for arithmetic.
func toNumber(v cty.Value, rng hcl.Range) (cty.Value, error) {
	out, err := convert.Convert(v, cty.Number)
	if err != nil {
		return cty.NilVal, &TypeCoercionError{Got: v.Type(), Want: cty.Number, Range: rng}
	}
	return out, nil
}

// isTypedEvalError reports whether err already carries one of this
// package's error kinds, so function-call plumbing does not re-wrap it.
func isTypedEvalError(err error) bool {
	var (
		parseErr *ParseError
		evalErr  *EvalError
		refErr   *UnresolvedReferenceError
		fnErr    *UnknownFunctionError
		coercErr *TypeCoercionError
		cycErr   *ExpressionCycleError
	)
	return errors.As(err, &parseErr) ||
		errors.As(err, &evalErr) ||
		errors.As(err, &refErr) ||
		errors.As(err, &fnErr) ||
		errors.As(err, &coercErr) ||
		errors.As(err, &cycErr)
}
