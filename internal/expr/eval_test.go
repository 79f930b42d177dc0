package expr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/vk/nodegraph/internal/graph"
	"github.com/vk/nodegraph/internal/testutil"
)

// evalFixture builds the standard evaluation test bed: a noise node
// with literal parameters and a wave node whose freq derives from the
// noise amplitude.
func evalFixture(t *testing.T) (*graph.Model, *Evaluator) {
	t.Helper()
	m := graph.NewModel()

	noise := testutil.AddNode(t, m, "/obj/noise")
	testutil.SetLiteral(t, noise, "amplitude", cty.Number, cty.NumberFloatVal(2.5))
	testutil.SetLiteral(t, noise, "label", cty.String, cty.StringVal("turbulence"))
	testutil.SetLiteral(t, noise, "enabled", cty.Bool, cty.True)

	wave := testutil.AddNode(t, m, "/obj/wave")
	testutil.SetExpression(t, wave, "freq", cty.Number, `chf("../noise.amplitude") * 2`)

	return m, New(m)
}

func numVal(t *testing.T, v cty.Value) float64 {
	t.Helper()
	require.Equal(t, cty.Number, v.Type())
	f, _ := v.AsBigFloat().Float64()
	return f
}

func TestEvaluate_Arithmetic(t *testing.T) {
	_, ev := evalFixture(t)
	ctx := context.Background()

	testCases := []struct {
		src  string
		want float64
	}{
		{src: "2 + 3 * 4", want: 14},
		{src: "(2 + 3) * 4", want: 20},
		{src: "8 - 4 - 2", want: 2},
		{src: "10 / 4", want: 2.5},
		{src: "-(2 + 3) * 2", want: -10},
		{src: "--4", want: 4},
		{src: "0.1 + 0.2", want: 0.3},
	}

	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			v, err := ev.Evaluate(ctx, tc.src, "/obj/noise", nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, numVal(t, v))
		})
	}
}

func TestEvaluate_DivisionByZero(t *testing.T) {
	_, ev := evalFixture(t)

	_, err := ev.Evaluate(context.Background(), "10 / 0", "/obj/noise", nil)
	require.ErrorIs(t, err, ErrDivisionByZero)

	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, 1, evalErr.Range.Start.Line)
	assert.Equal(t, 4, evalErr.Range.Start.Column, "error points at the operator")
}

func TestEvaluate_StringLiteral(t *testing.T) {
	_, ev := evalFixture(t)
	v, err := ev.Evaluate(context.Background(), `"hello"`, "/obj/noise", nil)
	require.NoError(t, err)
	assert.True(t, v.RawEquals(cty.StringVal("hello")))
}

func TestEvaluate_Variables(t *testing.T) {
	_, ev := evalFixture(t)
	ctx := context.Background()

	ectx := NewContext()
	ectx.SetVariable("frame", cty.NumberIntVal(24))

	v, err := ev.Evaluate(ctx, "frame / 2", "/obj/noise", ectx)
	require.NoError(t, err)
	assert.Equal(t, 12.0, numVal(t, v))

	_, err = ev.Evaluate(ctx, "missing + 1", "/obj/noise", ectx)
	var refErr *UnresolvedReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, RefVariable, refErr.Kind)
	assert.Equal(t, "missing", refErr.Ref)
}

func TestEvaluate_Builtins(t *testing.T) {
	_, ev := evalFixture(t)
	ctx := context.Background()

	testCases := []struct {
		src  string
		want float64
	}{
		{src: "min(3, 7)", want: 3},
		{src: "max(1, 2, 3)", want: 3},
		{src: "abs(-4)", want: 4},
		{src: "floor(2.9)", want: 2},
		{src: "ceil(2.1)", want: 3},
		{src: "round(2.5)", want: 3},
		{src: `strlen("abcd")`, want: 4},
		{src: "sum(1, 2, 3.5)", want: 6.5},
	}

	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			v, err := ev.Evaluate(ctx, tc.src, "/obj/noise", nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, numVal(t, v))
		})
	}
}

func TestEvaluate_UnknownFunction(t *testing.T) {
	_, ev := evalFixture(t)
	_, err := ev.Evaluate(context.Background(), "nope(1)", "/obj/noise", nil)
	var fnErr *UnknownFunctionError
	require.ErrorAs(t, err, &fnErr)
	assert.Equal(t, "nope", fnErr.Name)
}

func TestEvaluate_RegisteredFunction(t *testing.T) {
	_, ev := evalFixture(t)
	ev.RegisterFunction("double", function.New(&function.Spec{
		Params: []function.Parameter{{Name: "num", Type: cty.Number}},
		Type:   function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return args[0].Multiply(cty.NumberIntVal(2)), nil
		},
	}))

	v, err := ev.Evaluate(context.Background(), "double(21)", "/obj/noise", nil)
	require.NoError(t, err)
	assert.Equal(t, 42.0, numVal(t, v))
}

func TestEvaluate_UnknownNode(t *testing.T) {
	_, ev := evalFixture(t)
	_, err := ev.Evaluate(context.Background(), "1 + 1", "/obj/ghost", nil)
	var refErr *UnresolvedReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, RefNode, refErr.Kind)
}

func TestEvaluate_References(t *testing.T) {
	_, ev := evalFixture(t)
	ctx := context.Background()

	t.Run("chf resolves a sibling parameter", func(t *testing.T) {
		v, err := ev.Evaluate(ctx, `chf("../noise.amplitude") * 2`, "/obj/wave", nil)
		require.NoError(t, err)
		assert.Equal(t, 5.0, numVal(t, v))
	})

	t.Run("absolute reference", func(t *testing.T) {
		v, err := ev.Evaluate(ctx, `chf("/obj/noise.amplitude")`, "/obj/wave", nil)
		require.NoError(t, err)
		assert.Equal(t, 2.5, numVal(t, v))
	})

	t.Run("bare name addresses own node", func(t *testing.T) {
		v, err := ev.Evaluate(ctx, `chf("amplitude") + 0.5`, "/obj/noise", nil)
		require.NoError(t, err)
		assert.Equal(t, 3.0, numVal(t, v))
	})

	t.Run("ch keeps the parameter type", func(t *testing.T) {
		v, err := ev.Evaluate(ctx, `ch("../noise.label")`, "/obj/wave", nil)
		require.NoError(t, err)
		assert.True(t, v.RawEquals(cty.StringVal("turbulence")))
	})

	t.Run("chb resolves a bool", func(t *testing.T) {
		v, err := ev.Evaluate(ctx, `chb("../noise.enabled")`, "/obj/wave", nil)
		require.NoError(t, err)
		assert.True(t, v.True())
	})

	t.Run("chf on a non-numeric string fails", func(t *testing.T) {
		_, err := ev.Evaluate(ctx, `chf("../noise.label")`, "/obj/wave", nil)
		var coercErr *TypeCoercionError
		require.ErrorAs(t, err, &coercErr)
		assert.Equal(t, cty.Number, coercErr.Want)
	})

	t.Run("unknown target node", func(t *testing.T) {
		_, err := ev.Evaluate(ctx, `chf("../ghost.amp")`, "/obj/wave", nil)
		var refErr *UnresolvedReferenceError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, RefNode, refErr.Kind)
		assert.Equal(t, "/obj/ghost", refErr.Ref)
	})

	t.Run("unknown target parameter", func(t *testing.T) {
		_, err := ev.Evaluate(ctx, `chf("../noise.ghost")`, "/obj/wave", nil)
		var refErr *UnresolvedReferenceError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, RefParameter, refErr.Kind)
	})

	t.Run("reference without parameter name", func(t *testing.T) {
		_, err := ev.Evaluate(ctx, `chf("../noise")`, "/obj/wave", nil)
		var refErr *UnresolvedReferenceError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, RefPath, refErr.Kind)
	})
}

func TestEvaluate_ReferenceCache(t *testing.T) {
	_, ev := evalFixture(t)
	ctx := context.Background()

	ectx := NewContext()
	ectx.SetReference("/obj/noise.amplitude", cty.NumberIntVal(99))

	v, err := ev.Evaluate(ctx, `chf("../noise.amplitude")`, "/obj/wave", ectx)
	require.NoError(t, err)
	assert.Equal(t, 99.0, numVal(t, v), "a cached reference wins over the live value")

	ectx.Clear()
	v, err = ev.Evaluate(ctx, `chf("../noise.amplitude")`, "/obj/wave", ectx)
	require.NoError(t, err)
	assert.Equal(t, 2.5, numVal(t, v))

	cached, ok := ectx.Reference("/obj/noise.amplitude")
	require.True(t, ok, "a live resolution populates the cache")
	assert.Equal(t, 2.5, numVal(t, cached))
}

func TestEvaluate_Idempotent(t *testing.T) {
	_, ev := evalFixture(t)
	ctx := context.Background()

	first, err := ev.Evaluate(ctx, `chf("../noise.amplitude") * 2 + 1`, "/obj/wave", nil)
	require.NoError(t, err)
	second, err := ev.Evaluate(ctx, `chf("../noise.amplitude") * 2 + 1`, "/obj/wave", nil)
	require.NoError(t, err)
	assert.True(t, first.RawEquals(second))
}

func TestEvaluateParameter(t *testing.T) {
	m, ev := evalFixture(t)
	ctx := context.Background()

	t.Run("literal parameter", func(t *testing.T) {
		v, err := ev.EvaluateParameter(ctx, "/obj/noise", "amplitude", nil)
		require.NoError(t, err)
		assert.Equal(t, 2.5, numVal(t, v))
	})

	t.Run("expression parameter", func(t *testing.T) {
		v, err := ev.EvaluateParameter(ctx, "/obj/wave", "freq", nil)
		require.NoError(t, err)
		assert.Equal(t, 5.0, numVal(t, v))
	})

	t.Run("unknown parameter", func(t *testing.T) {
		_, err := ev.EvaluateParameter(ctx, "/obj/noise", "ghost", nil)
		var refErr *UnresolvedReferenceError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, RefParameter, refErr.Kind)
	})

	t.Run("result converts to the declared type", func(t *testing.T) {
		wave, ok := m.NodeByID("/obj/wave")
		require.True(t, ok)
		testutil.SetExpression(t, wave, "bad", cty.Number, `chs("../noise.label")`)

		_, err := ev.EvaluateParameter(ctx, "/obj/wave", "bad", nil)
		var coercErr *TypeCoercionError
		require.ErrorAs(t, err, &coercErr)
		assert.Equal(t, "/obj/wave.bad", coercErr.Target)
	})

	t.Run("literal converts to the declared type", func(t *testing.T) {
		noise, ok := m.NodeByID("/obj/noise")
		require.True(t, ok)
		testutil.SetLiteral(t, noise, "odd", cty.Number, cty.True)

		_, err := ev.EvaluateParameter(ctx, "/obj/noise", "odd", nil)
		var coercErr *TypeCoercionError
		require.ErrorAs(t, err, &coercErr)
	})
}

func TestEvaluate_ExpressionCycles(t *testing.T) {
	ctx := context.Background()

	t.Run("self cycle", func(t *testing.T) {
		m := graph.NewModel()
		n := testutil.AddNode(t, m, "/obj/x")
		testutil.SetExpression(t, n, "a", cty.Number, `chf("a") + 1`)

		_, err := New(m).EvaluateParameter(ctx, "/obj/x", "a", nil)
		var cycErr *ExpressionCycleError
		require.ErrorAs(t, err, &cycErr)
		assert.Equal(t, []string{"/obj/x.a", "/obj/x.a"}, cycErr.Chain)
	})

	t.Run("mutual cycle", func(t *testing.T) {
		m := graph.NewModel()
		n := testutil.AddNode(t, m, "/obj/x")
		testutil.SetExpression(t, n, "a", cty.Number, `chf("b") + 1`)
		testutil.SetExpression(t, n, "b", cty.Number, `chf("a") + 1`)

		_, err := New(m).EvaluateParameter(ctx, "/obj/x", "a", nil)
		var cycErr *ExpressionCycleError
		require.ErrorAs(t, err, &cycErr)
		assert.Equal(t, []string{"/obj/x.a", "/obj/x.b", "/obj/x.a"}, cycErr.Chain)
	})

	t.Run("cross-node cycle", func(t *testing.T) {
		m := graph.NewModel()
		x := testutil.AddNode(t, m, "/obj/x")
		y := testutil.AddNode(t, m, "/obj/y")
		testutil.SetExpression(t, x, "a", cty.Number, `chf("../y.b")`)
		testutil.SetExpression(t, y, "b", cty.Number, `chf("../x.a")`)

		_, err := New(m).EvaluateParameter(ctx, "/obj/x", "a", nil)
		var cycErr *ExpressionCycleError
		require.ErrorAs(t, err, &cycErr)
	})

	t.Run("diamond dependency is not a cycle", func(t *testing.T) {
		m := graph.NewModel()
		n := testutil.AddNode(t, m, "/obj/x")
		testutil.SetLiteral(t, n, "base", cty.Number, cty.NumberIntVal(3))
		testutil.SetExpression(t, n, "left", cty.Number, `chf("base") * 2`)
		testutil.SetExpression(t, n, "right", cty.Number, `chf("base") + 1`)
		testutil.SetExpression(t, n, "top", cty.Number, `chf("left") + chf("right")`)

		v, err := New(m).EvaluateParameter(ctx, "/obj/x", "top", nil)
		require.NoError(t, err)
		assert.Equal(t, 10.0, numVal(t, v))
	})
}

func TestEvaluate_ChainedReferences(t *testing.T) {
	m := graph.NewModel()
	a := testutil.AddNode(t, m, "/obj/a")
	b := testutil.AddNode(t, m, "/obj/b")
	c := testutil.AddNode(t, m, "/obj/c")
	testutil.SetLiteral(t, a, "v", cty.Number, cty.NumberIntVal(2))
	testutil.SetExpression(t, b, "v", cty.Number, `chf("../a.v") * 3`)
	testutil.SetExpression(t, c, "v", cty.Number, `chf("../b.v") * 7`)

	v, err := New(m).EvaluateParameter(context.Background(), "/obj/c", "v", nil)
	require.NoError(t, err)
	assert.Equal(t, 42.0, numVal(t, v))
}
