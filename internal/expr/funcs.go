package expr

import (
	"math"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// roundFunc rounds a number to the nearest integer, halves away from
// zero. cty's stdlib has floor and ceiling but no round.
var roundFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "num", Type: cty.Number},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		f, _ := args[0].AsBigFloat().Float64()
		return cty.NumberFloatVal(math.Round(f)), nil
	},
})

// sumFunc adds any number of numeric arguments. sum() is zero. cty's
// stdlib has no summation function.
var sumFunc = function.New(&function.Spec{
	VarParam: &function.Parameter{Name: "nums", Type: cty.Number},
	Type:     function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		total := cty.Zero
		for _, v := range args {
			total = total.Add(v)
		}
		return total, nil
	},
})

// builtins returns the default function table. Reference functions
// (the `ch` family) are not here: they close over per-pass state and
// are installed by the evaluator at the start of each pass.
func builtins() map[string]function.Function {
	return map[string]function.Function{
		"abs":    stdlib.AbsoluteFunc,
		"min":    stdlib.MinFunc,
		"max":    stdlib.MaxFunc,
		"floor":  stdlib.FloorFunc,
		"ceil":   stdlib.CeilFunc,
		"len":    stdlib.LengthFunc,
		"strlen": stdlib.StrlenFunc,
		"round":  roundFunc,
		"sum":    sumFunc,
	}
}
