// Package expr parses and evaluates parameter expressions against the
// graph model.
//
// An expression is a single line of arithmetic over numbers, strings,
// context variables, and function calls, e.g.
//
//	chf("../noise.amplitude") * 2 + 1
//
// Parsing is a single recursive-descent pass into a small AST whose
// nodes carry hcl.Range positions for diagnostics; evaluation is a tree
// walk producing a cty.Value. The `ch` family of functions fetches the
// currently evaluated value of another parameter, by name on the
// requesting node or through a relative or absolute node path,
// recursing into expression-valued targets. An in-progress set threaded
// through the pass turns self-referential parameter chains into
// ExpressionCycleError instead of unbounded recursion.
//
// Each evaluation pass owns a Context: scratch variables and a cache of
// resolved cross-node references. Concurrent evaluations must use
// separate Context instances; the graph model itself is read-shared and
// must not be mutated while a pass is in flight.
package expr
