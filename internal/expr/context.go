package expr

import "github.com/zclconf/go-cty/cty"

// Context is the per-pass evaluation scope. It holds two independent
// namespaces: scratch variables (frame state, loop counters) and a
// cache of resolved cross-node parameter references. A variable and a
// reference may share a name without colliding.
//
// A Context belongs to exactly one evaluation pass at a time and is not
// safe for concurrent use. Call Clear between unrelated passes so no
// stale value leaks from one to the next.
type Context struct {
	variables  map[string]cty.Value
	references map[string]cty.Value
}

// NewContext creates an empty evaluation context.
func NewContext() *Context {
	return &Context{
		variables:  make(map[string]cty.Value),
		references: make(map[string]cty.Value),
	}
}

// SetVariable binds a scratch variable for the current pass.
func (c *Context) SetVariable(name string, val cty.Value) {
	c.variables[name] = val
}

// Variable looks up a scratch variable.
func (c *Context) Variable(name string) (cty.Value, bool) {
	v, ok := c.variables[name]
	return v, ok
}

// SetReference caches a resolved parameter reference under its
// canonical path key.
func (c *Context) SetReference(path string, val cty.Value) {
	c.references[path] = val
}

// Reference looks up a cached parameter reference.
func (c *Context) Reference(path string) (cty.Value, bool) {
	v, ok := c.references[path]
	return v, ok
}

// Clear empties both namespaces.
func (c *Context) Clear() {
	clear(c.variables)
	clear(c.references)
}
