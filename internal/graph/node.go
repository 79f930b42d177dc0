package graph

import (
	"fmt"

	"github.com/vk/nodegraph/internal/nodepath"
)

// Node is a single vertex in the authored graph. It owns an ordered
// sequence of input and output ports and a set of named parameters.
type Node struct {
	id      string
	path    nodepath.Path
	inputs  []*Port
	outputs []*Port
	params  map[string]*Parameter
}

// NewNode creates a node with the given process-wide unique id at the
// given position in the hierarchy. Ports and parameters are attached
// afterwards, before the node is added to a Model.
func NewNode(id string, path nodepath.Path) *Node {
	return &Node{
		id:     id,
		path:   path,
		params: make(map[string]*Parameter),
	}
}

// ID returns the unique node id.
func (n *Node) ID() string { return n.id }

// Path returns the node's position in the graph hierarchy.
func (n *Node) Path() nodepath.Path { return n.path }

// AddInput appends an input port. Port names are unique per direction.
func (n *Node) AddInput(name string, typ PortType) (*Port, error) {
	if _, ok := n.Input(name); ok {
		return nil, fmt.Errorf("node %q already has input port %q", n.id, name)
	}
	p := &Port{node: n, name: name, direction: DirInput, typ: typ}
	n.inputs = append(n.inputs, p)
	return p, nil
}

// AddOutput appends an output port. Port names are unique per direction.
func (n *Node) AddOutput(name string, typ PortType) (*Port, error) {
	if _, ok := n.Output(name); ok {
		return nil, fmt.Errorf("node %q already has output port %q", n.id, name)
	}
	p := &Port{node: n, name: name, direction: DirOutput, typ: typ}
	n.outputs = append(n.outputs, p)
	return p, nil
}

// Input looks up an input port by name.
func (n *Node) Input(name string) (*Port, bool) {
	for _, p := range n.inputs {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// Output looks up an output port by name.
func (n *Node) Output(name string) (*Port, bool) {
	for _, p := range n.outputs {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// port looks up a port by name, checking the preferred direction first
// and falling back to the other. The validator resolves the source
// preferring outputs and the target preferring inputs, so a node that
// reuses a name across directions still connects correctly; the
// fallback keeps a wrong-direction endpoint reporting a direction
// violation rather than a missing port.
func (n *Node) port(name string, prefer Direction) (*Port, bool) {
	if prefer == DirOutput {
		if p, ok := n.Output(name); ok {
			return p, true
		}
		return n.Input(name)
	}
	if p, ok := n.Input(name); ok {
		return p, true
	}
	return n.Output(name)
}

// Inputs returns the input ports in declaration order.
func (n *Node) Inputs() []*Port {
	return append([]*Port(nil), n.inputs...)
}

// Outputs returns the output ports in declaration order.
func (n *Node) Outputs() []*Port {
	return append([]*Port(nil), n.outputs...)
}

// SetParameter adds or replaces a parameter on the node.
func (n *Node) SetParameter(p *Parameter) {
	n.params[p.Name] = p
}

// Parameter looks up a parameter by name.
func (n *Node) Parameter(name string) (*Parameter, bool) {
	p, ok := n.params[name]
	return p, ok
}
