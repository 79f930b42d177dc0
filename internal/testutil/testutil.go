// Package testutil provides shared fixture builders for graph and
// expression tests. Helpers fail the test on error so call sites stay
// focused on the behavior under test.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/nodegraph/internal/graph"
	"github.com/vk/nodegraph/internal/nodepath"
)

// MustPath parses a node path and fails the test on malformed input.
func MustPath(t *testing.T, raw string) nodepath.Path {
	t.Helper()
	p, err := nodepath.Parse(raw)
	require.NoError(t, err, "parsing path %q", raw)
	return p
}

// AddNode creates a node at the given path and registers it with the
// model. The node's ID is its path string, which keeps fixtures easy to
// reference from assertions.
func AddNode(t *testing.T, m *graph.Model, path string) *graph.Node {
	t.Helper()
	n := graph.NewNode(path, MustPath(t, path))
	require.NoError(t, m.AddNode(context.Background(), n))
	return n
}

// AddPorts attaches input and output ports of one type to a node.
func AddPorts(t *testing.T, n *graph.Node, typ graph.PortType, inputs, outputs []string) {
	t.Helper()
	for _, name := range inputs {
		_, err := n.AddInput(name, typ)
		require.NoError(t, err)
	}
	for _, name := range outputs {
		_, err := n.AddOutput(name, typ)
		require.NoError(t, err)
	}
}

// SetLiteral sets a literal parameter on a node.
func SetLiteral(t *testing.T, n *graph.Node, name string, typ cty.Type, val cty.Value) {
	t.Helper()
	n.SetParameter(graph.NewLiteral(name, typ, val))
}

// SetExpression sets an expression-valued parameter on a node.
func SetExpression(t *testing.T, n *graph.Node, name string, typ cty.Type, src string) {
	t.Helper()
	n.SetParameter(graph.NewExpression(name, typ, src))
}

// Connect wires source node's output port to target node's input port
// and fails the test if validation rejects the connection.
func Connect(t *testing.T, m *graph.Model, srcNode, srcPort, dstNode, dstPort string) *graph.Connection {
	t.Helper()
	c, err := m.Connect(context.Background(), graph.Candidate{
		SourceNode: srcNode,
		SourcePort: srcPort,
		TargetNode: dstNode,
		TargetPort: dstPort,
	})
	require.NoError(t, err)
	return c
}
