package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/vk/nodegraph/internal/nodepath"
)

// Model is the in-memory store for the authored graph: every node,
// indexed by id and by hierarchy path, plus all committed connections.
type Model struct {
	mu sync.RWMutex

	byID   map[string]*Node
	byPath map[string]*Node

	conns    map[string]*Connection
	incoming map[*Port]*Connection   // fan-in = 1 per input port
	outgoing map[*Port][]*Connection // unbounded fan-out per output port

	connSeq int
}

// NewModel creates an empty graph model.
func NewModel() *Model {
	return &Model{
		byID:     make(map[string]*Node),
		byPath:   make(map[string]*Node),
		conns:    make(map[string]*Connection),
		incoming: make(map[*Port]*Connection),
		outgoing: make(map[*Port][]*Connection),
	}
}

// AddNode adds a fully constructed node to the model. Both the id and
// the hierarchy path must be unused.
func (m *Model) AddNode(ctx context.Context, n *Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[n.id]; exists {
		return fmt.Errorf("%w: id %q", ErrDuplicateNode, n.id)
	}
	pathKey := n.path.String()
	if _, exists := m.byPath[pathKey]; exists {
		return fmt.Errorf("%w: path %q", ErrDuplicateNode, pathKey)
	}

	m.byID[n.id] = n
	m.byPath[pathKey] = n
	ctxlog.FromContext(ctx).Debug("node added", "id", n.id, "path", pathKey)
	return nil
}

// RemoveNode removes a node and detaches every connection touching it.
func (m *Model) RemoveNode(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}

	for _, c := range m.conns {
		if c.SourceNode() == n || c.TargetNode() == n {
			m.removeConnectionLocked(c)
		}
	}

	delete(m.byID, id)
	delete(m.byPath, n.path.String())
	ctxlog.FromContext(ctx).Debug("node removed", "id", id)
	return nil
}

// NodeByID looks up a node by its unique id.
func (m *Model) NodeByID(id string) (*Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.byID[id]
	return n, ok
}

// NodeByPath looks up a node by its position in the hierarchy.
func (m *Model) NodeByPath(p nodepath.Path) (*Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.byPath[p.String()]
	return n, ok
}

// Nodes returns all nodes ordered by path for deterministic iteration.
func (m *Model) Nodes() []*Node {
	m.mu.RLock()
	defer m.mu.RUnlock()

	nodes := make([]*Node, 0, len(m.byID))
	for _, n := range m.byID {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].path.String() < nodes[j].path.String()
	})
	return nodes
}

// Connections returns all committed connections ordered by id.
func (m *Model) Connections() []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conns := make([]*Connection, 0, len(m.conns))
	for _, c := range m.conns {
		conns = append(conns, c)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].id < conns[j].id })
	return conns
}

// ConnectionInto returns the connection feeding the named input port,
// if any.
func (m *Model) ConnectionInto(nodeID, port string) (*Connection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.byID[nodeID]
	if !ok {
		return nil, false
	}
	p, ok := n.Input(port)
	if !ok {
		return nil, false
	}
	c, ok := m.incoming[p]
	return c, ok
}

// Successors returns the nodes directly downstream of the given node.
func (m *Model) Successors(id string) ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	return m.successorsLocked(n), nil
}

// successorsLocked collects distinct downstream nodes. Callers hold at
// least the read lock.
func (m *Model) successorsLocked(n *Node) []*Node {
	seen := make(map[string]struct{})
	var out []*Node
	for _, p := range n.outputs {
		for _, c := range m.outgoing[p] {
			target := c.TargetNode()
			if _, dup := seen[target.id]; dup {
				continue
			}
			seen[target.id] = struct{}{}
			out = append(out, target)
		}
	}
	return out
}

// predecessorsLocked collects distinct upstream nodes.
func (m *Model) predecessorsLocked(n *Node) []*Node {
	seen := make(map[string]struct{})
	var out []*Node
	for _, p := range n.inputs {
		if c, ok := m.incoming[p]; ok {
			source := c.SourceNode()
			if _, dup := seen[source.id]; !dup {
				seen[source.id] = struct{}{}
				out = append(out, source)
			}
		}
	}
	return out
}

// Connect validates the candidate and, if every check passes, commits
// it as a new connection. With WithReplace, an existing connection into
// the target port is removed as part of the same commit.
func (m *Model) Connect(ctx context.Context, c Candidate, opts ...ConnectOption) (*Connection, error) {
	var cfg connectConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	src, dst, err := m.validateLocked(ctx, c, cfg)
	if err != nil {
		return nil, err
	}

	if existing, ok := m.incoming[dst]; ok {
		// Validation only lets this through in replace mode.
		m.removeConnectionLocked(existing)
		ctxlog.FromContext(ctx).Debug("connection replaced", "id", existing.id)
	}

	m.connSeq++
	conn := &Connection{
		id:     fmt.Sprintf("conn-%d", m.connSeq),
		source: src,
		target: dst,
	}
	m.conns[conn.id] = conn
	m.incoming[dst] = conn
	m.outgoing[src] = append(m.outgoing[src], conn)

	ctxlog.FromContext(ctx).Debug("connection committed",
		"id", conn.id, "source", src.String(), "target", dst.String())
	return conn, nil
}

// Disconnect removes a committed connection by id.
func (m *Model) Disconnect(ctx context.Context, connID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conns[connID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrConnectionNotFound, connID)
	}
	m.removeConnectionLocked(c)
	ctxlog.FromContext(ctx).Debug("connection removed", "id", connID)
	return nil
}

// removeConnectionLocked unlinks a connection from every index. Callers
// hold the write lock.
func (m *Model) removeConnectionLocked(c *Connection) {
	delete(m.conns, c.id)
	delete(m.incoming, c.target)

	outs := m.outgoing[c.source]
	for i, oc := range outs {
		if oc == c {
			m.outgoing[c.source] = append(outs[:i], outs[i+1:]...)
			break
		}
	}
	if len(m.outgoing[c.source]) == 0 {
		delete(m.outgoing, c.source)
	}
}
