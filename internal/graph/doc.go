// Package graph holds the node-graph data model and the rules that keep
// it well-formed: nodes with typed, directional ports, directed
// connections between them, and named parameters.
//
// The Model is the single source of truth for graph structure. It is
// purely advisory toward its callers: the editing layer proposes a
// connection, Validate checks direction, type compatibility, occupancy
// and acyclicity in that order, and Connect commits only when every
// check passes. The Model never emits change notifications itself; the
// caller publishes them after a successful commit.
//
// # Thread-safety
//
// All Model state sits behind one sync.RWMutex. Mutations (AddNode,
// RemoveNode, Connect, Disconnect) take the write lock; queries take
// read locks, giving the single-writer / multiple-reader discipline the
// expression evaluator relies on during a pass.
package graph
