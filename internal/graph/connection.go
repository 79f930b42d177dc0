package graph

// Connection is a committed directed edge from one node's output port
// to another node's input port.
type Connection struct {
	id     string
	source *Port
	target *Port
}

// ID returns the unique connection id.
func (c *Connection) ID() string { return c.id }

// Source returns the output port feeding the connection.
func (c *Connection) Source() *Port { return c.source }

// Target returns the input port the connection feeds into.
func (c *Connection) Target() *Port { return c.target }

// SourceNode returns the node owning the source port.
func (c *Connection) SourceNode() *Node { return c.source.node }

// TargetNode returns the node owning the target port.
func (c *Connection) TargetNode() *Node { return c.target.node }

// Candidate names a proposed connection by its endpoint node ids and
// port names. It is what the editing layer hands to Validate and
// Connect; nothing is resolved or committed until then.
type Candidate struct {
	SourceNode string
	SourcePort string
	TargetNode string
	TargetPort string
}

// ConnectOption adjusts how a candidate is validated and committed.
type ConnectOption func(*connectConfig)

type connectConfig struct {
	replace bool
}

// WithReplace requests replace-semantics: if the target input port is
// already occupied, the existing connection is removed as part of the
// same commit instead of failing with PortOccupiedError.
func WithReplace() ConnectOption {
	return func(cfg *connectConfig) { cfg.replace = true }
}
