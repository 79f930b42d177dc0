package graph

// Direction says which way data flows through a port. A port's
// direction is fixed at creation and never changes.
type Direction int

const (
	// DirInput marks a port that receives data from a connection.
	DirInput Direction = iota
	// DirOutput marks a port that feeds data into connections.
	DirOutput
)

// String returns the human-readable direction name.
func (d Direction) String() string {
	switch d {
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	default:
		return "unknown"
	}
}

// PortType is the declared data type tag of a port.
type PortType string

const (
	TypeExec     PortType = "exec"
	TypeTensor   PortType = "tensor"
	TypeInt      PortType = "int"
	TypeFloat    PortType = "float"
	TypeString   PortType = "string"
	TypeBool     PortType = "bool"
	TypeGeometry PortType = "geometry"
	// TypeAny is the wildcard tag; it is compatible with every other tag.
	TypeAny PortType = "any"
)

// Compatible reports whether a value of type a may flow into a port of
// type b. Any matches everything, identical tags match, exec only ever
// matches exec, and the two numeric tags convert into each other.
func Compatible(a, b PortType) bool {
	if a == TypeAny || b == TypeAny {
		return true
	}
	if a == b {
		return true
	}
	if a == TypeExec || b == TypeExec {
		return false
	}
	if isNumeric(a) && isNumeric(b) {
		return true
	}
	return false
}

func isNumeric(t PortType) bool {
	return t == TypeInt || t == TypeFloat
}

// Port is a typed, directional attachment point on a node.
type Port struct {
	node      *Node
	name      string
	direction Direction
	typ       PortType
}

// Node returns the node the port belongs to.
func (p *Port) Node() *Node { return p.node }

// Name returns the port name, unique per node and direction.
func (p *Port) Name() string { return p.name }

// Direction returns the port direction.
func (p *Port) Direction() Direction { return p.direction }

// Type returns the declared data type tag.
func (p *Port) Type() PortType { return p.typ }

// String returns the fully qualified port name, e.g. "/obj/conv1.out".
func (p *Port) String() string {
	return p.node.Path().String() + "." + p.name
}
