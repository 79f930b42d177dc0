// Package nodepath implements hierarchical node addressing for the graph.
//
// A node lives at a canonical absolute path such as /obj/subnet1/conv1.
// Expressions address other nodes either absolutely or relative to the
// node the expression belongs to (`..` climbs to the parent, `.` stays
// in place). A parameter on a node is addressed by appending a dot and
// the parameter name to the node reference, e.g. `../conv1.weight`.
package nodepath

import "strings"

// Path is the canonical absolute address of a node within the graph
// hierarchy. The zero value addresses the graph root.
type Path struct {
	segments []string
}

// Root is the path of the graph root.
var Root = Path{}

// String serializes the path into its canonical string representation.
func (p Path) String() string {
	if len(p.segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.segments, "/")
}

// IsRoot reports whether the path addresses the graph root.
func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// Name returns the final path segment, or the empty string for the root.
func (p Path) Name() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Parent returns the path of the containing scope. The root is its own
// parent.
func (p Path) Parent() Path {
	if len(p.segments) == 0 {
		return Root
	}
	return Path{segments: append([]string(nil), p.segments[:len(p.segments)-1]...)}
}

// Join returns the path of a child named name under p. The name is not
// validated; use Parse or Resolve for untrusted input.
func (p Path) Join(name string) Path {
	segs := make([]string, 0, len(p.segments)+1)
	segs = append(segs, p.segments...)
	segs = append(segs, name)
	return Path{segments: segs}
}

// Equal checks for equality between two paths.
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i, s := range p.segments {
		if other.segments[i] != s {
			return false
		}
	}
	return true
}

// IsAncestorOf reports whether other is strictly below p in the
// hierarchy.
func (p Path) IsAncestorOf(other Path) bool {
	if len(other.segments) <= len(p.segments) {
		return false
	}
	for i, s := range p.segments {
		if other.segments[i] != s {
			return false
		}
	}
	return true
}
