package graph

import (
	"context"
	"fmt"
)

// WouldCreateCycle reports whether committing the candidate would close
// a dependency cycle. It only inspects the candidate's endpoint nodes
// and the existing edges; it never mutates the graph.
func (m *Model) WouldCreateCycle(ctx context.Context, c Candidate) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	srcNode, ok := m.byID[c.SourceNode]
	if !ok {
		return false, fmt.Errorf("source %w: %q", ErrNodeNotFound, c.SourceNode)
	}
	dstNode, ok := m.byID[c.TargetNode]
	if !ok {
		return false, fmt.Errorf("target %w: %q", ErrNodeNotFound, c.TargetNode)
	}

	return m.wouldCreateCycleLocked(srcNode, dstNode) != nil, nil
}

// wouldCreateCycleLocked is the reachability search behind both
// WouldCreateCycle and the validator. A self-loop is always a cycle.
// Otherwise the candidate edge src→dst closes a cycle exactly when src
// is already reachable from dst, so a single depth-first traversal over
// the existing edges decides it in O(V+E). Callers hold at least the
// read lock.
func (m *Model) wouldCreateCycleLocked(src, dst *Node) *CycleError {
	if src == dst {
		return &CycleError{Source: src.id, Target: dst.id, SelfLoop: true}
	}

	visited := make(map[string]bool)
	stack := []*Node{dst}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n == src {
			return &CycleError{Source: src.id, Target: dst.id}
		}
		if visited[n.id] {
			continue
		}
		visited[n.id] = true

		stack = append(stack, m.successorsLocked(n)...)
	}

	return nil
}
