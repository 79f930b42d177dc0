package graph

import "sort"

// TopologicalSort returns every node ordered so that each connection's
// source precedes its target. The ordering is deterministic: among
// ready nodes, lower paths come first. A CycleError is returned if the
// committed graph somehow contains a cycle, which Connect's validation
// is meant to rule out.
func (m *Model) TopologicalSort() ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.topoSortLocked()
}

// topoSortLocked is Kahn's algorithm over the committed edges. Callers
// hold at least the read lock.
func (m *Model) topoSortLocked() ([]*Node, error) {
	inDegree := make(map[string]int, len(m.byID))
	for id := range m.byID {
		inDegree[id] = 0
	}
	for _, c := range m.conns {
		inDegree[c.TargetNode().id]++
	}

	var ready []*Node
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, m.byID[id])
		}
	}

	sorted := make([]*Node, 0, len(m.byID))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool {
			return ready[i].path.String() < ready[j].path.String()
		})
		n := ready[0]
		ready = ready[1:]
		sorted = append(sorted, n)

		for _, succ := range m.successorsLocked(n) {
			inDegree[succ.id]--
			if inDegree[succ.id] == 0 {
				ready = append(ready, succ)
			}
		}
	}

	if len(sorted) != len(m.byID) {
		return nil, m.committedCycleLocked(inDegree)
	}
	return sorted, nil
}

// committedCycleLocked names a concrete edge on a cycle among the nodes
// a failed Kahn pass left behind: every leftover node still has an
// unprocessed predecessor, so the lowest-path leftover and one such
// predecessor identify the loop deterministically.
func (m *Model) committedCycleLocked(inDegree map[string]int) *CycleError {
	var remaining []*Node
	for id, deg := range inDegree {
		if deg > 0 {
			remaining = append(remaining, m.byID[id])
		}
	}
	sort.Slice(remaining, func(i, j int) bool {
		return remaining[i].path.String() < remaining[j].path.String()
	})

	target := remaining[0]
	for _, pred := range m.predecessorsLocked(target) {
		if inDegree[pred.id] == 0 {
			continue
		}
		if pred == target {
			return &CycleError{Source: pred.id, Target: target.id, SelfLoop: true}
		}
		return &CycleError{Source: pred.id, Target: target.id}
	}
	return &CycleError{Source: target.id, Target: target.id, SelfLoop: true}
}

// Dependencies returns every node the given node transitively depends
// on through committed connections.
func (m *Model) Dependencies(id string) ([]*Node, error) {
	return m.closure(id, m.predecessorsLocked)
}

// Dependents returns every node that transitively depends on the given
// node through committed connections.
func (m *Model) Dependents(id string) ([]*Node, error) {
	return m.closure(id, m.successorsLocked)
}

// closure walks the graph from the given node in the direction chosen
// by step and returns every reached node except the start, ordered by
// path.
func (m *Model) closure(id string, step func(*Node) []*Node) ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start, ok := m.byID[id]
	if !ok {
		return nil, ErrNodeNotFound
	}

	visited := map[string]bool{start.id: true}
	var out []*Node
	stack := []*Node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range step(n) {
			if visited[next.id] {
				continue
			}
			visited[next.id] = true
			out = append(out, next)
			stack = append(stack, next)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].path.String() < out[j].path.String()
	})
	return out, nil
}

// Check validates the integrity of the committed graph as a whole and
// returns every finding. A healthy graph returns nil.
func (m *Model) Check() []error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var findings []error
	for _, c := range m.conns {
		if !Compatible(c.source.typ, c.target.typ) {
			findings = append(findings, &TypeMismatchError{
				Source:     c.source.String(),
				SourceType: c.source.typ,
				Target:     c.target.String(),
				TargetType: c.target.typ,
			})
		}
	}
	if _, err := m.topoSortLocked(); err != nil {
		findings = append(findings, err)
	}

	return findings
}
