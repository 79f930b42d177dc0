package graph

import (
	"context"
	"fmt"

	"github.com/vk/nodegraph/internal/ctxlog"
)

// Validate checks whether the candidate connection is legal without
// committing anything. Rules run in a fixed order and the first failure
// wins: endpoint resolution, port direction, type compatibility, target
// occupancy (unless replace is requested), acyclicity.
func (m *Model) Validate(ctx context.Context, c Candidate, opts ...ConnectOption) error {
	var cfg connectConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, _, err := m.validateLocked(ctx, c, cfg)
	return err
}

// validateLocked runs the rule chain and resolves the endpoint ports.
// Callers hold at least the read lock.
func (m *Model) validateLocked(ctx context.Context, c Candidate, cfg connectConfig) (src, dst *Port, err error) {
	srcNode, ok := m.byID[c.SourceNode]
	if !ok {
		return nil, nil, fmt.Errorf("source %w: %q", ErrNodeNotFound, c.SourceNode)
	}
	dstNode, ok := m.byID[c.TargetNode]
	if !ok {
		return nil, nil, fmt.Errorf("target %w: %q", ErrNodeNotFound, c.TargetNode)
	}
	// Resolve each endpoint preferring its expected direction so names
	// shared across directions bind correctly; the cross-direction
	// fallback reports a direction violation instead of a missing port.
	src, ok = srcNode.port(c.SourcePort, DirOutput)
	if !ok {
		return nil, nil, fmt.Errorf("source %w: %q on node %q", ErrPortNotFound, c.SourcePort, c.SourceNode)
	}
	dst, ok = dstNode.port(c.TargetPort, DirInput)
	if !ok {
		return nil, nil, fmt.Errorf("target %w: %q on node %q", ErrPortNotFound, c.TargetPort, c.TargetNode)
	}

	logger := ctxlog.FromContext(ctx)

	if src.direction != DirOutput || dst.direction != DirInput {
		err := &DirectionError{
			Source:          src.String(),
			SourceDirection: src.direction,
			Target:          dst.String(),
			TargetDirection: dst.direction,
		}
		logger.Debug("candidate rejected", "rule", "direction", "error", err)
		return nil, nil, err
	}

	if !Compatible(src.typ, dst.typ) {
		err := &TypeMismatchError{
			Source:     src.String(),
			SourceType: src.typ,
			Target:     dst.String(),
			TargetType: dst.typ,
		}
		logger.Debug("candidate rejected", "rule", "type", "error", err)
		return nil, nil, err
	}

	if existing, occupied := m.incoming[dst]; occupied && !cfg.replace {
		err := &PortOccupiedError{Port: dst.String(), ConnectionID: existing.id}
		logger.Debug("candidate rejected", "rule", "occupancy", "error", err)
		return nil, nil, err
	}

	if cycleErr := m.wouldCreateCycleLocked(srcNode, dstNode); cycleErr != nil {
		logger.Debug("candidate rejected", "rule", "cycle", "error", cycleErr)
		return nil, nil, cycleErr
	}

	return src, dst, nil
}
