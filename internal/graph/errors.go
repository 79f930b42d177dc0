package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for lookups against the model. Wrapped with context
// by the functions that return them; match with errors.Is.
var (
	ErrNodeNotFound       = errors.New("node not found")
	ErrPortNotFound       = errors.New("port not found")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrDuplicateNode      = errors.New("duplicate node")
)

// DirectionError reports a candidate whose endpoints violate the
// output-to-input rule, covering both input→input and output→output
// attempts.
type DirectionError struct {
	Source          string
	SourceDirection Direction
	Target          string
	TargetDirection Direction
}

func (e *DirectionError) Error() string {
	return fmt.Sprintf("connection must run output to input: %s is an %s port, %s is an %s port",
		e.Source, e.SourceDirection, e.Target, e.TargetDirection)
}

// TypeMismatchError reports a candidate whose port type tags are not
// compatible.
type TypeMismatchError struct {
	Source     string
	SourceType PortType
	Target     string
	TargetType PortType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("incompatible port types: %s (%s) cannot feed %s (%s)",
		e.Source, e.SourceType, e.Target, e.TargetType)
}

// PortOccupiedError reports a candidate whose target input port already
// has an incoming connection and no replace was requested.
type PortOccupiedError struct {
	Port         string
	ConnectionID string
}

func (e *PortOccupiedError) Error() string {
	return fmt.Sprintf("input port %s is already fed by connection %s", e.Port, e.ConnectionID)
}

// CycleError reports a candidate that would close a dependency cycle.
// SelfLoop marks the degenerate single-node case.
type CycleError struct {
	// Source and Target are the endpoint node ids of the candidate.
	Source   string
	Target   string
	SelfLoop bool
}

func (e *CycleError) Error() string {
	if e.SelfLoop {
		return fmt.Sprintf("connecting node %q to itself would create a self-loop", e.Source)
	}
	return fmt.Sprintf("connection from node %q to node %q would create a dependency cycle", e.Source, e.Target)
}
