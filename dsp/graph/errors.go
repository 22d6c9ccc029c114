package graph

import "errors"

var (
	// ErrInvalidGraph is returned for structurally invalid graphs.
	ErrInvalidGraph = errors.New("graph: invalid graph")
	// ErrCycle is returned when connections form a cycle.
	ErrCycle = errors.New("graph: contains cycle")
	// ErrUnknownNodeType is returned when a node references an unregistered type.
	ErrUnknownNodeType = errors.New("graph: unknown node type")
	// ErrInvalidRequest is returned for render requests that cannot be satisfied.
	ErrInvalidRequest = errors.New("graph: invalid render request")
)
