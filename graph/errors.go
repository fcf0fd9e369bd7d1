package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers branch on these with errors.Is; wrapf attaches
// context without losing the sentinel.
var (
	// ErrNotANode is returned when a value that isn't a *Node is used where
	// a node was expected.
	ErrNotANode = errors.New("graph: not a node")

	// ErrNotAnEdge is returned when an OrEdge is used where a node's
	// established outgoing kind is Mandatory, or more generally where a
	// mandatory Edge was expected.
	ErrNotAnEdge = errors.New("graph: not a mandatory edge")

	// ErrNotAnOrEdge is returned when a mandatory Edge is used where a
	// node's established outgoing kind is Or.
	ErrNotAnOrEdge = errors.New("graph: not an or-edge")

	// ErrMemberAlreadyRegistered is returned when a node or edge is added
	// to a graph it is already registered with.
	ErrMemberAlreadyRegistered = errors.New("graph: member already registered with this graph")

	// ErrNotMemberOfGraph is returned when an edge's endpoints belong to
	// different graphs, or a member registered with one graph is used
	// against another.
	ErrNotMemberOfGraph = errors.New("graph: member does not belong to this graph")

	// ErrUnregisteredMemberInUse is returned when a node or edge that was
	// never added to a graph is used in an operation that requires one.
	ErrUnregisteredMemberInUse = errors.New("graph: unregistered member in use")

	// ErrDeletedMemberInUse is returned when an operation is attempted on
	// a node or edge that has been marked deleted.
	ErrDeletedMemberInUse = errors.New("graph: deleted member in use")

	// ErrNodeIsNotPartOfEdge is returned when a node is asserted to be an
	// endpoint of an edge it is not actually connected to.
	ErrNodeIsNotPartOfEdge = errors.New("graph: node is not part of edge")

	// ErrEdgeWithZeroProbability is returned when an edge's probability
	// would be (or is) zero or below, which can only happen for an Or
	// edge whose from-node has no live outgoing edges left — a graph
	// construction bug, since an Or edge is always one of its own
	// siblings.
	ErrEdgeWithZeroProbability = errors.New("graph: edge has zero probability")
)

// wrapf wraps err with a formatted message, preserving errors.Is matching
// against the original sentinel.
func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, err)...)
}
