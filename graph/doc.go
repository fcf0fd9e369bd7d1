// Package graph implements a hierarchical dependency graph with cycle
// support, a soft-delete model, and recursive-reachability queries backed by
// a three-tier cache.
//
// A Graph is a directed graph of Node and Edge values. Two edge flavors
// exist: Mandatory edges, which always have probability 1.0 and whose
// deletion cascades up the hierarchy (deleting the from-node), and Or edges,
// which model "any one of several alternatives satisfies this dependency" —
// their probability is 1/(live sibling count) and deleting one does not
// cascade as long as a sibling survives. A node's outgoing edges must be
// homogeneous: all Mandatory or all Or, never mixed (ErrNotAnEdge /
// ErrNotAnOrEdge enforce this at registration time).
//
// Construction is two-phase: build the full node/edge topology inside the
// callback passed to New, then the Graph freezes it — from that point on the
// only mutation is MarkDeleted/UnmarkDeleted toggling a per-member deleted
// flag, plus the derived live-projection and recursive-reachability caches
// that flag drives.
//
// Concurrency: this package is single-threaded and non-suspending, matching
// the hierarchy it models (package installs don't happen concurrently with
// package removals). MarkDeleted, UnmarkDeleted, the *Including*Obsolete*
// family, and any accessor that materializes a live-projection or recursive
// cache mutate Graph/Node state in place. Callers driving this package from
// multiple goroutines must provide their own mutual exclusion; read-only
// access to the frozen raw topology (UIDs, raw adjacency) needs none.
//
// Three cache tiers back OutgoingNodesRecursive:
//
//   - static: proven invariant under every possible deleted pattern (no
//     node in the closure has more than one outgoing Or edge). Returned
//     unconditionally, forever.
//   - default: valid as long as nothing in the closure has ever had its
//     live projection touched by MarkDeleted. Revalidated by a level check.
//   - dynamic: the general-purpose fallback, tagged with the graph-wide
//     cache level it was built at and invalidated at; revalidated in O(closure
//     size) the first time after a mutation, O(1) after that.
//
// IncomingNodesRecursive gets a single-tier variant of the same cache, since
// the incoming direction is invalidated far more often in a hierarchy where
// most packages sit near the leaves.
package graph
