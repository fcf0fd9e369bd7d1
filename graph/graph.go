package graph

import (
	"math"
	"sort"
)

// Graph is a frozen-topology directed graph of Node and Edge values. Build
// one with New; afterwards the only mutation is MarkDeleted/UnmarkDeleted
// toggling soft-delete state.
//
// Graph is not safe for concurrent use: callers driving it from multiple
// goroutines must provide their own mutual exclusion. See the package doc
// comment.
type Graph struct {
	reg *uidRegistry

	nodes map[string]*Node
	edges map[string]*Edge

	deletedNodes map[*Node]struct{}
	deletedEdges map[*Edge]struct{}

	inCacheLevel  uint64
	outCacheLevel uint64

	frozen bool
}

// Builder accumulates nodes and edges during Graph construction. It is only
// valid for the lifetime of the callback passed to New.
type Builder struct {
	g *Graph
}

// AddNode registers n with the graph under its own UID, failing if the UID
// is already taken.
func (b *Builder) AddNode(n *Node) error {
	if _, exists := b.g.nodes[n.uid]; exists {
		return wrapf(ErrMemberAlreadyRegistered, "uid %q", n.uid)
	}
	if err := n.register(b.g); err != nil {
		return err
	}
	b.g.nodes[n.uid] = n
	return nil
}

// AddNodeDedup registers n if its UID is new, or discards n and returns the
// already-registered node for that UID. This is the node-level equivalent
// of an upsert, used when two independent inputs can resolve to the same
// logical node (e.g. two dependencies that resolve to the same target
// package set).
func (b *Builder) AddNodeDedup(n *Node) (*Node, bool, error) {
	if existing, ok := b.g.nodes[n.uid]; ok {
		return existing, false, nil
	}
	if err := b.AddNode(n); err != nil {
		return nil, false, err
	}
	return n, true, nil
}

// AddEdge registers e with the graph, wiring it into both endpoints'
// adjacency. Both endpoints must already be registered with this graph, and
// a node's outgoing edges must all share one Kind (ErrNotAnEdge/
// ErrNotAnOrEdge otherwise).
func (b *Builder) AddEdge(e *Edge) error {
	if _, exists := b.g.edges[e.uid]; exists {
		return wrapf(ErrMemberAlreadyRegistered, "uid %q", e.uid)
	}
	if e.from.g != b.g || e.to.g != b.g {
		return wrapf(ErrNotMemberOfGraph, "edge %q endpoints", e.uid)
	}
	if err := e.register(b.g); err != nil {
		return err
	}
	if err := e.from.addOutgoingEdge(e); err != nil {
		return err
	}
	e.to.addIncomingEdge(e)
	b.g.edges[e.uid] = e
	return nil
}

// New builds a Graph. initFn is invoked once with a Builder to populate
// nodes and edges; once it returns without error, New validates every
// edge's probability is above zero and freezes the topology.
func New(initFn func(b *Builder) error) (*Graph, error) {
	g := &Graph{
		reg:          newUIDRegistry(),
		nodes:        map[string]*Node{},
		edges:        map[string]*Edge{},
		deletedNodes: map[*Node]struct{}{},
		deletedEdges: map[*Edge]struct{}{},
	}
	b := &Builder{g: g}
	if err := initFn(b); err != nil {
		return nil, err
	}
	for _, e := range g.edges {
		p, err := e.Probability()
		if err != nil {
			return nil, err
		}
		if p < epsilon {
			return nil, wrapf(ErrEdgeWithZeroProbability, "edge %q", e.uid)
		}
	}
	g.frozen = true
	return g, nil
}

// Node looks up a registered node by UID.
func (g *Graph) Node(uid string) (*Node, bool) {
	n, ok := g.nodes[uid]
	return n, ok
}

// Edge looks up a registered edge by UID.
func (g *Graph) Edge(uid string) (*Edge, bool) {
	e, ok := g.edges[uid]
	return e, ok
}

// Nodes returns every node registered with the graph, in UID order.
func (g *Graph) Nodes() []*Node {
	return g.allNodesSorted()
}

// Edges returns every edge registered with the graph, in UID order.
func (g *Graph) Edges() []*Edge {
	list := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].uid < list[j].uid })
	return list
}

// DeletedNodes returns the set of nodes currently marked deleted.
func (g *Graph) DeletedNodes() map[*Node]struct{} {
	return g.deletedNodes
}

// DeletedEdges returns the set of edges currently marked deleted.
func (g *Graph) DeletedEdges() map[*Edge]struct{} {
	return g.deletedEdges
}

func (g *Graph) allNodesSorted() []*Node {
	list := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		list = append(list, n)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].uid < list[j].uid })
	return list
}

// Leafs returns the graph's leaf groups: nodes with no live incoming edges,
// plus leaf cycles (strongly connected, non-deleted node sets with no live
// incoming support from outside the cycle). Each returned set is either a
// singleton (a true leaf) or the full membership of a leaf cycle.
func (g *Graph) Leafs() ([]map[*Node]struct{}, error) {
	var result []map[*Node]struct{}
	seen := map[*Node]struct{}{}

	for _, n := range g.allNodesSorted() {
		if n.deleted {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}

		inEdges, err := n.IncomingEdges()
		if err != nil {
			return nil, err
		}
		if len(inEdges) == 0 {
			result = append(result, map[*Node]struct{}{n: {}})
			seen[n] = struct{}{}
			continue
		}

		inCycle, err := n.InCycle()
		if err != nil {
			return nil, err
		}
		if !inCycle {
			continue
		}

		cycleNodes, err := n.CycleNodes()
		if err != nil {
			return nil, err
		}
		alreadySeen := false
		for cn := range cycleNodes {
			if _, ok := seen[cn]; ok {
				alreadySeen = true
				break
			}
		}
		if alreadySeen {
			continue
		}

		incomingCycle, err := n.IncomingCycleNodes()
		if err != nil {
			return nil, err
		}
		if len(incomingCycle) == 0 {
			result = append(result, cycleNodes)
			for cn := range cycleNodes {
				seen[cn] = struct{}{}
			}
		}
	}

	return result, nil
}

// LeafsFlat returns the union of every leaf group Leafs would return.
func (g *Graph) LeafsFlat() (map[*Node]struct{}, error) {
	leafs, err := g.Leafs()
	if err != nil {
		return nil, err
	}
	flat := map[*Node]struct{}{}
	for _, l := range leafs {
		for n := range l {
			flat[n] = struct{}{}
		}
	}
	return flat, nil
}

// MarkMembersDeleted marks every given node and edge deleted, cascading per
// MarkDeleted's own rules. It does not propagate any further than that
// cascade; see MarkMembersIncludingObsoleteDeleted for transitive obsolete
// propagation.
func (g *Graph) MarkMembersDeleted(nodes []*Node, edges []*Edge) error {
	for _, n := range nodes {
		if err := n.MarkDeleted(); err != nil {
			return err
		}
	}
	for _, e := range edges {
		if err := e.MarkDeleted(); err != nil {
			return err
		}
	}
	return nil
}

// MarkMembersIncludingObsoleteDeleted marks the given nodes deleted, then
// repeatedly scans the graph for nodes (or whole cycles) whose every raw
// incoming neighbor has itself become deleted, marking those obsolete too,
// until a full pass finds nothing left to mark. Raw (not live) adjacency is
// used throughout the obsolescence scan because a node that has just been
// marked deleted can no longer serve its live-view accessors.
func (g *Graph) MarkMembersIncludingObsoleteDeleted(nodes []*Node) error {
	for _, n := range nodes {
		if err := n.MarkDeleted(); err != nil {
			return err
		}
	}

	for {
		changed := false
		for _, n := range g.allNodesSorted() {
			if n.deleted {
				continue
			}
			obsolete, isCycle, err := g.nodeIsObsolete(n)
			if err != nil {
				return err
			}
			if !obsolete {
				continue
			}
			if !isCycle {
				if err := n.MarkDeleted(); err != nil {
					return err
				}
				changed = true
				continue
			}
			cycleNodes, err := n.CycleNodes()
			if err != nil {
				return err
			}
			for cn := range cycleNodes {
				if cn.deleted {
					continue
				}
				if err := cn.MarkDeleted(); err != nil {
					return err
				}
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return nil
}

// nodeIsObsolete reports whether n (still live) has lost all of its
// original support: every node that ever had a raw outgoing edge into n (or,
// when n sits on a cycle, into any member of that cycle from outside it) is
// now deleted. A node or cycle that never had any incoming support at all is
// not obsolete — it was a root from the start, not something purging made
// unreachable.
func (g *Graph) nodeIsObsolete(n *Node) (obsolete bool, isCycle bool, err error) {
	inCycle, err := n.InCycle()
	if err != nil {
		return false, false, err
	}
	if !inCycle {
		if len(n.rawIncomingNodes) == 0 {
			return false, false, nil
		}
		for from := range n.rawIncomingNodes {
			if !from.deleted {
				return false, false, nil
			}
		}
		return true, false, nil
	}

	cycleNodes, err := n.CycleNodes()
	if err != nil {
		return false, false, err
	}
	external := map[*Node]struct{}{}
	for cn := range cycleNodes {
		for from := range cn.rawIncomingNodes {
			if _, inCyc := cycleNodes[from]; inCyc {
				continue
			}
			external[from] = struct{}{}
		}
	}
	if len(external) == 0 {
		return false, true, nil
	}
	for from := range external {
		if !from.deleted {
			return false, true, nil
		}
	}
	return true, true, nil
}

// UnmarkDeleted clears every member's deleted flag and resets the live
// adjacency projections that were ever touched by a MarkDeleted call, marking
// each touched node's recursive cache invalidated at the new cache level.
// Recursive-reachability and cycle caches proven static survive untouched;
// everything else is invalidated lazily by the cache-level bump and those
// invalidation marks, the same mechanism an ordinary delete uses.
func (g *Graph) UnmarkDeleted() {
	g.inCacheLevel++
	g.outCacheLevel++

	for n := range g.deletedNodes {
		n.deleted = false
	}
	for e := range g.deletedEdges {
		e.deleted = false
	}
	g.deletedNodes = map[*Node]struct{}{}
	g.deletedEdges = map[*Edge]struct{}{}

	for _, n := range g.nodes {
		if n.inTouched {
			n.inEdgesLive = nil
			n.inNodesLive = nil
			n.inTouched = false
			n.inRecInvalidAtCL = g.inCacheLevel
		}
		if n.outTouched {
			n.outEdgesLive = nil
			n.outNodesLive = nil
			n.outTouched = false
			n.outRecInvalidAtCL = g.outCacheLevel
		}
	}
}

// epsilonEqual reports whether a and b are within epsilon of each other,
// the tolerance used for every probability comparison in this package.
func epsilonEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}
