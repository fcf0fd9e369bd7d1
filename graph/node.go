package graph

// Node is a vertex in the dependency graph. Embed it in a domain-specific
// type (see the dpkggraph package) to attach additional fields; Data is an
// escape hatch for attaching a back-reference without a separate embedding
// layer, for code that only ever sees *Node (e.g. the generic leafs/cycle
// algorithms) but wants to recover the domain wrapper at print time.
type Node struct {
	member

	// Data is never read or written by this package. Set it after
	// construction to stash a caller-defined back-reference.
	Data any

	// Raw adjacency, populated during construction and immutable once the
	// owning Graph freezes. Includes edges/nodes regardless of deleted
	// state.
	rawIncomingEdges map[*Edge]struct{}
	rawIncomingNodes map[*Node]struct{}
	rawOutgoingEdges map[*Edge]struct{}
	rawOutgoingNodes map[*Node]struct{}

	outgoingKindSet bool
	outgoingKind    Kind

	// Live projections: lazily materialized on first access as a copy of
	// the raw adjacency, then maintained incrementally by Edge.MarkDeleted.
	// touched records whether MarkDeleted has ever mutated this node's
	// projection, which is what separates the "default" cache tier from
	// "dynamic".
	inEdgesLive map[*Edge]struct{}
	inNodesLive map[*Node]struct{}
	inTouched   bool

	outEdgesLive map[*Edge]struct{}
	outNodesLive map[*Node]struct{}
	outTouched   bool

	// Incoming recursive-reachability cache (single tier).
	inRecCache       map[*Node]struct{}
	inRecCacheLevel  uint64
	inRecBuiltAtCL   uint64
	inRecInvalidAtCL uint64

	// Outgoing recursive-reachability cache (three tiers: static overrides
	// everything once set; otherwise default is checked, then dynamic).
	outRecCache        map[*Node]struct{}
	outRecStatic       bool
	outRecDefaultCache map[*Node]struct{}
	outRecDefaultAtCL  uint64
	outRecCacheLevel   uint64
	outRecBuiltAtCL    uint64
	outRecInvalidAtCL  uint64

	// Cycle detection, layered on top of the outgoing recursive cache.
	inCycleStatic    *bool
	cycleStaticNodes map[*Node]struct{}
	cycleCache       map[*Node]struct{}
	cycleBuiltAtCL   uint64
}

// Graph returns the node's owning graph, failing if it was never
// registered with one.
func (n *Node) Graph() (*Graph, error) {
	return n.graph()
}

// NewNode creates an unregistered node with the given UID. Register it with
// a graph by passing it to (*Builder).AddNode or AddNodeDedup.
func NewNode(uid string) *Node {
	return &Node{member: member{uid: uid}}
}

func copyNodeSet(src map[*Node]struct{}) map[*Node]struct{} {
	dst := make(map[*Node]struct{}, len(src))
	for n := range src {
		dst[n] = struct{}{}
	}
	return dst
}

func copyNodeSetExcept(src map[*Node]struct{}, except *Node) map[*Node]struct{} {
	dst := make(map[*Node]struct{}, len(src))
	for n := range src {
		if n == except {
			continue
		}
		dst[n] = struct{}{}
	}
	return dst
}

func copyEdgeSet(src map[*Edge]struct{}) map[*Edge]struct{} {
	dst := make(map[*Edge]struct{}, len(src))
	for e := range src {
		dst[e] = struct{}{}
	}
	return dst
}

func copyEdgeSetExcept(src map[*Edge]struct{}, except *Edge) map[*Edge]struct{} {
	dst := make(map[*Edge]struct{}, len(src))
	for e := range src {
		if e == except {
			continue
		}
		dst[e] = struct{}{}
	}
	return dst
}

// addIncomingEdge registers e (whose To is n) into n's raw adjacency. Only
// called by Builder during construction, before the graph freezes.
func (n *Node) addIncomingEdge(e *Edge) {
	if n.rawIncomingEdges == nil {
		n.rawIncomingEdges = map[*Edge]struct{}{}
		n.rawIncomingNodes = map[*Node]struct{}{}
	}
	n.rawIncomingEdges[e] = struct{}{}
	n.rawIncomingNodes[e.from] = struct{}{}
}

// addOutgoingEdge registers e (whose From is n) into n's raw adjacency,
// enforcing that a node's outgoing edges are all the same Kind.
func (n *Node) addOutgoingEdge(e *Edge) error {
	if n.outgoingKindSet && n.outgoingKind != e.kind {
		if n.outgoingKind == Or {
			return wrapf(ErrNotAnOrEdge, "node %q already has or-edges outgoing", n.uid)
		}
		return wrapf(ErrNotAnEdge, "node %q already has mandatory edges outgoing", n.uid)
	}
	if n.rawOutgoingEdges == nil {
		n.rawOutgoingEdges = map[*Edge]struct{}{}
		n.rawOutgoingNodes = map[*Node]struct{}{}
	}
	n.rawOutgoingEdges[e] = struct{}{}
	n.rawOutgoingNodes[e.to] = struct{}{}
	n.outgoingKindSet = true
	n.outgoingKind = e.kind
	return nil
}

// hasContestableOrEdges reports whether n's outgoing edges are Or-kind AND
// there is more than one of them. A node whose only raw outgoing edge
// happens to be Or-kind has no real alternative: that edge's probability is
// always 1.0, so deleting it always cascades to delete n, exactly like a
// Mandatory edge. Only a real sibling group can change n's live outgoing set
// without n itself disappearing, so only that case disqualifies a closure
// from the static cache tier.
func (n *Node) hasContestableOrEdges() bool {
	return n.outgoingKindSet && n.outgoingKind == Or && len(n.rawOutgoingEdges) > 1
}

// IncomingEdges returns the node's live (non-deleted) incoming edges.
func (n *Node) IncomingEdges() (map[*Edge]struct{}, error) {
	if n.deleted {
		return nil, wrapf(ErrDeletedMemberInUse, "node %q", n.uid)
	}
	if n.inEdgesLive == nil {
		n.inEdgesLive = copyEdgeSet(n.rawIncomingEdges)
	}
	return n.inEdgesLive, nil
}

// IncomingNodes returns the node's live (non-deleted) incoming neighbors.
func (n *Node) IncomingNodes() (map[*Node]struct{}, error) {
	if n.deleted {
		return nil, wrapf(ErrDeletedMemberInUse, "node %q", n.uid)
	}
	if n.inNodesLive == nil {
		n.inNodesLive = copyNodeSet(n.rawIncomingNodes)
	}
	return n.inNodesLive, nil
}

// OutgoingEdges returns the node's live (non-deleted) outgoing edges.
func (n *Node) OutgoingEdges() (map[*Edge]struct{}, error) {
	if n.deleted {
		return nil, wrapf(ErrDeletedMemberInUse, "node %q", n.uid)
	}
	if n.outEdgesLive == nil {
		n.outEdgesLive = copyEdgeSet(n.rawOutgoingEdges)
	}
	return n.outEdgesLive, nil
}

// OutgoingNodes returns the node's live (non-deleted) outgoing neighbors.
func (n *Node) OutgoingNodes() (map[*Node]struct{}, error) {
	if n.deleted {
		return nil, wrapf(ErrDeletedMemberInUse, "node %q", n.uid)
	}
	if n.outNodesLive == nil {
		n.outNodesLive = copyNodeSet(n.rawOutgoingNodes)
	}
	return n.outNodesLive, nil
}

// MarkDeleted marks the node deleted, cascading into every incident edge.
// Idempotent: calling it on an already-deleted node is a no-op.
func (n *Node) MarkDeleted() error {
	if n.deleted {
		return nil
	}

	inEdges, err := n.IncomingEdges()
	if err != nil {
		return err
	}
	outEdges, err := n.OutgoingEdges()
	if err != nil {
		return err
	}

	// Snapshot before iterating: deleting an edge can cascade back into
	// this very method (a cycle's cascading delete can revisit n before n
	// itself is flagged deleted), which would otherwise mutate inEdgesLive/
	// outEdgesLive out from under a live range.
	inSnapshot := make([]*Edge, 0, len(inEdges))
	for e := range inEdges {
		inSnapshot = append(inSnapshot, e)
	}
	outSnapshot := make([]*Edge, 0, len(outEdges))
	for e := range outEdges {
		outSnapshot = append(outSnapshot, e)
	}

	for _, e := range inSnapshot {
		if err := e.MarkDeleted(); err != nil {
			return err
		}
	}
	for _, e := range outSnapshot {
		if err := e.MarkDeleted(); err != nil {
			return err
		}
	}

	n.deleted = true
	if n.g != nil {
		if n.g.deletedNodes == nil {
			n.g.deletedNodes = map[*Node]struct{}{}
		}
		n.g.deletedNodes[n] = struct{}{}
	}
	return nil
}
