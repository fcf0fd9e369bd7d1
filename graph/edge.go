package graph

// epsilon is the floating-point tolerance used whenever an edge probability
// is compared against 0.0 or 1.0.
const epsilon = 1e-5

// Edge is a directed connection between two nodes. Its Kind is fixed at
// construction: Mandatory edges always have probability 1.0, Or edges have
// probability 1/(live sibling count).
type Edge struct {
	member
	from *Node
	to   *Node
	kind Kind
}

// NewEdge creates an unregistered mandatory edge from 'from' to 'to'.
// Register it with a graph by passing it to (*Builder).AddEdge.
func NewEdge(uid string, from, to *Node) *Edge {
	return &Edge{member: member{uid: uid}, from: from, to: to, kind: Mandatory}
}

// NewOrEdge creates an unregistered Or edge from 'from' to 'to'.
func NewOrEdge(uid string, from, to *Node) *Edge {
	return &Edge{member: member{uid: uid}, from: from, to: to, kind: Or}
}

// From returns the edge's source node.
func (e *Edge) From() *Node { return e.from }

// To returns the edge's destination node.
func (e *Edge) To() *Node { return e.to }

// Kind reports whether this is a Mandatory or an Or edge.
func (e *Edge) Kind() Kind { return e.kind }

// Graph returns the edge's owning graph, failing if it was never
// registered with one.
func (e *Edge) Graph() (*Graph, error) {
	return e.graph()
}

// Probability returns the edge's probability: always 1.0 for a Mandatory
// edge, 1/(live sibling count) for an Or edge. Reading it on an Or edge
// materializes the from-node's live outgoing-edge projection as a side
// effect, since that's the set being counted.
func (e *Edge) Probability() (float64, error) {
	if e.deleted {
		return 0, wrapf(ErrDeletedMemberInUse, "edge %q", e.uid)
	}
	if e.kind == Mandatory {
		return 1.0, nil
	}
	liveOut, err := e.from.OutgoingEdges()
	if err != nil {
		return 0, err
	}
	// e is always a member of its own from-node's live outgoing edges
	// until it is itself deleted, so liveOut is never empty here.
	return 1.0 / float64(len(liveOut)), nil
}

// MarkDeleted marks the edge deleted, updating both endpoints' live
// projections and cache-level counters, and cascades to deleting the
// from-node iff the edge's probability was 1.0 (a Mandatory edge, or the
// last surviving Or-edge sibling). Idempotent.
func (e *Edge) MarkDeleted() error {
	if e.deleted {
		return nil
	}

	prob, err := e.Probability()
	if err != nil {
		return err
	}

	g := e.g
	from, to := e.from, e.to

	e.deleted = true
	if g != nil {
		if g.deletedEdges == nil {
			g.deletedEdges = map[*Edge]struct{}{}
		}
		g.deletedEdges[e] = struct{}{}
	}

	if to.inEdgesLive == nil {
		to.inEdgesLive = copyEdgeSetExcept(to.rawIncomingEdges, e)
	} else {
		delete(to.inEdgesLive, e)
	}
	if to.inNodesLive == nil {
		to.inNodesLive = copyNodeSetExcept(to.rawIncomingNodes, from)
	} else {
		delete(to.inNodesLive, from)
	}
	to.inTouched = true
	if g != nil {
		g.inCacheLevel++
		to.inRecInvalidAtCL = g.inCacheLevel
	}

	if prob < 1.0-epsilon {
		if from.outEdgesLive == nil {
			from.outEdgesLive = copyEdgeSetExcept(from.rawOutgoingEdges, e)
		} else {
			delete(from.outEdgesLive, e)
		}
		if from.outNodesLive == nil {
			from.outNodesLive = copyNodeSetExcept(from.rawOutgoingNodes, to)
		} else {
			delete(from.outNodesLive, to)
		}
		from.outTouched = true
		if g != nil {
			g.outCacheLevel++
			from.outRecInvalidAtCL = g.outCacheLevel
		}
	}

	if epsilonEqual(prob, 1.0) {
		return from.MarkDeleted()
	}
	return nil
}
