package dpkggraph

import (
	"fmt"

	"github.com/michael-schaller/purgatory/graph"
)

// TargetEdge connects a TargetVersionsNode to one installed package that
// can satisfy it. It is an Or edge: when a TargetVersionsNode represents
// more than one installed alternative, deleting one TargetEdge doesn't
// obsolete the dependency as long as a sibling alternative survives.
type TargetEdge struct {
	*graph.Edge
}

func newTargetEdge(from *TargetVersionsNode, to *PackageNode) *TargetEdge {
	uid := fmt.Sprintf("%s --> %s", from.UID(), to.UID())
	return &TargetEdge{Edge: graph.NewOrEdge(uid, from.Node, to.Node)}
}

// String renders "from --> to", or "from --p=0.500--> to" when the
// edge's probability is below 1.0 because live sibling alternatives share
// the TargetVersionsNode.
func (t *TargetEdge) String() string {
	prob, err := t.Probability()
	if err != nil {
		return t.UID()
	}
	if epsilonEqual(prob, 1.0) {
		return fmt.Sprintf("%s --> %s", t.From().Data, t.To().Data)
	}
	return fmt.Sprintf("%s --p=%.3f--> %s", t.From().Data, prob, t.To().Data)
}

const epsilon = 1e-5

func epsilonEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < epsilon
}
