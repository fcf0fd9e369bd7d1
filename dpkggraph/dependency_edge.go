package dpkggraph

import (
	"fmt"

	"github.com/michael-schaller/purgatory/dpkgsource"
	"github.com/michael-schaller/purgatory/graph"
)

var supportedDependencyTypes = map[string]struct{}{
	dpkgsource.PreDepends: {},
	dpkgsource.Depends:    {},
	dpkgsource.Recommends: {},
}

// DependencyEdge connects a PackageNode to the TargetVersionsNode that
// satisfies one of its dependencies. Its probability is always 1.0:
// PreDepends and Depends are hard requirements with exactly one
// TargetVersionsNode able to fulfill them, and a Recommends edge only
// exists at all because the recommended package happens to be installed —
// there is never an alternative TargetVersionsNode competing for the same
// dependency.
type DependencyEdge struct {
	*graph.Edge
	rawType   string
	rawString string
}

func newDependencyEdge(from *PackageNode, to *TargetVersionsNode, dep dpkgsource.Dependency) (*DependencyEdge, error) {
	if _, ok := supportedDependencyTypes[dep.RawType()]; !ok {
		return nil, wrapf(ErrUnsupportedDependencyType, "dependency %q has raw type %q", dep.RawString(), dep.RawType())
	}
	uid := fmt.Sprintf("%s --%s--> %s", from.UID(), dep.RawType(), dep.RawString())
	return &DependencyEdge{
		Edge:      graph.NewEdge(uid, from.Node, to.Node),
		rawType:   dep.RawType(),
		rawString: dep.RawString(),
	}, nil
}

// RawType returns the dependency's raw type, e.g. "Depends".
func (d *DependencyEdge) RawType() string { return d.rawType }

// String returns the edge's UID.
func (d *DependencyEdge) String() string { return d.UID() }
