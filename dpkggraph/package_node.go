package dpkggraph

import "github.com/michael-schaller/purgatory/graph"

// PackageNode represents one installed package. It is a simplification of
// the underlying dependency graph: since at most one version of a package
// can be installed at a time, package and version collapse into a single
// node.
type PackageNode struct {
	*graph.Node
	name string
}

// newPackageNode creates a PackageNode for the given package name. The
// caller (the ingestion driver) is the only place that ever sees a name
// that isn't already known to be installed, so there is no separate
// "is this installed" check here — see ErrPackageNotInstalled for where
// that distinction actually surfaces, at TargetEdge resolution time.
func newPackageNode(name string) *PackageNode {
	pn := &PackageNode{Node: graph.NewNode(name), name: name}
	pn.Data = pn
	return pn
}

// String returns the package name.
func (p *PackageNode) String() string {
	return p.name
}
