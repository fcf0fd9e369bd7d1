package dpkggraph

import (
	"errors"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/michael-schaller/purgatory/dpkgsource"
	"github.com/michael-schaller/purgatory/graph"
)

// DpkgGraph is the dependency graph of a dpkg installation: every
// installed package, the dependencies it carries, and the installed
// alternatives able to satisfy each one. See graph.Graph for the
// underlying engine and spec.md §3/§4 for the domain mapping.
type DpkgGraph struct {
	g *graph.Graph

	packageNodes        map[string]*PackageNode
	targetVersionsNodes map[string]*TargetVersionsNode
	dependencyEdges     map[string]*DependencyEdge
	targetEdges         map[string]*TargetEdge

	ignoreRecommends bool
}

// New ingests cache into a DpkgGraph. Ingestion runs in two phases: the
// first adds every installed package's PackageNode, the TargetVersionsNode
// each of its PreDepends/Depends/(non-ignored)Recommends dependencies
// resolves to (deduplicated across dependencies that resolve to the same
// installed package set), and the DependencyEdge connecting them; the
// second adds a TargetEdge from each TargetVersionsNode to every package
// it represents. logger may be nil, in which case construction is silent.
func New(cache dpkgsource.Cache, ignoreRecommends bool, logger hclog.Logger) (*DpkgGraph, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	installed := cache.InstalledPackages()
	if len(installed) == 0 {
		return nil, ErrEmptyPackageCache
	}

	rawTypes := []string{dpkgsource.PreDepends, dpkgsource.Depends, dpkgsource.Recommends}
	if ignoreRecommends {
		rawTypes = []string{dpkgsource.PreDepends, dpkgsource.Depends}
	}

	dg := &DpkgGraph{
		packageNodes:        map[string]*PackageNode{},
		targetVersionsNodes: map[string]*TargetVersionsNode{},
		dependencyEdges:     map[string]*DependencyEdge{},
		targetEdges:         map[string]*TargetEdge{},
		ignoreRecommends:    ignoreRecommends,
	}

	logger.Debug("initializing dpkg graph")

	g, err := graph.New(func(b *graph.Builder) error {
		for _, pkg := range installed {
			pn := newPackageNode(pkg.Name())
			if err := b.AddNode(pn.Node); err != nil {
				return err
			}
			dg.packageNodes[pn.name] = pn

			for _, dep := range pkg.Dependencies(rawTypes...) {
				tvn, err := newTargetVersionsNode(dep.InstalledTargetVersions())
				if err != nil {
					if errors.Is(err, ErrDependencyNotInstalled) && dep.RawType() == dpkgsource.Recommends {
						// A recommended package that isn't installed
						// simply isn't an edge.
						continue
					}
					return err
				}

				existing, isNew, err := b.AddNodeDedup(tvn.Node)
				if err != nil {
					return err
				}
				var tvnNode *TargetVersionsNode
				if isNew {
					tvnNode = tvn
					dg.targetVersionsNodes[tvn.UID()] = tvn
					logger.Debug("discovered target versions node", "node", tvnNode)
				} else {
					tvnNode = existing.Data.(*TargetVersionsNode)
				}

				de, err := newDependencyEdge(pn, tvnNode, dep)
				if err != nil {
					return err
				}
				if err := b.AddEdge(de.Edge); err != nil {
					return err
				}
				dg.dependencyEdges[de.UID()] = de
				logger.Debug("ingested dependency edge", "edge", de)
			}
		}

		for _, tvn := range dg.targetVersionsNodes {
			for _, pkgName := range tvn.targetPackages {
				pn, ok := dg.packageNodes[pkgName]
				if !ok {
					return wrapf(ErrPackageNotInstalled, "target package %q", pkgName)
				}
				te := newTargetEdge(tvn, pn)
				if err := b.AddEdge(te.Edge); err != nil {
					return err
				}
				dg.targetEdges[te.UID()] = te
				logger.Debug("ingested target edge", "edge", te)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dg.g = g

	logger.Debug("dpkg graph contains",
		"installed_package_nodes", len(dg.packageNodes),
		"target_versions_nodes", len(dg.targetVersionsNodes),
		"dependency_edges", len(dg.dependencyEdges),
		"target_edges", len(dg.targetEdges),
	)

	return dg, nil
}

// Graph returns the underlying generic graph.
func (d *DpkgGraph) Graph() *graph.Graph {
	return d.g
}

// PackageNode looks up an installed package's node by name.
func (d *DpkgGraph) PackageNode(name string) (*PackageNode, bool) {
	pn, ok := d.packageNodes[name]
	return pn, ok
}

// PackageNodes returns every live (non-deleted) package node, sorted by
// name.
func (d *DpkgGraph) PackageNodes() []*PackageNode {
	var out []*PackageNode
	for _, pn := range d.packageNodes {
		if !pn.Deleted() {
			out = append(out, pn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// DeletedPackageNodes returns every package node currently marked deleted,
// sorted by name. Used by the purge command to report what a purge would
// remove.
func (d *DpkgGraph) DeletedPackageNodes() []*PackageNode {
	var out []*PackageNode
	for n := range d.g.DeletedNodes() {
		if pn, ok := n.Data.(*PackageNode); ok {
			out = append(out, pn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// DependencyEdges returns every live dependency edge.
func (d *DpkgGraph) DependencyEdges() []*DependencyEdge {
	var out []*DependencyEdge
	for _, de := range d.dependencyEdges {
		if !de.Deleted() {
			out = append(out, de)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID() < out[j].UID() })
	return out
}

// TargetEdges returns every live target edge.
func (d *DpkgGraph) TargetEdges() []*TargetEdge {
	var out []*TargetEdge
	for _, te := range d.targetEdges {
		if !te.Deleted() {
			out = append(out, te)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID() < out[j].UID() })
	return out
}

// Leafs returns the graph's leaf groups, each a set of PackageNode values
// (plus, for a leaf cycle, the TargetVersionsNode/PackageNode glue between
// them — callers that only care about packages should filter with
// LeafPackageNames).
func (d *DpkgGraph) Leafs() ([]map[*graph.Node]struct{}, error) {
	return d.g.Leafs()
}

// LeafPackageNames renders one leaf group (as returned by Leafs) down to
// the sorted package names it contains, dropping any TargetVersionsNode
// glue. A leaf cycle involving only TargetVersionsNodes (no PackageNode)
// cannot occur in this domain: every cycle alternates PackageNode and
// TargetVersionsNode, so at least half its members are packages.
func LeafPackageNames(leaf map[*graph.Node]struct{}) []string {
	var names []string
	for n := range leaf {
		if pn, ok := n.Data.(*PackageNode); ok {
			names = append(names, pn.name)
		}
	}
	sort.Strings(names)
	return names
}

// MarkPackagesPurged marks the named packages (and everything that
// becomes obsolete as a result) deleted. Package names that aren't
// installed are silently ignored, matching the source CLI's behavior of
// treating "not installed" as "nothing to purge".
func (d *DpkgGraph) MarkPackagesPurged(names []string) error {
	var nodes []*graph.Node
	for _, name := range names {
		if pn, ok := d.packageNodes[name]; ok {
			nodes = append(nodes, pn.Node)
		}
	}
	return d.g.MarkMembersIncludingObsoleteDeleted(nodes)
}
