package dpkggraph

import (
	"sort"
	"strings"

	"github.com/michael-schaller/purgatory/dpkgsource"
	"github.com/michael-schaller/purgatory/graph"
)

// TargetVersionsNode represents the set of installed packages that
// satisfy one or more dependencies. It is solely defined by that package
// set — it doesn't belong to any one dependency or package — so two
// dependencies that resolve to the same installed packages share a single
// TargetVersionsNode. Its UID encodes the sorted package names:
// "<p1|p2|...>".
type TargetVersionsNode struct {
	*graph.Node
	targetPackages []string
}

// targetVersionsUID builds a TargetVersionsNode's UID and sorted package
// list from a dependency's installed target versions, failing with
// ErrDependencyNotInstalled if there are none.
func targetVersionsUID(targets []dpkgsource.VersionDescriptor) (uid string, packages []string, err error) {
	if len(targets) == 0 {
		return "", nil, ErrDependencyNotInstalled
	}
	names := map[string]struct{}{}
	for _, t := range targets {
		names[t.Package()] = struct{}{}
	}
	packages = make([]string, 0, len(names))
	for n := range names {
		packages = append(packages, n)
	}
	sort.Strings(packages)
	return "<" + strings.Join(packages, "|") + ">", packages, nil
}

func newTargetVersionsNode(targets []dpkgsource.VersionDescriptor) (*TargetVersionsNode, error) {
	uid, packages, err := targetVersionsUID(targets)
	if err != nil {
		return nil, err
	}
	tvn := &TargetVersionsNode{Node: graph.NewNode(uid), targetPackages: packages}
	tvn.Data = tvn
	return tvn, nil
}

// TargetPackages returns the sorted package names this node's UID encodes.
func (t *TargetVersionsNode) TargetPackages() []string {
	return t.targetPackages
}

// String returns the node's UID.
func (t *TargetVersionsNode) String() string {
	return t.UID()
}
