package dpkggraph_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michael-schaller/purgatory/dpkggraph"
	"github.com/michael-schaller/purgatory/dpkgsource"
	"github.com/michael-schaller/purgatory/graph"
)

type fakeVersion struct{ pkg string }

func (v fakeVersion) Package() string { return v.pkg }

type fakeDependency struct {
	rawType string
	rawStr  string
	targets []dpkgsource.VersionDescriptor
}

func (d fakeDependency) RawType() string   { return d.rawType }
func (d fakeDependency) RawString() string { return d.rawStr }
func (d fakeDependency) InstalledTargetVersions() []dpkgsource.VersionDescriptor {
	return d.targets
}

type fakePackage struct {
	name string
	deps map[string][]dpkgsource.Dependency
}

func (p fakePackage) Name() string { return p.name }

func (p fakePackage) Dependencies(rawTypes ...string) []dpkgsource.Dependency {
	var out []dpkgsource.Dependency
	for _, t := range rawTypes {
		out = append(out, p.deps[t]...)
	}
	return out
}

type fakeCache struct {
	pkgs []dpkgsource.InstalledPackage
}

func (c fakeCache) InstalledPackages() []dpkgsource.InstalledPackage { return c.pkgs }

func target(pkg string) []dpkgsource.VersionDescriptor {
	return []dpkgsource.VersionDescriptor{fakeVersion{pkg: pkg}}
}

// basicCache builds: app depends on libfoo and recommends docs (installed);
// app2 also depends on libfoo, so both DependencyEdges should share one
// TargetVersionsNode.
func basicCache() fakeCache {
	app := fakePackage{name: "app", deps: map[string][]dpkgsource.Dependency{
		dpkgsource.Depends: {
			fakeDependency{rawType: dpkgsource.Depends, rawStr: "libfoo", targets: target("libfoo")},
		},
		dpkgsource.Recommends: {
			fakeDependency{rawType: dpkgsource.Recommends, rawStr: "docs", targets: target("docs")},
		},
	}}
	app2 := fakePackage{name: "app2", deps: map[string][]dpkgsource.Dependency{
		dpkgsource.Depends: {
			fakeDependency{rawType: dpkgsource.Depends, rawStr: "libfoo", targets: target("libfoo")},
		},
	}}
	libfoo := fakePackage{name: "libfoo"}
	docs := fakePackage{name: "docs"}
	return fakeCache{pkgs: []dpkgsource.InstalledPackage{app, app2, libfoo, docs}}
}

func TestNewIngestsAndDedupesTargetVersionsNodes(t *testing.T) {
	dg, err := dpkggraph.New(basicCache(), false, nil)
	require.NoError(t, err)

	assert.Len(t, dg.PackageNodes(), 4)

	deps := dg.DependencyEdges()
	var libfooDeps int
	for _, de := range deps {
		if de.RawType() == dpkgsource.Depends {
			libfooDeps++
		}
	}
	assert.Equal(t, 2, libfooDeps, "app and app2 both depend on libfoo")

	// Both DependencyEdges for libfoo must target the same
	// TargetVersionsNode since they resolve to the same package set.
	var libfooTargets []*graph.Node
	for _, de := range deps {
		if de.RawType() == dpkgsource.Depends {
			libfooTargets = append(libfooTargets, de.To())
		}
	}
	require.Len(t, libfooTargets, 2)
	assert.Same(t, libfooTargets[0], libfooTargets[1])
}

func TestNewSkipsUninstalledRecommends(t *testing.T) {
	app := fakePackage{name: "app", deps: map[string][]dpkgsource.Dependency{
		dpkgsource.Recommends: {
			fakeDependency{rawType: dpkgsource.Recommends, rawStr: "ghost", targets: nil},
		},
	}}
	dg, err := dpkggraph.New(fakeCache{pkgs: []dpkgsource.InstalledPackage{app}}, false, nil)
	require.NoError(t, err)
	assert.Empty(t, dg.DependencyEdges())
}

func TestNewPropagatesUnsatisfiedNonRecommends(t *testing.T) {
	app := fakePackage{name: "app", deps: map[string][]dpkgsource.Dependency{
		dpkgsource.Depends: {
			fakeDependency{rawType: dpkgsource.Depends, rawStr: "ghost", targets: nil},
		},
	}}
	_, err := dpkggraph.New(fakeCache{pkgs: []dpkgsource.InstalledPackage{app}}, false, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dpkggraph.ErrDependencyNotInstalled))
}

func TestNewRejectsUnsupportedDependencyType(t *testing.T) {
	// Filed under Depends so that New's request for its supported kinds
	// hands the Suggests-typed dependency over.
	app := fakePackage{name: "app", deps: map[string][]dpkgsource.Dependency{
		dpkgsource.Depends: {
			fakeDependency{rawType: "Suggests", rawStr: "maybe", targets: target("maybe")},
		},
	}}
	_, err := dpkggraph.New(fakeCache{pkgs: []dpkgsource.InstalledPackage{app}}, false, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dpkggraph.ErrUnsupportedDependencyType))
}

func TestNewEmptyCacheRejected(t *testing.T) {
	_, err := dpkggraph.New(fakeCache{}, false, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dpkggraph.ErrEmptyPackageCache))
}

func TestIgnoreRecommends(t *testing.T) {
	dg, err := dpkggraph.New(basicCache(), true, nil)
	require.NoError(t, err)
	for _, de := range dg.DependencyEdges() {
		assert.NotEqual(t, dpkgsource.Recommends, de.RawType())
	}
}

func TestMarkPackagesPurgedObsoletesDependency(t *testing.T) {
	app := fakePackage{name: "app", deps: map[string][]dpkgsource.Dependency{
		dpkgsource.Depends: {
			fakeDependency{rawType: dpkgsource.Depends, rawStr: "libfoo", targets: target("libfoo")},
		},
	}}
	libfoo := fakePackage{name: "libfoo"}
	dg, err := dpkggraph.New(fakeCache{pkgs: []dpkgsource.InstalledPackage{app, libfoo}}, false, nil)
	require.NoError(t, err)

	require.NoError(t, dg.MarkPackagesPurged([]string{"app"}))

	deleted := dg.DeletedPackageNodes()
	var names []string
	for _, pn := range deleted {
		names = append(names, pn.String())
	}
	assert.ElementsMatch(t, []string{"app", "libfoo"}, names)
}

func TestMarkPackagesPurgedIgnoresUnknownNames(t *testing.T) {
	dg, err := dpkggraph.New(basicCache(), false, nil)
	require.NoError(t, err)
	require.NoError(t, dg.MarkPackagesPurged([]string{"does-not-exist"}))
	assert.Empty(t, dg.DeletedPackageNodes())
}

func TestLeafPackageNames(t *testing.T) {
	dg, err := dpkggraph.New(basicCache(), false, nil)
	require.NoError(t, err)

	leafs, err := dg.Leafs()
	require.NoError(t, err)

	var allLeafNames []string
	for _, leaf := range leafs {
		allLeafNames = append(allLeafNames, dpkggraph.LeafPackageNames(leaf)...)
	}
	assert.Contains(t, allLeafNames, "app")
	assert.Contains(t, allLeafNames, "app2")
	assert.NotContains(t, allLeafNames, "docs", "app recommends docs, so docs is not a leaf")
}
