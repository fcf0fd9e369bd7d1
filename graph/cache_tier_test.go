package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCacheTierTransitions reproduces the chain n1->n2; n2-or->n3;
// n2-or->n4-or->n5; n3/n5->n6 (n4's path to n6 runs through n5) and asserts
// the static/default/dynamic classification OutgoingNodesRecursive's cache
// settles into at each step. It lives in package graph (not graph_test)
// because cacheTier and the cache accessor are both unexported: there is no
// black-box way to observe which tier served a result.
func TestCacheTierTransitions(t *testing.T) {
	var n1, n2, n3, n4, n5, n6 *Node
	var eN2N3 *Edge

	g, err := New(func(b *Builder) error {
		n1, n2, n3, n4, n5, n6 = NewNode("n1"), NewNode("n2"), NewNode("n3"), NewNode("n4"), NewNode("n5"), NewNode("n6")
		for _, n := range []*Node{n1, n2, n3, n4, n5, n6} {
			if err := b.AddNode(n); err != nil {
				return err
			}
		}

		eN2N3 = NewOrEdge("n2->n3", n2, n3)
		edges := []*Edge{
			NewEdge("n1->n2", n1, n2),
			eN2N3,
			NewOrEdge("n2->n4", n2, n4),
			NewOrEdge("n4->n5", n4, n5),
			NewEdge("n3->n6", n3, n6),
			NewEdge("n5->n6", n5, n6),
		}
		for _, e := range edges {
			if err := b.AddEdge(e); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	tierOf := func(n *Node) (cacheTier, bool) {
		_, tier, ok := n.getOutgoingRecursiveCache(n.g.outCacheLevel)
		return tier, ok
	}

	_, err = n1.OutgoingNodesRecursive()
	require.NoError(t, err)

	// n4's only raw outgoing edge is an Or edge with no sibling, so it can
	// never lose it without being deleted itself: its closure, and n3/n5/n6
	// downstream of it, are static. n2 has a real two-way Or choice (n3 vs
	// n4), so it and n1 above it only reach the default tier.
	for _, n := range []*Node{n3, n4, n5, n6} {
		tier, ok := tierOf(n)
		require.True(t, ok, "node %s", n.UID())
		require.Equal(t, tierStatic, tier, "node %s", n.UID())
	}
	for _, n := range []*Node{n1, n2} {
		tier, ok := tierOf(n)
		require.True(t, ok, "node %s", n.UID())
		require.Equal(t, tierDefault, tier, "node %s", n.UID())
	}

	n3Static := n3.outRecCache
	n4Static := n4.outRecCache

	require.NoError(t, n3.MarkDeleted())
	_, err = n1.OutgoingNodesRecursive()
	require.NoError(t, err)

	for _, n := range []*Node{n1, n2} {
		tier, ok := tierOf(n)
		require.True(t, ok, "node %s", n.UID())
		require.Equal(t, tierDynamic, tier, "node %s", n.UID())
	}
	for _, n := range []*Node{n4, n5, n6} {
		tier, ok := tierOf(n)
		require.True(t, ok, "node %s", n.UID())
		require.Equal(t, tierStatic, tier, "node %s", n.UID())
	}
	require.Equal(t, n4Static, n4.outRecCache, "n4's static cache must not be touched by deleting n3")

	g.UnmarkDeleted()
	require.NoError(t, eN2N3.MarkDeleted())
	_, err = n1.OutgoingNodesRecursive()
	require.NoError(t, err)

	for _, n := range []*Node{n1, n2} {
		tier, ok := tierOf(n)
		require.True(t, ok, "node %s", n.UID())
		require.Equal(t, tierDynamic, tier, "node %s", n.UID())
	}
	for _, n := range []*Node{n3, n4, n5, n6} {
		tier, ok := tierOf(n)
		require.True(t, ok, "node %s", n.UID())
		require.Equal(t, tierStatic, tier, "node %s", n.UID())
	}
	require.Equal(t, n3Static, n3.outRecCache, "n3's static cache must survive unmark/re-delete of its incoming edge")
	require.Equal(t, n4Static, n4.outRecCache, "n4's static cache must never be invalidated")
}
