package graph_test

import (
	"fmt"
	"testing"

	"github.com/michael-schaller/purgatory/graph"
)

// benchSinkNodes prevents the compiler from eliding OutgoingNodesRecursive
// as dead code in the benchmarks below.
var benchSinkNodes map[*graph.Node]struct{}

// buildBenchChain builds a depth-deep mandatory chain root->n1->...->nDepth,
// every node with exactly one outgoing edge. No node in the chain ever has
// a contested Or sibling, so the whole closure settles into the static tier
// after one query.
func buildBenchChain(depth int) *graph.Node {
	g, err := graph.New(func(b *graph.Builder) error {
		nodes := make([]*graph.Node, depth+1)
		for i := range nodes {
			nodes[i] = graph.NewNode(fmt.Sprintf("n%d", i))
			if err := b.AddNode(nodes[i]); err != nil {
				return err
			}
		}
		for i := 0; i < depth; i++ {
			if err := b.AddEdge(graph.NewEdge(fmt.Sprintf("e%d", i), nodes[i], nodes[i+1])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		panic(err)
	}
	root, _ := g.Node("n0")
	return root
}

// buildBenchBranch builds a root with a two-way Or choice into two chains of
// the given depth that reconverge at a shared tail node. The Or siblings
// make root's own closure non-static (the default tier), while everything
// downstream of either branch remains static.
func buildBenchBranch(depth int) *graph.Node {
	g, err := graph.New(func(b *graph.Builder) error {
		root := graph.NewNode("root")
		tail := graph.NewNode("tail")
		if err := b.AddNode(root); err != nil {
			return err
		}
		if err := b.AddNode(tail); err != nil {
			return err
		}

		branch := func(prefix string) error {
			prev := root
			for i := 0; i < depth; i++ {
				n := graph.NewNode(fmt.Sprintf("%s%d", prefix, i))
				if err := b.AddNode(n); err != nil {
					return err
				}
				if prev == root {
					if err := b.AddEdge(graph.NewOrEdge(prefix+"-head", prev, n)); err != nil {
						return err
					}
				} else {
					if err := b.AddEdge(graph.NewEdge(fmt.Sprintf("%s-e%d", prefix, i), prev, n)); err != nil {
						return err
					}
				}
				prev = n
			}
			return b.AddEdge(graph.NewEdge(prefix+"-tail", prev, tail))
		}
		if err := branch("a"); err != nil {
			return err
		}
		return branch("b")
	})
	if err != nil {
		panic(err)
	}
	root, _ := g.Node("root")
	return root
}

// BenchmarkOutgoingNodesRecursive_Static measures repeated queries against a
// closure that settles into the static cache tier after its first
// computation: every call after the first should hit the tier's
// no-invalidation-check fast path.
func BenchmarkOutgoingNodesRecursive_Static(b *testing.B) {
	root := buildBenchChain(64)
	if _, err := root.OutgoingNodesRecursive(); err != nil {
		b.Fatalf("warmup: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		set, err := root.OutgoingNodesRecursive()
		if err != nil {
			b.Fatalf("OutgoingNodesRecursive: %v", err)
		}
		benchSinkNodes = set
	}
}

// BenchmarkOutgoingNodesRecursive_Default measures repeated queries against
// a closure that settles into the default tier: valid as long as nothing in
// it has ever been touched. The cache level never moves between calls, so
// every call is served by the tier's level check without the untouched scan.
func BenchmarkOutgoingNodesRecursive_Default(b *testing.B) {
	root := buildBenchBranch(64)
	if _, err := root.OutgoingNodesRecursive(); err != nil {
		b.Fatalf("warmup: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		set, err := root.OutgoingNodesRecursive()
		if err != nil {
			b.Fatalf("OutgoingNodesRecursive: %v", err)
		}
		benchSinkNodes = set
	}
}

// BenchmarkOutgoingNodesRecursive_Dynamic measures repeated queries against
// a closure pinned to the dynamic tier: one sibling of root's Or choice is
// deleted before the timer starts, touching root's outgoing projection and
// permanently disqualifying it from the default tier's untouched fast path.
func BenchmarkOutgoingNodesRecursive_Dynamic(b *testing.B) {
	root := buildBenchBranch(64)
	g, err := root.Graph()
	if err != nil {
		b.Fatalf("Graph: %v", err)
	}
	bHead, ok := g.Edge("b-head")
	if !ok {
		b.Fatalf("edge b-head not found")
	}
	if err := bHead.MarkDeleted(); err != nil {
		b.Fatalf("MarkDeleted: %v", err)
	}
	if _, err := root.OutgoingNodesRecursive(); err != nil {
		b.Fatalf("warmup: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		set, err := root.OutgoingNodesRecursive()
		if err != nil {
			b.Fatalf("OutgoingNodesRecursive: %v", err)
		}
		benchSinkNodes = set
	}
}
