package graph

import "sort"

// OutgoingNodesRecursive returns the transitive closure of the node's
// outgoing neighbors (the node itself included, iff it sits on a cycle
// reachable from itself).
func (n *Node) OutgoingNodesRecursive() (map[*Node]struct{}, error) {
	if n.deleted {
		return nil, wrapf(ErrDeletedMemberInUse, "node %q", n.uid)
	}
	set, _, err := n.outgoingNodesRecursiveTiered()
	return set, err
}

// outgoingNodesRecursiveTiered is the two-stage worklist algorithm backing
// OutgoingNodesRecursive: stage one walks the closure breadth-first-ish,
// folding in any node whose cache already validates and recording every
// node whose cache needs (re)computation along with its distance from n;
// stage two recomputes those nodes bottom-up (deepest first), so that by
// the time n itself is recomputed, every child it depends on is already
// cached. n has distance 0 and is never revisited once popped, so it is
// always the last node stage two recomputes, and that final computation is
// what gets returned.
func (n *Node) outgoingNodesRecursiveTiered() (map[*Node]struct{}, cacheTier, error) {
	graphCL := n.g.outCacheLevel

	type pending struct {
		node *Node
		dist int
	}

	toVisit := map[*Node]int{n: 0}
	visited := map[*Node]struct{}{}
	var missing []pending
	var lastSet map[*Node]struct{}
	var lastTier cacheTier

	for len(toVisit) > 0 {
		var node *Node
		var dist int
		for k, v := range toVisit {
			node, dist = k, v
			break
		}
		delete(toVisit, node)
		if _, ok := visited[node]; ok {
			continue
		}
		visited[node] = struct{}{}

		if set, tier, ok := node.getOutgoingRecursiveCache(graphCL); ok {
			lastSet, lastTier = set, tier
			continue
		}
		missing = append(missing, pending{node, dist})

		outNodes, err := node.OutgoingNodes()
		if err != nil {
			return nil, 0, err
		}
		for on := range outNodes {
			if _, ok := visited[on]; !ok {
				toVisit[on] = dist + 1
			}
		}
	}

	sort.Slice(missing, func(i, j int) bool { return missing[i].dist > missing[j].dist })
	for _, p := range missing {
		set, tier, err := p.node.determineOutgoingNodesRecursive(graphCL)
		if err != nil {
			return nil, 0, err
		}
		lastSet, lastTier = set, tier
	}

	return lastSet, lastTier, nil
}

// determineOutgoingNodesRecursive computes n's outgoing closure from
// scratch, folding in any child's cache that already validates, and
// classifies the result into the static/default/dynamic tier depending on
// whether any Or edge or any touched live projection was encountered in the
// closure.
func (n *Node) determineOutgoingNodesRecursive(graphCL uint64) (map[*Node]struct{}, cacheTier, error) {
	toVisit := map[*Node]struct{}{n: {}}
	visited := map[*Node]struct{}{}
	result := map[*Node]struct{}{}
	static := true
	isDefault := true

	for len(toVisit) > 0 {
		var node *Node
		for k := range toVisit {
			node = k
			break
		}
		delete(toVisit, node)
		if _, ok := visited[node]; ok {
			continue
		}
		visited[node] = struct{}{}

		if static && node.hasContestableOrEdges() {
			static = false
		}
		if isDefault && node.outTouched {
			isDefault = false
		}

		outNodes, err := node.OutgoingNodes()
		if err != nil {
			return nil, 0, err
		}
		for on := range outNodes {
			result[on] = struct{}{}
		}
		for cn := range outNodes {
			if _, ok := visited[cn]; ok {
				continue
			}
			if set, tier, ok := cn.getOutgoingRecursiveCache(graphCL); ok {
				if tier != tierStatic {
					static = false
				}
				if tier != tierStatic && tier != tierDefault {
					isDefault = false
				}
				for x := range set {
					result[x] = struct{}{}
					visited[x] = struct{}{}
					delete(toVisit, x)
				}
				visited[cn] = struct{}{}
				delete(toVisit, cn)
				continue
			}
			toVisit[cn] = struct{}{}
		}
	}

	n.outRecCache = result
	n.outRecStatic = static
	if static {
		return result, tierStatic, nil
	}
	if isDefault {
		n.outRecDefaultCache = result
		n.outRecDefaultAtCL = graphCL
		return result, tierDefault, nil
	}
	n.outRecCacheLevel = graphCL
	n.outRecBuiltAtCL = graphCL
	return result, tierDynamic, nil
}

// getOutgoingRecursiveCache returns n's cached outgoing closure if it is
// still valid at graphCL, and the tier it validated at. ok is false when no
// cache exists or it has been invalidated.
func (n *Node) getOutgoingRecursiveCache(graphCL uint64) (map[*Node]struct{}, cacheTier, bool) {
	cache := n.outRecCache
	if cache == nil {
		return nil, 0, false
	}
	if n.outRecStatic {
		return cache, tierStatic, true
	}
	if n.outRecDefaultCache != nil && n.outRecDefaultAtCL == graphCL {
		return n.outRecDefaultCache, tierDefault, true
	}
	if n.outRecCacheLevel == graphCL {
		return cache, tierDynamic, true
	}

	selfOut, err := n.OutgoingNodes()
	if err != nil {
		return nil, 0, false
	}

	if n.outRecDefaultCache != nil {
		untouched := !n.outTouched
		if untouched {
			for node := range selfOut {
				if node.outTouched {
					untouched = false
					break
				}
			}
		}
		if untouched {
			for node := range n.outRecDefaultCache {
				if node.outTouched {
					untouched = false
					break
				}
			}
		}
		if untouched {
			n.outRecDefaultAtCL = graphCL
			return n.outRecDefaultCache, tierDefault, true
		}
	}

	selfBuiltAt := n.outRecBuiltAtCL
	checkSets := []map[*Node]struct{}{selfOut, cache}
	if n.outRecInvalidAtCL > selfBuiltAt {
		return nil, 0, false
	}
	for _, set := range checkSets {
		for node := range set {
			if node.outRecStatic {
				continue
			}
			if node.outRecInvalidAtCL > node.outRecBuiltAtCL {
				return nil, 0, false
			}
			if node.outRecBuiltAtCL > selfBuiltAt {
				return nil, 0, false
			}
		}
	}

	n.outRecCacheLevel = graphCL
	return cache, tierDynamic, true
}

// IncomingNodesRecursive returns the transitive closure of the node's
// incoming neighbors (the node itself included, iff it sits on a cycle).
func (n *Node) IncomingNodesRecursive() (map[*Node]struct{}, error) {
	if n.deleted {
		return nil, wrapf(ErrDeletedMemberInUse, "node %q", n.uid)
	}
	graphCL := n.g.inCacheLevel

	type pending struct {
		node *Node
		dist int
	}

	toVisit := map[*Node]int{n: 0}
	visited := map[*Node]struct{}{}
	var missing []pending

	for len(toVisit) > 0 {
		var node *Node
		var dist int
		for k, v := range toVisit {
			node, dist = k, v
			break
		}
		delete(toVisit, node)
		if _, ok := visited[node]; ok {
			continue
		}
		visited[node] = struct{}{}

		if node.getIncomingRecursiveCache(graphCL) != nil {
			continue
		}
		missing = append(missing, pending{node, dist})

		inNodes, err := node.IncomingNodes()
		if err != nil {
			return nil, err
		}
		for in := range inNodes {
			if _, ok := visited[in]; !ok {
				toVisit[in] = dist + 1
			}
		}
	}

	sort.Slice(missing, func(i, j int) bool { return missing[i].dist > missing[j].dist })
	for _, p := range missing {
		if err := p.node.determineIncomingNodesRecursive(graphCL); err != nil {
			return nil, err
		}
	}

	return n.inRecCache, nil
}

func (n *Node) determineIncomingNodesRecursive(graphCL uint64) error {
	toVisit := map[*Node]struct{}{n: {}}
	visited := map[*Node]struct{}{}
	result := map[*Node]struct{}{}

	for len(toVisit) > 0 {
		var node *Node
		for k := range toVisit {
			node = k
			break
		}
		delete(toVisit, node)
		if _, ok := visited[node]; ok {
			continue
		}
		visited[node] = struct{}{}

		inNodes, err := node.IncomingNodes()
		if err != nil {
			return err
		}
		for in := range inNodes {
			result[in] = struct{}{}
		}
		for cn := range inNodes {
			if _, ok := visited[cn]; ok {
				continue
			}
			if cached := cn.getIncomingRecursiveCache(graphCL); cached != nil {
				for x := range cached {
					result[x] = struct{}{}
					visited[x] = struct{}{}
					delete(toVisit, x)
				}
				visited[cn] = struct{}{}
				delete(toVisit, cn)
				continue
			}
			toVisit[cn] = struct{}{}
		}
	}

	n.inRecCache = result
	n.inRecCacheLevel = graphCL
	n.inRecBuiltAtCL = graphCL
	return nil
}

func (n *Node) getIncomingRecursiveCache(graphCL uint64) map[*Node]struct{} {
	cache := n.inRecCache
	if cache == nil {
		return nil
	}
	if n.inRecCacheLevel == graphCL {
		return cache
	}
	if n.inRecInvalidAtCL > n.inRecBuiltAtCL {
		return nil
	}
	for node := range cache {
		if node.inRecInvalidAtCL > node.inRecBuiltAtCL {
			return nil
		}
	}
	n.inRecCacheLevel = graphCL
	return cache
}

// InCycle reports whether n is reachable from itself via its own outgoing
// edges.
func (n *Node) InCycle() (bool, error) {
	if n.deleted {
		return false, wrapf(ErrDeletedMemberInUse, "node %q", n.uid)
	}
	if n.inCycleStatic != nil {
		return *n.inCycleStatic, nil
	}

	inNodes, err := n.IncomingNodes()
	if err != nil {
		return false, err
	}
	if len(inNodes) == 0 {
		return false, nil
	}
	outNodes, err := n.OutgoingNodes()
	if err != nil {
		return false, err
	}

	var shared []*Node
	for on := range outNodes {
		if _, ok := inNodes[on]; ok {
			shared = append(shared, on)
		}
	}
	if len(shared) > 0 {
		if !n.hasContestableOrEdges() {
			static := true
			for _, node := range shared {
				if node.hasContestableOrEdges() {
					static = false
					break
				}
			}
			if static {
				t := true
				n.inCycleStatic = &t
				for _, node := range shared {
					nt := true
					node.inCycleStatic = &nt
				}
			}
		}
		return true, nil
	}

	onrs, tier, err := n.outgoingNodesRecursiveTiered()
	if err != nil {
		return false, err
	}
	_, inCycle := onrs[n]
	if tier == tierStatic {
		b := inCycle
		n.inCycleStatic = &b
	} else if tier == tierDefault && !inCycle {
		f := false
		n.inCycleStatic = &f
	}
	return inCycle, nil
}

// CycleNodes returns the set of nodes on the same cycle as n, or an empty
// set if n is not on a cycle. n itself is included when it is on a cycle.
func (n *Node) CycleNodes() (map[*Node]struct{}, error) {
	if n.deleted {
		return nil, wrapf(ErrDeletedMemberInUse, "node %q", n.uid)
	}
	if n.cycleStaticNodes != nil {
		return n.cycleStaticNodes, nil
	}
	graphCL := n.g.outCacheLevel
	if n.cycleCache != nil && n.cycleBuiltAtCL == graphCL {
		return n.cycleCache, nil
	}

	onrs, tier, err := n.outgoingNodesRecursiveTiered()
	if err != nil {
		return nil, err
	}
	if _, ok := onrs[n]; !ok {
		return map[*Node]struct{}{}, nil
	}

	toVisit := map[*Node]struct{}{n: {}}
	visited := map[*Node]struct{}{}
	cycleNodes := map[*Node]struct{}{}
	for len(toVisit) > 0 {
		var node *Node
		for k := range toVisit {
			node = k
			break
		}
		delete(toVisit, node)
		if _, ok := visited[node]; ok {
			continue
		}
		visited[node] = struct{}{}

		inNodes, err := node.IncomingNodes()
		if err != nil {
			return nil, err
		}
		for cn := range inNodes {
			if _, ok := onrs[cn]; !ok {
				continue
			}
			if _, ok := cycleNodes[cn]; ok {
				continue
			}
			cycleNodes[cn] = struct{}{}
			if _, ok := visited[cn]; !ok {
				toVisit[cn] = struct{}{}
			}
		}
	}

	static := tier == tierStatic
	if !static {
		static = true
		for node := range cycleNodes {
			if node.hasContestableOrEdges() {
				static = false
				break
			}
		}
	}
	if static {
		for node := range cycleNodes {
			t := true
			node.inCycleStatic = &t
			node.cycleStaticNodes = cycleNodes
		}
	}

	n.cycleCache = cycleNodes
	n.cycleBuiltAtCL = graphCL
	return cycleNodes, nil
}

// IncomingCycleNodes returns every live incoming neighbor of n's cycle that
// is not itself part of the cycle — the set of nodes whose support would
// need reevaluating if the cycle were deleted.
func (n *Node) IncomingCycleNodes() (map[*Node]struct{}, error) {
	cycleNodes, err := n.CycleNodes()
	if err != nil {
		return nil, err
	}
	result := map[*Node]struct{}{}
	for cn := range cycleNodes {
		inNodes, err := cn.IncomingNodes()
		if err != nil {
			return nil, err
		}
		for x := range inNodes {
			result[x] = struct{}{}
		}
	}
	for cn := range cycleNodes {
		delete(result, cn)
	}
	return result, nil
}
