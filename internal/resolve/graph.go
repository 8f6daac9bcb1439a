package resolve

// refGraph is the dependency graph between configuration entries. Nodes are
// entry refs; an edge A -> B means B's value references A. The compiler is
// single-threaded, so the graph needs no locking.
type refGraph struct {
	nodes map[string]*refNode
	order []string
}

type refNode struct {
	id   string
	deps []string
}

func newRefGraph() *refGraph {
	return &refGraph{nodes: make(map[string]*refNode)}
}

// addNode registers a node. Adding an existing node does nothing.
func (g *refGraph) addNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &refNode{id: id}
	g.order = append(g.order, id)
}

// addDep records that id's value references dep. Both nodes must exist.
func (g *refGraph) addDep(id, dep string) {
	n := g.nodes[id]
	for _, d := range n.deps {
		if d == dep {
			return
		}
	}
	n.deps = append(n.deps, dep)
}

// sortTopological returns the node ids ordered so every node appears after
// all of its dependencies. When the graph contains a cycle it returns the
// full cycle path instead (first node repeated at the end).
func (g *refGraph) sortTopological() (order []string, cycle []string) {
	// Classic three-color depth-first search. permanent nodes are fully
	// visited; stack holds the current recursion path so a back-edge can be
	// reported as the complete cycle, not just its entry point.
	permanent := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var visit func(id string) []string
	visit = func(id string) []string {
		if permanent[id] {
			return nil
		}
		if onStack[id] {
			return extractCycle(stack, id)
		}

		onStack[id] = true
		stack = append(stack, id)

		for _, dep := range g.nodes[id].deps {
			if c := visit(dep); c != nil {
				return c
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, id)
		permanent[id] = true
		order = append(order, id)
		return nil
	}

	for _, id := range g.order {
		if c := visit(id); c != nil {
			return nil, c
		}
	}
	return order, nil
}

// extractCycle slices the recursion stack from the first occurrence of id
// and closes the loop by repeating it.
func extractCycle(stack []string, id string) []string {
	for i, s := range stack {
		if s == id {
			cycle := append([]string{}, stack[i:]...)
			return append(cycle, id)
		}
	}
	return []string{id, id}
}
