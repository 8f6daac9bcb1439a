package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortTopologicalOrdersDependenciesFirst(t *testing.T) {
	g := newRefGraph()
	g.addNode("a")
	g.addNode("b")
	g.addNode("c")
	g.addDep("a", "b") // a references b
	g.addDep("b", "c")

	order, cycle := g.sortTopological()
	require.Nil(t, cycle)
	require.Len(t, order, 3)

	pos := map[string]int{}
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos["c"], pos["b"])
	assert.Less(t, pos["b"], pos["a"])
}

func TestSortTopologicalDeterministic(t *testing.T) {
	build := func() *refGraph {
		g := newRefGraph()
		for _, id := range []string{"w", "x", "y", "z"} {
			g.addNode(id)
		}
		g.addDep("x", "w")
		g.addDep("z", "y")
		return g
	}

	first, _ := build().sortTopological()
	for i := 0; i < 10; i++ {
		again, _ := build().sortTopological()
		assert.Equal(t, first, again)
	}
}

func TestSortTopologicalReportsFullCycle(t *testing.T) {
	g := newRefGraph()
	g.addNode("a")
	g.addNode("b")
	g.addNode("c")
	g.addDep("a", "b")
	g.addDep("b", "c")
	g.addDep("c", "a")

	order, cycle := g.sortTopological()
	assert.Nil(t, order)
	require.Len(t, cycle, 4)
	assert.Equal(t, cycle[0], cycle[len(cycle)-1])
	assert.ElementsMatch(t, []string{"a", "b", "c"}, cycle[:3])
}

func TestSortTopologicalSelfReference(t *testing.T) {
	g := newRefGraph()
	g.addNode("a")
	g.addDep("a", "a")

	_, cycle := g.sortTopological()
	require.NotNil(t, cycle)
	assert.Equal(t, []string{"a", "a"}, cycle)
}

func TestAddNodeIdempotent(t *testing.T) {
	g := newRefGraph()
	g.addNode("a")
	g.addNode("a")
	assert.Len(t, g.order, 1)
}

func TestAddDepDeduplicates(t *testing.T) {
	g := newRefGraph()
	g.addNode("a")
	g.addNode("b")
	g.addDep("a", "b")
	g.addDep("a", "b")
	assert.Len(t, g.nodes["a"].deps, 1)
}
