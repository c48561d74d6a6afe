package bondgraph

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Gonum exports X as a gonum graph; node IDs are vertex indices and edge weights are bond weights.
func (X *Graph) Gonum() *simple.WeightedUndirectedGraph {
	G := simple.NewWeightedUndirectedGraph(0, 0)
	for u := 0; u < X.numVerts; u++ {
		G.AddNode(simple.Node(u))
	}
	for _, e := range X.Edges() {
		G.SetWeightedEdge(G.NewWeightedEdge(simple.Node(e.A), simple.Node(e.B), float64(e.Weight)))
	}
	return G
}

// NumComponents returns the number of connected components of X.
func (X *Graph) NumComponents() int {
	return len(topo.ConnectedComponents(X.Gonum()))
}
