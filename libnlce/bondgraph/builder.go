package bondgraph

import (
	"github.com/2x3systems/nlce/nlce"
	"github.com/emirpasic/gods/stacks/arraystack"
)

// Builder forms the bond graph induced by a set of occupied lattice sites.
//
// A Builder reuses its scratch between calls and is not safe for concurrent use; give each worker its own.
type Builder struct {
	lattice  *nlce.Lattice
	weighted bool
	stack    *arraystack.Stack
	local    [nlce.MaxSites]int8
	sites    []int
	graph    Graph
}

// NewBuilder returns a Builder over the given lattice.
// If weighted is set, edges carry the lattice bond weight of the neighbor slot they were found through.
func NewBuilder(L *nlce.Lattice, weighted bool) *Builder {
	return &Builder{
		lattice:  L,
		weighted: weighted,
		stack:    arraystack.New(),
	}
}

// Build forms the bond graph of the occupied sites of s and reports whether it is connected.
//
// Vertices are numbered in increasing site order. The returned graph is owned by the Builder
// and is only valid until the next call; Clone it to retain it.
func (b *Builder) Build(s nlce.State) (*Graph, bool) {
	X := &b.graph
	b.sites = s.Sites(b.sites[:0])
	X.reset(len(b.sites), b.weighted)
	for vi, pos := range b.sites {
		b.local[pos] = int8(vi)
		X.sites[vi] = pos
	}
	if len(b.sites) == 0 {
		X.finish()
		return X, false
	}

	L := b.lattice
	var visited nlce.State

	b.stack.Clear()
	b.stack.Push(b.sites[0])
	for !b.stack.Empty() {
		top, _ := b.stack.Pop()
		pos := top.(int)
		visited = visited.With(pos)

		for slot, nn := range L.SiteNeighbors(pos) {
			if nn < 0 || visited.Has(nn) || !s.Has(nn) {
				continue
			}
			X.addEdge(int(b.local[pos]), int(b.local[nn]), L.BondWeight(pos, slot))
			b.stack.Push(nn)
		}
	}

	X.finish()
	return X, visited == s
}
