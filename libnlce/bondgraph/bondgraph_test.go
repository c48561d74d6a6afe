package bondgraph

import (
	"strings"
	"testing"

	"github.com/2x3systems/nlce/libnlce/lattice"
	"github.com/2x3systems/nlce/nlce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func state(sites ...int) nlce.State {
	var s nlce.State
	for _, i := range sites {
		s = s.With(i)
	}
	return s
}

func mustGraph(t *testing.T, numVerts int, weighted bool, edges ...Edge) *Graph {
	X, err := NewGraph(numVerts, edges, weighted, nil)
	require.NoError(t, err)
	return X
}

func TestBuildChain(t *testing.T) {
	b := NewBuilder(lattice.Chain(4, false), false)

	X, connected := b.Build(state(1, 2, 3))
	require.True(t, connected)
	assert.Equal(t, 3, X.NumVertices())
	assert.Equal(t, []Edge{{A: 0, B: 1}, {A: 1, B: 2}}, X.Edges())
	assert.Equal(t, []int{1, 2, 3}, X.Sites())

	_, connected = b.Build(state(0, 3))
	assert.False(t, connected)

	X, connected = b.Build(state(2))
	require.True(t, connected)
	assert.Equal(t, 1, X.NumVertices())
	assert.Equal(t, 0, X.NumEdges())
}

func TestBuildCycleDedupesEdges(t *testing.T) {
	b := NewBuilder(lattice.Square(2, 2, false), false)
	X, connected := b.Build(state(0, 1, 2, 3))
	require.True(t, connected)
	assert.Equal(t, 4, X.NumEdges())
	assert.Equal(t, Traces{0, 8, 0, 32}, X.Traces())
}

func TestBuildWeighted(t *testing.T) {
	L, err := lattice.ParseBonds("0-1:2-2")
	require.NoError(t, err)

	X, connected := NewBuilder(L, true).Build(state(0, 1, 2))
	require.True(t, connected)
	assert.Equal(t, 2, X.Weight(0, 1))
	assert.Equal(t, 0, X.Weight(1, 2))

	var buf strings.Builder
	X.WriteAsString(&buf)
	assert.Equal(t, "3:0-1=2,1-2=0", buf.String())

	U, _ := NewBuilder(L, false).Build(state(0, 1, 2))
	assert.False(t, U.IsWeighted())
	assert.Equal(t, 0, U.Weight(0, 1))
}

func TestBuilderScratchIsReused(t *testing.T) {
	b := NewBuilder(lattice.Chain(5, false), false)
	X, _ := b.Build(state(0, 1, 2))
	kept := X.Clone()
	b.Build(state(3, 4))
	assert.Equal(t, 3, kept.NumVertices())
	assert.Equal(t, 2, kept.NumEdges())
}

func TestExactMatcher(t *testing.T) {
	m := MatchExact(false)

	path := mustGraph(t, 4, false, Edge{A: 0, B: 1}, Edge{A: 1, B: 2}, Edge{A: 2, B: 3})
	path2 := mustGraph(t, 4, false, Edge{A: 2, B: 0}, Edge{A: 0, B: 3}, Edge{A: 3, B: 1})
	star := mustGraph(t, 4, false, Edge{A: 0, B: 1}, Edge{A: 0, B: 2}, Edge{A: 0, B: 3})

	assert.True(t, m.Isomorphic(path, path2))
	assert.True(t, m.Isomorphic(path2, path))
	assert.False(t, m.Isomorphic(path, star))
	assert.Equal(t, path.Certificate(), path2.Certificate())
	assert.NotEqual(t, path.Certificate(), star.Certificate())

	single := mustGraph(t, 1, false)
	assert.True(t, m.Isomorphic(single, mustGraph(t, 1, false)))
	assert.False(t, m.Isomorphic(single, path))
}

func TestExactMatcherCospectral(t *testing.T) {
	m := MatchExact(false)

	// C4 plus an isolated vertex and the star K1,4 share every adjacency trace
	cycle := mustGraph(t, 5, false, Edge{A: 0, B: 1}, Edge{A: 1, B: 2}, Edge{A: 2, B: 3}, Edge{A: 3, B: 0})
	star := mustGraph(t, 5, false, Edge{A: 0, B: 1}, Edge{A: 0, B: 2}, Edge{A: 0, B: 3}, Edge{A: 0, B: 4})
	assert.Equal(t, cycle.Traces(), star.Traces())
	assert.False(t, m.Isomorphic(cycle, star))
}

func TestWeightedMatcher(t *testing.T) {
	a := mustGraph(t, 3, true, Edge{A: 0, B: 1, Weight: 1}, Edge{A: 1, B: 2, Weight: 0})
	b := mustGraph(t, 3, true, Edge{A: 2, B: 1, Weight: 1}, Edge{A: 1, B: 0, Weight: 0})
	c := mustGraph(t, 3, true, Edge{A: 0, B: 1, Weight: 1}, Edge{A: 1, B: 2, Weight: 1})

	m := MatchExact(true)
	assert.True(t, m.Isomorphic(a, b))
	assert.False(t, m.Isomorphic(a, c))
}

func TestNewGraphErrors(t *testing.T) {
	_, err := NewGraph(2, []Edge{{A: 0, B: 2}}, false, nil)
	require.ErrorIs(t, err, nlce.ErrUnmarshal)

	_, err = NewGraph(nlce.MaxSites+1, nil, false, nil)
	require.ErrorIs(t, err, nlce.ErrTooManySites)
}

func TestGonumExport(t *testing.T) {
	X := mustGraph(t, 4, true, Edge{A: 0, B: 1, Weight: 3}, Edge{A: 2, B: 3})
	G := X.Gonum()
	assert.Equal(t, 4, G.Nodes().Len())
	w, ok := G.Weight(0, 1)
	assert.True(t, ok)
	assert.Equal(t, 3.0, w)
	assert.Equal(t, 2, X.NumComponents())
}
