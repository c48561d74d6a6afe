package bondgraph

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/2x3systems/nlce/nlce"
	"github.com/pkg/errors"
)

// Edge is an undirected bond between two graph vertices.
type Edge struct {
	A, B   int
	Weight int
}

// Graph is the bond graph induced by a cluster: vertices are occupied sites, edges are lattice bonds between them.
//
// A Graph is immutable once built and may be read from any number of goroutines.
type Graph struct {
	numVerts int
	numEdges int
	weighted bool
	adj      []uint64 // adj[u] has bit v set iff u-v is an edge
	weight   []int32  // numVerts x numVerts, weighted graphs only
	sites    []int    // lattice site of each vertex

	traces Traces
	vtxSig []uint64
	cert   uint64
}

// NewGraph returns the graph with the given edges; sites may be nil.
func NewGraph(numVerts int, edges []Edge, weighted bool, sites []int) (*Graph, error) {
	if numVerts < 0 || numVerts > nlce.MaxSites {
		return nil, errors.Wrapf(nlce.ErrTooManySites, "%d vertices", numVerts)
	}
	if sites != nil && len(sites) != numVerts {
		return nil, errors.Wrap(nlce.ErrUnmarshal, "site count")
	}

	X := &Graph{}
	X.reset(numVerts, weighted)
	for i := range X.sites {
		if sites != nil {
			X.sites[i] = sites[i]
		} else {
			X.sites[i] = i
		}
	}
	for _, e := range edges {
		if e.A < 0 || e.B < 0 || e.A >= numVerts || e.B >= numVerts || e.A == e.B {
			return nil, errors.Wrapf(nlce.ErrUnmarshal, "bad edge %d-%d", e.A, e.B)
		}
		X.addEdge(e.A, e.B, e.Weight)
	}
	X.finish()
	return X, nil
}

func (X *Graph) reset(numVerts int, weighted bool) {
	X.numVerts = numVerts
	X.numEdges = 0
	X.weighted = weighted
	X.adj = resize(X.adj, numVerts)
	X.sites = resizeInt(X.sites, numVerts)
	X.vtxSig = resize(X.vtxSig, numVerts)
	if weighted {
		N := numVerts * numVerts
		if cap(X.weight) < N {
			X.weight = make([]int32, N)
		}
		X.weight = X.weight[:N]
		for i := range X.weight {
			X.weight[i] = 0
		}
	} else {
		X.weight = X.weight[:0]
	}
}

// addEdge adds u-v unless already present; the first weight seen is kept.
func (X *Graph) addEdge(u, v, w int) {
	if X.adj[u]&(1<<uint(v)) != 0 {
		return
	}
	X.adj[u] |= 1 << uint(v)
	X.adj[v] |= 1 << uint(u)
	X.numEdges++
	if X.weighted {
		X.weight[u*X.numVerts+v] = int32(w)
		X.weight[v*X.numVerts+u] = int32(w)
	}
}

func (X *Graph) NumVertices() int {
	return X.numVerts
}

func (X *Graph) NumEdges() int {
	return X.numEdges
}

func (X *Graph) IsWeighted() bool {
	return X.weighted
}

// Degree returns the number of edges at vertex u.
func (X *Graph) Degree(u int) int {
	return bits.OnesCount64(X.adj[u])
}

// Adjacent returns true if u-v is an edge.
func (X *Graph) Adjacent(u, v int) bool {
	return X.adj[u]&(1<<uint(v)) != 0
}

// Weight returns the weight of edge u-v (0 for unweighted graphs).
func (X *Graph) Weight(u, v int) int {
	if !X.weighted {
		return 0
	}
	return int(X.weight[u*X.numVerts+v])
}

// Sites returns the lattice site of each vertex.
func (X *Graph) Sites() []int {
	return X.sites
}

// Edges returns each edge once (A < B) in vertex order.
func (X *Graph) Edges() []Edge {
	edges := make([]Edge, 0, X.numEdges)
	for u := 0; u < X.numVerts; u++ {
		for b := X.adj[u] >> uint(u+1); b != 0; b &= b - 1 {
			v := u + 1 + bits.TrailingZeros64(b)
			edges = append(edges, Edge{A: u, B: v, Weight: X.Weight(u, v)})
		}
	}
	return edges
}

// Traces returns the closed-walk counts tr(A^1)..tr(A^k) of this graph.
func (X *Graph) Traces() Traces {
	return X.traces
}

// Certificate returns a hash of this graph's isomorphism invariants: isomorphic graphs have equal certificates.
func (X *Graph) Certificate() uint64 {
	return X.cert
}

// Clone returns a copy of X that no longer shares any storage.
func (X *Graph) Clone() *Graph {
	dup := &Graph{
		numVerts: X.numVerts,
		numEdges: X.numEdges,
		weighted: X.weighted,
		adj:      append([]uint64(nil), X.adj...),
		sites:    append([]int(nil), X.sites...),
		traces:   append(Traces(nil), X.traces...),
		vtxSig:   append([]uint64(nil), X.vtxSig...),
		cert:     X.cert,
	}
	if X.weighted {
		dup.weight = append([]int32(nil), X.weight...)
	}
	return dup
}

// WriteAsString writes the edge list of this graph, e.g. "3:0-1,1-2" or "3:0-1=2,1-2=0" when weighted.
func (X *Graph) WriteAsString(out io.Writer) {
	fmt.Fprintf(out, "%d:", X.numVerts)
	for i, e := range X.Edges() {
		if i > 0 {
			io.WriteString(out, ",")
		}
		if X.weighted {
			fmt.Fprintf(out, "%d-%d=%d", e.A, e.B, e.Weight)
		} else {
			fmt.Fprintf(out, "%d-%d", e.A, e.B)
		}
	}
}

func resize(buf []uint64, N int) []uint64 {
	if cap(buf) < N {
		buf = make([]uint64, N)
	}
	buf = buf[:N]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

func resizeInt(buf []int, N int) []int {
	if cap(buf) < N {
		buf = make([]int, N)
	}
	return buf[:N]
}
