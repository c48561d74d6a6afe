package bondgraph

import (
	"math/bits"

	"github.com/2x3systems/nlce/nlce"
)

// Matcher decides whether two bond graphs are isomorphic.
//
// Implementations must be safe for concurrent use.
type Matcher interface {
	Isomorphic(A, B *Graph) bool
}

// MatchExact returns a Matcher that rejects on differing certificates and otherwise searches for a vertex bijection.
// If weighted is set, mapped edges must also carry equal weights.
func MatchExact(weighted bool) Matcher {
	return exactMatcher{weighted: weighted}
}

type exactMatcher struct {
	weighted bool
}

func (m exactMatcher) Isomorphic(A, B *Graph) bool {
	if A.numVerts != B.numVerts || A.numEdges != B.numEdges || A.cert != B.cert {
		return false
	}
	if A.numVerts == 0 {
		return true
	}

	iso := isoSearch{
		A:        A,
		B:        B,
		weighted: m.weighted && A.weighted && B.weighted,
	}
	iso.order = matchOrder(A, iso.orderBuf[:0])
	return iso.extend(0)
}

type isoSearch struct {
	A, B     *Graph
	weighted bool
	order    []int
	orderBuf [nlce.MaxSites]int
	mapAB    [nlce.MaxSites]int
	usedB    uint64
}

// extend maps the i-th vertex of the search order onto each compatible unused vertex of B in turn.
func (iso *isoSearch) extend(i int) bool {
	if i == len(iso.order) {
		return true
	}

	u := iso.order[i]
	for v := 0; v < iso.B.numVerts; v++ {
		if iso.usedB&(1<<uint(v)) != 0 || iso.A.vtxSig[u] != iso.B.vtxSig[v] {
			continue
		}
		if !iso.consistent(i, u, v) {
			continue
		}
		iso.mapAB[u] = v
		iso.usedB |= 1 << uint(v)
		if iso.extend(i + 1) {
			return true
		}
		iso.usedB &^= 1 << uint(v)
	}
	return false
}

func (iso *isoSearch) consistent(i, u, v int) bool {
	for _, u2 := range iso.order[:i] {
		v2 := iso.mapAB[u2]
		edgeA := iso.A.Adjacent(u, u2)
		if edgeA != iso.B.Adjacent(v, v2) {
			return false
		}
		if edgeA && iso.weighted && iso.A.Weight(u, u2) != iso.B.Weight(v, v2) {
			return false
		}
	}
	return true
}

// matchOrder lists the vertices of X breadth first so each vertex after the first of a component has a placed neighbor.
func matchOrder(X *Graph, order []int) []int {
	var placed uint64
	for root := 0; root < X.numVerts; root++ {
		if placed&(1<<uint(root)) != 0 {
			continue
		}
		head := len(order)
		order = append(order, root)
		placed |= 1 << uint(root)
		for ; head < len(order); head++ {
			u := order[head]
			for b := X.adj[u] &^ placed; b != 0; b &= b - 1 {
				v := bits.TrailingZeros64(b)
				order = append(order, v)
				placed |= 1 << uint(v)
			}
		}
	}
	return order
}
