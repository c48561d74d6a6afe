package symm

import (
	"github.com/2x3systems/nlce/nlce"
)

// ChainGroup returns the symmetry roles of an n-site chain.
//
// A periodic chain has translations and the reflection i -> -i; an open chain only has the reflection i -> n-1-i.
// Without point symmetry the point role is the identity group.
func ChainGroup(n int, periodic, reflect bool) nlce.Symmetry {
	var trans, point [][]int

	if periodic {
		trans = append(trans, makePerm(n, func(i int) int { return (i + 1) % n }))
	}
	if reflect {
		if periodic {
			point = append(point, makePerm(n, func(i int) int { return (n - i) % n }))
		} else {
			point = append(point, makePerm(n, func(i int) int { return n - 1 - i }))
		}
	}
	return assemble(n, trans, point)
}

// SquareGroup returns the symmetry roles of an lx by ly square lattice, site index x + lx*y.
//
// Point symmetry is the dihedral group of the square when lx == ly and the two mirror axes otherwise.
func SquareGroup(lx, ly int, periodic, pointSymm bool) nlce.Symmetry {
	n := lx * ly
	site := func(x, y int) int {
		return ((x+lx)%lx + lx*((y+ly)%ly))
	}

	var trans, point [][]int
	if periodic {
		trans = append(trans,
			makePerm(n, func(i int) int { return site(i%lx+1, i/lx) }),
			makePerm(n, func(i int) int { return site(i%lx, i/lx+1) }),
		)
	}

	if pointSymm {
		// Periodic point operations fix site 0; open ones fix the lattice center.
		ox, oy := lx-1, ly-1
		if periodic {
			ox, oy = 0, 0
		}
		if lx == ly {
			point = append(point,
				makePerm(n, func(i int) int { return site(ox-i/lx, i%lx) }),
				makePerm(n, func(i int) int { return site(i%lx, oy-i/lx) }),
			)
		} else {
			point = append(point,
				makePerm(n, func(i int) int { return site(ox-i%lx, i/lx) }),
				makePerm(n, func(i int) int { return site(i%lx, oy-i/lx) }),
			)
		}
	}
	return assemble(n, trans, point)
}

// Trivial returns symmetry roles where every cluster is its own canonical form with multiplicity 1.
func Trivial(numSites int) nlce.Symmetry {
	id := Identity(numSites)
	return nlce.Symmetry{
		Full:        id,
		Point:       id,
		Translation: id,
	}
}

func assemble(n int, trans, point [][]int) nlce.Symmetry {
	sym := nlce.Symmetry{}

	all := append(append([][]int(nil), trans...), point...)
	if len(all) == 0 {
		sym.Full = Identity(n)
	} else {
		sym.Full = MustPermGroup(n, all...)
	}
	if len(trans) == 0 {
		sym.Translation = Identity(n)
	} else {
		sym.Translation = MustPermGroup(n, trans...)
	}
	if len(point) == 0 {
		sym.Point = Identity(n)
	} else {
		sym.Point = MustPermGroup(n, point...)
	}
	return sym
}

func makePerm(n int, image func(i int) int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = image(i)
	}
	return perm
}
