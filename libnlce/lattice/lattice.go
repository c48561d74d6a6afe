package lattice

import (
	"github.com/2x3systems/nlce/nlce"
	"github.com/pkg/errors"
)

// Bond is an undirected lattice bond between sites A and B.
type Bond struct {
	A, B   int
	Weight int
}

// Chain returns an n-site chain with neighbor slots (left, right).
func Chain(n int, periodic bool) *nlce.Lattice {
	L := newLattice(n, 2)
	for i := 0; i < n; i++ {
		nn := L.SiteNeighbors(i)
		switch {
		case i > 0:
			nn[0] = i - 1
		case periodic && n > 2:
			nn[0] = n - 1
		}
		switch {
		case i < n-1:
			nn[1] = i + 1
		case periodic && n > 2:
			nn[1] = 0
		}
	}
	return L
}

// Square returns an lx by ly square lattice (site x + lx*y) with neighbor slots (+x, -x, +y, -y).
func Square(lx, ly int, periodic bool) *nlce.Lattice {
	L := newLattice(lx*ly, 4)
	step := func(v, dv, lv int) int {
		w := v + dv
		if w >= 0 && w < lv {
			return w
		}
		if periodic && lv > 2 {
			return (w + lv) % lv
		}
		return nlce.NoNeighbor
	}
	for y := 0; y < ly; y++ {
		for x := 0; x < lx; x++ {
			nn := L.SiteNeighbors(x + lx*y)
			for slot, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := x, y
				if d[0] != 0 {
					nx = step(x, d[0], lx)
				} else {
					ny = step(y, d[1], ly)
				}
				if nx >= 0 && ny >= 0 {
					nn[slot] = nx + lx*ny
				}
			}
		}
	}
	return L
}

// FromBonds returns the lattice with the given bonds; the lattice is weighted if any bond has a non-zero weight.
func FromBonds(numSites int, bonds []Bond) (*nlce.Lattice, error) {
	nbrs := make([][]int, numSites)
	wts := make([][]int, numSites)
	weighted := false
	for _, b := range bonds {
		if b.A < 0 || b.B < 0 || b.A >= numSites || b.B >= numSites || b.A == b.B {
			return nil, errors.Wrapf(nlce.ErrBadNeighbor, "bond %d-%d", b.A, b.B)
		}
		nbrs[b.A] = append(nbrs[b.A], b.B)
		wts[b.A] = append(wts[b.A], b.Weight)
		nbrs[b.B] = append(nbrs[b.B], b.A)
		wts[b.B] = append(wts[b.B], b.Weight)
		if b.Weight != 0 {
			weighted = true
		}
	}
	if !weighted {
		wts = nil
	}
	return FromNeighbors(nbrs, wts)
}

// FromNeighbors flattens per-site neighbor lists (and optional parallel weights) into a Lattice.
func FromNeighbors(nbrs [][]int, wts [][]int) (*nlce.Lattice, error) {
	if wts != nil && len(wts) != len(nbrs) {
		return nil, errors.Wrap(nlce.ErrBadLattice, "weights do not parallel neighbors")
	}

	Nnn := 0
	for _, nn := range nbrs {
		if len(nn) > Nnn {
			Nnn = len(nn)
		}
	}

	L := newLattice(len(nbrs), Nnn)
	if wts != nil {
		L.Weights = make([]int, len(L.Neighbors))
	}
	for i, nn := range nbrs {
		copy(L.SiteNeighbors(i), nn)
		if wts != nil {
			if len(wts[i]) != len(nn) {
				return nil, errors.Wrapf(nlce.ErrBadLattice, "site %d weights do not parallel neighbors", i)
			}
			copy(L.Weights[i*Nnn:], wts[i])
		}
	}
	return L, Validate(L)
}

// Validate checks that L is addressable by a cluster State and that every bond is listed by both of its sites.
func Validate(L *nlce.Lattice) error {
	if L.NumSites <= 0 || L.NumNeighbors < 0 {
		return nlce.ErrBadLattice
	}
	if L.NumSites > nlce.MaxSites {
		return errors.Wrapf(nlce.ErrTooManySites, "%d sites", L.NumSites)
	}
	if len(L.Neighbors) != L.NumSites*L.NumNeighbors {
		return errors.Wrap(nlce.ErrBadLattice, "neighbor array size")
	}
	if n := len(L.Weights); n != 0 && n != L.NumNeighbors && n != len(L.Neighbors) {
		return errors.Wrap(nlce.ErrBadLattice, "weight array size")
	}

	for i := 0; i < L.NumSites; i++ {
		for _, j := range L.SiteNeighbors(i) {
			if j == nlce.NoNeighbor {
				continue
			}
			if j < 0 || j >= L.NumSites {
				return errors.Wrapf(nlce.ErrBadNeighbor, "site %d lists %d", i, j)
			}
			if !lists(L, j, i) {
				return errors.Wrapf(nlce.ErrAsymmetricBond, "%d-%d", i, j)
			}
		}
	}
	return nil
}

// Bonds returns each bond of L once (A < B), in site then slot order.
func Bonds(L *nlce.Lattice) []Bond {
	var bonds []Bond
	for i := 0; i < L.NumSites; i++ {
		for slot, j := range L.SiteNeighbors(i) {
			if j > i && !listedEarlier(L, i, slot, j) {
				bonds = append(bonds, Bond{A: i, B: j, Weight: L.BondWeight(i, slot)})
			}
		}
	}
	return bonds
}

func lists(L *nlce.Lattice, site, nn int) bool {
	for _, j := range L.SiteNeighbors(site) {
		if j == nn {
			return true
		}
	}
	return false
}

func listedEarlier(L *nlce.Lattice, site, slot, nn int) bool {
	for _, j := range L.SiteNeighbors(site)[:slot] {
		if j == nn {
			return true
		}
	}
	return false
}

func newLattice(numSites, Nnn int) *nlce.Lattice {
	L := &nlce.Lattice{
		NumSites:     numSites,
		NumNeighbors: Nnn,
		Neighbors:    make([]int, numSites*Nnn),
	}
	for i := range L.Neighbors {
		L.Neighbors[i] = nlce.NoNeighbor
	}
	return L
}
