package symm

import (
	"github.com/2x3systems/nlce/nlce"
	"github.com/RoaringBitmap/roaring/roaring64"
)

// OrbitCounter computes the multiplicity of a canonical cluster: the number of distinct
// translation-reduced states reachable by walking all generator-power products of the point group.
type OrbitCounter struct {
	Point       nlce.SymmetryBackend
	Translation nlce.SymmetryBackend
}

// NewOrbitCounter returns the orbit counter for the given symmetry roles.
func NewOrbitCounter(sym nlce.Symmetry) *OrbitCounter {
	return &OrbitCounter{
		Point:       sym.Point,
		Translation: sym.Translation,
	}
}

// Count returns the orbit size of s.
//
// g is generator scratch (len >= the translation group's generator count) and is overwritten.
// A point group with no generators yields 0.
func (oc *OrbitCounter) Count(s nlce.State, g []int, sign nlce.Sign) int64 {
	orbit := roaring64.NewBitmap()
	oc.walk(orbit, s, g, sign, 1)
	return int64(orbit.GetCardinality())
}

// walk applies generator depth-1 exactly Period times; the deepest generator inserts each reduced state.
func (oc *OrbitCounter) walk(orbit *roaring64.Bitmap, s nlce.State, g []int, sign nlce.Sign, depth int) {
	nt := oc.Point.NumGenerators()
	if nt == 0 {
		return
	}

	gen := depth - 1
	per := oc.Point.Period(gen)

	if depth < nt {
		for i := 0; i < per; i++ {
			oc.walk(orbit, s, g, sign, depth+1)
			s, sign = oc.Point.MapState(s, gen, sign)
		}
		return
	}

	for i := 0; i < per; i++ {
		s, sign = oc.Translation.RefState(s, g, sign)
		orbit.Add(uint64(s))
		s, sign = oc.Point.MapState(s, gen, sign)
	}
}
