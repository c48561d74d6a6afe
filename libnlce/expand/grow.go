package expand

import (
	"math/bits"
	"time"

	"github.com/2x3systems/nlce/libnlce/metrics"
	"github.com/2x3systems/nlce/libnlce/symm"
	"github.com/2x3systems/nlce/nlce"
	"github.com/plan-systems/klog"
)

// Seeds returns the canonical single-site clusters of L with their multiplicities.
func Seeds(L *nlce.Lattice, sym nlce.Symmetry) nlce.ClusterSet {
	oc := symm.NewOrbitCounter(sym)
	g := make([]int, sym.MaxGenerators())

	seeds := make(nlce.ClusterSet)
	for site := 0; site < L.NumSites; site++ {
		r, sign := sym.Full.RefState(nlce.SiteState(site), g, 1)
		if _, exists := seeds[r]; !exists {
			seeds[r] = oc.Count(r, g, sign)
		}
	}
	return seeds
}

// Grow returns every canonical cluster formed by occupying one unoccupied neighbor of a seed, with its multiplicity.
//
// Seeds are dealt round-robin (in increasing state order) to the workers, each of which fills a private set;
// the sets are then merged in worker order.
func Grow(seeds nlce.ClusterSet, L *nlce.Lattice, sym nlce.Symmetry, opts Opts) nlce.ClusterSet {
	start := time.Now()

	order := seeds.States()
	numWorkers := opts.numWorkers()
	numGens := sym.MaxGenerators()
	oc := symm.NewOrbitCounter(sym)

	parts := make([]nlce.ClusterSet, numWorkers)
	fanOut(numWorkers, func(worker int) error {
		part := make(nlce.ClusterSet)
		g := make([]int, numGens)

		for i := worker; i < len(order); i += numWorkers {
			seed := order[i]
			for b := uint64(seed); b != 0; b &= b - 1 {
				pos := bits.TrailingZeros64(b)
				for _, nn := range L.SiteNeighbors(pos) {
					if nn < 0 || seed.Has(nn) {
						continue
					}
					r, sign := sym.Full.RefState(seed.With(nn), g, 1)
					if _, exists := part[r]; !exists {
						part[r] = oc.Count(r, g, sign)
					}
				}
			}
		}
		parts[worker] = part
		return nil
	})

	grown := make(nlce.ClusterSet)
	for _, part := range parts {
		for s, m := range part {
			grown[s] = m
		}
	}

	if len(order) > 0 {
		size := order[0].Size() + 1
		metrics.ClustersGrown.WithLabelValues(metrics.SizeLabel(size)).Add(float64(len(grown)))
		elapsed := metrics.ObserveStage(metrics.StageGrow, start)
		klog.V(3).Infof("grow: %d seeds -> %d clusters of size %d (%d workers, %v)", len(order), len(grown), size, numWorkers, elapsed)
	}
	return grown
}
