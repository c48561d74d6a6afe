package expand

import (
	"time"

	"github.com/2x3systems/nlce/libnlce/bondgraph"
	"github.com/2x3systems/nlce/libnlce/metrics"
	"github.com/2x3systems/nlce/nlce"
	"github.com/plan-systems/klog"
)

// Classify groups clusters into topological classes by bond graph isomorphism.
//
// Each worker scans its own classes linearly and adds a cluster's multiplicity to the first isomorphic class.
// The per-worker classes are then merged sequentially, re-testing isomorphism across workers.
func Classify(clusters nlce.ClusterSet, L *nlce.Lattice, opts Opts) TopoClusters {
	start := time.Now()

	order := clusters.States()
	numWorkers := opts.numWorkers()
	m := opts.matcher()

	parts := make([][]*TopoCluster, numWorkers)
	tests := make([]int64, numWorkers)
	fanOut(numWorkers, func(worker int) error {
		builder := bondgraph.NewBuilder(L, opts.Weighted)
		var part []*TopoCluster

		for i := worker; i < len(order); i += numWorkers {
			s := order[i]
			X, _ := builder.Build(s)

			matched := false
			for _, tc := range part {
				tests[worker]++
				if m.Isomorphic(tc.Graph, X) {
					tc.Multiplicity += clusters[s]
					matched = true
					break
				}
			}
			if !matched {
				part = append(part, &TopoCluster{
					State:        s,
					Multiplicity: clusters[s],
					Graph:        X.Clone(),
				})
			}
		}
		parts[worker] = part
		return nil
	})

	var classes []*TopoCluster
	mergeTests := int64(0)
	for _, part := range parts {
		for _, tc := range part {
			matched := false
			for _, rep := range classes {
				mergeTests++
				if m.Isomorphic(rep.Graph, tc.Graph) {
					rep.Multiplicity += tc.Multiplicity
					matched = true
					break
				}
			}
			if !matched {
				classes = append(classes, tc)
			}
		}
	}

	topo := make(TopoClusters, len(classes))
	for _, tc := range classes {
		topo[tc.State] = tc
	}

	for _, n := range tests {
		mergeTests += n
	}
	metrics.IsoTests.WithLabelValues(metrics.StageClassify).Add(float64(mergeTests))
	if len(order) > 0 {
		size := order[0].Size()
		metrics.TopoClasses.WithLabelValues(metrics.SizeLabel(size)).Set(float64(len(topo)))
		elapsed := metrics.ObserveStage(metrics.StageClassify, start)
		klog.V(3).Infof("classify: %d clusters of size %d -> %d classes (%d iso tests, %v)", len(order), size, len(topo), mergeTests, elapsed)
	}
	return topo
}

// Sorted returns the classes in increasing state order.
func (topo TopoClusters) Sorted() []*TopoCluster {
	states := nlce.SortedStates(topo)
	classes := make([]*TopoCluster, len(states))
	for i, s := range states {
		classes[i] = topo[s]
	}
	return classes
}

// Total returns the sum of all class multiplicities.
func (topo TopoClusters) Total() int64 {
	sum := int64(0)
	for _, tc := range topo {
		sum += tc.Multiplicity
	}
	return sum
}
