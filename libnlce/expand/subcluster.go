package expand

import (
	"time"

	"github.com/2x3systems/nlce/libnlce/bondgraph"
	"github.com/2x3systems/nlce/libnlce/metrics"
	"github.com/2x3systems/nlce/nlce"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// CountSubclusters counts, for the class of every level of topo (topo[k] holds clusters of size k+1),
// the embeddings of each smaller class as a connected subcluster.
func CountSubclusters(topo []TopoClusters, L *nlce.Lattice, opts Opts) (SubclusterTable, error) {
	return countSubclusters(topo, 0, len(topo), L, opts)
}

// CountLevelSubclusters is CountSubclusters restricted to the classes of topo[level].
func CountLevelSubclusters(topo []TopoClusters, level int, L *nlce.Lattice, opts Opts) (SubclusterTable, error) {
	return countSubclusters(topo, level, level+1, L, opts)
}

func countSubclusters(topo []TopoClusters, lo, hi int, L *nlce.Lattice, opts Opts) (SubclusterTable, error) {
	start := time.Now()

	reps := make([][]*TopoCluster, len(topo))
	for k := range topo {
		reps[k] = topo[k].Sorted()
	}

	numWorkers := opts.numWorkers()
	parts := make([]SubclusterTable, numWorkers)
	tests := make([]int64, numWorkers)

	err := fanOut(numWorkers, func(worker int) error {
		sc := subclusterCounter{
			builder: bondgraph.NewBuilder(L, opts.Weighted),
			matcher: opts.matcher(),
			reps:    reps,
			strict:  opts.Strict,
		}
		part := make(SubclusterTable)
		for k := lo; k < hi; k++ {
			for i := worker; i < len(reps[k]); i += numWorkers {
				s := reps[k][i].State
				counts, err := sc.count(s)
				if err != nil {
					return err
				}
				part[s] = counts
			}
		}
		parts[worker] = part
		tests[worker] = sc.tests
		return nil
	})
	if err != nil {
		return nil, err
	}

	table := make(SubclusterTable)
	totalTests := int64(0)
	for worker, part := range parts {
		for s, counts := range part {
			table[s] = counts
		}
		totalTests += tests[worker]
	}

	metrics.IsoTests.WithLabelValues(metrics.StageSubclust).Add(float64(totalTests))
	elapsed := metrics.ObserveStage(metrics.StageSubclust, start)
	klog.V(3).Infof("subclusters: %d classes over sizes %d..%d (%d iso tests, %v)", len(table), lo+1, hi, totalTests, elapsed)
	return table, nil
}

type subclusterCounter struct {
	builder  *bondgraph.Builder
	matcher  bondgraph.Matcher
	reps     [][]*TopoCluster
	strict   bool
	indToPos []int
	tests    int64
}

// count enumerates every proper subset of the sites of s by size, keeping the connected ones and
// tallying the first class of that size each is isomorphic to.
func (sc *subclusterCounter) count(s nlce.State) (map[nlce.State]int64, error) {
	sc.indToPos = s.Sites(sc.indToPos[:0])
	n := len(sc.indToPos) // n < 64

	counts := make(map[nlce.State]int64)
	end := nlce.State(1) << uint(n)
	for cs := 1; cs < n; cs++ {
		var classes []*TopoCluster
		if cs-1 < len(sc.reps) {
			classes = sc.reps[cs-1]
		}

		for c := nlce.State(1)<<uint(cs) - 1; c < end; c = nlce.NextSubset(c) {
			sub := nlce.Gather(c, sc.indToPos)
			X, connected := sc.builder.Build(sub)
			if !connected {
				continue
			}

			matched := false
			for _, tc := range classes {
				sc.tests++
				if sc.matcher.Isomorphic(tc.Graph, X) {
					counts[tc.State]++
					matched = true
					break
				}
			}
			if !matched && sc.strict {
				return nil, errors.Wrapf(nlce.ErrIncompleteCatalog, "subcluster %#x of %#x", uint64(sub), uint64(s))
			}
		}
	}
	return counts, nil
}
