package expand

import (
	"runtime"

	"github.com/2x3systems/nlce/libnlce/bondgraph"
	"github.com/2x3systems/nlce/nlce"
)

// Opts specifies params shared by the expansion stages.
type Opts struct {
	Workers  int               // number of workers per stage (0 for runtime.GOMAXPROCS)
	Weighted bool              // bond graphs carry lattice bond weights and must match them
	Strict   bool              // a connected subcluster with no matching class fails instead of being dropped
	Matcher  bondgraph.Matcher // omit for bondgraph.MatchExact(Weighted)
}

func (opts *Opts) numWorkers() int {
	if opts.Workers > 0 {
		return opts.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (opts *Opts) matcher() bondgraph.Matcher {
	if opts.Matcher != nil {
		return opts.Matcher
	}
	return bondgraph.MatchExact(opts.Weighted)
}

// TopoCluster is a topological class: the first cluster found with a given bond graph and the
// summed multiplicity of every cluster isomorphic to it.
type TopoCluster struct {
	State        nlce.State       // canonical state of the representative
	Multiplicity int64            // summed orbit sizes of all member clusters
	Graph        *bondgraph.Graph // bond graph of the representative
}

// TopoClusters maps a representative's canonical state to its topological class.
type TopoClusters map[nlce.State]*TopoCluster

// SubclusterTable maps a cluster state to the number of embeddings of each smaller topological class.
type SubclusterTable map[nlce.State]map[nlce.State]int64

// Level is the complete result for one cluster size.
type Level struct {
	Size        int             // number of sites of every cluster in this level
	Clusters    nlce.ClusterSet // symmetry-distinct clusters
	Topo        TopoClusters    // topological classes of Clusters
	Subclusters SubclusterTable // embeddings of smaller classes in each class of Topo
}

// LevelAdder receives completed levels in increasing size order.
type LevelAdder interface {

	// Tries to add the given level.
	// If true is returned, the level was the next expected size and was added.
	TryAddLevel(lvl *Level) bool
}

// PrintOpts specifies how levels are written as text.
type PrintOpts struct {
	Label       string // prefixes each level header
	Graphs      bool   // write each class's bond graph and traces
	Subclusters bool   // write each class's subcluster counts
}
