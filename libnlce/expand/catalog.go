package expand

import (
	"fmt"
	"io"

	"github.com/2x3systems/nlce/libnlce/bondgraph"
	"github.com/2x3systems/nlce/nlce"
	"github.com/pkg/errors"
)

// Catalog is the in-memory cluster catalog: Levels[k] holds clusters of size k+1.
type Catalog struct {
	Weighted bool
	Levels   []*Level
}

// TryAddLevel appends lvl if it is the next size of this catalog.
func (cat *Catalog) TryAddLevel(lvl *Level) bool {
	if lvl == nil || lvl.Size != len(cat.Levels)+1 {
		return false
	}
	cat.Levels = append(cat.Levels, lvl)
	return true
}

// Level returns the level of the given cluster size, or nil.
func (cat *Catalog) Level(size int) *Level {
	if size < 1 || size > len(cat.Levels) {
		return nil
	}
	return cat.Levels[size-1]
}

// Topo returns the topological classes of each level, indexed by size-1.
func (cat *Catalog) Topo() []TopoClusters {
	topo := make([]TopoClusters, len(cat.Levels))
	for k, lvl := range cat.Levels {
		topo[k] = lvl.Topo
	}
	return topo
}

// Subclusters returns the union of every level's subcluster table.
func (cat *Catalog) Subclusters() SubclusterTable {
	table := make(SubclusterTable)
	for _, lvl := range cat.Levels {
		for s, counts := range lvl.Subclusters {
			table[s] = counts
		}
	}
	return table
}

// Validate checks that within each level no two classes are isomorphic, that every class is connected and
// has a non-negative multiplicity, and that subcluster counts only refer to classes of smaller levels.
func (cat *Catalog) Validate(m bondgraph.Matcher) error {
	for k, lvl := range cat.Levels {
		if lvl.Size != k+1 {
			return errors.Wrapf(nlce.ErrBadLevel, "level %d has size %d", k+1, lvl.Size)
		}

		classes := lvl.Topo.Sorted()
		for i, tc := range classes {
			if tc.Multiplicity < 0 {
				return errors.Errorf("class %#x has negative multiplicity %d", uint64(tc.State), tc.Multiplicity)
			}
			if tc.Graph.NumVertices() != lvl.Size || tc.State.Size() != lvl.Size {
				return errors.Wrapf(nlce.ErrBadLevel, "class %#x in level %d", uint64(tc.State), lvl.Size)
			}
			if tc.Graph.NumComponents() != 1 {
				return errors.Wrapf(nlce.ErrDisconnected, "class %#x", uint64(tc.State))
			}
			for _, other := range classes[:i] {
				if m.Isomorphic(other.Graph, tc.Graph) {
					return errors.Wrapf(nlce.ErrDuplicateClass, "%#x and %#x", uint64(other.State), uint64(tc.State))
				}
			}
		}

		for s, counts := range lvl.Subclusters {
			for sub, n := range counts {
				owner := cat.Level(sub.Size())
				if sub.Size() >= lvl.Size || owner == nil || owner.Topo[sub] == nil || n < 0 {
					return errors.Wrapf(nlce.ErrDanglingSubclass, "%#x in %#x", uint64(sub), uint64(s))
				}
			}
		}
	}
	return nil
}

// WriteAsString writes every level of this catalog.
func (cat *Catalog) WriteAsString(out io.Writer, opts PrintOpts) {
	for _, lvl := range cat.Levels {
		lvl.WriteAsString(out, opts)
	}
}

// WriteAsString writes a level header followed by one line per class, e.g.
//
//	size=2,clusters=3,classes=1,multiplicity=3
//	  0x3,3
func (lvl *Level) WriteAsString(out io.Writer, opts PrintOpts) {
	if len(opts.Label) > 0 {
		io.WriteString(out, opts.Label)
		io.WriteString(out, ",")
	}
	fmt.Fprintf(out, "size=%d,clusters=%d,classes=%d,multiplicity=%d\n",
		lvl.Size, len(lvl.Clusters), len(lvl.Topo), lvl.Topo.Total())

	for _, tc := range lvl.Topo.Sorted() {
		fmt.Fprintf(out, "  %#x,%d", uint64(tc.State), tc.Multiplicity)
		if opts.Graphs {
			io.WriteString(out, ",")
			tc.Graph.WriteAsString(out)
			fmt.Fprintf(out, ",%v", tc.Graph.Traces())
		}
		if opts.Subclusters {
			counts := lvl.Subclusters[tc.State]
			for _, sub := range nlce.SortedStates(counts) {
				fmt.Fprintf(out, ",%#x*%d", uint64(sub), counts[sub])
			}
		}
		io.WriteString(out, "\n")
	}
}
