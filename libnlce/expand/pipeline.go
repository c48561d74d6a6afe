package expand

import (
	"time"

	"github.com/2x3systems/nlce/nlce"
	"github.com/plan-systems/klog"
)

// Builder runs the cluster expansion one size at a time: grow, classify, then count subclusters.
type Builder struct {
	Lattice  *nlce.Lattice
	Symmetry nlce.Symmetry
	Opts     Opts
}

// NextLevel computes the level following the last level of cat (size 1 if cat is empty).
// The level is not added to cat.
func (b *Builder) NextLevel(cat *Catalog) (*Level, error) {
	start := time.Now()

	size := len(cat.Levels) + 1
	lvl := &Level{
		Size: size,
	}
	if size == 1 {
		lvl.Clusters = Seeds(b.Lattice, b.Symmetry)
	} else {
		lvl.Clusters = Grow(cat.Levels[size-2].Clusters, b.Lattice, b.Symmetry, b.Opts)
	}
	lvl.Topo = Classify(lvl.Clusters, b.Lattice, b.Opts)

	topo := append(cat.Topo(), lvl.Topo)
	var err error
	lvl.Subclusters, err = CountLevelSubclusters(topo, size-1, b.Lattice, b.Opts)
	if err != nil {
		return nil, err
	}

	klog.V(2).Infof("size %d: %d clusters, %d classes, total multiplicity %d (%v)",
		size, len(lvl.Clusters), len(lvl.Topo), lvl.Topo.Total(), time.Since(start))
	return lvl, nil
}

// maxSize clamps the requested cluster size to what the lattice and a State window can hold.
func (b *Builder) maxSize(maxSize int) int {
	if maxSize > b.Lattice.NumSites {
		maxSize = b.Lattice.NumSites
	}
	if maxSize > nlce.MaxSites-1 {
		maxSize = nlce.MaxSites - 1
	}
	return maxSize
}

// Stream computes sizes 1..maxSize in a goroutine, pushing each completed level to the returned stream.
func (b *Builder) Stream(maxSize int) *LevelStream {
	stream := NewLevelStream()
	maxSize = b.maxSize(maxSize)

	go func() {
		cat := &Catalog{
			Weighted: b.Opts.Weighted,
		}
		for len(cat.Levels) < maxSize {
			lvl, err := b.NextLevel(cat)
			if err != nil {
				stream.err = err
				break
			}
			if len(lvl.Clusters) == 0 {
				break
			}
			cat.Levels = append(cat.Levels, lvl)
			stream.Outlet <- lvl
		}
		stream.Close()
	}()

	return stream
}

// Run computes sizes 1..maxSize and returns the completed catalog.
func (b *Builder) Run(maxSize int) (*Catalog, error) {
	cat := &Catalog{
		Weighted: b.Opts.Weighted,
	}
	stream := b.Stream(maxSize).AddTo(cat)
	stream.PullAll()
	return cat, stream.Err()
}
