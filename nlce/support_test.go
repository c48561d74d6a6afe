package nlce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateBits(t *testing.T) {
	s := SiteState(0).With(3).With(5)
	assert.True(t, s.Has(3))
	assert.False(t, s.Has(4))
	assert.Equal(t, 3, s.Size())
	assert.Equal(t, []int{0, 3, 5}, s.Sites(nil))
	assert.Equal(t, State(0b101000), Gather(0b110, []int{0, 3, 5}))
}

func TestNextSubset(t *testing.T) {
	const n = 5
	for k := 1; k < n; k++ {
		var got []State
		for c := State(1)<<uint(k) - 1; c < State(1)<<n; c = NextSubset(c) {
			require.Equal(t, k, c.Size())
			if len(got) > 0 {
				require.Greater(t, uint64(c), uint64(got[len(got)-1]))
			}
			got = append(got, c)
		}

		want := 0
		for c := State(0); c < State(1)<<n; c++ {
			if c.Size() == k {
				want++
			}
		}
		assert.Len(t, got, want, "k=%d", k)
	}
}

func TestSortedStates(t *testing.T) {
	set := ClusterSet{9: 1, 3: 2, 6: 4}
	assert.Equal(t, []State{3, 6, 9}, set.States())
	assert.Equal(t, int64(7), set.Total())
}

func TestBondWeight(t *testing.T) {
	L := &Lattice{
		NumSites:     2,
		NumNeighbors: 2,
		Neighbors:    []int{1, NoNeighbor, 0, NoNeighbor},
	}
	assert.False(t, L.IsWeighted())
	assert.Equal(t, 0, L.BondWeight(1, 0))

	L.Weights = []int{7, 0}
	assert.Equal(t, 7, L.BondWeight(1, 0))

	L.Weights = []int{7, 0, 5, 0}
	assert.Equal(t, 5, L.BondWeight(1, 0))
	assert.Equal(t, []int{0, NoNeighbor}, L.SiteNeighbors(1))
}

type nopCatalog struct{ closed chan struct{} }

func (cat *nopCatalog) IsReadOnly() bool { return true }
func (cat *nopCatalog) NumLevels() int   { return 0 }
func (cat *nopCatalog) Close() error {
	close(cat.closed)
	return nil
}

func TestCatalogContext(t *testing.T) {
	ctx := NewCatalogContext()
	cat := &nopCatalog{closed: make(chan struct{})}
	ctx.AttachCatalog(cat)
	go func() {
		<-cat.closed
		ctx.DetachCatalog(cat)
	}()
	ctx.Close()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("catalog context did not close")
	}
}
