package nlce

import (
	"math/bits"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// SiteState returns the state with only the given site occupied.
func SiteState(site int) State {
	return State(1) << uint(site)
}

// Has returns true if the given site is occupied.
func (s State) Has(site int) bool {
	return (s>>uint(site))&1 != 0
}

// With returns s with the given site occupied.
func (s State) With(site int) State {
	return s | SiteState(site)
}

// Size returns the number of occupied sites.
func (s State) Size() int {
	return bits.OnesCount64(uint64(s))
}

// Sites appends the occupied site indices of s in increasing order.
//
// The result is the dense index -> position table of the cluster.
func (s State) Sites(dst []int) []int {
	for b := uint64(s); b != 0; b &= b - 1 {
		dst = append(dst, bits.TrailingZeros64(b))
	}
	return dst
}

// Gather maps the dense subset c (bit i selects indToPos[i]) onto lattice positions.
func Gather(c State, indToPos []int) State {
	var out State
	for b := uint64(c); b != 0; b &= b - 1 {
		out |= SiteState(indToPos[bits.TrailingZeros64(b)])
	}
	return out
}

// NextSubset returns the next larger integer with the same popcount as c (c != 0).
func NextSubset(c State) State {
	t := (c | (c - 1)) + 1
	shift := bits.TrailingZeros64(uint64(t)) - bits.TrailingZeros64(uint64(c)) - 1
	return t | ((State(1) << uint(shift)) - 1)
}

// SortedStates returns the states of the given map in increasing order.
func SortedStates[V any](set map[State]V) []State {
	keys := maps.Keys(set)
	slices.Sort(keys)
	return keys
}

// States returns the cluster states of this set in increasing order.
func (set ClusterSet) States() []State {
	return SortedStates(set)
}

// Total returns the sum of all multiplicities.
func (set ClusterSet) Total() int64 {
	sum := int64(0)
	for _, m := range set {
		sum += m
	}
	return sum
}

func NewCatalogContext() CatalogContext {
	ctx := &catalogContext{
		openCatalogs: make(map[Catalog]struct{}),
		closing:      make(chan struct{}),
		closed:       make(chan struct{}),
	}
	ctx.openCount.Add(1)
	go func() {
		<-ctx.closing
		ctx.openCount.Done()
		ctx.openCount.Wait()
		close(ctx.closed)
	}()
	return ctx
}

type catalogContext struct {
	mu           sync.Mutex
	openCount    sync.WaitGroup
	openCatalogs map[Catalog]struct{}
	closing      chan struct{}
	closed       chan struct{}
	closeOnce    sync.Once
}

func (ctx *catalogContext) AttachCatalog(cat Catalog) {
	ctx.openCount.Add(1)
	ctx.mu.Lock()
	ctx.openCatalogs[cat] = struct{}{}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) DetachCatalog(cat Catalog) {
	ctx.mu.Lock()
	if _, exists := ctx.openCatalogs[cat]; exists {
		delete(ctx.openCatalogs, cat)
		ctx.openCount.Done()
	}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) Done() <-chan struct{} {
	return ctx.closed
}

func (ctx *catalogContext) Close() {
	ctx.closeOnce.Do(func() {
		close(ctx.closing)
		ctx.mu.Lock()
		for cat := range ctx.openCatalogs {
			go cat.Close()
		}
		ctx.mu.Unlock()
	})
}
