package symm

import (
	"testing"

	"github.com/2x3systems/nlce/nlce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func state(sites ...int) nlce.State {
	var s nlce.State
	for _, i := range sites {
		s = s.With(i)
	}
	return s
}

func TestPermGroupPeriods(t *testing.T) {
	pg := MustPermGroup(4, []int{1, 2, 3, 0}, []int{3, 2, 1, 0}, []int{0, 1, 2, 3})
	assert.Equal(t, 3, pg.NumGenerators())
	assert.Equal(t, 4, pg.Period(0))
	assert.Equal(t, 2, pg.Period(1))
	assert.Equal(t, 1, pg.Period(2))

	_, err := NewPermGroup(3, []int{0, 0, 1})
	require.ErrorIs(t, err, nlce.ErrBadSymmetry)
	_, err = NewPermGroup(3, []int{0, 1})
	require.ErrorIs(t, err, nlce.ErrBadSymmetry)
}

func TestRefStateIdempotent(t *testing.T) {
	sym := ChainGroup(6, true, true)
	g := make([]int, sym.MaxGenerators())
	for s := nlce.State(1); s < 1<<6; s++ {
		ref, _ := sym.Full.RefState(s, g, 1)
		require.LessOrEqual(t, uint64(ref), uint64(s))
		again, _ := sym.Full.RefState(ref, g, 1)
		require.Equal(t, ref, again)
	}
}

func TestRefStateExponents(t *testing.T) {
	pg := MustPermGroup(4, []int{1, 2, 3, 0})
	g := make([]int, 1)
	ref, sign := pg.RefState(state(2, 3), g, -1)
	assert.Equal(t, state(0, 1), ref)
	assert.Equal(t, nlce.Sign(-1), sign)

	// two steps of the generator take {2,3} to {0,1}
	assert.Equal(t, []int{2}, g)
}

func TestOrbitTrivialGroup(t *testing.T) {
	oc := NewOrbitCounter(Trivial(4))
	g := make([]int, 1)
	for _, s := range []nlce.State{state(0), state(0, 1), state(1, 2, 3)} {
		assert.Equal(t, int64(1), oc.Count(s, g, 1))
	}
}

func TestOrbitNoGenerators(t *testing.T) {
	oc := &OrbitCounter{
		Point:       None(4),
		Translation: Identity(4),
	}
	assert.Equal(t, int64(0), oc.Count(state(0, 1), make([]int, 1), 1))
}

func TestOrbitOpenChainReflection(t *testing.T) {
	sym := ChainGroup(4, false, true)
	oc := NewOrbitCounter(sym)
	g := make([]int, sym.MaxGenerators())

	// {0,1} and {2,3} are mirror images; {1,2} is self-symmetric
	assert.Equal(t, int64(2), oc.Count(state(0, 1), g, 1))
	assert.Equal(t, int64(1), oc.Count(state(1, 2), g, 1))
	assert.Equal(t, int64(2), oc.Count(state(0, 1, 2), g, 1))
}

func TestOrbitInvariance(t *testing.T) {
	sym := SquareGroup(3, 3, true, true)
	oc := NewOrbitCounter(sym)
	g := make([]int, sym.MaxGenerators())

	// every member of a full-group orbit has the same multiplicity
	for _, s := range []nlce.State{state(0, 1), state(0, 1, 4), state(0, 1, 2, 3)} {
		want := oc.Count(s, g, 1)
		require.Greater(t, want, int64(0))
		pg := sym.Full.(*PermGroup)
		for gen := 0; gen < pg.NumGenerators(); gen++ {
			img, _ := pg.MapState(s, gen, 1)
			assert.Equal(t, want, oc.Count(img, g, 1), "state %b gen %d", s, gen)
		}
	}
}

func TestSquarePointGroup(t *testing.T) {
	sym := SquareGroup(3, 3, false, true)
	pg := sym.Point.(*PermGroup)
	require.Equal(t, 2, pg.NumGenerators())
	assert.Equal(t, 4, pg.Period(0))
	assert.Equal(t, 2, pg.Period(1))

	// open 3x3 corner site has 4 images under D4
	oc := NewOrbitCounter(sym)
	assert.Equal(t, int64(4), oc.Count(state(0), make([]int, 2), 1))
	assert.Equal(t, int64(1), oc.Count(state(4), make([]int, 2), 1))
}
