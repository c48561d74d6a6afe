package lattice

import (
	"testing"

	"github.com/2x3systems/nlce/nlce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain(t *testing.T) {
	L := Chain(4, false)
	require.NoError(t, Validate(L))
	assert.Equal(t, []int{nlce.NoNeighbor, 1}, L.SiteNeighbors(0))
	assert.Equal(t, []int{2, nlce.NoNeighbor}, L.SiteNeighbors(3))
	assert.Len(t, Bonds(L), 3)

	P := Chain(4, true)
	require.NoError(t, Validate(P))
	assert.Equal(t, []int{3, 1}, P.SiteNeighbors(0))
	assert.Len(t, Bonds(P), 4)
}

func TestSquare(t *testing.T) {
	L := Square(3, 2, false)
	require.NoError(t, Validate(L))
	assert.Len(t, Bonds(L), 7)
	assert.Equal(t, []int{1, nlce.NoNeighbor, 3, nlce.NoNeighbor}, L.SiteNeighbors(0))

	P := Square(3, 3, true)
	require.NoError(t, Validate(P))
	assert.Len(t, Bonds(P), 18)
}

func TestParseBonds(t *testing.T) {
	L, err := ParseBonds("0-1-2-3, 1-3:2")
	require.NoError(t, err)
	assert.Equal(t, 4, L.NumSites)
	assert.True(t, L.IsWeighted())
	assert.Equal(t, []Bond{
		{A: 0, B: 1},
		{A: 1, B: 2},
		{A: 1, B: 3, Weight: 2},
		{A: 2, B: 3},
	}, Bonds(L))

	U, err := ParseBonds("0-1, 1-2")
	require.NoError(t, err)
	assert.False(t, U.IsWeighted())

	V, err := ParseBonds("0-1 1-2:1, 2-3")
	require.NoError(t, err)
	assert.Equal(t, 4, V.NumSites)
	assert.Len(t, Bonds(V), 3)

	_, err = ParseBonds("")
	require.ErrorIs(t, err, nlce.ErrBadBondExpr)

	_, err = ParseBonds("0-")
	require.ErrorIs(t, err, nlce.ErrBadBondExpr)

	_, err = ParseBonds("2-2")
	require.ErrorIs(t, err, nlce.ErrBadNeighbor)
}

func TestValidate(t *testing.T) {
	L := &nlce.Lattice{
		NumSites:     2,
		NumNeighbors: 1,
		Neighbors:    []int{1, nlce.NoNeighbor},
	}
	require.ErrorIs(t, Validate(L), nlce.ErrAsymmetricBond)

	L.Neighbors = []int{5, 0}
	require.ErrorIs(t, Validate(L), nlce.ErrBadNeighbor)

	big := Chain(nlce.MaxSites+1, false)
	require.ErrorIs(t, Validate(big), nlce.ErrTooManySites)
}
