package catalog

import (
	"testing"

	"github.com/2x3systems/nlce/libnlce/bondgraph"
	"github.com/2x3systems/nlce/libnlce/expand"
	"github.com/2x3systems/nlce/nlce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogStateCodec(t *testing.T) {
	state := CatalogState{
		MajorVers: kMajorVers,
		MinorVers: kMinorVers,
		RunID:     "7c2d",
		NumLevels: 9,
		Weighted:  true,
	}
	buf, err := state.Marshal()
	require.NoError(t, err)

	var got CatalogState
	require.NoError(t, got.Unmarshal(buf))
	assert.Equal(t, state, got)

	require.ErrorIs(t, got.Unmarshal(buf[:3]), nlce.ErrUnmarshal)
}

func TestTopoClusterCodec(t *testing.T) {
	X, err := bondgraph.NewGraph(3, []bondgraph.Edge{{A: 0, B: 1, Weight: -2}, {A: 1, B: 2, Weight: 5}}, true, []int{4, 5, 9})
	require.NoError(t, err)

	val := encodeTopoCluster(&expand.TopoCluster{State: 0x230, Multiplicity: 12, Graph: X})
	tc, err := decodeTopoCluster(0x230, val)
	require.NoError(t, err)
	assert.Equal(t, int64(12), tc.Multiplicity)
	assert.Equal(t, X.Edges(), tc.Graph.Edges())
	assert.Equal(t, []int{4, 5, 9}, tc.Graph.Sites())

	_, err = decodeTopoCluster(0x230, val[:len(val)-2])
	require.ErrorIs(t, err, nlce.ErrUnmarshal)
}

func TestCountsCodec(t *testing.T) {
	counts := map[nlce.State]int64{0x1: 3, 0x3: 2}
	got, err := decodeCounts(encodeCounts(counts))
	require.NoError(t, err)
	assert.Equal(t, counts, got)

	s, err := stateFromKey(formKey(nil, kTopoKey, 3, 0x1c))
	require.NoError(t, err)
	assert.Equal(t, nlce.State(0x1c), s)
}
