package pynlce

import (
	"os"
	"path"
	"testing"

	"github.com/2x3systems/nlce/nlce"
	"github.com/go-python/gpython/py"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainExpandToCatalog(t *testing.T) {
	dir, err := os.MkdirTemp("", "pynlce*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	latObj, err := py_Chain(nil, py.Tuple{py.Int(4), py.False, py.False})
	require.NoError(t, err)
	n, err := py_Lattice_NumSites(latObj, nil)
	require.NoError(t, err)
	assert.Equal(t, py.Int(4), n)

	ws := &Workspace{
		CatalogCtx: nlce.NewCatalogContext(),
	}
	defer ws.Close()

	catObj, err := py_Workspace_OpenCatalog(ws, py.Tuple{py.String(path.Join(dir, "chain")), py.Int(0)})
	require.NoError(t, err)

	streamObj, err := py_Lattice_Expand(latObj, py.Tuple{py.Int(3)}, py.StringDict{})
	require.NoError(t, err)
	streamObj, err = py_LevelStream_AddTo(streamObj, py.Tuple{catObj})
	require.NoError(t, err)
	count, err := py_LevelStream_Go(streamObj, nil)
	require.NoError(t, err)
	assert.Equal(t, py.Int(3), count)

	levels, err := py_Catalog_NumLevels(catObj, nil)
	require.NoError(t, err)
	assert.Equal(t, py.Int(3), levels)

	classes, err := py_Catalog_Classes(catObj, py.Tuple{py.Int(3)})
	require.NoError(t, err)
	assert.Equal(t, py.Tuple{py.Tuple{py.Int(0x7), py.Int(2)}}, classes)

	subs, err := py_Catalog_Subclusters(catObj, py.Tuple{py.Int(3), py.Int(0x7)})
	require.NoError(t, err)
	assert.Equal(t, py.Tuple{
		py.Tuple{py.Int(0x1), py.Int(3)},
		py.Tuple{py.Int(0x3), py.Int(2)},
	}, subs)

	_, err = py_Catalog_Subclusters(catObj, py.Tuple{py.Int(3), py.Int(0x5)})
	require.Error(t, err)

	exportPath := path.Join(dir, "chain.zst")
	_, err = py_Catalog_Export(catObj, py.Tuple{py.String(exportPath)})
	require.NoError(t, err)
	_, err = os.Stat(exportPath)
	require.NoError(t, err)

	_, err = py_Catalog_Close(catObj, nil)
	require.NoError(t, err)
}

func TestBondsRejectsBadExpr(t *testing.T) {
	_, err := py_Bonds(nil, py.Tuple{py.String("0-")})
	require.Error(t, err)

	latObj, err := py_Bonds(nil, py.Tuple{py.String("0-1-2:3")})
	require.NoError(t, err)
	n, _ := py_Lattice_NumSites(latObj, nil)
	assert.Equal(t, py.Int(3), n)
}

func TestSquareBounds(t *testing.T) {
	_, err := py_Square(nil, py.Tuple{py.Int(9), py.Int(9), py.False, py.True})
	require.Error(t, err)
}
