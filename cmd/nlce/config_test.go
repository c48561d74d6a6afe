package main

import (
	"bytes"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/2x3systems/nlce/libnlce/catalog"
	"github.com/2x3systems/nlce/libnlce/expand"
	"github.com/2x3systems/nlce/nlce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	pathname := path.Join(dir, "run.yaml")
	err := os.WriteFile(pathname, []byte(`
lattice:
  kind: square
  length: 3
  width: 3
  periodic: true
  symmetric: true
max_size: 5
workers: 2
`), 0600)
	require.NoError(t, err)

	cfg, err := LoadConfig(pathname)
	require.NoError(t, err)
	assert.Equal(t, "square", cfg.Lattice.Kind)
	assert.Equal(t, 3, cfg.Lattice.Width)
	assert.Equal(t, 5, cfg.MaxSize)
	assert.Equal(t, 2, cfg.Workers)
	assert.False(t, cfg.Weighted)

	b, err := cfg.Builder()
	require.NoError(t, err)
	assert.Equal(t, 9, b.Lattice.NumSites)
	assert.Equal(t, 2, b.Opts.Workers)
}

func TestConfigErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lattice.Kind = "hexagonal"
	_, err := cfg.Builder()
	require.ErrorIs(t, err, nlce.ErrBadLattice)

	cfg = DefaultConfig()
	cfg.Lattice.Length = nlce.MaxSites + 1
	_, err = cfg.Builder()
	require.ErrorIs(t, err, nlce.ErrTooManySites)

	cfg = DefaultConfig()
	cfg.Weighted = true
	_, err = cfg.Builder()
	require.ErrorIs(t, err, nlce.ErrBadLattice)

	_, err = LoadConfig(path.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRunBuild(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Lattice: LatticeConfig{
			Kind:  "bonds",
			Bonds: "0-1-2-3",
		},
		MaxSize: 3,
		Catalog: path.Join(dir, "chain"),
		Export:  path.Join(dir, "chain.zst"),
	}

	out := &bytes.Buffer{}
	err := runBuild(cfg, out, expand.PrintOpts{})
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out.String(), "size="))
	assert.Contains(t, out.String(), "size=3,clusters=2,classes=1,multiplicity=2")

	// a second build into the same catalog is refused
	err = runBuild(cfg, out, expand.PrintOpts{})
	require.Error(t, err)

	ctx := nlce.NewCatalogContext()
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()
	store, err := catalog.OpenCatalog(ctx, nlce.CatalogOpts{})
	require.NoError(t, err)
	file, err := os.Open(cfg.Export)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, store.Import(file))
	assert.Equal(t, 3, store.NumLevels())
}
