package main

import (
	"io"
	"os"

	"github.com/2x3systems/nlce/libnlce/catalog"
	"github.com/2x3systems/nlce/libnlce/expand"
	"github.com/2x3systems/nlce/nlce"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	printGraphs bool
	printSubs   bool
	override    Config
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Expand a lattice into a cluster catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := DefaultConfig()
		if configPath != "" {
			var err error
			if cfg, err = LoadConfig(configPath); err != nil {
				return err
			}
		}
		applyOverrides(cmd, &cfg)

		return runBuild(cfg, cmd.OutOrStdout(), expand.PrintOpts{
			Graphs:      printGraphs,
			Subclusters: printSubs,
		})
	},
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "yaml run file")
	f.IntVar(&override.MaxSize, "max-size", 0, "largest cluster size to build")
	f.IntVar(&override.Workers, "workers", 0, "workers per stage (0 for GOMAXPROCS)")
	f.BoolVar(&override.Weighted, "weighted", false, "classify by weighted bond graphs")
	f.BoolVar(&override.Strict, "strict", false, "fail on a subcluster with no matching class")
	f.StringVar(&override.Catalog, "catalog", "", "catalog db dir")
	f.StringVar(&override.Export, "export", "", "write a zstd export of the catalog")
	f.BoolVar(&printGraphs, "graphs", false, "print bond graphs and traces")
	f.BoolVar(&printSubs, "subclusters", false, "print subcluster counts")
	rootCmd.AddCommand(buildCmd)
}

// applyOverrides copies every flag the user set over the run file values.
func applyOverrides(cmd *cobra.Command, cfg *Config) {
	f := cmd.Flags()
	if f.Changed("max-size") {
		cfg.MaxSize = override.MaxSize
	}
	if f.Changed("workers") {
		cfg.Workers = override.Workers
	}
	if f.Changed("weighted") {
		cfg.Weighted = override.Weighted
	}
	if f.Changed("strict") {
		cfg.Strict = override.Strict
	}
	if f.Changed("catalog") {
		cfg.Catalog = override.Catalog
	}
	if f.Changed("export") {
		cfg.Export = override.Export
	}
}

// stdout wraps a writer so LevelStream.Print does not close it.
type stdout struct {
	io.Writer
}

func runBuild(cfg Config, out io.Writer, opts expand.PrintOpts) error {
	b, err := cfg.Builder()
	if err != nil {
		return err
	}

	ctx := nlce.NewCatalogContext()
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	store, err := catalog.OpenCatalog(ctx, nlce.CatalogOpts{
		DbPathName: cfg.Catalog,
	})
	if err != nil {
		return err
	}
	if n := store.NumLevels(); n > 0 {
		return errors.Errorf("catalog %q already holds %d levels", cfg.Catalog, n)
	}

	klog.Infof("building sizes 1..%d on %d sites (run %s)", cfg.MaxSize, b.Lattice.NumSites, store.RunID())
	stream := b.Stream(cfg.MaxSize).
		Print(stdout{out}, opts).
		AddTo(store)
	count := stream.PullAll()
	if err = stream.Err(); err != nil {
		return err
	}
	klog.Infof("built %d levels", count)

	if cfg.Export != "" {
		file, err := os.Create(cfg.Export)
		if err != nil {
			return err
		}
		err = store.Export(file)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return errors.Wrapf(err, "exporting to %q", cfg.Export)
		}
		klog.Infof("exported catalog to %q", cfg.Export)
	}
	return nil
}
