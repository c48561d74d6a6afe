package main

import (
	"os"

	"github.com/2x3systems/nlce/libnlce/bondgraph"
	"github.com/2x3systems/nlce/libnlce/catalog"
	"github.com/2x3systems/nlce/libnlce/expand"
	"github.com/2x3systems/nlce/nlce"
	"github.com/spf13/cobra"
)

var (
	importPath string
	validate   bool
)

var showCmd = &cobra.Command{
	Use:   "show [catalog]",
	Short: "Print a stored catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := nlce.NewCatalogContext()
		defer func() {
			ctx.Close()
			<-ctx.Done()
		}()

		opts := nlce.CatalogOpts{}
		if len(args) > 0 {
			opts.DbPathName = args[0]
			opts.ReadOnly = importPath == ""
		}
		store, err := catalog.OpenCatalog(ctx, opts)
		if err != nil {
			return err
		}
		if importPath != "" {
			file, err := os.Open(importPath)
			if err != nil {
				return err
			}
			err = store.Import(file)
			file.Close()
			if err != nil {
				return err
			}
		}

		cat, err := store.Load()
		if err != nil {
			return err
		}
		if validate {
			if err = cat.Validate(bondgraph.MatchExact(cat.Weighted)); err != nil {
				return err
			}
		}
		cat.WriteAsString(cmd.OutOrStdout(), expand.PrintOpts{
			Graphs:      printGraphs,
			Subclusters: printSubs,
		})
		return nil
	},
}

func init() {
	f := showCmd.Flags()
	f.StringVar(&importPath, "import", "", "load a zstd export into the catalog first")
	f.BoolVar(&validate, "validate", false, "check the catalog before printing")
	f.BoolVar(&printGraphs, "graphs", false, "print bond graphs and traces")
	f.BoolVar(&printSubs, "subclusters", false, "print subcluster counts")
	rootCmd.AddCommand(showCmd)
}
