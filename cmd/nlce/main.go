package main

import (
	"flag"
	"os"

	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

var verbosity string

var rootCmd = &cobra.Command{
	Use:   "nlce",
	Short: "Builds and inspects numerical linked cluster expansion catalogs",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging(verbosity)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&verbosity, "verbosity", "v", "2", "klog verbosity level")
}

func initLogging(level string) {
	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", level)
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})
}

func main() {
	err := rootCmd.Execute()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
