package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

// Version is stamped at build time via -ldflags.
var Version = "dev"

// NewRootCmd builds the solvegrid command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "solvegrid",
		Short:   "Ensemble solver for visual-reasoning grid puzzles",
		Version: Version,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "solvegrid.yaml", "config file path")
	root.AddCommand(newSolveCmd())
	return root
}
