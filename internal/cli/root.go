// Package cli wires the cobra command tree onto the config, index, query,
// watch, daemon, docs, and mcp packages.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootPath string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "codeindex",
	Short: "A local code-intelligence engine",
	Long: `codeindex builds a symbol-level dependency graph over a codebase,
ranks it with PageRank, and exposes search, call-graph, and impact queries
over a persistent SQLite index.`,
}

// Execute runs the root command; called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootPath, "path", "", "project root (default: discovered from cwd)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	viper.BindPFlag("path", rootCmd.PersistentFlags().Lookup("path"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func logVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
