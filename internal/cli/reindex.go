package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex [path]",
	Short: "Run a full re-index",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReindex,
}

var reindexFileCmd = &cobra.Command{
	Use:   "reindex-file <rel-path>",
	Short: "Reindex a single file incrementally",
	Args:  cobra.ExactArgs(1),
	RunE:  runReindexFile,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(reindexFileCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		rootPath = args[0]
	}
	root, err := requireIndex()
	if err != nil {
		return err
	}

	st, _, ix, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := ix.Index(context.Background())
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	return printJSON(stats)
}

func runReindexFile(cmd *cobra.Command, args []string) error {
	root, err := requireIndex()
	if err != nil {
		return err
	}

	st, _, ix, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := ix.ReindexFile(context.Background(), args[0]); err != nil {
		return fmt.Errorf("reindex-file: %w", err)
	}
	return nil
}
