package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Human-readable summary of the indexed codebase",
	Args:  cobra.NoArgs,
	RunE:  runBrief,
}

var preEditCmd = &cobra.Command{
	Use:   "pre-edit <file>",
	Short: "Human-readable briefing before editing a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreEdit,
}

var postEditCmd = &cobra.Command{
	Use:   "post-edit <file>",
	Short: "Reindex a file after editing it (silent)",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostEdit,
}

func init() {
	rootCmd.AddCommand(briefCmd, preEditCmd, postEditCmd)
}

func runBrief(cmd *cobra.Command, args []string) error {
	root, err := requireIndex()
	if err != nil {
		return err
	}
	st, eng, _, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	out, err := eng.Brief()
	if err != nil {
		return fmt.Errorf("brief: %w", err)
	}
	fmt.Print(out)
	return nil
}

func runPreEdit(cmd *cobra.Command, args []string) error {
	root, err := requireIndex()
	if err != nil {
		return err
	}
	st, eng, _, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	out, err := eng.PreEdit(args[0])
	if err != nil {
		return fmt.Errorf("pre-edit: %w", err)
	}
	fmt.Print(out)
	return nil
}

func runPostEdit(cmd *cobra.Command, args []string) error {
	root, err := requireIndex()
	if err != nil {
		return err
	}
	st, _, ix, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	return ix.ReindexFile(context.Background(), args[0])
}
