package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codeindex/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run a long-lived tool-protocol server over stdio",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	root, err := requireIndex()
	if err != nil {
		return err
	}

	st, eng, ix, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	server := mcp.New(eng, ix)
	if err := server.Serve(context.Background()); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}
