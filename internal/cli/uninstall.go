package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codeindex/internal/config"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the index and configuration from the project root",
	Args:  cobra.NoArgs,
	RunE:  runUninstall,
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	if err := os.RemoveAll(config.Root(root)); err != nil {
		return fmt.Errorf("uninstall: %w", err)
	}
	fmt.Printf("removed %s\n", config.Root(root))
	return nil
}
