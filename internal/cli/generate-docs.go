package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codeindex/internal/docs"
)

var generateDocsCmd = &cobra.Command{
	Use:   "generate-docs",
	Short: "Regenerate CLAUDE.md from the current index",
	Args:  cobra.NoArgs,
	RunE:  runGenerateDocs,
}

func init() {
	rootCmd.AddCommand(generateDocsCmd)
}

func runGenerateDocs(cmd *cobra.Command, args []string) error {
	root, err := requireIndex()
	if err != nil {
		return err
	}

	st, eng, _, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	out, err := docs.Generate(eng)
	if err != nil {
		return fmt.Errorf("generate-docs: %w", err)
	}

	path := filepath.Join(root, "CLAUDE.md")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("generate-docs: write %s: %w", path, err)
	}
	logVerbose("wrote %s", path)
	return nil
}
