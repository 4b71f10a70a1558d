package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/codeindex/internal/config"
	"github.com/mvp-joe/codeindex/internal/docs"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Index a project and install its configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	} else if rootPath != "" {
		root = rootPath
	}

	if err := os.MkdirAll(config.Root(root), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", config.Root(root), err)
	}
	if err := config.Install(root); err != nil {
		return fmt.Errorf("install config: %w", err)
	}

	st, eng, ix, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	var bar *progressbar.ProgressBar
	if !verbose {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("indexing"),
			progressbar.OptionSpinnerType(14),
		)
	}

	start := time.Now()
	stats, err := ix.Index(context.Background())
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	logVerbose("indexed %d files (%d changed, %d unchanged, %d skipped), %d symbols in %s",
		stats.FilesSeen, stats.FilesChanged, stats.FilesUnchanged, stats.FilesSkipped, stats.SymbolsFound, time.Since(start))

	out, err := docs.Generate(eng)
	if err != nil {
		return fmt.Errorf("generate docs: %w", err)
	}
	docPath := filepath.Join(root, "CLAUDE.md")
	if err := os.WriteFile(docPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", docPath, err)
	}
	logVerbose("wrote %s", docPath)

	return printJSON(stats)
}
