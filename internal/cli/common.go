package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mvp-joe/codeindex/internal/config"
	"github.com/mvp-joe/codeindex/internal/index"
	"github.com/mvp-joe/codeindex/internal/query"
	"github.com/mvp-joe/codeindex/internal/store"
)

// resolveRoot returns the explicit --path flag value if set, else the
// discovered project root.
func resolveRoot() (string, error) {
	if rootPath != "" {
		return rootPath, nil
	}
	return config.DiscoverRoot()
}

// requireIndex resolves the root and exits 1 with a message on stderr if
// no `.codex/index.db` exists there.
func requireIndex() (string, error) {
	root, err := resolveRoot()
	if err != nil {
		return "", err
	}
	if _, statErr := os.Stat(store.RelPath(root)); os.IsNotExist(statErr) {
		fmt.Fprintf(os.Stderr, "no index found at %s (run `codeindex init` first)\n", root)
		os.Exit(1)
	}
	return root, nil
}

// openEngine opens root's store and returns a query.Engine, index.Indexer,
// and the open store for the caller to Close. The indexer is configured
// from root's config.yml (ignore globs, PageRank tuning) so the full index
// and the watcher's incremental path apply the same rules.
func openEngine(root string) (*store.Store, *query.Engine, *index.Indexer, error) {
	st, err := store.Open(root)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}

	cfg, err := loadConfig(root)
	if err != nil {
		st.Close()
		return nil, nil, nil, err
	}

	settings := index.Settings{
		CollectOptions: cfg.CollectOptions(),
		RankIterations: cfg.Index.PageRankIterations,
		RankDamping:    cfg.Index.PageRankDamping,
	}
	return st, query.New(st), index.New(root, st, settings), nil
}

// loadConfig loads root's configuration, used by the watcher and daemon
// commands for ignore globs and debounce tuning.
func loadConfig(root string) (*config.Config, error) {
	return config.Load(root)
}

// printJSON marshals v to indented JSON on stdout.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
