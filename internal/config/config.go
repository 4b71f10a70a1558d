// Package config loads the per-root `.codex/config.yml`, layering
// environment variable overrides over the file over hardcoded defaults,
// and implements the upward root discovery the CLI and daemon both need
// to find an existing index.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/codeindex/internal/store"
)

// Config is the complete per-root configuration, loaded from
// `.codex/config.yml` with CODEX_* environment variable overrides.
type Config struct {
	Ignore IgnoreConfig `yaml:"ignore" mapstructure:"ignore"`
	Index  IndexConfig  `yaml:"index" mapstructure:"index"`
	Daemon DaemonConfig `yaml:"daemon" mapstructure:"daemon"`
}

// IgnoreConfig extends the collector's fixed ignore rules with
// user-supplied glob patterns.
type IgnoreConfig struct {
	ExtraGlobs []string `yaml:"extra_globs" mapstructure:"extra_globs"`
}

// IndexConfig tunes the indexing and PageRank passes.
type IndexConfig struct {
	PageRankIterations int     `yaml:"pagerank_iterations" mapstructure:"pagerank_iterations"`
	PageRankDamping    float64 `yaml:"pagerank_damping" mapstructure:"pagerank_damping"`
}

// DaemonConfig tunes the background watcher daemon.
type DaemonConfig struct {
	DebounceMillis int `yaml:"debounce_millis" mapstructure:"debounce_millis"`
}

// Default returns a Config with the hardcoded defaults.
func Default() *Config {
	return &Config{
		Ignore: IgnoreConfig{ExtraGlobs: nil},
		Index: IndexConfig{
			PageRankIterations: 20,
			PageRankDamping:    0.85,
		},
		Daemon: DaemonConfig{
			DebounceMillis: 200,
		},
	}
}

// Root returns <root>/.codex.
func Root(root string) string {
	return filepath.Join(root, ".codex")
}

// ConfigPath returns <root>/.codex/config.yml.
func ConfigPath(root string) string {
	return filepath.Join(Root(root), "config.yml")
}

// Install writes the default configuration to root's `.codex/config.yml`
// if one does not already exist, leaving an existing file untouched. This
// is the "config install" half of `init`.
func Install(root string) error {
	path := ConfigPath(root)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(Root(root), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", Root(root), err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// DiscoverRoot finds the project root: CODEX_ROOT if set, else walking
// upward from the current directory until a `.codex/index.db` is found,
// else the current directory.
func DiscoverRoot() (string, error) {
	if env := os.Getenv("CODEX_ROOT"); env != "" {
		return env, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	dir := wd
	for {
		if _, err := os.Stat(store.RelPath(dir)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return wd, nil
		}
		dir = parent
	}
}
