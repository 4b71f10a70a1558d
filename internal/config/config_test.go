package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHasSaneValues(t *testing.T) {
	d := Default()
	assert.Equal(t, 20, d.Index.PageRankIterations)
	assert.Equal(t, 0.85, d.Index.PageRankDamping)
	assert.Equal(t, 200, d.Daemon.DebounceMillis)
}

func TestInstallWritesDefaultConfigOnce(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Install(root))

	data, err := os.ReadFile(ConfigPath(root))
	require.NoError(t, err)
	require.Contains(t, string(data), "pagerank_iterations")

	require.NoError(t, os.WriteFile(ConfigPath(root), []byte("index:\n  pagerank_iterations: 7\n"), 0o644))
	require.NoError(t, Install(root))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Index.PageRankIterations)
}

func TestLoadFallsBackToDefaultsWithNoConfigFile(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Index.PageRankIterations)
}

func TestLoadReadsConfigFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(Root(root), 0o755))
	require.NoError(t, os.WriteFile(ConfigPath(root), []byte("index:\n  pagerank_iterations: 5\nignore:\n  extra_globs:\n    - \"*.generated.go\"\n"), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Index.PageRankIterations)
	assert.Equal(t, []string{"*.generated.go"}, cfg.Ignore.ExtraGlobs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(Root(root), 0o755))
	require.NoError(t, os.WriteFile(ConfigPath(root), []byte("daemon:\n  debounce_millis: 500\n"), 0o644))

	t.Setenv("CODEX_DAEMON_DEBOUNCE_MILLIS", "900")

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 900, cfg.Daemon.DebounceMillis)
}

func TestDiscoverRootRespectsEnvOverride(t *testing.T) {
	t.Setenv("CODEX_ROOT", "/tmp/explicit-root")
	root, err := DiscoverRoot()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/explicit-root", root)
}

func TestDiscoverRootWalksUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(Root(root), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(Root(root), "index.db"), []byte{}, 0o644))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { os.Chdir(wd) })

	found, err := DiscoverRoot()
	require.NoError(t, err)
	assert.Equal(t, root, found)
}
