package collect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gobwas/glob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalkAppliesExtensionAllowList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a")
	writeFile(t, filepath.Join(root, "a.md"), "# not admitted")

	paths, err := Walk(root, Options{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go"}, paths)
}

func TestWalkPrunesBlockedDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.js"), "//")
	writeFile(t, filepath.Join(root, "src", "main.go"), "package main")
	writeFile(t, filepath.Join(root, ".git", "config.go"), "// not reachable")

	paths, err := Walk(root, Options{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"src/main.go"}, paths)
}

func TestWalkHonorsPlainGitignoreNames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "generated\n# comment\n\nnode_modules/\n*.log\n")
	writeFile(t, filepath.Join(root, "generated", "x.go"), "package x")
	writeFile(t, filepath.Join(root, "keep", "y.go"), "package y")

	paths, err := Walk(root, Options{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"keep/y.go"}, paths)
}

func TestWalkIgnoresGlobGitignoreLines(t *testing.T) {
	root := t.TempDir()
	// "*.log" and "a/b" style lines are patterns the collector does not
	// implement; they must not be treated as plain directory names.
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\na/b\n")
	writeFile(t, filepath.Join(root, "a.go"), "package a")

	paths, err := Walk(root, Options{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go"}, paths)
}

func TestWalkSkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	big := make([]byte, MaxFileSize+1)
	writeFile(t, filepath.Join(root, "big.go"), string(big))
	writeFile(t, filepath.Join(root, "small.go"), "package a")

	paths, err := Walk(root, Options{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"small.go"}, paths)
}

func TestWalkAppliesExtraGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "gen", "x.go"), "package x")
	writeFile(t, filepath.Join(root, "keep.go"), "package keep")

	g, err := glob.Compile("gen/**", '/')
	require.NoError(t, err)

	paths, err := Walk(root, Options{ExtraGlobs: []glob.Glob{g}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"keep.go"}, paths)
}
