package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codeindex/internal/store"
)

func newTestRoot(t *testing.T, files map[string]string) (string, *store.Store) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	st, err := store.Open(root)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return root, st
}

func TestIndexFindsSymbolsAndCalls(t *testing.T) {
	root, st := newTestRoot(t, map[string]string{
		"a.go": "package main\n\nfunc bar() {}\n\nfunc foo() {\n\tbar()\n}\n",
	})
	ix := New(root, st, DefaultSettings())

	stats, err := ix.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesChanged)
	assert.Equal(t, 2, stats.SymbolsFound)

	n, err := st.SymbolCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	edges, err := st.EdgeCounts()
	require.NoError(t, err)
	assert.Equal(t, 1, edges)
}

func TestIndexResolvesCrossFileReferences(t *testing.T) {
	root, st := newTestRoot(t, map[string]string{
		"a.ts": "import { helper } from './b';\nexport function foo() {\n  helper();\n}\n",
		"b.ts": "export function helper() {}\n",
	})
	ix := New(root, st, DefaultSettings())

	_, err := ix.Index(context.Background())
	require.NoError(t, err)

	deps, err := st.AllFileDeps()
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, store.FileDepImport, deps[0].Kind)

	edgeCount, err := st.EdgeCounts()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, edgeCount, 1)
}

func TestIndexSkipsUnchangedFilesOnSecondRun(t *testing.T) {
	root, st := newTestRoot(t, map[string]string{
		"a.go": "package main\n\nfunc foo() {}\n",
	})
	ix := New(root, st, DefaultSettings())

	_, err := ix.Index(context.Background())
	require.NoError(t, err)

	stats, err := ix.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesChanged)
	assert.Equal(t, 1, stats.FilesUnchanged)
}

func TestIndexPrunesStaleFiles(t *testing.T) {
	root, st := newTestRoot(t, map[string]string{
		"a.go": "package main\n\nfunc foo() {}\n",
		"b.go": "package main\n\nfunc bar() {}\n",
	})
	ix := New(root, st, DefaultSettings())

	_, err := ix.Index(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "b.go")))

	_, err = ix.Index(context.Background())
	require.NoError(t, err)

	paths, err := st.AllFilePaths()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go"}, paths)
}

func TestIndexWritesRankingsForEverySymbol(t *testing.T) {
	root, st := newTestRoot(t, map[string]string{
		"a.go": "package main\n\nfunc bar() {}\n\nfunc foo() {\n\tbar()\n}\n",
	})
	ix := New(root, st, DefaultSettings())

	_, err := ix.Index(context.Background())
	require.NoError(t, err)

	symbolCount, err := st.SymbolCount()
	require.NoError(t, err)
	rankingCount, err := st.RankingCount()
	require.NoError(t, err)
	assert.Equal(t, symbolCount, rankingCount)
}

func TestReindexFileHandlesDeletion(t *testing.T) {
	root, st := newTestRoot(t, map[string]string{
		"a.go": "package main\n\nfunc foo() {}\n",
	})
	ix := New(root, st, DefaultSettings())
	_, err := ix.Index(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "a.go")))
	require.NoError(t, ix.ReindexFile(context.Background(), "a.go"))

	f, err := st.FileByPath("a.go")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestReindexFileUpdatesSymbolsWithoutCrossFilePass(t *testing.T) {
	root, st := newTestRoot(t, map[string]string{
		"a.go": "package main\n\nfunc foo() {}\n",
	})
	ix := New(root, st, DefaultSettings())
	_, err := ix.Index(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"),
		[]byte("package main\n\nfunc foo() {}\n\nfunc baz() {}\n"), 0o644))
	require.NoError(t, ix.ReindexFile(context.Background(), "a.go"))

	n, err := st.SymbolCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
