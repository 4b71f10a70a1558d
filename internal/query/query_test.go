package query

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codeindex/internal/index"
	"github.com/mvp-joe/codeindex/internal/store"
)

func newTestEngine(t *testing.T, files map[string]string) *Engine {
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

	ix := index.New(root, st, index.DefaultSettings())
	_, err = ix.Index(context.Background())
	require.NoError(t, err)

	return New(st)
}

func TestSearchFindsSymbolByName(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"a.go": "package main\n\nfunc greetUser() {}\n",
	})
	results, err := e.Search("greetUser", 15)
	require.NoError(t, err)
	require.NotEmpty(t, results)
}

func TestCallersFindsCallSite(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"a.go": "package main\n\nfunc bar() {}\n\nfunc foo() {\n\tbar()\n}\n",
	})
	callers, err := e.Callers("bar")
	require.NoError(t, err)
	require.Len(t, callers, 1)
	assert.Equal(t, "foo", callers[0].Name)
}

func TestDependenciesFindsCallee(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"a.go": "package main\n\nfunc bar() {}\n\nfunc foo() {\n\tbar()\n}\n",
	})
	deps, err := e.Dependencies("foo")
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "bar", deps[0].Name)
}

func TestContextForReturnsFullPicture(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"a.go": "package main\n\nfunc bar() {}\n\nfunc foo() {\n\tbar()\n}\n",
	})
	ctx, err := e.ContextFor("foo")
	require.NoError(t, err)
	require.NotNil(t, ctx)
	assert.Equal(t, "foo", ctx.Symbol.Name)
	require.Len(t, ctx.Dependencies, 1)
	assert.Equal(t, "bar", ctx.Dependencies[0].Name)
	assert.Len(t, ctx.Siblings, 2)
}

func TestContextForUnknownNameReturnsNil(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"a.go": "package main\n\nfunc foo() {}\n",
	})
	ctx, err := e.ContextFor("nope")
	require.NoError(t, err)
	assert.Nil(t, ctx)
}

func TestImpactTraversesReverseFileDeps(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"c.ts": "export function leaf() {}\n",
		"b.ts": "import { leaf } from './c';\nexport function mid() {\n  leaf();\n}\n",
		"a.ts": "import { mid } from './b';\nexport function top() {\n  mid();\n}\n",
	})
	entries, err := e.Impact("c.ts", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b.ts", entries[0].Path)
	assert.Equal(t, 1, entries[0].Depth)
	assert.Equal(t, "a.ts", entries[1].Path)
	assert.Equal(t, 2, entries[1].Depth)
}

func TestImpactOnUnindexedFileReturnsNil(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"a.go": "package main\n\nfunc foo() {}\n",
	})
	entries, err := e.Impact("missing.go", 10)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRankReturnsEveryRankedSymbol(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"a.go": "package main\n\nfunc bar() {}\n\nfunc foo() {\n\tbar()\n}\n",
	})
	syms, ranks, err := e.Rank(20)
	require.NoError(t, err)
	require.Len(t, syms, 2)
	require.Len(t, ranks, 2)
}

func TestModulesPartitionsByTopLevelDir(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"pkg/a.go": "package pkg\n\nfunc A() {}\n",
		"cmd/m.go": "package cmd\n\nfunc Main() {}\n",
		"top.go":   "package main\n\nfunc Top() {}\n",
	})
	modules, err := e.Modules()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, m := range modules {
		names[m.Name] = true
	}
	assert.True(t, names["pkg"])
	assert.True(t, names["cmd"])
	assert.True(t, names["."])
}

func TestStatsCountsEverything(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"a.go": "package main\n\nfunc bar() {}\n\nfunc foo() {\n\tbar()\n}\n",
	})
	stats, err := e.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 2, stats.Symbols)
	assert.Equal(t, 1, stats.Edges)
}

func TestBriefRendersNonEmptySummary(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"a.go": "package main\n\nfunc foo() {}\n",
	})
	out, err := e.Brief()
	require.NoError(t, err)
	assert.Contains(t, out, "1 files")
	assert.Contains(t, out, "Top symbols:")
}

func TestPreEditListsExportsAndDependents(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"a.ts": "import { helper } from './b';\nexport function foo() {\n  helper();\n}\n",
		"b.ts": "export function helper() {}\n",
	})
	out, err := e.PreEdit("b.ts")
	require.NoError(t, err)
	assert.Contains(t, out, "helper")
	assert.Contains(t, out, "a.ts")
}

func TestPreEditOnUnindexedFile(t *testing.T) {
	e := newTestEngine(t, map[string]string{
		"a.go": "package main\n\nfunc foo() {}\n",
	})
	out, err := e.PreEdit("missing.go")
	require.NoError(t, err)
	assert.Contains(t, out, "not indexed")
}
