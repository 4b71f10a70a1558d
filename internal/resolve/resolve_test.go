package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func TestResolveRejectsPackageSpecifier(t *testing.T) {
	root := mkTree(t, map[string]string{"a.ts": ""})
	_, ok := Resolve(root, "a.ts", "lodash")
	assert.False(t, ok)
}

func TestResolveProbesExtension(t *testing.T) {
	root := mkTree(t, map[string]string{
		"src/a.ts": "",
		"src/b.ts": "",
	})
	rel, ok := Resolve(root, "src/a.ts", "./b")
	require.True(t, ok)
	assert.Equal(t, "src/b.ts", rel)
}

func TestResolveExactMatchWithExtensionAlreadyGiven(t *testing.T) {
	root := mkTree(t, map[string]string{
		"src/a.py": "",
		"src/b.py": "",
	})
	rel, ok := Resolve(root, "src/a.py", "./b.py")
	require.True(t, ok)
	assert.Equal(t, "src/b.py", rel)
}

func TestResolveFallsBackToIndex(t *testing.T) {
	root := mkTree(t, map[string]string{
		"src/a.ts":        "",
		"src/lib/index.ts": "",
	})
	rel, ok := Resolve(root, "src/a.ts", "./lib")
	require.True(t, ok)
	assert.Equal(t, "src/lib/index.ts", rel)
}

func TestResolveParentDirectory(t *testing.T) {
	root := mkTree(t, map[string]string{
		"src/nested/a.go": "",
		"src/b.go":        "",
	})
	rel, ok := Resolve(root, "src/nested/a.go", "../b")
	require.True(t, ok)
	assert.Equal(t, "src/b.go", rel)
}

func TestResolveReturnsFalseWhenNothingExists(t *testing.T) {
	root := mkTree(t, map[string]string{"src/a.ts": ""})
	_, ok := Resolve(root, "src/a.ts", "./missing")
	assert.False(t, ok)
}

func TestResolveEmptySpecifier(t *testing.T) {
	root := mkTree(t, map[string]string{"a.ts": ""})
	_, ok := Resolve(root, "a.ts", "")
	assert.False(t, ok)
}
