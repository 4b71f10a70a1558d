package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codeindex/internal/collect"
)

type recordingReindexer struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingReindexer) ReindexFile(ctx context.Context, rel string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, rel)
	return nil
}

func (r *recordingReindexer) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func TestWatcherReindexesWrittenFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package main\n"), 0o644))

	rec := &recordingReindexer{}
	w, err := New(root, rec, collect.Options{}, 0)
	require.NoError(t, err)
	t.Cleanup(w.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	w.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package main\n\nfunc foo() {}\n"), 0o644))

	require.Eventually(t, func() bool {
		return len(rec.seen()) > 0
	}, 3*time.Second, 20*time.Millisecond)

	assert.Contains(t, rec.seen(), "a.go")
}

func TestWatcherIgnoresUnsupportedExtension(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi\n"), 0o644))

	rec := &recordingReindexer{}
	w, err := New(root, rec, collect.Options{}, 0)
	require.NoError(t, err)
	t.Cleanup(w.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	w.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi again\n"), 0o644))

	time.Sleep(500 * time.Millisecond)
	assert.Empty(t, rec.seen())
}

func TestWatcherDebouncesBurstsIntoOneCall(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	rec := &recordingReindexer{}
	w, err := New(root, rec, collect.Options{}, 0)
	require.NoError(t, err)
	t.Cleanup(w.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	w.Start(ctx)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc foo() {}\n"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return len(rec.seen()) > 0
	}, 3*time.Second, 20*time.Millisecond)

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, len(rec.seen()))
}
