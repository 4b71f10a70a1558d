package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codeindex/internal/config"
)

func setupRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(config.Root(root), 0o755))
	return root
}

func TestReadWithNoPidFileReportsNotRunning(t *testing.T) {
	root := setupRoot(t)
	status, err := Read(root)
	require.NoError(t, err)
	assert.False(t, status.Running)
}

func TestWriteThenReadReportsRunningForLiveProcess(t *testing.T) {
	root := setupRoot(t)
	require.NoError(t, Write(root, os.Getpid()))

	status, err := Read(root)
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, os.Getpid(), status.PID)
}

func TestReadCleansUpStalePidFile(t *testing.T) {
	root := setupRoot(t)
	// A pid very unlikely to be alive.
	require.NoError(t, os.WriteFile(PidPath(root), []byte("999999"), 0o644))

	status, err := Read(root)
	require.NoError(t, err)
	assert.False(t, status.Running)

	_, statErr := os.Stat(PidPath(root))
	assert.True(t, os.IsNotExist(statErr))
}

func TestReadCleansUpCorruptPidFile(t *testing.T) {
	root := setupRoot(t)
	require.NoError(t, os.WriteFile(PidPath(root), []byte("not-a-pid"), 0o644))

	status, err := Read(root)
	require.NoError(t, err)
	assert.False(t, status.Running)
}

func TestStopWithNoDaemonRunningIsNoop(t *testing.T) {
	root := setupRoot(t)
	assert.NoError(t, Stop(root))
}

func TestPidPathUnderCodexDir(t *testing.T) {
	root := setupRoot(t)
	assert.Equal(t, filepath.Join(root, ".codex", "daemon.pid"), PidPath(root))
}
