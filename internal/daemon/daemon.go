// Package daemon manages the background watcher process's lifecycle with a
// pid-file model: a single file under `<root>/.codex/daemon.pid` records the
// running process id, guarded by a file lock against concurrent start races,
// with liveness checked by sending signal 0.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofrs/flock"

	"github.com/mvp-joe/codeindex/internal/config"
)

// PidPath returns <root>/.codex/daemon.pid.
func PidPath(root string) string {
	return filepath.Join(config.Root(root), "daemon.pid")
}

func lockPath(root string) string {
	return PidPath(root) + ".lock"
}

// Status is the result of probing a root's daemon.
type Status struct {
	Running bool
	PID     int
}

// Write records pid as the running daemon's pid file, guarded by a file
// lock so two `daemon start` invocations can't race each other into two
// live pid files.
func Write(root string, pid int) error {
	lock := flock.New(lockPath(root))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another daemon start is in progress")
	}
	defer lock.Unlock()

	data := []byte(strconv.Itoa(pid))
	if err := os.WriteFile(PidPath(root), data, 0o644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

// Read reports the current daemon status for root: whether a pid file
// exists and names a live process. A stale pid file (process no longer
// alive) is removed and reported as not running.
func Read(root string) (Status, error) {
	data, err := os.ReadFile(PidPath(root))
	if os.IsNotExist(err) {
		return Status{Running: false}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("read pid file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		os.Remove(PidPath(root))
		return Status{Running: false}, nil
	}

	if !alive(pid) {
		os.Remove(PidPath(root))
		return Status{Running: false}, nil
	}

	return Status{Running: true, PID: pid}, nil
}

// Stop sends SIGTERM to the daemon recorded in root's pid file, if one is
// running, and removes the pid file.
func Stop(root string) error {
	status, err := Read(root)
	if err != nil {
		return err
	}
	if !status.Running {
		return nil
	}

	proc, err := os.FindProcess(status.PID)
	if err != nil {
		return fmt.Errorf("find daemon process %d: %w", status.PID, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process %d: %w", status.PID, err)
	}

	os.Remove(PidPath(root))
	return nil
}

// alive reports whether pid names a live process, per the standard
// signal-0 liveness probe.
func alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
