package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codeindex/internal/daemon"
	"github.com/mvp-joe/codeindex/internal/watch"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the background watcher process",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the watcher in the foreground (run under a process supervisor for background use)",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running watcher daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the watcher daemon is running",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

func init() {
	daemonCmd.AddCommand(daemonStartCmd, daemonStopCmd, daemonStatusCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	root, err := requireIndex()
	if err != nil {
		return err
	}

	if err := daemon.Write(root, os.Getpid()); err != nil {
		return fmt.Errorf("daemon start: %w", err)
	}

	st, _, ix, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	w, err := watch.New(root, ix, cfg.CollectOptions(), cfg.Daemon.DebounceMillis)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	cancel()

	return daemon.Stop(root)
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}
	return daemon.Stop(root)
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}
	status, err := daemon.Read(root)
	if err != nil {
		return err
	}
	return printJSON(status)
}
