package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/reposcan/internal/config"
	"github.com/blackwell-systems/reposcan/internal/metrics"
	"github.com/blackwell-systems/reposcan/internal/output"
	"github.com/blackwell-systems/reposcan/internal/report"
	"github.com/blackwell-systems/reposcan/internal/watcher"
)

var (
	watchDaemon      bool
	watchStop        bool
	watchQuiet       bool
	watchDebounce    string
	watchInterval    string
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Rescan on change and alert when budgets or debt move",
	Long: `Watch the tree for file changes. After the tree has been quiet for the
debounce period it is rescanned, reusing cached results for unchanged files,
and compared with the previous scan. Alerts are raised when a budget becomes
exceeded or recovers, a new long function or complex file appears, debt
markers change, or the import graph changes.

Examples:
  reposcan watch                             # run in foreground (ctrl-c to stop)
  reposcan watch --daemon                    # run in background, write PID file
  reposcan watch --metrics-addr :9464        # serve prometheus metrics
  reposcan watch --debounce 500ms            # rescan sooner after edits
  reposcan watch --stop                      # stop the background daemon`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	watchCmd.Flags().StringVar(&watchDebounce, "debounce", "", "Quiet period before a rescan (default: config watch.debounce)")
	watchCmd.Flags().StringVar(&watchInterval, "interval", "10s", "Minimum time between rescans")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address (e.g. :9464)")
	rootCmd.AddCommand(watchCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon()
	}

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	debounce := cfg.Watch.DebounceDuration()
	if watchDebounce != "" {
		if debounce, err = time.ParseDuration(watchDebounce); err != nil {
			return fmt.Errorf("invalid debounce %q: %w", watchDebounce, err)
		}
	}
	interval, err := time.ParseDuration(watchInterval)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", watchInterval, err)
	}

	cache, err := watcher.NewCache(cfg.Watch.CacheSize)
	if err != nil {
		return fmt.Errorf("creating result cache: %w", err)
	}
	s, err := newScanner(cfg, logger, cache)
	if err != nil {
		return err
	}

	opts := watcher.Options{
		Root:        root,
		Scanner:     s,
		Budgets:     budgetsFrom(cfg),
		Exclusions:  exclusionsFrom(cfg),
		Debounce:    debounce,
		MinInterval: interval,
		Logger:      logger,
	}

	if watchDaemon {
		return runDaemon(opts)
	}
	return runForeground(cmd.OutOrStdout(), opts)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// attachMetrics records every scan of w and serves the gauges on
// --metrics-addr until ctx is cancelled.
func attachMetrics(ctx context.Context, w *watcher.Watcher, opts watcher.Options) {
	if watchMetricsAddr == "" {
		return
	}
	m := metrics.New()
	w.OnReport = func(r *report.Report, elapsed time.Duration) {
		m.Observe(r, report.Evaluate(r, opts.Exclusions), elapsed)
	}
	w.OnEvent = func(fsnotify.Event) { m.WatchEvents.Inc() }
	go func() {
		if err := m.Serve(ctx, watchMetricsAddr); err != nil {
			opts.Logger.Error("metrics server failed", "addr", watchMetricsAddr, "error", err)
		}
	}()
}

// runWatcher blocks until ctx is cancelled; cancellation is not an error.
func runWatcher(ctx context.Context, w *watcher.Watcher) error {
	err := w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runForeground runs the watcher in the foreground with live terminal output.
func runForeground(out io.Writer, opts watcher.Options) error {
	ctx, cancel := signalContext()
	defer cancel()

	if !watchQuiet {
		fmt.Fprintf(out, "reposcan watching %s... (debounce %s)\n", opts.Root, opts.Debounce)
	}

	alertFn := func(a watcher.Alert) {
		_ = watcher.Notify(a)
		if !watchQuiet {
			printAlert(out, a)
		}
	}

	w := watcher.New(opts, alertFn)
	attachMetrics(ctx, w, opts)

	// Take the baseline before watching so it can be reported.
	initial, err := w.Baseline(ctx)
	if err != nil {
		return fmt.Errorf("initial scan failed: %w", err)
	}

	if !watchQuiet {
		verdict := report.Evaluate(initial, opts.Exclusions)
		status := output.StyleSuccess.Render("within budget")
		if verdict.Failed() {
			status = output.StyleError.Render("over budget")
		}
		fmt.Fprintf(out, "[%s] %s Baseline: %d files, %d lines, %d debt markers, %s\n",
			time.Now().Format("15:04:05"),
			checkMark(),
			initial.FileCount,
			initial.TotalLines(),
			initial.DebtMarkerCount,
			status)
	}

	if err := runWatcher(ctx, w); err != nil {
		return err
	}
	if !watchQuiet {
		fmt.Fprintln(out, "\nStopped.")
	}
	return nil
}

// runDaemon sets up PID and log files, then runs the watcher. The actual
// backgrounding should be done by the caller (nohup, &, etc.) since Go
// cannot reliably fork.
func runDaemon(opts watcher.Options) error {
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	// Check for existing daemon.
	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		// Stale PID file, remove it.
		_ = os.Remove(pidFilePath())
	}

	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}))
	opts.Logger = logger

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("daemon started", "pid", pid, "root", opts.Root, "debounce", opts.Debounce)

	alertFn := func(a watcher.Alert) {
		_ = watcher.Notify(a)
		logger.Warn(a.Title, "level", a.Level, "message", a.Message)
	}

	w := watcher.New(opts, alertFn)
	attachMetrics(ctx, w, opts)
	if err := runWatcher(ctx, w); err != nil {
		logger.Error("daemon failed", "error", err)
		return err
	}
	logger.Info("daemon stopped")
	return nil
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}

// printAlert formats and prints an alert to the terminal.
func printAlert(w io.Writer, a watcher.Alert) {
	fmt.Fprintf(w, "[%s] %s %s\n", a.Time.Format("15:04:05"), alertIcon(a.Level), a.Title)
	if a.Message != "" {
		fmt.Fprintf(w, "         %s\n", output.StyleMuted.Render(a.Message))
	}
}

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case watcher.LevelCritical:
		return output.StyleError.Render("✗")
	case watcher.LevelWarning:
		return output.StyleWarning.Render("!")
	case watcher.LevelInfo:
		return output.StyleSuccess.Render("✓")
	default:
		return " "
	}
}

// checkMark returns a terminal check mark indicator.
func checkMark() string {
	return output.StyleSuccess.Render("✓")
}
