// Package watcher re-scans a source tree when it changes and emits alerts
// when budgets, hotspots, debt markers, or the import graph move.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/blackwell-systems/reposcan/internal/report"
	"github.com/blackwell-systems/reposcan/internal/scanner"
)

// Alert represents a notable change detected between two scans.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// FileScanner evaluates every included file under a root.
type FileScanner interface {
	Scan(ctx context.Context, root string) ([]scanner.FileResult, error)
}

// Options configures a Watcher.
type Options struct {
	Root       string
	Scanner    FileScanner
	Budgets    report.Budgets
	Exclusions report.FailExclusions

	// Debounce is how long the tree must be quiet before a rescan.
	Debounce time.Duration

	// MinInterval is the minimum time between two rescans.
	MinInterval time.Duration

	Logger *slog.Logger
}

// Watcher rescans a tree on change and emits alerts for notable differences.
type Watcher struct {
	opts          Options
	limiter       *rate.Limiter
	previous      *report.Report
	alertFn       func(Alert)
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts

	// OnReport, when set, receives every completed report and its scan time.
	OnReport func(r *report.Report, elapsed time.Duration)

	// OnEvent, when set, is called for every file system event received.
	OnEvent func(fsnotify.Event)
}

// New creates a Watcher for opts.Root.
func New(opts Options, alertFn func(Alert)) *Watcher {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 2 * time.Second
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = opts.Debounce
	}
	return &Watcher{
		opts:          opts,
		limiter:       rate.NewLimiter(rate.Every(opts.MinInterval), 1),
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
	}
}

// Previous returns the most recent report, or nil before the first scan.
func (w *Watcher) Previous() *report.Report {
	return w.previous
}

// Snapshot scans the tree and aggregates a report.
func (w *Watcher) Snapshot(ctx context.Context) (*report.Report, error) {
	start := time.Now()
	results, err := w.opts.Scanner.Scan(ctx, w.opts.Root)
	if err != nil {
		return nil, err
	}
	r := report.Aggregate(w.opts.Root, results, w.opts.Budgets)
	if w.OnReport != nil {
		w.OnReport(r, time.Since(start))
	}
	return r, nil
}

// Baseline scans the tree and records the result as the comparison base
// without emitting alerts.
func (w *Watcher) Baseline(ctx context.Context) (*report.Report, error) {
	r, err := w.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	w.previous = r
	return r, nil
}

// Check performs a single check cycle: takes a new snapshot, compares against
// the previous report, updates it, and returns any alerts. Identical alerts
// are suppressed until the underlying data changes.
func (w *Watcher) Check(ctx context.Context) []Alert {
	curr, err := w.Snapshot(ctx)
	if err != nil {
		return []Alert{{
			Level:   LevelWarning,
			Title:   "Scan failed",
			Message: fmt.Sprintf("Could not scan %s: %v", w.opts.Root, err),
			Time:    time.Now(),
		}}
	}

	var raw []Alert
	if w.previous != nil {
		raw = Compare(w.previous, curr, w.opts.Exclusions)
	}

	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	w.previous = curr
	return alerts
}

// Run watches the tree until ctx is cancelled. It takes an initial snapshot,
// then rescans once the tree has been quiet for the debounce period, at most
// once per MinInterval.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	if err := w.addRecursive(fsw, w.opts.Root); err != nil {
		return fmt.Errorf("watch %s: %w", w.opts.Root, err)
	}

	if w.previous == nil {
		if _, err := w.Baseline(ctx); err != nil {
			return fmt.Errorf("initial snapshot: %w", err)
		}
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.OnEvent != nil {
				w.OnEvent(event)
			}
			if w.relevant(fsw, event) {
				pending = time.After(w.opts.Debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.opts.Logger.Warn("watcher error", "error", err)

		case <-pending:
			pending = nil
			if err := w.limiter.Wait(ctx); err != nil {
				return err
			}
			for _, a := range w.Check(ctx) {
				if w.alertFn != nil {
					w.alertFn(a)
				}
			}
		}
	}
}

// relevant reports whether event should trigger a rescan. New directories
// are added to the watch set as a side effect.
func (w *Watcher) relevant(fsw *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if scanner.IgnoredDirs[filepath.Base(event.Name)] {
				return false
			}
			if err := w.addRecursive(fsw, event.Name); err != nil {
				w.opts.Logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return true
		}
	}

	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	if scanner.Denied(event.Name) {
		return false
	}

	// Removed or renamed directories no longer stat, so they count too.
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return scanner.Included(event.Name) || filepath.Ext(event.Name) == ""
	}
	return scanner.Included(event.Name)
}

// addRecursive watches dir and every non-ignored directory below it.
func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fsw.Add(filepath.Dir(dir))
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == dir {
				return walkErr
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && scanner.IgnoredDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.opts.Logger.Debug("cannot watch directory", "path", path, "error", err)
		}
		return nil
	})
}
