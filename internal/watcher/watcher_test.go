package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/reposcan/internal/report"
	"github.com/blackwell-systems/reposcan/internal/scanner"
)

// fakeScanner returns queued results, repeating the last one.
type fakeScanner struct {
	mu      sync.Mutex
	results [][]scanner.FileResult
	err     error
	calls   int
}

func (f *fakeScanner) Scan(ctx context.Context, root string) ([]scanner.FileResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	i := min(f.calls-1, len(f.results)-1)
	return f.results[i], nil
}

func TestCheck_FirstCycleHasNoAlerts(t *testing.T) {
	fs := &fakeScanner{results: [][]scanner.FileResult{{scanner.Evaluate("a.ts", "// TODO one\n")}}}
	w := New(Options{Root: "/r", Scanner: fs, Budgets: testBudgets}, nil)

	assert.Empty(t, w.Check(context.Background()))
	require.NotNil(t, w.Previous())
	assert.Equal(t, 1, w.Previous().DebtMarkerCount)
}

func TestCheck_DetectsAndDeduplicates(t *testing.T) {
	fs := &fakeScanner{results: [][]scanner.FileResult{
		{scanner.Evaluate("a.ts", "// TODO one\n")},
		{scanner.Evaluate("a.ts", "// TODO one\n// FIXME two\n")},
		{scanner.Evaluate("a.ts", "// TODO one\n// FIXME two\n// HACK three\n")},
	}}
	w := New(Options{Root: "/r", Scanner: fs, Budgets: testBudgets}, nil)
	ctx := context.Background()

	w.Check(ctx)
	alerts := w.Check(ctx)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Debt markers increased", alerts[0].Title)

	alerts = w.Check(ctx)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Message, "2 -> 3")

	// The scanner now repeats its last result, so nothing changes.
	assert.Empty(t, w.Check(ctx))
}

func TestCheck_ScanError(t *testing.T) {
	w := New(Options{Root: "/r", Scanner: &fakeScanner{err: errors.New("boom")}, Budgets: testBudgets}, nil)

	alerts := w.Check(context.Background())
	require.Len(t, alerts, 1)
	assert.Equal(t, LevelWarning, alerts[0].Level)
	assert.Contains(t, alerts[0].Message, "boom")
}

func TestSnapshot_CallsOnReport(t *testing.T) {
	fs := &fakeScanner{results: [][]scanner.FileResult{{scanner.Evaluate("a.ts", "x\n")}}}
	w := New(Options{Root: "/r", Scanner: fs, Budgets: testBudgets}, nil)

	var got *report.Report
	w.OnReport = func(r *report.Report, _ time.Duration) { got = r }

	r, err := w.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Same(t, r, got)
	assert.Equal(t, "/r", r.Root)
}

func TestNew_Defaults(t *testing.T) {
	w := New(Options{Root: "/r"}, nil)
	assert.Equal(t, 2*time.Second, w.opts.Debounce)
	assert.Equal(t, w.opts.Debounce, w.opts.MinInterval)
	assert.NotNil(t, w.opts.Logger)
}

func TestRun_RescansOnChange(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.ts"), []byte("const a = 1;\n"), 0o644))

	s, err := scanner.New(scanner.Options{Workers: 2})
	require.NoError(t, err)

	alerts := make(chan Alert, 8)
	w := New(Options{
		Root:        root,
		Scanner:     s,
		Budgets:     testBudgets,
		Debounce:    50 * time.Millisecond,
		MinInterval: 10 * time.Millisecond,
	}, func(a Alert) { alerts <- a })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scans := make(chan struct{}, 8)
	w.OnReport = func(*report.Report, time.Duration) { scans <- struct{}{} }

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Initial snapshot.
	select {
	case <-scans:
	case <-ctx.Done():
		t.Fatal("initial scan did not run")
	}

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "b.ts"), []byte("// TODO later\n"), 0o644))

	select {
	case a := <-alerts:
		assert.Equal(t, "Debt markers increased", a.Title)
	case <-ctx.Done():
		t.Fatal("no alert after change")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestBaseline_SetsPrevious(t *testing.T) {
	fs := &fakeScanner{results: [][]scanner.FileResult{{scanner.Evaluate("a.ts", "// TODO\n")}}}
	w := New(Options{Root: "/r", Scanner: fs, Budgets: testBudgets}, nil)

	r, err := w.Baseline(context.Background())
	require.NoError(t, err)
	assert.Same(t, r, w.Previous())
	assert.Equal(t, 1, fs.calls)
}
