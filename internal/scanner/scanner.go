package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/reposcan/internal/heuristics"
)

// ResultCache stores per-file results between scans. Keys change whenever a
// file's size or modification time changes.
type ResultCache interface {
	Get(key string) (FileResult, bool)
	Add(key string, result FileResult)
}

// Options configures a Scanner.
type Options struct {
	// Workers is the number of files evaluated concurrently. Zero means NumCPU.
	Workers int

	// Exclude holds extra glob patterns to skip, on top of IgnoredDirs.
	Exclude []string

	// Cache, when set, lets repeated scans reuse results of unchanged files.
	Cache ResultCache

	// Logger receives debug messages about skipped files.
	Logger *slog.Logger
}

// Scanner discovers and evaluates files under a root directory.
type Scanner struct {
	workers  int
	excludes []glob.Glob
	cache    ResultCache
	logger   *slog.Logger
}

// New creates a Scanner from opts.
func New(opts Options) (*Scanner, error) {
	excludes, err := CompileExcludes(opts.Exclude)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scanner{
		workers:  workers,
		excludes: excludes,
		cache:    opts.Cache,
		logger:   logger,
	}, nil
}

// Scan evaluates every included file under root and returns one result per
// readable text file, in walk order. Files that cannot be read or are binary
// are skipped. Only context cancellation and a missing root are errors.
func (s *Scanner) Scan(ctx context.Context, root string) ([]FileResult, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		trimmed = "."
	}

	absRoot, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	candidates, err := DiscoverFiles(ctx, absRoot, s.excludes)
	if err != nil {
		return nil, err
	}

	slots := make([]*FileResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, c := range candidates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if r, ok := s.evaluateCached(c); ok {
				slots[i] = &r
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}

	s.logger.Debug("scan complete",
		"root", absRoot,
		"candidates", len(candidates),
		"evaluated", len(results))

	return results, nil
}

func (s *Scanner) evaluateCached(c Candidate) (FileResult, bool) {
	if s.cache == nil {
		return s.evaluate(c)
	}

	info, err := os.Stat(c.AbsPath)
	if err != nil {
		s.logger.Debug("skipping file", "path", c.Path, "error", err)
		return FileResult{}, false
	}
	key := fmt.Sprintf("%s|%d|%d", c.AbsPath, info.Size(), info.ModTime().UnixNano())
	if r, ok := s.cache.Get(key); ok {
		return r, true
	}

	r, ok := s.evaluate(c)
	if ok {
		s.cache.Add(key, r)
	}
	return r, ok
}

func (s *Scanner) evaluate(c Candidate) (FileResult, bool) {
	content, ok := Extract(c.AbsPath)
	if !ok {
		s.logger.Debug("skipping non-text file", "path", c.Path)
		return FileResult{}, false
	}
	return Evaluate(c.Path, content), true
}

// Evaluate computes the per-file result for already-decoded content.
func Evaluate(path, content string) FileResult {
	family := FamilyOf(path)
	a := heuristics.Analyze(content, family)
	return FileResult{
		FileRecord: FileRecord{
			Path:  path,
			Group: Classify(path),
			Lines: CountLines(content),
		},
		Family:     family,
		Complexity: a.Complexity,
		Functions:  a.Functions,
		Imports:    a.Imports,
		Debt:       a.Debt,
	}
}
