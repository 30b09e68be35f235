package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// Candidate is a file selected for evaluation.
type Candidate struct {
	// AbsPath is the filesystem path used for reading.
	AbsPath string

	// Path is the root-relative, slash-separated display path.
	Path string
}

// CompileExcludes compiles glob patterns. Patterns are matched against both
// the base name and the root-relative path of every entry; '*' does not
// cross '/'.
func CompileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func excluded(globs []glob.Glob, rel, base string) bool {
	for _, g := range globs {
		if g.Match(base) || g.Match(rel) {
			return true
		}
	}
	return false
}

// DiscoverFiles walks root and returns every file that participates in the
// line totals, in lexical walk order. Ignored directories are pruned without
// being visited. Unreadable entries below root are skipped.
func DiscoverFiles(ctx context.Context, root string, excludes []glob.Glob) ([]Candidate, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}

	// A single file is scanned as-is.
	if !info.IsDir() {
		if !Included(root) {
			return nil, nil
		}
		return []Candidate{{AbsPath: root, Path: filepath.Base(root)}}, nil
	}

	var candidates []Candidate
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			// Permission errors and races below root are not fatal.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		base := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if IgnoredDirs[base] || excluded(excludes, rel, base) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if !Included(rel) || excluded(excludes, rel, base) {
			return nil
		}

		candidates = append(candidates, Candidate{AbsPath: path, Path: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return candidates, nil
}
