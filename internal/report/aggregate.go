package report

import (
	"cmp"
	"slices"
	"strings"

	"github.com/blackwell-systems/reposcan/internal/scanner"
)

// Aggregate folds per-file results into a Report. The input order does not
// matter: results are ordered by path before folding, and every ranking
// breaks ties by path so the output is reproducible.
func Aggregate(root string, results []scanner.FileResult, budgets Budgets) *Report {
	files := slices.Clone(results)
	slices.SortStableFunc(files, func(a, b scanner.FileResult) int {
		return cmp.Compare(a.Path, b.Path)
	})

	r := &Report{
		Root:          root,
		FileCount:     len(files),
		TotalsByGroup: map[string]int{AllGroupsKey: 0},
		DebtMarkers:   make([]DebtMarker, 0),
		ImportEdges:   make([]ImportEdge, 0),
		Budgets:       budgets,
	}

	moduleLines := make(map[string]int)
	sizes := make([]FileSize, 0, len(files))
	var functions []FunctionSpan
	var complexFiles []FileComplexity

	for _, f := range files {
		r.TotalsByGroup[string(f.Group)] += f.Lines
		r.TotalsByGroup[AllGroupsKey] += f.Lines
		moduleLines[ModuleOf(f.Path)] += f.Lines
		sizes = append(sizes, FileSize{Path: f.Path, Lines: f.Lines})

		if f.IsScript() {
			r.ScriptFileCount++

			if f.Complexity >= budgets.ComplexityWarn {
				complexFiles = append(complexFiles, FileComplexity{Path: f.Path, Complexity: f.Complexity})
			}

			for _, s := range f.Functions {
				if s.Lines() >= budgets.MaxFunctionLines {
					functions = append(functions, FunctionSpan{
						Path:  f.Path,
						Start: s.Start,
						End:   s.End,
						Lines: s.Lines(),
					})
				}
			}

			for _, target := range f.Imports {
				r.ImportEdges = append(r.ImportEdges, ImportEdge{Source: f.Path, Target: target})
			}
		}

		for _, m := range f.Debt {
			r.DebtMarkers = append(r.DebtMarkers, DebtMarker{
				Path:    f.Path,
				Line:    m.Line,
				Keyword: m.Keyword,
				Text:    m.Text,
			})
		}
	}

	r.TotalsByModule = moduleTotals(moduleLines)

	r.TopLargestFiles = top(sizes, TopN, func(a, b FileSize) int {
		return cmp.Or(cmp.Compare(b.Lines, a.Lines), cmp.Compare(a.Path, b.Path))
	})
	r.TopLongestFunctions = top(functions, TopN, func(a, b FunctionSpan) int {
		return cmp.Or(
			cmp.Compare(b.Lines, a.Lines),
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(a.Start, b.Start),
		)
	})
	r.TopMostComplexFiles = top(complexFiles, TopN, func(a, b FileComplexity) int {
		return cmp.Or(cmp.Compare(b.Complexity, a.Complexity), cmp.Compare(a.Path, b.Path))
	})

	r.DebtMarkerCount = len(r.DebtMarkers)
	r.DebtSamples = slices.Clone(r.DebtMarkers[:min(SampleN, len(r.DebtMarkers))])

	r.ImportEdgeCount = len(r.ImportEdges)
	sources := OutDegrees(r.ImportEdges)
	r.TangleSources = sources[:min(TopDegreeN, len(sources))]
	sinks := InDegrees(r.ImportEdges)
	r.TangleSinks = sinks[:min(TopDegreeN, len(sinks))]

	return r
}

// ModuleOf returns the first path segment of a slash-separated path, or
// RootModule for files directly under the root.
func ModuleOf(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return RootModule
}

// OutDegrees counts edges per source path, highest first.
func OutDegrees(edges []ImportEdge) []Degree {
	counts := make(map[string]int)
	for _, e := range edges {
		counts[e.Source]++
	}
	return rankDegrees(counts)
}

// InDegrees counts edges per raw target string, highest first. Two files
// importing the same relative string share one bucket even when the strings
// resolve to different files.
func InDegrees(edges []ImportEdge) []Degree {
	counts := make(map[string]int)
	for _, e := range edges {
		counts[e.Target]++
	}
	return rankDegrees(counts)
}

func rankDegrees(counts map[string]int) []Degree {
	degrees := make([]Degree, 0, len(counts))
	for node, n := range counts {
		degrees = append(degrees, Degree{Node: node, Count: n})
	}
	slices.SortFunc(degrees, func(a, b Degree) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Node, b.Node))
	})
	return degrees
}

func moduleTotals(lines map[string]int) []ModuleTotal {
	totals := make([]ModuleTotal, 0, len(lines))
	for m, n := range lines {
		totals = append(totals, ModuleTotal{Module: m, Lines: n})
	}
	slices.SortFunc(totals, func(a, b ModuleTotal) int {
		return cmp.Or(cmp.Compare(b.Lines, a.Lines), cmp.Compare(a.Module, b.Module))
	})
	return totals
}

// top stable-sorts items and keeps at most n.
func top[T any](items []T, n int, compare func(a, b T) int) []T {
	sorted := slices.Clone(items)
	if sorted == nil {
		sorted = make([]T, 0)
	}
	slices.SortStableFunc(sorted, compare)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
