package suggest

import (
	"fmt"
	"sort"
	"strings"
)

// Thresholds used by the built-in rules.
const (
	// approachingRatio marks files close enough to the file budget to watch.
	approachingRatio = 0.75

	// debtClusterMin is the marker count that makes a file a debt cluster.
	debtClusterMin = 5

	// hubMinImporters is the in-degree at which a target counts as a hub.
	hubMinImporters = 5

	// fanOutMin is the out-degree at which a source imports too widely.
	fanOutMin = 8
)

// OversizedFiles suggests splitting every ranked file at or over the file
// budget.
func OversizedFiles(ctx *AnalysisContext) []Suggestion {
	r := ctx.Report
	var suggestions []Suggestion
	for _, f := range r.TopLargestFiles {
		if f.Lines < r.Budgets.MaxFileLines {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Category: CategorySize,
			Priority: PriorityHigh,
			Title:    fmt.Sprintf("Split %s", f.Path),
			Path:     f.Path,
			Description: fmt.Sprintf(
				"%s has %d non-blank lines against a budget of %d. "+
					"Move cohesive groups of functions into their own files.",
				f.Path, f.Lines, r.Budgets.MaxFileLines,
			),
			ImpactScore: ComputeImpact(f.Lines, r.Budgets.MaxFileLines, 3.0),
		})
	}
	return suggestions
}

// ApproachingFileBudget flags files within a quarter of the file budget.
func ApproachingFileBudget(ctx *AnalysisContext) []Suggestion {
	r := ctx.Report
	floor := int(float64(r.Budgets.MaxFileLines) * approachingRatio)
	var suggestions []Suggestion
	for _, f := range r.TopLargestFiles {
		if f.Lines >= r.Budgets.MaxFileLines || f.Lines < floor {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Category: CategorySize,
			Priority: PriorityLow,
			Title:    fmt.Sprintf("Keep an eye on %s", f.Path),
			Path:     f.Path,
			Description: fmt.Sprintf(
				"%s is at %d of %d allowed lines.",
				f.Path, f.Lines, r.Budgets.MaxFileLines,
			),
			ImpactScore: ComputeImpact(f.Lines, r.Budgets.MaxFileLines, 1.0),
		})
	}
	return suggestions
}

// LongFunctions suggests breaking up every flagged function. Functions in
// trees excluded from enforcement get a lower priority.
func LongFunctions(ctx *AnalysisContext) []Suggestion {
	r := ctx.Report
	var suggestions []Suggestion
	for _, fn := range r.TopLongestFunctions {
		if fn.Lines < r.Budgets.MaxFunctionLines {
			continue
		}
		priority := PriorityHigh
		weight := 2.5
		if hasAnyPrefix(fn.Path, ctx.Exclusions.Functions) {
			priority, weight = PriorityLow, 0.5
		}
		suggestions = append(suggestions, Suggestion{
			Category: CategorySize,
			Priority: priority,
			Title:    fmt.Sprintf("Break up the function at %s:%d", fn.Path, fn.Start),
			Path:     fn.Path,
			Description: fmt.Sprintf(
				"Lines %d-%d span %d lines against a budget of %d. "+
					"Extract helpers for the distinct steps it performs.",
				fn.Start, fn.End, fn.Lines, r.Budgets.MaxFunctionLines,
			),
			ImpactScore: ComputeImpact(fn.Lines, r.Budgets.MaxFunctionLines, weight),
		})
	}
	return suggestions
}

// ComplexFiles suggests simplifying every flagged file.
func ComplexFiles(ctx *AnalysisContext) []Suggestion {
	r := ctx.Report
	var suggestions []Suggestion
	for _, c := range r.TopMostComplexFiles {
		if c.Complexity < r.Budgets.ComplexityWarn {
			continue
		}
		priority := PriorityMedium
		weight := 2.0
		if c.Complexity >= 2*r.Budgets.ComplexityWarn {
			priority = PriorityHigh
		}
		if hasAnyPrefix(c.Path, ctx.Exclusions.Complexity) {
			priority, weight = PriorityLow, 0.5
		}
		suggestions = append(suggestions, Suggestion{
			Category: CategoryComplexity,
			Priority: priority,
			Title:    fmt.Sprintf("Simplify branching in %s", c.Path),
			Path:     c.Path,
			Description: fmt.Sprintf(
				"Estimated complexity %d against a warning level of %d. "+
					"Replace nested conditionals with early returns or lookup tables.",
				c.Complexity, r.Budgets.ComplexityWarn,
			),
			ImpactScore: ComputeImpact(c.Complexity, r.Budgets.ComplexityWarn, weight),
		})
	}
	return suggestions
}

// DebtConcentration points at files holding many debt markers.
func DebtConcentration(ctx *AnalysisContext) []Suggestion {
	counts := make(map[string]int)
	for _, m := range ctx.Report.DebtMarkers {
		counts[m.Path]++
	}

	paths := make([]string, 0, len(counts))
	for p, n := range counts {
		if n >= debtClusterMin {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	var suggestions []Suggestion
	for _, p := range paths {
		n := counts[p]
		suggestions = append(suggestions, Suggestion{
			Category: CategoryDebt,
			Priority: PriorityMedium,
			Title:    fmt.Sprintf("Clear debt markers in %s", p),
			Path:     p,
			Description: fmt.Sprintf(
				"%s carries %d TODO/FIXME/HACK markers. Resolve them or move them to the issue tracker.",
				p, n,
			),
			ImpactScore: ComputeImpact(n, debtClusterMin, 1.0),
		})
	}
	return suggestions
}

// ImportHubs flags import targets that many files depend on.
func ImportHubs(ctx *AnalysisContext) []Suggestion {
	var suggestions []Suggestion
	for _, d := range ctx.Report.TangleSinks {
		if d.Count < hubMinImporters {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Category: CategoryCoupling,
			Priority: PriorityMedium,
			Title:    fmt.Sprintf("Stabilize the interface of %s", d.Node),
			Path:     d.Node,
			Description: fmt.Sprintf(
				"%d local import sites reference %q. Changes there ripple widely, so keep its exports small and stable.",
				d.Count, d.Node,
			),
			ImpactScore: ComputeImpact(d.Count, hubMinImporters, 1.5),
		})
	}
	return suggestions
}

// ImportFanOut flags files importing many local modules.
func ImportFanOut(ctx *AnalysisContext) []Suggestion {
	var suggestions []Suggestion
	for _, d := range ctx.Report.TangleSources {
		if d.Count < fanOutMin {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Category: CategoryCoupling,
			Priority: PriorityLow,
			Title:    fmt.Sprintf("Reduce local imports in %s", d.Node),
			Path:     d.Node,
			Description: fmt.Sprintf(
				"%s has %d local imports. A file that depends on this much is hard to test in isolation.",
				d.Node, d.Count,
			),
			ImpactScore: ComputeImpact(d.Count, fanOutMin, 1.0),
		})
	}
	return suggestions
}

// MetricRegression reports metrics that got worse since the compared
// snapshot.
func MetricRegression(ctx *AnalysisContext) []Suggestion {
	var suggestions []Suggestion
	for _, d := range ctx.Deltas {
		if d.Direction != "regressed" {
			continue
		}
		base := d.Previous
		if base < 1 {
			base = 1
		}
		suggestions = append(suggestions, Suggestion{
			Category: CategoryTrend,
			Priority: PriorityMedium,
			Title:    fmt.Sprintf("Investigate growth in %s", strings.ReplaceAll(d.Name, "_", " ")),
			Description: fmt.Sprintf(
				"%s went from %d to %d since the previous snapshot.",
				d.Name, d.Previous, d.Current,
			),
			ImpactScore: ComputeImpact(d.Delta, base, 2.0),
		})
	}
	return suggestions
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
