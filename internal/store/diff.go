package store

import "sort"

// regressionMetrics are metrics where growth is a regression.
var regressionMetrics = map[string]bool{
	MetricDebtMarkers:    true,
	MetricImportEdges:    true,
	MetricLongFunctions:  true,
	MetricComplexFiles:   true,
	MetricOversizedFiles: true,
}

// HigherIsWorse reports whether growth in the named metric is a regression.
// Size metrics such as line totals are neutral.
func HigherIsWorse(name string) bool {
	return regressionMetrics[name]
}

// ComputeDeltas compares two metric sets. Metrics missing on either side
// count as zero. The result is ordered by metric name.
func ComputeDeltas(prev, curr map[string]int) []MetricDelta {
	names := make(map[string]bool, len(curr))
	for n := range prev {
		names[n] = true
	}
	for n := range curr {
		names[n] = true
	}

	deltas := make([]MetricDelta, 0, len(names))
	for n := range names {
		d := MetricDelta{Name: n, Previous: prev[n], Current: curr[n]}
		d.Delta = d.Current - d.Previous

		switch {
		case d.Delta == 0:
			d.Direction = "unchanged"
		case !HigherIsWorse(n):
			d.Direction = "changed"
		case d.Delta > 0:
			d.Direction = "regressed"
		default:
			d.Direction = "improved"
		}
		deltas = append(deltas, d)
	}

	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Name < deltas[j].Name })
	return deltas
}
