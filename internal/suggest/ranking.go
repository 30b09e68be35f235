package suggest

import (
	"cmp"
	"slices"
)

// RankSuggestions sorts suggestions by ImpactScore in descending order,
// breaking ties by priority and then title.
func RankSuggestions(suggestions []Suggestion) []Suggestion {
	sorted := slices.Clone(suggestions)
	slices.SortStableFunc(sorted, func(a, b Suggestion) int {
		if c := cmp.Compare(b.ImpactScore, a.ImpactScore); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
	return sorted
}

// ComputeImpact scores how far value exceeds budget, scaled by weight.
// Formula: (value / budget) * weight
//
// Returns 0 if budget is not positive to avoid division by zero.
func ComputeImpact(value, budget int, weight float64) float64 {
	if budget <= 0 {
		return 0
	}
	return float64(value) / float64(budget) * weight
}

// FilterByCategory keeps suggestions in category.
func FilterByCategory(suggestions []Suggestion, category string) []Suggestion {
	var filtered []Suggestion
	for _, s := range suggestions {
		if s.Category == category {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
