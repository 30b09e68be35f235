package suggest

import (
	"testing"

	"github.com/blackwell-systems/reposcan/internal/report"
	"github.com/blackwell-systems/reposcan/internal/store"
)

func budgets() report.Budgets {
	return report.Budgets{MaxFileLines: 600, MaxFunctionLines: 80, ComplexityWarn: 23}
}

func TestEngineRun_NilReport(t *testing.T) {
	if got := NewEngine().Run(&AnalysisContext{}); got != nil {
		t.Errorf("expected no suggestions for nil report, got %d", len(got))
	}
	if got := NewEngine().Run(nil); got != nil {
		t.Errorf("expected no suggestions for nil context, got %d", len(got))
	}
}

func TestEngineRun_HealthyReport(t *testing.T) {
	r := &report.Report{
		Budgets:         budgets(),
		TopLargestFiles: []report.FileSize{{Path: "src/a.ts", Lines: 100}},
	}
	if got := NewEngine().Run(&AnalysisContext{Report: r}); len(got) != 0 {
		t.Errorf("expected no suggestions, got %+v", got)
	}
}

func TestEngineRun_ReturnsSortedByImpactScore(t *testing.T) {
	r := &report.Report{
		Budgets: budgets(),
		TopLargestFiles: []report.FileSize{
			{Path: "src/big.ts", Lines: 1200},
			{Path: "src/near.ts", Lines: 500},
		},
		TopLongestFunctions: []report.FunctionSpan{{Path: "src/big.ts", Start: 10, End: 109, Lines: 100}},
		TopMostComplexFiles: []report.FileComplexity{{Path: "src/big.ts", Complexity: 30}},
	}
	suggestions := NewEngine().Run(&AnalysisContext{Report: r})
	if len(suggestions) != 4 {
		t.Fatalf("expected 4 suggestions, got %d: %+v", len(suggestions), suggestions)
	}
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].ImpactScore > suggestions[i-1].ImpactScore {
			t.Errorf("suggestions not sorted: index %d (%.2f) > index %d (%.2f)",
				i, suggestions[i].ImpactScore, i-1, suggestions[i-1].ImpactScore)
		}
	}
	if suggestions[0].Title != "Split src/big.ts" {
		t.Errorf("top suggestion = %q, want Split src/big.ts", suggestions[0].Title)
	}
}

func TestEngineRun_IncludesRegressions(t *testing.T) {
	r := &report.Report{Budgets: budgets()}
	deltas := store.ComputeDeltas(
		map[string]int{store.MetricDebtMarkers: 4, store.MetricTotalLines: 100},
		map[string]int{store.MetricDebtMarkers: 6, store.MetricTotalLines: 900},
	)
	suggestions := NewEngine().Run(&AnalysisContext{Report: r, Deltas: deltas})
	if len(suggestions) != 1 {
		t.Fatalf("expected only the debt regression, got %+v", suggestions)
	}
	if suggestions[0].Category != CategoryTrend {
		t.Errorf("category = %q, want %q", suggestions[0].Category, CategoryTrend)
	}
}

func TestRankSuggestions_TieBreaks(t *testing.T) {
	in := []Suggestion{
		{Title: "b", Priority: PriorityLow, ImpactScore: 1},
		{Title: "a", Priority: PriorityLow, ImpactScore: 1},
		{Title: "c", Priority: PriorityHigh, ImpactScore: 1},
	}
	got := RankSuggestions(in)
	want := []string{"c", "a", "b"}
	for i, s := range got {
		if s.Title != want[i] {
			t.Errorf("rank %d = %q, want %q", i, s.Title, want[i])
		}
	}
	if in[0].Title != "b" {
		t.Error("RankSuggestions modified its input")
	}
}

func TestComputeImpact(t *testing.T) {
	if got := ComputeImpact(1200, 600, 3); got != 6 {
		t.Errorf("ComputeImpact = %v, want 6", got)
	}
	if got := ComputeImpact(10, 0, 3); got != 0 {
		t.Errorf("ComputeImpact with zero budget = %v, want 0", got)
	}
}

func TestFilterByCategory(t *testing.T) {
	in := []Suggestion{{Category: CategorySize}, {Category: CategoryDebt}, {Category: CategorySize}}
	if got := FilterByCategory(in, CategorySize); len(got) != 2 {
		t.Errorf("expected 2 size suggestions, got %d", len(got))
	}
	if got := FilterByCategory(in, "nope"); len(got) != 0 {
		t.Errorf("expected none, got %d", len(got))
	}
}
