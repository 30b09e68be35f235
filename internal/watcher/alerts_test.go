package watcher

import (
	"strings"
	"testing"

	"github.com/blackwell-systems/reposcan/internal/report"
)

var testBudgets = report.Budgets{MaxFileLines: 600, MaxFunctionLines: 80, ComplexityWarn: 23}

func makeReport() *report.Report {
	return &report.Report{
		TotalsByGroup:       map[string]int{report.AllGroupsKey: 0},
		TopLargestFiles:     []report.FileSize{},
		TopLongestFunctions: []report.FunctionSpan{},
		TopMostComplexFiles: []report.FileComplexity{},
		Budgets:             testBudgets,
	}
}

func findAlert(alerts []Alert, title string) *Alert {
	for i := range alerts {
		if alerts[i].Title == title {
			return &alerts[i]
		}
	}
	return nil
}

func TestCompare_IdenticalReports(t *testing.T) {
	prev := makeReport()
	prev.DebtMarkerCount = 3
	prev.ImportEdgeCount = 5
	curr := makeReport()
	curr.DebtMarkerCount = 3
	curr.ImportEdgeCount = 5

	if alerts := Compare(prev, curr, report.FailExclusions{}); len(alerts) != 0 {
		t.Errorf("expected 0 alerts for identical reports, got %d", len(alerts))
		for _, a := range alerts {
			t.Logf("  [%s] %s: %s", a.Level, a.Title, a.Message)
		}
	}
}

func TestCompare_FileBudgetExceeded(t *testing.T) {
	prev := makeReport()
	prev.TopLargestFiles = []report.FileSize{{Path: "src/a.ts", Lines: 590}}
	curr := makeReport()
	curr.TopLargestFiles = []report.FileSize{{Path: "src/a.ts", Lines: 612}}

	alerts := Compare(prev, curr, report.FailExclusions{})
	a := findAlert(alerts, "File size budget exceeded")
	if a == nil {
		t.Fatal("expected file size alert")
	}
	if a.Level != LevelCritical {
		t.Errorf("expected critical level, got %q", a.Level)
	}
}

func TestCompare_BudgetRecovered(t *testing.T) {
	prev := makeReport()
	prev.TopMostComplexFiles = []report.FileComplexity{{Path: "src/a.ts", Complexity: 30}}
	curr := makeReport()

	alerts := Compare(prev, curr, report.FailExclusions{})
	a := findAlert(alerts, "Complexity budget back within limits")
	if a == nil {
		t.Fatal("expected recovery alert")
	}
	if a.Level != LevelInfo {
		t.Errorf("expected info level, got %q", a.Level)
	}
}

func TestCompare_ExcludedPathsDoNotAlert(t *testing.T) {
	prev := makeReport()
	curr := makeReport()
	curr.TopMostComplexFiles = []report.FileComplexity{{Path: "tests/big.test.ts", Complexity: 40}}

	alerts := Compare(prev, curr, report.FailExclusions{Complexity: []string{"tests/"}})
	if findAlert(alerts, "Complexity budget exceeded") != nil {
		t.Error("excluded path should not trip the complexity budget")
	}
	// The hotspot itself is still new.
	if findAlert(alerts, "New complex file") == nil {
		t.Error("expected new complex file alert")
	}
}

func TestCompare_NewLongFunction(t *testing.T) {
	prev := makeReport()
	prev.TopLongestFunctions = []report.FunctionSpan{{Path: "src/old.ts", Start: 1, End: 90, Lines: 90}}
	curr := makeReport()
	curr.TopLongestFunctions = []report.FunctionSpan{
		{Path: "src/new.ts", Start: 10, End: 109, Lines: 100},
		{Path: "src/old.ts", Start: 1, End: 90, Lines: 90},
	}

	var found []Alert
	for _, a := range Compare(prev, curr, report.FailExclusions{}) {
		if a.Title == "New long function" {
			found = append(found, a)
		}
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 new long function alert, got %d", len(found))
	}
	if !strings.Contains(found[0].Message, "src/new.ts L10-109") {
		t.Errorf("unexpected message %q", found[0].Message)
	}
}

func TestCompare_DebtMarkers(t *testing.T) {
	prev := makeReport()
	prev.DebtMarkerCount = 3
	curr := makeReport()
	curr.DebtMarkerCount = 5

	a := findAlert(Compare(prev, curr, report.FailExclusions{}), "Debt markers increased")
	if a == nil {
		t.Fatal("expected debt increase alert")
	}
	if a.Message != "3 -> 5 TODO/FIXME/HACK markers (+2)" {
		t.Errorf("unexpected message %q", a.Message)
	}

	if findAlert(Compare(curr, prev, report.FailExclusions{}), "Debt markers resolved") == nil {
		t.Error("expected debt resolved alert")
	}
}

func TestCompare_ImportGraphChanged(t *testing.T) {
	prev := makeReport()
	prev.ImportEdgeCount = 4
	curr := makeReport()
	curr.ImportEdgeCount = 6

	a := findAlert(Compare(prev, curr, report.FailExclusions{}), "Import graph changed")
	if a == nil {
		t.Fatal("expected import graph alert")
	}
	if a.Level != LevelInfo {
		t.Errorf("expected info level, got %q", a.Level)
	}
}

func TestCompare_Ordering(t *testing.T) {
	prev := makeReport()
	curr := makeReport()
	curr.DebtMarkerCount = 1
	curr.ImportEdgeCount = 1
	curr.TopLargestFiles = []report.FileSize{{Path: "a.ts", Lines: 700}}

	alerts := Compare(prev, curr, report.FailExclusions{})
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	want := []string{LevelCritical, LevelWarning, LevelInfo}
	for i, a := range alerts {
		if a.Level != want[i] {
			t.Errorf("alert %d level = %q, want %q", i, a.Level, want[i])
		}
	}
}
