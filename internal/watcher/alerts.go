package watcher

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/reposcan/internal/report"
)

// Alert levels.
const (
	LevelCritical = "critical"
	LevelWarning  = "warning"
	LevelInfo     = "info"
)

// Compare inspects two consecutive reports and returns alerts for budgets
// that changed state, newly flagged hotspots, debt marker changes, and
// import edge changes. Alerts are ordered critical, warning, info.
func Compare(prev, curr *report.Report, ex report.FailExclusions) []Alert {
	var alerts []Alert
	alerts = append(alerts, compareBudgets(prev, curr, ex)...)
	alerts = append(alerts, compareHotspots(prev, curr)...)
	alerts = append(alerts, compareDebt(prev, curr)...)
	alerts = append(alerts, compareImports(prev, curr)...)
	return alerts
}

func compareBudgets(prev, curr *report.Report, ex report.FailExclusions) []Alert {
	pv := report.Evaluate(prev, ex)
	cv := report.Evaluate(curr, ex)
	now := time.Now()

	checks := []struct {
		name       string
		was, is    bool
		limit      int
		limitLabel string
	}{
		{"File size", pv.FileSize, cv.FileSize, curr.Budgets.MaxFileLines, "lines"},
		{"Function length", pv.FunctionSize, cv.FunctionSize, curr.Budgets.MaxFunctionLines, "lines"},
		{"Complexity", pv.Complexity, cv.Complexity, curr.Budgets.ComplexityWarn, "branches"},
	}

	var alerts []Alert
	for _, c := range checks {
		switch {
		case c.is && !c.was:
			alerts = append(alerts, Alert{
				Level:   LevelCritical,
				Title:   c.name + " budget exceeded",
				Message: fmt.Sprintf("A ranked entry reached the %d %s budget", c.limit, c.limitLabel),
				Time:    now,
			})
		case c.was && !c.is:
			alerts = append(alerts, Alert{
				Level:   LevelInfo,
				Title:   c.name + " budget back within limits",
				Message: fmt.Sprintf("No ranked entry reaches %d %s", c.limit, c.limitLabel),
				Time:    now,
			})
		}
	}
	return alerts
}

func compareHotspots(prev, curr *report.Report) []Alert {
	now := time.Now()
	var alerts []Alert

	seenFns := make(map[string]bool, len(prev.TopLongestFunctions))
	for _, fn := range prev.TopLongestFunctions {
		seenFns[fn.Path] = true
	}
	for _, fn := range curr.TopLongestFunctions {
		if seenFns[fn.Path] {
			continue
		}
		alerts = append(alerts, Alert{
			Level:   LevelWarning,
			Title:   "New long function",
			Message: fmt.Sprintf("%s L%d-%d is %d lines (budget %d)", fn.Path, fn.Start, fn.End, fn.Lines, curr.Budgets.MaxFunctionLines),
			Time:    now,
		})
	}

	seenComplex := make(map[string]bool, len(prev.TopMostComplexFiles))
	for _, c := range prev.TopMostComplexFiles {
		seenComplex[c.Path] = true
	}
	for _, c := range curr.TopMostComplexFiles {
		if seenComplex[c.Path] {
			continue
		}
		alerts = append(alerts, Alert{
			Level:   LevelWarning,
			Title:   "New complex file",
			Message: fmt.Sprintf("%s has complexity %d (warn at %d)", c.Path, c.Complexity, curr.Budgets.ComplexityWarn),
			Time:    now,
		})
	}

	return alerts
}

func compareDebt(prev, curr *report.Report) []Alert {
	delta := curr.DebtMarkerCount - prev.DebtMarkerCount
	switch {
	case delta > 0:
		return []Alert{{
			Level:   LevelWarning,
			Title:   "Debt markers increased",
			Message: fmt.Sprintf("%d -> %d TODO/FIXME/HACK markers (+%d)", prev.DebtMarkerCount, curr.DebtMarkerCount, delta),
			Time:    time.Now(),
		}}
	case delta < 0:
		return []Alert{{
			Level:   LevelInfo,
			Title:   "Debt markers resolved",
			Message: fmt.Sprintf("%d -> %d TODO/FIXME/HACK markers (%d)", prev.DebtMarkerCount, curr.DebtMarkerCount, delta),
			Time:    time.Now(),
		}}
	}
	return nil
}

func compareImports(prev, curr *report.Report) []Alert {
	if prev.ImportEdgeCount == curr.ImportEdgeCount {
		return nil
	}
	return []Alert{{
		Level:   LevelInfo,
		Title:   "Import graph changed",
		Message: fmt.Sprintf("%d -> %d local import edges", prev.ImportEdgeCount, curr.ImportEdgeCount),
		Time:    time.Now(),
	}}
}
