// Package suggest turns a scan report into ranked refactoring suggestions.
package suggest

import (
	"github.com/blackwell-systems/reposcan/internal/report"
	"github.com/blackwell-systems/reposcan/internal/store"
)

// Priority levels for suggestions.
const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4
)

// Categories group related suggestions.
const (
	CategorySize       = "size"
	CategoryComplexity = "complexity"
	CategoryDebt       = "debt"
	CategoryCoupling   = "coupling"
	CategoryTrend      = "trend"
)

// Suggestion represents an actionable improvement recommendation.
type Suggestion struct {
	Category    string  `json:"category"`
	Priority    int     `json:"priority"`
	Title       string  `json:"title"`
	Path        string  `json:"path,omitempty"`
	Description string  `json:"description"`
	ImpactScore float64 `json:"impact_score"`
}

// AnalysisContext provides the data rules examine.
type AnalysisContext struct {
	// Report is the scan being analyzed.
	Report *report.Report

	// Exclusions are the path prefixes budget enforcement ignores. Rules
	// lower the priority of suggestions inside them.
	Exclusions report.FailExclusions

	// Deltas compares the scan against an earlier snapshot, when one exists.
	Deltas []store.MetricDelta
}

// Rule is a function that examines the analysis context and produces
// zero or more suggestions.
type Rule func(ctx *AnalysisContext) []Suggestion
