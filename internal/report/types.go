// Package report folds per-file scan results into a single Report and
// provides the collaborators that consume it: budget evaluation, DOT graph
// output, and JSON persistence.
package report

// AllGroupsKey is the synthetic totals key summing every group.
const AllGroupsKey = "__all__"

// RootModule is the module bucket for files directly under the scan root.
const RootModule = "."

// Ranking limits.
const (
	TopN       = 20
	TopDegreeN = 10
	SampleN    = 20
)

// Budgets are the thresholds carried through the report for pass/fail
// decisions.
type Budgets struct {
	MaxFileLines     int `json:"max_file_lines"`
	MaxFunctionLines int `json:"max_function_lines"`
	ComplexityWarn   int `json:"complexity_warn"`
}

// ModuleTotal is the summed line count of one top-level directory.
type ModuleTotal struct {
	Module string `json:"module"`
	Lines  int    `json:"lines"`
}

// FileSize is a file ranked by line count.
type FileSize struct {
	Path  string `json:"path"`
	Lines int    `json:"lines"`
}

// FunctionSpan is one detected function body.
type FunctionSpan struct {
	Path  string `json:"path"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Lines int    `json:"lines"`
}

// FileComplexity is a file ranked by complexity estimate.
type FileComplexity struct {
	Path       string `json:"path"`
	Complexity int    `json:"complexity"`
}

// DebtMarker is one TODO/FIXME/HACK occurrence.
type DebtMarker struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Keyword string `json:"keyword"`
	Text    string `json:"text"`
}

// ImportEdge is a local import from Source to the raw Target string.
type ImportEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Degree is an import-graph node with its in- or out-degree.
type Degree struct {
	Node  string `json:"node"`
	Count int    `json:"count"`
}

// Report is the complete result of one scan.
type Report struct {
	Root            string `json:"root"`
	FileCount       int    `json:"file_count"`
	ScriptFileCount int    `json:"script_file_count"`

	TotalsByGroup  map[string]int `json:"totals_by_group"`
	TotalsByModule []ModuleTotal  `json:"totals_by_module"`

	TopLargestFiles     []FileSize       `json:"top_largest_files"`
	TopLongestFunctions []FunctionSpan   `json:"top_longest_functions"`
	TopMostComplexFiles []FileComplexity `json:"top_most_complex_files"`

	DebtMarkerCount int          `json:"debt_marker_count"`
	DebtMarkers     []DebtMarker `json:"debt_markers"`
	DebtSamples     []DebtMarker `json:"debt_samples"`

	ImportEdgeCount int          `json:"import_edge_count"`
	ImportEdges     []ImportEdge `json:"import_edges"`
	TangleSources   []Degree     `json:"tangle_sources"`
	TangleSinks     []Degree     `json:"tangle_sinks"`

	Budgets Budgets `json:"budgets"`
}

// TotalLines returns the line count across every group.
func (r *Report) TotalLines() int {
	return r.TotalsByGroup[AllGroupsKey]
}
