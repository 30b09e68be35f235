// Package scanner provides file discovery, classification, and per-file
// evaluation for repository health scans.
package scanner

import "github.com/blackwell-systems/reposcan/internal/heuristics"

// Group is the coarse role of a file, derived solely from its extension.
type Group string

// Known groups.
const (
	GroupScript       Group = "script"
	GroupMarkupConfig Group = "markup-config"
	GroupDocs         Group = "docs"
	GroupStyle        Group = "style"
	GroupWeb          Group = "web"
	GroupBuild        Group = "build"
	GroupOther        Group = "other"
)

// FileRecord is one scanned file.
type FileRecord struct {
	// Path is root-relative and always uses forward slashes.
	Path string `json:"path"`

	// Group is the extension-derived role bucket.
	Group Group `json:"group"`

	// Lines is the number of non-blank lines.
	Lines int `json:"lines"`
}

// FileResult is the immutable outcome of evaluating a single file. The
// aggregator folds a slice of these into a report.
type FileResult struct {
	FileRecord

	// Family is heuristics.FamilyNone for files outside the script group.
	Family heuristics.Family `json:"family"`

	// Complexity is the branch-token estimate; zero for non-script files.
	Complexity int `json:"complexity"`

	// Functions are the detected function spans in line order.
	Functions []heuristics.Span `json:"functions,omitempty"`

	// Imports are the local (relative) import targets in match order.
	Imports []string `json:"imports,omitempty"`

	// Debt holds every TODO/FIXME/HACK occurrence.
	Debt []heuristics.Marker `json:"debt,omitempty"`
}

// IsScript reports whether structural heuristics were applied to the file.
func (r FileResult) IsScript() bool {
	return r.Family != heuristics.FamilyNone
}
