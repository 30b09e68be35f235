package report

import "strings"

// FailExclusions lists path prefixes ignored by budget evaluation.
type FailExclusions struct {
	// Functions are prefixes skipped by the function-length check.
	Functions []string

	// Complexity are prefixes skipped by the complexity check.
	Complexity []string
}

// Verdict records which budgets a report violates.
type Verdict struct {
	FileSize     bool `json:"file_size"`
	FunctionSize bool `json:"function_size"`
	Complexity   bool `json:"complexity"`
}

// Failed reports whether any budget is violated.
func (v Verdict) Failed() bool {
	return v.FileSize || v.FunctionSize || v.Complexity
}

// Violations names the violated budgets.
func (v Verdict) Violations() []string {
	var names []string
	if v.FileSize {
		names = append(names, "file size")
	}
	if v.FunctionSize {
		names = append(names, "function length")
	}
	if v.Complexity {
		names = append(names, "complexity")
	}
	return names
}

// Evaluate checks the report's ranked lists against its budgets. Only the
// truncated top lists are examined, so a violation ranked below them is not
// seen.
func Evaluate(r *Report, ex FailExclusions) Verdict {
	var v Verdict

	// Largest files.
	for _, f := range r.TopLargestFiles {
		if f.Lines >= r.Budgets.MaxFileLines {
			v.FileSize = true
			break
		}
	}

	// Longest functions, outside excluded trees.
	for _, fn := range r.TopLongestFunctions {
		if hasAnyPrefix(fn.Path, ex.Functions) {
			continue
		}
		if fn.Lines >= r.Budgets.MaxFunctionLines {
			v.FunctionSize = true
			break
		}
	}

	// Most complex files, outside excluded trees.
	for _, c := range r.TopMostComplexFiles {
		if hasAnyPrefix(c.Path, ex.Complexity) {
			continue
		}
		if c.Complexity >= r.Budgets.ComplexityWarn {
			v.Complexity = true
			break
		}
	}

	return v
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
