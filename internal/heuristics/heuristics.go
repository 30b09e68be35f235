// Package heuristics estimates code structure from raw source text using
// statement-level pattern matching. Nothing here parses a syntax tree, and
// no function in this package returns an error: unusual syntax simply yields
// fewer matches.
package heuristics

import (
	"sort"
	"strings"
)

// Family selects which pattern set applies to a source file.
type Family string

// Known source families.
const (
	// FamilyNone marks files that get no structural analysis.
	FamilyNone Family = "none"

	// FamilyClosure covers JavaScript and TypeScript sources.
	FamilyClosure Family = "closure"

	// FamilyBraceMethod covers Java and Kotlin sources.
	FamilyBraceMethod Family = "brace-method"
)

// Analysis is the structural summary of one source file.
type Analysis struct {
	Complexity int
	Functions  []Span
	Imports    []string
	Debt       []Marker
}

// Analyze runs every heuristic that applies to family over content. Debt
// markers are collected for all families; the remaining heuristics only run
// for script families.
func Analyze(content string, family Family) Analysis {
	idx := newLineIndex(content)
	a := Analysis{Debt: debtMarkers(content, idx)}

	var starts []Match
	switch family {
	case FamilyClosure:
		starts = append(FunctionDeclarations(content), ArrowAssignments(content)...)
		a.Imports = LocalImports(append(ESImports(content), Requires(content)...))
	case FamilyBraceMethod:
		starts = MethodDeclarations(content)
	default:
		return a
	}

	a.Complexity = Complexity(content)
	a.Functions = Spans(starts, idx.lineCount())
	return a
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex struct {
	newlines []int
	size     int
}

func newLineIndex(content string) lineIndex {
	idx := lineIndex{size: len(content)}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			idx.newlines = append(idx.newlines, i)
		}
	}
	return idx
}

// lineOf returns the 1-based line containing offset.
func (idx lineIndex) lineOf(offset int) int {
	return sort.SearchInts(idx.newlines, offset) + 1
}

// lineCount returns the number of lines, not counting an empty line after a
// trailing newline.
func (idx lineIndex) lineCount() int {
	n := len(idx.newlines)
	if idx.size > 0 && (n == 0 || idx.newlines[n-1] != idx.size-1) {
		n++
	}
	return n
}

// lineText returns the trimmed text of 1-based line in content.
func (idx lineIndex) lineText(content string, line int) string {
	start := 0
	if line > 1 {
		start = idx.newlines[line-2] + 1
	}
	end := len(content)
	if line-1 < len(idx.newlines) {
		end = idx.newlines[line-1]
	}
	return strings.TrimSpace(content[start:end])
}
