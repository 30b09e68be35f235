package heuristics

import (
	"regexp"
	"sort"
)

// MatchKind names the pattern family that produced a function start.
type MatchKind string

// Known match kinds.
const (
	KindFunction MatchKind = "function"
	KindArrow    MatchKind = "arrow"
	KindMethod   MatchKind = "method"
)

// Match is one detected function start.
type Match struct {
	Kind MatchKind `json:"kind"`
	Line int       `json:"line"`
}

// Span is a function body estimate. Start and End are 1-based and inclusive.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Lines returns the number of lines covered by the span.
func (s Span) Lines() int {
	return s.End - s.Start + 1
}

var (
	// function name(...), optionally exported, default, async, or a generator.
	reFunctionDecl = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:default[ \t]+)?(?:async[ \t]+)?function(?:[ \t]*\*[ \t]*|[ \t]+)[\w$]+[ \t]*\(`)

	// name = (...) => and name = arg =>, optionally declared and typed.
	reArrowAssign = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:(?:const|let|var)[ \t]+)?[\w$]+(?:[ \t]*:[^=\n]+)?[ \t]*=[ \t]*(?:async[ \t]*)?(?:\([^()]*(?:\([^()]*\)[^()]*)*\)(?:[ \t]*:[^=\n]+)?|[\w$]+)\s*=>`)

	// Java-style signature followed by an opening brace.
	reJavaMethod = regexp.MustCompile(`(?m)^[ \t]*(?:(?:public|private|protected)[ \t]+)?(?:static[ \t]+)?([\w<>\[\]]+)[ \t]+([\w$]+)[ \t]*\([^)]*\)\s*\{`)

	// Kotlin fun declarations.
	reKotlinFun = regexp.MustCompile(`(?m)^[ \t]*(?:(?:public|private|protected|internal|override|open|suspend|inline|abstract)[ \t]+)*fun[ \t]+(?:<[^>\n]*>[ \t]*)?[\w$.]+[ \t]*\(`)
)

// notMethodNames are identifiers the Java pattern picks up from control flow
// and expressions rather than declarations.
var notMethodNames = map[string]bool{
	"if":           true,
	"for":          true,
	"while":        true,
	"switch":       true,
	"catch":        true,
	"synchronized": true,
}

// notReturnTypes are leading words that cannot start a method declaration.
var notReturnTypes = map[string]bool{
	"new":    true,
	"return": true,
	"else":   true,
	"throw":  true,
}

// FunctionDeclarations finds named function declarations.
func FunctionDeclarations(content string) []Match {
	return findStarts(content, reFunctionDecl, KindFunction)
}

// ArrowAssignments finds arrow functions assigned to a name.
func ArrowAssignments(content string) []Match {
	return findStarts(content, reArrowAssign, KindArrow)
}

// MethodDeclarations finds Java and Kotlin method declarations.
func MethodDeclarations(content string) []Match {
	idx := newLineIndex(content)
	var matches []Match
	for _, loc := range reJavaMethod.FindAllStringSubmatchIndex(content, -1) {
		returnType := content[loc[2]:loc[3]]
		name := content[loc[4]:loc[5]]
		if notReturnTypes[returnType] || notMethodNames[name] {
			continue
		}
		matches = append(matches, Match{Kind: KindMethod, Line: idx.lineOf(loc[0])})
	}
	for _, loc := range reKotlinFun.FindAllStringIndex(content, -1) {
		matches = append(matches, Match{Kind: KindMethod, Line: idx.lineOf(loc[0])})
	}
	return matches
}

func findStarts(content string, re *regexp.Regexp, kind MatchKind) []Match {
	idx := newLineIndex(content)
	var matches []Match
	for _, loc := range re.FindAllStringIndex(content, -1) {
		matches = append(matches, Match{Kind: kind, Line: idx.lineOf(loc[0])})
	}
	return matches
}

// Spans turns function starts into spans. Starts are sorted and collapsed by
// line; each span ends on the line before the next start, and the last span
// ends at lastLine. The result partitions [first start, lastLine].
func Spans(starts []Match, lastLine int) []Span {
	lines := make([]int, 0, len(starts))
	for _, m := range starts {
		if m.Line >= 1 && m.Line <= lastLine {
			lines = append(lines, m.Line)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	sort.Ints(lines)

	uniq := lines[:1]
	for _, l := range lines[1:] {
		if l != uniq[len(uniq)-1] {
			uniq = append(uniq, l)
		}
	}

	spans := make([]Span, len(uniq))
	for i, start := range uniq {
		end := lastLine
		if i+1 < len(uniq) {
			end = uniq[i+1] - 1
		}
		spans[i] = Span{Start: start, End: end}
	}
	return spans
}
