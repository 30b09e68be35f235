package heuristics

import "regexp"

// reBranch matches the branch tokens counted by Complexity. Optional chaining
// (?.) and nullish coalescing (??) are matched so they can be skipped rather
// than counted as a ternary.
var reBranch = regexp.MustCompile(`\b(?:if|for|while|case|catch)\b|&&|\|\||\?[.?]?`)

// Complexity returns a McCabe-style estimate for content: one plus the number
// of if, for, while, case, catch, ternary, && and || tokens in the file.
func Complexity(content string) int {
	count := 1
	for _, tok := range reBranch.FindAllString(content, -1) {
		if tok == "?." || tok == "??" {
			continue
		}
		count++
	}
	return count
}
