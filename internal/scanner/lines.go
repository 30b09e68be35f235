package scanner

import "strings"

// CountLines returns the number of lines with at least one non-whitespace
// character.
func CountLines(content string) int {
	count := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
