package heuristics

import (
	"regexp"
	"strings"
)

var (
	// import x from "target", import { a, b } from "target", import "target".
	reESImport = regexp.MustCompile(`(?m)^[ \t]*import\s+(?:[^'";]+?\s+from\s+)?['"]([^'"\n]+)['"]`)

	// require("target") anywhere on a line.
	reRequire = regexp.MustCompile(`require\(\s*['"]([^'"\n]+)['"]\s*\)`)
)

// ESImports returns the targets of ES module import statements.
func ESImports(content string) []string {
	return submatches(content, reESImport)
}

// Requires returns the targets of require calls.
func Requires(content string) []string {
	return submatches(content, reRequire)
}

// LocalImports keeps the targets that start with a relative path marker.
// Duplicates are preserved.
func LocalImports(targets []string) []string {
	var local []string
	for _, t := range targets {
		if strings.HasPrefix(t, ".") {
			local = append(local, t)
		}
	}
	return local
}

func submatches(content string, re *regexp.Regexp) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		out = append(out, m[1])
	}
	return out
}
