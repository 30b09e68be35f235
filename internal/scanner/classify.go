package scanner

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/blackwell-systems/reposcan/internal/heuristics"
)

// extGroups maps a lowercased extension to its group.
var extGroups = map[string]Group{
	".ts":     GroupScript,
	".tsx":    GroupScript,
	".js":     GroupScript,
	".jsx":    GroupScript,
	".mjs":    GroupScript,
	".cjs":    GroupScript,
	".java":   GroupScript,
	".kt":     GroupScript,
	".xml":    GroupMarkupConfig,
	".json":   GroupMarkupConfig,
	".yml":    GroupMarkupConfig,
	".yaml":   GroupMarkupConfig,
	".md":     GroupDocs,
	".css":    GroupStyle,
	".scss":   GroupStyle,
	".html":   GroupWeb,
	".gradle": GroupBuild,
}

// extFamilies maps script extensions to the heuristics family they use.
var extFamilies = map[string]heuristics.Family{
	".ts":   heuristics.FamilyClosure,
	".tsx":  heuristics.FamilyClosure,
	".js":   heuristics.FamilyClosure,
	".jsx":  heuristics.FamilyClosure,
	".mjs":  heuristics.FamilyClosure,
	".cjs":  heuristics.FamilyClosure,
	".java": heuristics.FamilyBraceMethod,
	".kt":   heuristics.FamilyBraceMethod,
}

// countedGroups are the non-code groups that still participate in totals.
var countedGroups = map[Group]bool{
	GroupDocs:         true,
	GroupMarkupConfig: true,
	GroupBuild:        true,
	GroupWeb:          true,
	GroupStyle:        true,
}

// IgnoredDirs are directory names whose contents are never visited.
var IgnoredDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"build":        true,
	"dist":         true,
	"out":          true,
	".next":        true,
	".expo":        true,
	".idea":        true,
	".vscode":      true,
	".gradle":      true,
	".cache":       true,
	"__pycache__":  true,
	"dev-dist":     true,
	"coverage":     true,
	"vendor":       true,
}

// ReportFileName is the file the scan report is persisted to.
const ReportFileName = "repo_scan.json"

// deniedFiles are generated files skipped regardless of content.
var deniedFiles = map[string]bool{
	"package-lock.json": true,
	"pnpm-lock.yaml":    true,
	"yarn.lock":         true,
	ReportFileName:      true,
}

// ext returns the lowercased extension of path.
func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Classify returns the group for path based only on its extension.
func Classify(path string) Group {
	if g, ok := extGroups[ext(path)]; ok {
		return g
	}
	return GroupOther
}

// FamilyOf returns the heuristics family for path.
func FamilyOf(path string) heuristics.Family {
	if f, ok := extFamilies[ext(path)]; ok {
		return f
	}
	return heuristics.FamilyNone
}

// isCodeExt reports whether e is a recognized code extension. Every known
// extension except markdown counts as code.
func isCodeExt(e string) bool {
	_, ok := extGroups[e]
	return ok && e != ".md"
}

// Included reports whether path participates in line-count totals.
func Included(path string) bool {
	if isCodeExt(ext(path)) {
		return true
	}
	return countedGroups[Classify(path)]
}

// Denied reports whether path names a known generated file.
func Denied(path string) bool {
	return deniedFiles[filepath.Base(path)]
}

// GroupExtensions describes the extension table for display.
type GroupExtensions struct {
	Group      Group
	Extensions []string
}

// ExtensionTable returns the extension table grouped and sorted by group name.
func ExtensionTable() []GroupExtensions {
	byGroup := make(map[Group][]string)
	for e, g := range extGroups {
		byGroup[g] = append(byGroup[g], e)
	}

	result := make([]GroupExtensions, 0, len(byGroup))
	for g, exts := range byGroup {
		sort.Strings(exts)
		result = append(result, GroupExtensions{Group: g, Extensions: exts})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Group < result[j].Group
	})
	return result
}
