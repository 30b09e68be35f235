package heuristics

import "regexp"

var reDebt = regexp.MustCompile(`\b(TODO|FIXME|HACK)\b`)

// Marker is one debt keyword occurrence.
type Marker struct {
	Keyword string `json:"keyword"`
	Line    int    `json:"line"`
	Text    string `json:"text"`
}

// DebtMarkers returns every TODO, FIXME, and HACK occurrence in content. A
// line with two keywords yields two markers.
func DebtMarkers(content string) []Marker {
	return debtMarkers(content, newLineIndex(content))
}

func debtMarkers(content string, idx lineIndex) []Marker {
	var markers []Marker
	for _, loc := range reDebt.FindAllStringIndex(content, -1) {
		line := idx.lineOf(loc[0])
		markers = append(markers, Marker{
			Keyword: content[loc[0]:loc[1]],
			Line:    line,
			Text:    idx.lineText(content, line),
		})
	}
	return markers
}
