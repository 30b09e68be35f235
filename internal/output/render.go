package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/blackwell-systems/reposcan/internal/report"
)

// moduleRows is the number of module totals shown in the summary.
const moduleRows = 15

// RenderReport writes the human-readable narrative for r to w.
func RenderReport(w io.Writer, r *report.Report, verdict report.Verdict) {
	fmt.Fprintln(w, StyleHeader.Render(" Repo Health ")+StyleMuted.Render(r.Root))
	fmt.Fprintln(w)
	fmt.Fprintf(w, " %s %s\n", StyleLabel.Render("Total lines"), StyleValue.Render(strconv.Itoa(r.TotalLines())))
	fmt.Fprintf(w, " %s %s\n", StyleLabel.Render("Files"), StyleValue.Render(strconv.Itoa(r.FileCount)))
	fmt.Fprintf(w, " %s %s\n", StyleLabel.Render("Script files"), StyleValue.Render(strconv.Itoa(r.ScriptFileCount)))

	fmt.Fprintln(w, Section("By Group"))
	groups := NewTable("Group", "Lines").AlignRight(1)
	for _, g := range sortedGroups(r.TotalsByGroup) {
		groups.AddRow(g, strconv.Itoa(r.TotalsByGroup[g]))
	}
	_ = groups.Fprint(w)

	fmt.Fprintln(w, Section(fmt.Sprintf("By Module (top %d)", moduleRows)))
	modules := NewTable("Module", "Lines").AlignRight(1)
	for i, m := range r.TotalsByModule {
		if i == moduleRows {
			break
		}
		modules.AddRow(m.Module, strconv.Itoa(m.Lines))
	}
	_ = modules.Fprint(w)

	fmt.Fprintln(w, Section(fmt.Sprintf("Top %d largest files", report.TopN)))
	files := NewTable("Lines", "Budget", "Path").AlignRight(0)
	for _, f := range r.TopLargestFiles {
		files.AddRow(strconv.Itoa(f.Lines), BudgetBar(f.Lines, r.Budgets.MaxFileLines, 10), f.Path)
	}
	_ = files.Fprint(w)

	fmt.Fprintln(w, Section(fmt.Sprintf("Top %d longest functions", report.TopN)))
	if len(r.TopLongestFunctions) == 0 {
		fmt.Fprintln(w, StyleMuted.Render(fmt.Sprintf(" none at or above %d lines", r.Budgets.MaxFunctionLines)))
	} else {
		fns := NewTable("Lines", "Span", "Path").AlignRight(0)
		for _, fn := range r.TopLongestFunctions {
			fns.AddRow(BudgetStyle(fn.Lines, r.Budgets.MaxFunctionLines).Render(strconv.Itoa(fn.Lines)),
				fmt.Sprintf("L%d-%d", fn.Start, fn.End), fn.Path)
		}
		_ = fns.Fprint(w)
	}

	fmt.Fprintln(w, Section(fmt.Sprintf("Top %d most complex files", report.TopN)))
	if len(r.TopMostComplexFiles) == 0 {
		fmt.Fprintln(w, StyleMuted.Render(fmt.Sprintf(" none at or above %d", r.Budgets.ComplexityWarn)))
	} else {
		cx := NewTable("Complexity", "Path").AlignRight(0)
		for _, c := range r.TopMostComplexFiles {
			cx.AddRow(BudgetStyle(c.Complexity, r.Budgets.ComplexityWarn).Render(strconv.Itoa(c.Complexity)), c.Path)
		}
		_ = cx.Fprint(w)
	}

	fmt.Fprintln(w, Section(fmt.Sprintf("Debt markers: %d (showing up to %d)", r.DebtMarkerCount, report.SampleN)))
	for _, d := range r.DebtSamples {
		fmt.Fprintf(w, "  %s %s  %s %s\n",
			StyleMuted.Render(fmt.Sprintf("L%-5d", d.Line)), d.Path, StyleMuted.Render("::"), d.Text)
	}

	fmt.Fprintln(w, Section(fmt.Sprintf("Local import edges: %d", r.ImportEdgeCount)))
	fmt.Fprintln(w, StyleBold.Render(" Likely tangle sources (high out-degree)"))
	for _, d := range r.TangleSources {
		fmt.Fprintf(w, "  out=%3d  %s\n", d.Count, d.Node)
	}
	fmt.Fprintln(w, StyleBold.Render(" Likely tangle sinks (high in-degree)"))
	for _, d := range r.TangleSinks {
		fmt.Fprintf(w, "  in =%3d  %s\n", d.Count, d.Node)
	}

	fmt.Fprintln(w, Section("Budgets"))
	renderBudget(w, "Max file size", fmt.Sprintf("%d lines", r.Budgets.MaxFileLines), verdict.FileSize)
	renderBudget(w, "Max function length", fmt.Sprintf("%d lines", r.Budgets.MaxFunctionLines), verdict.FunctionSize)
	renderBudget(w, "Complexity warn", strconv.Itoa(r.Budgets.ComplexityWarn), verdict.Complexity)
	fmt.Fprintln(w)
}

func renderBudget(w io.Writer, label, limit string, violated bool) {
	status := StyleSuccess.Render("ok")
	if violated {
		status = StyleError.Render("exceeded")
	}
	fmt.Fprintf(w, " %s %s %s\n", StyleLabel.Render(label), StyleValue.Render(limit), status)
}

// BudgetStyle picks a style by how close value is to budget.
func BudgetStyle(value, budget int) lipgloss.Style {
	switch {
	case budget > 0 && value >= budget:
		return StyleError
	case budget > 0 && value*4 >= budget*3:
		return StyleWarning
	default:
		return StyleSuccess
	}
}

// sortedGroups returns the group keys in name order, without the synthetic
// all-groups key.
func sortedGroups(totals map[string]int) []string {
	keys := make([]string, 0, len(totals))
	for k := range totals {
		if k == report.AllGroupsKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
