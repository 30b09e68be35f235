package output

import (
	"fmt"
	"strings"
)

// BudgetBar renders how much of a budget a value consumes.
// Example: "██████░░░░ 412/600"
func BudgetBar(value, budget, width int) string {
	if width <= 0 {
		width = 20
	}
	if budget <= 0 {
		budget = 1
	}
	filled := value * width / budget
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	label := StyleMuted.Render(fmt.Sprintf("%d/%d", value, budget))
	return fmt.Sprintf("%s %s", BudgetStyle(value, budget).Render(bar), label)
}

// TrendArrow returns a styled trend indicator for a delta value.
// Positive delta shows an up arrow, negative shows down, zero shows a dash.
// The higherIsBetter parameter indicates whether growth is an improvement.
func TrendArrow(delta int, higherIsBetter bool) string {
	if delta == 0 {
		return StyleMuted.Render("─")
	}

	isPositive := delta > 0
	isImproved := isPositive == higherIsBetter

	var arrow string
	if isPositive {
		arrow = fmt.Sprintf("▲ +%d", delta)
	} else {
		arrow = fmt.Sprintf("▼ %d", delta)
	}

	if isImproved {
		return StyleSuccess.Render(arrow)
	}
	return StyleError.Render(arrow)
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
