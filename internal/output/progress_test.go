package output

import (
	"strings"
	"testing"
)

func TestBudgetBar(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tests := []struct {
		name   string
		value  int
		budget int
		filled int
	}{
		{"half", 300, 600, 5},
		{"at budget", 600, 600, 10},
		{"over budget clamps", 1200, 600, 10},
		{"empty", 0, 600, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bar := BudgetBar(tc.value, tc.budget, 10)
			if got := strings.Count(bar, "█"); got != tc.filled {
				t.Errorf("filled = %d, want %d (%q)", got, tc.filled, bar)
			}
			if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != 10 {
				t.Errorf("bar width = %d, want 10", got)
			}
		})
	}
}

func TestTrendArrow(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	if got := TrendArrow(0, false); got != "─" {
		t.Errorf("TrendArrow(0) = %q", got)
	}
	if got := TrendArrow(3, false); got != "▲ +3" {
		t.Errorf("TrendArrow(3) = %q", got)
	}
	if got := TrendArrow(-2, false); got != "▼ -2" {
		t.Errorf("TrendArrow(-2) = %q", got)
	}
}

func TestBudgetStyle(t *testing.T) {
	// Compare rendered output against each style so the check holds with
	// or without color.
	tests := []struct {
		value, budget int
		want          string
	}{
		{10, 100, StyleSuccess.Render("x")},
		{80, 100, StyleWarning.Render("x")},
		{100, 100, StyleError.Render("x")},
	}
	for _, tc := range tests {
		if got := BudgetStyle(tc.value, tc.budget).Render("x"); got != tc.want {
			t.Errorf("BudgetStyle(%d, %d) rendered %q, want %q", tc.value, tc.budget, got, tc.want)
		}
	}
}
