package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/reposcan/internal/config"
	"github.com/blackwell-systems/reposcan/internal/output"
	"github.com/blackwell-systems/reposcan/internal/report"
	"github.com/blackwell-systems/reposcan/internal/store"
	"github.com/blackwell-systems/reposcan/internal/suggest"
)

var (
	suggestLimit    int
	suggestCategory string
	suggestTrend    bool
	suggestDB       string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [root]",
	Short: "Generate ranked refactoring recommendations",
	Long: `Scan the tree and turn oversized files, long functions, complex files,
debt clusters and import hubs into actionable recommendations. Suggestions
are scored by how far they exceed their budget and sorted from highest to
lowest impact.

With --trend the scan is also compared against the latest snapshot in the
history database, and metrics that regressed are reported.

Examples:
  reposcan suggest                       # top 10 suggestions for .
  reposcan suggest --category complexity # only complexity suggestions
  reposcan suggest --trend               # include regressions since last track`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 10, "Maximum number of suggestions to show (0 shows all)")
	suggestCmd.Flags().StringVar(&suggestCategory, "category", "", "Filter by category (size, complexity, debt, coupling, trend)")
	suggestCmd.Flags().BoolVar(&suggestTrend, "trend", false, "Compare against the latest tracked snapshot")
	suggestCmd.Flags().StringVar(&suggestDB, "db", "", "History database path used by --trend (default: ~/.config/reposcan/reposcan.db)")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	s, err := newScanner(cfg, logger, nil)
	if err != nil {
		return err
	}

	ctx, cancel, err := scanContext(cmd.Context())
	if err != nil {
		return err
	}
	defer cancel()

	r, err := scanReport(ctx, s, root, budgetsFrom(cfg))
	if err != nil {
		return err
	}

	analysis := &suggest.AnalysisContext{
		Report:     r,
		Exclusions: exclusionsFrom(cfg),
	}
	if suggestTrend {
		deltas, err := latestDeltas(root, r)
		if err != nil {
			return err
		}
		analysis.Deltas = deltas
	}

	suggestions := suggest.NewEngine().Run(analysis)

	if suggestCategory != "" {
		suggestions = suggest.FilterByCategory(suggestions, suggestCategory)
	}
	if suggestLimit > 0 && len(suggestions) > suggestLimit {
		suggestions = suggestions[:suggestLimit]
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return outputSuggestJSON(out, suggestions)
	}
	renderSuggestions(out, suggestions)
	return nil
}

// latestDeltas compares r against the newest stored snapshot of root. A
// missing database or an empty history yields no deltas.
func latestDeltas(root string, r *report.Report) ([]store.MetricDelta, error) {
	dbPath := suggestDB
	if dbPath == "" {
		dbPath = config.DBPath()
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, nil
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	latest, err := db.GetSnapshotN(root, 1)
	if err != nil {
		return nil, fmt.Errorf("loading latest snapshot: %w", err)
	}
	if latest == nil {
		return nil, nil
	}
	prev, err := db.GetMetrics(latest.ID)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot metrics: %w", err)
	}
	return store.ComputeDeltas(prev, store.MetricsFromReport(r)), nil
}

func outputSuggestJSON(w io.Writer, suggestions []suggest.Suggestion) error {
	if suggestions == nil {
		suggestions = []suggest.Suggestion{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(suggestions)
}

func renderSuggestions(w io.Writer, suggestions []suggest.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Fprintln(w, output.Section("Suggestions"))
		fmt.Fprintln(w)
		fmt.Fprintln(w, " No suggestions. Everything is within budget.")
		return
	}

	fmt.Fprintln(w, output.Section("Refactoring Suggestions"))
	fmt.Fprintln(w)

	for i, s := range suggestions {
		label := priorityToLabel(s.Priority)
		fmt.Fprintf(w, " #%d %s %s\n", i+1, stylePriority(s.Priority, label), output.StyleBold.Render(s.Title))
		fmt.Fprintf(w, "    Impact: %.1f  |  Category: %s\n", s.ImpactScore, s.Category)
		fmt.Fprintf(w, "    %s\n", s.Description)
		fmt.Fprintln(w)
	}
}

func priorityToLabel(priority int) string {
	switch priority {
	case suggest.PriorityCritical:
		return "[CRITICAL]"
	case suggest.PriorityHigh:
		return "[HIGH]"
	case suggest.PriorityMedium:
		return "[MEDIUM]"
	case suggest.PriorityLow:
		return "[LOW]"
	default:
		return "[UNKNOWN]"
	}
}

func stylePriority(priority int, label string) string {
	switch priority {
	case suggest.PriorityCritical, suggest.PriorityHigh:
		return output.StyleError.Render(label)
	case suggest.PriorityMedium:
		return output.StyleWarning.Render(label)
	default:
		return output.StyleMuted.Render(label)
	}
}
