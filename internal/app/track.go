package app

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/reposcan/internal/config"
	"github.com/blackwell-systems/reposcan/internal/output"
	"github.com/blackwell-systems/reposcan/internal/report"
	"github.com/blackwell-systems/reposcan/internal/store"
)

var (
	trackCompare int
	trackHistory int
	trackKeep    int
	trackDB      string
)

var trackCmd = &cobra.Command{
	Use:   "track [root]",
	Short: "Snapshot and compare scans over time",
	Long: `Scan the tree, store a snapshot in the history database, and compare it
against a previous snapshot of the same root with trend arrows.

Examples:
  reposcan track                 # compare against the previous snapshot
  reposcan track --compare 5     # compare against the 5th previous snapshot
  reposcan track --history 10    # show metric trends across 10 snapshots
  reposcan track --keep 50       # keep only the 50 newest snapshots`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().IntVar(&trackCompare, "compare", 1, "Compare against Nth previous snapshot (1 = most recent)")
	trackCmd.Flags().IntVar(&trackHistory, "history", 0, "Show metric trends across N most recent snapshots")
	trackCmd.Flags().IntVar(&trackKeep, "keep", 0, "Delete all but the N newest snapshots of this root (0 keeps everything)")
	trackCmd.Flags().StringVar(&trackDB, "db", "", "History database path (default: ~/.config/reposcan/reposcan.db)")
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	if trackCompare < 1 {
		return fmt.Errorf("--compare must be at least 1, got %d", trackCompare)
	}

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
	verdict := report.Evaluate(r, exclusionsFrom(cfg))

	dbPath := trackDB
	if dbPath == "" {
		dbPath = config.DBPath()
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	current, err := db.SaveReport(root, appVersion, r, verdict.Failed())
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	logger.Debug("snapshot saved", "id", current.ID, "scan_id", current.ScanID)

	if trackKeep > 0 {
		removed, err := db.PruneSnapshots(root, trackKeep)
		if err != nil {
			return fmt.Errorf("pruning snapshots: %w", err)
		}
		logger.Debug("snapshots pruned", "removed", removed)
	}

	out := cmd.OutOrStdout()

	// Handle --history mode: show trends across N snapshots.
	if trackHistory > 0 {
		if flagJSON {
			return outputHistoryJSON(out, db, root, trackHistory)
		}
		return renderHistory(out, db, root, trackHistory)
	}

	// trackCompare=1 means compare against the immediate predecessor (offset 2 from newest).
	prev, err := db.GetSnapshotN(root, trackCompare+1)
	if err != nil {
		return fmt.Errorf("loading previous snapshot: %w", err)
	}

	var diff *store.SnapshotDiff
	if prev != nil {
		prevMetrics, err := db.GetMetrics(prev.ID)
		if err != nil {
			return fmt.Errorf("loading previous metrics: %w", err)
		}
		currMetrics, err := db.GetMetrics(current.ID)
		if err != nil {
			return fmt.Errorf("loading current metrics: %w", err)
		}
		diff = &store.SnapshotDiff{
			Previous: prev,
			Current:  current,
			Deltas:   store.ComputeDeltas(prevMetrics, currMetrics),
		}
	}

	if flagJSON {
		return outputTrackJSON(out, current, diff)
	}
	renderTrackOutput(out, current, diff)
	return nil
}

func outputTrackJSON(w io.Writer, current *store.Snapshot, diff *store.SnapshotDiff) error {
	result := map[string]any{
		"snapshot": current,
	}
	if diff != nil {
		result["diff"] = diff
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func renderTrackOutput(w io.Writer, current *store.Snapshot, diff *store.SnapshotDiff) {
	fmt.Fprintln(w, output.Section("Track: Snapshot Comparison"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, " Snapshot #%d of %s taken at %s\n\n", current.ID, current.Root, current.TakenAt.Format("2006-01-02 15:04:05"))

	if diff == nil {
		fmt.Fprintln(w, " First snapshot recorded. Run 'reposcan track' again later to see trends.")
		return
	}

	fmt.Fprintf(w, " Comparing against snapshot #%d (%s)\n\n",
		diff.Previous.ID, diff.Previous.TakenAt.Format("2006-01-02 15:04:05"))

	tbl := output.NewTable("Metric", "Previous", "Current", "Delta", "Trend").AlignRight(1, 2, 3)
	for _, d := range diff.Deltas {
		tbl.AddRow(
			metricShortName(d.Name),
			strconv.Itoa(d.Previous),
			strconv.Itoa(d.Current),
			fmt.Sprintf("%+d", d.Delta),
			trendFor(d.Name, d.Delta),
		)
	}
	_ = tbl.Fprint(w)
}

// trendFor renders a delta arrow. Neutral metrics are never shown as
// improvements or regressions.
func trendFor(name string, delta int) string {
	if !store.HigherIsWorse(name) {
		if delta == 0 {
			return output.StyleMuted.Render("─")
		}
		return output.StyleMuted.Render(fmt.Sprintf("%+d", delta))
	}
	return output.TrendArrow(delta, false)
}

// metricDisplayOrder defines the order metrics appear in history output.
var metricDisplayOrder = []string{
	store.MetricTotalLines,
	store.MetricFiles,
	store.MetricScriptFiles,
	store.MetricOversizedFiles,
	store.MetricLongFunctions,
	store.MetricComplexFiles,
	store.MetricDebtMarkers,
	store.MetricImportEdges,
}

// metricShortName returns a compact label for display.
func metricShortName(name string) string {
	short := map[string]string{
		store.MetricTotalLines:     "Lines",
		store.MetricFiles:          "Files",
		store.MetricScriptFiles:    "Script Files",
		store.MetricOversizedFiles: "Oversized Files",
		store.MetricLongFunctions:  "Long Functions",
		store.MetricComplexFiles:   "Complex Files",
		store.MetricDebtMarkers:    "Debt Markers",
		store.MetricImportEdges:    "Import Edges",
	}
	if s, ok := short[name]; ok {
		return s
	}
	if g, ok := strings.CutPrefix(name, store.GroupMetric("")); ok {
		return "Lines (" + g + ")"
	}
	return name
}

type snapshotMetrics struct {
	Snapshot store.Snapshot `json:"snapshot"`
	Metrics  map[string]int `json:"metrics"`
}

// loadTimeline returns up to n snapshots of root, oldest first, with their metrics.
func loadTimeline(db *store.DB, root string, n int) ([]snapshotMetrics, error) {
	snapshots, err := db.GetRecentSnapshots(root, n)
	if err != nil {
		return nil, fmt.Errorf("loading snapshots: %w", err)
	}
	slices.Reverse(snapshots)

	timeline := make([]snapshotMetrics, 0, len(snapshots))
	for _, s := range snapshots {
		m, err := db.GetMetrics(s.ID)
		if err != nil {
			return nil, fmt.Errorf("loading metrics for snapshot #%d: %w", s.ID, err)
		}
		timeline = append(timeline, snapshotMetrics{Snapshot: s, Metrics: m})
	}
	return timeline, nil
}

// renderHistory shows a multi-snapshot timeline table.
func renderHistory(w io.Writer, db *store.DB, root string, n int) error {
	timeline, err := loadTimeline(db, root, n)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, output.Section("Track: Metric History"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, " Showing %d most recent snapshots of %s\n\n", len(timeline), root)

	headers := []string{"Metric"}
	for _, sm := range timeline {
		headers = append(headers, fmt.Sprintf("#%d %s", sm.Snapshot.ID, sm.Snapshot.TakenAt.Format("Jan 02")))
	}
	headers = append(headers, "Trend")
	tbl := output.NewTable(headers...)

	for _, name := range metricDisplayOrder {
		row := []string{metricShortName(name)}
		for _, sm := range timeline {
			row = append(row, strconv.Itoa(sm.Metrics[name]))
		}

		// Compute trend from first to last.
		trend := ""
		if len(timeline) >= 2 {
			delta := timeline[len(timeline)-1].Metrics[name] - timeline[0].Metrics[name]
			trend = trendFor(name, delta)
		}
		row = append(row, trend)
		tbl.AddRow(row...)
	}

	return tbl.Fprint(w)
}

// outputHistoryJSON writes the history data as JSON.
func outputHistoryJSON(w io.Writer, db *store.DB, root string, n int) error {
	timeline, err := loadTimeline(db, root, n)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"history": timeline})
}
