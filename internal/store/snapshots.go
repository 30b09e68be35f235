package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/reposcan/internal/report"
)

// Metric names recorded for every snapshot.
const (
	MetricTotalLines      = "total_lines"
	MetricFiles           = "file_count"
	MetricScriptFiles     = "script_file_count"
	MetricDebtMarkers     = "debt_markers"
	MetricImportEdges     = "import_edges"
	MetricLongFunctions   = "long_functions"
	MetricComplexFiles    = "complex_files"
	MetricOversizedFiles  = "oversized_files"
	groupMetricNamePrefix = "group:"
)

// GroupMetric returns the metric name holding a group's line total.
func GroupMetric(group string) string {
	return groupMetricNamePrefix + group
}

// MetricsFromReport flattens a report into named counts.
func MetricsFromReport(r *report.Report) map[string]int {
	oversized := 0
	for _, f := range r.TopLargestFiles {
		if f.Lines >= r.Budgets.MaxFileLines {
			oversized++
		}
	}

	m := map[string]int{
		MetricTotalLines:     r.TotalLines(),
		MetricFiles:          r.FileCount,
		MetricScriptFiles:    r.ScriptFileCount,
		MetricDebtMarkers:    r.DebtMarkerCount,
		MetricImportEdges:    r.ImportEdgeCount,
		MetricLongFunctions:  len(r.TopLongestFunctions),
		MetricComplexFiles:   len(r.TopMostComplexFiles),
		MetricOversizedFiles: oversized,
	}
	for g, n := range r.TotalsByGroup {
		if g == report.AllGroupsKey {
			continue
		}
		m[GroupMetric(g)] = n
	}
	return m
}

// SaveReport records r as a new snapshot of root in a single transaction.
func (db *DB) SaveReport(root, version string, r *report.Report, failed bool) (*Snapshot, error) {
	s := &Snapshot{
		ScanID:  uuid.NewString(),
		Root:    root,
		TakenAt: time.Now().UTC().Truncate(time.Second),
		Version: version,
		Failed:  failed,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(
		"INSERT INTO snapshots (scan_id, root, taken_at, version, failed) VALUES (?, ?, ?, ?, ?)",
		s.ScanID, s.Root, s.TakenAt.Format(time.RFC3339), s.Version, s.Failed,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting snapshot: %w", err)
	}
	if s.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}

	for name, value := range MetricsFromReport(r) {
		if _, err := tx.Exec(
			"INSERT INTO metrics (snapshot_id, name, value) VALUES (?, ?, ?)",
			s.ID, name, value,
		); err != nil {
			return nil, fmt.Errorf("inserting metric %s: %w", name, err)
		}
	}

	for _, h := range hotspotsFromReport(r) {
		if _, err := tx.Exec(
			"INSERT INTO hotspots (snapshot_id, kind, rank, path, line, value) VALUES (?, ?, ?, ?, ?, ?)",
			s.ID, h.Kind, h.Rank, h.Path, h.Line, h.Value,
		); err != nil {
			return nil, fmt.Errorf("inserting hotspot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s, nil
}

func hotspotsFromReport(r *report.Report) []Hotspot {
	var hs []Hotspot
	for i, f := range r.TopLargestFiles {
		hs = append(hs, Hotspot{Kind: HotspotFile, Rank: i + 1, Path: f.Path, Value: f.Lines})
	}
	for i, fn := range r.TopLongestFunctions {
		hs = append(hs, Hotspot{Kind: HotspotFunction, Rank: i + 1, Path: fn.Path, Line: fn.Start, Value: fn.Lines})
	}
	for i, c := range r.TopMostComplexFiles {
		hs = append(hs, Hotspot{Kind: HotspotComplexity, Rank: i + 1, Path: c.Path, Value: c.Complexity})
	}
	return hs
}

const snapshotColumns = "id, scan_id, root, taken_at, version, failed"

// GetSnapshot returns a snapshot by ID, or nil if it does not exist.
func (db *DB) GetSnapshot(id int64) (*Snapshot, error) {
	row := db.conn.QueryRow("SELECT "+snapshotColumns+" FROM snapshots WHERE id = ?", id)
	return scanSnapshot(row)
}

// GetSnapshotN returns the Nth most recent snapshot of root (1 = latest,
// 2 = previous, etc.), or nil if there are fewer than n.
func (db *DB) GetSnapshotN(root string, n int) (*Snapshot, error) {
	if n < 1 {
		return nil, fmt.Errorf("snapshot offset must be at least 1, got %d", n)
	}
	row := db.conn.QueryRow(
		"SELECT "+snapshotColumns+" FROM snapshots WHERE root = ? ORDER BY id DESC LIMIT 1 OFFSET ?",
		root, n-1,
	)
	return scanSnapshot(row)
}

// GetRecentSnapshots returns up to n snapshots of root, newest first.
func (db *DB) GetRecentSnapshots(root string, n int) ([]Snapshot, error) {
	rows, err := db.conn.Query(
		"SELECT "+snapshotColumns+" FROM snapshots WHERE root = ? ORDER BY id DESC LIMIT ?",
		root, n,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var snapshots []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *s)
	}
	return snapshots, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var s Snapshot
	var takenAt string
	err := row.Scan(&s.ID, &s.ScanID, &s.Root, &takenAt, &s.Version, &s.Failed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
	return &s, nil
}

// GetMetrics returns a snapshot's metrics keyed by name.
func (db *DB) GetMetrics(snapshotID int64) (map[string]int, error) {
	rows, err := db.conn.Query("SELECT name, value FROM metrics WHERE snapshot_id = ?", snapshotID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	metrics := make(map[string]int)
	for rows.Next() {
		var name string
		var value int
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		metrics[name] = value
	}
	return metrics, rows.Err()
}

// GetHotspots returns a snapshot's ranked entries of the given kind.
func (db *DB) GetHotspots(snapshotID int64, kind string) ([]Hotspot, error) {
	rows, err := db.conn.Query(
		`SELECT snapshot_id, kind, rank, path, line, value
		 FROM hotspots WHERE snapshot_id = ? AND kind = ? ORDER BY rank`,
		snapshotID, kind,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var hs []Hotspot
	for rows.Next() {
		var h Hotspot
		if err := rows.Scan(&h.SnapshotID, &h.Kind, &h.Rank, &h.Path, &h.Line, &h.Value); err != nil {
			return nil, err
		}
		hs = append(hs, h)
	}
	return hs, rows.Err()
}

// PruneSnapshots deletes all but the newest keep snapshots of root and
// returns how many were removed.
func (db *DB) PruneSnapshots(root string, keep int) (int64, error) {
	res, err := db.conn.Exec(
		`DELETE FROM snapshots WHERE root = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE root = ? ORDER BY id DESC LIMIT ?
		)`,
		root, root, keep,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
