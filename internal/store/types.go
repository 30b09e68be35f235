// Package store provides SQLite persistence for reposcan snapshots.
package store

import "time"

// Snapshot is one recorded scan of a root directory.
type Snapshot struct {
	ID      int64     `json:"id"`
	ScanID  string    `json:"scan_id"`
	Root    string    `json:"root"`
	TakenAt time.Time `json:"taken_at"`
	Version string    `json:"version"`
	Failed  bool      `json:"failed"`
}

// Metric is a named count recorded with a snapshot.
type Metric struct {
	SnapshotID int64  `json:"snapshot_id"`
	Name       string `json:"name"`
	Value      int    `json:"value"`
}

// Hotspot kinds.
const (
	HotspotFile       = "file"
	HotspotFunction   = "function"
	HotspotComplexity = "complexity"
)

// Hotspot is a ranked entry from a snapshot's top lists.
type Hotspot struct {
	SnapshotID int64  `json:"snapshot_id"`
	Kind       string `json:"kind"`
	Rank       int    `json:"rank"`
	Path       string `json:"path"`
	Line       int    `json:"line,omitempty"`
	Value      int    `json:"value"`
}

// SnapshotDiff represents the comparison between two snapshots.
type SnapshotDiff struct {
	Previous *Snapshot     `json:"previous"`
	Current  *Snapshot     `json:"current"`
	Deltas   []MetricDelta `json:"deltas"`
}

// MetricDelta represents the change in a single metric between snapshots.
type MetricDelta struct {
	Name      string `json:"name"`
	Previous  int    `json:"previous"`
	Current   int    `json:"current"`
	Delta     int    `json:"delta"`
	Direction string `json:"direction"` // "improved", "regressed", "unchanged"
}
