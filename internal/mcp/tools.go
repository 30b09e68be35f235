package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/reposcan/internal/report"
	"github.com/blackwell-systems/reposcan/internal/scanner"
	"github.com/blackwell-systems/reposcan/internal/store"
	"github.com/blackwell-systems/reposcan/internal/suggest"
)

// FileScanner evaluates every included file under a root.
type FileScanner interface {
	Scan(ctx context.Context, root string) ([]scanner.FileResult, error)
}

// Options configures the tools a Server exposes.
type Options struct {
	// Root is the tree scanned when a call names no root. Relative roots
	// in calls resolve against it.
	Root string

	Scanner    FileScanner
	Budgets    report.Budgets
	Exclusions report.FailExclusions

	// DBPath is the history database read by get_history. Empty disables it.
	DBPath string

	Version string
	Logger  *slog.Logger
}

// SummaryResult is the headline view of one scan.
type SummaryResult struct {
	Root            string         `json:"root"`
	FileCount       int            `json:"file_count"`
	ScriptFileCount int            `json:"script_file_count"`
	TotalLines      int            `json:"total_lines"`
	TotalsByGroup   map[string]int `json:"totals_by_group"`
	DebtMarkerCount int            `json:"debt_marker_count"`
	ImportEdgeCount int            `json:"import_edge_count"`
	Verdict         report.Verdict `json:"verdict"`
	Violations      []string       `json:"violations"`
}

// HotspotsResult holds one ranked list from a scan.
type HotspotsResult struct {
	Kind      string                  `json:"kind"`
	Files     []report.FileSize       `json:"files,omitempty"`
	Functions []report.FunctionSpan   `json:"functions,omitempty"`
	Complex   []report.FileComplexity `json:"complex,omitempty"`
}

// ImportGraphResult summarizes the local import graph.
type ImportGraphResult struct {
	EdgeCount int                 `json:"edge_count"`
	Sources   []report.Degree     `json:"tangle_sources"`
	Sinks     []report.Degree     `json:"tangle_sinks"`
	Edges     []report.ImportEdge `json:"edges,omitempty"`
}

// HistoryResult lists recent snapshots with their metrics.
type HistoryResult struct {
	Snapshots []HistoryEntry `json:"snapshots"`
}

// HistoryEntry is one stored snapshot.
type HistoryEntry struct {
	Snapshot store.Snapshot `json:"snapshot"`
	Metrics  map[string]int `json:"metrics"`
}

var (
	rootSchema     = json.RawMessage(`{"type":"object","properties":{"root":{"type":"string","description":"Directory to scan (default: server root)"}},"additionalProperties":false}`)
	hotspotsSchema = json.RawMessage(`{"type":"object","properties":{"root":{"type":"string"},"kind":{"type":"string","enum":["files","functions","complexity"]},"n":{"type":"integer","description":"Entries to return (default 10)"}},"required":["kind"],"additionalProperties":false}`)
	graphSchema    = json.RawMessage(`{"type":"object","properties":{"root":{"type":"string"},"edges":{"type":"boolean","description":"Include every edge"}},"additionalProperties":false}`)
	limitSchema    = json.RawMessage(`{"type":"object","properties":{"root":{"type":"string"},"limit":{"type":"integer","description":"Suggestions to return (default 10)"}},"additionalProperties":false}`)
	historySchema  = json.RawMessage(`{"type":"object","properties":{"root":{"type":"string"},"n":{"type":"integer","description":"Snapshots to return (default 5)"}},"additionalProperties":false}`)
)

// addTools registers every MCP tool handler on s.
func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "get_repo_summary",
		Description: "Line totals, file counts, debt and import counts, and budget verdict for a tree.",
		InputSchema: rootSchema,
		Handler:     s.handleGetRepoSummary,
	})
	s.registerTool(toolDef{
		Name:        "get_hotspots",
		Description: "Largest files, longest functions, or most complex files of a tree.",
		InputSchema: hotspotsSchema,
		Handler:     s.handleGetHotspots,
	})
	s.registerTool(toolDef{
		Name:        "get_import_graph",
		Description: "Local import edge count with the most-importing files and most-imported targets.",
		InputSchema: graphSchema,
		Handler:     s.handleGetImportGraph,
	})
	s.registerTool(toolDef{
		Name:        "get_suggestions",
		Description: "Ranked refactoring suggestions for a tree.",
		InputSchema: limitSchema,
		Handler:     s.handleGetSuggestions,
	})
	s.registerTool(toolDef{
		Name:        "get_history",
		Description: "Recent tracked snapshots of a tree with their metrics.",
		InputSchema: historySchema,
		Handler:     s.handleGetHistory,
	})
}

// toolArgs are the arguments shared by every tool.
type toolArgs struct {
	Root  string `json:"root"`
	Kind  string `json:"kind"`
	N     int    `json:"n"`
	Limit int    `json:"limit"`
	Edges bool   `json:"edges"`
}

func parseArgs(raw json.RawMessage) (toolArgs, error) {
	var a toolArgs
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &a); err != nil {
			return a, fmt.Errorf("invalid arguments: %w", err)
		}
	}
	return a, nil
}

// resolveRoot returns an absolute root, defaulting to the server root.
func (s *Server) resolveRoot(root string) (string, error) {
	switch {
	case root == "":
		root = s.opts.Root
	case !filepath.IsAbs(root):
		root = filepath.Join(s.opts.Root, root)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("scan root: %w", err)
	}
	return abs, nil
}

// scan runs a full scan of root and aggregates the report.
func (s *Server) scan(ctx context.Context, root string) (*report.Report, error) {
	if s.opts.Scanner == nil {
		return nil, errors.New("no scanner configured")
	}
	abs, err := s.resolveRoot(root)
	if err != nil {
		return nil, err
	}
	results, err := s.opts.Scanner.Scan(ctx, abs)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", abs, err)
	}
	return report.Aggregate(abs, results, s.opts.Budgets), nil
}

func (s *Server) handleGetRepoSummary(ctx context.Context, raw json.RawMessage) (any, error) {
	args, err := parseArgs(raw)
	if err != nil {
		return nil, err
	}
	r, err := s.scan(ctx, args.Root)
	if err != nil {
		return nil, err
	}
	v := report.Evaluate(r, s.opts.Exclusions)
	violations := v.Violations()
	if violations == nil {
		violations = []string{}
	}
	return SummaryResult{
		Root:            r.Root,
		FileCount:       r.FileCount,
		ScriptFileCount: r.ScriptFileCount,
		TotalLines:      r.TotalLines(),
		TotalsByGroup:   r.TotalsByGroup,
		DebtMarkerCount: r.DebtMarkerCount,
		ImportEdgeCount: r.ImportEdgeCount,
		Verdict:         v,
		Violations:      violations,
	}, nil
}

func (s *Server) handleGetHotspots(ctx context.Context, raw json.RawMessage) (any, error) {
	args, err := parseArgs(raw)
	if err != nil {
		return nil, err
	}
	n := args.N
	if n <= 0 {
		n = 10
	}

	// Validate before scanning.
	switch args.Kind {
	case "files", "functions", "complexity":
	default:
		return nil, fmt.Errorf("unknown kind %q (want files, functions or complexity)", args.Kind)
	}

	r, err := s.scan(ctx, args.Root)
	if err != nil {
		return nil, err
	}

	res := HotspotsResult{Kind: args.Kind}
	switch args.Kind {
	case "files":
		res.Files = r.TopLargestFiles[:min(n, len(r.TopLargestFiles))]
	case "functions":
		res.Functions = r.TopLongestFunctions[:min(n, len(r.TopLongestFunctions))]
	case "complexity":
		res.Complex = r.TopMostComplexFiles[:min(n, len(r.TopMostComplexFiles))]
	}
	return res, nil
}

func (s *Server) handleGetImportGraph(ctx context.Context, raw json.RawMessage) (any, error) {
	args, err := parseArgs(raw)
	if err != nil {
		return nil, err
	}
	r, err := s.scan(ctx, args.Root)
	if err != nil {
		return nil, err
	}
	res := ImportGraphResult{
		EdgeCount: r.ImportEdgeCount,
		Sources:   r.TangleSources,
		Sinks:     r.TangleSinks,
	}
	if args.Edges {
		res.Edges = r.ImportEdges
	}
	return res, nil
}

func (s *Server) handleGetSuggestions(ctx context.Context, raw json.RawMessage) (any, error) {
	args, err := parseArgs(raw)
	if err != nil {
		return nil, err
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 10
	}
	r, err := s.scan(ctx, args.Root)
	if err != nil {
		return nil, err
	}
	suggestions := suggest.NewEngine().Run(&suggest.AnalysisContext{
		Report:     r,
		Exclusions: s.opts.Exclusions,
	})
	if suggestions == nil {
		suggestions = []suggest.Suggestion{}
	}
	return suggestions[:min(limit, len(suggestions))], nil
}

func (s *Server) handleGetHistory(_ context.Context, raw json.RawMessage) (any, error) {
	args, err := parseArgs(raw)
	if err != nil {
		return nil, err
	}
	if s.opts.DBPath == "" {
		return nil, errors.New("no history database configured")
	}
	if _, err := os.Stat(s.opts.DBPath); err != nil {
		return HistoryResult{Snapshots: []HistoryEntry{}}, nil
	}
	n := args.N
	if n <= 0 {
		n = 5
	}
	root, err := s.resolveRoot(args.Root)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(s.opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	snapshots, err := db.GetRecentSnapshots(root, n)
	if err != nil {
		return nil, err
	}
	res := HistoryResult{Snapshots: make([]HistoryEntry, 0, len(snapshots))}
	for _, snap := range snapshots {
		m, err := db.GetMetrics(snap.ID)
		if err != nil {
			return nil, err
		}
		res.Snapshots = append(res.Snapshots, HistoryEntry{Snapshot: snap, Metrics: m})
	}
	return res, nil
}
