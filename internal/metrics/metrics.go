// Package metrics exposes the latest scan as prometheus gauges.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blackwell-systems/reposcan/internal/report"
)

// Metrics holds the collectors for one registry.
type Metrics struct {
	registry *prometheus.Registry

	ScansTotal   prometheus.Counter
	ScanDuration prometheus.Histogram
	WatchEvents  prometheus.Counter

	TotalLines      prometheus.Gauge
	Files           prometheus.Gauge
	ScriptFiles     prometheus.Gauge
	DebtMarkers     prometheus.Gauge
	ImportEdges     prometheus.Gauge
	GroupLines      *prometheus.GaugeVec
	BudgetViolation *prometheus.GaugeVec
}

// New registers the reposcan collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ScansTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "reposcan_scans_total",
			Help: "Total number of completed scans.",
		}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "reposcan_scan_seconds",
			Help:    "Time spent scanning and aggregating a tree.",
			Buckets: prometheus.DefBuckets,
		}),
		WatchEvents: factory.NewCounter(prometheus.CounterOpts{
			Name: "reposcan_watch_events_total",
			Help: "Total number of file system events received by the watcher.",
		}),
		TotalLines: factory.NewGauge(prometheus.GaugeOpts{
			Name: "reposcan_lines",
			Help: "Non-blank lines across all included files.",
		}),
		Files: factory.NewGauge(prometheus.GaugeOpts{
			Name: "reposcan_files",
			Help: "Number of included files.",
		}),
		ScriptFiles: factory.NewGauge(prometheus.GaugeOpts{
			Name: "reposcan_script_files",
			Help: "Number of files analysed by the structural heuristics.",
		}),
		DebtMarkers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "reposcan_debt_markers",
			Help: "Number of TODO, FIXME and HACK markers.",
		}),
		ImportEdges: factory.NewGauge(prometheus.GaugeOpts{
			Name: "reposcan_import_edges",
			Help: "Number of local import edges.",
		}),
		GroupLines: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "reposcan_group_lines",
			Help: "Non-blank lines per file group.",
		}, []string{"group"}),
		BudgetViolation: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "reposcan_budget_violated",
			Help: "1 when the named budget is exceeded, 0 otherwise.",
		}, []string{"budget"}),
	}
}

// Observe records a finished scan.
func (m *Metrics) Observe(r *report.Report, v report.Verdict, elapsed time.Duration) {
	m.ScansTotal.Inc()
	m.ScanDuration.Observe(elapsed.Seconds())

	m.TotalLines.Set(float64(r.TotalLines()))
	m.Files.Set(float64(r.FileCount))
	m.ScriptFiles.Set(float64(r.ScriptFileCount))
	m.DebtMarkers.Set(float64(r.DebtMarkerCount))
	m.ImportEdges.Set(float64(r.ImportEdgeCount))

	m.GroupLines.Reset()
	for g, n := range r.TotalsByGroup {
		if g == report.AllGroupsKey {
			continue
		}
		m.GroupLines.WithLabelValues(g).Set(float64(n))
	}

	m.BudgetViolation.WithLabelValues("file_size").Set(boolGauge(v.FileSize))
	m.BudgetViolation.WithLabelValues("function_size").Set(boolGauge(v.FunctionSize))
	m.BudgetViolation.WithLabelValues("complexity").Set(boolGauge(v.Complexity))
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics server starting", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
