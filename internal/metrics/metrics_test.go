package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/reposcan/internal/report"
)

func TestObserve(t *testing.T) {
	m := New()
	r := &report.Report{
		FileCount:       3,
		ScriptFileCount: 2,
		TotalsByGroup:   map[string]int{report.AllGroupsKey: 120, "script": 100, "docs": 20},
		DebtMarkerCount: 4,
		ImportEdgeCount: 7,
	}

	m.Observe(r, report.Verdict{Complexity: true}, 250*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScansTotal))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.TotalLines))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.DebtMarkers))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.ImportEdges))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.GroupLines.WithLabelValues("script")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BudgetViolation.WithLabelValues("complexity")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BudgetViolation.WithLabelValues("file_size")))
	// The synthetic all-groups key is not a group.
	assert.Equal(t, 2, testutil.CollectAndCount(m.GroupLines))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Observe(&report.Report{TotalsByGroup: map[string]int{report.AllGroupsKey: 0}}, report.Verdict{}, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "reposcan_scans_total 1"), body)
	assert.Contains(t, body, "reposcan_budget_violated")
}
