package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/mutker/battdiag/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, rec metrics.Recorder) (int, string) {
	t.Helper()
	rr := httptest.NewRecorder()
	rec.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	return rr.Code, string(body)
}

func TestPrometheusRecorder(t *testing.T) {
	rec := metrics.NewService(metrics.Config{Enabled: true, Namespace: "test"})

	rec.ObserveFetch("api", "snapshots", metrics.OutcomeOK, 120*time.Millisecond)
	rec.ObserveFetch("api", "snapshots", metrics.OutcomeError, time.Second)
	rec.ObserveSuperseded()
	rec.ObserveSeries("865044073967657", 42)

	code, body := scrape(t, rec)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `test_source_fetches_total{backend="api",operation="snapshots",outcome="ok"} 1`)
	assert.Contains(t, body, `test_source_fetches_total{backend="api",operation="snapshots",outcome="error"} 1`)
	assert.Contains(t, body, `test_fetches_superseded_total 1`)
	assert.Contains(t, body, `test_series_cycles{device="865044073967657"} 42`)
	assert.Contains(t, body, `test_source_fetch_duration_seconds_count{backend="api",operation="snapshots"} 2`)
}

func TestRecordersAreIndependent(t *testing.T) {
	a := metrics.NewService(metrics.Config{Enabled: true})
	b := metrics.NewService(metrics.Config{Enabled: true})

	a.ObserveSuperseded()

	_, body := scrape(t, b)
	assert.Contains(t, body, "battdiag_fetches_superseded_total 0")
}

func TestNoopRecorder(t *testing.T) {
	rec := metrics.NewService(metrics.DefaultConfig())

	rec.ObserveFetch("api", "summary", metrics.OutcomeOK, time.Millisecond)
	rec.ObserveSuperseded()
	rec.ObserveSeries("x", 1)

	code, _ := scrape(t, rec)
	assert.Equal(t, http.StatusNotFound, code)
}
