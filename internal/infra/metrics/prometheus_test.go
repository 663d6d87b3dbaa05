package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ecoplot/pkg/metrics"
)

func gatherValue(t *testing.T, c *Collector, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
	next:
		for _, m := range fam.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	t.Fatalf("metric %s %v not found", name, labels)
	return 0
}

func TestCollectorObserveFetch(t *testing.T) {
	c := NewCollector()
	c.ObserveFetch("get_all", true, metrics.FetchStats{Users: 2, Plots: 3, Plants: 7, Skipped: 1, Duration: 120 * time.Millisecond})
	c.ObserveFetch("refresh", false, metrics.FetchStats{Duration: time.Second})

	require.Equal(t, 1.0, gatherValue(t, c, "ecoplot_plot_store_fetches_total", map[string]string{"operation": "get_all", "status": "success"}))
	require.Equal(t, 1.0, gatherValue(t, c, "ecoplot_plot_store_fetches_total", map[string]string{"operation": "refresh", "status": "failure"}))
	require.Equal(t, 2.0, gatherValue(t, c, "ecoplot_plot_store_entities", map[string]string{"kind": "users"}))
	require.Equal(t, 7.0, gatherValue(t, c, "ecoplot_plot_store_entities", map[string]string{"kind": "plants"}))
	require.Equal(t, 1.0, gatherValue(t, c, "ecoplot_plot_store_skipped_entities_total", map[string]string{"operation": "get_all"}))
	require.Equal(t, 1.0, gatherValue(t, c, "ecoplot_plot_store_fetch_duration_seconds", map[string]string{"operation": "refresh"}))
}

func TestCollectorFailureKeepsLastEntities(t *testing.T) {
	c := NewCollector()
	c.ObserveFetch("get_all", true, metrics.FetchStats{Plots: 4})
	c.ObserveFetch("refresh", false, metrics.FetchStats{})
	require.Equal(t, 4.0, gatherValue(t, c, "ecoplot_plot_store_entities", map[string]string{"kind": "plots"}))
}

func TestCollectorHandler(t *testing.T) {
	c := NewCollector()
	c.ObserveFetch("get_all", true, metrics.FetchStats{Users: 1})

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, strings.Contains(string(body), `ecoplot_plot_store_fetches_total{operation="get_all",status="success"} 1`))
}
