package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/ecoplot/internal/domain/plot"
	"github.com/yanqian/ecoplot/pkg/metrics"
)

const namespace = "ecoplot"

// Collector exports plot store fetch outcomes to Prometheus.
type Collector struct {
	registry *prometheus.Registry
	fetches  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	entities *prometheus.GaugeVec
	skipped  *prometheus.CounterVec
}

// NewCollector builds a collector with its own registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "plot_store",
			Name:      "fetches_total",
			Help:      "Plot store fetches by operation and outcome.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "plot_store",
			Name:      "fetch_duration_seconds",
			Help:      "Wall time of plot store fetches.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"operation"}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "plot_store",
			Name:      "entities",
			Help:      "Entities loaded by the last successful fetch.",
		}, []string{"kind"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "plot_store",
			Name:      "skipped_entities_total",
			Help:      "Users, plots or plants skipped because they could not be read.",
		}, []string{"operation"}),
	}
	reg.MustRegister(
		c.fetches,
		c.duration,
		c.entities,
		c.skipped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveFetch implements plot.Observer.
func (c *Collector) ObserveFetch(operation string, success bool, stats metrics.FetchStats) {
	status := "success"
	if !success {
		status = "failure"
	}
	c.fetches.WithLabelValues(operation, status).Inc()
	c.duration.WithLabelValues(operation).Observe(stats.Duration.Seconds())
	if stats.Skipped > 0 {
		c.skipped.WithLabelValues(operation).Add(float64(stats.Skipped))
	}
	if !success {
		return
	}
	c.entities.WithLabelValues("users").Set(float64(stats.Users))
	c.entities.WithLabelValues("plots").Set(float64(stats.Plots))
	c.entities.WithLabelValues("plants").Set(float64(stats.Plants))
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

var _ plot.Observer = (*Collector)(nil)
