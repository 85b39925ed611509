// Package metrics exports loader state to Prometheus and serves it over HTTP.
package metrics

import (
	"github.com/arthur-debert/busy/pkg/errors"
	"github.com/arthur-debert/busy/pkg/wait"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "busy"

// Collector mirrors a registry into prometheus metrics
type Collector struct {
	active *prometheus.GaugeVec
	any    prometheus.Gauge
	starts *prometheus.CounterVec
	stops  *prometheus.CounterVec
	cancel func()
}

// NewCollector registers the loader metrics with r and subscribes to reg
func NewCollector(reg *wait.Registry, r prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loader_active",
			Help:      "Number of in-progress operations per loader name.",
		}, []string{"name"}),
		any: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "any_loading",
			Help:      "1 while at least one loader is active, 0 otherwise.",
		}),
		starts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loader_starts_total",
			Help:      "Total number of loader starts per name.",
		}, []string{"name"}),
		stops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loader_stops_total",
			Help:      "Total number of effective loader stops per name.",
		}, []string{"name"}),
	}

	for _, m := range []prometheus.Collector{c.active, c.any, c.starts, c.stops} {
		if err := r.Register(m); err != nil {
			return nil, errors.Wrap(err, errors.ErrMetrics, "failed to register loader metrics")
		}
	}

	c.cancel = reg.Subscribe(c.observe)

	// loaders started before the collector existed
	snap := reg.Snapshot()
	for name, count := range snap {
		c.active.WithLabelValues(name).Set(float64(count))
	}
	c.any.Set(boolToFloat(len(snap) > 0))

	return c, nil
}

// Close stops tracking the registry
func (c *Collector) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Collector) observe(e wait.Event) {
	if e.Delta > 0 {
		c.starts.WithLabelValues(e.Name).Inc()
	} else {
		c.stops.WithLabelValues(e.Name).Inc()
	}

	if e.Count == 0 {
		c.active.DeleteLabelValues(e.Name)
	} else {
		c.active.WithLabelValues(e.Name).Set(float64(e.Count))
	}

	c.any.Set(boolToFloat(e.AnyLoading))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
