package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "ismcts"
	subsystem = "search"
)

// prometheusCollector keeps the per-search counters of collector and exports
// running totals, labeled by policy
type prometheusCollector struct {
	collector
	searches          *prometheus.CounterVec
	iterations        *prometheus.CounterVec
	fullPlayouts      *prometheus.CounterVec
	earlyTerminations *prometheus.CounterVec
	expansions        *prometheus.CounterVec
	duration          *prometheus.HistogramVec
}

// NewPrometheusCollector registers the search metrics with registerer, pass
// prometheus.DefaultRegisterer to expose them on the default handler
func NewPrometheusCollector(registerer prometheus.Registerer) (Collector, error) {
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      name,
				Help:      help,
			},
			[]string{"policy"},
		)
	}

	m := &prometheusCollector{
		searches:          counter("searches_total", "Total completed searches"),
		iterations:        counter("iterations_total", "Total search iterations"),
		fullPlayouts:      counter("full_playouts_total", "Total rollouts that reached a terminal state"),
		earlyTerminations: counter("early_terminations_total", "Total rollouts ended by a heuristic outcome"),
		expansions:        counter("expansions_total", "Total children added to search trees"),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "duration_seconds",
				Help:      "Search duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"policy"},
		),
	}

	for _, c := range []prometheus.Collector{m.searches, m.iterations, m.fullPlayouts, m.earlyTerminations, m.expansions, m.duration} {
		if err := registerer.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register search metrics: %w", err)
		}
	}
	return m, nil
}

func (m *prometheusCollector) Complete(rootVisits, rootRewards float64) SearchMetric {
	metric := m.collector.Complete(rootVisits, rootRewards)

	m.searches.WithLabelValues(metric.Policy).Inc()
	m.iterations.WithLabelValues(metric.Policy).Add(float64(metric.Episodes))
	m.fullPlayouts.WithLabelValues(metric.Policy).Add(float64(metric.FullPlayouts))
	m.earlyTerminations.WithLabelValues(metric.Policy).Add(float64(metric.EarlyTerminations))
	m.expansions.WithLabelValues(metric.Policy).Add(float64(metric.Expansions))
	m.duration.WithLabelValues(metric.Policy).Observe(metric.Duration.Seconds())

	return metric
}
