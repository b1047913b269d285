package metrics

import (
	"net/http"
	"time"

	"codeberg.org/mutker/battdiag/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type service struct {
	registry   *prometheus.Registry
	fetches    *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	superseded prometheus.Counter
	cycles     *prometheus.GaugeVec
}

// No-op implementation
type noopRecorder struct{}

// NewService returns a prometheus-backed recorder, or a no-op one when
// metrics are disabled.
func NewService(cfg Config) Recorder {
	if !cfg.Enabled {
		logger.Debug().Msg("Metrics disabled, using no-op recorder")
		return &noopRecorder{}
	}

	ns := cfg.Namespace
	if ns == "" {
		ns = defaultNamespace
	}

	s := &service{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "source_fetches_total",
			Help:      "Data source calls by backend, operation and outcome.",
		}, []string{"backend", "operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "source_fetch_duration_seconds",
			Help:      "Histogram of data source call durations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "fetches_superseded_total",
			Help:      "Fetch results discarded because a newer selection was made.",
		}),
		cycles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "series_cycles",
			Help:      "Number of cycles in the last series loaded per device.",
		}, []string{"device"}),
	}

	s.registry.MustRegister(s.fetches, s.duration, s.superseded, s.cycles)

	logger.Debug().
		Str("namespace", ns).
		Msg("Metrics recorder initialized")

	return s
}

func (s *service) ObserveFetch(backend, operation, outcome string, elapsed time.Duration) {
	s.fetches.WithLabelValues(backend, operation, outcome).Inc()
	s.duration.WithLabelValues(backend, operation).Observe(elapsed.Seconds())
}

func (s *service) ObserveSuperseded() {
	s.superseded.Inc()
}

func (s *service) ObserveSeries(device string, cycles int) {
	s.cycles.WithLabelValues(device).Set(float64(cycles))
}

func (s *service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// No-op implementation
func (*noopRecorder) ObserveFetch(_, _, _ string, _ time.Duration) {}

func (*noopRecorder) ObserveSuperseded() {}

func (*noopRecorder) ObserveSeries(_ string, _ int) {}

func (*noopRecorder) Handler() http.Handler {
	return http.NotFoundHandler()
}
