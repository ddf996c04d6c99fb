package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics for the crew-recovery service.
type Collector struct {
	gatherer prometheus.Gatherer

	Searches       *prometheus.CounterVec
	Evaluations    *prometheus.CounterVec
	SearchDuration *prometheus.HistogramVec
	ReservePool    prometheus.Gauge
}

// NewCollector registers the service metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	searches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crew_recovery_searches_total",
		Help: "Total replacement searches, labeled by strategy and outcome.",
	}, []string{"strategy", "outcome"})
	searches, err := registerCounterVec(reg, searches, "crew_recovery_searches_total")
	if err != nil {
		return nil, err
	}

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crew_recovery_evaluations_total",
		Help: "Total legality evaluations, labeled by verdict.",
	}, []string{"result"})
	evaluations, err = registerCounterVec(reg, evaluations, "crew_recovery_evaluations_total")
	if err != nil {
		return nil, err
	}

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crew_recovery_search_duration_seconds",
		Help:    "Replacement search latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"strategy"})
	duration, err = registerHistogramVec(reg, duration, "crew_recovery_search_duration_seconds")
	if err != nil {
		return nil, err
	}

	pool, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crew_recovery_reserve_pool",
		Help: "Size of the filtered reserve pool in the most recent search.",
	}), "crew_recovery_reserve_pool")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:       gatherer,
		Searches:       searches,
		Evaluations:    evaluations,
		SearchDuration: duration,
		ReservePool:    pool,
	}, nil
}

// ObserveSearch records one finished replacement search.
func (c *Collector) ObserveSearch(strategy, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.Searches != nil {
		c.Searches.WithLabelValues(strategy, outcome).Inc()
	}
	if c.SearchDuration != nil {
		c.SearchDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	}
}

// ObserveEvaluation records one legality verdict.
func (c *Collector) ObserveEvaluation(legal bool) {
	if c == nil || c.Evaluations == nil {
		return
	}
	result := "legal"
	if !legal {
		result = "illegal"
	}
	c.Evaluations.WithLabelValues(result).Inc()
}

// SetReservePool publishes the filtered pool size of the latest search.
func (c *Collector) SetReservePool(size int) {
	if c == nil || c.ReservePool == nil {
		return
	}
	c.ReservePool.Set(float64(size))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
