package processor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts searches per entity. A nil *Metrics records nothing.
type Metrics struct {
	searches        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	rejectedClauses *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

// NewMetrics creates the search metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "querykit_searches_total",
				Help: "Total number of searches by entity and outcome",
			},
			[]string{"entity", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "querykit_search_duration_seconds",
				Help:    "Time spent evaluating searches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"entity"},
		),
		rejectedClauses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "querykit_rejected_filter_clauses_total",
				Help: "Total number of filter clauses rejected, by failure reason",
			},
			[]string{"entity", "reason"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "querykit_page_cache_lookups_total",
				Help: "Total number of page cache lookups by result",
			},
			[]string{"entity", "result"},
		),
	}

	for _, c := range []prometheus.Collector{m.searches, m.duration, m.rejectedClauses, m.cacheLookups} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeSearch(entity, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(entity, outcome).Inc()
	m.duration.WithLabelValues(entity).Observe(seconds)
}

func (m *Metrics) rejectedClause(entity, reason string) {
	if m == nil {
		return
	}
	m.rejectedClauses.WithLabelValues(entity, reason).Inc()
}

func (m *Metrics) cacheLookup(entity string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(entity, result).Inc()
}
